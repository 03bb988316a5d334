package typegraph

import (
	"fmt"
	"math"
	"sync"
)

// StructKind distinguishes struct from union layout semantics; both
// share the Structured representation since DWARF describes them with
// the same member shape.
type StructKind uint8

const (
	StructKindStruct StructKind = iota
	StructKindUnion
)

// StructuredMember is one field of a Structured type: its name, its
// byte offset within the enclosing type, an optional bitfield position,
// and the id of its own type.
type StructuredMember struct {
	Name           string
	MemberLocation uint64
	BitOffset      uint64
	BitSize        uint64
	TypeID         SymbolID
}

// MemberOffsetMiss is returned by MemberOffset when the named member
// does not exist.
const MemberOffsetMiss = math.MaxUint32

// Structured is a DW_TAG_structure_type, DW_TAG_class_type, or
// DW_TAG_union_type entity: a named aggregate with a flat member list.
type Structured struct {
	BaseType
	structKind StructKind

	mu      sync.Mutex
	byName  map[string]*StructuredMember
	order   []*StructuredMember
}

// NewStructured constructs an empty Structured header.
func NewStructured(structKind StructKind, name string, id SymbolID) *Structured {
	kind := KindStruct
	if structKind == StructKindUnion {
		kind = KindUnion
	}
	s := &Structured{structKind: structKind, byName: make(map[string]*StructuredMember)}
	s.Symbol = newSymbol(kind, name, id)
	return s
}

// StructKind reports whether this is a struct or a union.
func (s *Structured) StructKind() StructKind { return s.structKind }

// AddMember appends a member, in DIE order. A member whose name
// collides with one already present (an anonymous-union-inside-struct
// DWARF pattern can legitimately produce this) is kept under a
// disambiguated name rather than silently overwriting the earlier one,
// so every member stays reachable by name.
func (s *Structured) AddMember(name string, memberLocation, bitOffset, bitSize uint64, typeID SymbolID) *StructuredMember {
	s.mu.Lock()
	defer s.mu.Unlock()

	uniqueName := name
	if name != "" {
		if _, collide := s.byName[uniqueName]; collide {
			for i := 2; ; i++ {
				candidate := fmt.Sprintf("%s_%d", name, i)
				if _, used := s.byName[candidate]; !used {
					uniqueName = candidate
					break
				}
			}
		}
	}

	m := &StructuredMember{
		Name:           uniqueName,
		MemberLocation: memberLocation,
		BitOffset:      bitOffset,
		BitSize:        bitSize,
		TypeID:         typeID,
	}
	if uniqueName != "" {
		s.byName[uniqueName] = m
	}
	s.order = append(s.order, m)
	return m
}

// MemberByName looks up a member by its (possibly disambiguated) name.
func (s *Structured) MemberByName(name string) (*StructuredMember, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.byName[name]
	return m, ok
}

// MemberByOffset returns the member occupying byte offset off: an exact
// match on MemberLocation wins immediately; otherwise the member with
// the greatest MemberLocation not exceeding off is returned, matching a
// reinterpret-at-offset-into-the-tail-of-a-member query.
func (s *Structured) MemberByOffset(off uint64) (*StructuredMember, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var best *StructuredMember
	for _, m := range s.order {
		if m.MemberLocation == off {
			return m, true
		}
		if m.MemberLocation <= off && (best == nil || m.MemberLocation > best.MemberLocation) {
			best = m
		}
	}
	if best == nil {
		return nil, false
	}
	return best, true
}

// MemberNameByOffset is a convenience wrapper over MemberByOffset.
func (s *Structured) MemberNameByOffset(off uint64) (string, bool) {
	m, ok := s.MemberByOffset(off)
	if !ok {
		return "", false
	}
	return m.Name, true
}

// MemberOffset returns the byte offset of the named member, or
// MemberOffsetMiss if no member by that name exists.
func (s *Structured) MemberOffset(name string) uint32 {
	m, ok := s.MemberByName(name)
	if !ok {
		return MemberOffsetMiss
	}
	return uint32(m.MemberLocation)
}

// MemberNames returns every member name in declaration order.
func (s *Structured) MemberNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.order))
	for _, m := range s.order {
		names = append(names, m.Name)
	}
	return names
}

// Members returns a copy of the member list in declaration order.
func (s *Structured) Members() []*StructuredMember {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*StructuredMember, len(s.order))
	copy(out, s.order)
	return out
}

// DebugString renders every member name and offset, one per line, for
// diagnostic dumps.
func (s *Structured) DebugString() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := ""
	for _, m := range s.order {
		out += fmt.Sprintf("%s: +%d (bits %d:%d) type=0x%x\n", m.Name, m.MemberLocation, m.BitOffset, m.BitSize, uint64(m.TypeID))
	}
	return out
}
