package typegraph

import (
	"context"

	"github.com/coredump-labs/dwarfgraph/pkg/memview"
)

// Instance is a typed (type, address) view: a BaseType-family entity
// paired with a location in some address space. It never mutates the
// graph it reads from; every navigation method either returns a new
// Instance or reads through a memview.Reader.
type Instance struct {
	parent  *Instance
	mgr     *Manager
	reader  memview.Reader
	typ     Entity
	address uint64
}

// NewInstance constructs a root Instance: typ at address, read through
// reader. reader may be nil if the caller only intends to navigate the
// type graph (RealType, MemberByName, ArrayElem) and never call
// Dereference.
func NewInstance(mgr *Manager, reader memview.Reader, typ Entity, address uint64) *Instance {
	return &Instance{mgr: mgr, reader: reader, typ: typ, address: address}
}

// Type returns the instance's nominal type, before chasing any
// Typedef/ConstType/Pointer chain.
func (in *Instance) Type() Entity { return in.typ }

// Address returns the instance's address.
func (in *Instance) Address() uint64 { return in.address }

// Parent returns the Instance this one was navigated from (via
// MemberByName, ArrayElem, or Dereference), or nil for a root Instance.
func (in *Instance) Parent() *Instance { return in.parent }

// IsNull reports whether the instance's address is the null address.
func (in *Instance) IsNull() bool { return in.address == 0 }

// RealType resolves the instance's type through any RefBaseType chain
// (Typedef, ConstType, Pointer) down to the underlying BaseType,
// Structured, Array, or Enum.
func (in *Instance) RealType() Entity {
	return in.mgr.RealType(in.typ)
}

// Size returns the byte size of the instance's real type: an Array
// reports its element size times its length, everything else reports
// Manager.ByteSizeOf.
func (in *Instance) Size() uint64 {
	rt := in.RealType()
	if rt == nil {
		return 0
	}
	if arr, ok := rt.(*Array); ok {
		elemSize := in.elementByteSize(arr)
		return elemSize * arr.Length()
	}
	if sized, ok := rt.(interface{ ByteSize() uint64 }); ok {
		return sized.ByteSize()
	}
	return 0
}

func (in *Instance) elementByteSize(arr *Array) uint64 {
	elem, ok := in.mgr.FindByID(arr.ElementType())
	if !ok {
		return 0
	}
	return in.mgr.ByteSizeOf(elem)
}

// Length returns the instance's element count if its real type is an
// Array, else 1, matching the original's "arrays have a length,
// everything else is a single element" contract.
func (in *Instance) Length() uint64 {
	if arr, ok := in.RealType().(*Array); ok {
		return arr.Length()
	}
	return 1
}

// MemberByName navigates to a named field of a Structured instance: the
// real type must resolve to a Struct or Union, and the named member
// must exist. Both failures are InvariantViolation, since a caller that
// asks for a member of a non-struct, or a member that doesn't exist,
// has a bug rather than bad input.
func (in *Instance) MemberByName(name string) (*Instance, error) {
	s, ok := in.RealType().(*Structured)
	if !ok {
		return nil, &InvariantViolation{What: "member_by_name on a non-structured type"}
	}
	m, ok := s.MemberByName(name)
	if !ok {
		return nil, &InvariantViolation{What: "no such member: " + name}
	}
	memberType, ok := in.mgr.FindByID(m.TypeID)
	if !ok {
		return nil, &MissingReferent{ID: m.TypeID}
	}
	return &Instance{
		parent:  in,
		mgr:     in.mgr,
		reader:  in.reader,
		typ:     memberType,
		address: in.address + m.MemberLocation,
	}, nil
}

// MemberByOffset is MemberByName's counterpart for callers that only
// know a byte offset into the structure.
func (in *Instance) MemberByOffset(offset uint64) (*Instance, error) {
	s, ok := in.RealType().(*Structured)
	if !ok {
		return nil, &InvariantViolation{What: "member_by_offset on a non-structured type"}
	}
	m, ok := s.MemberByOffset(offset)
	if !ok {
		return nil, &InvariantViolation{What: "no member at that offset"}
	}
	memberType, ok := in.mgr.FindByID(m.TypeID)
	if !ok {
		return nil, &MissingReferent{ID: m.TypeID}
	}
	return &Instance{
		parent:  in,
		mgr:     in.mgr,
		reader:  in.reader,
		typ:     memberType,
		address: in.address + m.MemberLocation,
	}, nil
}

// ArrayElem returns the Instance for element index of an Array
// instance. Bounds are not enforced when the array's length is 0 (a
// common DWARF idiom for a flexible array member).
func (in *Instance) ArrayElem(index uint64) (*Instance, error) {
	arr, ok := in.RealType().(*Array)
	if !ok {
		return nil, &InvariantViolation{What: "array_elem on a non-array type"}
	}
	if arr.Length() != 0 && index >= arr.Length() {
		return nil, &InvariantViolation{What: "array index out of bounds"}
	}
	elemType, ok := in.mgr.FindByID(arr.ElementType())
	if !ok {
		return nil, &MissingReferent{ID: arr.ElementType()}
	}
	elemSize := in.mgr.ByteSizeOf(elemType)
	return &Instance{
		parent:  in,
		mgr:     in.mgr,
		reader:  in.reader,
		typ:     elemType,
		address: in.address + index*elemSize,
	}, nil
}

// Dereference reads the pointer at the instance's address and returns
// an Instance for the pointee: the instance's real type must be a
// Pointer, and a MemoryReader must have been supplied.
func (in *Instance) Dereference(ctx context.Context) (*Instance, error) {
	rbt, ok := in.RealType().(*RefBaseType)
	if !ok || rbt.RefKind() != RefPointer {
		return nil, &InvariantViolation{What: "dereference on a non-pointer type"}
	}
	if in.reader == nil {
		return nil, &InvariantViolation{What: "dereference without a memory reader"}
	}
	if in.address == 0 {
		return nil, &InvariantViolation{What: "dereference of a null instance"}
	}
	addr, err := in.reader.ReadU64(ctx, in.address)
	if err != nil {
		return nil, err
	}
	pointee, ok := in.mgr.FindByID(rbt.Reference())
	if !ok {
		return nil, &MissingReferent{ID: rbt.Reference()}
	}
	return &Instance{parent: in, mgr: in.mgr, reader: in.reader, typ: pointee, address: addr}, nil
}

// ChangeBaseType re-anchors the instance onto newType, treating the
// current address as the address of member fieldName within newType
// rather than of newType itself. This is the pattern a Linux-style
// intrusive list_head traversal needs: given a list_head embedded
// somewhere inside a container struct, subtract that field's member
// offset to recover the address of the container. The address is only
// adjusted when the instance's own type is named "list_head"; any other
// instance keeps its address and only takes on newType.
func (in *Instance) ChangeBaseType(newType Entity, fieldName string) (*Instance, error) {
	s, ok := in.mgr.RealType(newType).(*Structured)
	if !ok {
		return nil, &InvariantViolation{What: "change_base_type onto a non-structured type"}
	}

	address := in.address
	if in.typ != nil && in.typ.Name() == "list_head" {
		m, ok := s.MemberByName(fieldName)
		if !ok {
			return nil, &InvariantViolation{What: "no such member: " + fieldName}
		}
		if m.MemberLocation > in.address {
			return nil, &InvariantViolation{What: "change_base_type would underflow the address"}
		}
		address = in.address - m.MemberLocation
	}

	return &Instance{
		parent:  in.parent,
		mgr:     in.mgr,
		reader:  in.reader,
		typ:     newType,
		address: address,
	}, nil
}

// Equal reports whether two instances have the same type and address,
// the original's notion of instance identity.
func (in *Instance) Equal(other *Instance) bool {
	if other == nil {
		return false
	}
	return in.typ == other.typ && in.address == other.address
}
