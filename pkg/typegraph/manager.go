package typegraph

import "sync"

// Manager is the merging layer over the entity graph: every DIE the
// parser driver visits across every file goes through it, and it is the
// thing that decides whether that DIE describes a type already seen
// (merge, record an alternative id) or a new one (allocate, index by
// name).
//
// Name-indexing policy: three maps, one per kind family — BaseType
// (covers BaseType, Typedef/ConstType/Pointer, Struct/Union, Enum; Array
// is deliberately excluded, see array.go), Variable, and Function. Within
// a family, a name collision between two entities of the *same* concrete
// kind merges onto the first-registered entity. A collision between two
// RefBaseType variants (Typedef vs Pointer, say) under the same name is
// a hard KindMismatch. A collision between two otherwise-unrelated kinds
// in the BaseType family (a Struct and a plain BaseType sharing a name,
// which DWARF's separate tag/ordinary namespaces make possible) instead
// allocates a second, distinct entity that is reachable by id but not by
// name — the second entity simply never displaces the first in the
// family index.
type Manager struct {
	mu sync.RWMutex

	byID           map[SymbolID]Entity
	baseTypeFamily map[string]Entity
	variableFamily map[string]*Variable
	functionFamily map[string]*Function

	metrics *Metrics
}

// NewManager constructs an empty Manager. metrics may be nil.
func NewManager(metrics *Metrics) *Manager {
	return &Manager{
		byID:           make(map[SymbolID]Entity),
		baseTypeFamily: make(map[string]Entity),
		variableFamily: make(map[string]*Variable),
		functionFamily: make(map[string]*Function),
		metrics:        metrics,
	}
}

// FindByID returns the entity registered under id, if any.
func (m *Manager) FindByID(id SymbolID) (Entity, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.byID[id]
	return e, ok
}

// FindBaseTypeByName returns whichever entity of the BaseType family is
// registered under name, regardless of its specific kind.
func (m *Manager) FindBaseTypeByName(name string) (Entity, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.baseTypeFamily[name]
	return e, ok
}

// FindVariableByName returns the Variable registered under name.
func (m *Manager) FindVariableByName(name string) (*Variable, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.variableFamily[name]
	return v, ok
}

// FindFunctionByName returns the Function registered under name.
func (m *Manager) FindFunctionByName(name string) (*Function, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.functionFamily[name]
	return f, ok
}

func (m *Manager) registerByID(e Entity) {
	m.byID[e.ID()] = e
}

// registerAlias records that a file-local id, seen on a DIE that turned
// out to name an entity already registered under a different primary
// id, now also resolves to that entity. Without this, any other DIE in
// the same file that references id by its own file-local offset (the
// common case: a typedef and a pointer declared in the same
// compilation unit, both referencing the same re-sighted base type)
// would have no way to find the entity its duplicate merged into.
func (m *Manager) registerAlias(id SymbolID, e Entity) {
	m.byID[id] = e
}

// GetOrCreateBaseType merges into or allocates a plain DW_TAG_base_type
// entity named name.
func (m *Manager) GetOrCreateBaseType(alt AltID, id SymbolID, name string, byteSize uint64, encoding Encoding) *BaseType {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.baseTypeFamily[name]; ok && name != "" {
		if bt, isBT := existing.(*BaseType); isBT && bt.Kind() == KindBaseType {
			bt.Update(byteSize, encoding)
			bt.addAlternativeID(alt, uint64(bt.ID()&0xffffffff), FileID(bt.ID()>>32))
			m.registerAlias(id, bt)
			m.metrics.merged(KindBaseType)
			return bt
		}
	}

	bt := NewBaseType(name, id)
	bt.Update(byteSize, encoding)
	m.registerByID(bt)
	if name != "" {
		if _, collide := m.baseTypeFamily[name]; !collide {
			m.baseTypeFamily[name] = bt
		}
	}
	m.metrics.created(KindBaseType)
	return bt
}

// GetOrCreateRef merges into or allocates a Typedef/ConstType/Pointer
// entity. A name collision against a different RefBaseType variant is a
// hard error; a collision against a non-ref BaseType-family entity
// silently shadows, matching GetOrCreateBaseType/Struct/Enum.
func (m *Manager) GetOrCreateRef(refKind RefKind, alt AltID, id SymbolID, name string, reference SymbolID, byteSize uint64) (*RefBaseType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.baseTypeFamily[name]; ok && name != "" {
		if rbt, isRef := existing.(*RefBaseType); isRef {
			if rbt.RefKind() != refKind {
				m.metrics.kindMismatch()
				return nil, &KindMismatch{Name: name, Expected: refKind.String(), Found: rbt.RefKind().String()}
			}
			rbt.Update(reference, byteSize)
			rbt.addAlternativeID(alt, uint64(rbt.ID()&0xffffffff), FileID(rbt.ID()>>32))
			m.registerAlias(id, rbt)
			m.metrics.merged(refKind.kind())
			return rbt, nil
		}
	}

	rbt := NewRefBaseType(refKind, name, id)
	rbt.Update(reference, byteSize)
	m.registerByID(rbt)
	if name != "" {
		if _, collide := m.baseTypeFamily[name]; !collide {
			m.baseTypeFamily[name] = rbt
		}
	}
	m.metrics.created(refKind.kind())
	return rbt, nil
}

// GetOrCreateStructured merges into or allocates a Struct/Union entity.
func (m *Manager) GetOrCreateStructured(structKind StructKind, alt AltID, id SymbolID, name string, byteSize uint64) *Structured {
	m.mu.Lock()
	defer m.mu.Unlock()

	wantKind := KindStruct
	if structKind == StructKindUnion {
		wantKind = KindUnion
	}

	if existing, ok := m.baseTypeFamily[name]; ok && name != "" {
		if s, isS := existing.(*Structured); isS && s.Kind() == wantKind {
			s.Update(byteSize, EncodingUnknown)
			s.addAlternativeID(alt, uint64(s.ID()&0xffffffff), FileID(s.ID()>>32))
			m.registerAlias(id, s)
			m.metrics.merged(wantKind)
			return s
		}
	}

	s := NewStructured(structKind, name, id)
	s.Update(byteSize, EncodingUnknown)
	m.registerByID(s)
	if name != "" {
		if _, collide := m.baseTypeFamily[name]; !collide {
			m.baseTypeFamily[name] = s
		}
	}
	m.metrics.created(wantKind)
	return s
}

// GetOrCreateEnum merges into or allocates an Enum entity.
func (m *Manager) GetOrCreateEnum(alt AltID, id SymbolID, name string) *Enum {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.baseTypeFamily[name]; ok && name != "" {
		if e, isE := existing.(*Enum); isE {
			e.addAlternativeID(alt, uint64(e.ID()&0xffffffff), FileID(e.ID()>>32))
			m.registerAlias(id, e)
			m.metrics.merged(KindEnum)
			return e
		}
	}

	e := NewEnum(name, id)
	m.registerByID(e)
	if name != "" {
		if _, collide := m.baseTypeFamily[name]; !collide {
			m.baseTypeFamily[name] = e
		}
	}
	m.metrics.created(KindEnum)
	return e
}

// NewArrayEntity allocates a fresh Array and registers it by id only.
// Arrays are never looked up or merged by name; see array.go.
func (m *Manager) NewArrayEntity(id SymbolID) *Array {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := NewArray(id)
	m.registerByID(a)
	m.metrics.created(KindArray)
	return a
}

// GetOrCreateFunction merges into or allocates a Function entity.
func (m *Manager) GetOrCreateFunction(alt AltID, id SymbolID, name string, returnType SymbolID, address uint64) *Function {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.functionFamily[name]; ok && name != "" {
		existing.Update(returnType, address)
		existing.addAlternativeID(alt, uint64(existing.ID()&0xffffffff), FileID(existing.ID()>>32))
		m.registerAlias(id, existing)
		m.metrics.merged(KindFunction)
		return existing
	}

	f := NewFunction(name, id, returnType, address)
	m.registerByID(f)
	if name != "" {
		if _, collide := m.functionFamily[name]; !collide {
			m.functionFamily[name] = f
		}
	}
	m.metrics.created(KindFunction)
	return f
}

// GetOrCreateVariable merges into or allocates a Variable entity.
// location is applied through Variable.Update, so a zero value from a
// declaration DIE never clobbers a location already captured from an
// earlier defining DIE.
func (m *Manager) GetOrCreateVariable(alt AltID, id SymbolID, name string, typeID SymbolID, location uint64) *Variable {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.variableFamily[name]; ok && name != "" {
		existing.Update(location)
		existing.addAlternativeID(alt, uint64(existing.ID()&0xffffffff), FileID(existing.ID()>>32))
		m.registerAlias(id, existing)
		m.metrics.merged(KindVariable)
		return existing
	}

	v := NewVariable(name, id, typeID)
	v.Update(location)
	m.registerByID(v)
	if name != "" {
		if _, collide := m.variableFamily[name]; !collide {
			m.variableFamily[name] = v
		}
	}
	m.metrics.created(KindVariable)
	return v
}

// RealType walks a BaseType through its RefBaseType chain (Typedef,
// ConstType, Pointer) until it reaches a non-RefBaseType entity, and
// returns that. Returns nil if any link in the chain is missing.
func (m *Manager) RealType(bt Entity) Entity {
	cur := bt
	for {
		rbt, ok := cur.(*RefBaseType)
		if !ok {
			return cur
		}
		next, ok := m.FindByID(rbt.Reference())
		if !ok {
			return nil
		}
		cur = next
	}
}

// ByteSizeOf computes the effective byte size of bt, resolving through
// the RefBaseType chain when bt's own byteSize is the unresolved
// default: a Pointer always reports PointerByteSize; a Typedef/ConstType
// with byteSize 0 reports its referent's size instead.
func (m *Manager) ByteSizeOf(bt Entity) uint64 {
	rbt, ok := bt.(*RefBaseType)
	if !ok {
		if sized, ok := bt.(interface{ ByteSize() uint64 }); ok {
			return sized.ByteSize()
		}
		return 0
	}
	if rbt.RefKind() == RefPointer {
		return PointerByteSize
	}
	if rbt.ByteSize() != 0 {
		return rbt.ByteSize()
	}
	referent, ok := m.FindByID(rbt.Reference())
	if !ok {
		return 0
	}
	return m.ByteSizeOf(referent)
}

// UpdateTypes performs the deferred rewrite pass described in spec §3.4:
// after every parser has finished visiting DIEs, every stored reference
// (RefBaseType.Reference, StructuredMember.TypeID, Array.ElementType,
// Function.ReturnType/Params[*].TypeID, Variable.TypeID) is rewritten
// from whatever file-local id was captured at parse time onto that
// symbol's current primary id. This needs a single exclusive pass: no
// parser goroutine may still be running when it starts.
func (m *Manager) UpdateTypes() {
	m.mu.Lock()
	defer m.mu.Unlock()

	resolve := func(id SymbolID) SymbolID {
		if id == 0 {
			return 0
		}
		if e, ok := m.byID[id]; ok {
			return e.ID()
		}
		m.metrics.missingReferent()
		return id
	}

	for _, e := range m.byID {
		switch v := e.(type) {
		case *RefBaseType:
			v.SetReference(resolve(v.Reference()))
		case *Structured:
			for _, mem := range v.order {
				mem.TypeID = resolve(mem.TypeID)
			}
		case *Array:
			v.elementType = resolve(v.elementType)
		case *Function:
			v.returnType = resolve(v.returnType)
			for i := range v.params {
				v.params[i].TypeID = resolve(v.params[i].TypeID)
			}
		case *Variable:
			v.typeID = resolve(v.typeID)
		}
	}
}

// All returns every entity currently registered, in no particular
// order. Intended for CLI dumps and tests, not for the hot parse path.
func (m *Manager) All() []Entity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Entity, 0, len(m.byID))
	for _, e := range m.byID {
		out = append(out, e)
	}
	return out
}
