package typegraph

import "sync"

// Variable is a DW_TAG_variable entity: a named global or static with a
// type and, once its defining DIE has been seen, a fixed address.
type Variable struct {
	Symbol

	mu       sync.Mutex
	typeID   SymbolID
	location uint64
}

// NewVariable constructs a Variable. typeID is read once, from the
// DIE's own DW_AT_type, and never revisited by Update.
func NewVariable(name string, id SymbolID, typeID SymbolID) *Variable {
	v := &Variable{typeID: typeID}
	v.Symbol = newSymbol(KindVariable, name, id)
	return v
}

// TypeID returns the id of the variable's type.
func (v *Variable) TypeID() SymbolID { return v.typeID }

// Location returns the variable's address, or 0 if not yet known.
func (v *Variable) Location() uint64 { return v.location }

// Update records location the first time a non-zero value is seen.
// Idempotent: a declaration DIE re-sighted after the defining DIE has
// already supplied a location must not stomp it back to zero.
func (v *Variable) Update(location uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.location != 0 {
		return
	}
	v.location = location
}
