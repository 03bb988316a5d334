package typegraph

import "sync"

// FunctionParam is one formal parameter of a Function: its name and the
// id of its type.
type FunctionParam struct {
	Name   string
	TypeID SymbolID
}

// Function is a DW_TAG_subprogram entity: a named callable with a
// return type, an entry address, and a parameter list.
//
// The parameter list finalizes on the function's *second* sighting, not
// its first. A subprogram DIE is commonly emitted twice per translation
// unit pair: once as the out-of-line declaration (with full parameter
// DIEs as children) and again as an inline/duplicate definition the
// compiler re-emits; the source this module is grounded on locks the
// parameter list down after the update that runs on the second sighting,
// so a degenerate duplicate never re-appends params onto an
// already-complete list. Concretely: the constructor's own first update
// call is immediately undone, so paramsFinal only becomes permanently
// true the next time update runs.
type Function struct {
	Symbol

	mu          sync.Mutex
	returnType  SymbolID
	address     uint64
	params      []FunctionParam
	paramsFinal bool
}

// NewFunction constructs a Function header. Mirrors the constructor
// sequence of its source: update() runs once during construction (to
// pick up a return type and address present on the very first DIE) and
// paramsFinal is reset to false immediately after, so parameters from
// that first DIE's formal_parameter children can still be appended.
func NewFunction(name string, id SymbolID, returnType SymbolID, address uint64) *Function {
	f := &Function{}
	f.Symbol = newSymbol(KindFunction, name, id)
	f.Update(returnType, address)
	f.paramsFinal = false
	return f
}

// ReturnType returns the id of the function's return type.
func (f *Function) ReturnType() SymbolID { return f.returnType }

// Address returns the function's entry point, or 0 if not yet known.
func (f *Function) Address() uint64 { return f.address }

// Params returns the parameter list accumulated so far.
func (f *Function) Params() []FunctionParam {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]FunctionParam, len(f.params))
	copy(out, f.params)
	return out
}

// ParamByName returns the named parameter, if any.
func (f *Function) ParamByName(name string) (FunctionParam, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.params {
		if p.Name == name {
			return p, true
		}
	}
	return FunctionParam{}, false
}

// AddParam appends a DW_TAG_formal_parameter child. A no-op once the
// parameter list has finalized.
func (f *Function) AddParam(name string, typeID SymbolID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.paramsFinal {
		return
	}
	f.params = append(f.params, FunctionParam{Name: name, TypeID: typeID})
}

// Update sets returnType and address the first time non-zero values are
// seen, then finalizes the parameter list unconditionally. Called once
// by NewFunction (and immediately undone there) and again every time a
// subsequent sighting of the same function is merged in.
func (f *Function) Update(returnType SymbolID, address uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.returnType == 0 {
		f.returnType = returnType
	}
	if f.address == 0 {
		f.address = address
	}
	f.paramsFinal = true
}

// SetAddress overwrites the address unconditionally. Used for the
// DW_AT_specification case: a later subprogram DIE carries only
// DW_AT_low_pc and must graft its address onto the function declared
// earlier, regardless of what address (if any) is already recorded.
func (f *Function) SetAddress(address uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.address = address
}

// Equal reports whether f and other have the same return type and an
// identical parameter type sequence (names are not compared).
func (f *Function) Equal(other *Function) bool {
	if other == nil {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	other.mu.Lock()
	defer other.mu.Unlock()

	if f.returnType != other.returnType || len(f.params) != len(other.params) {
		return false
	}
	for i := range f.params {
		if f.params[i].TypeID != other.params[i].TypeID {
			return false
		}
	}
	return true
}

// Less orders functions by return type, then by parameter count, then
// by each parameter's type id, then falls back to id: a total order
// suitable for deterministic sorting/diffing of a parsed function list.
func (f *Function) Less(other *Function) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	other.mu.Lock()
	defer other.mu.Unlock()

	if f.returnType != other.returnType {
		return f.returnType < other.returnType
	}
	if len(f.params) != len(other.params) {
		return len(f.params) < len(other.params)
	}
	for i := range f.params {
		if f.params[i].TypeID != other.params[i].TypeID {
			return f.params[i].TypeID < other.params[i].TypeID
		}
	}
	return f.id < other.id
}
