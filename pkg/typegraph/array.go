package typegraph

// Array is a DW_TAG_array_type entity. Unlike every other BaseType
// variant, arrays are never merged across sightings: each DW_TAG_array_type
// DIE allocates its own Array, even when its element type and length are
// identical to one already seen. Two anonymous array types with the same
// shape legitimately mean two different things at two different call
// sites, and DWARF gives no name to disambiguate them by, so the safe
// default is to keep every sighting distinct rather than risk merging
// unrelated arrays onto one entity.
type Array struct {
	BaseType
	elementType SymbolID
	length      uint64
}

// NewArray constructs a fresh Array entity. Called unconditionally for
// every DW_TAG_array_type DIE, never looked up first.
func NewArray(id SymbolID) *Array {
	a := &Array{}
	a.Symbol = newSymbol(KindArray, "", id)
	return a
}

// ElementType returns the id of the array's element type.
func (a *Array) ElementType() SymbolID { return a.elementType }

// SetElementType records the element type id, read from the array
// DIE's own DW_AT_type.
func (a *Array) SetElementType(id SymbolID) { a.elementType = id }

// Length returns the element count, as populated from the array's
// DW_TAG_subrange_type child.
func (a *Array) Length() uint64 { return a.length }

// SetLength records the element count from a subrange child.
func (a *Array) SetLength(n uint64) { a.length = n }
