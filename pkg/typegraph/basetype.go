package typegraph

// Encoding mirrors the DW_ATE_* encoding DWARF attaches to base types.
// Only the encodings a C/C++ toolchain actually emits are named; anything
// else collects under EncodingUnknown.
type Encoding uint8

const (
	EncodingUnknown Encoding = iota
	EncodingAddress
	EncodingBoolean
	EncodingFloat
	EncodingSigned
	EncodingSignedChar
	EncodingUnsigned
	EncodingUnsignedChar
	EncodingComplexFloat
)

// BaseType is a DW_TAG_base_type entity: a named, sized primitive such as
// int, unsigned long, or double.
type BaseType struct {
	Symbol
	byteSize uint64
	encoding Encoding
}

// NewBaseType constructs a BaseType header. The driver calls Update
// immediately afterward to fill in byteSize/encoding from the DIE.
func NewBaseType(name string, id SymbolID) *BaseType {
	bt := &BaseType{Symbol: newSymbol(KindBaseType, name, id)}
	return bt
}

// ByteSize returns the type's size in bytes as last set by Update. Zero
// means unknown.
func (b *BaseType) ByteSize() uint64 { return b.byteSize }

// Encoding returns the type's DW_ATE_* encoding.
func (b *BaseType) Encoding() Encoding { return b.encoding }

// Update fills byteSize/encoding the first time non-zero values are
// seen for them. Re-sightings of the same base type across files must
// not clobber an already-resolved size with a duplicate DIE's value,
// so later calls are no-ops once a field is set.
func (b *BaseType) Update(byteSize uint64, encoding Encoding) {
	if b.byteSize == 0 {
		b.byteSize = byteSize
	}
	if b.encoding == EncodingUnknown {
		b.encoding = encoding
	}
}
