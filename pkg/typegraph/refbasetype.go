package typegraph

// RefKind discriminates the three RefBaseType variants.
type RefKind uint8

const (
	RefTypedef RefKind = iota
	RefConstType
	RefPointer
)

func (r RefKind) kind() Kind {
	switch r {
	case RefTypedef:
		return KindTypedef
	case RefConstType:
		return KindConstType
	default:
		return KindPointer
	}
}

func (r RefKind) String() string { return r.kind().String() }

// PointerByteSize is the target architecture's pointer width. Every
// example repo in this family targets 64-bit hosts; this module follows
// suit rather than threading an arch parameter through the whole graph.
const PointerByteSize = 8

// RefBaseType is a DW_TAG_typedef, DW_TAG_const_type, or DW_TAG_pointer_type
// entity: a named or anonymous type that refers to another type by id
// rather than defining its own layout.
type RefBaseType struct {
	BaseType
	refKind   RefKind
	reference SymbolID
}

// NewRefBaseType constructs a RefBaseType header of the given variant.
func NewRefBaseType(refKind RefKind, name string, id SymbolID) *RefBaseType {
	rbt := &RefBaseType{refKind: refKind}
	rbt.Symbol = newSymbol(refKind.kind(), name, id)
	return rbt
}

// RefKind returns which of Typedef/ConstType/Pointer this entity is.
func (r *RefBaseType) RefKind() RefKind { return r.refKind }

// Reference returns the id of the type this entity refers to. Before
// update_types runs, this may be a file-local id that has not yet been
// collapsed onto its primary; after, it is stable.
func (r *RefBaseType) Reference() SymbolID { return r.reference }

// Update records the referenced type id the first time one is seen.
// Pointer's own byteSize is always the architecture pointer width;
// Typedef/ConstType take whatever byte_size (if any) the DIE carried,
// since DWARF sometimes omits it and expects resolution through the
// reference chain instead.
func (r *RefBaseType) Update(reference SymbolID, byteSize uint64) {
	if r.reference == 0 {
		r.reference = reference
	}
	if r.refKind == RefPointer {
		r.BaseType.Update(PointerByteSize, EncodingAddress)
		return
	}
	r.BaseType.Update(byteSize, EncodingUnknown)
}

// SetReference rewrites the reference id in place. Used by
// Manager.UpdateTypes to collapse a file-local id onto its symbol's
// primary id once every file has been parsed.
func (r *RefBaseType) SetReference(id SymbolID) { r.reference = id }
