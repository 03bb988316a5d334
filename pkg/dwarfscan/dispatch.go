package dwarfscan

import (
	"fmt"

	"github.com/coredump-labs/dwarfgraph/pkg/diecursor"
	"github.com/coredump-labs/dwarfgraph/pkg/typegraph"
)

// dispatch is the tag-dispatch table every DIE passes through once, on
// the way down the tree: it decides whether the DIE introduces a new
// entity, updates one already seen elsewhere, or is skipped. The entity
// returned becomes the container context passed to the DIE's children;
// a DIE that is not itself a container (member, enumerator, subrange,
// formal_parameter, or anything dispatch doesn't recognize) passes its
// own parent argument straight through, so a lexical_block nested
// inside a function body doesn't sever formal_parameter/member lookups
// for whatever's nested beneath it.
func (p *Parser) dispatch(cur diecursor.Cursor, parent typegraph.Entity) (typegraph.Entity, error) {
	switch cur.Tag() {
	case diecursor.TagTypedef:
		return p.dispatchRef(typegraph.RefTypedef, cur, parent)
	case diecursor.TagPointerType:
		return p.dispatchRef(typegraph.RefPointer, cur, parent)
	case diecursor.TagConstType:
		return p.dispatchRef(typegraph.RefConstType, cur, parent)

	case diecursor.TagStructureType, diecursor.TagClassType:
		if cur.AttrFlag(diecursor.AttrDeclaration) {
			p.diesSkipped++
			return parent, nil
		}
		return p.dispatchStructured(typegraph.StructKindStruct, cur), nil
	case diecursor.TagUnionType:
		return p.dispatchStructured(typegraph.StructKindUnion, cur), nil
	case diecursor.TagMember:
		if s, ok := parent.(*typegraph.Structured); ok {
			p.addMember(s, cur)
		} else {
			p.diesSkipped++
		}
		return parent, nil

	case diecursor.TagBaseType:
		return p.dispatchBaseType(cur), nil

	case diecursor.TagEnumerationType:
		return p.dispatchEnum(cur), nil
	case diecursor.TagEnumerator:
		if e, ok := parent.(*typegraph.Enum); ok {
			p.addEnumerator(e, cur)
		} else {
			p.diesSkipped++
		}
		return parent, nil

	case diecursor.TagVariable:
		return p.dispatchVariable(cur, parent), nil

	case diecursor.TagArrayType:
		return p.dispatchArray(cur), nil
	case diecursor.TagSubrangeType:
		if a, ok := parent.(*typegraph.Array); ok {
			p.updateSubrange(a, cur)
		} else {
			p.diesSkipped++
		}
		return parent, nil

	case diecursor.TagSubprogram:
		return p.dispatchFunction(cur, parent), nil
	case diecursor.TagFormalParameter:
		if f, ok := parent.(*typegraph.Function); ok {
			p.addParam(f, cur)
		} else {
			p.diesSkipped++
		}
		return parent, nil

	case diecursor.TagCompileUnit, diecursor.TagNamespace, diecursor.TagImportedDeclaration, diecursor.TagLexicalBlock:
		p.diesSkipped++
		return parent, nil

	default:
		p.diesSkipped++
		return parent, nil
	}
}

func (p *Parser) typeRef(cur diecursor.Cursor) typegraph.SymbolID {
	off, ok := cur.AttrNumber(diecursor.AttrType)
	if !ok || off == 0 {
		return 0
	}
	return p.id(off)
}

func (p *Parser) encoding(cur diecursor.Cursor) typegraph.Encoding {
	enc, ok := cur.AttrNumber(diecursor.AttrEncoding)
	if !ok {
		return typegraph.EncodingUnknown
	}
	switch enc {
	case 0x01:
		return typegraph.EncodingAddress
	case 0x02:
		return typegraph.EncodingBoolean
	case 0x03:
		return typegraph.EncodingComplexFloat
	case 0x04:
		return typegraph.EncodingFloat
	case 0x05:
		return typegraph.EncodingSigned
	case 0x06:
		return typegraph.EncodingSignedChar
	case 0x07:
		return typegraph.EncodingUnsigned
	case 0x08:
		return typegraph.EncodingUnsignedChar
	default:
		return typegraph.EncodingUnknown
	}
}

// readNumericAttr reads a attribute that DWARF producers emit either as
// a plain constant or as a one-opcode location expression: most
// commonly DW_AT_data_member_location and DW_AT_location.
func (p *Parser) readNumericAttr(cur diecursor.Cursor, a diecursor.Attr) uint64 {
	if block, ok := cur.AttrBlock(a); ok {
		return decodeLocation(block)
	}
	if n, ok := cur.AttrNumber(a); ok {
		return n
	}
	return 0
}

func (p *Parser) dispatchRef(refKind typegraph.RefKind, cur diecursor.Cursor, parent typegraph.Entity) (typegraph.Entity, error) {
	name, _ := cur.Name()
	byteSize, _ := cur.ByteSize()
	id := p.id(cur.Offset())
	alt := p.altID(cur.Offset())

	rbt, err := p.mgr.GetOrCreateRef(refKind, alt, id, name, p.typeRef(cur), byteSize)
	if err != nil {
		// A hard KindMismatch: two incompatible RefBaseType variants
		// share a name. Fatal for this file's parse.
		return nil, fmt.Errorf("die 0x%x: %w", cur.Offset(), err)
	}
	return rbt, nil
}

func (p *Parser) dispatchStructured(structKind typegraph.StructKind, cur diecursor.Cursor) typegraph.Entity {
	name, _ := cur.Name()
	byteSize, _ := cur.ByteSize()
	id := p.id(cur.Offset())
	alt := p.altID(cur.Offset())
	return p.mgr.GetOrCreateStructured(structKind, alt, id, name, byteSize)
}

func (p *Parser) addMember(s *typegraph.Structured, cur diecursor.Cursor) {
	name, _ := cur.Name()
	memberLoc := p.readNumericAttr(cur, diecursor.AttrDataMemberLocation)
	bitOffset, _ := cur.BitOffset()
	bitSize, _ := cur.BitSize()
	s.AddMember(name, memberLoc, bitOffset, bitSize, p.typeRef(cur))
}

func (p *Parser) dispatchBaseType(cur diecursor.Cursor) typegraph.Entity {
	name, _ := cur.Name()
	byteSize, _ := cur.ByteSize()
	id := p.id(cur.Offset())
	alt := p.altID(cur.Offset())
	return p.mgr.GetOrCreateBaseType(alt, id, name, byteSize, p.encoding(cur))
}

func (p *Parser) dispatchEnum(cur diecursor.Cursor) typegraph.Entity {
	name, _ := cur.Name()
	id := p.id(cur.Offset())
	alt := p.altID(cur.Offset())
	return p.mgr.GetOrCreateEnum(alt, id, name)
}

func (p *Parser) addEnumerator(e *typegraph.Enum, cur diecursor.Cursor) {
	name, _ := cur.Name()
	value, _ := cur.AttrNumber(diecursor.AttrConstValue)
	e.AddEnumerator(name, int64(value))
}

func (p *Parser) dispatchVariable(cur diecursor.Cursor, parent typegraph.Entity) typegraph.Entity {
	if specOff, ok := cur.AttrNumber(diecursor.AttrSpecification); ok {
		if ent, found := p.mgr.FindByID(p.id(specOff)); found {
			if v, isV := ent.(*typegraph.Variable); isV {
				v.Update(p.readNumericAttr(cur, diecursor.AttrLocation))
			}
		}
		p.diesSkipped++
		return parent
	}

	name, _ := cur.Name()
	id := p.id(cur.Offset())
	alt := p.altID(cur.Offset())
	location := p.readNumericAttr(cur, diecursor.AttrLocation)
	return p.mgr.GetOrCreateVariable(alt, id, name, p.typeRef(cur), location)
}

func (p *Parser) dispatchArray(cur diecursor.Cursor) typegraph.Entity {
	id := p.id(cur.Offset())
	a := p.mgr.NewArrayEntity(id)
	a.SetElementType(p.typeRef(cur))
	return a
}

func (p *Parser) updateSubrange(a *typegraph.Array, cur diecursor.Cursor) {
	if count, ok := cur.AttrNumber(diecursor.AttrCount); ok {
		a.SetLength(count)
		return
	}
	if upper, ok := cur.AttrNumber(diecursor.AttrUpperBound); ok {
		a.SetLength(upper + 1)
	}
}

func (p *Parser) dispatchFunction(cur diecursor.Cursor, parent typegraph.Entity) typegraph.Entity {
	if specOff, ok := cur.AttrNumber(diecursor.AttrSpecification); ok {
		if lowPC, hasPC := cur.AttrAddress(diecursor.AttrLowPC); hasPC {
			if ent, found := p.mgr.FindByID(p.id(specOff)); found {
				if f, isF := ent.(*typegraph.Function); isF {
					f.SetAddress(lowPC)
					return f
				}
			}
		}
		p.diesSkipped++
		return parent
	}

	name, _ := cur.Name()
	id := p.id(cur.Offset())
	alt := p.altID(cur.Offset())
	address, _ := cur.AttrAddress(diecursor.AttrLowPC)
	return p.mgr.GetOrCreateFunction(alt, id, name, p.typeRef(cur), address)
}

func (p *Parser) addParam(f *typegraph.Function, cur diecursor.Cursor) {
	name, _ := cur.Name()
	f.AddParam(name, p.typeRef(cur))
}
