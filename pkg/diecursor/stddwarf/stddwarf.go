// Package stddwarf implements diecursor.Source and diecursor.Cursor
// over the standard library's debug/dwarf package, fed by whichever of
// debug/elf, debug/macho, or debug/pe recognizes the object file. This
// is the one place third-party DWARF parsers could have replaced the
// standard library; none of the repos this module was grounded on
// bundle one, so this is the module's one deliberate standard-library
// component — the external DIE-reading layer spec §6.1 places out of
// scope for the type graph itself to implement.
package stddwarf

import (
	"debug/dwarf"
	"debug/elf"
	"debug/macho"
	"debug/pe"
	"fmt"

	"github.com/coredump-labs/dwarfgraph/pkg/diecursor"
)

// Source opens one object file's DWARF data.
type Source struct {
	closer interface{ Close() error }
	data   *dwarf.Data
}

// Open recognizes path as ELF, Mach-O, or PE and returns a Source over
// its embedded DWARF data.
func Open(path string) (*Source, error) {
	if f, err := elf.Open(path); err == nil {
		d, derr := f.DWARF()
		if derr != nil {
			f.Close()
			return nil, fmt.Errorf("stddwarf: %s: %w", path, derr)
		}
		return &Source{closer: f, data: d}, nil
	}
	if f, err := macho.Open(path); err == nil {
		d, derr := f.DWARF()
		if derr != nil {
			f.Close()
			return nil, fmt.Errorf("stddwarf: %s: %w", path, derr)
		}
		return &Source{closer: f, data: d}, nil
	}
	if f, err := pe.Open(path); err == nil {
		d, derr := f.DWARF()
		if derr != nil {
			f.Close()
			return nil, fmt.Errorf("stddwarf: %s: %w", path, derr)
		}
		return &Source{closer: f, data: d}, nil
	}
	return nil, fmt.Errorf("stddwarf: %s: not a recognized ELF, Mach-O, or PE object", path)
}

// Close releases the underlying object file.
func (s *Source) Close() error { return s.closer.Close() }

// FirstCU implements diecursor.Source.
func (s *Source) FirstCU() (diecursor.Cursor, error) {
	r := s.data.Reader()
	entry, err := r.Next()
	if err != nil {
		return nil, fmt.Errorf("stddwarf: read first CU: %w", err)
	}
	if entry == nil {
		return nil, nil
	}
	return s.cursorFor(entry), nil
}

// NextCU implements diecursor.Source.
func (s *Source) NextCU(cu diecursor.Cursor) (diecursor.Cursor, error) {
	c := cu.(*cursor)
	r := s.data.Reader()
	r.Seek(dwarf.Offset(c.entry.Offset))
	if _, err := r.Next(); err != nil {
		return nil, fmt.Errorf("stddwarf: re-read CU 0x%x: %w", c.entry.Offset, err)
	}
	r.SkipChildren()
	next, err := r.Next()
	if err != nil {
		return nil, fmt.Errorf("stddwarf: read next CU: %w", err)
	}
	if next == nil {
		return nil, nil
	}
	return s.cursorFor(next), nil
}

func (s *Source) cursorFor(e *dwarf.Entry) *cursor {
	return &cursor{src: s, entry: e, cuOffset: cuOffsetOf(e)}
}

// cuOffsetOf returns the offset of the compile unit entry's own DIE,
// the normalization base DW_FORM_ref4 (and, bug-compatibly, sec_offset)
// offsets are relative to.
func cuOffsetOf(e *dwarf.Entry) uint64 {
	if e.Tag == dwarf.TagCompileUnit {
		return uint64(e.Offset)
	}
	return 0
}

type cursor struct {
	src      *Source
	entry    *dwarf.Entry
	cuOffset uint64
}

func (c *cursor) Tag() diecursor.Tag { return diecursor.Tag(c.entry.Tag) }
func (c *cursor) Offset() uint64     { return uint64(c.entry.Offset) }
func (c *cursor) CUOffset() uint64   { return c.cuOffset }

func (c *cursor) field(a diecursor.Attr) (*dwarf.Field, bool) {
	for i := range c.entry.Field {
		if dwarf.Attr(a) == c.entry.Field[i].Attr {
			return &c.entry.Field[i], true
		}
	}
	return nil, false
}

func (c *cursor) Name() (string, bool) {
	return c.AttrString(diecursor.AttrName)
}

func (c *cursor) HasAttr(a diecursor.Attr) bool {
	_, ok := c.field(a)
	return ok
}

// AttrNumber implements diecursor.Cursor. Constant and address-class
// fields decode directly. Reference fields (DW_FORM_ref1/2/4/8/udata,
// ref_addr) come back from the standard library already normalized to
// a section-global offset, so they pass through unchanged.
//
// The *_ptr classes backing DW_FORM_sec_offset (location-list, range-
// list, str-offsets, and friends) are a different story: the source
// this module is grounded on reads them with an accessor that returns
// them CU-relative and then adds the compile unit's own offset to
// globalize them — correct for a reference form, but DW_FORM_sec_offset
// is defined to already be section-relative, so that addition actually
// double-offsets it. That bug has shipped long enough that graphs built
// from it encode the double-offset value, not the correct one; rather
// than "fix" this module out of compatibility with them, the same
// addition is reproduced here on purpose.
func (c *cursor) AttrNumber(a diecursor.Attr) (uint64, bool) {
	f, ok := c.field(a)
	if !ok {
		return 0, false
	}
	switch f.Class {
	case dwarf.ClassConstant:
		return uint64(f.Val.(int64)), true
	case dwarf.ClassAddress:
		return f.Val.(uint64), true
	case dwarf.ClassReference:
		return uint64(f.Val.(dwarf.Offset)), true
	case dwarf.ClassLocListPtr, dwarf.ClassRangeListPtr, dwarf.ClassAddrPtr, dwarf.ClassStrOffsetsPtr, dwarf.ClassRngListsPtr:
		switch v := f.Val.(type) {
		case int64:
			return uint64(v) + c.cuOffset, true
		case uint64:
			return v + c.cuOffset, true
		}
		return 0, false
	default:
		return 0, false
	}
}

func (c *cursor) AttrBlock(a diecursor.Attr) ([]byte, bool) {
	f, ok := c.field(a)
	if !ok {
		return nil, false
	}
	switch f.Class {
	case dwarf.ClassBlock, dwarf.ClassExprLoc:
		b, ok := f.Val.([]byte)
		return b, ok
	}
	return nil, false
}

func (c *cursor) AttrAddress(a diecursor.Attr) (uint64, bool) {
	f, ok := c.field(a)
	if !ok || f.Class != dwarf.ClassAddress {
		return 0, false
	}
	return f.Val.(uint64), true
}

func (c *cursor) AttrString(a diecursor.Attr) (string, bool) {
	f, ok := c.field(a)
	if !ok || f.Class != dwarf.ClassString {
		return "", false
	}
	return f.Val.(string), true
}

func (c *cursor) AttrFlag(a diecursor.Attr) bool {
	f, ok := c.field(a)
	if !ok {
		return false
	}
	if b, ok := f.Val.(bool); ok {
		return b
	}
	return false
}

func (c *cursor) ByteSize() (uint64, bool) { return c.AttrNumber(diecursor.AttrByteSize) }
func (c *cursor) BitOffset() (uint64, bool) { return c.AttrNumber(diecursor.AttrBitOffset) }
func (c *cursor) BitSize() (uint64, bool)   { return c.AttrNumber(diecursor.AttrBitSize) }

func (c *cursor) FirstChild() (diecursor.Cursor, error) {
	if !c.entry.Children {
		return nil, nil
	}
	r := c.src.data.Reader()
	r.Seek(dwarf.Offset(c.entry.Offset))
	if _, err := r.Next(); err != nil {
		return nil, fmt.Errorf("stddwarf: re-read 0x%x: %w", c.entry.Offset, err)
	}
	child, err := r.Next()
	if err != nil {
		return nil, fmt.Errorf("stddwarf: read first child of 0x%x: %w", c.entry.Offset, err)
	}
	if child == nil || child.Tag == 0 {
		return nil, nil
	}
	return &cursor{src: c.src, entry: child, cuOffset: c.cuOffset}, nil
}

func (c *cursor) Sibling() (diecursor.Cursor, error) {
	r := c.src.data.Reader()
	r.Seek(dwarf.Offset(c.entry.Offset))
	if _, err := r.Next(); err != nil {
		return nil, fmt.Errorf("stddwarf: re-read 0x%x: %w", c.entry.Offset, err)
	}
	r.SkipChildren()
	sib, err := r.Next()
	if err != nil {
		return nil, fmt.Errorf("stddwarf: read sibling of 0x%x: %w", c.entry.Offset, err)
	}
	if sib == nil || sib.Tag == 0 {
		return nil, nil
	}
	return &cursor{src: c.src, entry: sib, cuOffset: c.cuOffset}, nil
}
