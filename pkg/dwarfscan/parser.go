// Package dwarfscan walks one object file's DIE tree and feeds it into
// a typegraph.Manager: tag dispatch, location-expression decoding, and
// the single-threaded per-file parse loop described for the type
// graph's parser driver component.
package dwarfscan

import (
	"fmt"

	"github.com/coredump-labs/dwarfgraph/pkg/diecursor"
	"github.com/coredump-labs/dwarfgraph/pkg/typegraph"
)

// Parser walks one file's DIE tree into a shared Manager. A Parser is
// not safe for concurrent use by itself, but ParseAll runs any number
// of Parsers concurrently, one per file, since each owns an independent
// file id and touches the Manager only through its already-synchronized
// GetOrCreate*/FindByID methods.
type Parser struct {
	fileID typegraph.FileID
	path   string
	src    diecursor.Source
	mgr    *typegraph.Manager

	diesVisited int
	diesSkipped int
}

// New constructs a Parser over an already-opened Source. The caller
// retains ownership of src and must Close it once parsing finishes.
func New(mgr *typegraph.Manager, path string, src diecursor.Source) *Parser {
	return &Parser{
		fileID: typegraph.NextFileID(),
		path:   path,
		src:    src,
		mgr:    mgr,
	}
}

// FileID returns the file id this parser's symbols were registered
// under.
func (p *Parser) FileID() typegraph.FileID { return p.fileID }

// Stats returns the number of DIEs visited and the number dispatch
// chose to skip (compile units, namespaces, lexical blocks, imported
// declarations, and anything dispatch does not recognize).
func (p *Parser) Stats() (visited, skipped int) { return p.diesVisited, p.diesSkipped }

// Parse walks every compile unit in the file, dispatching each DIE in
// turn. DIEs are visited in pre-order: a node, then its children, then
// its siblings.
func (p *Parser) Parse() error {
	cu, err := p.src.FirstCU()
	if err != nil {
		return fmt.Errorf("dwarfscan: %s: %w", p.path, err)
	}
	for cu != nil {
		if err := p.walk(cu, nil); err != nil {
			return fmt.Errorf("dwarfscan: %s: %w", p.path, err)
		}
		next, err := p.src.NextCU(cu)
		if err != nil {
			return fmt.Errorf("dwarfscan: %s: %w", p.path, err)
		}
		cu = next
	}
	return nil
}

// walk visits cur, dispatches it, then recurses into its first child
// (with whatever container context dispatch produced) and its sibling
// (with the same parent context cur was visited under).
func (p *Parser) walk(cur diecursor.Cursor, parent typegraph.Entity) error {
	p.diesVisited++

	childParent, err := p.dispatch(cur, parent)
	if err != nil {
		return err
	}

	first, err := cur.FirstChild()
	if err != nil {
		return fmt.Errorf("first child of 0x%x: %w", cur.Offset(), err)
	}
	if first != nil {
		if err := p.walk(first, childParent); err != nil {
			return err
		}
	}

	sib, err := cur.Sibling()
	if err != nil {
		return fmt.Errorf("sibling of 0x%x: %w", cur.Offset(), err)
	}
	if sib != nil {
		if err := p.walk(sib, parent); err != nil {
			return err
		}
	}
	return nil
}

// id computes this file's global symbol id for a DIE at the given
// offset.
func (p *Parser) id(offset uint64) typegraph.SymbolID {
	return typegraph.Combine(p.fileID, offset)
}

// altID computes this file's alternative-id entry for a DIE at the
// given offset.
func (p *Parser) altID(offset uint64) typegraph.AltID {
	return typegraph.AltID{FileID: p.fileID, Offset: offset}
}
