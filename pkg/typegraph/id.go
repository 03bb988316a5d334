// Package typegraph holds the merged type and symbol graph reconstructed
// from one or more parsed object files: base types, typedef/const/pointer
// chains, structures, arrays, enums, functions, and variables, all linked
// by global symbol id rather than by pointer.
package typegraph

import "sync"

// FileID identifies one parsed file. Ids are assigned on parser
// construction and are unique across every parser running in this
// process.
type FileID uint32

var (
	nextFileIDMu sync.Mutex
	nextFileID   FileID
)

// NextFileID returns the next process-wide file id. Safe for concurrent
// use by multiple parsers.
func NextFileID() FileID {
	nextFileIDMu.Lock()
	defer nextFileIDMu.Unlock()
	nextFileID++
	return nextFileID
}

// SymbolID is an opaque, process-global identifier for a Symbol. The
// zero value means "no symbol".
type SymbolID uint64

// Combine computes the global id for a DIE at dieOffset within fileID.
// It packs fileID into the high 32 bits and the low 32 bits of
// dieOffset into the low 32 bits, which is injective for any file whose
// debug-info section is under 4GiB — true of every object or core file
// this module targets. Combine(0, 0) is the reserved "none" id.
func Combine(fileID FileID, dieOffset uint64) SymbolID {
	return SymbolID(uint64(fileID)<<32 | uint64(uint32(dieOffset)))
}

// AltID is a (file, offset) pair recorded as an alternative id for a
// symbol that was seen again, by name and kind, while parsing a
// different file.
type AltID struct {
	FileID FileID
	Offset uint64
}
