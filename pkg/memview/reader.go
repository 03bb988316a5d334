// Package memview abstracts reading live or captured process memory.
// The type graph itself never reads memory; only Instance does, and
// only through this interface, so the same graph can be walked against
// a live ptrace target, a core dump, or a flat test buffer by swapping
// the Reader implementation.
package memview

import (
	"context"
	"errors"
)

// ErrOutOfRange is returned by a Reader when addr does not map to any
// byte the reader knows about (outside every loaded segment, past the
// end of a flat buffer, and so on).
var ErrOutOfRange = errors.New("memview: address out of range")

// Reader reads fixed-width values from a byte address space. All
// methods are safe for concurrent use: a Reader backs every Instance
// walking the graph, and multiple walks can run at once once parsing
// has finished and the graph is immutable.
type Reader interface {
	// ReadU64 reads 8 bytes at addr and returns them as a little-endian
	// uint64, the width spec's location-expression decoding and
	// pointer-following both need.
	ReadU64(ctx context.Context, addr uint64) (uint64, error)

	// ReadBytes reads n bytes starting at addr.
	ReadBytes(ctx context.Context, addr uint64, n int) ([]byte, error)
}
