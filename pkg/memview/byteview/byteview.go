// Package byteview implements memview.Reader over a single flat byte
// slice anchored at a base address. It exists for tests: constructing a
// fake core dump or live-process target is unnecessary overhead when a
// unit test just needs a handful of known bytes at known addresses.
package byteview

import (
	"context"
	"encoding/binary"

	"github.com/coredump-labs/dwarfgraph/pkg/memview"
)

// Reader is a memview.Reader backed by an in-memory buffer.
type Reader struct {
	base uint64
	data []byte
}

// New returns a Reader serving data as if it were loaded starting at
// base.
func New(base uint64, data []byte) *Reader {
	return &Reader{base: base, data: data}
}

// ReadBytes implements memview.Reader.
func (r *Reader) ReadBytes(_ context.Context, addr uint64, n int) ([]byte, error) {
	if addr < r.base {
		return nil, memview.ErrOutOfRange
	}
	off := addr - r.base
	if off > uint64(len(r.data)) || off+uint64(n) > uint64(len(r.data)) {
		return nil, memview.ErrOutOfRange
	}
	out := make([]byte, n)
	copy(out, r.data[off:off+uint64(n)])
	return out, nil
}

// ReadU64 implements memview.Reader.
func (r *Reader) ReadU64(ctx context.Context, addr uint64) (uint64, error) {
	b, err := r.ReadBytes(ctx, addr, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}
