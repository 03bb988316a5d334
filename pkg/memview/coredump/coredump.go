// Package coredump implements memview.Reader over an ELF core dump's
// PT_LOAD segments, the concrete MemoryReader an Instance needs to
// dereference pointers and read variables out of a crashed process's
// address space.
package coredump

import (
	"context"
	"debug/elf"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/coredump-labs/dwarfgraph/pkg/memview"
)

type segment struct {
	vaddr  uint64
	filesz uint64
	memsz  uint64
	reader io.ReaderAt
}

// Reader serves memory reads from the PT_LOAD segments of an ELF core
// file.
type Reader struct {
	file     *elf.File
	segments []segment
}

// Open parses path as an ELF core dump and indexes its loadable
// segments. The returned Reader keeps the file open for the lifetime of
// reads against it; call Close when done.
func Open(path string) (*Reader, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("coredump: open %s: %w", path, err)
	}
	r := &Reader{file: f}
	for _, p := range f.Progs {
		if p.Type != elf.PT_LOAD {
			continue
		}
		r.segments = append(r.segments, segment{
			vaddr:  p.Vaddr,
			filesz: p.Filesz,
			memsz:  p.Memsz,
			reader: p,
		})
	}
	return r, nil
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}

func (r *Reader) segmentFor(addr uint64) (segment, bool) {
	for _, s := range r.segments {
		if addr >= s.vaddr && addr < s.vaddr+s.memsz {
			return s, true
		}
	}
	return segment{}, false
}

// ReadBytes implements memview.Reader.
func (r *Reader) ReadBytes(_ context.Context, addr uint64, n int) ([]byte, error) {
	s, ok := r.segmentFor(addr)
	if !ok {
		return nil, fmt.Errorf("coredump: %w: 0x%x", memview.ErrOutOfRange, addr)
	}
	off := addr - s.vaddr
	out := make([]byte, n)

	readable := uint64(n)
	if off >= s.filesz {
		readable = 0
	} else if off+readable > s.filesz {
		readable = s.filesz - off
	}
	if readable > 0 {
		if _, err := s.reader.ReadAt(out[:readable], int64(off)); err != nil {
			return nil, fmt.Errorf("coredump: read at 0x%x: %w", addr, err)
		}
	}
	// Bytes beyond filesz but within memsz are the dumper's zero-fill
	// convention for bss-like pages it chose not to write out; out is
	// already zeroed there.
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
