package byteview

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coredump-labs/dwarfgraph/pkg/memview"
)

func TestReadBytesWithinRange(t *testing.T) {
	r := New(0x1000, []byte{1, 2, 3, 4, 5, 6, 7, 8})

	b, err := r.ReadBytes(context.Background(), 0x1002, 3)
	require.NoError(t, err)
	assert.Equal(t, []byte{3, 4, 5}, b)
}

func TestReadBytesOutOfRange(t *testing.T) {
	r := New(0x1000, []byte{1, 2, 3, 4})

	_, err := r.ReadBytes(context.Background(), 0x0fff, 1)
	assert.ErrorIs(t, err, memview.ErrOutOfRange)

	_, err = r.ReadBytes(context.Background(), 0x1000, 100)
	assert.ErrorIs(t, err, memview.ErrOutOfRange)
}

func TestReadU64LittleEndian(t *testing.T) {
	data := []byte{0x78, 0x56, 0x34, 0x12, 0x00, 0x00, 0x00, 0x00}
	r := New(0x2000, data)

	v, err := r.ReadU64(context.Background(), 0x2000)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x12345678), v)
}
