package dwarfscan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeLocationAddr(t *testing.T) {
	// DW_OP_addr 0x0000000000401020, little-endian.
	block := []byte{0x03, 0x20, 0x10, 0x40, 0x00, 0x00, 0x00, 0x00, 0x00}
	assert.Equal(t, uint64(0x401020), decodeLocation(block))
}

func TestDecodeLocationAddrTruncatedIsZero(t *testing.T) {
	block := []byte{0x03, 0x20, 0x10}
	assert.Equal(t, uint64(0), decodeLocation(block))
}

func TestDecodeLocationPlusUconst(t *testing.T) {
	// DW_OP_plus_uconst 300 (ULEB128: 0xac, 0x02).
	block := []byte{0x23, 0xac, 0x02}
	assert.Equal(t, uint64(300), decodeLocation(block))
}

func TestDecodeLocationPlusUconstSingleByte(t *testing.T) {
	block := []byte{0x23, 0x08}
	assert.Equal(t, uint64(8), decodeLocation(block))
}

func TestDecodeLocationUnknownOpcodeIsZero(t *testing.T) {
	block := []byte{0x91, 0x00}
	assert.Equal(t, uint64(0), decodeLocation(block))
}

func TestDecodeLocationEmptyIsZero(t *testing.T) {
	assert.Equal(t, uint64(0), decodeLocation(nil))
}
