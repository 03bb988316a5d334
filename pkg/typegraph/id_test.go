package typegraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCombineInjective(t *testing.T) {
	a := Combine(1, 0x1000)
	b := Combine(1, 0x2000)
	c := Combine(2, 0x1000)

	assert.NotEqual(t, a, b, "same file, different offset must differ")
	assert.NotEqual(t, a, c, "same offset, different file must differ")
}

func TestNextFileIDMonotonicAndUnique(t *testing.T) {
	seen := map[FileID]bool{}
	var prev FileID
	for i := 0; i < 100; i++ {
		id := NextFileID()
		assert.False(t, seen[id], "file id reused: %d", id)
		seen[id] = true
		assert.Greater(t, uint32(id), uint32(prev))
		prev = id
	}
}
