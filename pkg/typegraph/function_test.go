package typegraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewFunctionResetsParamsFinal(t *testing.T) {
	f := NewFunction("foo", Combine(1, 0x10), Combine(1, 0x20), 0x4000)
	assert.Equal(t, SymbolID(Combine(1, 0x20)), f.ReturnType())
	assert.Equal(t, uint64(0x4000), f.Address())

	// Construction's internal Update() call must not have finalized the
	// parameter list: the first DIE's own formal_parameter children
	// still need to land.
	f.AddParam("a", Combine(1, 0x30))
	f.AddParam("b", Combine(1, 0x40))
	assert.Len(t, f.Params(), 2)
}

func TestFunctionUpdateFinalizesParamsAndFillsOnlyUnset(t *testing.T) {
	f := NewFunction("foo", Combine(1, 0x10), 0, 0)
	f.AddParam("a", Combine(1, 0x30))

	f.Update(Combine(1, 0x99), 0x5000)
	assert.Equal(t, SymbolID(Combine(1, 0x99)), f.ReturnType())
	assert.Equal(t, uint64(0x5000), f.Address())

	f.AddParam("ignored", Combine(1, 0x50))
	assert.Len(t, f.Params(), 1, "param list must be final after Update")

	// A later Update must not clobber the already-set return type/address.
	f.Update(Combine(1, 0x55), 0x6000)
	assert.Equal(t, SymbolID(Combine(1, 0x99)), f.ReturnType())
	assert.Equal(t, uint64(0x5000), f.Address())
}

func TestFunctionSetAddressOverwritesUnconditionally(t *testing.T) {
	f := NewFunction("foo", Combine(1, 0x10), 0, 0x1000)
	f.SetAddress(0x2000)
	assert.Equal(t, uint64(0x2000), f.Address())
}

func TestFunctionEqualIgnoresNames(t *testing.T) {
	a := NewFunction("foo", Combine(1, 0x10), Combine(1, 0x99), 0)
	a.AddParam("x", Combine(1, 0x30))
	b := NewFunction("bar", Combine(2, 0x10), Combine(1, 0x99), 0)
	b.AddParam("y", Combine(1, 0x30))

	assert.True(t, a.Equal(b))

	c := NewFunction("baz", Combine(3, 0x10), Combine(1, 0x99), 0)
	c.AddParam("z", Combine(1, 0x31))
	assert.False(t, a.Equal(c))
}

func TestFunctionLessTotalOrder(t *testing.T) {
	a := NewFunction("a", Combine(1, 0x10), Combine(1, 0x10), 0)
	b := NewFunction("b", Combine(1, 0x20), Combine(1, 0x20), 0)
	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))
}
