package typegraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddMemberDisambiguatesCollidingNames(t *testing.T) {
	s := NewStructured(StructKindStruct, "widget", Combine(1, 0x10))
	s.AddMember("value", 0, 0, 0, Combine(1, 0x20))
	s.AddMember("value", 4, 0, 0, Combine(1, 0x30))
	s.AddMember("value", 8, 0, 0, Combine(1, 0x40))

	names := s.MemberNames()
	require.Equal(t, []string{"value", "value_2", "value_3"}, names)

	m, ok := s.MemberByName("value_2")
	require.True(t, ok)
	assert.Equal(t, uint64(4), m.MemberLocation)
}

func TestMemberByOffsetExactAndFloor(t *testing.T) {
	s := NewStructured(StructKindStruct, "widget", Combine(1, 0x10))
	s.AddMember("a", 0, 0, 0, Combine(1, 0x20))
	s.AddMember("b", 8, 0, 0, Combine(1, 0x30))
	s.AddMember("c", 16, 0, 0, Combine(1, 0x40))

	m, ok := s.MemberByOffset(8)
	require.True(t, ok)
	assert.Equal(t, "b", m.Name)

	// 12 falls inside member "b"'s tail (offset 8, next member at 16).
	m, ok = s.MemberByOffset(12)
	require.True(t, ok)
	assert.Equal(t, "b", m.Name)

	_, ok = s.MemberByOffset(1000)
	require.True(t, ok, "offset past the last member still floors onto it")
}

func TestMemberOffsetSentinelOnMiss(t *testing.T) {
	s := NewStructured(StructKindStruct, "widget", Combine(1, 0x10))
	s.AddMember("a", 0, 0, 0, Combine(1, 0x20))

	assert.Equal(t, uint32(0), s.MemberOffset("a"))
	assert.Equal(t, uint32(MemberOffsetMiss), s.MemberOffset("nonexistent"))
}
