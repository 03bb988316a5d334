package typegraph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coredump-labs/dwarfgraph/pkg/memview/byteview"
)

func TestInstanceRealTypeWalksChain(t *testing.T) {
	mgr := NewManager(nil)

	intBT := mgr.GetOrCreateBaseType(AltID{FileID: 1, Offset: 0x10}, Combine(1, 0x10), "int", 4, EncodingSigned)
	td, err := mgr.GetOrCreateRef(RefTypedef, AltID{FileID: 1, Offset: 0x20}, Combine(1, 0x20), "int32_t", Combine(1, 0x10), 0)
	require.NoError(t, err)
	ct, err := mgr.GetOrCreateRef(RefConstType, AltID{FileID: 1, Offset: 0x30}, Combine(1, 0x30), "", Combine(1, 0x20), 0)
	require.NoError(t, err)

	in := NewInstance(mgr, nil, ct, 0x1000)
	assert.Equal(t, Combine(1, 0x10), td.Reference())
	assert.Equal(t, Entity(intBT), in.RealType())
	assert.Equal(t, uint64(4), in.Size())
}

func TestInstanceMemberByNameAndOffset(t *testing.T) {
	mgr := NewManager(nil)
	intBT := mgr.GetOrCreateBaseType(AltID{FileID: 1, Offset: 0x10}, Combine(1, 0x10), "int", 4, EncodingSigned)
	widget := mgr.GetOrCreateStructured(StructKindStruct, AltID{FileID: 1, Offset: 0x20}, Combine(1, 0x20), "widget", 8)
	widget.AddMember("count", 0, 0, 0, intBT.ID())
	widget.AddMember("flags", 4, 0, 0, intBT.ID())

	in := NewInstance(mgr, nil, widget, 0x2000)

	member, err := in.MemberByName("flags")
	require.NoError(t, err)
	assert.Equal(t, uint64(0x2004), member.Address())

	member, err = in.MemberByOffset(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x2000), member.Address())

	_, err = in.MemberByName("nope")
	assert.Error(t, err)
}

func TestInstanceArrayElemBounds(t *testing.T) {
	mgr := NewManager(nil)
	intBT := mgr.GetOrCreateBaseType(AltID{FileID: 1, Offset: 0x10}, Combine(1, 0x10), "int", 4, EncodingSigned)
	arr := mgr.NewArrayEntity(Combine(1, 0x20))
	arr.SetElementType(intBT.ID())
	arr.SetLength(4)

	in := NewInstance(mgr, nil, arr, 0x3000)

	elem, err := in.ArrayElem(2)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x3008), elem.Address())

	_, err = in.ArrayElem(4)
	assert.Error(t, err, "index equal to length is out of bounds")
}

func TestInstanceDereference(t *testing.T) {
	mgr := NewManager(nil)
	intBT := mgr.GetOrCreateBaseType(AltID{FileID: 1, Offset: 0x10}, Combine(1, 0x10), "int", 4, EncodingSigned)
	ptr, err := mgr.GetOrCreateRef(RefPointer, AltID{FileID: 1, Offset: 0x20}, Combine(1, 0x20), "", intBT.ID(), 0)
	require.NoError(t, err)

	// Memory at 0x1000 holds the pointer value 0x2000.
	data := make([]byte, 16)
	data[0] = 0x00
	data[1] = 0x20
	reader := byteview.New(0x1000, data)

	in := NewInstance(mgr, reader, ptr, 0x1000)
	pointee, err := in.Dereference(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(0x2000), pointee.Address())
	assert.Equal(t, Entity(intBT), pointee.Type())
}

func TestInstanceChangeBaseTypeReanchorsListHead(t *testing.T) {
	mgr := NewManager(nil)
	listHead := mgr.GetOrCreateStructured(StructKindStruct, AltID{FileID: 1, Offset: 0x10}, Combine(1, 0x10), "list_head", 16)
	container := mgr.GetOrCreateStructured(StructKindStruct, AltID{FileID: 1, Offset: 0x20}, Combine(1, 0x20), "task", 32)
	container.AddMember("list", 8, 0, 0, listHead.ID())

	// An Instance positioned at the embedded list_head's address.
	in := NewInstance(mgr, nil, listHead, 0x5008)

	task, err := in.ChangeBaseType(container, "list")
	require.NoError(t, err)
	assert.Equal(t, uint64(0x5000), task.Address())
	assert.Equal(t, Entity(container), task.Type())

	_, err = in.ChangeBaseType(container, "nonexistent")
	assert.Error(t, err)
}

func TestInstanceChangeBaseTypeLeavesAddressUnchangedForNonListHead(t *testing.T) {
	mgr := NewManager(nil)
	widget := mgr.GetOrCreateStructured(StructKindStruct, AltID{FileID: 1, Offset: 0x10}, Combine(1, 0x10), "widget", 16)
	container := mgr.GetOrCreateStructured(StructKindStruct, AltID{FileID: 1, Offset: 0x20}, Combine(1, 0x20), "task", 32)
	container.AddMember("w", 8, 0, 0, widget.ID())

	// An Instance of a plain (non-list_head) structured type: re-anchoring
	// onto container must leave the address untouched, even though
	// container has a member named "w" whose offset would otherwise be
	// subtracted.
	in := NewInstance(mgr, nil, widget, 0x5008)

	task, err := in.ChangeBaseType(container, "w")
	require.NoError(t, err)
	assert.Equal(t, uint64(0x5008), task.Address())
	assert.Equal(t, Entity(container), task.Type())
}
