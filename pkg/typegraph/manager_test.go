package typegraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateStructuredMergesAcrossFiles(t *testing.T) {
	mgr := NewManager(nil)

	fileA := AltID{FileID: 1, Offset: 0x10}
	fileB := AltID{FileID: 2, Offset: 0x20}

	s1 := mgr.GetOrCreateStructured(StructKindStruct, fileA, Combine(1, 0x10), "widget", 16)
	s2 := mgr.GetOrCreateStructured(StructKindStruct, fileB, Combine(2, 0x20), "widget", 16)

	require.Same(t, s1, s2, "same-named struct across files must merge onto one entity")
	assert.Contains(t, s1.AlternativeIDs(), fileB)
}

func TestGetOrCreateRefKindMismatchIsHardError(t *testing.T) {
	mgr := NewManager(nil)

	_, err := mgr.GetOrCreateRef(RefTypedef, AltID{FileID: 1, Offset: 0x10}, Combine(1, 0x10), "handle_t", Combine(1, 0x30), 0)
	require.NoError(t, err)

	_, err = mgr.GetOrCreateRef(RefPointer, AltID{FileID: 2, Offset: 0x20}, Combine(2, 0x20), "handle_t", Combine(2, 0x40), 0)
	require.Error(t, err)
	var mismatch *KindMismatch
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "handle_t", mismatch.Name)
}

func TestArraysAreNeverMerged(t *testing.T) {
	mgr := NewManager(nil)

	a1 := mgr.NewArrayEntity(Combine(1, 0x10))
	a2 := mgr.NewArrayEntity(Combine(1, 0x20))

	assert.NotSame(t, a1, a2)
	assert.NotEqual(t, a1.ID(), a2.ID())
}

func TestFunctionParamsFinalizeOnSecondSighting(t *testing.T) {
	mgr := NewManager(nil)

	f := mgr.GetOrCreateFunction(AltID{FileID: 1, Offset: 0x10}, Combine(1, 0x10), "do_work", 0, 0)
	f.AddParam("ctx", Combine(1, 0x50))
	f.AddParam("n", Combine(1, 0x60))
	require.Len(t, f.Params(), 2)

	// A duplicate DIE (same file, same offset would be unusual; model a
	// second sighting from a different CU/file merging onto the name).
	f2 := mgr.GetOrCreateFunction(AltID{FileID: 2, Offset: 0x10}, Combine(2, 0x10), "do_work", 0, 0)
	require.Same(t, f, f2)

	// Params are now finalized: further AddParam calls are no-ops.
	f.AddParam("extra", Combine(1, 0x70))
	assert.Len(t, f.Params(), 2)
}

func TestUpdateTypesRewritesReferences(t *testing.T) {
	mgr := NewManager(nil)

	intBT := mgr.GetOrCreateBaseType(AltID{FileID: 1, Offset: 0x10}, Combine(1, 0x10), "int", 4, EncodingSigned)
	// Same base type, re-sighted in file 2 under a different file-local offset.
	mgr.GetOrCreateBaseType(AltID{FileID: 2, Offset: 0x99}, Combine(2, 0x99), "int", 4, EncodingSigned)

	// A pointer in file 2 references the file-local "int" DIE at 0x99,
	// not knowing it will collapse onto file 1's primary id.
	ptr, err := mgr.GetOrCreateRef(RefPointer, AltID{FileID: 2, Offset: 0x30}, Combine(2, 0x30), "", Combine(2, 0x99), 0)
	require.NoError(t, err)

	mgr.UpdateTypes()

	assert.Equal(t, intBT.ID(), ptr.Reference(), "reference must rewrite onto the primary id")
}
