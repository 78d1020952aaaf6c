package heap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenvm/gc/object"
)

func TestNewRegistryHasRootsTintedCurrentWhite(t *testing.T) {
	r := New()
	assert.Equal(t, object.White0, r.CurrentWhite)
	assert.True(t, r.MainThread.Header().IsWhite())
	assert.True(t, r.RegistryTable.Header().IsWhite())
}

func TestNewObjectLinksAtAllGCHead(t *testing.T) {
	r := New()
	before := r.AllGC
	tbl := object.NewTable()
	r.NewObject(tbl)

	assert.Equal(t, object.Object(tbl), r.AllGC)
	assert.Equal(t, before, tbl.Header().Next)
	assert.True(t, tbl.Header().IsWhite())
}

func TestFixMovesAllGCHeadToFixedGC(t *testing.T) {
	r := New()
	tbl := object.NewTable()
	r.NewObject(tbl)

	r.Fix(tbl)

	assert.Equal(t, object.Object(tbl), r.FixedGC)
	assert.True(t, tbl.Header().IsGray())
	assert.Equal(t, object.AgeOld, tbl.Header().Age)
	for cur := r.AllGC; cur != nil; cur = cur.Header().Next {
		assert.NotEqual(t, object.Object(tbl), cur, "fixed object must no longer be on allgc")
	}
}

func TestFixPanicsWhenNotAllGCHead(t *testing.T) {
	r := New()
	a := object.NewTable()
	b := object.NewTable()
	r.NewObject(a)
	r.NewObject(b) // b is now head, a is not

	assert.Panics(t, func() { r.Fix(a) })
}

func TestCheckFinalizerMigratesToFinObjOnce(t *testing.T) {
	r := New()
	tbl := object.NewTable()
	r.NewObject(tbl)

	calls := 0
	fin := func(object.Object) { calls++ }

	r.CheckFinalizer(tbl, fin, false)
	require.Equal(t, object.Object(tbl), r.FinObj)
	assert.True(t, tbl.Header().IsFinalized())

	for cur := r.AllGC; cur != nil; cur = cur.Header().Next {
		assert.NotEqual(t, object.Object(tbl), cur)
	}

	// A second attachment is a no-op: already finalized.
	r.CheckFinalizer(tbl, fin, false)
	assert.Equal(t, object.Object(tbl), r.FinObj)
	assert.Nil(t, tbl.Header().Next)
}

func TestCheckFinalizerRefusedWhileClosing(t *testing.T) {
	r := New()
	tbl := object.NewTable()
	r.NewObject(tbl)

	r.CheckFinalizer(tbl, func(object.Object) {}, true)

	assert.False(t, tbl.Header().IsFinalized())
	assert.Nil(t, r.FinObj)
}

func TestFlipWhiteTogglesCurrentWhite(t *testing.T) {
	r := New()
	r.FlipWhite()
	assert.Equal(t, object.White1, r.CurrentWhite)
	r.FlipWhite()
	assert.Equal(t, object.White0, r.CurrentWhite)
}

func TestTotalObjectsCountsAllFourLists(t *testing.T) {
	r := New()
	base := r.TotalObjects()

	tbl := object.NewTable()
	r.NewObject(tbl)
	assert.Equal(t, base+1, r.TotalObjects())

	r.Fix(tbl)
	assert.Equal(t, base+1, r.TotalObjects(), "moving between lists must not change the total")
}

func TestBeginSweepCursorsAddressListHeads(t *testing.T) {
	r := New()
	tbl := object.NewTable()
	r.NewObject(tbl)

	r.BeginSweepAllGC()
	require.NotNil(t, r.SweepAllGC)
	assert.Equal(t, r.AllGC, *r.SweepAllGC)
}
