package finalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenvm/gc/heap"
	"github.com/lumenvm/gc/object"
)

// pushToBeFnz links tbl at the head of reg.ToBeFnz and records fin, mimicking
// what mark.AtomicPhase's separateFinalizers step does to an unmarked finobj
// entry before the finalizer driver ever sees it.
func pushToBeFnz(reg *heap.Registry, o object.Object, fin heap.Finalizer) {
	o.Header().SetFinalized(true)
	o.Header().Next = reg.ToBeFnz
	reg.ToBeFnz = o
	if reg.Finalizers == nil {
		reg.Finalizers = make(map[object.Object]heap.Finalizer)
	}
	if fin != nil {
		reg.Finalizers[o] = fin
	}
}

func TestRunInvokesFinalizerAndRelinksToAllGC(t *testing.T) {
	reg := heap.New()
	tbl := object.NewTable()
	var called object.Object
	pushToBeFnz(reg, tbl, func(o object.Object) { called = o })

	d := Driver{}
	ran := d.Run(reg, false)

	require.Equal(t, 1, ran)
	assert.Equal(t, object.Object(tbl), called)
	assert.True(t, tbl.Header().IsWhite())
	assert.False(t, tbl.Header().IsFinalized())
	assert.Nil(t, reg.ToBeFnz)

	found := false
	for cur := reg.AllGC; cur != nil; cur = cur.Header().Next {
		if cur == tbl {
			found = true
		}
	}
	assert.True(t, found, "finalized object must be relinked onto allgc")
}

func TestRunRespectsMaxPerCall(t *testing.T) {
	reg := heap.New()
	for i := 0; i < Max+3; i++ {
		pushToBeFnz(reg, object.NewTable(), func(object.Object) {})
	}

	d := Driver{}
	ran := d.Run(reg, false)
	assert.Equal(t, Max, ran)

	ran2 := d.Run(reg, false)
	assert.Equal(t, 3, ran2)
}

func TestRunSkipsEverythingDuringEmergency(t *testing.T) {
	reg := heap.New()
	tbl := object.NewTable()
	pushToBeFnz(reg, tbl, func(object.Object) {})

	d := Driver{}
	ran := d.Run(reg, true)

	assert.Equal(t, 0, ran)
	assert.Equal(t, object.Object(tbl), reg.ToBeFnz, "emergency collection must leave tobefnz untouched")
}

func TestRunHandlesEntryWithNoFinalizerFunc(t *testing.T) {
	reg := heap.New()
	tbl := object.NewTable()
	pushToBeFnz(reg, tbl, nil)

	d := Driver{}
	ran := d.Run(reg, false)

	assert.Equal(t, 1, ran, "relinking still costs a run even with nothing to call")
}

func TestCallRecoversFinalizerPanic(t *testing.T) {
	reg := heap.New()
	tbl := object.NewTable()
	pushToBeFnz(reg, tbl, func(object.Object) { panic("boom") })

	d := Driver{}
	assert.NotPanics(t, func() { d.Run(reg, false) })
	assert.False(t, d.GCStopped, "the reentrancy guard must be cleared even after a panic")
}
