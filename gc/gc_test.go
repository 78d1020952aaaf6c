package gc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenvm/gc/object"
)

func makeCycle(c *Collector) (a, b *object.Table) {
	a = object.NewTable()
	b = object.NewTable()
	c.Register(a, 32)
	c.Register(b, 32)
	a.Set(object.FromNumber(1), object.FromObject(b))
	b.Set(object.FromNumber(1), object.FromObject(a))
	return a, b
}

func TestFullGCReclaimsUnreachableCycle(t *testing.T) {
	c := New()
	a, b := makeCycle(c)

	c.FullGC(false)

	assert.Equal(t, StatePause, c.State)
	for cur := c.Reg.AllGC; cur != nil; cur = cur.Header().Next {
		assert.NotEqual(t, object.Object(a), cur, "unreachable cycle member a must be swept")
		assert.NotEqual(t, object.Object(b), cur, "unreachable cycle member b must be swept")
	}
}

func TestFullGCKeepsRootReachableGraphAlive(t *testing.T) {
	c := New()
	child := object.NewTable()
	c.Register(child, 32)
	c.Reg.RegistryTable.Set(object.FromNumber(1), object.FromObject(child))

	c.FullGC(false)

	found := false
	for cur := c.Reg.AllGC; cur != nil; cur = cur.Header().Next {
		if cur == child {
			found = true
		}
	}
	assert.True(t, found)
}

func TestFullGCRunsAttachedFinalizerOnUnreachableObject(t *testing.T) {
	c := New()
	tbl := object.NewTable()
	c.Register(tbl, 32)

	ran := false
	c.CheckFinalizer(tbl, func(object.Object) { ran = true })

	c.FullGC(false)

	assert.True(t, ran, "an unreachable finalizable object must have its finalizer invoked")
	found := false
	for cur := c.Reg.AllGC; cur != nil; cur = cur.Header().Next {
		if cur == tbl {
			found = true
		}
	}
	assert.True(t, found, "after finalization the object is resurrected onto allgc until the next cycle")
}

func TestFullGCSkipsFinalizersDuringEmergency(t *testing.T) {
	c := New()
	tbl := object.NewTable()
	c.Register(tbl, 32)

	ran := false
	c.CheckFinalizer(tbl, func(object.Object) { ran = true })

	c.FullGC(true)

	assert.False(t, ran, "emergency collections never invoke finalizers")
}

func TestStepMakesForwardProgressAndEventuallyReturnsToPause(t *testing.T) {
	c := New()
	makeCycle(c)

	for i := 0; i < 1000; i++ {
		c.Step()
	}

	assert.Equal(t, StatePause, c.State, "repeated Step calls must always drain back to a resting pause")
}

func TestChangeModeDemotesAgesOnReturnToIncremental(t *testing.T) {
	c := New()
	tbl := object.NewTable()
	c.Register(tbl, 32)
	c.Fix(tbl)

	c.ChangeMode(ModeGenerational)
	tbl.Header().Age = object.AgeTouched2
	c.ChangeMode(ModeIncremental)

	assert.Equal(t, object.AgeOld, tbl.Header().Age)
}

func TestChangeModeToGenerationalTintsSurvivorsOld(t *testing.T) {
	c := New()
	child := object.NewTable()
	c.Register(child, 32)
	c.Reg.RegistryTable.Set(object.FromNumber(1), object.FromObject(child))

	c.ChangeMode(ModeGenerational)

	assert.Equal(t, object.AgeOld, child.Header().Age, "a reachable survivor is tinted OLD by sweep2old")
	assert.Equal(t, c.Reg.AllGC, c.Reg.ReallyOld, "the young/old boundary starts at the post-switch allgc head")
}

func TestMinorCollectionReclaimsUnreachableYoungObject(t *testing.T) {
	c := New()
	c.ChangeMode(ModeGenerational)

	old := object.NewTable()
	c.Register(old, 32)
	c.Reg.RegistryTable.Set(object.FromNumber(1), object.FromObject(old))

	garbage := object.NewTable()
	c.Register(garbage, 16)

	c.minorCollection()

	found := false
	for cur := c.Reg.AllGC; cur != nil; cur = cur.Header().Next {
		assert.NotEqual(t, object.Object(garbage), cur, "unreachable young object must be swept by the minor cycle")
		if cur == old {
			found = true
		}
	}
	assert.True(t, found, "reachable young object must survive the minor cycle")
	assert.Equal(t, object.AgeSurvival, old.Header().Age, "a young survivor is promoted one age step")
}

func TestBarrierForwardMarksWhiteTargetDuringPropagation(t *testing.T) {
	c := New()
	c.State = StatePropagate

	src := object.NewTable()
	src.Header().SetBlack()
	dst := object.NewTable()
	dst.Header().SetWhite(c.Reg.CurrentWhite)

	c.BarrierForward(src, dst)

	assert.False(t, dst.Header().IsWhite())
}

func TestBarrierForwardNoopWhenNotCollecting(t *testing.T) {
	c := New()
	require.Equal(t, StatePause, c.State)

	src := object.NewTable()
	src.Header().SetBlack()
	dst := object.NewTable()
	dst.Header().SetWhite(c.Reg.CurrentWhite)

	c.BarrierForward(src, dst)

	assert.True(t, dst.Header().IsWhite(), "no cycle in progress: nothing to protect")
}

func TestBarrierBackwardRegraysBlackSource(t *testing.T) {
	c := New()
	c.State = StatePropagate

	src := object.NewTable()
	src.Header().SetBlack()

	c.BarrierBackward(src)

	assert.True(t, src.Header().IsGray())
	assert.False(t, c.Lists.GrayAgain.Empty())
}

func TestFreeAllClearsEverythingButMainThread(t *testing.T) {
	c := New()
	tbl := object.NewTable()
	c.Register(tbl, 32)

	c.FreeAll()

	assert.Equal(t, object.Object(c.Reg.MainThread), c.Reg.AllGC)
	assert.Nil(t, c.Reg.AllGC.Header().Next)
}

func TestFreeAllRunsPendingFinalizers(t *testing.T) {
	c := New()
	tbl := object.NewTable()
	c.Register(tbl, 32)
	ran := false
	c.CheckFinalizer(tbl, func(object.Object) { ran = true })

	c.FreeAll()

	assert.True(t, ran)
}
