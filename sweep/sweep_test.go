package sweep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenvm/gc/heap"
	"github.com/lumenvm/gc/object"
)

// linkAllGC replaces reg.AllGC with a fresh chain built from objs, head
// first, bypassing Registry.NewObject so tests can control each object's
// mark bits directly before sweeping.
func linkAllGC(reg *heap.Registry, objs ...object.Object) {
	var head object.Object
	for i := len(objs) - 1; i >= 0; i-- {
		objs[i].Header().Next = head
		head = objs[i]
	}
	reg.AllGC = head
}

func TestToLiveSkipsPastDeadPrefix(t *testing.T) {
	reg := heap.New()
	dead1 := object.NewTable()
	dead1.Header().SetWhite(object.White1)
	dead2 := object.NewTable()
	dead2.Header().SetWhite(object.White1)
	live := object.NewTable()
	live.Header().SetWhite(object.White0)
	linkAllGC(reg, dead1, dead2, live)
	reg.BeginSweepAllGC()

	ToLive(reg, &reg.SweepAllGC, object.White0)

	assert.Equal(t, object.Object(live), *reg.SweepAllGC)
	assert.Equal(t, object.Object(live), reg.AllGC, "dead prefix must be unlinked from the list head")
}

func TestChunkFreesDeadAndRetintsSurvivors(t *testing.T) {
	reg := heap.New()
	dead := object.NewTable()
	dead.Header().SetWhite(object.White1)
	live := object.NewTable()
	live.Header().SetBlack()
	linkAllGC(reg, dead, live)
	reg.BeginSweepAllGC()

	visited, freed, exhausted := Chunk(reg, &reg.SweepAllGC, object.White0)

	assert.Equal(t, 2, visited)
	assert.Equal(t, uintptr(0), freed, "object.NewTable in this test was never Registered, so it carries no charged size")
	assert.True(t, exhausted)
	assert.Equal(t, object.Object(live), reg.AllGC)
	assert.True(t, live.Header().IsWhite(), "a surviving object is retinted the current white for the next cycle")
}

func TestChunkStopsAtMaxAndCursorPersists(t *testing.T) {
	reg := heap.New()
	objs := make([]object.Object, Max+5)
	for i := range objs {
		tbl := object.NewTable()
		tbl.Header().SetBlack()
		objs[i] = tbl
	}
	linkAllGC(reg, objs...)
	reg.BeginSweepAllGC()

	visited, _, exhausted := Chunk(reg, &reg.SweepAllGC, object.White0)
	require.Equal(t, Max, visited)
	assert.False(t, exhausted)

	visited2, _, exhausted2 := Chunk(reg, &reg.SweepAllGC, object.White0)
	assert.Equal(t, 5, visited2)
	assert.True(t, exhausted2)
}

func TestFreeRemovesShortStringFromInternTable(t *testing.T) {
	reg := heap.New()
	s := object.NewShortString("x", 1)
	reg.Strings.Insert(s)
	s.Header().SetWhite(object.White1)
	linkAllGC(reg, s)
	reg.BeginSweepAllGC()

	ToLive(reg, &reg.SweepAllGC, object.White0)

	assert.Nil(t, reg.Strings.Intern("x", 1))
}

func TestFreeSeversOpenUpvalueFromThread(t *testing.T) {
	reg := heap.New()
	th := object.NewThread(4)
	uv := object.NewOpenUpvalue(th, 0)
	th.PushOpenUpvalue(uv)
	uv.Header().SetWhite(object.White1)
	linkAllGC(reg, uv)
	reg.BeginSweepAllGC()

	ToLive(reg, &reg.SweepAllGC, object.White0)

	assert.False(t, th.HasOpenUpvalues())
}
