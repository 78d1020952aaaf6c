package gc

import (
	"time"

	"github.com/google/uuid"

	"github.com/lumenvm/gc/mark"
	"github.com/lumenvm/gc/object"
	"github.com/lumenvm/gc/sweep"
)

// Work costs charged per singleStep dispatch, in the same bytes-ish currency
// as debt, folding GC progress and mutator
// debt into one unit so a single stepsize tunable governs both.
const (
	costPropagateDefault = 16 // work charged per gray object popped
	costSweepObject      = 1  // work charged per object visited while sweeping
)

// Step implements `incstep`: runs singleStep repeatedly until
// either the accumulated work exceeds this cycle's step target or the
// machine returns to StatePause, whichever comes first. A single call to
// Step always makes forward progress when debt is positive.
func (c *Collector) Step() {
	if c.closing || c.Fin.GCStopped {
		return
	}
	target := (int64(1) << uint(c.Config.GCStepSize)) * int64(c.Config.GCStepMul) / 100
	var work int64
	for work < target {
		before := c.State
		cost := c.singleStep()
		work += cost
		if before == StateCallFin && c.State == StatePause {
			break
		}
	}
}

// singleStep advances the state machine by exactly one unit of the pace
// the caller's State value names, returning the work charged for it. This
// is the per-state dispatch table driving the collector's phases.
func (c *Collector) singleStep() int64 {
	switch c.State {
	case StatePause:
		return c.enterPause()

	case StatePropagate:
		if mark.PropagateOne(c.Reg, &c.Lists, c.Reg.CurrentWhite, mark.PhasePropagate, c.emergency) {
			return costPropagateDefault
		}
		c.State = StateEnterAtomic
		return 0

	case StateEnterAtomic:
		start := time.Now()
		mark.AtomicPhase(c.Reg, &c.Lists, c.currentThread, c.emergency)
		c.Stats.PauseSeconds.Observe(time.Since(start).Seconds())
		c.Reg.GCEstimate = c.estimateLiveBytes()
		c.Stats.BytesLive.Set(float64(c.Reg.GCEstimate))
		c.Reg.BeginSweepAllGC()
		c.creditFree(sweep.ToLive(c.Reg, &c.Reg.SweepAllGC, c.Reg.CurrentWhite))
		c.State = StateSweepAllGC
		return costPropagateDefault

	case StateSweepAllGC:
		visited, freed, exhausted := sweep.Chunk(c.Reg, &c.Reg.SweepAllGC, c.Reg.CurrentWhite)
		c.creditFree(freed)
		if exhausted {
			c.Reg.BeginSweepFinObj()
			c.creditFree(sweep.ToLive(c.Reg, &c.Reg.SweepFinObj, c.Reg.CurrentWhite))
			c.State = StateSweepFinObj
		}
		return int64(visited) * costSweepObject

	case StateSweepFinObj:
		visited, freed, exhausted := sweep.Chunk(c.Reg, &c.Reg.SweepFinObj, c.Reg.CurrentWhite)
		c.creditFree(freed)
		if exhausted {
			c.Reg.BeginSweepToBeFnz()
			c.creditFree(sweep.ToLive(c.Reg, &c.Reg.SweepToBeFnz, c.Reg.CurrentWhite))
			c.State = StateSweepToBeFnz
		}
		return int64(visited) * costSweepObject

	case StateSweepToBeFnz:
		visited, freed, exhausted := sweep.Chunk(c.Reg, &c.Reg.SweepToBeFnz, c.Reg.CurrentWhite)
		c.creditFree(freed)
		if exhausted {
			c.State = StateSweepEnd
		}
		return int64(visited) * costSweepObject

	case StateSweepEnd:
		c.Reg.Strings.MaybeShrink()
		c.State = StateCallFin
		return 0

	case StateCallFin:
		ran := c.Fin.Run(c.Reg, c.emergency)
		for i := 0; i < ran; i++ {
			c.Stats.FinalizersTotal.Inc()
		}
		if c.emergency || c.Reg.ToBeFnz == nil {
			// An emergency cycle never drains tobefnz (finalize.Driver.Run is
			// a no-op for it) — the pending entries simply carry over and
			// get a real chance to run at the end of the next ordinary
			// cycle. Waiting for them here would stall the allocation this
			// emergency collection exists to serve.
			c.enterPauseAfterCycle()
		}
		return int64(ran) * finCost

	default:
		return 0
	}
}

const finCost = 50 // duplicated from finalize.Cost: charged here, not there

// enterPause resets the gray worklists, marks the root set, and moves to
// StatePropagate — the pause-state actions at the start of every collection
// cycle. The next debt target is computed at the end of a cycle, by
// enterPauseAfterCycle.
func (c *Collector) enterPause() int64 {
	c.Lists.ResetAll()
	white := c.Reg.CurrentWhite

	if c.currentThread != nil {
		mark.MarkObject(&c.Lists, white, c.currentThread)
	}
	mark.MarkObject(&c.Lists, white, c.Reg.RegistryTable)
	for _, mt := range c.Reg.Metatables {
		if mt != nil {
			mark.MarkObject(&c.Lists, white, mt)
		}
	}
	for cur := c.Reg.FixedGC; cur != nil; cur = cur.Header().Next {
		mark.MarkObject(&c.Lists, white, cur)
	}

	c.State = StatePropagate
	return costPropagateDefault
}

// enterPauseAfterCycle closes out a completed cycle: recomputes debt from
// the live-byte estimate taken at atomic-phase end, and returns to
// StatePause.
//
//	GCdebt = gettotalbytes() - (estimate / PAUSE_ADJ) * gcpause
//
// clamped to at most zero: a positive result becomes zero, so the next
// allocation triggers a step instead of the cycle restarting immediately,
// while a negative result lets that many bytes be allocated before CheckGC
// steps again. The new debt is applied
// through setDebt, which redistributes between totalbytes and GCdebt rather
// than simply overwriting debt — GetTotalBytes() itself is unaffected by
// this reset, exactly as luaE_setdebt leaves gettotalbytes() alone.
func (c *Collector) enterPauseAfterCycle() {
	threshold := (int64(c.Reg.GCEstimate) / int64(c.Config.PauseAdj)) * int64(c.Config.GCPause)
	debt := c.GetTotalBytes() - threshold
	if debt > 0 {
		debt = 0
	}
	c.setDebt(debt)
	c.Stats.CyclesTotal.Inc()
	c.cycleID = newCycleID()
	c.State = StatePause
}

// estimateLiveBytes sums the Header.Size (the bytes charged at Register) of
// every object reachable after the atomic phase (i.e. not white), so
// GCEstimate is in the same byte currency as GetTotalBytes() that the pacing
// formula compares it against. Objects never passed through Register, such
// as the main thread and registry table, carry a size of zero.
func (c *Collector) estimateLiveBytes() uint64 {
	var n uint64
	for _, head := range []object.Object{c.Reg.AllGC, c.Reg.FinObj, c.Reg.ToBeFnz, c.Reg.FixedGC} {
		for cur := head; cur != nil; cur = cur.Header().Next {
			if !cur.Header().IsWhite() {
				n += uint64(cur.Header().Size)
			}
		}
	}
	return n
}

func newCycleID() uuid.UUID {
	id, err := uuid.NewRandom()
	if err != nil {
		return uuid.UUID{}
	}
	return id
}
