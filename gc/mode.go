package gc

import (
	"github.com/lumenvm/gc/mark"
	"github.com/lumenvm/gc/object"
	"github.com/lumenvm/gc/sweep"
)

// ChangeMode switches between incremental and generational collection. Any
// cycle already in progress is first run to completion via FullGC, so the
// two modes never interleave mid-cycle; entering generational mode always
// runs a full collection, even from StatePause. Entering generational mode
// then runs sweep2old over the freshly-collected heap; entering incremental
// mode demotes ages and whitelists everything so the next incremental cycle
// starts from a clean slate.
func (c *Collector) ChangeMode(mode Mode) {
	if c.Mode == mode {
		return
	}
	if c.State != StatePause || mode == ModeGenerational {
		c.FullGC(false)
	}
	switch mode {
	case ModeGenerational:
		c.sweep2old()
	case ModeIncremental:
		c.demoteAllAges()
		c.clearGenerationalCursors()
	}
	c.Mode = mode
}

// sweep2old implements the generational entry transition: every object
// still alive after the full cycle FullGC just ran has already survived at
// least one complete trace, so it is tinted OLD outright, the way the
// original's sweep2old skips the survival/old1 steps for a mode switch.
// Threads are pushed back onto grayagain (their stacks must be rescanned
// every minor cycle) and any open upvalue they hold is regrayed for the
// same reason. ReallyOld/FinObjReallyOld are pinned at the current list
// heads, so minorCollection's young region is exactly "allocated since this
// switch" until the next mode change.
func (c *Collector) sweep2old() {
	for _, head := range []object.Object{c.Reg.AllGC, c.Reg.FinObj, c.Reg.FixedGC} {
		for cur := head; cur != nil; cur = cur.Header().Next {
			h := cur.Header()
			h.Age = object.AgeOld
			if th, ok := cur.(*object.Thread); ok {
				h.SetGray()
				c.Lists.GrayAgain.Push(th)
				for uv := th.OpenUpvalues; uv != nil; uv = uv.NextOpen {
					uv.Header().SetGray()
				}
			}
		}
	}
	c.Reg.ReallyOld = c.Reg.AllGC
	c.Reg.FinObjReallyOld = c.Reg.FinObj
	c.Reg.Survival = nil
	c.Reg.Old1 = nil
	c.Reg.FirstOld1 = nil
	c.Reg.FinObjSurvival = nil
	c.Reg.FinObjOld1 = nil
	c.genMajorBaseline = c.estimateLiveBytes()
}

// clearGenerationalCursors implements the "into incremental" half of a mode
// switch: every object on allgc, finobj, and tobefnz is whitelisted (tinted
// the current white) so the next incremental cycle finds a clean slate
// instead of stale black/gray bits left over from generational collection,
// and the generational cursors are cleared since incremental mode never
// consults them.
func (c *Collector) clearGenerationalCursors() {
	white := c.Reg.CurrentWhite
	for _, head := range []object.Object{c.Reg.AllGC, c.Reg.FinObj, c.Reg.ToBeFnz} {
		for cur := head; cur != nil; cur = cur.Header().Next {
			cur.Header().SetWhite(white)
		}
	}
	c.Reg.Survival, c.Reg.Old1, c.Reg.ReallyOld, c.Reg.FirstOld1 = nil, nil, nil, nil
	c.Reg.FinObjSurvival, c.Reg.FinObjOld1, c.Reg.FinObjReallyOld = nil, nil, nil
	c.State = StatePause
}

// minorCollection implements `youngcollection`: a synchronous mini-cycle
// run directly from CheckGC in generational mode instead of an incremental
// step. It marks the root set plus whatever grayagain has accumulated since
// the last cycle (threads pinned there by sweep2old, tables/threads
// repushed by the backward write barrier), propagates, and then sweeps only
// the young region of allgc and finobj — everything between each list's
// head and its ReallyOld cursor. Objects past that cursor are never swept by
// a minor collection; they are traversed only when reached from the root
// set or from grayagain.
//
// If live bytes have grown past genMajorBaseline by more than GenMajorMul
// percent, a full incremental cycle runs first and sweep2old re-baselines,
// the way genstep falls back to a full collection when the young
// generation alone is no longer keeping the heap in check.
func (c *Collector) minorCollection() {
	if c.closing || c.inStep {
		return
	}

	if c.genMajorBaseline > 0 {
		live := c.estimateLiveBytes()
		if live*100 > c.genMajorBaseline*uint64(100+c.Config.GenMajorMul) {
			c.FullGC(false)
			c.sweep2old()
		}
	}

	c.inStep = true
	defer func() { c.inStep = false }()

	white := c.Reg.CurrentWhite
	c.Lists.Gray.Splice(c.Lists.GrayAgain.Take())

	if c.currentThread != nil {
		mark.MarkObject(&c.Lists, white, c.currentThread)
	}
	mark.MarkObject(&c.Lists, white, c.Reg.RegistryTable)
	for _, mt := range c.Reg.Metatables {
		if mt != nil {
			mark.MarkObject(&c.Lists, white, mt)
		}
	}

	for mark.PropagateOne(c.Reg, &c.Lists, white, mark.PhasePropagate, false) {
	}

	var freed uintptr
	freed += c.sweepYoung(&c.Reg.AllGC, c.Reg.ReallyOld)
	freed += c.sweepYoung(&c.Reg.FinObj, c.Reg.FinObjReallyOld)
	c.creditFree(freed)

	debt := -((c.GetTotalBytes() / 100) * int64(c.Config.GenMinorMul))
	c.setDebt(debt)

	c.Stats.CyclesTotal.Inc()
	c.cycleID = newCycleID()
}

// sweepYoung walks *head up to (not including) boundary, freeing anything
// still white (unreached by minorCollection's mark phase) and advancing the
// surviving rest one step up the age ladder, stopping at AgeOld — the
// bump equivalent to the survival->old1->old promotions a real object
// would get relocated through, simplified here to an in-place age bump
// since this implementation does not relocate nodes between cohorts.
func (c *Collector) sweepYoung(head *object.Object, boundary object.Object) uintptr {
	var freed uintptr
	cur := head
	for {
		node := *cur
		if node == nil || node == boundary {
			break
		}
		if node.Header().IsWhite() {
			*cur = node.Header().Next
			freed += sweep.Free(c.Reg, node)
			continue
		}
		h := node.Header()
		if h.Age < object.AgeOld {
			h.Age++
		}
		h.SetBlack()
		cur = &h.Next
	}
	return freed
}

// demoteAllAges resets every live object's age to AgeOld on a
// generational-to-incremental switch: incremental mode does not consult
// age at all, but leaving stale TOUCHED1/TOUCHED2 ages around would
// confuse a later switch back to generational.
func (c *Collector) demoteAllAges() {
	for _, head := range []object.Object{c.Reg.AllGC, c.Reg.FinObj, c.Reg.FixedGC} {
		for cur := head; cur != nil; cur = cur.Header().Next {
			cur.Header().Age = object.AgeOld
		}
	}
}

// FullGC implements the full-collection entry point: drive the
// state machine from wherever it is straight through to the next
// StatePause, without the usual step-size throttling. emergency marks the
// cycle so finalizers are skipped and stacks are never shrunk mid-traversal.
func (c *Collector) FullGC(emergency bool) {
	if c.closing {
		return
	}
	if c.inStep || c.Fin.GCStopped {
		// A finalizer (or other reentrant caller) asked for a nested
		// emergency collection; refuse, mirroring the GCSTP guard.
		return
	}
	c.inStep = true
	c.emergency = emergency
	defer func() {
		c.emergency = false
		c.inStep = false
	}()

	if c.State == StatePause {
		c.enterPause()
	}
	for c.State != StatePause {
		c.singleStep()
	}
}

// FreeAll implements the shutdown contract: run every pending
// finalizer, free every object except the main thread, then free fixedgc.
// Once FreeAll returns, closing is permanent — CheckFinalizer becomes a
// no-op and Step, FullGC, and minorCollection return without doing any work.
// Register and Fix still link objects onto their lists.
func (c *Collector) FreeAll() {
	if c.closing {
		return
	}
	c.closing = true

	c.runAllFinalizers()

	c.freeListExceptMainThread(&c.Reg.AllGC)
	c.freeListExceptMainThread(&c.Reg.FinObj)
	c.freeListExceptMainThread(&c.Reg.ToBeFnz)
	c.freeListExceptMainThread(&c.Reg.FixedGC)
}

// runAllFinalizers drives separateFinalizers-equivalent cleanup by force:
// moves every object still carrying a pending finalizer onto tobefnz and
// runs the finalizer driver until it drains, ignoring the usual per-step
// FIN_MAX cap.
func (c *Collector) runAllFinalizers() {
	var kept object.Object
	cur := c.Reg.FinObj
	for cur != nil {
		next := cur.Header().Next
		cur.Header().Next = c.Reg.ToBeFnz
		c.Reg.ToBeFnz = cur
		cur = next
	}
	c.Reg.FinObj = kept

	for c.Reg.ToBeFnz != nil {
		c.Fin.Run(c.Reg, false)
	}
}

// freeListExceptMainThread walks *head, unlinking and discarding every
// object except the registry's main thread (which the host may still be
// holding a reference to during shutdown).
func (c *Collector) freeListExceptMainThread(head *object.Object) {
	var kept object.Object
	cur := *head
	for cur != nil {
		next := cur.Header().Next
		if cur == c.Reg.MainThread {
			cur.Header().Next = kept
			kept = cur
		}
		cur = next
	}
	*head = kept
}
