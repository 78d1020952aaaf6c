package gc

import (
	"github.com/lumenvm/gc/mark"
	"github.com/lumenvm/gc/object"
)

// collecting reports whether the tri-color invariant currently needs
// maintaining: either an incremental cycle is mid-flight (State != Pause),
// or generational mode is active, where every already-old black object is a
// standing invariant risk between one synchronous minorCollection and the
// next — minorCollection never leaves State, so gating on State alone would
// silently disable both barriers for the whole of generational mode.
func (c *Collector) collecting() bool {
	return c.State != StatePause || c.Mode == ModeGenerational
}

// BarrierForward implements the forward write barrier: call it
// whenever src, already black, is about to hold a reference to dst. It is
// the cheap choice for objects with few back-pointers (closures, userdata,
// upvalues) — it pays the cost of marking dst immediately rather than
// re-graying src.
func (c *Collector) BarrierForward(src, dst object.Object) {
	if dst == nil || !c.collecting() {
		return
	}
	sh := src.Header()
	dh := dst.Header()
	if !sh.IsBlack() || !dh.IsWhite() {
		return
	}
	if c.State <= StateAtomic {
		mark.MarkObject(&c.Lists, c.Reg.CurrentWhite, dst)
	} else {
		// Already sweeping: marking now would be invisible to a sweep
		// cursor already past dst. Re-whiten src instead so the invariant
		// is restored without resurrecting dst.
		sh.SetWhite(c.Reg.CurrentWhite)
	}
	if c.Mode == ModeGenerational && sh.Age.IsOld() && !dh.Age.IsOld() {
		dh.Age = object.AgeOld0
	}
}

// BarrierBackward implements the backward write barrier: call
// it whenever a black src (always a table in this module) is about to hold
// a reference to some white object. Rather than marking the referent
// directly it re-grays src so the whole table is re-traversed during the
// next propagation round — cheaper than BarrierForward when src has many
// outgoing references that would otherwise each need their own forward
// barrier call.
func (c *Collector) BarrierBackward(src object.Object) {
	if !c.collecting() {
		return
	}
	h := src.Header()
	if !h.IsBlack() {
		return
	}
	h.SetGray()
	c.Lists.GrayAgain.Push(src)
	if c.Mode == ModeGenerational && h.Age == object.AgeOld {
		h.Age = object.AgeTouched1
	}
}
