package mark

import (
	"github.com/lumenvm/gc/heap"
	"github.com/lumenvm/gc/object"
)

// AtomicPhase executes the sixteen-step atomic closing sequence as a single
// indivisible step: no mutator code runs between steps 1 and 16. currentG is
// the thread that triggered the step (it may not be reg.MainThread and may
// not yet have been traversed this cycle).
func AtomicPhase(reg *heap.Registry, l *Lists, currentG *object.Thread, emergency bool) {
	white := reg.CurrentWhite

	// 1. Save and clear grayagain.
	saved := l.GrayAgain.Take()

	// 2. Mark the currently executing thread.
	if currentG != nil {
		MarkObject(l, white, currentG)
	}

	// 3. Re-mark registry and per-type metatables.
	MarkObject(l, white, reg.RegistryTable)
	for _, mt := range reg.Metatables {
		if mt != nil {
			MarkObject(l, white, mt)
		}
	}

	// 4. Drain gray.
	DrainGray(reg, l, white, emergency)

	// 5. Remark upvalues of potentially-dead threads.
	RemarkUpvals(reg, l, white)

	// 6. Drain gray again.
	DrainGray(reg, l, white, emergency)

	// 7. Splice saved grayagain into gray and drain.
	l.Gray.Splice(saved)
	DrainGray(reg, l, white, emergency)

	// 8. Ephemeron convergence.
	ConvergeEphemerons(reg, l, white, emergency)

	// 9. Clear weak values (weak + allweak).
	clearDeadValues(&l.Weak)
	clearDeadValues(&l.AllWeak)

	// 10. Separate finalizers: move unmarked finobj entries to tobefnz.
	separateFinalizers(reg)

	// 11. Mark every object on tobefnz (resurrection) and drain gray.
	for cur := reg.ToBeFnz; cur != nil; cur = cur.Header().Next {
		MarkObject(l, white, cur)
	}
	DrainGray(reg, l, white, emergency)

	// 12. Re-converge ephemerons: step 10/11 may have resurrected keys.
	ConvergeEphemerons(reg, l, white, emergency)

	// 13. Clear weak keys (ephemeron + allweak).
	clearDeadKeys(&l.Ephemeron)
	clearDeadKeys(&l.AllWeak)

	// 14. Clear value-only weak tables again: resurrection/convergence may
	// have added fresh entries to l.Weak after step 9 already ran. Walking
	// the whole list again is a safe superset of "only entries added since
	// step 9" (clearing is idempotent) — see DESIGN.md for the simplification
	// from the original's saved-head-pointer delta.
	clearDeadValues(&l.Weak)

	// 15. Clear the short-string intern cache of dead entries, before step
	// 16's flip. Marked strings are black and never look dead; an unmarked
	// string still carries the current white, which is the "other" white
	// relative to OtherWhite(white), so that is what ClearDead is passed.
	reg.Strings.ClearDead(object.OtherWhite(white))

	// 16. Flip current white.
	reg.FlipWhite()
}

// RemarkUpvals handles the case where a thread may be dead yet one of
// its open upvalues still reachable through a closure captured elsewhere;
// that upvalue's referent lives on the dead thread's stack and must be kept
// alive. Walks twups once; threads that are marked and still have open
// upvalues stay in the list, everything else is removed (its twups link set
// back to the "not linked" sentinel).
func RemarkUpvals(reg *heap.Registry, l *Lists, white object.MarkBits) {
	var kept *object.Thread
	cur := reg.Twups
	for cur != nil {
		next := cur.TwupsNext
		if !cur.Header().IsWhite() && cur.HasOpenUpvalues() {
			cur.TwupsNext = kept
			kept = cur
		} else {
			cur.TwupsSelf = true
			cur.TwupsNext = nil
			for uv := cur.OpenUpvalues; uv != nil; uv = uv.NextOpen {
				if uv.Header().IsGray() {
					MarkValue(l, white, uv.Value())
				}
			}
		}
		cur = next
	}
	reg.Twups = kept
}

func clearDeadValues(w *object.Worklist) {
	w.Each(func(o object.Object) {
		t, ok := o.(*object.Table)
		if !ok {
			return
		}
		for _, n := range t.Nodes {
			if n.Dead {
				continue
			}
			if n.Val.IsObject() && n.Val.Obj.Header().IsWhite() {
				n.Clear()
			}
		}
	})
}

func clearDeadKeys(w *object.Worklist) {
	w.Each(func(o object.Object) {
		t, ok := o.(*object.Table)
		if !ok {
			return
		}
		for _, n := range t.Nodes {
			if n.Dead {
				continue
			}
			if n.Key.IsObject() && n.Key.Obj.Header().IsWhite() {
				n.Clear()
			}
		}
	})
}

// separateFinalizers walks finobj, moving every unmarked (white) object —
// which by finobj's own invariant always has a finalizer — to tobefnz.
func separateFinalizers(reg *heap.Registry) {
	var kept object.Object
	cur := reg.FinObj
	for cur != nil {
		next := cur.Header().Next
		if cur.Header().IsWhite() {
			cur.Header().Next = reg.ToBeFnz
			reg.ToBeFnz = cur
		} else {
			cur.Header().Next = kept
			kept = cur
		}
		cur = next
	}
	reg.FinObj = kept
}
