// Package heap tracks every collectable object on the intrusive lists
// (allgc, finobj, tobefnz, fixedgc), plus the small fixed root set (main
// thread, registry table, per-type metatables, twups, short-string intern
// table). It owns allocation and the mechanics of moving an object between
// lists; it does not decide WHEN to collect — that's gc.Collector.
package heap

import (
	"github.com/lumenvm/gc/object"
)

const NumBaseTypes = 9 // one metatable slot per object.Kind

// Registry is the single owned record of all GC-visible process-wide state,
// grounded on mheap/mcache's role as the allocator-facing
// half of the collector, generalized from spans to this module's intrusive
// object lists. Callers must not duplicate it.
type Registry struct {
	AllGC   object.Object
	FinObj  object.Object
	ToBeFnz object.Object
	FixedGC object.Object

	// Generational cursors partition AllGC from newest to oldest:
	// AllGC(head) -> Survival -> Old1 -> ReallyOld -> nil. FirstOld1
	// shortcuts to the earliest OLD1 object. A mirror set exists for FinObj.
	Survival  object.Object
	Old1      object.Object
	ReallyOld object.Object
	FirstOld1 object.Object

	FinObjSurvival  object.Object
	FinObjOld1      object.Object
	FinObjReallyOld object.Object

	CurrentWhite object.MarkBits

	// Roots.
	MainThread    *object.Thread
	RegistryTable *object.Table
	Metatables    [NumBaseTypes]*object.Table
	Twups         *object.Thread
	Strings       *StringTable
	Finalizers    map[object.Object]Finalizer

	// SweepAllGC/SweepFinObj/SweepToBeFnz are the sweeper's cursors: each
	// addresses a single Object-typed slot (a list head, or a Header.Next
	// field partway down a list) and is advanced/rewritten in place by
	// package sweep across many bounded invocations.
	SweepAllGC   *object.Object
	SweepFinObj  *object.Object
	SweepToBeFnz *object.Object

	GCEstimate uint64 // live-byte estimate recomputed at the end of atomic
}

// New returns a Registry with a fresh main thread and registry table, both
// on AllGC and tinted the initial current-white. FixedGC starts empty.
func New() *Registry {
	r := &Registry{CurrentWhite: object.White0}
	r.Strings = NewStringTable()
	r.MainThread = object.NewThread(64)
	r.pushAllGC(r.MainThread)
	r.MainThread.Header().SetWhite(r.CurrentWhite)
	r.RegistryTable = object.NewTable()
	r.pushAllGC(r.RegistryTable)
	r.RegistryTable.Header().SetWhite(r.CurrentWhite)
	return r
}

func (r *Registry) pushAllGC(o object.Object) {
	o.Header().Next = r.AllGC
	r.AllGC = o
}

// NewObject registers o on AllGC, tinted the current white. This is the
// `new_object` contract: every allocation mid-cycle uses the
// current white per invariant 7.
func (r *Registry) NewObject(o object.Object) object.Object {
	o.Header().SetWhite(r.CurrentWhite)
	r.pushAllGC(o)
	return o
}

// Fix moves o from the head of AllGC to FixedGC, tints it gray, and sets
// its age to OLD. Precondition: o is the current AllGC
// head — callers fix objects immediately after allocating them, before
// anything else can be prepended.
func (r *Registry) Fix(o object.Object) {
	if r.AllGC != o {
		panic("heap: Fix precondition violated: o is not the allgc head")
	}
	r.AllGC = o.Header().Next
	o.Header().Next = r.FixedGC
	r.FixedGC = o
	o.Header().SetGray()
	o.Header().Age = object.AgeOld
}

// Finalizer is a host-supplied finalizer callback, invoked with the object
// it was attached to as its sole argument.
type Finalizer func(object.Object)

// CheckFinalizer migrates o from AllGC to FinObj the first time a
// finalizer-bearing metatable is installed on it. It is a no-op if o is already finalizable or
// already pending finalization — the idempotence guard
// original_source/lgc.c's luaC_checkfinalizer keeps —
// or if the runtime is closing.
func (r *Registry) CheckFinalizer(o object.Object, fin Finalizer, closing bool) {
	if fin == nil || closing {
		return
	}
	h := o.Header()
	if h.IsFinalized() {
		return
	}
	if !r.unlinkAllGC(o) {
		// Already off allgc (e.g. already in finobj/tobefnz): nothing to do.
		return
	}
	if r.Finalizers == nil {
		r.Finalizers = make(map[object.Object]Finalizer)
	}
	r.Finalizers[o] = fin
	h.SetFinalized(true)
	h.Next = r.FinObj
	r.FinObj = o
}

// unlinkAllGC removes o from AllGC (and, if present, the sweep cursor and
// generational cursors that might point at it), returning false if o was
// not found on AllGC at all.
func (r *Registry) unlinkAllGC(o object.Object) bool {
	if r.AllGC == o {
		r.AllGC = o.Header().Next
		if r.SweepAllGC == &o.Header().Next {
			r.SweepAllGC = &r.AllGC
		}
		r.advanceCursorsPast(o)
		return true
	}
	for cur := r.AllGC; cur != nil; cur = cur.Header().Next {
		if cur.Header().Next == o {
			cur.Header().Next = o.Header().Next
			if r.SweepAllGC == &o.Header().Next {
				r.SweepAllGC = &cur.Header().Next
			}
			r.advanceCursorsPast(o)
			return true
		}
	}
	return false
}

func (r *Registry) advanceCursorsPast(o object.Object) {
	if r.Survival == o {
		r.Survival = o.Header().Next
	}
	if r.Old1 == o {
		r.Old1 = o.Header().Next
	}
	if r.ReallyOld == o {
		r.ReallyOld = o.Header().Next
	}
	if r.FirstOld1 == o {
		r.FirstOld1 = o.Header().Next
	}
	// SweepAllGC is adjusted by unlinkAllGC, not here: when it addresses o's
	// own Next slot it is moved back to the slot that pointed at o (either
	// &r.AllGC or &predecessor.Next), which the splice has just rewritten.
}

// BeginSweepAllGC, BeginSweepFinObj, and BeginSweepToBeFnz position each
// sweeper cursor at the address of its list's head field, ready for
// sweep.ToLive followed by repeated sweep.Chunk calls. Called once when the
// scheduler transitions into the corresponding sweep state.
func (r *Registry) BeginSweepAllGC()   { r.SweepAllGC = &r.AllGC }
func (r *Registry) BeginSweepFinObj()  { r.SweepFinObj = &r.FinObj }
func (r *Registry) BeginSweepToBeFnz() { r.SweepToBeFnz = &r.ToBeFnz }

// FlipWhite swaps the current white tint: future
// allocations are tinted the new current white, and any remaining
// previous-white objects are, by definition, dead as of this flip.
func (r *Registry) FlipWhite() {
	r.CurrentWhite = object.OtherWhite(r.CurrentWhite)
}

// TotalObjects is a debug/test helper: counts objects across all four
// lists, used to assert list disjointness holds by
// construction.
func (r *Registry) TotalObjects() int {
	n := 0
	for _, head := range []object.Object{r.AllGC, r.FinObj, r.ToBeFnz, r.FixedGC} {
		for cur := head; cur != nil; cur = cur.Header().Next {
			n++
		}
	}
	return n
}
