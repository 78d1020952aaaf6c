// Package sweep implements the chunked sweeper: walking
// allgc, finobj, and tobefnz in bounded chunks, freeing dead objects and
// re-tinting survivors.
package sweep

import (
	"github.com/lumenvm/gc/heap"
	"github.com/lumenvm/gc/object"
)

const Max = 100 // SWEEP_MAX

// Cursor addresses a single Object-typed storage slot: either a Registry
// list-head field or a Header.Next field inside some object already on the
// list. It plays the same role the original's GCObject** plays in
// sweeplist/sweeptolive — a slot can be advanced across list elements and
// overwritten in place to unlink a dead one, whether that slot happens to be
// the list's head variable or the middle of the chain.
type Cursor = *object.Object

// ToLive advances *slot past the maximal dead prefix starting at **slot,
// freeing every object along the way, and returns once the slot holds nil
// (list exhausted) or points at a live survivor. This runs once, uncounted
// against Max, when a sweep phase is entered — it is what lets new
// allocations be safely prepended at the list head without disturbing
// the bounded-chunk cursor that resumes later. It returns the total size of
// every object freed, for the caller to credit back against debt.
func ToLive(reg *heap.Registry, slot *Cursor, currentWhite object.MarkBits) (freed uintptr) {
	cur := *slot
	for {
		node := *cur
		if node == nil {
			break
		}
		if !node.Header().IsDead(currentWhite) {
			break
		}
		*cur = node.Header().Next
		freed += free(reg, node)
	}
	*slot = cur
	return freed
}

// Chunk sweeps at most Max objects starting at **slot, writing the advanced
// cursor back through slot so the next call resumes where this one left
// off. It returns the number of objects visited, the total size of every
// object freed along the way, and whether the list was exhausted.
func Chunk(reg *heap.Registry, slot *Cursor, currentWhite object.MarkBits) (visited int, freed uintptr, exhausted bool) {
	cur := *slot
	for visited < Max {
		node := *cur
		if node == nil {
			exhausted = true
			break
		}
		visited++
		if node.Header().IsDead(currentWhite) {
			*cur = node.Header().Next
			freed += free(reg, node)
			continue
		}
		h := node.Header()
		h.Mark = 0
		h.SetWhite(currentWhite)
		cur = &h.Next
	}
	*slot = cur
	return visited, freed, exhausted || *cur == nil
}

// Free performs the same per-kind teardown as the chunked sweeper's own
// dead-object path, for callers that need to retire a single object outside
// ToLive/Chunk — minor collection's young-region sweep, in particular.
func Free(reg *heap.Registry, o object.Object) uintptr {
	return free(reg, o)
}

// free dispatches kind-specific teardown, drops the node from whichever
// collectable state still references it, and returns its charged size.
func free(reg *heap.Registry, o object.Object) uintptr {
	switch v := o.(type) {
	case *object.StringObj:
		if v.Header().Kind == object.KindShortString {
			reg.Strings.Remove(v)
		}
	case *object.Upvalue:
		if v.Open {
			v.Thread.RemoveOpenUpvalue(v)
		}
	case *object.Thread:
		v.Stack = nil
		v.OpenUpvalues = nil
	}
	return o.Header().Size
}
