package mark

import (
	"github.com/lumenvm/gc/heap"
	"github.com/lumenvm/gc/object"
)

// DrainGray pops and propagates until l.Gray is empty.
func DrainGray(reg *heap.Registry, l *Lists, white object.MarkBits, emergency bool) {
	for PropagateOne(reg, l, white, PhaseAtomic, emergency) {
	}
}

// ConvergeEphemerons implements the fixed-point convergence over ephemeron tables: marking
// a value may mark a key in another ephemeron table, which may then mark
// further values, so the ephemeron worklist is repeatedly drained and
// re-traversed (alternating direction each round to accelerate chained
// dependencies) until a full pass marks nothing new. Any round that marked
// something drains l.Gray fully before the next round is considered.
func ConvergeEphemerons(reg *heap.Registry, l *Lists, white object.MarkBits, emergency bool) {
	reverse := false
	for {
		head := l.Ephemeron.Take()
		tables := toSlice(head)
		if reverse {
			reverseSlice(tables)
		}
		reverse = !reverse

		markedAny := false
		for _, t := range tables {
			if propagateEphemeronTable(l, white, PhaseAtomic, t) {
				markedAny = true
			}
		}
		if markedAny {
			DrainGray(reg, l, white, emergency)
			continue
		}
		break
	}
}

func toSlice(head object.Object) []*object.Table {
	var out []*object.Table
	for cur := head; cur != nil; {
		next := cur.Header().GCList
		cur.Header().GCList = nil
		if t, ok := cur.(*object.Table); ok {
			out = append(out, t)
		}
		cur = next
	}
	return out
}

func reverseSlice(s []*object.Table) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
