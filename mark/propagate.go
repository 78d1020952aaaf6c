package mark

import (
	"github.com/lumenvm/gc/heap"
	"github.com/lumenvm/gc/object"
)

// Phase tells propagation-sensitive traversal (weak tables, ephemerons,
// threads) whether it is running during ordinary propagation or during the
// atomic phase's re-traversal, since several spec rules key off exactly
// that distinction.
type Phase uint8

const (
	PhasePropagate Phase = iota
	PhaseAtomic
)

// PropagateOne pops one object from l.Gray, blackens it, and dispatches on
// kind. It reports whether the queue was
// non-empty (false means the caller should move on, e.g. to enteratomic).
func PropagateOne(reg *heap.Registry, l *Lists, white object.MarkBits, phase Phase, emergency bool) bool {
	o := l.Gray.Pop()
	if o == nil {
		return false
	}
	h := o.Header()
	h.SetBlack()

	switch v := o.(type) {
	case *object.Table:
		propagateTable(l, white, phase, v)
	case *object.UserData:
		if v.Metatable != nil {
			MarkObject(l, white, v.Metatable)
		}
		for _, uv := range v.UserValues {
			MarkValue(l, white, uv)
		}
	case *object.Proto:
		propagateProto(l, white, v)
	case *object.ClosureGo:
		for _, uv := range v.Upvalues {
			MarkValue(l, white, uv)
		}
	case *object.ClosureLua:
		if v.Proto != nil {
			MarkObject(l, white, v.Proto)
		}
		for _, uv := range v.Upvalues {
			if uv != nil {
				MarkObject(l, white, uv)
			}
		}
	case *object.Thread:
		propagateThread(reg, l, white, phase, emergency, v)
	}
	return true
}

func propagateProto(l *Lists, white object.MarkBits, p *object.Proto) {
	if p.Source != nil {
		MarkObject(l, white, p.Source)
	}
	for _, c := range p.Constants {
		MarkValue(l, white, c)
	}
	for _, n := range p.UpvalueNames {
		if n != nil {
			MarkObject(l, white, n)
		}
	}
	for _, np := range p.Protos {
		if np != nil {
			MarkObject(l, white, np)
		}
	}
	for _, n := range p.LocalNames {
		if n != nil {
			MarkObject(l, white, n)
		}
	}
}

// propagateTable implements the strong / weak-value / ephemeron / all-weak
// dispatch, decoding weakness once per traversal.
func propagateTable(l *Lists, white object.MarkBits, phase Phase, t *object.Table) {
	weakKeys, weakValues := t.Mode()

	switch {
	case !weakKeys && !weakValues:
		propagateStrongTable(l, white, t)
	case !weakKeys && weakValues:
		propagateWeakValueTable(l, white, phase, t)
	case weakKeys && !weakValues:
		propagateEphemeronTable(l, white, phase, t)
	default: // weakKeys && weakValues: all-weak, no traversal at all
		l.AllWeak.Push(t)
	}
}

func propagateStrongTable(l *Lists, white object.MarkBits, t *object.Table) {
	for _, v := range t.Array {
		MarkValue(l, white, v)
	}
	for _, n := range t.Nodes {
		if n.Dead {
			continue
		}
		if n.Val.IsEmpty() {
			n.Clear()
			continue
		}
		MarkValue(l, white, n.Key)
		MarkValue(l, white, n.Val)
	}
}

func propagateWeakValueTable(l *Lists, white object.MarkBits, phase Phase, t *object.Table) {
	anyWhiteValue := false
	for _, n := range t.Nodes {
		if n.Dead {
			continue
		}
		if n.Val.IsEmpty() {
			n.Clear()
			continue
		}
		MarkValue(l, white, n.Key)
		if n.Val.IsObject() && n.Val.Obj.Header().IsWhite() {
			anyWhiteValue = true
		}
	}
	if phase == PhasePropagate || anyWhiteValue {
		if phase == PhasePropagate {
			l.GrayAgain.Push(t)
		} else {
			l.Weak.Push(t)
		}
	}
}

// propagateEphemeronTable handles the ephemeron case: it links the table
// onto grayagain, ephemeron, or allweak as its entries require, and returns
// whether it newly marked any hash-part value, the signal
// ConvergeEphemerons reads to decide whether another pass is needed.
func propagateEphemeronTable(l *Lists, white object.MarkBits, phase Phase, t *object.Table) bool {
	marked := false
	for _, v := range t.Array {
		MarkValue(l, white, v)
	}
	hasClears := false
	hasWW := false
	for _, n := range t.Nodes {
		if n.Dead {
			continue
		}
		if n.Val.IsEmpty() {
			n.Clear()
			continue
		}
		keyWhite := n.Key.IsObject() && n.Key.Obj.Header().IsWhite()
		if keyWhite {
			hasClears = true
			if n.Val.IsObject() && n.Val.Obj.Header().IsWhite() {
				hasWW = true
			}
			continue
		}
		// Key already marked: safe to mark the value now.
		before := false
		if n.Val.IsObject() {
			before = n.Val.Obj.Header().IsWhite()
		}
		MarkValue(l, white, n.Val)
		if before {
			marked = true
		}
	}
	switch {
	case phase == PhasePropagate:
		l.GrayAgain.Push(t)
	case hasWW:
		l.Ephemeron.Push(t)
	case hasClears:
		l.AllWeak.Push(t)
	}
	return marked
}

func propagateThread(reg *heap.Registry, l *Lists, white object.MarkBits, phase Phase, emergency bool, th *object.Thread) {
	if th.Header().Age.IsOld() || phase == PhasePropagate {
		l.GrayAgain.Push(th)
	}
	if !th.StackOK {
		return
	}
	for i := 0; i < th.Top; i++ {
		MarkValue(l, white, th.Stack[i])
	}
	for uv := th.OpenUpvalues; uv != nil; uv = uv.NextOpen {
		MarkObject(l, white, uv)
	}
	if phase == PhaseAtomic {
		if !emergency {
			th.ShrinkStack()
		}
		th.NilUnusedSlots()
		if th.HasOpenUpvalues() {
			LinkTwups(reg, th)
		}
	}
}

// LinkTwups links th at the head of the registry's twups list if it is not
// already linked (TwupsSelf sentinel true means "not in list").
func LinkTwups(reg *heap.Registry, th *object.Thread) {
	if !th.TwupsSelf {
		return // already linked
	}
	th.TwupsSelf = false
	th.TwupsNext = reg.Twups
	reg.Twups = th
}
