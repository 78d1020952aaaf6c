package mark

import "github.com/lumenvm/gc/object"

// MarkValue marks v's referent if v holds one and it is white — the
// markvalue(g, o) helper every traversal site calls before recursing into a
// slot.
func MarkValue(l *Lists, white object.MarkBits, v object.Value) {
	if v.IsObject() {
		MarkObject(l, white, v.Obj)
	}
}

// MarkObject marks o if it is white (the reallymarkobject entry point). It
// is a no-op for anything already gray or black.
func MarkObject(l *Lists, white object.MarkBits, o object.Object) {
	if o == nil {
		return
	}
	h := o.Header()
	if !h.IsWhite() {
		return
	}
	switch v := o.(type) {
	case *object.StringObj:
		h.SetBlack()

	case *object.Upvalue:
		if v.Open {
			h.SetGray()
			// Reachable indirectly through its owning thread; no further
			// recursion here.
		} else {
			h.SetBlack()
			MarkValue(l, white, v.Closed)
		}

	case *object.UserData:
		if !v.HasUserValues() {
			if v.Metatable != nil {
				MarkObject(l, white, v.Metatable)
			}
			h.SetBlack()
		} else {
			h.SetGray()
			l.Gray.Push(o)
		}

	default:
		// Table, closures, proto, thread: all gray, pushed to the active
		// worklist for later propagation.
		h.SetGray()
		l.Gray.Push(o)
	}
}
