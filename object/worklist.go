package object

// Worklist is an intrusive singly-linked queue of gray objects, threaded
// through each object's Header.GCList field. It backs gray, grayagain, weak,
// ephemeron, and allweak: five instances of the same
// structure, never five different data types.
type Worklist struct {
	head Object
}

// Push links o at the front of the list. It does not tint o gray — callers
// set the color before or after linking, matching propagatemark's own
// split between "tint" and "link into gclist". Pushing an object already
// linked elsewhere would corrupt the other list, so callers must pop (or
// otherwise unlink) first; this mirrors the original's single-owner
// discipline for gclist.
func (w *Worklist) Push(o Object) {
	h := o.Header()
	h.GCList = w.head
	w.head = o
}

// Pop removes and returns the front object, or nil if the list is empty.
func (w *Worklist) Pop() Object {
	o := w.head
	if o == nil {
		return nil
	}
	h := o.Header()
	w.head = h.GCList
	h.GCList = nil
	return o
}

func (w *Worklist) Empty() bool { return w.head == nil }

// Take detaches the entire list and returns its head, leaving w empty. Used
// by the atomic phase to save grayagain before re-populating it and to splice it back into gray (step 7).
func (w *Worklist) Take() Object {
	h := w.head
	w.head = nil
	return h
}

// Splice appends another detached list (as returned by Take) onto the front
// of w.
func (w *Worklist) Splice(head Object) {
	if head == nil {
		return
	}
	tail := head
	for tail.Header().GCList != nil {
		tail = tail.Header().GCList
	}
	tail.Header().GCList = w.head
	w.head = head
}

// Each walks the list without consuming it — used by the clearing passes in
// the atomic phase that inspect weak/ephemeron/allweak without draining them
// into a traversal queue.
func (w *Worklist) Each(fn func(Object)) {
	for o := w.head; o != nil; o = o.Header().GCList {
		fn(o)
	}
}

// Reset empties the list without tinting anything; used when a fresh cycle
// clears stale worklists.
func (w *Worklist) Reset() { w.head = nil }
