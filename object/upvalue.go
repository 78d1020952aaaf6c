package object

// Upvalue is open while its value still lives on the owning thread's stack
// (Thread + Index locate the slot) and closed once the enclosing call frame
// has returned, at which point the value is copied into Closed and the
// thread link is dropped. reallymarkobject marks an open upvalue gray (it
// will be retraced through its owning thread) and a closed one black,
// marking its referent immediately.
type Upvalue struct {
	header Header
	Open   bool
	Thread *Thread
	Index  int
	Closed Value

	// NextOpen threads this upvalue into its owning thread's open-upvalue
	// chain; unlinked (nil) once closed.
	NextOpen *Upvalue
}

func (u *Upvalue) Header() *Header { return &u.header }

func NewOpenUpvalue(t *Thread, index int) *Upvalue {
	return &Upvalue{header: Header{Kind: KindUpvalue}, Open: true, Thread: t, Index: index}
}

// Value returns the slot the upvalue currently refers to: the thread's
// stack while open, or its own closed storage afterward.
func (u *Upvalue) Value() Value {
	if u.Open {
		return u.Thread.Stack[u.Index]
	}
	return u.Closed
}

func (u *Upvalue) SetValue(v Value) {
	if u.Open {
		u.Thread.Stack[u.Index] = v
		return
	}
	u.Closed = v
}

// Close copies the current stack value into Closed storage and severs the
// thread link; callers are responsible for unlinking u from the thread's
// open-upvalue chain first (sweep does this for dead upvalues still open).
func (u *Upvalue) Close() {
	if !u.Open {
		return
	}
	u.Closed = u.Thread.Stack[u.Index]
	u.Open = false
	u.Thread = nil
	u.NextOpen = nil
}
