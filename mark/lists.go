// Package mark implements the tri-color marker: reallymarkobject,
// propagatemark's per-kind traversal, ephemeron convergence, and the atomic
// phase that closes out a cycle.
package mark

import "github.com/lumenvm/gc/object"

// Lists holds the five gray worklists. They are
// transient per cycle; Collector.enterPause resets them to empty, and a
// zero Lists is already empty.
type Lists struct {
	Gray      object.Worklist
	GrayAgain object.Worklist
	Weak      object.Worklist
	Ephemeron object.Worklist
	AllWeak   object.Worklist
}

func (l *Lists) ResetAll() {
	l.Gray.Reset()
	l.GrayAgain.Reset()
	l.Weak.Reset()
	l.Ephemeron.Reset()
	l.AllWeak.Reset()
}
