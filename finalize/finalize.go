// Package finalize hosts finalizer invocation in a protected call context
//: at most FIN_MAX per step, each costing FIN_COST work units,
// never run during an emergency collection.
package finalize

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/lumenvm/gc/heap"
	"github.com/lumenvm/gc/object"
)

const (
	Max  = 10 // FIN_MAX
	Cost = 50 // FIN_COST, work units
)

// Driver pops pending finalizable objects off tobefnz and invokes their
// finalizers. GCStopped mirrors the original's GCSTP guard: set for the
// duration of a single finalizer call to prevent a finalizer from
// triggering a reentrant GC step.
type Driver struct {
	Log       logrus.FieldLogger
	GCStopped bool
}

// Run invokes up to Max finalizers, returning how many actually ran (the
// caller charges Cost work units per invocation, whether or not a finalizer
// function was present — relinking and re-tinting the object is real work
// either way). Emergency cycles never invoke finalizers.
func (d *Driver) Run(reg *heap.Registry, emergency bool) int {
	if emergency {
		return 0
	}
	ran := 0
	for ran < Max {
		o := reg.ToBeFnz
		if o == nil {
			break
		}
		h := o.Header()
		reg.ToBeFnz = h.Next

		h.Next = reg.AllGC
		reg.AllGC = o
		h.SetFinalized(false)
		h.SetWhite(reg.CurrentWhite)

		fin := reg.Finalizers[o]
		delete(reg.Finalizers, o)
		if fin != nil {
			d.call(o, fin)
		}
		ran++
	}
	return ran
}

// call invokes fin under a protected context: disables reentrant GC steps
// for its duration and recovers any panic, logging a warning and never
// re-raising.
func (d *Driver) call(o object.Object, fin heap.Finalizer) {
	d.GCStopped = true
	defer func() {
		d.GCStopped = false
		if r := recover(); r != nil {
			err := errors.Errorf("finalizer panic: %v", r)
			if d.Log != nil {
				d.Log.WithField("kind", o.Header().Kind).Warn(err)
			}
		}
	}()
	fin(o)
}
