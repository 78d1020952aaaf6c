// Package gc is the scheduler / mode controller: it owns debt
// accounting, step pacing, the pause→propagate→...→callfin state machine,
// mode transitions, full-GC entry, and the write barriers the mutator calls
// at the boundary between itself and the marker. Besides this package, the
// host runtime imports package object for the collectable kinds it registers.
package gc

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/lumenvm/gc/finalize"
	"github.com/lumenvm/gc/heap"
	"github.com/lumenvm/gc/mark"
	"github.com/lumenvm/gc/metrics"
	"github.com/lumenvm/gc/object"
)

// State is the scheduler's own phase, distinct from object.ThreadState.
type State uint8

const (
	StatePause State = iota
	StatePropagate
	StateEnterAtomic
	StateAtomic
	StateSweepAllGC
	StateSweepFinObj
	StateSweepToBeFnz
	StateSweepEnd
	StateCallFin
)

func (s State) String() string {
	switch s {
	case StatePause:
		return "pause"
	case StatePropagate:
		return "propagate"
	case StateEnterAtomic:
		return "enteratomic"
	case StateAtomic:
		return "atomic"
	case StateSweepAllGC:
		return "sweep-allgc"
	case StateSweepFinObj:
		return "sweep-finobj"
	case StateSweepToBeFnz:
		return "sweep-tobefnz"
	case StateSweepEnd:
		return "sweep-end"
	case StateCallFin:
		return "callfin"
	default:
		return "state?"
	}
}

// Mode is incremental or generational.
type Mode uint8

const (
	ModeIncremental Mode = iota
	ModeGenerational
)

// Collector is the single owned record of all GC state: the heap registry,
// the gray worklists, debt counters, and the current state/mode. The host
// must not duplicate it.
type Collector struct {
	Reg    *heap.Registry
	Lists  mark.Lists
	Fin    finalize.Driver
	Config Config
	Log    logrus.FieldLogger
	Stats  *metrics.Collector

	State State
	Mode  Mode

	totalBytes int64 // totalbytes: allocator estimate minus GCdebt
	debt       int64 // GCdebt: bytes allocated since last charge, credited back on free

	currentThread *object.Thread // thread executing when the step was triggered
	emergency     bool
	closing       bool
	inStep        bool // gcstopem: forbids reentrant emergency GC mid-step

	genMajorBaseline uint64 // live-byte estimate as of the last sweep2old/major pass

	cycleID uuid.UUID
}

// New constructs a Collector with a fresh Registry, ready in StatePause,
// incremental mode.
func New(opts ...Option) *Collector {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	c := &Collector{
		Reg:    heap.New(),
		Config: cfg,
		Log:    logrus.StandardLogger(),
		Stats:  metrics.New("lumenvm"),
		State:  StatePause,
		Mode:   ModeIncremental,
	}
	c.Fin.Log = c.Log
	c.currentThread = c.Reg.MainThread
	return c
}

// GetTotalBytes returns totalbytes + GCdebt, the allocator's best current
// estimate of live+unaccounted bytes.
func (c *Collector) GetTotalBytes() int64 { return c.totalBytes + c.debt }

// SetCurrentThread tells the collector which thread is executing, so the
// atomic phase can mark it even if it differs from the main thread. The host calls this whenever it switches the running
// coroutine.
func (c *Collector) SetCurrentThread(t *object.Thread) { c.currentThread = t }

// Register implements `new_object`: o must already be allocated
// by the host (a concrete *object.Table, *object.StringObj, ...); Register
// charges size bytes of debt exactly the way luaM_realloc_ folds an
// allocation's delta into GCdebt alone (totalbytes is untouched here — it only
// moves through setDebt's redistribution), may trigger CheckGC, and only then
// links o onto allgc, tints it, and records size on the header so sweep can
// credit it back at free. Because o is linked after CheckGC, the GC work its
// own registration triggers never collects it.
func (c *Collector) Register(o object.Object, size uintptr) object.Object {
	c.debt += int64(size)
	c.Stats.DebtBytes.Set(float64(c.debt))
	c.CheckGC()
	c.Reg.NewObject(o)
	o.Header().Size = size
	return o
}

// creditFree subtracts freed bytes from debt, mirroring luaM_realloc_'s
// GCdebt += (0 - osize) path when a block is freed during sweep.
func (c *Collector) creditFree(freed uintptr) {
	c.debt -= int64(freed)
	c.Stats.DebtBytes.Set(float64(c.debt))
}

// setDebt assigns a new GCdebt value while keeping GetTotalBytes() exactly
// where it was, the way luaE_setdebt redistributes between totalbytes and
// GCdebt instead of letting the reset change the combined estimate.
func (c *Collector) setDebt(debt int64) {
	c.totalBytes -= debt - c.debt
	c.debt = debt
	c.Stats.DebtBytes.Set(float64(c.debt))
}

// CheckGC advances the collector by one step if debt has gone positive
// since the last charge — the `checkGC` hook allocation triggers.
// Generational mode runs a synchronous minor collection instead of an
// incremental step, mirroring genstep's split from incstep.
func (c *Collector) CheckGC() {
	if c.debt <= 0 {
		return
	}
	if c.Mode == ModeGenerational {
		c.minorCollection()
		return
	}
	c.Step()
}

// Fix implements `fix`: moves o from the head of allgc to
// fixedgc, tints it gray, sets age OLD. Precondition: o is the allgc head.
func (c *Collector) Fix(o object.Object) { c.Reg.Fix(o) }

// CheckFinalizer implements `check_finalizer`: migrates o
// to finobj the first time fin is attached, refusing silently while closing.
func (c *Collector) CheckFinalizer(o object.Object, fin heap.Finalizer) {
	c.Reg.CheckFinalizer(o, fin, c.closing)
}
