package gc

import "github.com/pkg/errors"

// Sentinel errors for the collector's error taxonomy. No function in this
// module returns either of them: Register returns no error and has no
// allocation-failure path, and finalizer errors are handled internally and
// never propagate out of a GC operation.
var (
	// ErrOutOfMemory names an allocation that could not be satisfied. The
	// collector has no allocator of its own and never returns it.
	ErrOutOfMemory = errors.New("gc: out of memory")

	// ErrClosing names a call made during shutdown. CheckFinalizer silently
	// refuses registration while closing and does not return it.
	ErrClosing = errors.New("gc: collector is closing")
)
