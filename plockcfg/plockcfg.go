// Package plockcfg holds process-wide knobs for the plock family of
// packages: the spin/yield backoff cap and a debug-assertions switch. It
// exists so that cmd/plockbench and callers embedding plock in a larger
// service have one place to tune both, rather than reaching into backoff
// and plock directly.
package plockcfg

import (
	"sync/atomic"

	"github.com/dijkstracula/plock/backoff"
)

var debug atomic.Bool

// SetDebug toggles extra invariant checks that assert a guard's matching
// counter has not underflowed before a Drop. Off by default: the checks
// walk the lock word on every Drop and are not meant for the hot path.
func SetDebug(on bool) { debug.Store(on) }

// Debug reports whether debug-mode invariant checks are enabled.
func Debug() bool { return debug.Load() }

// SetSpinCap forwards to backoff.SetSpinCap; it is re-exported here so
// that callers configuring plock need only import this one package.
func SetSpinCap(n int) { backoff.SetSpinCap(n) }

// SpinCap forwards to backoff.SpinCap.
func SpinCap() int { return backoff.SpinCap() }
