// Package plocktrace is the optional observability hook plock.Lock
// operations report through, for implementations that want per-transition
// events for diagnostics without committing to a particular metrics
// backend.
//
// A handler is a plain func, not an interface, in keeping with how the
// rest of the corpus wires optional diagnostics (a single settable
// package-level hook rather than a registry), and it is always invoked
// synchronously on the calling goroutine: fan-out to something slower
// (a metrics sink, a log line) is the handler's job, not this package's.
package plocktrace

import (
	"sync/atomic"
	"time"
)

// Op identifies which lock transition an Event reports.
type Op string

const (
	OpTakeR Op = "take_r"
	OpTakeS Op = "take_s"
	OpTakeX Op = "take_x"
	OpTakeA Op = "take_a"
	OpStow  Op = "stow"
	OpWtos  Op = "wtos"
	OpDropR Op = "drop_r"
	OpDropS Op = "drop_s"
	OpDropW Op = "drop_w"
	OpDropX Op = "drop_x"
	OpDropA Op = "drop_a"
	OpRtoJ  Op = "rtoj"
	OpJtoC  Op = "jtoc"
	OpCtoA  Op = "ctoa"
)

// Event describes a single completed lock transition.
type Event struct {
	Op       Op
	Width    int           // 32 or 64, the Lock[W]'s word width
	Blocked  bool          // true if the call had to wait before succeeding
	Wait     time.Duration // time spent blocked; zero if Blocked is false
	LockAddr uintptr       // identifies which Lock instance, for correlation
}

// Handler receives trace events. It must not block or panic; plock calls
// it inline on the transition's own goroutine.
type Handler func(Event)

var handler atomic.Pointer[Handler]

// SetHandler installs h as the process-wide trace handler. Passing nil
// disables tracing, which is also the default: emitting an Event costs a
// time.Now() and a function call, so callers that don't need it shouldn't
// pay for it.
func SetHandler(h Handler) {
	if h == nil {
		handler.Store(nil)
		return
	}
	handler.Store(&h)
}

// Enabled reports whether a handler is currently installed, letting
// callers skip building an Event entirely on the hot path.
func Enabled() bool {
	return handler.Load() != nil
}

// Emit reports ev to the installed handler, if any.
func Emit(ev Event) {
	if h := handler.Load(); h != nil {
		(*h)(ev)
	}
}
