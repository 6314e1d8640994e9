package plock

import (
	"fmt"

	"github.com/dijkstracula/plock/plockcfg"
)

// invariantError reports a precondition violation caught by a debug-mode
// check: these are programmer errors, not contention, and the production
// path never constructs one — it trusts the caller unless plockcfg.Debug
// is enabled.
type invariantError struct {
	op  string
	why string
}

func (e *invariantError) Error() string {
	return fmt.Sprintf("plock: %s: %s", e.op, e.why)
}

// assertField panics with an invariantError if plockcfg.Debug is enabled
// and field (masked out of the current word) is already zero, meaning the
// caller is about to drop a hold it does not actually have. It is a no-op
// outside debug mode, but the Drop* callers load the lock word to pass it
// in and the Debug flag is itself an atomic load, so the common path pays
// two atomic loads rather than nothing.
func assertField[W Word](word, field W, op, why string) {
	if !plockcfg.Debug() {
		return
	}
	if word&field == 0 {
		panic(&invariantError{op: op, why: why})
	}
}
