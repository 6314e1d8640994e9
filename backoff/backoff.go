// Package backoff implements the bounded exponential spin/yield strategy
// that every plock wait loop shares.
//
// There is no portable, assembly-free CPU pause hint in Go, so the "relax"
// burst is realized as repeated reloads of the lock word: each reload is
// itself a legitimate memory barrier and a chance to notice the wait
// condition has already cleared, which is the practical substitute the
// rest of the corpus reaches for (ahrav-go-locks' mcs lock and
// julienschmidt-spinlock's RWMutex both spin on a plain atomic load and
// reserve runtime.Gosched for when spinning alone isn't making progress).
package backoff

import (
	"runtime"
	"sync/atomic"
)

// defaultSpinCap is the point at which a waiting goroutine starts
// yielding its scheduling quantum once per outer iteration instead of
// only reloading the lock word.
const defaultSpinCap = 16384

var spinCap atomic.Int64

func init() {
	spinCap.Store(defaultSpinCap)
}

// SetSpinCap overrides the backoff cap for the process. Intended for
// benchmark/diagnostic tooling (cmd/plockbench); the core never calls it.
func SetSpinCap(n int) {
	if n <= 0 {
		n = defaultSpinCap
	}
	spinCap.Store(int64(n))
}

// SpinCap returns the backoff cap currently in effect.
func SpinCap() int {
	return int(spinCap.Load())
}

// nextBurst grows m as ((m + m/2) | 2) & 0x7fff, a ~1.5^N growth curve
// clamped to the configured cap.
func nextBurst(m int) int {
	m = ((m + m/2) | 2) & 0x7fff
	if cap := SpinCap(); m > cap {
		m = cap
	}
	return m
}

// WaitClear spins until load()&mask == 0, returning the observed word at
// the moment the mask cleared. This is the wait-until-mask-clears
// primitive used by the Take* retry loops, TryR/TryS after a lost race,
// and the reader-drain waits of Stow, TryX and TryRtoW.
func WaitClear[W uint32 | uint64](load func() W, mask W) W {
	v := load()
	if v&mask == 0 {
		return v
	}

	burst := 0
	for {
		burst = nextBurst(burst)
		if burst >= SpinCap() {
			runtime.Gosched()
		} else {
			for i := 0; i < burst; i++ {
				if v = load(); v&mask == 0 {
					return v
				}
			}
		}
		if v = load(); v&mask == 0 {
			return v
		}
	}
}

// WaitChanged spins until load() differs from prev, returning the new
// value. Used by a thread that has just observed a "not yet" state and
// wants to block until something changes.
func WaitChanged[W uint32 | uint64](load func() W, prev W) W {
	burst := 0
	for {
		if v := load(); v != prev {
			return v
		}
		burst = nextBurst(burst)
		if burst >= SpinCap() {
			runtime.Gosched()
			continue
		}
		for i := 0; i < burst; i++ {
			if v := load(); v != prev {
				return v
			}
		}
	}
}
