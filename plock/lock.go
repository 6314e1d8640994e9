// Copyright 2020 Nathan Taylor (nbtaylor@gmail.com)
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
// of the Software, and to permit persons to whom the Software is furnished to do
// so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package plock implements progressive locks: a single-word,
// multi-state reader/writer synchronization primitive optimized for
// read-dominated workloads over in-memory data structures (trees, caches,
// hash tables).
//
// A progressive lock lets many holders share a state, and lets a single
// holder progress through increasingly exclusive states (read -> seek ->
// write) without releasing and reacquiring the lock from scratch. That
// closes the window, present in a classic "unlock then relock
// exclusively" tree descent, during which a concurrent writer can sneak in
// between descent and mutation.
//
// States
//
// The lock has six states: U (unlocked), R (read), S (seek: a promise to
// upgrade to a writer), W (write, reached only from S), X (exclusive,
// reached directly from U), and A (atomic: many concurrent writers that
// coordinate at a finer grain than the lock itself). A seventh pair, J and
// C, implements a multiple-writer commit rendezvous layered on top of R/A
// (see RGuard.Rtoj in ext.go).
//
// The lock is not fair, not reentrant, has no priority inheritance, and
// does not detect deadlock. Take* operations never fail and never time
// out; Try* operations report success or failure instead of retrying,
// though TryX, TryRtoW and TryRtoA still wait for readers to drain once
// admitted, and TryR/TryS wait for the conflict to clear after losing a
// race with another holder.
package plock

import (
	"time"
	"unsafe"

	"github.com/dijkstracula/plock/backoff"
	"github.com/dijkstracula/plock/plocktrace"
)

// Lock is a progressive lock held in a single W-wide word. The zero value
// is an unlocked lock; there is no constructor.
type Lock[W Word] struct {
	word W
}

func (l *Lock[W]) load() W { return loadWord(&l.word) }

// LoadTag returns the two caller-owned reserved bits packed alongside the
// state bits. It is the only sanctioned way to read them while the lock
// is anything other than U.
func (l *Lock[W]) LoadTag() W {
	return l.load() & (W(1)<<reservedBits - 1)
}

// StoreTag sets the two reserved bits via an atomic or/and pair, leaving
// every other field untouched.
func (l *Lock[W]) StoreTag(tag W) {
	const tagMask = 1<<reservedBits - 1
	tag &= tagMask
	andWord(&l.word, ^W(tagMask))
	orWord(&l.word, tag)
}

// waitFieldDrained blocks until (*p & fieldAny) == self, i.e. until the
// caller's own contribution is the only bit standing in that field. This
// is the shape shared by Stow and TryRtoW (waiting for R to drain to the
// seeker's own reader bit) and TakeX/TryX (waiting for R to drain to the
// caller's own admission).
func waitFieldDrained[W Word](p *W, fieldAny, self W) {
	masked := func() W { return (loadWord(p) & fieldAny) ^ self }
	backoff.WaitClear(masked, ^W(0))
}

// traceTake retries try until it succeeds, waiting with backoff for the
// conflict bits to clear between attempts, and reports a plocktrace.Event
// for the whole retry sequence when tracing is enabled. It is the shape
// every Take* method shares.
func traceTake[W Word, G any](l *Lock[W], op plocktrace.Op, conflict W, try func() (G, bool)) G {
	if !plocktrace.Enabled() {
		for {
			if g, ok := try(); ok {
				return g
			}
			backoff.WaitClear(l.load, conflict)
		}
	}

	start := time.Now()
	blocked := false
	for {
		g, ok := try()
		if ok {
			var wait time.Duration
			if blocked {
				wait = time.Since(start)
			}
			plocktrace.Emit(plocktrace.Event{
				Op:       op,
				Width:    widthOf[W](),
				Blocked:  blocked,
				Wait:     wait,
				LockAddr: uintptr(unsafe.Pointer(l)),
			})
			return g
		}
		blocked = true
		backoff.WaitClear(l.load, conflict)
	}
}

// --- R -------------------------------------------------------------------

// TakeR acquires read access (R), blocking until granted. It never fails.
func (l *Lock[W]) TakeR() RGuard[W] {
	return traceTake(l, plocktrace.OpTakeR, fieldsFor[W]().wAny, l.TryR)
}

// TryR attempts to acquire R. If a writer, X, or A holder is already
// present it reports failure at once without touching the word; if one
// appears between that check and its own add, it backs out, waits for the
// conflict to clear, and reports failure so the caller can decide whether
// to retry.
func (l *Lock[W]) TryR() (RGuard[W], bool) {
	f := fieldsFor[W]()

	if l.load()&f.wAny != 0 {
		return RGuard[W]{}, false
	}

	prev := xaddWord(&l.word, f.r1)
	if prev&f.wAny != 0 {
		subWord(&l.word, f.r1)
		backoff.WaitClear(l.load, f.wAny)
		return RGuard[W]{}, false
	}
	return RGuard[W]{l: l}, true
}

// --- S -------------------------------------------------------------------

// TakeS acquires seek access (S), blocking until granted. At most one
// seeker is ever granted at a time.
func (l *Lock[W]) TakeS() SGuard[W] {
	f := fieldsFor[W]()
	return traceTake(l, plocktrace.OpTakeS, f.wAny|f.sAny, l.TryS)
}

// TryS attempts to acquire S.
func (l *Lock[W]) TryS() (SGuard[W], bool) {
	f := fieldsFor[W]()
	conflict := f.wAny | f.sAny

	if l.load()&conflict != 0 {
		return SGuard[W]{}, false
	}

	prev := xaddWord(&l.word, f.s1+f.r1)
	if prev&conflict != 0 {
		subWord(&l.word, f.s1+f.r1)
		backoff.WaitClear(l.load, conflict)
		return SGuard[W]{}, false
	}
	return SGuard[W]{l: l}, true
}

// --- X -------------------------------------------------------------------

// TakeX acquires direct exclusive access from U, blocking until granted.
// Use X, rather than S followed by Stow, when the caller will not need
// to downgrade mid-operation.
func (l *Lock[W]) TakeX() XGuard[W] {
	f := fieldsFor[W]()
	return traceTake(l, plocktrace.OpTakeX, f.wAny|f.sAny, l.TryX)
}

// TryX attempts to take X. It fails immediately on a conflicting writer
// or seeker; once admitted, it waits out existing readers, since that
// wait is bounded by readers draining rather than by another writer's
// lifetime.
func (l *Lock[W]) TryX() (XGuard[W], bool) {
	f := fieldsFor[W]()
	conflict := f.wAny | f.sAny

	if l.load()&conflict != 0 {
		return XGuard[W]{}, false
	}

	prev := xaddWord(&l.word, f.w1+f.r1)
	if prev&conflict != 0 {
		subWord(&l.word, f.w1+f.r1)
		return XGuard[W]{}, false
	}

	waitFieldDrained(&l.word, f.rAny, f.r1)
	return XGuard[W]{l: l}, true
}

// --- A -------------------------------------------------------------------

// TakeA acquires an atomic-writer hold, blocking until granted. Many A
// holders may coexist; A excludes S and waits for existing readers to
// drain (or themselves upgrade to A).
func (l *Lock[W]) TakeA() AGuard[W] {
	return traceTake(l, plocktrace.OpTakeA, fieldsFor[W]().sAny, l.TryA)
}

// TryA attempts to take A. It aborts if an S appears while waiting for
// readers to drain, since S is a promise of future exclusivity that A
// must respect.
func (l *Lock[W]) TryA() (AGuard[W], bool) {
	f := fieldsFor[W]()

	if l.load()&f.sAny != 0 {
		return AGuard[W]{}, false
	}

	prev := xaddWord(&l.word, f.w1)
	if prev&f.sAny != 0 {
		subWord(&l.word, f.w1)
		return AGuard[W]{}, false
	}

	if ok := l.drainForA(f); !ok {
		subWord(&l.word, f.w1)
		return AGuard[W]{}, false
	}
	return AGuard[W]{l: l}, true
}

// drainForA waits for readers to leave (or become A holders themselves),
// bailing out the instant an S bit appears anywhere in the word.
func (l *Lock[W]) drainForA(f layout[W]) bool {
	for {
		v := l.load()
		if v&f.sAny != 0 {
			return false
		}
		if v&f.rAny == 0 {
			return true
		}
		backoff.WaitChanged(l.load, v)
	}
}

// --- Upgrades from R -------------------------------------------------------

// TryRtoS attempts to upgrade an R hold to S. On failure, g is unaffected: the caller retains its R hold and MUST Drop it
// before retrying the upgrade, or it can deadlock against a concurrent S
// waiting for this R to leave.
func (g RGuard[W]) TryRtoS() (SGuard[W], bool) {
	l := g.l
	f := fieldsFor[W]()
	conflict := f.wAny | f.sAny

	if l.load()&conflict != 0 {
		return SGuard[W]{}, false
	}

	prev := xaddWord(&l.word, f.s1)
	if prev&conflict != 0 {
		subWord(&l.word, f.s1)
		return SGuard[W]{}, false
	}
	return SGuard[W]{l: l}, true
}

// TryRtoA attempts to upgrade an R hold directly to A. Same failure
// contract as TryRtoS: drop R before retrying.
func (g RGuard[W]) TryRtoA() (AGuard[W], bool) {
	l := g.l
	f := fieldsFor[W]()

	if l.load()&f.sAny != 0 {
		return AGuard[W]{}, false
	}

	prev := xaddWord(&l.word, f.w1-f.r1)
	for {
		if prev&f.sAny != 0 {
			subWord(&l.word, f.w1-f.r1)
			return AGuard[W]{}, false
		}
		if prev&f.rAny == 0 {
			break
		}
		prev = backoff.WaitChanged(l.load, prev)
	}
	return AGuard[W]{l: l}, true
}

// TryRtoW attempts to upgrade an R hold straight to W, fusing the
// TryRtoS and Stow transitions into a single bail-out-capable operation.
// Same failure contract: drop R before retrying.
func (g RGuard[W]) TryRtoW() (WGuard[W], bool) {
	l := g.l
	f := fieldsFor[W]()
	conflict := f.wAny | f.sAny

	if l.load()&conflict != 0 {
		return WGuard[W]{}, false
	}

	prev := xaddWord(&l.word, f.s1+f.w1)
	if prev&conflict != 0 {
		subWord(&l.word, f.s1+f.w1)
		return WGuard[W]{}, false
	}

	waitFieldDrained(&l.word, f.rAny, f.r1)
	return WGuard[W]{l: l}, true
}
