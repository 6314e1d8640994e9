package plock

import "github.com/dijkstracula/plock/backoff"

// This file implements the J (join) / C (claim) extension: a barrier-like
// rendezvous where several readers independently decide to become writers
// and exactly one is elected to perform a commit.
//
// last_writer's precise tie-breaking semantics are not pinned down by any
// upstream comment beyond "elect one of the joiners." The interpretation
// fixed here, and exercised by TestLastWriterElection in ext_test.go, is:
// a joiner is
// "last" iff the word it observed immediately before its own join already
// had every other live reader joined (W count == R count - 1). Because the
// join is a single atomic fetch-add, at most one goroutine can observe
// that exact transition for a given stable reader set, so the election is
// race-free as long as no new reader arrives after the rendezvous begins
// (the case DESIGN.md documents as the supported one; new arrivals during
// an in-flight rendezvous reopen the barrier rather than breaking it,
// since the wait condition is W==R, not W==a fixed snapshot of R).

// JGuard represents a reader that has announced its intention to become a
// writer: it adds a writer contribution on top of its existing reader
// contribution and waits for the writer count to catch up to the reader
// count. Multiple JGuards can be live at once; they form the cohort
// racing to elect a single committer.
type JGuard[W Word] struct {
	l       *Lock[W]
	preW    W
	preR    W
	elected bool
}

// Rtoj upgrades an R hold to J: add W1 on top of the already-held R, then
// wait until the writer count catches up to the reader count, meaning
// every currently-live reader has joined the same cohort.
func (g RGuard[W]) Rtoj() JGuard[W] {
	l := g.l
	f := fieldsFor[W]()

	pre := xaddWord(&l.word, f.w1)
	preW, preR := f.writers(pre), f.readers(pre)

	for {
		v := l.load()
		if f.writers(v) == f.readers(v) {
			break
		}
		backoff.WaitChanged(l.load, v)
	}

	return JGuard[W]{l: l, preW: preW, preR: preR, elected: preW+1 == preR}
}

// LastWriter reports whether this goroutine's join was the one that closed
// the rendezvous barrier, per the interpretation documented above. Callers
// use this to decide who performs Jtoc.
func (g JGuard[W]) LastWriter() bool { return g.elected }

// Jtoc marks the cohort as committed by setting the S bit via a bitwise
// or, which is idempotent: if two joiners both believe they are the last
// writer (a possibility this package's LastWriter tries to avoid, but
// which a fresh reader arriving mid-rendezvous can still cause), marking
// the commit twice has no additional effect.
func (g JGuard[W]) Jtoc() CGuard[W] {
	orWord(&g.l.word, fieldsFor[W]().s1)
	return CGuard[W]{l: g.l}
}

// DropJ releases a join that never reached commit, returning this holder's
// R+W contribution. If this was the last reader to leave and a commit flag
// was left set by another goroutine's Jtoc, it is cleared.
func (g JGuard[W]) DropJ() {
	l := g.l
	f := fieldsFor[W]()
	subWord(&l.word, f.w1+f.r1)
	clearCommitIfDrained(l, f)
}

// CGuard represents a committed join: the elected writer, holding both the
// J state and the commit flag, performing the actual write.
type CGuard[W Word] struct{ l *Lock[W] }

// Ctoa downgrades a commit hold to a plain A (atomic writer) hold: this
// goroutine's own R leaves the rendezvous, its W stays as an ordinary A
// contribution, and the commit flag is cleared once every reader has
// left.
func (g CGuard[W]) Ctoa() AGuard[W] {
	l := g.l
	f := fieldsFor[W]()
	subWord(&l.word, f.r1)
	clearCommitIfDrained(l, f)
	return AGuard[W]{l: l}
}

// DropC releases a commit hold entirely, back toward U.
func (g CGuard[W]) DropC() {
	l := g.l
	f := fieldsFor[W]()
	subWord(&l.word, f.w1+f.r1)
	clearCommitIfDrained(l, f)
}

func clearCommitIfDrained[W Word](l *Lock[W], f layout[W]) {
	if v := l.load(); v&f.rAny == 0 && v&f.sAny != 0 {
		andWord(&l.word, ^f.sAny)
	}
}
