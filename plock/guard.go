package plock

// RGuard represents a held R (read) hold. The zero RGuard is not a valid
// hold; only Lock.TakeR/TryR produce one.
type RGuard[W Word] struct{ l *Lock[W] }

// Drop releases the R hold. No waiting.
func (g RGuard[W]) Drop() {
	f := fieldsFor[W]()
	assertField(g.l.load(), f.rAny, "drop_r", "reader count underflow")
	subWord(&g.l.word, f.r1)
}

// SGuard represents a held S (seek) hold.
type SGuard[W Word] struct{ l *Lock[W] }

// Drop releases the S hold, returning to U.
func (g SGuard[W]) Drop() {
	f := fieldsFor[W]()
	assertField(g.l.load(), f.sAny, "drop_s", "seeker count underflow")
	subWord(&g.l.word, f.s1+f.r1)
}

// Stow upgrades S to W. It consumes the
// SGuard in the sense that the caller should treat g as spent once Stow
// returns; the returned WGuard is the only handle needed to drop or
// downgrade the hold from here on.
func (g SGuard[W]) Stow() WGuard[W] {
	f := fieldsFor[W]()
	xaddWord(&g.l.word, f.w1)
	waitFieldDrained(&g.l.word, f.rAny, f.r1)
	return WGuard[W]{l: g.l}
}

// WGuard represents a held W (write), reached only by stowing an SGuard.
type WGuard[W Word] struct{ l *Lock[W] }

// Wtos downgrades W back to S, retaining the R+S
// already held.
func (g WGuard[W]) Wtos() SGuard[W] {
	subWord(&g.l.word, fieldsFor[W]().w1)
	return SGuard[W]{l: g.l}
}

// Drop fully releases the W hold (and the S+R it was stowed from) back to
// U.
func (g WGuard[W]) Drop() {
	f := fieldsFor[W]()
	assertField(g.l.load(), f.wAny, "drop_w", "writer count underflow")
	subWord(&g.l.word, f.w1+f.s1+f.r1)
}

// XGuard represents direct exclusive access taken from U, with no S
// promise and no stow/wtos cycling.
type XGuard[W Word] struct{ l *Lock[W] }

// Drop releases the X hold.
func (g XGuard[W]) Drop() {
	f := fieldsFor[W]()
	assertField(g.l.load(), f.wAny, "drop_x", "writer count underflow")
	subWord(&g.l.word, f.w1+f.r1)
}

// AGuard represents one of possibly many concurrent atomic-writer holds.
type AGuard[W Word] struct{ l *Lock[W] }

// Drop releases this A hold.
func (g AGuard[W]) Drop() {
	f := fieldsFor[W]()
	assertField(g.l.load(), f.wAny, "drop_a", "writer count underflow")
	subWord(&g.l.word, f.w1)
}

