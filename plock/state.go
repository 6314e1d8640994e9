package plock

// layout describes the bit-field split of a lock word: two caller-owned
// reserved bits, then the R (reader), S (seeker), and W (writer) fields,
// in that order from low to high.
type layout[W Word] struct {
	r1, rAny W
	s1, sAny W
	w1, wAny W

	rShift, wShift uint
}

const reservedBits = 2
const seekBits = 2

// fieldsFor returns the layout for W's width (32 or 64 bits). Computing it
// from widthOf avoids a constructor: the zero value of a Lock is a valid,
// unlocked lock.
func fieldsFor[W Word]() layout[W] {
	width := widthOf[W]()

	var readBits int
	switch width {
	case 32:
		readBits = 14
	case 64:
		readBits = 30
	default:
		panic("plock: Lock[W] requires a 32- or 64-bit Word")
	}

	sShift := uint(reservedBits + readBits)
	wShift := sShift + uint(seekBits)

	l := layout[W]{
		r1:     W(1) << reservedBits,
		s1:     W(1) << sShift,
		rAny:   (W(1)<<uint(readBits) - 1) << reservedBits,
		sAny:   (W(1)<<uint(seekBits) - 1) << sShift,
		rShift: reservedBits,
		wShift: wShift,
	}
	l.w1 = W(1) << wShift
	l.wAny = ^W(0) &^ (l.w1 - 1)
	return l
}

// readers extracts the R field's count from a raw lock word.
func (f layout[W]) readers(word W) W { return (word & f.rAny) >> f.rShift }

// writers extracts the W field's count from a raw lock word. Note that an
// overflowing S field bleeds into this count by design: the layout is
// self-healing under overflow rather than corrupting adjacent fields.
func (f layout[W]) writers(word W) W { return (word & f.wAny) >> f.wShift }
