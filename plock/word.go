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

package plock

import (
	"fmt"
	"sync/atomic"
	"unsafe"
)

// Word is the machine word a Lock is built on. plock supports the two
// widths the original design specifies: 32 and 64 bits.
type Word interface {
	uint32 | uint64
}

func widthOf[W Word]() int {
	var w W
	return int(unsafe.Sizeof(w)) * 8
}

// xaddWord atomically adds delta to *p and returns the value *p held
// immediately before the add (spec: "xadd").
func xaddWord[W Word](p *W, delta W) W {
	switch p := any(p).(type) {
	case *uint32:
		post := atomic.AddUint32(p, uint32(delta))
		return W(post - uint32(delta))
	case *uint64:
		post := atomic.AddUint64(p, uint64(delta))
		return W(post - uint64(delta))
	default:
		panic(fmt.Sprintf("plock: unsupported word type %T", p))
	}
}

// subWord atomically subtracts delta from *p. No return value: none of
// its callers need the pre-subtraction word.
func subWord[W Word](p *W, delta W) {
	switch p := any(p).(type) {
	case *uint32:
		atomic.AddUint32(p, uint32(0)-uint32(delta))
	case *uint64:
		atomic.AddUint64(p, uint64(0)-uint64(delta))
	default:
		panic(fmt.Sprintf("plock: unsupported word type %T", p))
	}
}

// orWord atomically ORs mask into *p.
func orWord[W Word](p *W, mask W) {
	switch p := any(p).(type) {
	case *uint32:
		atomicOrUint32(p, uint32(mask))
	case *uint64:
		atomicOrUint64(p, uint64(mask))
	default:
		panic(fmt.Sprintf("plock: unsupported word type %T", p))
	}
}

// andWord atomically ANDs mask into *p.
func andWord[W Word](p *W, mask W) {
	switch p := any(p).(type) {
	case *uint32:
		atomicAndUint32(p, uint32(mask))
	case *uint64:
		atomicAndUint64(p, uint64(mask))
	default:
		panic(fmt.Sprintf("plock: unsupported word type %T", p))
	}
}

// loadWord is an atomic acquire-ordered load of *p.
func loadWord[W Word](p *W) W {
	switch p := any(p).(type) {
	case *uint32:
		return W(atomic.LoadUint32(p))
	case *uint64:
		return W(atomic.LoadUint64(p))
	default:
		panic(fmt.Sprintf("plock: unsupported word type %T", p))
	}
}

// btsWord atomically tests and sets a single bit, returning its previous
// value as a bool (spec: "bts").
func btsWord[W Word](p *W, bit uint) bool {
	mask := W(1) << bit
	switch p := any(p).(type) {
	case *uint32:
		for {
			old := atomic.LoadUint32(p)
			if old&uint32(mask) != 0 {
				return true
			}
			if atomic.CompareAndSwapUint32(p, old, old|uint32(mask)) {
				return false
			}
		}
	case *uint64:
		for {
			old := atomic.LoadUint64(p)
			if old&uint64(mask) != 0 {
				return true
			}
			if atomic.CompareAndSwapUint64(p, old, old|uint64(mask)) {
				return false
			}
		}
	default:
		panic(fmt.Sprintf("plock: unsupported word type %T", p))
	}
}

// sync/atomic only grew AND/OR helpers for the generic atomic.Uint32/64
// wrappers, not for raw pointers on every Go version this module targets;
// a CAS retry loop is the portable equivalent of the hardware's atomic
// or/and, matching how the corpus's own spin locks (julienschmidt-spinlock,
// ahrav-go-locks/mcs) fall back to CAS loops rather than assembly.
func atomicOrUint32(p *uint32, mask uint32) {
	for {
		old := atomic.LoadUint32(p)
		if atomic.CompareAndSwapUint32(p, old, old|mask) {
			return
		}
	}
}

func atomicAndUint32(p *uint32, mask uint32) {
	for {
		old := atomic.LoadUint32(p)
		if atomic.CompareAndSwapUint32(p, old, old&mask) {
			return
		}
	}
}

func atomicOrUint64(p *uint64, mask uint64) {
	for {
		old := atomic.LoadUint64(p)
		if atomic.CompareAndSwapUint64(p, old, old|mask) {
			return
		}
	}
}

func atomicAndUint64(p *uint64, mask uint64) {
	for {
		old := atomic.LoadUint64(p)
		if atomic.CompareAndSwapUint64(p, old, old&mask) {
			return
		}
	}
}
