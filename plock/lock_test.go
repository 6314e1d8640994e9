package plock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// --- round-trip laws -------------------------------------------------------

func TestTakeRDropRIsNoop(t *testing.T) {
	var l Lock[uint32]
	l.TakeR().Drop()
	assert.Equal(t, uint32(0), l.load())
}

func TestTakeSStowWtosDropSIsNoop(t *testing.T) {
	var l Lock[uint64]
	s := l.TakeS()
	w := s.Stow()
	s2 := w.Wtos()
	s2.Drop()
	assert.Equal(t, uint64(0), l.load())
}

func TestTakeSStowDropWIsNoop(t *testing.T) {
	var l Lock[uint64]
	s := l.TakeS()
	w := s.Stow()
	w.Drop()
	assert.Equal(t, uint64(0), l.load())
}

func TestTakeXDropXIsNoop(t *testing.T) {
	var l Lock[uint32]
	l.TakeX().Drop()
	assert.Equal(t, uint32(0), l.load())
}

func TestTakeADropAIsNoop(t *testing.T) {
	var l Lock[uint32]
	l.TakeA().Drop()
	assert.Equal(t, uint32(0), l.load())
}

// --- concrete scenarios -----------------------------------------------------

func TestMultipleReadersCoexist(t *testing.T) {
	var l Lock[uint64]

	r1 := l.TakeR()
	r2, ok := l.TryR()
	assert.True(t, ok, "a second reader must be admitted while only readers hold the lock")

	r1.Drop()
	r2.Drop()
	assert.Equal(t, uint64(0), l.load())
}

func TestWriterBlocksNewReaders(t *testing.T) {
	var l Lock[uint64]

	s := l.TakeS()
	w := s.Stow()

	_, ok := l.TryR()
	assert.False(t, ok, "R must not be admitted while W is held")

	w.Drop()
}

func TestOnlyOneSeekerAdmitted(t *testing.T) {
	var l Lock[uint64]

	s1 := l.TakeS()
	_, ok := l.TryS()
	assert.False(t, ok, "a second concurrent seeker must be refused (I3)")

	s1.Drop()

	s2, ok := l.TryS()
	assert.True(t, ok, "S must become available again once the first seeker drops")
	s2.Drop()
}

func TestStowWaitsForOtherReadersToDrain(t *testing.T) {
	var l Lock[uint64]

	r := l.TakeR()
	s := l.TakeS()

	done := make(chan struct{})
	go func() {
		s.Stow().Drop()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Stow must not complete while a foreign reader is still held")
	case <-time.After(20 * time.Millisecond):
	}

	r.Drop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stow did not unblock after the foreign reader dropped")
	}
}

func TestAExcludesS(t *testing.T) {
	var l Lock[uint64]

	a := l.TakeA()
	_, ok := l.TryS()
	assert.False(t, ok, "S must not be admitted while an A holder is present")

	a.Drop()
	s, ok := l.TryS()
	assert.True(t, ok)
	s.Drop()
}

func TestTryRtoADrainsReadersThenExcludesS(t *testing.T) {
	var l Lock[uint64]

	r := l.TakeR()
	a, ok := r.TryRtoA()
	assert.True(t, ok, "the sole reader's own upgrade must not block on itself")

	_, sok := l.TryS()
	assert.False(t, sok, "S must be excluded once A is held")

	a.Drop()
	assert.Equal(t, uint64(0), l.load())
}

func TestContentionMakesProgress(t *testing.T) {
	var l Lock[uint64]
	const readers = 16
	const iterations = 200

	var wg sync.WaitGroup
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				l.TakeR().Drop()
			}
		}()
	}

	writerDone := make(chan struct{})
	go func() {
		for j := 0; j < iterations/4; j++ {
			s := l.TakeS()
			s.Stow().Drop()
		}
		close(writerDone)
	}()

	wg.Wait()
	select {
	case <-writerDone:
	case <-time.After(10 * time.Second):
		t.Fatal("writer starved under read contention")
	}

	assert.Equal(t, uint64(0), l.load())
}

func TestTryRFailsUnderWriter(t *testing.T) {
	var l Lock[uint32]

	s := l.TakeS()
	w := s.Stow()

	_, ok := l.TryR()
	assert.False(t, ok)

	w.Drop()
	_, ok = l.TryR()
	assert.True(t, ok)
}

func TestTryRtoSFailsOnForeignSeeker(t *testing.T) {
	var l Lock[uint64]

	r := l.TakeR()
	s := l.TakeS()

	_, ok := r.TryRtoS()
	assert.False(t, ok, "a foreign seeker must block this reader's upgrade")

	r.Drop()
	s.Drop()
}

func TestTryRtoWRoundTrips(t *testing.T) {
	var l Lock[uint64]

	r := l.TakeR()
	w, ok := r.TryRtoW()
	assert.True(t, ok)
	w.Drop()
	assert.Equal(t, uint64(0), l.load())
}

func Test32And64BitWordsBehaveIdentically(t *testing.T) {
	var l32 Lock[uint32]
	var l64 Lock[uint64]

	l32.TakeR().Drop()
	l64.TakeR().Drop()

	assert.Equal(t, uint32(0), l32.load())
	assert.Equal(t, uint64(0), l64.load())
}
