package plock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinCommitAtomicRoundTrip(t *testing.T) {
	var l Lock[uint64]

	r := l.TakeR()
	j := r.Rtoj()
	assert.True(t, j.LastWriter(), "sole reader must be elected")

	c := j.Jtoc()
	a := c.Ctoa()
	a.Drop()

	assert.Equal(t, uint64(0), l.load(), "word must return to U")
}

// TestLastWriterElection pins down the interpretation of last_writer
// described in ext.go: with a fixed cohort of readers (no new readers
// arriving once the rendezvous begins), exactly one Rtoj call observes
// LastWriter() == true.
func TestLastWriterElection(t *testing.T) {
	const n = 8
	var l Lock[uint64]

	rs := make([]RGuard[uint64], n)
	for i := range rs {
		rs[i] = l.TakeR()
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var elected int

	js := make([]JGuard[uint64], n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			j := rs[i].Rtoj()
			if j.LastWriter() {
				mu.Lock()
				elected++
				mu.Unlock()
			}
			js[i] = j
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, elected, "exactly one joiner must be elected last writer")

	c := js[0].Jtoc()
	for i := 1; i < n; i++ {
		js[i].DropJ()
	}
	a := c.Ctoa()
	a.Drop()

	assert.Equal(t, uint64(0), l.load())
}

func TestDropCClearsCommit(t *testing.T) {
	var l Lock[uint64]

	r := l.TakeR()
	j := r.Rtoj()
	j.Jtoc().DropC()

	assert.Equal(t, uint64(0), l.load())
}
