package main

import (
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/dijkstracula/plock/plock"
)

// rwrace ports _examples/original_source/tests/rwrace.c: a single writer
// mutating a counter under W must never let a reader under R observe the
// counter change mid-read. Readers spin-check the counter stays put for a
// randomized number of iterations; any deviation means R and W overlapped,
// which is a correctness bug, not a performance one.
var (
	rwraceReaders int
	rwraceWriters int
	rwraceSeconds int
)

var rwraceCmd = &cobra.Command{
	Use:   "rwrace",
	Short: "Detect races between R and W holders (port of tests/rwrace.c)",
	RunE:  runRwrace,
}

func init() {
	rwraceCmd.Flags().IntVar(&rwraceReaders, "readers", 1, "number of reader goroutines")
	rwraceCmd.Flags().IntVar(&rwraceWriters, "writers", 7, "number of writer goroutines")
	rwraceCmd.Flags().IntVar(&rwraceSeconds, "seconds", 3, "duration to run")
}

func runRwrace(cmd *cobra.Command, args []string) error {
	var lock plock.Lock[uint64]
	var check atomic.Int64
	var totReads, totWrites atomic.Int64
	var anomalies atomic.Int64

	stop := make(chan struct{})
	var wg sync.WaitGroup

	for i := 0; i < rwraceReaders; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
				}
				g := lock.TakeR()
				check.Store(0)
				n := rng.Intn(1000)
				for ; n > 0; n-- {
					if check.Load() != 0 {
						anomalies.Add(1)
					}
				}
				g.Drop()
				totReads.Add(1)
			}
		}(int64(i) + 1)
	}

	for i := 0; i < rwraceWriters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				s := lock.TakeS()
				w := s.Stow()
				check.Add(1)
				w.Drop()
				totWrites.Add(1)
			}
		}()
	}

	time.Sleep(time.Duration(rwraceSeconds) * time.Second)
	close(stop)
	wg.Wait()

	fmt.Printf("reads=%d writes=%d anomalies=%d\n", totReads.Load(), totWrites.Load(), anomalies.Load())
	if anomalies.Load() > 0 {
		return fmt.Errorf("detected %d read/write overlap anomalies", anomalies.Load())
	}
	return nil
}
