package main

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/dijkstracula/plock/plock"
)

// The nine contention modes below are a direct port of
// _examples/original_source/treelock.c's loop_mode0..loop_mode8: each
// picks a different pair of states for the "read" and "write" role so
// that the relative cost of each state combination can be measured
// against the others, on the same lock.
var contendModeNames = []string{
	"u",    // 0: read U, write U (reference, no locking at all)
	"r",    // 1: read R, write R (reference, not realistic)
	"s-w",  // 2: read S, write S->stow->W  (typical insert_unique)
	"r-sw", // 3: read R, write S->stow->W  (typical lookup+insert)
	"x",    // 4: read X, write X           (ext-locked insert_unique)
	"r-x",  // 5: read R, write X           (ext-locked lookup+insert)
	"r-a",  // 6: read R, write R->try_rtoa (atomic pick)
	"r-a2", // 7: read R, write A           (insert+delete)
	"r-w",  // 8: read R, write S->stow->W, retry on contention
}

var (
	contendThreads   int
	contendSeconds   int
	contendMode      string
	contendReadRatio int
)

var contendCmd = &cobra.Command{
	Use:   "contend",
	Short: "Run one of the nine treelock.c contention modes against a single shared lock",
	RunE:  runContend,
}

func init() {
	contendCmd.Flags().IntVar(&contendThreads, "threads", 4, "number of worker goroutines")
	contendCmd.Flags().IntVar(&contendSeconds, "seconds", 2, "duration to run")
	contendCmd.Flags().StringVar(&contendMode, "mode", "r-sw", fmt.Sprintf("one of %v", contendModeNames))
	contendCmd.Flags().IntVar(&contendReadRatio, "read-ratio", 256, "reads out of every 256 iterations")
}

func runContend(cmd *cobra.Command, args []string) error {
	var lock plock.Lock[uint64]
	var work atomic.Int64
	deadline := time.Now().Add(time.Duration(contendSeconds) * time.Second)

	spin := func(n int) {
		for i := 0; i < n; i++ {
		}
	}

	readOp := func() {
		switch contendMode {
		case "u":
		case "r", "r-sw", "r-x", "r-a", "r-a2", "r-w":
			g := lock.TakeR()
			spin(200)
			g.Drop()
		case "s-w":
			g := lock.TakeS()
			spin(200)
			g.Drop()
		case "x":
			g := lock.TakeX()
			spin(200)
			g.Drop()
		}
	}

	writeOp := func() {
		switch contendMode {
		case "u":
			spin(200)
		case "r":
			g := lock.TakeR()
			spin(200)
			g.Drop()
		case "s-w", "r-sw", "r-w":
			g := lock.TakeS()
			spin(190)
			w := g.Stow()
			spin(10)
			w.Drop()
		case "x", "r-x":
			g := lock.TakeX()
			spin(200)
			g.Drop()
		case "r-a":
			for {
				r := lock.TakeR()
				spin(190)
				if a, ok := r.TryRtoA(); ok {
					spin(10)
					a.Drop()
					break
				}
				r.Drop()
			}
		case "r-a2":
			g := lock.TakeA()
			spin(200)
			g.Drop()
		}
	}

	var wg sync.WaitGroup
	for i := 0; i < contendThreads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			loops := 0
			for time.Now().Before(deadline) {
				if loops&0xFF < contendReadRatio {
					readOp()
				} else {
					writeOp()
				}
				spin(400)
				loops++
				work.Add(1)
			}
		}()
	}
	wg.Wait()

	elapsed := float64(contendSeconds)
	fmt.Printf("mode=%s threads=%d loops=%d rate(lps)=%.0f\n",
		contendMode, contendThreads, work.Load(), float64(work.Load())/elapsed)
	return nil
}
