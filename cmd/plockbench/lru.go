package main

import (
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/dijkstracula/plock/cachekv"
)

// lru ports _examples/original_source/tests/lrubench.c: a cache sized so
// that a configurable fraction of lookups miss, hammered by several
// goroutines for a fixed duration, reporting aggregate throughput.
var (
	lruThreads   int
	lruSeconds   int
	lruCacheSize int
	lruKeySpace  int
)

var lruCmd = &cobra.Command{
	Use:   "lru",
	Short: "Benchmark the cachekv LRU under concurrent load (port of tests/lrubench.c)",
	RunE:  runLRU,
}

func init() {
	lruCmd.Flags().IntVar(&lruThreads, "threads", 2, "number of worker goroutines")
	lruCmd.Flags().IntVar(&lruSeconds, "seconds", 2, "duration to run")
	lruCmd.Flags().IntVar(&lruCacheSize, "cache-size", 3200, "cache capacity")
	lruCmd.Flags().IntVar(&lruKeySpace, "key-space", 3232, "distinct key count (> cache-size for a controlled miss rate)")
}

func runLRU(cmd *cobra.Command, args []string) error {
	c := cachekv.New[int, string](lruCacheSize)
	var hits, misses atomic.Int64

	deadline := time.Now().Add(time.Duration(lruSeconds) * time.Second)
	var wg sync.WaitGroup

	for i := 0; i < lruThreads; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for time.Now().Before(deadline) {
				k := rng.Intn(lruKeySpace)
				if _, ok := c.Get(k); ok {
					hits.Add(1)
					continue
				}
				misses.Add(1)
				c.Put(k, strconv.Itoa(k))
			}
		}(int64(i) + 1)
	}
	wg.Wait()

	total := hits.Load() + misses.Load()
	fmt.Printf("ops=%d hits=%d misses=%d hit-ratio=%.4f\n",
		total, hits.Load(), misses.Load(), float64(hits.Load())/float64(total))
	return nil
}
