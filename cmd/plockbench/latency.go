package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/agilira/go-timecache"
	"github.com/spf13/cobra"

	"github.com/dijkstracula/plock/plock"
)

// latency ports the measurement spirit of
// _examples/original_source/tests/latency.c (lock acquisition speed under
// two bouncing threads) to plock's own operation set: instead of a single
// hand-rolled bit-ping-pong, it samples the wall-clock cost of each
// uncontended Take/Drop round trip. go-timecache's cached clock keeps the
// per-sample overhead close to the lock operation itself rather than the
// cost of a fresh time.Now() syscall on every single iteration.
var (
	latencyOp      string
	latencySamples int
)

var latencyCmd = &cobra.Command{
	Use:   "latency",
	Short: "Measure uncontended acquisition latency for one plock operation",
	RunE:  runLatency,
}

func init() {
	latencyCmd.Flags().StringVar(&latencyOp, "op", "r", "operation to sample: r, s-w, x, a")
	latencyCmd.Flags().IntVar(&latencySamples, "samples", 200000, "number of round trips to sample")
}

func runLatency(cmd *cobra.Command, args []string) error {
	var lock plock.Lock[uint64]
	samples := make([]time.Duration, 0, latencySamples)

	roundTrip := func() time.Duration {
		start := timecache.Now()
		switch latencyOp {
		case "r":
			lock.TakeR().Drop()
		case "s-w":
			lock.TakeS().Stow().Drop()
		case "x":
			lock.TakeX().Drop()
		case "a":
			lock.TakeA().Drop()
		default:
			lock.TakeR().Drop()
		}
		return timecache.Now().Sub(start)
	}

	for i := 0; i < latencySamples; i++ {
		samples = append(samples, roundTrip())
	}

	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	p50 := samples[len(samples)*50/100]
	p99 := samples[len(samples)*99/100]

	fmt.Printf("op=%s samples=%d p50=%s p99=%s\n", latencyOp, latencySamples, p50, p99)
	return nil
}
