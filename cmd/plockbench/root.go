package main

import (
	"github.com/spf13/cobra"

	"github.com/dijkstracula/plock/plockcfg"
)

var (
	flagSpinCap int
	flagDebug   bool
)

var rootCmd = &cobra.Command{
	Use:   "plockbench",
	Short: "Contention and latency benchmarks for the plock family of locks",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if flagSpinCap > 0 {
			plockcfg.SetSpinCap(flagSpinCap)
		}
		plockcfg.SetDebug(flagDebug)
	},
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagSpinCap, "spin-cap", 0,
		"override the backoff spin cap (0 keeps the package default)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false,
		"enable plock debug-mode invariant assertions")

	rootCmd.AddCommand(contendCmd)
	rootCmd.AddCommand(rwraceCmd)
	rootCmd.AddCommand(latencyCmd)
	rootCmd.AddCommand(lruCmd)
}
