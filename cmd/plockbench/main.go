// Command plockbench is a small harness for exercising plock under
// contention, each subcommand porting one of the original lock's C test
// programs to drive the Go implementation instead.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
