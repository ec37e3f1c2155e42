// gridai is the grid market-making engine's single binary: paper
// (simulated placements, real market data), live (real placements), and
// backtest (historical replay, no venue calls) subcommands dispatched
// off os.Args[1], grounded on the teacher's one-binary-per-mode cmd/
// layout collapsed into one with a dispatcher it never needed.
package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: gridai <paper|live|backtest> [flags]")
		os.Exit(1)
	}

	var code int
	switch os.Args[1] {
	case "paper":
		code = runPaper(os.Args[2:])
	case "live":
		code = runLive(os.Args[2:])
	case "backtest":
		code = runBacktest(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand %q: expected paper, live, or backtest\n", os.Args[1])
		code = 1
	}
	os.Exit(code)
}
