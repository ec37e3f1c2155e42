// Package cli defines gridai's command-line surface: a single binary
// with paper/live/backtest subcommands, grounded on the teacher's
// cmd/grid-backtest/cli/flags.go flag.FlagSet idiom, extended with a
// subcommand dispatcher the teacher never needed (one binary per mode).
package cli

import (
	"flag"
	"fmt"
)

// CommonFlags are accepted by every subcommand.
type CommonFlags struct {
	ConfigDir    *string
	Profile      *string
	OverrideFile *string
	EnvFile      *string
}

func bindCommon(fs *flag.FlagSet) *CommonFlags {
	return &CommonFlags{
		ConfigDir:    fs.String("config-dir", "configs", "Directory containing named profile YAML files"),
		Profile:      fs.String("profile", "default", "Named configuration profile to load"),
		OverrideFile: fs.String("override", "", "Optional YAML file layered over the named profile"),
		EnvFile:      fs.String("env", ".env", "Environment file path for credentials"),
	}
}

// RunFlags is shared by paper and live: they both drive controlloop.Loop
// against a venue adapter, differing only in which adapter gets built.
type RunFlags struct {
	*CommonFlags
	StartingCash *string
}

func ParseRunFlags(args []string) (*RunFlags, error) {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	common := bindCommon(fs)
	startingCash := fs.String("starting-cash", "10000", "Starting cash allocated to this grid (quote-asset units)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return &RunFlags{CommonFlags: common, StartingCash: startingCash}, nil
}

// BacktestFlags is backtest's own flag set: a historical data source,
// an optional date window, and the JSON metrics document spec.md §6
// asks --output to write (the console summary goes to stdout; the CSV
// and Excel files go to results/<PAIR>_backtest, not beside --output).
type BacktestFlags struct {
	*CommonFlags
	DataFile     *string
	StartDate    *string
	EndDate      *string
	StartingCash *string
	Output       *string
	MaxCandles   *int
}

func ParseBacktestFlags(args []string) (*BacktestFlags, error) {
	fs := flag.NewFlagSet("backtest", flag.ContinueOnError)
	common := bindCommon(fs)
	dataFile := fs.String("data-file", "", "Path to historical OHLCV CSV data (required)")
	startDate := fs.String("start-date", "", "Replay window start (YYYY-MM-DD); empty means from the first candle")
	endDate := fs.String("end-date", "", "Replay window end (YYYY-MM-DD); empty means through the last candle")
	startingCash := fs.String("starting-cash", "10000", "Starting cash allocated to this grid (quote-asset units)")
	output := fs.String("output", "results/backtest.json", "Path to write the JSON metrics document")
	maxCandles := fs.Int("max-candles", 0, "Maximum number of candles to replay (0 = use all available data)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *dataFile == "" {
		return nil, fmt.Errorf("backtest: -data-file is required")
	}
	return &BacktestFlags{
		CommonFlags: common, DataFile: dataFile, StartDate: startDate, EndDate: endDate,
		StartingCash: startingCash, Output: output, MaxCandles: maxCandles,
	}, nil
}
