package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gridai/gridai/cmd/gridai/cli"
	"github.com/gridai/gridai/internal/backtest"
	"github.com/gridai/gridai/pkg/data"
	"github.com/gridai/gridai/pkg/reporting"
	"github.com/gridai/gridai/pkg/types"
	"github.com/gridai/gridai/internal/venue"
)

// runBacktest runs `gridai backtest`: replays a CSV of historical
// candles through internal/backtest.Runner (no venue calls at all), then
// renders the result through pkg/reporting.
func runBacktest(args []string) int {
	flags, err := cli.ParseBacktestFlags(args)
	if err != nil {
		return fatalConfig("backtest: %v", err)
	}
	cfg, log, err := loadConfig(flags.CommonFlags)
	if err != nil {
		return fatalConfig("backtest: %v", err)
	}

	startingCash, err := decimal.NewFromString(*flags.StartingCash)
	if err != nil {
		return fatalConfig("backtest: invalid -starting-cash %q: %v", *flags.StartingCash, err)
	}

	candles, err := loadCandles(*flags.DataFile, *flags.StartDate, *flags.EndDate, *flags.MaxCandles)
	if err != nil {
		return fatalConfig("backtest: %v", err)
	}

	runner := backtest.NewRunner(cfg, 2, 6, log)
	stateDir, err := os.MkdirTemp("", "gridai-backtest-*")
	if err != nil {
		return fatalConfig("backtest: creating scratch state dir: %v", err)
	}
	defer os.RemoveAll(stateDir)

	result, err := runner.Run(context.Background(), candles, startingCash, stateDir)
	if err != nil {
		return fatalConfig("backtest: %v", err)
	}

	reporter := reporting.NewDefaultReporter()
	reporter.OutputResultsWithContext(result, cfg.Exchange.TradingPair, "")

	if err := reporter.EnsureDirectoryExists(*flags.Output); err != nil {
		return fatalConfig("backtest: %v", err)
	}
	if err := reporter.WriteBestConfigJSON(result, *flags.Output); err != nil {
		return fatalConfig("backtest: writing %s: %v", *flags.Output, err)
	}
	outDir := reporting.DefaultOutputDir(cfg.Exchange.TradingPair, "backtest")
	if err := reporter.WriteTradesCSV(result, outDir+"/trades.csv"); err != nil {
		return fatalConfig("backtest: writing trades CSV: %v", err)
	}
	if err := reporter.WriteTradesXLSX(result, outDir+"/trades.xlsx"); err != nil {
		return fatalConfig("backtest: writing trades workbook: %v", err)
	}

	return exitOK
}

// loadCandles loads a CSV of OHLCV data, applies the optional
// -start-date/-end-date window and -max-candles cap, and converts the
// float64 types.OHLCV rows pkg/data produces into the decimal
// venue.Candle the backtest runner replays.
func loadCandles(path, startDate, endDate string, maxCandles int) ([]venue.Candle, error) {
	provider := data.NewCSVProvider()
	rows, err := provider.LoadData(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	if err := provider.ValidateData(rows); err != nil {
		return nil, fmt.Errorf("validating %s: %w", path, err)
	}

	filter := data.NewDefaultDataFilter()
	rows = filter.SortByTimestamp(rows)

	if startDate != "" || endDate != "" {
		start, end := time.Time{}, time.Now().UTC()
		if startDate != "" {
			start, err = time.Parse("2006-01-02", startDate)
			if err != nil {
				return nil, fmt.Errorf("invalid -start-date %q: %w", startDate, err)
			}
		}
		if endDate != "" {
			end, err = time.Parse("2006-01-02", endDate)
			if err != nil {
				return nil, fmt.Errorf("invalid -end-date %q: %w", endDate, err)
			}
		}
		rows = filter.FilterByDateRange(rows, start, end)
	}

	if maxCandles > 0 && len(rows) > maxCandles {
		rows = rows[len(rows)-maxCandles:]
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no candles remain after filtering %s", path)
	}

	candles := make([]venue.Candle, len(rows))
	for i, r := range rows {
		candles[i] = ohlcvToCandle(r)
	}
	return candles, nil
}

func ohlcvToCandle(r types.OHLCV) venue.Candle {
	return venue.Candle{
		Open:      decimal.NewFromFloat(r.Open),
		High:      decimal.NewFromFloat(r.High),
		Low:       decimal.NewFromFloat(r.Low),
		Close:     decimal.NewFromFloat(r.Close),
		Volume:    decimal.NewFromFloat(r.Volume),
		Timestamp: r.Timestamp,
	}
}
