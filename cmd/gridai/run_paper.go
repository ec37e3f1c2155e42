package main

import (
	"os"

	"github.com/shopspring/decimal"

	"github.com/gridai/gridai/cmd/gridai/cli"
	"github.com/gridai/gridai/internal/venue/bybit"
	"github.com/gridai/gridai/internal/venue/paper"
)

// paperFee mirrors the control loop's default fee assumption (spec:
// price*amount*0.001) for the simulated fills paper mode reports.
var paperFee = decimal.NewFromFloat(0.001)

// runPaper runs `gridai paper`: real market data, simulated placements.
// Credentials are optional — ticker/kline reads work against Bybit's
// public endpoints — but are used when present so the same client can
// later be promoted to `live` without code changes.
func runPaper(args []string) int {
	flags, err := cli.ParseRunFlags(args)
	if err != nil {
		return fatalConfig("paper: %v", err)
	}
	cfg, log, err := loadConfig(flags.CommonFlags)
	if err != nil {
		return fatalConfig("paper: %v", err)
	}

	startingCash, err := decimal.NewFromString(*flags.StartingCash)
	if err != nil {
		return fatalConfig("paper: invalid -starting-cash %q: %v", *flags.StartingCash, err)
	}

	client := bybit.NewClient(bybit.Config{
		APIKey:    os.Getenv("BYBIT_API_KEY"),
		APISecret: os.Getenv("BYBIT_API_SECRET"),
		Testnet:   cfg.Exchange.Sandbox,
	})
	market := bybit.New(client, venueSymbol(cfg.Exchange.TradingPair))
	adapter := paper.New(market, paperFee)

	log.Info("paper mode: real market data via %s, placements simulated locally", market.Name())
	return runControlLoop(cfg, log, adapter, startingCash)
}
