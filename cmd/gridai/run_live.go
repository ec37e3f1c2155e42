package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gridai/gridai/cmd/gridai/cli"
	"github.com/gridai/gridai/internal/clock"
	"github.com/gridai/gridai/internal/config"
	"github.com/gridai/gridai/internal/controlloop"
	"github.com/gridai/gridai/internal/gridengine"
	"github.com/gridai/gridai/internal/ledger"
	"github.com/gridai/gridai/internal/notifications"
	"github.com/gridai/gridai/internal/orders"
	"github.com/gridai/gridai/internal/risk"
	"github.com/gridai/gridai/internal/state"
	"github.com/gridai/gridai/internal/telemetry"
	"github.com/gridai/gridai/internal/venue"
	"github.com/gridai/gridai/internal/venue/bybit"
)

// venueSymbol strips the operator-facing "BTC/USDT" slash notation down
// to the venue-native "BTCUSDT" every bybit call expects.
func venueSymbol(pair string) string {
	return strings.ReplaceAll(pair, "/", "")
}

// runLive runs `gridai live`: real placements against Bybit, requiring
// BYBIT_API_KEY/BYBIT_API_SECRET per spec.md §6.
func runLive(args []string) int {
	flags, err := cli.ParseRunFlags(args)
	if err != nil {
		return fatalConfig("live: %v", err)
	}
	cfg, log, err := loadConfig(flags.CommonFlags)
	if err != nil {
		return fatalConfig("live: %v", err)
	}

	apiKey := os.Getenv("BYBIT_API_KEY")
	apiSecret := os.Getenv("BYBIT_API_SECRET")
	if apiKey == "" || apiSecret == "" {
		return fatalConfig("live: BYBIT_API_KEY and BYBIT_API_SECRET must be set in the environment or -env file")
	}

	startingCash, err := decimal.NewFromString(*flags.StartingCash)
	if err != nil {
		return fatalConfig("live: invalid -starting-cash %q: %v", *flags.StartingCash, err)
	}

	client := bybit.NewClient(bybit.Config{APIKey: apiKey, APISecret: apiSecret, Testnet: cfg.Exchange.Sandbox})
	adapter := bybit.New(client, venueSymbol(cfg.Exchange.TradingPair))

	return runControlLoop(cfg, log, adapter, startingCash)
}

// runControlLoop wires the Grid Engine, Order Lifecycle Manager, Risk
// Supervisor, Position Ledger, and State Store the same way for both
// `live` and `paper` — the only difference between the two modes is
// which venue.Adapter gets passed in.
func runControlLoop(cfg *config.Config, log *telemetry.Logger, adapter venue.Adapter, startingCash decimal.Decimal) int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("received interrupt, shutting down")
		cancel()
	}()

	symbol := cfg.Exchange.TradingPair
	clk := clock.Real{}

	ticker, err := adapter.FetchTicker(ctx, venueSymbol(symbol))
	if err != nil {
		return fatalConfig("live: fetching initial ticker: %v", err)
	}

	stateDir := "state"
	store, err := state.New(stateDir, symbol)
	if err != nil {
		return fatalConfig("live: opening state store: %v", err)
	}

	snap, err := store.Load()
	if err != nil {
		return fatalConfig("live: loading prior state: %v", err)
	}

	engineCfg := cfg.ToGridEngineConfig(symbol, ticker.Last, 2, 6)
	engine := gridengine.New(engineCfg, ticker.Last)
	led := ledger.New(clk, symbol, startingCash)
	if snap != nil {
		controlloop.RestoreFrom(engine, led, snap)
	}

	om := orders.New(orders.Config{
		Symbol:            symbol,
		RequestsPerSecond: 5,
		BurstSize:         10,
		MaxRetries:        3,
		RetryBaseDelay:    time.Second,
	}, adapter, clk, log)

	sup := risk.New(cfg.ToThresholds(startingCash))

	var notifier notifications.Notifier
	if cfg.Notifications.Enabled {
		notifier = notifications.NewTelegramNotifier(cfg.Notifications.TelegramToken, cfg.Notifications.TelegramChat)
	}

	health := startMonitoringServers(cfg, log)

	loop := controlloop.New(controlloop.Config{
		Symbol:        symbol,
		PollInterval:  time.Duration(cfg.Grid.RecalibrationIntervalMinutes) * time.Minute / 6,
		Thresholds:    cfg.ToThresholds(startingCash),
		OHLCVLookback: 60,
	}, engine, om, sup, led, adapter, store, notifier, log, clk, nil, nil).WithHealth(health)

	if err := loop.Run(ctx); err != nil {
		log.Risk("control loop stopped: %v", err)
		return exitEmergencyStop
	}
	if ctx.Err() != nil {
		return exitSignal
	}
	return exitOK
}
