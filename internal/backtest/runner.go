package backtest

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gridai/gridai/internal/clock"
	"github.com/gridai/gridai/internal/config"
	"github.com/gridai/gridai/internal/controlloop"
	"github.com/gridai/gridai/internal/gridengine"
	"github.com/gridai/gridai/internal/ledger"
	"github.com/gridai/gridai/internal/orders"
	"github.com/gridai/gridai/internal/risk"
	"github.com/gridai/gridai/internal/state"
	"github.com/gridai/gridai/internal/telemetry"
	"github.com/gridai/gridai/internal/venue"
	"github.com/gridai/gridai/internal/venue/dryrun"
)

// dryrunFee mirrors the control loop's own default fee assumption
// (controlloop.defaultFeeRate) so a backtest and a live run against the
// same config price fills identically.
var dryrunFee = decimal.NewFromFloat(0.001)

// Runner replays a candle series through the same controlloop.Loop
// gridai runs live, wired against the dry-run venue adapter instead of
// a real exchange. Grounded on the teacher's cmd/backtest main loop
// (load config, build engine, iterate candles, collect results) but
// delegating every tick's decision-making to the real control loop
// instead of a separate backtest-only simulation path.
type Runner struct {
	cfg              *config.Config
	priceDecimals    int32
	quantityDecimals int32
	log              *telemetry.Logger
}

func NewRunner(cfg *config.Config, priceDecimals, quantityDecimals int32, log *telemetry.Logger) *Runner {
	return &Runner{cfg: cfg, priceDecimals: priceDecimals, quantityDecimals: quantityDecimals, log: log}
}

// Run replays candles in chronological order starting with startingCash,
// returning a summarized Result. stateDir holds the scratch state.Store
// files the run writes trades/equity to; callers typically point this
// at a temp directory since a backtest has no persistence requirement
// of its own.
func (r *Runner) Run(ctx context.Context, candles []venue.Candle, startingCash decimal.Decimal, stateDir string) (*Result, error) {
	if len(candles) == 0 {
		return nil, fmt.Errorf("backtest: no candles to replay")
	}
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return nil, fmt.Errorf("backtest: preparing state dir: %w", err)
	}

	symbol := r.cfg.Exchange.TradingPair
	clk := clock.NewFixed(candles[0].Timestamp)
	adapter := dryrun.New(dryrunFee)

	engineCfg := r.cfg.ToGridEngineConfig(symbol, candles[0].Close, r.priceDecimals, r.quantityDecimals)
	engine := gridengine.New(engineCfg, candles[0].Close)

	om := orders.New(orders.Config{
		Symbol:            symbol,
		RequestsPerSecond: 1000,
		BurstSize:         1000,
		MaxRetries:        3,
		RetryBaseDelay:    time.Second,
	}, adapter, clk, r.log)

	sup := risk.New(r.cfg.ToThresholds(startingCash))
	led := ledger.New(clk, symbol, startingCash)

	store, err := state.New(stateDir, symbol)
	if err != nil {
		return nil, fmt.Errorf("backtest: opening state store: %w", err)
	}

	loop := controlloop.New(controlloop.Config{
		Symbol:       symbol,
		PollInterval: time.Minute,
		Thresholds:   r.cfg.ToThresholds(startingCash),
	}, engine, om, sup, led, adapter, store, nil, r.log, clk, nil, nil)

	for _, candle := range candles {
		clk.Set(candle.Timestamp)
		adapter.Tick(venue.Ticker{Symbol: symbol, Last: candle.Close, Timestamp: candle.Timestamp})
		if err := loop.Tick(ctx); err != nil {
			r.log.Risk("backtest: stopping replay early at %s: %v", candle.Timestamp, err)
			break
		}
	}

	trades, err := store.Trades()
	if err != nil {
		return nil, fmt.Errorf("backtest: reading trades: %w", err)
	}
	equity, err := store.EquityHistory()
	if err != nil {
		return nil, fmt.Errorf("backtest: reading equity history: %w", err)
	}

	result := &Result{
		Symbol:      symbol,
		Start:       candles[0].Timestamp,
		End:         candles[len(candles)-1].Timestamp,
		InitialCash: startingCash,
		FinalEquity: startingCash,
		Trades:      trades,
		EquityCurve: equity,
	}
	if len(equity) > 0 {
		result.FinalEquity = equity[len(equity)-1].TotalEquity
	}
	result.Summarize()
	return result, nil
}
