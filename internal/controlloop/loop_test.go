package controlloop

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridai/gridai/internal/clock"
	"github.com/gridai/gridai/internal/gridengine"
	"github.com/gridai/gridai/internal/ledger"
	"github.com/gridai/gridai/internal/orders"
	"github.com/gridai/gridai/internal/risk"
	"github.com/gridai/gridai/internal/state"
	"github.com/gridai/gridai/internal/telemetry"
	"github.com/gridai/gridai/internal/venue"
	"github.com/gridai/gridai/internal/venue/dryrun"
)

// fakeNotifier records every alert fired so tests can assert on
// escalation notifications without a real Telegram/Slack sink.
type fakeNotifier struct {
	alerts []string
}

func (f *fakeNotifier) SendAlert(level, message string) error {
	f.alerts = append(f.alerts, level+": "+message)
	return nil
}

func looseThresholds() risk.Thresholds {
	return risk.Thresholds{
		DrawdownWarnPct:         decimal.NewFromFloat(50),
		DrawdownPausePct:        decimal.NewFromFloat(80),
		DrawdownStopPct:         decimal.NewFromFloat(95),
		CapitalDeployedWarnPct:  decimal.NewFromFloat(90),
		CapitalDeployedPausePct: decimal.NewFromFloat(99),
		DailyLossWarnPct:        decimal.NewFromFloat(50),
		DailyLossPausePct:       decimal.NewFromFloat(80),
		MaxOrdersPerDay:         10000,
		MaxFeePct:               decimal.NewFromFloat(90),
	}
}

// testEngineConfig builds a 4-rung ladder (lower 49800/49900, upper
// 50100/50200) around a center of 50000: spacing 100, nearest resting buy
// at 49900, matching the fixed levels the control loop tests assert on.
func testEngineConfig(symbol string) gridengine.Config {
	return gridengine.Config{
		Symbol:           symbol,
		NumGrids:         4,
		UpperBoundPct:    decimal.NewFromFloat(0.4),
		LowerBoundPct:    decimal.NewFromFloat(0.4),
		OrderSizeUSDT:    decimal.NewFromInt(500),
		PriceDecimals:    2,
		QuantityDecimals: 6,
		MaxOpenOrders:    20,
	}
}

func testLoop(t *testing.T, clk clock.Clock) (*Loop, *dryrun.Adapter, *gridengine.Engine, *ledger.Ledger, *fakeNotifier) {
	t.Helper()
	symbol := "BTC/USDT"
	adapter := dryrun.New(decimal.NewFromFloat(0.001))
	adapter.Tick(venue.Ticker{Symbol: symbol, Last: decimal.NewFromInt(50000), Timestamp: clk.Now()})

	engine := gridengine.New(testEngineConfig(symbol), decimal.NewFromInt(50000))

	om := orders.New(orders.Config{
		Symbol:            symbol,
		RequestsPerSecond: 100,
		BurstSize:         10,
		MaxRetries:        3,
		RetryBaseDelay:    time.Millisecond,
	}, adapter, clk, telemetry.NewStdout(false))

	sup := risk.New(looseThresholds())
	led := ledger.New(clk, symbol, decimal.NewFromInt(10000))
	store, err := state.New(t.TempDir(), symbol)
	require.NoError(t, err)
	notifier := &fakeNotifier{}

	loop := New(Config{
		Symbol:        symbol,
		PollInterval:  time.Second,
		Thresholds:    looseThresholds(),
		OHLCVLookback: 50,
	}, engine, om, sup, led, adapter, store, notifier, telemetry.NewStdout(false), clk, nil, nil)

	return loop, adapter, engine, led, notifier
}

func TestTickPlacesRestingOrdersOnIdleGrid(t *testing.T) {
	clk := clock.NewFixed(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	loop, _, engine, _, _ := testLoop(t, clk)

	require.NoError(t, loop.Tick(context.Background()))

	resting := engine.RestingLevels()
	assert.Len(t, resting, 4)
}

func TestTickHandlesBuyFillAndArmsCounterSell(t *testing.T) {
	clk := clock.NewFixed(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	loop, adapter, engine, led, _ := testLoop(t, clk)

	require.NoError(t, loop.Tick(context.Background()))

	// Price drops through the nearest resting buy at 49900 only.
	adapter.Tick(venue.Ticker{Symbol: "BTC/USDT", Last: decimal.NewFromInt(49850), Timestamp: clk.Now()})
	require.NoError(t, loop.Tick(context.Background()))

	pos := led.Position()
	assert.True(t, pos.BaseQuantity.GreaterThan(decimal.Zero))

	foundArmedSell := false
	for _, lvl := range engine.RestingLevels() {
		if lvl.Side == "SELL" && lvl.OriginBuyOrderID != "" {
			foundArmedSell = true
		}
	}
	assert.True(t, foundArmedSell, "expected a counter sell order carrying OriginBuyOrderID")
}

func TestTickEmergencyStopCancelsOrdersAndReturnsError(t *testing.T) {
	clk := clock.NewFixed(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	loop, _, engine, _, notifier := testLoop(t, clk)

	require.NoError(t, loop.Tick(context.Background()))
	require.NotEmpty(t, engine.RestingLevels())

	strict := looseThresholds()
	strict.DrawdownStopPct = decimal.Zero
	strict.DrawdownPausePct = decimal.Zero
	strict.DrawdownWarnPct = decimal.Zero
	loop.risk = risk.New(strict)

	err := loop.Tick(context.Background())
	require.Error(t, err)
	assert.Empty(t, engine.RestingLevels())
	assert.NotEmpty(t, notifier.alerts)
}

func TestShutdownCancelsDryRunOrdersAndPersists(t *testing.T) {
	clk := clock.NewFixed(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	loop, _, engine, _, _ := testLoop(t, clk)

	require.NoError(t, loop.Tick(context.Background()))
	require.NotEmpty(t, engine.RestingLevels())

	require.NoError(t, loop.shutdown(context.Background()))
	assert.Empty(t, engine.RestingLevels())
}

func TestRestoreFromInstallsPriorSnapshot(t *testing.T) {
	clk := clock.NewFixed(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	_, _, engine, led, _ := testLoop(t, clk)

	saved := engine.Snapshot()
	saved.Paused = true
	savedPos := led.Position()
	savedPos.RealizedPnL = decimal.NewFromInt(42)

	fresh := gridengine.New(testEngineConfig("BTC/USDT"), decimal.NewFromInt(1))
	freshLedger := ledger.New(clk, "BTC/USDT", decimal.NewFromInt(1))

	RestoreFrom(fresh, freshLedger, &state.Snapshot{Grid: saved, Position: savedPos})

	assert.True(t, fresh.Snapshot().Paused)
	assert.True(t, freshLedger.Position().RealizedPnL.Equal(decimal.NewFromInt(42)))
}
