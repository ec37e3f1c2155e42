package orders

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridai/gridai/internal/clock"
	"github.com/gridai/gridai/internal/gridmodel"
	"github.com/gridai/gridai/internal/telemetry"
	"github.com/gridai/gridai/internal/venue"
	"github.com/gridai/gridai/internal/venue/dryrun"
)

func venueTicker(symbol string, last decimal.Decimal) venue.Ticker {
	return venue.Ticker{Symbol: symbol, Last: last, Timestamp: time.Now().UTC()}
}

func testManager(t *testing.T, clk clock.Clock) (*Manager, *dryrun.Adapter) {
	t.Helper()
	adapter := dryrun.New(decimal.NewFromFloat(0.001))
	cfg := Config{
		Symbol:            "BTC/USDT",
		RequestsPerSecond: 100,
		BurstSize:         10,
		MaxRetries:        3,
		RetryBaseDelay:    time.Millisecond,
	}
	mgr := New(cfg, adapter, clk, telemetry.NewStdout(false))
	return mgr, adapter
}

func TestPlaceOrderTracksRecord(t *testing.T) {
	clk := clock.NewFixed(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	mgr, _ := testManager(t, clk)

	record, err := mgr.PlaceOrder(context.Background(), gridmodel.SideBuy, decimal.NewFromInt(50000), decimal.NewFromFloat(0.01))
	require.NoError(t, err)
	assert.NotEmpty(t, record.VenueOrderID)
	assert.Equal(t, gridmodel.OrderStatusNew, record.Status)
	assert.Equal(t, 1, mgr.DailyOrderCount())

	got, ok := mgr.Get(record.ClientOrderID)
	require.True(t, ok)
	assert.Equal(t, record.VenueOrderID, got.VenueOrderID)
}

func TestCheckOrderStatusDetectsFill(t *testing.T) {
	clk := clock.NewFixed(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	mgr, adapter := testManager(t, clk)

	record, err := mgr.PlaceOrder(context.Background(), gridmodel.SideBuy, decimal.NewFromInt(50000), decimal.NewFromFloat(0.01))
	require.NoError(t, err)

	// Price drops through the resting buy, simulating a venue fill.
	adapter.Tick(venueTicker("BTC/USDT", decimal.NewFromInt(49000)))

	filled, err := mgr.CheckOrderStatus(context.Background(), record.ClientOrderID)
	require.NoError(t, err)
	assert.True(t, filled)

	got, _ := mgr.Get(record.ClientOrderID)
	assert.Equal(t, gridmodel.OrderStatusFilled, got.Status)
	require.NotNil(t, got.FilledAt)
}

func TestCancelOrderMarksCancelled(t *testing.T) {
	clk := clock.NewFixed(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	mgr, _ := testManager(t, clk)

	record, err := mgr.PlaceOrder(context.Background(), gridmodel.SideSell, decimal.NewFromInt(51000), decimal.NewFromFloat(0.01))
	require.NoError(t, err)

	err = mgr.CancelOrder(context.Background(), record.ClientOrderID)
	require.NoError(t, err)

	got, _ := mgr.Get(record.ClientOrderID)
	assert.Equal(t, gridmodel.OrderStatusCancelled, got.Status)
}

func TestReconcileOrdersFlagsNoLongerOpen(t *testing.T) {
	clk := clock.NewFixed(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	mgr, adapter := testManager(t, clk)

	record, err := mgr.PlaceOrder(context.Background(), gridmodel.SideBuy, decimal.NewFromInt(50000), decimal.NewFromFloat(0.01))
	require.NoError(t, err)

	adapter.Tick(venueTicker("BTC/USDT", decimal.NewFromInt(49000)))

	changed, err := mgr.ReconcileOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, changed, 1)
	assert.Equal(t, record.ClientOrderID, changed[0].ClientOrderID)
}

func TestDailyOrderCountResetsOnNewUTCDay(t *testing.T) {
	clk := clock.NewFixed(time.Date(2026, 1, 1, 23, 0, 0, 0, time.UTC))
	mgr, _ := testManager(t, clk)

	_, err := mgr.PlaceOrder(context.Background(), gridmodel.SideBuy, decimal.NewFromInt(50000), decimal.NewFromFloat(0.01))
	require.NoError(t, err)
	assert.Equal(t, 1, mgr.DailyOrderCount())

	clk.Set(time.Date(2026, 1, 2, 1, 0, 0, 0, time.UTC))
	_, err = mgr.PlaceOrder(context.Background(), gridmodel.SideBuy, decimal.NewFromInt(50000), decimal.NewFromFloat(0.01))
	require.NoError(t, err)
	assert.Equal(t, 1, mgr.DailyOrderCount())
}

func TestRecentFailureRateTracksOutcomes(t *testing.T) {
	clk := clock.NewFixed(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	mgr, _ := testManager(t, clk)
	assert.True(t, mgr.RecentFailureRate().IsZero())

	_, _ = mgr.PlaceOrder(context.Background(), gridmodel.SideBuy, decimal.NewFromInt(50000), decimal.NewFromFloat(0.01))
	assert.True(t, mgr.RecentFailureRate().IsZero())
}
