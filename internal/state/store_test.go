package state

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridai/gridai/internal/gridmodel"
)

func TestSaveAndLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir, "BTC/USDT")
	require.NoError(t, err)

	snap := Snapshot{
		TickCount: 42,
		Grid: gridmodel.GridState{
			Symbol:      "BTC/USDT",
			CenterPrice: decimal.NewFromInt(50000),
		},
		Position: gridmodel.Position{
			Symbol:       "BTC/USDT",
			BaseQuantity: decimal.NewFromFloat(0.1),
		},
	}
	require.NoError(t, store.Save(snap))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, int64(42), loaded.TickCount)
	assert.True(t, loaded.Grid.CenterPrice.Equal(decimal.NewFromInt(50000)))
	assert.Equal(t, "1", loaded.Version)
}

func TestLoadWithNoPriorStateReturnsNil(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir, "BTC/USDT")
	require.NoError(t, err)

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestAppendTradeAndReadBack(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir, "BTC/USDT")
	require.NoError(t, err)

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	trade := gridmodel.TradeRecord{
		Symbol:      "BTC/USDT",
		BuyOrderID:  "buy-1",
		SellOrderID: "sell-1",
		BuyPrice:    decimal.NewFromInt(50000),
		SellPrice:   decimal.NewFromInt(50100),
		Quantity:    decimal.NewFromFloat(0.01),
		OpenedAt:    now,
		ClosedAt:    now,
	}
	require.NoError(t, store.AppendTrade(trade))
	require.NoError(t, store.AppendTrade(trade))

	trades, err := store.Trades()
	require.NoError(t, err)
	assert.Len(t, trades, 2)
	assert.Equal(t, "buy-1", trades[0].BuyOrderID)
}

func TestAppendEquitySnapshotAndReadBack(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir, "BTC/USDT")
	require.NoError(t, err)

	snap := gridmodel.EquitySnapshot{
		Timestamp:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		TotalEquity: decimal.NewFromInt(10500),
	}
	require.NoError(t, store.AppendEquitySnapshot(snap))

	history, err := store.EquityHistory()
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.True(t, history[0].TotalEquity.Equal(decimal.NewFromInt(10500)))
}

func TestSaveRejectsSymbolMismatchOnLoad(t *testing.T) {
	dir := t.TempDir()
	storeA, err := New(dir, "BTC/USDT")
	require.NoError(t, err)
	require.NoError(t, storeA.Save(Snapshot{}))

	storeB, err := New(dir, "BTC-USDT")
	require.NoError(t, err)
	_, err = storeB.Load()
	assert.Error(t, err)
}
