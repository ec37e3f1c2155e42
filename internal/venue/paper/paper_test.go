package paper

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridai/gridai/internal/venue"
)

// fakeMarket is a MarketDataSource stub returning a fixed ticker and
// candle set, standing in for bybit.Adapter's live reads.
type fakeMarket struct {
	ticker  venue.Ticker
	candles []venue.Candle
}

func (f *fakeMarket) Name() string { return "fake" }

func (f *fakeMarket) FetchTicker(ctx context.Context, symbol string) (venue.Ticker, error) {
	return f.ticker, nil
}

func (f *fakeMarket) FetchRecentOHLCV(ctx context.Context, symbol string, limit int) ([]venue.Candle, error) {
	return f.candles, nil
}

func TestNameReportsWrappedMarket(t *testing.T) {
	market := &fakeMarket{}
	adapter := New(market, decimal.NewFromFloat(0.001))
	assert.Equal(t, "paper(fake)", adapter.Name())
}

func TestFetchTickerFeedsSimulator(t *testing.T) {
	market := &fakeMarket{ticker: venue.Ticker{Symbol: "BTC/USDT", Last: decimal.NewFromInt(50000), Timestamp: time.Now().UTC()}}
	adapter := New(market, decimal.NewFromFloat(0.001))

	record, err := adapter.PlaceBuy(context.Background(), "client-1", "BTC/USDT", decimal.NewFromInt(50500), decimal.NewFromFloat(0.01))
	require.NoError(t, err)
	assert.Equal(t, "OPEN", record.Status)

	// Ticker at 50000 crosses the resting 50500 buy; FetchTicker must feed
	// that price into the simulator so the order fills, not just return it.
	got, err := adapter.FetchTicker(context.Background(), "BTC/USDT")
	require.NoError(t, err)
	assert.True(t, got.Last.Equal(decimal.NewFromInt(50000)))

	snap, err := adapter.FetchOrder(context.Background(), record.VenueOrderID, "BTC/USDT")
	require.NoError(t, err)
	assert.Equal(t, "FILLED", snap.Status)
}

func TestFetchRecentOHLCVPassesThroughToMarket(t *testing.T) {
	candles := []venue.Candle{{Close: decimal.NewFromInt(100), Timestamp: time.Now().UTC()}}
	market := &fakeMarket{candles: candles}
	adapter := New(market, decimal.NewFromFloat(0.001))

	got, err := adapter.FetchRecentOHLCV(context.Background(), "BTC/USDT", 10)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.True(t, got[0].Close.Equal(decimal.NewFromInt(100)))
}

func TestPlacementsNeverReachMarket(t *testing.T) {
	market := &fakeMarket{ticker: venue.Ticker{Symbol: "BTC/USDT", Last: decimal.NewFromInt(50000), Timestamp: time.Now().UTC()}}
	adapter := New(market, decimal.NewFromFloat(0.001))

	buy, err := adapter.PlaceBuy(context.Background(), "client-buy", "BTC/USDT", decimal.NewFromInt(49000), decimal.NewFromFloat(0.01))
	require.NoError(t, err)
	sell, err := adapter.PlaceSell(context.Background(), "client-sell", "BTC/USDT", decimal.NewFromInt(51000), decimal.NewFromFloat(0.01))
	require.NoError(t, err)

	open, err := adapter.FetchOpenOrders(context.Background(), "BTC/USDT")
	require.NoError(t, err)
	assert.Len(t, open, 2)

	require.NoError(t, adapter.CancelOrder(context.Background(), buy.VenueOrderID, "BTC/USDT"))
	snap, err := adapter.FetchOrder(context.Background(), buy.VenueOrderID, "BTC/USDT")
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", snap.Status)

	snap, err = adapter.FetchOrder(context.Background(), sell.VenueOrderID, "BTC/USDT")
	require.NoError(t, err)
	assert.Equal(t, "OPEN", snap.Status)
}
