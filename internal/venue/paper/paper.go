// Package paper implements gridai's "simulated placements; real market
// data" mode (spec.md §6: `gridai paper`): ticker and OHLCV reads go to
// the live venue, but every order placement/cancel/fetch is answered by
// the in-memory dryrun.Adapter, fed the live ticker on every read so its
// resting orders fill against real prices without ever sending a venue
// order. Grounded on the same Adapter composition the teacher's
// bybit.Adapter itself uses (wrapping Client with a circuit breaker) —
// here the wrapped concern is execution, not retries.
package paper

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/gridai/gridai/internal/venue"
	"github.com/gridai/gridai/internal/venue/dryrun"
)

// MarketDataSource is the subset of venue.Adapter paper mode reads from
// the real venue; bybit.Adapter satisfies it.
type MarketDataSource interface {
	Name() string
	FetchTicker(ctx context.Context, symbol string) (venue.Ticker, error)
	FetchRecentOHLCV(ctx context.Context, symbol string, limit int) ([]venue.Candle, error)
}

// Adapter satisfies venue.Adapter, reading market data from a live
// source and simulating every placement against dryrun.
type Adapter struct {
	market MarketDataSource
	sim    *dryrun.Adapter
}

func New(market MarketDataSource, fee decimal.Decimal) *Adapter {
	return &Adapter{market: market, sim: dryrun.New(fee)}
}

func (a *Adapter) Name() string { return "paper(" + a.market.Name() + ")" }

// FetchTicker reads the live price and feeds it to the simulator so any
// resting paper order that now crosses the market fills.
func (a *Adapter) FetchTicker(ctx context.Context, symbol string) (venue.Ticker, error) {
	t, err := a.market.FetchTicker(ctx, symbol)
	if err != nil {
		return venue.Ticker{}, err
	}
	a.sim.Tick(t)
	return t, nil
}

func (a *Adapter) FetchRecentOHLCV(ctx context.Context, symbol string, limit int) ([]venue.Candle, error) {
	return a.market.FetchRecentOHLCV(ctx, symbol, limit)
}

func (a *Adapter) PlaceBuy(ctx context.Context, clientOrderID, symbol string, price, quantity decimal.Decimal) (venue.OrderResult, error) {
	return a.sim.PlaceBuy(ctx, clientOrderID, symbol, price, quantity)
}

func (a *Adapter) PlaceSell(ctx context.Context, clientOrderID, symbol string, price, quantity decimal.Decimal) (venue.OrderResult, error) {
	return a.sim.PlaceSell(ctx, clientOrderID, symbol, price, quantity)
}

func (a *Adapter) CancelOrder(ctx context.Context, venueOrderID, symbol string) error {
	return a.sim.CancelOrder(ctx, venueOrderID, symbol)
}

func (a *Adapter) FetchOrder(ctx context.Context, venueOrderID, symbol string) (venue.OrderSnapshot, error) {
	return a.sim.FetchOrder(ctx, venueOrderID, symbol)
}

func (a *Adapter) FetchOpenOrders(ctx context.Context, symbol string) ([]venue.OrderSnapshot, error) {
	return a.sim.FetchOpenOrders(ctx, symbol)
}
