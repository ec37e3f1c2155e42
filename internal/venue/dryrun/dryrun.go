// Package dryrun implements venue.Adapter against an in-memory book, used
// by `gridai paper` and by the backtest replay loop. Orders below/above
// the last-seen price fill immediately the next time Tick observes a
// crossing price, mirroring a resting limit order on a real venue.
package dryrun

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gridai/gridai/internal/venue"
)

type restingOrder struct {
	snapshot venue.OrderSnapshot
	side     string
	price    decimal.Decimal
	quantity decimal.Decimal
}

// Adapter simulates venue fills against a locally fed price stream; it
// never talks to the network.
type Adapter struct {
	mu     sync.Mutex
	orders map[string]*restingOrder
	last   venue.Ticker
	fee    decimal.Decimal // proportional fee rate; stored only, simulated fills carry no fee
}

func New(fee decimal.Decimal) *Adapter {
	return &Adapter{orders: make(map[string]*restingOrder), fee: fee}
}

func (a *Adapter) Name() string { return "dryrun" }

// Tick feeds the simulator the latest price and fills any resting order
// the price has crossed. Called by the control loop once per tick
// (paper mode) or once per replayed candle (backtest mode).
func (a *Adapter) Tick(last venue.Ticker) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.last = last
	for _, o := range a.orders {
		if o.snapshot.Status != "OPEN" {
			continue
		}
		crossed := (o.side == "BUY" && last.Last.LessThanOrEqual(o.price)) ||
			(o.side == "SELL" && last.Last.GreaterThanOrEqual(o.price))
		if crossed {
			o.snapshot.Status = "FILLED"
			o.snapshot.FilledQuantity = o.quantity
			o.snapshot.AvgFillPrice = o.price
			o.snapshot.UpdatedAt = last.Timestamp
		}
	}
}

func (a *Adapter) place(ctx context.Context, clientOrderID, symbol, side string, price, quantity decimal.Decimal) (venue.OrderResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := uuid.NewString()
	now := time.Now().UTC()
	a.orders[id] = &restingOrder{
		side: side, price: price, quantity: quantity,
		snapshot: venue.OrderSnapshot{
			VenueOrderID:  id,
			ClientOrderID: clientOrderID,
			Status:        "OPEN",
			UpdatedAt:     now,
		},
	}
	return venue.OrderResult{VenueOrderID: id, Status: "OPEN", SubmittedAt: now}, nil
}

func (a *Adapter) PlaceBuy(ctx context.Context, clientOrderID, symbol string, price, quantity decimal.Decimal) (venue.OrderResult, error) {
	return a.place(ctx, clientOrderID, symbol, "BUY", price, quantity)
}

func (a *Adapter) PlaceSell(ctx context.Context, clientOrderID, symbol string, price, quantity decimal.Decimal) (venue.OrderResult, error) {
	return a.place(ctx, clientOrderID, symbol, "SELL", price, quantity)
}

func (a *Adapter) CancelOrder(ctx context.Context, venueOrderID, symbol string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	o, ok := a.orders[venueOrderID]
	if !ok {
		return fmt.Errorf("dryrun: unknown order %s", venueOrderID)
	}
	if o.snapshot.Status == "OPEN" {
		o.snapshot.Status = "CANCELLED"
	}
	return nil
}

func (a *Adapter) FetchOrder(ctx context.Context, venueOrderID, symbol string) (venue.OrderSnapshot, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	o, ok := a.orders[venueOrderID]
	if !ok {
		return venue.OrderSnapshot{}, fmt.Errorf("dryrun: unknown order %s", venueOrderID)
	}
	return o.snapshot, nil
}

func (a *Adapter) FetchOpenOrders(ctx context.Context, symbol string) ([]venue.OrderSnapshot, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]venue.OrderSnapshot, 0)
	for _, o := range a.orders {
		if o.snapshot.Status == "OPEN" {
			out = append(out, o.snapshot)
		}
	}
	return out, nil
}

func (a *Adapter) FetchTicker(ctx context.Context, symbol string) (venue.Ticker, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last, nil
}

func (a *Adapter) FetchRecentOHLCV(ctx context.Context, symbol string, limit int) ([]venue.Candle, error) {
	return nil, fmt.Errorf("dryrun: historical OHLCV must be supplied by the backtest data loader, not the adapter")
}
