// Package venue defines the single adapter contract the Order Lifecycle
// Manager talks to, so gridai's order/risk/ledger logic never knows
// whether it is driving a dry-run simulator or a live exchange.
package venue

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// OrderResult is what a venue returns after accepting (not necessarily
// filling) an order.
type OrderResult struct {
	VenueOrderID string
	Status       string // venue-native status string, mapped by the caller to gridmodel.OrderStatus
	SubmittedAt  time.Time
}

// OrderSnapshot is the venue's current view of a previously submitted
// order, returned by FetchOrder/FetchOpenOrders during reconciliation.
type OrderSnapshot struct {
	VenueOrderID   string
	ClientOrderID  string
	Status         string
	FilledQuantity decimal.Decimal
	AvgFillPrice   decimal.Decimal
	UpdatedAt      time.Time
}

// Ticker is the latest traded price/volume for a symbol.
type Ticker struct {
	Symbol    string
	Last      decimal.Decimal
	Bid       decimal.Decimal
	Ask       decimal.Decimal
	Timestamp time.Time
}

// Candle is one OHLCV bar, used by both the backtest replay path and any
// live venue that seeds its grid center from recent history.
type Candle struct {
	Open      decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Close     decimal.Decimal
	Volume    decimal.Decimal
	Timestamp time.Time
}

// Adapter is the one interface the Order Lifecycle Manager depends on.
// Both internal/venue/dryrun and internal/venue/bybit implement it.
type Adapter interface {
	PlaceBuy(ctx context.Context, clientOrderID, symbol string, price, quantity decimal.Decimal) (OrderResult, error)
	PlaceSell(ctx context.Context, clientOrderID, symbol string, price, quantity decimal.Decimal) (OrderResult, error)
	CancelOrder(ctx context.Context, venueOrderID, symbol string) error
	FetchOrder(ctx context.Context, venueOrderID, symbol string) (OrderSnapshot, error)
	FetchOpenOrders(ctx context.Context, symbol string) ([]OrderSnapshot, error)
	FetchTicker(ctx context.Context, symbol string) (Ticker, error)
	FetchRecentOHLCV(ctx context.Context, symbol string, limit int) ([]Candle, error)
	Name() string
}
