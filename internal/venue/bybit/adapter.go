package bybit

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gridai/gridai/internal/errors"
	"github.com/gridai/gridai/internal/venue"
)

// Adapter implements venue.Adapter against Bybit's spot market, wrapping
// Client's raw order/market calls with the venue.Adapter contract the
// Order Lifecycle Manager depends on, plus a circuit breaker around every
// call so a run of failures trips the breaker; the retries with backoff
// happen here, inside the breaker, since the order manager does not retry.
type Adapter struct {
	client  *Client
	breaker *CircuitBreaker
	symbol  string // venue-native symbol, e.g. "BTCUSDT" (no slash)
}

// New wraps an already-configured Client. Category is always "spot" —
// gridai never trades margin or derivatives instruments.
func New(client *Client, symbol string) *Adapter {
	return &Adapter{
		client:  client,
		breaker: NewCircuitBreaker(5, 30*time.Second),
		symbol:  symbol,
	}
}

func (a *Adapter) Name() string { return fmt.Sprintf("bybit(%s)", a.client.GetEnvironment()) }

func (a *Adapter) call(ctx context.Context, op string, fn func() error) error {
	err := a.breaker.Call(func() error {
		return a.client.RetryWithConfig(ctx, fn, DefaultRetryConfig())
	})
	if err != nil {
		return errors.CategorizeError(err, "venue.bybit", op)
	}
	return nil
}

func (a *Adapter) PlaceBuy(ctx context.Context, clientOrderID, symbol string, price, quantity decimal.Decimal) (venue.OrderResult, error) {
	return a.place(ctx, clientOrderID, symbol, OrderSideBuy, price, quantity)
}

func (a *Adapter) PlaceSell(ctx context.Context, clientOrderID, symbol string, price, quantity decimal.Decimal) (venue.OrderResult, error) {
	return a.place(ctx, clientOrderID, symbol, OrderSideSell, price, quantity)
}

func (a *Adapter) place(ctx context.Context, clientOrderID, symbol string, side OrderSide, price, quantity decimal.Decimal) (venue.OrderResult, error) {
	var order *Order
	err := a.call(ctx, "place_order", func() error {
		var placeErr error
		order, placeErr = a.client.PlaceOrder(ctx, PlaceOrderParams{
			Category:    "spot",
			Symbol:      symbol,
			Side:        side,
			OrderType:   OrderTypeLimit,
			Qty:         quantity.String(),
			Price:       price.String(),
			TimeInForce: TimeInForceGTC,
			OrderLinkID: clientOrderID,
			PostOnly:    true,
		})
		return placeErr
	})
	if err != nil {
		return venue.OrderResult{}, err
	}
	return venue.OrderResult{
		VenueOrderID: order.OrderID,
		Status:       string(order.OrderStatus),
		SubmittedAt:  time.Now().UTC(),
	}, nil
}

func (a *Adapter) CancelOrder(ctx context.Context, venueOrderID, symbol string) error {
	return a.call(ctx, "cancel_order", func() error {
		return a.client.CancelOrder(ctx, "spot", symbol, venueOrderID)
	})
}

func (a *Adapter) FetchOrder(ctx context.Context, venueOrderID, symbol string) (venue.OrderSnapshot, error) {
	var order *Order
	err := a.call(ctx, "fetch_order", func() error {
		var fetchErr error
		order, fetchErr = a.client.GetOrderStatus(ctx, "spot", symbol, venueOrderID)
		return fetchErr
	})
	if err != nil {
		return venue.OrderSnapshot{}, err
	}
	return orderToSnapshot(*order), nil
}

func (a *Adapter) FetchOpenOrders(ctx context.Context, symbol string) ([]venue.OrderSnapshot, error) {
	var orders []Order
	err := a.call(ctx, "fetch_open_orders", func() error {
		var fetchErr error
		orders, fetchErr = a.client.GetOpenOrders(ctx, "spot", symbol)
		return fetchErr
	})
	if err != nil {
		return nil, err
	}
	out := make([]venue.OrderSnapshot, 0, len(orders))
	for _, o := range orders {
		out = append(out, orderToSnapshot(o))
	}
	return out, nil
}

func (a *Adapter) FetchTicker(ctx context.Context, symbol string) (venue.Ticker, error) {
	var last float64
	err := a.call(ctx, "fetch_ticker", func() error {
		var fetchErr error
		last, fetchErr = a.client.GetLatestPrice(ctx, "spot", symbol)
		return fetchErr
	})
	if err != nil {
		return venue.Ticker{}, err
	}
	return venue.Ticker{
		Symbol:    symbol,
		Last:      decimal.NewFromFloat(last),
		Timestamp: time.Now().UTC(),
	}, nil
}

func (a *Adapter) FetchRecentOHLCV(ctx context.Context, symbol string, limit int) ([]venue.Candle, error) {
	var klines []Kline
	err := a.call(ctx, "fetch_recent_ohlcv", func() error {
		var fetchErr error
		klines, fetchErr = a.client.GetKlines(ctx, KlineParams{
			Category: "spot",
			Symbol:   symbol,
			Interval: Interval5m,
			Limit:    limit,
		})
		return fetchErr
	})
	if err != nil {
		return nil, err
	}
	out := make([]venue.Candle, 0, len(klines))
	for _, k := range klines {
		out = append(out, venue.Candle{
			Open:      decimal.NewFromFloat(k.OpenPrice),
			High:      decimal.NewFromFloat(k.HighPrice),
			Low:       decimal.NewFromFloat(k.LowPrice),
			Close:     decimal.NewFromFloat(k.ClosePrice),
			Volume:    decimal.NewFromFloat(k.Volume),
			Timestamp: k.StartTime,
		})
	}
	return out, nil
}

func orderToSnapshot(o Order) venue.OrderSnapshot {
	filledQty, _ := decimal.NewFromString(o.CumExecQty)
	avgPrice, _ := decimal.NewFromString(o.AvgPrice)
	return venue.OrderSnapshot{
		VenueOrderID:   o.OrderID,
		ClientOrderID:  o.OrderLinkID,
		Status:         string(o.OrderStatus),
		FilledQuantity: filledQty,
		AvgFillPrice:   avgPrice,
		UpdatedAt:      o.UpdatedTime,
	}
}
