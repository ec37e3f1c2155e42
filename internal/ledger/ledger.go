// Package ledger is the Position Ledger: the single source of truth for
// cash, inventory, fees, realized/unrealized P&L, and the equity curve.
// It derives daily accounting resets from the same clock.Clock the Order
// Lifecycle Manager uses, so the two stay anchored to the same UTC
// midnight boundary.
package ledger

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gridai/gridai/internal/clock"
	"github.com/gridai/gridai/internal/gridmodel"
)

// Ledger accumulates state for exactly one symbol; a multi-symbol
// deployment runs one Ledger per grid (Non-goals excludes cross-symbol
// portfolio balancing).
type Ledger struct {
	mu             sync.Mutex
	clock          clock.Clock
	position       gridmodel.Position
	trades         []gridmodel.TradeRecord
	equity         []gridmodel.EquitySnapshot
	initialCapital decimal.Decimal
}

func New(clk clock.Clock, symbol string, startingCash decimal.Decimal) *Ledger {
	now := clk.Now()
	return &Ledger{
		clock:          clk,
		initialCapital: startingCash,
		position: gridmodel.Position{
			Symbol:      symbol,
			CashAllocated: startingCash,
			DailyAnchor: clock.DayAnchor(now),
			PeakEquity:  startingCash,
		},
	}
}

// InitialCapital returns the cash the ledger was opened with, used by
// the Risk Supervisor's fees check to turn cumulative fees paid into a
// percentage of starting capital.
func (l *Ledger) InitialCapital() decimal.Decimal {
	return l.initialCapital
}

// RecordBuy debits cash and credits inventory at the fill price, updating
// the volume-weighted average cost.
func (l *Ledger) RecordBuy(price, quantity, fee decimal.Decimal, filledAt time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rollDailyLocked(filledAt)

	cost := price.Mul(quantity)
	totalCostBefore := l.position.AverageCost.Mul(l.position.BaseQuantity)
	newQty := l.position.BaseQuantity.Add(quantity)
	if newQty.IsPositive() {
		l.position.AverageCost = totalCostBefore.Add(cost).Div(newQty)
	}
	l.position.BaseQuantity = newQty
	l.position.CashAllocated = l.position.CashAllocated.Sub(cost).Sub(fee)
	l.position.FeesPaid = l.position.FeesPaid.Add(fee)
	l.position.DailyTradeCount++
}

// RecordSell credits cash and debits inventory at the fill price. Callers
// should follow with RecordCompletedTrade once the matching buy is known,
// to realize the round-trip P&L.
func (l *Ledger) RecordSell(price, quantity, fee decimal.Decimal, filledAt time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rollDailyLocked(filledAt)

	proceeds := price.Mul(quantity)
	l.position.BaseQuantity = l.position.BaseQuantity.Sub(quantity)
	l.position.CashAllocated = l.position.CashAllocated.Add(proceeds).Sub(fee)
	l.position.FeesPaid = l.position.FeesPaid.Add(fee)
	l.position.DailyTradeCount++
}

// RecordCompletedTrade realizes P&L for a BUY/SELL pair. When
// buyPrice/buyOrderID come from GridLevel.OriginBuyOrderID the pairing is
// exact; approx signals the fallback (sell_price - spacing) path used for
// any SELL fill whose level carries no OriginBuyOrderID, such as the
// SELL rungs of the initial ladder.
func (l *Ledger) RecordCompletedTrade(buyOrderID, sellOrderID string, buyPrice, sellPrice, quantity, fees decimal.Decimal, openedAt, closedAt time.Time, approx bool) gridmodel.TradeRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	pnl := sellPrice.Sub(buyPrice).Mul(quantity).Sub(fees)
	trade := gridmodel.TradeRecord{
		Symbol:        l.position.Symbol,
		BuyOrderID:    buyOrderID,
		SellOrderID:   sellOrderID,
		BuyPrice:      buyPrice,
		SellPrice:     sellPrice,
		Quantity:      quantity,
		Fees:          fees,
		RealizedPnL:   pnl,
		OpenedAt:      openedAt,
		ClosedAt:      closedAt,
		ApproxBuyPair: approx,
	}
	l.trades = append(l.trades, trade)
	l.position.RealizedPnL = l.position.RealizedPnL.Add(pnl)
	l.position.DailyPnL = l.position.DailyPnL.Add(pnl)
	return trade
}

// MarkToMarket updates unrealized P&L against the current market price,
// called once per tick before risk evaluation and equity snapshotting.
func (l *Ledger) MarkToMarket(marketPrice decimal.Decimal) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.position.BaseQuantity.IsZero() {
		l.position.UnrealizedPnL = decimal.Zero
		return
	}
	l.position.UnrealizedPnL = marketPrice.Sub(l.position.AverageCost).Mul(l.position.BaseQuantity)
}

// SnapshotEquity records one equity-curve point and returns it. Total
// equity is cash + inventory value at marketPrice; DrawdownPct is the
// drop from peak equity as a percentage (0-100).
func (l *Ledger) SnapshotEquity(marketPrice decimal.Decimal, at time.Time) gridmodel.EquitySnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	inventoryValue := l.position.BaseQuantity.Mul(marketPrice)
	total := l.position.CashAllocated.Add(inventoryValue)
	if total.GreaterThan(l.position.PeakEquity) {
		l.position.PeakEquity = total
	}
	drawdown := decimal.Zero
	if l.position.PeakEquity.IsPositive() {
		drawdown = l.position.PeakEquity.Sub(total).Div(l.position.PeakEquity).Mul(decimal.NewFromInt(100))
	}
	snap := gridmodel.EquitySnapshot{
		Timestamp:      at,
		CashBalance:    l.position.CashAllocated,
		InventoryValue: inventoryValue,
		TotalEquity:    total,
		DrawdownPct:    drawdown,
	}
	l.equity = append(l.equity, snap)
	return snap
}

// DrawdownPct returns the current drawdown from peak equity, as a
// percentage of peak equity, without recording a new snapshot; used by
// the Risk Supervisor.
func (l *Ledger) DrawdownPct(marketPrice decimal.Decimal) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.position.PeakEquity.IsZero() {
		return decimal.Zero
	}
	inventoryValue := l.position.BaseQuantity.Mul(marketPrice)
	total := l.position.CashAllocated.Add(inventoryValue)
	dd := l.position.PeakEquity.Sub(total).Div(l.position.PeakEquity).Mul(decimal.NewFromInt(100))
	if dd.IsNegative() {
		return decimal.Zero
	}
	return dd
}

// CapitalDeployedPct is the percentage (0-100) of allocated capital
// currently locked in inventory at marketPrice, used by the Risk
// Supervisor.
func (l *Ledger) CapitalDeployedPct(marketPrice decimal.Decimal) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	inventoryValue := l.position.BaseQuantity.Mul(marketPrice)
	total := l.position.CashAllocated.Add(inventoryValue)
	if total.IsZero() {
		return decimal.Zero
	}
	return inventoryValue.Div(total).Mul(decimal.NewFromInt(100))
}

// DailyLossPct returns today's realized loss (unrealized P&L is not
// included) as a percentage of peak equity, used by the Risk Supervisor.
func (l *Ledger) DailyLossPct(marketPrice decimal.Decimal) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.position.PeakEquity.IsZero() {
		return decimal.Zero
	}
	loss := l.position.DailyPnL.Neg()
	if loss.IsNegative() {
		return decimal.Zero
	}
	return loss.Div(l.position.PeakEquity).Mul(decimal.NewFromInt(100))
}

// Restore installs a previously persisted position wholesale, used on
// startup when the state store has a prior snapshot.
func (l *Ledger) Restore(pos gridmodel.Position) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.position = pos
}

// Position returns a copy of the current position snapshot.
func (l *Ledger) Position() gridmodel.Position {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.position
}

// Trades returns every completed round trip recorded so far.
func (l *Ledger) Trades() []gridmodel.TradeRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]gridmodel.TradeRecord(nil), l.trades...)
}

// EquityCurve returns every recorded equity snapshot.
func (l *Ledger) EquityCurve() []gridmodel.EquitySnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]gridmodel.EquitySnapshot(nil), l.equity...)
}

// rollDailyLocked resets the daily counters when filledAt crosses into a
// new UTC day relative to the current anchor. Must be called with mu held.
func (l *Ledger) rollDailyLocked(filledAt time.Time) {
	anchor := clock.DayAnchor(filledAt)
	if anchor.After(l.position.DailyAnchor) {
		l.position.DailyAnchor = anchor
		l.position.DailyPnL = decimal.Zero
		l.position.DailyTradeCount = 0
	}
}
