package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/gridai/gridai/internal/clock"
)

func TestRecordBuyUpdatesAverageCostAndCash(t *testing.T) {
	clk := clock.NewFixed(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	l := New(clk, "BTC/USDT", decimal.NewFromInt(10000))

	l.RecordBuy(decimal.NewFromInt(50000), decimal.NewFromFloat(0.01), decimal.NewFromFloat(0.5), clk.Now())
	pos := l.Position()
	assert.True(t, pos.BaseQuantity.Equal(decimal.NewFromFloat(0.01)))
	assert.True(t, pos.AverageCost.Equal(decimal.NewFromInt(50000)))
	assert.True(t, pos.CashAllocated.Equal(decimal.NewFromInt(10000).Sub(decimal.NewFromInt(500)).Sub(decimal.NewFromFloat(0.5))))
}

func TestRecordCompletedTradeRealizesPnL(t *testing.T) {
	clk := clock.NewFixed(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	l := New(clk, "BTC/USDT", decimal.NewFromInt(10000))

	trade := l.RecordCompletedTrade("buy-1", "sell-1",
		decimal.NewFromInt(50000), decimal.NewFromInt(50100),
		decimal.NewFromFloat(0.01), decimal.NewFromFloat(0.1),
		clk.Now(), clk.Now(), false)

	assert.True(t, trade.RealizedPnL.Equal(decimal.NewFromFloat(0.9)))
	assert.False(t, trade.ApproxBuyPair)
	assert.True(t, l.Position().RealizedPnL.Equal(decimal.NewFromFloat(0.9)))
}

func TestDailyCountersResetOnNewUTCDay(t *testing.T) {
	clk := clock.NewFixed(time.Date(2026, 1, 1, 23, 0, 0, 0, time.UTC))
	l := New(clk, "BTC/USDT", decimal.NewFromInt(10000))
	l.RecordBuy(decimal.NewFromInt(50000), decimal.NewFromFloat(0.01), decimal.Zero, clk.Now())
	assert.Equal(t, 1, l.Position().DailyTradeCount)

	nextDay := time.Date(2026, 1, 2, 1, 0, 0, 0, time.UTC)
	l.RecordBuy(decimal.NewFromInt(50000), decimal.NewFromFloat(0.01), decimal.Zero, nextDay)
	assert.Equal(t, 1, l.Position().DailyTradeCount)
}

func TestSnapshotEquityTracksDrawdown(t *testing.T) {
	clk := clock.NewFixed(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	l := New(clk, "BTC/USDT", decimal.NewFromInt(10000))

	snap1 := l.SnapshotEquity(decimal.NewFromInt(50000), clk.Now())
	assert.True(t, snap1.DrawdownPct.IsZero())

	l.RecordBuy(decimal.NewFromInt(50000), decimal.NewFromFloat(0.1), decimal.Zero, clk.Now())
	snap2 := l.SnapshotEquity(decimal.NewFromInt(40000), clk.Now())
	assert.True(t, snap2.DrawdownPct.GreaterThan(decimal.Zero))
}

func TestCapitalDeployedPct(t *testing.T) {
	clk := clock.NewFixed(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	l := New(clk, "BTC/USDT", decimal.NewFromInt(10000))
	l.RecordBuy(decimal.NewFromInt(50000), decimal.NewFromFloat(0.1), decimal.Zero, clk.Now())

	pct := l.CapitalDeployedPct(decimal.NewFromInt(50000))
	assert.True(t, pct.GreaterThan(decimal.Zero))
	assert.True(t, pct.LessThan(decimal.NewFromInt(100)))
}
