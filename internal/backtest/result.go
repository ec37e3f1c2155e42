// Package backtest replays historical candles through the same
// control loop gridai runs live, producing a Result the reporting
// package renders to console, CSV/Excel, and JSON. Grounded on the
// teacher's cmd/backtest BacktestResults summary shape, rebuilt around
// gridai's own gridmodel types instead of the teacher's DCA cycle/TP
// fields.
package backtest

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/gridai/gridai/internal/gridmodel"
)

// Result is the outcome of one backtest run: every completed round
// trip, the full equity curve, and the summary statistics the
// reporting package formats.
type Result struct {
	Symbol      string
	Start       time.Time
	End         time.Time
	InitialCash decimal.Decimal
	FinalEquity decimal.Decimal

	Trades       []gridmodel.TradeRecord
	EquityCurve  []gridmodel.EquitySnapshot

	TotalReturnPct  decimal.Decimal
	MaxDrawdownPct  decimal.Decimal
	TotalTrades     int
	WinningTrades   int
	LosingTrades    int
	TotalFees       decimal.Decimal
	TotalRealizedPnL decimal.Decimal
}

// Summarize computes the derived statistics from Trades and
// EquityCurve, called once the replay loop finishes. Safe to call on a
// partially-populated Result (e.g. zero trades).
func (r *Result) Summarize() {
	r.TotalTrades = len(r.Trades)
	r.TotalFees = decimal.Zero
	r.TotalRealizedPnL = decimal.Zero

	for _, t := range r.Trades {
		r.TotalFees = r.TotalFees.Add(t.Fees)
		r.TotalRealizedPnL = r.TotalRealizedPnL.Add(t.RealizedPnL)
		if t.RealizedPnL.IsPositive() {
			r.WinningTrades++
		} else if t.RealizedPnL.IsNegative() {
			r.LosingTrades++
		}
	}

	if r.InitialCash.IsPositive() {
		r.TotalReturnPct = r.FinalEquity.Sub(r.InitialCash).Div(r.InitialCash).Mul(decimal.NewFromInt(100))
	}

	maxDD := decimal.Zero
	for _, snap := range r.EquityCurve {
		if snap.DrawdownPct.GreaterThan(maxDD) {
			maxDD = snap.DrawdownPct
		}
	}
	r.MaxDrawdownPct = maxDD
}

// WinRatePct returns the fraction of completed trades with positive
// realized P&L, as a 0-100 percentage. Returns zero when there are no
// trades rather than dividing by zero.
func (r *Result) WinRatePct() decimal.Decimal {
	if r.TotalTrades == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(r.WinningTrades)).Div(decimal.NewFromInt(int64(r.TotalTrades))).Mul(decimal.NewFromInt(100))
}
