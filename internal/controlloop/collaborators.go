// Package controlloop is the per-tick orchestrator: it wires the Grid
// Engine, Order Lifecycle Manager, Risk Supervisor, Position Ledger, and
// venue adapter together and drives them through one tick at the
// poll_interval cadence, grounded on the teacher's tradingLoop/
// checkAndTrade shape in internal/bot/live_bot.go.
package controlloop

import (
	"github.com/shopspring/decimal"
)

// TrendSignal is the trend detector's verdict, sampled every 6th tick.
type TrendSignal struct {
	RequestPause bool
	Reason       string
}

// VolatilitySignal is the volatility classifier's verdict, sampled on the
// same cadence as TrendSignal.
type VolatilitySignal struct {
	RegimeMultiplier decimal.Decimal
	Confidence       decimal.Decimal
}

// TrendDetector is an external collaborator the loop consults at 1/6 the
// tick rate; gridai ships no concrete implementation, matching the
// spec's stance that grid geometry never computes its own trend signal.
type TrendDetector interface {
	Detect(candles []Candle) (TrendSignal, error)
}

// VolatilityClassifier is the companion collaborator for regime spacing.
type VolatilityClassifier interface {
	Classify(candles []Candle) (VolatilitySignal, error)
}

// Candle mirrors venue.Candle so this package's public interfaces don't
// force every caller to import internal/venue just for the OHLCV shape.
type Candle struct {
	Open, High, Low, Close, Volume decimal.Decimal
}

// minCandlesForSignal is the spec's "sufficient candle history" floor
// below which trend/volatility sampling is skipped for the tick.
const minCandlesForSignal = 50

// signalCadenceTicks is how often (in ticks) trend, volatility, and
// reconciliation are sampled — 1/6 of the poll rate, per spec.
const signalCadenceTicks = 6
