package config

import (
	"github.com/shopspring/decimal"

	"github.com/gridai/gridai/internal/gridengine"
	"github.com/gridai/gridai/internal/risk"
)

// warnFraction is how far below each PAUSE threshold the derived WARN
// band sits. The config format only asks the operator for the harder
// limit; the Risk Supervisor's graduated WARN band is this module's
// inference, not something spec.md's configuration section asks an
// operator to set directly.
var warnFraction = decimal.NewFromFloat(0.8)

// ToThresholds derives the Risk Supervisor's graduated Thresholds from
// the operator-facing RiskConfig. startingCash is the allocated capital
// the ledger was opened with, needed to turn daily_loss_cap_usdt into
// the percentage the supervisor's DailyLossPct check compares against.
func (c *Config) ToThresholds(startingCash decimal.Decimal) risk.Thresholds {
	dailyLossPausePct := c.Risk.DailyLossCapUSDT
	if startingCash.IsPositive() {
		dailyLossPausePct = c.Risk.DailyLossCapUSDT.Div(startingCash).Mul(decimal.NewFromInt(100))
	}

	return risk.Thresholds{
		DrawdownWarnPct:         c.Risk.MaxDrawdownPct.Mul(warnFraction),
		DrawdownPausePct:        c.Risk.MaxDrawdownPct,
		DrawdownStopPct:         c.Risk.EmergencyStopLossPct,
		CapitalDeployedWarnPct:  c.Risk.MaxCapitalDeployedPct.Mul(warnFraction),
		CapitalDeployedPausePct: c.Risk.MaxCapitalDeployedPct,
		DailyLossWarnPct:        dailyLossPausePct.Mul(warnFraction),
		DailyLossPausePct:       dailyLossPausePct,
		MaxOrdersPerDay:         c.Risk.MaxOrdersPerDay,
		MaxFeePct:               c.Risk.MaxFeePct,
	}
}

// ToGridEngineConfig derives a gridengine.Config from GridConfig's
// percentage/notional terms. The engine itself turns UpperBoundPct/
// LowerBoundPct into bounds and spacing once a center price is known
// (CalculateGrid), so this just passes the operator-facing terms through
// unchanged; order_size_usdt is carried as a per-level USDT notional
// rather than pre-converted to a fixed base-asset quantity, since each
// rung's price (and so its base-asset size) differs under the
// candidate-price model.
func (c *Config) ToGridEngineConfig(symbol string, centerPrice decimal.Decimal, priceDecimals, quantityDecimals int32) gridengine.Config {
	g := c.Grid
	return gridengine.Config{
		Symbol:           symbol,
		NumGrids:         g.NumGrids,
		UpperBoundPct:    g.UpperBoundPct,
		LowerBoundPct:    g.LowerBoundPct,
		OrderSizeUSDT:    g.OrderSizeUSDT,
		PriceDecimals:    priceDecimals,
		QuantityDecimals: quantityDecimals,
		MaxOpenOrders:    g.MaxOpenOrders,
	}
}
