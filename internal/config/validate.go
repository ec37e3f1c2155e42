package config

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Numeric range constants enforced by Validate, named after the
// section.key they bound.
const (
	MinNumGrids      = 2
	MaxNumGrids      = 100
	MinBoundPct      = 0.1
	MinOrderSizeUSDT = 1.0
	MinRiskPct       = 0.1
	MaxRiskPct       = 100.0
)

// Validate checks every required section and key against the ranges
// spec.md's configuration section names. It is the single gate Load
// runs after layering completes, mirroring the teacher's
// ConfigManager.LoadConfig -> ValidateConfig sequence.
func (c *Config) Validate() error {
	if err := c.validateExchange(); err != nil {
		return err
	}
	if err := c.validateGrid(); err != nil {
		return err
	}
	if err := c.validateRisk(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateExchange() error {
	if c.Exchange.Name == "" {
		return fmt.Errorf("exchange.name is required")
	}
	if c.Exchange.TradingPair == "" {
		return fmt.Errorf("exchange.trading_pair is required")
	}
	return nil
}

func (c *Config) validateGrid() error {
	g := c.Grid
	if g.NumGrids < MinNumGrids || g.NumGrids > MaxNumGrids {
		return fmt.Errorf("grid.num_grids must be between %d and %d, got: %d", MinNumGrids, MaxNumGrids, g.NumGrids)
	}
	if g.UpperBoundPct.LessThanOrEqual(decimal.NewFromFloat(MinBoundPct)) {
		return fmt.Errorf("grid.upper_bound_pct must be greater than %.1f, got: %s", MinBoundPct, g.UpperBoundPct)
	}
	if g.LowerBoundPct.LessThanOrEqual(decimal.NewFromFloat(MinBoundPct)) {
		return fmt.Errorf("grid.lower_bound_pct must be greater than %.1f, got: %s", MinBoundPct, g.LowerBoundPct)
	}
	if g.OrderSizeUSDT.LessThanOrEqual(decimal.NewFromFloat(MinOrderSizeUSDT)) {
		return fmt.Errorf("grid.order_size_usdt must be greater than %.1f, got: %s", MinOrderSizeUSDT, g.OrderSizeUSDT)
	}
	if g.RecalibrationIntervalMinutes <= 0 {
		return fmt.Errorf("grid.recalibration_interval_minutes must be positive, got: %d", g.RecalibrationIntervalMinutes)
	}
	if g.MaxOpenOrders <= 0 {
		return fmt.Errorf("grid.max_open_orders must be positive, got: %d", g.MaxOpenOrders)
	}
	if g.MaxOpenOrders < g.NumGrids {
		return fmt.Errorf("grid.max_open_orders (%d) must be at least num_grids (%d) to cover the full ladder", g.MaxOpenOrders, g.NumGrids)
	}
	return nil
}

func (c *Config) validateRisk() error {
	r := c.Risk
	lo, hi := decimal.NewFromFloat(MinRiskPct), decimal.NewFromFloat(MaxRiskPct)
	if r.MaxDrawdownPct.LessThan(lo) || r.MaxDrawdownPct.GreaterThan(hi) {
		return fmt.Errorf("risk.max_drawdown_pct must be between %.1f and %.1f, got: %s", MinRiskPct, MaxRiskPct, r.MaxDrawdownPct)
	}
	if r.MaxCapitalDeployedPct.LessThan(lo) || r.MaxCapitalDeployedPct.GreaterThan(hi) {
		return fmt.Errorf("risk.max_capital_deployed_pct must be between %.1f and %.1f, got: %s", MinRiskPct, MaxRiskPct, r.MaxCapitalDeployedPct)
	}
	if r.DailyLossCapUSDT.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("risk.daily_loss_cap_usdt must be positive, got: %s", r.DailyLossCapUSDT)
	}
	if r.EmergencyStopLossPct.LessThanOrEqual(r.MaxDrawdownPct) {
		return fmt.Errorf("risk.emergency_stop_loss_pct (%s) must exceed max_drawdown_pct (%s)", r.EmergencyStopLossPct, r.MaxDrawdownPct)
	}
	if r.MaxOrdersPerDay <= 0 {
		return fmt.Errorf("risk.max_orders_per_day must be positive, got: %d", r.MaxOrdersPerDay)
	}
	if r.MaxFeePct.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("risk.max_fee_pct must be positive, got: %s", r.MaxFeePct)
	}
	if r.SlippageTolerancePct.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("risk.slippage_tolerance_pct must be positive, got: %s", r.SlippageTolerancePct)
	}
	return nil
}
