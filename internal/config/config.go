// Package config loads and validates gridai's run configuration: the
// exchange to trade on, the grid's geometry, the risk thresholds the
// Risk Supervisor enforces, and the ambient monitoring/notification
// settings. Layering (default profile -> named profile -> override
// file -> environment) and the manager/validator split mirror the
// teacher's pkg/config package; the file format is YAML instead of
// JSON.
package config

import (
	"github.com/shopspring/decimal"
)

// ExchangeConfig names the venue adapter to construct and the symbol to
// trade on it.
type ExchangeConfig struct {
	Name        string `yaml:"name"`
	TradingPair string `yaml:"trading_pair"`
	Sandbox     bool   `yaml:"sandbox"`
}

// GridConfig parameterizes the grid's geometry in the percentage and
// USDT-notional terms an operator thinks in; internal/config's
// conversion helpers turn these into the gridengine.Config the engine
// actually runs with once a center price is known.
type GridConfig struct {
	NumGrids                     int             `yaml:"num_grids"`
	UpperBoundPct                decimal.Decimal `yaml:"upper_bound_pct"`
	LowerBoundPct                decimal.Decimal `yaml:"lower_bound_pct"`
	OrderSizeUSDT                decimal.Decimal `yaml:"order_size_usdt"`
	RecalibrationIntervalMinutes int             `yaml:"recalibration_interval_minutes"`
	MaxOpenOrders                int             `yaml:"max_open_orders"`
}

// RiskConfig carries the operator-facing thresholds the Risk Supervisor
// enforces. ToThresholds derives the graduated WARN bands the
// supervisor actually checks against.
type RiskConfig struct {
	MaxDrawdownPct        decimal.Decimal `yaml:"max_drawdown_pct"`
	MaxCapitalDeployedPct decimal.Decimal `yaml:"max_capital_deployed_pct"`
	DailyLossCapUSDT      decimal.Decimal `yaml:"daily_loss_cap_usdt"`
	EmergencyStopLossPct  decimal.Decimal `yaml:"emergency_stop_loss_pct"`
	MaxOrdersPerDay       int             `yaml:"max_orders_per_day"`
	MaxFeePct             decimal.Decimal `yaml:"max_fee_pct"`
	SlippageTolerancePct  decimal.Decimal `yaml:"slippage_tolerance_pct"`
}

// MonitoringConfig configures the Prometheus and health-check HTTP
// surfaces and the logger's verbosity.
type MonitoringConfig struct {
	LogLevel    string `yaml:"log_level"`
	MetricsAddr string `yaml:"metrics_addr"`
	HealthAddr  string `yaml:"health_addr"`
}

// NotificationsConfig configures the Telegram escalation channel. Token
// and chat are read only from the YAML layers; no environment variable
// sets them.
type NotificationsConfig struct {
	Enabled       bool   `yaml:"enabled"`
	TelegramToken string `yaml:"telegram_token"`
	TelegramChat  string `yaml:"telegram_chat"`
}

// Config is the fully layered, validated run configuration gridai
// loads once at startup.
type Config struct {
	Exchange      ExchangeConfig      `yaml:"exchange"`
	Grid          GridConfig          `yaml:"grid"`
	Risk          RiskConfig          `yaml:"risk"`
	Monitoring    MonitoringConfig    `yaml:"monitoring"`
	Notifications NotificationsConfig `yaml:"notifications"`
}
