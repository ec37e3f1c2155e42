package config

import "github.com/shopspring/decimal"

// Default returns the built-in "default" profile gridai ships with.
// Every named profile and override file layers on top of this one, so
// it must stand alone as a valid, conservative configuration.
func Default() *Config {
	return &Config{
		Exchange: ExchangeConfig{
			Name:        "dryrun",
			TradingPair: "BTC/USDT",
			Sandbox:     true,
		},
		Grid: GridConfig{
			NumGrids:                     10,
			UpperBoundPct:                decimal.NewFromFloat(5),
			LowerBoundPct:                decimal.NewFromFloat(5),
			OrderSizeUSDT:                decimal.NewFromFloat(50),
			RecalibrationIntervalMinutes: 60,
			MaxOpenOrders:                20,
		},
		Risk: RiskConfig{
			MaxDrawdownPct:        decimal.NewFromFloat(10),
			MaxCapitalDeployedPct: decimal.NewFromFloat(80),
			DailyLossCapUSDT:      decimal.NewFromFloat(200),
			EmergencyStopLossPct:  decimal.NewFromFloat(20),
			MaxOrdersPerDay:       200,
			MaxFeePct:             decimal.NewFromFloat(0.5),
			SlippageTolerancePct:  decimal.NewFromFloat(0.5),
		},
		Monitoring: MonitoringConfig{
			LogLevel:    "info",
			MetricsAddr: ":9090",
			HealthAddr:  ":8080",
		},
		Notifications: NotificationsConfig{
			Enabled: false,
		},
	}
}
