// Package monitoring exposes the gauges and counters spec.md §7 says the
// dashboard reads: exchange connectivity, API latency, the trailing hour
// of failed order submissions, and whether the last reconciliation pass
// found a discrepancy. Grounded on the teacher's prometheus/client_golang
// wiring, relabeled from DCA-bot metric names to the grid engine's.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ExchangeConnected = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gridai_exchange_connected",
			Help: "1 when the venue adapter's last call succeeded, 0 otherwise",
		},
		[]string{"symbol", "venue"},
	)

	APILatencySeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gridai_api_latency_seconds",
			Help:    "Venue API call latency",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"venue", "operation"},
	)

	FailedOrdersLastHour = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gridai_failed_orders_count_1h",
			Help: "Order submissions that failed in the trailing hour",
		},
		[]string{"symbol"},
	)

	ReconciliationOK = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gridai_reconciliation_ok",
			Help: "1 when the last reconciliation pass found no discrepancy, 0 otherwise",
		},
		[]string{"symbol"},
	)

	RiskLevel = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gridai_risk_level",
			Help: "Current risk level, 0=OK 1=WARN 2=PAUSE 3=EMERGENCY_STOP",
		},
		[]string{"symbol"},
	)

	CompletedTrades = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridai_trades_total",
			Help: "Completed round-trip trades",
		},
		[]string{"symbol"},
	)

	RealizedPnL = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gridai_trade_realized_pnl",
			Help:    "Realized P&L per completed round trip",
			Buckets: prometheus.LinearBuckets(-100, 10, 20),
		},
		[]string{"symbol"},
	)
)

// RecordTrade updates the trade counter and P&L histogram for one
// completed round trip, called from the control loop's fill handler.
func RecordTrade(symbol string, realizedPnL float64) {
	CompletedTrades.WithLabelValues(symbol).Inc()
	RealizedPnL.WithLabelValues(symbol).Observe(realizedPnL)
}

// RecordVenueCall updates connectivity and latency gauges after every
// venue adapter call.
func RecordVenueCall(venue, operation string, latencySeconds float64, ok bool) {
	APILatencySeconds.WithLabelValues(venue, operation).Observe(latencySeconds)
	connected := 0.0
	if ok {
		connected = 1.0
	}
	ExchangeConnected.WithLabelValues("", venue).Set(connected)
}

// SetReconciliationOK records whether the last reconciliation pass found
// any order the venue had closed that gridai still thought was open.
func SetReconciliationOK(symbol string, ok bool) {
	v := 0.0
	if ok {
		v = 1.0
	}
	ReconciliationOK.WithLabelValues(symbol).Set(v)
}

// riskLevelValue maps a RiskLevel string to the 0-3 scale RiskLevel
// exports, kept here rather than in gridmodel so the prometheus dependency
// stays confined to this package.
func riskLevelValue(level string) float64 {
	switch level {
	case "EMERGENCY_STOP":
		return 3
	case "PAUSE":
		return 2
	case "WARN":
		return 1
	default:
		return 0
	}
}

// SetRiskLevel records the current aggregate risk level.
func SetRiskLevel(symbol, level string) {
	RiskLevel.WithLabelValues(symbol).Set(riskLevelValue(level))
}

// SetFailedOrdersLastHour records the trailing-hour failed submission
// count the order manager's rolling window approximates.
func SetFailedOrdersLastHour(symbol string, count float64) {
	FailedOrdersLastHour.WithLabelValues(symbol).Set(count)
}
