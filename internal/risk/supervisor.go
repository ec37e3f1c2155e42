// Package risk runs the five scalar checks the control loop consults
// every tick and escalates OK -> WARN -> PAUSE -> EMERGENCY_STOP. A
// PAUSE or EMERGENCY_STOP latches sticky until an operator calls
// ResetPause; the supervisor never auto-clears a pause on its own, since
// a check that briefly recovers does not mean the underlying condition
// that tripped it is gone.
package risk

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/gridai/gridai/internal/gridmodel"
)

// Thresholds configures the five checks. drawdown/capital_deployed/daily_loss
// each have a WARN and a harder PAUSE/EMERGENCY_STOP band; order_count
// only has a single PAUSE threshold (spec: no graduated WARN band worth
// surfacing separately), and fees only ever WARNs, never pauses.
type Thresholds struct {
	DrawdownWarnPct         decimal.Decimal
	DrawdownPausePct        decimal.Decimal
	DrawdownStopPct         decimal.Decimal
	CapitalDeployedWarnPct  decimal.Decimal
	CapitalDeployedPausePct decimal.Decimal
	DailyLossWarnPct        decimal.Decimal
	DailyLossPausePct       decimal.Decimal
	MaxOrdersPerDay         int             // daily order count at/above which order_count PAUSEs
	MaxFeePct               decimal.Decimal // total fees as a % of initial capital at/above which fees WARNs
}

// Inputs is the scalar state the supervisor checks against thresholds;
// the caller (control loop) assembles it from the Position Ledger and
// Order Lifecycle Manager each tick.
type Inputs struct {
	DrawdownPct        decimal.Decimal
	CapitalDeployedPct decimal.Decimal
	DailyLossPct       decimal.Decimal
	DailyOrderCount    int
	TotalFees          decimal.Decimal
	InitialCapital     decimal.Decimal
}

// Supervisor evaluates Inputs against Thresholds and owns the sticky
// pause latch.
type Supervisor struct {
	thresholds  Thresholds
	pausedSince *time.Time
	pauseLevel  gridmodel.RiskLevel
}

func New(thresholds Thresholds) *Supervisor {
	return &Supervisor{thresholds: thresholds, pauseLevel: gridmodel.RiskOK}
}

// Evaluate runs all five checks and returns the aggregate status. If a
// PAUSE or EMERGENCY_STOP is already latched, the aggregate level never
// drops below it regardless of what this tick's checks say, until
// ResetPause is called.
func (s *Supervisor) Evaluate(in Inputs, now time.Time) gridmodel.RiskStatus {
	checks := []gridmodel.RiskCheckResult{
		s.checkDrawdown(in.DrawdownPct),
		s.checkCapitalDeployed(in.CapitalDeployedPct),
		s.checkDailyLoss(in.DailyLossPct),
		s.checkOrderCount(in.DailyOrderCount),
		s.checkFees(in.TotalFees, in.InitialCapital),
	}

	level := gridmodel.RiskOK
	for _, c := range checks {
		if severityRank(c.Level) > severityRank(level) {
			level = c.Level
		}
	}

	if s.pausedSince != nil && severityRank(s.pauseLevel) > severityRank(level) {
		level = s.pauseLevel
	}
	if level == gridmodel.RiskPause || level == gridmodel.RiskEmergencyStop {
		if s.pausedSince == nil {
			t := now
			s.pausedSince = &t
		}
		s.pauseLevel = level
	}

	return gridmodel.RiskStatus{
		Level:       level,
		Checks:      checks,
		PausedSince: s.pausedSince,
		EvaluatedAt: now,
	}
}

// ResetPause clears the sticky latch. Nothing in the supervisor or the
// control loop calls it; a latched PAUSE lasts until it is called.
func (s *Supervisor) ResetPause() {
	s.pausedSince = nil
	s.pauseLevel = gridmodel.RiskOK
}

// CanPlaceOrder is the gate the control loop consults before submitting
// new orders: false whenever the latch is PAUSE or above.
func (s *Supervisor) CanPlaceOrder() bool {
	return s.pausedSince == nil
}

func severityRank(l gridmodel.RiskLevel) int {
	switch l {
	case gridmodel.RiskEmergencyStop:
		return 3
	case gridmodel.RiskPause:
		return 2
	case gridmodel.RiskWarn:
		return 1
	default:
		return 0
	}
}

func (s *Supervisor) checkDrawdown(pct decimal.Decimal) gridmodel.RiskCheckResult {
	level := gridmodel.RiskOK
	switch {
	case pct.GreaterThanOrEqual(s.thresholds.DrawdownStopPct):
		level = gridmodel.RiskEmergencyStop
	case pct.GreaterThanOrEqual(s.thresholds.DrawdownPausePct):
		level = gridmodel.RiskPause
	case pct.GreaterThanOrEqual(s.thresholds.DrawdownWarnPct):
		level = gridmodel.RiskWarn
	}
	return gridmodel.RiskCheckResult{
		Name: gridmodel.CheckDrawdown, Level: level, Value: pct,
		Threshold: s.thresholds.DrawdownPausePct,
		Message:   "equity drawdown from peak",
	}
}

func (s *Supervisor) checkCapitalDeployed(pct decimal.Decimal) gridmodel.RiskCheckResult {
	level := gridmodel.RiskOK
	switch {
	case pct.GreaterThanOrEqual(s.thresholds.CapitalDeployedPausePct):
		level = gridmodel.RiskPause
	case pct.GreaterThanOrEqual(s.thresholds.CapitalDeployedWarnPct):
		level = gridmodel.RiskWarn
	}
	return gridmodel.RiskCheckResult{
		Name: gridmodel.CheckCapitalDeployed, Level: level, Value: pct,
		Threshold: s.thresholds.CapitalDeployedPausePct,
		Message:   "percentage of allocated capital currently deployed in inventory",
	}
}

func (s *Supervisor) checkDailyLoss(pct decimal.Decimal) gridmodel.RiskCheckResult {
	level := gridmodel.RiskOK
	switch {
	case pct.GreaterThanOrEqual(s.thresholds.DailyLossPausePct):
		level = gridmodel.RiskPause
	case pct.GreaterThanOrEqual(s.thresholds.DailyLossWarnPct):
		level = gridmodel.RiskWarn
	}
	return gridmodel.RiskCheckResult{
		Name: gridmodel.CheckDailyLossLimit, Level: level, Value: pct,
		Threshold: s.thresholds.DailyLossPausePct,
		Message:   "realized loss since the daily UTC anchor",
	}
}

func (s *Supervisor) checkOrderCount(count int) gridmodel.RiskCheckResult {
	level := gridmodel.RiskOK
	if count >= s.thresholds.MaxOrdersPerDay {
		level = gridmodel.RiskPause
	}
	return gridmodel.RiskCheckResult{
		Name: gridmodel.CheckOrderCount, Level: level,
		Value:     decimal.NewFromInt(int64(count)),
		Threshold: decimal.NewFromInt(int64(s.thresholds.MaxOrdersPerDay)),
		Message:   "orders placed since the daily UTC anchor",
	}
}

func (s *Supervisor) checkFees(totalFees, initialCapital decimal.Decimal) gridmodel.RiskCheckResult {
	if !initialCapital.IsPositive() {
		return gridmodel.RiskCheckResult{
			Name: gridmodel.CheckFees, Level: gridmodel.RiskOK,
			Threshold: s.thresholds.MaxFeePct,
			Message:   "OK",
		}
	}
	feePct := totalFees.Div(initialCapital).Mul(decimal.NewFromInt(100))
	level := gridmodel.RiskOK
	if feePct.GreaterThanOrEqual(s.thresholds.MaxFeePct) {
		level = gridmodel.RiskWarn
	}
	return gridmodel.RiskCheckResult{
		Name: gridmodel.CheckFees, Level: level, Value: feePct,
		Threshold: s.thresholds.MaxFeePct,
		Message:   "total fees paid as a percentage of initial capital",
	}
}
