package risk

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridai/gridai/internal/gridmodel"
)

func testThresholds() Thresholds {
	return Thresholds{
		DrawdownWarnPct:         decimal.NewFromFloat(0.05),
		DrawdownPausePct:        decimal.NewFromFloat(0.10),
		DrawdownStopPct:         decimal.NewFromFloat(0.20),
		CapitalDeployedWarnPct:  decimal.NewFromFloat(0.70),
		CapitalDeployedPausePct: decimal.NewFromFloat(0.90),
		DailyLossWarnPct:        decimal.NewFromFloat(0.03),
		DailyLossPausePct:       decimal.NewFromFloat(0.06),
		MaxOrdersPerDay:         100,
		MaxFeePct:               decimal.NewFromFloat(5),
	}
}

func TestEvaluateOKWhenAllChecksPass(t *testing.T) {
	s := New(testThresholds())
	status := s.Evaluate(Inputs{}, time.Now())
	assert.Equal(t, gridmodel.RiskOK, status.Level)
	assert.True(t, s.CanPlaceOrder())
}

func TestEvaluateEscalatesToEmergencyStop(t *testing.T) {
	s := New(testThresholds())
	status := s.Evaluate(Inputs{DrawdownPct: decimal.NewFromFloat(0.25)}, time.Now())
	assert.Equal(t, gridmodel.RiskEmergencyStop, status.Level)
	assert.False(t, s.CanPlaceOrder())
}

func TestPauseLatchIsSticky(t *testing.T) {
	s := New(testThresholds())
	now := time.Now()
	status := s.Evaluate(Inputs{DrawdownPct: decimal.NewFromFloat(0.12)}, now)
	require.Equal(t, gridmodel.RiskPause, status.Level)
	require.NotNil(t, status.PausedSince)

	// Next tick recovers fully but the latch must stay sticky.
	status2 := s.Evaluate(Inputs{}, now.Add(time.Minute))
	assert.Equal(t, gridmodel.RiskPause, status2.Level)
	assert.False(t, s.CanPlaceOrder())

	s.ResetPause()
	status3 := s.Evaluate(Inputs{}, now.Add(2*time.Minute))
	assert.Equal(t, gridmodel.RiskOK, status3.Level)
	assert.True(t, s.CanPlaceOrder())
}

func TestOrderCountPausesAtDailyCap(t *testing.T) {
	s := New(testThresholds())
	status := s.Evaluate(Inputs{DailyOrderCount: 100}, time.Now())
	assert.Equal(t, gridmodel.RiskPause, status.Level)

	s2 := New(testThresholds())
	status2 := s2.Evaluate(Inputs{DailyOrderCount: 99}, time.Now())
	assert.Equal(t, gridmodel.RiskOK, status2.Level)
}

func TestFeesWarnsAsPercentageOfInitialCapital(t *testing.T) {
	s := New(testThresholds())
	status := s.Evaluate(Inputs{TotalFees: decimal.NewFromInt(500), InitialCapital: decimal.NewFromInt(10000)}, time.Now())
	assert.Equal(t, gridmodel.RiskWarn, status.Level)

	s2 := New(testThresholds())
	status2 := s2.Evaluate(Inputs{TotalFees: decimal.NewFromInt(500), InitialCapital: decimal.Zero}, time.Now())
	assert.Equal(t, gridmodel.RiskOK, status2.Level)
}
