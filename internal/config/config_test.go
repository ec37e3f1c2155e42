package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProfile(t *testing.T, dir, name, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".yaml"), []byte(contents), 0644))
}

func TestLoadAppliesDefaultProfileWhenNoneNamed(t *testing.T) {
	dir := t.TempDir()
	mgr := NewManager()

	cfg, err := mgr.Load(dir, "", "", "")
	require.NoError(t, err)
	assert.Equal(t, Default().Grid.NumGrids, cfg.Grid.NumGrids)
	assert.Equal(t, "dryrun", cfg.Exchange.Name)
}

func TestLoadLayersNamedProfileOverDefault(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "live", `
exchange:
  name: bybit
  trading_pair: ETH/USDT
grid:
  num_grids: 20
`)
	mgr := NewManager()

	cfg, err := mgr.Load(dir, "live", "", "")
	require.NoError(t, err)
	assert.Equal(t, "bybit", cfg.Exchange.Name)
	assert.Equal(t, "ETH/USDT", cfg.Exchange.TradingPair)
	assert.Equal(t, 20, cfg.Grid.NumGrids)
	// Fields the profile didn't set fall through from the default layer.
	assert.True(t, cfg.Risk.MaxDrawdownPct.Equal(Default().Risk.MaxDrawdownPct))
}

func TestLoadLayersOverrideFileOverProfile(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "live", `
grid:
  num_grids: 20
`)
	overridePath := filepath.Join(dir, "override.yaml")
	require.NoError(t, os.WriteFile(overridePath, []byte(`
grid:
  num_grids: 30
  max_open_orders: 30
`), 0644))
	mgr := NewManager()

	cfg, err := mgr.Load(dir, "live", overridePath, "")
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Grid.NumGrids)
}

func TestLoadAppliesEnvOverridesLast(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "live", `
grid:
  num_grids: 20
  max_open_orders: 40
`)
	t.Setenv("GRIDAI_NUM_GRIDS", "40")
	t.Setenv("GRIDAI_MAX_DRAWDOWN", "15")
	t.Setenv("GRIDAI_LOG_LEVEL", "debug")
	mgr := NewManager()

	cfg, err := mgr.Load(dir, "live", "", "")
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.Grid.NumGrids)
	assert.True(t, cfg.Risk.MaxDrawdownPct.Equal(decimal.NewFromInt(15)))
	assert.Equal(t, "debug", cfg.Monitoring.LogLevel)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "bad", `
grid:
  num_grids: 1
`)
	mgr := NewManager()

	_, err := mgr.Load(dir, "bad", "", "")
	assert.Error(t, err)
}

func TestLoadMissingProfileFileFails(t *testing.T) {
	dir := t.TempDir()
	mgr := NewManager()

	_, err := mgr.Load(dir, "nonexistent", "", "")
	assert.Error(t, err)
}

func TestValidateRejectsEmergencyThresholdBelowDrawdown(t *testing.T) {
	cfg := Default()
	cfg.Risk.EmergencyStopLossPct = cfg.Risk.MaxDrawdownPct

	err := cfg.Validate()
	assert.Error(t, err)
}

func TestValidateRejectsTooFewMaxOpenOrders(t *testing.T) {
	cfg := Default()
	cfg.Grid.MaxOpenOrders = 1

	err := cfg.Validate()
	assert.Error(t, err)
}

func TestToThresholdsConvertsDailyLossCapToPercentage(t *testing.T) {
	cfg := Default()
	cfg.Risk.DailyLossCapUSDT = decimal.NewFromInt(200)

	thresholds := cfg.ToThresholds(decimal.NewFromInt(10000))
	assert.True(t, thresholds.DailyLossPausePct.Equal(decimal.NewFromInt(2)))
	assert.True(t, thresholds.DailyLossWarnPct.LessThan(thresholds.DailyLossPausePct))
	assert.True(t, thresholds.DrawdownPausePct.Equal(cfg.Risk.MaxDrawdownPct))
	assert.True(t, thresholds.DrawdownStopPct.Equal(cfg.Risk.EmergencyStopLossPct))
}

func TestToGridEngineConfigPassesGeometryThrough(t *testing.T) {
	cfg := Default()
	cfg.Grid.NumGrids = 10
	cfg.Grid.UpperBoundPct = decimal.NewFromInt(10)
	cfg.Grid.LowerBoundPct = decimal.NewFromInt(5)
	cfg.Grid.OrderSizeUSDT = decimal.NewFromInt(100)
	cfg.Grid.MaxOpenOrders = 6

	gc := cfg.ToGridEngineConfig("BTC/USDT", decimal.NewFromInt(50000), 2, 6)
	assert.Equal(t, 10, gc.NumGrids)
	assert.True(t, gc.UpperBoundPct.Equal(decimal.NewFromInt(10)))
	assert.True(t, gc.LowerBoundPct.Equal(decimal.NewFromInt(5)))
	assert.True(t, gc.OrderSizeUSDT.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, 6, gc.MaxOpenOrders)
}
