package gridengine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridai/gridai/internal/gridmodel"
)

func testConfig() Config {
	return Config{
		Symbol:           "BTC/USDT",
		NumGrids:         10,
		UpperBoundPct:    decimal.NewFromFloat(2),
		LowerBoundPct:    decimal.NewFromFloat(2),
		OrderSizeUSDT:    decimal.NewFromFloat(500),
		PriceDecimals:    2,
		QuantityDecimals: 6,
		MaxOpenOrders:    20,
	}
}

func TestCalculateGridBuildsCandidatePriceLadder(t *testing.T) {
	e := New(testConfig(), decimal.NewFromInt(50000))
	snap := e.Snapshot()

	assert.True(t, snap.UpperBound.Equal(decimal.NewFromInt(51000)), "got upper %s", snap.UpperBound)
	assert.True(t, snap.LowerBound.Equal(decimal.NewFromInt(49000)), "got lower %s", snap.LowerBound)
	assert.True(t, snap.Spacing.Equal(decimal.NewFromInt(200)), "got spacing %s", snap.Spacing)
	require.Len(t, snap.Levels, 10)

	buys, sells := 0, 0
	for _, lvl := range snap.Levels {
		if lvl.Side == gridmodel.SideBuy {
			buys++
			assert.True(t, lvl.Price.LessThan(snap.CenterPrice))
		} else {
			sells++
			assert.True(t, lvl.Price.GreaterThan(snap.CenterPrice))
		}
		assert.Equal(t, gridmodel.LevelIdle, lvl.State)
	}
	assert.Equal(t, 5, buys)
	assert.Equal(t, 5, sells)

	// Scenario: center 50000, num_grids=10, bounds 2% each way -> BUY rungs
	// 49000..49800, SELL rungs 50200..51000, and no level sits exactly on
	// the omitted center price.
	wantBuys := []int64{49000, 49200, 49400, 49600, 49800}
	wantSells := []int64{50200, 50400, 50600, 50800, 51000}
	gotBuys, gotSells := map[int64]bool{}, map[int64]bool{}
	for _, lvl := range snap.Levels {
		if lvl.Side == gridmodel.SideBuy {
			gotBuys[lvl.Price.IntPart()] = true
		} else {
			gotSells[lvl.Price.IntPart()] = true
		}
	}
	for _, p := range wantBuys {
		assert.True(t, gotBuys[p], "missing BUY rung at %d", p)
	}
	for _, p := range wantSells {
		assert.True(t, gotSells[p], "missing SELL rung at %d", p)
	}
}

func TestCalculateGridHonorsAsymmetricBounds(t *testing.T) {
	cfg := testConfig()
	cfg.UpperBoundPct = decimal.NewFromFloat(4)
	cfg.LowerBoundPct = decimal.NewFromFloat(2)
	e := New(cfg, decimal.NewFromInt(50000))
	snap := e.Snapshot()

	assert.True(t, snap.UpperBound.Equal(decimal.NewFromInt(52000)), "got upper %s", snap.UpperBound)
	assert.True(t, snap.LowerBound.Equal(decimal.NewFromInt(49000)), "got lower %s", snap.LowerBound)
	assert.True(t, snap.Spacing.Equal(decimal.NewFromInt(300)), "got spacing %s", snap.Spacing)
}

func TestRegimeMultiplierClampsAndWidensBoundsOnNextRecalibration(t *testing.T) {
	e := New(testConfig(), decimal.NewFromInt(50000))

	e.SetRegimeMultiplier(decimal.NewFromFloat(50))
	e.CalculateGrid(decimal.NewFromInt(50000))
	snap := e.Snapshot()
	assert.True(t, snap.RegimeMultiplier.Equal(regimeMultiplierCeiling), "multiplier not clamped to ceiling: %s", snap.RegimeMultiplier)
	// effective upper pct = 2% * 5.0 = 10%.
	assert.True(t, snap.UpperBound.Equal(decimal.NewFromInt(55000)), "got upper %s", snap.UpperBound)

	e.SetRegimeMultiplier(decimal.NewFromFloat(0.01))
	assert.True(t, e.Snapshot().RegimeMultiplier.Equal(regimeMultiplierFloor), "multiplier not clamped to floor: %s", e.Snapshot().RegimeMultiplier)
}

func TestOrderLifecycleTransitions(t *testing.T) {
	e := New(testConfig(), decimal.NewFromInt(50000))
	toPlace := e.GetOrdersToPlace()
	require.Len(t, toPlace, 10)

	lvl := toPlace[0]
	require.NoError(t, e.MarkOrderPlaced(lvl.Index, "client-1"))
	require.NoError(t, e.MarkOrderOpen(lvl.Index))

	remaining := e.GetOrdersToPlace()
	assert.Len(t, remaining, 9)

	filled, err := e.MarkOrderFilled(lvl.Index, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, gridmodel.LevelFilled, filled.State)

	require.NoError(t, e.MarkOrderCancelled(toPlace[1].Index))
	assert.Len(t, e.GetOrdersToPlace(), 9)
}

func TestGetOrdersToPlaceRespectsMaxOpenOrdersNearestFirst(t *testing.T) {
	cfg := testConfig()
	cfg.MaxOpenOrders = 3
	e := New(cfg, decimal.NewFromInt(50000))

	toPlace := e.GetOrdersToPlace()
	require.Len(t, toPlace, 3)
	// Nearest to center (49800, 50200) should win over farther rungs.
	dists := make([]decimal.Decimal, len(toPlace))
	for i, lvl := range toPlace {
		dists[i] = lvl.Price.Sub(decimal.NewFromInt(50000)).Abs()
	}
	for i := 1; i < len(dists); i++ {
		assert.True(t, dists[i-1].LessThanOrEqual(dists[i]), "orders not sorted nearest-first: %v", dists)
	}

	require.NoError(t, e.MarkOrderPlaced(toPlace[0].Index, "c1"))
	require.NoError(t, e.MarkOrderOpen(toPlace[0].Index))
	require.NoError(t, e.MarkOrderPlaced(toPlace[1].Index, "c2"))
	require.NoError(t, e.MarkOrderPlaced(toPlace[2].Index, "c3"))

	// All 3 slots occupied; no further orders should be returned.
	assert.Empty(t, e.GetOrdersToPlace())
}

func TestCounterOrderPairsBuyToSell(t *testing.T) {
	e := New(testConfig(), decimal.NewFromInt(50000))
	toPlace := e.GetOrdersToPlace()

	var buyLvl gridmodel.GridLevel
	for _, lvl := range toPlace {
		if lvl.Side == gridmodel.SideBuy && lvl.Price.Equal(decimal.NewFromInt(49800)) {
			buyLvl = lvl
		}
	}
	require.NoError(t, e.MarkOrderPlaced(buyLvl.Index, "buy-client-1"))
	filled, err := e.MarkOrderFilled(buyLvl.Index, time.Now().UTC())
	require.NoError(t, err)
	filled.OrderID = "buy-client-1"

	counter, ok := e.GetCounterOrder(filled)
	require.True(t, ok)
	assert.Equal(t, gridmodel.SideSell, counter.Side)
	assert.Equal(t, "buy-client-1", counter.OriginBuyOrderID)
	assert.True(t, counter.Price.Equal(filled.Price.Add(decimal.NewFromInt(200))))
}

func TestCounterOrderRejectedOutsideBounds(t *testing.T) {
	e := New(testConfig(), decimal.NewFromInt(50000))
	snap := e.Snapshot()

	// Simulate a counter order that already landed exactly at the upper
	// bound; a further counter one spacing above it would fall outside
	// [lower_bound, upper_bound] and must be rejected.
	atBound := gridmodel.GridLevel{Side: gridmodel.SideBuy, Price: snap.UpperBound, OrderID: "boundary-buy"}
	_, ok := e.GetCounterOrder(atBound)
	assert.False(t, ok)

	atLowerBound := gridmodel.GridLevel{Side: gridmodel.SideSell, Price: snap.LowerBound}
	_, ok = e.GetCounterOrder(atLowerBound)
	assert.False(t, ok)
}

func TestArmCounterOrderAppendsSyntheticLevel(t *testing.T) {
	e := New(testConfig(), decimal.NewFromInt(50000))
	toPlace := e.GetOrdersToPlace()

	var buyLvl gridmodel.GridLevel
	for _, lvl := range toPlace {
		if lvl.Side == gridmodel.SideBuy && lvl.Price.Equal(decimal.NewFromInt(49800)) {
			buyLvl = lvl
		}
	}
	require.NoError(t, e.MarkOrderPlaced(buyLvl.Index, "buy-client-1"))
	filled, err := e.MarkOrderFilled(buyLvl.Index, time.Now().UTC())
	require.NoError(t, err)
	filled.OrderID = "buy-client-1"

	before := len(e.Snapshot().Levels)
	armed, ok := e.ArmCounterOrder(filled)
	require.True(t, ok)
	assert.Equal(t, "buy-client-1", armed.OriginBuyOrderID)
	assert.True(t, armed.Index < 0, "synthetic counter index should be negative, got %d", armed.Index)
	assert.Len(t, e.Snapshot().Levels, before+1)

	// A second arm (e.g. for a different fill) gets a distinct negative index.
	armed2, ok := e.ArmCounterOrder(filled)
	require.True(t, ok)
	assert.NotEqual(t, armed.Index, armed2.Index)
}

func TestShouldRecalibrateAtFixedTwoPercentThreshold(t *testing.T) {
	e := New(testConfig(), decimal.NewFromInt(50000))
	// Exactly 2.000% drift must not trigger (strict greater-than).
	assert.False(t, e.ShouldRecalibrate(decimal.NewFromInt(51000)))
	// 2.002% drift must trigger.
	assert.True(t, e.ShouldRecalibrate(decimal.NewFromFloat(51001)))
}

func TestPauseStopsNewOrders(t *testing.T) {
	e := New(testConfig(), decimal.NewFromInt(50000))
	e.Pause()
	assert.Empty(t, e.GetOrdersToPlace())
	e.Resume()
	assert.NotEmpty(t, e.GetOrdersToPlace())
}

func TestRestingLevelsAndFindByOrderID(t *testing.T) {
	e := New(testConfig(), decimal.NewFromInt(50000))
	toPlace := e.GetOrdersToPlace()
	lvl := toPlace[0]

	require.NoError(t, e.MarkOrderPlaced(lvl.Index, "client-1"))
	resting := e.RestingLevels()
	require.Len(t, resting, 1)
	assert.Equal(t, "client-1", resting[0].OrderID)

	found, ok := e.FindByOrderID("client-1")
	require.True(t, ok)
	assert.Equal(t, lvl.Index, found.Index)

	_, ok = e.FindByOrderID("no-such-order")
	assert.False(t, ok)
}

func TestRestoreInstallsPriorState(t *testing.T) {
	e := New(testConfig(), decimal.NewFromInt(50000))
	saved := e.Snapshot()
	saved.Paused = true

	e2 := New(testConfig(), decimal.NewFromInt(1))
	e2.Restore(saved)
	assert.True(t, e2.Snapshot().Paused)
	assert.True(t, e2.Snapshot().CenterPrice.Equal(decimal.NewFromInt(50000)))
}
