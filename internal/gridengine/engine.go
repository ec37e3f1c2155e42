// Package gridengine builds and maintains the price ladder: computing
// candidate rung prices from a center price and bounds, deciding which
// levels need orders placed, and handing the Order Lifecycle Manager the
// counter-order that should follow a fill.
package gridengine

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gridai/gridai/internal/gridmodel"
)

// regimeMultiplierFloor and regimeMultiplierCeiling bound whatever the
// external regime classifier reports; an unbounded multiplier could
// otherwise blow the grid's bounds out to an unusable width (or collapse
// them to nothing) off one bad signal.
var (
	regimeMultiplierFloor   = decimal.NewFromFloat(0.1)
	regimeMultiplierCeiling = decimal.NewFromFloat(5.0)
)

// recalibrationDriftThresholdPct is the fixed percentage the market price
// must drift from the grid's center, strictly more than, before
// ShouldRecalibrate reports true. It is not an operator-facing knob.
var recalibrationDriftThresholdPct = decimal.NewFromFloat(2.0)

var hundred = decimal.NewFromInt(100)

// Config parameterizes one grid instance. NumGrids divides the
// [lower_bound, upper_bound] range computed from UpperBoundPct/
// LowerBoundPct (percent of center price, widened/narrowed by the
// current regime multiplier) into that many rungs; OrderSizeUSDT is the
// quote-asset notional quoted at every rung, converted to base-asset
// quantity at that rung's own price.
type Config struct {
	Symbol           string
	NumGrids         int
	UpperBoundPct    decimal.Decimal
	LowerBoundPct    decimal.Decimal
	OrderSizeUSDT    decimal.Decimal
	PriceDecimals    int32
	QuantityDecimals int32
	// MaxOpenOrders caps how many levels may be simultaneously Pending or
	// Open; GetOrdersToPlace truncates to respect it.
	MaxOpenOrders int
}

// Engine owns one symbol's GridState and is safe for concurrent use by the
// control loop's order-placement and fill-handling paths.
type Engine struct {
	mu    sync.Mutex
	cfg   Config
	state gridmodel.GridState
}

// New builds a fresh grid centered on centerPrice.
func New(cfg Config, centerPrice decimal.Decimal) *Engine {
	e := &Engine{cfg: cfg}
	e.state = gridmodel.GridState{
		Symbol:           cfg.Symbol,
		RegimeMultiplier: decimal.NewFromInt(1),
		PriceDecimals:    cfg.PriceDecimals,
		QuantityDecimals: cfg.QuantityDecimals,
	}
	e.CalculateGrid(centerPrice)
	return e
}

// SetRegimeMultiplier widens or narrows the next CalculateGrid's bounds
// per the external regime classifier's signal (spec: grid never computes
// regime itself), clamped to [0.1, 5.0]. The change only takes effect on
// the next CalculateGrid call, not retroactively on the current ladder.
func (e *Engine) SetRegimeMultiplier(m decimal.Decimal) {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch {
	case m.LessThan(regimeMultiplierFloor):
		m = regimeMultiplierFloor
	case m.GreaterThan(regimeMultiplierCeiling):
		m = regimeMultiplierCeiling
	}
	e.state.RegimeMultiplier = m
}

// CalculateGrid rebuilds the ladder around a new center price, used at
// startup and whenever ShouldRecalibrate returns true. Existing OPEN or
// PENDING levels are not touched by the caller's recalibration decision;
// callers are expected to cancel resting orders first.
func (e *Engine) CalculateGrid(centerPrice decimal.Decimal) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.CenterPrice = centerPrice
	e.state.LastRecalibration = time.Now().UTC()
	e.recalculateLocked(centerPrice)
}

// recalculateLocked generates NumGrids+1 candidate prices spanning
// [lower_bound, upper_bound] and assigns each a side by comparison to
// centerPrice; the rung whose price lands exactly on centerPrice is
// omitted. Bounds and spacing are derived from UpperBoundPct/
// LowerBoundPct widened by the current regime multiplier, so an
// asymmetric upper/lower split is honored rather than collapsed to a
// single symmetric spacing.
func (e *Engine) recalculateLocked(centerPrice decimal.Decimal) {
	mult := e.state.RegimeMultiplier
	effUpperPct := e.cfg.UpperBoundPct.Mul(mult)
	effLowerPct := e.cfg.LowerBoundPct.Mul(mult)

	upper := centerPrice.Mul(decimal.NewFromInt(1).Add(effUpperPct.Div(hundred)))
	lower := centerPrice.Mul(decimal.NewFromInt(1).Sub(effLowerPct.Div(hundred)))
	numGrids := decimal.NewFromInt(int64(e.cfg.NumGrids))
	spacing := upper.Sub(lower).Div(numGrids)

	levels := make([]gridmodel.GridLevel, 0, e.cfg.NumGrids+1)
	for i := 0; i <= e.cfg.NumGrids; i++ {
		price := lower.Add(spacing.Mul(decimal.NewFromInt(int64(i)))).Round(e.cfg.PriceDecimals)
		var side gridmodel.Side
		switch {
		case price.LessThan(centerPrice):
			side = gridmodel.SideBuy
		case price.GreaterThan(centerPrice):
			side = gridmodel.SideSell
		default:
			continue
		}
		levels = append(levels, gridmodel.GridLevel{
			Index:    i,
			Side:     side,
			Price:    price,
			Quantity: e.levelQuantityLocked(price),
			State:    gridmodel.LevelIdle,
		})
	}

	e.state.UpperBound = upper.Round(e.cfg.PriceDecimals)
	e.state.LowerBound = lower.Round(e.cfg.PriceDecimals)
	e.state.NumGrids = e.cfg.NumGrids
	e.state.Spacing = spacing.Round(e.cfg.PriceDecimals)
	e.state.Levels = levels
	e.state.NextCounterIndex = -1
}

func (e *Engine) levelQuantityLocked(price decimal.Decimal) decimal.Decimal {
	if !price.IsPositive() {
		return decimal.Zero
	}
	return e.cfg.OrderSizeUSDT.Div(price).Round(e.cfg.QuantityDecimals)
}

// GetOrdersToPlace returns the Idle levels the Order Lifecycle Manager
// should submit this tick, nearest the center price first, truncated so
// the count of already-resting (Pending or Open) levels plus what's
// returned never exceeds MaxOpenOrders.
func (e *Engine) GetOrdersToPlace() []gridmodel.GridLevel {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Paused {
		return nil
	}

	activeCount := 0
	idle := make([]gridmodel.GridLevel, 0)
	for _, lvl := range e.state.Levels {
		switch lvl.State {
		case gridmodel.LevelPending, gridmodel.LevelOpen:
			activeCount++
		case gridmodel.LevelIdle:
			idle = append(idle, lvl)
		}
	}

	available := e.cfg.MaxOpenOrders - activeCount
	if available <= 0 {
		return nil
	}

	sort.Slice(idle, func(i, j int) bool {
		di := idle[i].Price.Sub(e.state.CenterPrice).Abs()
		dj := idle[j].Price.Sub(e.state.CenterPrice).Abs()
		return di.LessThan(dj)
	})
	if len(idle) > available {
		idle = idle[:available]
	}
	return idle
}

// MarkOrderPlaced transitions a level Idle -> Pending once the order
// manager has submitted (but not yet confirmed) the order.
func (e *Engine) MarkOrderPlaced(index int, clientOrderID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	lvl, idx, err := e.findLocked(index)
	if err != nil {
		return err
	}
	lvl.State = gridmodel.LevelPending
	lvl.OrderID = clientOrderID
	e.state.Levels[idx] = *lvl
	return nil
}

// MarkOrderOpen transitions Pending -> Open once the venue confirms the
// resting order.
func (e *Engine) MarkOrderOpen(index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	lvl, idx, err := e.findLocked(index)
	if err != nil {
		return err
	}
	lvl.State = gridmodel.LevelOpen
	e.state.Levels[idx] = *lvl
	return nil
}

// MarkOrderFilled transitions a level to Filled and returns the filled
// level so the caller can hand it to GetCounterOrder. Filled is terminal
// for this grid generation: the level is never recycled back to Idle.
func (e *Engine) MarkOrderFilled(index int, filledAt time.Time) (gridmodel.GridLevel, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	lvl, idx, err := e.findLocked(index)
	if err != nil {
		return gridmodel.GridLevel{}, err
	}
	lvl.State = gridmodel.LevelFilled
	lvl.FilledAt = &filledAt
	e.state.Levels[idx] = *lvl
	return *lvl, nil
}

// MarkOrderCancelled returns a level to Idle so it is reconsidered by
// GetOrdersToPlace on the next tick.
func (e *Engine) MarkOrderCancelled(index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	lvl, idx, err := e.findLocked(index)
	if err != nil {
		return err
	}
	lvl.State = gridmodel.LevelIdle
	lvl.OrderID = ""
	e.state.Levels[idx] = *lvl
	return nil
}

// GetCounterOrder returns the opposite-side order that should be placed
// once filledLevel has filled: a BUY fill spawns a SELL one rung above it
// (and vice versa), carrying OriginBuyOrderID so the ledger can pair the
// round trip exactly. ok is false when the counter price would land
// outside [lower_bound, upper_bound] — the caller must not place it.
func (e *Engine) GetCounterOrder(filledLevel gridmodel.GridLevel) (counter gridmodel.GridLevel, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.counterOrderLocked(filledLevel)
}

func (e *Engine) counterOrderLocked(filledLevel gridmodel.GridLevel) (gridmodel.GridLevel, bool) {
	var counter gridmodel.GridLevel
	if filledLevel.Side == gridmodel.SideBuy {
		counter.Side = gridmodel.SideSell
		counter.Price = filledLevel.Price.Add(e.state.Spacing).Round(e.cfg.PriceDecimals)
		counter.OriginBuyOrderID = filledLevel.OrderID
	} else {
		counter.Side = gridmodel.SideBuy
		counter.Price = filledLevel.Price.Sub(e.state.Spacing).Round(e.cfg.PriceDecimals)
	}
	if counter.Price.LessThan(e.state.LowerBound) || counter.Price.GreaterThan(e.state.UpperBound) {
		return gridmodel.GridLevel{}, false
	}
	counter.Quantity = e.levelQuantityLocked(counter.Price)
	counter.State = gridmodel.LevelIdle
	return counter, true
}

// ArmCounterOrder computes the counter-order for filledLevel (see
// GetCounterOrder) and appends it to the grid as a new level under a
// synthesized, always-negative index, so the order manager's fill/cancel
// callbacks can key back into it the same way they do for the original
// ladder rungs. ok is false when no counter order should be placed
// (out-of-bounds counter price).
func (e *Engine) ArmCounterOrder(filledLevel gridmodel.GridLevel) (gridmodel.GridLevel, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	counter, ok := e.counterOrderLocked(filledLevel)
	if !ok {
		return gridmodel.GridLevel{}, false
	}
	counter.Index = e.state.NextCounterIndex
	e.state.NextCounterIndex--
	e.state.Levels = append(e.state.Levels, counter)
	return counter, true
}

// EffectiveSpacing returns the grid's current rung spacing, used by the
// fill handler's approximate buy-price fallback (spec.md §9).
func (e *Engine) EffectiveSpacing() decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Spacing
}

// Restore installs a previously persisted grid state wholesale, used on
// startup when the state store has a prior snapshot.
func (e *Engine) Restore(state gridmodel.GridState) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = state
}

// ShouldRecalibrate reports whether the market price has drifted more
// than recalibrationDriftThresholdPct away from the grid's center,
// warranting a rebuilt ladder.
func (e *Engine) ShouldRecalibrate(marketPrice decimal.Decimal) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.CenterPrice.IsZero() {
		return true
	}
	driftPct := marketPrice.Sub(e.state.CenterPrice).Abs().Div(e.state.CenterPrice).Mul(hundred)
	return driftPct.GreaterThan(recalibrationDriftThresholdPct)
}

// Pause stops GetOrdersToPlace from returning new levels; existing resting
// orders are left to the order manager to cancel.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Paused = true
}

func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Paused = false
}

// Snapshot returns a copy of the current grid state for persistence and
// reporting.
func (e *Engine) Snapshot() gridmodel.GridState {
	e.mu.Lock()
	defer e.mu.Unlock()
	cp := e.state
	cp.Levels = append([]gridmodel.GridLevel(nil), e.state.Levels...)
	return cp
}

// RestingLevels returns every level the order manager still has a live
// order for (Pending or Open), used when cancelling everything ahead of
// a recalibration or an emergency stop.
func (e *Engine) RestingLevels() []gridmodel.GridLevel {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]gridmodel.GridLevel, 0)
	for _, lvl := range e.state.Levels {
		if lvl.State == gridmodel.LevelPending || lvl.State == gridmodel.LevelOpen {
			out = append(out, lvl)
		}
	}
	return out
}

// FindByOrderID looks up the level currently tracking the given
// client order id, used to turn an order manager fill/cancel event back
// into a grid index.
func (e *Engine) FindByOrderID(clientOrderID string) (gridmodel.GridLevel, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, lvl := range e.state.Levels {
		if lvl.OrderID == clientOrderID {
			return lvl, true
		}
	}
	return gridmodel.GridLevel{}, false
}

func (e *Engine) findLocked(index int) (*gridmodel.GridLevel, int, error) {
	for i := range e.state.Levels {
		if e.state.Levels[i].Index == index {
			lvl := e.state.Levels[i]
			return &lvl, i, nil
		}
	}
	return nil, 0, fmt.Errorf("gridengine: no level at index %d", index)
}
