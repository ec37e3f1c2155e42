package controlloop

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gridai/gridai/internal/clock"
	"github.com/gridai/gridai/internal/gridengine"
	"github.com/gridai/gridai/internal/gridmodel"
	"github.com/gridai/gridai/internal/ledger"
	"github.com/gridai/gridai/internal/monitoring"
	"github.com/gridai/gridai/internal/notifications"
	"github.com/gridai/gridai/internal/orders"
	"github.com/gridai/gridai/internal/risk"
	"github.com/gridai/gridai/internal/state"
	"github.com/gridai/gridai/internal/telemetry"
	"github.com/gridai/gridai/internal/venue"
)

// defaultFeeRate is the taker fee applied to every fill (spec:
// price*amount*0.001); a fee reported by the venue is not read.
var defaultFeeRate = decimal.NewFromFloat(0.001)

// Config parameterizes one running grid's control loop.
type Config struct {
	Symbol         string
	PollInterval   time.Duration
	Thresholds     risk.Thresholds
	OHLCVLookback  int
}

// Loop drives exactly one symbol's grid through repeated ticks. It is not
// safe for concurrent Tick calls — the spec's concurrency model assumes a
// single logical thread per grid.
type Loop struct {
	cfg        Config
	engine     *gridengine.Engine
	orders     *orders.Manager
	risk       *risk.Supervisor
	ledger     *ledger.Ledger
	adapter    venue.Adapter
	store      *state.Store
	notifier   notifications.Notifier
	log        *telemetry.Logger
	clk        clock.Clock
	trend      TrendDetector
	volatility VolatilityClassifier
	health     *monitoring.HealthChecker

	tickCount        int64
	pausedByTrend    bool
	lastTickSucceeded time.Time
	stopChan         chan struct{}
}

// New wires the already-constructed components into a Loop. Callers build
// the Engine/Manager/Supervisor/Ledger themselves (or restore them from a
// prior Snapshot via RestoreFrom) so startup wiring stays in one place:
// cmd/gridai.
func New(cfg Config, engine *gridengine.Engine, om *orders.Manager, sup *risk.Supervisor, led *ledger.Ledger,
	adapter venue.Adapter, store *state.Store, notifier notifications.Notifier, log *telemetry.Logger, clk clock.Clock,
	trend TrendDetector, volatility VolatilityClassifier) *Loop {
	return &Loop{
		cfg:               cfg,
		engine:            engine,
		orders:            om,
		risk:              sup,
		ledger:            led,
		adapter:           adapter,
		store:             store,
		notifier:          notifier,
		log:               log,
		clk:               clk,
		trend:             trend,
		volatility:        volatility,
		lastTickSucceeded: clk.Now(),
		stopChan:          make(chan struct{}),
	}
}

// WithHealth attaches a health checker the loop updates every tick; the
// /healthz HTTP surface (cmd/gridai) reads it independently of prometheus
// scraping, so it's wired as an optional post-construction dependency
// rather than a required New argument.
func (l *Loop) WithHealth(h *monitoring.HealthChecker) *Loop {
	l.health = h
	return l
}

// RestoreFrom installs a prior Snapshot's grid and position into the
// engine and ledger, used on startup when the state store has history.
func RestoreFrom(engine *gridengine.Engine, led *ledger.Ledger, snap *state.Snapshot) {
	if snap == nil {
		return
	}
	engine.Restore(snap.Grid)
	led.Restore(snap.Position)
}

// Run blocks, ticking at cfg.PollInterval until ctx is cancelled or Stop
// is called, grounded on the teacher's ticker+select tradingLoop shape.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.cfg.PollInterval)
	defer ticker.Stop()

	if err := l.safeTick(ctx); err != nil {
		return err
	}
	for {
		select {
		case <-ticker.C:
			if err := l.safeTick(ctx); err != nil {
				return err
			}
		case <-l.stopChan:
			return l.shutdown(ctx)
		case <-ctx.Done():
			return l.shutdown(ctx)
		}
	}
}

// Stop requests the loop exit after its current tick and run shutdown.
func (l *Loop) Stop() {
	close(l.stopChan)
}

// safeTick wraps Tick with the teacher's recover()-on-panic safety net so
// one bad tick (a venue SDK panic, a malformed response) never crashes
// the process outright.
func (l *Loop) safeTick(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("tick panicked: tick=%d recovered=%v", l.tickCount, r)
		}
	}()
	return l.Tick(ctx)
}

// Tick runs exactly one pass of the per-tick sequence. A returned error
// means the Risk Supervisor escalated to EMERGENCY_STOP; the caller should
// stop the process. All other failures are logged and absorbed so the
// loop keeps running.
func (l *Loop) Tick(ctx context.Context) error {
	l.tickCount++
	now := l.clk.Now()

	// 1. Fetch ticker; on failure, log and return without mutating state.
	ticker, err := l.adapter.FetchTicker(ctx, l.cfg.Symbol)
	if err != nil {
		l.log.Error("tick %d: fetch ticker failed: %v", l.tickCount, err)
		monitoring.RecordVenueCall(l.adapter.Name(), "fetch_ticker", 0, false)
		if l.health != nil {
			l.health.SetConnected(false)
			l.health.AddError(err.Error())
		}
		return nil
	}
	if l.health != nil {
		l.health.SetConnected(true)
	}
	monitoring.RecordVenueCall(l.adapter.Name(), "fetch_ticker", 0, true)
	price := ticker.Last

	onSignalCadence := l.tickCount%signalCadenceTicks == 0

	// 2 & 3. Trend/volatility sampled at 1/6 cadence, with enough history.
	if onSignalCadence {
		l.sampleSignals(ctx)
	}

	// 4. Risk evaluation.
	l.ledger.MarkToMarket(price)
	pos := l.ledger.Position()
	status := l.risk.Evaluate(risk.Inputs{
		DrawdownPct:        l.ledger.DrawdownPct(price),
		CapitalDeployedPct: l.ledger.CapitalDeployedPct(price),
		DailyLossPct:       l.ledger.DailyLossPct(price),
		DailyOrderCount:    l.orders.DailyOrderCount(),
		TotalFees:          pos.FeesPaid,
		InitialCapital:     l.ledger.InitialCapital(),
	}, now)
	monitoring.SetRiskLevel(l.cfg.Symbol, string(status.Level))
	// recentOutcomesWindow in internal/orders is 50; scale the rolling
	// failure rate back into an approximate trailing-hour count since the
	// manager only tracks a fixed-size window, not a time-bounded one.
	monitoring.SetFailedOrdersLastHour(l.cfg.Symbol, l.orders.RecentFailureRate().Mul(decimal.NewFromInt(50)).InexactFloat64())
	if l.health != nil {
		l.health.SetPaused(status.Level == gridmodel.RiskPause || status.Level == gridmodel.RiskEmergencyStop, pauseReason(status))
	}

	if status.Level == gridmodel.RiskEmergencyStop {
		l.log.Risk("tick %d: EMERGENCY_STOP: %s", l.tickCount, pauseReason(status))
		l.notify("EMERGENCY_STOP", pauseReason(status))
		l.cancelAllOrders(ctx)
		l.persistState(now, &pos, status, "emergency_stop")
		return fmt.Errorf("controlloop: emergency stop: %s", pauseReason(status))
	}
	if status.Level == gridmodel.RiskPause {
		l.log.Risk("tick %d: PAUSE: %s", l.tickCount, pauseReason(status))
		l.notify("PAUSE", pauseReason(status))
		l.ledger.SnapshotEquity(price, now)
		l.persistState(now, &pos, status, "")
		l.lastTickSucceeded = now
		return nil
	}
	if status.Level == gridmodel.RiskWarn {
		l.notify("WARN", pauseReason(status))
	}

	// 5. Recalibrate when there's no grid state yet or price has drifted.
	if l.engine.ShouldRecalibrate(price) {
		l.cancelAllOrders(ctx)
		l.engine.CalculateGrid(price)
	}
	l.placePendingOrders(ctx)

	// 6. Reconciliation at the same 1/6 cadence.
	if onSignalCadence {
		l.reconcile(ctx, now)
	}

	// 7. Poll each still-open local order for a direct fill.
	l.pollRestingOrders(ctx, now)

	// 8. Snapshot equity and persist.
	snap := l.ledger.SnapshotEquity(price, now)
	if err := l.store.AppendEquitySnapshot(snap); err != nil {
		l.log.Error("tick %d: append equity snapshot: %v", l.tickCount, err)
	}
	finalPos := l.ledger.Position()
	l.persistState(now, &finalPos, status, "")
	l.lastTickSucceeded = now
	if l.health != nil {
		l.health.RecordTick(now, price.InexactFloat64())
	}
	return nil
}

func (l *Loop) sampleSignals(ctx context.Context) {
	if l.trend == nil && l.volatility == nil {
		return
	}
	raw, err := l.adapter.FetchRecentOHLCV(ctx, l.cfg.Symbol, l.cfg.OHLCVLookback)
	if err != nil {
		l.log.Warn("tick %d: fetch OHLCV for signals failed: %v", l.tickCount, err)
		return
	}
	if len(raw) < minCandlesForSignal {
		l.log.Debug("tick %d: only %d candles, skipping signal sampling", l.tickCount, len(raw))
		return
	}
	candles := make([]Candle, len(raw))
	for i, c := range raw {
		candles[i] = Candle{Open: c.Open, High: c.High, Low: c.Low, Close: c.Close, Volume: c.Volume}
	}

	if l.trend != nil {
		signal, err := l.trend.Detect(candles)
		if err != nil {
			l.log.Warn("tick %d: trend detector: %v", l.tickCount, err)
		} else if signal.RequestPause {
			l.pausedByTrend = true
			l.engine.Pause()
		} else if l.pausedByTrend {
			l.pausedByTrend = false
			l.engine.Resume()
		}
	}

	if l.volatility != nil {
		signal, err := l.volatility.Classify(candles)
		if err != nil {
			l.log.Warn("tick %d: volatility classifier: %v", l.tickCount, err)
		} else if signal.Confidence.GreaterThanOrEqual(decimal.NewFromFloat(0.0)) && !signal.RegimeMultiplier.IsZero() {
			l.engine.SetRegimeMultiplier(signal.RegimeMultiplier)
		}
	}
}

func (l *Loop) placePendingOrders(ctx context.Context) {
	if !l.risk.CanPlaceOrder() {
		return
	}
	for _, lvl := range l.engine.GetOrdersToPlace() {
		record, err := l.orders.PlaceOrder(ctx, lvl.Side, lvl.Price, lvl.Quantity)
		if err != nil {
			l.log.Error("tick %d: place order index=%d failed: %v", l.tickCount, lvl.Index, err)
			continue
		}
		if err := l.engine.MarkOrderPlaced(lvl.Index, record.ClientOrderID); err != nil {
			l.log.Error("tick %d: mark order placed index=%d: %v", l.tickCount, lvl.Index, err)
			continue
		}
		if err := l.engine.MarkOrderOpen(lvl.Index); err != nil {
			l.log.Error("tick %d: mark order open index=%d: %v", l.tickCount, lvl.Index, err)
		}
	}
}

func (l *Loop) reconcile(ctx context.Context, now time.Time) {
	changed, err := l.orders.ReconcileOrders(ctx)
	if err != nil {
		l.log.Error("tick %d: reconcile orders: %v", l.tickCount, err)
		monitoring.SetReconciliationOK(l.cfg.Symbol, false)
		return
	}
	monitoring.SetReconciliationOK(l.cfg.Symbol, len(changed) == 0)
	for _, record := range changed {
		justFilled, err := l.orders.CheckOrderStatus(ctx, record.ClientOrderID)
		if err != nil {
			l.log.Warn("tick %d: confirm reconciled order %s: %v", l.tickCount, record.ClientOrderID, err)
			continue
		}
		if justFilled {
			l.handleExternallyClosed(ctx, record.ClientOrderID, now)
		}
	}
}

func (l *Loop) pollRestingOrders(ctx context.Context, now time.Time) {
	for _, lvl := range l.engine.RestingLevels() {
		if lvl.OrderID == "" {
			continue
		}
		justFilled, err := l.orders.CheckOrderStatus(ctx, lvl.OrderID)
		if err != nil {
			l.log.Warn("tick %d: poll order %s: %v", l.tickCount, lvl.OrderID, err)
			continue
		}
		if justFilled {
			l.handleExternallyClosed(ctx, lvl.OrderID, now)
		}
	}
}

// handleExternallyClosed turns a confirmed fill (found either by direct
// polling or by reconciliation) back into a grid index and runs the fill
// handler.
func (l *Loop) handleExternallyClosed(ctx context.Context, clientOrderID string, now time.Time) {
	lvl, ok := l.engine.FindByOrderID(clientOrderID)
	if !ok {
		l.log.Warn("tick %d: filled order %s has no matching grid level", l.tickCount, clientOrderID)
		return
	}
	filled, err := l.engine.MarkOrderFilled(lvl.Index, now)
	if err != nil {
		l.log.Error("tick %d: mark filled index=%d: %v", l.tickCount, lvl.Index, err)
		return
	}
	filled.OrderID = clientOrderID
	l.handleFill(ctx, filled, now)
}

// handleFill implements spec.md's BUY/SELL fill-handler semantics.
func (l *Loop) handleFill(ctx context.Context, filled gridmodel.GridLevel, now time.Time) {
	record, _ := l.orders.Get(filled.OrderID)
	fee := record.Price.Mul(record.Quantity).Mul(defaultFeeRate)

	if filled.Side == gridmodel.SideBuy {
		l.ledger.RecordBuy(filled.Price, filled.Quantity, fee, now)
		l.log.Trade("tick %d: BUY filled index=%d price=%s qty=%s", l.tickCount, filled.Index, filled.Price, filled.Quantity)

		armed, ok := l.engine.ArmCounterOrder(filled)
		if !ok {
			l.log.Debug("tick %d: no counter order for index=%d (would fall outside grid bounds)", l.tickCount, filled.Index)
			return
		}
		if !l.risk.CanPlaceOrder() {
			return
		}
		counterRecord, err := l.orders.PlaceOrder(ctx, armed.Side, armed.Price, armed.Quantity)
		if err != nil {
			l.log.Error("tick %d: place counter order index=%d: %v", l.tickCount, armed.Index, err)
			return
		}
		if err := l.engine.MarkOrderPlaced(armed.Index, counterRecord.ClientOrderID); err != nil {
			l.log.Error("tick %d: mark counter order placed index=%d: %v", l.tickCount, armed.Index, err)
			return
		}
		_ = l.engine.MarkOrderOpen(armed.Index)
		return
	}

	// SELL fill.
	l.ledger.RecordSell(filled.Price, filled.Quantity, fee, now)
	l.log.Trade("tick %d: SELL filled index=%d price=%s qty=%s", l.tickCount, filled.Index, filled.Price, filled.Quantity)

	buyPrice := filled.Price.Sub(l.engine.EffectiveSpacing())
	approx := true
	buyOrderID := filled.OriginBuyOrderID
	if buyOrderID != "" {
		if buyRecord, ok := l.orders.Get(buyOrderID); ok {
			buyPrice = buyRecord.Price
			approx = false
		}
	}

	trade := l.ledger.RecordCompletedTrade(buyOrderID, filled.OrderID, buyPrice, filled.Price, filled.Quantity, fee, now, now, approx)
	if err := l.store.AppendTrade(trade); err != nil {
		l.log.Error("tick %d: append trade: %v", l.tickCount, err)
	}
	monitoring.RecordTrade(l.cfg.Symbol, trade.RealizedPnL.InexactFloat64())
	// filled stays Filled: terminal for this grid generation, no recycling
	// back to Idle and no further counter-order spawned from a SELL fill.
}

// cancelAllOrders cancels every resting order the Order Lifecycle Manager
// and Grid Engine still believe is live, used ahead of a recalibration or
// on EMERGENCY_STOP.
func (l *Loop) cancelAllOrders(ctx context.Context) {
	for _, lvl := range l.engine.RestingLevels() {
		if lvl.OrderID == "" {
			continue
		}
		if err := l.orders.CancelOrder(ctx, lvl.OrderID); err != nil {
			l.log.Warn("tick %d: cancel order %s: %v", l.tickCount, lvl.OrderID, err)
			continue
		}
		if err := l.engine.MarkOrderCancelled(lvl.Index); err != nil {
			l.log.Error("tick %d: mark cancelled index=%d: %v", l.tickCount, lvl.Index, err)
		}
	}
}

// shutdown runs termination semantics: dry-run orders are cancelled,
// live orders are deliberately left resting (unless the loop is exiting
// because of an EMERGENCY_STOP, which already cancelled everything in
// Tick), and state is persisted one last time.
func (l *Loop) shutdown(ctx context.Context) error {
	if name := l.adapter.Name(); name == "dryrun" || strings.HasPrefix(name, "paper(") {
		l.cancelAllOrders(ctx)
	}
	now := l.clk.Now()
	pos := l.ledger.Position()
	l.persistState(now, &pos, gridmodel.RiskStatus{EvaluatedAt: now}, "shutdown")
	return nil
}

func (l *Loop) persistState(now time.Time, pos *gridmodel.Position, status gridmodel.RiskStatus, tag string) {
	snap := state.Snapshot{
		Symbol:    l.cfg.Symbol,
		SavedAt:   now,
		TickCount: l.tickCount,
		Grid:      l.engine.Snapshot(),
		Position:  *pos,
		Risk:      status,
		Tag:       tag,
	}
	if err := l.store.Save(snap); err != nil {
		l.log.Error("tick %d: persist state: %v", l.tickCount, err)
	}
}

func (l *Loop) notify(level, message string) {
	if l.notifier == nil {
		return
	}
	if err := l.notifier.SendAlert(level, fmt.Sprintf("%s (%s): %s", l.cfg.Symbol, level, message)); err != nil {
		l.log.Warn("notify %s failed: %v", level, err)
	}
}

func pauseReason(status gridmodel.RiskStatus) string {
	reasons := make([]string, 0, len(status.Checks))
	for _, c := range status.Checks {
		if c.Level == gridmodel.RiskOK {
			continue
		}
		reasons = append(reasons, fmt.Sprintf("%s=%s", c.Name, c.Value.String()))
	}
	return strings.Join(reasons, "; ")
}
