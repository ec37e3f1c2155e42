// Package orders is the Order Lifecycle Manager: it turns Grid Engine
// levels into venue orders, tracks their state, reconciles gridai's view
// against the venue's on a cadence, and applies rate limiting so a burst
// of grid recalibrations never floods the venue's request budget.
package orders

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/gridai/gridai/internal/clock"
	"github.com/gridai/gridai/internal/errors"
	"github.com/gridai/gridai/internal/gridmodel"
	"github.com/gridai/gridai/internal/telemetry"
	"github.com/gridai/gridai/internal/venue"
)

// Config parameterizes the manager's rate limit. MaxRetries and
// RetryBaseDelay are carried but not read: the manager submits each
// placement and cancellation once and does not retry.
type Config struct {
	Symbol             string
	RequestsPerSecond  float64
	BurstSize          int
	MaxRetries         int
	RetryBaseDelay     time.Duration
}

// Manager owns the authoritative OrderRecord set for one symbol.
type Manager struct {
	mu      sync.Mutex
	cfg     Config
	adapter venue.Adapter
	clock   clock.Clock
	limiter *rate.Limiter
	log     *telemetry.Logger

	byClientID map[string]*gridmodel.OrderRecord
	dailyAnchor time.Time
	dailyCount  int
	recentOutcomes []bool // ring of recent submit outcomes for failure-rate reporting
}

const recentOutcomesWindow = 50

func New(cfg Config, adapter venue.Adapter, clk clock.Clock, log *telemetry.Logger) *Manager {
	return &Manager{
		cfg:         cfg,
		adapter:     adapter,
		clock:       clk,
		limiter:     rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
		log:         log,
		byClientID:  make(map[string]*gridmodel.OrderRecord),
		dailyAnchor: clock.DayAnchor(clk.Now()),
	}
}

// PlaceOrder submits one grid level as a venue order, generating a fresh
// idempotency key. The caller (control loop) is responsible for not
// calling PlaceOrder twice for the same level without an intervening
// MarkOrderCancelled — PlaceOrder makes a single submission attempt, and
// the idempotency key only protects against the venue adapter resending
// this one submission, not against duplicate caller invocations.
func (m *Manager) PlaceOrder(ctx context.Context, side gridmodel.Side, price, quantity decimal.Decimal) (*gridmodel.OrderRecord, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return nil, errors.WrapError(err, errors.CategoryVenueTransient, "orders", "rate_limit_wait")
	}

	clientOrderID := uuid.NewString()
	now := m.clock.Now()

	var result venue.OrderResult
	var err error
	if side == gridmodel.SideBuy {
		result, err = m.adapter.PlaceBuy(ctx, clientOrderID, m.cfg.Symbol, price, quantity)
	} else {
		result, err = m.adapter.PlaceSell(ctx, clientOrderID, m.cfg.Symbol, price, quantity)
	}

	m.mu.Lock()
	m.rollDailyLocked(now)
	m.recordOutcomeLocked(err == nil)
	m.mu.Unlock()

	if err != nil {
		m.log.Error("order submit failed: side=%s price=%s qty=%s err=%v", side, price, quantity, err)
		return nil, errors.CategorizeError(err, "orders", "place_order")
	}

	record := &gridmodel.OrderRecord{
		ClientOrderID: clientOrderID,
		VenueOrderID:  result.VenueOrderID,
		Symbol:        m.cfg.Symbol,
		Side:          side,
		Price:         price,
		Quantity:      quantity,
		Status:        gridmodel.OrderStatusNew,
		SubmittedAt:   now,
		LastCheckedAt: now,
	}

	m.mu.Lock()
	m.byClientID[clientOrderID] = record
	m.dailyCount++
	m.mu.Unlock()

	m.log.Trade("order placed: client_order_id=%s venue_order_id=%s side=%s price=%s qty=%s",
		clientOrderID, result.VenueOrderID, side, price, quantity)
	return record, nil
}

// CancelOrder cancels a resting order and marks its record Cancelled.
func (m *Manager) CancelOrder(ctx context.Context, clientOrderID string) error {
	m.mu.Lock()
	record, ok := m.byClientID[clientOrderID]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("orders: unknown client order id %s", clientOrderID)
	}

	if err := m.limiter.Wait(ctx); err != nil {
		return errors.WrapError(err, errors.CategoryVenueTransient, "orders", "rate_limit_wait")
	}
	if err := m.adapter.CancelOrder(ctx, record.VenueOrderID, m.cfg.Symbol); err != nil {
		return errors.CategorizeError(err, "orders", "cancel_order")
	}

	m.mu.Lock()
	record.Status = gridmodel.OrderStatusCancelled
	m.mu.Unlock()
	return nil
}

// CheckOrderStatus polls the venue for one order's current state and
// updates the local record, returning true if the order just transitioned
// to Filled.
func (m *Manager) CheckOrderStatus(ctx context.Context, clientOrderID string) (justFilled bool, err error) {
	m.mu.Lock()
	record, ok := m.byClientID[clientOrderID]
	m.mu.Unlock()
	if !ok {
		return false, fmt.Errorf("orders: unknown client order id %s", clientOrderID)
	}

	if err := m.limiter.Wait(ctx); err != nil {
		return false, errors.WrapError(err, errors.CategoryVenueTransient, "orders", "rate_limit_wait")
	}
	snap, err := m.adapter.FetchOrder(ctx, record.VenueOrderID, m.cfg.Symbol)
	if err != nil {
		return false, errors.CategorizeError(err, "orders", "check_order_status")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	wasFilled := record.Status == gridmodel.OrderStatusFilled
	record.Status = mapVenueStatus(snap.Status)
	record.LastCheckedAt = m.clock.Now()
	record.FilledQuantity = snap.FilledQuantity
	if record.Status == gridmodel.OrderStatusFilled && !wasFilled {
		now := m.clock.Now()
		record.FilledAt = &now
		return true, nil
	}
	return false, nil
}

// ReconcileOrders fetches every open order the venue reports and
// reconciles it against the local record set: local NEW/OPEN orders the
// venue still lists are marked OPEN, and those it no longer lists are
// returned with their status unchanged, the net difference gridai's
// control loop needs to catch fills or cancellations it missed between
// polling ticks.
func (m *Manager) ReconcileOrders(ctx context.Context) ([]gridmodel.OrderRecord, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return nil, errors.WrapError(err, errors.CategoryVenueTransient, "orders", "rate_limit_wait")
	}
	venueOrders, err := m.adapter.FetchOpenOrders(ctx, m.cfg.Symbol)
	if err != nil {
		return nil, errors.CategorizeError(err, "orders", "reconcile_orders")
	}

	openOnVenue := make(map[string]venue.OrderSnapshot, len(venueOrders))
	for _, o := range venueOrders {
		openOnVenue[o.VenueOrderID] = o
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	var changed []gridmodel.OrderRecord
	now := m.clock.Now()
	for _, record := range m.byClientID {
		if record.Status != gridmodel.OrderStatusNew && record.Status != gridmodel.OrderStatusOpen {
			continue
		}
		if _, stillOpen := openOnVenue[record.VenueOrderID]; stillOpen {
			record.Status = gridmodel.OrderStatusOpen
			continue
		}
		// The venue no longer lists it as open; its local status is left
		// as is. The control loop's fill handler is responsible for
		// confirming via CheckOrderStatus.
		record.LastCheckedAt = now
		changed = append(changed, *record)
	}
	return changed, nil
}

// Get returns the current record for a client order id.
func (m *Manager) Get(clientOrderID string) (gridmodel.OrderRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byClientID[clientOrderID]
	if !ok {
		return gridmodel.OrderRecord{}, false
	}
	return *r, true
}

// DailyOrderCount returns how many orders have been submitted since the
// last UTC midnight anchor, used by config-driven daily caps.
func (m *Manager) DailyOrderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dailyCount
}

// RecentFailureRate returns the fraction of the last recentOutcomesWindow
// submissions that failed, reported by the control loop as a metrics
// gauge (it is not one of the Risk Supervisor's checks).
func (m *Manager) RecentFailureRate() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.recentOutcomes) == 0 {
		return decimal.Zero
	}
	failures := 0
	for _, ok := range m.recentOutcomes {
		if !ok {
			failures++
		}
	}
	return decimal.NewFromInt(int64(failures)).Div(decimal.NewFromInt(int64(len(m.recentOutcomes))))
}

func (m *Manager) recordOutcomeLocked(success bool) {
	m.recentOutcomes = append(m.recentOutcomes, success)
	if len(m.recentOutcomes) > recentOutcomesWindow {
		m.recentOutcomes = m.recentOutcomes[1:]
	}
}

func (m *Manager) rollDailyLocked(now time.Time) {
	anchor := clock.DayAnchor(now)
	if anchor.After(m.dailyAnchor) {
		m.dailyAnchor = anchor
		m.dailyCount = 0
	}
}

func mapVenueStatus(s string) gridmodel.OrderStatus {
	switch s {
	case "FILLED", "Filled":
		return gridmodel.OrderStatusFilled
	case "CANCELLED", "Cancelled":
		return gridmodel.OrderStatusCancelled
	case "REJECTED", "Rejected":
		return gridmodel.OrderStatusRejected
	case "OPEN", "New", "PartiallyFilled":
		return gridmodel.OrderStatusOpen
	default:
		return gridmodel.OrderStatusNew
	}
}
