package monitoring

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// HealthChecker tracks venue connectivity, the last successful tick, and
// the grid's pause state for the /healthz surface spec.md §7 asks for.
type HealthChecker struct {
	mu          sync.RWMutex
	lastTick    time.Time
	lastPrice   float64
	isConnected bool
	paused      bool
	pauseReason string
	errors      []string
	startTime   time.Time
}

// HealthStatus is the JSON body ServeHTTP writes.
type HealthStatus struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	LastTick    time.Time `json:"last_tick"`
	LastPrice   float64   `json:"last_price"`
	IsConnected bool      `json:"is_connected"`
	Paused      bool      `json:"paused"`
	PauseReason string    `json:"pause_reason,omitempty"`
	Uptime      string    `json:"uptime"`
	Errors      []string  `json:"errors,omitempty"`
}

func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		errors:    make([]string, 0),
		startTime: time.Now(),
	}
}

// ServeHTTP reports "healthy" when connected, recently ticking, and not
// paused; "degraded" on a stale tick or disconnect; "unhealthy" once the
// grid has PAUSE/EMERGENCY_STOP-latched or accumulated errors.
func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := "healthy"
	if !h.isConnected || time.Since(h.lastTick) > 5*time.Minute {
		status = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if h.paused || len(h.errors) > 0 {
		status = "unhealthy"
		w.WriteHeader(http.StatusInternalServerError)
	}

	health := HealthStatus{
		Status:      status,
		Timestamp:   time.Now(),
		LastTick:    h.lastTick,
		LastPrice:   h.lastPrice,
		IsConnected: h.isConnected,
		Paused:      h.paused,
		PauseReason: h.pauseReason,
		Uptime:      time.Since(h.startTime).String(),
		Errors:      h.errors,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)
}

// SetConnected updates the venue connection status.
func (h *HealthChecker) SetConnected(connected bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.isConnected = connected
}

// RecordTick updates the last-tick timestamp and price, called once per
// successful control loop tick.
func (h *HealthChecker) RecordTick(at time.Time, price float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastTick = at
	h.lastPrice = price
}

// SetPaused records the Risk Supervisor's current pause latch state.
func (h *HealthChecker) SetPaused(paused bool, reason string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.paused = paused
	h.pauseReason = reason
}

// AddError adds an error to the rolling error list the health surface
// reports, keeping only the most recent 10.
func (h *HealthChecker) AddError(err string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errors = append(h.errors, err)
	if len(h.errors) > 10 {
		h.errors = h.errors[len(h.errors)-10:]
	}
}
