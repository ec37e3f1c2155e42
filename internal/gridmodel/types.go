// Package gridmodel holds the data types shared by the Grid Engine, Order
// Lifecycle Manager, Risk Supervisor, and Position Ledger: grid levels,
// orders, positions, trades, and risk status. All money/price/quantity
// fields use decimal.Decimal — the grid's price ladder and P&L accounting
// depend on exact rounding behaviour that float64 cannot guarantee.
package gridmodel

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side is the direction of an order or grid level.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// LevelState is the lifecycle state of a single grid level.
type LevelState string

const (
	LevelIdle    LevelState = "IDLE"    // no resting order
	LevelPending LevelState = "PENDING" // order submitted, awaiting venue ack
	LevelOpen    LevelState = "OPEN"    // resting order confirmed on venue
	LevelFilled  LevelState = "FILLED"  // order filled; terminal for this level
)

// GridLevel is one rung of the price ladder.
type GridLevel struct {
	Index      int             // candidate index counted up from the lower bound; negative for counter-order levels
	Side       Side            // BUY below center, SELL above center
	Price      decimal.Decimal // limit price for this rung
	Quantity   decimal.Decimal // base-asset quantity for this rung
	State      LevelState
	OrderID    string // client order id of the resting order, empty when Idle
	FilledAt   *time.Time
	// OriginBuyOrderID pairs a SELL counter-order back to the BUY fill
	// that spawned it, so the ledger can record the exact buy price a
	// completed round-trip realized instead of approximating it from
	// level spacing.
	OriginBuyOrderID string
}

// GridState is the full grid snapshot the Grid Engine owns: the ladder,
// the bounds and center price it was built around, and the regime-driven
// spacing multiplier currently in effect.
type GridState struct {
	Symbol            string
	CenterPrice       decimal.Decimal
	UpperBound        decimal.Decimal // top of the candidate-price range the ladder spans
	LowerBound        decimal.Decimal // bottom of the candidate-price range the ladder spans
	NumGrids          int             // number of rungs the [LowerBound, UpperBound] range is divided into
	Spacing           decimal.Decimal // (UpperBound - LowerBound) / NumGrids, already regime-adjusted
	RegimeMultiplier  decimal.Decimal // widens/narrows the bounds per the external regime classifier
	Levels            []GridLevel
	// NextCounterIndex is the next (always-negative) index available for a
	// synthesized counter-order level; reset to -1 every CalculateGrid call
	// and decremented by ArmCounterOrder so counter levels never collide
	// with the ladder's own 0..NumGrids candidate indices.
	NextCounterIndex  int
	PriceDecimals     int32
	QuantityDecimals  int32
	Paused            bool
	LastRecalibration time.Time
}

// OrderRecord is the Order Lifecycle Manager's view of a single order,
// independent of grid level bookkeeping.
type OrderRecord struct {
	ClientOrderID    string // gridai-generated idempotency key
	VenueOrderID     string
	Symbol           string
	Side             Side
	Price            decimal.Decimal
	Quantity         decimal.Decimal
	Status           OrderStatus
	SubmittedAt      time.Time
	LastCheckedAt    time.Time
	FilledAt         *time.Time
	FilledQuantity   decimal.Decimal
	OriginBuyOrderID string // set on SELL counter-orders, see GridLevel
	RetryCount       int
}

type OrderStatus string

const (
	OrderStatusNew       OrderStatus = "NEW"
	OrderStatusOpen      OrderStatus = "OPEN"
	OrderStatusFilled    OrderStatus = "FILLED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	OrderStatusRejected  OrderStatus = "REJECTED"
)

// Position is the ledger's current inventory snapshot for one symbol.
type Position struct {
	Symbol         string
	BaseQuantity   decimal.Decimal
	AverageCost    decimal.Decimal // volume-weighted average buy price of current inventory
	CashAllocated  decimal.Decimal // quote-asset cash committed to this grid
	RealizedPnL    decimal.Decimal
	UnrealizedPnL  decimal.Decimal
	FeesPaid       decimal.Decimal
	DailyAnchor    time.Time // UTC midnight the daily counters below reset against
	DailyPnL       decimal.Decimal
	DailyTradeCount int
	PeakEquity     decimal.Decimal
}

// TradeRecord is a completed round trip: a BUY matched with its
// corresponding SELL counter-order fill.
type TradeRecord struct {
	Symbol        string
	BuyOrderID    string
	SellOrderID   string
	BuyPrice      decimal.Decimal
	SellPrice     decimal.Decimal
	Quantity      decimal.Decimal
	Fees          decimal.Decimal
	RealizedPnL   decimal.Decimal
	OpenedAt      time.Time
	ClosedAt      time.Time
	ApproxBuyPair bool // true when BuyPrice was inferred from spacing rather than OriginBuyOrderID
}

// EquitySnapshot is one point on the equity curve, recorded at the cadence
// the control loop specifies (spec: end of every tick).
type EquitySnapshot struct {
	Timestamp     time.Time
	CashBalance   decimal.Decimal
	InventoryValue decimal.Decimal
	TotalEquity   decimal.Decimal
	DrawdownPct   decimal.Decimal
}

// RiskLevel is the Risk Supervisor's escalation ladder.
type RiskLevel string

const (
	RiskOK              RiskLevel = "OK"
	RiskWarn            RiskLevel = "WARN"
	RiskPause           RiskLevel = "PAUSE"
	RiskEmergencyStop   RiskLevel = "EMERGENCY_STOP"
)

// RiskCheckName identifies one of the five scalar checks the Risk
// Supervisor runs every tick.
type RiskCheckName string

const (
	CheckDrawdown        RiskCheckName = "drawdown"
	CheckCapitalDeployed RiskCheckName = "capital_deployed"
	CheckDailyLossLimit  RiskCheckName = "daily_loss_limit"
	CheckOrderCount      RiskCheckName = "order_count"
	CheckFees            RiskCheckName = "fees"
)

// RiskCheckResult is the outcome of a single check.
type RiskCheckResult struct {
	Name      RiskCheckName
	Level     RiskLevel
	Value     decimal.Decimal
	Threshold decimal.Decimal
	Message   string
}

// RiskStatus is the aggregate result of one risk evaluation pass.
type RiskStatus struct {
	Level       RiskLevel
	Checks      []RiskCheckResult
	PausedSince *time.Time // set once PAUSE or EMERGENCY_STOP latches; sticky until ResetPause
	EvaluatedAt time.Time
}
