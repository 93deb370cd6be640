// Package journal records the side effects a saga intends to apply, so a
// write that lands externally but never makes it into the order store is
// detectable after the fact instead of silent.
package journal

import (
	"context"
	"time"
)

// Effect names an external side effect driven by the saga.
type Effect string

const (
	EffectCartClear     Effect = "cart_clear"
	EffectStockDecrease Effect = "stock_decrease"
	EffectStockIncrease Effect = "stock_increase"
)

// Status is the lifecycle of a journaled effect: pending before the call is
// issued, applied or failed once it returns.
type Status string

const (
	StatusPending Status = "pending"
	StatusApplied Status = "applied"
	StatusFailed  Status = "failed"
)

// Entry is one journaled effect transition. OrderID is zero while the order
// has not been persisted yet; SagaID ties the entries of one saga together.
type Entry struct {
	SagaID    string
	OrderID   int64
	Effect    Effect
	Status    Status
	Detail    string
	CreatedAt time.Time
}

// Recorder appends effect transitions. Recording is best-effort from the
// saga's point of view; implementations should be cheap and must not retry.
type Recorder interface {
	Record(ctx context.Context, sagaID string, orderID int64, effect Effect, status Status, detail string) error
}
