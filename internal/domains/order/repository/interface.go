package repository

import (
	"context"
	"time"

	"nplusone-backend/internal/domains/order/model"
)

// ListFilter narrows admin order listings.
type ListFilter struct {
	Status        string
	PaymentStatus string
	Limit         int
	Offset        int
}

// OrderRepository persists orders and their workflow state.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id string) (*model.Order, error)
	List(ctx context.Context, filter ListFilter) ([]*model.Order, int, error)

	// UpdateStatus moves the order to a new status with optimistic locking.
	// Returns model.ErrVersionMismatch when the version column has moved on.
	UpdateStatus(ctx context.Context, id string, status string, holdReason, trackingID *string, event model.TrackingEvent, version int) error

	// MarkPaid settles payment and releases the order to PROCESSING.
	// Cancelled orders are never resurrected; the row is left untouched and
	// model.ErrOrderCancelled is returned instead.
	MarkPaid(ctx context.Context, id string, event model.TrackingEvent) error

	// Hold parks the order for manual review with the given reason.
	Hold(ctx context.Context, id string, reason string, event model.TrackingEvent) error

	// SetShipment attaches courier details produced by shipment booking.
	SetShipment(ctx context.Context, id string, trackingID, carrier string, event model.TrackingEvent, version int) error

	AppendTrackingEvent(ctx context.Context, id string, event model.TrackingEvent) error

	// ListUnpaidPending returns PhonePe orders still awaiting payment,
	// created before the cutoff. Used by the reconcile job.
	ListUnpaidPending(ctx context.Context, before time.Time, limit int) ([]*model.Order, error)

	// CancelStalePending cancels unpaid PENDING orders older than the cutoff
	// and returns how many rows were affected.
	CancelStalePending(ctx context.Context, before time.Time, event model.TrackingEvent) (int, error)
}
