package service

import (
	"context"

	"nplusone-backend/internal/domains/order/model"
)

// ShipmentBooker books a courier shipment for an order. Implemented by the
// logistics service; the order workflow only sees the booking result.
type ShipmentBooker interface {
	BookShipment(ctx context.Context, order *model.Order, dims ShipmentDims) (*BookingResult, error)
}

// ShipmentDims are the parcel dimensions supplied by the admin.
type ShipmentDims struct {
	Length  float64
	Breadth float64
	Height  float64
	Weight  float64
}

// BookingResult is the courier's answer to a booking request.
type BookingResult struct {
	TrackingID string
	Carrier    string
	LogisticID string
}

// OrderService drives order creation and the admin workflow.
type OrderService interface {
	CreateOrder(ctx context.Context, req *model.CreateOrderRequest) (*model.Order, error)
	GetOrder(ctx context.Context, id string) (*model.Order, error)
	ListOrders(ctx context.Context, req *model.ListOrdersRequest) (*model.ListOrdersResponse, error)

	// UpdateOrderStatus applies a workflow transition. With req.Override set
	// the transition table is bypassed and the action is audit-logged.
	UpdateOrderStatus(ctx context.Context, id string, req *model.UpdateOrderStatusRequest, actor string) (*model.Order, error)

	// GenerateShipment books a courier shipment for a PROCESSING order and
	// moves it to READY_TO_SHIP.
	GenerateShipment(ctx context.Context, id string, req *model.CreateShipmentRequest, actor string) (*model.Order, error)

	// ExpireStalePending cancels unpaid PENDING orders older than maxAgeHours.
	ExpireStalePending(ctx context.Context, maxAgeHours int) (int, error)
}
