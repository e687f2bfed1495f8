package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// =====================================================
// ORDER STATUS CONSTANTS
// =====================================================
const (
	OrderStatusPending     = "PENDING"
	OrderStatusProcessing  = "PROCESSING"
	OrderStatusOnHold      = "ON_HOLD"
	OrderStatusReadyToShip = "READY_TO_SHIP"
	OrderStatusShipped     = "SHIPPED"
	OrderStatusDelivered   = "DELIVERED"
	OrderStatusCancelled   = "CANCELLED"
	OrderStatusReturned    = "RETURNED"
	OrderStatusRTO         = "RTO"
)

// =====================================================
// PAYMENT METHOD CONSTANTS
// =====================================================
const (
	PaymentMethodPhonePe = "phonepe"
	PaymentMethodCOD     = "cod"
)

// =====================================================
// PAYMENT STATUS CONSTANTS
// =====================================================
const (
	PaymentStatusUnpaid   = "UNPAID"
	PaymentStatusPaid     = "PAID"
	PaymentStatusRefunded = "REFUNDED"
)

// =====================================================
// ENTITY: Order
// =====================================================
type Order struct {
	ID              string           `json:"id"`
	Status          string           `json:"status"`
	PaymentStatus   string           `json:"payment_status"`
	PaymentMethod   string           `json:"payment_method"`
	Subtotal        decimal.Decimal  `json:"subtotal"`
	TaxTotal        decimal.Decimal  `json:"tax_total"`
	ShippingCost    decimal.Decimal  `json:"shipping_cost"`
	TotalAmount     decimal.Decimal  `json:"total_amount"`
	CustomerName    string           `json:"customer_name"`
	CustomerEmail   string           `json:"customer_email"`
	CustomerPhone   string           `json:"customer_phone"`
	ShippingAddress *ShippingAddress `json:"shipping_address,omitempty"`
	HoldReason      *string          `json:"hold_reason,omitempty"`
	TrackingID      *string          `json:"tracking_id,omitempty"`
	Carrier         *string          `json:"carrier,omitempty"`
	TrackingEvents  []TrackingEvent  `json:"tracking_events"`
	Items           []OrderItem      `json:"items,omitempty"`
	PaidAt          *time.Time       `json:"paid_at,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	Version         int              `json:"version"`
}

// IsOnHold checks if the order is parked for manual review
func (o *Order) IsOnHold() bool {
	return o.Status == OrderStatusOnHold
}

// IsPaid checks if payment is settled
func (o *Order) IsPaid() bool {
	return o.PaymentStatus == PaymentStatusPaid
}

// IsTerminal checks if the order reached a final state
func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusDelivered ||
		o.Status == OrderStatusCancelled ||
		o.Status == OrderStatusReturned ||
		o.Status == OrderStatusRTO
}

// CanCreateShipment checks if a courier shipment may be booked.
// Held orders must be released before fulfilment.
func (o *Order) CanCreateShipment() bool {
	return o.Status == OrderStatusProcessing && o.TrackingID == nil
}

// RequiresOnlinePayment checks if the order is settled through the gateway
func (o *Order) RequiresOnlinePayment() bool {
	return o.PaymentMethod == PaymentMethodPhonePe
}

// IsCOD checks if the order is cash on delivery
func (o *Order) IsCOD() bool {
	return o.PaymentMethod == PaymentMethodCOD
}

// =====================================================
// ENTITY: OrderItem
// =====================================================
type OrderItem struct {
	ID            string          `json:"id"`
	OrderID       string          `json:"order_id"`
	ProductID     string          `json:"product_id"`
	ProductName   string          `json:"product_name"`
	Quantity      int             `json:"quantity"`
	PricePerUnit  decimal.Decimal `json:"price_per_unit"`
	SelectedSize  *string         `json:"selected_size,omitempty"`
	SelectedColor *string         `json:"selected_color,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Subtotal calculates the line amount
func (oi *OrderItem) Subtotal() decimal.Decimal {
	return oi.PricePerUnit.Mul(decimal.NewFromInt(int64(oi.Quantity)))
}

// =====================================================
// VALUE: ShippingAddress (stored as jsonb)
// =====================================================
type ShippingAddress struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Line1   string `json:"line1"`
	Line2   string `json:"line2,omitempty"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Country string `json:"country"`
}

// FullAddress joins the address lines for risk checks and courier payloads
func (a *ShippingAddress) FullAddress() string {
	if a.Line2 == "" {
		return a.Line1
	}
	return a.Line1 + ", " + a.Line2
}

// =====================================================
// VALUE: TrackingEvent (stored as jsonb array)
// =====================================================
type TrackingEvent struct {
	Status    string    `json:"status"`
	Label     string    `json:"label"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTrackingEvent builds a timeline entry for a status change
func NewTrackingEvent(status, label, message string) TrackingEvent {
	return TrackingEvent{
		Status:    status,
		Label:     label,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}
