package gateway

import (
	"context"

	"github.com/shopspring/decimal"
)

// =====================================================
// PHONEPE GATEWAY INTERFACE
// =====================================================

// PhonePePaymentRequest starts a checkout session for an order.
type PhonePePaymentRequest struct {
	MerchantOrderID string
	Amount          decimal.Decimal // rupees; converted to paise on the wire
	RedirectURL     string
}

// PhonePePaymentResponse carries the hosted checkout URL.
type PhonePePaymentResponse struct {
	OrderID     string
	State       string
	RedirectURL string
}

// Order states reported by the gateway.
const (
	StateCompleted = "COMPLETED"
	StateFailed    = "FAILED"
	StatePending   = "PENDING"
)

// PhonePeOrderStatus is the gateway's view of a payment.
type PhonePeOrderStatus struct {
	OrderID       string
	State         string // COMPLETED, FAILED, PENDING
	Amount        int64  // paise
	TransactionID string
}

// PhonePeGateway talks to the PhonePe Standard Checkout API.
// Callback notifications are advisory only; MarkPaid decisions are always
// based on a fresh GetOrderStatus call.
type PhonePeGateway interface {
	CreatePayment(ctx context.Context, req PhonePePaymentRequest) (*PhonePePaymentResponse, error)
	GetOrderStatus(ctx context.Context, merchantOrderID string) (*PhonePeOrderStatus, error)
}
