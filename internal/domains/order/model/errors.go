package model

import "errors"

// =====================================================
// CUSTOM ERROR CODES
// =====================================================
const (
	ErrCodeOrderNotFound      = "ORD001"
	ErrCodeInvalidTransition  = "ORD002"
	ErrCodeVersionMismatch    = "ORD003"
	ErrCodeOrderCancelled     = "ORD004"
	ErrCodeInvalidStatus      = "ORD005"
	ErrCodeShipmentNotAllowed = "ORD006"
	ErrCodeTrackingRequired   = "ORD007"
	ErrCodeOrderOnHold        = "ORD008"
	ErrCodeEmptyOrder         = "ORD009"
	ErrCodeInvalidAmount      = "ORD010"
)

// =====================================================
// ERROR DEFINITIONS
// =====================================================
var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrInvalidTransition  = errors.New("status transition not allowed")
	ErrVersionMismatch    = errors.New("version mismatch - concurrent modification detected")
	ErrOrderCancelled     = errors.New("order is cancelled")
	ErrInvalidStatus      = errors.New("invalid order status")
	ErrShipmentNotAllowed = errors.New("order is not eligible for shipment")
	ErrTrackingRequired   = errors.New("tracking id required before marking shipped")
	ErrOrderOnHold        = errors.New("order is on hold pending review")
	ErrEmptyOrder         = errors.New("order has no items")
)

// =====================================================
// CUSTOM ERROR TYPE
// =====================================================
type OrderError struct {
	Code    string
	Message string
	Err     error
}

func (e *OrderError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *OrderError) Unwrap() error {
	return e.Err
}

// NewOrderError creates a new OrderError
func NewOrderError(code, message string, err error) *OrderError {
	return &OrderError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
