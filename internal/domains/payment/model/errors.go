package model

import "errors"

// =====================================================
// CUSTOM ERROR CODES
// =====================================================
const (
	ErrCodePaymentNotRequired = "PAY001"
	ErrCodeAlreadyPaid        = "PAY002"
	ErrCodeGatewayUnavailable = "PAY003"
	ErrCodeVerificationFailed = "PAY004"
	ErrCodeDuplicateCallback  = "PAY005"
)

// =====================================================
// ERROR DEFINITIONS
// =====================================================
var (
	ErrPaymentNotRequired = errors.New("order does not require online payment")
	ErrAlreadyPaid        = errors.New("order is already paid")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrVerificationFailed = errors.New("payment verification failed")
	ErrDuplicateCallback  = errors.New("callback already processed")
)

// =====================================================
// CUSTOM ERROR TYPE
// =====================================================
type PaymentError struct {
	Code    string
	Message string
	Err     error
}

func (e *PaymentError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *PaymentError) Unwrap() error {
	return e.Err
}

// NewPaymentError creates a new PaymentError
func NewPaymentError(code, message string, err error) *PaymentError {
	return &PaymentError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
