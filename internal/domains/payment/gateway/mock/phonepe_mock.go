package mock

import (
	"context"
	"fmt"

	"nplusone-backend/internal/domains/payment/gateway"
)

// =====================================================
// PHONEPE MOCK (tests and local development)
// =====================================================

// PhonePeMock is a scriptable in-memory gateway.
type PhonePeMock struct {
	// Statuses maps merchantOrderID to the state GetOrderStatus returns.
	Statuses map[string]string
	// StatusErr, when set, is returned by GetOrderStatus.
	StatusErr error
	// StatusCalls counts GetOrderStatus invocations.
	StatusCalls int
}

func NewPhonePeMock() *PhonePeMock {
	return &PhonePeMock{Statuses: make(map[string]string)}
}

func (m *PhonePeMock) CreatePayment(_ context.Context, req gateway.PhonePePaymentRequest) (*gateway.PhonePePaymentResponse, error) {
	return &gateway.PhonePePaymentResponse{
		OrderID:     "OMO" + req.MerchantOrderID,
		State:       "PENDING",
		RedirectURL: "https://mercury.phonepe.test/checkout/" + req.MerchantOrderID,
	}, nil
}

func (m *PhonePeMock) GetOrderStatus(_ context.Context, merchantOrderID string) (*gateway.PhonePeOrderStatus, error) {
	m.StatusCalls++
	if m.StatusErr != nil {
		return nil, m.StatusErr
	}
	state, ok := m.Statuses[merchantOrderID]
	if !ok {
		return nil, fmt.Errorf("order %s not found at gateway", merchantOrderID)
	}
	return &gateway.PhonePeOrderStatus{
		OrderID:       merchantOrderID,
		State:         state,
		TransactionID: "T" + merchantOrderID,
	}, nil
}
