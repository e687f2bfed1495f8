package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	auditmodel "nplusone-backend/internal/domains/audit/model"
	auditservice "nplusone-backend/internal/domains/audit/service"
	ordermodel "nplusone-backend/internal/domains/order/model"
	orderrepo "nplusone-backend/internal/domains/order/repository"
	"nplusone-backend/internal/domains/payment/gateway"
	"nplusone-backend/internal/domains/payment/model"
	"nplusone-backend/internal/domains/risk"
	"nplusone-backend/pkg/cache"
	"nplusone-backend/pkg/logger"
)

// callbackGuardTTL bounds how long a processed callback blocks replays.
const callbackGuardTTL = 24 * time.Hour

// CallbackMeta carries request metadata into the audit trail.
type CallbackMeta struct {
	URL       string
	UserAgent string
}

// PaymentService handles gateway payments end to end.
type PaymentService interface {
	// InitiatePayment opens a checkout session and returns the hosted page URL.
	InitiatePayment(ctx context.Context, orderID string) (*model.InitiatePaymentResponse, error)

	// ProcessCallback handles the gateway redirect. It never returns an error:
	// whatever happens, the customer's browser gets a redirect target.
	ProcessCallback(ctx context.Context, cb *model.CallbackRequest, meta CallbackMeta) string

	// CheckStatus re-queries the gateway and settles the order if paid.
	CheckStatus(ctx context.Context, orderID string) (*model.PaymentStatusResponse, error)

	// ReconcilePending sweeps unpaid PENDING orders against the gateway.
	ReconcilePending(ctx context.Context, olderThan time.Duration, limit int) (int, error)
}

type paymentService struct {
	gateway     gateway.PhonePeGateway
	orders      orderrepo.OrderRepository
	cache       cache.Cache
	audit       auditservice.AuditService
	storeURL    string // storefront base, redirect target after callbacks
	callbackURL string // this service's callback endpoint, given to the gateway
}

// NewPaymentService creates the payment service.
func NewPaymentService(gw gateway.PhonePeGateway, orders orderrepo.OrderRepository, c cache.Cache, audit auditservice.AuditService, storeURL, callbackURL string) PaymentService {
	return &paymentService{
		gateway:     gw,
		orders:      orders,
		cache:       c,
		audit:       audit,
		storeURL:    strings.TrimRight(storeURL, "/"),
		callbackURL: callbackURL,
	}
}

// =====================================================
// INITIATE PAYMENT
// =====================================================

func (s *paymentService) InitiatePayment(ctx context.Context, orderID string) (*model.InitiatePaymentResponse, error) {
	// Step 1: Load and guard the order
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.RequiresOnlinePayment() {
		return nil, model.NewPaymentError(model.ErrCodePaymentNotRequired, "order does not require online payment", model.ErrPaymentNotRequired)
	}
	if order.IsPaid() {
		return nil, model.NewPaymentError(model.ErrCodeAlreadyPaid, "order is already paid", model.ErrAlreadyPaid)
	}

	// Step 2: Open a checkout session
	resp, err := s.gateway.CreatePayment(ctx, gateway.PhonePePaymentRequest{
		MerchantOrderID: order.ID,
		Amount:          order.TotalAmount,
		RedirectURL:     s.callbackURL + "?merchantTransactionId=" + order.ID,
	})
	if err != nil {
		logger.ErrorWith("Failed to initiate payment", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, model.NewPaymentError(model.ErrCodeGatewayUnavailable, "payment gateway unavailable", err)
	}

	logger.Info("Payment initiated", map[string]interface{}{
		"order_id": orderID,
		"amount":   order.TotalAmount.String(),
	})

	return &model.InitiatePaymentResponse{
		OrderID:    order.ID,
		Amount:     order.TotalAmount,
		PaymentURL: resp.RedirectURL,
	}, nil
}

// =====================================================
// CALLBACK PROCESSING
// =====================================================

func (s *paymentService) ProcessCallback(ctx context.Context, cb *model.CallbackRequest, meta CallbackMeta) string {
	orderID := cb.OrderID()

	// Step 1: Non-success codes and malformed payloads go straight back to cart
	if cb.Code != model.CodePaymentSuccess || orderID == "" {
		logger.Warn("Payment callback without success code", map[string]interface{}{
			"code":     cb.Code,
			"order_id": orderID,
		})
		return s.storeURL + model.RedirectCartFailedPath
	}

	// Step 2: Replay guard. The gateway retries callbacks; only the first
	// delivery does the verification work.
	guardKey := "payment:callback:" + orderID
	first, err := s.cache.SetNX(ctx, guardKey, time.Now().Unix(), callbackGuardTTL)
	if err != nil {
		// Redis being down must not lose a payment; fall through and rely on
		// the SQL guards for correctness.
		logger.ErrorWith("Callback replay guard unavailable", err, map[string]interface{}{
			"order_id": orderID,
		})
		first = true
	}
	if !first {
		logger.Info("Duplicate payment callback ignored", map[string]interface{}{
			"order_id": orderID,
		})
		return s.storeURL + model.RedirectConfirmationPath + orderID
	}

	// Step 3: Never trust the callback payload; re-verify with the gateway
	status, err := s.gateway.GetOrderStatus(ctx, orderID)
	if err != nil {
		// Release the guard so a retry can verify again
		if delErr := s.cache.Delete(ctx, guardKey); delErr != nil {
			logger.Error("Failed to release callback guard", delErr)
		}
		s.recordCallback(ctx, orderID, auditmodel.StatusFailure, "Gateway verification failed: "+err.Error(), cb, meta, nil)
		return s.storeURL + model.RedirectCartErrorPath
	}

	if status.State != gateway.StateCompleted {
		// The order is left untouched; the reconcile sweep settles it if the
		// payment lands later. The customer still gets the confirmation page,
		// which renders the live payment status.
		if delErr := s.cache.Delete(ctx, guardKey); delErr != nil {
			logger.Error("Failed to release callback guard", delErr)
		}
		s.recordCallback(ctx, orderID, auditmodel.StatusFailure, "Payment not completed at gateway", cb, meta, map[string]interface{}{
			"state": status.State,
		})
		return s.storeURL + model.RedirectConfirmationPath + orderID
	}

	// Step 4: Payment confirmed; settle the order through the risk gate
	if err := s.settlePaidOrder(ctx, orderID); err != nil {
		s.recordCallback(ctx, orderID, auditmodel.StatusFailure, "Order update failed after payment: "+err.Error(), cb, meta, map[string]interface{}{
			"state": status.State,
		})
		return s.storeURL + model.RedirectConfirmationPath + model.RedirectErrorSlug
	}

	s.recordCallback(ctx, orderID, auditmodel.StatusSuccess, "Payment verified and order settled", cb, meta, map[string]interface{}{
		"state":          status.State,
		"transaction_id": status.TransactionID,
	})

	return s.storeURL + model.RedirectConfirmationPath + orderID
}

// settlePaidOrder runs the risk gate on a verified payment. Safe orders move
// to PROCESSING as PAID; risky ones are parked ON_HOLD for manual review with
// payment_status untouched. Fulfilment never starts here; shipping is an
// explicit admin action.
func (s *paymentService) settlePaidOrder(ctx context.Context, orderID string) error {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	// Already settled or already parked for review; nothing to do again.
	if order.IsPaid() || order.IsOnHold() {
		return nil
	}

	verdict := risk.Verdict{Safe: true}
	if order.ShippingAddress != nil {
		verdict = risk.Evaluate(risk.Input{
			Phone:   order.ShippingAddress.Phone,
			Address: order.ShippingAddress.FullAddress(),
			Pincode: order.ShippingAddress.Pincode,
		})
	}

	if verdict.Safe {
		event := ordermodel.NewTrackingEvent(
			ordermodel.OrderStatusProcessing,
			ordermodel.StatusLabels[ordermodel.OrderStatusProcessing],
			"Payment confirmed",
		)
		err = s.orders.MarkPaid(ctx, orderID, event)
		if errors.Is(err, ordermodel.ErrOrderCancelled) {
			// Payment landed on a cancelled order. Keep the cancellation and
			// leave a trail for the refund.
			s.audit.Record(ctx, &auditmodel.SystemLog{
				EventType:   auditmodel.EventPaymentCallback,
				Status:      auditmodel.StatusFailure,
				Message:     fmt.Sprintf("Payment received for cancelled order %s, refund required", orderID),
				RequestData: map[string]interface{}{"order_id": orderID},
			})
			return nil
		}
		return err
	}

	// The money has been captured, but the order is parked ON_HOLD with its
	// payment_status untouched until an operator reviews it.
	reason := strings.Join(verdict.Reasons, "; ")
	event := ordermodel.NewTrackingEvent(
		ordermodel.OrderStatusOnHold,
		ordermodel.StatusLabels[ordermodel.OrderStatusOnHold],
		"Held for review: "+reason,
	)
	if err := s.orders.Hold(ctx, orderID, reason, event); err != nil {
		if errors.Is(err, ordermodel.ErrOrderCancelled) {
			return nil
		}
		return err
	}

	s.audit.Record(ctx, &auditmodel.SystemLog{
		EventType: auditmodel.EventRTORisk,
		Status:    auditmodel.StatusSuccess,
		Message:   fmt.Sprintf("Order %s held for review: %s", orderID, reason),
		RequestData: map[string]interface{}{
			"order_id": orderID,
			"reasons":  verdict.Reasons,
		},
	})

	return nil
}

// =====================================================
// STATUS CHECK
// =====================================================

func (s *paymentService) CheckStatus(ctx context.Context, orderID string) (*model.PaymentStatusResponse, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	status, err := s.gateway.GetOrderStatus(ctx, orderID)
	if err != nil {
		return nil, model.NewPaymentError(model.ErrCodeGatewayUnavailable, "payment gateway unavailable", err)
	}

	// Settle if the gateway knows something we missed
	if status.State == gateway.StateCompleted && !order.IsPaid() {
		if err := s.settlePaidOrder(ctx, orderID); err != nil {
			return nil, err
		}
		order, err = s.orders.GetByID(ctx, orderID)
		if err != nil {
			return nil, err
		}
	}

	return &model.PaymentStatusResponse{
		OrderID:       orderID,
		GatewayState:  status.State,
		PaymentStatus: order.PaymentStatus,
		OrderStatus:   order.Status,
	}, nil
}

// =====================================================
// RECONCILIATION SWEEP
// =====================================================

// ReconcilePending settles orders whose callbacks were lost. Runs from the
// background worker.
func (s *paymentService) ReconcilePending(ctx context.Context, olderThan time.Duration, limit int) (int, error) {
	if limit <= 0 {
		limit = 100
	}
	cutoff := time.Now().Add(-olderThan)

	orders, err := s.orders.ListUnpaidPending(ctx, cutoff, limit)
	if err != nil {
		return 0, err
	}

	settled := 0
	for _, order := range orders {
		status, err := s.gateway.GetOrderStatus(ctx, order.ID)
		if err != nil {
			logger.ErrorWith("Reconcile: gateway check failed", err, map[string]interface{}{
				"order_id": order.ID,
			})
			continue
		}
		if status.State != gateway.StateCompleted {
			continue
		}

		if err := s.settlePaidOrder(ctx, order.ID); err != nil {
			logger.ErrorWith("Reconcile: failed to settle order", err, map[string]interface{}{
				"order_id": order.ID,
			})
			continue
		}
		settled++

		s.audit.Record(ctx, &auditmodel.SystemLog{
			EventType: auditmodel.EventPaymentReconcile,
			Status:    auditmodel.StatusSuccess,
			Message:   fmt.Sprintf("Order %s settled by reconciliation sweep", order.ID),
			RequestData: map[string]interface{}{
				"order_id": order.ID,
				"state":    status.State,
			},
		})
	}

	if settled > 0 {
		logger.Info("Reconciliation sweep settled orders", map[string]interface{}{
			"checked": len(orders),
			"settled": settled,
		})
	}

	return settled, nil
}

// =====================================================
// HELPERS
// =====================================================

func (s *paymentService) recordCallback(ctx context.Context, orderID, status, message string, cb *model.CallbackRequest, meta CallbackMeta, extra map[string]interface{}) {
	requestData := map[string]interface{}{
		"order_id":              orderID,
		"code":                  cb.Code,
		"transaction_id":        cb.TransactionID,
		"provider_reference_id": cb.ProviderReferenceID,
	}

	s.audit.Record(ctx, &auditmodel.SystemLog{
		EventType:    auditmodel.EventPaymentCallback,
		Status:       status,
		Message:      message,
		RequestData:  requestData,
		ResponseData: extra,
		URL:          meta.URL,
		UserAgent:    meta.UserAgent,
	})
}
