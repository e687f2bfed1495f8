package job

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"nplusone-backend/internal/domains/payment/service"
	"nplusone-backend/pkg/logger"
)

// ReconcilePayload configures one reconciliation sweep.
type ReconcilePayload struct {
	OlderThanMinutes int `json:"older_than_minutes"`
	Limit            int `json:"limit"`
}

// ReconcileHandler sweeps unpaid PENDING orders against the gateway.
// Catches payments whose browser redirect never reached the callback.
type ReconcileHandler struct {
	paymentService service.PaymentService
}

// NewReconcileHandler creates a new reconcile handler
func NewReconcileHandler(paymentService service.PaymentService) *ReconcileHandler {
	return &ReconcileHandler{paymentService: paymentService}
}

// ProcessTask runs the sweep.
func (h *ReconcileHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload ReconcilePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}
	if payload.OlderThanMinutes <= 0 {
		payload.OlderThanMinutes = 15
	}
	if payload.Limit <= 0 {
		payload.Limit = 100
	}

	settled, err := h.paymentService.ReconcilePending(ctx,
		time.Duration(payload.OlderThanMinutes)*time.Minute, payload.Limit)
	if err != nil {
		logger.Error("Payment reconcile sweep failed", err)
		return err
	}

	logger.Info("Payment reconcile sweep completed", map[string]interface{}{
		"settled": settled,
	})

	return nil
}
