package job

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"

	"nplusone-backend/internal/domains/order/service"
	"nplusone-backend/pkg/logger"
)

// ExpirePendingPayload configures the stale-order cleanup.
type ExpirePendingPayload struct {
	MaxAgeHours int `json:"max_age_hours"`
}

// ExpirePendingHandler cancels unpaid PENDING orders that will never
// complete checkout, keeping the admin queue free of dead carts.
type ExpirePendingHandler struct {
	orderService service.OrderService
}

// NewExpirePendingHandler creates a new expire handler
func NewExpirePendingHandler(orderService service.OrderService) *ExpirePendingHandler {
	return &ExpirePendingHandler{orderService: orderService}
}

// ProcessTask runs the cleanup.
func (h *ExpirePendingHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload ExpirePendingPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}
	if payload.MaxAgeHours <= 0 {
		payload.MaxAgeHours = 24
	}

	count, err := h.orderService.ExpireStalePending(ctx, payload.MaxAgeHours)
	if err != nil {
		logger.Error("Expire pending sweep failed", err)
		return err
	}

	logger.Info("Expire pending sweep completed", map[string]interface{}{
		"cancelled": count,
	})

	return nil
}
