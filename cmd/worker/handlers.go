package main

import (
	"github.com/hibiken/asynq"

	orderJob "nplusone-backend/internal/domains/order/job"
	paymentJob "nplusone-backend/internal/domains/payment/job"
	"nplusone-backend/internal/shared"
	"nplusone-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	// Payment handlers
	reconcile *paymentJob.ReconcileHandler

	// Maintenance handlers
	expirePending *orderJob.ExpirePendingHandler
}

// initializeHandlers creates all job handlers with their dependencies
func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		reconcile:     paymentJob.NewReconcileHandler(c.PaymentService),
		expirePending: orderJob.NewExpirePendingHandler(c.OrderService),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	// Payment tasks
	mux.HandleFunc(shared.TypePaymentReconcile, h.reconcile.ProcessTask)

	// Maintenance tasks
	mux.HandleFunc(shared.TypeOrderExpirePending, h.expirePending.ProcessTask)
}
