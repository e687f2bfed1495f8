package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	orderjob "nplusone-backend/internal/domains/order/job"
	paymentjob "nplusone-backend/internal/domains/payment/job"
	"nplusone-backend/internal/shared"
	"nplusone-backend/pkg/logger"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
}

func NewScheduler(redisAddress string) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: redisAddress},
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{scheduler: scheduler}
}

// RegisterJobs registers all recurring jobs.
func (s *Scheduler) RegisterJobs() error {
	if err := s.registerPaymentReconcileJob(); err != nil {
		return err
	}
	if err := s.registerExpirePendingJob(); err != nil {
		return err
	}
	return nil
}

// ================================================
// JOB 1: Payment Reconcile (Every 10 minutes)
// ================================================
// Callbacks ride on the customer's browser redirect and get lost when the
// tab closes mid-payment. The sweep asks the gateway directly, so a lost
// callback delays settlement by at most one interval.
func (s *Scheduler) registerPaymentReconcileJob() error {
	payload, err := json.Marshal(paymentjob.ReconcilePayload{
		OlderThanMinutes: 15,
		Limit:            100,
	})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypePaymentReconcile, payload)

	_, err = s.scheduler.Register(
		"*/10 * * * *", // Every 10 minutes
		task,
		asynq.Queue(shared.QueueHigh),
		asynq.MaxRetry(2),
		asynq.Timeout(5*time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register PaymentReconcile job", err)
		return err
	}

	logger.Info("Registered PaymentReconcile: every 10 minutes", nil)
	return nil
}

// ================================================
// JOB 2: Expire Stale Pending Orders (Hourly)
// ================================================
func (s *Scheduler) registerExpirePendingJob() error {
	payload, err := json.Marshal(orderjob.ExpirePendingPayload{
		MaxAgeHours: 24,
	})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeOrderExpirePending, payload)

	_, err = s.scheduler.Register(
		"0 * * * *", // Hourly at minute 0
		task,
		asynq.Queue(shared.QueueLow),
		asynq.MaxRetry(1),
		asynq.Timeout(10*time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register ExpirePending job", err)
		return err
	}

	logger.Info("Registered ExpirePending: hourly", nil)
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
