package shared

// =====================================================
// ASYNQ TASK TYPES
// =====================================================
const (
	TypePaymentReconcile   = "payment:reconcile"
	TypeOrderExpirePending = "order:expire_pending"
)

// =====================================================
// QUEUE NAMES
// =====================================================
const (
	QueueHigh    = "high"
	QueueDefault = "default"
	QueueLow     = "low"
)
