package repository

import (
	"context"

	"nplusone-backend/internal/domains/audit/model"
)

// SystemLogRepository persists audit records.
type SystemLogRepository interface {
	Insert(ctx context.Context, log *model.SystemLog) error
	ListByEventType(ctx context.Context, eventType string, limit, offset int) ([]*model.SystemLog, error)
	ListRecent(ctx context.Context, limit, offset int) ([]*model.SystemLog, error)
}
