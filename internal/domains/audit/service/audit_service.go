package service

import (
	"context"
	"time"

	"nplusone-backend/internal/domains/audit/model"
	"nplusone-backend/internal/domains/audit/repository"
	"nplusone-backend/pkg/logger"
)

// AuditService records audit events. Recording is best-effort: a failed
// insert is logged and swallowed so audit outages never break the business
// operation being audited.
type AuditService interface {
	Record(ctx context.Context, log *model.SystemLog)
	List(ctx context.Context, eventType string, limit, offset int) ([]*model.SystemLog, error)
}

type auditService struct {
	repo repository.SystemLogRepository
}

func NewAuditService(repo repository.SystemLogRepository) AuditService {
	return &auditService{repo: repo}
}

func (s *auditService) Record(ctx context.Context, log *model.SystemLog) {
	// Detach from the request context so a client disconnect cannot abort the insert
	insertCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := s.repo.Insert(insertCtx, log); err != nil {
		logger.ErrorWith("Failed to record audit event", err, map[string]interface{}{
			"event_type": log.EventType,
			"status":     log.Status,
			"message":    log.Message,
		})
	}
}

func (s *auditService) List(ctx context.Context, eventType string, limit, offset int) ([]*model.SystemLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	if eventType != "" {
		return s.repo.ListByEventType(ctx, eventType, limit, offset)
	}
	return s.repo.ListRecent(ctx, limit, offset)
}
