package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"nplusone-backend/internal/domains/audit/model"
)

type postgresSystemLogRepository struct {
	db *pgxpool.Pool
}

// NewPostgresSystemLogRepository creates a PostgreSQL-backed audit repository.
func NewPostgresSystemLogRepository(db *pgxpool.Pool) SystemLogRepository {
	return &postgresSystemLogRepository{db: db}
}

func (r *postgresSystemLogRepository) Insert(ctx context.Context, log *model.SystemLog) error {
	requestData, err := marshalNullable(log.RequestData)
	if err != nil {
		return fmt.Errorf("failed to marshal request data: %w", err)
	}
	responseData, err := marshalNullable(log.ResponseData)
	if err != nil {
		return fmt.Errorf("failed to marshal response data: %w", err)
	}

	query := `
		INSERT INTO system_logs (event_type, status, message, request_data, response_data, url, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id, created_at`

	err = r.db.QueryRow(ctx, query,
		log.EventType,
		log.Status,
		log.Message,
		requestData,
		responseData,
		nullableString(log.URL),
		nullableString(log.UserAgent),
	).Scan(&log.ID, &log.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert system log: %w", err)
	}

	return nil
}

func (r *postgresSystemLogRepository) ListByEventType(ctx context.Context, eventType string, limit, offset int) ([]*model.SystemLog, error) {
	query := `
		SELECT id, event_type, status, message, request_data, response_data,
		       COALESCE(url, ''), COALESCE(user_agent, ''), created_at
		FROM system_logs
		WHERE event_type = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, eventType, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list system logs: %w", err)
	}
	defer rows.Close()

	return scanLogs(rows)
}

func (r *postgresSystemLogRepository) ListRecent(ctx context.Context, limit, offset int) ([]*model.SystemLog, error) {
	query := `
		SELECT id, event_type, status, message, request_data, response_data,
		       COALESCE(url, ''), COALESCE(user_agent, ''), created_at
		FROM system_logs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list system logs: %w", err)
	}
	defer rows.Close()

	return scanLogs(rows)
}

type pgxRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanLogs(rows pgxRows) ([]*model.SystemLog, error) {
	var logs []*model.SystemLog
	for rows.Next() {
		var (
			log          model.SystemLog
			requestData  []byte
			responseData []byte
		)
		if err := rows.Scan(
			&log.ID,
			&log.EventType,
			&log.Status,
			&log.Message,
			&requestData,
			&responseData,
			&log.URL,
			&log.UserAgent,
			&log.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan system log: %w", err)
		}

		if len(requestData) > 0 {
			if err := json.Unmarshal(requestData, &log.RequestData); err != nil {
				return nil, fmt.Errorf("failed to unmarshal request data: %w", err)
			}
		}
		if len(responseData) > 0 {
			if err := json.Unmarshal(responseData, &log.ResponseData); err != nil {
				return nil, fmt.Errorf("failed to unmarshal response data: %w", err)
			}
		}

		logs = append(logs, &log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate system logs: %w", err)
	}

	return logs, nil
}

func marshalNullable(data map[string]interface{}) ([]byte, error) {
	if data == nil {
		return nil, nil
	}
	return json.Marshal(data)
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
