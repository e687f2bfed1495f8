package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"nplusone-backend/internal/domains/order/model"
	"nplusone-backend/pkg/database"
)

type postgresOrderRepository struct {
	db *pgxpool.Pool
}

// NewPostgresOrderRepository creates a PostgreSQL-backed order repository.
func NewPostgresOrderRepository(db *pgxpool.Pool) OrderRepository {
	return &postgresOrderRepository{db: db}
}

const orderColumns = `
	id, status, payment_status, payment_method,
	subtotal, tax_total, shipping_cost, total_amount,
	customer_name, customer_email, customer_phone,
	shipping_address, hold_reason, tracking_id, carrier, tracking_events,
	paid_at, created_at, updated_at, version`

// =====================================================
// CREATE
// =====================================================

func (r *postgresOrderRepository) Create(ctx context.Context, order *model.Order) error {
	return database.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		addressJSON, err := json.Marshal(order.ShippingAddress)
		if err != nil {
			return fmt.Errorf("failed to marshal shipping address: %w", err)
		}
		eventsJSON, err := json.Marshal(order.TrackingEvents)
		if err != nil {
			return fmt.Errorf("failed to marshal tracking events: %w", err)
		}

		query := `
			INSERT INTO orders (
				id, status, payment_status, payment_method,
				subtotal, tax_total, shipping_cost, total_amount,
				customer_name, customer_email, customer_phone,
				shipping_address, tracking_events,
				created_at, updated_at, version
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW(), 1)
			RETURNING created_at, updated_at, version`

		err = tx.QueryRow(ctx, query,
			order.ID,
			order.Status,
			order.PaymentStatus,
			order.PaymentMethod,
			order.Subtotal,
			order.TaxTotal,
			order.ShippingCost,
			order.TotalAmount,
			order.CustomerName,
			order.CustomerEmail,
			order.CustomerPhone,
			addressJSON,
			eventsJSON,
		).Scan(&order.CreatedAt, &order.UpdatedAt, &order.Version)
		if err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}

		for i := range order.Items {
			item := &order.Items[i]
			item.OrderID = order.ID

			itemQuery := `
				INSERT INTO order_items (
					id, order_id, product_id, product_name,
					quantity, price_per_unit, selected_size, selected_color, created_at
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
				RETURNING created_at`

			err = tx.QueryRow(ctx, itemQuery,
				item.ID,
				item.OrderID,
				item.ProductID,
				item.ProductName,
				item.Quantity,
				item.PricePerUnit,
				item.SelectedSize,
				item.SelectedColor,
			).Scan(&item.CreatedAt)
			if err != nil {
				return fmt.Errorf("failed to insert order item: %w", err)
			}
		}

		return nil
	})
}

// =====================================================
// READ
// =====================================================

func (r *postgresOrderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	items, err := r.loadItems(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

func (r *postgresOrderRepository) loadItems(ctx context.Context, orderID string) ([]model.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, product_name,
		       quantity, price_per_unit, selected_size, selected_color, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		var item model.OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&item.Quantity,
			&item.PricePerUnit,
			&item.SelectedSize,
			&item.SelectedColor,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func (r *postgresOrderRepository) List(ctx context.Context, filter ListFilter) ([]*model.Order, int, error) {
	where := " WHERE 1=1"
	args := []interface{}{}
	argPos := 1

	if filter.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, filter.Status)
		argPos++
	}
	if filter.PaymentStatus != "" {
		where += fmt.Sprintf(" AND payment_status = $%d", argPos)
		args = append(args, filter.PaymentStatus)
		argPos++
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM orders"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	query := `SELECT ` + orderColumns + ` FROM orders` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []*model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	return orders, total, rows.Err()
}

// =====================================================
// WORKFLOW UPDATES
// =====================================================

func (r *postgresOrderRepository) UpdateStatus(ctx context.Context, id string, status string, holdReason, trackingID *string, event model.TrackingEvent, version int) error {
	eventJSON, err := marshalEvent(event)
	if err != nil {
		return err
	}

	query := `
		UPDATE orders
		SET status = $2,
		    hold_reason = $3,
		    tracking_id = COALESCE($4, tracking_id),
		    tracking_events = COALESCE(tracking_events, '[]'::jsonb) || $5::jsonb,
		    updated_at = NOW(),
		    version = version + 1
		WHERE id = $1 AND version = $6`

	tag, err := r.db.Exec(ctx, query, id, status, holdReason, trackingID, eventJSON, version)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.classifyMiss(ctx, id)
	}

	return nil
}

func (r *postgresOrderRepository) MarkPaid(ctx context.Context, id string, event model.TrackingEvent) error {
	eventJSON, err := marshalEvent(event)
	if err != nil {
		return err
	}

	// Status guard in SQL: a cancelled order stays cancelled even if the
	// gateway confirms payment afterwards.
	query := `
		UPDATE orders
		SET status = $2,
		    payment_status = $3,
		    paid_at = NOW(),
		    tracking_events = COALESCE(tracking_events, '[]'::jsonb) || $4::jsonb,
		    updated_at = NOW(),
		    version = version + 1
		WHERE id = $1 AND status != $5`

	tag, err := r.db.Exec(ctx, query, id,
		model.OrderStatusProcessing,
		model.PaymentStatusPaid,
		eventJSON,
		model.OrderStatusCancelled,
	)
	if err != nil {
		return fmt.Errorf("failed to mark order paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.classifyPaidMiss(ctx, id)
	}

	return nil
}

func (r *postgresOrderRepository) Hold(ctx context.Context, id string, reason string, event model.TrackingEvent) error {
	eventJSON, err := marshalEvent(event)
	if err != nil {
		return err
	}

	// payment_status is deliberately left untouched: a held order keeps
	// whatever payment state it had, and settlement is resolved manually.
	query := `
		UPDATE orders
		SET status = $2,
		    hold_reason = $3,
		    tracking_events = COALESCE(tracking_events, '[]'::jsonb) || $4::jsonb,
		    updated_at = NOW(),
		    version = version + 1
		WHERE id = $1 AND status != $5`

	tag, err := r.db.Exec(ctx, query, id,
		model.OrderStatusOnHold,
		reason,
		eventJSON,
		model.OrderStatusCancelled,
	)
	if err != nil {
		return fmt.Errorf("failed to hold order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.classifyPaidMiss(ctx, id)
	}

	return nil
}

func (r *postgresOrderRepository) SetShipment(ctx context.Context, id string, trackingID, carrier string, event model.TrackingEvent, version int) error {
	eventJSON, err := marshalEvent(event)
	if err != nil {
		return err
	}

	// The order stays in PROCESSING; moving to READY_TO_SHIP is a separate
	// admin transition once the parcel is packed.
	query := `
		UPDATE orders
		SET tracking_id = $2,
		    carrier = $3,
		    tracking_events = COALESCE(tracking_events, '[]'::jsonb) || $4::jsonb,
		    updated_at = NOW(),
		    version = version + 1
		WHERE id = $1 AND version = $5`

	tag, err := r.db.Exec(ctx, query, id,
		trackingID,
		carrier,
		eventJSON,
		version,
	)
	if err != nil {
		return fmt.Errorf("failed to set shipment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.classifyMiss(ctx, id)
	}

	return nil
}

func (r *postgresOrderRepository) AppendTrackingEvent(ctx context.Context, id string, event model.TrackingEvent) error {
	eventJSON, err := marshalEvent(event)
	if err != nil {
		return err
	}

	query := `
		UPDATE orders
		SET tracking_events = COALESCE(tracking_events, '[]'::jsonb) || $2::jsonb,
		    updated_at = NOW()
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, eventJSON)
	if err != nil {
		return fmt.Errorf("failed to append tracking event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}

	return nil
}

// =====================================================
// RECONCILE QUERIES
// =====================================================

func (r *postgresOrderRepository) ListUnpaidPending(ctx context.Context, before time.Time, limit int) ([]*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
		WHERE status = $1 AND payment_status = $2 AND payment_method = $3 AND created_at < $4
		ORDER BY created_at
		LIMIT $5`

	rows, err := r.db.Query(ctx, query,
		model.OrderStatusPending,
		model.PaymentStatusUnpaid,
		model.PaymentMethodPhonePe,
		before,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list unpaid pending orders: %w", err)
	}
	defer rows.Close()

	var orders []*model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	return orders, rows.Err()
}

func (r *postgresOrderRepository) CancelStalePending(ctx context.Context, before time.Time, event model.TrackingEvent) (int, error) {
	eventJSON, err := marshalEvent(event)
	if err != nil {
		return 0, err
	}

	query := `
		UPDATE orders
		SET status = $1,
		    tracking_events = COALESCE(tracking_events, '[]'::jsonb) || $2::jsonb,
		    updated_at = NOW(),
		    version = version + 1
		WHERE status = $3 AND payment_status = $4 AND created_at < $5`

	tag, err := r.db.Exec(ctx, query,
		model.OrderStatusCancelled,
		eventJSON,
		model.OrderStatusPending,
		model.PaymentStatusUnpaid,
		before,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to cancel stale pending orders: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

// =====================================================
// HELPERS
// =====================================================

// classifyMiss distinguishes "gone" from "stale version" after a zero-row update.
func (r *postgresOrderRepository) classifyMiss(ctx context.Context, id string) error {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check order existence: %w", err)
	}
	if !exists {
		return model.ErrOrderNotFound
	}
	return model.ErrVersionMismatch
}

// classifyPaidMiss distinguishes "gone" from "cancelled" after a guarded update.
func (r *postgresOrderRepository) classifyPaidMiss(ctx context.Context, id string) error {
	var status string
	err := r.db.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1`, id).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrOrderNotFound
		}
		return fmt.Errorf("failed to check order status: %w", err)
	}
	if status == model.OrderStatusCancelled {
		return model.ErrOrderCancelled
	}
	return model.ErrOrderNotFound
}

func marshalEvent(event model.TrackingEvent) ([]byte, error) {
	// Wrapped in an array so the jsonb || operator appends one element
	data, err := json.Marshal([]model.TrackingEvent{event})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tracking event: %w", err)
	}
	return data, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*model.Order, error) {
	var (
		order       model.Order
		addressJSON []byte
		eventsJSON  []byte
	)

	err := row.Scan(
		&order.ID,
		&order.Status,
		&order.PaymentStatus,
		&order.PaymentMethod,
		&order.Subtotal,
		&order.TaxTotal,
		&order.ShippingCost,
		&order.TotalAmount,
		&order.CustomerName,
		&order.CustomerEmail,
		&order.CustomerPhone,
		&addressJSON,
		&order.HoldReason,
		&order.TrackingID,
		&order.Carrier,
		&eventsJSON,
		&order.PaidAt,
		&order.CreatedAt,
		&order.UpdatedAt,
		&order.Version,
	)
	if err != nil {
		return nil, err
	}

	if len(addressJSON) > 0 {
		if err := json.Unmarshal(addressJSON, &order.ShippingAddress); err != nil {
			return nil, fmt.Errorf("failed to unmarshal shipping address: %w", err)
		}
	}
	if len(eventsJSON) > 0 {
		if err := json.Unmarshal(eventsJSON, &order.TrackingEvents); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tracking events: %w", err)
		}
	}

	return &order, nil
}
