package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	auditmodel "nplusone-backend/internal/domains/audit/model"
	auditservice "nplusone-backend/internal/domains/audit/service"
	"nplusone-backend/internal/domains/order/model"
	"nplusone-backend/internal/domains/order/repository"
	"nplusone-backend/internal/domains/risk"
	"nplusone-backend/pkg/logger"
)

type orderService struct {
	repo    repository.OrderRepository
	audit   auditservice.AuditService
	booker  ShipmentBooker
	taxRate decimal.Decimal
}

// NewOrderService creates the order workflow service.
func NewOrderService(repo repository.OrderRepository, audit auditservice.AuditService, booker ShipmentBooker, taxRatePercent float64) OrderService {
	return &orderService{
		repo:    repo,
		audit:   audit,
		booker:  booker,
		taxRate: decimal.NewFromFloat(taxRatePercent),
	}
}

// =====================================================
// CREATE ORDER
// =====================================================

func (s *orderService) CreateOrder(ctx context.Context, req *model.CreateOrderRequest) (*model.Order, error) {
	// Step 1: Validate request
	if err := req.Validate(); err != nil {
		return nil, model.NewOrderError(model.ErrCodeEmptyOrder, "invalid order request", err)
	}

	// Step 2: Build items and totals
	subtotal := decimal.Zero
	items := make([]model.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		item := model.OrderItem{
			ID:            uuid.NewString(),
			ProductID:     it.ProductID,
			ProductName:   it.ProductName,
			Quantity:      it.Quantity,
			PricePerUnit:  it.PricePerUnit,
			SelectedSize:  it.SelectedSize,
			SelectedColor: it.SelectedColor,
		}
		subtotal = subtotal.Add(item.Subtotal())
		items = append(items, item)
	}

	taxTotal := subtotal.Mul(s.taxRate).Div(decimal.NewFromInt(100)).Round(2)
	shippingCost := shippingCostFor(subtotal)
	total := subtotal.Add(taxTotal).Add(shippingCost)

	address := req.ShippingAddress
	order := &model.Order{
		ID:              generateOrderID(),
		Status:          model.OrderStatusPending,
		PaymentStatus:   model.PaymentStatusUnpaid,
		PaymentMethod:   req.PaymentMethod,
		Subtotal:        subtotal,
		TaxTotal:        taxTotal,
		ShippingCost:    shippingCost,
		TotalAmount:     total,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		ShippingAddress: &address,
		TrackingEvents: []model.TrackingEvent{
			model.NewTrackingEvent(model.OrderStatusPending, model.StatusLabels[model.OrderStatusPending], "Order received"),
		},
		Items: items,
	}

	// Step 3: Persist
	if err := s.repo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	logger.Info("Order created", map[string]interface{}{
		"order_id":       order.ID,
		"payment_method": order.PaymentMethod,
		"total_amount":   order.TotalAmount.String(),
	})

	// Step 4: COD orders skip the gateway, so the risk gate runs at creation
	if order.IsCOD() {
		if err := s.applyRiskGate(ctx, order, false); err != nil {
			return nil, err
		}

		// Step 5: Best-effort label booking for a confirmed COD order. A
		// failure leaves tracking empty for the admin to book manually.
		if order.Status == model.OrderStatusProcessing {
			s.tryAutoShipment(ctx, order)
		}
	}

	return order, nil
}

// defaultParcelDims cover the typical single-garment parcel. Admin-created
// shipments supply real dimensions instead.
var defaultParcelDims = ShipmentDims{Length: 25, Breadth: 20, Height: 5, Weight: 0.5}

func (s *orderService) tryAutoShipment(ctx context.Context, order *model.Order) {
	booking, err := s.booker.BookShipment(ctx, order, defaultParcelDims)
	if err != nil {
		s.audit.Record(ctx, &auditmodel.SystemLog{
			EventType:    auditmodel.EventShipmentCreation,
			Status:       auditmodel.StatusFailure,
			Message:      fmt.Sprintf("Auto shipment booking failed for COD order %s", order.ID),
			RequestData:  map[string]interface{}{"order_id": order.ID},
			ResponseData: map[string]interface{}{"error": err.Error()},
		})
		logger.Warn("COD auto shipment failed, left for manual booking", map[string]interface{}{
			"order_id": order.ID,
			"error":    err.Error(),
		})
		return
	}
	if booking == nil {
		return
	}

	event := model.NewTrackingEvent(model.OrderStatusProcessing, "Label Generated", fmt.Sprintf("Shipment booked with %s, AWB %s", booking.Carrier, booking.TrackingID))
	if err := s.repo.SetShipment(ctx, order.ID, booking.TrackingID, booking.Carrier, event, order.Version); err != nil {
		logger.ErrorWith("Failed to store auto-booked shipment", err, map[string]interface{}{
			"order_id":    order.ID,
			"tracking_id": booking.TrackingID,
		})
		return
	}

	order.TrackingID = &booking.TrackingID
	order.Carrier = &booking.Carrier
	order.TrackingEvents = append(order.TrackingEvents, event)
	order.Version++

	logger.Info("COD shipment auto-booked", map[string]interface{}{
		"order_id":    order.ID,
		"tracking_id": booking.TrackingID,
		"carrier":     booking.Carrier,
	})
}

// applyRiskGate evaluates the shipping contact. A safe order moves to
// PROCESSING; an unsafe one is parked ON_HOLD with an RTO_RISK audit record.
func (s *orderService) applyRiskGate(ctx context.Context, order *model.Order, paid bool) error {
	verdict := risk.Evaluate(risk.Input{
		Phone:   order.ShippingAddress.Phone,
		Address: order.ShippingAddress.FullAddress(),
		Pincode: order.ShippingAddress.Pincode,
	})

	if verdict.Safe {
		if paid {
			event := model.NewTrackingEvent(model.OrderStatusProcessing, model.StatusLabels[model.OrderStatusProcessing], "Payment confirmed")
			if err := s.repo.MarkPaid(ctx, order.ID, event); err != nil {
				return err
			}
			order.PaymentStatus = model.PaymentStatusPaid
		} else {
			event := model.NewTrackingEvent(model.OrderStatusProcessing, model.StatusLabels[model.OrderStatusProcessing], "Order confirmed")
			if err := s.repo.UpdateStatus(ctx, order.ID, model.OrderStatusProcessing, nil, nil, event, order.Version); err != nil {
				return err
			}
		}
		order.Status = model.OrderStatusProcessing
		order.Version++
		return nil
	}

	// A held order keeps its current payment_status; settlement is resolved
	// manually from the admin panel.
	reason := strings.Join(verdict.Reasons, "; ")
	event := model.NewTrackingEvent(model.OrderStatusOnHold, model.StatusLabels[model.OrderStatusOnHold], "Held for review: "+reason)
	if err := s.repo.Hold(ctx, order.ID, reason, event); err != nil {
		return err
	}
	order.Status = model.OrderStatusOnHold
	order.HoldReason = &reason
	order.Version++

	s.audit.Record(ctx, &auditmodel.SystemLog{
		EventType: auditmodel.EventRTORisk,
		Status:    auditmodel.StatusSuccess,
		Message:   fmt.Sprintf("Order %s held for review: %s", order.ID, reason),
		RequestData: map[string]interface{}{
			"order_id": order.ID,
			"phone":    order.ShippingAddress.Phone,
			"pincode":  order.ShippingAddress.Pincode,
			"reasons":  verdict.Reasons,
		},
	})

	logger.Warn("Order held for RTO risk", map[string]interface{}{
		"order_id": order.ID,
		"reasons":  verdict.Reasons,
	})

	return nil
}

// =====================================================
// READS
// =====================================================

func (s *orderService) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *orderService) ListOrders(ctx context.Context, req *model.ListOrdersRequest) (*model.ListOrdersResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, model.NewOrderError(model.ErrCodeInvalidStatus, "invalid list filter", err)
	}

	orders, total, err := s.repo.List(ctx, repository.ListFilter{
		Status:        req.Status,
		PaymentStatus: req.PaymentStatus,
		Limit:         req.Limit,
		Offset:        (req.Page - 1) * req.Limit,
	})
	if err != nil {
		return nil, err
	}

	summaries := make([]model.OrderSummaryResponse, 0, len(orders))
	for _, o := range orders {
		summaries = append(summaries, model.OrderSummaryResponse{
			ID:            o.ID,
			Status:        o.Status,
			PaymentStatus: o.PaymentStatus,
			PaymentMethod: o.PaymentMethod,
			CustomerName:  o.CustomerName,
			TotalAmount:   o.TotalAmount,
			ItemsCount:    len(o.Items),
			TrackingID:    o.TrackingID,
			CreatedAt:     o.CreatedAt,
		})
	}

	totalPages := (total + req.Limit - 1) / req.Limit

	return &model.ListOrdersResponse{
		Orders: summaries,
		Pagination: model.PaginationMeta{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

// =====================================================
// STATUS TRANSITIONS
// =====================================================

func (s *orderService) UpdateOrderStatus(ctx context.Context, id string, req *model.UpdateOrderStatusRequest, actor string) (*model.Order, error) {
	// Step 1: Validate request
	if err := req.Validate(); err != nil {
		return nil, model.NewOrderError(model.ErrCodeInvalidStatus, "invalid status update", err)
	}

	// Step 2: Load current state
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if order.Status == req.Status {
		return order, nil
	}

	// Step 3: Enforce the transition table unless the admin overrides
	if !model.CanTransition(order.Status, req.Status) {
		if !req.Override {
			return nil, model.NewOrderError(
				model.ErrCodeInvalidTransition,
				fmt.Sprintf("cannot move order from %s to %s", order.Status, req.Status),
				model.ErrInvalidTransition,
			)
		}

		s.audit.Record(ctx, &auditmodel.SystemLog{
			EventType: auditmodel.EventStatusOverride,
			Status:    auditmodel.StatusSuccess,
			Message:   fmt.Sprintf("Order %s forced from %s to %s by %s", id, order.Status, req.Status, actor),
			RequestData: map[string]interface{}{
				"order_id":    id,
				"from_status": order.Status,
				"to_status":   req.Status,
				"actor":       actor,
				"note":        req.Note,
			},
		})
	}

	// Step 4: Dispatch states must carry a tracking id
	if (req.Status == model.OrderStatusReadyToShip || req.Status == model.OrderStatusShipped) &&
		order.TrackingID == nil && req.TrackingID == nil {
		return nil, model.NewOrderError(model.ErrCodeTrackingRequired, "tracking id required before "+req.Status, model.ErrTrackingRequired)
	}

	// Step 5: Apply with optimistic locking
	message := "Status updated"
	if req.Note != nil && *req.Note != "" {
		message = *req.Note
	}
	event := model.NewTrackingEvent(req.Status, model.StatusLabels[req.Status], message)

	version := order.Version
	if req.Version > 0 {
		version = req.Version
	}

	var holdReason *string
	if req.Status == model.OrderStatusOnHold {
		holdReason = req.Note
	}

	if err := s.repo.UpdateStatus(ctx, id, req.Status, holdReason, req.TrackingID, event, version); err != nil {
		if err == model.ErrVersionMismatch {
			return nil, model.NewOrderError(model.ErrCodeVersionMismatch, "order was modified by someone else", err)
		}
		return nil, err
	}

	logger.Info("Order status updated", map[string]interface{}{
		"order_id":    id,
		"from_status": order.Status,
		"to_status":   req.Status,
		"actor":       actor,
		"override":    req.Override,
	})

	return s.repo.GetByID(ctx, id)
}

// =====================================================
// SHIPMENT GENERATION
// =====================================================

func (s *orderService) GenerateShipment(ctx context.Context, id string, req *model.CreateShipmentRequest, actor string) (*model.Order, error) {
	// Step 1: Validate request
	if err := req.Validate(); err != nil {
		return nil, model.NewOrderError(model.ErrCodeShipmentNotAllowed, "invalid shipment request", err)
	}

	// Step 2: Load and guard. Held orders must be released first.
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.IsOnHold() {
		return nil, model.NewOrderError(model.ErrCodeOrderOnHold, "order is on hold pending review", model.ErrOrderOnHold)
	}
	if !order.CanCreateShipment() {
		return nil, model.NewOrderError(
			model.ErrCodeShipmentNotAllowed,
			fmt.Sprintf("cannot create shipment for order in %s", order.Status),
			model.ErrShipmentNotAllowed,
		)
	}

	// Step 3: Book with the courier
	booking, err := s.booker.BookShipment(ctx, order, ShipmentDims{
		Length:  req.Length,
		Breadth: req.Breadth,
		Height:  req.Height,
		Weight:  req.Weight,
	})
	if err != nil {
		s.audit.Record(ctx, &auditmodel.SystemLog{
			EventType:   auditmodel.EventShipmentCreation,
			Status:      auditmodel.StatusFailure,
			Message:     fmt.Sprintf("Shipment booking failed for order %s", id),
			RequestData: map[string]interface{}{"order_id": id, "actor": actor},
			ResponseData: map[string]interface{}{
				"error": err.Error(),
			},
		})
		return nil, fmt.Errorf("failed to book shipment: %w", err)
	}

	// Step 4: Persist courier details; the order stays PROCESSING until the
	// admin marks it READY_TO_SHIP
	version := order.Version
	if req.Version > 0 {
		version = req.Version
	}

	event := model.NewTrackingEvent(model.OrderStatusProcessing, "Label Generated", fmt.Sprintf("Shipment booked with %s, AWB %s", booking.Carrier, booking.TrackingID))
	if err := s.repo.SetShipment(ctx, id, booking.TrackingID, booking.Carrier, event, version); err != nil {
		if err == model.ErrVersionMismatch {
			return nil, model.NewOrderError(model.ErrCodeVersionMismatch, "order was modified by someone else", err)
		}
		return nil, err
	}

	s.audit.Record(ctx, &auditmodel.SystemLog{
		EventType: auditmodel.EventShipmentCreation,
		Status:    auditmodel.StatusSuccess,
		Message:   fmt.Sprintf("Shipment booked for order %s", id),
		RequestData: map[string]interface{}{
			"order_id": id,
			"actor":    actor,
			"weight":   req.Weight,
		},
		ResponseData: map[string]interface{}{
			"tracking_id": booking.TrackingID,
			"carrier":     booking.Carrier,
			"logistic_id": booking.LogisticID,
		},
	})

	logger.Info("Shipment created", map[string]interface{}{
		"order_id":    id,
		"tracking_id": booking.TrackingID,
		"carrier":     booking.Carrier,
	})

	return s.repo.GetByID(ctx, id)
}

// =====================================================
// BACKGROUND MAINTENANCE
// =====================================================

func (s *orderService) ExpireStalePending(ctx context.Context, maxAgeHours int) (int, error) {
	if maxAgeHours <= 0 {
		maxAgeHours = 24
	}
	cutoff := time.Now().Add(-time.Duration(maxAgeHours) * time.Hour)

	event := model.NewTrackingEvent(model.OrderStatusCancelled, model.StatusLabels[model.OrderStatusCancelled], "Cancelled: payment not received")
	count, err := s.repo.CancelStalePending(ctx, cutoff, event)
	if err != nil {
		return 0, err
	}

	if count > 0 {
		logger.Info("Expired stale pending orders", map[string]interface{}{
			"count":       count,
			"max_age_hrs": maxAgeHours,
		})
	}

	return count, nil
}

// =====================================================
// HELPERS
// =====================================================

var freeShippingThreshold = decimal.NewFromInt(999)

// shippingCostFor is a flat fee waived above the free-shipping threshold.
func shippingCostFor(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(freeShippingThreshold) {
		return decimal.Zero
	}
	return decimal.NewFromInt(79)
}

// generateOrderID builds a short, human-quotable order id.
func generateOrderID() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "ORD" + raw[:12]
}
