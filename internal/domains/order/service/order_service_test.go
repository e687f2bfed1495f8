package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditmodel "nplusone-backend/internal/domains/audit/model"
	"nplusone-backend/internal/domains/order/model"
	"nplusone-backend/internal/domains/order/repository"
)

// =====================================================
// FAKES
// =====================================================

type fakeOrderRepo struct {
	orders map[string]*model.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]*model.Order)}
}

func (f *fakeOrderRepo) Create(_ context.Context, order *model.Order) error {
	order.Version = 1
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	stored := *order
	f.orders[order.ID] = &stored
	return nil
}

func (f *fakeOrderRepo) GetByID(_ context.Context, id string) (*model.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, model.ErrOrderNotFound
	}
	clone := *order
	return &clone, nil
}

func (f *fakeOrderRepo) List(_ context.Context, _ repository.ListFilter) ([]*model.Order, int, error) {
	var out []*model.Order
	for _, o := range f.orders {
		out = append(out, o)
	}
	return out, len(out), nil
}

func (f *fakeOrderRepo) UpdateStatus(_ context.Context, id string, status string, holdReason, trackingID *string, event model.TrackingEvent, version int) error {
	order, ok := f.orders[id]
	if !ok {
		return model.ErrOrderNotFound
	}
	if order.Version != version {
		return model.ErrVersionMismatch
	}
	order.Status = status
	order.HoldReason = holdReason
	if trackingID != nil {
		order.TrackingID = trackingID
	}
	order.TrackingEvents = append(order.TrackingEvents, event)
	order.Version++
	return nil
}

func (f *fakeOrderRepo) MarkPaid(_ context.Context, id string, event model.TrackingEvent) error {
	order, ok := f.orders[id]
	if !ok {
		return model.ErrOrderNotFound
	}
	if order.Status == model.OrderStatusCancelled {
		return model.ErrOrderCancelled
	}
	order.Status = model.OrderStatusProcessing
	order.PaymentStatus = model.PaymentStatusPaid
	order.TrackingEvents = append(order.TrackingEvents, event)
	order.Version++
	return nil
}

func (f *fakeOrderRepo) Hold(_ context.Context, id string, reason string, event model.TrackingEvent) error {
	order, ok := f.orders[id]
	if !ok {
		return model.ErrOrderNotFound
	}
	if order.Status == model.OrderStatusCancelled {
		return model.ErrOrderCancelled
	}
	order.Status = model.OrderStatusOnHold
	order.HoldReason = &reason
	order.TrackingEvents = append(order.TrackingEvents, event)
	order.Version++
	return nil
}

func (f *fakeOrderRepo) SetShipment(_ context.Context, id string, trackingID, carrier string, event model.TrackingEvent, version int) error {
	order, ok := f.orders[id]
	if !ok {
		return model.ErrOrderNotFound
	}
	if order.Version != version {
		return model.ErrVersionMismatch
	}
	order.TrackingID = &trackingID
	order.Carrier = &carrier
	order.TrackingEvents = append(order.TrackingEvents, event)
	order.Version++
	return nil
}

func (f *fakeOrderRepo) AppendTrackingEvent(_ context.Context, id string, event model.TrackingEvent) error {
	order, ok := f.orders[id]
	if !ok {
		return model.ErrOrderNotFound
	}
	order.TrackingEvents = append(order.TrackingEvents, event)
	return nil
}

func (f *fakeOrderRepo) ListUnpaidPending(_ context.Context, before time.Time, _ int) ([]*model.Order, error) {
	var out []*model.Order
	for _, o := range f.orders {
		if o.Status == model.OrderStatusPending && o.PaymentStatus == model.PaymentStatusUnpaid && o.CreatedAt.Before(before) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) CancelStalePending(_ context.Context, before time.Time, event model.TrackingEvent) (int, error) {
	count := 0
	for _, o := range f.orders {
		if o.Status == model.OrderStatusPending && o.PaymentStatus == model.PaymentStatusUnpaid && o.CreatedAt.Before(before) {
			o.Status = model.OrderStatusCancelled
			o.TrackingEvents = append(o.TrackingEvents, event)
			o.Version++
			count++
		}
	}
	return count, nil
}

type fakeAudit struct {
	records []*auditmodel.SystemLog
}

func (f *fakeAudit) Record(_ context.Context, log *auditmodel.SystemLog) {
	f.records = append(f.records, log)
}

func (f *fakeAudit) List(_ context.Context, _ string, _, _ int) ([]*auditmodel.SystemLog, error) {
	return f.records, nil
}

func (f *fakeAudit) lastEventType() string {
	if len(f.records) == 0 {
		return ""
	}
	return f.records[len(f.records)-1].EventType
}

type fakeBooker struct {
	result *BookingResult
	err    error
	calls  int
}

func (f *fakeBooker) BookShipment(_ context.Context, _ *model.Order, _ ShipmentDims) (*BookingResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// =====================================================
// HELPERS
// =====================================================

func validCreateRequest(method string) *model.CreateOrderRequest {
	return &model.CreateOrderRequest{
		CustomerName:  "Asha Verma",
		CustomerEmail: "asha@example.com",
		CustomerPhone: "9876543210",
		PaymentMethod: method,
		ShippingAddress: model.ShippingAddress{
			Name:    "Asha Verma",
			Phone:   "9876543210",
			Line1:   "14 MG Road, Indiranagar",
			City:    "Bengaluru",
			State:   "Karnataka",
			Pincode: "560038",
			Country: "IN",
		},
		Items: []model.CreateOrderItem{
			{ProductID: "prod-1", ProductName: "Linen Kurta", Quantity: 2, PricePerUnit: decimal.NewFromInt(1299)},
		},
	}
}

func newTestService(repo repository.OrderRepository, audit *fakeAudit, booker ShipmentBooker) OrderService {
	return NewOrderService(repo, audit, booker, 0)
}

// =====================================================
// TESTS
// =====================================================

func TestCreateOrder_PrepaidStaysPending(t *testing.T) {
	repo := newFakeOrderRepo()
	audit := &fakeAudit{}
	svc := newTestService(repo, audit, &fakeBooker{})

	order, err := svc.CreateOrder(context.Background(), validCreateRequest(model.PaymentMethodPhonePe))
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, model.PaymentStatusUnpaid, order.PaymentStatus)
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(2598)))
	assert.Empty(t, audit.records)
}

func TestCreateOrder_CODSafeMovesToProcessingAndAutoBooks(t *testing.T) {
	repo := newFakeOrderRepo()
	audit := &fakeAudit{}
	booker := &fakeBooker{result: &BookingResult{TrackingID: "AWB101", Carrier: "iThink Logistics"}}
	svc := newTestService(repo, audit, booker)

	order, err := svc.CreateOrder(context.Background(), validCreateRequest(model.PaymentMethodCOD))
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusProcessing, order.Status)
	assert.Equal(t, model.PaymentStatusUnpaid, order.PaymentStatus)
	assert.Equal(t, 1, booker.calls)
	require.NotNil(t, order.TrackingID)
	assert.Equal(t, "AWB101", *order.TrackingID)
	assert.Empty(t, audit.records)

	stored, err := repo.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.TrackingID)
	assert.Equal(t, "AWB101", *stored.TrackingID)
}

func TestCreateOrder_CODBookingFailureLeftForManualRetry(t *testing.T) {
	repo := newFakeOrderRepo()
	audit := &fakeAudit{}
	booker := &fakeBooker{err: errors.New("carrier timeout")}
	svc := newTestService(repo, audit, booker)

	order, err := svc.CreateOrder(context.Background(), validCreateRequest(model.PaymentMethodCOD))
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusProcessing, order.Status)
	assert.Nil(t, order.TrackingID)
	assert.Equal(t, auditmodel.EventShipmentCreation, audit.lastEventType())
	assert.Equal(t, auditmodel.StatusFailure, audit.records[0].Status)
}

func TestCreateOrder_CODRiskyGoesOnHold(t *testing.T) {
	repo := newFakeOrderRepo()
	audit := &fakeAudit{}
	svc := newTestService(repo, audit, &fakeBooker{})

	req := validCreateRequest(model.PaymentMethodCOD)
	req.ShippingAddress.Phone = "12345"

	order, err := svc.CreateOrder(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusOnHold, order.Status)
	assert.Equal(t, model.PaymentStatusUnpaid, order.PaymentStatus)
	require.NotNil(t, order.HoldReason)
	assert.Contains(t, *order.HoldReason, "invalid phone number")
	assert.Equal(t, auditmodel.EventRTORisk, audit.lastEventType())
}

func TestUpdateOrderStatus_RejectsInvalidTransition(t *testing.T) {
	repo := newFakeOrderRepo()
	audit := &fakeAudit{}
	svc := newTestService(repo, audit, &fakeBooker{})

	order, err := svc.CreateOrder(context.Background(), validCreateRequest(model.PaymentMethodPhonePe))
	require.NoError(t, err)

	_, err = svc.UpdateOrderStatus(context.Background(), order.ID, &model.UpdateOrderStatusRequest{
		Status:  model.OrderStatusShipped,
		Version: order.Version,
	}, "ops@nplusone")

	var orderErr *model.OrderError
	require.ErrorAs(t, err, &orderErr)
	assert.Equal(t, model.ErrCodeInvalidTransition, orderErr.Code)
	assert.Empty(t, audit.records)
}

func TestUpdateOrderStatus_OverrideIsAudited(t *testing.T) {
	repo := newFakeOrderRepo()
	audit := &fakeAudit{}
	svc := newTestService(repo, audit, &fakeBooker{})

	order, err := svc.CreateOrder(context.Background(), validCreateRequest(model.PaymentMethodPhonePe))
	require.NoError(t, err)

	tracking := "AWB-OVR-1"
	updated, err := svc.UpdateOrderStatus(context.Background(), order.ID, &model.UpdateOrderStatusRequest{
		Status:     model.OrderStatusShipped,
		Version:    order.Version,
		Override:   true,
		TrackingID: &tracking,
	}, "ops@nplusone")
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusShipped, updated.Status)
	assert.Equal(t, auditmodel.EventStatusOverride, audit.lastEventType())
	assert.Equal(t, "ops@nplusone", audit.records[0].RequestData["actor"])
}

func TestUpdateOrderStatus_ShippedRequiresTracking(t *testing.T) {
	repo := newFakeOrderRepo()
	audit := &fakeAudit{}
	svc := newTestService(repo, audit, &fakeBooker{})

	order, err := svc.CreateOrder(context.Background(), validCreateRequest(model.PaymentMethodPhonePe))
	require.NoError(t, err)

	_, err = svc.UpdateOrderStatus(context.Background(), order.ID, &model.UpdateOrderStatusRequest{
		Status:   model.OrderStatusShipped,
		Version:  order.Version,
		Override: true,
	}, "ops@nplusone")

	var orderErr *model.OrderError
	require.ErrorAs(t, err, &orderErr)
	assert.Equal(t, model.ErrCodeTrackingRequired, orderErr.Code)
}

func TestUpdateOrderStatus_StaleVersionConflicts(t *testing.T) {
	repo := newFakeOrderRepo()
	audit := &fakeAudit{}
	svc := newTestService(repo, audit, &fakeBooker{})

	order, err := svc.CreateOrder(context.Background(), validCreateRequest(model.PaymentMethodPhonePe))
	require.NoError(t, err)

	_, err = svc.UpdateOrderStatus(context.Background(), order.ID, &model.UpdateOrderStatusRequest{
		Status:  model.OrderStatusProcessing,
		Version: order.Version + 5,
	}, "ops@nplusone")

	var orderErr *model.OrderError
	require.ErrorAs(t, err, &orderErr)
	assert.Equal(t, model.ErrCodeVersionMismatch, orderErr.Code)
}

func TestGenerateShipment_RefusesHeldOrder(t *testing.T) {
	repo := newFakeOrderRepo()
	audit := &fakeAudit{}
	booker := &fakeBooker{result: &BookingResult{TrackingID: "AWB1", Carrier: "iThink"}}
	svc := newTestService(repo, audit, booker)

	req := validCreateRequest(model.PaymentMethodCOD)
	req.ShippingAddress.Pincode = "56003A"
	order, err := svc.CreateOrder(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, model.OrderStatusOnHold, order.Status)

	_, err = svc.GenerateShipment(context.Background(), order.ID, &model.CreateShipmentRequest{Weight: 0.5}, "ops@nplusone")

	var orderErr *model.OrderError
	require.ErrorAs(t, err, &orderErr)
	assert.Equal(t, model.ErrCodeOrderOnHold, orderErr.Code)
	assert.Zero(t, booker.calls)
}

func TestGenerateShipment_BooksAndStoresTracking(t *testing.T) {
	repo := newFakeOrderRepo()
	audit := &fakeAudit{}
	booker := &fakeBooker{result: &BookingResult{TrackingID: "AWB777", Carrier: "iThink Logistics", LogisticID: "42"}}
	svc := newTestService(repo, audit, booker)

	order, err := svc.CreateOrder(context.Background(), validCreateRequest(model.PaymentMethodPhonePe))
	require.NoError(t, err)

	_, err = svc.UpdateOrderStatus(context.Background(), order.ID, &model.UpdateOrderStatusRequest{
		Status:  model.OrderStatusProcessing,
		Version: order.Version,
	}, "ops@nplusone")
	require.NoError(t, err)

	fresh, err := repo.GetByID(context.Background(), order.ID)
	require.NoError(t, err)

	updated, err := svc.GenerateShipment(context.Background(), order.ID, &model.CreateShipmentRequest{
		Version: fresh.Version,
		Weight:  0.5,
	}, "ops@nplusone")
	require.NoError(t, err)

	// Booking attaches the label but the order waits in PROCESSING for the
	// explicit READY_TO_SHIP transition.
	assert.Equal(t, model.OrderStatusProcessing, updated.Status)
	require.NotNil(t, updated.TrackingID)
	assert.Equal(t, "AWB777", *updated.TrackingID)
	assert.Equal(t, auditmodel.EventShipmentCreation, audit.lastEventType())

	last := updated.TrackingEvents[len(updated.TrackingEvents)-1]
	assert.Equal(t, "Label Generated", last.Label)
}

func TestExpireStalePending(t *testing.T) {
	repo := newFakeOrderRepo()
	audit := &fakeAudit{}
	svc := newTestService(repo, audit, &fakeBooker{})

	order, err := svc.CreateOrder(context.Background(), validCreateRequest(model.PaymentMethodPhonePe))
	require.NoError(t, err)
	repo.orders[order.ID].CreatedAt = time.Now().Add(-48 * time.Hour)

	count, err := svc.ExpireStalePending(context.Background(), 24)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	expired, err := repo.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, expired.Status)
}
