package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditmodel "nplusone-backend/internal/domains/audit/model"
	"nplusone-backend/internal/domains/logistics/model"
	ordermodel "nplusone-backend/internal/domains/order/model"
	ordersvc "nplusone-backend/internal/domains/order/service"
)

// =====================================================
// FAKES
// =====================================================

type fakeCarrier struct {
	shipmentReq   *model.ShipmentRequest
	shipmentResp  *model.ShipmentResponse
	shipmentErr   error
	pincodeCalls  int
	pincodeResult *model.PincodeResult
	labelResult   *model.DocumentResult
	labelErr      error
}

func (f *fakeCarrier) CreateShipment(_ context.Context, req *model.ShipmentRequest) (*model.ShipmentResponse, error) {
	f.shipmentReq = req
	return f.shipmentResp, f.shipmentErr
}

func (f *fakeCarrier) Track(_ context.Context, _ []string) (map[string]*model.TrackingResult, error) {
	return nil, nil
}

func (f *fakeCarrier) CancelShipment(_ context.Context, _ string) error { return nil }

func (f *fakeCarrier) GetLabel(_ context.Context, _ []string) (*model.DocumentResult, error) {
	return f.labelResult, f.labelErr
}

func (f *fakeCarrier) GetManifest(_ context.Context, _ []string) (*model.DocumentResult, error) {
	return f.labelResult, f.labelErr
}

func (f *fakeCarrier) CheckPincode(_ context.Context, pincode string) (*model.PincodeResult, error) {
	f.pincodeCalls++
	return f.pincodeResult, nil
}

func (f *fakeCarrier) CheckRate(_ context.Context, _ *model.RateCheckRequest) ([]model.RateQuote, error) {
	return nil, nil
}

type fakeCache struct {
	values map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: make(map[string][]byte)}
}

func (f *fakeCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	data, ok := f.values[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dest)
}

func (f *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.values[key] = data
	return nil
}

func (f *fakeCache) SetNX(_ context.Context, key string, value interface{}, _ time.Duration) (bool, error) {
	if _, exists := f.values[key]; exists {
		return false, nil
	}
	return true, f.Set(context.Background(), key, value, 0)
}

func (f *fakeCache) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

func (f *fakeCache) Exists(_ context.Context, key string) (bool, error) {
	_, ok := f.values[key]
	return ok, nil
}

func (f *fakeCache) Ping(_ context.Context) error { return nil }

type fakeAudit struct {
	records []*auditmodel.SystemLog
}

func (f *fakeAudit) Record(_ context.Context, log *auditmodel.SystemLog) {
	f.records = append(f.records, log)
}

func (f *fakeAudit) List(_ context.Context, _ string, _, _ int) ([]*auditmodel.SystemLog, error) {
	return f.records, nil
}

// =====================================================
// TESTS
// =====================================================

func sampleOrder() *ordermodel.Order {
	size := "M"
	return &ordermodel.Order{
		ID:            "ORD123",
		Status:        ordermodel.OrderStatusProcessing,
		PaymentStatus: ordermodel.PaymentStatusPaid,
		PaymentMethod: ordermodel.PaymentMethodPhonePe,
		TotalAmount:   decimal.NewFromInt(2598),
		CustomerEmail: "asha@example.com",
		ShippingAddress: &ordermodel.ShippingAddress{
			Name:    "Asha Verma",
			Phone:   "9876543210",
			Line1:   "14 MG Road",
			City:    "Bengaluru",
			State:   "Karnataka",
			Pincode: "560038",
		},
		Items: []ordermodel.OrderItem{
			{ProductID: "prod-1", ProductName: "Linen Kurta", Quantity: 2, PricePerUnit: decimal.NewFromInt(1299), SelectedSize: &size},
		},
	}
}

func TestBookShipment_BuildsCarrierPayload(t *testing.T) {
	carrier := &fakeCarrier{
		shipmentResp: &model.ShipmentResponse{WaybillNumber: "AWB00042", LogisticID: "3", LogisticName: "Delhivery"},
	}
	svc := NewLogisticsService(carrier, newFakeCache(), &fakeAudit{})

	result, err := svc.BookShipment(context.Background(), sampleOrder(), ordersvc.ShipmentDims{Weight: 0.5})
	require.NoError(t, err)

	assert.Equal(t, "AWB00042", result.TrackingID)
	assert.Equal(t, "Delhivery", result.Carrier)

	require.NotNil(t, carrier.shipmentReq)
	assert.Equal(t, "prepaid", carrier.shipmentReq.PaymentMode)
	assert.Equal(t, "0", carrier.shipmentReq.CODAmount)
	assert.Equal(t, "2598.00", carrier.shipmentReq.InvoiceValue)
	require.Len(t, carrier.shipmentReq.Products, 1)
	assert.Equal(t, "prod-1-M", carrier.shipmentReq.Products[0].SKU)
}

func TestBookShipment_CODCarriesCollectAmount(t *testing.T) {
	carrier := &fakeCarrier{
		shipmentResp: &model.ShipmentResponse{WaybillNumber: "AWB00043"},
	}
	svc := NewLogisticsService(carrier, newFakeCache(), &fakeAudit{})

	order := sampleOrder()
	order.PaymentMethod = ordermodel.PaymentMethodCOD
	order.PaymentStatus = ordermodel.PaymentStatusUnpaid

	result, err := svc.BookShipment(context.Background(), order, ordersvc.ShipmentDims{Weight: 0.5})
	require.NoError(t, err)

	assert.Equal(t, "iThink Logistics", result.Carrier)
	assert.Equal(t, "cod", carrier.shipmentReq.PaymentMode)
	assert.Equal(t, "2598.00", carrier.shipmentReq.CODAmount)
}

func TestCheckPincode_CachesResult(t *testing.T) {
	carrier := &fakeCarrier{
		pincodeResult: &model.PincodeResult{Pincode: "560038", Serviceable: true, CODAllowed: true},
	}
	svc := NewLogisticsService(carrier, newFakeCache(), &fakeAudit{})

	first, err := svc.CheckPincode(context.Background(), "560038")
	require.NoError(t, err)
	second, err := svc.CheckPincode(context.Background(), "560038")
	require.NoError(t, err)

	assert.Equal(t, 1, carrier.pincodeCalls, "second lookup served from cache")
	assert.Equal(t, first.Serviceable, second.Serviceable)
}

func TestGenerateLabel_AuditsOutcome(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		audit := &fakeAudit{}
		carrier := &fakeCarrier{labelResult: &model.DocumentResult{URL: "https://cdn.ithink.test/label.pdf"}}
		svc := NewLogisticsService(carrier, newFakeCache(), audit)

		_, err := svc.GenerateLabel(context.Background(), []string{"AWB1"}, "ops@nplusone")
		require.NoError(t, err)

		require.Len(t, audit.records, 1)
		assert.Equal(t, auditmodel.EventLabelGeneration, audit.records[0].EventType)
		assert.Equal(t, auditmodel.StatusSuccess, audit.records[0].Status)
	})

	t.Run("failure", func(t *testing.T) {
		audit := &fakeAudit{}
		carrier := &fakeCarrier{labelErr: errors.New("carrier down")}
		svc := NewLogisticsService(carrier, newFakeCache(), audit)

		_, err := svc.GenerateLabel(context.Background(), []string{"AWB1"}, "ops@nplusone")
		require.Error(t, err)

		require.Len(t, audit.records, 1)
		assert.Equal(t, auditmodel.StatusFailure, audit.records[0].Status)
	})
}
