package service

import (
	"context"
	"fmt"
	"time"

	auditmodel "nplusone-backend/internal/domains/audit/model"
	auditservice "nplusone-backend/internal/domains/audit/service"
	"nplusone-backend/internal/domains/logistics/model"
	ordermodel "nplusone-backend/internal/domains/order/model"
	ordersvc "nplusone-backend/internal/domains/order/service"
	"nplusone-backend/pkg/cache"
	"nplusone-backend/pkg/logger"
)

// pincodeCacheTTL keeps serviceability lookups out of the carrier API.
// Pincode coverage changes rarely; a day of staleness is acceptable.
const pincodeCacheTTL = 24 * time.Hour

// CarrierClient is the slice of the iThink API the service uses.
type CarrierClient interface {
	CreateShipment(ctx context.Context, req *model.ShipmentRequest) (*model.ShipmentResponse, error)
	Track(ctx context.Context, awbNumbers []string) (map[string]*model.TrackingResult, error)
	CancelShipment(ctx context.Context, awbNumber string) error
	GetLabel(ctx context.Context, awbNumbers []string) (*model.DocumentResult, error)
	GetManifest(ctx context.Context, awbNumbers []string) (*model.DocumentResult, error)
	CheckPincode(ctx context.Context, pincode string) (*model.PincodeResult, error)
	CheckRate(ctx context.Context, req *model.RateCheckRequest) ([]model.RateQuote, error)
}

// LogisticsService fronts the carrier API with caching and auditing.
type LogisticsService interface {
	ordersvc.ShipmentBooker

	TrackShipment(ctx context.Context, awbNumber string) (*model.TrackingResult, error)
	CancelShipment(ctx context.Context, awbNumber string, actor string) error
	GenerateLabel(ctx context.Context, awbNumbers []string, actor string) (*model.DocumentResult, error)
	GenerateManifest(ctx context.Context, awbNumbers []string, actor string) (*model.DocumentResult, error)
	CheckPincode(ctx context.Context, pincode string) (*model.PincodeResult, error)
	CheckRate(ctx context.Context, req *model.RateCheckRequest) ([]model.RateQuote, error)
}

type logisticsService struct {
	client CarrierClient
	cache  cache.Cache
	audit  auditservice.AuditService
}

// NewLogisticsService creates the logistics service.
func NewLogisticsService(client CarrierClient, c cache.Cache, audit auditservice.AuditService) LogisticsService {
	return &logisticsService{
		client: client,
		cache:  c,
		audit:  audit,
	}
}

// =====================================================
// SHIPMENT BOOKING (order workflow hook)
// =====================================================

// BookShipment builds the carrier payload from an order and books it.
func (s *logisticsService) BookShipment(ctx context.Context, order *ordermodel.Order, dims ordersvc.ShipmentDims) (*ordersvc.BookingResult, error) {
	if order.ShippingAddress == nil {
		return nil, model.NewLogisticsError(model.ErrCodeBookingRejected, "order has no shipping address", nil)
	}

	paymentMode := "prepaid"
	codAmount := "0"
	if order.IsCOD() {
		paymentMode = "cod"
		codAmount = order.TotalAmount.StringFixed(2)
	}

	products := make([]model.ShipmentProduct, 0, len(order.Items))
	for _, item := range order.Items {
		sku := item.ProductID
		if item.SelectedSize != nil {
			sku = sku + "-" + *item.SelectedSize
		}
		products = append(products, model.ShipmentProduct{
			Name:     item.ProductName,
			SKU:      sku,
			Quantity: item.Quantity,
			Price:    item.PricePerUnit.StringFixed(2),
		})
	}

	resp, err := s.client.CreateShipment(ctx, &model.ShipmentRequest{
		OrderID:       order.ID,
		CustomerName:  order.ShippingAddress.Name,
		CustomerPhone: order.ShippingAddress.Phone,
		CustomerEmail: order.CustomerEmail,
		AddressLine1:  order.ShippingAddress.Line1,
		AddressLine2:  order.ShippingAddress.Line2,
		City:          order.ShippingAddress.City,
		State:         order.ShippingAddress.State,
		Pincode:       order.ShippingAddress.Pincode,
		PaymentMode:   paymentMode,
		CODAmount:     codAmount,
		InvoiceValue:  order.TotalAmount.StringFixed(2),
		Products:      products,
		Length:        dims.Length,
		Breadth:       dims.Breadth,
		Height:        dims.Height,
		Weight:        dims.Weight,
	})
	if err != nil {
		return nil, err
	}

	carrier := resp.LogisticName
	if carrier == "" {
		carrier = "iThink Logistics"
	}

	return &ordersvc.BookingResult{
		TrackingID: resp.WaybillNumber,
		Carrier:    carrier,
		LogisticID: resp.LogisticID,
	}, nil
}

// =====================================================
// TRACKING
// =====================================================

func (s *logisticsService) TrackShipment(ctx context.Context, awbNumber string) (*model.TrackingResult, error) {
	results, err := s.client.Track(ctx, []string{awbNumber})
	if err != nil {
		return nil, err
	}
	result, ok := results[awbNumber]
	if !ok {
		return nil, model.NewLogisticsError(model.ErrCodeCarrierUnavailable, "no tracking data for "+awbNumber, nil)
	}
	return result, nil
}

// =====================================================
// CANCELLATION
// =====================================================

func (s *logisticsService) CancelShipment(ctx context.Context, awbNumber string, actor string) error {
	if err := s.client.CancelShipment(ctx, awbNumber); err != nil {
		return err
	}

	logger.Info("Shipment cancelled", map[string]interface{}{
		"awb_number": awbNumber,
		"actor":      actor,
	})

	return nil
}

// =====================================================
// DOCUMENTS
// =====================================================

func (s *logisticsService) GenerateLabel(ctx context.Context, awbNumbers []string, actor string) (*model.DocumentResult, error) {
	result, err := s.client.GetLabel(ctx, awbNumbers)
	s.recordDocument(ctx, auditmodel.EventLabelGeneration, awbNumbers, actor, result, err)
	return result, err
}

func (s *logisticsService) GenerateManifest(ctx context.Context, awbNumbers []string, actor string) (*model.DocumentResult, error) {
	result, err := s.client.GetManifest(ctx, awbNumbers)
	s.recordDocument(ctx, auditmodel.EventManifestGeneration, awbNumbers, actor, result, err)
	return result, err
}

func (s *logisticsService) recordDocument(ctx context.Context, eventType string, awbNumbers []string, actor string, result *model.DocumentResult, err error) {
	log := &auditmodel.SystemLog{
		EventType: eventType,
		Status:    auditmodel.StatusSuccess,
		Message:   fmt.Sprintf("%s for %d shipment(s)", eventType, len(awbNumbers)),
		RequestData: map[string]interface{}{
			"awb_numbers": awbNumbers,
			"actor":       actor,
		},
	}
	if err != nil {
		log.Status = auditmodel.StatusFailure
		log.ResponseData = map[string]interface{}{"error": err.Error()}
	} else if result != nil {
		log.ResponseData = map[string]interface{}{"url": result.URL}
	}
	s.audit.Record(ctx, log)
}

// =====================================================
// PINCODE SERVICEABILITY (cached)
// =====================================================

func (s *logisticsService) CheckPincode(ctx context.Context, pincode string) (*model.PincodeResult, error) {
	cacheKey := "logistics:pincode:" + pincode

	var cached model.PincodeResult
	if found, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && found {
		return &cached, nil
	}

	result, err := s.client.CheckPincode(ctx, pincode)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKey, result, pincodeCacheTTL); err != nil {
		logger.Error("Failed to cache pincode result", err)
	}

	return result, nil
}

// =====================================================
// RATE CHECK
// =====================================================

func (s *logisticsService) CheckRate(ctx context.Context, req *model.RateCheckRequest) ([]model.RateQuote, error) {
	if err := req.Validate(); err != nil {
		return nil, model.NewLogisticsError(model.ErrCodeNotServiceable, "invalid rate request", err)
	}
	return s.client.CheckRate(ctx, req)
}
