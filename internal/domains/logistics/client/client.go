package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"nplusone-backend/internal/domains/logistics/model"
)

// =====================================================
// ITHINK LOGISTICS CLIENT
// =====================================================
// Every endpoint takes POST with a {"data": {...}} envelope carrying the
// API credentials inline. Responses use {"status": "success", "data": ...}.

type Config struct {
	BaseURL     string
	AccessToken string
	SecretKey   string
	PickupID    string // registered warehouse address id
}

type Client struct {
	config     *Config
	httpClient *http.Client
}

// NewClient creates a new iThink Logistics client
func NewClient(config *Config) *Client {
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// =====================================================
// REQUEST PLUMBING
// =====================================================

type apiResponse struct {
	Status     string          `json:"status"`
	StatusCode json.Number     `json:"status_code"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	HTML       string          `json:"html_content"`
	FileName   string          `json:"file_name"`
}

// post wraps payload in the credential envelope and calls the endpoint.
func (c *Client) post(ctx context.Context, path string, payload map[string]interface{}) (*apiResponse, error) {
	payload["access_token"] = c.config.AccessToken
	payload["secret_key"] = c.config.SecretKey

	bodyJSON, err := json.Marshal(map[string]interface{}{"data": payload})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.config.BaseURL+path, bytes.NewReader(bodyJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, model.NewLogisticsError(model.ErrCodeCarrierUnavailable, "failed to call carrier API", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, model.NewLogisticsError(model.ErrCodeCarrierUnavailable,
			fmt.Sprintf("carrier API returned %d", resp.StatusCode), nil)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &apiResp, nil
}

// =====================================================
// ORDER ADD (shipment booking)
// =====================================================

// CreateShipment books a forward shipment and returns the waybill.
func (c *Client) CreateShipment(ctx context.Context, req *model.ShipmentRequest) (*model.ShipmentResponse, error) {
	products := make([]map[string]interface{}, 0, len(req.Products))
	for _, p := range req.Products {
		products = append(products, map[string]interface{}{
			"p_name":  p.Name,
			"p_sku":   p.SKU,
			"p_qty":   strconv.Itoa(p.Quantity),
			"p_price": p.Price,
		})
	}

	shipment := map[string]interface{}{
		"waybill":        "",
		"order":          req.OrderID,
		"sub_order":      "",
		"order_date":     time.Now().Format("02-01-2006"),
		"total_amount":   req.InvoiceValue,
		"name":           req.CustomerName,
		"add":            req.AddressLine1,
		"add2":           req.AddressLine2,
		"pin":            req.Pincode,
		"city":           req.City,
		"state":          req.State,
		"country":        "India",
		"phone":          req.CustomerPhone,
		"email":          req.CustomerEmail,
		"payment_mode":   req.PaymentMode,
		"cod_amount":     req.CODAmount,
		"products":       products,
		"shipment_length": fmt.Sprintf("%.1f", req.Length),
		"shipment_width":  fmt.Sprintf("%.1f", req.Breadth),
		"shipment_height": fmt.Sprintf("%.1f", req.Height),
		"shipment_weight": fmt.Sprintf("%.2f", req.Weight),
	}

	payload := map[string]interface{}{
		"shipments":         []map[string]interface{}{shipment},
		"pickup_address_id": c.config.PickupID,
		"logistics":         "",
		"s_type":            "",
		"order_type":        "forward",
	}

	resp, err := c.post(ctx, "/order/add.json", payload)
	if err != nil {
		return nil, err
	}
	if resp.Status != "success" {
		return nil, model.NewLogisticsError(model.ErrCodeBookingRejected, "carrier rejected booking: "+resp.Message, nil)
	}

	// data is keyed by shipment index: {"1": {"status": "success", "waybill": ...}}
	var rows map[string]struct {
		Status       string `json:"status"`
		Remark       string `json:"remark"`
		Waybill      string `json:"waybill"`
		RefNum       string `json:"refnum"`
		LogisticID   string `json:"logistic_id"`
		LogisticName string `json:"logistic_name"`
	}
	if err := json.Unmarshal(resp.Data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal booking response: %w", err)
	}

	row, ok := rows["1"]
	if !ok {
		return nil, model.NewLogisticsError(model.ErrCodeBookingRejected, "carrier returned no shipment row", nil)
	}
	if row.Status != "success" || row.Waybill == "" {
		return nil, model.NewLogisticsError(model.ErrCodeBookingRejected, "booking failed: "+row.Remark, nil)
	}

	return &model.ShipmentResponse{
		WaybillNumber: row.Waybill,
		LogisticID:    row.LogisticID,
		LogisticName:  row.LogisticName,
		OrderRefID:    row.RefNum,
	}, nil
}

// =====================================================
// TRACKING
// =====================================================

// Track fetches scan history for one or more waybills.
func (c *Client) Track(ctx context.Context, awbNumbers []string) (map[string]*model.TrackingResult, error) {
	resp, err := c.post(ctx, "/order/track.json", map[string]interface{}{
		"awb_number_list": joinAWBs(awbNumbers),
	})
	if err != nil {
		return nil, err
	}
	if resp.Status != "success" {
		return nil, model.NewLogisticsError(model.ErrCodeCarrierUnavailable, "tracking failed: "+resp.Message, nil)
	}

	var rows map[string]struct {
		CurrentStatus string `json:"current_status"`
		ExpectedDate  string `json:"expected_delivery_date"`
		Scans         []struct {
			Status   string `json:"status"`
			Location string `json:"location"`
			Remark   string `json:"remark"`
			Datetime string `json:"datetime"`
		} `json:"scan_detail"`
	}
	if err := json.Unmarshal(resp.Data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tracking response: %w", err)
	}

	results := make(map[string]*model.TrackingResult, len(rows))
	for awb, row := range rows {
		result := &model.TrackingResult{
			AWBNumber:     awb,
			CurrentStatus: row.CurrentStatus,
			ExpectedDate:  row.ExpectedDate,
		}
		for _, scan := range row.Scans {
			result.Scans = append(result.Scans, model.TrackingScan{
				Status:   scan.Status,
				Location: scan.Location,
				Remark:   scan.Remark,
				Datetime: scan.Datetime,
			})
		}
		results[awb] = result
	}

	return results, nil
}

// =====================================================
// CANCELLATION
// =====================================================

// CancelShipment cancels a booked shipment before pickup.
func (c *Client) CancelShipment(ctx context.Context, awbNumber string) error {
	resp, err := c.post(ctx, "/order/cancel.json", map[string]interface{}{
		"awb_numbers": awbNumber,
	})
	if err != nil {
		return err
	}
	if resp.Status != "success" {
		return model.NewLogisticsError(model.ErrCodeBookingRejected, "cancellation failed: "+resp.Message, nil)
	}
	return nil
}

// =====================================================
// DOCUMENTS
// =====================================================

// GetLabel returns the shipping label PDF URL for the waybills.
func (c *Client) GetLabel(ctx context.Context, awbNumbers []string) (*model.DocumentResult, error) {
	return c.getDocument(ctx, "/shipping/label.json", map[string]interface{}{
		"awb_numbers": joinAWBs(awbNumbers),
		"page_size":   "A4",
		"display_cod_prepaid": "",
		"display_shipper_mobile":  "",
		"display_shipper_address": "",
	})
}

// GetManifest returns the pickup manifest PDF URL for the waybills.
func (c *Client) GetManifest(ctx context.Context, awbNumbers []string) (*model.DocumentResult, error) {
	return c.getDocument(ctx, "/shipping/manifest.json", map[string]interface{}{
		"awb_numbers": joinAWBs(awbNumbers),
	})
}

func (c *Client) getDocument(ctx context.Context, path string, payload map[string]interface{}) (*model.DocumentResult, error) {
	resp, err := c.post(ctx, path, payload)
	if err != nil {
		return nil, err
	}
	if resp.Status != "success" {
		return nil, model.NewLogisticsError(model.ErrCodeCarrierUnavailable, "document generation failed: "+resp.Message, nil)
	}

	var data struct {
		URL string `json:"url"`
	}
	if len(resp.Data) > 0 {
		if err := json.Unmarshal(resp.Data, &data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal document response: %w", err)
		}
	}
	if data.URL == "" {
		data.URL = resp.FileName
	}

	return &model.DocumentResult{URL: data.URL}, nil
}

// =====================================================
// PINCODE SERVICEABILITY
// =====================================================

// CheckPincode queries delivery serviceability for a pincode.
func (c *Client) CheckPincode(ctx context.Context, pincode string) (*model.PincodeResult, error) {
	resp, err := c.post(ctx, "/pincode/check.json", map[string]interface{}{
		"pincode": pincode,
	})
	if err != nil {
		return nil, err
	}
	if resp.Status != "success" {
		return nil, model.NewLogisticsError(model.ErrCodeNotServiceable, "pincode check failed: "+resp.Message, nil)
	}

	var data struct {
		Pincode string `json:"pincode"`
		City    string `json:"city_name"`
		State   string `json:"state_name"`
		Prepaid string `json:"prepaid"`
		COD     string `json:"cod"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pincode response: %w", err)
	}

	return &model.PincodeResult{
		Pincode:     pincode,
		City:        data.City,
		State:       data.State,
		Serviceable: data.Prepaid == "Y" || data.COD == "Y",
		CODAllowed:  data.COD == "Y",
	}, nil
}

// =====================================================
// RATE CHECK
// =====================================================

// CheckRate fetches courier rate quotes for a shipment profile.
func (c *Client) CheckRate(ctx context.Context, req *model.RateCheckRequest) ([]model.RateQuote, error) {
	resp, err := c.post(ctx, "/rate/check.json", map[string]interface{}{
		"from_pincode":    req.FromPincode,
		"to_pincode":      req.ToPincode,
		"shipping_length": fmt.Sprintf("%.1f", req.Length),
		"shipping_width":  fmt.Sprintf("%.1f", req.Breadth),
		"shipping_height": fmt.Sprintf("%.1f", req.Height),
		"shipping_weight": fmt.Sprintf("%.2f", req.Weight),
		"payment_method":  req.PaymentMode,
		"product_mrp":     fmt.Sprintf("%.2f", req.CODAmount),
	})
	if err != nil {
		return nil, err
	}
	if resp.Status != "success" {
		return nil, model.NewLogisticsError(model.ErrCodeCarrierUnavailable, "rate check failed: "+resp.Message, nil)
	}

	var rows []struct {
		LogisticName string `json:"logistic_name"`
		Rate         string `json:"rate"`
		DeliveryDays string `json:"expected_delivery_days"`
	}
	if err := json.Unmarshal(resp.Data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rate response: %w", err)
	}

	quotes := make([]model.RateQuote, 0, len(rows))
	for _, row := range rows {
		quotes = append(quotes, model.RateQuote{
			LogisticName: row.LogisticName,
			Rate:         row.Rate,
			DeliveryDays: row.DeliveryDays,
		})
	}

	return quotes, nil
}

// =====================================================
// HELPERS
// =====================================================

func joinAWBs(awbNumbers []string) string {
	return strings.Join(awbNumbers, ",")
}
