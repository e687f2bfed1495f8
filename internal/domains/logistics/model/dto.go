package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// =====================================================
// SHIPMENT
// =====================================================

// ShipmentRequest is the courier booking payload built from an order.
type ShipmentRequest struct {
	OrderID         string
	CustomerName    string
	CustomerPhone   string
	CustomerEmail   string
	AddressLine1    string
	AddressLine2    string
	City            string
	State           string
	Pincode         string
	PaymentMode     string // "prepaid" or "cod"
	CODAmount       string
	InvoiceValue    string
	Products        []ShipmentProduct
	Length          float64
	Breadth         float64
	Height          float64
	Weight          float64
}

type ShipmentProduct struct {
	Name     string
	SKU      string
	Quantity int
	Price    string
}

// ShipmentResponse is the courier's booking confirmation.
type ShipmentResponse struct {
	WaybillNumber string `json:"waybill"`
	LogisticID    string `json:"logistic_id"`
	LogisticName  string `json:"logistic_name"`
	OrderRefID    string `json:"refnum"`
}

// =====================================================
// TRACKING
// =====================================================

type TrackingScan struct {
	Status    string `json:"status"`
	Location  string `json:"location"`
	Remark    string `json:"remark"`
	Datetime  string `json:"datetime"`
}

type TrackingResult struct {
	AWBNumber     string         `json:"awb_number"`
	CurrentStatus string         `json:"current_status"`
	ExpectedDate  string         `json:"expected_delivery_date"`
	Scans         []TrackingScan `json:"scans"`
}

// =====================================================
// PINCODE SERVICEABILITY
// =====================================================

type PincodeCheckRequest struct {
	Pincode string `json:"pincode" form:"pincode"`
}

// Validate validates PincodeCheckRequest
func (req PincodeCheckRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Pincode, validation.Required, validation.Length(6, 6)),
	)
}

type PincodeResult struct {
	Pincode     string `json:"pincode"`
	City        string `json:"city"`
	State       string `json:"state"`
	Serviceable bool   `json:"serviceable"`
	CODAllowed  bool   `json:"cod_allowed"`
}

// =====================================================
// RATE CHECK
// =====================================================

type RateCheckRequest struct {
	FromPincode string  `json:"from_pincode" form:"from_pincode"`
	ToPincode   string  `json:"to_pincode" form:"to_pincode"`
	Weight      float64 `json:"weight" form:"weight"`
	Length      float64 `json:"length" form:"length"`
	Breadth     float64 `json:"breadth" form:"breadth"`
	Height      float64 `json:"height" form:"height"`
	PaymentMode string  `json:"payment_mode" form:"payment_mode"`
	CODAmount   float64 `json:"cod_amount" form:"cod_amount"`
}

// Validate validates RateCheckRequest
func (req RateCheckRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.FromPincode, validation.Required, validation.Length(6, 6)),
		validation.Field(&req.ToPincode, validation.Required, validation.Length(6, 6)),
		validation.Field(&req.Weight, validation.Required, validation.Min(0.01)),
	)
}

type RateQuote struct {
	LogisticName string `json:"logistic_name"`
	Rate         string `json:"rate"`
	DeliveryDays string `json:"delivery_days"`
}

// =====================================================
// DOCUMENTS
// =====================================================

type DocumentResult struct {
	URL string `json:"url"`
}

// =====================================================
// ERRORS
// =====================================================

const (
	ErrCodeCarrierUnavailable = "LOG001"
	ErrCodeBookingRejected    = "LOG002"
	ErrCodeNotServiceable     = "LOG003"
)

// LogisticsError wraps carrier API failures with a stable code.
type LogisticsError struct {
	Code    string
	Message string
	Err     error
}

func (e *LogisticsError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *LogisticsError) Unwrap() error {
	return e.Err
}

// NewLogisticsError creates a new LogisticsError
func NewLogisticsError(code, message string, err error) *LogisticsError {
	return &LogisticsError{Code: code, Message: message, Err: err}
}
