package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/shopspring/decimal"
)

// =====================================================
// CREATE ORDER REQUEST
// =====================================================
type CreateOrderRequest struct {
	CustomerName    string            `json:"customer_name"`
	CustomerEmail   string            `json:"customer_email"`
	CustomerPhone   string            `json:"customer_phone"`
	PaymentMethod   string            `json:"payment_method"`
	ShippingAddress ShippingAddress   `json:"shipping_address"`
	Items           []CreateOrderItem `json:"items"`
}

type CreateOrderItem struct {
	ProductID     string          `json:"product_id"`
	ProductName   string          `json:"product_name"`
	Quantity      int             `json:"quantity"`
	PricePerUnit  decimal.Decimal `json:"price_per_unit"`
	SelectedSize  *string         `json:"selected_size,omitempty"`
	SelectedColor *string         `json:"selected_color,omitempty"`
}

// Validate validates CreateOrderRequest
func (req CreateOrderRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.CustomerName, validation.Required, validation.Length(1, 200)),
		validation.Field(&req.CustomerEmail, validation.Required, is.Email),
		validation.Field(&req.CustomerPhone, validation.Required, validation.Length(7, 20)),
		validation.Field(&req.PaymentMethod, validation.Required, validation.In(
			PaymentMethodPhonePe,
			PaymentMethodCOD,
		)),
		validation.Field(&req.ShippingAddress, validation.Required),
		validation.Field(&req.Items, validation.Required, validation.Length(1, 100)),
	)
}

// Validate validates the shipping address block
func (a ShippingAddress) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Name, validation.Required),
		validation.Field(&a.Phone, validation.Required),
		validation.Field(&a.Line1, validation.Required),
		validation.Field(&a.City, validation.Required),
		validation.Field(&a.State, validation.Required),
		validation.Field(&a.Pincode, validation.Required, validation.Length(6, 6)),
	)
}

// Validate validates an order line
func (i CreateOrderItem) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.ProductID, validation.Required),
		validation.Field(&i.ProductName, validation.Required),
		validation.Field(&i.Quantity, validation.Required, validation.Min(1)),
	)
}

// =====================================================
// CREATE ORDER RESPONSE
// =====================================================
type CreateOrderResponse struct {
	OrderID     string          `json:"order_id"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	PaymentURL  *string         `json:"payment_url,omitempty"`
}

// =====================================================
// LIST ORDERS REQUEST (Admin)
// =====================================================
type ListOrdersRequest struct {
	Status        string `form:"status"`
	PaymentStatus string `form:"payment_status"`
	Page          int    `form:"page"`
	Limit         int    `form:"limit"`
}

// Validate normalizes pagination and checks the status filters
func (req *ListOrdersRequest) Validate() error {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	if req.Status != "" && !IsValidStatus(req.Status) {
		return ErrInvalidStatus
	}
	if req.PaymentStatus != "" {
		return validation.Validate(req.PaymentStatus, validation.In(
			PaymentStatusUnpaid,
			PaymentStatusPaid,
			PaymentStatusRefunded,
		))
	}

	return nil
}

// =====================================================
// LIST ORDERS RESPONSE
// =====================================================
type ListOrdersResponse struct {
	Orders     []OrderSummaryResponse `json:"orders"`
	Pagination PaginationMeta         `json:"pagination"`
}

type OrderSummaryResponse struct {
	ID            string          `json:"id"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"payment_status"`
	PaymentMethod string          `json:"payment_method"`
	CustomerName  string          `json:"customer_name"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	ItemsCount    int             `json:"items_count"`
	TrackingID    *string         `json:"tracking_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

type PaginationMeta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// =====================================================
// UPDATE ORDER STATUS REQUEST (Admin)
// =====================================================
type UpdateOrderStatusRequest struct {
	Status     string  `json:"status"`
	Version    int     `json:"version"`
	Note       *string `json:"note,omitempty"`
	Override   bool    `json:"override,omitempty"`
	TrackingID *string `json:"tracking_id,omitempty"`
}

// Validate validates UpdateOrderStatusRequest
func (req UpdateOrderStatusRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Status, validation.Required, validation.By(func(value interface{}) error {
			if s, _ := value.(string); !IsValidStatus(s) {
				return ErrInvalidStatus
			}
			return nil
		})),
		validation.Field(&req.Version, validation.Min(0)),
	)
}

// =====================================================
// CREATE SHIPMENT REQUEST (Admin)
// =====================================================
type CreateShipmentRequest struct {
	Version int     `json:"version"`
	Length  float64 `json:"length"`
	Breadth float64 `json:"breadth"`
	Height  float64 `json:"height"`
	Weight  float64 `json:"weight"`
}

// Validate validates CreateShipmentRequest
func (req CreateShipmentRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Version, validation.Min(0)),
		validation.Field(&req.Weight, validation.Required, validation.Min(0.01)),
		validation.Field(&req.Length, validation.Min(0.0)),
		validation.Field(&req.Breadth, validation.Min(0.0)),
		validation.Field(&req.Height, validation.Min(0.0)),
	)
}
