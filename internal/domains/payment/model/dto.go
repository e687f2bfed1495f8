package model

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/shopspring/decimal"
)

// =====================================================
// CALLBACK REQUEST
// =====================================================

// CallbackRequest is the payload the gateway delivers to the callback URL.
// Delivery format varies: some flows POST JSON, the hosted page POSTs a form,
// and browser redirects carry query parameters.
// Amount and MerchantID are carried for the audit trail only; the server-side
// status check is the source of truth for what was actually captured.
type CallbackRequest struct {
	Code                  string `json:"code" form:"code"`
	MerchantID            string `json:"merchantId" form:"merchantId"`
	MerchantTransactionID string `json:"merchantTransactionId" form:"merchantTransactionId"`
	TransactionID         string `json:"transactionId" form:"transactionId"`
	Amount                string `json:"amount" form:"amount"`
	ProviderReferenceID   string `json:"providerReferenceId" form:"providerReferenceId"`
}

// OrderID resolves the merchant-side order identifier.
func (r *CallbackRequest) OrderID() string {
	if r.MerchantTransactionID != "" {
		return r.MerchantTransactionID
	}
	return r.TransactionID
}

// DecodeCallback extracts the callback payload with a fixed priority:
// JSON body, then form body, then query string. The first source that
// yields a code wins.
func DecodeCallback(req *http.Request) *CallbackRequest {
	var cb CallbackRequest

	contentType := req.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "application/json") {
		body, err := io.ReadAll(io.LimitReader(req.Body, 1<<20))
		if err == nil && len(body) > 0 {
			if jsonErr := json.Unmarshal(body, &cb); jsonErr == nil && cb.Code != "" {
				return &cb
			}
		}
	}

	if strings.HasPrefix(contentType, "application/x-www-form-urlencoded") || strings.HasPrefix(contentType, "multipart/form-data") {
		if err := req.ParseForm(); err == nil {
			cb.Code = req.PostFormValue("code")
			cb.MerchantID = req.PostFormValue("merchantId")
			cb.MerchantTransactionID = req.PostFormValue("merchantTransactionId")
			cb.TransactionID = req.PostFormValue("transactionId")
			cb.Amount = req.PostFormValue("amount")
			cb.ProviderReferenceID = req.PostFormValue("providerReferenceId")
			if cb.Code != "" {
				return &cb
			}
		}
	}

	query := req.URL.Query()
	cb.Code = query.Get("code")
	cb.MerchantID = query.Get("merchantId")
	cb.MerchantTransactionID = query.Get("merchantTransactionId")
	cb.TransactionID = query.Get("transactionId")
	cb.Amount = query.Get("amount")
	cb.ProviderReferenceID = query.Get("providerReferenceId")

	return &cb
}

// =====================================================
// INITIATE PAYMENT REQUEST
// =====================================================

type InitiatePaymentRequest struct {
	OrderID string `json:"order_id"`
}

// Validate validates InitiatePaymentRequest
func (req InitiatePaymentRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.OrderID, validation.Required),
	)
}

type InitiatePaymentResponse struct {
	OrderID    string          `json:"order_id"`
	Amount     decimal.Decimal `json:"amount"`
	PaymentURL string          `json:"payment_url"`
}

// =====================================================
// PAYMENT STATUS RESPONSE
// =====================================================

type PaymentStatusResponse struct {
	OrderID       string `json:"order_id"`
	GatewayState  string `json:"gateway_state"`
	PaymentStatus string `json:"payment_status"`
	OrderStatus   string `json:"order_status"`
}
