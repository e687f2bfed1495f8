package model

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeCallback(t *testing.T) {
	t.Run("json body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/callback", strings.NewReader(`{"code":"PAYMENT_SUCCESS","merchantId":"NPLUSONE","merchantTransactionId":"ORD123","amount":"259800"}`))
		req.Header.Set("Content-Type", "application/json")

		cb := DecodeCallback(req)
		assert.Equal(t, CodePaymentSuccess, cb.Code)
		assert.Equal(t, "ORD123", cb.OrderID())
		assert.Equal(t, "NPLUSONE", cb.MerchantID)
		assert.Equal(t, "259800", cb.Amount)
	})

	t.Run("form body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/callback", strings.NewReader("code=PAYMENT_SUCCESS&merchantId=NPLUSONE&merchantTransactionId=ORD123&transactionId=T42&amount=259800"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		cb := DecodeCallback(req)
		assert.Equal(t, CodePaymentSuccess, cb.Code)
		assert.Equal(t, "ORD123", cb.OrderID())
		assert.Equal(t, "T42", cb.TransactionID)
		assert.Equal(t, "NPLUSONE", cb.MerchantID)
		assert.Equal(t, "259800", cb.Amount)
	})

	t.Run("query parameters", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/callback?code=PAYMENT_ERROR&merchantTransactionId=ORD123&amount=259800", nil)

		cb := DecodeCallback(req)
		assert.Equal(t, CodePaymentError, cb.Code)
		assert.Equal(t, "ORD123", cb.OrderID())
		assert.Equal(t, "259800", cb.Amount)
	})

	t.Run("json declared but empty falls through to query", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/callback?code=PAYMENT_SUCCESS&merchantTransactionId=ORD123", strings.NewReader(""))
		req.Header.Set("Content-Type", "application/json")

		cb := DecodeCallback(req)
		assert.Equal(t, CodePaymentSuccess, cb.Code)
		assert.Equal(t, "ORD123", cb.OrderID())
	})

	t.Run("transaction id fallback for order id", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/callback?code=PAYMENT_SUCCESS&transactionId=ORD999", nil)

		cb := DecodeCallback(req)
		assert.Equal(t, "ORD999", cb.OrderID())
	})
}
