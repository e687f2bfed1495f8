package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"nplusone-backend/internal/domains/payment/model"
	"nplusone-backend/internal/domains/payment/service"
)

type stubPaymentService struct {
	lastCallback *model.CallbackRequest
	redirect     string
}

func (s *stubPaymentService) InitiatePayment(_ context.Context, _ string) (*model.InitiatePaymentResponse, error) {
	return nil, nil
}

func (s *stubPaymentService) ProcessCallback(_ context.Context, cb *model.CallbackRequest, _ service.CallbackMeta) string {
	s.lastCallback = cb
	return s.redirect
}

func (s *stubPaymentService) CheckStatus(_ context.Context, _ string) (*model.PaymentStatusResponse, error) {
	return nil, nil
}

func (s *stubPaymentService) ReconcilePending(_ context.Context, _ time.Duration, _ int) (int, error) {
	return 0, nil
}

func newTestRouter(svc service.PaymentService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewPaymentHandler(svc).RegisterRoutes(router.Group("/v1"))
	return router
}

func TestCallback_FormPostRedirects(t *testing.T) {
	stub := &stubPaymentService{redirect: "https://shop.nplusone.in/order-confirmation/ORD123"}
	router := newTestRouter(stub)

	req := httptest.NewRequest("POST", "/v1/payments/phonepe/callback",
		strings.NewReader("code=PAYMENT_SUCCESS&merchantTransactionId=ORD123"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "https://shop.nplusone.in/order-confirmation/ORD123", w.Header().Get("Location"))
	assert.Equal(t, "ORD123", stub.lastCallback.OrderID())
}

func TestCallback_GetWithQueryRedirects(t *testing.T) {
	stub := &stubPaymentService{redirect: "https://shop.nplusone.in/cart?error=payment_failed"}
	router := newTestRouter(stub)

	req := httptest.NewRequest("GET", "/v1/payments/phonepe/callback?code=PAYMENT_DECLINED&merchantTransactionId=ORD123", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "https://shop.nplusone.in/cart?error=payment_failed", w.Header().Get("Location"))
	assert.Equal(t, model.CodePaymentDeclined, stub.lastCallback.Code)
}
