package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	ordermodel "nplusone-backend/internal/domains/order/model"
	"nplusone-backend/internal/domains/payment/model"
	"nplusone-backend/internal/domains/payment/service"
	"nplusone-backend/internal/shared/response"
)

// =====================================================
// PAYMENT HANDLER
// =====================================================
type PaymentHandler struct {
	paymentService service.PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// =====================================================
// ROUTES REGISTRATION
// =====================================================

// RegisterRoutes registers the payment routes
func (h *PaymentHandler) RegisterRoutes(router *gin.RouterGroup) {
	payments := router.Group("/payments/phonepe")
	{
		payments.POST("/initiate", h.InitiatePayment)     // POST /api/v1/payments/phonepe/initiate
		payments.GET("/callback", h.Callback)             // GET  /v1/payments/phonepe/callback
		payments.POST("/callback", h.Callback)            // POST /api/v1/payments/phonepe/callback
		payments.GET("/status/:orderId", h.CheckStatus)   // GET  /v1/payments/phonepe/status/:orderId
	}
}

// =====================================================
// INITIATE PAYMENT
// =====================================================

// InitiatePayment opens a checkout session for an order
func (h *PaymentHandler) InitiatePayment(c *gin.Context) {
	var req model.InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "REQ_400", "Invalid request body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "REQ_422", "Validation failed", err.Error())
		return
	}

	result, err := h.paymentService.InitiatePayment(c.Request.Context(), req.OrderID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// =====================================================
// GATEWAY CALLBACK
// =====================================================

// Callback receives the gateway redirect after checkout. The response is
// always a 303 to the storefront; a payment callback must never dead-end
// the customer on an API error page.
func (h *PaymentHandler) Callback(c *gin.Context) {
	cb := model.DecodeCallback(c.Request)

	target := h.paymentService.ProcessCallback(c.Request.Context(), cb, service.CallbackMeta{
		URL:       c.Request.URL.String(),
		UserAgent: c.Request.UserAgent(),
	})

	c.Redirect(http.StatusSeeOther, target)
}

// =====================================================
// CHECK STATUS
// =====================================================

// CheckStatus re-queries the gateway for an order's payment state
func (h *PaymentHandler) CheckStatus(c *gin.Context) {
	result, err := h.paymentService.CheckStatus(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// =====================================================
// ERROR MAPPING
// =====================================================

func (h *PaymentHandler) handleServiceError(c *gin.Context, err error) {
	var payErr *model.PaymentError
	if errors.As(err, &payErr) {
		status := http.StatusUnprocessableEntity
		switch payErr.Code {
		case model.ErrCodeGatewayUnavailable:
			status = http.StatusBadGateway
		case model.ErrCodeAlreadyPaid:
			status = http.StatusConflict
		}
		response.ErrorResponse(c, status, payErr.Code, payErr.Message)
		return
	}

	if errors.Is(err, ordermodel.ErrOrderNotFound) {
		response.ErrorResponse(c, http.StatusNotFound, ordermodel.ErrCodeOrderNotFound, "Order not found")
		return
	}

	response.InternalServerError(c, "Something went wrong")
}
