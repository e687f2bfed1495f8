package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"nplusone-backend/internal/domains/order/model"
	"nplusone-backend/internal/domains/order/service"
	"nplusone-backend/internal/shared/response"
)

// =====================================================
// ORDER HANDLER
// =====================================================
type OrderHandler struct {
	orderService service.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// =====================================================
// ROUTES REGISTRATION
// =====================================================

// RegisterRoutes registers the storefront order routes
func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	orders := router.Group("/orders")
	{
		orders.POST("", h.CreateOrder)        // POST /api/v1/orders
		orders.POST("/cod", h.CreateCODOrder) // POST /api/v1/orders/cod
		orders.GET("/:id", h.GetOrder)        // GET /api/v1/orders/:id
	}
}

// RegisterAdminRoutes registers the admin workflow routes.
// The group is expected to carry the admin auth middleware.
func (h *OrderHandler) RegisterAdminRoutes(router *gin.RouterGroup) {
	orders := router.Group("/orders")
	{
		orders.GET("", h.ListOrders)                   // GET /api/v1/admin/orders
		orders.GET("/:id", h.GetOrder)                 // GET /api/v1/admin/orders/:id
		orders.PATCH("/:id/status", h.UpdateStatus)    // PATCH /api/v1/admin/orders/:id/status
		orders.POST("/:id/shipment", h.CreateShipment) // POST /api/v1/admin/orders/:id/shipment
	}
}

// =====================================================
// CREATE ORDER
// =====================================================

// CreateOrder creates an order from the storefront checkout
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req model.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "REQ_400", "Invalid request body", err.Error())
		return
	}

	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "REQ_422", "Validation failed", err.Error())
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, model.CreateOrderResponse{
		OrderID:     order.ID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
	})
}

// CreateCODOrder is the cash-on-delivery checkout. Same payload as
// CreateOrder; the payment method is fixed server-side.
func (h *OrderHandler) CreateCODOrder(c *gin.Context) {
	var req model.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "REQ_400", "Invalid request body", err.Error())
		return
	}
	req.PaymentMethod = model.PaymentMethodCOD

	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "REQ_422", "Validation failed", err.Error())
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, model.CreateOrderResponse{
		OrderID:     order.ID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
	})
}

// =====================================================
// GET ORDER
// =====================================================

// GetOrder returns order details with items and tracking timeline
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.orderService.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, order)
}

// =====================================================
// LIST ORDERS (Admin)
// =====================================================

// ListOrders returns a filtered, paginated order list
func (h *OrderHandler) ListOrders(c *gin.Context) {
	var req model.ListOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "REQ_400", "Invalid query parameters", err.Error())
		return
	}

	result, err := h.orderService.ListOrders(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// =====================================================
// UPDATE STATUS (Admin)
// =====================================================

// UpdateStatus applies a workflow transition to an order
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req model.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "REQ_400", "Invalid request body", err.Error())
		return
	}

	order, err := h.orderService.UpdateOrderStatus(c.Request.Context(), c.Param("id"), &req, c.GetString("admin_subject"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, order)
}

// =====================================================
// CREATE SHIPMENT (Admin)
// =====================================================

// CreateShipment books a courier shipment for the order
func (h *OrderHandler) CreateShipment(c *gin.Context) {
	var req model.CreateShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "REQ_400", "Invalid request body", err.Error())
		return
	}

	order, err := h.orderService.GenerateShipment(c.Request.Context(), c.Param("id"), &req, c.GetString("admin_subject"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, order)
}

// =====================================================
// ERROR MAPPING
// =====================================================

func (h *OrderHandler) handleServiceError(c *gin.Context, err error) {
	var orderErr *model.OrderError
	if errors.As(err, &orderErr) {
		status := http.StatusUnprocessableEntity
		switch orderErr.Code {
		case model.ErrCodeOrderNotFound:
			status = http.StatusNotFound
		case model.ErrCodeVersionMismatch:
			status = http.StatusConflict
		case model.ErrCodeInvalidTransition, model.ErrCodeShipmentNotAllowed, model.ErrCodeOrderOnHold:
			status = http.StatusConflict
		case model.ErrCodeInvalidStatus, model.ErrCodeEmptyOrder:
			status = http.StatusUnprocessableEntity
		}
		response.ErrorResponse(c, status, orderErr.Code, orderErr.Message)
		return
	}

	if errors.Is(err, model.ErrOrderNotFound) {
		response.ErrorResponse(c, http.StatusNotFound, model.ErrCodeOrderNotFound, "Order not found")
		return
	}
	if errors.Is(err, model.ErrVersionMismatch) {
		response.ErrorResponse(c, http.StatusConflict, model.ErrCodeVersionMismatch, "Order was modified by someone else")
		return
	}

	response.InternalServerError(c, "Something went wrong")
}
