package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"nplusone-backend/internal/domains/logistics/model"
	"nplusone-backend/internal/domains/logistics/service"
	"nplusone-backend/internal/shared/response"
)

// =====================================================
// LOGISTICS HANDLER
// =====================================================
type LogisticsHandler struct {
	logisticsService service.LogisticsService
}

// NewLogisticsHandler creates a new logistics handler
func NewLogisticsHandler(logisticsService service.LogisticsService) *LogisticsHandler {
	return &LogisticsHandler{
		logisticsService: logisticsService,
	}
}

// =====================================================
// ROUTES REGISTRATION
// =====================================================

// RegisterRoutes registers the public logistics routes
func (h *LogisticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	logistics := router.Group("/logistics")
	{
		logistics.GET("/pincode/:pincode", h.CheckPincode) // GET /api/v1/logistics/pincode/:pincode
		logistics.GET("/track/:awb", h.TrackShipment)      // GET /api/v1/logistics/track/:awb
	}
}

// RegisterAdminRoutes registers the admin logistics routes
func (h *LogisticsHandler) RegisterAdminRoutes(router *gin.RouterGroup) {
	logistics := router.Group("/logistics")
	{
		logistics.POST("/rates", h.CheckRate)             // POST   /v1/admin/logistics/rates
		logistics.GET("/label", h.GenerateLabel)          // GET    /v1/admin/logistics/label?awb=1,2
		logistics.GET("/manifest", h.GenerateManifest)    // GET    /v1/admin/logistics/manifest?awb=1,2
		logistics.DELETE("/shipment/:awb", h.CancelShipment) // DELETE /api/v1/admin/logistics/shipment/:awb
	}
}

// =====================================================
// PINCODE CHECK
// =====================================================

// CheckPincode reports delivery serviceability for a pincode
func (h *LogisticsHandler) CheckPincode(c *gin.Context) {
	req := model.PincodeCheckRequest{Pincode: c.Param("pincode")}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "REQ_422", "Validation failed", err.Error())
		return
	}

	result, err := h.logisticsService.CheckPincode(c.Request.Context(), req.Pincode)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// =====================================================
// TRACKING
// =====================================================

// TrackShipment returns the scan history for a waybill
func (h *LogisticsHandler) TrackShipment(c *gin.Context) {
	result, err := h.logisticsService.TrackShipment(c.Request.Context(), c.Param("awb"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// =====================================================
// RATE CHECK (Admin)
// =====================================================

// CheckRate fetches courier quotes for a shipment profile
func (h *LogisticsHandler) CheckRate(c *gin.Context) {
	var req model.RateCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "REQ_400", "Invalid request body", err.Error())
		return
	}

	quotes, err := h.logisticsService.CheckRate(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, quotes)
}

// =====================================================
// DOCUMENTS (Admin)
// =====================================================

// GenerateLabel returns the label PDF URL for the given waybills
func (h *LogisticsHandler) GenerateLabel(c *gin.Context) {
	awbs := splitAWBs(c.Query("awb"))
	if len(awbs) == 0 {
		response.BadRequest(c, "awb query parameter required")
		return
	}

	result, err := h.logisticsService.GenerateLabel(c.Request.Context(), awbs, c.GetString("admin_subject"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// GenerateManifest returns the manifest PDF URL for the given waybills
func (h *LogisticsHandler) GenerateManifest(c *gin.Context) {
	awbs := splitAWBs(c.Query("awb"))
	if len(awbs) == 0 {
		response.BadRequest(c, "awb query parameter required")
		return
	}

	result, err := h.logisticsService.GenerateManifest(c.Request.Context(), awbs, c.GetString("admin_subject"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// =====================================================
// CANCELLATION (Admin)
// =====================================================

// CancelShipment cancels a booked shipment before pickup
func (h *LogisticsHandler) CancelShipment(c *gin.Context) {
	if err := h.logisticsService.CancelShipment(c.Request.Context(), c.Param("awb"), c.GetString("admin_subject")); err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"cancelled": true})
}

// =====================================================
// HELPERS
// =====================================================

func splitAWBs(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func (h *LogisticsHandler) handleServiceError(c *gin.Context, err error) {
	var logErr *model.LogisticsError
	if errors.As(err, &logErr) {
		status := http.StatusBadGateway
		if logErr.Code == model.ErrCodeNotServiceable {
			status = http.StatusUnprocessableEntity
		}
		response.ErrorResponse(c, status, logErr.Code, logErr.Message)
		return
	}

	response.InternalServerError(c, "Something went wrong")
}
