package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"nplusone-backend/internal/domains/audit/model"
	"nplusone-backend/internal/domains/audit/service"
	"nplusone-backend/internal/shared/response"
)

// AuditHandler exposes the system log to the admin dashboard.
type AuditHandler struct {
	auditService service.AuditService
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// RegisterRoutes registers the public error-reporting route
func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/logs", h.ReportClientError) // POST /api/v1/logs
}

// RegisterAdminRoutes registers the audit routes
func (h *AuditHandler) RegisterAdminRoutes(router *gin.RouterGroup) {
	router.GET("/logs", h.ListLogs) // GET /api/v1/admin/logs?event_type=RTO_RISK&limit=50&offset=0
}

// ClientErrorRequest is what the storefront posts when its own code fails.
type ClientErrorRequest struct {
	Message string                 `json:"message"`
	URL     string                 `json:"url"`
	Data    map[string]interface{} `json:"data"`
}

// ReportClientError records a browser-side failure. Best effort: the
// storefront never sees an error from here.
func (h *AuditHandler) ReportClientError(c *gin.Context) {
	var req ClientErrorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if req.Message == "" {
		response.BadRequest(c, "message is required")
		return
	}

	h.auditService.Record(c.Request.Context(), &model.SystemLog{
		EventType:   model.EventClientError,
		Status:      model.StatusFailure,
		Message:     req.Message,
		RequestData: req.Data,
		URL:         req.URL,
		UserAgent:   c.Request.UserAgent(),
	})

	response.Success(c, http.StatusCreated, gin.H{"recorded": true})
}

// ListLogs returns recent audit records, optionally filtered by event type
func (h *AuditHandler) ListLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	logs, err := h.auditService.List(c.Request.Context(), c.Query("event_type"), limit, offset)
	if err != nil {
		response.InternalServerError(c, "Failed to load logs")
		return
	}

	response.Success(c, http.StatusOK, logs)
}
