package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/crypto/bcrypt"

	"nplusone-backend/internal/shared/response"
	"nplusone-backend/pkg/jwt"
	"nplusone-backend/pkg/logger"
)

// =====================================================
// AUTH HANDLER
// =====================================================
// The dashboard is single-tenant: one admin identity, its bcrypt hash held
// in the environment. Login exchanges the password for a short-lived JWT.

type AuthHandler struct {
	jwtManager   *jwt.Manager
	passwordHash string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(jwtManager *jwt.Manager, passwordHash string) *AuthHandler {
	return &AuthHandler{
		jwtManager:   jwtManager,
		passwordHash: passwordHash,
	}
}

// RegisterRoutes registers the auth routes
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/login", h.Login) // POST /api/v1/auth/login
	}
}

// =====================================================
// LOGIN
// =====================================================

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate validates LoginRequest
func (req LoginRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Username, validation.Required),
		validation.Field(&req.Password, validation.Required),
	)
}

type LoginResponse struct {
	Token string `json:"token"`
}

// Login verifies the admin password and issues a token
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "REQ_400", "Invalid request body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "REQ_422", "Validation failed", err.Error())
		return
	}

	if h.passwordHash == "" {
		logger.Warn("Admin login attempted but no password hash configured", nil)
		response.Unauthorized(c, "Admin login not configured")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(h.passwordHash), []byte(req.Password)); err != nil {
		logger.Warn("Admin login failed", map[string]interface{}{
			"username":  req.Username,
			"client_ip": c.ClientIP(),
		})
		response.Unauthorized(c, "Invalid credentials")
		return
	}

	token, err := h.jwtManager.GenerateAdminToken(req.Username)
	if err != nil {
		logger.Error("Failed to generate admin token", err)
		response.InternalServerError(c, "Failed to generate token")
		return
	}

	logger.Info("Admin logged in", map[string]interface{}{
		"username": req.Username,
	})

	response.Success(c, http.StatusOK, LoginResponse{Token: token})
}
