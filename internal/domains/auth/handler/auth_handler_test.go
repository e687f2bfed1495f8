package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"nplusone-backend/pkg/jwt"
)

func newAuthRouter(t *testing.T, password string) *gin.Engine {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewAuthHandler(jwt.NewManager("test-secret", 1), string(hash))
	handler.RegisterRoutes(router.Group("/v1"))
	return router
}

func TestLogin(t *testing.T) {
	router := newAuthRouter(t, "correct-horse")

	t.Run("valid credentials issue a token", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/v1/auth/login",
			strings.NewReader(`{"username":"admin","password":"correct-horse"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "token")
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/v1/auth/login",
			strings.NewReader(`{"username":"admin","password":"battery-staple"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing fields fail validation", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/v1/auth/login", strings.NewReader(`{"username":"admin"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}
