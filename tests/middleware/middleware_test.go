package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/meera-jewels/retail-api/internal/auth"
	"github.com/meera-jewels/retail-api/internal/config"
	"github.com/meera-jewels/retail-api/internal/domain"
	"github.com/meera-jewels/retail-api/internal/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestSecurityHeaders(t *testing.T) {
	cfg := &config.SecurityConfig{
		ContentTypeNosniff:    true,
		FrameOptions:          "DENY",
		XSSProtection:         "1; mode=block",
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		EnableHSTS:            true,
		HSTSMaxAge:            31536000,
		HSTSIncludeSubdomains: true,
	}

	handler := middleware.SecurityHeaders(cfg)(okHandler())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "default-src 'self'", rec.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "max-age=31536000; includeSubDomains", rec.Header().Get("Strict-Transport-Security"))
}

func TestSecurityHeaders_HSTSDisabled(t *testing.T) {
	handler := middleware.SecurityHeaders(&config.SecurityConfig{})(okHandler())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
	assert.Empty(t, rec.Header().Get("X-Frame-Options"))
}

func TestRecovery(t *testing.T) {
	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	handler := middleware.Recovery(zap.NewNop())(panicking)
	rec := httptest.NewRecorder()

	require.NotPanics(t, func() {
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leads", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "internal_error")
}

func newAuthMiddleware(t *testing.T) (*auth.Middleware, *auth.TokenValidator) {
	cfg := &config.Config{
		Auth: config.AuthConfig{
			OperatorSecret: "test-secret",
			ApiKey:         "test-api-key",
		},
	}
	return auth.NewMiddleware(cfg, zap.NewNop()), auth.NewTokenValidator("test-secret")
}

func TestAuthMiddleware_Identify(t *testing.T) {
	m, validator := newAuthMiddleware(t)

	var captured *auth.OperatorContext
	handler := m.Identify(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = auth.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("bearer token resolves the operator", func(t *testing.T) {
		captured = nil
		token, err := validator.IssueToken(&auth.OperatorContext{
			ID:   "emp-101",
			Name: "Sunita Rao",
			Role: domain.TeamRoleFloorManager,
		}, time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		handler.ServeHTTP(httptest.NewRecorder(), req)

		require.NotNil(t, captured)
		assert.Equal(t, "emp-101", captured.ID)
	})

	t.Run("api key resolves the system operator", func(t *testing.T) {
		captured = nil
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("x-api-key", "test-api-key")
		handler.ServeHTTP(httptest.NewRecorder(), req)

		require.NotNil(t, captured)
		assert.Equal(t, "system", captured.ID)
		assert.Equal(t, domain.TeamRoleAdmin, captured.Role)
	})

	t.Run("invalid token continues unauthenticated", func(t *testing.T) {
		captured = nil
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, captured)
	})
}

func TestAuthMiddleware_RequireOperator(t *testing.T) {
	m, validator := newAuthMiddleware(t)
	handler := m.Identify(m.RequireOperator(okHandler()))

	t.Run("rejects anonymous requests", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("accepts a valid token", func(t *testing.T) {
		token, err := validator.IssueToken(&auth.OperatorContext{ID: "emp-101"}, time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestAuthMiddleware_RequireManager(t *testing.T) {
	m, validator := newAuthMiddleware(t)
	handler := m.Identify(m.RequireManager(okHandler()))

	t.Run("sales executive is forbidden", func(t *testing.T) {
		token, err := validator.IssueToken(&auth.OperatorContext{
			ID:   "sp-1",
			Role: domain.TeamRoleSalesExecutive,
		}, time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("floor manager passes", func(t *testing.T) {
		token, err := validator.IssueToken(&auth.OperatorContext{
			ID:   "emp-101",
			Role: domain.TeamRoleFloorManager,
		}, time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
