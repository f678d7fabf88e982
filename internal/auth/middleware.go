package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/meera-jewels/retail-api/internal/config"
	"github.com/meera-jewels/retail-api/internal/domain"
	"go.uber.org/zap"
)

// Middleware attaches operator identity to requests
type Middleware struct {
	validator *TokenValidator
	apiKey    string
	logger    *zap.Logger
}

func NewMiddleware(cfg *config.Config, logger *zap.Logger) *Middleware {
	return &Middleware{
		validator: NewTokenValidator(cfg.Auth.OperatorSecret),
		apiKey:    cfg.Auth.ApiKey,
		logger:    logger,
	}
}

// Identify resolves the operator from the Authorization header when one
// is present. Requests without a token, or with an invalid one, continue
// without an operator; handlers that need attribution fall back to the
// system identity.
func (m *Middleware) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if apiKey := r.Header.Get("x-api-key"); apiKey != "" && m.validateAPIKey(apiKey) {
			operator := &OperatorContext{
				ID:   "system",
				Name: "System",
				Role: domain.TeamRoleAdmin,
			}
			next.ServeHTTP(w, r.WithContext(WithOperator(r.Context(), operator)))
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			next.ServeHTTP(w, r)
			return
		}

		operator, err := m.validator.ValidateToken(parts[1])
		if err != nil {
			m.logger.Debug("operator token rejected, continuing unauthenticated",
				zap.String("path", r.URL.Path),
				zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithOperator(r.Context(), operator)))
	})
}

// RequireOperator rejects requests that carry no operator identity
func (m *Middleware) RequireOperator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := FromContext(r.Context()); !ok {
			http.Error(w, "Unauthorized: operator token required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireManager rejects requests from operators below floor-manager
func (m *Middleware) RequireManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		operator, ok := FromContext(r.Context())
		if !ok {
			http.Error(w, "Unauthorized: operator token required", http.StatusUnauthorized)
			return
		}
		if !operator.IsManager() {
			http.Error(w, "Forbidden: manager access required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) validateAPIKey(key string) bool {
	if m.apiKey == "" {
		return false
	}
	// Constant-time comparison to prevent timing attacks
	return subtle.ConstantTimeCompare([]byte(key), []byte(m.apiKey)) == 1
}
