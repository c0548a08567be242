package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"Piazza/internal/auth"
)

// Context keys for storing request scoped values
type contextKey string

const (
	IdentityKey contextKey = "identity"
)

// TokenVerifier verifies a bearer token; implemented by *auth.Provider
type TokenVerifier interface {
	Verify(token string) (*auth.Identity, error)
}

// AuthMiddleware enforces bearer token authentication for protected routes
type AuthMiddleware struct {
	verifier TokenVerifier
	logger   *zap.Logger
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(verifier TokenVerifier, logger *zap.Logger) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{
		verifier: verifier,
		logger:   logger,
	}
}

// RequireAuth rejects requests without a valid token with 403.
// On success the verified identity is stored in the request context.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeAuthError(w, "token is missing")
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			writeAuthError(w, "Invalid Authorization header format. Expected: Bearer <token>")
			return
		}

		identity, err := m.verifier.Verify(strings.TrimSpace(token))
		if err != nil {
			m.logger.Info("auth failure",
				zap.String("remote_addr", r.RemoteAddr),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Error(err))
			writeAuthError(w, "Invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(SetIdentity(r.Context(), identity)))
	})
}

// GetIdentity returns the authenticated identity, or nil if the request is anonymous
func GetIdentity(r *http.Request) *auth.Identity {
	id, _ := r.Context().Value(IdentityKey).(*auth.Identity)
	return id
}

// SetIdentity stores identity in ctx; used by RequireAuth and by handler tests
func SetIdentity(ctx context.Context, identity *auth.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, identity)
}

// writeAuthError writes a JSON error response for authentication failures
func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"error":   "AuthenticationRequired",
		"message": message,
	}); err != nil {
		zap.L().Warn("failed to write auth error response", zap.Error(err))
	}
}
