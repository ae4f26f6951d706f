package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Harshitk-cp/askdesk/internal/domain"
	"go.uber.org/zap"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// TokenVerifier validates access tokens.
type TokenVerifier interface {
	VerifyAccess(token string) (*domain.Claims, error)
}

func ClaimsFromContext(ctx context.Context) *domain.Claims {
	c, _ := ctx.Value(claimsContextKey).(*domain.Claims)
	return c
}

// WithClaims returns a copy of ctx carrying claims.
func WithClaims(ctx context.Context, claims *domain.Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// Authenticate requires a valid bearer access token. A missing token is 401;
// a token that fails verification is 403.
func Authenticate(verifier TokenVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				writeError(w, http.StatusUnauthorized, "Access token required")
				return
			}

			claims, err := verifier.VerifyAccess(token)
			if err != nil {
				logger.Warn("invalid token attempt",
					zap.String("remote_addr", r.RemoteAddr),
					zap.String("request_id", RequestIDFromContext(r.Context())))
				writeError(w, http.StatusForbidden, "Invalid or expired token")
				return
			}

			setIdentity(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireRole must run after Authenticate.
func RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims == nil {
				writeError(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			for _, role := range roles {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, http.StatusForbidden, "Insufficient permissions")
		})
	}
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

type errorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorEnvelope{
		Success: false,
		Error:   msg,
		Message: http.StatusText(status),
	})
}

// WriteError writes the standard failure envelope. Exported for router-level
// handlers such as NotFound.
func WriteError(w http.ResponseWriter, status int, msg string) {
	writeError(w, status, msg)
}
