package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/Harshitk-cp/askdesk/internal/domain"
	"go.uber.org/zap"
)

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	written     int64
	wroteHeader bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	if rw, ok := w.(*responseWriter); ok {
		return rw
	}
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.statusCode = code
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// identity is filled in by Authenticate further down the chain so the
// outer logging middleware can report who made the request.
type identity struct {
	mu        sync.Mutex
	userID    string
	companyID string
	role      string
}

const identityKey = contextKey("identity")

func withIdentity(ctx context.Context) (context.Context, *identity) {
	id := &identity{}
	return context.WithValue(ctx, identityKey, id), id
}

func setIdentity(ctx context.Context, claims *domain.Claims) {
	id, ok := ctx.Value(identityKey).(*identity)
	if !ok || claims == nil {
		return
	}
	id.mu.Lock()
	defer id.mu.Unlock()
	id.userID = claims.UserID.String()
	id.companyID = claims.CompanyID.String()
	id.role = string(claims.Role)
}

// Logging returns middleware that logs each request with structured JSON output.
func Logging(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newResponseWriter(w)
			ctx, who := withIdentity(r.Context())

			next.ServeHTTP(rw, r.WithContext(ctx))

			who.mu.Lock()
			userID, companyID, role := who.userID, who.companyID, who.role
			who.mu.Unlock()

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("query", r.URL.RawQuery),
				zap.Int("status", rw.statusCode),
				zap.Int64("bytes", rw.written),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", RequestIDFromContext(r.Context())),
				zap.String("remote_addr", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
			}
			if userID != "" {
				fields = append(fields,
					zap.String("user_id", userID),
					zap.String("company_id", companyID),
					zap.String("role", role))
			}

			switch {
			case rw.statusCode >= 500:
				logger.Error("http request", fields...)
			case rw.statusCode >= 400:
				logger.Warn("http request", fields...)
			default:
				logger.Info("http request", fields...)
			}
		})
	}
}
