package middleware

import (
	"net/http"
	"time"

	"github.com/Harshitk-cp/askdesk/internal/metrics"
	"github.com/go-chi/chi/v5"
)

const unmatchedRoute = "unmatched"

// Metrics records every request against its chi route pattern, so
// /api/questions/{questionId} is one series rather than one per id.
func Metrics(rec metrics.Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newResponseWriter(w)
			next.ServeHTTP(rw, r)

			route := unmatchedRoute
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					route = p
				}
			}
			rec.RecordHTTPRequest(r.Method, route, rw.statusCode, time.Since(start))
		})
	}
}
