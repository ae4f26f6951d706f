package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Harshitk-cp/askdesk/internal/buildconfig"
	"go.uber.org/zap"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type healthStatus struct {
	Status    string           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Uptime    string           `json:"uptime"`
	Build     buildconfig.Info `json:"build"`
}

// Health reports 200 while the database answers a ping and 503 otherwise.
func Health(db Pinger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := healthStatus{
			Status:    "OK",
			Timestamp: time.Now().UTC(),
			Uptime:    buildconfig.Uptime().Round(time.Second).String(),
			Build:     buildconfig.VersionInfo(),
		}

		if err := db.Ping(ctx); err != nil {
			logger.Warn("health check database ping failed", zap.Error(err))
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}

		writeSuccess(w, http.StatusOK, status, "Server is healthy")
	}
}
