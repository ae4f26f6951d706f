package handlers

import (
	"context"
	"net/http"

	"github.com/Harshitk-cp/askdesk/internal/api/middleware"
	"github.com/Harshitk-cp/askdesk/internal/domain"
	"github.com/Harshitk-cp/askdesk/internal/service"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxStatsDays    = 365
	maxTopUsersRows = 100
)

type StatsService interface {
	GetQuestionStats(ctx context.Context, companyID uuid.UUID, days int) ([]domain.QuestionStat, error)
	GetTopUsers(ctx context.Context, companyID uuid.UUID, limit int) ([]domain.UserStat, error)
	GetDashboardSummary(ctx context.Context, companyID uuid.UUID) (*domain.DashboardSummary, error)
}

// AdminHandler serves tenant statistics. Routes are mounted behind
// RequireRole(ADMIN); results are always scoped to the caller's company.
type AdminHandler struct {
	svc    StatsService
	logger *zap.Logger
}

func NewAdminHandler(svc StatsService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{svc: svc, logger: logger}
}

func (h *AdminHandler) QuestionStats(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	days := positiveIntParam(r.URL.Query(), "days", service.DefaultStatsDays, maxStatsDays)
	stats, err := h.svc.GetQuestionStats(r.Context(), claims.CompanyID, days)
	if err != nil {
		h.logger.Error("question stats failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to retrieve statistics")
		return
	}

	writeSuccess(w, http.StatusOK, stats, "Question statistics retrieved successfully")
}

func (h *AdminHandler) TopUsers(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	limit := positiveIntParam(r.URL.Query(), "limit", service.DefaultTopUsers, maxTopUsersRows)
	users, err := h.svc.GetTopUsers(r.Context(), claims.CompanyID, limit)
	if err != nil {
		h.logger.Error("top users failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to retrieve top users")
		return
	}

	writeSuccess(w, http.StatusOK, users, "Top users retrieved successfully")
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	summary, err := h.svc.GetDashboardSummary(r.Context(), claims.CompanyID)
	if err != nil {
		h.logger.Error("dashboard summary failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to retrieve dashboard summary")
		return
	}

	writeSuccess(w, http.StatusOK, summary, "Dashboard summary retrieved successfully")
}
