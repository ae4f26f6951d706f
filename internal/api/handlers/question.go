package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Harshitk-cp/askdesk/internal/api/middleware"
	"github.com/Harshitk-cp/askdesk/internal/domain"
	"github.com/Harshitk-cp/askdesk/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type QuestionService interface {
	AskQuestion(ctx context.Context, question string, userID, companyID uuid.UUID) (*domain.Question, error)
	GetUserQuestions(ctx context.Context, userID, companyID uuid.UUID, params domain.PageParams) (domain.Page[domain.Question], error)
	GetCompanyQuestions(ctx context.Context, companyID uuid.UUID, params domain.PageParams) (domain.Page[domain.Question], error)
	GetQuestionByID(ctx context.Context, id, companyID uuid.UUID) (*domain.Question, error)
	GetSimilarQuestions(ctx context.Context, id, companyID uuid.UUID, limit int) ([]domain.QuestionWithScore, error)
}

type QuestionHandler struct {
	svc    QuestionService
	logger *zap.Logger
}

func NewQuestionHandler(svc QuestionService, logger *zap.Logger) *QuestionHandler {
	return &QuestionHandler{svc: svc, logger: logger}
}

type askQuestionRequest struct {
	Question string `json:"question"`
}

func (h *QuestionHandler) Ask(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req askQuestionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Question = strings.TrimSpace(req.Question)
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	q, err := h.svc.AskQuestion(r.Context(), req.Question, claims.UserID, claims.CompanyID)
	if err != nil {
		if !errors.Is(err, service.ErrQuestionProcessingFailed) {
			h.logger.Error("ask question failed", zap.Error(err))
		}
		writeError(w, http.StatusInternalServerError, service.ErrQuestionProcessingFailed.Error())
		return
	}

	writeSuccess(w, http.StatusCreated, q, "Question processed successfully")
}

func (h *QuestionHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	params, err := parsePageParams(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.svc.GetUserQuestions(r.Context(), claims.UserID, claims.CompanyID, params)
	if err != nil {
		h.logger.Error("list user questions failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to retrieve questions")
		return
	}

	writeSuccess(w, http.StatusOK, page, "Questions retrieved successfully")
}

func (h *QuestionHandler) ListCompany(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	params, err := parsePageParams(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.svc.GetCompanyQuestions(r.Context(), claims.CompanyID, params)
	if err != nil {
		h.logger.Error("list company questions failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to retrieve company questions")
		return
	}

	writeSuccess(w, http.StatusOK, page, "Company questions retrieved successfully")
}

// GetByID answers 404 for a malformed id, an unknown id and another
// company's question alike.
func (h *QuestionHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "questionId"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Question not found")
		return
	}

	q, err := h.svc.GetQuestionByID(r.Context(), id, claims.CompanyID)
	if err != nil {
		h.logger.Error("get question failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to retrieve question")
		return
	}
	if q == nil {
		writeError(w, http.StatusNotFound, "Question not found")
		return
	}

	writeSuccess(w, http.StatusOK, q, "Question retrieved successfully")
}

func (h *QuestionHandler) Similar(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "questionId"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Question not found")
		return
	}
	limit := positiveIntParam(r.URL.Query(), "limit", 5, 20)

	similar, err := h.svc.GetSimilarQuestions(r.Context(), id, claims.CompanyID, limit)
	if err != nil {
		h.logger.Error("similar questions failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to retrieve similar questions")
		return
	}
	if similar == nil {
		writeError(w, http.StatusNotFound, "Question not found")
		return
	}

	writeSuccess(w, http.StatusOK, similar, "Similar questions retrieved successfully")
}
