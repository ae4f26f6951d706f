package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Harshitk-cp/askdesk/internal/api/handlers"
	mw "github.com/Harshitk-cp/askdesk/internal/api/middleware"
	"github.com/Harshitk-cp/askdesk/internal/domain"
	"github.com/Harshitk-cp/askdesk/internal/metrics"
	"github.com/Harshitk-cp/askdesk/internal/service"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeVerifier map[string]*domain.Claims

func (f fakeVerifier) VerifyAccess(token string) (*domain.Claims, error) {
	if c, ok := f[token]; ok {
		return c, nil
	}
	return nil, service.ErrInvalidToken
}

type fakeIdentity struct{}

func (fakeIdentity) Register(ctx context.Context, in service.RegisterInput) (*domain.AuthResult, error) {
	return &domain.AuthResult{User: &domain.User{Email: in.Email}, Company: &domain.Company{Name: in.CompanyName}}, nil
}

func (fakeIdentity) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	return nil, service.ErrInvalidCredentials
}

func (fakeIdentity) Refresh(ctx context.Context, token string) (domain.TokenPair, error) {
	return domain.TokenPair{}, service.ErrInvalidRefreshToken
}

func (fakeIdentity) Logout(ctx context.Context, token string) {}

type fakeQuestions struct{}

func (fakeQuestions) AskQuestion(ctx context.Context, question string, userID, companyID uuid.UUID) (*domain.Question, error) {
	return &domain.Question{ID: uuid.New(), Question: question, UserID: userID, CompanyID: companyID}, nil
}

func (fakeQuestions) GetUserQuestions(ctx context.Context, userID, companyID uuid.UUID, params domain.PageParams) (domain.Page[domain.Question], error) {
	return domain.NewPage[domain.Question](nil, params, 0), nil
}

func (fakeQuestions) GetCompanyQuestions(ctx context.Context, companyID uuid.UUID, params domain.PageParams) (domain.Page[domain.Question], error) {
	return domain.NewPage[domain.Question](nil, params, 0), nil
}

func (fakeQuestions) GetQuestionByID(ctx context.Context, id, companyID uuid.UUID) (*domain.Question, error) {
	return nil, nil
}

func (fakeQuestions) GetSimilarQuestions(ctx context.Context, id, companyID uuid.UUID, limit int) ([]domain.QuestionWithScore, error) {
	return nil, nil
}

type fakeStats struct{}

func (fakeStats) GetQuestionStats(ctx context.Context, companyID uuid.UUID, days int) ([]domain.QuestionStat, error) {
	return []domain.QuestionStat{}, nil
}

func (fakeStats) GetTopUsers(ctx context.Context, companyID uuid.UUID, limit int) ([]domain.UserStat, error) {
	return []domain.UserStat{}, nil
}

func (fakeStats) GetDashboardSummary(ctx context.Context, companyID uuid.UUID) (*domain.DashboardSummary, error) {
	return &domain.DashboardSummary{}, nil
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(ctx context.Context) error { return p.err }

const (
	adminToken = "admin-token"
	userToken  = "user-token"
)

func newTestRouter(t *testing.T, authLimiter *mw.RateLimiter) http.Handler {
	t.Helper()
	logger := zap.NewNop()
	reg := prometheus.NewRegistry()

	companyID := uuid.New()
	return NewRouter(RouterDeps{
		Auth:     handlers.NewAuthHandler(fakeIdentity{}, logger),
		Question: handlers.NewQuestionHandler(fakeQuestions{}, logger),
		Admin:    handlers.NewAdminHandler(fakeStats{}, logger),
		Health:   handlers.Health(fakePinger{}, logger),
		Metrics:  metrics.Handler(reg),
		Verifier: fakeVerifier{
			adminToken: {UserID: uuid.New(), CompanyID: companyID, Role: domain.RoleAdmin},
			userToken:  {UserID: uuid.New(), CompanyID: companyID, Role: domain.RoleUser},
		},
		Recorder:    metrics.NewCollector(reg),
		Logger:      logger,
		AuthLimiter: authLimiter,
	})
}

func do(h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.False(t, env.Success)
	return env.Error
}

func TestRouter_AccessControl(t *testing.T) {
	r := newTestRouter(t, nil)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		status int
		errMsg string
	}{
		{"health is public", http.MethodGet, "/api/health", "", http.StatusOK, ""},
		{"logout is public", http.MethodPost, "/api/auth/logout", "", http.StatusOK, ""},
		{"questions need a token", http.MethodGet, "/api/questions/my-questions", "", http.StatusUnauthorized, "Access token required"},
		{"bad token", http.MethodGet, "/api/questions/my-questions", "forged", http.StatusForbidden, "Invalid or expired token"},
		{"user lists own questions", http.MethodGet, "/api/questions/my-questions", userToken, http.StatusOK, ""},
		{"user cannot list company", http.MethodGet, "/api/questions/company", userToken, http.StatusForbidden, "Insufficient permissions"},
		{"admin lists company", http.MethodGet, "/api/questions/company", adminToken, http.StatusOK, ""},
		{"user cannot see stats", http.MethodGet, "/api/admin/stats/questions", userToken, http.StatusForbidden, "Insufficient permissions"},
		{"admin stats", http.MethodGet, "/api/admin/stats/questions?days=7", adminToken, http.StatusOK, ""},
		{"admin top users", http.MethodGet, "/api/admin/stats/users", adminToken, http.StatusOK, ""},
		{"admin dashboard", http.MethodGet, "/api/admin/dashboard", adminToken, http.StatusOK, ""},
		{"unknown question", http.MethodGet, "/api/questions/" + uuid.NewString(), userToken, http.StatusNotFound, "Question not found"},
		{"unknown route", http.MethodGet, "/api/nothing-here", "", http.StatusNotFound, "Route not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(r, tt.method, tt.path, tt.token, "")
			assert.Equal(t, tt.status, rec.Code)
			if tt.errMsg != "" {
				assert.Equal(t, tt.errMsg, errorOf(t, rec))
			}
		})
	}
}

func TestRouter_AskQuestion(t *testing.T) {
	r := newTestRouter(t, nil)
	rec := do(r, http.MethodPost, "/api/questions", userToken, `{"question":"What is artificial intelligence?"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestRouter_AuthRateLimit(t *testing.T) {
	r := newTestRouter(t, mw.NewRateLimiter(0.001, 2, "Too many authentication attempts, please try again later"))
	body := `{"email":"a@b.com","password":"wrong"}`

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodPost, "/api/auth/login", "", body).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodPost, "/api/auth/login", "", body).Code)

	rec := do(r, http.MethodPost, "/api/auth/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Too many authentication attempts, please try again later", errorOf(t, rec))

	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/api/auth/logout", "", "").Code, "logout is not auth limited")
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	r := newTestRouter(t, nil)
	do(r, http.MethodGet, "/api/health", "", "")

	rec := do(r, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `askdesk_http_requests_total{method="GET",route="/api/health",status="200"} 1`)
}

func TestRouter_HealthDatabaseDown(t *testing.T) {
	logger := zap.NewNop()
	r := NewRouter(RouterDeps{
		Auth:     handlers.NewAuthHandler(fakeIdentity{}, logger),
		Question: handlers.NewQuestionHandler(fakeQuestions{}, logger),
		Admin:    handlers.NewAdminHandler(fakeStats{}, logger),
		Health:   handlers.Health(fakePinger{err: errors.New("no route to host")}, logger),
		Verifier: fakeVerifier{},
		Logger:   logger,
	})

	rec := do(r, http.MethodGet, "/api/health", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
