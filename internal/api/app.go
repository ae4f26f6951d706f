package api

import (
	"github.com/Harshitk-cp/askdesk/internal/api/handlers"
	mw "github.com/Harshitk-cp/askdesk/internal/api/middleware"
	"github.com/Harshitk-cp/askdesk/internal/config"
	"github.com/Harshitk-cp/askdesk/internal/domain"
	"github.com/Harshitk-cp/askdesk/internal/embedding"
	"github.com/Harshitk-cp/askdesk/internal/llm"
	"github.com/Harshitk-cp/askdesk/internal/metrics"
	"github.com/Harshitk-cp/askdesk/internal/service"
	"github.com/Harshitk-cp/askdesk/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// App holds the router and background services for lifecycle management.
type App struct {
	Router  *chi.Mux
	Sweeper *service.TokenSweeper

	limiters []*mw.RateLimiter
	stopCh   chan struct{}
}

func NewApp(db *pgxpool.Pool, logger *zap.Logger) (*App, error) {
	accessSecret, refreshSecret, err := config.JWTSecrets()
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewCollector(reg)

	// Stores
	companyStore := store.NewCompanyStore(db)
	userStore := store.NewUserStore(db)
	refreshStore := store.NewRefreshTokenStore(db)
	questionStore := store.NewQuestionStore(db)
	txManager := store.NewTxManager(db)

	// External clients via provider factory
	llmProvider := config.LLMProvider()
	llmClient, err := llm.NewClient(llmProvider, config.LLMAPIKey(), config.AIModel())
	if err != nil {
		logger.Warn("LLM client unavailable, using mock provider", zap.String("provider", llmProvider), zap.Error(err))
		llmProvider = llm.ProviderMock
		llmClient = llm.NewMockClient()
	} else {
		logger.Info("LLM client initialized", zap.String("provider", llmProvider))
	}
	answerer := llm.NewResilientAnswerer(llmClient, llmProvider, config.AITimeout(), logger, recorder)

	embeddingProvider := config.EmbeddingProvider()
	embeddingClient, err := embedding.NewClient(embeddingProvider, config.EmbeddingAPIKey())
	switch {
	case err != nil:
		logger.Warn("embedding client unavailable, similarity search disabled", zap.String("provider", embeddingProvider), zap.Error(err))
		embeddingClient = nil
	case embeddingClient == nil:
		logger.Info("question embeddings disabled")
	default:
		logger.Info("embedding client initialized", zap.String("provider", embeddingProvider))
	}

	// Services
	tokenSvc := service.NewTokenService(service.TokenConfig{
		AccessSecret:  accessSecret,
		RefreshSecret: refreshSecret,
		AccessTTL:     config.AccessTokenTTL(),
		RefreshTTL:    config.RefreshTokenTTL(),
	}, refreshStore, userStore)
	identitySvc := service.NewIdentityService(userStore, companyStore, txManager, tokenSvc, logger, recorder)
	questionSvc := service.NewQuestionService(questionStore, answerer, embeddingClient, logger, recorder)
	statsSvc := service.NewStatsService(questionStore)

	sweeper := service.NewTokenSweeper(tokenSvc, logger)
	sweeper.SetInterval(config.TokenSweepInterval())

	generalLimiter := mw.NewRateLimiter(config.RateLimitRPS(), config.RateLimitBurst(), "")
	authLimiter := mw.NewRateLimiter(config.AuthRateLimitRPS(), config.AuthRateLimitBurst(),
		"Too many authentication attempts, please try again later")

	router := NewRouter(RouterDeps{
		Auth:           handlers.NewAuthHandler(identitySvc, logger),
		Question:       handlers.NewQuestionHandler(questionSvc, logger),
		Admin:          handlers.NewAdminHandler(statsSvc, logger),
		Health:         handlers.Health(db, logger),
		Metrics:        metrics.Handler(reg),
		Verifier:       tokenSvc,
		Recorder:       recorder,
		Logger:         logger,
		GeneralLimiter: generalLimiter,
		AuthLimiter:    authLimiter,
	})

	return &App{
		Router:   router,
		Sweeper:  sweeper,
		limiters: []*mw.RateLimiter{generalLimiter, authLimiter},
		stopCh:   make(chan struct{}),
	}, nil
}

// Start launches background work: the refresh token sweeper and rate
// limiter eviction.
func (a *App) Start() {
	a.Sweeper.Start()
	for _, l := range a.limiters {
		go l.RunCleanup(a.stopCh)
	}
}

func (a *App) Stop() {
	close(a.stopCh)
	a.Sweeper.Stop()
}

// Ensure stores and clients satisfy interfaces at compile time.
var (
	_ domain.CompanyStore      = (*store.CompanyStore)(nil)
	_ domain.UserStore         = (*store.UserStore)(nil)
	_ domain.RefreshTokenStore = (*store.RefreshTokenStore)(nil)
	_ domain.QuestionStore     = (*store.QuestionStore)(nil)
	_ domain.TxRunner          = (*store.TxManager)(nil)
	_ domain.Answerer          = (*llm.ResilientAnswerer)(nil)
	_ domain.EmbeddingClient   = (*embedding.OpenAIClient)(nil)
	_ domain.EmbeddingClient   = (*embedding.MockClient)(nil)
	_ domain.LLMClient         = (*llm.OpenAIClient)(nil)
	_ domain.LLMClient         = (*llm.AnthropicClient)(nil)
	_ domain.LLMClient         = (*llm.GeminiClient)(nil)
	_ domain.LLMClient         = (*llm.CerebrasClient)(nil)
	_ domain.LLMClient         = (*llm.MockClient)(nil)
	_ metrics.Recorder         = (*metrics.Collector)(nil)
	_ mw.TokenVerifier         = (*service.TokenService)(nil)
	_ handlers.IdentityService = (*service.IdentityService)(nil)
	_ handlers.QuestionService = (*service.QuestionService)(nil)
	_ handlers.StatsService    = (*service.StatsService)(nil)
)
