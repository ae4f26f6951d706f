package api

import (
	"net/http"

	"github.com/Harshitk-cp/askdesk/internal/api/handlers"
	mw "github.com/Harshitk-cp/askdesk/internal/api/middleware"
	"github.com/Harshitk-cp/askdesk/internal/domain"
	"github.com/Harshitk-cp/askdesk/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// RouterDeps is everything the HTTP surface needs. NewApp fills it from
// config; tests fill it with stubs.
type RouterDeps struct {
	Auth     *handlers.AuthHandler
	Question *handlers.QuestionHandler
	Admin    *handlers.AdminHandler
	Health   http.HandlerFunc
	Metrics  http.Handler

	Verifier mw.TokenVerifier
	Recorder metrics.Recorder
	Logger   *zap.Logger

	// GeneralLimiter applies to every request, AuthLimiter additionally to
	// register, login and refresh. Either may be nil.
	GeneralLimiter *mw.RateLimiter
	AuthLimiter    *mw.RateLimiter
}

func NewRouter(d RouterDeps) *chi.Mux {
	if d.Recorder == nil {
		d.Recorder = metrics.Nop{}
	}

	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.Metrics(d.Recorder))
	r.Use(mw.Logging(d.Logger))
	r.Use(mw.Recoverer(d.Logger))
	if d.GeneralLimiter != nil {
		r.Use(d.GeneralLimiter.Middleware)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		mw.WriteError(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		mw.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", d.Health)

		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				if d.AuthLimiter != nil {
					r.Use(d.AuthLimiter.Middleware)
				}
				r.Post("/register", d.Auth.Register)
				r.Post("/login", d.Auth.Login)
				r.Post("/refresh", d.Auth.Refresh)
			})
			r.Post("/logout", d.Auth.Logout)
		})

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(mw.Authenticate(d.Verifier, d.Logger))

			r.Route("/questions", func(r chi.Router) {
				r.Post("/", d.Question.Ask)
				r.Get("/my-questions", d.Question.ListMine)
				r.With(mw.RequireRole(domain.RoleAdmin)).Get("/company", d.Question.ListCompany)
				r.Get("/{questionId}", d.Question.GetByID)
				r.Get("/{questionId}/similar", d.Question.Similar)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(mw.RequireRole(domain.RoleAdmin))
				r.Get("/stats/questions", d.Admin.QuestionStats)
				r.Get("/stats/users", d.Admin.TopUsers)
				r.Get("/dashboard", d.Admin.Dashboard)
			})
		})
	})

	return r
}
