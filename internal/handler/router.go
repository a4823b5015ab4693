package handler

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/bilemo/bilemo/internal/apierr"
	"github.com/bilemo/bilemo/internal/metrics"
	"github.com/bilemo/bilemo/internal/middleware"
)

// RouterConfig carries the handlers and middleware settings of the API.
type RouterConfig struct {
	Logger      *slog.Logger
	Errors      *apierr.Translator
	Metrics     metrics.Recorder
	Snapshotter metrics.Snapshotter

	Root     *Handler
	Health   *HealthHandler
	Users    *UserHandler
	Products *ProductHandler

	Auth        middleware.AuthConfig
	RateLimit   middleware.RateLimitConfig
	Security    middleware.SecurityConfig
	CORS        middleware.CORSConfig
	MaxBodySize int64
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger, cfg.Metrics))
	r.Use(middleware.Recoverer(cfg.Logger, cfg.Errors))
	r.Use(middleware.Security(cfg.Security))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.MaxBodySize(cfg.MaxBodySize, cfg.Errors))
	// GetHead only sees the root routes; mounted subrouters register HEAD themselves.
	r.Use(chimiddleware.GetHead)

	r.Get("/healthz", cfg.Health.Healthz)
	r.Get("/readyz", cfg.Health.Readyz)
	r.Get("/metrics", NewMetricsHandler(cfg.Snapshotter).Metrics)
	r.Get("/", cfg.Root.Index)

	r.Route("/api", func(r chi.Router) {
		// The catalog is public; credentials are not even looked at.
		r.Route("/products", func(r chi.Router) {
			r.Use(middleware.RateLimitIP(cfg.RateLimit))
			r.Get("/", cfg.Products.List)
			r.Head("/", cfg.Products.List)
			r.Get("/{id}", cfg.Products.Get)
			r.Head("/{id}", cfg.Products.Get)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.Authenticate(cfg.Auth))
			r.Use(middleware.RequirePrincipal(cfg.Errors))
			r.Use(middleware.RateLimitAPI(cfg.RateLimit))
			r.Get("/", cfg.Users.List)
			r.Head("/", cfg.Users.List)
			r.Post("/", cfg.Users.Create)
			r.Get("/{id}", cfg.Users.Get)
			r.Head("/{id}", cfg.Users.Get)
			r.Put("/{id}", cfg.Users.Update)
			r.Delete("/{id}", cfg.Users.Delete)
		})
	})

	r.NotFound(cfg.Root.NotFound)
	r.MethodNotAllowed(cfg.Root.MethodNotAllowed)

	return r
}
