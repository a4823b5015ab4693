// Package main is the entrypoint for the BileMo API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/bilemo/bilemo/internal/apierr"
	"github.com/bilemo/bilemo/internal/cache"
	"github.com/bilemo/bilemo/internal/config"
	"github.com/bilemo/bilemo/internal/handler"
	"github.com/bilemo/bilemo/internal/httpcache"
	"github.com/bilemo/bilemo/internal/metrics"
	"github.com/bilemo/bilemo/internal/middleware"
	"github.com/bilemo/bilemo/internal/repository"
	"github.com/bilemo/bilemo/internal/server"
	"github.com/bilemo/bilemo/internal/service"
	"github.com/bilemo/bilemo/internal/view"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	if cfg.AutoMigrate {
		version, err := repo.Migrate(ctx)
		if err != nil {
			logger.Error("failed to apply migrations", "error", sanitizeError(err, cfg.DatabaseURL))
			os.Exit(1)
		}
		logger.Info("database schema up to date", "version", version)
	}

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	cacheClient = cacheClient.WithPrincipalTTL(cfg.PrincipalCacheTTL)
	logger.Info("connected to Redis")

	recorder := metrics.NewInMemory()
	errs := apierr.NewTranslator(logger)
	pageOpts := cfg.PaginationOptions()
	respond := handler.NewResponder(errs, httpcache.New(cfg.CacheMaxAge), view.NewRoutes(cfg.BaseURL), recorder)

	users := service.NewUserService(repo, repo.UserSource(), pageOpts, recorder)
	products := service.NewProductService(repo, repo.ProductSource(), pageOpts, recorder)

	cors := middleware.DefaultCORSConfig()
	if origins := cfg.GetCORSAllowedOrigins(); len(origins) > 0 {
		cors.AllowedOrigins = origins
	}

	r := handler.NewRouter(handler.RouterConfig{
		Logger:      logger,
		Errors:      errs,
		Metrics:     recorder,
		Snapshotter: recorder,
		Root:        handler.New(respond),
		Health:      handler.NewHealthHandler(repo, cacheClient),
		Users:       handler.NewUserHandler(users, respond, pageOpts, logger),
		Products:    handler.NewProductHandler(products, respond, pageOpts),
		Auth: middleware.AuthConfig{
			Logger:      logger,
			Keys:        repo,
			Cache:       cacheClient,
			Errors:      errs,
			Metrics:     recorder,
			MinDuration: cfg.AuthMinDuration,
		},
		RateLimit: middleware.RateLimitConfig{
			Logger:     logger,
			Limiter:    cacheClient,
			Errors:     errs,
			Metrics:    recorder,
			APIEnabled: cfg.RateLimitAPIEnabled,
			IPEnabled:  cfg.RateLimitIPEnabled,
			IPRPS:      cfg.RateLimitIPRPS,
			IPBurst:    cfg.RateLimitIPBurst,
		},
		Security:    middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()},
		CORS:        cors,
		MaxBodySize: cfg.MaxRequestBodySize,
	})

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)
	srv.OnShutdown("redis", func(context.Context) error { return cacheClient.Close() })

	logger.Info("starting server",
		"port", cfg.AppPort,
		"base_url", cfg.BaseURL,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
