// Package main is the entrypoint for the FaceForge API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/faceforge/faceforge/internal/cache"
	"github.com/faceforge/faceforge/internal/config"
	"github.com/faceforge/faceforge/internal/faceswap"
	"github.com/faceforge/faceforge/internal/handler"
	"github.com/faceforge/faceforge/internal/metrics"
	"github.com/faceforge/faceforge/internal/middleware"
	"github.com/faceforge/faceforge/internal/ratelimit"
	"github.com/faceforge/faceforge/internal/repository"
	"github.com/faceforge/faceforge/internal/server"
	"github.com/faceforge/faceforge/internal/service"
	"github.com/faceforge/faceforge/internal/storage"
	"github.com/faceforge/faceforge/internal/upload"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	// Database
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

	// Optional Redis; when absent the rate limiter runs in-process
	var cacheClient *cache.Cache
	if cfg.RedisURL != "" {
		cacheClient, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			os.Exit(1)
		}
		defer cacheClient.Close()
		logger.Info("connected to Redis")
	}

	var limiter ratelimit.Limiter
	if cacheClient != nil {
		limiter = cache.NewLimiter(cacheClient, cfg.RateLimitMax, cfg.RateLimitWindow)
	} else {
		limiter = ratelimit.NewFixedWindow(cfg.RateLimitMax, cfg.RateLimitWindow)
		logger.Info("using in-process rate limiter")
	}

	// File storage
	files, err := storage.New(cfg.UploadDir)
	if err != nil {
		logger.Error("failed to prepare upload storage",
			slog.String("error", err.Error()),
			slog.String("upload_dir", cfg.UploadDir),
		)
		os.Exit(1)
	}

	// Transformer: real provider when a credential is configured,
	// simulator otherwise
	var transformer faceswap.Transformer
	if cfg.FaceSwapAPIKey != "" {
		transformer = faceswap.NewClient(cfg.FaceSwapAPIURL, cfg.FaceSwapAPIKey, cfg.FaceSwapTimeout, files)
		logger.Info("face swap provider configured", slog.String("api_url", cfg.FaceSwapAPIURL))
	} else {
		transformer = faceswap.NewSimulator(files, cfg.SimulatedDelay)
		logger.Warn("no face swap credential configured, using simulator")
	}

	// Services and handlers
	svc := service.NewSubmissionService(repo, transformer, files, cfg.BaseURL, logger, metrics.NewNoop())
	uploads := upload.NewHandler(files, cfg.MaxUploadSize)

	submissionHandler := handler.NewSubmissionHandler(svc, uploads, files, cfg.BaseURL, logger, cfg.MaxRequestBodySize)
	pageHandler := handler.NewPageHandler(svc, cfg.BaseURL, logger)
	healthHandler := newHealthHandler(repo, cacheClient)

	r := setupRouter(submissionHandler, pageHandler, healthHandler, files, limiter, cfg, logger)

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

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

// newHealthHandler wires the readiness checkers, tolerating a nil cache.
func newHealthHandler(repo *repository.Repository, cacheClient *cache.Cache) *handler.HealthHandler {
	if cacheClient == nil {
		return handler.NewHealthHandler(repo, nil)
	}
	return handler.NewHealthHandler(repo, cacheClient)
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
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	submissionHandler *handler.SubmissionHandler,
	pageHandler *handler.PageHandler,
	healthHandler *handler.HealthHandler,
	files *storage.Store,
	limiter ratelimit.Limiter,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))

	// Health endpoints
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)

	// Server-rendered pages
	r.Get("/", pageHandler.Form)
	r.Get("/submissions", pageHandler.Submissions)

	rateLimitCfg := middleware.RateLimitConfig{
		Logger:  logger,
		Limiter: limiter,
		Enabled: cfg.RateLimitEnabled,
		Limit:   cfg.RateLimitMax,
	}

	adminCfg := middleware.AdminConfig{
		Logger:  logger,
		KeyHash: cfg.AdminKeyHash,
	}

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/", handler.APIIndex)
		r.With(middleware.RateLimit(rateLimitCfg)).Post("/submit", submissionHandler.Create)

		r.Route("/submissions", func(r chi.Router) {
			r.Get("/", submissionHandler.List)
			r.Get("/{id}", submissionHandler.Get)
			r.Get("/{id}/download", submissionHandler.Download)
			r.With(middleware.Admin(adminCfg)).Delete("/{id}", submissionHandler.Delete)
		})

		r.Get("/stats", submissionHandler.Stats)
	})

	// Transformed results served by exact filename only
	r.Get("/files/swapped/*", handler.ServeSwapped(files))

	// 404 and 405 handlers
	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	return r
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
