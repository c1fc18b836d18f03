// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Simon-Bruno/omen-backend-sub000/internal/ai"
	"github.com/Simon-Bruno/omen-backend-sub000/internal/cache"
	"github.com/Simon-Bruno/omen-backend-sub000/internal/config"
	"github.com/Simon-Bruno/omen-backend-sub000/internal/fetch"
	"github.com/Simon-Bruno/omen-backend-sub000/internal/ratelimit"
	"github.com/Simon-Bruno/omen-backend-sub000/internal/resolver"
)

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once at startup and shared across all CLI commands.
// Use Close() to ensure proper resource cleanup on shutdown.
type Application struct {
	Config      *config.Config
	Logger      *zerolog.Logger
	Cache       cache.Cache
	RateLimiter ratelimit.RateLimiter
	Fetcher     fetch.Source
	Completer   ai.Completer // nil when no API key is configured or --no-ai is set
	Resolver    *resolver.Resolver
	startTime   time.Time
}

// New creates and initializes a new Application with all dependencies.
//
// It performs the following initialization steps:
//   - Configures logging based on the provided config
//   - Creates the in-memory page cache
//   - Creates the per-host rate limiter
//   - Creates the HTTP fetcher
//   - Creates the AI completer when a key is available
//   - Wires the resolver on top of all of the above
//
// If any step fails, an error is returned and no resources are allocated.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	// Initialize logger based on config
	logLevel := zerolog.ErrorLevel // default: suppress non-verbose info logs
	switch cfg.LogLevel {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	// Treat "info" as non-verbose (don't display info logs unless -v is used)
	default:
		logLevel = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	var logWriter io.Writer
	if cfg.JSONLog {
		// JSON logs to stderr
		logWriter = os.Stderr
	} else {
		// Human-friendly console output otherwise
		logWriter = zerolog.NewConsoleWriter()
	}

	logger := log.Output(logWriter).With().Timestamp().Logger()
	log.Logger = logger

	logger.Debug().
		Str("level", cfg.LogLevel).
		Bool("json", cfg.JSONLog).
		Msg("Logger initialized")

	// Create cache
	memCache := cache.NewMemoryCache(cfg.CacheMaxSizeBytes, cfg.CacheTTL, nil)
	logger.Debug().
		Int64("max_size_bytes", cfg.CacheMaxSizeBytes).
		Dur("ttl", cfg.CacheTTL).
		Msg("Memory cache initialized")

	// Create rate limiter
	rateLimiter := ratelimit.NewDomainLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	logger.Debug().
		Float64("rps", cfg.RateLimitRPS).
		Int("burst", cfg.RateLimitBurst).
		Msg("Rate limiter initialized")

	// Create page fetcher
	fetcher := fetch.New(fetch.Options{
		Timeout:   cfg.HTTPTimeout,
		UserAgent: cfg.UserAgent,
		Limiter:   rateLimiter,
		Cache:     memCache,
	})
	logger.Debug().
		Dur("timeout", cfg.HTTPTimeout).
		Msg("Fetcher initialized")

	// Create AI completer when a key is available and the AI tier is enabled
	var completer ai.Completer
	switch {
	case cfg.NoAI:
		logger.Debug().Msg("AI tier disabled by flag")
	case cfg.AIAPIKey == "":
		logger.Warn().Msg("No API key configured; resolving without the AI tier")
	default:
		completer = ai.NewOpenAIClient(ai.OpenAIOptions{
			APIKey:  cfg.AIAPIKey,
			BaseURL: cfg.AIBaseURL,
			Model:   cfg.AIModel,
			Timeout: cfg.AITimeout,
			RateRPS: cfg.AIRateRPS,
		})
		logger.Debug().Str("model", cfg.AIModel).Msg("AI completer initialized")
	}

	res := resolver.New(resolver.Options{
		Completer:          completer,
		DocumentCharBudget: cfg.DocumentCharBudget,
		MaxAlternatives:    cfg.MaxAlternatives,
	})

	app := &Application{
		Config:      cfg,
		Logger:      &logger,
		Cache:       memCache,
		RateLimiter: rateLimiter,
		Fetcher:     fetcher,
		Completer:   completer,
		Resolver:    res,
		startTime:   time.Now(),
	}

	logger.Info().Msg("Application initialized successfully")
	return app, nil
}

// Close gracefully shuts down the application and all its resources.
// Any errors during shutdown are logged but do not prevent other shutdown steps.
func (a *Application) Close(ctx context.Context) error {
	a.Logger.Info().Msg("Shutting down application")

	if a.Cache != nil {
		a.Logger.Debug().
			Fields(a.Cache.Stats()).
			Msg("Cache statistics at shutdown")
		a.Cache.Close()
	}

	a.Logger.Info().Dur("uptime", a.Uptime()).Msg("Application shutdown complete")
	return nil
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}
