package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/Simon-Bruno/omen-backend-sub000/internal/keys"
)

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string
	JSONLog  bool

	// HTTP fetching
	HTTPTimeout time.Duration
	UserAgent   string

	// Rate Limiting (per host)
	RateLimitRPS   float64
	RateLimitBurst int

	// AI model
	AIModel   string
	AIBaseURL string
	AIAPIKey  string
	AITimeout time.Duration
	AIRateRPS float64
	NoAI      bool

	// Caching
	CacheTTL          time.Duration
	CacheMaxSizeBytes int64

	// Resolution
	DocumentCharBudget int
	MaxAlternatives    int
	BatchConcurrency   int
}

// Load builds a Config by combining defaults, environment variables, the OS
// keyring, and CLI flags. Caller should pass the root *cobra.Command so
// flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := &Config{
		LogLevel:           DefaultLogLevel,
		JSONLog:            DefaultJSONLog,
		HTTPTimeout:        DefaultHTTPTimeout,
		UserAgent:          DefaultUserAgent,
		RateLimitRPS:       DefaultRateLimitRPS,
		RateLimitBurst:     DefaultRateLimitBurst,
		AIModel:            DefaultAIModel,
		AITimeout:          DefaultAITimeout,
		AIRateRPS:          DefaultAIRateRPS,
		CacheTTL:           DefaultCacheTTL,
		CacheMaxSizeBytes:  DefaultCacheMaxSizeBytes,
		DocumentCharBudget: DefaultDocumentCharBudget,
		MaxAlternatives:    DefaultMaxAlternatives,
		BatchConcurrency:   DefaultBatchConcurrency,
	}

	// Override from environment variables (simple helpers)
	if v := os.Getenv("OMEN_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv("OMEN_AI_MODEL"); v != "" {
		cfg.AIModel = v
	}
	if v := os.Getenv("OMEN_AI_BASE_URL"); v != "" {
		cfg.AIBaseURL = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.AIAPIKey = v
	}
	if v := os.Getenv("OMEN_DOC_BUDGET"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.DocumentCharBudget = n
		}
	}

	// Fall back to the stored credential when the environment has no key
	if cfg.AIAPIKey == "" {
		if stored, err := keys.Load(keys.OpenAIKeyName); err == nil {
			cfg.AIAPIKey = stored
		}
	}

	// Read CLI flags if provided
	if cmd != nil {
		if f := cmd.Flags().Lookup("user-agent"); f != nil {
			if s := f.Value.String(); s != "" {
				cfg.UserAgent = s
			}
		}
		if f := cmd.Flags().Lookup("model"); f != nil {
			if s := f.Value.String(); s != "" {
				cfg.AIModel = s
			}
		}
		if f := cmd.Flags().Lookup("timeout"); f != nil {
			if s := f.Value.String(); s != "" {
				if d, err := time.ParseDuration(s); err == nil {
					cfg.HTTPTimeout = d
				}
			}
		}
		if f := cmd.Flags().Lookup("json-log"); f != nil {
			if f.Value.String() == "true" {
				cfg.JSONLog = true
			}
		}
		if f := cmd.Flags().Lookup("verbose"); f != nil {
			if f.Value.String() == "true" {
				cfg.LogLevel = "debug"
			}
		}
		if f := cmd.Flags().Lookup("no-ai"); f != nil {
			if f.Value.String() == "true" {
				cfg.NoAI = true
			}
		}
		if f := cmd.Flags().Lookup("concurrency"); f != nil {
			if n, err := strconv.Atoi(f.Value.String()); err == nil && n > 0 {
				cfg.BatchConcurrency = n
			}
		}
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
