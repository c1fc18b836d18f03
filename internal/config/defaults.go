package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel           = "info"
	DefaultJSONLog            = false
	DefaultUserAgent          = "Omen/1.0 (+https://github.com/Simon-Bruno/omen-backend-sub000)"
	DefaultHTTPTimeout        = 30 * time.Second
	DefaultRateLimitRPS       = 5.0
	DefaultRateLimitBurst     = 10
	DefaultAIModel            = "gpt-4o"
	DefaultAITimeout          = 45 * time.Second
	DefaultAIRateRPS          = 2.0
	DefaultCacheTTL           = 5 * time.Minute
	DefaultCacheMaxSizeBytes  = 100 * 1024 * 1024 // 100MB
	DefaultDocumentCharBudget = 150_000
	DefaultMaxAlternatives    = 5
	DefaultBatchConcurrency   = 4
	MaxBatchConcurrency       = 16
)
