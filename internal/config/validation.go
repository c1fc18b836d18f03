package config

import "fmt"

func validate(c *Config) error {
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be > 0")
	}
	if c.CacheMaxSizeBytes <= 0 {
		return fmt.Errorf("cache max size must be > 0")
	}
	if c.DocumentCharBudget < 0 {
		return fmt.Errorf("document char budget must be >= 0")
	}
	if c.BatchConcurrency <= 0 || c.BatchConcurrency > MaxBatchConcurrency {
		return fmt.Errorf("batch concurrency must be between 1 and %d", MaxBatchConcurrency)
	}
	return nil
}
