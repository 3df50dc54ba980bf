package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the configuration for values that would misbehave at
// runtime. All problems are reported together.
func (c *Config) Validate() error {
	var problems []string

	if c.APIKey == "" {
		problems = append(problems, "API_KEY must be set")
	}
	if c.Port < MinPort || c.Port > MaxPort {
		problems = append(problems, fmt.Sprintf("PORT must be between %d and %d, got %d", MinPort, MaxPort, c.Port))
	}
	if c.PityThreshold <= 0 {
		problems = append(problems, fmt.Sprintf("PITY_THRESHOLD must be positive, got %d", c.PityThreshold))
	}
	if strings.TrimSpace(c.PityGuaranteedCategory) == "" {
		problems = append(problems, "PITY_GUARANTEED_CATEGORY must not be empty")
	}
	if c.SaveWorkers < 1 {
		problems = append(problems, fmt.Sprintf("SAVE_WORKERS must be at least 1, got %d", c.SaveWorkers))
	}
	if c.SaveQueueSize < 1 {
		problems = append(problems, fmt.Sprintf("SAVE_QUEUE_SIZE must be at least 1, got %d", c.SaveQueueSize))
	}
	if c.ShutdownSaveTimeout <= 0 {
		problems = append(problems, "SHUTDOWN_SAVE_TIMEOUT must be positive")
	}
	if c.CatalogPath == "" {
		problems = append(problems, "CATALOG_PATH must not be empty")
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}
