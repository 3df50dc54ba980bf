package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Port        int
	APIKey      string // API key for authentication
	LogLevel    string
	LogFormat   string
	ServiceName string
	Environment string

	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	// Perk catalog
	CatalogPath          string
	CatalogWatchInterval time.Duration

	// Roll mechanics
	PityThreshold          int
	PityGuaranteedCategory string
	DefaultAnimations      bool
	BatchRollDelay         time.Duration

	// Persistence workers
	SaveWorkers         int
	SaveQueueSize       int
	FlushInterval       time.Duration
	ShutdownSaveTimeout time.Duration

	// External booster service
	BoosterURL     string
	BoosterAPIKey  string
	BoosterTimeout time.Duration

	// Profile read cache
	ProfileCacheSize int
	ProfileCacheTTL  time.Duration
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{
		APIKey:      getEnv("API_KEY", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),
		ServiceName: getEnv("SERVICE_NAME", "toolperks"),
		Environment: getEnv("ENVIRONMENT", "dev"),

		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBName:     getEnv("DB_NAME", "toolperks"),

		CatalogPath:            getEnv("CATALOG_PATH", "configs/perks.yaml"),
		PityGuaranteedCategory: getEnv("PITY_GUARANTEED_CATEGORY", DefaultPityGuaranteedCategory),

		BoosterURL:    getEnv("BOOSTER_URL", ""),
		BoosterAPIKey: getEnv("BOOSTER_API_KEY", ""),
	}

	var err error
	if cfg.Port, err = getEnvInt("PORT", DefaultPort); err != nil {
		return nil, err
	}
	if cfg.PityThreshold, err = getEnvInt("PITY_THRESHOLD", DefaultPityThreshold); err != nil {
		return nil, err
	}
	if cfg.SaveWorkers, err = getEnvInt("SAVE_WORKERS", DefaultSaveWorkers); err != nil {
		return nil, err
	}
	if cfg.SaveQueueSize, err = getEnvInt("SAVE_QUEUE_SIZE", DefaultSaveQueueSize); err != nil {
		return nil, err
	}
	if cfg.ProfileCacheSize, err = getEnvInt("PROFILE_CACHE_SIZE", DefaultProfileCacheSize); err != nil {
		return nil, err
	}

	if cfg.CatalogWatchInterval, err = getEnvDuration("CATALOG_WATCH_INTERVAL", DefaultCatalogWatchInterval); err != nil {
		return nil, err
	}
	if cfg.BatchRollDelay, err = getEnvDuration("BATCH_ROLL_DELAY", DefaultBatchRollDelay); err != nil {
		return nil, err
	}
	if cfg.FlushInterval, err = getEnvDuration("FLUSH_INTERVAL", DefaultFlushInterval); err != nil {
		return nil, err
	}
	if cfg.ShutdownSaveTimeout, err = getEnvDuration("SHUTDOWN_SAVE_TIMEOUT", DefaultShutdownSaveTimeout); err != nil {
		return nil, err
	}
	if cfg.BoosterTimeout, err = getEnvDuration("BOOSTER_TIMEOUT", DefaultBoosterTimeout); err != nil {
		return nil, err
	}
	if cfg.ProfileCacheTTL, err = getEnvDuration("PROFILE_CACHE_TTL", DefaultProfileCacheTTL); err != nil {
		return nil, err
	}

	cfg.DefaultAnimations = getEnvBool("DEFAULT_ANIMATIONS", true)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// GetDBConnString returns the PostgreSQL connection string
func (c *Config) GetDBConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return d, nil
}

func getEnvBool(key string, defaultValue bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}
