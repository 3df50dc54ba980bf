package config

import "time"

// Default configuration values
const (
	DefaultPort                 = 8080
	DefaultPityThreshold        = 500
	DefaultPityGuaranteedCategory = "legendary"
	DefaultSaveWorkers          = 4
	DefaultSaveQueueSize        = 256
	DefaultProfileCacheSize     = 1024
)

// Default durations
const (
	DefaultCatalogWatchInterval = 30 * time.Second
	DefaultBatchRollDelay       = 250 * time.Millisecond
	DefaultFlushInterval        = 5 * time.Minute
	DefaultShutdownSaveTimeout  = 10 * time.Second
	DefaultBoosterTimeout       = 5 * time.Second
	DefaultProfileCacheTTL      = 30 * time.Second
)

// Validation bounds
const (
	MinPort = 1
	MaxPort = 65535
)
