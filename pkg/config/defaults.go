package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "tidyslot"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultRedisDB = 0

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute
	DefaultTrustedProxies    = ""

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultWorkdayOpenHour  = 9
	DefaultWorkdayCloseHour = 17
	DefaultServiceTimeZone  = "UTC"

	DefaultStrategy              = "balanced"
	DefaultFallbackDistanceKm    = 5.0
	DefaultAssignmentConcurrency = 4
	DefaultAssignmentLockTTL     = 30 * time.Second

	DefaultMetricsEnabled = true
)
