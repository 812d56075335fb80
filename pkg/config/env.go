package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"
	EnvTrustedProxies    = "TRUSTED_PROXIES"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvWorkdayOpenHour  = "WORKDAY_OPEN_HOUR"
	EnvWorkdayCloseHour = "WORKDAY_CLOSE_HOUR"
	EnvServiceTimeZone  = "SERVICE_TIME_ZONE"

	EnvDefaultStrategy       = "ASSIGNMENT_DEFAULT_STRATEGY"
	EnvFallbackDistanceKm    = "ASSIGNMENT_FALLBACK_DISTANCE_KM"
	EnvAssignmentConcurrency = "ASSIGNMENT_CONCURRENCY"
	EnvAssignmentLockTTL     = "ASSIGNMENT_LOCK_TTL"

	EnvMetricsEnabled = "METRICS_ENABLED"
)
