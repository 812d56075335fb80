package config

import (
	"fmt"
	"net/netip"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"tidyslot/pkg/assignment"
	"tidyslot/pkg/client"
	"tidyslot/pkg/logger"
	"tidyslot/pkg/scheduling"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	Port string

	RateLimitRequests int
	RateLimitWindow   time.Duration
	// TrustedProxies is a comma separated list of addresses or CIDRs whose
	// forwarding headers are believed. Empty means the peer address is the client.
	TrustedProxies string

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	WorkdayOpenHour  int
	WorkdayCloseHour int
	ServiceTimeZone  string

	DefaultStrategy       string
	FallbackDistanceKm    float64
	AssignmentConcurrency int
	AssignmentLockTTL     time.Duration

	MetricsEnabled bool

	Log    *logger.Logger
	Client *client.Client

	location *time.Location
	proxies  []netip.Prefix
}

func Load(serviceName string) *Config {
	cfg := fromEnv()
	cfg.Log = logger.New(logger.Config{
		Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
		Format:    logger.JSON,
		AddSource: true,
		Service:   serviceName,
	})
	cfg.Client = client.NewClient()

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func fromEnv() *Config {
	return &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		RedisAddr:     getEnvStr(EnvRedisAddr, ""),
		RedisPassword: getEnvStr(EnvRedisPassword, ""),
		RedisDB:       getEnvNum(EnvRedisDB, DefaultRedisDB),

		Port: getEnvStr(EnvPort, DefaultPort),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),
		TrustedProxies:    getEnvStr(EnvTrustedProxies, DefaultTrustedProxies),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		WorkdayOpenHour:  getEnvNum(EnvWorkdayOpenHour, DefaultWorkdayOpenHour),
		WorkdayCloseHour: getEnvNum(EnvWorkdayCloseHour, DefaultWorkdayCloseHour),
		ServiceTimeZone:  getEnvStr(EnvServiceTimeZone, DefaultServiceTimeZone),

		DefaultStrategy:       getEnvStr(EnvDefaultStrategy, DefaultStrategy),
		FallbackDistanceKm:    getEnvFloat(EnvFallbackDistanceKm, DefaultFallbackDistanceKm),
		AssignmentConcurrency: getEnvNum(EnvAssignmentConcurrency, DefaultAssignmentConcurrency),
		AssignmentLockTTL:     getEnvDuration(EnvAssignmentLockTTL, DefaultAssignmentLockTTL),

		MetricsEnabled: getEnvBool(EnvMetricsEnabled, DefaultMetricsEnabled),
	}
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

// SetRedis connects the shared Redis client. It is a no-op when REDIS_ADDR is unset.
func (cfg *Config) SetRedis() {
	if cfg.RedisAddr == "" {
		return
	}
	cfg.Client.SetRedis(cfg.Log, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.MongoConnTimeout)
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if len(cfg.MongoURI) < 10 || !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}

	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}
	if cfg.RedisDB < 0 {
		errors = append(errors, fmt.Sprintf("RedisDB cannot be negative, got: %d", cfg.RedisDB))
	}

	if cfg.MongoConnTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}
	if cfg.RateLimitWindow <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}
	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.IdempotencyTTL <= 0 {
		errors = append(errors, fmt.Sprintf("IdempotencyTTL must be positive, got: %s", cfg.IdempotencyTTL))
	}
	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if proxies, err := parseTrustedProxies(cfg.TrustedProxies); err != nil {
		errors = append(errors, fmt.Sprintf("TrustedProxies must list IP addresses or CIDRs: %v", err))
	} else {
		cfg.proxies = proxies
	}

	if cfg.WorkdayOpenHour < 0 || cfg.WorkdayOpenHour > 23 {
		errors = append(errors, fmt.Sprintf("WorkdayOpenHour must be between 0 and 23, got: %d", cfg.WorkdayOpenHour))
	}
	if cfg.WorkdayCloseHour <= cfg.WorkdayOpenHour || cfg.WorkdayCloseHour > 24 {
		errors = append(errors, fmt.Sprintf("WorkdayCloseHour (%d) must be after WorkdayOpenHour (%d) and at most 24", cfg.WorkdayCloseHour, cfg.WorkdayOpenHour))
	}
	if loc, err := time.LoadLocation(cfg.ServiceTimeZone); err != nil {
		errors = append(errors, fmt.Sprintf("ServiceTimeZone must be a valid IANA zone, got: %s", cfg.ServiceTimeZone))
	} else {
		cfg.location = loc
	}

	if _, err := assignment.ParseStrategy(cfg.DefaultStrategy); err != nil {
		errors = append(errors, fmt.Sprintf("DefaultStrategy must be one of %v, got: %s", assignment.StrategyNames(), cfg.DefaultStrategy))
	}
	if cfg.FallbackDistanceKm < 0 {
		errors = append(errors, fmt.Sprintf("FallbackDistanceKm cannot be negative, got: %g", cfg.FallbackDistanceKm))
	}
	if cfg.AssignmentConcurrency <= 0 {
		errors = append(errors, fmt.Sprintf("AssignmentConcurrency must be positive, got: %d", cfg.AssignmentConcurrency))
	}
	if cfg.AssignmentLockTTL <= 0 {
		errors = append(errors, fmt.Sprintf("AssignmentLockTTL must be positive, got: %s", cfg.AssignmentLockTTL))
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"redis_enabled", cfg.RedisAddr != "",
		"port", cfg.Port,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"trusted_proxies", len(cfg.proxies),
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"workday_open_hour", cfg.WorkdayOpenHour,
		"workday_close_hour", cfg.WorkdayCloseHour,
		"service_time_zone", cfg.ServiceTimeZone,
		"default_strategy", cfg.DefaultStrategy,
		"fallback_distance_km", cfg.FallbackDistanceKm,
		"assignment_concurrency", cfg.AssignmentConcurrency,
		"assignment_lock_ttl", cfg.AssignmentLockTTL,
		"metrics_enabled", cfg.MetricsEnabled,
	)
}

// Window returns the configured working day used for slot generation.
func (cfg *Config) Window() scheduling.WorkingWindow {
	return scheduling.WorkingWindow{OpenHour: cfg.WorkdayOpenHour, CloseHour: cfg.WorkdayCloseHour}
}

// Location returns the service time zone. Validate must have succeeded first,
// otherwise UTC is returned.
func (cfg *Config) Location() *time.Location {
	if cfg.location == nil {
		return time.UTC
	}
	return cfg.location
}

// Proxies returns the parsed TrustedProxies. Nil until Validate succeeds.
func (cfg *Config) Proxies() []netip.Prefix {
	return cfg.proxies
}

func parseTrustedProxies(list string) ([]netip.Prefix, error) {
	var prefixes []netip.Prefix
	for _, entry := range strings.Split(list, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, err
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, err
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

func (cfg *Config) Strategy() assignment.Strategy {
	strategy, err := assignment.ParseStrategy(cfg.DefaultStrategy)
	if err != nil {
		return assignment.Balanced
	}
	return strategy
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log)
}
