package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Env           string
	Server        ServerConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	HealthcareAPI HealthcareAPIConfig
	Snapshot      SnapshotConfig
	Redirection   RedirectionConfig
	OTEL          OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host           string
	Port           int
	AllowedOrigins string
}

// DatabaseConfig holds configuration of the read-only statistics mirror
type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// HealthcareAPIConfig holds the upstream statistics API configuration
type HealthcareAPIConfig struct {
	BaseURL        string
	TimeoutSeconds int
	PageSize       int
	MaxPages       int
	RetryAttempts  int
}

// SnapshotConfig controls how facility snapshots are sourced and cached
type SnapshotConfig struct {
	// Source is "api" or "database".
	Source          string
	CacheTTLSeconds int
	// WarmIntervalSeconds refreshes the cached snapshot in the background; 0 disables it.
	WarmIntervalSeconds int
	// ReportingPeriodDays is used to derive occupancy from bed-days when the
	// upstream record has no occupancy value.
	ReportingPeriodDays int
}

// RedirectionConfig gathers every occupancy threshold used by the
// redirection engine. Values are ratios where 1.0 means 100% occupancy.
type RedirectionConfig struct {
	OverloadThreshold      float64
	SpareCapacityThreshold float64
	TargetOccupancy        float64
	WarningThreshold       float64
	HighThreshold          float64
	SevereThreshold        float64
	SearchRadiusKm         float64
	AssumedSpeedKmh        float64
	DistanceWeight         float64
	TopAlternatives        int
	CompatibilityTablePath string
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// DefaultRedirectionConfig returns the thresholds observed in the dashboard
func DefaultRedirectionConfig() RedirectionConfig {
	return RedirectionConfig{
		OverloadThreshold:      0.85,
		SpareCapacityThreshold: 0.70,
		TargetOccupancy:        0.85,
		WarningThreshold:       0.80,
		HighThreshold:          0.90,
		SevereThreshold:        0.95,
		SearchRadiusKm:         15,
		AssumedSpeedKmh:        40,
		DistanceWeight:         0.7,
		TopAlternatives:        5,
	}
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	defaults := DefaultRedirectionConfig()

	cfg := &Config{
		Env: getEnv("ENV", "production"),
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Database: DatabaseConfig{
			Enabled:  getEnvAsBool("DB_ENABLED", false),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "healthcare_statistics"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		HealthcareAPI: HealthcareAPIConfig{
			BaseURL:        getEnv("HEALTHCARE_API_URL", "http://localhost:8000/api"),
			TimeoutSeconds: getEnvAsInt("HEALTHCARE_API_TIMEOUT_SECONDS", 10),
			PageSize:       getEnvAsInt("HEALTHCARE_API_PAGE_SIZE", 100),
			MaxPages:       getEnvAsInt("HEALTHCARE_API_MAX_PAGES", 50),
			RetryAttempts:  getEnvAsInt("HEALTHCARE_API_RETRY_ATTEMPTS", 3),
		},
		Snapshot: SnapshotConfig{
			Source:              getEnv("SNAPSHOT_SOURCE", "api"),
			CacheTTLSeconds:     getEnvAsInt("SNAPSHOT_CACHE_TTL_SECONDS", 60),
			WarmIntervalSeconds: getEnvAsInt("SNAPSHOT_WARM_INTERVAL_SECONDS", 0),
			ReportingPeriodDays: getEnvAsInt("REPORTING_PERIOD_DAYS", 365),
		},
		Redirection: RedirectionConfig{
			OverloadThreshold:      getEnvAsFloat("REDIRECT_OVERLOAD_THRESHOLD", defaults.OverloadThreshold),
			SpareCapacityThreshold: getEnvAsFloat("REDIRECT_SPARE_CAPACITY_THRESHOLD", defaults.SpareCapacityThreshold),
			TargetOccupancy:        getEnvAsFloat("REDIRECT_TARGET_OCCUPANCY", defaults.TargetOccupancy),
			WarningThreshold:       getEnvAsFloat("REDIRECT_WARNING_THRESHOLD", defaults.WarningThreshold),
			HighThreshold:          getEnvAsFloat("REDIRECT_HIGH_THRESHOLD", defaults.HighThreshold),
			SevereThreshold:        getEnvAsFloat("REDIRECT_SEVERE_THRESHOLD", defaults.SevereThreshold),
			SearchRadiusKm:         getEnvAsFloat("REDIRECT_SEARCH_RADIUS_KM", defaults.SearchRadiusKm),
			AssumedSpeedKmh:        getEnvAsFloat("REDIRECT_ASSUMED_SPEED_KMH", defaults.AssumedSpeedKmh),
			DistanceWeight:         getEnvAsFloat("REDIRECT_DISTANCE_WEIGHT", defaults.DistanceWeight),
			TopAlternatives:        getEnvAsInt("REDIRECT_TOP_ALTERNATIVES", defaults.TopAlternatives),
			CompatibilityTablePath: getEnv("COMPATIBILITY_TABLE_PATH", ""),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "healthcare-capacity"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}

	if err := cfg.Redirection.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the thresholds describe a usable configuration
func (c RedirectionConfig) Validate() error {
	if c.TargetOccupancy <= 0 {
		return fmt.Errorf("target occupancy must be positive, got %v", c.TargetOccupancy)
	}
	if c.SpareCapacityThreshold > c.OverloadThreshold {
		return fmt.Errorf("spare capacity threshold %v must not exceed overload threshold %v",
			c.SpareCapacityThreshold, c.OverloadThreshold)
	}
	if c.SearchRadiusKm < 0 {
		return fmt.Errorf("search radius must not be negative, got %v", c.SearchRadiusKm)
	}
	if c.DistanceWeight < 0 || c.DistanceWeight > 1 {
		return fmt.Errorf("distance weight must be within [0, 1], got %v", c.DistanceWeight)
	}
	return nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Timeout returns the per-request timeout of the upstream API
func (c *HealthcareAPIConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
