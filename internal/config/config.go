package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"dataviz/internal/errors"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config represents the complete application configuration
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	Storage   StorageConfig
	Session   SessionConfig
	Data      DataConfig
	Log       LogConfig
	Profiling ProfilingConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver     string
	URL        string
	SQLitePath string
}

// DSN is the data source name handed to sqlx for the configured driver.
func (d DatabaseConfig) DSN() string {
	if d.Driver == DriverPostgres {
		return d.URL
	}
	if d.URL != "" && !isPostgresURL(d.URL) {
		return d.URL
	}
	return d.SQLitePath
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port                 string
	GinMode              string
	MaxUploadBytes       int64
	MaxConcurrentUploads int64
}

// StorageConfig says where uploaded files are kept.
type StorageConfig struct {
	UploadDir string
}

// SessionConfig controls the per-visitor workspace.
type SessionConfig struct {
	TTL        time.Duration
	CookieName string
}

// DataConfig holds data processing settings
type DataConfig struct {
	BlankPolicy string
}

// LogConfig is handed to logging.Setup.
type LogConfig struct {
	Level  string
	Format string
}

// ProfilingConfig holds performance profiling settings
type ProfilingConfig struct {
	Port    string
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{}

	dbConfig, err := loadDatabaseConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load database configuration")
	}
	config.Database = *dbConfig

	config.Server = *loadServerConfig()
	config.Storage = StorageConfig{UploadDir: getEnvOrDefault("UPLOAD_DIR", "./media")}
	config.Session = SessionConfig{
		TTL:        getEnvDurationOrDefault("SESSION_TTL", 24*time.Hour),
		CookieName: getEnvOrDefault("SESSION_COOKIE", "dataviz_session"),
	}
	config.Data = DataConfig{BlankPolicy: getEnvOrDefault("BLANK_POLICY", "zero")}
	config.Log = LogConfig{
		Level:  getEnvOrDefault("LOG_LEVEL", "info"),
		Format: getEnvOrDefault("LOG_FORMAT", "text"),
	}
	config.Profiling = *loadProfilingConfig()

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadDatabaseConfig() (*DatabaseConfig, error) {
	url := os.Getenv("DATABASE_URL")

	driver := strings.ToLower(os.Getenv("DB_DRIVER"))
	if driver == "" {
		driver = DriverSQLite
		if isPostgresURL(url) {
			driver = DriverPostgres
		}
	}

	switch driver {
	case DriverSQLite:
	case DriverPostgres:
		if url == "" {
			return nil, errors.ConfigInvalid("DATABASE_URL is required for the postgres driver")
		}
	default:
		return nil, errors.ConfigInvalid("unsupported DB_DRIVER " + strconv.Quote(driver))
	}

	return &DatabaseConfig{
		Driver:     driver,
		URL:        url,
		SQLitePath: getEnvOrDefault("SQLITE_PATH", "dataviz.db"),
	}, nil
}

func isPostgresURL(url string) bool {
	return strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://")
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:                 getEnvOrDefault("PORT", "8080"),
		GinMode:              getEnvOrDefault("GIN_MODE", "debug"),
		MaxUploadBytes:       int64(getEnvIntOrDefault("MAX_UPLOAD_MB", 50)) << 20,
		MaxConcurrentUploads: int64(getEnvIntOrDefault("MAX_CONCURRENT_UPLOADS", 4)),
	}
}

func loadProfilingConfig() *ProfilingConfig {
	return &ProfilingConfig{
		Port:    getEnvOrDefault("PPROF_PORT", "6060"),
		Enabled: getEnvBoolOrDefault("PPROF_ENABLED", false),
	}
}

func validateConfig(config *Config) error {
	if config.Server.MaxUploadBytes <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_MB must be positive")
	}
	if config.Server.MaxConcurrentUploads <= 0 {
		return errors.ConfigInvalid("MAX_CONCURRENT_UPLOADS must be positive")
	}
	if config.Session.TTL <= 0 {
		return errors.ConfigInvalid("SESSION_TTL must be positive")
	}
	if config.Storage.UploadDir == "" {
		return errors.ConfigInvalid("upload directory is required")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
