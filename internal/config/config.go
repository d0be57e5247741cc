package config

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Backend BackendConfig
	Redis   RedisConfig
	Session SessionConfig
	Display DisplayConfig
	Storage StorageConfig
	Audit   AuditConfig
	Logging LoggingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string
	Environment     string
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

// BackendConfig points at the health REST backend
type BackendConfig struct {
	URL     string
	Timeout time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// SessionConfig holds token persistence configuration
type SessionConfig struct {
	EncryptionKey string // base64, 32 bytes once decoded
	TokenFile     string
	WorkspaceTTL  time.Duration
}

// DisplayConfig holds presentation settings
type DisplayConfig struct {
	Timezone string
}

// StorageConfig holds Azure Blob Storage configuration for export archiving
type StorageConfig struct {
	AccountName     string
	AccountKey      string
	ExportContainer string
}

// AuditConfig holds audit log configuration
type AuditConfig struct {
	MaxEntries int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string // json or console; empty follows the environment
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile reads configuration from an optional file, then environment variables
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.AutomaticEnv()
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.shutdowntimeout", 30*time.Second)
	v.SetDefault("server.allowedorigins", []string{"http://localhost:3000"})

	v.SetDefault("backend.url", "http://localhost:5000/api")
	v.SetDefault("backend.timeout", 15*time.Second)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "dashboard:")

	v.SetDefault("session.workspacettl", 7*24*time.Hour)

	v.SetDefault("display.timezone", "Asia/Bangkok")

	v.SetDefault("storage.exportcontainer", "report-exports")

	v.SetDefault("audit.maxentries", 1000)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "")
}

// bindEnvVars binds environment variables to config keys
func bindEnvVars(v *viper.Viper) {
	// Server
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.environment", "ENV", "ENVIRONMENT")
	v.BindEnv("server.allowedorigins", "CORS_ALLOWED_ORIGINS")

	// Backend
	v.BindEnv("backend.url", "BACKEND_URL", "API_BASE_URL")
	v.BindEnv("backend.timeout", "BACKEND_TIMEOUT")

	// Redis
	v.BindEnv("redis.enabled", "REDIS_ENABLED")
	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.db", "REDIS_DB")

	// Session
	v.BindEnv("session.encryptionkey", "SESSION_ENCRYPTION_KEY")
	v.BindEnv("session.tokenfile", "DASHCTL_TOKEN_FILE")

	v.BindEnv("display.timezone", "DISPLAY_TIMEZONE")

	// Azure Storage
	v.BindEnv("storage.accountname", "AZURE_STORAGE_ACCOUNT_NAME")
	v.BindEnv("storage.accountkey", "AZURE_STORAGE_ACCOUNT_KEY")
	v.BindEnv("storage.exportcontainer", "AZURE_STORAGE_EXPORT_CONTAINER")

	v.BindEnv("audit.maxentries", "AUDIT_MAX_ENTRIES")

	// Logging
	v.BindEnv("logging.level", "LOG_LEVEL")
	v.BindEnv("logging.format", "LOG_FORMAT")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Backend.URL == "" {
		return fmt.Errorf("backend.url is required")
	}
	u, err := url.Parse(c.Backend.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("backend.url must be an absolute URL")
	}

	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("backend.timeout must be positive")
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required when redis is enabled")
	}

	if c.Session.EncryptionKey != "" {
		key, err := base64.StdEncoding.DecodeString(c.Session.EncryptionKey)
		if err != nil || len(key) != 32 {
			return fmt.Errorf("session.encryptionkey must be 32 bytes, base64 encoded")
		}
	}

	if _, err := c.Display.Location(); err != nil {
		return err
	}

	if (c.Storage.AccountName == "") != (c.Storage.AccountKey == "") {
		return fmt.Errorf("azure storage needs both account name and key")
	}

	return nil
}

// Location returns the display time zone
func (d DisplayConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(d.Timezone)
	if err != nil {
		return nil, fmt.Errorf("display.timezone %q is not a known time zone: %w", d.Timezone, err)
	}
	return loc, nil
}

// Enabled reports whether export archiving is configured
func (s StorageConfig) Enabled() bool {
	return s.AccountName != "" && s.AccountKey != "" && s.ExportContainer != ""
}

// IsProduction reports whether the server runs in production mode
func (s ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}
