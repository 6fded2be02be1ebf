// Package config provides application configuration through environment variables.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/allisson/go-env"
	validation "github.com/jellydator/validation"
	"github.com/joho/godotenv"
)

// Supported DB_DRIVER values. An empty driver disables the backup store.
const (
	DBDriverPostgres = "postgres"
	DBDriverMySQL    = "mysql"
)

// Config holds all application configuration.
type Config struct {
	// ServerHost is the host address the server will bind to.
	ServerHost string
	// ServerPort is the port number the server will listen on.
	ServerPort int
	// ShutdownTimeout bounds graceful shutdown of the HTTP servers.
	ShutdownTimeout time.Duration

	// DBDriver is the database driver for the backup store ("postgres", "mysql" or empty to disable).
	DBDriver string
	// DBConnectionString is the connection string for the database.
	DBConnectionString string
	// DBMaxOpenConnections is the maximum number of open connections to the database.
	DBMaxOpenConnections int
	// DBMaxIdleConnections is the maximum number of idle connections in the database pool.
	DBMaxIdleConnections int
	// DBConnMaxLifetime is the maximum amount of time a connection may be reused.
	DBConnMaxLifetime time.Duration
	// BackupRetention is the number of backups kept after each new backup. Zero keeps all.
	BackupRetention int

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// VaultMasterKey is the base64 master key, or its KMS ciphertext when KMS is configured.
	VaultMasterKey string
	// VaultCipherAlgorithm selects the AEAD used to seal stored keys.
	VaultCipherAlgorithm string
	// DefaultRateLimit applies to new keys created without an explicit rate limit.
	DefaultRateLimit int

	// AdminBootstrapSecretHash is the Argon2id hash of the secret required by POST /admin/init.
	// Empty means only the first init succeeds.
	AdminBootstrapSecretHash string
	// AdminTokenExpiration is the lifetime of issued admin tokens. Zero means they never expire.
	AdminTokenExpiration time.Duration

	// RateLimitEnabled indicates whether per-token throttling of admin endpoints is enabled.
	RateLimitEnabled bool
	// RateLimitRequestsPerSec is the number of requests allowed per second per admin token.
	RateLimitRequestsPerSec float64
	// RateLimitBurst is the burst size for admin endpoints throttling.
	RateLimitBurst int

	// ContractRateLimitEnabled indicates whether per-IP throttling of the release endpoint is enabled.
	ContractRateLimitEnabled bool
	// ContractRateLimitRequestsPerSec is the number of requests allowed per second per client IP.
	ContractRateLimitRequestsPerSec float64
	// ContractRateLimitBurst is the burst size for release endpoint throttling.
	ContractRateLimitBurst int

	// CORSEnabled indicates whether CORS is enabled.
	CORSEnabled bool
	// CORSAllowOrigins is a comma-separated list of allowed origins for CORS.
	CORSAllowOrigins string

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
	// MetricsPort is the port number for the metrics server.
	MetricsPort int

	// KMSProvider names the KMS that wraps the master key (awskms, azurekeyvault, gcpkms, hashivault
	// or localsecrets).
	KMSProvider string
	// KMSKeyURI is the URI of the KMS key that wraps the master key.
	KMSKeyURI string
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		// Server configuration
		ServerHost:      env.GetString("SERVER_HOST", "0.0.0.0"),
		ServerPort:      env.GetInt("SERVER_PORT", 8080),
		ShutdownTimeout: env.GetDuration("SHUTDOWN_TIMEOUT_SECONDS", 10, time.Second),

		// Database configuration (backup store)
		DBDriver:             env.GetString("DB_DRIVER", ""),
		DBConnectionString:   env.GetString("DB_CONNECTION_STRING", ""),
		DBMaxOpenConnections: env.GetInt("DB_MAX_OPEN_CONNECTIONS", 25),
		DBMaxIdleConnections: env.GetInt("DB_MAX_IDLE_CONNECTIONS", 5),
		DBConnMaxLifetime:    env.GetDuration("DB_CONN_MAX_LIFETIME", 5, time.Minute),
		BackupRetention:      env.GetInt("BACKUP_RETENTION", 10),

		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// Vault
		VaultMasterKey:       env.GetString("VAULT_MASTER_KEY", ""),
		VaultCipherAlgorithm: env.GetString("VAULT_CIPHER_ALGORITHM", "aes-gcm"),
		DefaultRateLimit:     env.GetInt("DEFAULT_RATE_LIMIT", 100),

		// Admin auth
		AdminBootstrapSecretHash: env.GetString("ADMIN_BOOTSTRAP_SECRET_HASH", ""),
		AdminTokenExpiration:     env.GetDuration("ADMIN_TOKEN_EXPIRATION_SECONDS", 0, time.Second),

		// Rate Limiting (admin endpoints, per token)
		RateLimitEnabled:        env.GetBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequestsPerSec: env.GetFloat64("RATE_LIMIT_REQUESTS_PER_SEC", 10.0),
		RateLimitBurst:          env.GetInt("RATE_LIMIT_BURST", 20),

		// Rate Limiting for the release endpoint (IP-based)
		ContractRateLimitEnabled:        env.GetBool("CONTRACT_RATE_LIMIT_ENABLED", true),
		ContractRateLimitRequestsPerSec: env.GetFloat64("CONTRACT_RATE_LIMIT_REQUESTS_PER_SEC", 20.0),
		ContractRateLimitBurst:          env.GetInt("CONTRACT_RATE_LIMIT_BURST", 40),

		// CORS
		CORSEnabled:      env.GetBool("CORS_ENABLED", false),
		CORSAllowOrigins: env.GetString("CORS_ALLOW_ORIGINS", ""),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "keyvault"),
		MetricsPort:      env.GetInt("METRICS_PORT", 8081),

		// KMS configuration
		KMSProvider: env.GetString("KMS_PROVIDER", ""),
		KMSKeyURI:   env.GetString("KMS_KEY_URI", ""),
	}
}

// Validate checks settings that would otherwise fail late. The master key itself is checked when
// it is decoded.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ServerPort, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.DBDriver, validation.In(DBDriverPostgres, DBDriverMySQL)),
		validation.Field(&c.DBConnectionString, validation.When(c.DBDriver != "", validation.Required)),
		validation.Field(&c.BackupRetention, validation.Min(0)),
		validation.Field(&c.VaultMasterKey, validation.Required),
		validation.Field(&c.VaultCipherAlgorithm, validation.In("aes-gcm", "chacha20-poly1305")),
		validation.Field(&c.DefaultRateLimit, validation.Required, validation.Min(1)),
		validation.Field(&c.KMSKeyURI, validation.When(c.KMSProvider != "", validation.Required)),
		validation.Field(&c.KMSProvider, validation.When(c.KMSKeyURI != "", validation.Required)),
		validation.Field(&c.RateLimitRequestsPerSec, validation.When(c.RateLimitEnabled, validation.Min(0.001))),
		validation.Field(&c.RateLimitBurst, validation.When(c.RateLimitEnabled, validation.Min(1))),
		validation.Field(&c.ContractRateLimitRequestsPerSec,
			validation.When(c.ContractRateLimitEnabled, validation.Min(0.001)),
		),
		validation.Field(&c.ContractRateLimitBurst, validation.When(c.ContractRateLimitEnabled, validation.Min(1))),
	)
}

// BackupsEnabled reports whether a backup store is configured.
func (c *Config) BackupsEnabled() bool {
	return c.DBDriver != ""
}

// KMSEnabled reports whether the master key is KMS-wrapped.
func (c *Config) KMSEnabled() bool {
	return c.KMSProvider != "" && c.KMSKeyURI != ""
}

// GetGinMode returns the appropriate Gin mode based on log level.
func (c *Config) GetGinMode() string {
	switch c.LogLevel {
	case "debug":
		return "debug"
	default:
		return "release"
	}
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
}
