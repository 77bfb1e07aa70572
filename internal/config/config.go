// Package config handles application configuration loading and management.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig
	Arango    ArangoConfig
	Cache     CacheConfig
	DocDB     DocDBConfig
	Vault     VaultConfig
	Bootstrap BootstrapConfig
	Gateway   GatewayConfig
	Log       LogConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host    string
	Port    int
	GinMode string
}

// Address returns the server address in host:port format.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ArangoConfig holds the ArangoDB connection settings.
type ArangoConfig struct {
	URL      string
	Username string
	// Password is either a literal or a vault reference such as dotenv://ARANGO_ROOT_PASSWORD.
	Password string
	Timeout  time.Duration
}

// CacheConfig holds cache-related configuration.
type CacheConfig struct {
	Enabled  bool
	Type     string
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

// DocDBConfig holds document database configuration for exports.
type DocDBConfig struct {
	Enabled  bool
	Type     string
	URI      string
	Database string
}

// VaultConfig holds vault configuration.
type VaultConfig struct {
	Type    string
	EnvFile string
}

// BootstrapConfig holds the settings for downloading and starting a local server.
type BootstrapConfig struct {
	Version        string
	DownloadURL    string
	InstallDir     string
	Port           int
	StartupTimeout time.Duration
	ExtraArgs      []string
}

// GatewayConfig holds gateway API settings.
type GatewayConfig struct {
	APIKey          string
	CORSOrigins     []string
	ExportChunkSize int
	ExportWorkers   int
	ExportQueueSize int
	QueryBatchSize  int
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:    getEnv("SERVER_HOST", "0.0.0.0"),
			Port:    getEnvAsInt("SERVER_PORT", 8080),
			GinMode: getEnv("GIN_MODE", "debug"),
		},
		Arango: ArangoConfig{
			URL:      getEnv("ARANGO_URL", "http://localhost:8529"),
			Username: getEnv("ARANGO_USERNAME", ""),
			Password: getEnv("ARANGO_PASSWORD", ""),
			Timeout:  getEnvAsDuration("ARANGO_TIMEOUT", 30*time.Second),
		},
		Cache: CacheConfig{
			Enabled:  getEnvAsBool("CACHE_ENABLED", true),
			Type:     getEnv("CACHE_TYPE", "redis"),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			TTL:      time.Duration(getEnvAsInt("CACHE_TTL_SECONDS", 600)) * time.Second,
		},
		DocDB: DocDBConfig{
			Enabled:  getEnvAsBool("DOCDB_ENABLED", false),
			Type:     getEnv("DOCDB_TYPE", "mongodb"),
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "arango_export"),
		},
		Vault: VaultConfig{
			Type:    getEnv("VAULT_TYPE", "dotenv"),
			EnvFile: getEnv("VAULT_ENV_FILE", ""),
		},
		Bootstrap: BootstrapConfig{
			Version:        getEnv("ARANGO_VERSION", "1.4.0"),
			DownloadURL:    getEnv("ARANGO_DOWNLOAD_URL", "https://www.arangodb.org/repositories/travisCI/arangodb-%s.tar.gz"),
			InstallDir:     getEnv("ARANGO_INSTALL_DIR", "arangodb"),
			Port:           getEnvAsInt("ARANGO_PORT", 8529),
			StartupTimeout: getEnvAsDuration("ARANGO_STARTUP_TIMEOUT", 60*time.Second),
			ExtraArgs:      getEnvAsList("ARANGO_EXTRA_ARGS"),
		},
		Gateway: GatewayConfig{
			APIKey:          getEnv("GATEWAY_API_KEY", ""),
			CORSOrigins:     getEnvAsList("GATEWAY_CORS_ORIGINS"),
			ExportChunkSize: getEnvAsInt("EXPORT_CHUNK_SIZE", 500),
			ExportWorkers:   getEnvAsInt("EXPORT_WORKERS", 2),
			ExportQueueSize: getEnvAsInt("EXPORT_QUEUE_SIZE", 32),
			QueryBatchSize:  getEnvAsInt("QUERY_BATCH_SIZE", 1000),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid SERVER_PORT: %d", c.Server.Port)
	}
	if c.Bootstrap.Port <= 0 || c.Bootstrap.Port > 65535 {
		return fmt.Errorf("invalid ARANGO_PORT: %d", c.Bootstrap.Port)
	}
	if c.Gateway.ExportChunkSize <= 0 {
		return fmt.Errorf("invalid EXPORT_CHUNK_SIZE: %d", c.Gateway.ExportChunkSize)
	}
	if c.Gateway.ExportWorkers <= 0 {
		return fmt.Errorf("invalid EXPORT_WORKERS: %d", c.Gateway.ExportWorkers)
	}
	if c.Gateway.ExportQueueSize <= 0 {
		return fmt.Errorf("invalid EXPORT_QUEUE_SIZE: %d", c.Gateway.ExportQueueSize)
	}
	if c.Gateway.QueryBatchSize <= 0 {
		return fmt.Errorf("invalid QUERY_BATCH_SIZE: %d", c.Gateway.QueryBatchSize)
	}
	return nil
}

// getEnv gets an environment variable with a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool gets an environment variable as a boolean with a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("45s") or plain seconds ("45").
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return defaultValue
}

// getEnvAsList splits a whitespace separated variable.
func getEnvAsList(key string) []string {
	return strings.Fields(os.Getenv(key))
}
