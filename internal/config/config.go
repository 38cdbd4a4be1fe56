// Package config provides configuration management for the ShrtFly integration service.
// Configuration is read from an optional YAML or TOML file and then from environment
// variables, which take precedence. Every value has a sensible default.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// configFileEnv names the environment variable holding the optional config file path.
const configFileEnv = "CONFIG_FILE"

// Config holds all configuration values for the service.
type Config struct {
	Port               string        `yaml:"port" toml:"port"`                                   // HTTP server port (default: 8080)
	OptionStore        string        `yaml:"option_store" toml:"option_store"`                   // Option backend: memory, file, redis or sqlite (default: memory)
	RedisAddr          string        `yaml:"redis_addr" toml:"redis_addr"`                       // Redis server address (default: localhost:6379)
	RedisPassword      string        `yaml:"redis_password" toml:"redis_password"`               // Redis password (default: empty)
	RedisDB            int           `yaml:"redis_db" toml:"redis_db"`                           // Redis database number (default: 0)
	FileStoragePath    string        `yaml:"file_storage_path" toml:"file_storage_path"`         // File store directory (default: ./options)
	SQLitePath         string        `yaml:"sqlite_path" toml:"sqlite_path"`                     // SQLite database file (default: ./options.db)
	AdminToken         string        `yaml:"admin_token" toml:"admin_token"`                     // Bearer token granting administrator rights (default: empty, nobody)
	RateLimitPerSecond int           `yaml:"rate_limit_per_second" toml:"rate_limit_per_second"` // Rate limit per client per second (default: 10)
	AMPPluginActive    bool          `yaml:"amp_plugin_active" toml:"amp_plugin_active"`         // Whether the host runs the AMP plugin (default: false)
	DemoDomainsPath    string        `yaml:"demo_domains_path" toml:"demo_domains_path"`         // Static demo domain list shown on the settings page (default: ./domains)
	LogLevel           string        `yaml:"log_level" toml:"log_level"`                         // debug, info, warn or error (default: info)
	ShutdownTimeout    time.Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout"`           // Graceful shutdown timeout (default: 30s)
}

// Defaults returns a Config populated with the built-in default values.
func Defaults() *Config {
	return &Config{
		Port:               "8080",
		OptionStore:        "memory",
		RedisAddr:          "localhost:6379",
		FileStoragePath:    "./options",
		SQLitePath:         "./options.db",
		RateLimitPerSecond: 10,
		DemoDomainsPath:    "./domains",
		LogLevel:           "info",
		ShutdownTimeout:    30 * time.Second,
	}
}

// Load builds a Config from the defaults, the file named by CONFIG_FILE (if any)
// and the environment. Environment values that cannot be parsed are ignored.
func Load() (*Config, error) {
	cfg := Defaults()

	if path := strings.TrimSpace(os.Getenv(configFileEnv)); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays values from a YAML (.yaml, .yml) or TOML (.toml) file.
// Keys missing from the file keep their current value.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse yaml config %s: %w", path, err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), c); err != nil {
			return fmt.Errorf("parse toml config %s: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported config file type: %s", path)
	}
	return nil
}

// Validate checks values that have no safe fallback.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return fmt.Errorf("port is required")
	}
	if err := ValidateLogLevel(c.LogLevel); err != nil {
		return err
	}
	if c.RateLimitPerSecond <= 0 {
		return fmt.Errorf("rate_limit_per_second must be > 0, got %d", c.RateLimitPerSecond)
	}
	return nil
}

// ValidateLogLevel ensures the log level is one of the supported names.
func ValidateLogLevel(level string) error {
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", level)
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.OptionStore = getEnv("OPTION_STORE", c.OptionStore)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)
	c.RedisDB = getIntEnv("REDIS_DB", c.RedisDB)
	c.FileStoragePath = getEnv("FILE_STORAGE_PATH", c.FileStoragePath)
	c.SQLitePath = getEnv("SQLITE_PATH", c.SQLitePath)
	c.AdminToken = getEnv("ADMIN_TOKEN", c.AdminToken)
	c.RateLimitPerSecond = getIntEnv("RATE_LIMIT_PER_SECOND", c.RateLimitPerSecond)
	c.AMPPluginActive = getBoolEnv("AMP_PLUGIN_ACTIVE", c.AMPPluginActive)
	c.DemoDomainsPath = getEnv("DEMO_DOMAINS_PATH", c.DemoDomainsPath)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.ShutdownTimeout = getDurationEnv("SHUTDOWN_TIMEOUT", c.ShutdownTimeout)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
