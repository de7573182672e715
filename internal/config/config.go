package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

var validate = validator.New()

// AppConfig represents application-level settings
type AppConfig struct {
	Name         string   `yaml:"name" json:"name" mapstructure:"name" validate:"required"`
	Version      string   `yaml:"version" json:"version" mapstructure:"version" validate:"required"`
	Debug        bool     `yaml:"debug" json:"debug" mapstructure:"debug"`
	SecretKey    string   `yaml:"secret_key" json:"secret_key" mapstructure:"secret_key" validate:"required"`
	AllowedHosts []string `yaml:"allowed_hosts" json:"allowed_hosts" mapstructure:"allowed_hosts"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" json:"host" mapstructure:"host"`
	Port            int           `yaml:"port" json:"port" mapstructure:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" json:"idle_timeout" mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// DatabaseConfig represents relational store configuration.
// URL follows the dj-database-url convention: postgres://... or
// sqlite:///relative/path (sqlite:///:memory: for an in-memory store).
type DatabaseConfig struct {
	URL             string `yaml:"url" json:"url" mapstructure:"url" validate:"required"`
	MaxOpenConns    int    `yaml:"max_open_conns" json:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns" json:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime" json:"conn_max_lifetime" mapstructure:"conn_max_lifetime"` // seconds
	AutoMigrate     bool   `yaml:"auto_migrate" json:"auto_migrate" mapstructure:"auto_migrate"`
}

// CacheConfig represents cache backend configuration
type CacheConfig struct {
	Backend  string `yaml:"backend" json:"backend" mapstructure:"backend" validate:"oneof=memory redis"`
	RedisURL string `yaml:"redis_url" json:"redis_url" mapstructure:"redis_url"`
}

// CORSConfig represents cross-origin settings
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins" mapstructure:"allowed_origins"`
}

// JWTConfig represents token signing configuration
type JWTConfig struct {
	Secret          string `yaml:"secret" json:"secret" mapstructure:"secret" validate:"required"`
	ExpirationHours int    `yaml:"expiration_hours" json:"expiration_hours" mapstructure:"expiration_hours" validate:"min=1"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level string `yaml:"level" json:"level" mapstructure:"level" validate:"oneof=debug info warn error"`
}

// TracingConfig represents OpenTelemetry configuration
type TracingConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled" mapstructure:"enabled"`
}

// Config represents the application configuration
type Config struct {
	App      AppConfig      `yaml:"app" json:"app" mapstructure:"app"`
	Server   ServerConfig   `yaml:"server" json:"server" mapstructure:"server"`
	Database DatabaseConfig `yaml:"database" json:"database" mapstructure:"database"`
	Cache    CacheConfig    `yaml:"cache" json:"cache" mapstructure:"cache"`
	CORS     CORSConfig     `yaml:"cors" json:"cors" mapstructure:"cors"`
	JWT      JWTConfig      `yaml:"jwt" json:"jwt" mapstructure:"jwt"`
	Log      LogConfig      `yaml:"log" json:"log" mapstructure:"log"`
	Tracing  TracingConfig  `yaml:"tracing" json:"tracing" mapstructure:"tracing"`
}

// Load builds the configuration in three layers: struct defaults, an
// optional config.yaml discovered via viper, then environment variables.
// Environment wins over the file.
func Load() (*Config, error) {
	config := &Config{
		App: AppConfig{
			Name:      "backend-api",
			Version:   "1.0.0",
			Debug:     false,
			SecretKey: "insecure-dev-key",
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			URL:             "sqlite:///db.sqlite3",
			MaxOpenConns:    100,
			MaxIdleConns:    10,
			ConnMaxLifetime: 600,
			AutoMigrate:     false,
		},
		Cache: CacheConfig{
			Backend:  "memory",
			RedisURL: "redis://localhost:6379/0",
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		JWT: JWTConfig{
			ExpirationHours: 24,
		},
		Log: LogConfig{
			Level: "info",
		},
	}

	// Load configuration from file
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/backend-api")

	if err := v.ReadInConfig(); err != nil {
		// Config file not found, use default and environment values
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		if err := v.Unmarshal(config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Load configuration from environment variables
	if secretKey := os.Getenv("SECRET_KEY"); secretKey != "" {
		config.App.SecretKey = secretKey
	}
	if debug := os.Getenv("DEBUG"); debug != "" {
		config.App.Debug = debug == "true" || debug == "True" || debug == "1"
	}
	if hosts := os.Getenv("ALLOWED_HOSTS"); hosts != "" {
		config.App.AllowedHosts = splitCSV(hosts)
	}

	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port, err := strconv.Atoi(os.Getenv("SERVER_PORT")); err == nil {
		config.Server.Port = port
	}

	if url := os.Getenv("DATABASE_URL"); url != "" {
		config.Database.URL = url
	}
	if maxOpen, err := strconv.Atoi(os.Getenv("DB_MAX_OPEN_CONNS")); err == nil {
		config.Database.MaxOpenConns = maxOpen
	}
	if maxIdle, err := strconv.Atoi(os.Getenv("DB_MAX_IDLE_CONNS")); err == nil {
		config.Database.MaxIdleConns = maxIdle
	}
	if maxLife, err := strconv.Atoi(os.Getenv("DB_CONN_MAX_LIFETIME")); err == nil {
		config.Database.ConnMaxLifetime = maxLife
	}
	if autoMigrate := os.Getenv("DB_AUTO_MIGRATE"); autoMigrate != "" {
		config.Database.AutoMigrate = autoMigrate == "true" || autoMigrate == "1"
	}

	if backend := os.Getenv("CACHE_BACKEND"); backend != "" {
		config.Cache.Backend = backend
	}
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		config.Cache.RedisURL = redisURL
	}

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		config.CORS.AllowedOrigins = splitCSV(origins)
	}

	if jwtSecret := os.Getenv("JWT_SECRET"); jwtSecret != "" {
		config.JWT.Secret = jwtSecret
	}
	if jwtExpHours, err := strconv.Atoi(os.Getenv("JWT_EXPIRATION_HOURS")); err == nil {
		config.JWT.ExpirationHours = jwtExpHours
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Log.Level = level
	}
	if tracing := os.Getenv("TRACING_ENABLED"); tracing != "" {
		config.Tracing.Enabled = tracing == "true" || tracing == "1"
	}

	// The token secret falls back to the application secret key
	if config.JWT.Secret == "" {
		config.JWT.Secret = config.App.SecretKey
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Validate checks the configuration against its struct constraints
func (c *Config) Validate() error {
	return validate.Struct(c)
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
