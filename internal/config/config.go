// Package config loads process configuration from the environment, an optional
// .env file and an optional config.yaml, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const DefaultPort = 5000

var (
	DefaultAllowedOrigins = []string{
		"https://prescripto-web.vercel.app",
		"https://adminprescripto.vercel.app",
	}
	DefaultAllowedMethods = []string{"GET", "POST", "PUT", "DELETE"}
	DefaultAllowedHeaders = []string{"Content-Type", "Authorization", "token", "atoken", "dtoken"}
)

// Config holds all configuration for the backend.
type Config struct {
	Port            int
	BodyLimitBytes  int64
	RateLimit       int // requests per minute per client IP, 0 disables
	StartupTimeout  time.Duration
	ShutdownTimeout time.Duration

	CORS     CORSConfig
	Database DatabaseConfig
	Storage  StorageConfig
	Log      LogConfig
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
}

// StorageConfig describes the S3-compatible bucket holding doctor images.
type StorageConfig struct {
	Endpoint     string
	AccessKey    string
	SecretKey    string
	Bucket       string
	PublicURL    string
	CreateBucket bool
}

type LogConfig struct {
	Level      string // debug, info, warn, error
	Format     string // console, json
	File       string
	MaxSizeMB  int
	MaxAgeDays int
	MaxBackups int
}

// envKeys maps viper keys to the environment variables that feed them.
var envKeys = map[string]string{
	"port":                  "PORT",
	"body_limit_bytes":      "BODY_LIMIT_BYTES",
	"rate_limit_per_minute": "RATE_LIMIT_PER_MINUTE",
	"startup_timeout":       "STARTUP_TIMEOUT",
	"shutdown_timeout":      "SHUTDOWN_TIMEOUT",
	"cors.allowed_origins":  "CORS_ALLOWED_ORIGINS",
	"cors.allowed_methods":  "CORS_ALLOWED_METHODS",
	"cors.allowed_headers":  "CORS_ALLOWED_HEADERS",
	"database.url":          "DATABASE_URL",
	"database.max_open":     "DB_MAX_OPEN_CONNS",
	"storage.endpoint":      "STORAGE_ENDPOINT",
	"storage.access_key":    "STORAGE_ACCESS_KEY",
	"storage.secret_key":    "STORAGE_SECRET_KEY",
	"storage.bucket":        "STORAGE_BUCKET",
	"storage.public_url":    "STORAGE_PUBLIC_URL",
	"storage.create_bucket": "STORAGE_CREATE_BUCKET",
	"log.level":             "LOG_LEVEL",
	"log.format":            "LOG_FORMAT",
	"log.file":              "LOG_FILE",
	"log.max_size_mb":       "LOG_MAX_SIZE_MB",
	"log.max_age_days":      "LOG_MAX_AGE_DAYS",
	"log.max_backups":       "LOG_MAX_BACKUPS",
}

// Load reads the configuration and validates it. A missing .env or config.yaml
// is not an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("port", strconv.Itoa(DefaultPort))
	v.SetDefault("body_limit_bytes", 100*1024)
	v.SetDefault("rate_limit_per_minute", 0)
	v.SetDefault("startup_timeout", "30s")
	v.SetDefault("shutdown_timeout", "5s")
	v.SetDefault("database.max_open", 10)
	v.SetDefault("storage.bucket", "prescripto")
	v.SetDefault("storage.create_bucket", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("log.max_backups", 3)

	for key, env := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg, err := fromViper(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromViper(v *viper.Viper) (*Config, error) {
	val := NewValidator()

	port := val.Int("PORT", v.GetString("port"))
	startup := val.Duration("STARTUP_TIMEOUT", v.GetString("startup_timeout"))
	shutdown := val.Duration("SHUTDOWN_TIMEOUT", v.GetString("shutdown_timeout"))
	if val.HasErrors() {
		return nil, val
	}

	return &Config{
		Port:            port,
		BodyLimitBytes:  v.GetInt64("body_limit_bytes"),
		RateLimit:       v.GetInt("rate_limit_per_minute"),
		StartupTimeout:  startup,
		ShutdownTimeout: shutdown,
		CORS: CORSConfig{
			AllowedOrigins: listSetting(v, "cors.allowed_origins", DefaultAllowedOrigins),
			AllowedMethods: listSetting(v, "cors.allowed_methods", DefaultAllowedMethods),
			AllowedHeaders: listSetting(v, "cors.allowed_headers", DefaultAllowedHeaders),
		},
		Database: DatabaseConfig{
			URL:          strings.TrimSpace(v.GetString("database.url")),
			MaxOpenConns: v.GetInt("database.max_open"),
		},
		Storage: StorageConfig{
			Endpoint:     strings.TrimSpace(v.GetString("storage.endpoint")),
			AccessKey:    v.GetString("storage.access_key"),
			SecretKey:    v.GetString("storage.secret_key"),
			Bucket:       strings.TrimSpace(v.GetString("storage.bucket")),
			PublicURL:    strings.TrimSpace(v.GetString("storage.public_url")),
			CreateBucket: v.GetBool("storage.create_bucket"),
		},
		Log: LogConfig{
			Level:      strings.ToLower(v.GetString("log.level")),
			Format:     strings.ToLower(v.GetString("log.format")),
			File:       v.GetString("log.file"),
			MaxSizeMB:  v.GetInt("log.max_size_mb"),
			MaxAgeDays: v.GetInt("log.max_age_days"),
			MaxBackups: v.GetInt("log.max_backups"),
		},
	}, nil
}

// Addr returns the listen address in the ":port" form.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// listSetting accepts either a comma separated string (environment) or a
// YAML list (config file).
func listSetting(v *viper.Viper, key string, def []string) []string {
	if !v.IsSet(key) {
		return def
	}
	if raw, ok := v.Get(key).(string); ok {
		if items := splitList(raw); len(items) > 0 {
			return items
		}
		return def
	}
	if items := v.GetStringSlice(key); len(items) > 0 {
		return items
	}
	return def
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
