package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ValidationError describes one invalid setting.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation failed for %s: %s", e.Field, e.Message)
}

// Validator collects every configuration problem so startup can report them
// all at once instead of failing on the first.
type Validator struct {
	errors []ValidationError
}

func NewValidator() *Validator {
	return &Validator{errors: make([]ValidationError, 0)}
}

func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, ValidationError{Field: field, Message: message})
}

func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

func (v *Validator) Errors() []ValidationError {
	return v.errors
}

// Error formats all collected errors, one per line.
func (v *Validator) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d error(s):\n", len(v.errors)))
	for i, err := range v.errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Int parses an integer setting, recording an error if it is not one.
func (v *Validator) Int(key, raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		v.AddError(key, "must be a valid integer")
		return 0
	}
	return n
}

// Duration parses a Go duration string such as "5s".
func (v *Validator) Duration(key, raw string) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		v.AddError(key, fmt.Sprintf("invalid duration %q", raw))
		return 0
	}
	return d
}

func (v *Validator) Required(key, value string) {
	if value == "" {
		v.AddError(key, "required setting not set")
	}
}

func (v *Validator) Port(key string, port int) {
	if port < 1 || port > 65535 {
		v.AddError(key, "port must be between 1 and 65535")
	}
}

func (v *Validator) Positive(key string, n int64) {
	if n <= 0 {
		v.AddError(key, "must be a positive integer")
	}
}

func (v *Validator) NonNegative(key string, n int64) {
	if n < 0 {
		v.AddError(key, "must not be negative")
	}
}

// URL checks that value parses and uses one of the given schemes.
func (v *Validator) URL(key, value string, schemes ...string) {
	if value == "" {
		return
	}
	parsed, err := url.Parse(value)
	if err != nil {
		v.AddError(key, fmt.Sprintf("invalid URL format: %v", err))
		return
	}
	if parsed.Host == "" {
		v.AddError(key, "URL must include a host")
		return
	}
	for _, s := range schemes {
		if parsed.Scheme == s {
			return
		}
	}
	v.AddError(key, fmt.Sprintf("URL scheme must be one of: %s", strings.Join(schemes, ", ")))
}

func (v *Validator) Enum(key, value string, allowed []string) {
	for _, opt := range allowed {
		if value == opt {
			return
		}
	}
	v.AddError(key, fmt.Sprintf("must be one of: %s (got: %s)", strings.Join(allowed, ", "), value))
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	v := NewValidator()

	v.Port("PORT", c.Port)
	v.Positive("BODY_LIMIT_BYTES", c.BodyLimitBytes)
	v.NonNegative("RATE_LIMIT_PER_MINUTE", int64(c.RateLimit))
	v.Positive("STARTUP_TIMEOUT", int64(c.StartupTimeout))
	v.Positive("SHUTDOWN_TIMEOUT", int64(c.ShutdownTimeout))

	if len(c.CORS.AllowedOrigins) == 0 {
		v.AddError("CORS_ALLOWED_ORIGINS", "at least one origin is required")
	}
	for _, origin := range c.CORS.AllowedOrigins {
		if origin == "*" {
			continue
		}
		v.URL("CORS_ALLOWED_ORIGINS", origin, "http", "https")
	}
	for _, m := range c.CORS.AllowedMethods {
		v.Enum("CORS_ALLOWED_METHODS", strings.ToUpper(m),
			[]string{"GET", "HEAD", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	}

	v.Required("DATABASE_URL", c.Database.URL)
	v.URL("DATABASE_URL", c.Database.URL, "postgres", "postgresql")
	v.Positive("DB_MAX_OPEN_CONNS", int64(c.Database.MaxOpenConns))

	v.Required("STORAGE_ENDPOINT", c.Storage.Endpoint)
	v.Required("STORAGE_ACCESS_KEY", c.Storage.AccessKey)
	v.Required("STORAGE_SECRET_KEY", c.Storage.SecretKey)
	v.Required("STORAGE_BUCKET", c.Storage.Bucket)
	v.URL("STORAGE_PUBLIC_URL", c.Storage.PublicURL, "http", "https")

	v.Enum("LOG_LEVEL", c.Log.Level, []string{"debug", "info", "warn", "error"})
	v.Enum("LOG_FORMAT", c.Log.Format, []string{"console", "json"})

	if v.HasErrors() {
		return v
	}
	return nil
}
