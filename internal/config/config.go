package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Session  SessionConfig  `mapstructure:"session"  validate:"required"`
	Uploads  UploadConfig   `mapstructure:"uploads"  validate:"required"`
	HTTP     HTTPConfig     `mapstructure:"http"     validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// BaseURL is the externally visible origin, used in startup logs and as the default CORS origin.
	BaseURL string `mapstructure:"base_url" validate:"omitempty,url"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url"            validate:"required,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gt=0"`
}

// AuthConfig contains password hashing and session cookie settings.
type AuthConfig struct {
	// SessionSecret signs the session cookie token.
	SessionSecret     string `mapstructure:"session_secret"      validate:"required,min=32"`
	SessionTTLMinutes int    `mapstructure:"session_ttl_minutes" validate:"gt=0"`
	BcryptCost        int    `mapstructure:"bcrypt_cost"         validate:"gte=4,lte=31"`
	CookieName        string `mapstructure:"cookie_name"         validate:"required"`
	CookieSecure      bool   `mapstructure:"cookie_secure"`
}

// SessionConfig selects where sessions are persisted.
type SessionConfig struct {
	Backend                string `mapstructure:"backend"                  validate:"required,oneof=postgres badger"`
	BadgerDir              string `mapstructure:"badger_dir"               validate:"required_if=Backend badger"`
	CleanupIntervalMinutes int    `mapstructure:"cleanup_interval_minutes" validate:"gt=0"`
}

// UploadConfig constrains certificate uploads.
type UploadConfig struct {
	Dir               string   `mapstructure:"dir"                validate:"required"`
	MaxBytes          int64    `mapstructure:"max_bytes"          validate:"gt=0"`
	AllowedExtensions []string `mapstructure:"allowed_extensions" validate:"min=1,dive,startswith=."`
}

// HTTPConfig holds transport hardening settings.
type HTTPConfig struct {
	// RateLimitRequests is the per-IP budget for login and register posts; 0 disables limiting.
	RateLimitRequests      int      `mapstructure:"rate_limit_requests"       validate:"gte=0"`
	RateLimitWindowSeconds int      `mapstructure:"rate_limit_window_seconds" validate:"gt=0"`
	CORSAllowedOrigins     []string `mapstructure:"cors_allowed_origins"`
}
