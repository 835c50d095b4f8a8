package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. GUIDEMATCH_SERVER_PORT.
const EnvPrefix = "GUIDEMATCH"

// Load configuration from environment variables and optionally config files.
// A .env file in the working directory is loaded first without overriding
// variables that are already set. Environment variables take precedence over
// values from config.yaml. Returns a populated Config struct or an error if
// loading/validation fails.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can resolve it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.base_url", "")

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 10)

	v.SetDefault("auth.session_secret", "")
	v.SetDefault("auth.session_ttl_minutes", 24*60)
	v.SetDefault("auth.bcrypt_cost", 12)
	v.SetDefault("auth.cookie_name", "guidematch_session")
	v.SetDefault("auth.cookie_secure", false)

	v.SetDefault("session.backend", "postgres")
	v.SetDefault("session.badger_dir", "")
	v.SetDefault("session.cleanup_interval_minutes", 15)

	v.SetDefault("uploads.dir", "uploads")
	v.SetDefault("uploads.max_bytes", 5<<20)
	v.SetDefault("uploads.allowed_extensions", []string{".pdf", ".png", ".jpg", ".jpeg"})

	v.SetDefault("http.rate_limit_requests", 20)
	v.SetDefault("http.rate_limit_window_seconds", 60)
	v.SetDefault("http.cors_allowed_origins", []string{})
}
