// Package config defines the global configuration structure for the AirWatch
// backend. Configuration is loaded once at process startup and is immutable
// thereafter, following 12-Factor principles: values come from the OS
// environment, with an optional .env file for local development.
//
// Any missing required value or invalid format fails the process immediately
// on startup (fail fast).
package config

import (
	"time"

	"airwatch/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret type
// used for tokens and connection strings.
type SecretString = types.SecretString

// Config is the top-level configuration struct. Sub-components receive only
// the specific subsets they require.
type Config struct {
	Environment string `envconfig:"APP_ENV" default:"local" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"airwatch-api"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	Server   ServerConfig
	Database DatabaseConfig
	Provider ProviderConfig
	Geocode  GeocodeConfig
	Push     PushConfig
	Sweep    SweepConfig
	Security SecurityConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8080"`
}

// DatabaseConfig holds database connection and pool tuning parameters.
type DatabaseConfig struct {
	URL SecretString `envconfig:"DATABASE_URL" validate:"required"`

	MaxConns          int           `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns          int           `envconfig:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime   time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	AcquireTimeout    time.Duration `envconfig:"DB_ACQUIRE_TIMEOUT" default:"2s"`
	HealthCheckPeriod time.Duration `envconfig:"DB_HEALTH_CHECK_PERIOD" default:"1m"`
}

// ProviderConfig holds air-quality provider settings. WAQIToken is optional;
// when empty the primary provider is skipped and readings come from the
// secondary provider only.
type ProviderConfig struct {
	WAQIToken     SecretString  `envconfig:"WAQI_TOKEN"`
	WAQIBaseURL   string        `envconfig:"WAQI_BASE_URL" default:"https://api.waqi.info"`
	OpenAQBaseURL string        `envconfig:"OPENAQ_BASE_URL" default:"https://api.openaq.org"`
	Timeout       time.Duration `envconfig:"PROVIDER_TIMEOUT" default:"10s"`
	UserAgent     string        `envconfig:"PROVIDER_USER_AGENT" default:"air-quality-app/1.0 (+https://example.com)"`
	// Outbound request budget shared by the sweep, in requests per second.
	RateLimit float64 `envconfig:"PROVIDER_RATE_LIMIT" default:"5"`
	RateBurst int     `envconfig:"PROVIDER_RATE_BURST" default:"5"`
}

// GeocodeConfig holds the Nominatim geocoding settings.
type GeocodeConfig struct {
	BaseURL string        `envconfig:"GEOCODE_BASE_URL" default:"https://nominatim.openstreetmap.org"`
	Timeout time.Duration `envconfig:"GEOCODE_TIMEOUT" default:"10s"`
}

// PushConfig holds push-notification delivery settings.
type PushConfig struct {
	FCMServerKey SecretString  `envconfig:"FCM_SERVER_KEY" validate:"required"`
	FCMBaseURL   string        `envconfig:"FCM_BASE_URL" default:"https://fcm.googleapis.com"`
	Timeout      time.Duration `envconfig:"PUSH_TIMEOUT" default:"10s"`
}

// SweepConfig holds the periodic alert sweep settings.
type SweepConfig struct {
	// Interval between sweeps of the full alert table.
	Interval time.Duration `envconfig:"SWEEP_INTERVAL" default:"15m"`
	// Cooldown is the minimum gap between two notifications for one alert.
	Cooldown time.Duration `envconfig:"NOTIFY_COOLDOWN" default:"1h"`
	// Concurrency bounds how many alerts are evaluated in parallel.
	Concurrency int `envconfig:"SWEEP_CONCURRENCY" default:"4"`
}

// SecurityConfig holds CORS settings for the browser-facing API.
type SecurityConfig struct {
	CorsAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}
