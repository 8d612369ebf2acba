// Package config loads and validates application configuration.
package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Session  SessionConfig  `mapstructure:"session"  validate:"required"`
	Worker   WorkerConfig   `mapstructure:"worker"   validate:"required"`
}

// ServerConfig contains all HTTP server related settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database related settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains the settings for API access tokens.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// SessionConfig contains the settings for browser sessions.
type SessionConfig struct {
	// LifetimeDays is the maximum age of a login session.
	LifetimeDays int `mapstructure:"lifetime_days" validate:"required,gt=0"`

	// CookieName is the name of the session cookie.
	CookieName string `mapstructure:"cookie_name" validate:"required"`

	// CookieSecure marks the session cookie as HTTPS-only.
	CookieSecure bool `mapstructure:"cookie_secure"`
}

// WorkerConfig contains the settings for the background job worker.
type WorkerConfig struct {
	// Count is the number of concurrent job workers.
	Count int `mapstructure:"count" validate:"required,gt=0"`

	// PollIntervalSeconds is how often the worker polls for pending jobs.
	PollIntervalSeconds int `mapstructure:"poll_interval_seconds" validate:"required,gt=0"`

	// StuckJobMinutes is how long a job may sit in the processing state
	// before startup recovery resets it to pending.
	StuckJobMinutes int `mapstructure:"stuck_job_minutes" validate:"required,gt=0"`
}
