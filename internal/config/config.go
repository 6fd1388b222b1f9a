// Package config provides application configuration management.
// It loads configuration from environment variables with support for .env files.
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Session store backends.
const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logging   LoggingConfig
	App       AppConfig
	Upstream  UpstreamConfig
	Gateway   GatewayConfig
	Redirect  RedirectConfig
	Session   SessionConfig
	RateLimit RateLimitConfig
	Poll      PollConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int           `env:"SERVER_PORT" envDefault:"8080"`
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Env string `env:"APP_ENV" envDefault:"development"`
}

// UpstreamConfig holds the flight search API credentials and endpoints.
type UpstreamConfig struct {
	Token       string `env:"TRAVELPAYOUTS_API_TOKEN"`
	Marker      string `env:"TRAVELPAYOUTS_MARKER"`
	LiveEnabled bool   `env:"LIVE_SEARCH_ENABLED" envDefault:"false"`

	APIBaseURL    string        `env:"UPSTREAM_API_BASE_URL" envDefault:"https://api.travelpayouts.com"`
	SearchBaseURL string        `env:"UPSTREAM_SEARCH_BASE_URL" envDefault:"https://tickets-api.travelpayouts.com"`
	RealHost      string        `env:"UPSTREAM_REAL_HOST"`
	Locale        string        `env:"UPSTREAM_LOCALE" envDefault:"en"`
	Market        string        `env:"UPSTREAM_MARKET" envDefault:"us"`
	Timeout       time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"15s"`

	RateLimitRPS   float64 `env:"UPSTREAM_RATE_LIMIT_RPS" envDefault:"10"`
	RateLimitBurst int     `env:"UPSTREAM_RATE_LIMIT_BURST" envDefault:"20"`
}

// GatewayConfig holds search gateway policy.
type GatewayConfig struct {
	MaxClickResolutions int           `env:"GATEWAY_MAX_CLICK_RESOLUTIONS" envDefault:"10"`
	ClickTimeout        time.Duration `env:"GATEWAY_CLICK_TIMEOUT" envDefault:"5s"`
	PollResultsLimit    int           `env:"GATEWAY_POLL_RESULTS_LIMIT" envDefault:"100"`
	DemoOffers          int           `env:"GATEWAY_DEMO_OFFERS" envDefault:"12"`
}

// RedirectConfig holds the booking redirect policy.
type RedirectConfig struct {
	AggregatorDomains []string `env:"REDIRECT_AGGREGATOR_DOMAINS" envDefault:"aviasales.com,aviasales.ru" envSeparator:","`
}

// SessionConfig selects and configures the search session store.
type SessionConfig struct {
	Store         string        `env:"SESSION_STORE" envDefault:"memory"`
	TTL           time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	RedisAddr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
}

// RateLimitConfig holds the inbound per-IP rate limit.
type RateLimitConfig struct {
	Enabled bool    `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RPS     float64 `env:"RATE_LIMIT_RPS" envDefault:"5"`
	Burst   int     `env:"RATE_LIMIT_BURST" envDefault:"20"`
}

// PollConfig holds the client poll loop policy used by the CLI.
type PollConfig struct {
	Interval    time.Duration `env:"POLL_INTERVAL" envDefault:"1500ms"`
	MaxAttempts int           `env:"POLL_MAX_ATTEMPTS" envDefault:"20"`
	Timeout     time.Duration `env:"POLL_TIMEOUT" envDefault:"60s"`
}

// Load reads configuration from environment variables.
// It attempts to load a .env file first (optional - won't fail if missing).
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics on error.
// Use this in main() where configuration is required to start.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// validate checks configuration values for correctness.
func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout <= 0 {
		return fmt.Errorf("SERVER_READ_TIMEOUT must be positive")
	}
	if cfg.Server.WriteTimeout <= 0 {
		return fmt.Errorf("SERVER_WRITE_TIMEOUT must be positive")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error; got %q", cfg.Logging.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console; got %q", cfg.Logging.Format)
	}
	validEnvs := map[string]bool{"development": true, "staging": true, "production": true}
	if !validEnvs[cfg.App.Env] {
		return fmt.Errorf("APP_ENV must be one of: development, staging, production; got %q", cfg.App.Env)
	}

	if err := validateUpstream(&cfg.Upstream); err != nil {
		return err
	}

	if cfg.Gateway.MaxClickResolutions < 1 {
		return fmt.Errorf("GATEWAY_MAX_CLICK_RESOLUTIONS must be at least 1, got %d", cfg.Gateway.MaxClickResolutions)
	}
	if cfg.Gateway.ClickTimeout <= 0 {
		return fmt.Errorf("GATEWAY_CLICK_TIMEOUT must be positive")
	}
	if cfg.Gateway.PollResultsLimit < 1 {
		return fmt.Errorf("GATEWAY_POLL_RESULTS_LIMIT must be at least 1, got %d", cfg.Gateway.PollResultsLimit)
	}
	if cfg.Gateway.DemoOffers < 1 {
		return fmt.Errorf("GATEWAY_DEMO_OFFERS must be at least 1, got %d", cfg.Gateway.DemoOffers)
	}

	if len(cfg.Redirect.AggregatorDomains) == 0 {
		return fmt.Errorf("REDIRECT_AGGREGATOR_DOMAINS must not be empty")
	}

	switch cfg.Session.Store {
	case SessionStoreMemory:
	case SessionStoreRedis:
		if cfg.Session.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when SESSION_STORE=redis")
		}
	default:
		return fmt.Errorf("SESSION_STORE must be one of: memory, redis; got %q", cfg.Session.Store)
	}
	if cfg.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}

	if cfg.RateLimit.Enabled && (cfg.RateLimit.RPS <= 0 || cfg.RateLimit.Burst < 1) {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive when rate limiting is enabled")
	}

	if cfg.Poll.Interval <= 0 || cfg.Poll.Timeout <= 0 {
		return fmt.Errorf("POLL_INTERVAL and POLL_TIMEOUT must be positive")
	}
	if cfg.Poll.MaxAttempts < 1 {
		return fmt.Errorf("POLL_MAX_ATTEMPTS must be at least 1, got %d", cfg.Poll.MaxAttempts)
	}
	if cfg.Poll.Interval >= cfg.Poll.Timeout {
		return fmt.Errorf("POLL_INTERVAL (%s) should be less than POLL_TIMEOUT (%s)", cfg.Poll.Interval, cfg.Poll.Timeout)
	}

	return nil
}

func validateUpstream(u *UpstreamConfig) error {
	if u.LiveEnabled {
		if u.Token == "" {
			return fmt.Errorf("TRAVELPAYOUTS_API_TOKEN is required when LIVE_SEARCH_ENABLED=true")
		}
		if u.Marker == "" {
			return fmt.Errorf("TRAVELPAYOUTS_MARKER is required when LIVE_SEARCH_ENABLED=true")
		}
	}

	for name, raw := range map[string]string{
		"UPSTREAM_API_BASE_URL":    u.APIBaseURL,
		"UPSTREAM_SEARCH_BASE_URL": u.SearchBaseURL,
	} {
		parsed, err := url.Parse(raw)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("%s must be an absolute URL, got %q", name, raw)
		}
	}

	if u.Timeout <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT must be positive")
	}
	if u.RateLimitRPS <= 0 || u.RateLimitBurst < 1 {
		return fmt.Errorf("UPSTREAM_RATE_LIMIT_RPS and UPSTREAM_RATE_LIMIT_BURST must be positive")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// Mode reports whether the gateway serves live or demo results.
func (c *Config) Mode() string {
	if c.Upstream.LiveEnabled {
		return "live"
	}
	return "demo"
}
