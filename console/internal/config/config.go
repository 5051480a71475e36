package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds every console setting; values come from the environment
// and may be overridden by command line flags.
type Config struct {
	// Backend
	APIBase        string        `envconfig:"CONSOLE_API_BASE" default:"http://127.0.0.1:5000"`
	RequestTimeout time.Duration `envconfig:"CONSOLE_REQUEST_TIMEOUT" default:"0s"`
	VitalsHours    int           `envconfig:"CONSOLE_VITALS_HOURS" default:"48"`
	// Bound on the initial load of every panel, zero for none
	StartTimeout   time.Duration `envconfig:"CONSOLE_START_TIMEOUT" default:"30s"`

	// Presentation
	Timezone   string `envconfig:"CONSOLE_TIMEZONE" default:"Local"`
	Page       string `envconfig:"CONSOLE_PAGE" default:"all"`
	LayoutFile string `envconfig:"CONSOLE_LAYOUT_FILE"`

	// Per-endpoint failure policy overrides, e.g. "steps:surface,analyze:fallback"
	FallbackPolicy map[string]string `envconfig:"CONSOLE_FALLBACK_POLICY"`

	// Board server
	HTTPPort string `envconfig:"CONSOLE_HTTP_PORT" default:"8080"`
	GRPCPort string `envconfig:"CONSOLE_GRPC_PORT" default:"50051"`

	// Cron spec for lifecycle refreshes, empty disables
	RefreshSchedule string `envconfig:"CONSOLE_REFRESH_SCHEDULE"`

	// Redis fan-out, empty address disables
	RedisAddr     string `envconfig:"CONSOLE_REDIS_ADDR"`
	RedisPassword string `envconfig:"CONSOLE_REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"CONSOLE_REDIS_DB" default:"0"`
	RedisChannel  string `envconfig:"CONSOLE_REDIS_CHANNEL" default:"vitals-console:board"`

	// Logging
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"console"`
}

// Load reads the configuration from the environment with defaults
func Load() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.APIBase == "" {
		return fmt.Errorf("api base address is required")
	}
	if c.VitalsHours <= 0 {
		return fmt.Errorf("vitals hours must be positive, got %d", c.VitalsHours)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request timeout must not be negative, got %s", c.RequestTimeout)
	}
	if c.StartTimeout < 0 {
		return fmt.Errorf("start timeout must not be negative, got %s", c.StartTimeout)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the timezone used for chart time labels
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}
