package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/robfig/cron/v3"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	SQLite  SQLiteConfig      `yaml:"sqlite"`
	Auth    AuthConfig        `yaml:"auth"`
	Holiday HolidayConfig     `yaml:"holiday"`
	DayInfo DayInfoConfig     `yaml:"day_info"`
	Stream  StreamConfig      `yaml:"stream"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Holiday.Validate(); err != nil {
		return err
	}
	if err := c.DayInfo.Validate(); err != nil {
		return err
	}
	return c.Stream.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// HolidayConfig holds the Danish holiday calendar endpoint configuration.
//
// BaseURL is the per-year endpoint prefix; the year is appended as the last
// path segment. WarmSchedule is a cron expression for the recurring preload
// of the current and next year.
type HolidayConfig struct {
	BaseURL      string `yaml:"base_url"`
	WarmSchedule string `yaml:"warm_schedule"`
}

// Validate validates the holiday endpoint configuration.
func (c *HolidayConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required),
		validation.Field(&c.WarmSchedule, validation.Required),
	); err != nil {
		return err
	}
	if _, err := cron.ParseStandard(c.WarmSchedule); err != nil {
		return fmt.Errorf("holiday: invalid warm_schedule %q: %w", c.WarmSchedule, err)
	}
	return nil
}

// DayInfoConfig holds the weather/astronomy endpoint configuration.
// BaseURL is the per-day endpoint prefix; the day is appended as dd-MM-yyyy.
type DayInfoConfig struct {
	BaseURL string `yaml:"base_url"`
}

// Validate validates the day-info endpoint configuration.
func (c *DayInfoConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required),
	)
}

// StreamConfig holds SSE change stream configuration.
type StreamConfig struct {
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

// Validate validates the stream configuration.
func (c *StreamConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.RefreshInterval, validation.Required, validation.Min(100*time.Millisecond)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		SQLite: SQLiteConfig{
			Path: "./almanak.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Holiday: HolidayConfig{
			BaseURL:      "https://api.kalendarium.dk/Dayinfo/year/",
			WarmSchedule: "30 3 * * *",
		},
		DayInfo: DayInfoConfig{
			BaseURL: "https://api.kalendarium.dk/Dayinfo/",
		},
		Stream: StreamConfig{
			RefreshInterval: 2 * time.Second,
		},
	}
}
