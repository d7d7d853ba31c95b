// Package daemon manages the LifeQuran runtime lifecycle and configuration.
package daemon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/lifequran/lifequran/internal/app/gamification"
	"github.com/lifequran/lifequran/internal/domain"
)

// Config holds all runtime configuration.
type Config struct {
	Data         DataConfig         `toml:"data"`
	API          APIConfig          `toml:"api"`
	Logging      LoggingConfig      `toml:"logging"`
	Gamification GamificationConfig `toml:"gamification"`
	Telemetry    TelemetryConfig    `toml:"telemetry"`
}

// DataConfig locates the state database.
type DataConfig struct {
	Dir string `toml:"dir" env:"LIFEQURAN_DATA_DIR"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host string `toml:"host" env:"LIFEQURAN_API_HOST"`
	Port int    `toml:"port" env:"LIFEQURAN_API_PORT"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `toml:"level" env:"LIFEQURAN_LOG_LEVEL"`
	Format string `toml:"format" env:"LIFEQURAN_LOG_FORMAT"` // "console" or "json"
}

// GamificationConfig tunes the engine.
type GamificationConfig struct {
	// Timezone names the IANA zone whose midnight ends a reading day.
	// Empty means the host's local zone.
	Timezone string `toml:"timezone" env:"LIFEQURAN_TIMEZONE"`
	// DailyTargetPages is enforced at startup when non-zero.
	DailyTargetPages int                       `toml:"daily_target_pages" env:"LIFEQURAN_DAILY_TARGET"`
	Notifications    domain.NotificationPolicy `toml:"notifications"`
}

// TelemetryConfig controls metrics and health probing.
type TelemetryConfig struct {
	Prometheus     bool   `toml:"prometheus" env:"LIFEQURAN_PROMETHEUS"`
	HealthInterval string `toml:"health_interval" env:"LIFEQURAN_HEALTH_INTERVAL"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Data: DataConfig{
			Dir: Home(),
		},
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 8610,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Gamification: GamificationConfig{
			Notifications: domain.DefaultNotificationPolicy(),
		},
		Telemetry: TelemetryConfig{
			Prometheus:     true,
			HealthInterval: "60s",
		},
	}
}

// LoadConfig reads config from $LIFEQURAN_HOME/config.toml, falling back
// to defaults, then applies environment overrides.
func LoadConfig() (Config, error) {
	return LoadConfigFile(ConfigPath())
}

// LoadConfigFile reads config from path. A missing file yields defaults.
func LoadConfigFile(path string) (Config, error) {
	cfg, err := readConfigFile(path)
	if err != nil {
		return cfg, err
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// readConfigFile decodes path over the defaults without env overrides.
func readConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("stat config: %w", err)
	}
	return cfg, nil
}

// SaveDailyTarget persists gamification.daily_target_pages in the config
// file. Environment overrides are not written back.
func SaveDailyTarget(pages int) error {
	cfg, err := readConfigFile(ConfigPath())
	if err != nil {
		return err
	}
	cfg.Gamification.DailyTargetPages = pages
	if err := cfg.Validate(); err != nil {
		return err
	}
	return SaveConfig(cfg)
}

// SaveConfig writes the config to $LIFEQURAN_HOME/config.toml.
func SaveConfig(cfg Config) error {
	path := ConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// Validate rejects settings the engine cannot run with.
func (c Config) Validate() error {
	if c.Data.Dir == "" {
		return errors.New("config: data.dir must be set")
	}
	if c.API.Port < 1 || c.API.Port > 65535 {
		return fmt.Errorf("config: api.port %d out of range", c.API.Port)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if t := c.Gamification.DailyTargetPages; t < 0 || t > gamification.MaxDailyTarget {
		return fmt.Errorf("config: gamification.daily_target_pages: %w", domain.ErrInvalidTarget)
	}
	n := c.Gamification.Notifications
	if n.MaxPerDay < 0 {
		return fmt.Errorf("config: notifications.max_per_day must not be negative")
	}
	for _, hhmm := range []string{n.QuietStart, n.QuietEnd} {
		if err := gamification.ValidateHHMM(hhmm); err != nil {
			return fmt.Errorf("config: notifications: %w", err)
		}
	}
	if _, err := c.HealthInterval(); err != nil {
		return err
	}
	return nil
}

// Location resolves the configured timezone.
func (c Config) Location() (*time.Location, error) {
	if c.Gamification.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Gamification.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: gamification.timezone: %w", err)
	}
	return loc, nil
}

// HealthInterval parses telemetry.health_interval.
func (c Config) HealthInterval() (time.Duration, error) {
	if c.Telemetry.HealthInterval == "" {
		return time.Minute, nil
	}
	d, err := time.ParseDuration(c.Telemetry.HealthInterval)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("config: telemetry.health_interval %q is not a positive duration", c.Telemetry.HealthInterval)
	}
	return d, nil
}

// Home returns the LifeQuran home directory.
func Home() string {
	if dir := os.Getenv("LIFEQURAN_HOME"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".lifequran")
}

// ConfigPath returns the location of config.toml.
func ConfigPath() string {
	return filepath.Join(Home(), "config.toml")
}
