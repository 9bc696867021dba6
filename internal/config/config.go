package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config represents application configuration
type Config struct {
	Calendar CalendarConfig `mapstructure:"calendar"`
	Daemon   DaemonConfig   `mapstructure:"daemon"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// CalendarConfig represents the starting state of the game calendar
type CalendarConfig struct {
	Year       int     `mapstructure:"year"` // 0 means start from the host clock
	Month      int     `mapstructure:"month"`
	Day        int     `mapstructure:"day"`
	Hour       int     `mapstructure:"hour"`
	Timezone   string  `mapstructure:"timezone"`
	Cycle      string  `mapstructure:"cycle"`       // built-in name or a name from CyclesFile
	CyclesFile string  `mapstructure:"cycles_file"` // YAML cycle definitions
	Longitude  float64 `mapstructure:"longitude"`   // observer longitude for local sidereal time
}

// DaemonConfig represents clock daemon configuration
type DaemonConfig struct {
	Pace       string `mapstructure:"pace"`        // real time per game hour
	CatchUp    bool   `mapstructure:"catch_up"`    // advance missed hours after suspend/resume
	SystemTray bool   `mapstructure:"system_tray"` // show system tray icon (Windows only)
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"` // non-empty enables rotating file logs
}

// Default returns the configuration used when no config file is present
func Default() *Config {
	return &Config{
		Daemon:  DaemonConfig{Pace: "2m30s", CatchUp: true},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load loads configuration from file. An empty path searches the usual
// locations; a missing file there falls back to defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.almanac")
		v.AddConfigPath("/etc/almanac")
	}

	v.SetDefault("daemon.pace", "2m30s")
	v.SetDefault("daemon.catch_up", true)
	v.SetDefault("logging.level", "info")

	// Read environment variables
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath == "" && errors.As(err, &notFound) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	cal := c.Calendar
	if cal.Month < 0 || cal.Month > 12 {
		return fmt.Errorf("calendar.month must be 1-12, got %d", cal.Month)
	}
	if cal.Day < 0 || cal.Day > 31 {
		return fmt.Errorf("calendar.day must be 1-31, got %d", cal.Day)
	}
	if cal.Hour < 0 || cal.Hour > 23 {
		return fmt.Errorf("calendar.hour must be 0-23, got %d", cal.Hour)
	}
	if cal.Longitude < -180 || cal.Longitude > 180 {
		return fmt.Errorf("calendar.longitude must be -180..180, got %v", cal.Longitude)
	}

	// Built-in cycle names work without a cycles file; anything else needs one.
	switch cal.Cycle {
	case "", "dayparts", "canonical":
	default:
		if cal.CyclesFile == "" {
			return fmt.Errorf("calendar.cycle %q is not built-in and calendar.cycles_file is not set", cal.Cycle)
		}
	}

	if c.Daemon.Pace != "" {
		if _, err := time.ParseDuration(c.Daemon.Pace); err != nil {
			return fmt.Errorf("daemon.pace is not a duration: %w", err)
		}
	}

	return nil
}

// GetPace returns the real-time duration of one game hour
func (c *DaemonConfig) GetPace() time.Duration {
	if c.Pace == "" {
		return 2*time.Minute + 30*time.Second
	}
	duration, err := time.ParseDuration(c.Pace)
	if err != nil {
		return 2*time.Minute + 30*time.Second
	}
	return duration
}

// GetStartLocation resolves the configured timezone; empty means local time
func (c *CalendarConfig) GetStartLocation() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// ExpandEnvVars expands environment variables in config strings
func (c *Config) ExpandEnvVars() {
	c.Calendar.Timezone = os.ExpandEnv(c.Calendar.Timezone)
	c.Calendar.CyclesFile = os.ExpandEnv(c.Calendar.CyclesFile)
	c.Logging.File = os.ExpandEnv(c.Logging.File)
}
