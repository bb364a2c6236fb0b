package config

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	DefaultPollInterval       = 500 * time.Millisecond
	DefaultMaximizedThreshold = 0.85
	DefaultCornerSize         = 26
	DefaultLargeCornerSize    = 30
	DefaultMaskColor          = "#000000"

	// MaxCornerSize bounds both size classes.
	MaxCornerSize = 256
	// MinPollInterval keeps a typo from spinning the event loop.
	MinPollInterval = 10 * time.Millisecond
)

// Config is the effective cornerfix configuration.
type Config struct {
	PollInterval       Duration `yaml:"poll_interval"`
	MaximizedThreshold float64  `yaml:"maximized_threshold"`
	CornerSize         int      `yaml:"corner_size"`
	LargeCornerSize    int      `yaml:"large_corner_size"`
	LargeCornerApps    []string `yaml:"large_corner_apps"`
	MaskColor          string   `yaml:"mask_color"`
	Display            string   `yaml:"display,omitempty"`
	LogLevel           string   `yaml:"log_level"`
	LogFile            string   `yaml:"log_file,omitempty"`
	LogMaxSizeMB       int      `yaml:"log_max_size_mb"`
	LogMaxFiles        int      `yaml:"log_max_files"`
}

// Duration is a time.Duration written as a Go duration string in YAML.
type Duration time.Duration

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// LoggingConfig groups the log settings.
type LoggingConfig struct {
	Level     string
	File      string
	MaxSizeMB int
	MaxFiles  int
}

func DefaultConfig() *Config {
	return &Config{
		PollInterval:       Duration(DefaultPollInterval),
		MaximizedThreshold: DefaultMaximizedThreshold,
		CornerSize:         DefaultCornerSize,
		LargeCornerSize:    DefaultLargeCornerSize,
		LargeCornerApps:    []string{"Safari"},
		MaskColor:          DefaultMaskColor,
		LogLevel:           "info",
		LogMaxSizeMB:       10,
		LogMaxFiles:        3,
	}
}

// Interval returns the poll interval as a time.Duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.PollInterval)
}

// MaskRGBA parses mask_color. Alpha is always opaque.
func (c *Config) MaskRGBA() (color.RGBA, error) {
	col, err := colorful.Hex(c.MaskColor)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", c.MaskColor, err)
	}
	r, g, b := col.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}

// GetLoggingConfig returns the logging configuration with defaults applied.
func (c *Config) GetLoggingConfig() LoggingConfig {
	if c == nil {
		return LoggingConfig{Level: "info"}
	}
	cfg := LoggingConfig{
		Level:     c.LogLevel,
		File:      c.LogFile,
		MaxSizeMB: c.LogMaxSizeMB,
		MaxFiles:  c.LogMaxFiles,
	}
	if strings.HasPrefix(cfg.File, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.File = filepath.Join(home, cfg.File[2:])
		}
	}
	if cfg.MaxSizeMB == 0 {
		cfg.MaxSizeMB = 10
	}
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	return cfg
}

func (c *Config) Validate() error {
	if c.Interval() < MinPollInterval {
		return &ValidationError{Path: "poll_interval", Err: fmt.Errorf("poll_interval must be at least %s", MinPollInterval)}
	}
	if c.MaximizedThreshold <= 0 || c.MaximizedThreshold > 1 {
		return &ValidationError{Path: "maximized_threshold", Err: fmt.Errorf("maximized_threshold must be in (0, 1]")}
	}
	if c.CornerSize < 1 || c.CornerSize > MaxCornerSize {
		return &ValidationError{Path: "corner_size", Err: fmt.Errorf("corner_size must be between 1 and %d", MaxCornerSize)}
	}
	if c.LargeCornerSize < 1 || c.LargeCornerSize > MaxCornerSize {
		return &ValidationError{Path: "large_corner_size", Err: fmt.Errorf("large_corner_size must be between 1 and %d", MaxCornerSize)}
	}
	for i, name := range c.LargeCornerApps {
		if strings.TrimSpace(name) == "" {
			return &ValidationError{Path: fmt.Sprintf("large_corner_apps.%d", i), Err: fmt.Errorf("application name must not be empty")}
		}
	}
	if _, err := c.MaskRGBA(); err != nil {
		return &ValidationError{Path: "mask_color", Err: err}
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, error")}
	}
	if c.LogMaxSizeMB < 0 {
		return &ValidationError{Path: "log_max_size_mb", Err: fmt.Errorf("log_max_size_mb must be >= 0")}
	}
	if c.LogMaxFiles < 0 {
		return &ValidationError{Path: "log_max_files", Err: fmt.Errorf("log_max_files must be >= 0")}
	}
	return nil
}
