package config

import (
	"fmt"
	"strings"
	"time"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// BuildEffectiveConfig applies raw onto the defaults. It does not validate.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.PollInterval != nil {
		d, err := time.ParseDuration(strings.TrimSpace(*raw.PollInterval))
		if err != nil {
			return nil, &ValidationError{Path: "poll_interval", Err: fmt.Errorf("invalid duration %q", *raw.PollInterval)}
		}
		cfg.PollInterval = Duration(d)
	}
	if raw.MaximizedThreshold != nil {
		cfg.MaximizedThreshold = *raw.MaximizedThreshold
	}
	cfg.CornerSize = derefInt(raw.CornerSize, cfg.CornerSize)
	cfg.LargeCornerSize = derefInt(raw.LargeCornerSize, cfg.LargeCornerSize)
	if raw.LargeCornerApps != nil {
		cfg.LargeCornerApps = append([]string(nil), (*raw.LargeCornerApps)...)
	}
	if raw.MaskColor != nil {
		cfg.MaskColor = strings.TrimSpace(*raw.MaskColor)
	}
	if raw.Display != nil {
		cfg.Display = strings.TrimSpace(*raw.Display)
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(*raw.LogLevel))
	}
	if raw.LogFile != nil {
		cfg.LogFile = strings.TrimSpace(*raw.LogFile)
	}
	cfg.LogMaxSizeMB = derefInt(raw.LogMaxSizeMB, cfg.LogMaxSizeMB)
	cfg.LogMaxFiles = derefInt(raw.LogMaxFiles, cfg.LogMaxFiles)

	return cfg, nil
}

func derefInt(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
