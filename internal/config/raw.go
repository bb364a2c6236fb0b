package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// NameList supports either:
//
//	large_corner_apps: "Safari"
//
// or:
//
//	large_corner_apps:
//	  - "Safari"
//	  - "Firefox"
type NameList []string

func (l *NameList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("must be a string or list of strings")
	}
}

// RawConfig is the file form of Config. A nil field was not set.
type RawConfig struct {
	PollInterval       *string   `yaml:"poll_interval"`
	MaximizedThreshold *float64  `yaml:"maximized_threshold"`
	CornerSize         *int      `yaml:"corner_size"`
	LargeCornerSize    *int      `yaml:"large_corner_size"`
	LargeCornerApps    *NameList `yaml:"large_corner_apps"`
	MaskColor          *string   `yaml:"mask_color"`
	Display            *string   `yaml:"display"`
	LogLevel           *string   `yaml:"log_level"`
	LogFile            *string   `yaml:"log_file"`
	LogMaxSizeMB       *int      `yaml:"log_max_size_mb"`
	LogMaxFiles        *int      `yaml:"log_max_files"`
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c
	if overlay.PollInterval != nil {
		out.PollInterval = overlay.PollInterval
	}
	if overlay.MaximizedThreshold != nil {
		out.MaximizedThreshold = overlay.MaximizedThreshold
	}
	if overlay.CornerSize != nil {
		out.CornerSize = overlay.CornerSize
	}
	if overlay.LargeCornerSize != nil {
		out.LargeCornerSize = overlay.LargeCornerSize
	}
	if overlay.LargeCornerApps != nil {
		out.LargeCornerApps = overlay.LargeCornerApps
	}
	if overlay.MaskColor != nil {
		out.MaskColor = overlay.MaskColor
	}
	if overlay.Display != nil {
		out.Display = overlay.Display
	}
	if overlay.LogLevel != nil {
		out.LogLevel = overlay.LogLevel
	}
	if overlay.LogFile != nil {
		out.LogFile = overlay.LogFile
	}
	if overlay.LogMaxSizeMB != nil {
		out.LogMaxSizeMB = overlay.LogMaxSizeMB
	}
	if overlay.LogMaxFiles != nil {
		out.LogMaxFiles = overlay.LogMaxFiles
	}
	return out
}
