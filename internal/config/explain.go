package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Explain returns the effective value at the given YAML path and its source.
//
// Paths are the top-level keys, plus large_corner_apps.<index>.
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	parts := strings.Split(path, ".")
	if parts[0] == "large_corner_apps" && len(parts) == 2 {
		i, err := strconv.Atoi(parts[1])
		if err != nil || i < 0 || i >= len(cfg.LargeCornerApps) {
			return nil, fmt.Errorf("%s: no such entry", path)
		}
		return cfg.LargeCornerApps[i], nil
	}
	if len(parts) != 1 {
		return nil, fmt.Errorf("unknown path %q", path)
	}

	switch path {
	case "poll_interval":
		return cfg.PollInterval.String(), nil
	case "maximized_threshold":
		return cfg.MaximizedThreshold, nil
	case "corner_size":
		return cfg.CornerSize, nil
	case "large_corner_size":
		return cfg.LargeCornerSize, nil
	case "large_corner_apps":
		return cfg.LargeCornerApps, nil
	case "mask_color":
		return cfg.MaskColor, nil
	case "display":
		return cfg.Display, nil
	case "log_level":
		return cfg.LogLevel, nil
	case "log_file":
		return cfg.LogFile, nil
	case "log_max_size_mb":
		return cfg.LogMaxSizeMB, nil
	case "log_max_files":
		return cfg.LogMaxFiles, nil
	}
	return nil, fmt.Errorf("unknown path %q", path)
}
