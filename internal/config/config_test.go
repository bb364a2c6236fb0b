package config

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.Interval() != 500*time.Millisecond {
		t.Fatalf("expected 500ms interval, got %s", cfg.Interval())
	}
	if cfg.CornerSize != 26 || cfg.LargeCornerSize != 30 {
		t.Fatalf("expected sizes 26/30, got %d/%d", cfg.CornerSize, cfg.LargeCornerSize)
	}
	if len(cfg.LargeCornerApps) != 1 || cfg.LargeCornerApps[0] != "Safari" {
		t.Fatalf("expected large_corner_apps [Safari], got %v", cfg.LargeCornerApps)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := writeConfig(t, "# empty\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.MaximizedThreshold != DefaultMaximizedThreshold {
		t.Fatalf("expected threshold %v, got %v", DefaultMaximizedThreshold, res.Config.MaximizedThreshold)
	}
	if res.File == "" {
		t.Fatalf("expected loaded file to be recorded")
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.File != "" {
		t.Fatalf("expected no file, got %q", res.File)
	}
	if res.Config.CornerSize != DefaultCornerSize {
		t.Fatalf("expected default corner size, got %d", res.Config.CornerSize)
	}
}

func TestLoadFromPath_Overrides(t *testing.T) {
	path := writeConfig(t, strings.Join([]string{
		"poll_interval: 250ms",
		"maximized_threshold: 0.9",
		"corner_size: 20",
		"large_corner_size: 40",
		"large_corner_apps: [Safari, firefox]",
		"mask_color: \"#1e1e2e\"",
		"log_level: DEBUG",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.Interval() != 250*time.Millisecond {
		t.Fatalf("poll_interval = %s", cfg.Interval())
	}
	if cfg.MaximizedThreshold != 0.9 || cfg.CornerSize != 20 || cfg.LargeCornerSize != 40 {
		t.Fatalf("unexpected numeric values: %+v", cfg)
	}
	if strings.Join(cfg.LargeCornerApps, ",") != "Safari,firefox" {
		t.Fatalf("large_corner_apps = %v", cfg.LargeCornerApps)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("log_level = %q", cfg.LogLevel)
	}
	got, err := cfg.MaskRGBA()
	if err != nil {
		t.Fatalf("mask color: %v", err)
	}
	if want := (color.RGBA{R: 0x1e, G: 0x1e, B: 0x2e, A: 0xff}); got != want {
		t.Fatalf("mask color = %v, want %v", got, want)
	}
}

func TestLoadFromPath_NameListAcceptsScalar(t *testing.T) {
	path := writeConfig(t, "large_corner_apps: Chromium\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(res.Config.LargeCornerApps) != 1 || res.Config.LargeCornerApps[0] != "Chromium" {
		t.Fatalf("large_corner_apps = %v", res.Config.LargeCornerApps)
	}
}

func TestLoadFromPath_EmptyNameListDisablesLargeSize(t *testing.T) {
	path := writeConfig(t, "large_corner_apps: []\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(res.Config.LargeCornerApps) != 0 {
		t.Fatalf("expected no large apps, got %v", res.Config.LargeCornerApps)
	}
}

func TestLoadFromPath_StrictUnknownKeyErrors(t *testing.T) {
	path := writeConfig(t, "unknown_key: 1\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "unknown_key") && !strings.Contains(err.Error(), "field") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
	if !strings.Contains(err.Error(), filepath.Base(path)) {
		t.Fatalf("expected error to include file path, got %v", err)
	}
}

func TestLoadFromPath_InvalidValuesHaveSourceContext(t *testing.T) {
	tests := []struct {
		name string
		data string
		path string
		line int
	}{
		{"threshold zero", "corner_size: 26\nmaximized_threshold: 0\n", "maximized_threshold", 2},
		{"threshold above one", "maximized_threshold: 1.5\n", "maximized_threshold", 1},
		{"size zero", "corner_size: 0\n", "corner_size", 1},
		{"large size too big", "large_corner_size: 1000\n", "large_corner_size", 1},
		{"bad color", "mask_color: black\n", "mask_color", 1},
		{"bad duration", "poll_interval: soon\n", "poll_interval", 1},
		{"interval too short", "poll_interval: 1ms\n", "poll_interval", 1},
		{"empty app name", "large_corner_apps:\n  - Safari\n  - \"\"\n", "large_corner_apps.1", 3},
		{"bad log level", "log_level: loud\n", "log_level", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.data)
			_, err := LoadFromPath(path)
			if err == nil {
				t.Fatalf("expected validation error")
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T: %v", err, err)
			}
			if verr.Path != tt.path {
				t.Fatalf("path = %q, want %q", verr.Path, tt.path)
			}
			if verr.Source.Kind != SourceFile || verr.Source.Line != tt.line {
				t.Fatalf("source = %+v, want file line %d", verr.Source, tt.line)
			}
			if !strings.Contains(err.Error(), tt.path) {
				t.Fatalf("error %q does not name %q", err, tt.path)
			}
		})
	}
}

func TestExplain(t *testing.T) {
	path := writeConfig(t, "corner_size: 22\n")
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	val, src, err := Explain(res, "corner_size")
	if err != nil {
		t.Fatalf("explain corner_size: %v", err)
	}
	if val != 22 || src.Kind != SourceFile || src.Line != 1 {
		t.Fatalf("corner_size = %#v from %+v", val, src)
	}

	val, src, err = Explain(res, "large_corner_apps.0")
	if err != nil {
		t.Fatalf("explain large_corner_apps.0: %v", err)
	}
	if val != "Safari" || src.Kind != SourceDefault {
		t.Fatalf("large_corner_apps.0 = %#v from %+v", val, src)
	}

	if _, _, err := Explain(res, "layouts.grid"); err == nil {
		t.Fatalf("expected unknown path error")
	}
}

func TestDefaultConfigPath_EnvOverride(t *testing.T) {
	t.Setenv(ConfigPathEnv, "/tmp/cornerfix-test.yaml")
	path, err := DefaultConfigPath()
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	if path != "/tmp/cornerfix-test.yaml" {
		t.Fatalf("path = %q", path)
	}

	t.Setenv(ConfigPathEnv, "")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	path, err = DefaultConfigPath()
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	if path != filepath.Join("/tmp/xdg", "cornerfix", "config.yaml") {
		t.Fatalf("path = %q", path)
	}
}

func TestConfigMarshalsDurationAsString(t *testing.T) {
	out, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(out), "poll_interval: 500ms") {
		t.Fatalf("expected poll_interval as duration string, got:\n%s", out)
	}

	// The printed form must load back through the strict decoder.
	path := writeConfig(t, string(out))
	if _, err := LoadFromPath(path); err != nil {
		t.Fatalf("reload printed config: %v", err)
	}
}

func TestGetLoggingConfig_ExpandsHome(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	cfg := DefaultConfig()
	cfg.LogFile = "~/logs/cornerfix.log"
	got := cfg.GetLoggingConfig()
	if got.File != filepath.Join("/home/tester", "logs", "cornerfix.log") {
		t.Fatalf("file = %q", got.File)
	}
	if got.MaxSizeMB != 10 || got.MaxFiles != 3 {
		t.Fatalf("rotation = %d/%d", got.MaxSizeMB, got.MaxFiles)
	}
}
