package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"loud":    slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewWritesTextWhenNotATerminal(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := New(&buf, Options{Level: "warn"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer closer.Close()

	logger.Info("hidden")
	logger.Warn("shown", "app", "Safari")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info record passed a warn logger: %q", out)
	}
	if !strings.Contains(out, "msg=shown") || !strings.Contains(out, "app=Safari") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestNewTeesIntoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "cornerfix.log")
	var buf bytes.Buffer
	noConsole := false
	logger, closer, err := New(&buf, Options{Level: "info", File: path, Console: &noConsole})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	logger.With("component", "test").Info("corner overlays shown")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	for _, out := range []string{buf.String(), string(data)} {
		if !strings.Contains(out, "corner overlays shown") || !strings.Contains(out, "component=test") {
			t.Fatalf("record missing from sink: %q", out)
		}
	}
}

func TestRotatingFileRotates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cornerfix.log")
	f, err := OpenRotatingFile(path, 1, 2)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	chunk := bytes.Repeat([]byte("x"), 600*1024)
	for i := 0; i < 4; i++ {
		if _, err := f.Write(chunk); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}

	for _, p := range []string{path, path + ".1", path + ".2"} {
		info, err := os.Stat(p)
		if err != nil {
			t.Fatalf("stat %s: %v", p, err)
		}
		if info.Size() != int64(len(chunk)) {
			t.Fatalf("%s size = %d, want %d", p, info.Size(), len(chunk))
		}
	}
	if _, err := os.Stat(path + ".3"); !os.IsNotExist(err) {
		t.Fatalf("expected at most 2 rotated files, stat .3: %v", err)
	}
}

func TestRotatingFileWriteAfterClose(t *testing.T) {
	f, err := OpenRotatingFile(filepath.Join(t.TempDir(), "x.log"), 1, 1)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	f.Close()
	if _, err := f.Write([]byte("late")); err == nil {
		t.Fatal("expected write after close to fail")
	}
}

func TestNewFollowsLevelVar(t *testing.T) {
	var buf bytes.Buffer
	levels := new(slog.LevelVar)
	logger, closer, err := New(&buf, Options{Level: "info", LevelVar: levels})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer closer.Close()

	logger.Debug("before")
	levels.Set(slog.LevelDebug)
	logger.Debug("after")
	out := buf.String()
	if strings.Contains(out, "before") || !strings.Contains(out, "after") {
		t.Fatalf("unexpected output %q", out)
	}
}
