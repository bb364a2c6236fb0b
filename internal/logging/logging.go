// Package logging builds the process slog.Logger: a colored console handler
// on a terminal, plain text otherwise, optionally tee'd into a rotating file.
package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/phsym/console-slog"
	"golang.org/x/term"
)

// Options configure New.
type Options struct {
	Level     string
	File      string
	MaxSizeMB int
	MaxFiles  int
	// LevelVar, when set, is set to Level and used by every handler so the
	// level can be changed while running.
	LevelVar *slog.LevelVar
	// Console forces (true) or disables (false) the colored handler. Nil
	// means detect from the output.
	Console *bool
}

// ParseLevel converts a config level name. Unknown names map to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns a logger writing to out and, when opts.File is set, to a
// rotating file. The returned closer releases the file.
func New(out io.Writer, opts Options) (*slog.Logger, io.Closer, error) {
	var level slog.Leveler = ParseLevel(opts.Level)
	if opts.LevelVar != nil {
		opts.LevelVar.Set(level.Level())
		level = opts.LevelVar
	}

	var handler slog.Handler
	if useConsole(out, opts.Console) {
		handler = console.NewHandler(out, &console.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	}

	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		f, err := OpenRotatingFile(opts.File, opts.MaxSizeMB, opts.MaxFiles)
		if err != nil {
			return nil, nil, err
		}
		handler = tee{handler, slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})}
		closer = f
	}
	return slog.New(handler), closer, nil
}

func useConsole(out io.Writer, force *bool) bool {
	if force != nil {
		return *force
	}
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// tee fans records out to every handler that is enabled for them.
type tee []slog.Handler

func (t tee) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t tee) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range t {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (t tee) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(tee, len(t))
	for i, h := range t {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (t tee) WithGroup(name string) slog.Handler {
	out := make(tee, len(t))
	for i, h := range t {
		out[i] = h.WithGroup(name)
	}
	return out
}
