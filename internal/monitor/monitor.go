// Package monitor decides on every tick whether the focused window is
// maximized and drives the corner overlays accordingly.
package monitor

import (
	"errors"
	"log/slog"

	"github.com/1broseidon/cornerfix/internal/platform"
)

// DefaultThreshold is the fraction of the visible area a window must cover
// on both axes to count as maximized.
const DefaultThreshold = 0.85

// Options tune classification and size selection.
type Options struct {
	Threshold float64
	// CornerSize is used for every application not listed in LargeApps.
	CornerSize      int
	LargeCornerSize int
	// LargeApps are display names matched exactly.
	LargeApps []string
}

// SelectSizeClass returns the corner size for an application display name.
// Names are compared exactly.
func SelectSizeClass(appName string, opts Options) int {
	for _, name := range opts.LargeApps {
		if name == appName {
			return opts.LargeCornerSize
		}
	}
	return opts.CornerSize
}

// Classify reports whether window covers at least threshold of visible on
// both axes. Each axis is checked on its own and the comparison is inclusive.
func Classify(window, visible platform.Rect, threshold float64) bool {
	if visible.Width <= 0 || visible.Height <= 0 {
		return false
	}
	widthRatio := float64(window.Width) / float64(visible.Width)
	heightRatio := float64(window.Height) / float64(visible.Height)
	return widthRatio >= threshold && heightRatio >= threshold
}

// Overlays is the part of the overlay manager the monitor drives.
type Overlays interface {
	Show(window platform.Rect, size int) error
	Hide() error
}

// Outcome is what a tick did to the overlays.
type Outcome string

const (
	Shown     Outcome = "shown"
	Hidden    Outcome = "hidden"
	Unchanged Outcome = "unchanged"
)

// Result describes one tick.
type Result struct {
	Outcome Outcome
	Reason  string
	App     string
	Window  platform.Rect
	Visible platform.Rect
	Size    int
}

// Monitor classifies the focused window. It keeps no memory of previous
// windows; every tick starts from the bridge's current answers.
type Monitor struct {
	bridge   platform.Bridge
	screen   platform.Screen
	overlays Overlays
	opts     Options
	logger   *slog.Logger

	// lastQueryErr suppresses repeats of the same failure at warn level.
	lastQueryErr string
}

// New creates a monitor.
func New(bridge platform.Bridge, screen platform.Screen, overlays Overlays, opts Options, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		bridge:   bridge,
		screen:   screen,
		overlays: overlays,
		opts:     opts,
		logger:   logger,
	}
}

// SetOptions replaces the classification options; they apply from the next tick.
func (m *Monitor) SetOptions(opts Options) {
	m.opts = opts
}

// Tick runs one classification pass. It never fails: query errors end in a
// hide or, for geometry, leave the overlays exactly as they were.
func (m *Monitor) Tick() Result {
	app, err := m.bridge.FrontmostApplication()
	if err != nil {
		m.queryFailed("frontmost application", err)
		return m.hide(Result{Reason: "no frontmost application"})
	}

	win, err := m.bridge.FocusedWindow(app)
	if err != nil {
		m.queryFailed("focused window", err)
		return m.hide(Result{Reason: "no focused window", App: app.Name})
	}

	geom, err := m.bridge.Geometry(win)
	if err != nil {
		// Keep the last good overlay state rather than flicker on one
		// missed query.
		m.queryFailed("window geometry", err)
		return Result{Outcome: Unchanged, Reason: "geometry unavailable", App: app.Name}
	}

	visible, err := m.screen.VisibleArea()
	if err != nil {
		m.queryFailed("visible area", err)
		return Result{Outcome: Unchanged, Reason: "visible area unavailable", App: app.Name, Window: geom}
	}
	m.querySucceeded()

	res := Result{App: app.Name, Window: geom, Visible: visible}
	if !Classify(geom, visible, m.opts.Threshold) {
		res.Reason = "not maximized"
		return m.hide(res)
	}

	res.Size = SelectSizeClass(app.Name, m.opts)
	if err := m.overlays.Show(geom, res.Size); err != nil {
		m.logger.Warn("showing corner overlays", "app", app.Name, "size", res.Size, "error", err)
	}
	res.Outcome = Shown
	res.Reason = "maximized"
	return res
}

func (m *Monitor) hide(res Result) Result {
	if err := m.overlays.Hide(); err != nil {
		m.logger.Warn("hiding corner overlays", "error", err)
	}
	res.Outcome = Hidden
	return res
}

func (m *Monitor) queryFailed(what string, err error) {
	if errors.Is(err, platform.ErrNotFound) {
		m.logger.Debug("no target", "query", what)
		m.querySucceeded()
		return
	}

	msg := what + ": " + err.Error()
	if msg == m.lastQueryErr {
		m.logger.Debug("window query still failing", "query", what, "error", err)
		return
	}
	m.lastQueryErr = msg
	m.logger.Warn("window query failed", "query", what, "error", err)
}

func (m *Monitor) querySucceeded() {
	if m.lastQueryErr != "" {
		m.logger.Info("window queries recovered")
		m.lastQueryErr = ""
	}
}
