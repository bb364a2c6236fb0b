package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/1broseidon/cornerfix/internal/config"
	"github.com/1broseidon/cornerfix/internal/corner"
	"github.com/1broseidon/cornerfix/internal/ipc"
	"github.com/1broseidon/cornerfix/internal/logging"
	"github.com/1broseidon/cornerfix/internal/monitor"
	"github.com/1broseidon/cornerfix/internal/overlay"
	"github.com/1broseidon/cornerfix/internal/platform"
)

// QueueSize is the capacity of the loop's input channel.
const QueueSize = 8

// ErrLoopStopped is returned to requests posted after the loop has exited.
var ErrLoopStopped = errors.New("event loop stopped")

// Engine is the per-tick classifier.
type Engine interface {
	Tick() monitor.Result
	SetOptions(opts monitor.Options)
}

// Overlays is the overlay manager as seen by the loop.
type Overlays interface {
	Snapshot() overlay.State
	SetRenderer(renderer *corner.Renderer)
	Close() error
}

// Reloader re-reads the configuration file.
type Reloader func() (*config.Config, error)

// LoopConfig holds configuration for the event loop.
type LoopConfig struct {
	Config *config.Config
	Reload Reloader
	// LogLevel, when set, follows log_level across reloads.
	LogLevel *slog.LevelVar
	Logger   *slog.Logger
}

type eventKind int

const (
	eventFocus eventKind = iota
	eventTick
	eventStatus
	eventReload
)

func (k eventKind) String() string {
	switch k {
	case eventFocus:
		return "focus"
	case eventTick:
		return "tick"
	case eventStatus:
		return "status"
	case eventReload:
		return "reload"
	}
	return fmt.Sprintf("event(%d)", int(k))
}

type event struct {
	kind  eventKind
	reply chan reply
}

type reply struct {
	tick   ipc.TickData
	status ipc.StatusData
	err    error
}

// Loop is the single consumer that owns the monitor and the overlays. Timer
// ticks, focus notifications and control requests are all handled on the
// goroutine running Serve, so tick bodies never overlap.
type Loop struct {
	engine   Engine
	overlays Overlays
	reload   Reloader
	logLevel *slog.LevelVar
	logger   *slog.Logger

	events  chan event
	stopped chan struct{}

	cfg      *config.Config
	interval time.Duration
	started  time.Time
	ticks    uint64
	last     monitor.Result
	lastAt   time.Time
	// lastChange is the last result that altered the overlays.
	lastChange monitor.Result
}

// NewLoop creates an event loop. cfg.Config must be valid.
func NewLoop(engine Engine, overlays Overlays, cfg LoopConfig) *Loop {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	interval := cfg.Config.Interval()
	if interval <= 0 {
		interval = config.DefaultPollInterval
	}
	return &Loop{
		engine:   engine,
		overlays: overlays,
		reload:   cfg.Reload,
		logLevel: cfg.LogLevel,
		logger:   logger,
		events:   make(chan event, QueueSize),
		stopped:  make(chan struct{}),
		cfg:      cfg.Config,
		interval: interval,
		started:  time.Now(),
	}
}

func (l *Loop) String() string { return "event-loop" }

// Serve runs the loop until ctx is cancelled, then destroys the overlays.
func (l *Loop) Serve(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.logger.Info("event loop started", "interval", l.interval)
	l.runTick("startup")

	for {
		select {
		case <-ctx.Done():
			if err := l.overlays.Close(); err != nil {
				l.logger.Warn("destroying corner overlays", "error", err)
			}
			l.markStopped()
			l.logger.Info("event loop stopped")
			return nil
		case <-ticker.C:
			l.runTick("timer")
		case ev := <-l.events:
			l.handle(ev, ticker)
		}
	}
}

func (l *Loop) markStopped() {
	select {
	case <-l.stopped:
	default:
		close(l.stopped)
	}
}

// Notify schedules a tick for a focus change. It never blocks: with the queue
// full a tick is already pending and the notification is dropped.
func (l *Loop) Notify() {
	select {
	case l.events <- event{kind: eventFocus}:
	default:
		l.logger.Debug("focus notification dropped, queue full")
	}
}

// Status reports the most recent tick and the overlay state.
func (l *Loop) Status(ctx context.Context) (ipc.StatusData, error) {
	r, err := l.post(ctx, eventStatus)
	return r.status, err
}

// Tick runs a tick now and returns its result.
func (l *Loop) Tick(ctx context.Context) (ipc.TickData, error) {
	r, err := l.post(ctx, eventTick)
	return r.tick, err
}

// Reload re-reads the configuration and applies it between ticks.
func (l *Loop) Reload(ctx context.Context) error {
	_, err := l.post(ctx, eventReload)
	return err
}

func (l *Loop) post(ctx context.Context, kind eventKind) (reply, error) {
	ev := event{kind: kind, reply: make(chan reply, 1)}
	select {
	case l.events <- ev:
	case <-l.stopped:
		return reply{}, ErrLoopStopped
	case <-ctx.Done():
		return reply{}, ctx.Err()
	}
	select {
	case r := <-ev.reply:
		return r, r.err
	case <-l.stopped:
		return reply{}, ErrLoopStopped
	case <-ctx.Done():
		return reply{}, ctx.Err()
	}
}

func (l *Loop) handle(ev event, ticker *time.Ticker) {
	var r reply
	defer func() {
		if p := recover(); p != nil {
			l.logger.Error("event loop panic recovered", "event", ev.kind, "error", p)
			r = reply{err: fmt.Errorf("%s: panic: %v", ev.kind, p)}
		}
		if ev.reply != nil {
			ev.reply <- r
		}
	}()

	switch ev.kind {
	case eventFocus:
		l.tick("focus")
	case eventTick:
		r.tick = tickData(l.tick("request"))
	case eventStatus:
		r.status = l.status()
	case eventReload:
		r.err = l.applyReload(ticker)
	}
}

func (l *Loop) runTick(trigger string) {
	defer func() {
		if p := recover(); p != nil {
			l.logger.Error("tick panic recovered", "trigger", trigger, "error", p)
		}
	}()
	l.tick(trigger)
}

func (l *Loop) tick(trigger string) monitor.Result {
	res := l.engine.Tick()
	l.ticks++
	l.last = res
	l.lastAt = time.Now()

	prev := l.lastChange
	if res.Outcome != monitor.Unchanged &&
		(res.Outcome != prev.Outcome || res.App != prev.App || res.Size != prev.Size) {
		l.lastChange = res
		l.logger.Info("corner overlays "+string(res.Outcome), "trigger", trigger, "reason", res.Reason, "app", res.App, "size", res.Size)
		return res
	}
	l.logger.Debug("tick", "trigger", trigger, "outcome", res.Outcome, "reason", res.Reason, "app", res.App)
	return res
}

func (l *Loop) applyReload(ticker *time.Ticker) error {
	if l.reload == nil {
		return fmt.Errorf("reload is not configured")
	}
	cfg, err := l.reload()
	if err != nil {
		l.logger.Error("config reload failed", "error", err)
		return err
	}
	if err := l.apply(cfg, ticker); err != nil {
		l.logger.Error("config reload failed", "error", err)
		return err
	}
	l.logger.Info("config reloaded", "interval", l.interval, "threshold", cfg.MaximizedThreshold)
	l.tick("reload")
	return nil
}

func (l *Loop) apply(cfg *config.Config, ticker *time.Ticker) error {
	fill, err := cfg.MaskRGBA()
	if err != nil {
		return err
	}
	old := l.cfg

	l.engine.SetOptions(OptionsFromConfig(cfg))
	if interval := cfg.Interval(); interval > 0 && interval != l.interval {
		ticker.Reset(interval)
		l.interval = interval
	}
	if old == nil || old.MaskColor != cfg.MaskColor {
		l.overlays.SetRenderer(corner.NewRenderer(fill))
	}
	if l.logLevel != nil {
		l.logLevel.Set(logging.ParseLevel(cfg.LogLevel))
	}
	if old != nil && old.Display != cfg.Display {
		l.logger.Warn("display change takes effect after restart", "display", cfg.Display)
	}
	l.cfg = cfg
	return nil
}

func (l *Loop) status() ipc.StatusData {
	st := l.overlays.Snapshot()
	data := ipc.StatusData{
		PID:             os.Getpid(),
		UptimeSeconds:   int64(time.Since(l.started).Seconds()),
		PollInterval:    l.interval.String(),
		Ticks:           l.ticks,
		LastTick:        tickData(l.last),
		SurfaceSize:     st.Size,
		SurfaceCount:    len(st.Surfaces),
		SurfacesVisible: st.Visible(),
		DaemonRunning:   true,
	}
	if !l.lastAt.IsZero() {
		data.LastTickAt = l.lastAt
	}
	return data
}

// OptionsFromConfig maps the config keys onto monitor options.
func OptionsFromConfig(cfg *config.Config) monitor.Options {
	return monitor.Options{
		Threshold:       cfg.MaximizedThreshold,
		CornerSize:      cfg.CornerSize,
		LargeCornerSize: cfg.LargeCornerSize,
		LargeApps:       append([]string(nil), cfg.LargeCornerApps...),
	}
}

func tickData(res monitor.Result) ipc.TickData {
	data := ipc.TickData{
		Outcome: string(res.Outcome),
		Reason:  res.Reason,
		App:     res.App,
		Size:    res.Size,
	}
	if res.Window != (platform.Rect{}) {
		data.Window = rectData(res.Window)
	}
	if res.Visible != (platform.Rect{}) {
		data.Visible = rectData(res.Visible)
	}
	return data
}

func rectData(r platform.Rect) *ipc.Rect {
	return &ipc.Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}
