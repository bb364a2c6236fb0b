// Package overlay owns the four corner surfaces drawn over the focused window.
package overlay

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/1broseidon/cornerfix/internal/corner"
	"github.com/1broseidon/cornerfix/internal/platform"
)

type cornerSurface struct {
	corner  corner.Corner
	surface platform.Surface
	frame   platform.Rect
	placed  bool
	visible bool
	stale   bool // mask must be repainted before the next show
}

// Manager keeps either zero or four surfaces, one per corner, all of the
// same size. Surfaces are created on the first Show, reused across Hide and
// Show, and rebuilt together when the size changes.
//
// A Manager is not safe for concurrent use; the daemon loop owns it.
type Manager struct {
	factory  platform.SurfaceFactory
	renderer *corner.Renderer
	logger   *slog.Logger

	size     int
	surfaces []*cornerSurface
}

// NewManager creates a manager with no surfaces.
func NewManager(factory platform.SurfaceFactory, renderer *corner.Renderer, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		factory:  factory,
		renderer: renderer,
		logger:   logger,
	}
}

// Show positions the four corner surfaces over window, making them visible.
// Surfaces are built on first use and rebuilt when size differs from the
// size they were built with; they are never resized in place.
//
// A construction failure leaves the manager empty so the next Show retries.
func (m *Manager) Show(window platform.Rect, size int) error {
	if size <= 0 {
		return fmt.Errorf("invalid corner size %d", size)
	}

	if len(m.surfaces) > 0 && m.size != size {
		m.logger.Info("recreating corner surfaces", "from_size", m.size, "to_size", size)
		if err := m.destroyAll(); err != nil {
			m.logger.Warn("destroying old corner surfaces", "error", err)
		}
	}

	if len(m.surfaces) == 0 {
		if err := m.build(size); err != nil {
			return err
		}
	}

	var errs []error
	for _, s := range m.surfaces {
		if err := m.place(s, window); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.corner, err))
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) place(s *cornerSurface, window platform.Rect) error {
	frame := corner.Frame(s.corner, window, m.size)
	if !s.placed || frame != s.frame {
		if err := s.surface.SetFrame(frame); err != nil {
			return err
		}
		s.frame = frame
		s.placed = true
		s.stale = true
	}

	if !s.visible {
		s.stale = true
	}
	// Showing also raises, keeping the corners above windows stacked since
	// the last tick.
	if err := s.surface.Show(); err != nil {
		return err
	}
	s.visible = true

	if s.stale {
		if err := s.surface.Paint(m.renderer.Mask(s.corner, m.size)); err != nil {
			return fmt.Errorf("paint: %w", err)
		}
		s.stale = false
	}
	return nil
}

func (m *Manager) build(size int) error {
	built := make([]*cornerSurface, 0, len(corner.All))
	for _, c := range corner.All {
		surface, err := m.factory.NewSurface(size)
		if err != nil {
			for _, s := range built {
				_ = s.surface.Destroy()
			}
			return fmt.Errorf("create %s surface: %w", c, err)
		}
		built = append(built, &cornerSurface{corner: c, surface: surface})
	}

	m.logger.Debug("created corner surfaces", "size", size)
	m.surfaces = built
	m.size = size
	return nil
}

// Hide removes every surface from the screen without destroying it. It is a
// no-op when no surfaces exist.
func (m *Manager) Hide() error {
	var errs []error
	for _, s := range m.surfaces {
		if !s.visible {
			continue
		}
		if err := s.surface.Hide(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.corner, err))
			continue
		}
		s.visible = false
	}
	return errors.Join(errs...)
}

// SetRenderer switches the mask renderer. Visible surfaces pick up the new
// mask on the next Show.
func (m *Manager) SetRenderer(renderer *corner.Renderer) {
	m.renderer = renderer
	for _, s := range m.surfaces {
		s.stale = true
	}
}

// Close destroys all surfaces.
func (m *Manager) Close() error {
	return m.destroyAll()
}

func (m *Manager) destroyAll() error {
	var errs []error
	for _, s := range m.surfaces {
		if err := s.surface.Destroy(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.corner, err))
		}
	}
	m.surfaces = nil
	m.size = 0
	return errors.Join(errs...)
}

// SurfaceState describes one corner surface.
type SurfaceState struct {
	Corner  corner.Corner
	Frame   platform.Rect
	Visible bool
}

// State is a read-only view of the manager.
type State struct {
	Size     int
	Surfaces []SurfaceState
}

// Visible reports whether the surfaces are currently shown.
func (s State) Visible() bool {
	for _, surface := range s.Surfaces {
		if surface.Visible {
			return true
		}
	}
	return false
}

// Snapshot returns the current surface set.
func (m *Manager) Snapshot() State {
	st := State{Size: m.size}
	for _, s := range m.surfaces {
		st.Surfaces = append(st.Surfaces, SurfaceState{Corner: s.corner, Frame: s.frame, Visible: s.visible})
	}
	return st
}
