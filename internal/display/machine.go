package display

import (
	"fmt"
	"log"
	"time"

	"SpotPrice/internal/cache"
	"SpotPrice/internal/model"
	"SpotPrice/internal/render"
	"SpotPrice/internal/slot"
)

// Surface is the drawing target for frames.
type Surface interface {
	Draw(f model.Frame) error
	Capabilities() render.Capabilities
}

// CacheSource hands out the current cache handle.
type CacheSource interface {
	Cache() *cache.Cache
}

// Machine holds the selected view and redraws only when something visible
// changed: the mode, the current slot, staleness, the clock or the status line.
type Machine struct {
	renderer   *render.Renderer
	surface    Surface
	source     CacheSource
	staleAfter time.Duration

	mode      model.ViewMode
	dirty     bool
	rendered  bool
	lastSlot  slot.Index
	lastStale bool
	now       time.Time
	clockOK   bool
	status    string
	configErr error
}

// NewMachine starts in Price mode with a redraw pending.
func NewMachine(r *render.Renderer, s Surface, src CacheSource, staleAfter time.Duration) *Machine {
	return &Machine{
		renderer:   r,
		surface:    s,
		source:     src,
		staleAfter: staleAfter,
		mode:       model.ViewPrice,
		dirty:      true,
	}
}

// Mode returns the active view.
func (m *Machine) Mode() model.ViewMode { return m.mode }

// NeedsRedraw reports whether the next Flush will draw.
func (m *Machine) NeedsRedraw() bool { return m.dirty }

// Cycle advances Price -> Graph8h -> Graph24h -> Price.
func (m *Machine) Cycle() {
	m.mode = m.mode.Next()
	m.dirty = true
	log.Printf("[INFO] view mode: %s", m.mode)
}

// Invalidate forces a redraw, e.g. after a new cache was installed.
func (m *Machine) Invalidate() { m.dirty = true }

// SetStatus changes the status line text.
func (m *Machine) SetStatus(text string) {
	if text != m.status {
		m.status = text
		m.dirty = true
	}
}

// SetConfigError switches to the persistent "not configured" screen.
func (m *Machine) SetConfigError(err error) {
	m.configErr = err
	m.dirty = true
}

// Tick is the refresh tick. A clock error keeps the last good time and marks
// the data stale. A clock that moved backward never moves the slot back.
func (m *Machine) Tick(now time.Time, clockErr error) {
	if clockErr != nil {
		if m.clockOK || m.now.IsZero() {
			m.dirty = true
		}
		m.clockOK = false
		return
	}
	if !m.clockOK {
		m.clockOK = true
		m.dirty = true
	}

	idx := slot.IndexOf(now)
	if m.rendered && idx < m.lastSlot {
		now = slot.Start(m.lastSlot)
		idx = m.lastSlot
	}
	if m.now.IsZero() || now.After(m.now) {
		m.now = now
	}

	stale := m.source.Cache().IsStale(m.now, m.staleAfter)
	if !m.rendered || idx != m.lastSlot || stale != m.lastStale {
		m.dirty = true
	}
}

// Flush draws a frame if one is pending and marks the display clean.
func (m *Machine) Flush() error {
	if !m.dirty {
		return nil
	}
	m.dirty = false

	f, cacheStale := m.frame()
	f.Status = m.status
	if err := m.surface.Draw(f); err != nil {
		return fmt.Errorf("draw frame: %w", err)
	}
	m.rendered = true
	m.lastStale = cacheStale
	if !m.now.IsZero() {
		m.lastSlot = slot.IndexOf(m.now)
	}
	return nil
}

func (m *Machine) frame() (model.Frame, bool) {
	if m.configErr != nil {
		return m.renderer.Status(render.TitleDevice, "Not configured", false), false
	}
	if m.now.IsZero() {
		return m.renderer.Status(render.TitleDevice, "Waiting for time", true), true
	}
	c := m.source.Cache()
	cacheStale := c.IsStale(m.now, m.staleAfter)
	return m.renderer.Render(c, m.now, m.mode, cacheStale || !m.clockOK), cacheStale
}
