// Package engine owns the work areas of every monitor and virtual desktop and
// routes drag gestures, keyboard snaps and config reloads to them.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/1broseidon/zonetile/internal/config"
	"github.com/1broseidon/zonetile/internal/platform"
	"github.com/1broseidon/zonetile/internal/snap"
	"github.com/1broseidon/zonetile/internal/topology"
	"github.com/1broseidon/zonetile/internal/workarea"
	"github.com/1broseidon/zonetile/internal/zones"
)

// ErrNoWindow is returned when no window was given and none is active.
var ErrNoWindow = errors.New("no window")

type area struct {
	wa     *workarea.WorkArea
	layout string
}

type drag struct {
	window  zones.WindowID
	area    workarea.ID
	updated bool
}

// Engine is safe for concurrent use. Every entry point holds mu for its
// whole duration, so work areas only ever see one caller.
type Engine struct {
	mu       sync.Mutex
	cfg      *config.Config
	backend  platform.Backend
	history  workarea.History
	logger   *slog.Logger
	areas    map[workarea.ID]*area
	displays []platform.Display
	desktop  uuid.UUID
	drag     *drag
}

// Option configures an Engine.
type Option func(*Engine)

// WithHistory sets the app history store.
func WithHistory(h workarea.History) Option {
	return func(e *Engine) { e.history = h }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New returns an engine with no work areas. Call Sync to create them.
func New(cfg *config.Config, backend platform.Backend, opts ...Option) *Engine {
	e := &Engine{
		cfg:     cfg,
		backend: backend,
		logger:  slog.New(slog.DiscardHandler),
		areas:   make(map[workarea.ID]*area),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the active configuration.
func (e *Engine) Config() *config.Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// Sync reads displays and the current desktop from the backend and creates,
// resizes or drops work areas to match. It reports whether anything changed.
func (e *Engine) Sync() (bool, error) {
	displays, err := e.backend.Displays()
	if err != nil {
		return false, fmt.Errorf("list displays: %w", err)
	}
	desktop, err := e.backend.CurrentDesktop()
	if err != nil {
		return false, fmt.Errorf("current desktop: %w", err)
	}
	count, err := e.backend.DesktopCount()
	if err != nil {
		e.logger.Debug("desktop count unavailable, keeping all desktops", "error", err)
		count = 0
	}
	live := liveDesktops(desktop, count)

	e.mu.Lock()
	defer e.mu.Unlock()

	changed := desktop != e.desktop || !sameDisplays(displays, e.displays)
	e.desktop = desktop
	e.displays = displays

	present := make(map[string]platform.Display, len(displays))
	for _, d := range displays {
		present[d.Name] = d
	}
	for id, a := range e.areas {
		d, ok := present[id.Monitor]
		if live != nil {
			_, alive := live[id.Desktop]
			ok = ok && alive
		}
		if !ok {
			e.dropArea(id)
			changed = true
			continue
		}
		if a.wa.WorkRect() != d.Work {
			if err := a.wa.UpdateLayout(nil, d.Work); err != nil {
				e.logger.Warn("work area resize failed", "area", id, "error", err)
			}
			changed = true
		}
	}

	for _, d := range displays {
		id := workarea.ID{Monitor: d.Name, Desktop: desktop}
		if _, ok := e.areas[id]; ok {
			continue
		}
		if err := e.createArea(id, d.Work); err != nil {
			e.logger.Warn("work area not created", "area", id, "error", err)
			continue
		}
		changed = true
	}
	return changed, nil
}

// liveDesktops returns the ids of desktops 0 to count-1 plus current. A
// count below one means unknown and gives nil.
func liveDesktops(current uuid.UUID, count int) map[uuid.UUID]struct{} {
	if count < 1 {
		return nil
	}
	live := make(map[uuid.UUID]struct{}, count+1)
	for i := 0; i < count; i++ {
		live[platform.DesktopID(i)] = struct{}{}
	}
	live[current] = struct{}{}
	return live
}

func sameDisplays(a, b []platform.Display) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (e *Engine) createArea(id workarea.ID, work zones.Rect) error {
	name := e.cfg.LayoutFor(id.Monitor)
	layout, err := e.buildLayout(name)
	if err != nil {
		return err
	}
	wa, err := workarea.New(id, work, layout,
		workarea.WithBackend(e.backend),
		workarea.WithHistory(e.history),
		workarea.WithLogger(e.logger.With("area", id.String())),
		workarea.WithAlgorithm(e.cfg.Algorithm()),
	)
	if err != nil {
		return err
	}
	e.areas[id] = &area{wa: wa, layout: name}
	e.logger.Debug("work area created", "area", id, "layout", name, "zones", layout.ZoneCount())
	return nil
}

func (e *Engine) buildLayout(name string) (*zones.Layout, error) {
	s, err := e.cfg.Settings(name)
	if err != nil {
		return nil, err
	}
	return zones.NewLayout(s), nil
}

func (e *Engine) dropArea(id workarea.ID) {
	if e.drag != nil && e.drag.area == id {
		e.areas[id].wa.MoveSizeCancel()
		e.drag = nil
	}
	delete(e.areas, id)
	e.logger.Debug("work area dropped", "area", id)
}

// Reload applies cfg to every work area. Areas mid-drag pick up the new
// layout when the drag ends.
func (e *Engine) Reload(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg = cfg

	var errs []error
	for id, a := range e.areas {
		name := cfg.LayoutFor(id.Monitor)
		layout, err := e.buildLayout(name)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", id, err))
			continue
		}
		a.wa.SetAlgorithm(cfg.Algorithm())
		if err := a.wa.UpdateLayout(layout, a.wa.WorkRect()); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", id, err))
			continue
		}
		a.layout = name
	}
	e.logger.Info("configuration reloaded", "areas", len(e.areas), "failed", len(errs))
	return errors.Join(errs...)
}

// current returns the work areas of the current desktop keyed by monitor.
func (e *Engine) current() snap.Areas {
	out := make(snap.Areas)
	for id, a := range e.areas {
		if id.Desktop == e.desktop {
			out[id.Monitor] = a.wa
		}
	}
	return out
}

func (e *Engine) monitors() []topology.Monitor {
	return platform.Monitors(e.displays)
}

// areaAt returns the current-desktop work area under p.
func (e *Engine) areaAt(p zones.Point) (workarea.ID, *workarea.WorkArea, bool) {
	m, ok := topology.Containing(e.monitors(), p)
	if !ok {
		return workarea.ID{}, nil, false
	}
	id := workarea.ID{Monitor: m.Handle, Desktop: e.desktop}
	a, ok := e.areas[id]
	if !ok {
		return workarea.ID{}, nil, false
	}
	return id, a.wa, true
}

func (e *Engine) resolveWindow(window zones.WindowID) (zones.WindowID, error) {
	if window != 0 {
		return window, nil
	}
	active, err := e.backend.ActiveWindow()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNoWindow, err)
	}
	if active == 0 {
		return 0, ErrNoWindow
	}
	return active, nil
}

// locate returns the monitor holding window: the one it is assigned on,
// else the one containing its centre.
func (e *Engine) locate(window zones.WindowID, rect zones.Rect) (string, bool) {
	for monitor, wa := range e.current() {
		if !wa.ZoneIndexSetFromWindow(window).Empty() {
			return monitor, true
		}
	}
	m, ok := topology.Containing(e.monitors(), rect.Center())
	return m.Handle, ok
}
