package engine

import (
	"fmt"

	"github.com/1broseidon/zonetile/internal/snap"
	"github.com/1broseidon/zonetile/internal/workarea"
	"github.com/1broseidon/zonetile/internal/zones"
)

// MoveSizeStart begins a drag of window on the monitor under p.
func (e *Engine) MoveSizeStart(window zones.WindowID, p zones.Point) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	id, wa, ok := e.areaAt(p)
	if !ok {
		return fmt.Errorf("%w: no work area at %d,%d", workarea.ErrInvalidArgument, p.X, p.Y)
	}
	if e.drag != nil && e.drag.window == window && e.drag.area == id {
		return nil
	}
	if e.drag != nil && e.drag.area != id {
		e.areas[e.drag.area].wa.MoveSizeCancel()
	}
	if err := wa.MoveSizeEnter(window); err != nil {
		return err
	}
	e.drag = &drag{window: window, area: id}
	return nil
}

// MoveSizeUpdate feeds a pointer position to the drag. Crossing onto another
// monitor cancels the drag there and enters it on the new one.
func (e *Engine) MoveSizeUpdate(p zones.Point, selectMany bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.drag == nil {
		return nil
	}
	id, wa, ok := e.areaAt(p)
	if !ok {
		return nil
	}
	if id != e.drag.area {
		if old, ok := e.areas[e.drag.area]; ok {
			old.wa.MoveSizeCancel()
		}
		if err := wa.MoveSizeEnter(e.drag.window); err != nil {
			return err
		}
		e.drag.area = id
		e.drag.updated = false
	}
	first := !e.drag.updated
	e.drag.updated = true
	return wa.MoveSizeUpdate(p, selectMany, first)
}

// MoveSizeEnd drops window at p.
func (e *Engine) MoveSizeEnd(window zones.WindowID, p zones.Point) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.drag == nil {
		return workarea.ErrNoDrag
	}
	a, ok := e.areas[e.drag.area]
	if !ok {
		e.drag = nil
		return workarea.ErrNoDrag
	}
	if err := a.wa.MoveSizeEnd(window, p); err != nil {
		return err
	}
	dropped := e.drag.area
	e.drag = nil
	if a.wa.ZoneIndexSetFromWindow(window).Empty() {
		return nil
	}
	for monitor, wa := range e.current() {
		if monitor != dropped.Monitor {
			wa.Dismiss(window)
		}
	}
	return nil
}

// MoveSizeCancel abandons the drag, if any.
func (e *Engine) MoveSizeCancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.drag == nil {
		return
	}
	if a, ok := e.areas[e.drag.area]; ok {
		a.wa.MoveSizeCancel()
	}
	e.drag = nil
}

// SnapMode selects the keyboard snap behaviour.
type SnapMode int

const (
	// SnapDefault follows move_windows_based_on_position.
	SnapDefault SnapMode = iota
	SnapIndex
	SnapPosition
	SnapExtend
)

// Snap moves window (or the active window when zero) one step in dir.
func (e *Engine) Snap(window zones.WindowID, dir zones.Direction, mode SnapMode) (snap.Result, error) {
	window, err := e.resolveWindow(window)
	if err != nil {
		return snap.Result{}, err
	}
	rect, err := e.backend.WindowRect(window)
	if err != nil {
		return snap.Result{}, fmt.Errorf("window %d: %w", window, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	current, ok := e.locate(window, rect)
	if !ok {
		return snap.Result{}, fmt.Errorf("%w: no monitor for window %d", snap.ErrUnknownMonitor, window)
	}
	if mode == SnapDefault {
		mode = SnapIndex
		if e.cfg.MoveWindowsByPosition {
			mode = SnapPosition
		}
	}

	areas := e.current()
	policy := e.cfg.Policy()
	var res snap.Result
	switch mode {
	case SnapExtend:
		res, err = snap.Extend(window, rect, current, dir, areas)
	case SnapPosition:
		res, err = snap.SnapByPosition(window, rect, current, dir, areas, e.monitors(), policy)
	default:
		res, err = snap.SnapByIndex(window, current, dir, areas, e.monitors(), policy)
	}
	if err != nil {
		return snap.Result{}, err
	}
	e.logger.Debug("window snapped", "window", window, "dir", dir, "monitor", res.Monitor, "zones", res.Zones)
	return res, nil
}

// MoveToZones places window (or the active window when zero) into set on
// monitor. An empty monitor means the monitor holding the window.
func (e *Engine) MoveToZones(window zones.WindowID, monitor string, set zones.IndexSet) (snap.Result, error) {
	window, err := e.resolveWindow(window)
	if err != nil {
		return snap.Result{}, err
	}
	var rect zones.Rect
	if monitor == "" {
		if rect, err = e.backend.WindowRect(window); err != nil {
			return snap.Result{}, fmt.Errorf("window %d: %w", window, err)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if monitor == "" {
		var ok bool
		if monitor, ok = e.locate(window, rect); !ok {
			return snap.Result{}, fmt.Errorf("%w: no monitor for window %d", snap.ErrUnknownMonitor, window)
		}
	}
	areas := e.current()
	target, ok := areas[monitor]
	if !ok {
		return snap.Result{}, fmt.Errorf("%w: %s", snap.ErrUnknownMonitor, monitor)
	}

	before := target.ZoneIndexSetFromWindow(window)
	if err := target.MoveWindowIntoZoneByIndexSet(window, set); err != nil {
		return snap.Result{}, err
	}
	for other, wa := range areas {
		if other != monitor {
			wa.Dismiss(window)
		}
	}
	if err := target.SaveWindowProcessToZoneIndex(window); err != nil {
		e.logger.Warn("failed to record app zones", "window", window, "monitor", monitor, "error", err)
	}
	set = zones.NewIndexSet(set...)
	return snap.Result{Monitor: monitor, Zones: set, Changed: !before.Equal(set)}, nil
}

// RestoreWindow places a newly mapped window into the zones its application
// last used on the monitor it appeared on.
func (e *Engine) RestoreWindow(window zones.WindowID) (bool, error) {
	if !e.Config().History.Enabled {
		return false, nil
	}
	rect, err := e.backend.WindowRect(window)
	if err != nil {
		return false, fmt.Errorf("window %d: %w", window, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	_, wa, ok := e.areaAt(rect.Center())
	if !ok || !wa.ZoneIndexSetFromWindow(window).Empty() {
		return false, nil
	}
	return wa.RestoreWindow(window)
}

// Forget removes window from every work area.
func (e *Engine) Forget(window zones.WindowID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, a := range e.areas {
		a.wa.Dismiss(window)
	}
	if e.drag != nil && e.drag.window == window {
		e.areas[e.drag.area].wa.MoveSizeCancel()
		e.drag = nil
	}
}
