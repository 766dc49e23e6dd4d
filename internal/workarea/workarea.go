// Package workarea binds a layout to one monitor and virtual desktop and
// turns drag gestures and direct requests into window placements.
package workarea

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/1broseidon/zonetile/internal/zones"
)

// ID identifies a work area: one monitor on one virtual desktop.
type ID struct {
	Monitor string    `json:"monitor"`
	Desktop uuid.UUID `json:"desktop"`
}

func (id ID) String() string {
	return id.Monitor + "/" + id.Desktop.String()
}

// ExtendAnchor records where a keyboard extension started and which zone it
// currently reaches.
type ExtendAnchor struct {
	Initial zones.IndexSet
	Final   int
}

type dragState struct {
	window      zones.WindowID
	selectMany  bool
	initial     zones.IndexSet
	highlighted zones.IndexSet
}

type pendingLayout struct {
	layout *zones.Layout
	rect   zones.Rect
}

// WorkArea owns a layout, the windows assigned to its zones and the state
// of an in-progress drag. It is not safe for concurrent use.
type WorkArea struct {
	id       ID
	rect     zones.Rect
	layout   *zones.Layout
	assigned *zones.AssignedWindows
	algo     zones.OverlappingAlgorithm

	backend Backend
	history History
	logger  *slog.Logger

	drag    *dragState
	pending *pendingLayout
	anchors map[zones.WindowID]ExtendAnchor
}

// New builds layout over workRect (screen coordinates) and returns the work
// area. Zones are kept relative to the top-left of workRect.
func New(id ID, workRect zones.Rect, layout *zones.Layout, opts ...Option) (*WorkArea, error) {
	if layout == nil {
		return nil, fmt.Errorf("%w: nil layout", ErrInvalidArgument)
	}
	w := &WorkArea{
		id:       id,
		assigned: zones.NewAssignedWindows(),
		algo:     zones.OverlapSmallest,
		logger:   slog.New(slog.DiscardHandler),
		anchors:  make(map[zones.WindowID]ExtendAnchor),
	}
	for _, opt := range opts {
		opt(w)
	}
	if err := layout.Build(localRect(workRect)); err != nil {
		return nil, fmt.Errorf("build layout for %s: %w", id, err)
	}
	w.layout = layout
	w.rect = workRect
	return w, nil
}

func localRect(r zones.Rect) zones.Rect {
	return zones.RectFromSize(0, 0, r.Width(), r.Height())
}

func (w *WorkArea) ID() ID                                { return w.id }
func (w *WorkArea) WorkRect() zones.Rect                  { return w.rect }
func (w *WorkArea) Layout() *zones.Layout                 { return w.layout }
func (w *WorkArea) Algorithm() zones.OverlappingAlgorithm { return w.algo }

// Logger returns the work area's logger.
func (w *WorkArea) Logger() *slog.Logger { return w.logger }

// SetAlgorithm changes the overlapping zones algorithm.
func (w *WorkArea) SetAlgorithm(a zones.OverlappingAlgorithm) { w.algo = a }

// ToLocal converts a screen rectangle to work-area coordinates.
func (w *WorkArea) ToLocal(r zones.Rect) zones.Rect {
	return r.Offset(-w.rect.Left, -w.rect.Top)
}

// ToScreen converts a work-area rectangle to screen coordinates.
func (w *WorkArea) ToScreen(r zones.Rect) zones.Rect {
	return r.Offset(w.rect.Left, w.rect.Top)
}

func (w *WorkArea) localPoint(p zones.Point) zones.Point {
	return zones.Point{X: p.X - w.rect.Left, Y: p.Y - w.rect.Top}
}

// ZoneScreenRect returns the screen bounds of the zones in set.
func (w *WorkArea) ZoneScreenRect(set zones.IndexSet) (zones.Rect, bool) {
	r, ok := w.layout.BoundingRect(set)
	if !ok {
		return zones.Rect{}, false
	}
	return w.ToScreen(r), true
}

// ZonesFromScreenRect resolves a screen rectangle to zones with the
// configured algorithm.
func (w *WorkArea) ZonesFromScreenRect(r zones.Rect) zones.IndexSet {
	return w.layout.ZonesFromRect(w.ToLocal(r), w.algo)
}

// ZonesFromScreenPoint resolves a screen point to zones with the configured
// algorithm.
func (w *WorkArea) ZonesFromScreenPoint(p zones.Point) zones.IndexSet {
	return w.layout.ZonesFromPoint(w.localPoint(p), w.algo)
}

// ZoneIndexSetFromWindow returns the zones the window occupies here.
func (w *WorkArea) ZoneIndexSetFromWindow(window zones.WindowID) zones.IndexSet {
	return w.assigned.ZoneIndexSetFromWindow(window)
}

// IsZoneEmpty reports whether no window occupies the zone.
func (w *WorkArea) IsZoneEmpty(index int) bool {
	return w.assigned.IsZoneEmpty(index)
}

// Windows returns the windows assigned on this work area.
func (w *WorkArea) Windows() []zones.WindowID {
	return w.assigned.Windows()
}

// Dismiss forgets the window without moving it.
func (w *WorkArea) Dismiss(window zones.WindowID) {
	w.assigned.Dismiss(window)
	delete(w.anchors, window)
}

// MoveWindowIntoZoneByIndex places the window in a single zone.
func (w *WorkArea) MoveWindowIntoZoneByIndex(window zones.WindowID, index int) error {
	return w.MoveWindowIntoZoneByIndexSet(window, zones.IndexSet{index})
}

// MoveWindowIntoZoneByIndexSet assigns the window to set and resizes it to
// the union of the zones unless the window cannot be resized. An empty set
// dismisses the window.
func (w *WorkArea) MoveWindowIntoZoneByIndexSet(window zones.WindowID, set zones.IndexSet) error {
	if err := w.checkPlacement(window, set); err != nil {
		return err
	}
	delete(w.anchors, window)
	return w.place(window, zones.NewIndexSet(set...))
}

// ExtendWindow assigns an extended zone set and remembers the anchor the
// extension grows from.
func (w *WorkArea) ExtendWindow(window zones.WindowID, set zones.IndexSet, anchor ExtendAnchor) error {
	if err := w.checkPlacement(window, set); err != nil {
		return err
	}
	if err := w.place(window, zones.NewIndexSet(set...)); err != nil {
		return err
	}
	w.anchors[window] = ExtendAnchor{Initial: anchor.Initial.Clone(), Final: anchor.Final}
	return nil
}

// Anchor returns the extension anchor for the window, if its current
// assignment came from ExtendWindow.
func (w *WorkArea) Anchor(window zones.WindowID) (ExtendAnchor, bool) {
	a, ok := w.anchors[window]
	return a, ok
}

func (w *WorkArea) checkPlacement(window zones.WindowID, set zones.IndexSet) error {
	if window == 0 {
		return fmt.Errorf("%w: null window", ErrInvalidArgument)
	}
	for _, idx := range set {
		if _, ok := w.layout.Zone(idx); !ok {
			return fmt.Errorf("%w: zone %d not in layout %s", ErrInvalidArgument, idx, w.layout.ID())
		}
	}
	return nil
}

// place resizes the window onto set, then records the assignment. A failed
// resize leaves the assignment untouched.
func (w *WorkArea) place(window zones.WindowID, set zones.IndexSet) error {
	if set.Empty() || w.backend == nil {
		w.assigned.Assign(window, set)
		return nil
	}
	if !w.backend.IsResizable(window) {
		w.logger.Debug("window not resizable, keeping size", "window", window, "zones", set.String())
		w.assigned.Assign(window, set)
		return nil
	}
	if target, ok := w.ZoneScreenRect(set); ok {
		if err := w.backend.MoveResize(window, target); err != nil {
			return fmt.Errorf("move window %d to %s: %w", window, target, err)
		}
		w.logger.Debug("window placed", "window", window, "zones", set.String(), "rect", target.String())
	}
	w.assigned.Assign(window, set)
	return nil
}

// UpdateLayout rebuilds the work area with a new layout or work rectangle.
// A nil layout rebuilds the current one. While a drag is in progress the
// update is held until the drag finishes; a later update replaces a held
// one. A failed build keeps the current layout.
func (w *WorkArea) UpdateLayout(layout *zones.Layout, workRect zones.Rect) error {
	if layout == nil {
		layout = w.layout
	}
	if w.drag != nil {
		w.pending = &pendingLayout{layout: layout, rect: workRect}
		w.logger.Debug("layout update deferred until drag ends", "area", w.id.String())
		return nil
	}
	return w.applyLayout(layout, workRect)
}

func (w *WorkArea) applyLayout(layout *zones.Layout, workRect zones.Rect) error {
	if layout == w.layout {
		layout = w.layout.Clone()
	}
	if err := layout.Build(localRect(workRect)); err != nil {
		return fmt.Errorf("rebuild layout for %s: %w", w.id, err)
	}
	w.layout = layout
	w.rect = workRect
	w.assigned.Prune(layout.ZoneCount())
	clear(w.anchors)
	return nil
}

func (w *WorkArea) applyPending() {
	if w.pending == nil {
		return
	}
	p := w.pending
	w.pending = nil
	if err := w.applyLayout(p.layout, p.rect); err != nil {
		w.logger.Warn("deferred layout update failed", "area", w.id.String(), "error", err)
	}
}
