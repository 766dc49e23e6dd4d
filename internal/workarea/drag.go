package workarea

import (
	"fmt"

	"github.com/1broseidon/zonetile/internal/zones"
)

// MoveSizeEnter starts tracking a drag of window. Entering again with the
// same window keeps the drag as it is; a different window restarts it.
func (w *WorkArea) MoveSizeEnter(window zones.WindowID) error {
	if window == 0 {
		return fmt.Errorf("%w: null window", ErrInvalidArgument)
	}
	if w.drag != nil {
		if w.drag.window == window {
			return nil
		}
		w.logger.Debug("drag restarted for another window", "previous", w.drag.window, "window", window)
	}
	w.drag = &dragState{window: window, highlighted: zones.IndexSet{}}
	return nil
}

// MoveSizeUpdate recomputes the highlighted zones for a screen point. With
// selectMany the highlight covers every zone inside the box spanned by the
// zones under the first update and the zones under p. Updates outside a
// drag are ignored.
func (w *WorkArea) MoveSizeUpdate(p zones.Point, selectMany, isFirstUpdate bool) error {
	if w.drag == nil {
		return nil
	}
	w.drag.selectMany = selectMany
	w.drag.highlighted = w.highlightFor(p, selectMany, isFirstUpdate)
	return nil
}

func (w *WorkArea) highlightFor(p zones.Point, selectMany, isFirstUpdate bool) zones.IndexSet {
	local := w.localPoint(p)
	bounds := localRect(w.rect).Inflate(w.layout.SensitivityRadius())
	if !bounds.Contains(local) {
		return zones.IndexSet{}
	}

	under := w.layout.ZonesFromPoint(local, w.algo)
	if isFirstUpdate || w.drag.initial.Empty() {
		w.drag.initial = under.Clone()
	}
	if !selectMany || under.Empty() {
		return under
	}
	box, ok := w.layout.BoundingRect(w.drag.initial.Union(under))
	if !ok {
		return under
	}
	return w.layout.ZonesInRect(box)
}

// MoveSizeEnd finishes the drag of window at p. The window is assigned and
// moved to the resolved zones; when p resolves to nothing the previous
// assignment is left alone. Deferred layout updates are applied afterwards.
func (w *WorkArea) MoveSizeEnd(window zones.WindowID, p zones.Point) error {
	if w.drag == nil {
		return ErrNoDrag
	}
	if w.drag.window != window {
		return fmt.Errorf("%w: dragging %d, got %d", ErrWindowMismatch, w.drag.window, window)
	}

	set := w.highlightFor(p, w.drag.selectMany, false)
	w.drag = nil
	defer w.applyPending()

	if set.Empty() {
		w.logger.Debug("drag ended outside zones", "window", window, "area", w.id.String())
		return nil
	}
	delete(w.anchors, window)
	if err := w.place(window, set); err != nil {
		return err
	}
	if err := w.SaveWindowProcessToZoneIndex(window); err != nil {
		w.logger.Warn("failed to record app zones", "window", window, "error", err)
	}
	return nil
}

// MoveSizeCancel abandons the drag without touching any assignment.
func (w *WorkArea) MoveSizeCancel() {
	if w.drag == nil {
		return
	}
	w.drag = nil
	w.applyPending()
}

// Dragging returns the window being dragged.
func (w *WorkArea) Dragging() (zones.WindowID, bool) {
	if w.drag == nil {
		return 0, false
	}
	return w.drag.window, true
}

// Highlighted returns the zones the current drag would drop into.
func (w *WorkArea) Highlighted() zones.IndexSet {
	if w.drag == nil {
		return zones.IndexSet{}
	}
	return w.drag.highlighted.Clone()
}
