package workarea

import (
	"fmt"

	"github.com/1broseidon/zonetile/internal/zones"
)

// SaveWindowProcessToZoneIndex records the window's zones against its
// application. Null and unassigned windows are ignored.
func (w *WorkArea) SaveWindowProcessToZoneIndex(window zones.WindowID) error {
	if window == 0 || w.history == nil || w.backend == nil {
		return nil
	}
	set := w.assigned.ZoneIndexSetFromWindow(window)
	if set.Empty() {
		return nil
	}
	appID, err := w.backend.AppID(window)
	if err != nil {
		return fmt.Errorf("app id for window %d: %w", window, err)
	}
	if appID == "" {
		return nil
	}
	if err := w.history.SetAppLastZones(appID, w.id, w.layout.ID().String(), set); err != nil {
		return fmt.Errorf("save zones for %s: %w", appID, err)
	}
	return nil
}

// RestoreWindow moves the window to the zones its application last used on
// this work area and layout. It reports whether the window was moved.
func (w *WorkArea) RestoreWindow(window zones.WindowID) (bool, error) {
	if window == 0 || w.history == nil || w.backend == nil {
		return false, nil
	}
	appID, err := w.backend.AppID(window)
	if err != nil {
		return false, fmt.Errorf("app id for window %d: %w", window, err)
	}
	if appID == "" {
		return false, nil
	}
	last, err := w.history.GetAppLastZoneIndexSet(appID, w.id, w.layout.ID())
	if err != nil {
		return false, fmt.Errorf("load zones for %s: %w", appID, err)
	}

	valid := make(zones.IndexSet, 0, len(last))
	for _, idx := range last {
		if _, ok := w.layout.Zone(idx); ok {
			valid = append(valid, idx)
		}
	}
	if valid.Empty() {
		return false, nil
	}
	if err := w.MoveWindowIntoZoneByIndexSet(window, valid); err != nil {
		return false, err
	}
	w.logger.Debug("window restored from history", "window", window, "app", appID, "zones", valid.String())
	return true, nil
}
