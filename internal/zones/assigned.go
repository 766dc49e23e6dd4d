package zones

import (
	"maps"
	"slices"
)

// AssignedWindows maps windows to the zone sets they occupy within one
// layout. A window never maps to an empty set.
type AssignedWindows struct {
	windows map[WindowID]IndexSet
}

// NewAssignedWindows returns an empty assignment table.
func NewAssignedWindows() *AssignedWindows {
	return &AssignedWindows{windows: make(map[WindowID]IndexSet)}
}

// Assign replaces the window's zone set. An empty set dismisses the window.
func (a *AssignedWindows) Assign(window WindowID, set IndexSet) {
	if window == 0 {
		return
	}
	if len(set) == 0 {
		a.Dismiss(window)
		return
	}
	a.windows[window] = NewIndexSet(set...)
}

// Dismiss removes the window if present.
func (a *AssignedWindows) Dismiss(window WindowID) {
	delete(a.windows, window)
}

// ZoneIndexSetFromWindow returns the window's zones, or an empty set for
// unknown or null windows.
func (a *AssignedWindows) ZoneIndexSetFromWindow(window WindowID) IndexSet {
	if window == 0 {
		return IndexSet{}
	}
	set, ok := a.windows[window]
	if !ok {
		return IndexSet{}
	}
	return set.Clone()
}

// IsZoneEmpty reports whether no window occupies the zone.
func (a *AssignedWindows) IsZoneEmpty(index int) bool {
	for _, set := range a.windows {
		if set.Contains(index) {
			return false
		}
	}
	return true
}

// Windows returns the assigned windows in ascending order.
func (a *AssignedWindows) Windows() []WindowID {
	return slices.Sorted(maps.Keys(a.windows))
}

// Prune drops indices at or above zoneCount and dismisses windows left with
// nothing. Used after a layout rebuild shrinks the zone count.
func (a *AssignedWindows) Prune(zoneCount int) {
	for window, set := range a.windows {
		kept := slices.DeleteFunc(set.Clone(), func(idx int) bool { return idx >= zoneCount })
		if len(kept) == 0 {
			delete(a.windows, window)
			continue
		}
		a.windows[window] = kept
	}
}
