// Package snap moves and extends windows between zones from the keyboard.
// Every function works on a snapshot of work areas keyed by monitor handle
// and keeps no state of its own.
package snap

import (
	"errors"
	"fmt"

	"github.com/1broseidon/zonetile/internal/topology"
	"github.com/1broseidon/zonetile/internal/workarea"
	"github.com/1broseidon/zonetile/internal/zones"
)

// ErrUnknownMonitor is returned when the current monitor has no work area.
var ErrUnknownMonitor = errors.New("unknown monitor")

// BoundaryPolicy decides what happens when a move runs past the first or
// last zone of a monitor.
type BoundaryPolicy string

const (
	// PolicyClamp keeps the window in the boundary zone.
	PolicyClamp BoundaryPolicy = "clamp"
	// PolicyWrap cycles to the other end of the same monitor.
	PolicyWrap BoundaryPolicy = "wrap"
	// PolicyCrossMonitor continues on the neighbouring monitor, wrapping
	// around at the last monitor.
	PolicyCrossMonitor BoundaryPolicy = "cross-monitor"
)

// DefaultPolicy is used when no policy is configured.
const DefaultPolicy = PolicyWrap

// ParseBoundaryPolicy converts a config value into a policy. Empty selects
// DefaultPolicy.
func ParseBoundaryPolicy(s string) (BoundaryPolicy, error) {
	switch p := BoundaryPolicy(s); p {
	case "":
		return DefaultPolicy, nil
	case PolicyClamp, PolicyWrap, PolicyCrossMonitor:
		return p, nil
	}
	return "", fmt.Errorf("unknown boundary policy %q", s)
}

// Areas maps monitor handles to their work area on the current desktop.
type Areas map[string]*workarea.WorkArea

// Result reports where a snap left the window.
type Result struct {
	Monitor string         `json:"monitor"`
	Zones   zones.IndexSet `json:"zones"`
	Changed bool           `json:"changed"`
}

func unchanged(monitor string, area *workarea.WorkArea, window zones.WindowID) Result {
	return Result{Monitor: monitor, Zones: area.ZoneIndexSetFromWindow(window)}
}

// SnapByIndex moves the window to the next zone index in dir: right and down
// go forward, left and up go back. An unassigned window lands on the first
// zone going forward or the last zone going back. Past the end of the
// layout the policy decides between staying, wrapping and moving on to the
// next monitor in canonical order.
func SnapByIndex(window zones.WindowID, current string, dir zones.Direction, areas Areas, monitors []topology.Monitor, policy BoundaryPolicy) (Result, error) {
	area, ok := areas[current]
	if !ok || area == nil {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownMonitor, current)
	}
	count := area.Layout().ZoneCount()
	if count == 0 {
		return unchanged(current, area, window), nil
	}

	set := area.ZoneIndexSetFromWindow(window)
	next := 0
	switch {
	case set.Empty() && dir.Forward():
		next = 0
	case set.Empty():
		next = count - 1
	case dir.Forward():
		next = set.Max() + 1
	default:
		next = set.Min() - 1
	}

	if next >= 0 && next < count {
		return moveTo(window, current, area, zones.IndexSet{next})
	}

	switch policy {
	case PolicyClamp:
		return unchanged(current, area, window), nil
	case PolicyCrossMonitor:
		var neighbor topology.Monitor
		var found bool
		if dir.Forward() {
			neighbor, found = topology.Next(monitors, current)
		} else {
			neighbor, found = topology.Prev(monitors, current)
		}
		if target := areas[neighbor.Handle]; found && neighbor.Handle != current && target != nil && target.Layout().ZoneCount() > 0 {
			index := 0
			if !dir.Forward() {
				index = target.Layout().ZoneCount() - 1
			}
			return hop(window, area, neighbor.Handle, target, zones.IndexSet{index})
		}
	}

	if dir.Forward() {
		next = 0
	} else {
		next = count - 1
	}
	return moveTo(window, current, area, zones.IndexSet{next})
}

func moveTo(window zones.WindowID, monitor string, area *workarea.WorkArea, set zones.IndexSet) (Result, error) {
	before := area.ZoneIndexSetFromWindow(window)
	if err := area.MoveWindowIntoZoneByIndexSet(window, set); err != nil {
		return Result{}, err
	}
	record(area, window)
	return Result{Monitor: monitor, Zones: set.Clone(), Changed: !before.Equal(set)}, nil
}

// hop moves the window onto another monitor's work area and only then
// releases it on the origin, so a failed move leaves it where it was.
func hop(window zones.WindowID, from *workarea.WorkArea, monitor string, to *workarea.WorkArea, set zones.IndexSet) (Result, error) {
	res, err := moveTo(window, monitor, to, set)
	if err != nil {
		return Result{}, err
	}
	from.Dismiss(window)
	return res, nil
}

// record saves the placement to app history. Failures are logged; the
// window has already moved.
func record(area *workarea.WorkArea, window zones.WindowID) {
	if err := area.SaveWindowProcessToZoneIndex(window); err != nil {
		area.Logger().Warn("failed to record app zones", "window", window, "area", area.ID().String(), "error", err)
	}
}
