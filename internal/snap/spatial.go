package snap

import (
	"fmt"

	"github.com/1broseidon/zonetile/internal/topology"
	"github.com/1broseidon/zonetile/internal/workarea"
	"github.com/1broseidon/zonetile/internal/zones"
)

type candidate struct {
	index  int
	center zones.Point
}

func screenCandidates(area *workarea.WorkArea) []candidate {
	out := make([]candidate, 0, area.Layout().ZoneCount())
	for _, z := range area.Layout().Zones() {
		out = append(out, candidate{index: z.ID(), center: area.ToScreen(z.Rect()).Center()})
	}
	return out
}

func inDirection(c, from zones.Point, dir zones.Direction) bool {
	switch dir {
	case zones.DirUp:
		return c.Y < from.Y
	case zones.DirDown:
		return c.Y > from.Y
	case zones.DirLeft:
		return c.X < from.X
	case zones.DirRight:
		return c.X > from.X
	}
	return false
}

// nearestInDirection returns the candidate closest to from by Manhattan
// distance among those strictly in dir, skipping indices in exclude.
func nearestInDirection(cands []candidate, from zones.Point, dir zones.Direction, exclude zones.IndexSet) (int, bool) {
	best, bestDist := -1, -1
	for _, c := range cands {
		if exclude.Contains(c.index) || !inDirection(c.center, from, dir) {
			continue
		}
		dist := abs(c.center.X-from.X) + abs(c.center.Y-from.Y)
		if best == -1 || dist < bestDist {
			best, bestDist = c.index, dist
		}
	}
	return best, best >= 0
}

// entryZone picks the zone a window enters through when it travels in dir
// onto a layout: moving right enters at the left edge, and so on. Among
// edge zones the one closest to from on the cross axis wins.
func entryZone(cands []candidate, from zones.Point, dir zones.Direction) (int, bool) {
	best, bestScore := -1, 0
	for _, c := range cands {
		var score int
		switch dir {
		case zones.DirUp:
			score = c.center.Y*10000 - abs(c.center.X-from.X)
		case zones.DirDown:
			score = -c.center.Y*10000 - abs(c.center.X-from.X)
		case zones.DirLeft:
			score = c.center.X*10000 - abs(c.center.Y-from.Y)
		case zones.DirRight:
			score = -c.center.X*10000 - abs(c.center.Y-from.Y)
		}
		if best == -1 || score > bestScore {
			best, bestScore = c.index, score
		}
	}
	return best, best >= 0
}

// SnapByPosition moves the window to the zone whose centre is nearest to the
// window centre in dir. With no zone left in that direction the policy
// applies: wrap enters the far edge of the same monitor, cross-monitor enters
// the neighbouring monitor in dir (or the furthest monitor the other way when
// there is none).
func SnapByPosition(window zones.WindowID, windowRect zones.Rect, current string, dir zones.Direction, areas Areas, monitors []topology.Monitor, policy BoundaryPolicy) (Result, error) {
	area, ok := areas[current]
	if !ok || area == nil {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownMonitor, current)
	}
	from := windowRect.Center()
	cands := screenCandidates(area)
	if len(cands) == 0 {
		return unchanged(current, area, window), nil
	}

	if idx, ok := nearestInDirection(cands, from, dir, area.ZoneIndexSetFromWindow(window)); ok {
		return moveTo(window, current, area, zones.IndexSet{idx})
	}

	switch policy {
	case PolicyClamp:
		return unchanged(current, area, window), nil
	case PolicyCrossMonitor:
		if handle := hopTarget(monitors, current, dir); handle != current {
			if target := areas[handle]; target != nil {
				if idx, ok := entryZone(screenCandidates(target), from, dir); ok {
					return hop(window, area, handle, target, zones.IndexSet{idx})
				}
			}
		}
	}

	idx, _ := entryZone(cands, from, dir)
	return moveTo(window, current, area, zones.IndexSet{idx})
}

// hopTarget returns the monitor next to current in dir, or when current is
// already at that edge, the furthest monitor in the opposite direction.
func hopTarget(monitors []topology.Monitor, current string, dir zones.Direction) string {
	if m, ok := topology.Neighbor(monitors, current, dir); ok {
		return m.Handle
	}
	handle := current
	for range monitors {
		m, ok := topology.Neighbor(monitors, handle, dir.Opposite())
		if !ok {
			break
		}
		handle = m.Handle
	}
	return handle
}

// Extend grows the window's zones towards dir. The window keeps an anchor
// (the zones it started from) and a moving final zone; each call moves the
// final zone one step in dir and assigns every zone inside the box spanning
// the anchor and the final zone, so opposite extends undo each other. An
// unassigned window is first snapped to the zones under windowRect. At the
// layout edge nothing changes.
func Extend(window zones.WindowID, windowRect zones.Rect, current string, dir zones.Direction, areas Areas) (Result, error) {
	area, ok := areas[current]
	if !ok || area == nil {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownMonitor, current)
	}

	set := area.ZoneIndexSetFromWindow(window)
	if set.Empty() {
		set = area.ZonesFromScreenRect(windowRect)
		if set.Empty() {
			set = area.ZonesFromScreenPoint(windowRect.Center())
		}
		if set.Empty() {
			return unchanged(current, area, window), nil
		}
		if err := area.MoveWindowIntoZoneByIndexSet(window, set); err != nil {
			return Result{}, err
		}
	}

	cands := screenCandidates(area)
	anchor, ok := area.Anchor(window)
	if !ok {
		anchor = workarea.ExtendAnchor{Initial: set, Final: extremeZone(cands, set, dir)}
	}

	finalRect, ok := area.ZoneScreenRect(zones.IndexSet{anchor.Final})
	if !ok {
		return unchanged(current, area, window), nil
	}
	next, ok := nearestInDirection(cands, finalRect.Center(), dir, zones.IndexSet{anchor.Final})
	if !ok {
		return unchanged(current, area, window), nil
	}

	box, ok := area.Layout().BoundingRect(anchor.Initial.Union(zones.IndexSet{next}))
	if !ok {
		return unchanged(current, area, window), nil
	}
	extended := area.Layout().ZonesInRect(box)
	before := area.ZoneIndexSetFromWindow(window)
	if err := area.ExtendWindow(window, extended, workarea.ExtendAnchor{Initial: anchor.Initial, Final: next}); err != nil {
		return Result{}, err
	}
	record(area, window)
	return Result{Monitor: current, Zones: extended, Changed: !before.Equal(extended)}, nil
}

// extremeZone returns the zone of set that lies furthest in dir.
func extremeZone(cands []candidate, set zones.IndexSet, dir zones.Direction) int {
	best, bestScore := set.Min(), 0
	first := true
	for _, c := range cands {
		if !set.Contains(c.index) {
			continue
		}
		var score int
		switch dir {
		case zones.DirUp:
			score = -c.center.Y
		case zones.DirDown:
			score = c.center.Y
		case zones.DirLeft:
			score = -c.center.X
		case zones.DirRight:
			score = c.center.X
		}
		if first || score > bestScore {
			best, bestScore, first = c.index, score, false
		}
	}
	return best
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
