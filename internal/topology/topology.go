// Package topology orders monitors the way a person reads them and answers
// which monitor lies next to another.
package topology

import (
	"cmp"
	"slices"

	"github.com/1broseidon/zonetile/internal/zones"
)

// Monitor is one display in screen coordinates.
type Monitor struct {
	Handle string
	Rect   zones.Rect
}

// Order returns monitors in reading order: rows top to bottom, monitors left
// to right inside a row. The result depends only on the set of rectangles,
// not their input order, and is unchanged when every rectangle is shifted by
// the same offset.
func Order(monitors []Monitor) []Monitor {
	rows := Rows(monitors)
	out := make([]Monitor, 0, len(monitors))
	for _, row := range rows {
		out = append(out, row...)
	}
	return out
}

// Rows clusters monitors into visual rows. Monitors are visited top to
// bottom; one joins the current row when it overlaps the row's first
// monitor vertically by at least half of the smaller height, otherwise it
// starts a new row.
func Rows(monitors []Monitor) [][]Monitor {
	sorted := slices.Clone(monitors)
	slices.SortFunc(sorted, compareTopLeft)

	var rows [][]Monitor
	for _, m := range sorted {
		if last := len(rows) - 1; last >= 0 && sameRow(rows[last][0].Rect, m.Rect) {
			rows[last] = append(rows[last], m)
			continue
		}
		rows = append(rows, []Monitor{m})
	}

	for _, row := range rows {
		slices.SortFunc(row, func(a, b Monitor) int {
			if c := cmp.Compare(a.Rect.Left, b.Rect.Left); c != 0 {
				return c
			}
			return compareTopLeft(a, b)
		})
	}
	return rows
}

func sameRow(anchor, r zones.Rect) bool {
	overlap := min(r.Bottom, anchor.Bottom) - max(r.Top, anchor.Top)
	if overlap <= 0 {
		return false
	}
	return overlap*2 >= min(r.Height(), anchor.Height())
}

func compareTopLeft(a, b Monitor) int {
	if c := cmp.Compare(a.Rect.Top, b.Rect.Top); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Rect.Left, b.Rect.Left); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Rect.Bottom, b.Rect.Bottom); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Rect.Right, b.Rect.Right); c != 0 {
		return c
	}
	return cmp.Compare(a.Handle, b.Handle)
}

// Neighbor returns the monitor next to handle in dir. Left and right stay in
// the same row; up and down pick the monitor in the adjacent row whose
// horizontal centre is nearest.
func Neighbor(monitors []Monitor, handle string, dir zones.Direction) (Monitor, bool) {
	rows := Rows(monitors)
	ri, ci := locate(rows, handle)
	if ri < 0 {
		return Monitor{}, false
	}

	switch dir {
	case zones.DirLeft:
		if ci > 0 {
			return rows[ri][ci-1], true
		}
	case zones.DirRight:
		if ci < len(rows[ri])-1 {
			return rows[ri][ci+1], true
		}
	case zones.DirUp:
		if ri > 0 {
			return nearestByCentre(rows[ri-1], rows[ri][ci]), true
		}
	case zones.DirDown:
		if ri < len(rows)-1 {
			return nearestByCentre(rows[ri+1], rows[ri][ci]), true
		}
	}
	return Monitor{}, false
}

func locate(rows [][]Monitor, handle string) (int, int) {
	for ri, row := range rows {
		for ci, m := range row {
			if m.Handle == handle {
				return ri, ci
			}
		}
	}
	return -1, -1
}

func nearestByCentre(row []Monitor, from Monitor) Monitor {
	cx := from.Rect.Center().X
	best := row[0]
	bestDist := abs(best.Rect.Center().X - cx)
	for _, m := range row[1:] {
		if d := abs(m.Rect.Center().X - cx); d < bestDist {
			best, bestDist = m, d
		}
	}
	return best
}

// Next returns the monitor after handle in canonical order, wrapping at the end.
func Next(monitors []Monitor, handle string) (Monitor, bool) {
	return step(monitors, handle, 1)
}

// Prev returns the monitor before handle in canonical order, wrapping at the start.
func Prev(monitors []Monitor, handle string) (Monitor, bool) {
	return step(monitors, handle, -1)
}

func step(monitors []Monitor, handle string, delta int) (Monitor, bool) {
	ordered := Order(monitors)
	idx := slices.IndexFunc(ordered, func(m Monitor) bool { return m.Handle == handle })
	if idx < 0 {
		return Monitor{}, false
	}
	n := len(ordered)
	return ordered[((idx+delta)%n+n)%n], true
}

// Containing returns the monitor that contains p, or the nearest one by
// centre distance when p lies outside every monitor.
func Containing(monitors []Monitor, p zones.Point) (Monitor, bool) {
	if len(monitors) == 0 {
		return Monitor{}, false
	}
	ordered := Order(monitors)
	for _, m := range ordered {
		if m.Rect.Contains(p) {
			return m, true
		}
	}
	best := ordered[0]
	bestDist := -1
	for _, m := range ordered {
		c := m.Rect.Center()
		d := abs(c.X-p.X) + abs(c.Y-p.Y)
		if bestDist < 0 || d < bestDist {
			best, bestDist = m, d
		}
	}
	return best, true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
