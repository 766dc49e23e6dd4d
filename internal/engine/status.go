package engine

import (
	"cmp"
	"slices"

	"github.com/1broseidon/zonetile/internal/platform"
	"github.com/1broseidon/zonetile/internal/topology"
	"github.com/1broseidon/zonetile/internal/zones"
)

// ZoneInfo is one zone in screen coordinates.
type ZoneInfo struct {
	Index   int              `json:"index"`
	Rect    zones.Rect       `json:"rect"`
	Windows []zones.WindowID `json:"windows,omitempty"`
}

// AreaInfo describes the work area of one monitor on the current desktop.
type AreaInfo struct {
	Monitor    string           `json:"monitor"`
	Desktop    string           `json:"desktop"`
	Layout     string           `json:"layout"`
	LayoutID   string           `json:"layout_id"`
	LayoutType zones.LayoutType `json:"layout_type"`
	WorkRect   zones.Rect       `json:"work_rect"`
	Zones      []ZoneInfo       `json:"zones"`
}

// MonitorInfo is a display with its position in canonical order.
type MonitorInfo struct {
	platform.Display
	Order int `json:"order"`
}

// DragInfo describes the drag in progress.
type DragInfo struct {
	Window      zones.WindowID `json:"window"`
	Monitor     string         `json:"monitor"`
	Highlighted zones.IndexSet `json:"highlighted"`
}

// Status summarises the engine.
type Status struct {
	Desktop   string    `json:"desktop"`
	Monitors  []string  `json:"monitors"`
	WorkAreas int       `json:"work_areas"`
	Windows   int       `json:"windows"`
	Policy    string    `json:"boundary_policy"`
	Algorithm string    `json:"overlapping_zones_algorithm"`
	Drag      *DragInfo `json:"drag,omitempty"`
}

// Status returns a summary of the engine state.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := Status{
		Desktop:   e.desktop.String(),
		WorkAreas: len(e.areas),
		Policy:    string(e.cfg.Policy()),
		Algorithm: string(e.cfg.Algorithm()),
	}
	for _, m := range topology.Order(e.monitors()) {
		st.Monitors = append(st.Monitors, m.Handle)
	}
	for _, wa := range e.current() {
		st.Windows += len(wa.Windows())
	}
	if e.drag != nil {
		st.Drag = &DragInfo{Window: e.drag.window, Monitor: e.drag.area.Monitor}
		if a, ok := e.areas[e.drag.area]; ok {
			st.Drag.Highlighted = a.wa.Highlighted()
		}
	}
	return st
}

// Monitors returns the displays in canonical order.
func (e *Engine) Monitors() []MonitorInfo {
	e.mu.Lock()
	defer e.mu.Unlock()

	byName := make(map[string]platform.Display, len(e.displays))
	for _, d := range e.displays {
		byName[d.Name] = d
	}
	var out []MonitorInfo
	for i, m := range topology.Order(e.monitors()) {
		out = append(out, MonitorInfo{Display: byName[m.Handle], Order: i})
	}
	return out
}

// Zones lists the work areas of the current desktop, optionally limited to
// one monitor, in canonical monitor order.
func (e *Engine) Zones(monitor string) []AreaInfo {
	e.mu.Lock()
	defer e.mu.Unlock()

	order := make(map[string]int)
	for i, m := range topology.Order(e.monitors()) {
		order[m.Handle] = i
	}

	var out []AreaInfo
	for id, a := range e.areas {
		if id.Desktop != e.desktop || (monitor != "" && id.Monitor != monitor) {
			continue
		}
		layout := a.wa.Layout()
		info := AreaInfo{
			Monitor:    id.Monitor,
			Desktop:    id.Desktop.String(),
			Layout:     a.layout,
			LayoutID:   layout.ID().String(),
			LayoutType: layout.Type(),
			WorkRect:   a.wa.WorkRect(),
			Zones:      []ZoneInfo{},
		}
		occupants := make(map[int][]zones.WindowID)
		for _, w := range a.wa.Windows() {
			for _, idx := range a.wa.ZoneIndexSetFromWindow(w) {
				occupants[idx] = append(occupants[idx], w)
			}
		}
		for _, z := range layout.Zones() {
			info.Zones = append(info.Zones, ZoneInfo{
				Index:   z.ID(),
				Rect:    a.wa.ToScreen(z.Rect()),
				Windows: occupants[z.ID()],
			})
		}
		out = append(out, info)
	}
	slices.SortFunc(out, func(a, b AreaInfo) int {
		return cmp.Compare(order[a.Monitor], order[b.Monitor])
	})
	return out
}
