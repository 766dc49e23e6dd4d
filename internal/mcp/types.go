package mcp

import "github.com/1broseidon/zonetile/internal/ipc"

// ListZonesInput is the input for the list_zones tool.
type ListZonesInput struct {
	Monitor string `json:"monitor,omitempty" jsonschema:"Monitor name such as DP-1 (default: every monitor on the current desktop)"`
}

// ListZonesOutput is the output for the list_zones tool.
type ListZonesOutput struct {
	Areas []ipc.AreaData `json:"areas"`
}

// ListMonitorsInput is the input for the list_monitors tool.
type ListMonitorsInput struct{}

// ListMonitorsOutput is the output for the list_monitors tool.
type ListMonitorsOutput struct {
	Monitors []ipc.MonitorInfo `json:"monitors"`
	Layouts  []string          `json:"layouts"`
}

// SnapWindowInput is the input for the snap_window tool.
type SnapWindowInput struct {
	Window    uint32 `json:"window,omitempty" jsonschema:"X11 window id (default: the active window)"`
	Direction string `json:"direction" jsonschema:"One of left, right, up or down"`
	Mode      string `json:"mode,omitempty" jsonschema:"index or position (default: move_windows_based_on_position from config)"`
}

// ExtendWindowInput is the input for the extend_window tool.
type ExtendWindowInput struct {
	Window    uint32 `json:"window,omitempty" jsonschema:"X11 window id (default: the active window)"`
	Direction string `json:"direction" jsonschema:"One of left, right, up or down"`
}

// MoveWindowInput is the input for the move_window_to_zones tool.
type MoveWindowInput struct {
	Window  uint32 `json:"window,omitempty" jsonschema:"X11 window id (default: the active window)"`
	Monitor string `json:"monitor,omitempty" jsonschema:"Target monitor (default: the monitor holding the window)"`
	Zones   []int  `json:"zones" jsonschema:"Zone indices to span; the window covers their bounding rectangle"`
}

// PlacementOutput reports where a window ended up.
type PlacementOutput struct {
	Monitor string `json:"monitor"`
	Zones   []int  `json:"zones"`
	Changed bool   `json:"changed"`
}

// SetMonitorLayoutInput is the input for the set_monitor_layout tool.
type SetMonitorLayoutInput struct {
	Monitor string `json:"monitor" jsonschema:"Monitor name"`
	Layout  string `json:"layout,omitempty" jsonschema:"Layout name from list_monitors (empty: back to default_layout)"`
}

// SetMonitorLayoutOutput is the output for the set_monitor_layout tool.
type SetMonitorLayoutOutput struct {
	Monitor string `json:"monitor"`
	Layout  string `json:"layout"`
}
