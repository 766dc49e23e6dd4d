package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/zonetile/internal/zones"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload           CommandType = "RELOAD"
	CommandGetStatus        CommandType = "GET_STATUS"
	CommandGetMonitors      CommandType = "GET_MONITORS"
	CommandListZones        CommandType = "LIST_ZONES"
	CommandListLayouts      CommandType = "LIST_LAYOUTS"
	CommandSnap             CommandType = "SNAP"
	CommandExtend           CommandType = "EXTEND"
	CommandMoveToZones      CommandType = "MOVE_TO_ZONES"
	CommandMoveSizeStart    CommandType = "MOVESIZE_START"
	CommandMoveSizeUpdate   CommandType = "MOVESIZE_UPDATE"
	CommandMoveSizeEnd      CommandType = "MOVESIZE_END"
	CommandMoveSizeCancel   CommandType = "MOVESIZE_CANCEL"
	CommandSetMonitorLayout CommandType = "SET_MONITOR_LAYOUT"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	Desktop       string   `json:"desktop"`
	Monitors      []string `json:"monitors"`
	WorkAreas     int      `json:"work_areas"`
	Windows       int      `json:"windows"`
	Policy        string   `json:"boundary_policy"`
	Algorithm     string   `json:"overlapping_zones_algorithm"`
	DefaultLayout string   `json:"default_layout"`
	Dragging      bool     `json:"dragging"`
	UptimeSeconds int64    `json:"uptime_seconds"`
	DaemonRunning bool     `json:"daemon_running"`
}

// MonitorInfo represents information about a single monitor
type MonitorInfo struct {
	Order  int        `json:"order"`
	Name   string     `json:"name"`
	Bounds zones.Rect `json:"bounds"`
	Work   zones.Rect `json:"work"`
	Layout string     `json:"layout"`
}

// MonitorsData represents the data returned by GET_MONITORS
type MonitorsData struct {
	Monitors []MonitorInfo `json:"monitors"`
}

// ZoneData is one zone in screen coordinates.
type ZoneData struct {
	Index   int        `json:"index"`
	Rect    zones.Rect `json:"rect"`
	Windows []uint32   `json:"windows,omitempty"`
}

// AreaData is the layout of one monitor on the current desktop.
type AreaData struct {
	Monitor    string     `json:"monitor"`
	Layout     string     `json:"layout"`
	LayoutID   string     `json:"layout_id"`
	LayoutType string     `json:"layout_type"`
	WorkRect   zones.Rect `json:"work_rect"`
	Zones      []ZoneData `json:"zones"`
}

// ZonesData represents the data returned by LIST_ZONES
type ZonesData struct {
	Areas []AreaData `json:"areas"`
}

// ListZonesPayload limits LIST_ZONES to one monitor.
type ListZonesPayload struct {
	Monitor string `json:"monitor,omitempty"`
}

type LayoutsData struct {
	Layouts        []string          `json:"layouts"`
	DefaultLayout  string            `json:"default_layout"`
	MonitorLayouts map[string]string `json:"monitor_layouts,omitempty"`
}

// SnapPayload is used by SNAP and EXTEND. A zero window means the active
// window.
type SnapPayload struct {
	Window    uint32 `json:"window,omitempty"`
	Direction string `json:"direction"`
	// Mode is "index", "position" or empty for the configured default.
	Mode string `json:"mode,omitempty"`
}

// MoveToZonesPayload places a window into explicit zones.
type MoveToZonesPayload struct {
	Window  uint32 `json:"window,omitempty"`
	Monitor string `json:"monitor,omitempty"`
	Zones   []int  `json:"zones"`
}

// MoveSizePayload carries a drag event. Window is ignored by updates.
type MoveSizePayload struct {
	Window     uint32      `json:"window,omitempty"`
	Point      zones.Point `json:"point"`
	SelectMany bool        `json:"select_many,omitempty"`
}

// SetMonitorLayoutPayload assigns a layout to a monitor and persists it.
type SetMonitorLayoutPayload struct {
	Monitor string `json:"monitor"`
	Layout  string `json:"layout"`
}

// SnapData is the outcome of SNAP, EXTEND and MOVE_TO_ZONES.
type SnapData struct {
	Monitor string `json:"monitor"`
	Zones   []int  `json:"zones"`
	Changed bool   `json:"changed"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	if req.Command == "" {
		return nil, fmt.Errorf("failed to parse request: missing command")
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
