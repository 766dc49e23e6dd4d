package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/zonetile/internal/runtimepath"
	"github.com/1broseidon/zonetile/internal/zones"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for the default socket.
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientAt(socketPath)
}

// NewClientAt creates a client for socketPath.
func NewClientAt(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

// call sends cmd with payload and decodes the response data into out when
// out is non-nil.
func (c *Client) call(cmd CommandType, payload any, out any) error {
	req := &Request{Command: cmd}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", cmd, err)
		}
		req.Payload = data
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out == nil || len(resp.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", cmd, err)
	}
	return nil
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	return c.call(CommandReload, nil, nil)
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// GetMonitors retrieves monitor information
func (c *Client) GetMonitors() (*MonitorsData, error) {
	var monitors MonitorsData
	if err := c.call(CommandGetMonitors, nil, &monitors); err != nil {
		return nil, err
	}
	return &monitors, nil
}

// ListZones returns the zones of every monitor, or of monitor when set.
func (c *Client) ListZones(monitor string) (*ZonesData, error) {
	var data ZonesData
	if err := c.call(CommandListZones, ListZonesPayload{Monitor: monitor}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// ListLayouts retrieves the configured layouts.
func (c *Client) ListLayouts() (*LayoutsData, error) {
	var data LayoutsData
	if err := c.call(CommandListLayouts, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Snap moves window one zone in dir. A zero window means the active window.
func (c *Client) Snap(window uint32, dir zones.Direction, mode string) (*SnapData, error) {
	var data SnapData
	payload := SnapPayload{Window: window, Direction: dir.String(), Mode: mode}
	if err := c.call(CommandSnap, payload, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Extend grows window's zone set one step in dir.
func (c *Client) Extend(window uint32, dir zones.Direction) (*SnapData, error) {
	var data SnapData
	payload := SnapPayload{Window: window, Direction: dir.String()}
	if err := c.call(CommandExtend, payload, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// MoveToZones places window into the given zones on monitor.
func (c *Client) MoveToZones(window uint32, monitor string, indices []int) (*SnapData, error) {
	var data SnapData
	payload := MoveToZonesPayload{Window: window, Monitor: monitor, Zones: indices}
	if err := c.call(CommandMoveToZones, payload, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// MoveSizeStart begins a drag.
func (c *Client) MoveSizeStart(window uint32, p zones.Point) error {
	return c.call(CommandMoveSizeStart, MoveSizePayload{Window: window, Point: p}, nil)
}

// MoveSizeUpdate moves the drag pointer and returns the highlighted zones.
func (c *Client) MoveSizeUpdate(p zones.Point, selectMany bool) (*SnapData, error) {
	var data SnapData
	if err := c.call(CommandMoveSizeUpdate, MoveSizePayload{Point: p, SelectMany: selectMany}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// MoveSizeEnd drops window at p.
func (c *Client) MoveSizeEnd(window uint32, p zones.Point) error {
	return c.call(CommandMoveSizeEnd, MoveSizePayload{Window: window, Point: p}, nil)
}

// MoveSizeCancel abandons the drag.
func (c *Client) MoveSizeCancel() error {
	return c.call(CommandMoveSizeCancel, nil, nil)
}

// SetMonitorLayout assigns layout to monitor. An empty layout restores the
// default.
func (c *Client) SetMonitorLayout(monitor, layout string) error {
	return c.call(CommandSetMonitorLayout, SetMonitorLayoutPayload{Monitor: monitor, Layout: layout}, nil)
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
