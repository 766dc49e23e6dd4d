package mcp

import (
	"context"
	"errors"
	"sort"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/zonetile/internal/ipc"
	"github.com/1broseidon/zonetile/internal/zones"
)

type fakeDaemon struct {
	snapWindow uint32
	snapDir    zones.Direction
	snapMode   string
	moved      []int
	layouts    map[string]string
	err        error
}

func newFakeDaemon() *fakeDaemon {
	return &fakeDaemon{layouts: map[string]string{"DP-1": "priority-grid"}}
}

func (f *fakeDaemon) ListZones(monitor string) (*ipc.ZonesData, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &ipc.ZonesData{Areas: []ipc.AreaData{{
		Monitor: "DP-1",
		Layout:  "columns",
		Zones:   []ipc.ZoneData{{Index: 0, Rect: zones.RectFromSize(0, 0, 960, 1080)}},
	}}}, nil
}

func (f *fakeDaemon) GetMonitors() (*ipc.MonitorsData, error) {
	return &ipc.MonitorsData{Monitors: []ipc.MonitorInfo{{Name: "DP-1", Layout: f.layouts["DP-1"]}}}, nil
}

func (f *fakeDaemon) ListLayouts() (*ipc.LayoutsData, error) {
	return &ipc.LayoutsData{Layouts: []string{"columns", "grid"}}, nil
}

func (f *fakeDaemon) Snap(window uint32, dir zones.Direction, mode string) (*ipc.SnapData, error) {
	f.snapWindow, f.snapDir, f.snapMode = window, dir, mode
	if f.err != nil {
		return nil, f.err
	}
	return &ipc.SnapData{Monitor: "DP-1", Zones: []int{1}, Changed: true}, nil
}

func (f *fakeDaemon) Extend(window uint32, dir zones.Direction) (*ipc.SnapData, error) {
	f.snapWindow, f.snapDir = window, dir
	return &ipc.SnapData{Monitor: "DP-1", Zones: []int{0, 1}, Changed: true}, nil
}

func (f *fakeDaemon) MoveToZones(window uint32, monitor string, indices []int) (*ipc.SnapData, error) {
	f.moved = indices
	return &ipc.SnapData{Monitor: monitor, Changed: true}, nil
}

func (f *fakeDaemon) SetMonitorLayout(monitor, layout string) error {
	if layout == "" {
		layout = "priority-grid"
	}
	f.layouts[monitor] = layout
	return nil
}

func TestHandleSnapWindow(t *testing.T) {
	d := newFakeDaemon()
	s := NewServer(d, nil)

	_, out, err := s.handleSnapWindow(context.Background(), nil, SnapWindowInput{Window: 9, Direction: "Right", Mode: "Position"})
	if err != nil {
		t.Fatalf("handleSnapWindow: %v", err)
	}
	if d.snapWindow != 9 || d.snapDir != zones.DirRight || d.snapMode != "position" {
		t.Fatalf("unexpected forward: window=%d dir=%v mode=%q", d.snapWindow, d.snapDir, d.snapMode)
	}
	if out.Monitor != "DP-1" || len(out.Zones) != 1 || out.Zones[0] != 1 || !out.Changed {
		t.Fatalf("unexpected output %+v", out)
	}
}

func TestHandleSnapWindow_RejectsBadInput(t *testing.T) {
	s := NewServer(newFakeDaemon(), nil)
	tests := []SnapWindowInput{
		{Direction: "sideways"},
		{Direction: "left", Mode: "diagonal"},
	}
	for _, in := range tests {
		if _, _, err := s.handleSnapWindow(context.Background(), nil, in); err == nil {
			t.Errorf("expected error for %+v", in)
		}
	}
}

func TestHandleExtendWindow(t *testing.T) {
	d := newFakeDaemon()
	s := NewServer(d, nil)

	_, out, err := s.handleExtendWindow(context.Background(), nil, ExtendWindowInput{Direction: "down"})
	if err != nil {
		t.Fatalf("handleExtendWindow: %v", err)
	}
	if d.snapDir != zones.DirDown || len(out.Zones) != 2 {
		t.Fatalf("unexpected result dir=%v out=%+v", d.snapDir, out)
	}
}

func TestHandleMoveWindow(t *testing.T) {
	d := newFakeDaemon()
	s := NewServer(d, nil)

	if _, _, err := s.handleMoveWindow(context.Background(), nil, MoveWindowInput{}); err == nil {
		t.Fatal("expected error for empty zones")
	}
	if _, _, err := s.handleMoveWindow(context.Background(), nil, MoveWindowInput{Zones: []int{-1}}); err == nil {
		t.Fatal("expected error for negative zone")
	}

	_, out, err := s.handleMoveWindow(context.Background(), nil, MoveWindowInput{Monitor: " HDMI-1 ", Zones: []int{3, 4}})
	if err != nil {
		t.Fatalf("handleMoveWindow: %v", err)
	}
	if out.Monitor != "HDMI-1" || out.Zones == nil {
		t.Fatalf("unexpected output %+v", out)
	}
	if len(d.moved) != 2 {
		t.Fatalf("zones not forwarded: %v", d.moved)
	}
}

func TestHandleSetMonitorLayout_ReportsEffectiveLayout(t *testing.T) {
	d := newFakeDaemon()
	s := NewServer(d, nil)

	_, out, err := s.handleSetMonitorLayout(context.Background(), nil, SetMonitorLayoutInput{Monitor: "DP-1", Layout: "grid"})
	if err != nil {
		t.Fatalf("handleSetMonitorLayout: %v", err)
	}
	if out.Layout != "grid" {
		t.Fatalf("Layout = %q, want grid", out.Layout)
	}

	_, out, err = s.handleSetMonitorLayout(context.Background(), nil, SetMonitorLayoutInput{Monitor: "DP-1"})
	if err != nil {
		t.Fatalf("handleSetMonitorLayout: %v", err)
	}
	if out.Layout != "priority-grid" {
		t.Fatalf("Layout = %q, want priority-grid", out.Layout)
	}

	if _, _, err := s.handleSetMonitorLayout(context.Background(), nil, SetMonitorLayoutInput{}); err == nil {
		t.Fatal("expected error without monitor")
	}
}

func TestToolsOverInMemoryTransport(t *testing.T) {
	ctx := context.Background()
	d := newFakeDaemon()
	s := NewServer(d, nil)

	serverTransport, clientTransport := mcpsdk.NewInMemoryTransports()
	ss, err := s.mcpServer.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}
	defer ss.Close()

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "test", Version: "0"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	defer cs.Close()

	tools, err := cs.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	want := []string{"extend_window", "list_monitors", "list_zones", "move_window_to_zones", "set_monitor_layout", "snap_window"}
	if len(names) != len(want) {
		t.Fatalf("tools = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("tools = %v, want %v", names, want)
		}
	}

	res, err := cs.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      "snap_window",
		Arguments: map[string]any{"direction": "left"},
	})
	if err != nil {
		t.Fatalf("call snap_window: %v", err)
	}
	if res.IsError {
		t.Fatalf("snap_window returned tool error: %+v", res.Content)
	}
	if d.snapDir != zones.DirLeft {
		t.Fatalf("direction not forwarded: %v", d.snapDir)
	}

	d.err = errors.New("daemon error: no window")
	res, err = cs.CallTool(ctx, &mcpsdk.CallToolParams{Name: "list_zones", Arguments: map[string]any{}})
	if err != nil {
		t.Fatalf("call list_zones: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected tool error when the daemon fails")
	}
}
