package ipc

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/1broseidon/zonetile/internal/config"
	"github.com/1broseidon/zonetile/internal/engine"
	"github.com/1broseidon/zonetile/internal/platform"
	"github.com/1broseidon/zonetile/internal/snap"
	"github.com/1broseidon/zonetile/internal/zones"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type call struct {
	name   string
	window zones.WindowID
	point  zones.Point
	dir    zones.Direction
	mode   engine.SnapMode
	set    zones.IndexSet
	many   bool
}

type fakeEngine struct {
	mu       sync.Mutex
	cfg      *config.Config
	calls    []call
	dragging bool
	snapErr  error
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{cfg: config.DefaultConfig()}
}

func (f *fakeEngine) record(c call) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *fakeEngine) last() call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func (f *fakeEngine) Config() *config.Config {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cfg
}

func (f *fakeEngine) Reload(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cfg = cfg
	return nil
}

func (f *fakeEngine) Status() engine.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	st := engine.Status{Desktop: "d", Monitors: []string{"DP-1", "HDMI-1"}, WorkAreas: 2, Windows: 1}
	if f.dragging {
		st.Drag = &engine.DragInfo{Window: 7, Monitor: "DP-1", Highlighted: zones.IndexSet{1}}
	}
	return st
}

func (f *fakeEngine) Monitors() []engine.MonitorInfo {
	return []engine.MonitorInfo{
		{Display: platform.Display{Name: "DP-1", Bounds: zones.RectFromSize(0, 0, 200, 200), Work: zones.RectFromSize(0, 0, 200, 180)}, Order: 0},
	}
}

func (f *fakeEngine) Zones(monitor string) []engine.AreaInfo {
	if monitor != "" && monitor != "DP-1" {
		return nil
	}
	return []engine.AreaInfo{{
		Monitor:    "DP-1",
		Layout:     "columns",
		LayoutType: zones.LayoutColumns,
		WorkRect:   zones.RectFromSize(0, 0, 200, 200),
		Zones: []engine.ZoneInfo{
			{Index: 0, Rect: zones.RectFromSize(0, 0, 100, 200), Windows: []zones.WindowID{7}},
			{Index: 1, Rect: zones.RectFromSize(100, 0, 100, 200)},
		},
	}}
}

func (f *fakeEngine) Snap(window zones.WindowID, dir zones.Direction, mode engine.SnapMode) (snap.Result, error) {
	f.record(call{name: "snap", window: window, dir: dir, mode: mode})
	if f.snapErr != nil {
		return snap.Result{}, f.snapErr
	}
	return snap.Result{Monitor: "DP-1", Zones: zones.IndexSet{1}, Changed: true}, nil
}

func (f *fakeEngine) MoveToZones(window zones.WindowID, monitor string, set zones.IndexSet) (snap.Result, error) {
	f.record(call{name: "move", window: window, set: set})
	return snap.Result{Monitor: monitor, Zones: set, Changed: true}, nil
}

func (f *fakeEngine) MoveSizeStart(window zones.WindowID, p zones.Point) error {
	f.record(call{name: "start", window: window, point: p})
	f.mu.Lock()
	f.dragging = true
	f.mu.Unlock()
	return nil
}

func (f *fakeEngine) MoveSizeUpdate(p zones.Point, selectMany bool) error {
	f.record(call{name: "update", point: p, many: selectMany})
	return nil
}

func (f *fakeEngine) MoveSizeEnd(window zones.WindowID, p zones.Point) error {
	f.record(call{name: "end", window: window, point: p})
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.dragging {
		return errors.New("no drag in progress")
	}
	f.dragging = false
	return nil
}

func (f *fakeEngine) MoveSizeCancel() {
	f.record(call{name: "cancel"})
	f.mu.Lock()
	f.dragging = false
	f.mu.Unlock()
}

// startServer listens on a short socket path; unix socket paths are limited
// to about 100 bytes.
func startServer(t *testing.T, eng Engine, opts ...ServerOption) *Client {
	t.Helper()
	dir, err := os.MkdirTemp("", "zt")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	srv, err := NewServer(filepath.Join(dir, "s.sock"), eng, opts...)
	require.NoError(t, err)
	require.NoError(t, srv.Start())
	t.Cleanup(srv.Stop)
	return NewClientAt(srv.SocketPath())
}

func TestStatusAndMonitors(t *testing.T) {
	c := startServer(t, newFakeEngine())

	st, err := c.GetStatus()
	require.NoError(t, err)
	assert.True(t, st.DaemonRunning)
	assert.Equal(t, []string{"DP-1", "HDMI-1"}, st.Monitors)
	assert.Equal(t, config.DefaultBuiltinLayout, st.DefaultLayout)
	assert.False(t, st.Dragging)

	mons, err := c.GetMonitors()
	require.NoError(t, err)
	require.Len(t, mons.Monitors, 1)
	assert.Equal(t, MonitorInfo{
		Name:   "DP-1",
		Bounds: zones.RectFromSize(0, 0, 200, 200),
		Work:   zones.RectFromSize(0, 0, 200, 180),
		Layout: config.DefaultBuiltinLayout,
	}, mons.Monitors[0])
}

func TestListZones(t *testing.T) {
	c := startServer(t, newFakeEngine())

	data, err := c.ListZones("")
	require.NoError(t, err)
	require.Len(t, data.Areas, 1)
	area := data.Areas[0]
	assert.Equal(t, "columns", area.LayoutType)
	require.Len(t, area.Zones, 2)
	assert.Equal(t, []uint32{7}, area.Zones[0].Windows)
	assert.Equal(t, zones.RectFromSize(100, 0, 100, 200), area.Zones[1].Rect)

	_, err = c.ListZones("VGA-9")
	assert.ErrorContains(t, err, "Unknown monitor")
}

func TestSnapExtendAndMove(t *testing.T) {
	eng := newFakeEngine()
	c := startServer(t, eng)

	res, err := c.Snap(0, zones.DirRight, "position")
	require.NoError(t, err)
	assert.Equal(t, &SnapData{Monitor: "DP-1", Zones: []int{1}, Changed: true}, res)
	assert.Equal(t, call{name: "snap", dir: zones.DirRight, mode: engine.SnapPosition}, eng.last())

	_, err = c.Extend(42, zones.DirUp)
	require.NoError(t, err)
	assert.Equal(t, call{name: "snap", window: 42, dir: zones.DirUp, mode: engine.SnapExtend}, eng.last())

	res, err = c.MoveToZones(42, "HDMI-1", []int{2, 0, 2})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, res.Zones)
	assert.Equal(t, "HDMI-1", res.Monitor)

	_, err = c.Snap(0, zones.DirLeft, "diagonal")
	assert.ErrorContains(t, err, "unknown snap mode")
}

func TestSnapErrorIsReported(t *testing.T) {
	eng := newFakeEngine()
	eng.snapErr = engine.ErrNoWindow
	c := startServer(t, eng)

	_, err := c.Snap(0, zones.DirLeft, "")
	assert.ErrorContains(t, err, "no window")
}

func TestDragLifecycle(t *testing.T) {
	eng := newFakeEngine()
	c := startServer(t, eng)

	require.NoError(t, c.MoveSizeStart(7, zones.Point{X: 10, Y: 10}))
	hl, err := c.MoveSizeUpdate(zones.Point{X: 150, Y: 10}, true)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, hl.Zones)
	assert.Equal(t, call{name: "update", point: zones.Point{X: 150, Y: 10}, many: true}, eng.last())

	require.NoError(t, c.MoveSizeEnd(7, zones.Point{X: 150, Y: 10}))
	assert.ErrorContains(t, c.MoveSizeEnd(7, zones.Point{}), "no drag")

	require.NoError(t, c.MoveSizeStart(7, zones.Point{}))
	require.NoError(t, c.MoveSizeCancel())
	assert.Equal(t, "cancel", eng.last().name)

	assert.ErrorContains(t, c.MoveSizeStart(0, zones.Point{}), "window is required")
}

func TestSetMonitorLayoutPersists(t *testing.T) {
	eng := newFakeEngine()
	var (
		mu    sync.Mutex
		saved *config.Config
	)
	c := startServer(t, eng, WithSaveFunc(func(cfg *config.Config) error {
		mu.Lock()
		defer mu.Unlock()
		saved = cfg
		return nil
	}))

	require.NoError(t, c.SetMonitorLayout("DP-1", "grid"))
	assert.Equal(t, "grid", eng.Config().LayoutFor("DP-1"))
	mu.Lock()
	require.NotNil(t, saved)
	assert.Equal(t, "grid", saved.LayoutFor("DP-1"))
	mu.Unlock()

	err := c.SetMonitorLayout("DP-1", "missing")
	assert.ErrorContains(t, err, "Failed to apply layout")
	assert.Equal(t, "grid", eng.Config().LayoutFor("DP-1"))

	layouts, err := c.ListLayouts()
	require.NoError(t, err)
	assert.Contains(t, layouts.Layouts, "grid")
	assert.Equal(t, map[string]string{"DP-1": "grid"}, layouts.MonitorLayouts)
}

func TestReloadUsesReloadFunc(t *testing.T) {
	calls := 0
	c := startServer(t, newFakeEngine(), WithReloadFunc(func() error {
		calls++
		if calls > 1 {
			return errors.New("bad yaml")
		}
		return nil
	}))

	require.NoError(t, c.Reload())
	assert.ErrorContains(t, c.Reload(), "bad yaml")
}

func TestUnknownCommand(t *testing.T) {
	resp := (&Server{engine: newFakeEngine()}).handleCommand(&Request{Command: "TILE"})
	assert.Equal(t, "ERROR", resp.Status)
	assert.Contains(t, resp.Error, "Unknown command")
}

func TestParseRequestRequiresCommand(t *testing.T) {
	_, err := ParseRequest([]byte(`{"payload":{}}`))
	assert.Error(t, err)
	req, err := ParseRequest([]byte(`{"command":"SNAP","payload":{"direction":"left"}}`))
	require.NoError(t, err)
	assert.Equal(t, CommandSnap, req.Command)
}

func TestClientWithoutDaemon(t *testing.T) {
	c := NewClientAt(filepath.Join(t.TempDir(), "none.sock"))
	assert.ErrorContains(t, c.Ping(), "is the daemon running")
}
