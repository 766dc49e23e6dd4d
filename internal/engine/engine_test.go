package engine

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/1broseidon/zonetile/internal/apphistory"
	"github.com/1broseidon/zonetile/internal/config"
	"github.com/1broseidon/zonetile/internal/platform"
	"github.com/1broseidon/zonetile/internal/snap"
	"github.com/1broseidon/zonetile/internal/workarea"
	"github.com/1broseidon/zonetile/internal/zones"
)

type fakeBackend struct {
	mu       sync.Mutex
	displays []platform.Display
	desktop  int
	desktops int
	active   zones.WindowID
	rects    map[zones.WindowID]zones.Rect
	apps     map[zones.WindowID]string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		displays: []platform.Display{
			{Name: "HDMI-1", Bounds: zones.RectFromSize(200, 0, 200, 200), Work: zones.RectFromSize(200, 0, 200, 200)},
			{Name: "DP-1", Bounds: zones.RectFromSize(0, 0, 200, 200), Work: zones.RectFromSize(0, 0, 200, 200)},
		},
		desktops: 4,
		rects:    make(map[zones.WindowID]zones.Rect),
		apps:     make(map[zones.WindowID]string),
	}
}

func (f *fakeBackend) Displays() ([]platform.Display, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]platform.Display(nil), f.displays...), nil
}

func (f *fakeBackend) ActiveWindow() (zones.WindowID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active, nil
}

func (f *fakeBackend) CurrentDesktop() (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return platform.DesktopID(f.desktop), nil
}

func (f *fakeBackend) DesktopCount() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.desktops, nil
}

func (f *fakeBackend) setDesktop(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.desktop = n
}

func (f *fakeBackend) setRect(w zones.WindowID, r zones.Rect) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rects[w] = r
}

func (f *fakeBackend) setApp(w zones.WindowID, app string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.apps[w] = app
}

func (f *fakeBackend) setActive(w zones.WindowID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active = w
}

func (f *fakeBackend) WindowRect(window zones.WindowID) (zones.Rect, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rects[window]
	if !ok {
		return zones.Rect{}, fmt.Errorf("unknown window %d", window)
	}
	return r, nil
}

func (f *fakeBackend) MoveResize(window zones.WindowID, rect zones.Rect) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rects[window] = rect
	return nil
}

func (f *fakeBackend) IsResizable(zones.WindowID) bool { return true }

func (f *fakeBackend) AppID(window zones.WindowID) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.apps[window], nil
}

func (f *fakeBackend) rect(window zones.WindowID) zones.Rect {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rects[window]
}

// twoColumns lays out two 100px columns per 200px monitor.
func twoColumns() *config.Config {
	cfg := config.DefaultConfig()
	cfg.DefaultLayout = "columns"
	cfg.ZoneCount = 2
	cfg.ShowSpacing = false
	return cfg
}

func newEngine(t *testing.T, cfg *config.Config, opts ...Option) (*Engine, *fakeBackend) {
	t.Helper()
	b := newFakeBackend()
	e := New(cfg, b, opts...)
	changed, err := e.Sync()
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if !changed {
		t.Fatalf("expected first sync to report a change")
	}
	return e, b
}

func screenRects(info AreaInfo) []zones.Rect {
	var out []zones.Rect
	for _, z := range info.Zones {
		out = append(out, z.Rect)
	}
	return out
}

func TestSync_CreatesAreasInCanonicalOrder(t *testing.T) {
	e, b := newEngine(t, twoColumns())

	areas := e.Zones("")
	if len(areas) != 2 || areas[0].Monitor != "DP-1" || areas[1].Monitor != "HDMI-1" {
		t.Fatalf("unexpected areas %+v", areas)
	}
	want := []zones.Rect{{Left: 200, Top: 0, Right: 300, Bottom: 200}, {Left: 300, Top: 0, Right: 400, Bottom: 200}}
	if diff := cmp.Diff(want, screenRects(areas[1])); diff != "" {
		t.Errorf("HDMI-1 zones (-want +got):\n%s", diff)
	}
	if areas[0].Layout != "columns" || areas[0].LayoutType != zones.LayoutColumns {
		t.Errorf("unexpected layout %q/%q", areas[0].Layout, areas[0].LayoutType)
	}

	if changed, err := e.Sync(); err != nil || changed {
		t.Fatalf("expected idle sync to report no change, got %v %v", changed, err)
	}

	b.mu.Lock()
	b.displays = b.displays[1:]
	b.mu.Unlock()
	if changed, err := e.Sync(); err != nil || !changed {
		t.Fatalf("expected unplug to report a change, got %v %v", changed, err)
	}
	if got := e.Zones(""); len(got) != 1 || got[0].Monitor != "DP-1" {
		t.Fatalf("expected only DP-1 to remain, got %+v", got)
	}
}

func TestSync_WorkAreaResizeRebuildsZones(t *testing.T) {
	e, b := newEngine(t, twoColumns())

	b.mu.Lock()
	b.displays[1].Work = zones.RectFromSize(0, 20, 200, 180)
	b.mu.Unlock()
	if _, err := e.Sync(); err != nil {
		t.Fatalf("sync: %v", err)
	}
	got := screenRects(e.Zones("DP-1")[0])
	want := []zones.Rect{{Left: 0, Top: 20, Right: 100, Bottom: 200}, {Left: 100, Top: 20, Right: 200, Bottom: 200}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("zones after resize (-want +got):\n%s", diff)
	}
}

func TestDrag_CrossesMonitors(t *testing.T) {
	e, b := newEngine(t, twoColumns())
	const win zones.WindowID = 7

	if err := e.MoveSizeStart(win, zones.Point{X: 50, Y: 50}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := e.MoveSizeUpdate(zones.Point{X: 50, Y: 50}, false); err != nil {
		t.Fatalf("update: %v", err)
	}
	if st := e.Status(); st.Drag == nil || st.Drag.Monitor != "DP-1" || !st.Drag.Highlighted.Equal(zones.IndexSet{0}) {
		t.Fatalf("unexpected drag state %+v", st.Drag)
	}

	if err := e.MoveSizeUpdate(zones.Point{X: 350, Y: 50}, false); err != nil {
		t.Fatalf("update: %v", err)
	}
	st := e.Status()
	if st.Drag == nil || st.Drag.Monitor != "HDMI-1" || !st.Drag.Highlighted.Equal(zones.IndexSet{1}) {
		t.Fatalf("expected drag to follow onto HDMI-1, got %+v", st.Drag)
	}

	if err := e.MoveSizeEnd(win, zones.Point{X: 350, Y: 50}); err != nil {
		t.Fatalf("end: %v", err)
	}
	if got, want := b.rect(win), (zones.Rect{Left: 300, Top: 0, Right: 400, Bottom: 200}); got != want {
		t.Errorf("window rect = %s, want %s", got, want)
	}
	if st := e.Status(); st.Drag != nil || st.Windows != 1 {
		t.Errorf("expected drag to finish with one window, got %+v", st)
	}
}

func TestDrag_RepeatedStartKeepsSelection(t *testing.T) {
	e, _ := newEngine(t, twoColumns())
	const win zones.WindowID = 7

	if err := e.MoveSizeStart(win, zones.Point{X: 50, Y: 50}); err != nil {
		t.Fatalf("start: %v", err)
	}
	_ = e.MoveSizeUpdate(zones.Point{X: 50, Y: 50}, true)
	_ = e.MoveSizeUpdate(zones.Point{X: 150, Y: 50}, true)
	if err := e.MoveSizeStart(win, zones.Point{X: 150, Y: 50}); err != nil {
		t.Fatalf("repeated start: %v", err)
	}
	_ = e.MoveSizeUpdate(zones.Point{X: 150, Y: 50}, true)

	st := e.Status()
	if st.Drag == nil || !st.Drag.Highlighted.Equal(zones.IndexSet{0, 1}) {
		t.Fatalf("expected selection {0,1} to survive a repeated start, got %+v", st.Drag)
	}
}

func TestDrag_EndWithoutStart(t *testing.T) {
	e, _ := newEngine(t, twoColumns())
	if err := e.MoveSizeEnd(7, zones.Point{}); !errors.Is(err, workarea.ErrNoDrag) {
		t.Fatalf("expected ErrNoDrag, got %v", err)
	}
	if err := e.MoveSizeUpdate(zones.Point{X: 10, Y: 10}, false); err != nil {
		t.Fatalf("expected idle update to be ignored, got %v", err)
	}
}

func TestSnap_CrossMonitorWithActiveWindow(t *testing.T) {
	cfg := twoColumns()
	cfg.BoundaryPolicy = string(snap.PolicyCrossMonitor)
	e, b := newEngine(t, cfg)
	b.setActive(9)
	b.setRect(9, zones.RectFromSize(10, 10, 50, 50))

	steps := []struct {
		monitor string
		zones   zones.IndexSet
	}{
		{"DP-1", zones.IndexSet{0}},
		{"DP-1", zones.IndexSet{1}},
		{"HDMI-1", zones.IndexSet{0}},
		{"HDMI-1", zones.IndexSet{1}},
		{"DP-1", zones.IndexSet{0}},
	}
	for i, step := range steps {
		res, err := e.Snap(0, zones.DirRight, SnapDefault)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if res.Monitor != step.monitor || !res.Zones.Equal(step.zones) {
			t.Fatalf("step %d: got %s %v, want %s %v", i, res.Monitor, res.Zones, step.monitor, step.zones)
		}
	}
	if st := e.Status(); st.Windows != 1 {
		t.Errorf("expected the window on exactly one monitor, got %d", st.Windows)
	}
}

func TestSnap_NoActiveWindow(t *testing.T) {
	e, _ := newEngine(t, twoColumns())
	if _, err := e.Snap(0, zones.DirLeft, SnapIndex); !errors.Is(err, ErrNoWindow) {
		t.Fatalf("expected ErrNoWindow, got %v", err)
	}
}

func TestSnap_ExtendAcrossColumns(t *testing.T) {
	e, b := newEngine(t, twoColumns())
	b.setRect(4, zones.RectFromSize(110, 10, 50, 50))

	res, err := e.Snap(4, zones.DirLeft, SnapExtend)
	if err != nil {
		t.Fatalf("extend: %v", err)
	}
	if !res.Zones.Equal(zones.IndexSet{0, 1}) {
		t.Fatalf("expected both columns, got %v", res.Zones)
	}
	if got, want := b.rect(4), zones.RectFromSize(0, 0, 200, 200); got != want {
		t.Errorf("window rect = %s, want %s", got, want)
	}
}

func TestMoveToZones(t *testing.T) {
	e, b := newEngine(t, twoColumns())
	b.setRect(3, zones.RectFromSize(10, 10, 50, 50))

	if _, err := e.MoveToZones(3, "", zones.IndexSet{1}); err != nil {
		t.Fatalf("move: %v", err)
	}
	res, err := e.MoveToZones(3, "HDMI-1", zones.IndexSet{1, 0})
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if res.Monitor != "HDMI-1" || !res.Zones.Equal(zones.IndexSet{0, 1}) || !res.Changed {
		t.Fatalf("unexpected result %+v", res)
	}
	if got, want := b.rect(3), zones.RectFromSize(200, 0, 200, 200); got != want {
		t.Errorf("window rect = %s, want %s", got, want)
	}
	for _, a := range e.Zones("DP-1") {
		for _, z := range a.Zones {
			if len(z.Windows) != 0 {
				t.Errorf("expected window to leave DP-1, zone %d has %v", z.Index, z.Windows)
			}
		}
	}

	if _, err := e.MoveToZones(3, "VGA-1", zones.IndexSet{0}); !errors.Is(err, snap.ErrUnknownMonitor) {
		t.Fatalf("expected ErrUnknownMonitor, got %v", err)
	}
	if _, err := e.MoveToZones(3, "DP-1", zones.IndexSet{5}); !errors.Is(err, workarea.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestReload(t *testing.T) {
	e, _ := newEngine(t, twoColumns())

	next := twoColumns()
	next.MonitorLayouts = map[string]string{"HDMI-1": "rows"}
	if err := e.Reload(next); err != nil {
		t.Fatalf("reload: %v", err)
	}
	hdmi := e.Zones("HDMI-1")[0]
	want := []zones.Rect{{Left: 200, Top: 0, Right: 400, Bottom: 100}, {Left: 200, Top: 100, Right: 400, Bottom: 200}}
	if hdmi.Layout != "rows" {
		t.Fatalf("expected rows layout, got %q", hdmi.Layout)
	}
	if diff := cmp.Diff(want, screenRects(hdmi)); diff != "" {
		t.Errorf("HDMI-1 zones (-want +got):\n%s", diff)
	}

	bad := twoColumns()
	bad.DefaultLayout = "missing"
	if err := e.Reload(bad); err == nil {
		t.Fatalf("expected invalid config to be rejected")
	}
	if e.Config() != next {
		t.Fatalf("expected rejected config not to replace the active one")
	}
}

func TestRestoreWindow_FromHistory(t *testing.T) {
	e, b := newEngine(t, twoColumns(), WithHistory(apphistory.NewMemoryStore()))
	b.setApp(1, "firefox")
	b.setApp(2, "firefox")
	b.setRect(1, zones.RectFromSize(10, 10, 50, 50))
	b.setRect(2, zones.RectFromSize(20, 20, 50, 50))

	if _, err := e.MoveToZones(1, "DP-1", zones.IndexSet{1}); err != nil {
		t.Fatalf("move: %v", err)
	}
	restored, err := e.RestoreWindow(2)
	if err != nil || !restored {
		t.Fatalf("expected window to be restored, got %v %v", restored, err)
	}
	if got, want := b.rect(2), zones.RectFromSize(100, 0, 100, 200); got != want {
		t.Errorf("window rect = %s, want %s", got, want)
	}
}

func TestDesktopSwitch_KeepsAssignmentsPerDesktop(t *testing.T) {
	e, b := newEngine(t, twoColumns())
	b.setRect(5, zones.RectFromSize(10, 10, 50, 50))
	if _, err := e.MoveToZones(5, "DP-1", zones.IndexSet{0}); err != nil {
		t.Fatalf("move: %v", err)
	}

	b.setDesktop(1)
	if changed, err := e.Sync(); err != nil || !changed {
		t.Fatalf("expected desktop switch to report a change, got %v %v", changed, err)
	}
	st := e.Status()
	if st.WorkAreas != 4 || st.Windows != 0 {
		t.Fatalf("expected 4 areas and no windows on the new desktop, got %+v", st)
	}

	b.setDesktop(0)
	if _, err := e.Sync(); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if st := e.Status(); st.Windows != 1 {
		t.Fatalf("expected window back on desktop 0, got %+v", st)
	}
}

func TestSync_DropsAreasOfDeletedDesktops(t *testing.T) {
	e, b := newEngine(t, twoColumns())
	b.mu.Lock()
	b.desktops = 5
	b.mu.Unlock()
	b.setRect(5, zones.RectFromSize(10, 10, 50, 50))
	for n := 1; n <= 4; n++ {
		b.setDesktop(n)
		if _, err := e.Sync(); err != nil {
			t.Fatalf("sync desktop %d: %v", n, err)
		}
		if _, err := e.MoveToZones(5, "DP-1", zones.IndexSet{1}); err != nil {
			t.Fatalf("move on desktop %d: %v", n, err)
		}
	}
	if st := e.Status(); st.WorkAreas != 10 {
		t.Fatalf("expected 10 areas across 5 desktops, got %d", st.WorkAreas)
	}

	b.mu.Lock()
	b.desktops = 1
	b.desktop = 0
	b.mu.Unlock()
	changed, err := e.Sync()
	if err != nil || !changed {
		t.Fatalf("expected desktop removal to report a change, got %v %v", changed, err)
	}
	st := e.Status()
	if st.WorkAreas != 2 {
		t.Fatalf("work areas after deleting desktops 1-4: %d, want 2", st.WorkAreas)
	}
	if st.Desktop != platform.DesktopID(0).String() {
		t.Fatalf("unexpected current desktop %s", st.Desktop)
	}
}

func TestSync_UnknownDesktopCountKeepsAreas(t *testing.T) {
	e, b := newEngine(t, twoColumns())
	b.setDesktop(1)
	if _, err := e.Sync(); err != nil {
		t.Fatalf("sync: %v", err)
	}
	b.mu.Lock()
	b.desktops = 0
	b.desktop = 0
	b.mu.Unlock()
	if _, err := e.Sync(); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if st := e.Status(); st.WorkAreas != 4 {
		t.Fatalf("expected areas kept when desktop count is unknown, got %d", st.WorkAreas)
	}
}

func TestForget(t *testing.T) {
	e, b := newEngine(t, twoColumns())
	b.setRect(5, zones.RectFromSize(10, 10, 50, 50))
	if _, err := e.MoveToZones(5, "", zones.IndexSet{0}); err != nil {
		t.Fatalf("move: %v", err)
	}
	e.Forget(5)
	if st := e.Status(); st.Windows != 0 {
		t.Fatalf("expected window forgotten, got %+v", st)
	}
}
