package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/1broseidon/zonetile/internal/zones"
)

// Monitor is an active RandR output. Work is Bounds minus dock struts.
type Monitor struct {
	ID     int
	Name   string
	Bounds zones.Rect
	Work   zones.Rect
}

// Monitors returns all active monitors with their work areas.
func (c *Connection) Monitors() ([]Monitor, error) {
	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		// Disabled CRTC.
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		if out, err := randr.GetOutputInfo(c.XUtil.Conn(), info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(out.Name)
		}

		bounds := zones.RectFromSize(int(info.X), int(info.Y), int(info.Width), int(info.Height))
		monitors = append(monitors, Monitor{ID: i, Name: name, Bounds: bounds, Work: bounds})
	}

	struts := c.dockStruts()
	for i := range monitors {
		monitors[i].Work = c.workArea(monitors[i].Bounds, struts)
	}
	return monitors, nil
}

type side int

const (
	sideTop side = iota
	sideBottom
	sideLeft
	sideRight
)

// strut is a screen region reserved by a dock along one edge.
type strut struct {
	side side
	rect zones.Rect
}

func (c *Connection) workArea(bounds zones.Rect, struts []strut) zones.Rect {
	if work, ok := applyStruts(bounds, struts); ok {
		return work
	}
	return c.ewmhWorkArea(bounds)
}

// applyStruts shrinks bounds by the struts touching it. ok is false when no
// strut touches bounds.
func applyStruts(bounds zones.Rect, struts []strut) (zones.Rect, bool) {
	work := bounds
	reserved := false
	for _, s := range struts {
		isect := bounds.Intersect(s.rect)
		if isect.Empty() {
			continue
		}
		reserved = true
		switch s.side {
		case sideTop:
			work.Top = max(work.Top, isect.Bottom)
		case sideBottom:
			work.Bottom = min(work.Bottom, isect.Top)
		case sideLeft:
			work.Left = max(work.Left, isect.Right)
		case sideRight:
			work.Right = min(work.Right, isect.Left)
		}
	}
	if !reserved {
		return bounds, false
	}
	if work.Empty() {
		return bounds, true
	}
	return work, true
}

// ewmhWorkArea intersects bounds with _NET_WORKAREA of the current desktop.
func (c *Connection) ewmhWorkArea(bounds zones.Rect) zones.Rect {
	areas, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(areas) == 0 {
		return bounds
	}
	idx := 0
	if current, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil && int(current) < len(areas) {
		idx = int(current)
	}
	wa := areas[idx]
	isect := bounds.Intersect(zones.RectFromSize(int(wa.X), int(wa.Y), int(wa.Width), int(wa.Height)))
	if isect.Empty() {
		return bounds
	}
	return isect
}

// dockStruts returns the regions reserved by dock windows, from
// _NET_WM_STRUT_PARTIAL or, failing that, _NET_WM_STRUT.
func (c *Connection) dockStruts() []strut {
	rootGeom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return nil
	}
	rootW, rootH := int(rootGeom.Width), int(rootGeom.Height)

	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil
	}

	var out []strut
	for _, win := range clients {
		if !c.hasWindowType(win, "_NET_WM_WINDOW_TYPE_DOCK") {
			continue
		}
		sp, err := ewmh.WmStrutPartialGet(c.XUtil, win)
		if err != nil {
			s, err := ewmh.WmStrutGet(c.XUtil, win)
			if err != nil {
				continue
			}
			sp = &ewmh.WmStrutPartial{
				Left: s.Left, Right: s.Right, Top: s.Top, Bottom: s.Bottom,
				LeftEndY:   uint(rootH - 1),
				RightEndY:  uint(rootH - 1),
				TopEndX:    uint(rootW - 1),
				BottomEndX: uint(rootW - 1),
			}
		}
		out = append(out, strutRects(sp, rootW, rootH)...)
	}
	return out
}

func strutRects(sp *ewmh.WmStrutPartial, rootW, rootH int) []strut {
	var out []strut
	if sp.Top > 0 {
		out = append(out, strut{sideTop, zones.Rect{Left: int(sp.TopStartX), Top: 0, Right: int(sp.TopEndX) + 1, Bottom: int(sp.Top)}})
	}
	if sp.Bottom > 0 {
		out = append(out, strut{sideBottom, zones.Rect{Left: int(sp.BottomStartX), Top: rootH - int(sp.Bottom), Right: int(sp.BottomEndX) + 1, Bottom: rootH}})
	}
	if sp.Left > 0 {
		out = append(out, strut{sideLeft, zones.Rect{Left: 0, Top: int(sp.LeftStartY), Right: int(sp.Left), Bottom: int(sp.LeftEndY) + 1}})
	}
	if sp.Right > 0 {
		out = append(out, strut{sideRight, zones.Rect{Left: rootW - int(sp.Right), Top: int(sp.RightStartY), Right: rootW, Bottom: int(sp.RightEndY) + 1}})
	}
	return out
}
