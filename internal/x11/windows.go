package x11

import (
	"fmt"
	"slices"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/zonetile/internal/zones"
)

// MoveResizeWindow places the window frame at r. The client size excludes
// the frame extents.
func (c *Connection) MoveResizeWindow(windowID xproto.Window, r zones.Rect) error {
	// Some windows do not support state changes; placing still works.
	_ = c.unmaximizeWindow(windowID)

	fl, fr, ft, fb := c.FrameExtents(windowID)
	width := max(r.Width()-fl-fr, 1)
	height := max(r.Height()-ft-fb, 1)

	// EWMH MoveResize for better WM compatibility.
	if err := ewmh.MoveresizeWindow(c.XUtil, windowID, r.Left, r.Top, width, height); err != nil {
		xwindow.New(c.XUtil, windowID).MoveResize(r.Left, r.Top, width, height)
	}
	return nil
}

// unmaximizeWindow removes maximized state from a window
func (c *Connection) unmaximizeWindow(windowID xproto.Window) error {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return err
	}
	for _, state := range states {
		switch state {
		case "_NET_WM_STATE_MAXIMIZED_HORZ", "_NET_WM_STATE_MAXIMIZED_VERT":
			if err := ewmh.WmStateReq(c.XUtil, windowID, ewmh.StateRemove, state); err != nil {
				return err
			}
		}
	}
	return nil
}

// FrameExtents returns the window decoration sizes, or zeros when unknown.
func (c *Connection) FrameExtents(windowID xproto.Window) (left, right, top, bottom int) {
	extents, err := ewmh.FrameExtentsGet(c.XUtil, windowID)
	if err != nil {
		return 0, 0, 0, 0
	}
	return int(extents.Left), int(extents.Right), int(extents.Top), int(extents.Bottom)
}

// WindowRect returns the outer frame rectangle in root coordinates.
func (c *Connection) WindowRect(windowID xproto.Window) (zones.Rect, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return zones.Rect{}, fmt.Errorf("failed to get geometry of window %d: %w", windowID, err)
	}
	translate, err := xproto.TranslateCoordinates(c.XUtil.Conn(), windowID, c.Root, 0, 0).Reply()
	if err != nil {
		return zones.Rect{}, fmt.Errorf("failed to translate window %d: %w", windowID, err)
	}

	fl, fr, ft, fb := c.FrameExtents(windowID)
	client := zones.RectFromSize(int(translate.DstX), int(translate.DstY), int(geom.Width), int(geom.Height))
	return zones.Rect{
		Left:   client.Left - fl,
		Top:    client.Top - ft,
		Right:  client.Right + fr,
		Bottom: client.Bottom + fb,
	}, nil
}

// IsResizable reports whether the window may be resized. Windows whose
// WM_NORMAL_HINTS pin the size, or whose allowed actions exclude resizing,
// are not.
func (c *Connection) IsResizable(windowID xproto.Window) bool {
	if !c.IsNormalWindow(windowID) {
		return false
	}
	if actions, err := ewmh.WmAllowedActionsGet(c.XUtil, windowID); err == nil && len(actions) > 0 {
		if !slices.Contains(actions, "_NET_WM_ACTION_RESIZE") {
			return false
		}
	}
	hints, err := icccm.WmNormalHintsGet(c.XUtil, windowID)
	if err != nil {
		return true
	}
	return !fixedSize(hints)
}

func fixedSize(hints *icccm.NormalHints) bool {
	const pinned = icccm.SizeHintPMinSize | icccm.SizeHintPMaxSize
	if hints.Flags&pinned != pinned {
		return false
	}
	return hints.MinWidth == hints.MaxWidth && hints.MinHeight == hints.MaxHeight && hints.MaxWidth > 0
}

// AppID returns the WM_CLASS class name, falling back to the instance name.
func (c *Connection) AppID(windowID xproto.Window) (string, error) {
	wmClass, err := icccm.WmClassGet(c.XUtil, windowID)
	if err != nil {
		return "", fmt.Errorf("failed to get WM_CLASS of window %d: %w", windowID, err)
	}
	if class := strings.TrimSpace(wmClass.Class); class != "" {
		return class, nil
	}
	return strings.TrimSpace(wmClass.Instance), nil
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}
	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL", "_NET_WM_WINDOW_TYPE_DIALOG":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP", "_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH", "_NET_WM_WINDOW_TYPE_NOTIFICATION":
			return false
		}
	}
	return len(types) == 0
}

func (c *Connection) hasWindowType(windowID xproto.Window, want string) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		return false
	}
	return slices.Contains(types, want)
}

func (c *Connection) ActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}
