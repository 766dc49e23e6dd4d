//go:build linux

package platform

import (
	"fmt"
	"sort"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/google/uuid"

	"github.com/1broseidon/zonetile/internal/x11"
	"github.com/1broseidon/zonetile/internal/zones"
)

// LinuxBackend wraps an existing X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn}
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// EventLoop runs the X11 event loop until StopEventLoop is called.
func (b *LinuxBackend) EventLoop() {
	if b != nil && b.conn != nil {
		b.conn.EventLoop()
	}
}

// StopEventLoop makes EventLoop return.
func (b *LinuxBackend) StopEventLoop() {
	if b != nil && b.conn != nil {
		b.conn.Quit()
	}
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// Displays returns all active displays sorted by name.
func (b *LinuxBackend) Displays() ([]Display, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}
	monitors, err := conn.Monitors()
	if err != nil {
		return nil, err
	}

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, Display{Name: m.Name, Bounds: m.Bounds, Work: m.Work})
	}
	sort.Slice(displays, func(i, j int) bool {
		return displays[i].Name < displays[j].Name
	})
	return displays, nil
}

// ActiveWindow returns the currently active/focused window ID.
func (b *LinuxBackend) ActiveWindow() (zones.WindowID, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, err
	}
	wid, err := conn.ActiveWindow()
	if err != nil {
		return 0, err
	}
	return zones.WindowID(wid), nil
}

// CurrentDesktop returns the id of the current virtual desktop. Window
// managers without EWMH desktops report desktop 0.
func (b *LinuxBackend) CurrentDesktop() (uuid.UUID, error) {
	conn, err := b.connection()
	if err != nil {
		return uuid.Nil, err
	}
	n, err := conn.CurrentDesktop()
	if err != nil {
		return DesktopID(0), nil
	}
	return DesktopID(n), nil
}

// DesktopCount returns the number of EWMH desktops.
func (b *LinuxBackend) DesktopCount() (int, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, err
	}
	return conn.DesktopCount()
}

func (b *LinuxBackend) WindowRect(window zones.WindowID) (zones.Rect, error) {
	conn, err := b.connection()
	if err != nil {
		return zones.Rect{}, err
	}
	return conn.WindowRect(xproto.Window(window))
}

// MoveResize moves and resizes a window so its frame covers rect.
func (b *LinuxBackend) MoveResize(window zones.WindowID, rect zones.Rect) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.MoveResizeWindow(xproto.Window(window), rect)
}

func (b *LinuxBackend) IsResizable(window zones.WindowID) bool {
	conn, err := b.connection()
	if err != nil {
		return false
	}
	return conn.IsResizable(xproto.Window(window))
}

func (b *LinuxBackend) AppID(window zones.WindowID) (string, error) {
	conn, err := b.connection()
	if err != nil {
		return "", err
	}
	return conn.AppID(xproto.Window(window))
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}
