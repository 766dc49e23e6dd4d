package platform

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/1broseidon/zonetile/internal/topology"
	"github.com/1broseidon/zonetile/internal/workarea"
	"github.com/1broseidon/zonetile/internal/zones"
)

// Display describes a physical display and its usable work area.
type Display struct {
	Name   string     `json:"name"`
	Bounds zones.Rect `json:"bounds"`
	Work   zones.Rect `json:"work"`
}

// Monitor converts d for topology ordering. Monitors are ordered by their
// full bounds so panels do not change the arrangement.
func (d Display) Monitor() topology.Monitor {
	return topology.Monitor{Handle: d.Name, Rect: d.Bounds}
}

// Monitors converts displays for topology ordering.
func Monitors(displays []Display) []topology.Monitor {
	out := make([]topology.Monitor, len(displays))
	for i, d := range displays {
		out[i] = d.Monitor()
	}
	return out
}

// Backend abstracts window-system operations across platforms.
type Backend interface {
	workarea.Backend
	Displays() ([]Display, error)
	ActiveWindow() (zones.WindowID, error)
	CurrentDesktop() (uuid.UUID, error)
	DesktopCount() (int, error)
}

// desktopNamespace derives stable virtual desktop ids from EWMH desktop numbers.
var desktopNamespace = uuid.MustParse("9b0e3c57-41d2-4c8e-a7f3-6d15e2b08c94")

// DesktopID returns the id of virtual desktop n.
func DesktopID(n int) uuid.UUID {
	return uuid.NewSHA1(desktopNamespace, []byte(strconv.Itoa(n)))
}
