//go:build linux

package daemon

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/zonetile/internal/zones"
)

// WatchClients feeds _NET_CLIENT_LIST changes to tracker and kicks the
// reconciler on desktop or work area changes. Events are delivered by the
// X11 event loop.
func WatchClients(xu *xgbutil.XUtil, tracker *ClientTracker, reconciler *Reconciler) error {
	root := xu.RootWin()
	if err := xwindow.New(xu, root).Listen(xproto.EventMaskPropertyChange); err != nil {
		return fmt.Errorf("listen on root window: %w", err)
	}

	refresh := func() {
		clients, err := ewmh.ClientListGet(xu)
		if err != nil {
			return
		}
		ids := make([]zones.WindowID, len(clients))
		for i, c := range clients {
			ids[i] = zones.WindowID(c)
		}
		tracker.Update(ids)
	}
	refresh()

	xevent.PropertyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		name, err := xprop.AtomName(xu, ev.Atom)
		if err != nil {
			return
		}
		switch name {
		case "_NET_CLIENT_LIST":
			refresh()
		case "_NET_CURRENT_DESKTOP", "_NET_WORKAREA":
			reconciler.Kick()
		}
	}).Connect(xu, root)
	return nil
}
