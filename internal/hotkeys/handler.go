package hotkeys

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/1broseidon/zonetile/internal/config"
	"github.com/1broseidon/zonetile/internal/engine"
	"github.com/1broseidon/zonetile/internal/snap"
	"github.com/1broseidon/zonetile/internal/zones"
)

// Snapper moves the active window between zones.
type Snapper interface {
	Snap(window zones.WindowID, dir zones.Direction, mode engine.SnapMode) (snap.Result, error)
}

// Binding ties a key sequence to a snap.
type Binding struct {
	Keys string
	Dir  zones.Direction
	Mode engine.SnapMode
}

// Bindings lists the configured bindings, skipping empty ones.
func Bindings(h config.Hotkeys) []Binding {
	all := []Binding{
		{h.SnapLeft, zones.DirLeft, engine.SnapDefault},
		{h.SnapRight, zones.DirRight, engine.SnapDefault},
		{h.SnapUp, zones.DirUp, engine.SnapDefault},
		{h.SnapDown, zones.DirDown, engine.SnapDefault},
		{h.ExtendLeft, zones.DirLeft, engine.SnapExtend},
		{h.ExtendRight, zones.DirRight, engine.SnapExtend},
		{h.ExtendUp, zones.DirUp, engine.SnapExtend},
		{h.ExtendDown, zones.DirDown, engine.SnapExtend},
	}
	out := all[:0]
	for _, b := range all {
		if b.Keys != "" {
			out = append(out, b)
		}
	}
	return out
}

// Handler manages global keyboard shortcuts
type Handler struct {
	mu      sync.Mutex
	xu      *xgbutil.XUtil
	root    xproto.Window
	snapper Snapper
	logger  *slog.Logger
}

var ignoreModsOnce sync.Once

// NewHandler creates a new hotkey handler. Callbacks run on the X11 event
// loop.
func NewHandler(xu *xgbutil.XUtil, snapper Snapper, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})
	return &Handler{
		xu:      xu,
		root:    xu.RootWin(),
		snapper: snapper,
		logger:  logger,
	}
}

// Register grabs every configured binding. Failed grabs are reported
// together; the rest stay bound.
func (h *Handler) Register(keys config.Hotkeys) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var errs []error
	for _, b := range Bindings(keys) {
		err := h.registerFunc(b.Keys, func() { h.trigger(b) })
		if err != nil {
			errs = append(errs, fmt.Errorf("bind %q: %w", b.Keys, err))
			continue
		}
		h.logger.Debug("hotkey bound", "keys", b.Keys, "dir", b.Dir, "extend", b.Mode == engine.SnapExtend)
	}
	return errors.Join(errs...)
}

// Rebind drops every grab on the root window and registers keys.
func (h *Handler) Rebind(keys config.Hotkeys) error {
	h.mu.Lock()
	keybind.Detach(h.xu, h.root)
	h.mu.Unlock()
	return h.Register(keys)
}

func (h *Handler) trigger(b Binding) {
	res, err := h.snapper.Snap(0, b.Dir, b.Mode)
	if err != nil {
		h.logger.Warn("snap failed", "keys", b.Keys, "error", err)
		return
	}
	h.logger.Debug("snap", "keys", b.Keys, "monitor", res.Monitor, "zones", res.Zones, "changed", res.Changed)
}

func (h *Handler) registerFunc(keySequence string, callback func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	xevent.IgnoreMods = ignoreMasks(caps, numLock, scrollLock)
}

// ignoreMasks returns every combination of the distinct non-zero lock masks,
// including the empty one.
func ignoreMasks(locks ...uint16) []uint16 {
	var base []uint16
	seen := make(map[uint16]bool)
	for _, m := range locks {
		if m != 0 && !seen[m] {
			seen[m] = true
			base = append(base, m)
		}
	}

	masks := make([]uint16, 0, 1<<len(base))
	for subset := 0; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		masks = append(masks, mask)
	}
	return masks
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
