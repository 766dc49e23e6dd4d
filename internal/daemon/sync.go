package daemon

import (
	"log/slog"
	"sync"

	"github.com/1broseidon/zonetile/internal/zones"
)

// WindowHandler reacts to windows appearing and disappearing.
type WindowHandler interface {
	RestoreWindow(window zones.WindowID) (bool, error)
	Forget(window zones.WindowID)
}

// ClientTracker diffs successive client lists and forwards the changes.
type ClientTracker struct {
	mu      sync.Mutex
	handler WindowHandler
	known   map[zones.WindowID]struct{}
	primed  bool
	logger  *slog.Logger
}

// NewClientTracker creates a tracker. The first Update only records the
// existing windows.
func NewClientTracker(handler WindowHandler, logger *slog.Logger) *ClientTracker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ClientTracker{
		handler: handler,
		known:   make(map[zones.WindowID]struct{}),
		logger:  logger,
	}
}

// Update takes the current client list.
func (t *ClientTracker) Update(clients []zones.WindowID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	current := make(map[zones.WindowID]struct{}, len(clients))
	for _, w := range clients {
		current[w] = struct{}{}
	}

	for w := range t.known {
		if _, ok := current[w]; !ok {
			t.handler.Forget(w)
			t.logger.Debug("window closed", "window", w)
		}
	}
	if t.primed {
		for _, w := range clients {
			if _, ok := t.known[w]; ok {
				continue
			}
			restored, err := t.handler.RestoreWindow(w)
			if err != nil {
				t.logger.Debug("window not restored", "window", w, "error", err)
				continue
			}
			if restored {
				t.logger.Info("window restored to last zones", "window", w)
			}
		}
	}

	t.known = current
	t.primed = true
}
