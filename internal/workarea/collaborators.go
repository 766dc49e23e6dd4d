package workarea

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/1broseidon/zonetile/internal/zones"
)

var (
	// ErrInvalidArgument covers null windows, unknown zones and misuse of
	// the drag state machine.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNoDrag is returned by MoveSizeEnd when no drag is in progress.
	ErrNoDrag = fmt.Errorf("%w: no drag in progress", ErrInvalidArgument)
	// ErrWindowMismatch is returned by MoveSizeEnd for a window other than
	// the one being dragged.
	ErrWindowMismatch = fmt.Errorf("%w: window does not match the dragged window", ErrInvalidArgument)
)

// Backend is the slice of the window system a work area needs.
type Backend interface {
	WindowRect(window zones.WindowID) (zones.Rect, error)
	MoveResize(window zones.WindowID, rect zones.Rect) error
	IsResizable(window zones.WindowID) bool
	AppID(window zones.WindowID) (string, error)
}

// History remembers the last zones an application was placed in.
type History interface {
	GetAppLastZoneIndexSet(appID string, area ID, layoutID uuid.UUID) (zones.IndexSet, error)
	SetAppLastZones(appID string, area ID, layoutID string, set zones.IndexSet) error
}

// Option configures a WorkArea.
type Option func(*WorkArea)

// WithBackend sets the window system used to place windows.
func WithBackend(b Backend) Option {
	return func(w *WorkArea) { w.backend = b }
}

// WithHistory sets the app history store.
func WithHistory(h History) Option {
	return func(w *WorkArea) { w.history = h }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(w *WorkArea) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithAlgorithm sets the overlapping zones algorithm.
func WithAlgorithm(a zones.OverlappingAlgorithm) Option {
	return func(w *WorkArea) { w.algo = a }
}
