// Package apphistory remembers which zones each application was last placed
// in, per work area and layout.
package apphistory

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/1broseidon/zonetile/internal/workarea"
	"github.com/1broseidon/zonetile/internal/zones"
)

// Entry is one remembered placement.
type Entry struct {
	AppID     string        `json:"app_id"`
	Area      workarea.ID   `json:"work_area"`
	LayoutID  string        `json:"layout_id"`
	Zones     zones.Bitmask `json:"zones"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Store is an app history backend.
type Store interface {
	workarea.History
	Entries() ([]Entry, error)
	Close() error
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*FileStore)(nil)
	_ Store = (*SQLiteStore)(nil)
)

// Backend names accepted by Open.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Open returns the store for backend. An empty path selects DefaultPath.
func Open(backend, path string) (Store, error) {
	if backend == BackendMemory {
		return NewMemoryStore(), nil
	}
	if path == "" {
		p, err := DefaultPath(backend)
		if err != nil {
			return nil, err
		}
		path = p
	}
	switch backend {
	case BackendJSON, "":
		return OpenFileStore(path)
	case BackendSQLite:
		return OpenSQLiteStore(path)
	}
	return nil, fmt.Errorf("unknown history backend %q", backend)
}

// DefaultPath returns ~/.config/zonetile/app-zone-history.{json,db}.
func DefaultPath(backend string) (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	name := "app-zone-history.json"
	if backend == BackendSQLite {
		name = "app-zone-history.db"
	}
	return filepath.Join(homeDir, ".config", "zonetile", name), nil
}

type key struct {
	app     string
	monitor string
	desktop uuid.UUID
	layout  string
}

func makeKey(appID string, area workarea.ID, layoutID string) key {
	return key{
		app:     strings.ToLower(appID),
		monitor: area.Monitor,
		desktop: area.Desktop,
		layout:  strings.ToLower(layoutID),
	}
}

func (e Entry) key() key { return makeKey(e.AppID, e.Area, e.LayoutID) }

func validate(appID, layoutID string) error {
	if strings.TrimSpace(appID) == "" {
		return fmt.Errorf("app id is required")
	}
	if _, err := uuid.Parse(layoutID); err != nil {
		return fmt.Errorf("invalid layout id %q: %w", layoutID, err)
	}
	return nil
}

// newEntry encodes set, rejecting indices a Bitmask cannot hold.
func newEntry(appID string, area workarea.ID, layoutID string, set zones.IndexSet, now time.Time) (Entry, error) {
	if err := validate(appID, layoutID); err != nil {
		return Entry{}, err
	}
	mask, err := zones.BitmaskFromIndexSet(set)
	if err != nil {
		return Entry{}, err
	}
	return Entry{AppID: appID, Area: area, LayoutID: strings.ToLower(layoutID), Zones: mask, UpdatedAt: now}, nil
}
