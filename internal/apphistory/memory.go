package apphistory

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/1broseidon/zonetile/internal/workarea"
	"github.com/1broseidon/zonetile/internal/zones"
)

// MemoryStore keeps history for the lifetime of the process. FileStore
// builds on it.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[key]Entry
	now     func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[key]Entry), now: time.Now}
}

func (s *MemoryStore) GetAppLastZoneIndexSet(appID string, area workarea.ID, layoutID uuid.UUID) (zones.IndexSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[makeKey(appID, area, layoutID.String())]
	if !ok {
		return zones.IndexSet{}, nil
	}
	return e.Zones.IndexSet(), nil
}

func (s *MemoryStore) SetAppLastZones(appID string, area workarea.ID, layoutID string, set zones.IndexSet) error {
	e, err := newEntry(appID, area, layoutID, set, s.now())
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(e)
	return nil
}

func (s *MemoryStore) put(e Entry) {
	if e.Zones.IsZero() {
		delete(s.entries, e.key())
		return
	}
	s.entries[e.key()] = e
}

// Entries returns all entries ordered by app, monitor and layout.
func (s *MemoryStore) Entries() ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedLocked(), nil
}

func (s *MemoryStore) sortedLocked() []Entry {
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b Entry) int {
		return cmp.Or(
			cmp.Compare(a.AppID, b.AppID),
			cmp.Compare(a.Area.Monitor, b.Area.Monitor),
			cmp.Compare(a.Area.Desktop.String(), b.Area.Desktop.String()),
			cmp.Compare(a.LayoutID, b.LayoutID),
		)
	})
	return out
}

func (s *MemoryStore) Close() error { return nil }
