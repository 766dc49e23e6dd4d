package apphistory

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/1broseidon/zonetile/internal/workarea"
	"github.com/1broseidon/zonetile/internal/zones"
)

const fileVersion = 1

type fileData struct {
	Version int     `json:"version"`
	Entries []Entry `json:"entries"`
}

// FileStore persists history as an indented JSON file, rewritten on every
// change.
type FileStore struct {
	*MemoryStore
	path string
}

// OpenFileStore loads path if it exists.
func OpenFileStore(path string) (*FileStore, error) {
	s := &FileStore{MemoryStore: NewMemoryStore(), path: path}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read app history: %w", err)
	}

	var fd fileData
	if err := json.Unmarshal(data, &fd); err != nil {
		return nil, fmt.Errorf("failed to parse app history %s: %w", path, err)
	}
	if fd.Version > fileVersion {
		return nil, fmt.Errorf("app history %s has version %d, newest supported is %d", path, fd.Version, fileVersion)
	}
	for _, e := range fd.Entries {
		if validate(e.AppID, e.LayoutID) != nil {
			continue
		}
		s.put(e)
	}
	return s, nil
}

// Path returns the backing file.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) SetAppLastZones(appID string, area workarea.ID, layoutID string, set zones.IndexSet) error {
	e, err := newEntry(appID, area, layoutID, set, s.now())
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(e)
	return s.writeLocked()
}

func (s *FileStore) writeLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}
	data, err := json.MarshalIndent(fileData{Version: fileVersion, Entries: s.sortedLocked()}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode app history: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write app history: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace app history: %w", err)
	}
	return nil
}
