package apphistory

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/1broseidon/zonetile/internal/workarea"
	"github.com/1broseidon/zonetile/internal/zones"
)

// SQLiteStore keeps history in a SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLiteStore opens or creates the database at path. ":memory:" gives a
// private in-memory database.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, now: time.Now}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS app_zone_history (
		app_id TEXT NOT NULL,
		monitor TEXT NOT NULL,
		desktop TEXT NOT NULL,
		layout_id TEXT NOT NULL,
		zones_part1 INTEGER NOT NULL,
		zones_part2 INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (app_id, monitor, desktop, layout_id)
	);`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create app history table: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetAppLastZoneIndexSet(appID string, area workarea.ID, layoutID uuid.UUID) (zones.IndexSet, error) {
	var p1, p2 int64
	err := s.db.QueryRow(
		`SELECT zones_part1, zones_part2 FROM app_zone_history
		 WHERE app_id = ? AND monitor = ? AND desktop = ? AND layout_id = ?`,
		strings.ToLower(appID), area.Monitor, area.Desktop.String(), layoutID.String(),
	).Scan(&p1, &p2)
	if errors.Is(err, sql.ErrNoRows) {
		return zones.IndexSet{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query app history: %w", err)
	}
	return zones.Bitmask{Part1: uint64(p1), Part2: uint64(p2)}.IndexSet(), nil
}

func (s *SQLiteStore) SetAppLastZones(appID string, area workarea.ID, layoutID string, set zones.IndexSet) error {
	e, err := newEntry(appID, area, layoutID, set, s.now())
	if err != nil {
		return err
	}
	app := strings.ToLower(e.AppID)
	if e.Zones.IsZero() {
		_, err := s.db.Exec(
			`DELETE FROM app_zone_history WHERE app_id = ? AND monitor = ? AND desktop = ? AND layout_id = ?`,
			app, area.Monitor, area.Desktop.String(), e.LayoutID,
		)
		if err != nil {
			return fmt.Errorf("failed to clear app history: %w", err)
		}
		return nil
	}

	// Bitmask words are stored as their int64 bit patterns.
	_, err = s.db.Exec(
		`INSERT INTO app_zone_history (app_id, monitor, desktop, layout_id, zones_part1, zones_part2, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(app_id, monitor, desktop, layout_id) DO UPDATE SET
		   zones_part1 = excluded.zones_part1,
		   zones_part2 = excluded.zones_part2,
		   updated_at = excluded.updated_at`,
		app, area.Monitor, area.Desktop.String(), e.LayoutID,
		int64(e.Zones.Part1), int64(e.Zones.Part2), e.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to store app history: %w", err)
	}
	return nil
}

// Entries returns all entries ordered by app, monitor and layout.
func (s *SQLiteStore) Entries() ([]Entry, error) {
	rows, err := s.db.Query(
		`SELECT app_id, monitor, desktop, layout_id, zones_part1, zones_part2, updated_at
		 FROM app_zone_history ORDER BY app_id, monitor, desktop, layout_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list app history: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var desktop string
		var p1, p2, updated int64
		if err := rows.Scan(&e.AppID, &e.Area.Monitor, &desktop, &e.LayoutID, &p1, &p2, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan app history: %w", err)
		}
		if e.Area.Desktop, err = uuid.Parse(desktop); err != nil {
			return nil, fmt.Errorf("bad desktop id %q in app history: %w", desktop, err)
		}
		e.Zones = zones.Bitmask{Part1: uint64(p1), Part2: uint64(p2)}
		e.UpdatedAt = time.UnixMilli(updated)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
