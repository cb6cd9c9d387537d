package snapshot

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/claude/liftlog/internal/models"
)

const (
	sessionKey    = "active_session"
	weightUnitKey = "weight_unit"
)

// Store persists the crash-recovery snapshot of the active session in a
// single-slot key-value table. It is not a general persistence layer: the
// durable home of finished workouts is Postgres, this store only survives
// process kills mid-session.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// Open opens (or creates) the SQLite snapshot database at dir/session.db.
func Open(dir string, log *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating snapshot dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "session.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS session_state (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating session_state table: %w", err)
	}

	return &Store{db: db, log: log}, nil
}

// Save overwrites the stored snapshot with the given one. A serialization
// failure is logged and leaves the prior snapshot untouched; a partial value
// is never written.
func (s *Store) Save(snap models.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		s.log.Error("snapshot serialization failed", "workout_id", snap.WorkoutID, "error", err)
		return fmt.Errorf("serializing snapshot: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO session_state (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		sessionKey, string(data),
	)
	if err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// Load returns the stored snapshot, or nil if none exists. Corrupt data is
// treated as absent: a snapshot that fails to deserialize is cleared and nil
// is returned, never a parse error.
func (s *Store) Load() (*models.Snapshot, error) {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM session_state WHERE key = ?`, sessionKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var snap models.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		s.log.Warn("discarding corrupt snapshot", "error", err)
		if clearErr := s.Clear(); clearErr != nil {
			s.log.Error("clearing corrupt snapshot failed", "error", clearErr)
		}
		return nil, nil
	}
	return &snap, nil
}

// Clear removes the stored snapshot. Idempotent.
func (s *Store) Clear() error {
	_, err := s.db.Exec(`DELETE FROM session_state WHERE key = ?`, sessionKey)
	if err != nil {
		return fmt.Errorf("clearing snapshot: %w", err)
	}
	return nil
}

// WeightUnit returns the stored display preference, defaulting to "kg".
func (s *Store) WeightUnit() string {
	var unit string
	err := s.db.QueryRow(`SELECT value FROM session_state WHERE key = ?`, weightUnitKey).Scan(&unit)
	if err != nil || unit == "" {
		return "kg"
	}
	return unit
}

// SetWeightUnit stores the display preference ("kg" or "lb").
func (s *Store) SetWeightUnit(unit string) error {
	if unit != "kg" && unit != "lb" {
		return fmt.Errorf("invalid weight unit %q", unit)
	}
	_, err := s.db.Exec(
		`INSERT INTO session_state (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		weightUnitKey, unit,
	)
	return err
}

// Close closes the snapshot database.
func (s *Store) Close() error {
	return s.db.Close()
}
