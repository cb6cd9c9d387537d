package snapshot

import (
	"database/sql"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/claude/liftlog/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir(), slog.Default())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testSnapshot() models.Snapshot {
	return models.Snapshot{
		WorkoutID: uuid.New(),
		StartDate: time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC),
		Exercises: []models.SnapshotExercise{
			{
				ID:           uuid.New(),
				ExerciseName: "Deadlift",
				OrderIndex:   0,
				Sets: []models.SnapshotSet{
					{ID: uuid.New(), Reps: 5, Weight: 180, IsCompleted: true, Notes: "belt on"},
					{ID: uuid.New(), Reps: 5, Weight: 190, IsCompleted: false},
				},
			},
		},
	}
}

// TestSaveLoadRoundTrip verifies a saved snapshot loads back with identical
// exercise order, set order, reps, weights, and completion flags.
func TestSaveLoadRoundTrip(t *testing.T) {
	store := openTestStore(t)
	snap := testSnapshot()

	if err := store.Save(snap); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got == nil {
		t.Fatal("load returned nil, want snapshot")
	}
	if got.WorkoutID != snap.WorkoutID {
		t.Errorf("workout_id = %v, want %v", got.WorkoutID, snap.WorkoutID)
	}
	if !got.StartDate.Equal(snap.StartDate) {
		t.Errorf("start_date = %v, want %v", got.StartDate, snap.StartDate)
	}
	if len(got.Exercises) != 1 || got.Exercises[0].ExerciseName != "Deadlift" {
		t.Fatalf("exercises = %+v, want one Deadlift", got.Exercises)
	}
	sets := got.Exercises[0].Sets
	if len(sets) != 2 {
		t.Fatalf("sets = %d, want 2", len(sets))
	}
	if sets[0].Reps != 5 || sets[0].Weight != 180 || !sets[0].IsCompleted || sets[0].Notes != "belt on" {
		t.Errorf("set 0 = %+v", sets[0])
	}
	if sets[1].Weight != 190 || sets[1].IsCompleted {
		t.Errorf("set 1 = %+v", sets[1])
	}
}

// TestSaveOverwrites verifies the store holds at most one snapshot.
func TestSaveOverwrites(t *testing.T) {
	store := openTestStore(t)

	first := testSnapshot()
	second := testSnapshot()

	if err := store.Save(first); err != nil {
		t.Fatalf("save first: %v", err)
	}
	if err := store.Save(second); err != nil {
		t.Fatalf("save second: %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.WorkoutID != second.WorkoutID {
		t.Errorf("workout_id = %v, want latest %v", got.WorkoutID, second.WorkoutID)
	}
}

// TestLoadAbsent verifies a fresh store reports nothing to restore.
func TestLoadAbsent(t *testing.T) {
	store := openTestStore(t)

	got, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != nil {
		t.Errorf("load = %+v, want nil", got)
	}
}

// TestLoadCorrupt verifies corrupt stored data is treated as absent, not as
// an error.
func TestLoadCorrupt(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.db.Exec(
		`INSERT INTO session_state (key, value) VALUES (?, ?)`,
		sessionKey, "{not json",
	); err != nil {
		t.Fatalf("inject corrupt value: %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != nil {
		t.Errorf("load of corrupt data = %+v, want nil", got)
	}

	// The corrupt slot is dropped so the next load is clean too.
	var count int
	if err := store.db.QueryRow(`SELECT COUNT(*) FROM session_state WHERE key = ?`, sessionKey).Scan(&count); err != nil && err != sql.ErrNoRows {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("corrupt slot still present, count = %d", count)
	}
}

// TestClearIdempotent verifies clear removes the snapshot and is safe to
// call repeatedly.
func TestClearIdempotent(t *testing.T) {
	store := openTestStore(t)

	if err := store.Save(testSnapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("second clear: %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != nil {
		t.Errorf("load after clear = %+v, want nil", got)
	}
}

// TestWeightUnit verifies the display preference slot is independent of the
// session snapshot and defaults to kg.
func TestWeightUnit(t *testing.T) {
	store := openTestStore(t)

	if unit := store.WeightUnit(); unit != "kg" {
		t.Errorf("default unit = %q, want kg", unit)
	}
	if err := store.SetWeightUnit("lb"); err != nil {
		t.Fatalf("set unit: %v", err)
	}
	if unit := store.WeightUnit(); unit != "lb" {
		t.Errorf("unit = %q, want lb", unit)
	}
	if err := store.SetWeightUnit("stone"); err == nil {
		t.Error("invalid unit accepted")
	}

	// Clearing the session snapshot must not touch the preference.
	if err := store.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if unit := store.WeightUnit(); unit != "lb" {
		t.Errorf("unit after clear = %q, want lb", unit)
	}
}
