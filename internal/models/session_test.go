package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func sampleSession() *Session {
	return &Session{
		ID:        uuid.New(),
		StartTime: time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC),
		Exercises: []SessionExercise{
			{
				ID:           uuid.New(),
				ExerciseName: "Bench Press",
				OrderIndex:   0,
				Sets: []SessionSet{
					{ID: uuid.New(), Reps: 10, Weight: 100, Completed: true},
					{ID: uuid.New(), Reps: 8, Weight: 110, Completed: false, Notes: "felt heavy"},
				},
			},
			{
				ID:           uuid.New(),
				ExerciseName: "Squat",
				OrderIndex:   1,
				Sets: []SessionSet{
					{ID: uuid.New(), Reps: 5, Weight: 140, Completed: false},
				},
			},
		},
	}
}

// TestDerivedCounts verifies set counting and volume derivation over a
// mixed-completion session.
func TestDerivedCounts(t *testing.T) {
	s := sampleSession()

	if got := s.TotalSets(); got != 3 {
		t.Errorf("TotalSets = %d, want 3", got)
	}
	if got := s.CompletedSets(); got != 1 {
		t.Errorf("CompletedSets = %d, want 1", got)
	}
	if got := s.TotalVolume(); got != 1000 {
		t.Errorf("TotalVolume = %v, want 1000", got)
	}
}

// TestCurrentExercise verifies the current exercise is the first with an
// incomplete set, and falls back to the last exercise when all are done.
func TestCurrentExercise(t *testing.T) {
	s := sampleSession()
	if ex := s.CurrentExercise(); ex == nil || ex.ExerciseName != "Bench Press" {
		t.Fatalf("CurrentExercise = %v, want Bench Press", ex)
	}

	for i := range s.Exercises {
		for j := range s.Exercises[i].Sets {
			s.Exercises[i].Sets[j].Completed = true
		}
	}
	if ex := s.CurrentExercise(); ex == nil || ex.ExerciseName != "Squat" {
		t.Fatalf("CurrentExercise after completion = %v, want Squat", ex)
	}

	empty := &Session{ID: uuid.New()}
	if ex := empty.CurrentExercise(); ex != nil {
		t.Errorf("CurrentExercise on empty session = %v, want nil", ex)
	}
}

// TestLiveStatusProjection verifies the live payload is derived correctly
// from session state.
func TestLiveStatusProjection(t *testing.T) {
	s := sampleSession()
	status := LiveStatusFrom(s)

	if status.ExerciseName != "Bench Press" {
		t.Errorf("exercise_name = %q, want Bench Press", status.ExerciseName)
	}
	if status.SetIndex != 2 || status.SetTotal != 2 {
		t.Errorf("set %d/%d, want 2/2", status.SetIndex, status.SetTotal)
	}
	if status.LastWeight != 100 || status.LastReps != 10 {
		t.Errorf("last set = %vx%d, want 100x10", status.LastWeight, status.LastReps)
	}
	if status.CompletedSets != 1 {
		t.Errorf("completed_sets = %d, want 1", status.CompletedSets)
	}
	if status.ExerciseCount != 2 {
		t.Errorf("exercise_count = %d, want 2", status.ExerciseCount)
	}
}

// TestSnapshotRoundTrip verifies projecting a session to a snapshot and back
// preserves exercise order, set order, and completion state.
func TestSnapshotRoundTrip(t *testing.T) {
	s := sampleSession()
	got := SnapshotFrom(s).Session()

	if got.ID != s.ID {
		t.Errorf("id = %v, want %v", got.ID, s.ID)
	}
	if !got.StartTime.Equal(s.StartTime) {
		t.Errorf("start = %v, want %v", got.StartTime, s.StartTime)
	}
	if len(got.Exercises) != len(s.Exercises) {
		t.Fatalf("exercises = %d, want %d", len(got.Exercises), len(s.Exercises))
	}
	for i, ex := range got.Exercises {
		want := s.Exercises[i]
		if ex.ExerciseName != want.ExerciseName || ex.OrderIndex != want.OrderIndex {
			t.Errorf("exercise %d = %q/%d, want %q/%d", i, ex.ExerciseName, ex.OrderIndex, want.ExerciseName, want.OrderIndex)
		}
		if len(ex.Sets) != len(want.Sets) {
			t.Fatalf("exercise %d sets = %d, want %d", i, len(ex.Sets), len(want.Sets))
		}
		for j, set := range ex.Sets {
			ws := want.Sets[j]
			if set.Reps != ws.Reps || set.Weight != ws.Weight || set.Completed != ws.Completed || set.Notes != ws.Notes {
				t.Errorf("set %d/%d = %+v, want %+v", i, j, set, ws)
			}
		}
	}
}

// TestWorkoutSetRowsFrom verifies the flattened persistence rows keep
// ordering and numbering.
func TestWorkoutSetRowsFrom(t *testing.T) {
	s := sampleSession()
	rows := WorkoutSetRowsFrom(s, 1)

	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[0].ExerciseName != "Bench Press" || rows[0].SetNumber != 1 {
		t.Errorf("row 0 = %s #%d, want Bench Press #1", rows[0].ExerciseName, rows[0].SetNumber)
	}
	if rows[1].SetNumber != 2 {
		t.Errorf("row 1 set_number = %d, want 2", rows[1].SetNumber)
	}
	if rows[2].ExerciseName != "Squat" || rows[2].OrderIndex != 1 {
		t.Errorf("row 2 = %s idx %d, want Squat idx 1", rows[2].ExerciseName, rows[2].OrderIndex)
	}
	for _, r := range rows {
		if r.WorkoutID != s.ID || r.UserID != 1 {
			t.Errorf("row scoping = %v/%d, want %v/1", r.WorkoutID, r.UserID, s.ID)
		}
	}
}
