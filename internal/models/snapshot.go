package models

import (
	"time"

	"github.com/google/uuid"
)

// Snapshot is the flat, serializable crash-recovery projection of a Session.
// Every field is always present — nothing is conditionally omitted — so the
// format stays trivially forward-compatible.
type Snapshot struct {
	WorkoutID uuid.UUID          `json:"workout_id"`
	StartDate time.Time          `json:"start_date"`
	Exercises []SnapshotExercise `json:"exercises"`
}

// SnapshotExercise mirrors SessionExercise for persistence.
type SnapshotExercise struct {
	ID           uuid.UUID     `json:"id"`
	ExerciseName string        `json:"exercise_name"`
	OrderIndex   int           `json:"order_index"`
	Sets         []SnapshotSet `json:"sets"`
}

// SnapshotSet mirrors SessionSet for persistence.
type SnapshotSet struct {
	ID          uuid.UUID `json:"id"`
	Reps        int       `json:"reps"`
	Weight      float64   `json:"weight"`
	IsCompleted bool      `json:"is_completed"`
	Notes       string    `json:"notes"`
}

// SnapshotFrom projects a Session into its snapshot form.
func SnapshotFrom(s *Session) Snapshot {
	snap := Snapshot{
		WorkoutID: s.ID,
		StartDate: s.StartTime,
		Exercises: make([]SnapshotExercise, 0, len(s.Exercises)),
	}
	for _, ex := range s.Exercises {
		se := SnapshotExercise{
			ID:           ex.ID,
			ExerciseName: ex.ExerciseName,
			OrderIndex:   ex.OrderIndex,
			Sets:         make([]SnapshotSet, 0, len(ex.Sets)),
		}
		for _, set := range ex.Sets {
			se.Sets = append(se.Sets, SnapshotSet{
				ID:          set.ID,
				Reps:        set.Reps,
				Weight:      set.Weight,
				IsCompleted: set.Completed,
				Notes:       set.Notes,
			})
		}
		snap.Exercises = append(snap.Exercises, se)
	}
	return snap
}

// Session reconstructs the in-memory form of the snapshot. The caller is
// responsible for re-resolving exercise names against the catalog and
// dropping the ones that no longer resolve.
func (sn Snapshot) Session() *Session {
	s := &Session{
		ID:        sn.WorkoutID,
		StartTime: sn.StartDate,
		Exercises: make([]SessionExercise, 0, len(sn.Exercises)),
	}
	for _, ex := range sn.Exercises {
		se := SessionExercise{
			ID:           ex.ID,
			ExerciseName: ex.ExerciseName,
			OrderIndex:   ex.OrderIndex,
			Sets:         make([]SessionSet, 0, len(ex.Sets)),
		}
		for _, set := range ex.Sets {
			se.Sets = append(se.Sets, SessionSet{
				ID:        set.ID,
				Reps:      set.Reps,
				Weight:    set.Weight,
				Completed: set.IsCompleted,
				Notes:     set.Notes,
			})
		}
		s.Exercises = append(s.Exercises, se)
	}
	return s
}
