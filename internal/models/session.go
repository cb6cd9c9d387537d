package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is the single in-progress workout. At most one exists process-wide;
// the session controller owns its lifecycle.
type Session struct {
	ID        uuid.UUID
	StartTime time.Time
	Exercises []SessionExercise
}

// SessionExercise is one exercise instance within a Session. The catalog
// exercise is referenced by name (denormalized — the catalog row may be
// deleted independently of a snapshot that still names it).
type SessionExercise struct {
	ID           uuid.UUID
	ExerciseName string
	OrderIndex   int
	Sets         []SessionSet
}

// SessionSet is one planned or performed set.
type SessionSet struct {
	ID        uuid.UUID
	Reps      int
	Weight    float64
	Completed bool
	Notes     string
}

// Volume returns reps x weight for a single set.
func (s SessionSet) Volume() float64 {
	return float64(s.Reps) * s.Weight
}

// TotalSets counts all sets across all exercises.
func (s *Session) TotalSets() int {
	n := 0
	for _, ex := range s.Exercises {
		n += len(ex.Sets)
	}
	return n
}

// CompletedSets counts sets marked complete across all exercises.
func (s *Session) CompletedSets() int {
	n := 0
	for _, ex := range s.Exercises {
		for _, set := range ex.Sets {
			if set.Completed {
				n++
			}
		}
	}
	return n
}

// TotalVolume sums reps x weight over completed sets.
func (s *Session) TotalVolume() float64 {
	var v float64
	for _, ex := range s.Exercises {
		for _, set := range ex.Sets {
			if set.Completed {
				v += set.Volume()
			}
		}
	}
	return v
}

// CurrentExercise returns the first exercise with an incomplete set, falling
// back to the last exercise once everything is done. Returns nil for an
// empty session.
func (s *Session) CurrentExercise() *SessionExercise {
	if len(s.Exercises) == 0 {
		return nil
	}
	for i := range s.Exercises {
		for _, set := range s.Exercises[i].Sets {
			if !set.Completed {
				return &s.Exercises[i]
			}
		}
	}
	return &s.Exercises[len(s.Exercises)-1]
}

// LiveStatus is the ephemeral payload pushed to the live-status surface.
// It is derived fresh from the Session on every update and carries no
// independent state.
type LiveStatus struct {
	ExerciseName  string  `json:"exercise_name"`
	SetIndex      int     `json:"set_index"`
	SetTotal      int     `json:"set_total"`
	LastWeight    float64 `json:"last_weight"`
	LastReps      int     `json:"last_reps"`
	CompletedSets int     `json:"completed_sets"`
	TotalVolume   float64 `json:"total_volume"`
	ExerciseCount int     `json:"exercise_count"`
}

// LiveStatusFrom projects a Session into a LiveStatus payload.
func LiveStatusFrom(s *Session) LiveStatus {
	status := LiveStatus{
		CompletedSets: s.CompletedSets(),
		TotalVolume:   s.TotalVolume(),
		ExerciseCount: len(s.Exercises),
	}

	ex := s.CurrentExercise()
	if ex == nil {
		return status
	}

	status.ExerciseName = ex.ExerciseName
	status.SetTotal = len(ex.Sets)
	for i, set := range ex.Sets {
		if !set.Completed {
			status.SetIndex = i + 1
			break
		}
		status.SetIndex = i + 1
	}

	// Last weight/reps entered: the most recent completed set anywhere.
	for _, e := range s.Exercises {
		for _, set := range e.Sets {
			if set.Completed {
				status.LastWeight = set.Weight
				status.LastReps = set.Reps
			}
		}
	}
	return status
}
