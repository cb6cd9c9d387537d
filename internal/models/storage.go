package models

import (
	"time"

	"github.com/google/uuid"
)

// WorkoutRow is a finished session ready for insertion into the workouts table.
type WorkoutRow struct {
	ID            uuid.UUID `json:"id"`
	UserID        int       `json:"user_id"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	DurationSec   float64   `json:"duration_sec"`
	ExerciseCount int       `json:"exercise_count"`
	CompletedSets int       `json:"completed_sets"`
	TotalVolume   float64   `json:"total_volume"`
}

// WorkoutSetRow is one performed set ready for the workout_sets table.
type WorkoutSetRow struct {
	ID           uuid.UUID `json:"id"`
	WorkoutID    uuid.UUID `json:"workout_id"`
	UserID       int       `json:"user_id"`
	ExerciseName string    `json:"exercise_name"`
	OrderIndex   int       `json:"order_index"`
	SetNumber    int       `json:"set_number"`
	Reps         int       `json:"reps"`
	WeightKg     float64   `json:"weight_kg"`
	IsCompleted  bool      `json:"is_completed"`
	Notes        string    `json:"notes"`
}

// PersonalRecord is the best recorded result for one exercise.
type PersonalRecord struct {
	UserID       int       `json:"user_id"`
	ExerciseName string    `json:"exercise_name"`
	WeightKg     float64   `json:"weight_kg"`
	Reps         int       `json:"reps"`
	Estimated1RM float64   `json:"estimated_1rm"`
	WorkoutID    uuid.UUID `json:"workout_id"`
	AchievedAt   time.Time `json:"achieved_at"`
}

// WorkoutRowFrom flattens a finished Session into its workouts-table row.
func WorkoutRowFrom(s *Session, userID int, endTime time.Time) WorkoutRow {
	return WorkoutRow{
		ID:            s.ID,
		UserID:        userID,
		StartTime:     s.StartTime,
		EndTime:       endTime,
		DurationSec:   endTime.Sub(s.StartTime).Seconds(),
		ExerciseCount: len(s.Exercises),
		CompletedSets: s.CompletedSets(),
		TotalVolume:   s.TotalVolume(),
	}
}

// WorkoutSetRowsFrom flattens all sets of a finished Session into
// workout_sets rows, preserving exercise and set order.
func WorkoutSetRowsFrom(s *Session, userID int) []WorkoutSetRow {
	var rows []WorkoutSetRow
	for _, ex := range s.Exercises {
		for i, set := range ex.Sets {
			rows = append(rows, WorkoutSetRow{
				ID:           set.ID,
				WorkoutID:    s.ID,
				UserID:       userID,
				ExerciseName: ex.ExerciseName,
				OrderIndex:   ex.OrderIndex,
				SetNumber:    i + 1,
				Reps:         set.Reps,
				WeightKg:     set.Weight,
				IsCompleted:  set.Completed,
				Notes:        set.Notes,
			})
		}
	}
	return rows
}
