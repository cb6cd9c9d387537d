package models

import (
	"time"

	"github.com/google/uuid"
)

// CatalogExercise is a row in the exercise catalog. Sessions reference
// catalog exercises by name; the ID exists so the schema can be re-keyed to
// a stable foreign key later without changing the snapshot format.
type CatalogExercise struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	MuscleGroup string    `json:"muscle_group"`
	Equipment   string    `json:"equipment"`
	Archived    bool      `json:"archived"`
	CreatedAt   time.Time `json:"created_at"`
}

// WorkoutTemplate is a reusable exercise list a session can start from.
type WorkoutTemplate struct {
	ID        uuid.UUID          `json:"id"`
	UserID    int                `json:"user_id"`
	Name      string             `json:"name"`
	Notes     string             `json:"notes"`
	CreatedAt time.Time          `json:"created_at"`
	Exercises []TemplateExercise `json:"exercises"`
}

// TemplateExercise is one planned exercise within a template or program day.
type TemplateExercise struct {
	ExerciseName string  `json:"exercise_name"`
	OrderIndex   int     `json:"order_index"`
	TargetSets   int     `json:"target_sets"`
	TargetReps   int     `json:"target_reps"`
	TargetWeight float64 `json:"target_weight"`
}

// ProgramDay is one day of a multi-day training program, stored as a
// template plus a day number.
type ProgramDay struct {
	TemplateID uuid.UUID          `json:"template_id"`
	Day        int                `json:"day"`
	Name       string             `json:"name"`
	Exercises  []TemplateExercise `json:"exercises"`
}
