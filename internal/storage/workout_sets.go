package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/claude/liftlog/internal/models"
)

// QueryWorkoutSets retrieves all sets of one workout in performed order.
func (db *DB) QueryWorkoutSets(ctx context.Context, workoutID uuid.UUID, userID int) ([]models.WorkoutSetRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, workout_id, user_id, exercise_name, order_index, set_number,
		 reps, weight_kg, is_completed, notes
		 FROM workout_sets
		 WHERE workout_id = $1 AND user_id = $2
		 ORDER BY order_index ASC, set_number ASC`,
		workoutID, userID)
	if err != nil {
		return nil, fmt.Errorf("querying workout sets: %w", err)
	}
	defer rows.Close()

	return scanSetRows(rows)
}

// QuerySetsByExercise retrieves completed sets for one exercise in a time
// range, newest workout first. Used for progression views.
func (db *DB) QuerySetsByExercise(ctx context.Context, exerciseName string, start, end time.Time, userID int) ([]models.WorkoutSetRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT s.id, s.workout_id, s.user_id, s.exercise_name, s.order_index, s.set_number,
		 s.reps, s.weight_kg, s.is_completed, s.notes
		 FROM workout_sets s
		 JOIN workouts w ON w.id = s.workout_id
		 WHERE s.exercise_name = $1 AND s.is_completed
		   AND w.start_time >= $2 AND w.start_time < $3 AND s.user_id = $4
		 ORDER BY w.start_time DESC, s.set_number ASC`,
		exerciseName, start, end, userID)
	if err != nil {
		return nil, fmt.Errorf("querying sets by exercise: %w", err)
	}
	defer rows.Close()

	return scanSetRows(rows)
}

func scanSetRows(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]models.WorkoutSetRow, error) {
	var result []models.WorkoutSetRow
	for rows.Next() {
		var s models.WorkoutSetRow
		if err := rows.Scan(&s.ID, &s.WorkoutID, &s.UserID, &s.ExerciseName, &s.OrderIndex,
			&s.SetNumber, &s.Reps, &s.WeightKg, &s.IsCompleted, &s.Notes); err != nil {
			return nil, fmt.Errorf("scanning workout set: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
