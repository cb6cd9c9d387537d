package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/claude/liftlog/internal/models"
)

// SaveWorkout inserts a finished workout and all its sets in one
// transaction. Idempotent on retry: a workout id that already exists is
// replaced wholesale, so a retried finish after a mid-commit failure cannot
// duplicate sets.
func (db *DB) SaveWorkout(ctx context.Context, workout models.WorkoutRow, sets []models.WorkoutSetRow) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning workout save: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO workouts (id, user_id, start_time, end_time, duration_sec,
		 exercise_count, completed_sets, total_volume)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 ON CONFLICT (id) DO UPDATE SET
		   end_time = excluded.end_time,
		   duration_sec = excluded.duration_sec,
		   exercise_count = excluded.exercise_count,
		   completed_sets = excluded.completed_sets,
		   total_volume = excluded.total_volume`,
		workout.ID, workout.UserID, workout.StartTime, workout.EndTime, workout.DurationSec,
		workout.ExerciseCount, workout.CompletedSets, workout.TotalVolume)
	if err != nil {
		return fmt.Errorf("inserting workout: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM workout_sets WHERE workout_id = $1`, workout.ID); err != nil {
		return fmt.Errorf("clearing prior sets: %w", err)
	}

	if len(sets) > 0 {
		query := `INSERT INTO workout_sets (id, workout_id, user_id, exercise_name,
			order_index, set_number, reps, weight_kg, is_completed, notes) VALUES `
		args := make([]any, 0, len(sets)*10)
		valueStrings := make([]string, 0, len(sets))

		for i, s := range sets {
			base := i * 10
			valueStrings = append(valueStrings, fmt.Sprintf(
				"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9, base+10,
			))
			args = append(args, s.ID, s.WorkoutID, s.UserID, s.ExerciseName,
				s.OrderIndex, s.SetNumber, s.Reps, s.WeightKg, s.IsCompleted, s.Notes)
		}

		query += strings.Join(valueStrings, ",")
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("inserting workout sets: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing workout save: %w", err)
	}
	return nil
}

// QueryWorkouts retrieves finished workouts in a time range, newest first.
func (db *DB) QueryWorkouts(ctx context.Context, start, end time.Time, userID int) ([]models.WorkoutRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, start_time, end_time, duration_sec,
		 exercise_count, completed_sets, total_volume
		 FROM workouts
		 WHERE start_time >= $1 AND start_time < $2 AND user_id = $3
		 ORDER BY start_time DESC`,
		start, end, userID)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutRow
	for rows.Next() {
		var w models.WorkoutRow
		if err := rows.Scan(&w.ID, &w.UserID, &w.StartTime, &w.EndTime, &w.DurationSec,
			&w.ExerciseCount, &w.CompletedSets, &w.TotalVolume); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

// WorkoutDetail is a workout with its sets in performed order.
type WorkoutDetail struct {
	models.WorkoutRow
	Sets []models.WorkoutSetRow `json:"sets"`
}

// GetWorkout retrieves a single finished workout by id with all sets.
func (db *DB) GetWorkout(ctx context.Context, workoutID uuid.UUID, userID int) (*WorkoutDetail, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, user_id, start_time, end_time, duration_sec,
		 exercise_count, completed_sets, total_volume
		 FROM workouts
		 WHERE id = $1 AND user_id = $2`,
		workoutID, userID)

	var w models.WorkoutRow
	err := row.Scan(&w.ID, &w.UserID, &w.StartTime, &w.EndTime, &w.DurationSec,
		&w.ExerciseCount, &w.CompletedSets, &w.TotalVolume)
	if err != nil {
		return nil, fmt.Errorf("querying workout: %w", err)
	}

	sets, err := db.QueryWorkoutSets(ctx, workoutID, userID)
	if err != nil {
		return nil, err
	}
	return &WorkoutDetail{WorkoutRow: w, Sets: sets}, nil
}
