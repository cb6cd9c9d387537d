package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/overload"
)

// DetectAndRecordPRs reads the durably-saved sets of a finished workout and
// upserts a personal record for every exercise whose best estimated 1RM
// beats the stored one. Runs strictly after the workout save commits, since
// it reads by workout id. Returns the records that were new or improved.
func (db *DB) DetectAndRecordPRs(ctx context.Context, workoutID uuid.UUID, userID int) ([]models.PersonalRecord, error) {
	sets, err := db.QueryWorkoutSets(ctx, workoutID, userID)
	if err != nil {
		return nil, err
	}

	// Best completed set per exercise by estimated 1RM.
	best := make(map[string]models.WorkoutSetRow)
	for _, s := range sets {
		if !s.IsCompleted {
			continue
		}
		cur, ok := best[s.ExerciseName]
		if !ok || overload.Estimate1RM(s.WeightKg, s.Reps) > overload.Estimate1RM(cur.WeightKg, cur.Reps) {
			best[s.ExerciseName] = s
		}
	}

	var improved []models.PersonalRecord
	for name, s := range best {
		e1rm := overload.Estimate1RM(s.WeightKg, s.Reps)
		if e1rm <= 0 {
			continue
		}

		tag, err := db.Pool.Exec(ctx,
			`INSERT INTO personal_records (user_id, exercise_name, weight_kg, reps, estimated_1rm, workout_id, achieved_at)
			 SELECT $1, $2, $3, $4, $5, $6, w.end_time FROM workouts w WHERE w.id = $6
			 ON CONFLICT (user_id, exercise_name) DO UPDATE SET
			   weight_kg = excluded.weight_kg,
			   reps = excluded.reps,
			   estimated_1rm = excluded.estimated_1rm,
			   workout_id = excluded.workout_id,
			   achieved_at = excluded.achieved_at
			 WHERE personal_records.estimated_1rm < excluded.estimated_1rm`,
			userID, name, s.WeightKg, s.Reps, e1rm, workoutID)
		if err != nil {
			return nil, fmt.Errorf("upserting personal record for %s: %w", name, err)
		}
		if tag.RowsAffected() > 0 {
			improved = append(improved, models.PersonalRecord{
				UserID:       userID,
				ExerciseName: name,
				WeightKg:     s.WeightKg,
				Reps:         s.Reps,
				Estimated1RM: e1rm,
				WorkoutID:    workoutID,
			})
		}
	}
	return improved, nil
}

// GetPersonalRecords returns all stored PRs for a user, strongest first.
func (db *DB) GetPersonalRecords(ctx context.Context, userID int) ([]models.PersonalRecord, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT user_id, exercise_name, weight_kg, reps, estimated_1rm, workout_id, achieved_at
		 FROM personal_records
		 WHERE user_id = $1
		 ORDER BY estimated_1rm DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying personal records: %w", err)
	}
	defer rows.Close()

	var result []models.PersonalRecord
	for rows.Next() {
		var pr models.PersonalRecord
		if err := rows.Scan(&pr.UserID, &pr.ExerciseName, &pr.WeightKg, &pr.Reps,
			&pr.Estimated1RM, &pr.WorkoutID, &pr.AchievedAt); err != nil {
			return nil, fmt.Errorf("scanning personal record: %w", err)
		}
		result = append(result, pr)
	}
	return result, rows.Err()
}
