package storage

import (
	"context"
	"fmt"
	"time"
)

// VolumePeriod holds aggregated training volume for one time bucket.
type VolumePeriod struct {
	Period      string  `json:"period"`
	Sessions    int     `json:"sessions"`
	WorkingSets int     `json:"working_sets"`
	TotalReps   int     `json:"total_reps"`
	TonnageKg   float64 `json:"tonnage_kg"`
}

// GetTrainingVolume returns tonnage, sets, and session counts per period.
// bucket is one of "day", "week", "month".
func (db *DB) GetTrainingVolume(ctx context.Context, start, end time.Time, bucket string, userID int) ([]VolumePeriod, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT date_trunc($1, w.start_time)::date AS period,
		        COUNT(DISTINCT w.id)::int,
		        COUNT(s.id) FILTER (WHERE s.is_completed)::int,
		        COALESCE(SUM(s.reps) FILTER (WHERE s.is_completed), 0)::int,
		        COALESCE(SUM(s.reps * s.weight_kg) FILTER (WHERE s.is_completed), 0)
		 FROM workouts w
		 LEFT JOIN workout_sets s ON s.workout_id = w.id
		 WHERE w.start_time >= $2 AND w.start_time < $3 AND w.user_id = $4
		 GROUP BY period
		 ORDER BY period DESC`,
		truncInterval(bucket), start, end, userID)
	if err != nil {
		return nil, fmt.Errorf("querying training volume: %w", err)
	}
	defer rows.Close()

	var result []VolumePeriod
	for rows.Next() {
		var p VolumePeriod
		var period time.Time
		if err := rows.Scan(&period, &p.Sessions, &p.WorkingSets, &p.TotalReps, &p.TonnageKg); err != nil {
			return nil, fmt.Errorf("scanning volume period: %w", err)
		}
		p.Period = period.Format("2006-01-02")
		result = append(result, p)
	}
	return result, rows.Err()
}

// ExerciseVolume holds per-exercise totals for a period.
type ExerciseVolume struct {
	ExerciseName string  `json:"exercise_name"`
	WorkingSets  int     `json:"working_sets"`
	TotalReps    int     `json:"total_reps"`
	TonnageKg    float64 `json:"tonnage_kg"`
	BestWeightKg float64 `json:"best_weight_kg"`
}

// GetExerciseVolume returns completed-set totals per exercise in a range.
func (db *DB) GetExerciseVolume(ctx context.Context, start, end time.Time, userID int) ([]ExerciseVolume, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT s.exercise_name,
		        COUNT(*)::int,
		        COALESCE(SUM(s.reps), 0)::int,
		        COALESCE(SUM(s.reps * s.weight_kg), 0),
		        COALESCE(MAX(s.weight_kg), 0)
		 FROM workout_sets s
		 JOIN workouts w ON w.id = s.workout_id
		 WHERE s.is_completed AND w.start_time >= $1 AND w.start_time < $2 AND s.user_id = $3
		 GROUP BY s.exercise_name
		 ORDER BY SUM(s.reps * s.weight_kg) DESC`,
		start, end, userID)
	if err != nil {
		return nil, fmt.Errorf("querying exercise volume: %w", err)
	}
	defer rows.Close()

	var result []ExerciseVolume
	for rows.Next() {
		var v ExerciseVolume
		if err := rows.Scan(&v.ExerciseName, &v.WorkingSets, &v.TotalReps, &v.TonnageKg, &v.BestWeightKg); err != nil {
			return nil, fmt.Errorf("scanning exercise volume: %w", err)
		}
		result = append(result, v)
	}
	return result, rows.Err()
}

func truncInterval(bucket string) string {
	switch bucket {
	case "day", "week", "month":
		return bucket
	default:
		return "week"
	}
}
