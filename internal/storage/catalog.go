package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/claude/liftlog/internal/models"
)

// FetchAllExercises returns the full exercise catalog, archived rows
// included: an archived exercise still resolves for session restore, it is
// only hidden from pickers.
func (db *DB) FetchAllExercises(ctx context.Context) ([]models.CatalogExercise, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, name, muscle_group, equipment, archived, created_at
		 FROM exercise_catalog
		 ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying exercise catalog: %w", err)
	}
	defer rows.Close()

	var result []models.CatalogExercise
	for rows.Next() {
		var ex models.CatalogExercise
		if err := rows.Scan(&ex.ID, &ex.Name, &ex.MuscleGroup, &ex.Equipment, &ex.Archived, &ex.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning catalog exercise: %w", err)
		}
		result = append(result, ex)
	}
	return result, rows.Err()
}

// CreateExercise adds a catalog entry. Returns false if the name is taken.
func (db *DB) CreateExercise(ctx context.Context, name, muscleGroup, equipment string) (bool, error) {
	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO exercise_catalog (id, name, muscle_group, equipment)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (name) DO NOTHING`,
		uuid.New(), name, muscleGroup, equipment)
	if err != nil {
		return false, fmt.Errorf("inserting catalog exercise: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ArchiveExercise soft-deletes a catalog entry by name.
func (db *DB) ArchiveExercise(ctx context.Context, name string) error {
	_, err := db.Pool.Exec(ctx,
		`UPDATE exercise_catalog SET archived = TRUE WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("archiving catalog exercise: %w", err)
	}
	return nil
}
