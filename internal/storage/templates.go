package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/claude/liftlog/internal/models"
)

// ListTemplates returns all workout templates for a user, exercises
// included.
func (db *DB) ListTemplates(ctx context.Context, userID int) ([]models.WorkoutTemplate, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, name, notes, created_at, exercises
		 FROM workout_templates
		 WHERE user_id = $1
		 ORDER BY name ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying templates: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutTemplate
	for rows.Next() {
		t, err := scanTemplate(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// GetTemplate retrieves one template by id.
func (db *DB) GetTemplate(ctx context.Context, id uuid.UUID, userID int) (*models.WorkoutTemplate, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, user_id, name, notes, created_at, exercises
		 FROM workout_templates
		 WHERE id = $1 AND user_id = $2`,
		id, userID)

	t, err := scanTemplate(row.Scan)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTemplate stores a template. The exercise list is stored as JSONB:
// templates are read-mostly and always loaded whole.
func (db *DB) CreateTemplate(ctx context.Context, t models.WorkoutTemplate) (uuid.UUID, error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	exercises, err := json.Marshal(t.Exercises)
	if err != nil {
		return uuid.Nil, fmt.Errorf("serializing template exercises: %w", err)
	}

	_, err = db.Pool.Exec(ctx,
		`INSERT INTO workout_templates (id, user_id, name, notes, exercises)
		 VALUES ($1, $2, $3, $4, $5)`,
		t.ID, t.UserID, t.Name, t.Notes, exercises)
	if err != nil {
		return uuid.Nil, fmt.Errorf("inserting template: %w", err)
	}
	return t.ID, nil
}

// DeleteTemplate removes a template. Idempotent.
func (db *DB) DeleteTemplate(ctx context.Context, id uuid.UUID, userID int) error {
	_, err := db.Pool.Exec(ctx,
		`DELETE FROM workout_templates WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting template: %w", err)
	}
	return nil
}

// GetProgramDay retrieves one day of a program template. Days are stored on
// the program_days table keyed by template id + day number.
func (db *DB) GetProgramDay(ctx context.Context, templateID uuid.UUID, day int, userID int) (*models.ProgramDay, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT d.template_id, d.day, d.name, d.exercises
		 FROM program_days d
		 JOIN workout_templates t ON t.id = d.template_id
		 WHERE d.template_id = $1 AND d.day = $2 AND t.user_id = $3`,
		templateID, day, userID)

	var pd models.ProgramDay
	var exercises []byte
	if err := row.Scan(&pd.TemplateID, &pd.Day, &pd.Name, &exercises); err != nil {
		return nil, fmt.Errorf("querying program day: %w", err)
	}
	if err := json.Unmarshal(exercises, &pd.Exercises); err != nil {
		return nil, fmt.Errorf("parsing program day exercises: %w", err)
	}
	return &pd, nil
}

// UpsertProgramDay stores one day of a program template.
func (db *DB) UpsertProgramDay(ctx context.Context, pd models.ProgramDay) error {
	exercises, err := json.Marshal(pd.Exercises)
	if err != nil {
		return fmt.Errorf("serializing program day exercises: %w", err)
	}
	_, err = db.Pool.Exec(ctx,
		`INSERT INTO program_days (template_id, day, name, exercises)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (template_id, day) DO UPDATE SET
		   name = excluded.name, exercises = excluded.exercises`,
		pd.TemplateID, pd.Day, pd.Name, exercises)
	if err != nil {
		return fmt.Errorf("upserting program day: %w", err)
	}
	return nil
}

func scanTemplate(scan func(...any) error) (models.WorkoutTemplate, error) {
	var t models.WorkoutTemplate
	var exercises []byte
	if err := scan(&t.ID, &t.UserID, &t.Name, &t.Notes, &t.CreatedAt, &exercises); err != nil {
		return t, fmt.Errorf("scanning template: %w", err)
	}
	if err := json.Unmarshal(exercises, &t.Exercises); err != nil {
		return t, fmt.Errorf("parsing template exercises: %w", err)
	}
	return t, nil
}
