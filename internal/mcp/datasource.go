package mcp

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. Both *storage.DB (local)
// and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	QueryWorkouts(ctx context.Context, start, end time.Time, userID int) ([]models.WorkoutRow, error)
	QueryWorkoutSets(ctx context.Context, workoutID uuid.UUID, userID int) ([]models.WorkoutSetRow, error)
	GetPersonalRecords(ctx context.Context, userID int) ([]models.PersonalRecord, error)
	GetTrainingVolume(ctx context.Context, start, end time.Time, bucket string, userID int) ([]storage.VolumePeriod, error)
	GetExerciseVolume(ctx context.Context, start, end time.Time, userID int) ([]storage.ExerciseVolume, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)

// SessionStatus mirrors the REST session status payload so local and remote
// session sources produce the same tool output.
type SessionStatus struct {
	Active    bool              `json:"active"`
	Minimized bool              `json:"minimized"`
	Session   *models.Session   `json:"session,omitempty"`
	Live      models.LiveStatus `json:"live"`
}

// SessionSource reports the in-progress workout session, if any.
type SessionSource interface {
	SessionStatus(ctx context.Context) (SessionStatus, error)
}
