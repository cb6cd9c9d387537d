// Package session owns the single in-progress workout: its lifecycle state
// machine, the crash-recovery snapshot written on every mutation, and the
// debounced live-status relay.
package session

import (
	"context"
	"errors"

	"github.com/claude/liftlog/internal/models"
)

var (
	// ErrSessionActive is returned when an operation requires no active
	// session but one is in progress.
	ErrSessionActive = errors.New("a workout session is already active")
	// ErrNoActiveSession is returned when an operation requires an active
	// session and none exists.
	ErrNoActiveSession = errors.New("no active workout session")
	// ErrNoPendingPlan is returned when materialization is requested with
	// no staged template or program day.
	ErrNoPendingPlan = errors.New("no pending workout plan")
)

// SnapshotStore is the single-slot crash-recovery store. Satisfied by
// snapshot.Store.
type SnapshotStore interface {
	Save(models.Snapshot) error
	Load() (*models.Snapshot, error)
	Clear() error
}

// WorkoutSaver durably persists a finished session. Implemented by the
// Postgres storage layer; calls are isolated and may fail independently of
// in-memory state.
type WorkoutSaver interface {
	SaveWorkout(ctx context.Context, workout models.WorkoutRow, sets []models.WorkoutSetRow) error
}

// Catalog supplies the exercise catalog, used to re-resolve denormalized
// exercise names during restore and template hydration.
type Catalog interface {
	FetchAllExercises(ctx context.Context) ([]models.CatalogExercise, error)
}

// Presenter receives UI presentation requests from the controller. A nil
// presenter is valid; requests are then dropped.
type Presenter interface {
	PresentFullScreen()
	PresentMinimized()
}

type nopPresenter struct{}

func (nopPresenter) PresentFullScreen() {}
func (nopPresenter) PresentMinimized()  {}
