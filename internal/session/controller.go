package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/claude/liftlog/internal/live"
	"github.com/claude/liftlog/internal/models"
)

// stagedPlan is a pending template or program-day reference. Staging does
// not materialize a session: hydration may need a catalog lookup, so the
// session is built in MaterializePending once exercises are resolved.
type stagedPlan struct {
	name      string
	exercises []models.TemplateExercise
}

// Controller is the Active Workout Session Manager: the sole owner of the
// session lifecycle and the single point of contact between mutations,
// the snapshot store, the live-status channel, and the durable repositories.
//
// State machine: Idle -> Active(fullscreen) <-> Active(minimized) -> Idle
// via Finish/Cancel; Idle -> Active(minimized) via Restore. No other path
// into Active exists.
type Controller struct {
	store     SnapshotStore
	liveCoord *live.Coordinator
	saver     WorkoutSaver
	catalog   Catalog
	presenter Presenter
	log       *slog.Logger

	mu        sync.Mutex
	vm        *ViewModel
	sessionID uuid.UUID
	label     string
	minimized bool
	pending   *stagedPlan
}

// NewController wires the controller. presenter may be nil.
func NewController(store SnapshotStore, liveCoord *live.Coordinator, saver WorkoutSaver, catalog Catalog, presenter Presenter, log *slog.Logger) *Controller {
	if presenter == nil {
		presenter = nopPresenter{}
	}
	return &Controller{
		store:     store,
		liveCoord: liveCoord,
		saver:     saver,
		catalog:   catalog,
		presenter: presenter,
		log:       log,
	}
}

// Start begins a new session. Fails with ErrSessionActive if one is already
// in progress: the existing session is never replaced or corrupted.
func (c *Controller) Start(s *models.Session, label string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.vm != nil {
		return ErrSessionActive
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.StartTime.IsZero() {
		s.StartTime = time.Now()
	}
	if label == "" {
		label = "Workout"
	}

	c.beginLocked(NewViewModel(s), s.ID, label, false)
	c.presenter.PresentFullScreen()
	c.log.Info("session started", "workout_id", s.ID, "label", label)
	return nil
}

// StartFromTemplate stages a template and requests full-screen entry. The
// session itself is materialized later via MaterializePending.
func (c *Controller) StartFromTemplate(t models.WorkoutTemplate) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.vm != nil {
		return ErrSessionActive
	}
	c.pending = &stagedPlan{name: t.Name, exercises: t.Exercises}
	c.presenter.PresentFullScreen()
	return nil
}

// StartFromProgramDay stages one day of a program and requests full-screen
// entry.
func (c *Controller) StartFromProgramDay(t models.WorkoutTemplate, day models.ProgramDay) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.vm != nil {
		return ErrSessionActive
	}
	name := t.Name
	if day.Name != "" {
		name = fmt.Sprintf("%s: %s", t.Name, day.Name)
	}
	c.pending = &stagedPlan{name: name, exercises: day.Exercises}
	c.presenter.PresentFullScreen()
	return nil
}

// MaterializePending hydrates the staged template into a live session,
// resolving exercise names against the catalog. Unresolvable names are
// skipped with a log, never fatal.
func (c *Controller) MaterializePending(ctx context.Context) error {
	c.mu.Lock()
	if c.vm != nil {
		c.mu.Unlock()
		return ErrSessionActive
	}
	if c.pending == nil {
		c.mu.Unlock()
		return ErrNoPendingPlan
	}
	plan := c.pending
	c.mu.Unlock()

	known, err := c.knownExerciseNames(ctx)
	if err != nil {
		return fmt.Errorf("hydrating template: %w", err)
	}

	s := &models.Session{ID: uuid.New(), StartTime: time.Now()}
	for _, te := range plan.exercises {
		if !known[te.ExerciseName] {
			c.log.Warn("skipping template exercise, not in catalog", "exercise", te.ExerciseName)
			continue
		}
		ex := models.SessionExercise{
			ID:           uuid.New(),
			ExerciseName: te.ExerciseName,
			OrderIndex:   len(s.Exercises),
		}
		for i := 0; i < te.TargetSets; i++ {
			ex.Sets = append(ex.Sets, models.SessionSet{
				ID:     uuid.New(),
				Reps:   te.TargetReps,
				Weight: te.TargetWeight,
			})
		}
		s.Exercises = append(s.Exercises, ex)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.vm != nil {
		return ErrSessionActive
	}
	c.pending = nil
	c.beginLocked(NewViewModel(s), s.ID, plan.name, false)
	c.log.Info("session started from plan", "workout_id", s.ID, "label", plan.name, "exercises", len(s.Exercises))
	return nil
}

// Resume requests full-screen presentation of an existing session. No-op
// when idle.
func (c *Controller) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.vm == nil {
		return
	}
	c.minimized = false
	c.presenter.PresentFullScreen()
}

// Minimize requests minimized presentation and writes a snapshot.
// Idempotent; no-op when idle.
func (c *Controller) Minimize() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.vm == nil {
		return
	}
	c.minimized = true
	c.presenter.PresentMinimized()
	c.saveSnapshot(c.vm.Snapshot())
}

// Finish durably saves the session for userID and clears all state. On a
// save failure nothing is cleared: the session stays active, the snapshot
// stays intact, and the caller decides retry versus Cancel. On success the
// returned id identifies the saved workout for follow-up PR detection.
// The durable rows carry userID so history and PR queries scoped to the
// same identity see them.
func (c *Controller) Finish(ctx context.Context, userID int) (uuid.UUID, error) {
	c.mu.Lock()
	if c.vm == nil {
		c.mu.Unlock()
		return uuid.Nil, ErrNoActiveSession
	}
	vm := c.vm
	id := c.sessionID
	c.mu.Unlock()

	// Detach the change hook while the save is in flight so a racing edit
	// cannot slip between the row projection and the snapshot clear.
	vm.SetOnChange(nil)

	if userID <= 0 {
		userID = defaultUserID
	}
	finished := vm.Session()
	endTime := time.Now()
	row := models.WorkoutRowFrom(&finished, userID, endTime)
	sets := models.WorkoutSetRowsFrom(&finished, userID)

	if err := c.saver.SaveWorkout(ctx, row, sets); err != nil {
		c.mu.Lock()
		if c.vm == vm { // not cancelled while the save was in flight
			vm.SetOnChange(c.onSessionChanged)
		}
		c.mu.Unlock()
		c.log.Error("finish failed, session retained", "workout_id", id, "error", err)
		return uuid.Nil, fmt.Errorf("saving workout: %w", err)
	}

	c.mu.Lock()
	if c.vm == vm {
		c.clearLocked()
	}
	c.mu.Unlock()

	c.log.Info("session finished", "workout_id", id, "sets", len(sets), "volume", row.TotalVolume)
	return id, nil
}

// Cancel discards the session unconditionally: live channel ended, snapshot
// cleared, memory cleared, nothing saved. No-op when idle.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.vm == nil {
		c.pending = nil
		return
	}
	id := c.sessionID
	c.vm.SetOnChange(nil)
	c.clearLocked()
	c.log.Info("session cancelled", "workout_id", id)
}

// Restore reconstructs a session from the stored snapshot after a process
// restart. Exercises whose catalog name no longer resolves are skipped.
// Returns false with no error when there is nothing to restore.
func (c *Controller) Restore(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if c.vm != nil {
		c.mu.Unlock()
		return false, ErrSessionActive
	}
	c.mu.Unlock()

	snap, err := c.store.Load()
	if err != nil {
		return false, fmt.Errorf("loading snapshot: %w", err)
	}
	if snap == nil {
		return false, nil
	}

	known, err := c.knownExerciseNames(ctx)
	if err != nil {
		// Snapshot stays intact; a later restore attempt can succeed.
		return false, fmt.Errorf("resolving catalog: %w", err)
	}

	s := snap.Session()
	kept := s.Exercises[:0]
	for _, ex := range s.Exercises {
		if !known[ex.ExerciseName] {
			c.log.Warn("dropping unresolvable exercise from restored session",
				"workout_id", s.ID, "exercise", ex.ExerciseName)
			continue
		}
		ex.OrderIndex = len(kept)
		kept = append(kept, ex)
	}
	s.Exercises = kept

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.vm != nil {
		return false, ErrSessionActive
	}
	c.beginLocked(NewViewModel(s), s.ID, "Workout", true)
	c.presenter.PresentMinimized()
	c.log.Info("session restored", "workout_id", s.ID, "exercises", len(s.Exercises))
	return true, nil
}

// ViewModel returns the active session's view-model, or nil when idle.
func (c *Controller) ViewModel() *ViewModel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.vm
}

// IsActive reports whether a session is in progress.
func (c *Controller) IsActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.vm != nil
}

// Minimized reports whether the active session is in minimized presentation.
func (c *Controller) Minimized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.minimized
}

// ActiveExerciseName returns the current exercise's catalog name, or "" when
// idle or empty.
func (c *Controller) ActiveExerciseName() string {
	vm := c.ViewModel()
	if vm == nil {
		return ""
	}
	return vm.Status().ExerciseName
}

// CompletedSets returns the completed-set count, 0 when idle.
func (c *Controller) CompletedSets() int {
	vm := c.ViewModel()
	if vm == nil {
		return 0
	}
	return vm.Status().CompletedSets
}

// TotalSets returns the total set count, 0 when idle.
func (c *Controller) TotalSets() int {
	vm := c.ViewModel()
	if vm == nil {
		return 0
	}
	s := vm.Session()
	return s.TotalSets()
}

// ActiveSession returns a copy of the in-progress session.
func (c *Controller) ActiveSession() (models.Session, bool) {
	vm := c.ViewModel()
	if vm == nil {
		return models.Session{}, false
	}
	return vm.Session(), true
}

// defaultUserID scopes durable rows in single-user deployments; multi-user
// scoping happens at the transport layer.
const defaultUserID = 1

// beginLocked installs a session: subscribes the change hook, writes the
// initial snapshot, and opens the live channel with an immediate update.
func (c *Controller) beginLocked(vm *ViewModel, id uuid.UUID, label string, minimized bool) {
	c.vm = vm
	c.sessionID = id
	c.label = label
	c.minimized = minimized
	vm.SetOnChange(c.onSessionChanged)

	c.saveSnapshot(vm.Snapshot())
	c.liveCoord.Start(label)
	c.liveCoord.UpdateNow(vm.Status())
}

// clearLocked tears down session state: live channel ended, snapshot
// cleared, memory released.
func (c *Controller) clearLocked() {
	c.liveCoord.End()
	if err := c.store.Clear(); err != nil {
		c.log.Error("clearing snapshot failed", "error", err)
	}
	c.vm = nil
	c.sessionID = uuid.Nil
	c.label = ""
	c.minimized = false
}

// onSessionChanged is the view-model change hook: snapshot write-through on
// every mutation plus a debounced live update. Runs synchronously inside
// the mutation, so snapshot writes are ordered with mutations.
func (c *Controller) onSessionChanged(snap models.Snapshot) {
	c.saveSnapshot(snap)
	c.liveCoord.Update(c.currentStatus)
}

// currentStatus computes the live payload at debounce fire time.
func (c *Controller) currentStatus() models.LiveStatus {
	vm := c.ViewModel()
	if vm == nil {
		return models.LiveStatus{}
	}
	return vm.Status()
}

func (c *Controller) saveSnapshot(snap models.Snapshot) {
	if err := c.store.Save(snap); err != nil {
		c.log.Error("snapshot write failed", "workout_id", snap.WorkoutID, "error", err)
	}
}

func (c *Controller) knownExerciseNames(ctx context.Context) (map[string]bool, error) {
	exercises, err := c.catalog.FetchAllExercises(ctx)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(exercises))
	for _, ex := range exercises {
		known[ex.Name] = true
	}
	return known, nil
}
