package session

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/claude/liftlog/internal/models"
)

var (
	// ErrExerciseNotFound is returned for mutations against an unknown
	// exercise id.
	ErrExerciseNotFound = errors.New("exercise not in session")
	// ErrSetNotFound is returned for mutations against an unknown set id.
	ErrSetNotFound = errors.New("set not in session")
	// ErrInvalidSet is returned for negative reps/weight, or for completing
	// a set with zero reps.
	ErrInvalidSet = errors.New("invalid set values")
)

// ViewModel is the mutable in-memory exercise/set list for the current
// session. Every mutating call fires the change hook exactly once,
// synchronously, after the mutation is applied; the controller relies on
// that to order snapshot writes against mutations.
type ViewModel struct {
	mu       sync.Mutex
	session  *models.Session
	onChange func(models.Snapshot)
}

// NewViewModel wraps a session. The view-model takes exclusive ownership of
// the session value.
func NewViewModel(s *models.Session) *ViewModel {
	return &ViewModel{session: s}
}

// SetOnChange installs the change hook. Pass nil to unsubscribe.
func (vm *ViewModel) SetOnChange(fn func(models.Snapshot)) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.onChange = fn
}

// notifyLocked fires the change hook with the post-mutation snapshot. Called
// with vm.mu held so hook invocations are ordered with mutations.
func (vm *ViewModel) notifyLocked() {
	if vm.onChange != nil {
		vm.onChange(models.SnapshotFrom(vm.session))
	}
}

// AddExercise appends an exercise referencing the given catalog name and
// returns its instance.
func (vm *ViewModel) AddExercise(name string) models.SessionExercise {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	ex := models.SessionExercise{
		ID:           uuid.New(),
		ExerciseName: name,
		OrderIndex:   len(vm.session.Exercises),
	}
	vm.session.Exercises = append(vm.session.Exercises, ex)
	vm.notifyLocked()
	return ex
}

// RemoveExercise deletes an exercise and recomputes the remaining order
// indexes so they stay contiguous.
func (vm *ViewModel) RemoveExercise(id uuid.UUID) error {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	idx := -1
	for i := range vm.session.Exercises {
		if vm.session.Exercises[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrExerciseNotFound
	}

	vm.session.Exercises = append(vm.session.Exercises[:idx], vm.session.Exercises[idx+1:]...)
	for i := range vm.session.Exercises {
		vm.session.Exercises[i].OrderIndex = i
	}
	vm.notifyLocked()
	return nil
}

// AddSet appends a set to an exercise.
func (vm *ViewModel) AddSet(exerciseID uuid.UUID, reps int, weight float64, notes string) (models.SessionSet, error) {
	if reps < 0 || weight < 0 {
		return models.SessionSet{}, ErrInvalidSet
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()

	ex := vm.findExerciseLocked(exerciseID)
	if ex == nil {
		return models.SessionSet{}, ErrExerciseNotFound
	}

	set := models.SessionSet{ID: uuid.New(), Reps: reps, Weight: weight, Notes: notes}
	ex.Sets = append(ex.Sets, set)
	vm.notifyLocked()
	return set, nil
}

// UpdateSet replaces a set's reps, weight, and notes. Completion state is
// untouched; a completed set keeps the invariant reps > 0.
func (vm *ViewModel) UpdateSet(exerciseID, setID uuid.UUID, reps int, weight float64, notes string) error {
	if reps < 0 || weight < 0 {
		return ErrInvalidSet
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()

	set := vm.findSetLocked(exerciseID, setID)
	if set == nil {
		return ErrSetNotFound
	}
	if set.Completed && reps == 0 {
		return ErrInvalidSet
	}

	set.Reps = reps
	set.Weight = weight
	set.Notes = notes
	vm.notifyLocked()
	return nil
}

// RemoveSet deletes a set from an exercise.
func (vm *ViewModel) RemoveSet(exerciseID, setID uuid.UUID) error {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	ex := vm.findExerciseLocked(exerciseID)
	if ex == nil {
		return ErrExerciseNotFound
	}
	for i := range ex.Sets {
		if ex.Sets[i].ID == setID {
			ex.Sets = append(ex.Sets[:i], ex.Sets[i+1:]...)
			vm.notifyLocked()
			return nil
		}
	}
	return ErrSetNotFound
}

// ToggleSet flips a set's completion flag and returns the new state. A set
// needs reps > 0 before it can be marked complete.
func (vm *ViewModel) ToggleSet(exerciseID, setID uuid.UUID) (bool, error) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	set := vm.findSetLocked(exerciseID, setID)
	if set == nil {
		return false, ErrSetNotFound
	}
	if !set.Completed && set.Reps <= 0 {
		return false, ErrInvalidSet
	}

	set.Completed = !set.Completed
	vm.notifyLocked()
	return set.Completed, nil
}

// Snapshot returns the current crash-recovery projection.
func (vm *ViewModel) Snapshot() models.Snapshot {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return models.SnapshotFrom(vm.session)
}

// Status returns the current live-status projection.
func (vm *ViewModel) Status() models.LiveStatus {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return models.LiveStatusFrom(vm.session)
}

// Session returns a deep copy of the current session for read-only use.
func (vm *ViewModel) Session() models.Session {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return *models.SnapshotFrom(vm.session).Session()
}

func (vm *ViewModel) findExerciseLocked(id uuid.UUID) *models.SessionExercise {
	for i := range vm.session.Exercises {
		if vm.session.Exercises[i].ID == id {
			return &vm.session.Exercises[i]
		}
	}
	return nil
}

func (vm *ViewModel) findSetLocked(exerciseID, setID uuid.UUID) *models.SessionSet {
	ex := vm.findExerciseLocked(exerciseID)
	if ex == nil {
		return nil
	}
	for i := range ex.Sets {
		if ex.Sets[i].ID == setID {
			return &ex.Sets[i]
		}
	}
	return nil
}
