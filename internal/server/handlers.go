package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/session"
)

// sessionStatus is the response body for GET /api/v1/session.
type sessionStatus struct {
	Active    bool              `json:"active"`
	Minimized bool              `json:"minimized"`
	Session   *models.Session   `json:"session,omitempty"`
	Live      models.LiveStatus `json:"live"`
}

func (s *Server) handleSessionStatus(w http.ResponseWriter, r *http.Request) {
	status := sessionStatus{}
	if sess, ok := s.ctrl.ActiveSession(); ok {
		status.Active = true
		status.Minimized = s.ctrl.Minimized()
		status.Session = &sess
		status.Live = models.LiveStatusFrom(&sess)
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleSessionStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Label     string   `json:"label"`
		Exercises []string `json:"exercises"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	sess := &models.Session{}
	for _, name := range req.Exercises {
		sess.Exercises = append(sess.Exercises, models.SessionExercise{
			ID:           uuid.New(),
			ExerciseName: name,
			OrderIndex:   len(sess.Exercises),
		})
	}

	if err := s.ctrl.Start(sess, req.Label); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"workout_id": sess.ID.String()})
}

func (s *Server) handleStartFromTemplate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TemplateID uuid.UUID `json:"template_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	tmpl, err := s.db.GetTemplate(r.Context(), req.TemplateID, userIDFromContext(r))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "template not found"})
		return
	}

	if err := s.ctrl.StartFromTemplate(*tmpl); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "staged"})
}

func (s *Server) handleStartFromProgramDay(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TemplateID uuid.UUID `json:"template_id"`
		Day        int       `json:"day"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	userID := userIDFromContext(r)
	tmpl, err := s.db.GetTemplate(r.Context(), req.TemplateID, userID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "template not found"})
		return
	}
	day, err := s.db.GetProgramDay(r.Context(), req.TemplateID, req.Day, userID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "program day not found"})
		return
	}

	if err := s.ctrl.StartFromProgramDay(*tmpl, *day); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "staged"})
}

func (s *Server) handleMaterialize(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.MaterializePending(r.Context()); err != nil {
		writeSessionError(w, err)
		return
	}
	sess, _ := s.ctrl.ActiveSession()
	writeJSON(w, http.StatusCreated, map[string]string{"workout_id": sess.ID.String()})
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	s.ctrl.Resume()
	writeJSON(w, http.StatusOK, map[string]bool{"active": s.ctrl.IsActive()})
}

func (s *Server) handleMinimize(w http.ResponseWriter, r *http.Request) {
	s.ctrl.Minimize()
	writeJSON(w, http.StatusOK, map[string]bool{"active": s.ctrl.IsActive()})
}

func (s *Server) handleFinish(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r)
	workoutID, err := s.ctrl.Finish(r.Context(), userID)
	if err != nil {
		writeSessionError(w, err)
		return
	}

	// PR detection is best-effort follow-up; the workout is already durable.
	var records []models.PersonalRecord
	if s.db != nil {
		records, err = s.db.DetectAndRecordPRs(r.Context(), workoutID, userID)
		if err != nil {
			s.log.Warn("pr detection failed", "workout_id", workoutID, "error", err)
			records = nil
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"workout_id":       workoutID,
		"personal_records": records,
	})
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	s.ctrl.Cancel()
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	restored, err := s.ctrl.Restore(r.Context())
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"restored": restored})
}

func (s *Server) handleAddExercise(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name required"})
		return
	}

	vm := s.ctrl.ViewModel()
	if vm == nil {
		writeSessionError(w, session.ErrNoActiveSession)
		return
	}
	ex := vm.AddExercise(req.Name)
	writeJSON(w, http.StatusCreated, ex)
}

func (s *Server) handleRemoveExercise(w http.ResponseWriter, r *http.Request) {
	exerciseID, err := uuid.Parse(chi.URLParam(r, "exerciseID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid exercise ID"})
		return
	}

	vm := s.ctrl.ViewModel()
	if vm == nil {
		writeSessionError(w, session.ErrNoActiveSession)
		return
	}
	if err := vm.RemoveExercise(exerciseID); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// setRequest is the body for adding or updating a set.
type setRequest struct {
	Reps   int     `json:"reps"`
	Weight float64 `json:"weight"`
	Notes  string  `json:"notes"`
}

func (s *Server) handleAddSet(w http.ResponseWriter, r *http.Request) {
	exerciseID, err := uuid.Parse(chi.URLParam(r, "exerciseID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid exercise ID"})
		return
	}
	var req setRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	vm := s.ctrl.ViewModel()
	if vm == nil {
		writeSessionError(w, session.ErrNoActiveSession)
		return
	}
	set, err := vm.AddSet(exerciseID, req.Reps, req.Weight, req.Notes)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, set)
}

func (s *Server) handleUpdateSet(w http.ResponseWriter, r *http.Request) {
	exerciseID, setID, ok := setParams(w, r)
	if !ok {
		return
	}
	var req setRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	vm := s.ctrl.ViewModel()
	if vm == nil {
		writeSessionError(w, session.ErrNoActiveSession)
		return
	}
	if err := vm.UpdateSet(exerciseID, setID, req.Reps, req.Weight, req.Notes); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleRemoveSet(w http.ResponseWriter, r *http.Request) {
	exerciseID, setID, ok := setParams(w, r)
	if !ok {
		return
	}

	vm := s.ctrl.ViewModel()
	if vm == nil {
		writeSessionError(w, session.ErrNoActiveSession)
		return
	}
	if err := vm.RemoveSet(exerciseID, setID); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (s *Server) handleToggleSet(w http.ResponseWriter, r *http.Request) {
	exerciseID, setID, ok := setParams(w, r)
	if !ok {
		return
	}

	vm := s.ctrl.ViewModel()
	if vm == nil {
		writeSessionError(w, session.ErrNoActiveSession)
		return
	}
	completed, err := vm.ToggleSet(exerciseID, setID)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"completed": completed})
}

func (s *Server) handleQueryWorkouts(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	workouts, err := s.db.QueryWorkouts(r.Context(), start, end, userIDFromContext(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, workouts)
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	workoutID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workout ID"})
		return
	}

	detail, err := s.db.GetWorkout(r.Context(), workoutID, userIDFromContext(r))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleGetRecords(w http.ResponseWriter, r *http.Request) {
	records, err := s.db.GetPersonalRecords(r.Context(), userIDFromContext(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleTrainingVolume(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	periods, err := s.db.GetTrainingVolume(r.Context(), start, end, r.URL.Query().Get("bucket"), userIDFromContext(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, periods)
}

func (s *Server) handleExerciseVolume(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	volumes, err := s.db.GetExerciseVolume(r.Context(), start, end, userIDFromContext(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, volumes)
}

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	exercises, err := s.db.FetchAllExercises(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if r.URL.Query().Get("archived") != "true" {
		active := exercises[:0]
		for _, ex := range exercises {
			if !ex.Archived {
				active = append(active, ex)
			}
		}
		exercises = active
	}
	writeJSON(w, http.StatusOK, exercises)
}

func (s *Server) handleCreateExercise(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		MuscleGroup string `json:"muscle_group"`
		Equipment   string `json:"equipment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name required"})
		return
	}

	created, err := s.db.CreateExercise(r.Context(), req.Name, req.MuscleGroup, req.Equipment)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if !created {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "exercise already exists"})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"name": req.Name})
}

func (s *Server) handleArchiveExercise(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := s.db.ArchiveExercise(r.Context(), name); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "archived"})
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := s.db.ListTemplates(r.Context(), userIDFromContext(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, templates)
}

func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var tmpl models.WorkoutTemplate
	if err := json.NewDecoder(r.Body).Decode(&tmpl); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if tmpl.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name required"})
		return
	}
	tmpl.UserID = userIDFromContext(r)

	id, err := s.db.CreateTemplate(r.Context(), tmpl)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id.String()})
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid template ID"})
		return
	}

	tmpl, err := s.db.GetTemplate(r.Context(), id, userIDFromContext(r))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "template not found"})
		return
	}
	writeJSON(w, http.StatusOK, tmpl)
}

func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid template ID"})
		return
	}

	if err := s.db.DeleteTemplate(r.Context(), id, userIDFromContext(r)); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleUpsertProgramDay(w http.ResponseWriter, r *http.Request) {
	templateID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid template ID"})
		return
	}
	day, err := strconv.Atoi(chi.URLParam(r, "day"))
	if err != nil || day < 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid day"})
		return
	}

	var pd models.ProgramDay
	if err := json.NewDecoder(r.Body).Decode(&pd); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	pd.TemplateID = templateID
	pd.Day = day

	if err := s.db.UpsertProgramDay(r.Context(), pd); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// setParams parses the exercise and set IDs from the route. Writes a 400 and
// returns ok=false on malformed IDs.
func setParams(w http.ResponseWriter, r *http.Request) (exerciseID, setID uuid.UUID, ok bool) {
	exerciseID, err := uuid.Parse(chi.URLParam(r, "exerciseID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid exercise ID"})
		return uuid.Nil, uuid.Nil, false
	}
	setID, err = uuid.Parse(chi.URLParam(r, "setID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid set ID"})
		return uuid.Nil, uuid.Nil, false
	}
	return exerciseID, setID, true
}

// writeSessionError maps controller and view-model errors onto status codes.
func writeSessionError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrSessionActive):
		status = http.StatusConflict
	case errors.Is(err, session.ErrNoActiveSession), errors.Is(err, session.ErrNoPendingPlan):
		status = http.StatusConflict
	case errors.Is(err, session.ErrExerciseNotFound), errors.Is(err, session.ErrSetNotFound):
		status = http.StatusNotFound
	case errors.Is(err, session.ErrInvalidSet):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func parseTimeRange(r *http.Request) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" {
		// Default: last 30 days
		end = time.Now()
		start = end.AddDate(0, 0, -30)
		return
	}

	start, err = time.Parse(time.RFC3339, startStr)
	if err != nil {
		start, err = time.Parse("2006-01-02", startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}

	if endStr == "" {
		end = time.Now()
	} else {
		end, err = time.Parse(time.RFC3339, endStr)
		if err != nil {
			end, err = time.Parse("2006-01-02", endStr)
			if err != nil {
				return time.Time{}, time.Time{}, err
			}
			// End of day for date-only
			end = end.Add(24 * time.Hour)
		}
	}
	return
}
