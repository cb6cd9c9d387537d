package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/claude/liftlog/internal/live"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/session"
	"github.com/claude/liftlog/internal/snapshot"
)

const testAPIKey = "test-key"

type stubSaver struct {
	mu    sync.Mutex
	saved []models.WorkoutRow
	sets  [][]models.WorkoutSetRow
}

func (s *stubSaver) SaveWorkout(ctx context.Context, w models.WorkoutRow, sets []models.WorkoutSetRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, w)
	s.sets = append(s.sets, sets)
	return nil
}

type stubCatalog struct{ names []string }

func (c stubCatalog) FetchAllExercises(ctx context.Context) ([]models.CatalogExercise, error) {
	out := make([]models.CatalogExercise, len(c.names))
	for i, n := range c.names {
		out[i] = models.CatalogExercise{Name: n}
	}
	return out, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	srv, _ := newTestServerWithSaver(t)
	return srv
}

func newTestServerWithSaver(t *testing.T) (*Server, *stubSaver) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := snapshot.Open(t.TempDir(), log)
	if err != nil {
		t.Fatalf("open snapshot store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	saver := &stubSaver{}
	coord := live.NewCoordinator(nil, 0, log)
	ctrl := session.NewController(store, coord, saver, stubCatalog{names: []string{"Bench Press", "Squat"}}, nil, log)

	return New(nil, ctrl, store, nil, testAPIKey, log), saver
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("X-API-Key", testAPIKey)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestSessionLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/session/start", `{"label":"Push Day"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("start status = %d, want 201: %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/session", "")
	var status sessionStatus
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if !status.Active {
		t.Fatal("session should be active after start")
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/session/exercises", `{"name":"Bench Press"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add exercise status = %d: %s", rec.Code, rec.Body)
	}
	var ex models.SessionExercise
	if err := json.NewDecoder(rec.Body).Decode(&ex); err != nil {
		t.Fatalf("decode exercise: %v", err)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/session/exercises/"+ex.ID.String()+"/sets", `{"reps":10,"weight":100}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add set status = %d: %s", rec.Code, rec.Body)
	}
	var set models.SessionSet
	if err := json.NewDecoder(rec.Body).Decode(&set); err != nil {
		t.Fatalf("decode set: %v", err)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/session/exercises/"+ex.ID.String()+"/sets/"+set.ID.String()+"/toggle", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle status = %d: %s", rec.Code, rec.Body)
	}
	var toggled map[string]bool
	if err := json.NewDecoder(rec.Body).Decode(&toggled); err != nil {
		t.Fatalf("decode toggle: %v", err)
	}
	if !toggled["completed"] {
		t.Error("set should be completed after toggle")
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/session/cancel", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel status = %d: %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/session", "")
	status = sessionStatus{}
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.Active {
		t.Error("session should be idle after cancel")
	}
}

// TestFinishOverHTTP verifies the finish round-trip: the workout is saved
// with the request's identity, the response carries the workout id, and the
// session goes idle. PR detection is skipped when no database is wired.
func TestFinishOverHTTP(t *testing.T) {
	srv, saver := newTestServerWithSaver(t)

	if rec := doJSON(t, srv, http.MethodPost, "/api/v1/session/start", `{"label":"Pull Day","exercises":["Bench Press"]}`); rec.Code != http.StatusCreated {
		t.Fatalf("start status = %d: %s", rec.Code, rec.Body)
	}

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/session/finish", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("finish status = %d: %s", rec.Code, rec.Body)
	}
	var resp struct {
		WorkoutID string `json:"workout_id"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode finish: %v", err)
	}
	if resp.WorkoutID == "" {
		t.Error("finish response missing workout_id")
	}

	saver.mu.Lock()
	defer saver.mu.Unlock()
	if len(saver.saved) != 1 {
		t.Fatalf("saved workouts = %d, want 1", len(saver.saved))
	}
	if got := saver.saved[0].UserID; got != 1 {
		t.Errorf("workout user_id = %d, want the request identity 1", got)
	}
	if got := saver.saved[0].ID.String(); got != resp.WorkoutID {
		t.Errorf("saved workout id = %s, response id = %s", got, resp.WorkoutID)
	}

	if rec := doJSON(t, srv, http.MethodPost, "/api/v1/session/finish", ""); rec.Code != http.StatusConflict {
		t.Errorf("second finish status = %d, want 409", rec.Code)
	}
}

func TestStartWhileActiveConflicts(t *testing.T) {
	srv := newTestServer(t)

	if rec := doJSON(t, srv, http.MethodPost, "/api/v1/session/start", `{"label":"A"}`); rec.Code != http.StatusCreated {
		t.Fatalf("first start status = %d", rec.Code)
	}
	if rec := doJSON(t, srv, http.MethodPost, "/api/v1/session/start", `{"label":"B"}`); rec.Code != http.StatusConflict {
		t.Errorf("second start status = %d, want 409", rec.Code)
	}
}

func TestMutationWithoutSessionConflicts(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/session/exercises", `{"name":"Squat"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("add exercise while idle = %d, want 409", rec.Code)
	}
}

func TestSessionEndpointsRequireAPIKey(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/session", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("missing key status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/session", nil)
	req.Header.Set("X-API-Key", "wrong")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("wrong key status = %d, want 403", rec.Code)
	}
}

func TestWeightUnitSettings(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/settings/weight-unit", "")
	var unit map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&unit); err != nil {
		t.Fatalf("decode unit: %v", err)
	}
	if unit["unit"] != "kg" {
		t.Errorf("default unit = %q, want kg", unit["unit"])
	}

	if rec := doJSON(t, srv, http.MethodPut, "/api/v1/settings/weight-unit", `{"unit":"lb"}`); rec.Code != http.StatusOK {
		t.Fatalf("set unit status = %d: %s", rec.Code, rec.Body)
	}
	if rec := doJSON(t, srv, http.MethodPut, "/api/v1/settings/weight-unit", `{"unit":"stone"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid unit status = %d, want 400", rec.Code)
	}
}

// TestHandleMeDefault verifies the /api/v1/me endpoint returns the dev user
// identity when no Tailscale middleware is active.
func TestHandleMeDefault(t *testing.T) {
	s := &Server{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	ctx := context.WithValue(req.Context(), userInfoKey, UserInfo{Login: "local", DisplayName: "Local Dev User"})
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()

	s.handleMe(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var info UserInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if info.Login != "local" {
		t.Errorf("login = %q, want %q", info.Login, "local")
	}
	if info.DisplayName != "Local Dev User" {
		t.Errorf("display_name = %q, want %q", info.DisplayName, "Local Dev User")
	}
}

// TestHandleMeTailscaleUser verifies the /api/v1/me endpoint returns the
// Tailscale user identity when set in context.
func TestHandleMeTailscaleUser(t *testing.T) {
	s := &Server{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	ctx := context.WithValue(req.Context(), userInfoKey, UserInfo{Login: "alice@example.com", DisplayName: "Alice"})
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()

	s.handleMe(rec, req)

	var info UserInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if info.Login != "alice@example.com" {
		t.Errorf("login = %q, want %q", info.Login, "alice@example.com")
	}
	if info.DisplayName != "Alice" {
		t.Errorf("display_name = %q, want %q", info.DisplayName, "Alice")
	}
}
