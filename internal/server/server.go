package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"tailscale.com/client/local"

	"github.com/claude/liftlog/internal/session"
	"github.com/claude/liftlog/internal/snapshot"
	"github.com/claude/liftlog/internal/storage"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db     *storage.DB
	ctrl   *session.Controller
	snap   *snapshot.Store
	live   http.Handler // websocket hub, nil when the live channel is disabled
	log    *slog.Logger
	apiKey string
	lc     *local.Client
	router chi.Router
}

// New creates a new Server with all routes configured. live may be nil.
func New(db *storage.DB, ctrl *session.Controller, snap *snapshot.Store, live http.Handler, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		db:     db,
		ctrl:   ctrl,
		snap:   snap,
		live:   live,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// SetTailscale enables tailnet identity resolution. Call before serving.
func (s *Server) SetTailscale(lc *local.Client) {
	s.lc = lc
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// identity resolves the caller through Tailscale when available, and falls
// back to the fixed dev identity otherwise.
func (s *Server) identity(next http.Handler) http.Handler {
	dev := DevIdentity(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.lc != nil {
			TailscaleIdentity(s.lc, s.db, s.log)(next).ServeHTTP(w, r)
			return
		}
		dev.ServeHTTP(w, r)
	})
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(s.identity)

	// Active-session endpoints (API key required — this is the surface the
	// tracking client mutates)
	s.router.Route("/api/v1/session", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))

		r.Get("/", s.handleSessionStatus)
		r.Post("/start", s.handleSessionStart)
		r.Post("/start-template", s.handleStartFromTemplate)
		r.Post("/start-program", s.handleStartFromProgramDay)
		r.Post("/materialize", s.handleMaterialize)
		r.Post("/resume", s.handleResume)
		r.Post("/minimize", s.handleMinimize)
		r.Post("/finish", s.handleFinish)
		r.Post("/cancel", s.handleCancel)
		r.Post("/restore", s.handleRestore)

		r.Post("/exercises", s.handleAddExercise)
		r.Delete("/exercises/{exerciseID}", s.handleRemoveExercise)
		r.Post("/exercises/{exerciseID}/sets", s.handleAddSet)
		r.Put("/exercises/{exerciseID}/sets/{setID}", s.handleUpdateSet)
		r.Delete("/exercises/{exerciseID}/sets/{setID}", s.handleRemoveSet)
		r.Post("/exercises/{exerciseID}/sets/{setID}/toggle", s.handleToggleSet)
	})

	// History and catalog endpoints (no auth — tsnet handles access)
	s.router.Get("/api/v1/workouts", s.handleQueryWorkouts)
	s.router.Get("/api/v1/workouts/{id}", s.handleGetWorkout)
	s.router.Get("/api/v1/records", s.handleGetRecords)
	s.router.Get("/api/v1/volume", s.handleTrainingVolume)
	s.router.Get("/api/v1/volume/exercises", s.handleExerciseVolume)

	s.router.Get("/api/v1/exercises", s.handleListExercises)
	s.router.Post("/api/v1/exercises", s.handleCreateExercise)
	s.router.Delete("/api/v1/exercises/{name}", s.handleArchiveExercise)

	s.router.Get("/api/v1/templates", s.handleListTemplates)
	s.router.Post("/api/v1/templates", s.handleCreateTemplate)
	s.router.Get("/api/v1/templates/{id}", s.handleGetTemplate)
	s.router.Delete("/api/v1/templates/{id}", s.handleDeleteTemplate)
	s.router.Put("/api/v1/templates/{id}/days/{day}", s.handleUpsertProgramDay)

	s.router.Get("/api/v1/settings/weight-unit", s.handleGetWeightUnit)
	s.router.Put("/api/v1/settings/weight-unit", s.handleSetWeightUnit)
	s.router.Get("/api/v1/me", s.handleMe)

	if s.live != nil {
		s.router.Get("/api/v1/live", s.live.ServeHTTP)
	}
}
