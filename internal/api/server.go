// It defines the API server, sets up the routes (endpoints)
// using chi, and links them to the handler functions.

package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-co-op/gocron"
	"github.com/longbox-dev/longbox/internal/core"
	"github.com/longbox-dev/longbox/internal/store"
)

// Server holds the dependencies for our API.
type Server struct {
	app       *core.App
	db        *sql.DB
	store     *store.Store
	scheduler *gocron.Scheduler
}

// NewServer creates a new Server instance.
func NewServer(app *core.App) *Server {
	return &Server{
		app:   app,
		db:    app.DB(),
		store: store.New(app.DB()),
	}
}

// Store returns the store instance.
func (s *Server) Store() *store.Store {
	return s.store
}

// SetScheduler hands the server the running scheduler so saving the sync
// schedule can reconfigure it.
func (s *Server) SetScheduler(scheduler *gocron.Scheduler) {
	s.scheduler = scheduler
}

// Router sets up and returns the main router for the application.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)    // Logs requests to the console
	r.Use(middleware.Recoverer) // Recovers from panics
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/api", func(r chi.Router) {
		r.Get("/version", s.handleGetVersion)
		r.Get("/operations", s.handleListOperations)
		r.Get("/jobs/status", s.handleGetJobsStatus)

		// Series and collection routes
		r.Get("/series", s.handleListSeries)
		r.Get("/series/{seriesID}", s.handleGetSeries)
		r.Post("/series/{seriesID}/match", s.handleMatchSeries)
		r.Post("/series/{seriesID}/refresh", s.handleRefreshSeries)
		r.Post("/series/{seriesID}/subscription", s.handleSetSubscription)

		// Reading routes
		r.Get("/stack", s.handleGetStack)
		r.Post("/issues/read", s.handleMarkIssueRead)

		// Preferences
		r.Get("/preferences/{key}", s.handleGetPreference)
		r.Post("/preferences/{key}", s.handleSetPreference)

		// Sync schedule
		r.Get("/sync-schedule", s.handleGetSyncSchedule)
		r.Post("/sync-schedule", s.handleSaveSyncSchedule)
		r.Post("/sync-schedule/run-now", s.handleRunSyncNow)
	})

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		if err := s.db.Ping(); err != nil {
			RespondWithError(w, http.StatusServiceUnavailable, "Database connection failed")
			return
		}
		RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}

func (s *Server) handleGetVersion(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, map[string]string{"version": s.app.Version()})
}

func (s *Server) handleListOperations(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"operations": s.app.Ops().ListActive(),
	})
}

func (s *Server) handleGetJobsStatus(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, s.app.JobManager().GetStatus())
}
