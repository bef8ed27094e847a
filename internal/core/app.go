package core

import (
	"database/sql"
	"embed"
	"fmt"
	"log"

	"github.com/longbox-dev/longbox/internal/config"
	"github.com/longbox-dev/longbox/internal/db"
	"github.com/longbox-dev/longbox/internal/jobs"
	"github.com/longbox-dev/longbox/internal/operations"
)

// App holds the core components of the application shared between the server
// and background jobs. It implements jobs.JobContext.
type App struct {
	config  *config.Config
	db      *sql.DB
	ops     *operations.Registry
	jobMgr  *jobs.JobManager
	version string
}

// New sets up and returns a new App instance. It handles loading the
// configuration, initializing the database connection, and running migrations.
func New(migrationsFS embed.FS) (*App, error) {
	// Load configuration from config.yml
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize the database connection
	database, err := db.InitDB(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	if err := db.RunMigrations(database, migrationsFS); err != nil {
		// We can't proceed without a valid database schema.
		// Close the DB connection before failing.
		database.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	app := &App{
		config:  cfg,
		db:      database,
		ops:     operations.NewRegistry(),
		version: "dev",
	}
	app.jobMgr = jobs.NewManager(app)

	log.Println("Core application setup complete.")
	return app, nil
}

// NewForTesting assembles an App around an existing database connection,
// skipping config loading and migrations.
func NewForTesting(cfg *config.Config, database *sql.DB) *App {
	app := &App{
		config:  cfg,
		db:      database,
		ops:     operations.NewRegistry(),
		version: "test",
	}
	app.jobMgr = jobs.NewManager(app)
	return app
}

func (a *App) DB() *sql.DB                  { return a.db }
func (a *App) Config() *config.Config       { return a.config }
func (a *App) Ops() *operations.Registry    { return a.ops }
func (a *App) JobManager() *jobs.JobManager { return a.jobMgr }
func (a *App) Version() string              { return a.version }

// Close gracefully closes the application's resources, like the DB connection.
func (a *App) Close() {
	if a.db != nil {
		a.db.Close()
	}
}
