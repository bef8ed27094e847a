// A shared test server setup utility, which simplifies all API tests.

package testutil

import (
	"database/sql"
	"testing"

	"github.com/longbox-dev/longbox/internal/api"
	"github.com/longbox-dev/longbox/internal/config"
	"github.com/longbox-dev/longbox/internal/core"
)

// SetupTestApp assembles a core.App around an in-memory database.
func SetupTestApp(t *testing.T) *core.App {
	t.Helper()
	db := SetupTestDB(t)
	cfg := &config.Config{}
	return core.NewForTesting(cfg, db)
}

// SetupTestServer initializes a full core.App and api.Server for integration testing.
func SetupTestServer(t *testing.T) (*api.Server, *sql.DB) {
	t.Helper()
	app := SetupTestApp(t)
	server := api.NewServer(app)
	return server, app.DB()
}
