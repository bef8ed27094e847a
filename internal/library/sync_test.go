package library_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/longbox-dev/longbox/internal/config"
	"github.com/longbox-dev/longbox/internal/core"
	"github.com/longbox-dev/longbox/internal/library"
	"github.com/longbox-dev/longbox/internal/models"
	"github.com/longbox-dev/longbox/internal/operations"
	"github.com/longbox-dev/longbox/internal/store"
	"github.com/longbox-dev/longbox/internal/testutil"
	"github.com/stretchr/testify/assert"
)

// setupLibraryApp builds an app whose library root is a temp dir and seeds one
// mapped series with two issues, one of which exists on disk.
func setupLibraryApp(t *testing.T) (*core.App, string) {
	t.Helper()
	root := t.TempDir()
	cfg := &config.Config{}
	cfg.Library.Paths = []string{root}
	app := core.NewForTesting(cfg, testutil.SetupTestDB(t))

	seriesDir := filepath.Join(root, "Ultimates")
	if err := os.Mkdir(seriesDir, 0755); err != nil {
		t.Fatal(err)
	}
	testutil.CreateTestCBZ(t, seriesDir, "Ultimates 001 (2015).cbz", []string{"page01.jpg"})

	st := store.New(app.DB())
	if err := st.UpsertSeries(&models.Series{ID: 100, Name: "Ultimates", MappedPath: seriesDir, Status: "Ongoing"}); err != nil {
		t.Fatal(err)
	}
	if err := st.UpsertIssues(100, []*models.Issue{
		{ID: 1, Number: "1"},
		{ID: 2, Number: "2"},
	}); err != nil {
		t.Fatal(err)
	}
	return app, seriesDir
}

func TestRefreshCollections(t *testing.T) {
	app, _ := setupLibraryApp(t)

	library.RefreshCollections(app)

	st := store.New(app.DB())
	entries, err := st.CollectionStatus(100)
	if err != nil {
		t.Fatalf("CollectionStatus failed: %v", err)
	}
	if assert.Len(t, entries, 2) {
		byNumber := map[string]bool{}
		for _, e := range entries {
			byNumber[e.IssueNumber] = e.Found
		}
		assert.True(t, byNumber["1"])
		assert.False(t, byNumber["2"])
	}

	// The run is visible as a completed operation.
	ops := app.Ops().ListActive()
	if assert.Len(t, ops, 1) {
		assert.Equal(t, "collection-refresh", ops[0].OpType)
		assert.Equal(t, operations.StatusCompleted, ops[0].Status)
		assert.Equal(t, ops[0].Total, ops[0].Current)
	}

	// The sync timestamp is stamped.
	st.SaveSyncSchedule("daily", "03:00", 0)
	library.RefreshCollections(app)
	schedule, _ := st.GetSyncSchedule()
	assert.NotNil(t, schedule.LastSync)
}

func TestRefreshCollections_InvalidMappedPath(t *testing.T) {
	app, _ := setupLibraryApp(t)
	st := store.New(app.DB())

	// Second series mapped outside the library roots.
	st.UpsertSeries(&models.Series{ID: 200, Name: "Other", MappedPath: "/outside/of/roots", Status: "Ongoing"})
	st.UpsertIssues(200, []*models.Issue{{ID: 21, Number: "1"}})

	library.RefreshCollections(app)

	// The valid series still refreshes; the operation records the failure.
	entries, _ := st.CollectionStatus(100)
	assert.Len(t, entries, 2)
	ops := app.Ops().ListActive()
	if assert.Len(t, ops, 1) {
		assert.Equal(t, operations.StatusError, ops[0].Status)
	}
}

func TestRefreshSeries(t *testing.T) {
	app, _ := setupLibraryApp(t)
	st := store.New(app.DB())
	series, err := st.GetSeriesByID(100)
	if err != nil {
		t.Fatal(err)
	}

	opID := library.RefreshSeries(app, series)
	assert.NotEmpty(t, opID)

	// Wait for the background match to finish.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		ops := app.Ops().ListActive()
		if len(ops) == 1 && ops[0].Status != operations.StatusRunning {
			assert.Equal(t, opID, ops[0].ID)
			assert.Equal(t, operations.StatusCompleted, ops[0].Status)
			entries, _ := st.CollectionStatus(100)
			assert.Len(t, entries, 2)
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("refresh operation did not complete in time")
}
