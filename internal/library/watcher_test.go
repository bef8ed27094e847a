package library_test

import (
	"testing"
	"time"

	"github.com/longbox-dev/longbox/internal/jobs"
	"github.com/longbox-dev/longbox/internal/library"
	"github.com/longbox-dev/longbox/internal/models"
	"github.com/longbox-dev/longbox/internal/store"
	"github.com/longbox-dev/longbox/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestWatcherService_StartStop(t *testing.T) {
	app, _ := setupLibraryApp(t)
	watcher := library.NewWatcherService(app)

	if err := watcher.Start(); err != nil {
		t.Fatalf("Failed to start watcher: %v", err)
	}
	if err := watcher.Stop(); err != nil {
		t.Fatalf("Failed to stop watcher: %v", err)
	}
}

func TestWatcherService_InvalidatesCacheOnArchiveChange(t *testing.T) {
	app, seriesDir := setupLibraryApp(t)
	app.JobManager().Register(jobs.RefreshJobID, "Collection Refresh", library.RefreshCollections)
	st := store.New(app.DB())

	// Seed a cached status so invalidation is observable.
	library.RefreshCollections(app)
	entries, _ := st.CollectionStatus(100)
	assert.NotEmpty(t, entries)

	watcher := library.NewWatcherService(app)
	if err := watcher.Start(); err != nil {
		t.Fatalf("Failed to start watcher: %v", err)
	}
	defer watcher.Stop()

	// Wait a bit for watcher to initialize
	time.Sleep(100 * time.Millisecond)

	// Dropping a new archive into the mapped directory must rebuild the
	// cached status for that series.
	testutil.CreateTestCBZ(t, seriesDir, "Ultimates 002 (2015).cbz", []string{"page01.jpg"})

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		entries, _ = st.CollectionStatus(100)
		if len(entries) == 2 && entries[0].Found && entries[1].Found {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("cache was not rebuilt after archive change: %+v", entries)
}

func TestWatcherService_IgnoresNonArchiveFiles(t *testing.T) {
	app, seriesDir := setupLibraryApp(t)
	st := store.New(app.DB())
	library.RefreshCollections(app)

	watcher := library.NewWatcherService(app)
	if err := watcher.Start(); err != nil {
		t.Fatalf("Failed to start watcher: %v", err)
	}
	defer watcher.Stop()

	time.Sleep(100 * time.Millisecond)
	testutil.CreateTestCBZ(t, seriesDir, "notes.txt", []string{"ignored"})

	// Past the debounce window the cache is untouched.
	time.Sleep(3 * time.Second)
	entries, _ := st.CollectionStatus(100)
	assert.Len(t, entries, 2)
}

func TestWatcherService_WatchSeriesDirErrors(t *testing.T) {
	app, _ := setupLibraryApp(t)
	st := store.New(app.DB())

	// A series mapped to a missing directory is skipped, not fatal.
	st.UpsertSeries(&models.Series{ID: 300, Name: "Ghost", MappedPath: "/does/not/exist", Status: "Ongoing"})

	watcher := library.NewWatcherService(app)
	if err := watcher.Start(); err != nil {
		t.Fatalf("Failed to start watcher: %v", err)
	}
	watcher.Stop()
}
