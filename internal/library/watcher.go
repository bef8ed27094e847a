// This file implements a file system watcher over the mapped series
// directories. It uses OS-level file system events to invalidate the cached
// collection status of affected series and trigger a refresh.

package library

import (
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/longbox-dev/longbox/internal/collection"
	"github.com/longbox-dev/longbox/internal/jobs"
	"github.com/longbox-dev/longbox/internal/store"
)

// WatcherService watches every mapped series directory and, after a debounce
// window, invalidates the collection cache of the series whose directories
// changed and submits a collection refresh.
type WatcherService struct {
	ctx           jobs.JobContext
	watcher       *fsnotify.Watcher
	seriesByDir   map[string]int64 // watched dir -> series id
	changedDirs   map[string]bool
	mu            sync.Mutex
	debounceTimer *time.Timer
	debounceDelay time.Duration
	stopChan      chan struct{}
}

// NewWatcherService creates a new file system watcher service.
func NewWatcherService(ctx jobs.JobContext) *WatcherService {
	return &WatcherService{
		ctx:           ctx,
		seriesByDir:   make(map[string]int64),
		changedDirs:   make(map[string]bool),
		debounceDelay: 2 * time.Second, // Wait 2 seconds after last change before refreshing
		stopChan:      make(chan struct{}),
	}
}

// Start begins watching the mapped directories of all tracked series.
func (w *WatcherService) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = watcher

	st := store.New(w.ctx.DB())
	seriesList, err := st.ListSeries()
	if err != nil {
		watcher.Close()
		return err
	}

	watched := 0
	for _, series := range seriesList {
		if series.MappedPath == "" {
			continue
		}
		if err := w.WatchSeriesDir(series.ID, series.MappedPath); err != nil {
			log.Printf("Cannot watch %s for series %d: %v", series.MappedPath, series.ID, err)
			continue
		}
		watched++
	}

	log.Printf("File watcher started for %d mapped series directories", watched)

	go w.processEvents()
	return nil
}

// WatchSeriesDir adds a series' mapped directory to the watch list. Called at
// startup and when a series' mapping changes.
func (w *WatcherService) WatchSeriesDir(seriesID int64, dir string) error {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		if err == nil {
			return os.ErrInvalid
		}
		return err
	}
	if err := w.watcher.Add(dir); err != nil {
		return err
	}
	w.mu.Lock()
	w.seriesByDir[filepath.Clean(dir)] = seriesID
	w.mu.Unlock()
	return nil
}

// Stop stops the file watcher service.
func (w *WatcherService) Stop() error {
	close(w.stopChan)
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}

func (w *WatcherService) processEvents() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("File watcher error: %v", err)

		case <-w.stopChan:
			return
		}
	}
}

// handleEvent processes a single file system event.
func (w *WatcherService) handleEvent(event fsnotify.Event) {
	// Ignore Chmod events (these are often triggered by opening folders,
	// reading files, etc.) to avoid false invalidations.
	if event.Op == fsnotify.Chmod {
		return
	}

	hasRelevantOp := (event.Op&fsnotify.Create == fsnotify.Create) ||
		(event.Op&fsnotify.Write == fsnotify.Write) ||
		(event.Op&fsnotify.Remove == fsnotify.Remove) ||
		(event.Op&fsnotify.Rename == fsnotify.Rename)
	if !hasRelevantOp {
		return
	}

	// Only archive files affect match results.
	if !collection.IsSupportedArchive(filepath.Base(event.Name)) {
		return
	}

	w.mu.Lock()
	w.changedDirs[filepath.Clean(filepath.Dir(event.Name))] = true
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounceDelay, w.invalidateChanged)
	w.mu.Unlock()
}

// invalidateChanged drops the cached collection status for every series whose
// directory changed and submits a refresh so the cache is rebuilt.
func (w *WatcherService) invalidateChanged() {
	w.mu.Lock()
	var seriesIDs []int64
	for dir := range w.changedDirs {
		if id, ok := w.seriesByDir[dir]; ok {
			seriesIDs = append(seriesIDs, id)
		}
	}
	w.changedDirs = make(map[string]bool)
	w.mu.Unlock()

	if len(seriesIDs) == 0 {
		return
	}

	log.Printf("File watcher detected changes in %d series directories", len(seriesIDs))
	st := store.New(w.ctx.DB())
	for _, id := range seriesIDs {
		if err := st.DeleteCollectionStatus(id); err != nil {
			log.Printf("Error invalidating collection cache for series %d: %v", id, err)
		}
	}

	if err := w.ctx.JobManager().RunJob(jobs.RefreshJobID, w.ctx); err != nil {
		// A refresh may already be running; the invalidated cache means the
		// next match rescans anyway.
		log.Printf("Watcher could not start refresh: %v", err)
	}
}
