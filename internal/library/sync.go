// This file contains the collection refresh job: for every series with a
// mapped directory, re-run the collection matcher and persist the results.
// Progress is reported through the operation registry so clients can poll it.

package library

import (
	"fmt"
	"log"

	"github.com/longbox-dev/longbox/internal/collection"
	"github.com/longbox-dev/longbox/internal/jobs"
	"github.com/longbox-dev/longbox/internal/models"
	"github.com/longbox-dev/longbox/internal/operations"
	"github.com/longbox-dev/longbox/internal/store"
	"github.com/longbox-dev/longbox/internal/util"
)

// RefreshCollections re-matches every mapped series against its directory.
// Registered with the job manager under jobs.RefreshJobID and triggered by
// the scheduler, the sync schedule, and the run-now endpoint.
func RefreshCollections(ctx jobs.JobContext) {
	st := store.New(ctx.DB())
	ops := ctx.Ops()

	seriesList, err := st.ListSeries()
	if err != nil {
		log.Printf("Collection refresh aborted, cannot list series: %v", err)
		return
	}

	var mapped []*models.Series
	for _, series := range seriesList {
		if series.MappedPath != "" {
			mapped = append(mapped, series)
		}
	}

	opID := ops.Register("collection-refresh", "Refreshing collections", len(mapped))
	matcher := collection.NewMatcher(st)
	roots := ctx.Config().Library.Paths
	failed := false

	for i, series := range mapped {
		detail := fmt.Sprintf("Matching %s", series.Name)
		current := i
		ops.Update(opID, operations.Fields{Current: &current, Detail: &detail})

		if err := refreshOneSeries(st, matcher, series, roots); err != nil {
			log.Printf("Error refreshing series %d (%s): %v", series.ID, series.Name, err)
			failed = true
		}
	}

	ops.Complete(opID, failed)

	if err := st.UpdateLastSync(); err != nil {
		log.Printf("Error recording last sync time: %v", err)
	}
	log.Printf("Collection refresh finished (%d series, failed=%v)", len(mapped), failed)
}

// RefreshSeries re-matches a single series in the background and returns the
// operation id for polling. Used by the per-series refresh endpoint.
func RefreshSeries(ctx jobs.JobContext, series *models.Series) string {
	st := store.New(ctx.DB())
	ops := ctx.Ops()
	opID := ops.Register("series-refresh", fmt.Sprintf("Refreshing %s", series.Name), 1)

	go func() {
		matcher := collection.NewMatcher(st)
		err := refreshOneSeries(st, matcher, series, ctx.Config().Library.Paths)
		if err != nil {
			log.Printf("Error refreshing series %d (%s): %v", series.ID, series.Name, err)
			detail := err.Error()
			ops.Update(opID, operations.Fields{Detail: &detail})
		}
		ops.Complete(opID, err != nil)
	}()

	return opID
}

// refreshOneSeries validates the mapped path and runs a cache-bypassing match
// so the stored collection status reflects the directory as it is now.
func refreshOneSeries(st *store.Store, matcher *collection.Matcher, series *models.Series, roots []string) error {
	if err := util.ValidateMappedPath(series.MappedPath, roots); err != nil {
		return err
	}
	issues, err := st.GetIssuesBySeries(series.ID)
	if err != nil {
		return fmt.Errorf("fetching issues: %w", err)
	}
	matcher.Match(series.MappedPath, issues, series, false)
	return nil
}
