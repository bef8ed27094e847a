package store_test

import (
	"testing"

	"github.com/longbox-dev/longbox/internal/models"
	"github.com/longbox-dev/longbox/internal/store"
	"github.com/longbox-dev/longbox/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func seedSeriesWithIssues(t *testing.T, st *store.Store) {
	t.Helper()
	if err := st.UpsertSeries(&models.Series{ID: 100, Name: "Ultimates", Status: "Ongoing"}); err != nil {
		t.Fatalf("seeding series failed: %v", err)
	}
	issues := []*models.Issue{
		{ID: 1, Number: "1"},
		{ID: 2, Number: "2"},
	}
	if err := st.UpsertIssues(100, issues); err != nil {
		t.Fatalf("seeding issues failed: %v", err)
	}
}

func TestCollectionStatusRoundTrip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	st := store.New(db)
	seedSeriesWithIssues(t, st)

	entries := []*models.CollectionEntry{
		{SeriesID: 100, IssueID: 1, IssueNumber: "1", Found: true,
			FilePath: strPtr("/comics/Ultimates/Ultimates 001.cbz"),
			FileMtime: floatPtr(1700000000.5), MatchedVia: models.MatchedViaPattern},
		{SeriesID: 100, IssueID: 2, IssueNumber: "2", Found: false},
	}
	if err := st.SaveCollectionStatusBulk(entries); err != nil {
		t.Fatalf("SaveCollectionStatusBulk failed: %v", err)
	}

	got, err := st.CollectionStatus(100)
	if err != nil {
		t.Fatalf("CollectionStatus failed: %v", err)
	}
	if assert.Len(t, got, 2) {
		assert.True(t, got[0].Found)
		assert.Equal(t, "/comics/Ultimates/Ultimates 001.cbz", *got[0].FilePath)
		assert.InDelta(t, 1700000000.5, *got[0].FileMtime, 0.001)
		assert.Equal(t, models.MatchedViaPattern, got[0].MatchedVia)
		assert.False(t, got[1].Found)
		assert.Nil(t, got[1].FilePath)
		assert.Nil(t, got[1].FileMtime)
	}
}

func TestSaveCollectionStatusBulk_Upserts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	st := store.New(db)
	seedSeriesWithIssues(t, st)

	first := []*models.CollectionEntry{
		{SeriesID: 100, IssueID: 1, IssueNumber: "1", Found: false},
	}
	st.SaveCollectionStatusBulk(first)

	second := []*models.CollectionEntry{
		{SeriesID: 100, IssueID: 1, IssueNumber: "1", Found: true,
			FilePath: strPtr("/comics/u1.cbz"), MatchedVia: models.MatchedViaFilename},
	}
	st.SaveCollectionStatusBulk(second)

	got, _ := st.CollectionStatus(100)
	if assert.Len(t, got, 1) {
		assert.True(t, got[0].Found)
		assert.Equal(t, models.MatchedViaFilename, got[0].MatchedVia)
	}
}

func TestDeleteCollectionStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	st := store.New(db)
	seedSeriesWithIssues(t, st)

	st.SaveCollectionStatusBulk([]*models.CollectionEntry{
		{SeriesID: 100, IssueID: 1, IssueNumber: "1", Found: true},
	})
	if err := st.DeleteCollectionStatus(100); err != nil {
		t.Fatalf("DeleteCollectionStatus failed: %v", err)
	}
	got, _ := st.CollectionStatus(100)
	assert.Empty(t, got)
}

func TestPreferences(t *testing.T) {
	db := testutil.SetupTestDB(t)
	st := store.New(db)

	// Unset keys return the default.
	v, err := st.Preference("custom_rename_pattern", "{series_name} {issue_number}")
	assert.NoError(t, err)
	assert.Equal(t, "{series_name} {issue_number}", v)

	assert.NoError(t, st.SetPreference("custom_rename_pattern", "{series_name} #{issue_number}"))
	v, _ = st.Preference("custom_rename_pattern", "")
	assert.Equal(t, "{series_name} #{issue_number}", v)

	// Overwrite.
	st.SetPreference("custom_rename_pattern", "{series_name}")
	v, _ = st.Preference("custom_rename_pattern", "")
	assert.Equal(t, "{series_name}", v)
}
