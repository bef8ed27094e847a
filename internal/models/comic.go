// This file defines the core data structures (models) for the application:
// series and issues mirrored from the external catalog, plus the rows of the
// collection-status cache. External data enters through these structs once,
// at the ingestion boundary.

package models

import "time"

// Series represents a comic series tracked by its external catalog ID.
type Series struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	MappedPath string    `json:"mapped_path,omitempty"`
	Status     string    `json:"status"`     // "Ongoing" or "Ended"
	Subscribed *bool     `json:"subscribed"` // nil = default by status
	Issues     []*Issue  `json:"issues,omitempty"`
	CreatedAt  time.Time `json:"-"`
	UpdatedAt  time.Time `json:"-"`
}

// EffectivelySubscribed resolves the subscription tri-state: an explicit
// value wins, otherwise ongoing series are subscribed by default.
func (s *Series) EffectivelySubscribed() bool {
	if s.Subscribed != nil {
		return *s.Subscribed
	}
	return s.Status == "Ongoing"
}

// Issue represents one numbered installment of a series. Number is kept as a
// string: issue numbers can be decimal ("2.5") or non-numeric ("Annual 1") and
// must round-trip exactly.
type Issue struct {
	ID        int64  `json:"id"`
	SeriesID  int64  `json:"series_id"`
	Number    string `json:"number"`
	CoverDate string `json:"cover_date,omitempty"`
	StoreDate string `json:"store_date,omitempty"`
}

// How a collection entry was matched to a local file.
const (
	MatchedViaPattern   = "pattern"
	MatchedViaComicInfo = "comicinfo"
	MatchedViaFilename  = "filename"
)

// CollectionEntry is one cached match result for (series, issue). FileMtime is
// unix seconds at the time of the match and is what invalidates the cache when
// the file changes on disk.
type CollectionEntry struct {
	SeriesID    int64    `json:"series_id"`
	IssueID     int64    `json:"issue_id"`
	IssueNumber string   `json:"issue_number"`
	Found       bool     `json:"found"`
	FilePath    *string  `json:"file_path"`
	FileMtime   *float64 `json:"file_mtime"`
	MatchedVia  string   `json:"matched_via,omitempty"`
}

// MatchResult is the per-issue answer of the collection matcher.
type MatchResult struct {
	Found    bool    `json:"found"`
	FilePath *string `json:"file_path"`
}

// StackItem is one "On the Stack" row: the next unread, on-disk issue of a
// subscribed series.
type StackItem struct {
	SeriesID    int64  `json:"series_id"`
	SeriesName  string `json:"series_name"`
	IssueID     int64  `json:"issue_id"`
	IssueNumber string `json:"issue_number"`
	FilePath    string `json:"file_path"`
	UnreadCount int    `json:"unread_count"`
}

// SyncSchedule is the persisted recurring-sync configuration.
type SyncSchedule struct {
	Frequency string     `json:"frequency"` // "disabled", "daily", "weekly"
	Time      string     `json:"time"`      // "HH:MM"
	Weekday   int        `json:"weekday"`   // 0 = Monday
	LastSync  *time.Time `json:"last_sync"`
}
