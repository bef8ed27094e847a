// Collection-status cache and user preferences. These are the two storage
// operations the collection matcher depends on, plus the invalidation hook
// used by the file watcher.

package store

import (
	"database/sql"
	"time"

	"github.com/longbox-dev/longbox/internal/models"
)

// CollectionStatus returns the cached match results for a series, or an empty
// slice if nothing is cached.
func (s *Store) CollectionStatus(seriesID int64) ([]*models.CollectionEntry, error) {
	rows, err := s.db.Query(`
        SELECT series_id, issue_id, issue_number, found, file_path, file_mtime, matched_via
        FROM collection_status WHERE series_id = ?
    `, seriesID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.CollectionEntry
	for rows.Next() {
		var entry models.CollectionEntry
		var filePath sql.NullString
		var fileMtime sql.NullFloat64
		var matchedVia sql.NullString
		if err := rows.Scan(&entry.SeriesID, &entry.IssueID, &entry.IssueNumber, &entry.Found, &filePath, &fileMtime, &matchedVia); err != nil {
			return nil, err
		}
		if filePath.Valid {
			entry.FilePath = &filePath.String
		}
		if fileMtime.Valid {
			entry.FileMtime = &fileMtime.Float64
		}
		entry.MatchedVia = matchedVia.String
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}

// SaveCollectionStatusBulk overwrites the cached match results for the
// entries' series in a single transaction.
func (s *Store) SaveCollectionStatusBulk(entries []*models.CollectionEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
        INSERT INTO collection_status
        (series_id, issue_id, issue_number, found, file_path, file_mtime, matched_via, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(series_id, issue_id) DO UPDATE SET
            issue_number = excluded.issue_number,
            found = excluded.found,
            file_path = excluded.file_path,
            file_mtime = excluded.file_mtime,
            matched_via = excluded.matched_via,
            updated_at = excluded.updated_at;
    `)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, entry := range entries {
		filePath := sql.NullString{}
		if entry.FilePath != nil {
			filePath = sql.NullString{String: *entry.FilePath, Valid: true}
		}
		fileMtime := sql.NullFloat64{}
		if entry.FileMtime != nil {
			fileMtime = sql.NullFloat64{Float64: *entry.FileMtime, Valid: true}
		}
		matchedVia := sql.NullString{String: entry.MatchedVia, Valid: entry.MatchedVia != ""}

		_, err := stmt.Exec(entry.SeriesID, entry.IssueID, entry.IssueNumber, entry.Found, filePath, fileMtime, matchedVia, time.Now())
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// DeleteCollectionStatus drops the cached match results for a series,
// forcing a full rescan on the next match call.
func (s *Store) DeleteCollectionStatus(seriesID int64) error {
	_, err := s.db.Exec("DELETE FROM collection_status WHERE series_id = ?", seriesID)
	return err
}

// Preference returns the stored value for a preference key, or the default
// when the key has never been set.
func (s *Store) Preference(key, defaultValue string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM preferences WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return defaultValue, nil
	}
	if err != nil {
		return defaultValue, err
	}
	return value, nil
}

// SetPreference stores a preference value, overwriting any previous value.
func (s *Store) SetPreference(key, value string) error {
	query := `INSERT INTO preferences (key, value) VALUES (?, ?)
              ON CONFLICT(key) DO UPDATE SET value = excluded.value;`
	_, err := s.db.Exec(query, key, value)
	return err
}
