// To handle all database interactions. This is our
// data access layer, keeping SQL queries separate from business logic.

package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/longbox-dev/longbox/internal/models"
)

// Store provides all functions to interact with the database.
type Store struct {
	db *sql.DB
}

// New creates a new Store instance.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// UpsertSeries inserts or updates a series row keyed by its external catalog
// id. The subscription flag is deliberately not touched on update: metadata
// refreshes must not clobber an explicit user choice.
func (s *Store) UpsertSeries(series *models.Series) error {
	mapped := sql.NullString{String: series.MappedPath, Valid: series.MappedPath != ""}
	sub := sql.NullBool{}
	if series.Subscribed != nil {
		sub = sql.NullBool{Bool: *series.Subscribed, Valid: true}
	}
	query := `
        INSERT INTO series (id, name, mapped_path, status, subscribed, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            name = excluded.name,
            mapped_path = excluded.mapped_path,
            status = excluded.status,
            updated_at = excluded.updated_at;
    `
	_, err := s.db.Exec(query, series.ID, series.Name, mapped, series.Status, sub, time.Now(), time.Now())
	if err != nil {
		return fmt.Errorf("failed to upsert series %d: %w", series.ID, err)
	}
	return nil
}

// GetSeriesByID fetches a single series by its external id.
func (s *Store) GetSeriesByID(id int64) (*models.Series, error) {
	var series models.Series
	var mapped sql.NullString
	var sub sql.NullBool
	err := s.db.QueryRow(
		"SELECT id, name, mapped_path, status, subscribed FROM series WHERE id = ?", id,
	).Scan(&series.ID, &series.Name, &mapped, &series.Status, &sub)
	if err != nil {
		return nil, err
	}
	series.MappedPath = mapped.String
	if sub.Valid {
		series.Subscribed = &sub.Bool
	}
	return &series, nil
}

// ListSeries fetches all tracked series ordered by name.
func (s *Store) ListSeries() ([]*models.Series, error) {
	rows, err := s.db.Query("SELECT id, name, mapped_path, status, subscribed FROM series ORDER BY name ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var seriesList []*models.Series
	for rows.Next() {
		var series models.Series
		var mapped sql.NullString
		var sub sql.NullBool
		if err := rows.Scan(&series.ID, &series.Name, &mapped, &series.Status, &sub); err != nil {
			return nil, err
		}
		series.MappedPath = mapped.String
		if sub.Valid {
			series.Subscribed = &sub.Bool
		}
		seriesList = append(seriesList, &series)
	}
	return seriesList, rows.Err()
}

// SetSubscription sets the subscription tri-state for a series. A nil value
// clears the explicit choice so the status-based default applies again.
func (s *Store) SetSubscription(seriesID int64, subscribed *bool) error {
	sub := sql.NullBool{}
	if subscribed != nil {
		sub = sql.NullBool{Bool: *subscribed, Valid: true}
	}
	res, err := s.db.Exec("UPDATE series SET subscribed = ?, updated_at = ? WHERE id = ?", sub, time.Now(), seriesID)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpsertIssues inserts or updates the canonical issue list for a series in a
// single transaction.
func (s *Store) UpsertIssues(seriesID int64, issues []*models.Issue) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
        INSERT INTO issues (id, series_id, number, cover_date, store_date, created_at)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            number = excluded.number,
            cover_date = excluded.cover_date,
            store_date = excluded.store_date;
    `)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, issue := range issues {
		_, err := stmt.Exec(issue.ID, seriesID, issue.Number, issue.CoverDate, issue.StoreDate, time.Now())
		if err != nil {
			return fmt.Errorf("failed to upsert issue %d: %w", issue.ID, err)
		}
	}

	return tx.Commit()
}

// GetIssuesBySeries fetches all issues of a series.
func (s *Store) GetIssuesBySeries(seriesID int64) ([]*models.Issue, error) {
	rows, err := s.db.Query(
		"SELECT id, series_id, number, COALESCE(cover_date, ''), COALESCE(store_date, '') FROM issues WHERE series_id = ? ORDER BY id ASC", seriesID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var issues []*models.Issue
	for rows.Next() {
		var issue models.Issue
		if err := rows.Scan(&issue.ID, &issue.SeriesID, &issue.Number, &issue.CoverDate, &issue.StoreDate); err != nil {
			return nil, err
		}
		issues = append(issues, &issue)
	}
	return issues, rows.Err()
}
