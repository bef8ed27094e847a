// Read-progress tracking and the "On the Stack" view: for every subscribed
// series, the next unread issue that is actually present on disk.

package store

import (
	"database/sql"
	"sort"
	"time"

	"github.com/longbox-dev/longbox/internal/models"
	"github.com/longbox-dev/longbox/internal/util"
)

// MarkIssueRead records that the file at issuePath has been read.
func (s *Store) MarkIssueRead(issuePath string, pageCount, timeSpent int) error {
	query := `INSERT INTO read_progress (issue_path, read_at, page_count, time_spent)
              VALUES (?, ?, ?, ?)
              ON CONFLICT(issue_path) DO UPDATE SET
                  read_at = excluded.read_at,
                  page_count = excluded.page_count,
                  time_spent = excluded.time_spent;`
	_, err := s.db.Exec(query, issuePath, time.Now(), pageCount, timeSpent)
	return err
}

// IsIssueRead reports whether the file at issuePath has been marked read.
func (s *Store) IsIssueRead(issuePath string) (bool, error) {
	var one int
	err := s.db.QueryRow("SELECT 1 FROM read_progress WHERE issue_path = ?", issuePath).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

type stackRow struct {
	seriesID    int64
	seriesName  string
	status      string
	subscribed  sql.NullBool
	issueID     int64
	issueNumber string
	filePath    string
}

// GetOnTheStackItems returns, per effectively-subscribed series, the next
// unread issue present on disk plus the series' total unread count, ordered
// by series name. Issue order is natural issue-number order, not insertion
// order, so "2.5" lands between "2" and "3".
func (s *Store) GetOnTheStackItems() ([]*models.StackItem, error) {
	rows, err := s.db.Query(`
        SELECT s.id, s.name, s.status, s.subscribed, cs.issue_id, cs.issue_number, cs.file_path
        FROM series s
        JOIN collection_status cs ON cs.series_id = s.id
        LEFT JOIN read_progress rp ON rp.issue_path = cs.file_path
        WHERE cs.found = 1 AND cs.file_path IS NOT NULL AND rp.issue_path IS NULL
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	unreadBySeries := make(map[int64][]stackRow)
	var order []int64
	for rows.Next() {
		var row stackRow
		if err := rows.Scan(&row.seriesID, &row.seriesName, &row.status, &row.subscribed, &row.issueID, &row.issueNumber, &row.filePath); err != nil {
			return nil, err
		}

		series := models.Series{Status: row.status}
		if row.subscribed.Valid {
			series.Subscribed = &row.subscribed.Bool
		}
		if !series.EffectivelySubscribed() {
			continue
		}

		if _, seen := unreadBySeries[row.seriesID]; !seen {
			order = append(order, row.seriesID)
		}
		unreadBySeries[row.seriesID] = append(unreadBySeries[row.seriesID], row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var items []*models.StackItem
	for _, seriesID := range order {
		unread := unreadBySeries[seriesID]
		sort.Slice(unread, func(i, j int) bool {
			return util.IssueNumberLess(unread[i].issueNumber, unread[j].issueNumber)
		})
		next := unread[0]
		items = append(items, &models.StackItem{
			SeriesID:    next.seriesID,
			SeriesName:  next.seriesName,
			IssueID:     next.issueID,
			IssueNumber: next.issueNumber,
			FilePath:    next.filePath,
			UnreadCount: len(unread),
		})
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].SeriesName < items[j].SeriesName
	})
	return items, nil
}
