// Persistence for the recurring sync schedule. A single row holds the
// configuration; the scheduler is reconfigured whenever it is saved.

package store

import (
	"database/sql"
	"time"

	"github.com/longbox-dev/longbox/internal/models"
)

// GetSyncSchedule returns the stored schedule, or a disabled default if none
// has ever been saved.
func (s *Store) GetSyncSchedule() (*models.SyncSchedule, error) {
	var schedule models.SyncSchedule
	var lastSync sql.NullTime
	err := s.db.QueryRow(
		"SELECT frequency, time, weekday, last_sync FROM sync_schedule WHERE id = 1",
	).Scan(&schedule.Frequency, &schedule.Time, &schedule.Weekday, &lastSync)
	if err == sql.ErrNoRows {
		return &models.SyncSchedule{Frequency: "disabled", Time: "03:00", Weekday: 0}, nil
	}
	if err != nil {
		return nil, err
	}
	if lastSync.Valid {
		schedule.LastSync = &lastSync.Time
	}
	return &schedule, nil
}

// SaveSyncSchedule persists the schedule configuration, preserving last_sync.
func (s *Store) SaveSyncSchedule(frequency, timeOfDay string, weekday int) error {
	query := `INSERT INTO sync_schedule (id, frequency, time, weekday)
              VALUES (1, ?, ?, ?)
              ON CONFLICT(id) DO UPDATE SET
                  frequency = excluded.frequency,
                  time = excluded.time,
                  weekday = excluded.weekday;`
	_, err := s.db.Exec(query, frequency, timeOfDay, weekday)
	return err
}

// UpdateLastSync stamps the schedule with the time of the last completed sync.
func (s *Store) UpdateLastSync() error {
	_, err := s.db.Exec("UPDATE sync_schedule SET last_sync = ? WHERE id = 1", time.Now())
	return err
}
