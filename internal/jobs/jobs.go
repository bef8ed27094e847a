package jobs

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/longbox-dev/longbox/internal/store"
)

// RefreshJobID is the registered id of the collection refresh job.
const RefreshJobID = "collection-refresh"

// syncScheduleTag marks the gocron job driven by the persisted sync schedule
// so it can be replaced when the user saves a new configuration.
const syncScheduleTag = "sync-schedule"

// StartScheduler starts the background job scheduler: the interval-based
// collection refresh plus the user-configured sync schedule.
func StartScheduler(app JobContext) *gocron.Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	startIntervalRefresh(s, app)
	if err := ConfigureSyncSchedule(s, app); err != nil {
		log.Printf("Error configuring sync schedule: %v", err)
	}

	log.Println("Starting background job scheduler...")
	s.StartAsync()
	return s
}

func startIntervalRefresh(s *gocron.Scheduler, app JobContext) {
	interval := app.Config().ScanInterval
	if interval == 0 {
		log.Println("Refresh interval is 0, scheduled collection refresh is disabled.")
		return
	}

	log.Printf("Scheduling job: '%s' to run every %d minutes.", RefreshJobID, interval)

	_, err := s.Every(interval).Minutes().Do(func() {
		log.Println("Scheduler is triggering job:", RefreshJobID)
		// Submit the job to the manager instead of running it directly.
		// This prevents conflicts with manually triggered jobs.
		err := app.JobManager().RunJob(RefreshJobID, app)
		if err != nil {
			log.Printf("Scheduled job '%s' could not start: %v", RefreshJobID, err)
		}
	})
	if err != nil {
		log.Printf("Error scheduling '%s' job: %v", RefreshJobID, err)
	}
}

// ConfigureSyncSchedule (re)installs the gocron job for the persisted sync
// schedule. Called at startup and whenever the schedule is saved.
func ConfigureSyncSchedule(s *gocron.Scheduler, app JobContext) error {
	// Drop the previous schedule job, if any. gocron returns an error when
	// the tag does not exist yet, which is fine on first configuration.
	_ = s.RemoveByTag(syncScheduleTag)

	schedule, err := store.New(app.DB()).GetSyncSchedule()
	if err != nil {
		return err
	}
	if schedule.Frequency == "disabled" {
		log.Println("Sync schedule is disabled.")
		return nil
	}

	run := func() {
		log.Println("Sync schedule is triggering job:", RefreshJobID)
		if err := app.JobManager().RunJob(RefreshJobID, app); err != nil {
			log.Printf("Scheduled sync could not start: %v", err)
		}
	}

	switch schedule.Frequency {
	case "daily":
		_, err = s.Every(1).Day().At(schedule.Time).Tag(syncScheduleTag).Do(run)
	case "weekly":
		_, err = s.Every(1).Week().Weekday(toTimeWeekday(schedule.Weekday)).At(schedule.Time).Tag(syncScheduleTag).Do(run)
	default:
		log.Printf("Unknown sync schedule frequency %q, leaving schedule unset.", schedule.Frequency)
		return nil
	}
	if err != nil {
		return err
	}

	log.Printf("Sync schedule configured: %s at %s.", schedule.Frequency, schedule.Time)
	return nil
}

// toTimeWeekday converts the stored weekday (0 = Monday, as presented in the
// UI) to time.Weekday (0 = Sunday).
func toTimeWeekday(weekday int) time.Weekday {
	return time.Weekday((weekday + 1) % 7)
}
