package api

import (
	"encoding/json"
	"net/http"
	"regexp"

	"github.com/longbox-dev/longbox/internal/jobs"
)

// timeOfDayRe validates the "HH:MM" 24-hour schedule time.
var timeOfDayRe = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

func (s *Server) handleGetSyncSchedule(w http.ResponseWriter, r *http.Request) {
	schedule, err := s.store.GetSyncSchedule()
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve sync schedule")
		return
	}
	RespondWithJSON(w, http.StatusOK, schedule)
}

func (s *Server) handleSaveSyncSchedule(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Frequency string `json:"frequency"`
		Time      string `json:"time"`
		Weekday   int    `json:"weekday"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	switch payload.Frequency {
	case "disabled", "daily", "weekly":
	default:
		RespondWithError(w, http.StatusBadRequest, "frequency must be disabled, daily or weekly")
		return
	}
	if payload.Frequency != "disabled" && !timeOfDayRe.MatchString(payload.Time) {
		RespondWithError(w, http.StatusBadRequest, "time must be in HH:MM format")
		return
	}
	if payload.Weekday < 0 || payload.Weekday > 6 {
		RespondWithError(w, http.StatusBadRequest, "weekday must be between 0 and 6")
		return
	}
	if payload.Time == "" {
		payload.Time = "03:00"
	}

	if err := s.store.SaveSyncSchedule(payload.Frequency, payload.Time, payload.Weekday); err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to save sync schedule")
		return
	}

	// Apply the new schedule to the running scheduler.
	if s.scheduler != nil {
		if err := jobs.ConfigureSyncSchedule(s.scheduler, s.app); err != nil {
			RespondWithError(w, http.StatusInternalServerError, "Schedule saved but could not be applied")
			return
		}
	}

	schedule, err := s.store.GetSyncSchedule()
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve sync schedule")
		return
	}
	RespondWithJSON(w, http.StatusOK, schedule)
}

func (s *Server) handleRunSyncNow(w http.ResponseWriter, r *http.Request) {
	if err := s.app.JobManager().RunJob(jobs.RefreshJobID, s.app); err != nil {
		RespondWithError(w, http.StatusConflict, err.Error())
		return
	}
	RespondWithJSON(w, http.StatusAccepted, map[string]string{"message": "Collection refresh started."})
}
