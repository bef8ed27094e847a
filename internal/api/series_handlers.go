package api

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/longbox-dev/longbox/internal/collection"
	"github.com/longbox-dev/longbox/internal/library"
	"github.com/longbox-dev/longbox/internal/util"
)

func (s *Server) handleListSeries(w http.ResponseWriter, r *http.Request) {
	seriesList, err := s.store.ListSeries()
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve series")
		return
	}
	RespondWithJSON(w, http.StatusOK, seriesList)
}

func (s *Server) handleGetSeries(w http.ResponseWriter, r *http.Request) {
	seriesID, err := strconv.ParseInt(chi.URLParam(r, "seriesID"), 10, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid series ID")
		return
	}

	series, err := s.store.GetSeriesByID(seriesID)
	if err == sql.ErrNoRows {
		RespondWithError(w, http.StatusNotFound, "Series not found")
		return
	}
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve series")
		return
	}

	issues, err := s.store.GetIssuesBySeries(seriesID)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve issues")
		return
	}
	series.Issues = issues

	RespondWithJSON(w, http.StatusOK, series)
}

// handleMatchSeries runs the collection matcher inline and returns the
// issue-number -> result mapping. `use_cache=false` forces a rescan.
func (s *Server) handleMatchSeries(w http.ResponseWriter, r *http.Request) {
	seriesID, err := strconv.ParseInt(chi.URLParam(r, "seriesID"), 10, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid series ID")
		return
	}

	series, err := s.store.GetSeriesByID(seriesID)
	if err == sql.ErrNoRows {
		RespondWithError(w, http.StatusNotFound, "Series not found")
		return
	}
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve series")
		return
	}

	if err := util.ValidateMappedPath(series.MappedPath, s.app.Config().Library.Paths); err != nil {
		RespondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid mapped path: %v", err))
		return
	}

	issues, err := s.store.GetIssuesBySeries(seriesID)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve issues")
		return
	}

	useCache := r.URL.Query().Get("use_cache") != "false"
	matcher := collection.NewMatcher(s.store)
	results := matcher.Match(series.MappedPath, issues, series, useCache)

	RespondWithJSON(w, http.StatusOK, results)
}

// handleRefreshSeries re-matches the series in the background and returns the
// operation id for polling.
func (s *Server) handleRefreshSeries(w http.ResponseWriter, r *http.Request) {
	seriesID, err := strconv.ParseInt(chi.URLParam(r, "seriesID"), 10, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid series ID")
		return
	}

	series, err := s.store.GetSeriesByID(seriesID)
	if err == sql.ErrNoRows {
		RespondWithError(w, http.StatusNotFound, "Series not found")
		return
	}
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve series")
		return
	}

	opID := library.RefreshSeries(s.app, series)
	RespondWithJSON(w, http.StatusAccepted, map[string]string{"operation_id": opID})
}

func (s *Server) handleSetSubscription(w http.ResponseWriter, r *http.Request) {
	seriesID, err := strconv.ParseInt(chi.URLParam(r, "seriesID"), 10, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid series ID")
		return
	}

	var payload struct {
		Subscribed *bool `json:"subscribed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	err = s.store.SetSubscription(seriesID, payload.Subscribed)
	if err == sql.ErrNoRows {
		RespondWithError(w, http.StatusNotFound, "Series not found")
		return
	}
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to update subscription")
		return
	}

	series, err := s.store.GetSeriesByID(seriesID)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve series")
		return
	}
	RespondWithJSON(w, http.StatusOK, series)
}
