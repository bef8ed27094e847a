package api

import (
	"encoding/json"
	"net/http"

	"github.com/longbox-dev/longbox/internal/models"
)

func (s *Server) handleGetStack(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.GetOnTheStackItems()
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve stack items")
		return
	}
	if items == nil {
		items = []*models.StackItem{}
	}
	RespondWithJSON(w, http.StatusOK, items)
}

func (s *Server) handleMarkIssueRead(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		FilePath  string `json:"file_path"`
		PageCount int    `json:"page_count"`
		TimeSpent int    `json:"time_spent"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if payload.FilePath == "" {
		RespondWithError(w, http.StatusBadRequest, "file_path is required")
		return
	}

	if err := s.store.MarkIssueRead(payload.FilePath, payload.PageCount, payload.TimeSpent); err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to mark issue read")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Issue marked as read."})
}
