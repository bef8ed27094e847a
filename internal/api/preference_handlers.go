package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleGetPreference(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	value, err := s.store.Preference(key, "")
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve preference")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"key": key, "value": value})
}

func (s *Server) handleSetPreference(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var payload struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := s.store.SetPreference(key, payload.Value); err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to save preference")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"key": key, "value": payload.Value})
}
