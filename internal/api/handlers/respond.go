package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"scamshield-lab/internal/domain/models"
	"scamshield-lab/internal/domain/services"
	"scamshield-lab/pkg/logger"
)

const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func respondJSON(w http.ResponseWriter, log *logger.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("failed to encode JSON response")
	}
}

func respondError(w http.ResponseWriter, log *logger.Logger, status int, message string) {
	respondJSON(w, log, status, ErrorResponse{Error: message})
}

// respondServiceError maps domain errors onto HTTP statuses
func respondServiceError(w http.ResponseWriter, log *logger.Logger, err error, action string) {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		respondError(w, log, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrHistoryDisabled):
		respondError(w, log, http.StatusServiceUnavailable, err.Error())
	default:
		log.Error().Err(err).Msg(action + " failed")
		respondError(w, log, http.StatusInternalServerError, "An error occurred during "+action)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}
