package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/carverauto/assetradar/pkg/models"
)

var (
	errInvalidAssetID = errors.New("asset id must be a positive integer")
	errInvalidBody    = errors.New("invalid request body")
)

// statusFor maps registry errors onto HTTP status codes.
func statusFor(err error) (int, bool) {
	switch {
	case errors.Is(err, errInvalidAssetID), errors.Is(err, errInvalidBody), models.IsValidation(err):
		return http.StatusBadRequest, false
	case errors.Is(err, models.ErrAssetNotFound):
		return http.StatusNotFound, false
	case errors.Is(err, models.ErrDuplicateSerialNumber):
		return http.StatusConflict, false
	case errors.Is(err, models.ErrStaleAssetReference):
		return http.StatusConflict, true
	case errors.Is(err, models.ErrResolutionRace):
		return http.StatusInternalServerError, true
	default:
		return http.StatusInternalServerError, false
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, retryable := statusFor(err)

	msg := err.Error()
	if status == http.StatusInternalServerError && !retryable {
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")

		msg = "Internal server error"
	}

	writeJSON(w, status, ErrorResponse{Message: msg, Status: status, Retryable: retryable})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
