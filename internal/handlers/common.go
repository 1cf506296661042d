package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"campus-match-backend/internal/services"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse represents a plain message response
type MessageResponse struct {
	Message string `json:"message"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// logServiceError starts a log event for a failed service call. Client
// mistakes are logged at info level, everything else at error level.
func logServiceError(err error) *zerolog.Event {
	if services.IsClientError(err) {
		return log.Info().Err(err)
	}
	return log.Error().Err(err)
}

// respondServiceError maps a service error to a status code. Server side
// failures never leak their detail to the client.
func respondServiceError(w http.ResponseWriter, err error) {
	statusCode := statusFor(err)
	if statusCode == http.StatusInternalServerError {
		respondError(w, "Internal server error", statusCode)
		return
	}
	respondError(w, services.Message(err), statusCode)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvariantViolation), errors.Is(err, services.ErrUnavailable):
		return http.StatusInternalServerError
	case errors.Is(err, services.ErrInvalidArgument), errors.Is(err, services.ErrAlreadyLiked):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON decodes the request body into v
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	return json.NewDecoder(r.Body).Decode(v)
}
