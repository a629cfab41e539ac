package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"tutorlink-backend/internal/domain"
	"tutorlink-backend/internal/logger"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		if err := json.NewEncoder(w).Encode(body); err != nil {
			logger.Error("Failed to encode response", "error", err)
		}
	}
}

// writeError maps domain error kinds onto HTTP status codes. Anything not
// classified is an internal error; its detail stays out of the response.
func writeError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidSignature):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrEscrowExpired),
		errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrDiscountNotEligible),
		errors.Is(err, domain.ErrDiscountAlreadyApplied):
		status = http.StatusUnprocessableEntity
	default:
		logger.Error("Unhandled error in HTTP layer", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   http.StatusText(http.StatusInternalServerError),
			Message: "internal error",
		})
		return
	}

	writeJSON(w, status, errorResponse{
		Error:   http.StatusText(status),
		Message: err.Error(),
	})
}
