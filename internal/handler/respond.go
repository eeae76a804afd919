// Package handler provides HTTP handlers for the simulation service.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"heritax/internal/observability"
	apperrors "heritax/pkg/errors"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		_, _ = w.Write([]byte(`{"error":"response encoding failed"}`))
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func respondValidationErrors(w http.ResponseWriter, errs map[string]string) {
	respondJSON(w, http.StatusBadRequest, map[string]interface{}{
		"error":             "Validation failed",
		"validation_errors": errs,
	})
}

// computeErrorReason maps an engine error to its metric label. Anything
// outside the known taxonomy counts as internal.
func computeErrorReason(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrInvalidCategory):
		return observability.ReasonInvalidCategory
	case errors.Is(err, apperrors.ErrInvalidTransmission):
		return observability.ReasonInvalidTransmission
	case errors.Is(err, apperrors.ErrInvalidAmount):
		return observability.ReasonInvalidAmount
	}
	return observability.ReasonInternal
}
