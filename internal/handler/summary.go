package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"heritax/internal/domain"
	"heritax/internal/observability"
	"heritax/internal/summary"
	apperrors "heritax/pkg/errors"
	"heritax/pkg/logger"
	"heritax/pkg/validator"
)

// SummaryHandler serves the email-summary endpoint.
type SummaryHandler struct {
	service   summary.Service
	validator *validator.Validator
	metrics   *observability.Metrics
	logger    logger.Logger
}

// NewSummaryHandler creates a SummaryHandler.
func NewSummaryHandler(service summary.Service, val *validator.Validator, metrics *observability.Metrics, log logger.Logger) *SummaryHandler {
	return &SummaryHandler{
		service:   service,
		validator: val,
		metrics:   metrics,
		logger:    log,
	}
}

type emailSummaryRequest struct {
	Recipient string `json:"recipient" validate:"required"`
	domain.SimulationInput
}

// EmailSummary recomputes the estimate and mails the recap. Malformed
// recipients and invalid inputs are 400s; a delivery failure is still a 200
// carrying a "failed" receipt, since the estimate itself stands.
func (h *SummaryHandler) EmailSummary(w http.ResponseWriter, r *http.Request) {
	var req emailSummaryRequest

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		if err == io.EOF {
			respondError(w, http.StatusBadRequest, "Request body is required")
			return
		}
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if valErrs := h.validator.ValidateStructured(&req); valErrs != nil {
		respondValidationErrors(w, valErrs)
		return
	}

	receipt, err := h.service.Send(r.Context(), req.Recipient, req.SimulationInput)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidationFailure) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}

		reason := computeErrorReason(err)
		h.metrics.IncrComputeError(reason)
		if reason == observability.ReasonInternal {
			h.logger.Error("Summary send failed", map[string]interface{}{"error": err.Error()})
			respondError(w, http.StatusInternalServerError, "Summary could not be prepared")
			return
		}

		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, receipt)
}
