package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"heritax/internal/bareme"
	"heritax/internal/domain"
	"heritax/internal/observability"
	"heritax/internal/simulation"
	"heritax/pkg/logger"
	"heritax/pkg/validator"
)

// SimulationHandler serves the estimation endpoints.
type SimulationHandler struct {
	engine    *simulation.Engine
	registry  *bareme.Registry
	validator *validator.Validator
	metrics   *observability.Metrics
	logger    logger.Logger
}

// NewSimulationHandler creates a SimulationHandler.
func NewSimulationHandler(engine *simulation.Engine, registry *bareme.Registry, val *validator.Validator, metrics *observability.Metrics, log logger.Logger) *SimulationHandler {
	return &SimulationHandler{
		engine:    engine,
		registry:  registry,
		validator: val,
		metrics:   metrics,
		logger:    log,
	}
}

// Simulate computes one estimate from a JSON SimulationInput body.
func (h *SimulationHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	var in domain.SimulationInput

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&in); err != nil {
		if err == io.EOF {
			respondError(w, http.StatusBadRequest, "Request body is required")
			return
		}
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if valErrs := h.validator.ValidateStructured(&in); valErrs != nil {
		respondValidationErrors(w, valErrs)
		return
	}

	start := time.Now()
	result, err := h.engine.Compute(in)
	if err != nil {
		h.rejectCompute(w, err)
		return
	}

	h.metrics.RecordSimulation(result.RelationshipCategory, result.TransmissionType)
	h.metrics.RecordDuration("simulate", time.Since(start))

	respondJSON(w, http.StatusOK, result)
}

// rejectCompute turns an engine error into the right HTTP response and
// counts it. The taxonomy errors are caller mistakes (400); everything else
// is a server fault.
func (h *SimulationHandler) rejectCompute(w http.ResponseWriter, err error) {
	reason := computeErrorReason(err)
	h.metrics.IncrComputeError(reason)

	if reason == observability.ReasonInternal {
		h.logger.Error("Simulation failed", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Simulation failed")
		return
	}

	respondError(w, http.StatusBadRequest, err.Error())
}
