package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"heritax/internal/bareme"
	"heritax/internal/domain"
	"heritax/pkg/logger"
)

// BaremeHandler exposes the fiscal schedule catalog for UI rendering.
type BaremeHandler struct {
	registry *bareme.Registry
	logger   logger.Logger
}

// NewBaremeHandler creates a BaremeHandler.
func NewBaremeHandler(registry *bareme.Registry, log logger.Logger) *BaremeHandler {
	return &BaremeHandler{registry: registry, logger: log}
}

type baremeView struct {
	Category          domain.RelationshipCategory `json:"category"`
	Label             string                      `json:"label"`
	Allowance         decimal.Decimal             `json:"allowance"`
	Brackets          []bareme.Bracket            `json:"brackets"`
	InheritanceExempt bool                        `json:"inheritance_exempt"`
	Note              string                      `json:"note,omitempty"`
}

func viewOf(p bareme.Profile) baremeView {
	v := baremeView{
		Category:          p.Category,
		Label:             p.Category.Label(),
		Allowance:         p.Allowance,
		Brackets:          p.Brackets,
		InheritanceExempt: domain.IsExempt(domain.TransmissionInheritance, p.Category),
	}
	if v.InheritanceExempt {
		v.Note = "Succession entre conjoints : exonération totale. Le barème ne s'applique qu'aux donations."
	}
	return v
}

// List returns every fiscal profile in display order.
func (h *BaremeHandler) List(w http.ResponseWriter, r *http.Request) {
	profiles := h.registry.Profiles()
	views := make([]baremeView, 0, len(profiles))
	for _, p := range profiles {
		views = append(views, viewOf(p))
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"baremes": views})
}

// Get returns the fiscal profile for one category, 404 when unknown.
func (h *BaremeHandler) Get(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	category, err := domain.ParseRelationshipCategory(vars["category"])
	if err != nil {
		respondError(w, http.StatusNotFound, "Unknown relationship category")
		return
	}

	profile, err := h.registry.Lookup(category)
	if err != nil {
		respondError(w, http.StatusNotFound, "Unknown relationship category")
		return
	}

	respondJSON(w, http.StatusOK, viewOf(profile))
}
