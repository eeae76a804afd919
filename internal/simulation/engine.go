// Package simulation implements the inheritance/gift tax engine: pure
// computation over a read-only fiscal registry, with no I/O and no shared
// mutable state. Identical inputs always produce identical results, and
// concurrent calls are safe without locking.
package simulation

import (
	"github.com/shopspring/decimal"

	"heritax/internal/bareme"
	"heritax/internal/domain"
	apperrors "heritax/pkg/errors"
)

// Engine computes tax estimates against a fiscal schedule registry.
type Engine struct {
	registry *bareme.Registry
}

// NewEngine creates an Engine bound to the given registry.
func NewEngine(registry *bareme.Registry) *Engine {
	return &Engine{registry: registry}
}

// Compute derives a full estimate from one input, in order: exemption check,
// profile resolution, allowance reduction, taxable base, progressive bracket
// traversal, net amount. Negative amounts and unknown enum values fail
// outright; they are never clamped or defaulted.
func (e *Engine) Compute(in domain.SimulationInput) (*domain.SimulationResult, error) {
	in, err := in.Normalized()
	if err != nil {
		return nil, err
	}

	if in.TransferAmount.IsNegative() {
		return nil, apperrors.Wrap(apperrors.ErrInvalidAmount, "transfer_amount")
	}
	if in.PriorGiftsAmount.IsNegative() {
		return nil, apperrors.Wrap(apperrors.ErrInvalidAmount, "prior_gifts_amount")
	}

	// Statutory exemption for a surviving spouse or registered partner.
	// This short-circuits before any schedule is consulted: it is a rule
	// about the transmission type, not part of the fiscal profile.
	if domain.IsExempt(in.TransmissionType, in.RelationshipCategory) {
		return exemptResult(in), nil
	}

	profile, err := e.registry.Lookup(in.RelationshipCategory)
	if err != nil {
		return nil, err
	}

	// Prior gifts consume the allowance first. Any excess beyond the
	// allowance is dropped, never carried as a penalty.
	allowanceApplied := decimal.Max(decimal.Zero, profile.Allowance.Sub(in.PriorGiftsAmount))
	taxableBase := decimal.Max(decimal.Zero, in.TransferAmount.Sub(allowanceApplied))

	taxDue := traverseBrackets(profile.Brackets, taxableBase).Round(2)
	net := in.TransferAmount.Sub(taxDue)

	return &domain.SimulationResult{
		TransmissionType:     in.TransmissionType,
		RelationshipCategory: in.RelationshipCategory,
		TaxDue:               taxDue,
		NetAmountReceived:    net,
		AllowanceApplied:     allowanceApplied,
		TaxableBase:          taxableBase,
		Breakdown: []domain.BreakdownEntry{
			{Label: domain.BreakdownLabelNet, Value: net},
			{Label: domain.BreakdownLabelTax, Value: taxDue},
		},
	}, nil
}

// traverseBrackets walks the schedule in ascending order, taxing each slice
// of the base at its marginal rate. The unbounded final bracket consumes all
// remaining base, so arbitrarily large transfers are never truncated.
func traverseBrackets(brackets []bareme.Bracket, base decimal.Decimal) decimal.Decimal {
	tax := decimal.Zero
	remaining := base
	previousUpperBound := decimal.Zero

	for _, b := range brackets {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}

		width := remaining
		if !b.Unbounded() {
			width = b.UpperBound.Sub(previousUpperBound)
			previousUpperBound = *b.UpperBound
		}

		amountInBracket := decimal.Min(remaining, width)
		tax = tax.Add(amountInBracket.Mul(b.Rate))
		remaining = remaining.Sub(amountInBracket)
	}

	return tax
}

func exemptResult(in domain.SimulationInput) *domain.SimulationResult {
	return &domain.SimulationResult{
		TransmissionType:     in.TransmissionType,
		RelationshipCategory: in.RelationshipCategory,
		TaxDue:               decimal.Zero,
		NetAmountReceived:    in.TransferAmount,
		AllowanceApplied:     in.TransferAmount,
		TaxableBase:          decimal.Zero,
		Exempt:               true,
		Breakdown: []domain.BreakdownEntry{
			{Label: domain.BreakdownLabelNet, Value: in.TransferAmount},
		},
	}
}
