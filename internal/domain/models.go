// Package domain defines the core value types of the tax estimator.
package domain

import (
	"strings"

	"github.com/shopspring/decimal"

	apperrors "heritax/pkg/errors"
)

// RelationshipCategory identifies the beneficiary's relationship to the
// deceased or donor. The set is closed: an unknown category is a caller
// error, never mapped to a default fiscal profile.
type RelationshipCategory string

const (
	CategoryChild       RelationshipCategory = "child"
	CategorySpouse      RelationshipCategory = "spouse"
	CategorySibling     RelationshipCategory = "sibling"
	CategoryNieceNephew RelationshipCategory = "niece-nephew"
	CategoryOther       RelationshipCategory = "other"
)

// Categories lists every defined relationship category in display order.
func Categories() []RelationshipCategory {
	return []RelationshipCategory{
		CategoryChild,
		CategorySpouse,
		CategorySibling,
		CategoryNieceNephew,
		CategoryOther,
	}
}

// Valid reports whether the category belongs to the closed set.
func (c RelationshipCategory) Valid() bool {
	switch c {
	case CategoryChild, CategorySpouse, CategorySibling, CategoryNieceNephew, CategoryOther:
		return true
	}
	return false
}

// Label returns the French display label used in summaries.
func (c RelationshipCategory) Label() string {
	switch c {
	case CategoryChild:
		return "Enfant"
	case CategorySpouse:
		return "Conjoint ou partenaire de PACS"
	case CategorySibling:
		return "Frère ou sœur"
	case CategoryNieceNephew:
		return "Neveu ou nièce"
	case CategoryOther:
		return "Autre héritier"
	}
	return string(c)
}

// ParseRelationshipCategory normalizes a raw category string.
func ParseRelationshipCategory(s string) (RelationshipCategory, error) {
	c := RelationshipCategory(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", apperrors.ErrInvalidCategory
	}
	return c, nil
}

// TransmissionType distinguishes a transfer on death from a lifetime gift.
type TransmissionType string

const (
	TransmissionInheritance TransmissionType = "inheritance"
	TransmissionGift        TransmissionType = "gift"
)

// TransmissionTypes lists both transmission types.
func TransmissionTypes() []TransmissionType {
	return []TransmissionType{TransmissionInheritance, TransmissionGift}
}

// Label returns the French display label used in summaries.
func (t TransmissionType) Label() string {
	switch t {
	case TransmissionInheritance:
		return "Succession"
	case TransmissionGift:
		return "Donation"
	}
	return string(t)
}

// ParseTransmissionType normalizes a raw transmission string. The French
// terms "succession" and "donation" are accepted as aliases.
func ParseTransmissionType(s string) (TransmissionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "inheritance", "succession":
		return TransmissionInheritance, nil
	case "gift", "donation":
		return TransmissionGift, nil
	}
	return "", apperrors.ErrInvalidTransmission
}

// IsExempt reports whether the transfer is fully exempt from tax. The
// statutory exemption covers a surviving spouse or registered partner on
// death only; lifetime gifts to a spouse are taxed through the spouse
// schedule.
func IsExempt(t TransmissionType, c RelationshipCategory) bool {
	return t == TransmissionInheritance && c == CategorySpouse
}

// SimulationInput is one caller-supplied estimation request. Amounts are in
// euros. PriorGiftsAmount covers gifts made within the statutory lookback
// window and defaults to zero.
type SimulationInput struct {
	TransmissionType     TransmissionType     `json:"transmission_type" validate:"required"`
	RelationshipCategory RelationshipCategory `json:"relationship_category" validate:"required"`
	TransferAmount       decimal.Decimal      `json:"transfer_amount" validate:"gte=0"`
	PriorGiftsAmount     decimal.Decimal      `json:"prior_gifts_amount" validate:"gte=0"`
}

// Normalized returns a copy of the input with both enums parsed to their
// canonical values, or the error describing the first invalid one.
func (in SimulationInput) Normalized() (SimulationInput, error) {
	t, err := ParseTransmissionType(string(in.TransmissionType))
	if err != nil {
		return in, err
	}
	c, err := ParseRelationshipCategory(string(in.RelationshipCategory))
	if err != nil {
		return in, err
	}
	in.TransmissionType = t
	in.RelationshipCategory = c
	return in, nil
}

// Breakdown labels, fixed for chart rendering.
const (
	BreakdownLabelNet = "net amount"
	BreakdownLabelTax = "tax due"
)

// BreakdownEntry is one slice of the result visualization.
type BreakdownEntry struct {
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
}

// SimulationResult is the engine output. It is derived in full on every
// computation and never partially updated.
type SimulationResult struct {
	TransmissionType     TransmissionType     `json:"transmission_type"`
	RelationshipCategory RelationshipCategory `json:"relationship_category"`
	TaxDue               decimal.Decimal      `json:"tax_due"`
	NetAmountReceived    decimal.Decimal      `json:"net_amount_received"`
	AllowanceApplied     decimal.Decimal      `json:"allowance_applied"`
	TaxableBase          decimal.Decimal      `json:"taxable_base"`
	Exempt               bool                 `json:"exempt"`
	Breakdown            []BreakdownEntry     `json:"breakdown"`
}

// DeliveryStatus is the outcome of a summary email attempt.
type DeliveryStatus string

const (
	DeliverySent   DeliveryStatus = "sent"
	DeliveryFailed DeliveryStatus = "failed"
)
