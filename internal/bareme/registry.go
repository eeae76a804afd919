// Package bareme holds the fiscal schedules ("barèmes") applied to
// inheritances and gifts: one allowance and one progressive bracket table
// per relationship category. The data is fixed at build time; the registry
// only validates and serves it.
package bareme

import (
	"fmt"

	"github.com/shopspring/decimal"

	"heritax/internal/domain"
	apperrors "heritax/pkg/errors"
)

// Bracket is one slice of a progressive schedule. A nil UpperBound marks the
// final, unbounded bracket ("and above"); bounds are cumulative, so a bracket
// taxes only the portion of the base between the previous bound and its own.
type Bracket struct {
	UpperBound *decimal.Decimal `json:"upper_bound,omitempty"`
	Rate       decimal.Decimal  `json:"rate"`
}

// Unbounded reports whether the bracket has no upper bound.
func (b Bracket) Unbounded() bool {
	return b.UpperBound == nil
}

// Profile is the full fiscal treatment of one relationship category.
type Profile struct {
	Category  domain.RelationshipCategory `json:"category"`
	Allowance decimal.Decimal             `json:"allowance"`
	Brackets  []Bracket                   `json:"brackets"`
}

// Registry is the process-wide, read-only table of fiscal profiles. It is
// initialized once at startup and never mutated, so concurrent lookups need
// no locking.
type Registry struct {
	profiles map[domain.RelationshipCategory]Profile
	order    []domain.RelationshipCategory
}

func upTo(bound int64, rate string) Bracket {
	b := decimal.NewFromInt(bound)
	return Bracket{UpperBound: &b, Rate: decimal.RequireFromString(rate)}
}

func above(rate string) Bracket {
	return Bracket{Rate: decimal.RequireFromString(rate)}
}

// Direct-line schedule, shared by children and (for gifts) spouses. Returned
// fresh per call so no two profiles alias the same slice.
func directLineBrackets() []Bracket {
	return []Bracket{
		upTo(8072, "0.05"),
		upTo(12109, "0.10"),
		upTo(15932, "0.15"),
		upTo(552324, "0.20"),
		upTo(902838, "0.30"),
		upTo(1805677, "0.40"),
		above("0.45"),
	}
}

// NewRegistry builds and validates the static registry.
func NewRegistry() (*Registry, error) {
	profiles := map[domain.RelationshipCategory]Profile{
		domain.CategoryChild: {
			Category:  domain.CategoryChild,
			Allowance: decimal.NewFromInt(100000),
			Brackets:  directLineBrackets(),
		},
		// The spouse schedule mirrors the direct line; it only ever applies
		// to gifts, since inheritance between spouses is fully exempt.
		domain.CategorySpouse: {
			Category:  domain.CategorySpouse,
			Allowance: decimal.NewFromInt(80724),
			Brackets:  directLineBrackets(),
		},
		domain.CategorySibling: {
			Category:  domain.CategorySibling,
			Allowance: decimal.NewFromInt(15932),
			Brackets: []Bracket{
				upTo(24430, "0.35"),
				above("0.45"),
			},
		},
		domain.CategoryNieceNephew: {
			Category:  domain.CategoryNieceNephew,
			Allowance: decimal.NewFromInt(7967),
			Brackets: []Bracket{
				above("0.55"),
			},
		},
		domain.CategoryOther: {
			Category:  domain.CategoryOther,
			Allowance: decimal.NewFromInt(1594),
			Brackets: []Bracket{
				above("0.60"),
			},
		},
	}

	r := &Registry{
		profiles: profiles,
		order:    domain.Categories(),
	}

	for _, c := range r.order {
		p, ok := profiles[c]
		if !ok {
			return nil, fmt.Errorf("bareme: no profile for category %q", c)
		}
		if err := validateProfile(p); err != nil {
			return nil, fmt.Errorf("bareme: profile %q: %w", c, err)
		}
	}
	if len(profiles) != len(r.order) {
		return nil, fmt.Errorf("bareme: profile table has entries outside the category set")
	}

	return r, nil
}

// Lookup resolves the profile for a category. Unknown categories fail; they
// are never served a default profile.
func (r *Registry) Lookup(c domain.RelationshipCategory) (Profile, error) {
	p, ok := r.profiles[c]
	if !ok {
		return Profile{}, apperrors.Wrap(apperrors.ErrInvalidCategory, fmt.Sprintf("bareme lookup %q", c))
	}
	return p, nil
}

// Profiles returns every profile in display order.
func (r *Registry) Profiles() []Profile {
	out := make([]Profile, 0, len(r.order))
	for _, c := range r.order {
		out = append(out, r.profiles[c])
	}
	return out
}

func validateProfile(p Profile) error {
	if p.Allowance.IsNegative() {
		return fmt.Errorf("allowance is negative")
	}
	if len(p.Brackets) == 0 {
		return fmt.Errorf("bracket schedule is empty")
	}

	prev := decimal.Zero
	for i, b := range p.Brackets {
		last := i == len(p.Brackets)-1

		if b.Rate.IsNegative() || b.Rate.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("bracket %d: rate %s outside [0,1]", i, b.Rate)
		}

		if b.Unbounded() {
			if !last {
				return fmt.Errorf("bracket %d: unbounded bracket before the end", i)
			}
			continue
		}
		if last {
			return fmt.Errorf("final bracket must be unbounded")
		}
		if !b.UpperBound.GreaterThan(prev) {
			return fmt.Errorf("bracket %d: bound %s does not increase past %s", i, b.UpperBound, prev)
		}
		prev = *b.UpperBound
	}

	return nil
}
