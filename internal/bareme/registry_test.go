package bareme

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heritax/internal/domain"
	apperrors "heritax/pkg/errors"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func bound(i int64) *decimal.Decimal {
	d := decimal.NewFromInt(i)
	return &d
}

func TestNewRegistry_Schedules(t *testing.T) {
	registry, err := NewRegistry()
	require.NoError(t, err)

	directBounds := []*decimal.Decimal{
		bound(8072), bound(12109), bound(15932), bound(552324), bound(902838), bound(1805677), nil,
	}
	directRates := []string{"0.05", "0.10", "0.15", "0.20", "0.30", "0.40", "0.45"}

	tests := []struct {
		category  domain.RelationshipCategory
		allowance string
		bounds    []*decimal.Decimal
		rates     []string
	}{
		{domain.CategoryChild, "100000", directBounds, directRates},
		{domain.CategorySpouse, "80724", directBounds, directRates},
		{domain.CategorySibling, "15932", []*decimal.Decimal{bound(24430), nil}, []string{"0.35", "0.45"}},
		{domain.CategoryNieceNephew, "7967", []*decimal.Decimal{nil}, []string{"0.55"}},
		{domain.CategoryOther, "1594", []*decimal.Decimal{nil}, []string{"0.60"}},
	}

	for _, tc := range tests {
		t.Run(string(tc.category), func(t *testing.T) {
			p, err := registry.Lookup(tc.category)
			require.NoError(t, err)

			assert.Equal(t, tc.category, p.Category)
			assert.True(t, p.Allowance.Equal(dec(tc.allowance)),
				"allowance: want %s, got %s", tc.allowance, p.Allowance)

			require.Len(t, p.Brackets, len(tc.bounds))
			for i, b := range p.Brackets {
				if tc.bounds[i] == nil {
					assert.True(t, b.Unbounded(), "bracket %d should be unbounded", i)
				} else {
					require.NotNil(t, b.UpperBound, "bracket %d", i)
					assert.True(t, b.UpperBound.Equal(*tc.bounds[i]),
						"bracket %d bound: want %s, got %s", i, tc.bounds[i], b.UpperBound)
				}
				assert.True(t, b.Rate.Equal(dec(tc.rates[i])),
					"bracket %d rate: want %s, got %s", i, tc.rates[i], b.Rate)
			}
		})
	}
}

func TestRegistry_ProfilesInDisplayOrder(t *testing.T) {
	registry, err := NewRegistry()
	require.NoError(t, err)

	profiles := registry.Profiles()
	require.Len(t, profiles, len(domain.Categories()))
	for i, c := range domain.Categories() {
		assert.Equal(t, c, profiles[i].Category)
	}
}

func TestRegistry_LookupUnknownCategory(t *testing.T) {
	registry, err := NewRegistry()
	require.NoError(t, err)

	_, err = registry.Lookup(domain.RelationshipCategory("cousin"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidCategory)
}

func TestRegistry_SpouseScheduleDoesNotAliasChild(t *testing.T) {
	registry, err := NewRegistry()
	require.NoError(t, err)

	child, err := registry.Lookup(domain.CategoryChild)
	require.NoError(t, err)
	spouse, err := registry.Lookup(domain.CategorySpouse)
	require.NoError(t, err)

	require.NotEmpty(t, child.Brackets)
	require.NotEmpty(t, spouse.Brackets)
	assert.NotSame(t, child.Brackets[0].UpperBound, spouse.Brackets[0].UpperBound)
}

func TestValidateProfile_Rejects(t *testing.T) {
	valid := Profile{
		Category:  domain.CategorySibling,
		Allowance: dec("15932"),
		Brackets:  []Bracket{upTo(24430, "0.35"), above("0.45")},
	}
	require.NoError(t, validateProfile(valid))

	tests := []struct {
		name    string
		profile Profile
	}{
		{
			name:    "empty schedule",
			profile: Profile{Category: domain.CategoryOther, Allowance: dec("1594")},
		},
		{
			name: "negative allowance",
			profile: Profile{
				Category:  domain.CategoryOther,
				Allowance: dec("-1"),
				Brackets:  []Bracket{above("0.60")},
			},
		},
		{
			name: "bounded final bracket",
			profile: Profile{
				Category:  domain.CategoryOther,
				Allowance: dec("1594"),
				Brackets:  []Bracket{upTo(24430, "0.35")},
			},
		},
		{
			name: "unbounded bracket before the end",
			profile: Profile{
				Category:  domain.CategoryOther,
				Allowance: dec("1594"),
				Brackets:  []Bracket{above("0.35"), above("0.45")},
			},
		},
		{
			name: "non-increasing bounds",
			profile: Profile{
				Category:  domain.CategoryOther,
				Allowance: dec("1594"),
				Brackets:  []Bracket{upTo(24430, "0.35"), upTo(24430, "0.40"), above("0.45")},
			},
		},
		{
			name: "rate above one",
			profile: Profile{
				Category:  domain.CategoryOther,
				Allowance: dec("1594"),
				Brackets:  []Bracket{above("1.01")},
			},
		},
		{
			name: "negative rate",
			profile: Profile{
				Category:  domain.CategoryOther,
				Allowance: dec("1594"),
				Brackets:  []Bracket{above("-0.05")},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Error(t, validateProfile(tc.profile))
		})
	}
}
