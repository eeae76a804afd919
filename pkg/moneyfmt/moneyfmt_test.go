package moneyfmt

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// The locale's group separator is a non-breaking space variant, so assertions
// stick to the digit/comma fragments around it.
func TestEuros(t *testing.T) {
	got := Euros(decimal.RequireFromString("38194.35"))

	assert.True(t, strings.HasSuffix(got, "€"), got)
	assert.Contains(t, got, "194,35")
	assert.NotContains(t, got, "38194", "thousands must be grouped")
}

func TestEuros_Zero(t *testing.T) {
	got := Euros(decimal.Zero)
	assert.Contains(t, got, "0,00")
	assert.True(t, strings.HasSuffix(got, "€"), got)
}

func TestAmount(t *testing.T) {
	got := Amount(decimal.RequireFromString("1234.5"))

	assert.Contains(t, got, "234,50")
	assert.NotContains(t, got, "€")
}
