// Package errors provides common, reusable error values and helpers.
package errors

import (
	"errors"
	"fmt"
)

// Computation errors. The UI offers a closed set of categories and
// slider-bounded amounts, so an out-of-band value is a caller bug and must
// fail loudly instead of being coerced into a legally significant figure.
var (
	ErrInvalidCategory     = errors.New("relationship category not recognized")
	ErrInvalidTransmission = errors.New("transmission type not recognized")
	ErrInvalidAmount       = errors.New("amount must be a non-negative number")
)

// Delivery errors. Expected at runtime; a failed send never invalidates an
// already-computed estimate.
var (
	ErrValidationFailure = errors.New("recipient email address is invalid")
	ErrDeliveryFailure   = errors.New("summary email could not be delivered")
)

// Request handling errors.
var (
	ErrDuplicateRequest = errors.New("duplicate request")
)

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
