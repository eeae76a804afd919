// ==============================================================================
// VALIDATOR PACKAGE - pkg/validator/validator.go
// ==============================================================================
package validator

import (
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Validator wraps go-playground/validator with the type handling the
// simulation DTOs need.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := &Validator{
		validate: validator.New(),
	}
	v.registerCustomTypes()
	return v
}

// ValidateStructured checks struct tags and returns a field -> message map
// suitable for returning to API clients, or nil when the input is valid.
func (v *Validator) ValidateStructured(i interface{}) map[string]string {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	errs := make(map[string]string)
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		errs["_global"] = err.Error()
		return errs
	}
	for _, e := range validationErrors {
		errs[e.Field()] = messageFor(e)
	}
	return errs
}

func messageFor(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "gte":
		return fmt.Sprintf("Must be at least %s", e.Param())
	default:
		return fmt.Sprintf("failed validation on '%s'", e.Tag())
	}
}

// Monetary fields are decimal.Decimal; register a conversion so gte bounds
// apply to them as float64.
func (v *Validator) registerCustomTypes() {
	v.validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if val, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := val.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}
