// Package validation provides parameter and structural validation for
// reinsurance layer graphs.
// PRINCIPLES:
// - DRY: one validator instance, tag rules declared on the parameter structs
// - SRP: validation only, no graph construction or evaluation
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is the shared validator instance. validator/v10 caches struct
// metadata internally, so a single instance is both safe and fast.
var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidationError describes a single failed rule on a parameter field.
type ValidationError struct {
	Field   string      `json:"field"`
	Value   interface{} `json:"value"`
	Message string      `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors aggregates failures so callers see every bad parameter at once.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Struct validates a parameter struct against its `validate` tags.
// Returns ValidationErrors listing every violated rule, or nil.
func Struct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return fmt.Errorf("not a validatable struct: %w", err)
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg := fmt.Sprintf("failed rule %q", fe.Tag())
		if fe.Param() != "" {
			msg = fmt.Sprintf("failed rule %q (limit %s)", fe.Tag(), fe.Param())
		}
		out = append(out, ValidationError{
			Field:   fe.Field(),
			Value:   fe.Value(),
			Message: msg,
		})
	}
	return out
}
