package validation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidMessage wraps struct validation failures so transport layers can
// map them to a client error without inspecting validator internals.
var ErrInvalidMessage = errors.New("validation: invalid message")

// StructValidator checks command and query payloads against their
// `validate` struct tags.
type StructValidator struct {
	validate *validator.Validate
}

func NewStructValidator() *StructValidator {
	return &StructValidator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

func (v *StructValidator) Validate(_ context.Context, message any) error {
	if message == nil {
		return nil
	}
	err := v.validate.Struct(message)
	if err == nil {
		return nil
	}
	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		// Non-struct messages carry no tags to check.
		return nil
	}
	var fields validator.ValidationErrors
	if errors.As(err, &fields) {
		return fmt.Errorf("%w: %s", ErrInvalidMessage, describe(fields))
	}
	return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
}

func describe(fields validator.ValidationErrors) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s (%s)", f.Field(), f.Tag()))
	}
	return strings.Join(parts, ", ")
}
