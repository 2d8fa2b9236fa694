package validation

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/kbukum/hurl/errors"
)

// Validator accumulates field errors from chained checks. Config types use
// it for rules that struct tags cannot express.
//
//	err := validation.New().
//		Min("client.retries", c.Retries, 0).
//		Check("client.tls", c.TLS.Validate()).
//		Err()
type Validator struct {
	errors []FieldError
}

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a new Validator.
func New() *Validator {
	return &Validator{}
}

// AddError adds a field error.
func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, FieldError{Field: field, Message: message})
}

// HasErrors returns true if there are validation errors.
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all validation errors.
func (v *Validator) Errors() []FieldError {
	return v.errors
}

// Validate returns a VALIDATION_FAILED AppError listing every field error,
// or nil.
func (v *Validator) Validate() *apperrors.AppError {
	if !v.HasErrors() {
		return nil
	}
	messages := make([]string, len(v.errors))
	for i, e := range v.errors {
		messages[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return apperrors.Validation(strings.Join(messages, "; ")).WithDetail("fields", v.errors)
}

// Err is Validate as a plain error, nil when there is nothing to report.
func (v *Validator) Err() error {
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// Required reports a blank value.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "is required")
	}
	return v
}

// Min reports a value below minVal.
func (v *Validator) Min(field string, value, minVal int) *Validator {
	if value < minVal {
		v.AddError(field, fmt.Sprintf("must be at least %d", minVal))
	}
	return v
}

// NonNegative reports a negative duration.
func (v *Validator) NonNegative(field string, d time.Duration) *Validator {
	if d < 0 {
		v.AddError(field, "must not be negative")
	}
	return v
}

// OneOf checks if a value is one of the allowed values. Empty values pass.
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	if value == "" {
		return v
	}
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.AddError(field, fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")))
	return v
}

// Custom reports message unless condition holds.
func (v *Validator) Custom(condition bool, field, message string) *Validator {
	if !condition {
		v.AddError(field, message)
	}
	return v
}

// Check records err against field. A nil err passes. An AppError
// contributes its message without the code prefix.
func (v *Validator) Check(field string, err error) *Validator {
	if err == nil {
		return v
	}
	if appErr, ok := apperrors.AsAppError(err); ok {
		v.AddError(field, appErr.Message)
		return v
	}
	v.AddError(field, err.Error())
	return v
}
