package common

import (
	"fmt"
	"strings"
)

// ValidationError represents validation failures
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s': %s", e.Field, e.Message)
}

// Validator collects field validation errors.
type Validator struct {
	errors []ValidationError
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{errors: make([]ValidationError, 0)}
}

// Field validates a field and collects errors
func (v *Validator) Field(fieldName string, value string, rules ...ValidationRule) *Validator {
	for _, rule := range rules {
		if err := rule(fieldName, value); err != nil {
			v.errors = append(v.errors, *err)
		}
	}
	return v
}

// HasErrors returns true if there are validation errors
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// ErrorMessage returns a combined error message as string
func (v *Validator) ErrorMessage() string {
	if !v.HasErrors() {
		return ""
	}
	var messages []string
	for _, err := range v.errors {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "; ")
}

// Error returns all collected failures as an InvalidInput AppError, or nil.
func (v *Validator) Error(code string) error {
	if !v.HasErrors() {
		return nil
	}
	return InvalidInputError(code, v.ErrorMessage())
}

// ValidationRule represents a single validation rule
type ValidationRule func(fieldName, value string) *ValidationError

// Required - Common validation rules
func Required(fieldName, value string) *ValidationError {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: fieldName, Message: "is required"}
	}
	return nil
}

// OneOf returns a rule that accepts the empty string or one of the given values.
func OneOf(values ...string) ValidationRule {
	return func(fieldName, value string) *ValidationError {
		if value == "" {
			return nil
		}
		for _, allowed := range values {
			if value == allowed {
				return nil
			}
		}
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("must be one of %s", strings.Join(values, ", ")),
		}
	}
}
