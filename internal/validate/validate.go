// SPDX-License-Identifier: MIT

// Package validate collects field-level configuration problems and reports them as one error.
package validate

import (
	"fmt"
	"strings"
)

// Error is a single rejected field.
type Error struct {
	Field   string
	Value   any
	Message string
}

func (e Error) Error() string {
	return "validation failed for " + e.Field + ": " + e.Message
}

// ValidationError is returned by Validator.Err when at least one rule failed.
type ValidationError struct {
	problems []Error
}

// Errors returns the individual problems in the order they were recorded.
func (e *ValidationError) Errors() []Error { return e.problems }

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.problems))
	for _, p := range e.problems {
		parts = append(parts, p.Error())
	}
	return strings.Join(parts, "; ")
}

// Validator accumulates problems. The zero value is ready to use.
type Validator struct {
	problems []Error
}

func New() *Validator { return &Validator{} }

// AddError records a problem for field.
func (v *Validator) AddError(field, message string, value any) {
	v.problems = append(v.problems, Error{Field: field, Value: value, Message: message})
}

func (v *Validator) addf(field string, value any, format string, args ...any) {
	v.AddError(field, fmt.Sprintf(format, args...), value)
}

func (v *Validator) IsValid() bool { return len(v.problems) == 0 }

func (v *Validator) Errors() []Error { return v.problems }

// Err returns nil or a *ValidationError holding a copy of the recorded problems.
func (v *Validator) Err() error {
	if v.IsValid() {
		return nil
	}
	return &ValidationError{problems: append([]Error(nil), v.problems...)}
}
