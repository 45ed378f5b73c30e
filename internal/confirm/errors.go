// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package confirm

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration classifies invalid action registrations.
	ErrConfiguration = errors.New("confirm: invalid configuration")
	// ErrUnknownAction classifies references to actions that were never registered.
	ErrUnknownAction = errors.New("confirm: unknown action")
	// ErrInvalidState classifies dialog invariant violations. These are programming errors.
	ErrInvalidState = errors.New("confirm: invalid dialog state")
)

// ConfigurationError reports a rejected registration.
type ConfigurationError struct {
	Action string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Action == "" {
		return fmt.Sprintf("confirm: invalid action registration: %s", e.Reason)
	}
	return fmt.Sprintf("confirm: invalid action registration %q: %s", e.Action, e.Reason)
}

// Is makes errors.Is(err, ErrConfiguration) match.
func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// UnknownActionError reports a lookup of an unregistered action name.
type UnknownActionError struct {
	Action string
}

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("confirm: action %q does not exist", e.Action)
}

// Is makes errors.Is(err, ErrUnknownAction) match.
func (e *UnknownActionError) Is(target error) bool { return target == ErrUnknownAction }

// InvalidStateError reports a broken dialog invariant, e.g. visible without a token.
type InvalidStateError struct {
	Dialog string
	Reason string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("confirm: dialog %q in invalid state: %s", e.Dialog, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidState) match.
func (e *InvalidStateError) Is(target error) bool { return target == ErrInvalidState }
