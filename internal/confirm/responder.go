// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package confirm

import (
	"context"
	"fmt"
	"strings"
)

// Severity classifies a user notice.
type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityError Severity = "error"
)

// Responder is the host side of a dialog: it knows whether the current request is an
// in-place (AJAX) update, how to refresh the page and how to show notices.
type Responder interface {
	IsAjax() bool
	// Redirect asks the host to answer the current request with a refresh of the page.
	Redirect()
	Notify(ctx context.Context, message string, severity Severity)
}

// Choice is the button the user pressed.
type Choice int

const (
	ChoiceConfirm Choice = iota
	ChoiceCancel
)

func (c Choice) String() string {
	switch c {
	case ChoiceConfirm:
		return "yes"
	case ChoiceCancel:
		return "no"
	default:
		return fmt.Sprintf("Choice(%d)", int(c))
	}
}

// ExpiryPolicy decides whether an expired token produces a user notice.
type ExpiryPolicy string

const (
	ExpiryNotify ExpiryPolicy = "notify"
	ExpirySilent ExpiryPolicy = "silent"
)

// ParseExpiryPolicy parses "notify" or "silent". The empty string means notify.
func ParseExpiryPolicy(s string) (ExpiryPolicy, error) {
	switch p := ExpiryPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "", ExpiryNotify:
		return ExpiryNotify, nil
	case ExpirySilent:
		return ExpirySilent, nil
	default:
		return "", fmt.Errorf("invalid expiry policy %q (supported: notify, silent)", s)
	}
}

// DefaultExpiredMessage is shown when a submitted token no longer resolves.
const DefaultExpiredMessage = "Confirmation token expired. Please try the action again."

// Strings are the user visible texts of a dialog.
type Strings struct {
	Yes     string
	No      string
	Expired string
}

// DefaultStrings returns the built-in texts.
func DefaultStrings() Strings {
	return Strings{Yes: "Yes", No: "No", Expired: DefaultExpiredMessage}
}

func (s Strings) withDefaults() Strings {
	def := DefaultStrings()
	if s.Yes == "" {
		s.Yes = def.Yes
	}
	if s.No == "" {
		s.No = def.No
	}
	if s.Expired == "" {
		s.Expired = def.Expired
	}
	return s
}

// DefaultClass is the CSS class of a dialog that configures none.
const DefaultClass = "confirm_dialog"

// Options configure the presentation and expiry behaviour of a Dialog.
type Options struct {
	// Name identifies the dialog component, e.g. in logs and the page.
	Name string
	// Class is the dialog CSS class; empty means DefaultClass.
	Class     string
	FormClass string
	YesClass  string
	NoClass   string
	Strings   Strings
	Expiry    ExpiryPolicy
}
