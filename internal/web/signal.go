// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package web

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ManuGH/confirmgate/internal/confirm"
)

const signalPrefix = "confirm"

// ActionForSignal maps a signal of the form confirm<ActionName> to the registered action
// with the first letter of ActionName lower-cased, e.g. confirmDeleteRecursive to
// deleteRecursive.
func ActionForSignal(signal string, registry *confirm.Registry) (string, bool) {
	rest, ok := strings.CutPrefix(signal, signalPrefix)
	if !ok || rest == "" {
		return "", false
	}
	r, size := utf8.DecodeRuneInString(rest)
	action := string(unicode.ToLower(r)) + rest[size:]
	if !registry.Has(action) {
		return "", false
	}
	return action, true
}

// SignalFor is the inverse of ActionForSignal.
func SignalFor(action string) string {
	if action == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(action)
	return signalPrefix + string(unicode.ToUpper(r)) + action[size:]
}
