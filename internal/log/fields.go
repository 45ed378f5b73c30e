// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

import (
	"crypto/sha256"
	"encoding/hex"
)

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldSessionID = "session_id"
	FieldRequestID = "request_id"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldDialog    = "dialog"

	// Confirmation fields
	FieldAction    = "action"
	FieldTokenHash = "token_hash"
	FieldOutcome   = "outcome"

	// State fields
	FieldOldState = "old_state"
	FieldNewState = "new_state"

	// Path / URL fields
	FieldPath = "path"
)

// TokenHash returns a short, non-reversible fingerprint of a confirmation token.
// Raw tokens are bearer values and never go into logs.
func TokenHash(token string) string {
	if token == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:6])
}
