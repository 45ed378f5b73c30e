// SPDX-License-Identifier: MIT

package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ManuGH/confirmgate/internal/confirm"
	"github.com/ManuGH/confirmgate/internal/log"
)

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError answers with status and message, as JSON for AJAX requests and as plain
// text otherwise.
func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	if isAjax(r) {
		writeJSON(w, status, map[string]string{
			"error":     message,
			"requestId": log.RequestIDFromContext(r.Context()),
		})
		return
	}
	http.Error(w, message, status)
}

// writeNotFound writes a 404 Not Found response
func writeNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusNotFound, "not found")
}

// writeDialogError maps dialog errors to responses. Unknown actions are the caller's
// fault; everything else is logged and answered with a generic 500.
func writeDialogError(w http.ResponseWriter, r *http.Request, component string, err error) {
	if errors.Is(err, confirm.ErrUnknownAction) {
		writeError(w, r, http.StatusNotFound, err.Error())
		return
	}

	event := "dialog.failed"
	switch {
	case errors.Is(err, confirm.ErrInvalidState):
		event = "dialog.invalid_state"
	case errors.Is(err, confirm.ErrConfiguration):
		event = "dialog.misconfigured"
	}
	logger := log.WithComponentFromContext(r.Context(), "web")
	logger.Error().
		Err(err).
		Str(log.FieldEvent, event).
		Str(log.FieldDialog, component).
		Msg("dialog request failed")
	writeError(w, r, http.StatusInternalServerError, "internal server error")
}
