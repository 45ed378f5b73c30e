// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/ManuGH/confirmgate/internal/log"
)

// Recoverer logs a panicking handler with its stack and answers 500.
// http.ErrAbortHandler is re-raised so net/http can abort the connection.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}

			logger := log.WithComponentFromContext(r.Context(), "recover")
			logger.Error().
				Str(log.FieldEvent, "panic.recovered").
				Str("method", r.Method).
				Str(log.FieldPath, strings.ToValidUTF8(r.URL.Path, "")).
				Str("remote_addr", r.RemoteAddr).
				Interface("panic_value", rec).
				Bytes("stack_trace", debug.Stack()).
				Msg("panic recovered in HTTP handler")

			writeProblem(w, r, http.StatusInternalServerError, "internal_error",
				"An unexpected error occurred. Please try again later.")
		}()
		next.ServeHTTP(w, r)
	})
}
