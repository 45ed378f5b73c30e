// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package web

import (
	"context"
	"net/http"

	"github.com/ManuGH/confirmgate/internal/confirm"
	"github.com/ManuGH/confirmgate/internal/log"
	"github.com/ManuGH/confirmgate/internal/session"
)

const ajaxHeader = "X-Requested-With"

func isAjax(r *http.Request) bool {
	return r.Header.Get(ajaxHeader) == "XMLHttpRequest"
}

// httpResponder is the confirm.Responder of one request. Notices become session flashes
// so they survive the redirect; the redirect itself is written by the handler.
type httpResponder struct {
	ajax       bool
	flashes    *session.Flashes
	redirected bool
}

func newResponder(r *http.Request, flashes *session.Flashes) *httpResponder {
	return &httpResponder{ajax: isAjax(r), flashes: flashes}
}

func (h *httpResponder) IsAjax() bool { return h.ajax }

func (h *httpResponder) Redirect() { h.redirected = true }

func (h *httpResponder) Notify(ctx context.Context, message string, severity confirm.Severity) {
	if err := h.flashes.Push(ctx, session.Flash{Message: message, Type: string(severity)}); err != nil {
		logger := log.WithComponentFromContext(ctx, "web")
		logger.Error().
			Err(err).
			Str(log.FieldEvent, "flash.push_failed").
			Msg("could not store user notice")
	}
}
