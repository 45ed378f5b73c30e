// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package web

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ManuGH/confirmgate/internal/confirm"
	"github.com/ManuGH/confirmgate/internal/log"
	"github.com/ManuGH/confirmgate/internal/session"
)

// ajaxResponse is the body answered to in-place requests.
type ajaxResponse struct {
	Dialogs map[string]string `json:"dialogs"`
	Flashes []session.Flash   `json:"flashes"`
	Visible bool              `json:"visible"`
}

// request bundles the per-request session state.
type request struct {
	ctx       context.Context
	sessionID string
	flashes   *session.Flashes
	responder *httpResponder
}

func (s *Server) begin(w http.ResponseWriter, r *http.Request) *request {
	id := s.sessions.Ensure(w, r)
	ctx := log.ContextWithSessionID(r.Context(), id)
	flashes := session.NewFlashes(s.sessions.Scope(id), s.sessions.TTL())
	return &request{
		ctx:       ctx,
		sessionID: id,
		flashes:   flashes,
		responder: newResponder(r, flashes),
	}
}

// options merges the component's presentation with the live dialog texts.
func (s *Server) options(c Component) confirm.Options {
	opts := c.Options
	dc := s.holder.Get().Dialog
	if opts.Strings.Yes == "" {
		opts.Strings.Yes = dc.Yes
	}
	if opts.Strings.No == "" {
		opts.Strings.No = dc.No
	}
	if opts.Strings.Expired == "" {
		opts.Strings.Expired = dc.Expired
	}
	if opts.Expiry == "" {
		if policy, err := confirm.ParseExpiryPolicy(dc.ExpiryNotice); err == nil {
			opts.Expiry = policy
		}
	}
	return opts
}

func (s *Server) dialog(req *request, c Component) *confirm.Dialog {
	tokens := confirm.NewTokenStore(s.sessions.Scope(req.sessionID, c.Options.Name), s.sessions.TTL())
	return confirm.NewDialog(c.Registry, tokens, req.responder, s.options(c))
}

func (s *Server) component(r *http.Request) (Component, bool) {
	c, ok := s.components[chi.URLParam(r, "component")]
	return c, ok
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	req := s.begin(w, r)
	s.respond(w, r, req, nil)
}

func (s *Server) handleSignal(w http.ResponseWriter, r *http.Request) {
	c, ok := s.component(r)
	if !ok {
		writeNotFound(w, r)
		return
	}
	signal := chi.URLParam(r, "signal")
	action, ok := ActionForSignal(signal, c.Registry)
	if !ok {
		writeDialogError(w, r, c.Options.Name, &confirm.UnknownActionError{Action: signal})
		return
	}

	req := s.begin(w, r)
	d := s.dialog(req, c)
	if err := d.RequestConfirmation(req.ctx, action, confirm.ParamsFromValues(r.URL.Query())); err != nil {
		writeDialogError(w, r, c.Options.Name, err)
		return
	}
	s.respond(w, r, req, d)
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	c, ok := s.component(r)
	if !ok {
		writeNotFound(w, r)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
	if err := r.ParseForm(); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed form")
		return
	}

	var choice confirm.Choice
	switch {
	case r.PostForm.Has("yes"):
		choice = confirm.ChoiceConfirm
	case r.PostForm.Has("no"):
		choice = confirm.ChoiceCancel
	default:
		writeError(w, r, http.StatusBadRequest, "form must submit yes or no")
		return
	}

	req := s.begin(w, r)
	d := s.dialog(req, c)
	if err := d.Resolve(req.ctx, r.PostForm.Get("token"), choice); err != nil {
		writeDialogError(w, r, c.Options.Name, err)
		return
	}
	s.respond(w, r, req, d)
}

// respond finishes a dialog request: a redirect when the dialog asked for one, the
// dialog fragments for AJAX, or the full page with active in place of its component.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, req *request, active *confirm.Dialog) {
	if req.responder.redirected {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	views := make([]confirm.View, 0, len(s.order))
	anyVisible := false
	for _, name := range s.order {
		d := active
		if d == nil || d.Name() != name {
			d = s.dialog(req, s.components[name])
		}
		v, err := d.View()
		if err != nil {
			writeDialogError(w, r, name, err)
			return
		}
		anyVisible = anyVisible || v.Visible
		views = append(views, v)
	}

	flashes, err := req.flashes.Pop(req.ctx)
	if err != nil {
		logger := log.WithComponentFromContext(req.ctx, "web")
		logger.Warn().Err(err).Str(log.FieldEvent, "flash.pop_failed").Msg("dropping user notices")
	}

	if req.responder.ajax {
		resp := ajaxResponse{Dialogs: map[string]string{}, Flashes: flashes, Visible: anyVisible}
		if resp.Flashes == nil {
			resp.Flashes = []session.Flash{}
		}
		for _, v := range views {
			if active != nil && v.Name != active.Name() {
				continue
			}
			html, err := renderDialog(v)
			if err != nil {
				writeDialogError(w, r, v.Name, err)
				return
			}
			resp.Dialogs[v.Name] = html
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	body, err := renderPage(pageData{
		Flashes:    flashes,
		Users:      s.users.List(),
		Components: s.order,
		Dialogs:    views,
		AnyVisible: anyVisible,
	})
	if err != nil {
		writeDialogError(w, r, "", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
