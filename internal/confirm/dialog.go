// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package confirm

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	xglog "github.com/ManuGH/confirmgate/internal/log"
	"github.com/ManuGH/confirmgate/internal/telemetry"
)

// State is the visible state of a dialog.
type State int

const (
	Idle State = iota
	AwaitingChoice
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingChoice:
		return "awaiting_choice"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var tracer = telemetry.Tracer("confirmgate/confirm")

// Dialog drives one dialog component through a single request/response cycle.
// Handlers and question functions receive the Dialog and may call back into it.
type Dialog struct {
	registry  *Registry
	tokens    *TokenStore
	responder Responder
	opts      Options

	state  State
	token  string
	prompt Prompt
	class  string
	dirty  bool
}

// NewDialog creates an idle dialog.
func NewDialog(registry *Registry, tokens *TokenStore, responder Responder, opts Options) *Dialog {
	if opts.Class == "" {
		opts.Class = DefaultClass
	}
	if opts.Expiry == "" {
		opts.Expiry = ExpiryNotify
	}
	opts.Strings = opts.Strings.withDefaults()
	return &Dialog{
		registry:  registry,
		tokens:    tokens,
		responder: responder,
		opts:      opts,
		class:     opts.Class,
	}
}

func (d *Dialog) Name() string         { return d.opts.Name }
func (d *Dialog) State() State         { return d.state }
func (d *Dialog) IsVisible() bool      { return d.state == AwaitingChoice }
func (d *Dialog) Token() string        { return d.token }
func (d *Dialog) Prompt() Prompt       { return d.prompt }
func (d *Dialog) Responder() Responder { return d.responder }

// Dirty reports whether the dialog changed during this response and must be re-rendered.
func (d *Dialog) Dirty() bool { return d.dirty }

// Class returns the CSS class for the current response.
func (d *Dialog) Class() string { return d.class }

// SetClass replaces the CSS class for the current response.
func (d *Dialog) SetClass(class string) {
	d.class = class
	d.dirty = true
}

// AddClass appends a CSS class for the current response.
func (d *Dialog) AddClass(class string) {
	class = strings.TrimSpace(class)
	if class == "" {
		return
	}
	if d.class == "" {
		d.class = class
	} else {
		d.class += " " + class
	}
	d.dirty = true
}

// Notify forwards a user notice to the responder.
func (d *Dialog) Notify(ctx context.Context, message string, severity Severity) {
	if d.responder != nil {
		d.responder.Notify(ctx, message, severity)
	}
}

func (d *Dialog) logger(ctx context.Context) *zerolog.Logger {
	l := xglog.WithComponentFromContext(ctx, "confirm").With().Str(xglog.FieldDialog, d.opts.Name).Logger()
	return &l
}

func (d *Dialog) setState(ctx context.Context, next State) {
	if d.state == next {
		return
	}
	d.logger(ctx).Debug().
		Str(xglog.FieldEvent, "confirm.state_changed").
		Str(xglog.FieldOldState, d.state.String()).
		Str(xglog.FieldNewState, next.String()).
		Msg("dialog state changed")
	d.state = next
	d.dirty = true
}

func (d *Dialog) reset(ctx context.Context) {
	d.setState(ctx, Idle)
	d.token = ""
	d.prompt = Prompt{}
}

// RequestConfirmation shows the question of the named action and persists a pending
// confirmation carrying params. Called from a handler it replaces the question and token
// of the current response. On error the dialog is left as it was.
func (d *Dialog) RequestConfirmation(ctx context.Context, name string, params Params) (err error) {
	ctx, span := tracer.Start(ctx, "confirm.request",
		trace.WithAttributes(telemetry.ConfirmAttributes(d.opts.Name, name)...))
	defer func() { endSpan(span, err) }()

	// Restored on error: question functions may change the class.
	prevClass, prevDirty := d.class, d.dirty
	defer func() {
		if err != nil {
			d.class, d.dirty = prevClass, prevDirty
		}
	}()

	action, err := d.registry.Lookup(name)
	if err != nil {
		return err
	}
	prompt, err := action.Question.prompt(ctx, d, params)
	if err != nil {
		return fmt.Errorf("confirm: question for %q: %w", name, err)
	}
	if prompt.IsZero() {
		return &InvalidStateError{Dialog: d.opts.Name, Reason: fmt.Sprintf("question for %q is empty", name)}
	}
	token, err := d.tokens.Issue(ctx, name, params)
	if err != nil {
		return err
	}

	d.setState(ctx, AwaitingChoice)
	d.token = token
	d.prompt = prompt
	d.dirty = true

	confirmationsRequestedTotal.WithLabelValues(name).Inc()
	d.logger(ctx).Info().
		Str(xglog.FieldEvent, "confirm.requested").
		Str(xglog.FieldAction, name).
		Str(xglog.FieldTokenHash, xglog.TokenHash(token)).
		Msg("confirmation requested")
	return nil
}

// Resolve dispatches to ResolveYes or ResolveNo.
func (d *Dialog) Resolve(ctx context.Context, token string, choice Choice) error {
	switch choice {
	case ChoiceConfirm:
		return d.ResolveYes(ctx, token)
	case ChoiceCancel:
		return d.ResolveNo(ctx, token)
	default:
		return fmt.Errorf("confirm: unsupported choice %v", choice)
	}
}

// ResolveYes consumes token and runs the pending action's handler. A token that does not
// resolve is reported through the responder and is not an error. Handler errors are
// returned after the dialog has been reset; a confirmation the handler chained before
// failing is withdrawn and the responder is not redirected.
func (d *Dialog) ResolveYes(ctx context.Context, token string) (err error) {
	ctx, span := tracer.Start(ctx, "confirm.resolve_yes",
		trace.WithAttributes(telemetry.ConfirmAttributes(d.opts.Name, "")...))
	defer func() { endSpan(span, err) }()

	pending, ok, err := d.tokens.Consume(ctx, token)
	if err != nil {
		return err
	}
	if !ok {
		d.expire(ctx, token, "")
		span.SetAttributes(telemetry.OutcomeAttributes(OutcomeExpired, false)...)
		return nil
	}
	span.SetAttributes(telemetry.ConfirmAttributes("", pending.Action)...)

	action, lookupErr := d.registry.Lookup(pending.Action)
	if lookupErr != nil {
		d.logger(ctx).Error().
			Err(lookupErr).
			Str(xglog.FieldEvent, "confirm.action_missing").
			Str(xglog.FieldAction, pending.Action).
			Msg("pending confirmation references an unregistered action")
		d.expire(ctx, token, pending.Action)
		return nil
	}

	d.reset(ctx)

	if err := action.Handler(ctx, d, pending.Params); err != nil {
		d.withdraw(ctx)
		confirmationsResolvedTotal.WithLabelValues(pending.Action, OutcomeFailed).Inc()
		d.logger(ctx).Warn().
			Err(err).
			Str(xglog.FieldEvent, "confirm.handler_failed").
			Str(xglog.FieldAction, pending.Action).
			Msg("confirmed action failed")
		return fmt.Errorf("confirm: action %q: %w", pending.Action, err)
	}

	chained := d.IsVisible()
	confirmationsResolvedTotal.WithLabelValues(pending.Action, OutcomeConfirmed).Inc()
	span.SetAttributes(telemetry.OutcomeAttributes(OutcomeConfirmed, chained)...)
	d.logger(ctx).Info().
		Str(xglog.FieldEvent, "confirm.resolved").
		Str(xglog.FieldAction, pending.Action).
		Str(xglog.FieldOutcome, OutcomeConfirmed).
		Str(xglog.FieldTokenHash, xglog.TokenHash(token)).
		Bool("chained", chained).
		Msg("confirmation accepted")

	if d.state == Idle {
		d.refresh()
	}
	return nil
}

// ResolveNo discards the pending confirmation for token, if any, and closes the dialog.
func (d *Dialog) ResolveNo(ctx context.Context, token string) (err error) {
	ctx, span := tracer.Start(ctx, "confirm.resolve_no",
		trace.WithAttributes(telemetry.ConfirmAttributes(d.opts.Name, "")...))
	defer func() { endSpan(span, err) }()

	pending, ok, err := d.tokens.Consume(ctx, token)
	if err != nil {
		return err
	}
	d.reset(ctx)

	action := pending.Action
	if !ok {
		action = ""
	}
	confirmationsResolvedTotal.WithLabelValues(action, OutcomeCancelled).Inc()
	span.SetAttributes(telemetry.OutcomeAttributes(OutcomeCancelled, false)...)
	d.logger(ctx).Info().
		Str(xglog.FieldEvent, "confirm.resolved").
		Str(xglog.FieldAction, action).
		Str(xglog.FieldOutcome, OutcomeCancelled).
		Bool("pending_found", ok).
		Msg("confirmation cancelled")

	d.refresh()
	return nil
}

func (d *Dialog) expire(ctx context.Context, token, action string) {
	d.reset(ctx)
	confirmationsResolvedTotal.WithLabelValues(action, OutcomeExpired).Inc()
	d.logger(ctx).Info().
		Str(xglog.FieldEvent, "confirm.expired").
		Str(xglog.FieldTokenHash, xglog.TokenHash(token)).
		Msg("confirmation token did not resolve")
	if d.opts.Expiry != ExpirySilent {
		d.Notify(ctx, d.opts.Strings.Expired, SeverityInfo)
	}
}

// withdraw drops a confirmation requested during this response, record included.
func (d *Dialog) withdraw(ctx context.Context) {
	if d.token != "" {
		if _, _, err := d.tokens.Consume(ctx, d.token); err != nil {
			d.logger(ctx).Warn().
				Err(err).
				Str(xglog.FieldEvent, "confirm.withdraw_failed").
				Str(xglog.FieldTokenHash, xglog.TokenHash(d.token)).
				Msg("could not discard chained confirmation")
		}
	}
	d.reset(ctx)
}

func (d *Dialog) refresh() {
	if d.responder != nil && !d.responder.IsAjax() {
		d.responder.Redirect()
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// View is the render snapshot of a dialog.
type View struct {
	Name      string
	Visible   bool
	Token     string
	Prompt    Prompt
	Class     string
	FormClass string
	YesClass  string
	NoClass   string
	Yes       string
	No        string
}

// View returns what the presentation layer needs to render the dialog. A visible dialog
// without a token is a *InvalidStateError and must not be rendered.
func (d *Dialog) View() (View, error) {
	if d.IsVisible() && d.token == "" {
		return View{}, &InvalidStateError{Dialog: d.opts.Name, Reason: "visible without an active token"}
	}
	return View{
		Name:      d.opts.Name,
		Visible:   d.IsVisible(),
		Token:     d.token,
		Prompt:    d.prompt,
		Class:     d.class,
		FormClass: d.opts.FormClass,
		YesClass:  d.opts.YesClass,
		NoClass:   d.opts.NoClass,
		Yes:       d.opts.Strings.Yes,
		No:        d.opts.Strings.No,
	}, nil
}
