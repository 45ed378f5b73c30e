// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package log provides structured logging utilities.
package log

import (
	"context"

	"github.com/rs/zerolog"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	sessionIDKey
)

// contextFields lists the context values copied into loggers, in output order.
// Hashed values are bearer credentials and only their fingerprint is logged.
var contextFields = []struct {
	key    ctxKey
	field  string
	hashed bool
}{
	{requestIDKey, FieldRequestID, false},
	{sessionIDKey, FieldSessionID, true},
}

func withValue(ctx context.Context, key ctxKey, v string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, key, v)
}

func value(ctx context.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}

// ContextWithRequestID stores the provided request ID in the context.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return withValue(ctx, requestIDKey, id)
}

// ContextWithSessionID stores the user session ID in the context.
func ContextWithSessionID(ctx context.Context, id string) context.Context {
	return withValue(ctx, sessionIDKey, id)
}

// RequestIDFromContext extracts the request ID from context if present.
func RequestIDFromContext(ctx context.Context) string { return value(ctx, requestIDKey) }

// SessionIDFromContext extracts the session ID from context if present.
func SessionIDFromContext(ctx context.Context) string { return value(ctx, sessionIDKey) }

// WithContext returns logger with the request and session fields of ctx attached.
func WithContext(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	if ctx == nil {
		return logger
	}
	var zc *zerolog.Context
	for _, f := range contextFields {
		v := value(ctx, f.key)
		if v == "" {
			continue
		}
		if f.hashed {
			v = TokenHash(v)
		}
		if zc == nil {
			c := logger.With()
			zc = &c
		}
		*zc = zc.Str(f.field, v)
	}
	if zc == nil {
		return logger
	}
	return zc.Logger()
}

// WithComponentFromContext returns a logger that is annotated with the component
// name and enriched with the context fields of ctx.
func WithComponentFromContext(ctx context.Context, component string) zerolog.Logger {
	l := WithContext(ctx, *FromContext(ctx))
	return l.With().Str(FieldComponent, component).Logger()
}

// FromContext returns the logger attached with zerolog's WithContext, or the base logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
			return l
		}
	}
	b := Base()
	return &b
}
