// SPDX-License-Identifier: MIT

// Package telemetry wires OpenTelemetry tracing and the span attributes shared by the
// HTTP layer and the dialog controller.
package telemetry

import "go.opentelemetry.io/otel/attribute"

const (
	HTTPMethodKey     = attribute.Key("http.method")
	HTTPRouteKey      = attribute.Key("http.route")
	HTTPTargetKey     = attribute.Key("http.target")
	HTTPStatusCodeKey = attribute.Key("http.status_code")

	DialogKey  = attribute.Key("confirm.dialog")
	ActionKey  = attribute.Key("confirm.action")
	OutcomeKey = attribute.Key("confirm.outcome")
	ChainedKey = attribute.Key("confirm.chained")
)

// HTTPAttributes describes a finished request.
func HTTPAttributes(method, route, target string, status int) []attribute.KeyValue {
	return []attribute.KeyValue{
		HTTPMethodKey.String(method),
		HTTPRouteKey.String(route),
		HTTPTargetKey.String(target),
		HTTPStatusCodeKey.Int(status),
	}
}

// ConfirmAttributes names the dialog and action of an operation. Empty values are left out.
func ConfirmAttributes(dialog, action string) []attribute.KeyValue {
	var attrs []attribute.KeyValue
	if dialog != "" {
		attrs = append(attrs, DialogKey.String(dialog))
	}
	if action != "" {
		attrs = append(attrs, ActionKey.String(action))
	}
	return attrs
}

// OutcomeAttributes records how a confirmation was resolved.
func OutcomeAttributes(outcome string, chained bool) []attribute.KeyValue {
	return []attribute.KeyValue{OutcomeKey.String(outcome), ChainedKey.Bool(chained)}
}
