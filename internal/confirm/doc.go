// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package confirm implements "confirm before acting" dialogs.
//
// A Registry holds the named actions of one dialog component. Triggering an action with
// Dialog.RequestConfirmation does not run it: a single-use token is issued, the pending
// action and its parameters are persisted under that token in the user's session store,
// and the dialog becomes visible with the action's question. When the user answers,
// Dialog.Resolve consumes the token exactly once and either runs the action's handler
// (confirm) or just discards the pending record (cancel). A handler may request another
// confirmation before it returns, which keeps the dialog open with a fresh token.
//
// Tokens that are missing, expired or already consumed are not errors; they are reported
// to the user through the Responder and the dialog falls back to Idle.
//
// A Registry is built once and shared. A Dialog holds the state of a single response and
// must not be shared between requests.
package confirm
