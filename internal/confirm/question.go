// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package confirm

import "context"

// Prompt is the resolved question shown to the user.
type Prompt struct {
	Content string
	// Rich marks Content as trusted markup. Plain content is escaped by the renderer.
	Rich bool
}

// PlainPrompt returns a prompt rendered as escaped text.
func PlainPrompt(s string) Prompt { return Prompt{Content: s} }

// RichPrompt returns a prompt rendered as trusted markup.
func RichPrompt(s string) Prompt { return Prompt{Content: s, Rich: true} }

// IsZero reports whether the prompt is empty.
func (p Prompt) IsZero() bool { return p.Content == "" }

// Question produces the prompt of an action. The implementations are Text, Markup and
// QuestionFunc.
type Question interface {
	prompt(ctx context.Context, d *Dialog, params Params) (Prompt, error)
	valid() bool
}

// Text is a static plain text question.
type Text string

func (t Text) prompt(context.Context, *Dialog, Params) (Prompt, error) {
	return PlainPrompt(string(t)), nil
}

func (t Text) valid() bool { return t != "" }

// Markup is a static question containing trusted markup.
type Markup string

func (m Markup) prompt(context.Context, *Dialog, Params) (Prompt, error) {
	return RichPrompt(string(m)), nil
}

func (m Markup) valid() bool { return m != "" }

// QuestionFunc computes the question from the pending parameters. It may adjust the
// dialog's presentation (e.g. its class) for the current response.
type QuestionFunc func(ctx context.Context, d *Dialog, params Params) (Prompt, error)

func (f QuestionFunc) prompt(ctx context.Context, d *Dialog, params Params) (Prompt, error) {
	return f(ctx, d, params)
}

func (f QuestionFunc) valid() bool { return f != nil }
