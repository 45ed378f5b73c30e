// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package confirm

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/confirmgate/internal/session"
)

type notice struct {
	Message  string
	Severity Severity
}

type fakeResponder struct {
	ajax      bool
	redirects int
	notices   []notice
}

func (f *fakeResponder) IsAjax() bool { return f.ajax }
func (f *fakeResponder) Redirect()    { f.redirects++ }
func (f *fakeResponder) Notify(_ context.Context, message string, severity Severity) {
	f.notices = append(f.notices, notice{message, severity})
}

type call struct {
	action string
	params Params
}

type fixture struct {
	registry *Registry
	tokens   *TokenStore
	calls    []call
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tokens, _ := newTestTokens(t, time.Minute)
	f := &fixture{registry: NewRegistry(), tokens: tokens}

	record := func(name string, next func(ctx context.Context, d *Dialog, p Params) error) Handler {
		return func(ctx context.Context, d *Dialog, p Params) error {
			f.calls = append(f.calls, call{name, p.Clone()})
			if next != nil {
				return next(ctx, d, p)
			}
			return nil
		}
	}

	f.registry.
		MustRegister("delete", record("delete", func(ctx context.Context, d *Dialog, p Params) error {
			return d.RequestConfirmation(ctx, "deleteRecursive", p)
		}), Text("Really delete?")).
		MustRegister("deleteRecursive", record("deleteRecursive", nil),
			QuestionFunc(func(_ context.Context, d *Dialog, p Params) (Prompt, error) {
				d.AddClass("important")
				return PlainPrompt(fmt.Sprintf("Delete item %s and everything below it?", p.Get("id"))), nil
			})).
		MustRegister("enable", record("enable", nil), Markup("<strong>Enable</strong> the user?")).
		MustRegister("fail", record("fail", func(context.Context, *Dialog, Params) error {
			return errors.New("disk full")
		}), Text("Try?"))
	return f
}

func (f *fixture) dialog(r Responder, opts Options) *Dialog {
	return NewDialog(f.registry, f.tokens, r, opts)
}

func TestDialog_Scenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.dialog(&fakeResponder{}, Options{Name: "confirmForm"})
	require.NoError(t, first.RequestConfirmation(ctx, "delete", Params{"id": "42"}))
	assert.Equal(t, AwaitingChoice, first.State())
	assert.True(t, first.IsVisible())
	assert.True(t, first.Dirty())
	t1 := first.Token()
	require.NotEmpty(t, t1)
	assert.Equal(t, PlainPrompt("Really delete?"), first.Prompt())
	assert.Empty(t, f.calls, "requesting a confirmation must not run the handler")

	resp := &fakeResponder{}
	second := f.dialog(resp, Options{Name: "confirmForm"})
	require.NoError(t, second.ResolveYes(ctx, t1))

	require.Len(t, f.calls, 1)
	assert.Equal(t, "delete", f.calls[0].action)
	if diff := cmp.Diff(Params{"id": "42"}, f.calls[0].params); diff != "" {
		t.Errorf("handler params (-want +got):\n%s", diff)
	}

	assert.Equal(t, AwaitingChoice, second.State())
	assert.True(t, second.IsVisible())
	t2 := second.Token()
	assert.NotEmpty(t, t2)
	assert.NotEqual(t, t1, t2)
	assert.Equal(t, "Delete item 42 and everything below it?", second.Prompt().Content)
	assert.Equal(t, "confirm_dialog important", second.Class())
	assert.Zero(t, resp.redirects, "a chained confirmation keeps the dialog open")

	third := f.dialog(resp, Options{Name: "confirmForm"})
	require.NoError(t, third.ResolveYes(ctx, t2))
	require.Len(t, f.calls, 2)
	assert.Equal(t, "deleteRecursive", f.calls[1].action)
	assert.Equal(t, Idle, third.State())
	assert.Empty(t, third.Token())
	assert.Equal(t, 1, resp.redirects)
}

func TestDialog_UnknownActionLeavesIdle(t *testing.T) {
	f := newFixture(t)
	d := f.dialog(&fakeResponder{}, Options{})

	err := d.RequestConfirmation(context.Background(), "doesNotExist", Params{})
	require.ErrorIs(t, err, ErrUnknownAction)
	assert.Equal(t, Idle, d.State())
	assert.Empty(t, d.Token())
	assert.False(t, d.Dirty())
}

func TestDialog_QuestionErrorLeavesStateUnchanged(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("lookup failed")
	f.registry.MustRegister("broken", noopHandler, QuestionFunc(func(context.Context, *Dialog, Params) (Prompt, error) {
		return Prompt{}, boom
	}))
	f.registry.MustRegister("blank", noopHandler, QuestionFunc(func(context.Context, *Dialog, Params) (Prompt, error) {
		return Prompt{}, nil
	}))

	f.registry.MustRegister("blankImportant", noopHandler, QuestionFunc(func(_ context.Context, d *Dialog, _ Params) (Prompt, error) {
		d.AddClass("important")
		return Prompt{}, nil
	}))

	d := f.dialog(&fakeResponder{}, Options{})
	require.ErrorIs(t, d.RequestConfirmation(context.Background(), "broken", nil), boom)
	assert.Equal(t, Idle, d.State())

	require.ErrorIs(t, d.RequestConfirmation(context.Background(), "blank", nil), ErrInvalidState)
	assert.Equal(t, Idle, d.State())

	require.ErrorIs(t, d.RequestConfirmation(context.Background(), "blankImportant", nil), ErrInvalidState)
	assert.Equal(t, Idle, d.State())
	assert.Equal(t, DefaultClass, d.Class())
	assert.False(t, d.Dirty())
}

func TestDialog_IssueFailureRestoresClass(t *testing.T) {
	f := newFixture(t)
	store := session.NewMemoryStore(0)
	require.NoError(t, store.Close())

	d := NewDialog(f.registry, NewTokenStore(store, time.Minute), &fakeResponder{}, Options{})
	require.ErrorIs(t, d.RequestConfirmation(context.Background(), "deleteRecursive", Params{"id": "1"}), session.ErrClosed)
	assert.Equal(t, Idle, d.State())
	assert.Equal(t, DefaultClass, d.Class())
	assert.False(t, d.Dirty())
}

func TestDialog_ExpiredTokenIsNotice(t *testing.T) {
	f := newFixture(t)
	resp := &fakeResponder{}
	d := f.dialog(resp, Options{})

	require.NoError(t, d.ResolveYes(context.Background(), "nosuchtoken"))
	assert.Equal(t, Idle, d.State())
	assert.Empty(t, f.calls)
	require.Len(t, resp.notices, 1)
	assert.Equal(t, DefaultExpiredMessage, resp.notices[0].Message)
	assert.Zero(t, resp.redirects)
}

func TestDialog_DoubleSubmitIsExpired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d := f.dialog(&fakeResponder{}, Options{})
	require.NoError(t, d.RequestConfirmation(ctx, "enable", Params{"id": "7"}))
	tok := d.Token()

	resp := &fakeResponder{}
	require.NoError(t, f.dialog(resp, Options{}).ResolveYes(ctx, tok))
	require.NoError(t, f.dialog(resp, Options{}).ResolveYes(ctx, tok))

	assert.Len(t, f.calls, 1, "handler runs once")
	assert.Equal(t, 1, resp.redirects)
	require.Len(t, resp.notices, 1)
	assert.Equal(t, SeverityInfo, resp.notices[0].Severity)
}

func TestDialog_ExpiryPolicyAndCustomText(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	silent := &fakeResponder{}
	require.NoError(t, f.dialog(silent, Options{Expiry: ExpirySilent}).ResolveYes(ctx, "gone"))
	assert.Empty(t, silent.notices)

	custom := &fakeResponder{}
	opts := Options{Strings: Strings{Expired: "Zu spät."}}
	require.NoError(t, f.dialog(custom, opts).ResolveYes(ctx, "gone"))
	require.Len(t, custom.notices, 1)
	assert.Equal(t, "Zu spät.", custom.notices[0].Message)
}

func TestDialog_ResolveNo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d := f.dialog(&fakeResponder{}, Options{})
	require.NoError(t, d.RequestConfirmation(ctx, "delete", Params{"id": "1"}))
	tok := d.Token()

	resp := &fakeResponder{}
	no := f.dialog(resp, Options{})
	require.NoError(t, no.ResolveNo(ctx, tok))
	assert.Equal(t, Idle, no.State())
	assert.Empty(t, f.calls)
	assert.Equal(t, 1, resp.redirects)

	_, ok, err := f.tokens.Peek(ctx, tok)
	require.NoError(t, err)
	assert.False(t, ok, "cancel removes the pending record")

	again := &fakeResponder{}
	require.NoError(t, f.dialog(again, Options{}).ResolveNo(ctx, tok))
	assert.Empty(t, again.notices, "cancelling an absent token is silent")

	yes := &fakeResponder{}
	require.NoError(t, f.dialog(yes, Options{}).ResolveYes(ctx, tok))
	assert.Empty(t, f.calls)
	assert.Len(t, yes.notices, 1)
}

func TestDialog_AjaxSkipsRedirect(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d := f.dialog(&fakeResponder{ajax: true}, Options{})
	require.NoError(t, d.RequestConfirmation(ctx, "enable", nil))

	resp := &fakeResponder{ajax: true}
	yes := f.dialog(resp, Options{})
	require.NoError(t, yes.ResolveYes(ctx, d.Token()))
	assert.Len(t, f.calls, 1)
	assert.Zero(t, resp.redirects)
	assert.True(t, yes.Dirty(), "closing the dialog must re-render it")
}

func TestDialog_HandlerErrorPropagates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d := f.dialog(&fakeResponder{}, Options{})
	require.NoError(t, d.RequestConfirmation(ctx, "fail", nil))

	resp := &fakeResponder{}
	yes := f.dialog(resp, Options{})
	err := yes.ResolveYes(ctx, d.Token())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, Idle, yes.State())
	assert.Zero(t, resp.redirects)
}

func TestDialog_HandlerErrorWithdrawsChainedConfirmation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	var chained string
	f.registry.MustRegister("chainThenFail", func(ctx context.Context, d *Dialog, p Params) error {
		if err := d.RequestConfirmation(ctx, "enable", p); err != nil {
			return err
		}
		chained = d.Token()
		return errors.New("quota exceeded")
	}, Text("Chain?"))

	d := f.dialog(&fakeResponder{}, Options{})
	require.NoError(t, d.RequestConfirmation(ctx, "chainThenFail", Params{"id": "9"}))

	resp := &fakeResponder{}
	yes := f.dialog(resp, Options{})
	require.ErrorContains(t, yes.ResolveYes(ctx, d.Token()), "quota exceeded")
	assert.Equal(t, Idle, yes.State())
	assert.Empty(t, yes.Token())
	assert.Zero(t, resp.redirects)

	require.NotEmpty(t, chained)
	_, ok, err := f.tokens.Peek(ctx, chained)
	require.NoError(t, err)
	assert.False(t, ok, "chained record must be gone")
}

func TestDialog_UnregisteredActionAtConsume(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tok, err := f.tokens.Issue(ctx, "removedLater", Params{"id": "3"})
	require.NoError(t, err)

	resp := &fakeResponder{}
	d := f.dialog(resp, Options{})
	require.NoError(t, d.ResolveYes(ctx, tok))
	assert.Equal(t, Idle, d.State())
	assert.Len(t, resp.notices, 1)

	_, ok, _ := f.tokens.Peek(ctx, tok)
	assert.False(t, ok)
}

func TestDialog_Resolve(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d := f.dialog(&fakeResponder{}, Options{})
	require.NoError(t, d.RequestConfirmation(ctx, "enable", nil))
	require.NoError(t, f.dialog(&fakeResponder{}, Options{}).Resolve(ctx, d.Token(), ChoiceConfirm))
	assert.Len(t, f.calls, 1)

	require.NoError(t, d.RequestConfirmation(ctx, "enable", nil))
	require.NoError(t, f.dialog(&fakeResponder{}, Options{}).Resolve(ctx, d.Token(), ChoiceCancel))
	assert.Len(t, f.calls, 1)

	assert.Error(t, d.Resolve(ctx, "x", Choice(9)))
}

func TestDialog_View(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d := f.dialog(&fakeResponder{}, Options{
		Name:      "nonajaxForm",
		Class:     "static_dialog second",
		YesClass:  "yesbut",
		NoClass:   "nobut",
		FormClass: "ajax",
		Strings:   Strings{Yes: "Ja"},
	})

	v, err := d.View()
	require.NoError(t, err)
	assert.False(t, v.Visible)
	assert.Equal(t, "Ja", v.Yes)
	assert.Equal(t, "No", v.No)

	require.NoError(t, d.RequestConfirmation(ctx, "enable", nil))
	v, err = d.View()
	require.NoError(t, err)
	assert.Equal(t, View{
		Name:      "nonajaxForm",
		Visible:   true,
		Token:     d.Token(),
		Prompt:    RichPrompt("<strong>Enable</strong> the user?"),
		Class:     "static_dialog second",
		FormClass: "ajax",
		YesClass:  "yesbut",
		NoClass:   "nobut",
		Yes:       "Ja",
		No:        "No",
	}, v)

	d.token = ""
	_, err = d.View()
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestDialog_ClassHelpers(t *testing.T) {
	d := NewDialog(NewRegistry(), nil, nil, Options{})
	assert.Equal(t, DefaultClass, d.Class())
	d.AddClass("  ")
	assert.False(t, d.Dirty())
	d.SetClass("")
	d.AddClass("important")
	assert.Equal(t, "important", d.Class())
	assert.True(t, d.Dirty())
}

func TestParseExpiryPolicy(t *testing.T) {
	for in, want := range map[string]ExpiryPolicy{"": ExpiryNotify, "notify": ExpiryNotify, " Silent ": ExpirySilent} {
		got, err := ParseExpiryPolicy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseExpiryPolicy("loud")
	assert.Error(t, err)
}
