// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package web

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ManuGH/confirmgate/internal/confirm"
)

// User is a row of the demo directory.
type User struct {
	ID      int
	Name    string
	Enabled bool
}

// Directory is the in-memory user list the demo actions operate on.
type Directory struct {
	mu    sync.RWMutex
	users map[int]User
}

// NewDirectory returns a directory seeded with users.
func NewDirectory(names ...string) *Directory {
	d := &Directory{users: make(map[int]User, len(names))}
	for i, name := range names {
		d.users[i+1] = User{ID: i + 1, Name: name, Enabled: true}
	}
	return d
}

// DefaultDirectory returns the demo's seed data.
func DefaultDirectory() *Directory {
	return NewDirectory("Alice", "Bob", "Carol", "Dave")
}

// List returns all users ordered by id.
func (d *Directory) List() []User {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]User, 0, len(d.users))
	for _, u := range d.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Get returns the user with id.
func (d *Directory) Get(id int) (User, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[id]
	return u, ok
}

// Delete removes the user with id and reports whether it existed.
func (d *Directory) Delete(id int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.users[id]; !ok {
		return false
	}
	delete(d.users, id)
	return true
}

// Toggle flips the enabled flag and returns the new value.
func (d *Directory) Toggle(id int) (bool, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.users[id]
	if !ok {
		return false, false
	}
	u.Enabled = !u.Enabled
	d.users[id] = u
	return u.Enabled, true
}

// Demo component names.
const (
	ComponentAjax    = "confirmForm"
	ComponentNonAjax = "nonajaxForm"
)

// DemoComponents returns the two demo dialogs. Both register the same actions;
// the non-AJAX variant renders the infinite question as markup.
func DemoComponents(dir *Directory) []Component {
	return []Component{
		{
			Options: confirm.Options{
				Name:      ComponentAjax,
				Class:     "static_dialog",
				FormClass: "ajax",
			},
			Registry: demoRegistry(dir, false),
		},
		{
			Options: confirm.Options{
				Name:     ComponentNonAjax,
				Class:    "static_dialog second",
				YesClass: "yesbut",
				NoClass:  "nobut",
			},
			Registry: demoRegistry(dir, true),
		},
	}
}

func demoRegistry(dir *Directory, markup bool) *confirm.Registry {
	a := &demoActions{dir: dir, markup: markup}
	return confirm.NewRegistry().
		MustRegister("delete", a.delete, confirm.QuestionFunc(a.deleteQuestion)).
		MustRegister("deleteRecursive", a.deleteRecursive, confirm.QuestionFunc(a.deleteRecursiveQuestion)).
		MustRegister("enable", a.enable, confirm.QuestionFunc(a.enableQuestion)).
		MustRegister("infinite", a.infinite, confirm.QuestionFunc(a.infiniteQuestion))
}

type demoActions struct {
	dir    *Directory
	markup bool
}

func (a *demoActions) user(params confirm.Params) (User, error) {
	id, err := params.Int("id")
	if err != nil {
		return User{}, err
	}
	u, ok := a.dir.Get(id)
	if !ok {
		return User{}, fmt.Errorf("user %d does not exist", id)
	}
	return u, nil
}

// label names the user in questions; a user that vanished meanwhile is named by id and
// reported by the handler.
func (a *demoActions) label(params confirm.Params) string {
	if u, err := a.user(params); err == nil {
		return u.Name
	}
	return "#" + params.Get("id")
}

func (a *demoActions) deleteQuestion(_ context.Context, _ *confirm.Dialog, params confirm.Params) (confirm.Prompt, error) {
	return confirm.PlainPrompt(fmt.Sprintf("Really delete user %s?", a.label(params))), nil
}

// delete never deletes directly: users own records, so it asks a second time.
func (a *demoActions) delete(ctx context.Context, d *confirm.Dialog, params confirm.Params) error {
	u, err := a.user(params)
	if err != nil {
		d.Notify(ctx, err.Error(), confirm.SeverityError)
		return nil
	}
	d.Notify(ctx, fmt.Sprintf("User %s still owns records.", u.Name), confirm.SeverityError)
	return d.RequestConfirmation(ctx, "deleteRecursive", params)
}

func (a *demoActions) deleteRecursiveQuestion(_ context.Context, d *confirm.Dialog, params confirm.Params) (confirm.Prompt, error) {
	d.AddClass("important")
	return confirm.PlainPrompt(fmt.Sprintf("Delete user %s together with all records?", a.label(params))), nil
}

func (a *demoActions) deleteRecursive(ctx context.Context, d *confirm.Dialog, params confirm.Params) error {
	u, err := a.user(params)
	if err != nil {
		d.Notify(ctx, err.Error(), confirm.SeverityError)
		return nil
	}
	a.dir.Delete(u.ID)
	d.Notify(ctx, fmt.Sprintf("User %s deleted.", u.Name), confirm.SeverityInfo)
	return nil
}

func (a *demoActions) enableQuestion(_ context.Context, _ *confirm.Dialog, params confirm.Params) (confirm.Prompt, error) {
	verb := "Enable"
	if u, err := a.user(params); err == nil && u.Enabled {
		verb = "Disable"
	}
	return confirm.PlainPrompt(fmt.Sprintf("%s user %s?", verb, a.label(params))), nil
}

func (a *demoActions) enable(ctx context.Context, d *confirm.Dialog, params confirm.Params) error {
	u, err := a.user(params)
	if err != nil {
		d.Notify(ctx, err.Error(), confirm.SeverityError)
		return nil
	}
	enabled, _ := a.dir.Toggle(u.ID)
	state := "disabled"
	if enabled {
		state = "enabled"
	}
	d.Notify(ctx, fmt.Sprintf("User %s %s.", u.Name, state), confirm.SeverityInfo)
	return nil
}

func infiniteNum(params confirm.Params) int {
	n, err := params.Int("num")
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func (a *demoActions) infiniteQuestion(_ context.Context, _ *confirm.Dialog, params confirm.Params) (confirm.Prompt, error) {
	n := infiniteNum(params)
	if a.markup {
		return confirm.RichPrompt(fmt.Sprintf("Question <strong>#%d</strong>. <em>Again?</em>", n)), nil
	}
	return confirm.PlainPrompt(fmt.Sprintf("Question #%d. Again?", n)), nil
}

// infinite asks again with num+1, forever.
func (a *demoActions) infinite(ctx context.Context, d *confirm.Dialog, params confirm.Params) error {
	next := params.Clone()
	if next == nil {
		next = confirm.Params{}
	}
	next["num"] = fmt.Sprint(infiniteNum(params) + 1)
	return d.RequestConfirmation(ctx, "infinite", next)
}
