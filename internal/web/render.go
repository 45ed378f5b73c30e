// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"

	"github.com/ManuGH/confirmgate/internal/confirm"
	"github.com/ManuGH/confirmgate/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"prompt": promptContent,
}).ParseFS(templateFS, "templates/*.html"))

// promptContent marks rich prompts as trusted markup; plain prompts stay escaped.
func promptContent(p confirm.Prompt) any {
	if p.Rich {
		// #nosec G203 -- rich prompts are authored by action registrations, never by users
		return template.HTML(p.Content)
	}
	return p.Content
}

func staticFiles() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

type pageData struct {
	Flashes    []session.Flash
	Users      []User
	Components []string
	Dialogs    []confirm.View
	AnyVisible bool
}

func renderPage(data pageData) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "page", data); err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	return buf.Bytes(), nil
}

func renderDialog(v confirm.View) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "dialog", v); err != nil {
		return "", fmt.Errorf("render dialog %s: %w", v.Name, err)
	}
	return buf.String(), nil
}
