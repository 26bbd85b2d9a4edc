// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package engine renders public pages. Each template type has an embedded
// Go html/template paired with the shared site layout; templates are
// compiled once at startup and rendered into buffers so a failed render
// never writes a partial response.
package engine

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"strings"
	"time"

	"hirexfed/internal/intake"
	"hirexfed/internal/markdown"
	"hirexfed/internal/models"
	"hirexfed/internal/pages"
	"hirexfed/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// Names of the non-page templates.
const (
	TemplateIntakeForm    = "intake_form"
	TemplateIntakeSuccess = "intake_success"
	TemplateNotFound      = "not_found"
	TemplateError         = "error"
)

// PageData holds everything a public template can use.
type PageData struct {
	Title           string
	MetaDescription string
	Path            string
	Site            *pages.Global
	View            *pages.View
	Form            *intake.Form
	Values          map[string]string // refill values after a rejected submit
	ErrorField      string
	Flashes         []session.Flash
	CSRFToken       string
	Message         string
	Year            int
}

// Value returns the refill value of a form input.
func (d *PageData) Value(name string) string {
	return d.Values[name]
}

// Engine renders public pages from the embedded templates.
type Engine struct {
	templates map[string]*template.Template
}

// New parses every embedded template with the layout. mediaURL maps a
// stored image key to its public URL.
func New(mediaURL func(key string) string) (*Engine, error) {
	if mediaURL == nil {
		mediaURL = func(key string) string { return "/media/" + key }
	}
	funcs := template.FuncMap{
		"markdown": markdown.Render,
		"media": func(key *string) string {
			if key == nil || *key == "" {
				return ""
			}
			return mediaURL(*key)
		},
		"paragraphs": func(s string) []string {
			var out []string
			for _, p := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n\n") {
				if p = strings.TrimSpace(p); p != "" {
					out = append(out, p)
				}
			}
			return out
		},
		"socialIcon": socialIcon,
	}

	entries, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("glob templates: %w", err)
	}

	e := &Engine{templates: make(map[string]*template.Template)}
	for _, path := range entries {
		name := strings.TrimSuffix(strings.TrimPrefix(path, "templates/"), ".html")
		if name == "layout" {
			continue
		}
		tmpl, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", path)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		e.templates[name] = tmpl
	}

	for _, t := range models.TemplateTypes {
		if _, ok := e.templates[string(t)]; !ok {
			return nil, fmt.Errorf("missing template for page type %q", t)
		}
	}
	return e, nil
}

// Render executes the named template with the layout.
func (e *Engine) Render(name string, data *PageData) ([]byte, error) {
	tmpl, ok := e.templates[name]
	if !ok {
		return nil, fmt.Errorf("template %q not found", name)
	}
	if data.Year == 0 {
		data.Year = time.Now().Year()
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		return nil, fmt.Errorf("execute template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// RenderPage renders a resolved page with the template of its type.
func (e *Engine) RenderPage(view *pages.View, site *pages.Global) ([]byte, error) {
	data := &PageData{
		Title:           view.Page.Title,
		MetaDescription: view.Page.MetaDescription,
		Path:            view.Page.URL(),
		Site:            site,
		View:            view,
	}
	if view.Page.Slug == "" || view.Page.Slug == pages.HomeSlug {
		data.Path = "/"
	}
	return e.Render(string(view.Template), data)
}

// Has reports whether a template with the name exists.
func (e *Engine) Has(name string) bool {
	_, ok := e.templates[name]
	return ok
}

// SocialPlatforms are the platforms with a dedicated sidebar icon.
var SocialPlatforms = []string{"twitter", "facebook", "instagram", "linkedin", "youtube", "github"}

// socialIcon maps a social platform name to its Font Awesome brand icon.
func socialIcon(platform string) string {
	switch strings.ToLower(platform) {
	case "twitter", "x":
		return "fa-twitter"
	case "facebook":
		return "fa-facebook-f"
	case "instagram":
		return "fa-instagram"
	case "linkedin":
		return "fa-linkedin-in"
	case "youtube":
		return "fa-youtube"
	case "github":
		return "fa-github"
	default:
		return "fa-link"
	}
}
