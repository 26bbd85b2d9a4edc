// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render executes the admin panel templates. A request from htmx
// gets only the page's "content" block; everything else gets the full
// layout.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"hirexfed/internal/middleware"
	"hirexfed/internal/models"
	"hirexfed/internal/session"
)

//go:embed templates/admin/*.html
var adminFS embed.FS

// PageData is what every admin template receives.
type PageData struct {
	Title     string
	Section   string        // active sidebar entry, e.g. "submissions"
	Session   *session.Data // nil on the sign-in pages
	CSRFToken string
	Data      map[string]any // page specific
	Flashes   []session.Flash
}

// Renderer executes the embedded admin templates.
type Renderer struct {
	templates map[string]*template.Template
}

// standalone pages carry their own <html> and skip base.html.
var standalone = map[string]bool{
	"login":      true,
	"2fa_setup":  true,
	"2fa_verify": true,
}

const templateDir = "templates/admin"

// New parses every admin template, each paired with the base layout unless
// it is standalone. devMode switches the layout to CDN-hosted assets.
// mediaURL maps a stored image key to its public URL; nil serves keys
// through /media/.
func New(devMode bool, mediaURL func(key string) string) (*Renderer, error) {
	if mediaURL == nil {
		mediaURL = func(key string) string { return "/media/" + key }
	}
	funcs := funcMap(devMode, mediaURL)

	entries, err := adminFS.ReadDir(templateDir)
	if err != nil {
		return nil, fmt.Errorf("read embedded templates: %w", err)
	}
	rn := &Renderer{templates: make(map[string]*template.Template, len(entries))}
	for _, e := range entries {
		file := e.Name()
		if e.IsDir() || file == "base.html" || path.Ext(file) != ".html" {
			continue
		}
		name := strings.TrimSuffix(file, ".html")

		files := []string{templateDir + "/base.html", templateDir + "/" + file}
		root := "base.html"
		if standalone[name] {
			files, root = files[1:], file
		}
		tmpl, err := template.New(root).Funcs(funcs).ParseFS(adminFS, files...)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", file, err)
		}
		rn.templates[name] = tmpl
	}
	return rn, nil
}

func funcMap(devMode bool, mediaURL func(string) string) template.FuncMap {
	return template.FuncMap{
		"isDev": func() bool { return devMode },
		"activeClass": func(current, target string) string {
			if current == target {
				return "bg-gray-900 text-white"
			}
			return "text-gray-300 hover:bg-gray-700 hover:text-white"
		},
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"uuidEq": func(ptr *uuid.UUID, val uuid.UUID) bool {
			return ptr != nil && *ptr == val
		},
		"media": func(key *string) string {
			if key == nil || *key == "" {
				return ""
			}
			return mediaURL(*key)
		},
		"date":      formatDate,
		"dateInput": dateInput,
		"statusClass": func(s models.SubmissionStatus) string {
			return statusClasses[s]
		},
		"priorityClass": func(p models.Priority) string {
			return priorityClasses[p]
		},
		"title": humanize,
	}
}

// humanize turns an enum value like "in_review" into "In review".
func humanize(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

var statusClasses = map[models.SubmissionStatus]string{
	models.StatusNew:       "bg-blue-100 text-blue-800",
	models.StatusReviewed:  "bg-indigo-100 text-indigo-800",
	models.StatusContacted: "bg-yellow-100 text-yellow-800",
	models.StatusScheduled: "bg-purple-100 text-purple-800",
	models.StatusCompleted: "bg-green-100 text-green-800",
	models.StatusDeclined:  "bg-gray-200 text-gray-700",
}

var priorityClasses = map[models.Priority]string{
	models.PriorityLow:    "text-gray-500",
	models.PriorityNormal: "text-gray-700",
	models.PriorityHigh:   "text-orange-600 font-medium",
	models.PriorityUrgent: "text-red-600 font-semibold",
}

// formatDate renders a time or *time.Time for tables; zero and nil give "".
func formatDate(v any) string {
	var t time.Time
	switch tv := v.(type) {
	case time.Time:
		t = tv
	case *time.Time:
		if tv == nil {
			return ""
		}
		t = *tv
	default:
		return ""
	}
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006 15:04")
}

// dateInput formats an optional date for an <input type="date">.
func dateInput(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

// Has reports whether a template with the given name was parsed.
func (rn *Renderer) Has(name string) bool {
	_, ok := rn.templates[name]
	return ok
}

// Page renders name with status 200.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	rn.PageStatus(w, r, http.StatusOK, name, data)
}

// PageStatus is Page with an explicit status code, used to re-render forms
// with validation errors as 422.
func (rn *Renderer) PageStatus(w http.ResponseWriter, r *http.Request, status int, name string, data *PageData) {
	tmpl, ok := rn.templates[name]
	if !ok {
		slog.Error("admin template missing", "template", name)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data.CSRFToken = middleware.CSRFTokenFromCtx(r.Context())
	if data.Session == nil {
		data.Session = middleware.SessionFromCtx(r.Context())
	}
	if data.Data == nil {
		data.Data = map[string]any{}
	}

	root := "base.html"
	switch {
	case partial(r):
		root = "content"
	case standalone[name]:
		root = name + ".html"
	}

	// Buffer first so a failing template still yields a clean 500.
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, root, data); err != nil {
		slog.Error("admin template failed", "template", name, "root", root, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Vary", "HX-Request")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// partial reports whether htmx asked for the content block only. Boosted
// links and history restores need the full layout.
func partial(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true" &&
		r.Header.Get("HX-Boosted") != "true" &&
		r.Header.Get("HX-History-Restore-Request") != "true"
}
