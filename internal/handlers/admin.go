// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"hirexfed/internal/cache"
	"hirexfed/internal/intake"
	"hirexfed/internal/models"
	"hirexfed/internal/pages"
	"hirexfed/internal/render"
	"hirexfed/internal/session"
	"hirexfed/internal/storage"
	"hirexfed/internal/store"
)

// recentSubmissions is how many new submissions the dashboard lists.
const recentSubmissions = 10

// Admin groups all admin panel HTTP handlers and their dependencies.
type Admin struct {
	renderer  *render.Renderer
	sessions  *session.Store
	stores    Stores
	pages     *pages.Service
	intake    *intake.Service
	media     storage.ObjectStore
	pageCache *cache.PageCache
}

// NewAdmin creates a new Admin handler group. media stores uploaded site
// images; pageCache may be nil when caching is disabled.
func NewAdmin(renderer *render.Renderer, sessions *session.Store, stores Stores, pageService *pages.Service, intakeService *intake.Service, media storage.ObjectStore, pageCache *cache.PageCache) *Admin {
	return &Admin{
		renderer:  renderer,
		sessions:  sessions,
		stores:    stores,
		pages:     pageService,
		intake:    intakeService,
		media:     media,
		pageCache: pageCache,
	}
}

// Dashboard renders the admin dashboard with submission and content stats.
func (a *Admin) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	counts, err := a.stores.Submissions.CountByStatus(ctx)
	if err != nil {
		slog.Error("count submissions failed", "error", err)
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	recent, err := a.stores.Submissions.List(ctx, store.SubmissionFilter{
		Status: models.StatusNew,
		Limit:  recentSubmissions,
	})
	if err != nil {
		slog.Error("list recent submissions failed", "error", err)
	}
	pageCount, err := a.stores.Pages.Count(ctx)
	if err != nil {
		slog.Error("count pages failed", "error", err)
	}
	orphans, err := a.stores.Sections.CountOrphans(ctx)
	if err != nil {
		slog.Error("count orphan sections failed", "error", err)
	}

	a.page(w, r, "dashboard", &render.PageData{
		Title:   "Dashboard",
		Section: "dashboard",
		Data: map[string]any{
			"NewCount":     counts[models.StatusNew],
			"TotalCount":   total,
			"PageCount":    pageCount,
			"OrphanCount":  orphans,
			"StatusCounts": counts,
			"Recent":       recent,
		},
	})
}

// page renders an admin page with the visitor's pending flash messages.
func (a *Admin) page(w http.ResponseWriter, r *http.Request, name string, data *render.PageData) {
	a.pageStatus(w, r, http.StatusOK, name, data)
}

// pageStatus is page with an explicit status, used to re-render rejected
// forms with 422.
func (a *Admin) pageStatus(w http.ResponseWriter, r *http.Request, status int, name string, data *render.PageData) {
	if a.sessions != nil {
		flashes, err := a.sessions.Flashes(r.Context(), r)
		if err != nil {
			slog.Warn("load flashes failed", "error", err)
		}
		data.Flashes = flashes
	}
	a.renderer.PageStatus(w, r, status, name, data)
}

// flash queues a one-time message for the next admin page.
func (a *Admin) flash(w http.ResponseWriter, r *http.Request, typ, msg string) {
	if a.sessions == nil {
		return
	}
	if err := a.sessions.AddFlash(r.Context(), w, r, session.Flash{Type: typ, Message: msg}); err != nil {
		slog.Warn("add flash failed", "error", err)
	}
}

// redirect flashes msg and sends the browser to url with 303 See Other.
func (a *Admin) redirect(w http.ResponseWriter, r *http.Request, url, msg string) {
	if msg != "" {
		a.flash(w, r, "success", msg)
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// contentChanged clears the public page cache. Every public page embeds
// the site-wide context, so any content edit invalidates all of them.
func (a *Admin) contentChanged(ctx context.Context, what string) {
	a.pageCache.InvalidateAll(ctx)
	slog.Debug("page cache cleared", "changed", what)
}

// sessionEmail returns the signed-in user's email for audit logs.
func sessionEmail(s *session.Data) string {
	if s == nil {
		return ""
	}
	return s.Email
}
