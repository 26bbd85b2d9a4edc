// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"hirexfed/internal/models"
	"hirexfed/internal/pages"
	"hirexfed/internal/render"
	"hirexfed/internal/slug"
	"hirexfed/internal/store"
)

// maxAPIBody caps the JSON body of the add-page endpoint.
const maxAPIBody = 1 << 20

// --- Pages CRUD ---

// PagesList renders the pages management page.
func (a *Admin) PagesList(w http.ResponseWriter, r *http.Request) {
	items, err := a.stores.Pages.List(r.Context())
	if err != nil {
		slog.Error("list pages failed", "error", err)
	}

	a.page(w, r, "pages_list", &render.PageData{
		Title:   "Pages",
		Section: "pages",
		Data:    map[string]any{"Items": items},
	})
}

// PageForm renders the new or edit page form.
func (a *Admin) PageForm(w http.ResponseWriter, r *http.Request) {
	id, ok := optionalID(r)
	if !ok {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}

	item := &models.Page{TemplateType: models.TemplateGeneric, IsPublished: true}
	if id != uuid.Nil {
		p, err := a.stores.Pages.FindByID(r.Context(), id)
		if err != nil {
			slog.Error("find page failed", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if p == nil {
			http.NotFound(w, r)
			return
		}
		item = p
	}
	a.renderPageForm(w, r, http.StatusOK, item, "")
}

func (a *Admin) renderPageForm(w http.ResponseWriter, r *http.Request, status int, item *models.Page, errMsg string) {
	title := "New Page"
	if item.ID != uuid.Nil {
		title = "Edit Page"
	}
	a.pageStatus(w, r, status, "page_form", &render.PageData{
		Title:   title,
		Section: "pages",
		Data: map[string]any{
			"Item":          item,
			"IsNew":         item.ID == uuid.Nil,
			"TemplateTypes": models.TemplateTypes,
			"Error":         errMsg,
		},
	})
}

// PageSave creates or updates a page from the form.
func (a *Admin) PageSave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := optionalID(r)
	if !ok {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}

	p := &models.Page{}
	if id != uuid.Nil {
		existing, err := a.stores.Pages.FindByID(ctx, id)
		if err != nil {
			slog.Error("find page failed", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if existing == nil {
			http.NotFound(w, r)
			return
		}
		p = existing
	}

	p.Title = formValue(r, "title")
	p.Slug = slug.Path(formValue(r, "slug"))
	if p.Slug == "" {
		p.Slug = slug.Generate(p.Title)
	}
	p.TemplateType = models.ParseTemplateType(r.FormValue("template_type"))
	p.MetaDescription = formValue(r, "meta_description")
	p.IsPublished = formBool(r, "is_published")
	p.ShowInNavigation = formBool(r, "show_in_navigation")
	p.NavigationOrder = formInt(r, "navigation_order", 0)

	if errMsg := validatePage(p); errMsg != "" {
		a.renderPageForm(w, r, http.StatusUnprocessableEntity, p, errMsg)
		return
	}

	other, err := a.stores.Pages.FindBySlug(ctx, p.Slug)
	if err != nil {
		slog.Error("find page by slug failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if other != nil && other.ID != p.ID {
		a.renderPageForm(w, r, http.StatusUnprocessableEntity, p, "A page with this slug already exists.")
		return
	}

	if p.ID == uuid.Nil {
		err = a.stores.Pages.Create(ctx, p)
	} else {
		err = a.stores.Pages.Update(ctx, p)
	}
	if err != nil {
		slog.Error("save page failed", "error", err, "slug", p.Slug)
		msg := "Failed to save the page."
		if store.IsUniqueViolation(err) {
			msg = "A page with this slug already exists."
		}
		a.renderPageForm(w, r, http.StatusUnprocessableEntity, p, msg)
		return
	}

	a.contentChanged(ctx, "page")
	a.redirect(w, r, "/admin/pages", "Page saved.")
}

// PageDelete removes a page. Its sections stay and show up as orphans.
func (a *Admin) PageDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	if err := a.stores.Pages.Delete(r.Context(), id); err != nil {
		slog.Error("delete page failed", "error", err)
		a.flash(w, r, "error", "Failed to delete the page.")
		http.Redirect(w, r, "/admin/pages", http.StatusSeeOther)
		return
	}
	a.contentChanged(r.Context(), "page")
	a.redirect(w, r, "/admin/pages", "Page deleted.")
}

// addPageRequest is the body of the add-page endpoint.
type addPageRequest struct {
	Title        string `json:"title"`
	TemplateType string `json:"template_type"`
	Content      string `json:"content"`
}

// APIAddPage creates a published page from JSON and answers with its URL.
func (a *Admin) APIAddPage(w http.ResponseWriter, r *http.Request) {
	var req addPageRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAPIBody))
	if err := dec.Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	p, err := a.pages.AddPage(r.Context(), pages.NewPage{
		Title:        req.Title,
		TemplateType: req.TemplateType,
		Content:      req.Content,
	})
	var invalid *pages.InvalidError
	switch {
	case errors.As(err, &invalid):
		writeJSONError(w, http.StatusBadRequest, invalid.Message)
		return
	case errors.Is(err, pages.ErrSlugTaken):
		writeJSONError(w, http.StatusConflict, "A page with this title already exists.")
		return
	case err != nil:
		slog.Error("add page failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to create the page.")
		return
	}

	a.contentChanged(r.Context(), "page")
	writeJSON(w, http.StatusCreated, map[string]string{
		"url": p.URL(),
		"id":  p.ID.String(),
	})
}

// --- Sections CRUD ---

// SectionsList renders sections, optionally filtered by page slug or
// restricted to orphans.
func (a *Admin) SectionsList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pageSlug := slug.Path(r.URL.Query().Get("page"))
	orphansOnly := r.URL.Query().Get("orphans") == "1"

	var (
		items []models.Section
		err   error
	)
	switch {
	case orphansOnly:
		items, err = a.pages.Orphans(ctx)
		pageSlug = ""
	case pageSlug != "":
		items, err = a.stores.Sections.ListByPage(ctx, pageSlug)
	default:
		items, err = a.stores.Sections.List(ctx)
	}
	if err != nil {
		slog.Error("list sections failed", "error", err)
	}

	allPages, err := a.stores.Pages.List(ctx)
	if err != nil {
		slog.Error("list pages failed", "error", err)
	}
	known := make(map[string]bool, len(allPages))
	for _, p := range allPages {
		known[p.Slug] = true
	}

	a.page(w, r, "sections_list", &render.PageData{
		Title:   "Sections",
		Section: "sections",
		Data: map[string]any{
			"Items":       items,
			"Page":        pageSlug,
			"OrphansOnly": orphansOnly,
			"Pages":       allPages,
			"Known":       known,
		},
	})
}

// SectionForm renders the new or edit section form.
func (a *Admin) SectionForm(w http.ResponseWriter, r *http.Request) {
	id, ok := optionalID(r)
	if !ok {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}

	item := &models.Section{
		Page:        slug.Path(r.URL.Query().Get("page")),
		SectionType: models.SectionMainContent,
		IsActive:    true,
	}
	if id != uuid.Nil {
		s, err := a.stores.Sections.FindByID(r.Context(), id)
		if err != nil {
			slog.Error("find section failed", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if s == nil {
			http.NotFound(w, r)
			return
		}
		item = s
	}
	a.renderSectionForm(w, r, http.StatusOK, item, "")
}

func (a *Admin) renderSectionForm(w http.ResponseWriter, r *http.Request, status int, item *models.Section, errMsg string) {
	allPages, err := a.stores.Pages.List(r.Context())
	if err != nil {
		slog.Error("list pages failed", "error", err)
	}
	title := "New Section"
	if item.ID != uuid.Nil {
		title = "Edit Section"
	}
	a.pageStatus(w, r, status, "section_form", &render.PageData{
		Title:   title,
		Section: "sections",
		Data: map[string]any{
			"Item":         item,
			"IsNew":        item.ID == uuid.Nil,
			"Pages":        allPages,
			"SectionTypes": models.SectionTypes,
			"ImageKey":     item.ImageKey,
			"Error":        errMsg,
		},
	})
}

// SectionSave creates or updates a section, including its optional image.
func (a *Admin) SectionSave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := optionalID(r)
	if !ok {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}

	s := &models.Section{}
	if id != uuid.Nil {
		existing, err := a.stores.Sections.FindByID(ctx, id)
		if err != nil {
			slog.Error("find section failed", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if existing == nil {
			http.NotFound(w, r)
			return
		}
		s = existing
	}

	s.Page = slug.Path(formValue(r, "page"))
	s.SectionType = models.SectionType(r.FormValue("section_type"))
	s.SortOrder = formInt(r, "sort_order", 0)
	s.Title = formValue(r, "title")
	s.Content = r.FormValue("content")
	s.IsActive = formBool(r, "is_active")

	if errMsg := validateSection(s); errMsg != "" {
		a.renderSectionForm(w, r, http.StatusUnprocessableEntity, s, errMsg)
		return
	}

	img, err := a.imageFromForm(r, s.ImageKey)
	if err != nil {
		a.renderImageError(w, r, err, func(msg string) {
			a.renderSectionForm(w, r, http.StatusUnprocessableEntity, s, msg)
		})
		return
	}
	s.ImageKey = img.key

	if s.ID == uuid.Nil {
		err = a.stores.Sections.Create(ctx, s)
	} else {
		err = a.stores.Sections.Update(ctx, s)
	}
	if err != nil {
		slog.Error("save section failed", "error", err)
		a.rollbackImage(ctx, img)
		a.renderSectionForm(w, r, http.StatusUnprocessableEntity, s, "Failed to save the section.")
		return
	}
	a.commitImage(ctx, img)

	a.contentChanged(ctx, "section")
	a.redirect(w, r, "/admin/sections?page="+s.Page, "Section saved.")
}

// SectionDelete removes a section and its image.
func (a *Admin) SectionDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	s, err := a.stores.Sections.FindByID(ctx, id)
	if err != nil {
		slog.Error("find section failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if s == nil {
		http.NotFound(w, r)
		return
	}
	if err := a.stores.Sections.Delete(ctx, id); err != nil {
		slog.Error("delete section failed", "error", err)
		a.flash(w, r, "error", "Failed to delete the section.")
		http.Redirect(w, r, "/admin/sections", http.StatusSeeOther)
		return
	}
	a.deleteImage(ctx, s.ImageKey)
	a.contentChanged(ctx, "section")
	a.redirect(w, r, "/admin/sections?page="+s.Page, "Section deleted.")
}
