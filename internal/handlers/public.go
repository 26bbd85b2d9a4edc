// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"hirexfed/internal/cache"
	"hirexfed/internal/engine"
	"hirexfed/internal/intake"
	"hirexfed/internal/middleware"
	"hirexfed/internal/pages"
	"hirexfed/internal/session"
	"hirexfed/internal/storage"
)

// Public groups handlers for the public-facing site. Pages are rendered
// by the template engine and kept in the Valkey page cache; intake forms
// are never cached since they carry a CSRF token.
type Public struct {
	engine    *engine.Engine
	pages     *pages.Service
	intake    *intake.Service
	sessions  *session.Store
	media     storage.ObjectStore
	pageCache *cache.PageCache
	baseURL   string
}

// NewPublic creates a new Public handler group. media serves /media/ when
// images have no public bucket URL; pageCache may be nil.
func NewPublic(eng *engine.Engine, pageService *pages.Service, intakeService *intake.Service, sessions *session.Store, media storage.ObjectStore, pageCache *cache.PageCache, baseURL string) *Public {
	return &Public{
		engine:    eng,
		pages:     pageService,
		intake:    intakeService,
		sessions:  sessions,
		media:     media,
		pageCache: pageCache,
		baseURL:   strings.TrimRight(baseURL, "/"),
	}
}

// Homepage renders "/".
func (p *Public) Homepage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := cache.Key("")
	if cached, ok := p.pageCache.Get(ctx, key); ok {
		writeHTML(w, http.StatusOK, cached)
		return
	}

	view, err := p.pages.Home(ctx)
	if err != nil {
		p.serverError(w, r, "resolve homepage", err)
		return
	}
	p.renderView(w, r, key, view)
}

// Page renders a published page by its slug. Nested slugs such as
// "members/faq" are matched whole; the trailing slash is optional.
func (p *Public) Page(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pageSlug := strings.Trim(chi.URLParam(r, "*"), "/")
	if pageSlug == "" {
		p.Homepage(w, r)
		return
	}

	key := cache.Key(pageSlug)
	if cached, ok := p.pageCache.Get(ctx, key); ok {
		writeHTML(w, http.StatusOK, cached)
		return
	}

	view, err := p.pages.Resolve(ctx, pageSlug)
	if errors.Is(err, pages.ErrNotFound) {
		p.notFound(w, r)
		return
	}
	if err != nil {
		p.serverError(w, r, "resolve page", err)
		return
	}
	p.renderView(w, r, key, view)
}

func (p *Public) renderView(w http.ResponseWriter, r *http.Request, key string, view *pages.View) {
	ctx := r.Context()
	site, err := p.pages.Global(ctx)
	if err != nil {
		p.serverError(w, r, "load site context", err)
		return
	}
	rendered, err := p.engine.RenderPage(view, site)
	if err != nil {
		p.serverError(w, r, "render page", err)
		return
	}
	p.pageCache.Set(ctx, key, rendered)
	writeHTML(w, http.StatusOK, rendered)
}

// IntakeForm renders an intake form. Values and the failing field of a
// rejected submit come back through the flash store.
func (p *Public) IntakeForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	form, err := p.intake.Form(ctx, chi.URLParam(r, "slug"))
	if errors.Is(err, intake.ErrNotFound) {
		p.notFound(w, r)
		return
	}
	if err != nil {
		p.serverError(w, r, "load intake form", err)
		return
	}

	data := &engine.PageData{
		Title:           form.Title,
		MetaDescription: form.Description,
		Path:            form.URL(),
		Form:            form,
		Values:          map[string]string{},
		CSRFToken:       middleware.CSRFTokenFromCtx(ctx),
	}
	if p.sessions != nil {
		flashes, err := p.sessions.Flashes(ctx, r)
		if err != nil {
			slog.Warn("load flashes failed", "error", err)
		}
		for _, f := range flashes {
			for k, v := range f.Values {
				data.Values[k] = v
			}
			if f.Field != "" {
				data.ErrorField = f.Field
			}
		}
		data.Flashes = flashes
	}

	w.Header().Set("Cache-Control", "no-store")
	p.render(w, r, http.StatusOK, engine.TemplateIntakeForm, data)
}

// IntakeSubmit validates and stores a submission. Rejections redirect
// back to the form with a flash; success renders the confirmation page.
func (p *Public) IntakeSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	form, err := p.intake.Form(ctx, chi.URLParam(r, "slug"))
	if errors.Is(err, intake.ErrNotFound) {
		p.notFound(w, r)
		return
	}
	if err != nil {
		p.serverError(w, r, "load intake form", err)
		return
	}

	if r.PostForm == nil {
		if err := middleware.ParseForm(r); err != nil {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
	}
	in := intake.Input{
		Values:    submittedValues(r),
		Files:     submittedFiles(r),
		IPAddress: middleware.ClientIP(r),
		UserAgent: r.UserAgent(),
	}

	sub, err := p.intake.Submit(ctx, form, in)
	if err != nil {
		var verr *intake.ValidationError
		switch {
		case errors.As(err, &verr):
			p.rejectSubmission(w, r, form, in, verr.Field, verr.Message)
		case errors.Is(err, intake.ErrDuplicate):
			p.rejectSubmission(w, r, form, in, "", intake.DuplicateMessage)
		default:
			p.serverError(w, r, "store submission", err)
		}
		return
	}

	slog.Info("intake submission received", "form", form.Slug, "submission_id", sub.ID)
	w.Header().Set("Cache-Control", "no-store")
	p.render(w, r, http.StatusOK, engine.TemplateIntakeSuccess, &engine.PageData{
		Title:   form.Title,
		Path:    form.URL(),
		Form:    form,
		Message: form.SuccessMessage,
	})
}

// rejectSubmission flashes the error and the submitted values and sends
// the visitor back to the form. Files are never refilled.
func (p *Public) rejectSubmission(w http.ResponseWriter, r *http.Request, form *intake.Form, in intake.Input, field, msg string) {
	slog.Info("intake submission rejected", "form", form.Slug, "field", field, "reason", msg)
	values := make(map[string]string, len(in.Values))
	for k, vs := range in.Values {
		if len(vs) > 0 {
			values[k] = vs[0]
		}
	}
	if p.sessions != nil {
		err := p.sessions.AddFlash(r.Context(), w, r, session.Flash{
			Type:    "error",
			Message: msg,
			Field:   field,
			Values:  values,
		})
		if err != nil {
			slog.Warn("add flash failed", "error", err)
		}
	}
	http.Redirect(w, r, form.URL(), http.StatusSeeOther)
}

// submittedValues returns the posted form values without the CSRF token.
func submittedValues(r *http.Request) map[string][]string {
	values := make(map[string][]string, len(r.PostForm))
	for k, vs := range r.PostForm {
		if k == middleware.CSRFFormField {
			continue
		}
		values[k] = vs
	}
	return values
}

// submittedFiles adapts the multipart file headers to intake uploads.
// Empty file inputs are skipped.
func submittedFiles(r *http.Request) map[string][]intake.Upload {
	if r.MultipartForm == nil {
		return nil
	}
	files := make(map[string][]intake.Upload)
	for name, headers := range r.MultipartForm.File {
		for _, fh := range headers {
			if fh.Filename == "" {
				continue
			}
			files[name] = append(files[name], uploadFromHeader(fh))
		}
	}
	return files
}

func uploadFromHeader(fh *multipart.FileHeader) intake.Upload {
	return intake.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// Sitemap serves /sitemap.xml.
func (p *Public) Sitemap(w http.ResponseWriter, r *http.Request) {
	body, err := p.pages.Sitemap(r.Context(), p.baseURL)
	if err != nil {
		slog.Error("sitemap failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Write(body)
}

// Robots serves /robots.txt.
func (p *Public) Robots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, pages.Robots(p.baseURL))
}

// Health reports that the process is serving requests.
func (p *Public) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Media serves uploaded site images from the object store. Only keys
// under the media prefix are reachable; intake documents never are.
func (p *Public) Media(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if p.media == nil || !storage.ValidKey(key) || !strings.HasPrefix(key, mediaPrefix+"/") {
		p.notFound(w, r)
		return
	}
	obj, err := p.media.Get(r.Context(), key)
	if errors.Is(err, storage.ErrNotFound) {
		p.notFound(w, r)
		return
	}
	if err != nil {
		slog.Error("media read failed", "error", err, "key", key)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	defer obj.Body.Close()

	// Keys are unique per upload, so the content never changes.
	w.Header().Set("Content-Type", obj.ContentType)
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if obj.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	if _, err := io.Copy(w, obj.Body); err != nil {
		slog.Warn("media stream failed", "error", err, "key", key)
	}
}

// NotFound renders the 404 page.
func (p *Public) NotFound(w http.ResponseWriter, r *http.Request) {
	p.notFound(w, r)
}

func (p *Public) notFound(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, http.StatusNotFound, engine.TemplateNotFound, &engine.PageData{
		Title: "Page Not Found",
		Path:  r.URL.Path,
	})
}

func (p *Public) serverError(w http.ResponseWriter, r *http.Request, op string, err error) {
	slog.Error(op+" failed", "error", err, "path", r.URL.Path)
	p.render(w, r, http.StatusInternalServerError, engine.TemplateError, &engine.PageData{
		Title: "Something Went Wrong",
		Path:  r.URL.Path,
	})
}

// render executes a public template with the site context. A failed
// render falls back to a plain-text response of the same status.
func (p *Public) render(w http.ResponseWriter, r *http.Request, status int, name string, data *engine.PageData) {
	if data.Site == nil {
		site, err := p.pages.Global(r.Context())
		if err != nil {
			slog.Error("load site context failed", "error", err)
		}
		data.Site = site
	}
	body, err := p.engine.Render(name, data)
	if err != nil {
		slog.Error("render public template failed", "error", err, "template", name)
		http.Error(w, http.StatusText(status), status)
		return
	}
	writeHTML(w, status, body)
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(body)
}
