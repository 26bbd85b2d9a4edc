// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// HireXFed site. It organizes routes into public and admin groups with
// appropriate middleware stacks.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"hirexfed/internal/handlers"
	"hirexfed/internal/middleware"
	"hirexfed/internal/session"
	"hirexfed/web"
)

// Options carries the router settings that come from configuration.
type Options struct {
	// SecureCookies marks the site as served over HTTPS: the CSRF cookie
	// gets the Secure flag and responses carry HSTS.
	SecureCookies bool
	// LoginLimiter and IntakeLimiter throttle the login form and intake
	// submissions per client IP. Either may be nil.
	LoginLimiter  *middleware.RateLimiter
	IntakeLimiter *middleware.RateLimiter
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(sessionStore *session.Store, admin *handlers.Admin, auth *handlers.Auth, public *handlers.Public, opts Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.CleanPath)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders(opts.SecureCookies))

	// Plain endpoints: no session, no CSRF.
	r.Get("/health", public.Health)
	r.Get("/robots.txt", public.Robots)
	r.Get("/sitemap.xml", public.Sitemap)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(web.Static())))
	r.Get("/media/*", public.Media)

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewCSRF(opts.SecureCookies))
		r.Use(middleware.LoadSession(sessionStore))

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.NoStore)
			adminRoutes(r, admin, auth, opts)
		})

		// Intake forms are reachable with and without the trailing slash.
		r.Get("/intake/{slug}", public.IntakeForm)
		r.Get("/intake/{slug}/", public.IntakeForm)
		r.With(limit(opts.IntakeLimiter)).Post("/intake/{slug}", public.IntakeSubmit)
		r.With(limit(opts.IntakeLimiter)).Post("/intake/{slug}/", public.IntakeSubmit)

		r.Get("/", public.Homepage)
		// Pages last: any other path is looked up as a (nested) page slug.
		r.Get("/*", public.Page)
	})

	r.NotFound(public.NotFound)
	return r
}

func adminRoutes(r chi.Router, admin *handlers.Admin, auth *handlers.Auth, opts Options) {
	// Auth pages, accessible without a session.
	r.Get("/login", auth.LoginPage)
	r.With(limit(opts.LoginLimiter)).Post("/login", auth.LoginSubmit)
	r.Post("/logout", auth.Logout)

	// 2FA requires auth but not completed 2FA.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/2fa/setup", auth.TwoFASetupPage)
		r.Get("/2fa/verify", auth.TwoFAVerifyPage)
		r.With(limit(opts.LoginLimiter)).Post("/2fa/verify", auth.TwoFAVerifySubmit)
	})

	// Authenticated and 2FA-verified admin area.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Use(middleware.Require2FA)

		r.Get("/", admin.Dashboard)
		r.Get("/dashboard", admin.Dashboard)

		r.Route("/pages", func(r chi.Router) {
			r.Get("/", admin.PagesList)
			r.Get("/new", admin.PageForm)
			r.Post("/", admin.PageSave)
			r.Get("/{id}/edit", admin.PageForm)
			r.Post("/{id}", admin.PageSave)
			r.Post("/{id}/delete", admin.PageDelete)
		})
		r.Post("/api/pages", admin.APIAddPage)

		r.Route("/sections", func(r chi.Router) {
			r.Get("/", admin.SectionsList)
			r.Get("/new", admin.SectionForm)
			r.Post("/", admin.SectionSave)
			r.Get("/{id}/edit", admin.SectionForm)
			r.Post("/{id}", admin.SectionSave)
			r.Post("/{id}/delete", admin.SectionDelete)
		})

		r.Route("/site", func(r chi.Router) {
			r.Get("/banner", admin.BannerEdit)
			r.Post("/banner", admin.BannerSave)
			r.Get("/contact", admin.ContactEdit)
			r.Post("/contact", admin.ContactSave)
			r.Get("/footer", admin.FooterEdit)
			r.Post("/footer", admin.FooterSave)
			crud(r, "/features", admin.FeaturesList, admin.FeatureForm, admin.FeatureSave, admin.FeatureDelete)
			crud(r, "/posts", admin.PostsList, admin.PostForm, admin.PostSave, admin.PostDelete)
			crud(r, "/mini-posts", admin.MiniPostsList, admin.MiniPostForm, admin.MiniPostSave, admin.MiniPostDelete)
			crud(r, "/navigation", admin.NavigationList, admin.NavigationForm, admin.NavigationSave, admin.NavigationDelete)
			crud(r, "/social", admin.SocialList, admin.SocialForm, admin.SocialSave, admin.SocialDelete)
		})

		r.Route("/forms", func(r chi.Router) {
			r.Get("/", admin.FormsList)
			r.Get("/new", admin.FormForm)
			r.Post("/", admin.FormSave)
			r.Get("/{id}/edit", admin.FormForm)
			r.Post("/{id}", admin.FormSave)
			r.Post("/{id}/delete", admin.FormDelete)

			r.Get("/{id}/fields/new", admin.FieldForm)
			r.Post("/{id}/fields", admin.FieldSave)
			r.Get("/{id}/fields/{fieldID}/edit", admin.FieldForm)
			r.Post("/{id}/fields/{fieldID}", admin.FieldSave)
			r.Post("/{id}/fields/{fieldID}/delete", admin.FieldDelete)
		})

		r.Route("/submissions", func(r chi.Router) {
			r.Get("/", admin.SubmissionsList)
			r.Get("/{id}", admin.SubmissionDetail)
			r.Post("/{id}", admin.SubmissionUpdate)
			r.Post("/{id}/delete", admin.SubmissionDelete)
		})

		r.Route("/files", func(r chi.Router) {
			r.Get("/{id}/preview", admin.FilePreview)
			r.Get("/{id}/download", admin.FileDownload)
			r.Post("/{id}/delete", admin.FileDelete)
		})

		// User management, admin only.
		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Get("/", admin.UsersList)
			r.Get("/new", admin.UserNew)
			r.Post("/", admin.UserCreate)
			r.Post("/{id}/reset-2fa", admin.UserResetTwoFA)
			r.Post("/{id}/delete", admin.UserDelete)
		})
	})
}

// crud mounts the list, form, save and delete routes of a site content
// collection. New items post to the collection path.
func crud(r chi.Router, prefix string, list, form, save, del http.HandlerFunc) {
	r.Route(prefix, func(r chi.Router) {
		r.Get("/", list)
		r.Get("/new", form)
		r.Post("/", save)
		r.Get("/{id}/edit", form)
		r.Post("/{id}", save)
		r.Post("/{id}/delete", del)
	})
}

// limit returns rl's middleware, or a pass-through when rl is nil.
func limit(rl *middleware.RateLimiter) func(http.Handler) http.Handler {
	if rl == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return rl.Middleware
}
