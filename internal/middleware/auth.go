// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"hirexfed/internal/models"
	"hirexfed/internal/session"
)

type sessionCtxKey struct{}

// apiPrefix marks admin endpoints that speak JSON. They get status codes
// instead of redirects when the staff session is missing or lacks rights.
const apiPrefix = "/admin/api/"

// LoadSession reads the staff session from Valkey into the request
// context. It never rejects a request; RequireAuth does that.
func LoadSession(store *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, err := store.Get(r.Context(), r)
			if err != nil {
				slog.Warn("session lookup failed", "error", err, "path", r.URL.Path)
			}
			if data != nil {
				r = r.WithContext(WithSession(r.Context(), data))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithSession returns a copy of ctx carrying the staff session.
func WithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, data)
}

// SessionFromCtx returns the staff session, or nil for anonymous requests.
func SessionFromCtx(ctx context.Context) *session.Data {
	data, _ := ctx.Value(sessionCtxKey{}).(*session.Data)
	return data
}

// RequireAuth sends anonymous visitors to the login page. JSON endpoints
// answer 401 instead.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if SessionFromCtx(r.Context()) == nil {
			if isAPI(r) {
				rejectJSON(w, http.StatusUnauthorized, "authentication required")
				return
			}
			http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Require2FA holds staff on the setup page until their second factor is
// enrolled and verified for this session. Runs after RequireAuth.
func Require2FA(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := SessionFromCtx(r.Context())
		if sess != nil && !sess.TwoFADone {
			if isAPI(r) {
				rejectJSON(w, http.StatusUnauthorized, "two-factor verification required")
				return
			}
			http.Redirect(w, r, "/admin/2fa/setup", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin limits staff management to the admin role.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := SessionFromCtx(r.Context())
		if sess == nil || models.Role(sess.Role) != models.RoleAdmin {
			if isAPI(r) {
				rejectJSON(w, http.StatusForbidden, "admin role required")
				return
			}
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isAPI(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, apiPrefix)
}

func rejectJSON(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
