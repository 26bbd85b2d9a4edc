// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the HireXFed site.
// Handlers are grouped by concern (admin, public, auth) and receive
// their dependencies through the handler struct.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"hirexfed/internal/store"
)

// Stores groups the database stores shared by the handler groups.
type Stores struct {
	Users       *store.UserStore
	Pages       *store.PageStore
	Sections    *store.SectionStore
	Site        *store.SiteStore
	Navigation  *store.NavigationStore
	Forms       *store.FormStore
	Submissions *store.SubmissionStore
	Files       *store.FileStore
}

// dateLayout is the format of HTML date inputs.
const dateLayout = "2006-01-02"

// urlID parses a UUID URL parameter. It writes a 400 response and returns
// false when the parameter is malformed.
func urlID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// optionalID returns the "id" URL parameter, or uuid.Nil on "new" routes.
// ok is false when a present parameter is malformed.
func optionalID(r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		return uuid.Nil, true
	}
	id, err := uuid.Parse(raw)
	return id, err == nil
}

// formValue returns the trimmed form value.
func formValue(r *http.Request, name string) string {
	return strings.TrimSpace(r.FormValue(name))
}

// formBool reports whether a checkbox was ticked.
func formBool(r *http.Request, name string) bool {
	switch r.FormValue(name) {
	case "on", "1", "true", "yes":
		return true
	}
	return false
}

// formInt parses an integer input, falling back to def when it is empty
// or malformed.
func formInt(r *http.Request, name string, def int) int {
	n, err := strconv.Atoi(formValue(r, name))
	if err != nil {
		return def
	}
	return n
}

// formUUID parses an optional UUID input. Empty or malformed input is nil.
func formUUID(r *http.Request, name string) *uuid.UUID {
	id, err := uuid.Parse(formValue(r, name))
	if err != nil {
		return nil
	}
	return &id
}

// formDate parses an optional date input.
func formDate(r *http.Request, name string) (*time.Time, error) {
	v := formValue(r, name)
	if v == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, v, time.UTC)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write json failed", "error", err)
	}
}

// writeJSONError writes {"error": msg} with the given status.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
