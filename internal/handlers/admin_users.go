// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"hirexfed/internal/middleware"
	"hirexfed/internal/models"
	"hirexfed/internal/render"
	"hirexfed/internal/store"
)

// minPasswordLen is the shortest accepted staff password.
const minPasswordLen = 8

// UsersList renders the staff accounts.
func (a *Admin) UsersList(w http.ResponseWriter, r *http.Request) {
	users, err := a.stores.Users.List(r.Context())
	if err != nil {
		slog.Error("list users failed", "error", err)
	}

	a.page(w, r, "users_list", &render.PageData{
		Title:   "Users",
		Section: "users",
		Data:    map[string]any{"Items": users},
	})
}

// UserResetTwoFA resets another user's 2FA, forcing re-setup on next login.
func (a *Admin) UserResetTwoFA(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	targetID, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	// Cannot reset your own 2FA.
	if sess != nil && targetID == sess.UserID {
		http.Error(w, "Cannot reset your own 2FA", http.StatusForbidden)
		return
	}

	if err := a.stores.Users.ResetTOTP(r.Context(), targetID); err != nil {
		slog.Error("reset 2fa failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	slog.Info("2fa reset by admin", "admin", sessionEmail(sess), "target_user", targetID)
	a.redirect(w, r, "/admin/users", "Two-factor authentication reset.")
}

// UserDelete removes another staff account. Submissions assigned to it
// become unassigned.
func (a *Admin) UserDelete(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	targetID, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	if sess != nil && targetID == sess.UserID {
		http.Error(w, "Cannot delete your own account", http.StatusForbidden)
		return
	}

	if err := a.stores.Users.Delete(r.Context(), targetID); err != nil {
		slog.Error("delete user failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	slog.Info("user deleted", "admin", sessionEmail(sess), "target_user", targetID)
	a.redirect(w, r, "/admin/users", "User deleted.")
}

// UserNew renders the new user creation form.
func (a *Admin) UserNew(w http.ResponseWriter, r *http.Request) {
	a.renderUserForm(w, r, http.StatusOK, "", "", string(models.RoleStaff), "")
}

func (a *Admin) renderUserForm(w http.ResponseWriter, r *http.Request, status int, email, displayName, role, errMsg string) {
	a.pageStatus(w, r, status, "user_form", &render.PageData{
		Title:   "New User",
		Section: "users",
		Data: map[string]any{
			"Error":       errMsg,
			"Email":       email,
			"DisplayName": displayName,
			"Role":        role,
		},
	})
}

// UserCreate handles the new user form submission.
func (a *Admin) UserCreate(w http.ResponseWriter, r *http.Request) {
	email := strings.ToLower(formValue(r, "email"))
	displayName := formValue(r, "display_name")
	password := r.FormValue("password")
	role, roleOK := models.ParseRole(r.FormValue("role"))

	var errMsg string
	switch {
	case email == "":
		errMsg = "Email is required."
	case displayName == "":
		errMsg = "Display name is required."
	case tooLong(displayName, maxNameLen) || tooLong(email, maxShortLen):
		errMsg = "Name or email is too long."
	case len(password) < minPasswordLen:
		errMsg = "Password must be at least 8 characters."
	case !roleOK:
		errMsg = "Invalid role."
	}
	if errMsg == "" {
		if _, err := mail.ParseAddress(email); err != nil {
			errMsg = "Enter a valid email address."
		}
	}
	if errMsg != "" {
		a.renderUserForm(w, r, http.StatusUnprocessableEntity, email, displayName, string(role), errMsg)
		return
	}

	if _, err := a.stores.Users.Create(r.Context(), email, password, displayName, role); err != nil {
		msg := "Failed to create user."
		if errors.Is(err, store.ErrEmailTaken) {
			msg = "A user with this email already exists."
		} else {
			slog.Error("create user failed", "error", err)
		}
		a.renderUserForm(w, r, http.StatusUnprocessableEntity, email, displayName, string(role), msg)
		return
	}

	slog.Info("user created", "admin", sessionEmail(middleware.SessionFromCtx(r.Context())), "new_user", email, "role", role)
	a.redirect(w, r, "/admin/users", "User created. They set up 2FA on first sign-in.")
}
