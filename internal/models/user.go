// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the records stored in PostgreSQL: staff users,
// pages and sections, site content and the intake forms with their
// submissions and files.
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is a staff member's permission level in the admin area.
type Role string

const (
	// RoleAdmin also manages staff accounts.
	RoleAdmin Role = "admin"
	// RoleStaff works submissions and edits content.
	RoleStaff Role = "staff"
)

// ParseRole accepts a role name from a form, ignoring case and
// surrounding space.
func ParseRole(s string) (Role, bool) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleStaff:
		return r, true
	}
	return "", false
}

// Label is the role name shown in the staff list.
func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "Administrator"
	case RoleStaff:
		return "Staff"
	}
	return string(r)
}

// User is a staff account. Sign-in needs the password and a TOTP code.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name"`
	Role         Role      `json:"role"`
	TOTPSecret   *string   `json:"-"`
	TOTPEnabled  bool      `json:"totp_enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Needs2FASetup reports whether the user still has to enrol an
// authenticator. A secret alone does not count until a code verified it.
func (u *User) Needs2FASetup() bool {
	return !u.TOTPEnabled
}
