// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// EnsureAdmin creates the first admin account while the users table is
// empty. It enrols 2FA at first sign-in like any other account. Once
// staff exist it does nothing, so changing ADMIN_PASSWORD later has no
// effect.
func EnsureAdmin(ctx context.Context, db *sql.DB, email, password string) error {
	var exists bool
	if err := db.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM users)").Scan(&exists); err != nil {
		return fmt.Errorf("bootstrap admin: check users: %w", err)
	}
	if exists {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("bootstrap admin: hash password: %w", err)
	}
	email = strings.ToLower(strings.TrimSpace(email))

	// ON CONFLICT covers two replicas bootstrapping at once.
	if _, err := db.ExecContext(ctx, `
		INSERT INTO users (email, password_hash, display_name, role)
		VALUES ($1, $2, 'Administrator', 'admin')
		ON CONFLICT (email) DO NOTHING
	`, email, string(hash)); err != nil {
		return fmt.Errorf("bootstrap admin: insert: %w", err)
	}

	slog.Warn("bootstrap admin account created; sign in and enrol 2FA", "email", email)
	return nil
}
