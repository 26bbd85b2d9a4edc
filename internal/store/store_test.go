// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"testing"

	"hirexfed/internal/testutil"
)

func testDB(t *testing.T) *sql.DB {
	return testutil.NewTestDB(t)
}

// cleanUsers removes test accounts by email, ignoring case.
func cleanUsers(t *testing.T, db *sql.DB, emails ...string) {
	t.Helper()
	for _, email := range emails {
		db.Exec("DELETE FROM users WHERE email = lower($1)", email)
	}
}

// cleanPages removes test pages and their sections by slug. Call in t.Cleanup().
func cleanPages(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, slug := range slugs {
		db.Exec("DELETE FROM page_sections WHERE page = $1", slug)
		db.Exec("DELETE FROM pages WHERE slug = $1", slug)
	}
}

// cleanForms removes test forms by slug; fields, submissions and files
// cascade. Call in t.Cleanup().
func cleanForms(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, slug := range slugs {
		db.Exec("DELETE FROM intake_forms WHERE slug = $1", slug)
	}
}

func testCtx() context.Context { return context.Background() }
