// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"context"
	"testing"
)

func TestEnsureAdminIdempotent(t *testing.T) {
	db := testDB(t)
	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	// Other packages may share this database, so the table is not cleared
	// first; the second call must be a no-op either way.
	ctx := context.Background()
	if err := EnsureAdmin(ctx, db, "admin@hirexfed.local", "admin"); err != nil {
		t.Fatalf("first EnsureAdmin: %v", err)
	}
	var before int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&before); err != nil {
		t.Fatalf("count users: %v", err)
	}
	if before < 1 {
		t.Fatalf("expected at least 1 user, got %d", before)
	}

	if err := EnsureAdmin(ctx, db, "second-admin@hirexfed.local", "admin"); err != nil {
		t.Fatalf("second EnsureAdmin: %v", err)
	}
	var after int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&after); err != nil {
		t.Fatalf("count users: %v", err)
	}
	if after != before {
		t.Errorf("user count changed from %d to %d on second call", before, after)
	}
}
