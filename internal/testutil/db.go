// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package testutil holds helpers shared by integration tests.
package testutil

import (
	"context"
	"database/sql"
	"net"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"hirexfed/internal/config"
	"hirexfed/internal/database"
)

// NewTestDB connects to the PostgreSQL instance described by the usual
// POSTGRES_* variables and applies migrations. The test is skipped when
// the database is unreachable; the pool is closed when it ends.
func NewTestDB(t testing.TB) *sql.DB {
	t.Helper()

	cfg, err := config.Load()
	if err != nil {
		t.Skipf("skipping integration test: config: %v", err)
	}
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		t.Skipf("skipping integration test: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// NewSchemaTestDB is NewTestDB on a private schema that is dropped when
// the test ends. Tests that empty whole tables use it so other packages
// running at the same time keep their rows.
func NewSchemaTestDB(t testing.TB) *sql.DB {
	t.Helper()

	base := NewTestDB(t)
	schema := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if _, err := base.Exec("CREATE SCHEMA " + schema); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	t.Cleanup(func() { base.Exec("DROP SCHEMA " + schema + " CASCADE") })

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	db, err := database.Connect(cfg.DSN() + "&search_path=" + url.QueryEscape(schema+",public"))
	if err != nil {
		t.Fatalf("connect to %s: %v", schema, err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate %s: %v", schema, err)
	}
	return db
}

// ValkeyDB is the logical database integration tests use, away from the
// session and cache databases of a local dev server.
const ValkeyDB = 15

// NewTestValkey connects to the Valkey described by VALKEY_* on ValkeyDB.
// Keys matching patterns are deleted when the test ends. The test is
// skipped when Valkey is unreachable.
func NewTestValkey(t testing.TB, patterns ...string) *redis.Client {
	t.Helper()

	cfg, err := config.Load()
	if err != nil {
		t.Skipf("skipping integration test: config: %v", err)
	}
	client := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.ValkeyHost, cfg.ValkeyPort),
		Password: cfg.ValkeyPassword,
		DB:       ValkeyDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		ctx := context.Background()
		for _, pattern := range patterns {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})
	return client
}
