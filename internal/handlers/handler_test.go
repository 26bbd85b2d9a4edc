// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler integration
// tests. Tests are skipped when PostgreSQL or Valkey are unavailable.
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"hirexfed/internal/cache"
	"hirexfed/internal/engine"
	"hirexfed/internal/intake"
	"hirexfed/internal/middleware"
	"hirexfed/internal/pages"
	"hirexfed/internal/render"
	"hirexfed/internal/session"
	"hirexfed/internal/storage"
	"hirexfed/internal/store"
	"hirexfed/internal/testutil"
)

func testDB(t *testing.T) *sql.DB {
	return testutil.NewTestDB(t)
}

func testValkeyClient(t *testing.T) *redis.Client {
	return testutil.NewTestValkey(t, "session:*", "flash:*", "page:*")
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB        *sql.DB
	Valkey    *redis.Client
	Renderer  *render.Renderer
	Sessions  *session.Store
	Stores    Stores
	Blobs     *storage.Disk
	Engine    *engine.Engine
	PageCache *cache.PageCache
	Pages     *pages.Service
	Intake    *intake.Service
	Admin     *Admin
	Auth      *Auth
	Public    *Public
}

// newTestEnv creates a complete test environment with all handler dependencies.
// Blobs live in a temporary directory; notifications are disabled.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)

	renderer, err := render.New(true, nil)
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	eng, err := engine.New(nil)
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	blobs, err := storage.NewDisk(t.TempDir())
	if err != nil {
		t.Fatalf("storage.NewDisk: %v", err)
	}

	stores := Stores{
		Users:       store.NewUserStore(db),
		Pages:       store.NewPageStore(db),
		Sections:    store.NewSectionStore(db),
		Site:        store.NewSiteStore(db),
		Navigation:  store.NewNavigationStore(db),
		Forms:       store.NewFormStore(db),
		Submissions: store.NewSubmissionStore(db),
		Files:       store.NewFileStore(db),
	}
	sessions := session.NewStore(vk, false)
	pageCache := cache.NewPageCache(vk, time.Minute)

	pageService := pages.NewService(pages.Repositories{
		Pages:      stores.Pages,
		Sections:   stores.Sections,
		Site:       stores.Site,
		Navigation: stores.Navigation,
	})
	intakeService := intake.NewService(intake.Repositories{
		Forms:       stores.Forms,
		Submissions: stores.Submissions,
		Files:       stores.Files,
	}, blobs, nil, nil, "http://localhost:8080")

	return &testEnv{
		DB:        db,
		Valkey:    vk,
		Renderer:  renderer,
		Sessions:  sessions,
		Stores:    stores,
		Blobs:     blobs,
		Engine:    eng,
		PageCache: pageCache,
		Pages:     pageService,
		Intake:    intakeService,
		Admin:     NewAdmin(renderer, sessions, stores, pageService, intakeService, blobs, pageCache),
		Auth:      NewAuth(renderer, sessions, stores.Users),
		Public:    NewPublic(eng, pageService, intakeService, sessions, blobs, pageCache, "http://localhost:8080"),
	}
}

// ctxWithSession adds session data the way LoadSession does.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return middleware.WithSession(ctx, data)
}

// testSession creates a session.Data for testing.
func testSession(userID uuid.UUID, email, role string, twoFADone bool) *session.Data {
	return &session.Data{
		UserID:      userID,
		Email:       email,
		DisplayName: "Test User",
		Role:        role,
		TwoFADone:   twoFADone,
	}
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	return withChiURLParams(r, key, value)
}

// withChiURLParams adds chi URL parameters given as key, value pairs.
func withChiURLParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// withChiURLParamAndSession adds both chi URL param and session to a request.
func withChiURLParamAndSession(r *http.Request, key, value string, sess *session.Data) *http.Request {
	r = withChiURLParam(r, key, value)
	return r.WithContext(ctxWithSession(r.Context(), sess))
}

// testUser creates a staff account removed at cleanup.
func testUser(t *testing.T, env *testEnv, email string) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	env.DB.Exec("DELETE FROM users WHERE email = $1", email)
	u, err := env.Stores.Users.Create(ctx, email, "password123", "Test User", "admin")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	t.Cleanup(func() { env.DB.Exec("DELETE FROM users WHERE id = $1", u.ID) })
	return u.ID
}

// cleanPages removes test pages and their sections by slug.
func cleanPages(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, s := range slugs {
		db.Exec("DELETE FROM page_sections WHERE page = $1", s)
		db.Exec("DELETE FROM pages WHERE slug = $1", s)
	}
}

// cleanForms removes test forms by slug; fields and submissions cascade.
func cleanForms(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, s := range slugs {
		db.Exec("DELETE FROM intake_forms WHERE slug = $1", s)
	}
}
