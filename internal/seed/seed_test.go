// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package seed

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"hirexfed/internal/models"
	"hirexfed/internal/store"
	"hirexfed/internal/testutil"
)

func testStores(db *sql.DB) Stores {
	return Stores{
		Site:       store.NewSiteStore(db),
		Navigation: store.NewNavigationStore(db),
		Pages:      store.NewPageStore(db),
		Sections:   store.NewSectionStore(db),
		Forms:      store.NewFormStore(db),
	}
}

// recordingRemover deletes forms directly and remembers which it removed.
type recordingRemover struct {
	forms   *store.FormStore
	removed []uuid.UUID
}

func (r *recordingRemover) DeleteForm(ctx context.Context, id uuid.UUID) error {
	r.removed = append(r.removed, id)
	return r.forms.Delete(ctx, id)
}

// testContent touches only rows with test-specific natural keys so it can
// run against a database shared with other packages.
func testContent() *Content {
	return &Content{
		Features: []Feature{{Icon: "fa-gem", Title: "Seed Test Feature", Description: "v1"}},
		Forms: []Form{{
			Slug:           "seed-test-form",
			Title:          "Seed Test Form",
			SuccessMessage: "Thanks",
			Recipients:     []string{"a@example.com", "b@example.com"},
			Fields: []Field{
				{Name: "full_name", Label: "Full Name", Type: "text", Required: true},
				{Name: "email", Label: "Email", Type: "email", Required: true},
				{Name: "topic", Label: "Topic", Type: "select", Choices: []string{"Tax", "Other"}},
			},
		}},
		Pages: []Page{{
			Slug:     "seed-test/page",
			Title:    "Seed Test Page",
			Sections: []Section{{Title: "Intro", Content: "Hello"}, {Title: "More", Content: "World"}},
		}},
		Navigation: []NavItem{{
			Title: "Seed Test Menu",
			URL:   "/seed-test/",
			Order: 900,
			Children: []NavItem{
				{Title: "Seed Test Child", URL: "/seed-test/page/", Order: 10},
			},
		}},
	}
}

func cleanSeedTest(t *testing.T, db *sql.DB) {
	t.Helper()
	db.Exec("DELETE FROM intake_forms WHERE slug = 'seed-test-form'")
	db.Exec("DELETE FROM page_sections WHERE page = 'seed-test/page'")
	db.Exec("DELETE FROM pages WHERE slug = 'seed-test/page'")
	db.Exec("DELETE FROM navigation_items WHERE title = 'Seed Test Menu'")
	db.Exec("DELETE FROM features WHERE title = 'Seed Test Feature'")
}

func TestRunRefusesResetOutsideDev(t *testing.T) {
	// The guard runs before any store is used, so empty stores are fine.
	_, err := Run(context.Background(), Stores{}, nil, testContent(), Options{Reset: true})
	if !errors.Is(err, ErrResetRefused) {
		t.Fatalf("Run error = %v, want ErrResetRefused", err)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	db := testutil.NewTestDB(t)
	cleanSeedTest(t, db)
	t.Cleanup(func() { cleanSeedTest(t, db) })

	ctx := context.Background()
	stores := testStores(db)
	remover := &recordingRemover{forms: stores.Forms}

	first, err := Run(ctx, stores, remover, testContent(), Options{})
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	// feature + form + page + 2 sections + 2 navigation items
	if first.Created != 7 {
		t.Errorf("first run created %d, want 7", first.Created)
	}

	form, err := stores.Forms.FindBySlug(ctx, "seed-test-form")
	if err != nil || form == nil {
		t.Fatalf("FindBySlug: %v, %v", form, err)
	}
	if form.EmailRecipients != "a@example.com\nb@example.com" || !form.IsActive {
		t.Errorf("form = %+v", form)
	}

	// Staff edits: a retitled form and an extra field.
	form.Title = "Edited"
	if err := stores.Forms.Update(ctx, form); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := stores.Forms.CreateField(ctx, &models.IntakeField{FormID: form.ID, Label: "Extra", Name: "extra", FieldType: models.FieldText, SortOrder: 99}); err != nil {
		t.Fatalf("CreateField: %v", err)
	}

	second, err := Run(ctx, stores, remover, testContent(), Options{})
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if second.Created != 0 || second.Deleted != 0 {
		t.Errorf("second run = %+v, want only updates", second)
	}
	if len(remover.removed) != 0 {
		t.Error("safe mode must never delete forms")
	}

	form, _ = stores.Forms.FindBySlug(ctx, "seed-test-form")
	if form.Title != "Seed Test Form" {
		t.Errorf("form title = %q, want the seeded title back", form.Title)
	}
	fields, err := stores.Forms.Fields(ctx, form.ID)
	if err != nil {
		t.Fatalf("Fields: %v", err)
	}
	if len(fields) != 4 {
		t.Errorf("fields = %d, want 3 seeded + 1 extra kept in safe mode", len(fields))
	}
	if fields[0].Name != "full_name" || fields[2].Choices != "Tax\nOther" {
		t.Errorf("fields = %+v", fields)
	}

	secs, err := stores.Sections.ListByPage(ctx, "seed-test/page")
	if err != nil {
		t.Fatalf("ListByPage: %v", err)
	}
	if len(secs) != 2 {
		t.Errorf("sections = %d, want 2", len(secs))
	}

	parent, err := stores.Navigation.FindByTitle(ctx, "Seed Test Menu", nil)
	if err != nil || parent == nil {
		t.Fatalf("FindByTitle: %v, %v", parent, err)
	}
	child, err := stores.Navigation.FindByTitle(ctx, "Seed Test Child", &parent.ID)
	if err != nil || child == nil {
		t.Fatalf("child FindByTitle: %v, %v", child, err)
	}
}

func TestRunResetRecreatesContent(t *testing.T) {
	// Reset empties the site list tables, so it runs on its own schema.
	db := testutil.NewSchemaTestDB(t)
	ctx := context.Background()
	stores := testStores(db)
	remover := &recordingRemover{forms: stores.Forms}

	if _, err := Run(ctx, stores, remover, testContent(), Options{}); err != nil {
		t.Fatalf("initial Run: %v", err)
	}
	old, err := stores.Forms.FindBySlug(ctx, "seed-test-form")
	if err != nil || old == nil {
		t.Fatalf("FindBySlug: %v, %v", old, err)
	}

	// State a reset must throw away: a staff field, a submission with a
	// file and a feature that is not part of the content.
	if err := stores.Forms.CreateField(ctx, &models.IntakeField{FormID: old.ID, Label: "Extra", Name: "extra", FieldType: models.FieldText, SortOrder: 99}); err != nil {
		t.Fatalf("CreateField: %v", err)
	}
	subs := store.NewSubmissionStore(db)
	sub := &models.IntakeSubmission{
		FormID: old.ID,
		Email:  "jane@example.com",
		Data:   map[string]any{"full_name": "Jane Doe", "email": "jane@example.com"},
		Labels: map[string]string{"full_name": "Full Name", "email": "Email"},
	}
	if err := subs.Create(ctx, sub); err != nil {
		t.Fatalf("create submission: %v", err)
	}
	files := store.NewFileStore(db)
	file := &models.IntakeFile{
		SubmissionID:     sub.ID,
		FieldName:        "documents",
		StorageKey:       "intake/2026/10/seed-reset.pdf",
		OriginalFilename: "resume.pdf",
		ContentType:      "application/pdf",
		SizeBytes:        1024,
	}
	if err := files.Create(ctx, file); err != nil {
		t.Fatalf("create file: %v", err)
	}
	if err := stores.Site.SaveFeature(ctx, &models.Feature{Icon: "fa-star", Title: "Staff Feature"}); err != nil {
		t.Fatalf("SaveFeature: %v", err)
	}

	report, err := Run(ctx, stores, remover, testContent(), Options{Reset: true, Dev: true})
	if err != nil {
		t.Fatalf("reset Run: %v", err)
	}
	if report.Deleted == 0 {
		t.Errorf("reset report = %+v, want deletions", report)
	}
	if diff := cmp.Diff([]uuid.UUID{old.ID}, remover.removed); diff != "" {
		t.Errorf("removed forms (-want +got):\n%s", diff)
	}

	form, err := stores.Forms.FindBySlug(ctx, "seed-test-form")
	if err != nil || form == nil {
		t.Fatalf("FindBySlug after reset: %v, %v", form, err)
	}
	if form.ID == old.ID {
		t.Error("form was kept instead of recreated")
	}
	fields, err := stores.Forms.Fields(ctx, form.ID)
	if err != nil {
		t.Fatalf("Fields: %v", err)
	}
	var names []string
	for _, f := range fields {
		names = append(names, f.Name)
	}
	if diff := cmp.Diff([]string{"full_name", "email", "topic"}, names); diff != "" {
		t.Errorf("fields after reset (-want +got):\n%s", diff)
	}

	if got, err := subs.FindByID(ctx, sub.ID); err != nil || got != nil {
		t.Errorf("submission after reset = %+v, %v; want it deleted", got, err)
	}
	if got, err := files.FindByID(ctx, file.ID); err != nil || got != nil {
		t.Errorf("file row after reset = %+v, %v; want it deleted", got, err)
	}

	features, err := stores.Site.Features(ctx)
	if err != nil {
		t.Fatalf("Features: %v", err)
	}
	if len(features) != 1 || features[0].Title != "Seed Test Feature" {
		t.Errorf("features after reset = %+v, want only the seeded one", features)
	}
	secs, err := stores.Sections.ListByPage(ctx, "seed-test/page")
	if err != nil {
		t.Fatalf("ListByPage: %v", err)
	}
	if len(secs) != 2 {
		t.Errorf("sections after reset = %d, want 2", len(secs))
	}

	// Outside development the override lets the reset through.
	if _, err := Run(ctx, stores, remover, testContent(), Options{Reset: true, Force: true}); err != nil {
		t.Fatalf("forced reset: %v", err)
	}
	if len(remover.removed) != 2 {
		t.Errorf("forced reset removed %d forms in total, want 2", len(remover.removed))
	}
}
