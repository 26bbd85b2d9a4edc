// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// admin_crud_test.go contains handler integration tests for the admin CRUD
// handlers: pages, sections, site content, intake forms and fields,
// submissions and users. Tests are skipped when PostgreSQL or Valkey are
// unavailable.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"

	"hirexfed/internal/intake"
	"hirexfed/internal/models"
	"hirexfed/internal/storage"
)

// --------------------------------------------------------------------------
// Pages
// --------------------------------------------------------------------------

func TestPageSave_CreateAndConflict(t *testing.T) {
	env := newTestEnv(t)
	cleanPages(t, env.DB, "crud-test-page")
	t.Cleanup(func() { cleanPages(t, env.DB, "crud-test-page") })
	ctx := context.Background()

	form := url.Values{
		"title":         {"CRUD Test Page"},
		"slug":          {""},
		"template_type": {"generic"},
		"is_published":  {"1"},
	}
	rec := httptest.NewRecorder()
	env.Admin.PageSave(rec, postForm("/admin/pages", form))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d: %s", rec.Code, http.StatusSeeOther, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != "/admin/pages" {
		t.Errorf("Location: got %q, want /admin/pages", loc)
	}
	p, err := env.Stores.Pages.FindBySlug(ctx, "crud-test-page")
	if err != nil || p == nil {
		t.Fatalf("page not created: %v", err)
	}
	if !p.IsPublished || p.TemplateType != models.TemplateGeneric {
		t.Errorf("page = %+v, want published generic", p)
	}

	// A second page with the same slug is rejected.
	rec = httptest.NewRecorder()
	env.Admin.PageSave(rec, postForm("/admin/pages", form))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("duplicate status: got %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
	if !strings.Contains(rec.Body.String(), "already exists") {
		t.Error("expected slug conflict message")
	}

	// Editing the page itself keeps its slug.
	form.Set("title", "CRUD Test Page Renamed")
	form.Set("slug", "crud-test-page")
	rec = httptest.NewRecorder()
	req := withChiURLParam(postForm("/admin/pages/"+p.ID.String(), form), "id", p.ID.String())
	env.Admin.PageSave(rec, req)
	if rec.Code != http.StatusSeeOther {
		t.Errorf("edit status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
}

func TestPageSave_Validation(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.Admin.PageSave(rec, postForm("/admin/pages", url.Values{"title": {""}}))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
}

func TestPageSave_InvalidID(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	req := withChiURLParam(postForm("/admin/pages/x", url.Values{"title": {"X"}}), "id", "not-a-uuid")
	env.Admin.PageSave(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestAPIAddPage(t *testing.T) {
	env := newTestEnv(t)
	cleanPages(t, env.DB, "api-added-page")
	t.Cleanup(func() { cleanPages(t, env.DB, "api-added-page") })

	call := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/admin/api/pages", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		env.Admin.APIAddPage(rec, req)
		return rec
	}

	rec := call(`{"title":"API Added Page","template_type":"generic","content":"Hello"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["url"] != "/api-added-page/" {
		t.Errorf("url = %q, want /api-added-page/", resp["url"])
	}
	if _, err := uuid.Parse(resp["id"]); err != nil {
		t.Errorf("id = %q is not a UUID", resp["id"])
	}

	if rec := call(`{"title":"API Added Page"}`); rec.Code != http.StatusConflict {
		t.Errorf("duplicate status: got %d, want %d", rec.Code, http.StatusConflict)
	}
	if rec := call(`{"title":""}`); rec.Code != http.StatusBadRequest {
		t.Errorf("empty title status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if rec := call(`{not json`); rec.Code != http.StatusBadRequest {
		t.Errorf("bad json status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

// --------------------------------------------------------------------------
// Sections
// --------------------------------------------------------------------------

// multipartRequest builds a multipart POST with text fields and an
// optional PNG under the image input.
func multipartRequest(t *testing.T, target string, fields map[string]string, withImage bool) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	if withImage {
		fw, err := mw.CreateFormFile("image", "photo.png")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if err := png.Encode(fw, image.NewRGBA(image.Rect(0, 0, 40, 20))); err != nil {
			t.Fatalf("encode png: %v", err)
		}
	}
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestSectionSave_WithImageAndDelete(t *testing.T) {
	env := newTestEnv(t)
	cleanPages(t, env.DB, "crud-section-page")
	t.Cleanup(func() { cleanPages(t, env.DB, "crud-section-page") })
	ctx := context.Background()

	req := multipartRequest(t, "/admin/sections", map[string]string{
		"page":         "crud-section-page",
		"section_type": "main_content",
		"title":        "Intro",
		"content":      "Some **markdown**.",
		"is_active":    "1",
	}, true)
	rec := httptest.NewRecorder()
	env.Admin.SectionSave(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d: %s", rec.Code, http.StatusSeeOther, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != "/admin/sections?page=crud-section-page" {
		t.Errorf("Location: got %q", loc)
	}

	secs, err := env.Stores.Sections.ListByPage(ctx, "crud-section-page")
	if err != nil || len(secs) != 1 {
		t.Fatalf("sections = %d, err = %v; want 1", len(secs), err)
	}
	s := secs[0]
	if s.ImageKey == nil || !strings.HasPrefix(*s.ImageKey, "media/") {
		t.Fatalf("image key = %v, want media/ key", s.ImageKey)
	}
	key := *s.ImageKey
	if !env.Blobs.Exists(key) {
		t.Error("uploaded image should be stored")
	}

	// The page does not exist, so the section is an orphan.
	orphans, err := env.Pages.Orphans(ctx)
	if err != nil {
		t.Fatalf("orphans: %v", err)
	}
	found := false
	for _, o := range orphans {
		if o.ID == s.ID {
			found = true
		}
	}
	if !found {
		t.Error("section of a missing page should be reported as orphan")
	}

	rec = httptest.NewRecorder()
	env.Admin.SectionDelete(rec, withChiURLParam(httptest.NewRequest(http.MethodPost, "/", nil), "id", s.ID.String()))
	if rec.Code != http.StatusSeeOther {
		t.Errorf("delete status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if env.Blobs.Exists(key) {
		t.Error("image should be deleted with the section")
	}
}

func TestSectionSave_RejectsNonImage(t *testing.T) {
	env := newTestEnv(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("page", "crud-section-page")
	mw.WriteField("section_type", "main_content")
	mw.WriteField("title", "Bad")
	fw, _ := mw.CreateFormFile("image", "notes.png")
	fw.Write([]byte("definitely not an image"))
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/admin/sections", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	env.Admin.SectionSave(rec, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
}

// --------------------------------------------------------------------------
// Site content
// --------------------------------------------------------------------------

func TestBannerSave(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	before, _ := env.Stores.Site.Banner(ctx)
	t.Cleanup(func() {
		if before != nil {
			env.Stores.Site.SaveBanner(ctx, before)
		}
	})

	req := multipartRequest(t, "/admin/site/banner", map[string]string{
		"heading":     "Welcome",
		"subheading":  "Tax help",
		"button_text": "Book",
		"button_link": "/intake/client-consultation/",
	}, false)
	rec := httptest.NewRecorder()
	env.Admin.BannerSave(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d: %s", rec.Code, http.StatusSeeOther, rec.Body.String())
	}
	b, err := env.Stores.Site.Banner(ctx)
	if err != nil || b == nil || b.Heading != "Welcome" {
		t.Errorf("banner = %+v, err = %v", b, err)
	}

	rec = httptest.NewRecorder()
	env.Admin.BannerSave(rec, postForm("/admin/site/banner", url.Values{"heading": {"X"}, "button_link": {"javascript:alert(1)"}}))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad link status: got %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
}

func TestFeatureCRUD(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	form := url.Values{"icon": {"fa-rocket"}, "title": {"CRUD Feature"}, "description": {"Fast."}}
	rec := httptest.NewRecorder()
	env.Admin.FeatureSave(rec, postForm("/admin/site/features", form))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	f, err := env.Stores.Site.FindFeatureByTitle(ctx, "CRUD Feature")
	if err != nil || f == nil {
		t.Fatalf("feature not created: %v", err)
	}

	form.Set("icon", "fa-unknown")
	rec = httptest.NewRecorder()
	req := withChiURLParam(postForm("/admin/site/features/"+f.ID.String(), form), "id", f.ID.String())
	env.Admin.FeatureSave(rec, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad icon status: got %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}

	rec = httptest.NewRecorder()
	env.Admin.FeatureDelete(rec, withChiURLParam(httptest.NewRequest(http.MethodPost, "/", nil), "id", f.ID.String()))
	if rec.Code != http.StatusSeeOther {
		t.Errorf("delete status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if f, _ := env.Stores.Site.FindFeature(ctx, f.ID); f != nil {
		t.Error("feature should be deleted")
	}
}

func TestFeatureForm_UnknownIDIs404(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.Admin.FeatureForm(rec, withChiURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", uuid.NewString()))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestNavigationSave_ParentRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	t.Cleanup(func() { env.DB.Exec("DELETE FROM navigation_items WHERE title LIKE 'CRUD Nav%'") })

	parent := &models.NavigationItem{Title: "CRUD Nav Parent", URL: "/services/", IsActive: true}
	if err := env.Stores.Navigation.Save(ctx, parent); err != nil {
		t.Fatalf("save parent: %v", err)
	}
	child := &models.NavigationItem{Title: "CRUD Nav Child", URL: "/tax/", ParentID: &parent.ID, IsActive: true}
	if err := env.Stores.Navigation.Save(ctx, child); err != nil {
		t.Fatalf("save child: %v", err)
	}

	tests := []struct {
		name     string
		parentID string
		want     int
	}{
		{"top level", "", http.StatusSeeOther},
		{"under top-level parent", parent.ID.String(), http.StatusSeeOther},
		{"under a child", child.ID.String(), http.StatusUnprocessableEntity},
		{"unknown parent", uuid.NewString(), http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := url.Values{
				"title":     {"CRUD Nav " + tt.name},
				"url":       {"/x/"},
				"parent_id": {tt.parentID},
				"is_active": {"1"},
			}
			rec := httptest.NewRecorder()
			env.Admin.NavigationSave(rec, postForm("/admin/site/navigation", form))
			if rec.Code != tt.want {
				t.Errorf("status: got %d, want %d", rec.Code, tt.want)
			}
		})
	}

	// An item cannot become its own parent.
	form := url.Values{"title": {"CRUD Nav Parent"}, "url": {"/services/"}, "parent_id": {parent.ID.String()}}
	rec := httptest.NewRecorder()
	env.Admin.NavigationSave(rec, withChiURLParam(postForm("/", form), "id", parent.ID.String()))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("self parent status: got %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
}

func TestNestNavigation(t *testing.T) {
	p1, p2 := uuid.New(), uuid.New()
	items := []models.NavigationItem{
		{ID: p1, Title: "A"},
		{ID: p2, Title: "B"},
		{ID: uuid.New(), Title: "B1", ParentID: &p2},
		{ID: uuid.New(), Title: "A1", ParentID: &p1},
	}
	var got []string
	for _, it := range nestNavigation(items) {
		got = append(got, it.Title)
	}
	if strings.Join(got, ",") != "A,A1,B,B1" {
		t.Errorf("order = %v, want A,A1,B,B1", got)
	}
}

func TestSocialSave_RejectsUnknownPlatform(t *testing.T) {
	env := newTestEnv(t)

	form := url.Values{"platform": {"myspace"}, "url": {"https://example.com"}}
	rec := httptest.NewRecorder()
	env.Admin.SocialSave(rec, postForm("/admin/site/social", form))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
}

// --------------------------------------------------------------------------
// Intake forms and fields
// --------------------------------------------------------------------------

func TestFormAndFieldSave(t *testing.T) {
	env := newTestEnv(t)
	cleanForms(t, env.DB, "crud-test-form")
	t.Cleanup(func() { cleanForms(t, env.DB, "crud-test-form") })
	ctx := context.Background()

	form := url.Values{
		"title":            {"CRUD Test Form"},
		"email_recipients": {"Staff@Example.com, owner@example.com"},
		"is_active":        {"1"},
	}
	rec := httptest.NewRecorder()
	env.Admin.FormSave(rec, postForm("/admin/forms", form))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d: %s", rec.Code, http.StatusSeeOther, rec.Body.String())
	}
	f, err := env.Stores.Forms.FindBySlug(ctx, "crud-test-form")
	if err != nil || f == nil {
		t.Fatalf("form not created: %v", err)
	}
	if f.EmailRecipients != "staff@example.com\nowner@example.com" {
		t.Errorf("recipients = %q", f.EmailRecipients)
	}
	if loc := rec.Header().Get("Location"); loc != "/admin/forms/"+f.ID.String()+"/edit" {
		t.Errorf("Location: got %q", loc)
	}

	// Field name is derived from the label.
	field := url.Values{"label": {"Full Name"}, "field_type": {"text"}, "is_required": {"1"}}
	rec = httptest.NewRecorder()
	env.Admin.FieldSave(rec, withChiURLParam(postForm("/", field), "id", f.ID.String()))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("field status: got %d, want %d: %s", rec.Code, http.StatusSeeOther, rec.Body.String())
	}
	fields, _ := env.Stores.Forms.Fields(ctx, f.ID)
	if len(fields) != 1 || fields[0].Name != "full_name" {
		t.Fatalf("fields = %+v, want one named full_name", fields)
	}

	// Names are unique per form.
	rec = httptest.NewRecorder()
	env.Admin.FieldSave(rec, withChiURLParam(postForm("/", field), "id", f.ID.String()))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("duplicate name status: got %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}

	// Select fields need choices.
	rec = httptest.NewRecorder()
	env.Admin.FieldSave(rec, withChiURLParam(postForm("/", url.Values{"label": {"Service"}, "field_type": {"select"}}), "id", f.ID.String()))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("choiceless select status: got %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}

	// Fields of another form are not reachable through this one.
	rec = httptest.NewRecorder()
	req := withChiURLParams(httptest.NewRequest(http.MethodGet, "/", nil), "id", uuid.NewString(), "fieldID", fields[0].ID.String())
	env.Admin.FieldForm(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("foreign field status: got %d, want %d", rec.Code, http.StatusNotFound)
	}

	rec = httptest.NewRecorder()
	req = withChiURLParams(httptest.NewRequest(http.MethodPost, "/", nil), "id", f.ID.String(), "fieldID", fields[0].ID.String())
	env.Admin.FieldDelete(rec, req)
	if rec.Code != http.StatusSeeOther {
		t.Errorf("field delete status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
}

func TestFormSave_RejectsBadRecipient(t *testing.T) {
	env := newTestEnv(t)

	form := url.Values{"title": {"Bad Recipients"}, "email_recipients": {"not-an-email"}}
	rec := httptest.NewRecorder()
	env.Admin.FormSave(rec, postForm("/admin/forms", form))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
}

// --------------------------------------------------------------------------
// Submissions and files
// --------------------------------------------------------------------------

// seedSubmission creates a form accepting documents and one submission
// with a PDF attachment.
func seedSubmission(t *testing.T, env *testEnv) (*models.IntakeSubmission, *models.IntakeFile) {
	t.Helper()
	ctx := context.Background()
	cleanForms(t, env.DB, "crud-sub-form")
	t.Cleanup(func() { cleanForms(t, env.DB, "crud-sub-form") })

	f := &models.IntakeForm{Title: "CRUD Sub Form", Slug: "crud-sub-form", IsActive: true, AllowFileUploads: true}
	if err := env.Stores.Forms.Create(ctx, f); err != nil {
		t.Fatalf("create form: %v", err)
	}
	if err := env.Stores.Forms.CreateField(ctx, &models.IntakeField{
		FormID: f.ID, Label: "Email", Name: "email", FieldType: models.FieldEmail, IsRequired: true,
	}); err != nil {
		t.Fatalf("create field: %v", err)
	}
	form, err := env.Intake.Form(ctx, "crud-sub-form")
	if err != nil {
		t.Fatalf("load form: %v", err)
	}
	pdf := []byte("%PDF-1.4\n%test document\n")
	sub, err := env.Intake.Submit(ctx, form, intake.Input{
		Values: map[string][]string{"email": {"client@example.com"}},
		Files: map[string][]intake.Upload{
			intake.GenericUploadField: {intake.MemoryUpload("return.pdf", "application/pdf", pdf)},
		},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	files, err := env.Stores.Files.ListBySubmission(ctx, sub.ID)
	if err != nil || len(files) != 1 {
		t.Fatalf("files = %d, err = %v", len(files), err)
	}
	return sub, &files[0]
}

func TestSubmissionUpdate(t *testing.T) {
	env := newTestEnv(t)
	sub, _ := seedSubmission(t, env)
	assignee := testUser(t, env, "assignee@hirexfed.test")
	ctx := context.Background()

	form := url.Values{
		"status":       {"contacted"},
		"priority":     {"high"},
		"assigned_to":  {assignee.String()},
		"contacted_at": {"2026-10-01"},
		"notes":        {"Called back."},
	}
	rec := httptest.NewRecorder()
	env.Admin.SubmissionUpdate(rec, withChiURLParam(postForm("/", form), "id", sub.ID.String()))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d: %s", rec.Code, http.StatusSeeOther, rec.Body.String())
	}

	got, _ := env.Stores.Submissions.FindByID(ctx, sub.ID)
	if got.Status != models.StatusContacted || got.Priority != models.PriorityHigh {
		t.Errorf("workflow = %s/%s", got.Status, got.Priority)
	}
	if got.AssignedTo == nil || *got.AssignedTo != assignee {
		t.Errorf("assigned_to = %v, want %v", got.AssignedTo, assignee)
	}
	if got.ContactedAt == nil || got.ContactedAt.Format(dateLayout) != "2026-10-01" {
		t.Errorf("contacted_at = %v", got.ContactedAt)
	}

	tests := []struct {
		name  string
		field string
		value string
	}{
		{"bad status", "status", "archived"},
		{"bad priority", "priority", "meh"},
		{"bad date", "follow_up_at", "01/10/2026"},
		{"unknown assignee", "assigned_to", uuid.NewString()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bad := url.Values{"status": {"new"}, "priority": {"normal"}}
			bad.Set(tt.field, tt.value)
			rec := httptest.NewRecorder()
			env.Admin.SubmissionUpdate(rec, withChiURLParam(postForm("/", bad), "id", sub.ID.String()))
			if rec.Code != http.StatusUnprocessableEntity {
				t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnprocessableEntity)
			}
		})
	}
}

func TestSubmissionsList_Filters(t *testing.T) {
	env := newTestEnv(t)
	sub, _ := seedSubmission(t, env)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/submissions?form="+sub.FormID.String()+"&status=new&q=CLIENT@", nil)
	env.Admin.SubmissionsList(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "client@example.com") {
		t.Error("filtered list should contain the submission")
	}

	rec = httptest.NewRecorder()
	env.Admin.SubmissionsList(rec, httptest.NewRequest(http.MethodGet, "/admin/submissions?q=nobody-matches", nil))
	if strings.Contains(rec.Body.String(), "client@example.com") {
		t.Error("non-matching query should hide the submission")
	}
}

func TestFilePreviewDownloadDelete(t *testing.T) {
	env := newTestEnv(t)
	sub, file := seedSubmission(t, env)

	rec := httptest.NewRecorder()
	env.Admin.FilePreview(rec, withChiURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", file.ID.String()))
	if rec.Code != http.StatusOK {
		t.Fatalf("preview status: got %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q, want application/pdf", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "inline") || !strings.Contains(cd, "return.pdf") {
		t.Errorf("Content-Disposition = %q, want inline with filename", cd)
	}
	if !strings.HasPrefix(rec.Body.String(), "%PDF") {
		t.Error("body should be the stored file")
	}

	rec = httptest.NewRecorder()
	env.Admin.FileDownload(rec, withChiURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", file.ID.String()))
	if cd := rec.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment") {
		t.Errorf("Content-Disposition = %q, want attachment", cd)
	}

	rec = httptest.NewRecorder()
	env.Admin.FileDelete(rec, withChiURLParam(httptest.NewRequest(http.MethodPost, "/", nil), "id", file.ID.String()))
	if loc := rec.Header().Get("Location"); loc != "/admin/submissions/"+sub.ID.String() {
		t.Errorf("Location: got %q", loc)
	}
	if env.Blobs.Exists(file.StorageKey) {
		t.Error("blob should be released once no row references it")
	}

	rec = httptest.NewRecorder()
	env.Admin.FilePreview(rec, withChiURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", file.ID.String()))
	if rec.Code != http.StatusNotFound {
		t.Errorf("deleted file status: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestSubmissionDelete_ReleasesBlobs(t *testing.T) {
	env := newTestEnv(t)
	sub, file := seedSubmission(t, env)

	rec := httptest.NewRecorder()
	env.Admin.SubmissionDelete(rec, withChiURLParam(httptest.NewRequest(http.MethodPost, "/", nil), "id", sub.ID.String()))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if env.Blobs.Exists(file.StorageKey) {
		t.Error("blob should be deleted with the submission")
	}
	if _, err := env.Blobs.Get(context.Background(), file.StorageKey); err != storage.ErrNotFound {
		t.Errorf("Get after delete: err = %v, want ErrNotFound", err)
	}
}

// --------------------------------------------------------------------------
// Users
// --------------------------------------------------------------------------

func TestUserCreate(t *testing.T) {
	env := newTestEnv(t)
	const email = "crud-new-user@hirexfed.test"
	env.DB.Exec("DELETE FROM users WHERE email = $1", email)
	t.Cleanup(func() { env.DB.Exec("DELETE FROM users WHERE email = $1", email) })

	tests := []struct {
		name string
		form url.Values
		want int
	}{
		{"short password", url.Values{"email": {email}, "display_name": {"N"}, "password": {"short"}, "role": {"staff"}}, http.StatusUnprocessableEntity},
		{"bad role", url.Values{"email": {email}, "display_name": {"N"}, "password": {"password123"}, "role": {"root"}}, http.StatusUnprocessableEntity},
		{"created", url.Values{"email": {email}, "display_name": {"N"}, "password": {"password123"}, "role": {"staff"}}, http.StatusSeeOther},
		{"duplicate", url.Values{"email": {email}, "display_name": {"N"}, "password": {"password123"}, "role": {"staff"}}, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			env.Admin.UserCreate(rec, postForm("/admin/users", tt.form))
			if rec.Code != tt.want {
				t.Errorf("status: got %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestUserSelfActionsForbidden(t *testing.T) {
	env := newTestEnv(t)
	id := uuid.New()
	sess := testSession(id, "self@hirexfed.test", "admin", true)

	rec := httptest.NewRecorder()
	env.Admin.UserDelete(rec, withChiURLParamAndSession(httptest.NewRequest(http.MethodPost, "/", nil), "id", id.String(), sess))
	if rec.Code != http.StatusForbidden {
		t.Errorf("self delete status: got %d, want %d", rec.Code, http.StatusForbidden)
	}

	rec = httptest.NewRecorder()
	env.Admin.UserResetTwoFA(rec, withChiURLParamAndSession(httptest.NewRequest(http.MethodPost, "/", nil), "id", id.String(), sess))
	if rec.Code != http.StatusForbidden {
		t.Errorf("self reset status: got %d, want %d", rec.Code, http.StatusForbidden)
	}
}

// --------------------------------------------------------------------------
// Dashboard
// --------------------------------------------------------------------------

func TestDashboard(t *testing.T) {
	env := newTestEnv(t)
	seedSubmission(t, env)

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req = req.WithContext(ctxWithSession(req.Context(), testSession(uuid.New(), "dash@hirexfed.test", "admin", true)))
	rec := httptest.NewRecorder()
	env.Admin.Dashboard(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "client@example.com") {
		t.Error("dashboard should list the new submission")
	}
}
