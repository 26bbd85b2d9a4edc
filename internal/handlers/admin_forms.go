// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"hirexfed/internal/intake"
	"hirexfed/internal/models"
	"hirexfed/internal/render"
	"hirexfed/internal/slug"
	"hirexfed/internal/store"
)

// formRow is a forms list entry with its submission count.
type formRow struct {
	*models.IntakeForm
	Submissions int
}

// FormsList renders all intake forms with their submission counts.
func (a *Admin) FormsList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	forms, err := a.stores.Forms.List(ctx)
	if err != nil {
		slog.Error("list forms failed", "error", err)
	}
	rows := make([]formRow, 0, len(forms))
	for i := range forms {
		n, err := a.stores.Submissions.CountByForm(ctx, forms[i].ID)
		if err != nil {
			slog.Error("count form submissions failed", "error", err, "form", forms[i].Slug)
		}
		rows = append(rows, formRow{IntakeForm: &forms[i], Submissions: n})
	}
	a.page(w, r, "forms_list", &render.PageData{
		Title:   "Intake Forms",
		Section: "forms",
		Data:    map[string]any{"Items": rows},
	})
}

// FormForm renders the new or edit form page. Existing forms list their
// fields below the settings.
func (a *Admin) FormForm(w http.ResponseWriter, r *http.Request) {
	item := &models.IntakeForm{IsActive: true}
	if !loadItem(w, r, &item, a.stores.Forms.FindByID) {
		return
	}
	a.renderFormForm(w, r, http.StatusOK, item, "")
}

func (a *Admin) renderFormForm(w http.ResponseWriter, r *http.Request, status int, item *models.IntakeForm, errMsg string) {
	var fields []models.IntakeField
	if item.ID != uuid.Nil {
		var err error
		fields, err = a.stores.Forms.Fields(r.Context(), item.ID)
		if err != nil {
			slog.Error("list form fields failed", "error", err)
		}
	}
	a.pageStatus(w, r, status, "form_form", &render.PageData{
		Title:   "Intake Form",
		Section: "forms",
		Data: map[string]any{
			"Item":   item,
			"IsNew":  item.ID == uuid.Nil,
			"Fields": fields,
			"Error":  errMsg,
		},
	})
}

// FormSave creates or updates an intake form.
func (a *Admin) FormSave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	item := &models.IntakeForm{}
	if !loadItem(w, r, &item, a.stores.Forms.FindByID) {
		return
	}
	isNew := item.ID == uuid.Nil

	item.Title = formValue(r, "title")
	item.Slug = slug.Generate(formValue(r, "slug"))
	if item.Slug == "" {
		item.Slug = slug.Generate(item.Title)
	}
	item.Description = formValue(r, "description")
	item.SuccessMessage = formValue(r, "success_message")
	item.EmailRecipients = strings.Join(cleanRecipients(r.FormValue("email_recipients")), "\n")
	item.IsActive = formBool(r, "is_active")
	item.AllowFileUploads = formBool(r, "allow_file_uploads")

	if msg := validateForm(item); msg != "" {
		a.renderFormForm(w, r, http.StatusUnprocessableEntity, item, msg)
		return
	}
	existing, err := a.stores.Forms.FindBySlug(ctx, item.Slug)
	if err != nil {
		slog.Error("check form slug failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if existing != nil && existing.ID != item.ID {
		a.renderFormForm(w, r, http.StatusUnprocessableEntity, item, "Another form already uses this slug.")
		return
	}

	if isNew {
		err = a.stores.Forms.Create(ctx, item)
	} else {
		err = a.stores.Forms.Update(ctx, item)
	}
	if err != nil {
		msg := "Failed to save the form."
		if store.IsUniqueViolation(err) {
			msg = "Another form already uses this slug."
		}
		slog.Error("save form failed", "error", err, "slug", item.Slug)
		a.renderFormForm(w, r, http.StatusUnprocessableEntity, item, msg)
		return
	}

	slog.Info("intake form saved", "slug", item.Slug, "new", isNew)
	a.contentChanged(ctx, "form")
	if isNew {
		a.redirect(w, r, "/admin/forms/"+item.ID.String()+"/edit", "Form created. Add its fields below.")
		return
	}
	a.redirect(w, r, "/admin/forms", "Form saved.")
}

// FormDelete removes a form with its fields, submissions and files.
func (a *Admin) FormDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	err := a.intake.DeleteForm(r.Context(), id)
	if err != nil && !errors.Is(err, intake.ErrNotFound) {
		slog.Error("delete form failed", "error", err, "id", id)
		a.flash(w, r, "error", "Failed to delete the form.")
		http.Redirect(w, r, "/admin/forms", http.StatusSeeOther)
		return
	}
	a.contentChanged(r.Context(), "form")
	a.redirect(w, r, "/admin/forms", "Form deleted.")
}

// cleanRecipients splits a recipient textarea into trimmed, lowercased
// addresses. Commas and semicolons separate entries like newlines.
func cleanRecipients(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '\n' || r == '\r' || r == ',' || r == ';'
	})
	var out []string
	for _, f := range fields {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// --- Fields ---

// fieldForm loads the parent form of a field route. It writes 400 or 404
// and returns nil when the form cannot be loaded.
func (a *Admin) fieldForm(w http.ResponseWriter, r *http.Request) *models.IntakeForm {
	id, ok := urlID(w, r, "id")
	if !ok {
		return nil
	}
	form, err := a.stores.Forms.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("load form failed", "error", err, "id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil
	}
	if form == nil {
		http.NotFound(w, r)
		return nil
	}
	return form
}

// loadField returns the field named by the "fieldID" URL parameter, or a
// new field of form on "new" routes.
func (a *Admin) loadField(w http.ResponseWriter, r *http.Request, form *models.IntakeForm) (*models.IntakeField, bool) {
	raw := chi.URLParam(r, "fieldID")
	if raw == "" {
		return &models.IntakeField{FormID: form.ID, FieldType: models.FieldText}, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return nil, false
	}
	field, err := a.stores.Forms.FindField(r.Context(), id)
	if err != nil {
		slog.Error("load field failed", "error", err, "id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, false
	}
	if field == nil || field.FormID != form.ID {
		http.NotFound(w, r)
		return nil, false
	}
	return field, true
}

// FieldForm renders the new or edit field page.
func (a *Admin) FieldForm(w http.ResponseWriter, r *http.Request) {
	form := a.fieldForm(w, r)
	if form == nil {
		return
	}
	field, ok := a.loadField(w, r, form)
	if !ok {
		return
	}
	a.renderFieldForm(w, r, http.StatusOK, form, field, "")
}

func (a *Admin) renderFieldForm(w http.ResponseWriter, r *http.Request, status int, form *models.IntakeForm, field *models.IntakeField, errMsg string) {
	a.pageStatus(w, r, status, "field_form", &render.PageData{
		Title:   "Field",
		Section: "forms",
		Data: map[string]any{
			"Form":       form,
			"Item":       field,
			"IsNew":      field.ID == uuid.Nil,
			"FieldTypes": models.FieldTypes,
			"Error":      errMsg,
		},
	})
}

// FieldSave creates or updates a form field. The name defaults to one
// derived from the label and must be unique within the form.
func (a *Admin) FieldSave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	form := a.fieldForm(w, r)
	if form == nil {
		return
	}
	field, ok := a.loadField(w, r, form)
	if !ok {
		return
	}
	isNew := field.ID == uuid.Nil

	field.Label = formValue(r, "label")
	field.Name = strings.ToLower(formValue(r, "name"))
	if field.Name == "" {
		field.Name = fieldNameFromLabel(field.Label)
	}
	field.FieldType = models.FieldType(formValue(r, "field_type"))
	field.Placeholder = formValue(r, "placeholder")
	field.HelpText = formValue(r, "help_text")
	field.Choices = cleanChoices(r.FormValue("choices"))
	field.IsRequired = formBool(r, "is_required")
	field.SortOrder = formInt(r, "sort_order", 0)

	if msg := validateField(field); msg != "" {
		a.renderFieldForm(w, r, http.StatusUnprocessableEntity, form, field, msg)
		return
	}
	taken, err := a.stores.Forms.FieldNameExists(ctx, form.ID, field.Name, field.ID)
	if err != nil {
		slog.Error("check field name failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if taken {
		a.renderFieldForm(w, r, http.StatusUnprocessableEntity, form, field, "Another field of this form already uses this name.")
		return
	}

	if isNew {
		err = a.stores.Forms.CreateField(ctx, field)
	} else {
		err = a.stores.Forms.UpdateField(ctx, field)
	}
	if err != nil {
		slog.Error("save field failed", "error", err, "form", form.Slug, "name", field.Name)
		a.renderFieldForm(w, r, http.StatusUnprocessableEntity, form, field, "Failed to save the field.")
		return
	}

	a.contentChanged(ctx, "field")
	a.redirect(w, r, "/admin/forms/"+form.ID.String()+"/edit", "Field saved.")
}

// FieldDelete removes a field. Stored answers keep their value and label
// snapshot.
func (a *Admin) FieldDelete(w http.ResponseWriter, r *http.Request) {
	form := a.fieldForm(w, r)
	if form == nil {
		return
	}
	field, ok := a.loadField(w, r, form)
	if !ok {
		return
	}
	back := "/admin/forms/" + form.ID.String() + "/edit"
	if err := a.stores.Forms.DeleteField(r.Context(), field.ID); err != nil {
		slog.Error("delete field failed", "error", err, "id", field.ID)
		a.flash(w, r, "error", "Failed to delete the field.")
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}
	a.contentChanged(r.Context(), "field")
	a.redirect(w, r, back, "Field deleted.")
}

// cleanChoices trims each choice line and drops blank ones.
func cleanChoices(raw string) string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
