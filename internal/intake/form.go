// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package intake

import "hirexfed/internal/models"

// FieldView is a field prepared for rendering.
type FieldView struct {
	models.IntakeField
	ChoiceValues []string
}

// IsType reports whether the field has the given type. Templates use it
// to pick the input widget.
func (f FieldView) IsType(t string) bool {
	return string(f.FieldType) == t
}

// Form is an active form and its ordered fields as shown to visitors.
type Form struct {
	*models.IntakeForm
	Fields []FieldView

	// HasFileField switches the form to multipart/form-data. It is set when
	// any field takes files or the form accepts generic documents.
	HasFileField bool

	// GenericUploads is set when files are collected through the
	// GenericUploadField input because no field takes files.
	GenericUploads bool
}

// newForm builds the visitor view of a form definition.
func newForm(f *models.IntakeForm, fields []models.IntakeField) *Form {
	view := &Form{IntakeForm: f}
	hasFile := false
	for _, fd := range fields {
		if fd.FieldType == models.FieldFile {
			hasFile = true
		}
		view.Fields = append(view.Fields, FieldView{IntakeField: fd, ChoiceValues: fd.ChoiceList()})
	}
	view.GenericUploads = f.AllowFileUploads && !hasFile
	view.HasFileField = hasFile || f.AllowFileUploads
	return view
}

// Definitions returns the underlying field definitions in display order.
func (f *Form) Definitions() []models.IntakeField {
	out := make([]models.IntakeField, len(f.Fields))
	for i, fv := range f.Fields {
		out[i] = fv.IntakeField
	}
	return out
}

// emailFieldNames returns the names of the email-type fields.
func (f *Form) emailFieldNames() []string {
	var names []string
	for _, fv := range f.Fields {
		if fv.FieldType == models.FieldEmail {
			names = append(names, fv.Name)
		}
	}
	return names
}
