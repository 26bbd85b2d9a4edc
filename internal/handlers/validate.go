// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"hirexfed/internal/models"
	"hirexfed/internal/slug"
)

// Validation limits for admin form inputs.
const (
	maxTitleLen    = 200
	maxMetaDescLen = 300
	maxContentLen  = 100_000
	maxShortLen    = 255
	maxURLLen      = 500
	maxNotesLen    = 10_000
	maxLabelLen    = 200
	maxNameLen     = 100
	maxChoicesLen  = 5_000
)

// fieldNamePattern is the shape of intake field names: answers are stored
// under them and they become HTML input names.
var fieldNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// reservedFieldNames collide with inputs every intake form already has.
var reservedFieldNames = map[string]bool{"csrf_token": true}

// tooLong reports whether s has more than max characters.
func tooLong(s string, max int) bool {
	return utf8.RuneCountInString(s) > max
}

// validatePage checks page form inputs and returns the first error found.
func validatePage(p *models.Page) string {
	switch {
	case p.Title == "":
		return "Title is required."
	case tooLong(p.Title, maxTitleLen):
		return "Title is too long (max 200 characters)."
	case !slug.Valid(p.Slug):
		return "Slug must be lowercase words separated by hyphens, optionally nested with /."
	case tooLong(p.MetaDescription, maxMetaDescLen):
		return "Meta description is too long (max 300 characters)."
	}
	return ""
}

// validateSection checks section form inputs.
func validateSection(s *models.Section) string {
	switch {
	case !slug.Valid(s.Page):
		return "Page slug is required."
	case !models.ValidSectionType(string(s.SectionType)):
		return "Invalid section type."
	case tooLong(s.Title, maxTitleLen):
		return "Title is too long (max 200 characters)."
	case tooLong(s.Content, maxContentLen):
		return "Content is too long (max 100,000 characters)."
	}
	return ""
}

// validateForm checks intake form settings.
func validateForm(f *models.IntakeForm) string {
	switch {
	case f.Title == "":
		return "Title is required."
	case tooLong(f.Title, maxTitleLen):
		return "Title is too long (max 200 characters)."
	case f.Slug == "" || strings.Contains(f.Slug, "/") || !slug.Valid(f.Slug):
		return "Slug must be lowercase words separated by hyphens."
	case tooLong(f.Description, maxContentLen) || tooLong(f.SuccessMessage, maxContentLen):
		return "Description or success message is too long."
	}
	for _, addr := range f.Recipients() {
		if _, err := mail.ParseAddress(addr); err != nil {
			return "Invalid recipient email: " + addr
		}
	}
	return ""
}

// validateField checks an intake field definition.
func validateField(f *models.IntakeField) string {
	switch {
	case f.Label == "":
		return "Label is required."
	case tooLong(f.Label, maxLabelLen):
		return "Label is too long (max 200 characters)."
	case !fieldNamePattern.MatchString(f.Name) || tooLong(f.Name, maxNameLen):
		return "Name must start with a letter and use only lowercase letters, digits and underscores."
	case reservedFieldNames[f.Name]:
		return "This name is reserved."
	case !models.ValidFieldType(string(f.FieldType)):
		return "Invalid field type."
	case (f.FieldType == models.FieldSelect || f.FieldType == models.FieldRadio) && len(f.ChoiceList()) == 0:
		return "Select and radio fields need at least one choice."
	case tooLong(f.Choices, maxChoicesLen):
		return "Too many choices."
	case tooLong(f.Placeholder, maxShortLen) || tooLong(f.HelpText, maxShortLen*4):
		return "Placeholder or help text is too long."
	}
	return ""
}

// fieldNameFromLabel derives a field name such as "full_name" from a label.
func fieldNameFromLabel(label string) string {
	name := strings.ReplaceAll(slug.Generate(label), "-", "_")
	if name != "" && (name[0] < 'a' || name[0] > 'z') {
		name = "f_" + name
	}
	if len(name) > maxNameLen {
		name = strings.TrimRight(name[:maxNameLen], "_")
	}
	return name
}

// validateLink checks an optional link input. Relative paths, anchors and
// http(s), mailto or tel URLs are accepted.
func validateLink(label, v string) string {
	if v == "" {
		return ""
	}
	if tooLong(v, maxURLLen) {
		return label + " is too long (max 500 characters)."
	}
	for _, prefix := range []string{"/", "#", "http://", "https://", "mailto:", "tel:"} {
		if strings.HasPrefix(v, prefix) {
			return ""
		}
	}
	return label + " must be a path or an http(s) URL."
}
