// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// TemplateType selects the public layout used to render a page.
type TemplateType string

const (
	TemplateGeneric  TemplateType = "generic"
	TemplateFeatures TemplateType = "features"
	TemplateHomepage TemplateType = "homepage"
	TemplateIntake   TemplateType = "intake"
)

// TemplateTypes lists the selectable template types in display order.
var TemplateTypes = []TemplateType{TemplateGeneric, TemplateFeatures, TemplateHomepage, TemplateIntake}

// Label returns the admin-facing name of the template type.
func (t TemplateType) Label() string {
	switch t {
	case TemplateGeneric:
		return "Generic Page"
	case TemplateFeatures:
		return "Feature-Rich Page"
	case TemplateHomepage:
		return "Homepage Style"
	case TemplateIntake:
		return "Intake Form Page"
	}
	return string(t)
}

// ParseTemplateType maps a stored or submitted value to a known template
// type. Unknown and empty values fall back to the generic template.
func ParseTemplateType(s string) TemplateType {
	for _, t := range TemplateTypes {
		if string(t) == s {
			return t
		}
	}
	return TemplateGeneric
}

// SectionType identifies where a content section is placed on a page.
type SectionType string

const (
	SectionHeader      SectionType = "header"
	SectionMainContent SectionType = "main_content"
	SectionSidebar     SectionType = "sidebar"
	SectionFeatures    SectionType = "features"
	SectionCallout     SectionType = "callout"
	SectionFooter      SectionType = "footer"
)

// SectionTypes lists the section types offered in the admin editor.
var SectionTypes = []SectionType{
	SectionHeader, SectionMainContent, SectionSidebar,
	SectionFeatures, SectionCallout, SectionFooter,
}

// ValidSectionType reports whether s is one of the known section types.
func ValidSectionType(s string) bool {
	for _, t := range SectionTypes {
		if string(t) == s {
			return true
		}
	}
	return false
}

// Page is a visitor-facing route. Slugs may contain "/" for nested pages
// such as "tax-solutions/services".
type Page struct {
	ID               uuid.UUID    `json:"id"`
	Title            string       `json:"title"`
	Slug             string       `json:"slug"`
	TemplateType     TemplateType `json:"template_type"`
	MetaDescription  string       `json:"meta_description"`
	IsPublished      bool         `json:"is_published"`
	ShowInNavigation bool         `json:"show_in_navigation"`
	NavigationOrder  int          `json:"navigation_order"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// URL returns the public path of the page.
func (p *Page) URL() string {
	return "/" + p.Slug + "/"
}

// Section is one block of content attached to a page by the page's slug.
// The reference is a plain string so sections can be authored before the
// page exists; sections without a matching page are never rendered.
type Section struct {
	ID          uuid.UUID   `json:"id"`
	Page        string      `json:"page"`
	SectionType SectionType `json:"section_type"`
	Title       string      `json:"title"`
	Content     string      `json:"content"`
	ImageKey    *string     `json:"image_key,omitempty"`
	SortOrder   int         `json:"sort_order"`
	IsActive    bool        `json:"is_active"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
