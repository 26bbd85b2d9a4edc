// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Banner is the singleton hero block shown on homepage-style pages.
type Banner struct {
	ID           uuid.UUID `json:"id"`
	Heading      string    `json:"heading"`
	Subheading   string    `json:"subheading"`
	Description1 string    `json:"description1"`
	Description2 string    `json:"description2"`
	Description3 string    `json:"description3"`
	ButtonText   string    `json:"button_text"`
	ButtonLink   string    `json:"button_link"`
	ImageKey     *string   `json:"image_key,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Feature is a service card in the homepage features grid.
type Feature struct {
	ID          uuid.UUID `json:"id"`
	Icon        string    `json:"icon"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// FeatureIcons are the Font Awesome icons offered for features.
var FeatureIcons = []string{
	"fa-gem", "fa-paper-plane", "fa-rocket", "fa-signal",
	"fa-file-invoice-dollar", "fa-id-card", "fa-database", "fa-laptop-code",
}

// Post is an article teaser in the homepage posts section.
type Post struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageKey    *string   `json:"image_key,omitempty"`
	ButtonText  string    `json:"button_text"`
	ButtonLink  string    `json:"button_link"`
	CreatedAt   time.Time `json:"created_at"`
}

// MiniPost is a short sidebar update.
type MiniPost struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	ImageKey    *string   `json:"image_key,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ContactInfo is the singleton contact block shown in the sidebar.
type ContactInfo struct {
	ID      uuid.UUID `json:"id"`
	Email   string    `json:"email"`
	Phone   string    `json:"phone"`
	Address string    `json:"address"`
}

// Footer is the singleton site footer.
type Footer struct {
	ID             uuid.UUID `json:"id"`
	Copyright      string    `json:"copyright"`
	DemoImagesLink string    `json:"demo_images_link"`
	DesignLink     string    `json:"design_link"`
}

// NavigationItem is a menu entry. Items with a ParentID render as a
// dropdown under their parent.
type NavigationItem struct {
	ID             uuid.UUID        `json:"id"`
	Title          string           `json:"title"`
	URL            string           `json:"url"`
	ParentID       *uuid.UUID       `json:"parent_id,omitempty"`
	SortOrder      int              `json:"sort_order"`
	IsActive       bool             `json:"is_active"`
	IconClass      string           `json:"icon_class"`
	OpensNewWindow bool             `json:"opens_new_window"`
	Children       []NavigationItem `json:"children,omitempty"`
}

// SocialLink is a social media profile link shown in the sidebar.
type SocialLink struct {
	ID        uuid.UUID `json:"id"`
	Platform  string    `json:"platform"`
	URL       string    `json:"url"`
	SortOrder int       `json:"sort_order"`
	IsActive  bool      `json:"is_active"`
}
