// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"hirexfed/internal/models"
)

// NavigationStore handles navigation items and social links.
type NavigationStore struct {
	db *sql.DB
}

// NewNavigationStore creates a new NavigationStore with the given database connection.
func NewNavigationStore(db *sql.DB) *NavigationStore {
	return &NavigationStore{db: db}
}

const navColumns = `id, title, url, parent_id, sort_order, is_active, icon_class, opens_new_window`

func scanNav(row interface{ Scan(...any) error }, n *models.NavigationItem) error {
	return row.Scan(&n.ID, &n.Title, &n.URL, &n.ParentID, &n.SortOrder, &n.IsActive,
		&n.IconClass, &n.OpensNewWindow)
}

func (s *NavigationStore) listNav(ctx context.Context, op, query string, args ...any) ([]models.NavigationItem, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var items []models.NavigationItem
	for rows.Next() {
		var n models.NavigationItem
		if err := scanNav(rows, &n); err != nil {
			return nil, fmt.Errorf("scan navigation item: %w", err)
		}
		items = append(items, n)
	}
	return items, rows.Err()
}

// List returns every navigation item, parents before children.
func (s *NavigationStore) List(ctx context.Context) ([]models.NavigationItem, error) {
	return s.listNav(ctx, "list navigation", `
		SELECT `+navColumns+` FROM navigation_items
		ORDER BY parent_id NULLS FIRST, sort_order ASC, title ASC`)
}

// ListActive returns active items ordered for display.
func (s *NavigationStore) ListActive(ctx context.Context) ([]models.NavigationItem, error) {
	return s.listNav(ctx, "list active navigation", `
		SELECT `+navColumns+` FROM navigation_items
		WHERE is_active = TRUE
		ORDER BY sort_order ASC, title ASC`)
}

// FindByID retrieves a navigation item by UUID. Returns nil if not found.
func (s *NavigationStore) FindByID(ctx context.Context, id uuid.UUID) (*models.NavigationItem, error) {
	n := &models.NavigationItem{}
	err := scanNav(s.db.QueryRowContext(ctx,
		`SELECT `+navColumns+` FROM navigation_items WHERE id = $1`, id), n)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find navigation item: %w", err)
	}
	return n, nil
}

// FindByTitle retrieves the first item with the title under the parent
// (nil for top level). Returns nil if not found.
func (s *NavigationStore) FindByTitle(ctx context.Context, title string, parentID *uuid.UUID) (*models.NavigationItem, error) {
	n := &models.NavigationItem{}
	err := scanNav(s.db.QueryRowContext(ctx, `
		SELECT `+navColumns+` FROM navigation_items
		WHERE title = $1 AND parent_id IS NOT DISTINCT FROM $2
		ORDER BY sort_order ASC, id ASC LIMIT 1
	`, title, parentID), n)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find navigation item by title: %w", err)
	}
	return n, nil
}

// Save inserts the item when n.ID is nil, updates it otherwise.
func (s *NavigationStore) Save(ctx context.Context, n *models.NavigationItem) error {
	var err error
	if n.ID == uuid.Nil {
		err = s.db.QueryRowContext(ctx, `
			INSERT INTO navigation_items (title, url, parent_id, sort_order, is_active, icon_class,
			                              opens_new_window)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id
		`, n.Title, n.URL, n.ParentID, n.SortOrder, n.IsActive, n.IconClass, n.OpensNewWindow,
		).Scan(&n.ID)
	} else {
		_, err = s.db.ExecContext(ctx, `
			UPDATE navigation_items SET title = $1, url = $2, parent_id = $3, sort_order = $4,
			       is_active = $5, icon_class = $6, opens_new_window = $7
			WHERE id = $8
		`, n.Title, n.URL, n.ParentID, n.SortOrder, n.IsActive, n.IconClass, n.OpensNewWindow, n.ID)
	}
	if err != nil {
		return fmt.Errorf("save navigation item: %w", err)
	}
	return nil
}

// SocialLinks returns social links ordered for display. When activeOnly is
// set, inactive links are skipped.
func (s *NavigationStore) SocialLinks(ctx context.Context, activeOnly bool) ([]models.SocialLink, error) {
	query := `SELECT id, platform, url, sort_order, is_active FROM social_links`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY sort_order ASC, platform ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list social links: %w", err)
	}
	defer rows.Close()

	var out []models.SocialLink
	for rows.Next() {
		var l models.SocialLink
		if err := rows.Scan(&l.ID, &l.Platform, &l.URL, &l.SortOrder, &l.IsActive); err != nil {
			return nil, fmt.Errorf("scan social link: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// FindSocialLink retrieves a social link by UUID. Returns nil if not found.
func (s *NavigationStore) FindSocialLink(ctx context.Context, id uuid.UUID) (*models.SocialLink, error) {
	return s.findSocial(ctx, "find social link", `id = $1`, id)
}

// FindSocialLinkByPlatform retrieves the first link for the platform.
// Returns nil if not found.
func (s *NavigationStore) FindSocialLinkByPlatform(ctx context.Context, platform string) (*models.SocialLink, error) {
	return s.findSocial(ctx, "find social link by platform", `platform = $1`, platform)
}

func (s *NavigationStore) findSocial(ctx context.Context, op, where string, arg any) (*models.SocialLink, error) {
	l := &models.SocialLink{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, platform, url, sort_order, is_active FROM social_links
		WHERE `+where+` ORDER BY sort_order ASC, id ASC LIMIT 1
	`, arg).Scan(&l.ID, &l.Platform, &l.URL, &l.SortOrder, &l.IsActive)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return l, nil
}

// SaveSocialLink inserts the link when l.ID is nil, updates it otherwise.
func (s *NavigationStore) SaveSocialLink(ctx context.Context, l *models.SocialLink) error {
	var err error
	if l.ID == uuid.Nil {
		err = s.db.QueryRowContext(ctx, `
			INSERT INTO social_links (platform, url, sort_order, is_active) VALUES ($1, $2, $3, $4)
			RETURNING id
		`, l.Platform, l.URL, l.SortOrder, l.IsActive).Scan(&l.ID)
	} else {
		_, err = s.db.ExecContext(ctx, `
			UPDATE social_links SET platform = $1, url = $2, sort_order = $3, is_active = $4 WHERE id = $5
		`, l.Platform, l.URL, l.SortOrder, l.IsActive, l.ID)
	}
	if err != nil {
		return fmt.Errorf("save social link: %w", err)
	}
	return nil
}
