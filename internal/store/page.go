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

// PageStore handles all page-related database operations.
type PageStore struct {
	db *sql.DB
}

// NewPageStore creates a new PageStore with the given database connection.
func NewPageStore(db *sql.DB) *PageStore {
	return &PageStore{db: db}
}

const pageColumns = `id, title, slug, template_type, meta_description, is_published,
	show_in_navigation, navigation_order, created_at, updated_at`

func scanPage(row interface{ Scan(...any) error }, p *models.Page) error {
	return row.Scan(
		&p.ID, &p.Title, &p.Slug, &p.TemplateType, &p.MetaDescription, &p.IsPublished,
		&p.ShowInNavigation, &p.NavigationOrder, &p.CreatedAt, &p.UpdatedAt,
	)
}

func (s *PageStore) findOne(ctx context.Context, op, where string, args ...any) (*models.Page, error) {
	p := &models.Page{}
	err := scanPage(s.db.QueryRowContext(ctx, `SELECT `+pageColumns+` FROM pages WHERE `+where, args...), p)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func (s *PageStore) list(ctx context.Context, op, query string, args ...any) ([]models.Page, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var pages []models.Page
	for rows.Next() {
		var p models.Page
		if err := scanPage(rows, &p); err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// FindByID retrieves a page by its UUID. Returns nil if not found.
func (s *PageStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Page, error) {
	return s.findOne(ctx, "find page by id", "id = $1", id)
}

// FindBySlug retrieves a page by slug regardless of its publish state.
// Returns nil if not found.
func (s *PageStore) FindBySlug(ctx context.Context, slug string) (*models.Page, error) {
	return s.findOne(ctx, "find page by slug", "slug = $1", slug)
}

// FindPublishedBySlug retrieves a published page by slug. Returns nil if
// no published page has that slug.
func (s *PageStore) FindPublishedBySlug(ctx context.Context, slug string) (*models.Page, error) {
	return s.findOne(ctx, "find published page", "slug = $1 AND is_published = TRUE", slug)
}

// List returns all pages ordered by slug.
func (s *PageStore) List(ctx context.Context) ([]models.Page, error) {
	return s.list(ctx, "list pages", `SELECT `+pageColumns+` FROM pages ORDER BY slug ASC`)
}

// ListPublished returns all published pages ordered by slug.
func (s *PageStore) ListPublished(ctx context.Context) ([]models.Page, error) {
	return s.list(ctx, "list published pages",
		`SELECT `+pageColumns+` FROM pages WHERE is_published = TRUE ORDER BY slug ASC`)
}

// ListNavigation returns published pages flagged for the navigation menu.
func (s *PageStore) ListNavigation(ctx context.Context) ([]models.Page, error) {
	return s.list(ctx, "list navigation pages", `
		SELECT `+pageColumns+` FROM pages
		WHERE is_published = TRUE AND show_in_navigation = TRUE
		ORDER BY navigation_order ASC, title ASC
	`)
}

// ClearNavigationFlags unsets show_in_navigation on every page, leaving
// the menu to navigation items.
func (s *PageStore) ClearNavigationFlags(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE pages SET show_in_navigation = FALSE WHERE show_in_navigation = TRUE`)
	if err != nil {
		return 0, fmt.Errorf("clear navigation flags: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// SlugExists reports whether any page uses the slug.
func (s *PageStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM pages WHERE slug = $1)`, slug,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check page slug: %w", err)
	}
	return exists, nil
}

// Create inserts a new page and fills in its generated ID and timestamps.
func (s *PageStore) Create(ctx context.Context, p *models.Page) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO pages (title, slug, template_type, meta_description, is_published,
		                   show_in_navigation, navigation_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, p.Title, p.Slug, p.TemplateType, p.MetaDescription, p.IsPublished,
		p.ShowInNavigation, p.NavigationOrder,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create page: %w", err)
	}
	return nil
}

// Update saves changes to an existing page.
func (s *PageStore) Update(ctx context.Context, p *models.Page) error {
	err := s.db.QueryRowContext(ctx, `
		UPDATE pages SET title = $1, slug = $2, template_type = $3, meta_description = $4,
		       is_published = $5, show_in_navigation = $6, navigation_order = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING updated_at
	`, p.Title, p.Slug, p.TemplateType, p.MetaDescription, p.IsPublished,
		p.ShowInNavigation, p.NavigationOrder, p.ID,
	).Scan(&p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update page: %w", err)
	}
	return nil
}

// Delete removes a page by ID. Its sections are left in place and become
// orphans until a page with the same slug exists again.
func (s *PageStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM pages WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete page: %w", err)
	}
	return nil
}

// Count returns the total number of pages.
func (s *PageStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pages`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count pages: %w", err)
	}
	return n, nil
}

// CreateWithSection inserts a page and one main content section for it in
// a single transaction.
func (s *PageStore) CreateWithSection(ctx context.Context, p *models.Page, sec *models.Section) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO pages (title, slug, template_type, meta_description, is_published,
		                   show_in_navigation, navigation_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, p.Title, p.Slug, p.TemplateType, p.MetaDescription, p.IsPublished,
		p.ShowInNavigation, p.NavigationOrder,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create page: %w", err)
	}

	if sec != nil {
		sec.Page = p.Slug
		if err := insertSection(ctx, tx, sec); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit page: %w", err)
	}
	return nil
}
