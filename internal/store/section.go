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

// SectionStore handles page section database operations. Sections refer to
// pages by slug, so nothing here requires the page to exist.
type SectionStore struct {
	db *sql.DB
}

// NewSectionStore creates a new SectionStore with the given database connection.
func NewSectionStore(db *sql.DB) *SectionStore {
	return &SectionStore{db: db}
}

const sectionColumns = `id, page, section_type, title, content, image_key, sort_order,
	is_active, created_at, updated_at`

// Display order: section type, then sort order, ties broken by insertion.
const sectionOrder = `ORDER BY section_type ASC, sort_order ASC, created_at ASC, id ASC`

func scanSection(row interface{ Scan(...any) error }, sec *models.Section) error {
	return row.Scan(
		&sec.ID, &sec.Page, &sec.SectionType, &sec.Title, &sec.Content, &sec.ImageKey,
		&sec.SortOrder, &sec.IsActive, &sec.CreatedAt, &sec.UpdatedAt,
	)
}

func (s *SectionStore) list(ctx context.Context, op, query string, args ...any) ([]models.Section, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var sections []models.Section
	for rows.Next() {
		var sec models.Section
		if err := scanSection(rows, &sec); err != nil {
			return nil, fmt.Errorf("scan section: %w", err)
		}
		sections = append(sections, sec)
	}
	return sections, rows.Err()
}

// ListActiveByPage returns the active sections of a page slug in display
// order.
func (s *SectionStore) ListActiveByPage(ctx context.Context, page string) ([]models.Section, error) {
	return s.list(ctx, "list active sections", `
		SELECT `+sectionColumns+` FROM page_sections
		WHERE page = $1 AND is_active = TRUE
		`+sectionOrder, page)
}

// ListByPage returns every section of a page slug, active or not.
func (s *SectionStore) ListByPage(ctx context.Context, page string) ([]models.Section, error) {
	return s.list(ctx, "list sections by page", `
		SELECT `+sectionColumns+` FROM page_sections
		WHERE page = $1
		`+sectionOrder, page)
}

// List returns all sections grouped by page.
func (s *SectionStore) List(ctx context.Context) ([]models.Section, error) {
	return s.list(ctx, "list sections", `
		SELECT `+sectionColumns+` FROM page_sections
		ORDER BY page ASC, section_type ASC, sort_order ASC, created_at ASC, id ASC`)
}

// ListOrphans returns sections whose page slug matches no page.
func (s *SectionStore) ListOrphans(ctx context.Context) ([]models.Section, error) {
	return s.list(ctx, "list orphan sections", `
		SELECT `+sectionColumns+` FROM page_sections s
		WHERE NOT EXISTS (SELECT 1 FROM pages p WHERE p.slug = s.page)
		ORDER BY page ASC, section_type ASC, sort_order ASC, created_at ASC, id ASC`)
}

// CountOrphans returns the number of sections whose page slug matches no page.
func (s *SectionStore) CountOrphans(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM page_sections s
		WHERE NOT EXISTS (SELECT 1 FROM pages p WHERE p.slug = s.page)
	`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count orphan sections: %w", err)
	}
	return n, nil
}

// FindByID retrieves a section by UUID. Returns nil if not found.
func (s *SectionStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Section, error) {
	sec := &models.Section{}
	err := scanSection(s.db.QueryRowContext(ctx,
		`SELECT `+sectionColumns+` FROM page_sections WHERE id = $1`, id), sec)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find section by id: %w", err)
	}
	return sec, nil
}

// FindByPosition retrieves the first section at (page, type, order).
// Returns nil if not found.
func (s *SectionStore) FindByPosition(ctx context.Context, page string, st models.SectionType, order int) (*models.Section, error) {
	sec := &models.Section{}
	err := scanSection(s.db.QueryRowContext(ctx, `
		SELECT `+sectionColumns+` FROM page_sections
		WHERE page = $1 AND section_type = $2 AND sort_order = $3
		ORDER BY created_at ASC, id ASC LIMIT 1
	`, page, st, order), sec)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find section by position: %w", err)
	}
	return sec, nil
}

type execQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func insertSection(ctx context.Context, q execQuerier, sec *models.Section) error {
	err := q.QueryRowContext(ctx, `
		INSERT INTO page_sections (page, section_type, title, content, image_key, sort_order, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, sec.Page, sec.SectionType, sec.Title, sec.Content, sec.ImageKey, sec.SortOrder, sec.IsActive,
	).Scan(&sec.ID, &sec.CreatedAt, &sec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create section: %w", err)
	}
	return nil
}

// Create inserts a new section.
func (s *SectionStore) Create(ctx context.Context, sec *models.Section) error {
	return insertSection(ctx, s.db, sec)
}

// Update saves changes to an existing section.
func (s *SectionStore) Update(ctx context.Context, sec *models.Section) error {
	err := s.db.QueryRowContext(ctx, `
		UPDATE page_sections SET page = $1, section_type = $2, title = $3, content = $4,
		       image_key = $5, sort_order = $6, is_active = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING updated_at
	`, sec.Page, sec.SectionType, sec.Title, sec.Content, sec.ImageKey, sec.SortOrder,
		sec.IsActive, sec.ID,
	).Scan(&sec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update section: %w", err)
	}
	return nil
}

// Delete removes a section by ID.
func (s *SectionStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM page_sections WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete section: %w", err)
	}
	return nil
}

// DeleteByPage removes every section of a page slug and returns how many
// rows were deleted.
func (s *SectionStore) DeleteByPage(ctx context.Context, page string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM page_sections WHERE page = $1`, page)
	if err != nil {
		return 0, fmt.Errorf("delete sections by page: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
