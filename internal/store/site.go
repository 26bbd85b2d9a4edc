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

// SiteStore handles the site-wide content shown around pages: the banner,
// contact and footer singletons plus features, posts and mini posts.
type SiteStore struct {
	db *sql.DB
}

// NewSiteStore creates a new SiteStore with the given database connection.
func NewSiteStore(db *sql.DB) *SiteStore {
	return &SiteStore{db: db}
}

// Banner returns the banner singleton. Returns nil if none exists.
func (s *SiteStore) Banner(ctx context.Context) (*models.Banner, error) {
	b := &models.Banner{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, heading, subheading, description1, description2, description3,
		       button_text, button_link, image_key, updated_at
		FROM banners ORDER BY updated_at DESC LIMIT 1
	`).Scan(
		&b.ID, &b.Heading, &b.Subheading, &b.Description1, &b.Description2, &b.Description3,
		&b.ButtonText, &b.ButtonLink, &b.ImageKey, &b.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find banner: %w", err)
	}
	return b, nil
}

// SaveBanner updates the banner singleton, creating it when b.ID is nil.
func (s *SiteStore) SaveBanner(ctx context.Context, b *models.Banner) error {
	var err error
	if b.ID == uuid.Nil {
		err = s.db.QueryRowContext(ctx, `
			INSERT INTO banners (heading, subheading, description1, description2, description3,
			                     button_text, button_link, image_key)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id, updated_at
		`, b.Heading, b.Subheading, b.Description1, b.Description2, b.Description3,
			b.ButtonText, b.ButtonLink, b.ImageKey,
		).Scan(&b.ID, &b.UpdatedAt)
	} else {
		err = s.db.QueryRowContext(ctx, `
			UPDATE banners SET heading = $1, subheading = $2, description1 = $3, description2 = $4,
			       description3 = $5, button_text = $6, button_link = $7, image_key = $8,
			       updated_at = NOW()
			WHERE id = $9
			RETURNING updated_at
		`, b.Heading, b.Subheading, b.Description1, b.Description2, b.Description3,
			b.ButtonText, b.ButtonLink, b.ImageKey, b.ID,
		).Scan(&b.UpdatedAt)
	}
	if err != nil {
		return fmt.Errorf("save banner: %w", err)
	}
	return nil
}

// ContactInfo returns the contact singleton. Returns nil if none exists.
func (s *SiteStore) ContactInfo(ctx context.Context) (*models.ContactInfo, error) {
	c := &models.ContactInfo{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, phone, address FROM contact_info LIMIT 1`,
	).Scan(&c.ID, &c.Email, &c.Phone, &c.Address)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find contact info: %w", err)
	}
	return c, nil
}

// SaveContactInfo updates the contact singleton, creating it when c.ID is nil.
func (s *SiteStore) SaveContactInfo(ctx context.Context, c *models.ContactInfo) error {
	var err error
	if c.ID == uuid.Nil {
		err = s.db.QueryRowContext(ctx, `
			INSERT INTO contact_info (email, phone, address) VALUES ($1, $2, $3) RETURNING id
		`, c.Email, c.Phone, c.Address).Scan(&c.ID)
	} else {
		_, err = s.db.ExecContext(ctx, `
			UPDATE contact_info SET email = $1, phone = $2, address = $3 WHERE id = $4
		`, c.Email, c.Phone, c.Address, c.ID)
	}
	if err != nil {
		return fmt.Errorf("save contact info: %w", err)
	}
	return nil
}

// Footer returns the footer singleton. Returns nil if none exists.
func (s *SiteStore) Footer(ctx context.Context) (*models.Footer, error) {
	f := &models.Footer{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, copyright, demo_images_link, design_link FROM footers LIMIT 1`,
	).Scan(&f.ID, &f.Copyright, &f.DemoImagesLink, &f.DesignLink)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find footer: %w", err)
	}
	return f, nil
}

// SaveFooter updates the footer singleton, creating it when f.ID is nil.
func (s *SiteStore) SaveFooter(ctx context.Context, f *models.Footer) error {
	var err error
	if f.ID == uuid.Nil {
		err = s.db.QueryRowContext(ctx, `
			INSERT INTO footers (copyright, demo_images_link, design_link) VALUES ($1, $2, $3) RETURNING id
		`, f.Copyright, f.DemoImagesLink, f.DesignLink).Scan(&f.ID)
	} else {
		_, err = s.db.ExecContext(ctx, `
			UPDATE footers SET copyright = $1, demo_images_link = $2, design_link = $3 WHERE id = $4
		`, f.Copyright, f.DemoImagesLink, f.DesignLink, f.ID)
	}
	if err != nil {
		return fmt.Errorf("save footer: %w", err)
	}
	return nil
}

// Features returns all features in creation order.
func (s *SiteStore) Features(ctx context.Context) ([]models.Feature, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, icon, title, description, created_at FROM features ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list features: %w", err)
	}
	defer rows.Close()

	var out []models.Feature
	for rows.Next() {
		var f models.Feature
		if err := rows.Scan(&f.ID, &f.Icon, &f.Title, &f.Description, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan feature: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// FindFeature retrieves a feature by UUID. Returns nil if not found.
func (s *SiteStore) FindFeature(ctx context.Context, id uuid.UUID) (*models.Feature, error) {
	f := &models.Feature{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, icon, title, description, created_at FROM features WHERE id = $1`, id,
	).Scan(&f.ID, &f.Icon, &f.Title, &f.Description, &f.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find feature: %w", err)
	}
	return f, nil
}

// FindFeatureByTitle retrieves the oldest feature with the title. Returns
// nil if not found.
func (s *SiteStore) FindFeatureByTitle(ctx context.Context, title string) (*models.Feature, error) {
	f := &models.Feature{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, icon, title, description, created_at FROM features
		WHERE title = $1 ORDER BY created_at ASC, id ASC LIMIT 1
	`, title).Scan(&f.ID, &f.Icon, &f.Title, &f.Description, &f.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find feature by title: %w", err)
	}
	return f, nil
}

// SaveFeature inserts the feature when f.ID is nil, updates it otherwise.
func (s *SiteStore) SaveFeature(ctx context.Context, f *models.Feature) error {
	var err error
	if f.ID == uuid.Nil {
		err = s.db.QueryRowContext(ctx, `
			INSERT INTO features (icon, title, description) VALUES ($1, $2, $3)
			RETURNING id, created_at
		`, f.Icon, f.Title, f.Description).Scan(&f.ID, &f.CreatedAt)
	} else {
		_, err = s.db.ExecContext(ctx, `
			UPDATE features SET icon = $1, title = $2, description = $3 WHERE id = $4
		`, f.Icon, f.Title, f.Description, f.ID)
	}
	if err != nil {
		return fmt.Errorf("save feature: %w", err)
	}
	return nil
}

// Posts returns posts newest first, up to limit (0 means all).
func (s *SiteStore) Posts(ctx context.Context, limit int) ([]models.Post, error) {
	query := `SELECT id, title, description, image_key, button_text, button_link, created_at
		FROM posts ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var out []models.Post
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.ImageKey, &p.ButtonText,
			&p.ButtonLink, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// FindPost retrieves a post by UUID. Returns nil if not found.
func (s *SiteStore) FindPost(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	return s.findPost(ctx, "find post", `id = $1`, id)
}

// FindPostByTitle retrieves the oldest post with the title. Returns nil if
// not found.
func (s *SiteStore) FindPostByTitle(ctx context.Context, title string) (*models.Post, error) {
	return s.findPost(ctx, "find post by title", `title = $1`, title)
}

func (s *SiteStore) findPost(ctx context.Context, op, where string, arg any) (*models.Post, error) {
	p := &models.Post{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, image_key, button_text, button_link, created_at
		FROM posts WHERE `+where+` ORDER BY created_at ASC, id ASC LIMIT 1
	`, arg).Scan(&p.ID, &p.Title, &p.Description, &p.ImageKey, &p.ButtonText, &p.ButtonLink, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// SavePost inserts the post when p.ID is nil, updates it otherwise.
func (s *SiteStore) SavePost(ctx context.Context, p *models.Post) error {
	var err error
	if p.ID == uuid.Nil {
		err = s.db.QueryRowContext(ctx, `
			INSERT INTO posts (title, description, image_key, button_text, button_link)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at
		`, p.Title, p.Description, p.ImageKey, p.ButtonText, p.ButtonLink).Scan(&p.ID, &p.CreatedAt)
	} else {
		_, err = s.db.ExecContext(ctx, `
			UPDATE posts SET title = $1, description = $2, image_key = $3, button_text = $4,
			       button_link = $5
			WHERE id = $6
		`, p.Title, p.Description, p.ImageKey, p.ButtonText, p.ButtonLink, p.ID)
	}
	if err != nil {
		return fmt.Errorf("save post: %w", err)
	}
	return nil
}

// MiniPosts returns mini posts newest first, up to limit (0 means all).
func (s *SiteStore) MiniPosts(ctx context.Context, limit int) ([]models.MiniPost, error) {
	query := `SELECT id, description, image_key, created_at FROM mini_posts ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list mini posts: %w", err)
	}
	defer rows.Close()

	var out []models.MiniPost
	for rows.Next() {
		var m models.MiniPost
		if err := rows.Scan(&m.ID, &m.Description, &m.ImageKey, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan mini post: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// FindMiniPost retrieves a mini post by UUID. Returns nil if not found.
func (s *SiteStore) FindMiniPost(ctx context.Context, id uuid.UUID) (*models.MiniPost, error) {
	m := &models.MiniPost{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, description, image_key, created_at FROM mini_posts WHERE id = $1`, id,
	).Scan(&m.ID, &m.Description, &m.ImageKey, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find mini post: %w", err)
	}
	return m, nil
}

// FindMiniPostByDescription retrieves the oldest mini post with the
// description. Returns nil if not found.
func (s *SiteStore) FindMiniPostByDescription(ctx context.Context, desc string) (*models.MiniPost, error) {
	m := &models.MiniPost{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, description, image_key, created_at FROM mini_posts
		WHERE description = $1 ORDER BY created_at ASC, id ASC LIMIT 1
	`, desc).Scan(&m.ID, &m.Description, &m.ImageKey, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find mini post by description: %w", err)
	}
	return m, nil
}

// SaveMiniPost inserts the mini post when m.ID is nil, updates it otherwise.
func (s *SiteStore) SaveMiniPost(ctx context.Context, m *models.MiniPost) error {
	var err error
	if m.ID == uuid.Nil {
		err = s.db.QueryRowContext(ctx, `
			INSERT INTO mini_posts (description, image_key) VALUES ($1, $2) RETURNING id, created_at
		`, m.Description, m.ImageKey).Scan(&m.ID, &m.CreatedAt)
	} else {
		_, err = s.db.ExecContext(ctx, `
			UPDATE mini_posts SET description = $1, image_key = $2 WHERE id = $3
		`, m.Description, m.ImageKey, m.ID)
	}
	if err != nil {
		return fmt.Errorf("save mini post: %w", err)
	}
	return nil
}

// siteTables are the tables Delete accepts. Table names never come from
// user input.
var siteTables = map[string]bool{
	"features": true, "posts": true, "mini_posts": true,
	"navigation_items": true, "social_links": true,
}

// Delete removes a row from one of the site content list tables.
func (s *SiteStore) Delete(ctx context.Context, table string, id uuid.UUID) error {
	if !siteTables[table] {
		return fmt.Errorf("delete site content: unknown table %q", table)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	return nil
}

// DeleteDuplicates removes every row of a site table matching column =
// value except keep.
func (s *SiteStore) DeleteDuplicates(ctx context.Context, table, column string, value any, keep uuid.UUID) (int64, error) {
	if !siteTables[table] {
		return 0, fmt.Errorf("delete duplicates: unknown table %q", table)
	}
	switch column {
	case "title", "description", "platform":
	default:
		return 0, fmt.Errorf("delete duplicates: unknown column %q", column)
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM `+table+` WHERE `+column+` = $1 AND id <> $2`, value, keep)
	if err != nil {
		return 0, fmt.Errorf("delete duplicate %s: %w", table, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
