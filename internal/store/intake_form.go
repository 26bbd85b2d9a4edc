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

// FormStore handles intake form and field database operations.
type FormStore struct {
	db *sql.DB
}

// NewFormStore creates a new FormStore with the given database connection.
func NewFormStore(db *sql.DB) *FormStore {
	return &FormStore{db: db}
}

const formColumns = `id, title, slug, description, success_message, email_recipients,
	is_active, allow_file_uploads, created_at, updated_at`

func scanForm(row interface{ Scan(...any) error }, f *models.IntakeForm) error {
	return row.Scan(
		&f.ID, &f.Title, &f.Slug, &f.Description, &f.SuccessMessage, &f.EmailRecipients,
		&f.IsActive, &f.AllowFileUploads, &f.CreatedAt, &f.UpdatedAt,
	)
}

func (s *FormStore) findOne(ctx context.Context, op, where string, args ...any) (*models.IntakeForm, error) {
	f := &models.IntakeForm{}
	err := scanForm(s.db.QueryRowContext(ctx, `SELECT `+formColumns+` FROM intake_forms WHERE `+where, args...), f)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return f, nil
}

// FindByID retrieves a form by UUID. Returns nil if not found.
func (s *FormStore) FindByID(ctx context.Context, id uuid.UUID) (*models.IntakeForm, error) {
	return s.findOne(ctx, "find form by id", "id = $1", id)
}

// FindBySlug retrieves a form by slug regardless of its active flag.
// Returns nil if not found.
func (s *FormStore) FindBySlug(ctx context.Context, slug string) (*models.IntakeForm, error) {
	return s.findOne(ctx, "find form by slug", "slug = $1", slug)
}

// FindActiveBySlug retrieves an active form by slug. Returns nil if no
// active form has that slug.
func (s *FormStore) FindActiveBySlug(ctx context.Context, slug string) (*models.IntakeForm, error) {
	return s.findOne(ctx, "find active form", "slug = $1 AND is_active = TRUE", slug)
}

// List returns all forms ordered by title.
func (s *FormStore) List(ctx context.Context) ([]models.IntakeForm, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+formColumns+` FROM intake_forms ORDER BY title ASC`)
	if err != nil {
		return nil, fmt.Errorf("list forms: %w", err)
	}
	defer rows.Close()

	var forms []models.IntakeForm
	for rows.Next() {
		var f models.IntakeForm
		if err := scanForm(rows, &f); err != nil {
			return nil, fmt.Errorf("scan form: %w", err)
		}
		forms = append(forms, f)
	}
	return forms, rows.Err()
}

// Create inserts a new form.
func (s *FormStore) Create(ctx context.Context, f *models.IntakeForm) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO intake_forms (title, slug, description, success_message, email_recipients,
		                          is_active, allow_file_uploads)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, f.Title, f.Slug, f.Description, f.SuccessMessage, f.EmailRecipients,
		f.IsActive, f.AllowFileUploads,
	).Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create form: %w", err)
	}
	return nil
}

// Update saves changes to an existing form.
func (s *FormStore) Update(ctx context.Context, f *models.IntakeForm) error {
	err := s.db.QueryRowContext(ctx, `
		UPDATE intake_forms SET title = $1, slug = $2, description = $3, success_message = $4,
		       email_recipients = $5, is_active = $6, allow_file_uploads = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING updated_at
	`, f.Title, f.Slug, f.Description, f.SuccessMessage, f.EmailRecipients,
		f.IsActive, f.AllowFileUploads, f.ID,
	).Scan(&f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update form: %w", err)
	}
	return nil
}

// Delete removes a form. Fields, submissions and file rows cascade; the
// caller is responsible for the stored blobs.
func (s *FormStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM intake_forms WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete form: %w", err)
	}
	return nil
}

const fieldColumns = `id, form_id, label, name, field_type, placeholder, help_text, choices,
	is_required, sort_order`

func scanField(row interface{ Scan(...any) error }, f *models.IntakeField) error {
	return row.Scan(
		&f.ID, &f.FormID, &f.Label, &f.Name, &f.FieldType, &f.Placeholder, &f.HelpText,
		&f.Choices, &f.IsRequired, &f.SortOrder,
	)
}

// Fields returns the fields of a form ordered for display.
func (s *FormStore) Fields(ctx context.Context, formID uuid.UUID) ([]models.IntakeField, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+fieldColumns+` FROM intake_fields
		WHERE form_id = $1
		ORDER BY sort_order ASC, name ASC
	`, formID)
	if err != nil {
		return nil, fmt.Errorf("list fields: %w", err)
	}
	defer rows.Close()

	var fields []models.IntakeField
	for rows.Next() {
		var f models.IntakeField
		if err := scanField(rows, &f); err != nil {
			return nil, fmt.Errorf("scan field: %w", err)
		}
		fields = append(fields, f)
	}
	return fields, rows.Err()
}

// FindField retrieves a field by UUID. Returns nil if not found.
func (s *FormStore) FindField(ctx context.Context, id uuid.UUID) (*models.IntakeField, error) {
	f := &models.IntakeField{}
	err := scanField(s.db.QueryRowContext(ctx,
		`SELECT `+fieldColumns+` FROM intake_fields WHERE id = $1`, id), f)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find field: %w", err)
	}
	return f, nil
}

// FieldNameExists reports whether another field of the form already uses
// the name. exclude may be uuid.Nil.
func (s *FormStore) FieldNameExists(ctx context.Context, formID uuid.UUID, name string, exclude uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM intake_fields WHERE form_id = $1 AND name = $2 AND id <> $3)
	`, formID, name, exclude).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check field name: %w", err)
	}
	return exists, nil
}

// CreateField inserts a new field.
func (s *FormStore) CreateField(ctx context.Context, f *models.IntakeField) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO intake_fields (form_id, label, name, field_type, placeholder, help_text,
		                           choices, is_required, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`, f.FormID, f.Label, f.Name, f.FieldType, f.Placeholder, f.HelpText,
		f.Choices, f.IsRequired, f.SortOrder,
	).Scan(&f.ID)
	if err != nil {
		return fmt.Errorf("create field: %w", err)
	}
	return nil
}

// UpdateField saves changes to an existing field.
func (s *FormStore) UpdateField(ctx context.Context, f *models.IntakeField) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE intake_fields SET label = $1, name = $2, field_type = $3, placeholder = $4,
		       help_text = $5, choices = $6, is_required = $7, sort_order = $8
		WHERE id = $9
	`, f.Label, f.Name, f.FieldType, f.Placeholder, f.HelpText, f.Choices,
		f.IsRequired, f.SortOrder, f.ID)
	if err != nil {
		return fmt.Errorf("update field: %w", err)
	}
	return nil
}

// UpsertField inserts the field or updates the existing field with the
// same (form, name) pair.
func (s *FormStore) UpsertField(ctx context.Context, f *models.IntakeField) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO intake_fields (form_id, label, name, field_type, placeholder, help_text,
		                           choices, is_required, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (form_id, name) DO UPDATE SET
		    label = EXCLUDED.label, field_type = EXCLUDED.field_type,
		    placeholder = EXCLUDED.placeholder, help_text = EXCLUDED.help_text,
		    choices = EXCLUDED.choices, is_required = EXCLUDED.is_required,
		    sort_order = EXCLUDED.sort_order
		RETURNING id
	`, f.FormID, f.Label, f.Name, f.FieldType, f.Placeholder, f.HelpText,
		f.Choices, f.IsRequired, f.SortOrder,
	).Scan(&f.ID)
	if err != nil {
		return fmt.Errorf("upsert field: %w", err)
	}
	return nil
}

// DeleteField removes a field. Stored answers keyed by its name are kept.
func (s *FormStore) DeleteField(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM intake_fields WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete field: %w", err)
	}
	return nil
}

// DeleteFieldsExcept removes fields of the form whose names are not in keep.
func (s *FormStore) DeleteFieldsExcept(ctx context.Context, formID uuid.UUID, keep []string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM intake_fields WHERE form_id = $1 AND NOT (name = ANY($2))
	`, formID, keep)
	if err != nil {
		return 0, fmt.Errorf("delete extra fields: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
