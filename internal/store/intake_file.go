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

// FileStore handles intake file rows. Blobs live in the object store and
// are managed by the caller.
type FileStore struct {
	db *sql.DB
}

// NewFileStore creates a new FileStore with the given database connection.
func NewFileStore(db *sql.DB) *FileStore {
	return &FileStore{db: db}
}

const fileColumns = `id, submission_id, field_name, storage_key, original_filename,
	content_type, size_bytes, uploaded_at`

func scanFile(row interface{ Scan(...any) error }, f *models.IntakeFile) error {
	return row.Scan(
		&f.ID, &f.SubmissionID, &f.FieldName, &f.StorageKey, &f.OriginalFilename,
		&f.ContentType, &f.SizeBytes, &f.UploadedAt,
	)
}

// Create inserts a new file row.
func (s *FileStore) Create(ctx context.Context, f *models.IntakeFile) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO intake_files (submission_id, field_name, storage_key, original_filename,
		                          content_type, size_bytes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, uploaded_at
	`, f.SubmissionID, f.FieldName, f.StorageKey, f.OriginalFilename, f.ContentType, f.SizeBytes,
	).Scan(&f.ID, &f.UploadedAt)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	return nil
}

// FindByID retrieves a file row by UUID. Returns nil if not found.
func (s *FileStore) FindByID(ctx context.Context, id uuid.UUID) (*models.IntakeFile, error) {
	f := &models.IntakeFile{}
	err := scanFile(s.db.QueryRowContext(ctx,
		`SELECT `+fileColumns+` FROM intake_files WHERE id = $1`, id), f)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find file: %w", err)
	}
	return f, nil
}

// ListBySubmission returns the files of a submission in upload order.
func (s *FileStore) ListBySubmission(ctx context.Context, submissionID uuid.UUID) ([]models.IntakeFile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+fileColumns+` FROM intake_files
		WHERE submission_id = $1
		ORDER BY uploaded_at ASC, id ASC
	`, submissionID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	var files []models.IntakeFile
	for rows.Next() {
		var f models.IntakeFile
		if err := scanFile(rows, &f); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// StorageKeysByForm returns the distinct storage keys referenced by files
// of any submission of the form.
func (s *FileStore) StorageKeysByForm(ctx context.Context, formID uuid.UUID) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT f.storage_key FROM intake_files f
		JOIN intake_submissions s ON s.id = f.submission_id
		WHERE s.form_id = $1
	`, formID)
	if err != nil {
		return nil, fmt.Errorf("list form storage keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan storage key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// CountByStorageKey returns how many file rows reference the key.
func (s *FileStore) CountByStorageKey(ctx context.Context, key string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM intake_files WHERE storage_key = $1`, key,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count file references: %w", err)
	}
	return n, nil
}

// Delete removes a file row.
func (s *FileStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM intake_files WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}
