// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"hirexfed/internal/models"
)

// SubmissionStore handles intake submission database operations.
type SubmissionStore struct {
	db *sql.DB
}

// NewSubmissionStore creates a new SubmissionStore with the given database connection.
func NewSubmissionStore(db *sql.DB) *SubmissionStore {
	return &SubmissionStore{db: db}
}

// SubmissionFilter narrows a submission listing. Zero values match all.
type SubmissionFilter struct {
	FormID uuid.UUID
	Status models.SubmissionStatus
	Email  string // substring match, case-insensitive
	Limit  int
	Offset int
}

const submissionSelect = `
	SELECT s.id, s.form_id, f.title, s.email, s.data, s.labels, s.ip_address, s.user_agent,
	       s.status, s.priority, s.assigned_to, COALESCE(u.display_name, ''),
	       s.contacted_at, s.follow_up_at, s.notes, s.submitted_at, s.updated_at
	FROM intake_submissions s
	JOIN intake_forms f ON f.id = s.form_id
	LEFT JOIN users u ON u.id = s.assigned_to`

func scanSubmission(row interface{ Scan(...any) error }, sub *models.IntakeSubmission) error {
	var data, labels []byte
	if err := row.Scan(
		&sub.ID, &sub.FormID, &sub.FormTitle, &sub.Email, &data, &labels, &sub.IPAddress,
		&sub.UserAgent, &sub.Status, &sub.Priority, &sub.AssignedTo, &sub.AssigneeName,
		&sub.ContactedAt, &sub.FollowUpAt, &sub.Notes, &sub.SubmittedAt, &sub.UpdatedAt,
	); err != nil {
		return err
	}
	if err := json.Unmarshal(data, &sub.Data); err != nil {
		return fmt.Errorf("decode submission data: %w", err)
	}
	if err := json.Unmarshal(labels, &sub.Labels); err != nil {
		return fmt.Errorf("decode submission labels: %w", err)
	}
	return nil
}

// Create inserts a new submission. Status and priority default to new and
// normal when empty.
func (s *SubmissionStore) Create(ctx context.Context, sub *models.IntakeSubmission) error {
	if sub.Status == "" {
		sub.Status = models.StatusNew
	}
	if sub.Priority == "" {
		sub.Priority = models.PriorityNormal
	}
	data, err := json.Marshal(sub.Data)
	if err != nil {
		return fmt.Errorf("encode submission data: %w", err)
	}
	labels, err := json.Marshal(sub.Labels)
	if err != nil {
		return fmt.Errorf("encode submission labels: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO intake_submissions (form_id, email, data, labels, ip_address, user_agent,
		                                status, priority)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, submitted_at, updated_at
	`, sub.FormID, sub.Email, string(data), string(labels), sub.IPAddress, sub.UserAgent,
		sub.Status, sub.Priority,
	).Scan(&sub.ID, &sub.SubmittedAt, &sub.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create submission: %w", err)
	}
	return nil
}

// EmailExists reports whether the form already has a submission for the
// normalized email. The dedicated column is checked first; keys are
// answer keys consulted for rows stored before the column was filled.
func (s *SubmissionStore) EmailExists(ctx context.Context, formID uuid.UUID, email string, keys []string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
		    SELECT 1 FROM intake_submissions s
		    WHERE s.form_id = $1
		      AND (lower(s.email) = $2
		           OR EXISTS (SELECT 1 FROM unnest($3::text[]) AS k(key)
		                      WHERE lower(btrim(s.data ->> k.key)) = $2))
		)
	`, formID, strings.ToLower(email), keys).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check duplicate email: %w", err)
	}
	return exists, nil
}

// FindByID retrieves a submission by UUID. Returns nil if not found.
func (s *SubmissionStore) FindByID(ctx context.Context, id uuid.UUID) (*models.IntakeSubmission, error) {
	sub := &models.IntakeSubmission{}
	err := scanSubmission(s.db.QueryRowContext(ctx, submissionSelect+` WHERE s.id = $1`, id), sub)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find submission: %w", err)
	}
	return sub, nil
}

// List returns submissions matching the filter, newest first.
func (s *SubmissionStore) List(ctx context.Context, f SubmissionFilter) ([]models.IntakeSubmission, error) {
	var (
		where []string
		args  []any
	)
	if f.FormID != uuid.Nil {
		args = append(args, f.FormID)
		where = append(where, fmt.Sprintf("s.form_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("s.status = $%d", len(args)))
	}
	if f.Email != "" {
		args = append(args, "%"+escapeLike(f.Email)+"%")
		where = append(where, fmt.Sprintf("s.email ILIKE $%d", len(args)))
	}

	query := submissionSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY s.submitted_at DESC, s.id DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit, f.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var subs []models.IntakeSubmission
	for rows.Next() {
		var sub models.IntakeSubmission
		if err := scanSubmission(rows, &sub); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// CountByForm returns the number of submissions of a form.
func (s *SubmissionStore) CountByForm(ctx context.Context, formID uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM intake_submissions WHERE form_id = $1`, formID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count submissions: %w", err)
	}
	return n, nil
}

// CountByStatus returns submission counts keyed by status.
func (s *SubmissionStore) CountByStatus(ctx context.Context) (map[models.SubmissionStatus]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM intake_submissions GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count submissions by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.SubmissionStatus]int)
	for rows.Next() {
		var (
			st models.SubmissionStatus
			n  int
		)
		if err := rows.Scan(&st, &n); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[st] = n
	}
	return counts, rows.Err()
}

// UpdateWorkflow saves the staff-editable workflow fields.
func (s *SubmissionStore) UpdateWorkflow(ctx context.Context, sub *models.IntakeSubmission) error {
	err := s.db.QueryRowContext(ctx, `
		UPDATE intake_submissions SET status = $1, priority = $2, assigned_to = $3,
		       contacted_at = $4, follow_up_at = $5, notes = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at
	`, sub.Status, sub.Priority, sub.AssignedTo, sub.ContactedAt, sub.FollowUpAt,
		sub.Notes, sub.ID,
	).Scan(&sub.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update submission workflow: %w", err)
	}
	return nil
}

// Delete removes a submission; its file rows cascade.
func (s *SubmissionStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM intake_submissions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete submission: %w", err)
	}
	return nil
}

// escapeLike escapes LIKE wildcards in user input.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
}
