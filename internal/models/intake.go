// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FieldType is the input type of an intake field.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldEmail    FieldType = "email"
	FieldPhone    FieldType = "phone"
	FieldTextarea FieldType = "textarea"
	FieldSelect   FieldType = "select"
	FieldCheckbox FieldType = "checkbox"
	FieldRadio    FieldType = "radio"
	FieldFile     FieldType = "file"
)

// FieldTypes lists the field types offered in the admin editor.
var FieldTypes = []FieldType{
	FieldText, FieldEmail, FieldPhone, FieldTextarea,
	FieldSelect, FieldCheckbox, FieldRadio, FieldFile,
}

// ValidFieldType reports whether s is one of the known field types.
func ValidFieldType(s string) bool {
	for _, t := range FieldTypes {
		if string(t) == s {
			return true
		}
	}
	return false
}

// LegacyEmailKeys are answer keys that held the email address in
// submissions stored before answers were keyed by field name.
var LegacyEmailKeys = []string{"email", "Email Address"}

// IntakeForm is a named, sluggable schema of intake fields plus delivery
// configuration.
type IntakeForm struct {
	ID               uuid.UUID `json:"id"`
	Title            string    `json:"title"`
	Slug             string    `json:"slug"`
	Description      string    `json:"description"`
	SuccessMessage   string    `json:"success_message"`
	EmailRecipients  string    `json:"email_recipients"` // newline-delimited
	IsActive         bool      `json:"is_active"`
	AllowFileUploads bool      `json:"allow_file_uploads"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Recipients splits the newline-delimited recipient list, dropping blanks.
func (f *IntakeForm) Recipients() []string {
	return splitLines(f.EmailRecipients)
}

// URL returns the public path of the form.
func (f *IntakeForm) URL() string {
	return "/intake/" + f.Slug + "/"
}

// IntakeField is one typed input within a form. Name is unique per form
// and is the key answers are stored under.
type IntakeField struct {
	ID          uuid.UUID `json:"id"`
	FormID      uuid.UUID `json:"form_id"`
	Label       string    `json:"label"`
	Name        string    `json:"name"`
	FieldType   FieldType `json:"field_type"`
	Placeholder string    `json:"placeholder"`
	HelpText    string    `json:"help_text"`
	Choices     string    `json:"choices"` // newline-delimited
	IsRequired  bool      `json:"is_required"`
	SortOrder   int       `json:"sort_order"`
}

// ChoiceList splits the newline-delimited choices, dropping blanks.
func (f *IntakeField) ChoiceList() []string {
	return splitLines(f.Choices)
}

// SubmissionStatus is the staff workflow state of a submission.
type SubmissionStatus string

const (
	StatusNew       SubmissionStatus = "new"
	StatusReviewed  SubmissionStatus = "reviewed"
	StatusContacted SubmissionStatus = "contacted"
	StatusScheduled SubmissionStatus = "scheduled"
	StatusCompleted SubmissionStatus = "completed"
	StatusDeclined  SubmissionStatus = "declined"
)

// SubmissionStatuses lists the workflow states in display order.
var SubmissionStatuses = []SubmissionStatus{
	StatusNew, StatusReviewed, StatusContacted,
	StatusScheduled, StatusCompleted, StatusDeclined,
}

// ValidStatus reports whether s is a known workflow state.
func ValidStatus(s string) bool {
	for _, v := range SubmissionStatuses {
		if string(v) == s {
			return true
		}
	}
	return false
}

// IsClosed reports whether the submission needs no further follow-up.
func (s SubmissionStatus) IsClosed() bool {
	return s == StatusCompleted || s == StatusDeclined
}

// Priority is the staff-assigned urgency of a submission.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Priorities lists the priorities in display order.
var Priorities = []Priority{PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent}

// ValidPriority reports whether s is a known priority.
func ValidPriority(s string) bool {
	for _, v := range Priorities {
		if string(v) == s {
			return true
		}
	}
	return false
}

// IntakeSubmission is one visitor's answers to a form plus staff workflow
// state. Data maps field name to submitted value; Labels snapshots the
// field labels at submission time so renamed fields still display.
type IntakeSubmission struct {
	ID           uuid.UUID         `json:"id"`
	FormID       uuid.UUID         `json:"form_id"`
	FormTitle    string            `json:"form_title,omitempty"`
	Email        string            `json:"email"`
	Data         map[string]any    `json:"data"`
	Labels       map[string]string `json:"labels"`
	IPAddress    string            `json:"ip_address"`
	UserAgent    string            `json:"user_agent"`
	Status       SubmissionStatus  `json:"status"`
	Priority     Priority          `json:"priority"`
	AssignedTo   *uuid.UUID        `json:"assigned_to,omitempty"`
	AssigneeName string            `json:"assignee_name,omitempty"`
	ContactedAt  *time.Time        `json:"contacted_at,omitempty"`
	FollowUpAt   *time.Time        `json:"follow_up_at,omitempty"`
	Notes        string            `json:"notes"`
	SubmittedAt  time.Time         `json:"submitted_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// Answer is one labelled value of a submission, used for display.
type Answer struct {
	Name  string
	Label string
	Value string
}

// Answers returns the submission's values in the given field order,
// followed by any keys no longer present on the form.
func (s *IntakeSubmission) Answers(fields []IntakeField) []Answer {
	seen := make(map[string]bool, len(s.Data))
	var out []Answer
	for _, f := range fields {
		v, ok := s.Data[f.Name]
		if !ok {
			continue
		}
		seen[f.Name] = true
		out = append(out, Answer{Name: f.Name, Label: f.Label, Value: stringValue(v)})
	}
	for k, v := range s.Data {
		if seen[k] {
			continue
		}
		label := s.Labels[k]
		if label == "" {
			label = k
		}
		out = append(out, Answer{Name: k, Label: label, Value: stringValue(v)})
	}
	return out
}

// LookupEmail returns the lowercased email stored on the submission. It
// prefers the dedicated column, then the given field name, then the legacy
// keys used before answers were keyed by field name.
func (s *IntakeSubmission) LookupEmail(fieldName string) string {
	if s.Email != "" {
		return strings.ToLower(s.Email)
	}
	keys := append([]string{fieldName}, LegacyEmailKeys...)
	for _, k := range keys {
		if k == "" {
			continue
		}
		if v, ok := s.Data[k].(string); ok && strings.TrimSpace(v) != "" {
			return strings.ToLower(strings.TrimSpace(v))
		}
	}
	return ""
}

// IntakeFile is one binary attachment of a submission. StorageKey points
// at the object in the uploads store.
type IntakeFile struct {
	ID               uuid.UUID `json:"id"`
	SubmissionID     uuid.UUID `json:"submission_id"`
	FieldName        string    `json:"field_name"`
	StorageKey       string    `json:"storage_key"`
	OriginalFilename string    `json:"original_filename"`
	ContentType      string    `json:"content_type"`
	SizeBytes        int64     `json:"size_bytes"`
	UploadedAt       time.Time `json:"uploaded_at"`
}

// HumanSize returns a human-readable file size string.
func (f *IntakeFile) HumanSize() string {
	const (
		kb = 1024
		mb = 1024 * kb
	)
	switch {
	case f.SizeBytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(f.SizeBytes)/float64(mb))
	case f.SizeBytes >= kb:
		return fmt.Sprintf("%.0f KB", float64(f.SizeBytes)/float64(kb))
	default:
		return fmt.Sprintf("%d B", f.SizeBytes)
	}
}

// IsPreviewable reports whether browsers can display the file inline.
func (f *IntakeFile) IsPreviewable() bool {
	return f.ContentType == "application/pdf" || strings.HasPrefix(f.ContentType, "image/")
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
