// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package intake implements configurable intake forms: rendering form
// definitions, validating and de-duplicating visitor submissions, storing
// their attachments and releasing stored blobs when file rows go away.
package intake

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"hirexfed/internal/models"
	"hirexfed/internal/notify"
	"hirexfed/internal/storage"
)

// NotifyTimeout bounds the synchronous notification step.
const NotifyTimeout = 20 * time.Second

// FormRepository reads and deletes form definitions.
type FormRepository interface {
	FindActiveBySlug(ctx context.Context, slug string) (*models.IntakeForm, error)
	Fields(ctx context.Context, formID uuid.UUID) ([]models.IntakeField, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// SubmissionRepository persists submissions.
type SubmissionRepository interface {
	EmailExists(ctx context.Context, formID uuid.UUID, email string, keys []string) (bool, error)
	Create(ctx context.Context, sub *models.IntakeSubmission) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.IntakeSubmission, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// FileRepository persists file rows.
type FileRepository interface {
	Create(ctx context.Context, f *models.IntakeFile) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.IntakeFile, error)
	ListBySubmission(ctx context.Context, submissionID uuid.UUID) ([]models.IntakeFile, error)
	StorageKeysByForm(ctx context.Context, formID uuid.UUID) ([]string, error)
	CountByStorageKey(ctx context.Context, key string) (int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Notifier receives accepted submissions.
type Notifier interface {
	SubmissionReceived(ctx context.Context, s *notify.Submission) error
}

// Repositories groups the persistence dependencies of a Service.
type Repositories struct {
	Forms       FormRepository
	Submissions SubmissionRepository
	Files       FileRepository
}

// Service renders forms, accepts submissions and manages attachment blobs.
type Service struct {
	forms       FormRepository
	submissions SubmissionRepository
	files       FileRepository
	blobs       storage.ObjectStore
	notifier    Notifier
	emails      *EmailValidator
	baseURL     string
	now         func() time.Time
}

// NewService creates a Service. notifier may be nil to skip notifications.
// baseURL is used for admin links in notifications.
func NewService(repos Repositories, blobs storage.ObjectStore, notifier Notifier, emails *EmailValidator, baseURL string) *Service {
	if emails == nil {
		emails = NewEmailValidator(nil, nil)
	}
	return &Service{
		forms:       repos.Forms,
		submissions: repos.Submissions,
		files:       repos.Files,
		blobs:       blobs,
		notifier:    notifier,
		emails:      emails,
		baseURL:     strings.TrimRight(baseURL, "/"),
		now:         time.Now,
	}
}

// Form returns the active form with the slug and its ordered fields.
func (s *Service) Form(ctx context.Context, slug string) (*Form, error) {
	f, err := s.forms.FindActiveBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("load form: %w", err)
	}
	if f == nil {
		return nil, ErrNotFound
	}
	fields, err := s.forms.Fields(ctx, f.ID)
	if err != nil {
		return nil, fmt.Errorf("load fields: %w", err)
	}
	return newForm(f, fields), nil
}

// Input is a raw visitor submission.
type Input struct {
	Values    map[string][]string // as in url.Values
	Files     map[string][]Upload // by input name
	IPAddress string
	UserAgent string
}

func (in Input) value(name string) (string, bool) {
	vs, ok := in.Values[name]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// Submit validates in against form and, when everything passes, stores the
// submission and its files and notifies staff. Validation failures return
// a *ValidationError or ErrDuplicate and write nothing.
func (s *Service) Submit(ctx context.Context, form *Form, in Input) (*models.IntakeSubmission, error) {
	data, labels, email, err := s.validateFields(form, in)
	if err != nil {
		return nil, err
	}

	keys := append(form.emailFieldNames(), models.LegacyEmailKeys...)
	dup, err := s.submissions.EmailExists(ctx, form.ID, email, keys)
	if err != nil {
		return nil, fmt.Errorf("check duplicate: %w", err)
	}
	if dup {
		return nil, ErrDuplicate
	}

	accepted, err := s.validateFiles(form, in)
	if err != nil {
		return nil, err
	}

	sub := &models.IntakeSubmission{
		FormID:    form.ID,
		FormTitle: form.Title,
		Email:     email,
		Data:      data,
		Labels:    labels,
		IPAddress: in.IPAddress,
		UserAgent: in.UserAgent,
		Status:    models.StatusNew,
		Priority:  models.PriorityNormal,
	}
	if err := s.submissions.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("save submission: %w", err)
	}

	if err := s.storeFiles(ctx, sub, accepted); err != nil {
		return nil, err
	}

	slog.Info("intake submission accepted",
		"form", form.Slug, "submission_id", sub.ID, "files", len(accepted))

	s.notify(ctx, form, sub, accepted)
	return sub, nil
}

// validateFields checks every non-file field and returns the answers keyed
// by field name, the label snapshot and the first normalized email.
func (s *Service) validateFields(form *Form, in Input) (map[string]any, map[string]string, string, error) {
	data := make(map[string]any)
	labels := make(map[string]string)
	email := ""

	for _, f := range form.Fields {
		if f.FieldType == models.FieldFile {
			continue
		}
		raw, present := in.value(f.Name)
		value := strings.TrimSpace(raw)

		switch f.FieldType {
		case models.FieldCheckbox:
			value = ""
			if present && raw != "" {
				value = "Yes"
			}
		case models.FieldEmail:
			if value != "" {
				norm, err := s.emails.Normalize(value)
				if err != nil {
					var verr *ValidationError
					if errors.As(err, &verr) {
						return nil, nil, "", invalid(f.Name, verr.Message)
					}
					return nil, nil, "", err
				}
				value = norm
				if email == "" {
					email = norm
				}
			}
		case models.FieldSelect, models.FieldRadio:
			if value != "" && !contains(f.ChoiceValues, value) {
				return nil, nil, "", invalid(f.Name, fmt.Sprintf("Please select a valid choice for %s.", f.Label))
			}
		case models.FieldPhone:
			if value != "" && !validPhone(value) {
				return nil, nil, "", invalid(f.Name, "Please enter a valid phone number.")
			}
		}

		if f.IsRequired && value == "" {
			return nil, nil, "", invalid(f.Name, f.Label+" is required.")
		}
		data[f.Name] = value
		labels[f.Name] = f.Label
	}

	if email == "" {
		return nil, nil, "", invalid("", "An email address is required.")
	}
	return data, labels, email, nil
}

// validPhone accepts 7 to 15 digits with common separators.
func validPhone(v string) bool {
	digits := 0
	for _, r := range v {
		switch {
		case unicode.IsDigit(r):
			digits++
		case strings.ContainsRune(" +-().", r):
		default:
			return false
		}
	}
	return digits >= 7 && digits <= 15
}

// validateFiles collects the uploads of every file input, enforces the
// per-submission cap and validates each file. Nothing is stored here.
func (s *Service) validateFiles(form *Form, in Input) ([]*AcceptedFile, error) {
	type pending struct {
		field  string
		upload Upload
	}
	var uploads []pending

	for _, f := range form.Fields {
		if f.FieldType != models.FieldFile {
			continue
		}
		got := in.Files[f.Name]
		if f.IsRequired && len(got) == 0 {
			return nil, invalid(f.Name, f.Label+" is required.")
		}
		for _, u := range got {
			uploads = append(uploads, pending{field: f.Name, upload: u})
		}
	}
	if form.GenericUploads {
		for _, u := range in.Files[GenericUploadField] {
			uploads = append(uploads, pending{field: GenericUploadField, upload: u})
		}
	}

	if len(uploads) > MaxFileCount {
		return nil, invalid("", fmt.Sprintf("You can upload at most %d files.", MaxFileCount))
	}

	accepted := make([]*AcceptedFile, 0, len(uploads))
	for _, p := range uploads {
		af, err := ValidateUpload(p.field, p.upload)
		if err != nil {
			return nil, err
		}
		accepted = append(accepted, af)
	}
	return accepted, nil
}

// storeFiles uploads each accepted file and records its row. If any step
// fails, blobs uploaded so far and the submission row are removed.
func (s *Service) storeFiles(ctx context.Context, sub *models.IntakeSubmission, files []*AcceptedFile) error {
	var stored []string

	rollback := func(cause error) error {
		// The request may be gone already; the cleanup must still run.
		cctx := context.WithoutCancel(ctx)
		for _, key := range stored {
			if err := s.blobs.Delete(cctx, key); err != nil {
				slog.Error("rollback uploaded blob", "key", key, "error", err)
			}
		}
		if err := s.submissions.Delete(cctx, sub.ID); err != nil {
			slog.Error("rollback submission", "submission_id", sub.ID, "error", err)
		}
		return cause
	}

	for _, af := range files {
		key := storage.NewKey("intake", af.Filename, s.now())
		if err := s.blobs.Put(ctx, key, af.ContentType, bytes.NewReader(af.Data), int64(len(af.Data))); err != nil {
			return rollback(fmt.Errorf("store file %s: %w", af.Filename, err))
		}
		stored = append(stored, key)

		row := &models.IntakeFile{
			SubmissionID:     sub.ID,
			FieldName:        af.FieldName,
			StorageKey:       key,
			OriginalFilename: af.Filename,
			ContentType:      af.ContentType,
			SizeBytes:        int64(len(af.Data)),
		}
		if err := s.files.Create(ctx, row); err != nil {
			return rollback(fmt.Errorf("save file row %s: %w", af.Filename, err))
		}
	}
	return nil
}

// notify delivers staff notifications. Failures are logged only.
func (s *Service) notify(ctx context.Context, form *Form, sub *models.IntakeSubmission, files []*AcceptedFile) {
	if s.notifier == nil {
		return
	}

	msg := &notify.Submission{
		ID:          sub.ID.String(),
		FormTitle:   form.Title,
		FormSlug:    form.Slug,
		Recipients:  form.Recipients(),
		Email:       sub.Email,
		IPAddress:   sub.IPAddress,
		SubmittedAt: sub.SubmittedAt,
		Answers:     sub.Answers(form.Definitions()),
	}
	if s.baseURL != "" {
		msg.AdminURL = s.baseURL + "/admin/submissions/" + sub.ID.String()
	}
	for _, af := range files {
		msg.Attachments = append(msg.Attachments, notify.Attachment{
			Filename:    af.Filename,
			ContentType: af.ContentType,
			Data:        af.Data,
		})
	}

	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), NotifyTimeout)
	defer cancel()
	if err := s.notifier.SubmissionReceived(nctx, msg); err != nil {
		slog.Error("intake notification failed",
			"form", form.Slug, "submission_id", sub.ID, "error", err)
	}
}

// OpenFile returns a file row and its stored content. Callers must close
// the object body.
func (s *Service) OpenFile(ctx context.Context, id uuid.UUID) (*models.IntakeFile, *storage.Object, error) {
	f, err := s.files.FindByID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("load file: %w", err)
	}
	if f == nil {
		return nil, nil, ErrNotFound
	}
	obj, err := s.blobs.Get(ctx, f.StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open file: %w", err)
	}
	return f, obj, nil
}

// DeleteFile removes a file row and releases its blob.
func (s *Service) DeleteFile(ctx context.Context, id uuid.UUID) error {
	f, err := s.files.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load file: %w", err)
	}
	if f == nil {
		return ErrNotFound
	}
	if err := s.files.Delete(ctx, id); err != nil {
		return err
	}
	s.releaseBlob(ctx, f.StorageKey)
	return nil
}

// DeleteSubmission removes a submission with its file rows and releases
// their blobs.
func (s *Service) DeleteSubmission(ctx context.Context, id uuid.UUID) error {
	sub, err := s.submissions.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load submission: %w", err)
	}
	if sub == nil {
		return ErrNotFound
	}
	files, err := s.files.ListBySubmission(ctx, id)
	if err != nil {
		return fmt.Errorf("list submission files: %w", err)
	}
	if err := s.submissions.Delete(ctx, id); err != nil {
		return err
	}
	for _, key := range distinctKeys(files) {
		s.releaseBlob(ctx, key)
	}
	return nil
}

// DeleteForm removes a form with its fields, submissions and file rows and
// releases every blob they referenced.
func (s *Service) DeleteForm(ctx context.Context, id uuid.UUID) error {
	keys, err := s.files.StorageKeysByForm(ctx, id)
	if err != nil {
		return fmt.Errorf("list form files: %w", err)
	}
	if err := s.forms.Delete(ctx, id); err != nil {
		return err
	}
	for _, key := range keys {
		s.releaseBlob(ctx, key)
	}
	return nil
}

// releaseBlob deletes the stored object when no file row references key
// any more. Errors are logged, never returned.
func (s *Service) releaseBlob(ctx context.Context, key string) {
	n, err := s.files.CountByStorageKey(ctx, key)
	if err != nil {
		slog.Error("count blob references", "key", key, "error", err)
		return
	}
	if n > 0 {
		return
	}
	if err := s.blobs.Delete(ctx, key); err != nil {
		slog.Warn("delete blob", "key", key, "error", err)
	}
}

func distinctKeys(files []models.IntakeFile) []string {
	seen := make(map[string]bool, len(files))
	var keys []string
	for _, f := range files {
		if !seen[f.StorageKey] {
			seen[f.StorageKey] = true
			keys = append(keys, f.StorageKey)
		}
	}
	return keys
}

// MemoryUpload wraps in-memory content as an Upload.
func MemoryUpload(name, contentType string, data []byte) Upload {
	return Upload{
		Filename:    name,
		ContentType: contentType,
		Size:        int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}
