// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package intake

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"hirexfed/internal/models"
	"hirexfed/internal/notify"
	"hirexfed/internal/storage"
)

// memRepo is an in-memory implementation of all three repositories.
type memRepo struct {
	mu     sync.Mutex
	forms  map[uuid.UUID]*models.IntakeForm
	fields map[uuid.UUID][]models.IntakeField
	subs   map[uuid.UUID]*models.IntakeSubmission
	files  map[uuid.UUID]*models.IntakeFile

	createFileErr error
}

func newMemRepo() *memRepo {
	return &memRepo{
		forms:  make(map[uuid.UUID]*models.IntakeForm),
		fields: make(map[uuid.UUID][]models.IntakeField),
		subs:   make(map[uuid.UUID]*models.IntakeSubmission),
		files:  make(map[uuid.UUID]*models.IntakeFile),
	}
}

func (r *memRepo) repos() Repositories {
	return Repositories{Forms: formRepo{r}, Submissions: subRepo{r}, Files: fileRepo{r}}
}

func (r *memRepo) addForm(f *models.IntakeForm, fields ...models.IntakeField) *models.IntakeForm {
	r.mu.Lock()
	defer r.mu.Unlock()
	f.ID = uuid.New()
	r.forms[f.ID] = f
	for i := range fields {
		fields[i].ID = uuid.New()
		fields[i].FormID = f.ID
	}
	r.fields[f.ID] = fields
	return f
}

func (r *memRepo) submissionCount(formID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.subs {
		if s.FormID == formID {
			n++
		}
	}
	return n
}

func (r *memRepo) fileRows() []models.IntakeFile {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.IntakeFile
	for _, f := range r.files {
		out = append(out, *f)
	}
	return out
}

type formRepo struct{ r *memRepo }

func (f formRepo) FindActiveBySlug(_ context.Context, slug string) (*models.IntakeForm, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	for _, form := range f.r.forms {
		if form.Slug == slug && form.IsActive {
			return form, nil
		}
	}
	return nil, nil
}

func (f formRepo) Fields(_ context.Context, formID uuid.UUID) ([]models.IntakeField, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	return f.r.fields[formID], nil
}

func (f formRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	delete(f.r.forms, id)
	delete(f.r.fields, id)
	for sid, s := range f.r.subs {
		if s.FormID == id {
			f.r.deleteSubLocked(sid)
		}
	}
	return nil
}

func (r *memRepo) deleteSubLocked(id uuid.UUID) {
	delete(r.subs, id)
	for fid, file := range r.files {
		if file.SubmissionID == id {
			delete(r.files, fid)
		}
	}
}

type subRepo struct{ r *memRepo }

func (s subRepo) EmailExists(_ context.Context, formID uuid.UUID, email string, keys []string) (bool, error) {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	for _, sub := range s.r.subs {
		if sub.FormID != formID {
			continue
		}
		if strings.EqualFold(sub.Email, email) {
			return true, nil
		}
		for _, k := range keys {
			if v, ok := sub.Data[k].(string); ok && strings.EqualFold(strings.TrimSpace(v), email) {
				return true, nil
			}
		}
	}
	return false, nil
}

func (s subRepo) Create(_ context.Context, sub *models.IntakeSubmission) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	sub.ID = uuid.New()
	sub.SubmittedAt = time.Now()
	cp := *sub
	s.r.subs[sub.ID] = &cp
	return nil
}

func (s subRepo) FindByID(_ context.Context, id uuid.UUID) (*models.IntakeSubmission, error) {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	return s.r.subs[id], nil
}

func (s subRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	s.r.deleteSubLocked(id)
	return nil
}

type fileRepo struct{ r *memRepo }

func (f fileRepo) Create(_ context.Context, file *models.IntakeFile) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	if f.r.createFileErr != nil {
		return f.r.createFileErr
	}
	file.ID = uuid.New()
	cp := *file
	f.r.files[file.ID] = &cp
	return nil
}

func (f fileRepo) FindByID(_ context.Context, id uuid.UUID) (*models.IntakeFile, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	return f.r.files[id], nil
}

func (f fileRepo) ListBySubmission(_ context.Context, subID uuid.UUID) ([]models.IntakeFile, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	var out []models.IntakeFile
	for _, file := range f.r.files {
		if file.SubmissionID == subID {
			out = append(out, *file)
		}
	}
	return out, nil
}

func (f fileRepo) StorageKeysByForm(_ context.Context, formID uuid.UUID) ([]string, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	seen := map[string]bool{}
	var keys []string
	for _, file := range f.r.files {
		sub := f.r.subs[file.SubmissionID]
		if sub != nil && sub.FormID == formID && !seen[file.StorageKey] {
			seen[file.StorageKey] = true
			keys = append(keys, file.StorageKey)
		}
	}
	return keys, nil
}

func (f fileRepo) CountByStorageKey(_ context.Context, key string) (int, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	n := 0
	for _, file := range f.r.files {
		if file.StorageKey == key {
			n++
		}
	}
	return n, nil
}

func (f fileRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	delete(f.r.files, id)
	return nil
}

// memBlobs is an in-memory storage.ObjectStore.
type memBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  func(n int) error // called with the 1-based Put count
	puts    int
	delErr  error
}

func newMemBlobs() *memBlobs { return &memBlobs{objects: make(map[string][]byte)} }

func (m *memBlobs) Put(_ context.Context, key, _ string, body io.Reader, _ int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	if m.putErr != nil {
		if err := m.putErr(m.puts); err != nil {
			return err
		}
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.objects[key] = data
	return nil
}

func (m *memBlobs) Get(_ context.Context, key string) (*storage.Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &storage.Object{Body: io.NopCloser(bytes.NewReader(data)), Size: int64(len(data))}, nil
}

func (m *memBlobs) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.delErr != nil {
		return m.delErr
	}
	delete(m.objects, key)
	return nil
}

func (m *memBlobs) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

func (m *memBlobs) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// recordingNotifier records notifications and optionally fails.
type recordingNotifier struct {
	mu   sync.Mutex
	got  []*notify.Submission
	fail bool
}

func (n *recordingNotifier) SubmissionReceived(_ context.Context, s *notify.Submission) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.got = append(n.got, s)
	if n.fail {
		return errors.New("smtp unavailable")
	}
	return nil
}
