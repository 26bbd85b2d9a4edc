// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/wneessen/go-mail"

	"hirexfed/internal/models"
)

type fakeSender struct {
	sent []*mail.Msg
	err  error
}

func (f *fakeSender) DialAndSendWithContext(_ context.Context, msgs ...*mail.Msg) error {
	f.sent = append(f.sent, msgs...)
	return f.err
}

func testSubmission() *Submission {
	return &Submission{
		ID:          "abc",
		FormTitle:   "Client Consultation",
		FormSlug:    "client-consultation",
		Email:       "jane@firm.com",
		SubmittedAt: time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC),
		Answers: []models.Answer{
			{Name: "full_name", Label: "Full Name", Value: "Jane Doe"},
			{Name: "phone", Label: "Phone", Value: ""},
		},
		Attachments: []Attachment{{Filename: "resume.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4")}},
		AdminURL:    "https://hirexfed.test/admin/submissions/abc",
	}
}

func TestSummary(t *testing.T) {
	got := testSubmission().Summary()
	for _, want := range []string{
		"New submission for Client Consultation",
		"Submitted: 2026-10-15 09:30 UTC",
		"Email: jane@firm.com",
		"Full Name: Jane Doe",
		"Phone: -",
		"- resume.pdf",
		"View in admin: https://hirexfed.test/admin/submissions/abc",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q:\n%s", want, got)
		}
	}
}

func TestDispatcherEmailChannels(t *testing.T) {
	fs := &fakeSender{}
	m := &Mailer{client: fs, from: "no-reply@hirexfed.test"}
	d := NewDispatcher(m, nil, []string{"intake@hirexfed.test"}, []string{"owner@hirexfed.test"})

	if err := d.SubmissionReceived(context.Background(), testSubmission()); err != nil {
		t.Fatalf("SubmissionReceived: %v", err)
	}
	if len(fs.sent) != 2 {
		t.Fatalf("sent %d messages, want 2", len(fs.sent))
	}

	to, err := fs.sent[0].GetRecipients()
	if err != nil {
		t.Fatalf("GetRecipients: %v", err)
	}
	if diff := cmp.Diff([]string{"intake@hirexfed.test"}, to); diff != "" {
		t.Errorf("default recipients mismatch (-want +got):\n%s", diff)
	}
	if n := len(fs.sent[0].GetAttachments()); n != 1 {
		t.Errorf("submission email has %d attachments, want 1", n)
	}

	alertTo, _ := fs.sent[1].GetRecipients()
	if diff := cmp.Diff([]string{"owner@hirexfed.test"}, alertTo); diff != "" {
		t.Errorf("owner alert recipients mismatch (-want +got):\n%s", diff)
	}
	if n := len(fs.sent[1].GetAttachments()); n != 0 {
		t.Errorf("owner alert has %d attachments, want 0", n)
	}
}

func TestDispatcherPrefersFormRecipients(t *testing.T) {
	fs := &fakeSender{}
	d := NewDispatcher(&Mailer{client: fs, from: "no-reply@hirexfed.test"}, nil, []string{"default@hirexfed.test"}, nil)

	sub := testSubmission()
	sub.Recipients = []string{"a@firm.com", "b@firm.com"}
	if err := d.SubmissionReceived(context.Background(), sub); err != nil {
		t.Fatalf("SubmissionReceived: %v", err)
	}
	to, _ := fs.sent[0].GetRecipients()
	if diff := cmp.Diff([]string{"a@firm.com", "b@firm.com"}, to); diff != "" {
		t.Errorf("recipients mismatch (-want +got):\n%s", diff)
	}
}

func TestDispatcherJoinsErrors(t *testing.T) {
	sendErr := errors.New("smtp down")
	fs := &fakeSender{err: sendErr}
	d := NewDispatcher(&Mailer{client: fs, from: "no-reply@hirexfed.test"}, nil, []string{"a@firm.com"}, []string{"o@firm.com"})

	err := d.SubmissionReceived(context.Background(), testSubmission())
	if !errors.Is(err, sendErr) {
		t.Fatalf("error = %v, want wrapped %v", err, sendErr)
	}
	if len(fs.sent) != 2 {
		t.Errorf("every channel must be attempted once, got %d sends", len(fs.sent))
	}
}

func TestSlackPost(t *testing.T) {
	var got struct {
		Text string `json:"text"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &got)
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	s := NewSlack(srv.URL, "<!channel>")
	if err := s.Post(context.Background(), testSubmission()); err != nil {
		t.Fatalf("Post: %v", err)
	}
	if !strings.HasPrefix(got.Text, "<!channel> New submission for Client Consultation") {
		t.Errorf("unexpected slack text: %q", got.Text)
	}
}

func TestSlackPostFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid_token", http.StatusForbidden)
	}))
	defer srv.Close()

	if err := NewSlack(srv.URL, "").Post(context.Background(), testSubmission()); err == nil {
		t.Error("expected error for non-2xx webhook response")
	}
}

func TestDisabledChannels(t *testing.T) {
	if NewSlack("", "x") != nil {
		t.Error("NewSlack without URL should return nil")
	}
	m, err := NewMailer("", 587, "", "", "a@b.c")
	if m != nil || err != nil {
		t.Errorf("NewMailer without host = (%v, %v), want (nil, nil)", m, err)
	}
	if err := NewDispatcher(nil, nil, nil, nil).SubmissionReceived(context.Background(), testSubmission()); err != nil {
		t.Errorf("dispatcher without channels returned %v", err)
	}
}
