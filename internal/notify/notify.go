// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package notify delivers staff notifications about new intake
// submissions by email and Slack. Every channel is attempted once; callers
// log failures and never surface them to visitors.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hirexfed/internal/models"
)

// Attachment is a file attached to a submission email.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Submission summarizes one accepted submission for notification.
type Submission struct {
	ID          string
	FormTitle   string
	FormSlug    string
	Recipients  []string // form recipients; empty means the defaults
	Email       string
	IPAddress   string
	SubmittedAt time.Time
	Answers     []models.Answer
	Attachments []Attachment
	AdminURL    string
}

// Summary renders the plain-text body shared by the email and Slack
// messages.
func (s *Submission) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "New submission for %s\n", s.FormTitle)
	fmt.Fprintf(&b, "Submitted: %s\n", s.SubmittedAt.UTC().Format("2006-01-02 15:04 MST"))
	if s.Email != "" {
		fmt.Fprintf(&b, "Email: %s\n", s.Email)
	}
	b.WriteString("\n")
	for _, a := range s.Answers {
		v := a.Value
		if v == "" {
			v = "-"
		}
		fmt.Fprintf(&b, "%s: %s\n", a.Label, v)
	}
	if len(s.Attachments) > 0 {
		b.WriteString("\nAttachments:\n")
		for _, f := range s.Attachments {
			fmt.Fprintf(&b, "- %s\n", f.Filename)
		}
	}
	if s.AdminURL != "" {
		fmt.Fprintf(&b, "\nView in admin: %s\n", s.AdminURL)
	}
	return b.String()
}

// Dispatcher fans a submission out to every configured channel: the form
// recipients email (with attachments), the owner alert email and Slack.
type Dispatcher struct {
	mailer            *Mailer
	slack             *Slack
	defaultRecipients []string
	ownerAlerts       []string
}

// NewDispatcher creates a Dispatcher. mailer and slack may be nil to
// disable the channel.
func NewDispatcher(mailer *Mailer, slack *Slack, defaultRecipients, ownerAlerts []string) *Dispatcher {
	return &Dispatcher{
		mailer:            mailer,
		slack:             slack,
		defaultRecipients: defaultRecipients,
		ownerAlerts:       ownerAlerts,
	}
}

// SubmissionReceived attempts every channel once and returns the joined
// errors of the channels that failed.
func (d *Dispatcher) SubmissionReceived(ctx context.Context, s *Submission) error {
	var errs []error

	if d.mailer != nil {
		to := s.Recipients
		if len(to) == 0 {
			to = d.defaultRecipients
		}
		if len(to) > 0 {
			if err := d.mailer.SendSubmission(ctx, to, s); err != nil {
				errs = append(errs, fmt.Errorf("recipient email: %w", err))
			}
		}
		if len(d.ownerAlerts) > 0 {
			if err := d.mailer.SendAlert(ctx, d.ownerAlerts, s); err != nil {
				errs = append(errs, fmt.Errorf("owner alert: %w", err))
			}
		}
	}

	if d.slack != nil {
		if err := d.slack.Post(ctx, s); err != nil {
			errs = append(errs, fmt.Errorf("slack: %w", err))
		}
	}

	return errors.Join(errs...)
}
