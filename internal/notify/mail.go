// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package notify

import (
	"bytes"
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// sender is the part of *mail.Client the Mailer uses.
type sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Mailer sends notification email over SMTP.
type Mailer struct {
	client sender
	from   string
}

// NewMailer creates an SMTP mailer. Returns (nil, nil) when host is empty
// so email notifications are simply disabled.
func NewMailer(host string, port int, username, password, from string) (*Mailer, error) {
	if host == "" {
		return nil, nil
	}

	opts := []mail.Option{
		mail.WithPort(port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(username),
			mail.WithPassword(password),
		)
	}

	client, err := mail.NewClient(host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &Mailer{client: client, from: from}, nil
}

// SendSubmission emails the full submission summary with its files
// attached.
func (m *Mailer) SendSubmission(ctx context.Context, to []string, s *Submission) error {
	msg, err := m.newMessage(to, "New "+s.FormTitle+" submission", s.Summary())
	if err != nil {
		return err
	}
	if s.Email != "" {
		if err := msg.ReplyTo(s.Email); err != nil {
			return fmt.Errorf("set reply-to: %w", err)
		}
	}
	for _, a := range s.Attachments {
		opts := []mail.FileOption{}
		if a.ContentType != "" {
			opts = append(opts, mail.WithFileContentType(mail.ContentType(a.ContentType)))
		}
		if err := msg.AttachReader(a.Filename, bytes.NewReader(a.Data), opts...); err != nil {
			return fmt.Errorf("attach %s: %w", a.Filename, err)
		}
	}

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send submission email: %w", err)
	}
	return nil
}

// SendAlert emails a short owner alert without attachments.
func (m *Mailer) SendAlert(ctx context.Context, to []string, s *Submission) error {
	body := fmt.Sprintf("A new %s submission arrived from %s.\n", s.FormTitle, s.Email)
	if s.AdminURL != "" {
		body += "\n" + s.AdminURL + "\n"
	}
	msg, err := m.newMessage(to, "[Alert] New "+s.FormTitle+" submission", body)
	if err != nil {
		return err
	}
	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send owner alert: %w", err)
	}
	return nil
}

func (m *Mailer) newMessage(to []string, subject, body string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return nil, fmt.Errorf("set from: %w", err)
	}
	if err := msg.To(to...); err != nil {
		return nil, fmt.Errorf("set to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	return msg, nil
}
