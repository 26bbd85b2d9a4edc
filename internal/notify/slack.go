// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package notify

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"
)

// Slack posts submission alerts to an incoming webhook.
type Slack struct {
	webhookURL string
	mention    string
}

// NewSlack returns nil when webhookURL is empty so the channel is disabled.
// mention, e.g. "<!channel>" or "<@U123>", is prefixed to every message.
func NewSlack(webhookURL, mention string) *Slack {
	if webhookURL == "" {
		return nil
	}
	return &Slack{webhookURL: webhookURL, mention: mention}
}

// Post sends the submission summary.
func (s *Slack) Post(ctx context.Context, sub *Submission) error {
	text := sub.Summary()
	if s.mention != "" {
		text = s.mention + " " + text
	}
	if err := slack.PostWebhookContext(ctx, s.webhookURL, &slack.WebhookMessage{Text: text}); err != nil {
		return fmt.Errorf("post slack webhook: %w", err)
	}
	return nil
}
