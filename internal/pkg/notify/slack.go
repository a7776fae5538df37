package notify

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/slack-go/slack"

	"github.com/xyz-asif/schoolsafe/internal/pkg/validator"
)

const slackWebhookHost = "hooks.slack.com"

// Alert is a short staff notification with labelled fields.
type Alert struct {
	Title  string
	Text   string
	Color  string
	Fields []Field
	Footer string
}

// Field is one label/value pair shown on an alert.
type Field struct {
	Title string
	Value string
}

// SlackWebhook posts alerts to a Slack incoming webhook.
type SlackWebhook struct {
	url  string
	post func(ctx context.Context, url string, msg *slack.WebhookMessage) error
}

func NewSlackWebhook(url string) *SlackWebhook {
	return &SlackWebhook{url: url, post: slack.PostWebhookContext}
}

// Enabled reports whether a webhook URL is configured.
func (s *SlackWebhook) Enabled() bool {
	return s != nil && s.url != ""
}

// Validate checks that the configured URL looks like a Slack incoming
// webhook. It does not post anything.
func (s *SlackWebhook) Validate() error {
	if !s.Enabled() {
		return errors.New("slack webhook URL is not set")
	}
	if !validator.IsSecureURL(s.url) {
		return errors.New("slack webhook URL must be an https URL")
	}
	u, _ := url.Parse(s.url)
	if !strings.EqualFold(u.Hostname(), slackWebhookHost) || !strings.HasPrefix(u.Path, "/services/") {
		return fmt.Errorf("slack webhook URL must be https://%s/services/...", slackWebhookHost)
	}
	return nil
}

func (s *SlackWebhook) Send(ctx context.Context, alert Alert) error {
	if !s.Enabled() {
		return nil
	}
	if err := s.post(ctx, s.url, Message(alert)); err != nil {
		return fmt.Errorf("slack webhook: %w", err)
	}
	return nil
}

// Message renders an alert as a webhook payload.
func Message(alert Alert) *slack.WebhookMessage {
	fields := make([]slack.AttachmentField, 0, len(alert.Fields))
	for _, f := range alert.Fields {
		fields = append(fields, slack.AttachmentField{Title: f.Title, Value: f.Value, Short: true})
	}

	return &slack.WebhookMessage{
		Text: alert.Title,
		Attachments: []slack.Attachment{
			{
				Color:    alert.Color,
				Fallback: alert.Title,
				Text:     alert.Text,
				Fields:   fields,
				Footer:   alert.Footer,
			},
		},
	}
}
