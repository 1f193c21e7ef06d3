// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package notify posts operational alerts to a chat channel.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Field is a titled value shown with an alert. Order is preserved.
type Field struct {
	Title string
	Value string
}

// Alert is a short message with optional fields.
type Alert struct {
	Text   string
	Fields []Field
}

// Notifier delivers alerts.
type Notifier interface {
	Alert(ctx context.Context, alert Alert) error
}

// Noop discards every alert.
type Noop struct{}

// Alert implements Notifier.
func (Noop) Alert(context.Context, Alert) error { return nil }

// New returns a Slack notifier for webhookURL, or Noop when it is empty.
func New(webhookURL string) Notifier {
	if webhookURL == "" {
		return Noop{}
	}
	return NewSlack(webhookURL, nil)
}

// Slack posts alerts to an incoming webhook.
type Slack struct {
	webhookURL string
	client     *http.Client
}

// NewSlack creates a Slack notifier. A nil client gets a default with timeout.
func NewSlack(webhookURL string, client *http.Client) *Slack {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Slack{webhookURL: webhookURL, client: client}
}

type slackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type slackAttachment struct {
	Fields []slackField `json:"fields"`
}

type slackPayload struct {
	Text        string            `json:"text"`
	Attachments []slackAttachment `json:"attachments,omitempty"`
}

// Alert implements Notifier.
func (s *Slack) Alert(ctx context.Context, alert Alert) error {
	payload := slackPayload{Text: alert.Text}
	if len(alert.Fields) > 0 {
		fields := make([]slackField, len(alert.Fields))
		for i, f := range alert.Fields {
			fields[i] = slackField{Title: f.Title, Value: f.Value}
		}
		payload.Attachments = []slackAttachment{{Fields: fields}}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting to slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("slack returned status %d", resp.StatusCode)
	}
	return nil
}
