package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type Slack struct {
	Webhook string
	Client  *http.Client
}

// NewSlack returns nil when no webhook is configured.
func NewSlack(webhook string) *Slack {
	if webhook == "" {
		return nil
	}
	return &Slack{
		Webhook: webhook,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// slackMessage is an incoming-webhook message: a header block with the
// title, a section with the body, and a plain fallback for notifications.
type slackMessage struct {
	Text   string       `json:"text"`
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type string     `json:"type"`
	Text *slackText `json:"text,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

var slackEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func newSlackMessage(title, text string) slackMessage {
	m := slackMessage{
		Text: title + ": " + text,
		Blocks: []slackBlock{
			{Type: "header", Text: &slackText{Type: "plain_text", Text: title}},
		},
	}
	if text != "" {
		m.Blocks = append(m.Blocks, slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: slackEscaper.Replace(text)},
		})
	}
	return m
}

func (s *Slack) Send(ctx context.Context, title, text string) error {
	if s == nil {
		return errors.New("slack disabled")
	}
	body, err := json.Marshal(newSlackMessage(title, text))
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Webhook, bytes.NewReader(body))
	if err != nil {
		return errors.New("slack: bad webhook url")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		// the webhook url is a secret
		return errors.New("slack: request failed")
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		reply, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("slack: status %d: %s", resp.StatusCode, strings.TrimSpace(string(reply)))
	}
	return nil
}
