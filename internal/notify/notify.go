package notify

import (
	"context"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type Notifier interface {
	Send(ctx context.Context, title, text string) error
}

// Multi sends to every notifier and combines the failures.
type Multi []Notifier

func (m Multi) Send(ctx context.Context, title, text string) error {
	var err error
	for _, n := range m {
		if n == nil {
			continue
		}
		err = multierr.Append(err, n.Send(ctx, title, text))
	}
	return err
}

// Log writes the message to the structured log. Used when no chat
// integration is configured.
type Log struct {
	L *zap.Logger
}

func (l Log) Send(_ context.Context, title, text string) error {
	l.L.Warn("notification", zap.String("title", title), zap.String("text", text))
	return nil
}

// Settings selects the enabled notifiers.
type Settings struct {
	SlackWebhook   string
	TelegramToken  string
	TelegramChatID string
	TelegramAPIURL string
}

// Build returns the configured notifiers, or a Log notifier when none is set.
func Build(s Settings, log *zap.Logger) Notifier {
	var m Multi
	if tg := NewTelegram(s.TelegramAPIURL, s.TelegramToken, s.TelegramChatID); tg != nil {
		m = append(m, tg)
	}
	if sl := NewSlack(s.SlackWebhook); sl != nil {
		m = append(m, sl)
	}
	switch len(m) {
	case 0:
		return Log{L: log}
	case 1:
		return m[0]
	}
	return m
}
