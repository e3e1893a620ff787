package email

import (
	"context"
	"log/slog"
)

// Message is a single transactional email.
type Message struct {
	From     string
	To       string
	ReplyTo  string
	Subject  string
	TextBody string
	HTMLBody string
	Tag      string
}

// Transport delivers messages.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// LogTransport writes messages to the log instead of sending them. Used in
// development when no Postmark token is configured.
type LogTransport struct {
	logger *slog.Logger
}

func NewLogTransport(logger *slog.Logger) *LogTransport {
	return &LogTransport{logger: logger}
}

func (t *LogTransport) Send(_ context.Context, msg Message) error {
	t.logger.Info("email not sent (log transport)",
		"from", msg.From,
		"to", msg.To,
		"reply_to", msg.ReplyTo,
		"subject", msg.Subject,
		"tag", msg.Tag,
	)
	t.logger.Debug("email body", "text", msg.TextBody)
	return nil
}
