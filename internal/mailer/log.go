package mailer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// LogSender logs emails instead of sending them. Used for dry runs.
type LogSender struct {
	log *slog.Logger
}

// NewLogSender creates a log-based sender.
func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &LogSender{log: logger}
}

// Send logs the envelope and the plain-text body.
func (s *LogSender) Send(_ context.Context, msg Message) error {
	if err := Validate(msg); err != nil {
		return fmt.Errorf("%w: %w", ErrSend, err)
	}
	s.log.Info("email not sent (dry run)",
		slog.String("from", msg.From),
		slog.Any("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.Int("html_bytes", len(msg.HTML)),
		slog.String("text", msg.Text),
	)
	return nil
}
