package notify

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/config"
)

// Message is a rendered email ready for delivery.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Mailer delivers a single message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// NoopMailer logs messages instead of sending them. It is used when the
// email provider is not configured.
type NoopMailer struct {
	logger *zap.Logger
}

// NewNoopMailer returns a mailer that only logs.
func NewNoopMailer(logger *zap.Logger) *NoopMailer {
	return &NoopMailer{logger: logger}
}

// Send logs the message and reports success.
func (m *NoopMailer) Send(_ context.Context, msg Message) error {
	m.logger.Warn("email provider not configured; skipping email",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject))
	return nil
}

// Skipped reports whether the mailer drops every message.
func Skipped(m Mailer) bool {
	_, ok := m.(*NoopMailer)
	return ok
}

// NewMailer picks SendGrid when fully configured and the no-op mailer otherwise.
func NewMailer(cfg config.NotificationConfig, logger *zap.Logger) Mailer {
	if !cfg.EmailConfigured() {
		logger.Warn("SendGrid not configured; email notifications disabled")
		return NewNoopMailer(logger)
	}
	return NewSendGridMailer(SendGridConfig{
		APIKey:  cfg.SendGridAPIKey,
		URL:     cfg.SendGridURL,
		From:    cfg.FromEmail,
		Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	})
}
