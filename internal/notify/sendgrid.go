package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

const defaultSendGridURL = "https://api.sendgrid.com/v3/mail/send"

// SendGridConfig configures the SendGrid v3 client.
type SendGridConfig struct {
	APIKey  string
	URL     string
	From    string
	Timeout time.Duration
}

// SendGridMailer posts messages to the SendGrid v3 mail/send endpoint.
type SendGridMailer struct {
	cfg SendGridConfig
}

// NewSendGridMailer builds the mailer, applying defaults.
func NewSendGridMailer(cfg SendGridConfig) *SendGridMailer {
	if cfg.URL == "" {
		cfg.URL = defaultSendGridURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &SendGridMailer{cfg: cfg}
}

type sendGridAddress struct {
	Email string `json:"email"`
}

type sendGridPersonalization struct {
	To []sendGridAddress `json:"to"`
}

type sendGridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sendGridRequest struct {
	Personalizations []sendGridPersonalization `json:"personalizations"`
	From             sendGridAddress           `json:"from"`
	Subject          string                    `json:"subject"`
	Content          []sendGridContent         `json:"content"`
}

// Send delivers msg. Any non-2xx response is an error carrying the body.
func (m *SendGridMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	timeout := m.cfg.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	payload := sendGridRequest{
		Personalizations: []sendGridPersonalization{{To: []sendGridAddress{{Email: msg.To}}}},
		From:             sendGridAddress{Email: m.cfg.From},
		Subject:          msg.Subject,
		Content:          []sendGridContent{{Type: "text/html", Value: msg.HTML}},
	}

	agent := fiber.Post(m.cfg.URL)
	agent.Set(fiber.HeaderAuthorization, "Bearer "+m.cfg.APIKey)
	agent.JSON(payload)
	agent.Timeout(timeout)
	if err := agent.Parse(); err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}

	status, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("sendgrid: %w", errors.Join(errs...))
	}
	if status < fiber.StatusOK || status >= fiber.StatusMultipleChoices {
		return fmt.Errorf("sendgrid: unexpected status %d: %s", status, body)
	}
	return nil
}
