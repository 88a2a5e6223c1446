// Package sendgridmail delivers mail.Message values through the SendGrid v3 API.
package sendgridmail

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/phrazzld/tasker-api/internal/mail"
)

// Sender is the subset of the SendGrid client used by Mailer.
type Sender interface {
	SendWithContext(ctx context.Context, email *sgmail.SGMailV3) (*rest.Response, error)
}

// Mailer implements mail.Mailer on top of SendGrid.
type Mailer struct {
	client Sender
	from   *sgmail.Email
	logger *slog.Logger
}

var _ mail.Mailer = (*Mailer)(nil)

// New creates a Mailer that authenticates with apiKey and sends from the
// given address.
func New(apiKey, fromAddress, fromName string, logger *slog.Logger) *Mailer {
	return NewWithSender(sendgrid.NewSendClient(apiKey), fromAddress, fromName, logger)
}

// NewWithSender creates a Mailer around an existing client.
func NewWithSender(client Sender, fromAddress, fromName string, logger *slog.Logger) *Mailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mailer{
		client: client,
		from:   sgmail.NewEmail(fromName, fromAddress),
		logger: logger.With("component", "sendgrid_mailer"),
	}
}

// Send implements mail.Mailer. Any non-2xx response is an error.
func (m *Mailer) Send(ctx context.Context, msg mail.Message) error {
	to := sgmail.NewEmail(msg.ToName, msg.To)
	email := sgmail.NewSingleEmail(m.from, msg.Subject, to, msg.Text, "")

	resp, err := m.client.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("sendgrid request failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid rejected message: status %d", resp.StatusCode)
	}

	m.logger.DebugContext(ctx, "email accepted by sendgrid",
		"subject", msg.Subject,
		"status", resp.StatusCode)
	return nil
}
