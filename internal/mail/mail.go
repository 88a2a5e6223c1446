package mail

import (
	"context"
	"log/slog"
)

// Message is a plain text email to a single recipient.
type Message struct {
	To      string
	ToName  string
	Subject string
	Text    string
}

// Mailer sends a single message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer records messages in the log instead of sending them. It is used
// when no mail provider is configured.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a LogMailer.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{logger: logger.With("component", "log_mailer")}
}

// Send implements Mailer.
func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	m.logger.InfoContext(ctx, "email not sent, no mail provider configured",
		"subject", msg.Subject,
		"to_name", msg.ToName)
	return nil
}

// Sender and content of the account notifications.
const (
	WelcomeSubject      = "Thanks for joining in!"
	CancellationSubject = "Sorry to see you go!"
)

// WelcomeMessage greets a newly registered user.
func WelcomeMessage(email, name string) Message {
	return Message{
		To:      email,
		ToName:  name,
		Subject: WelcomeSubject,
		Text:    "Welcome to the App, " + name,
	}
}

// CancellationMessage says goodbye to a user who deleted their account.
func CancellationMessage(email, name string) Message {
	return Message{
		To:      email,
		ToName:  name,
		Subject: CancellationSubject,
		Text:    "Goodbye, " + name + ", I hope to see you back soon!",
	}
}
