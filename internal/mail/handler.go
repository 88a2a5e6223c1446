package mail

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/tasker-api/internal/events"
)

// Enqueuer accepts messages for asynchronous delivery.
type Enqueuer interface {
	Enqueue(msg Message) error
}

// AccountEventHandler implements events.EventHandler, turning account events
// into notification emails.
type AccountEventHandler struct {
	out    Enqueuer
	logger *slog.Logger
}

var _ events.EventHandler = (*AccountEventHandler)(nil)

// NewAccountEventHandler creates a handler that enqueues onto out.
func NewAccountEventHandler(out Enqueuer, logger *slog.Logger) *AccountEventHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountEventHandler{
		out:    out,
		logger: logger.With("component", "account_mail_handler"),
	}
}

// HandleEvent implements events.EventHandler. Unknown event types are ignored.
func (h *AccountEventHandler) HandleEvent(ctx context.Context, event *events.AccountEvent) error {
	var build func(email, name string) Message
	switch event.Type {
	case events.UserSignedUp:
		build = WelcomeMessage
	case events.UserDeleted:
		build = CancellationMessage
	default:
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	var payload events.AccountPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if err := h.out.Enqueue(build(payload.Email, payload.Name)); err != nil {
		h.logger.Warn("dropping notification email",
			"error", err,
			"event_type", event.Type,
			"user_id", payload.UserID)
		return fmt.Errorf("failed to enqueue %s email: %w", event.Type, err)
	}

	h.logger.Debug("notification email queued",
		"event_type", event.Type,
		"user_id", payload.UserID)
	return nil
}
