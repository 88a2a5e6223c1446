package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Account event types.
const (
	UserSignedUp = "user.signed_up"
	UserDeleted  = "user.deleted"
)

// AccountEvent records a change to a user account.
type AccountEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the account event type constants
	Type string `json:"type"`

	// Payload contains the event-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	CreatedAt time.Time `json:"created_at"`
}

// AccountPayload identifies the account an event refers to. It is captured
// at emit time so handlers still have it after the user row is gone.
type AccountPayload struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Name   string    `json:"name"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *AccountEvent) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// NewAccountEvent creates a new AccountEvent with the specified type and payload.
func NewAccountEvent(eventType string, payload any) (*AccountEvent, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &AccountEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *AccountEvent) error
}

// EventEmitter defines an interface for components that can emit events.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *AccountEvent) error
}
