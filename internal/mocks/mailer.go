package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/tasker-api/internal/events"
	"github.com/phrazzld/tasker-api/internal/mail"
)

// RecordingMailer implements mail.Mailer by keeping every message it receives.
type RecordingMailer struct {
	mu   sync.Mutex
	sent []mail.Message

	// SendError, when set, is returned instead of recording the message
	SendError error
}

var _ mail.Mailer = (*RecordingMailer)(nil)

// Send implements mail.Mailer.
func (m *RecordingMailer) Send(ctx context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendError != nil {
		return m.SendError
	}
	m.sent = append(m.sent, msg)
	return nil
}

// Sent returns a copy of the delivered messages.
func (m *RecordingMailer) Sent() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mail.Message(nil), m.sent...)
}

// RecordingEmitter implements events.EventEmitter by keeping every event.
type RecordingEmitter struct {
	mu     sync.Mutex
	events []*events.AccountEvent

	// EmitError, when set, is returned after the event is recorded
	EmitError error
}

var _ events.EventEmitter = (*RecordingEmitter)(nil)

// EmitEvent implements events.EventEmitter.
func (m *RecordingEmitter) EmitEvent(ctx context.Context, event *events.AccountEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.EmitError
}

// Events returns a copy of the emitted events.
func (m *RecordingEmitter) Events() []*events.AccountEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*events.AccountEvent(nil), m.events...)
}
