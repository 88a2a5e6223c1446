package sendgridmail

import (
	"context"
	"errors"
	"testing"

	"github.com/sendgrid/rest"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/tasker-api/internal/mail"
)

type fakeSender struct {
	last   *sgmail.SGMailV3
	status int
	err    error
}

func (f *fakeSender) SendWithContext(ctx context.Context, email *sgmail.SGMailV3) (*rest.Response, error) {
	f.last = email
	if f.err != nil {
		return nil, f.err
	}
	return &rest.Response{StatusCode: f.status}, nil
}

func TestMailerSend(t *testing.T) {
	sender := &fakeSender{status: 202}
	m := NewWithSender(sender, "noreply@tasker.local", "Tasker", nil)

	err := m.Send(context.Background(), mail.WelcomeMessage("ada@example.com", "Ada"))
	require.NoError(t, err)

	require.NotNil(t, sender.last)
	assert.Equal(t, "noreply@tasker.local", sender.last.From.Address)
	assert.Equal(t, "Tasker", sender.last.From.Name)
	assert.Equal(t, mail.WelcomeSubject, sender.last.Subject)
	require.Len(t, sender.last.Personalizations, 1)
	require.Len(t, sender.last.Personalizations[0].To, 1)
	assert.Equal(t, "ada@example.com", sender.last.Personalizations[0].To[0].Address)
	require.NotEmpty(t, sender.last.Content)
	assert.Equal(t, "text/plain", sender.last.Content[0].Type)
	assert.Equal(t, "Welcome to the App, Ada", sender.last.Content[0].Value)
}

func TestMailerSendErrors(t *testing.T) {
	tests := []struct {
		name   string
		sender *fakeSender
	}{
		{name: "transport error", sender: &fakeSender{err: errors.New("dial tcp: timeout")}},
		{name: "rejected", sender: &fakeSender{status: 401}},
		{name: "server error", sender: &fakeSender{status: 503}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewWithSender(tt.sender, "noreply@tasker.local", "Tasker", nil)
			assert.Error(t, m.Send(context.Background(), mail.CancellationMessage("a@b.co", "A")))
		})
	}
}

func TestNew(t *testing.T) {
	m := New("SG.key", "noreply@tasker.local", "Tasker", nil)
	assert.NotNil(t, m.client)
}
