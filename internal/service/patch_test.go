package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/tasker-api/internal/domain"
)

func TestPatchCheckAllowed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		patch   Patch
		wantErr bool
	}{
		{name: "empty", patch: Patch{}},
		{name: "allowed", patch: Patch{"description": json.RawMessage(`"x"`), "completed": json.RawMessage(`true`)}},
		{name: "foreign key", patch: Patch{"owner": json.RawMessage(`"x"`)}, wantErr: true},
		{name: "mixed", patch: Patch{"completed": json.RawMessage(`true`), "_id": json.RawMessage(`"x"`)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.patch.checkAllowed(taskPatchFields)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidOperation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPatchDecode(t *testing.T) {
	t.Parallel()

	p := Patch{
		"age":  json.RawMessage(`42`),
		"name": json.RawMessage(`null`),
		"bad":  json.RawMessage(`"forty"`),
	}

	var age int
	ok, err := p.decode("age", &age)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 42, age)

	var missing string
	ok, err = p.decode("email", &missing)
	assert.NoError(t, err)
	assert.False(t, ok)

	var name string
	_, err = p.decode("name", &name)
	assert.ErrorIs(t, err, domain.ErrValidation)

	var bad int
	_, err = p.decode("bad", &bad)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
