package store_test

import (
	"testing"

	"github.com/phrazzld/tasker-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestSortFieldValid(t *testing.T) {
	t.Parallel()

	for _, f := range []store.SortField{
		store.SortByCreatedAt, store.SortByUpdatedAt, store.SortByDescription, store.SortByCompleted,
	} {
		assert.True(t, f.Valid(), f)
	}

	assert.False(t, store.SortField("").Valid())
	assert.False(t, store.SortField("owner_id").Valid())
	assert.False(t, store.SortField("created_at; DROP TABLE tasks").Valid())
}
