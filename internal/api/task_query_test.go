package api

import (
	"math"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/tasker-api/internal/service"
	"github.com/phrazzld/tasker-api/internal/store"
)

func TestParseTaskListQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query string
		want  store.TaskQuery
	}{
		{name: "empty", query: "", want: store.TaskQuery{}},
		{name: "completed true", query: "completed=true", want: store.TaskQuery{Completed: boolPtr(true)}},
		{name: "completed false", query: "completed=false", want: store.TaskQuery{Completed: boolPtr(false)}},
		{name: "limit only", query: "limit=5", want: store.TaskQuery{Limit: 5}},
		{name: "limit and page", query: "limit=2&page=3", want: store.TaskQuery{Limit: 2, Offset: 4}},
		{name: "page uses default size", query: "page=2", want: store.TaskQuery{Limit: DefaultPageSize, Offset: DefaultPageSize}},
		{name: "limit capped", query: "limit=5000", want: store.TaskQuery{Limit: service.MaxPageSize}},
		{name: "last representable page", query: "limit=1&page=9223372036854775807", want: store.TaskQuery{Limit: 1, Offset: math.MaxInt - 1}},
		{name: "sort camel desc", query: "sortBy=createdAt:desc", want: store.TaskQuery{SortBy: store.SortByCreatedAt, SortDesc: true}},
		{name: "sort snake", query: "sortBy=updated_at:asc", want: store.TaskQuery{SortBy: store.SortByUpdatedAt}},
		{name: "sort default direction", query: "sortBy=description", want: store.TaskQuery{SortBy: store.SortByDescription}},
		{
			name:  "combined",
			query: "completed=true&limit=2&page=1&sortBy=completed:desc",
			want:  store.TaskQuery{Completed: boolPtr(true), Limit: 2, SortBy: store.SortByCompleted, SortDesc: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			require.NoError(t, err)
			got, err := ParseTaskListQuery(values)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTaskListQueryRejects(t *testing.T) {
	t.Parallel()

	for _, query := range []string{
		"completed=yes",
		"completed=",
		"limit=0",
		"limit=-3",
		"limit=ten",
		"page=0",
		"page=1.5",
		"limit=4&page=4611686018427387906",
		"page=9223372036854775807",
		"sortBy=owner:asc",
		"sortBy=createdAt:sideways",
		"sortBy=",
	} {
		t.Run(query, func(t *testing.T) {
			values, err := url.ParseQuery(query)
			require.NoError(t, err)
			_, err = ParseTaskListQuery(values)
			assert.ErrorIs(t, err, service.ErrInvalidQuery)
		})
	}
}
