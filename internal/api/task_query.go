package api

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/phrazzld/tasker-api/internal/service"
	"github.com/phrazzld/tasker-api/internal/store"
)

// DefaultPageSize applies when page is given without limit.
const DefaultPageSize = 10

// sortFields maps accepted sortBy field names, camel and snake case, to columns.
var sortFields = map[string]store.SortField{
	"createdAt":   store.SortByCreatedAt,
	"created_at":  store.SortByCreatedAt,
	"updatedAt":   store.SortByUpdatedAt,
	"updated_at":  store.SortByUpdatedAt,
	"description": store.SortByDescription,
	"completed":   store.SortByCompleted,
}

// ParseTaskListQuery turns the completed, limit, page and sortBy query
// parameters into a store.TaskQuery. Any malformed value fails with
// service.ErrInvalidQuery.
func ParseTaskListQuery(values url.Values) (store.TaskQuery, error) {
	var q store.TaskQuery

	if raw, ok := lookup(values, "completed"); ok {
		switch raw {
		case "true":
			q.Completed = boolPtr(true)
		case "false":
			q.Completed = boolPtr(false)
		default:
			return q, fmt.Errorf("%w: completed must be true or false", service.ErrInvalidQuery)
		}
	}

	limit, hasLimit, err := positiveInt(values, "limit")
	if err != nil {
		return q, err
	}
	page, hasPage, err := positiveInt(values, "page")
	if err != nil {
		return q, err
	}
	if hasLimit {
		q.Limit = min(limit, service.MaxPageSize)
	}
	if hasPage {
		if !hasLimit {
			q.Limit = DefaultPageSize
		}
		if page-1 > math.MaxInt/q.Limit {
			return q, fmt.Errorf("%w: page is out of range", service.ErrInvalidQuery)
		}
		q.Offset = (page - 1) * q.Limit
	}

	if raw, ok := lookup(values, "sortBy"); ok {
		field, dir, _ := strings.Cut(raw, ":")
		sortBy, known := sortFields[field]
		if !known {
			return q, fmt.Errorf("%w: sortBy field must be one of description, completed, createdAt, updatedAt",
				service.ErrInvalidQuery)
		}
		q.SortBy = sortBy
		switch dir {
		case "", "asc":
		case "desc":
			q.SortDesc = true
		default:
			return q, fmt.Errorf("%w: sortBy direction must be asc or desc", service.ErrInvalidQuery)
		}
	}

	return q, nil
}

// lookup returns the first value of key. A key present with an empty value
// counts as present.
func lookup(values url.Values, key string) (string, bool) {
	v, ok := values[key]
	if !ok || len(v) == 0 {
		return "", false
	}
	return v[0], true
}

func positiveInt(values url.Values, key string) (int, bool, error) {
	raw, ok := lookup(values, key)
	if !ok {
		return 0, false, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, true, fmt.Errorf("%w: %s must be a positive integer", service.ErrInvalidQuery, key)
	}
	return n, true, nil
}

func boolPtr(b bool) *bool {
	return &b
}
