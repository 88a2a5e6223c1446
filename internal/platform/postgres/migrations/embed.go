// Package migrations holds the goose SQL migrations for the PostgreSQL schema.
package migrations

import "embed"

// FS contains every migration file, rooted at ".".
//
//go:embed *.sql
var FS embed.FS
