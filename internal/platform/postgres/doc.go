// Package postgres provides PostgreSQL-specific implementations for the data
// storage interfaces defined in the internal/store package.
// It handles query execution, error mapping and the translation between
// domain entities and database rows. Session tokens are persisted as SHA-256
// digests; avatars live in a bytea column.
package postgres
