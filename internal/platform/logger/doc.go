// Package logger provides structured logging functionality for the application.
//
// It utilizes Go's standard library log/slog package to implement structured logging
// with configurable levels and a JSON or text output format. Request-scoped loggers
// travel through context.Context so handlers and services log with the same
// trace_id and user_id attributes.
package logger
