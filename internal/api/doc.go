// Package api handles incoming HTTP requests, request validation and
// response formatting. Handlers are thin: decode, call one service
// operation, encode. Errors are translated centrally by
// MapErrorToStatusCode and GetSafeErrorMessage so raw error text never
// reaches a client.
package api
