package auth

import "errors"

// Common authentication service errors
var (
	// ErrInvalidToken indicates the token is malformed, unsigned, tampered with,
	// signed with an unexpected algorithm, or lacks a user id.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrMissingToken indicates a token was expected but not provided
	ErrMissingToken = errors.New("authentication token is missing")

	// ErrPasswordMismatch indicates a password does not match its stored hash
	ErrPasswordMismatch = errors.New("password does not match")
)
