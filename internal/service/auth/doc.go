// Package auth provides session token signing and password hashing.
package auth
