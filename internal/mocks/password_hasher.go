package mocks

import (
	"strings"

	"github.com/phrazzld/tasker-api/internal/service/auth"
)

// hashPrefix marks values produced by MockPasswordHasher.Hash.
const hashPrefix = "hashed:"

// MockPasswordHasher implements auth.PasswordHasher without bcrypt's cost.
type MockPasswordHasher struct {
	// HashError, when set, is returned by Hash
	HashError error

	// HashCallCount tracks how many times Hash was called
	HashCallCount int
}

var _ auth.PasswordHasher = (*MockPasswordHasher)(nil)

// Hash implements auth.PasswordHasher.
func (m *MockPasswordHasher) Hash(password string) (string, error) {
	m.HashCallCount++
	if m.HashError != nil {
		return "", m.HashError
	}
	return hashPrefix + password, nil
}

// Compare implements auth.PasswordHasher.
func (m *MockPasswordHasher) Compare(hashedPassword, password string) error {
	if !strings.HasPrefix(hashedPassword, hashPrefix) || hashedPassword[len(hashPrefix):] != password {
		return auth.ErrPasswordMismatch
	}
	return nil
}
