package mocks

import (
	"context"

	"github.com/google/uuid"

	"github.com/phrazzld/tasker-api/internal/service/auth"
)

// MockTokenService implements auth.TokenService for testing
type MockTokenService struct {
	// IssueFn allows test cases to mock the Issue behavior
	IssueFn func(ctx context.Context, userID uuid.UUID) (string, error)

	// VerifyFn allows test cases to mock the Verify behavior
	VerifyFn func(ctx context.Context, token string) (*auth.Claims, error)
}

var _ auth.TokenService = (*MockTokenService)(nil)

// Issue implements auth.TokenService. The default returns a fresh random token.
func (m *MockTokenService) Issue(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.IssueFn != nil {
		return m.IssueFn(ctx, userID)
	}
	return userID.String() + "." + uuid.NewString(), nil
}

// Verify implements auth.TokenService. The default accepts tokens produced
// by the default Issue.
func (m *MockTokenService) Verify(ctx context.Context, token string) (*auth.Claims, error) {
	if m.VerifyFn != nil {
		return m.VerifyFn(ctx, token)
	}
	if len(token) < 36 {
		return nil, auth.ErrInvalidToken
	}
	id, err := uuid.Parse(token[:36])
	if err != nil {
		return nil, auth.ErrInvalidToken
	}
	return &auth.Claims{UserID: id}, nil
}
