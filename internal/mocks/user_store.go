package mocks

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/store"
)

// MemoryUserStore implements store.UserStore in memory.
type MemoryUserStore struct {
	mu     sync.Mutex
	users  map[uuid.UUID]*domain.User
	tokens map[uuid.UUID]map[string]struct{}

	// Errors returned by the corresponding method when set
	CreateError error
	UpdateError error
	DeleteError error
	TokenError  error
}

var _ store.UserStore = (*MemoryUserStore)(nil)

// NewMemoryUserStore creates an empty store.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		users:  make(map[uuid.UUID]*domain.User),
		tokens: make(map[uuid.UUID]map[string]struct{}),
	}
}

func clone(u *domain.User) *domain.User {
	c := *u
	c.Password = ""
	return &c
}

func (m *MemoryUserStore) emailTaken(email string, except uuid.UUID) bool {
	for id, u := range m.users {
		if id != except && u.Email == email {
			return true
		}
	}
	return false
}

// Create implements store.UserStore.
func (m *MemoryUserStore) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateError != nil {
		return m.CreateError
	}
	if user.HashedPassword == "" {
		return store.ErrInvalidEntity
	}
	if m.emailTaken(user.Email, uuid.Nil) {
		return store.ErrEmailExists
	}
	m.users[user.ID] = clone(user)
	return nil
}

// GetByID implements store.UserStore.
func (m *MemoryUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return clone(u), nil
}

// GetByEmail implements store.UserStore.
func (m *MemoryUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	email = domain.NormalizeEmail(email)
	for _, u := range m.users {
		if u.Email == email {
			return clone(u), nil
		}
	}
	return nil, store.ErrUserNotFound
}

// GetByIDAndToken implements store.UserStore.
func (m *MemoryUserStore) GetByIDAndToken(ctx context.Context, id uuid.UUID, token string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	if _, ok := m.tokens[id][token]; !ok {
		return nil, store.ErrUserNotFound
	}
	return clone(u), nil
}

// Update implements store.UserStore.
func (m *MemoryUserStore) Update(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.UpdateError != nil {
		return m.UpdateError
	}
	existing, ok := m.users[user.ID]
	if !ok {
		return store.ErrUserNotFound
	}
	if m.emailTaken(user.Email, user.ID) {
		return store.ErrEmailExists
	}
	user.UpdatedAt = time.Now().UTC()
	updated := clone(user)
	updated.HasAvatar = existing.HasAvatar
	m.users[user.ID] = updated
	return nil
}

// SetHasAvatar implements store.UserStore.
func (m *MemoryUserStore) SetHasAvatar(ctx context.Context, id uuid.UUID, hasAvatar bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return store.ErrUserNotFound
	}
	u.HasAvatar = hasAvatar
	return nil
}

// Delete implements store.UserStore. Tokens are removed with the user.
func (m *MemoryUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.DeleteError != nil {
		return m.DeleteError
	}
	if _, ok := m.users[id]; !ok {
		return store.ErrUserNotFound
	}
	delete(m.users, id)
	delete(m.tokens, id)
	return nil
}

// AddToken implements store.UserStore.
func (m *MemoryUserStore) AddToken(ctx context.Context, userID uuid.UUID, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.TokenError != nil {
		return m.TokenError
	}
	if _, ok := m.users[userID]; !ok {
		return store.ErrUserNotFound
	}
	if m.tokens[userID] == nil {
		m.tokens[userID] = make(map[string]struct{})
	}
	m.tokens[userID][token] = struct{}{}
	return nil
}

// RemoveToken implements store.UserStore.
func (m *MemoryUserStore) RemoveToken(ctx context.Context, userID uuid.UUID, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tokens[userID][token]; !ok {
		return store.ErrTokenNotFound
	}
	delete(m.tokens[userID], token)
	return nil
}

// ClearTokens implements store.UserStore.
func (m *MemoryUserStore) ClearTokens(ctx context.Context, userID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := int64(len(m.tokens[userID]))
	delete(m.tokens, userID)
	return n, nil
}

// WithTx implements store.UserStore. The memory store ignores transactions.
func (m *MemoryUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return m
}

// TokenCount reports how many active tokens userID holds.
func (m *MemoryUserStore) TokenCount(userID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tokens[userID])
}

// Len reports how many users are stored.
func (m *MemoryUserStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}
