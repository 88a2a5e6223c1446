package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/phrazzld/tasker-api/internal/store"
)

// MemoryAvatarStore implements store.AvatarStore in memory.
type MemoryAvatarStore struct {
	mu     sync.Mutex
	images map[uuid.UUID][]byte
}

var _ store.AvatarStore = (*MemoryAvatarStore)(nil)

// NewMemoryAvatarStore creates an empty store.
func NewMemoryAvatarStore() *MemoryAvatarStore {
	return &MemoryAvatarStore{images: make(map[uuid.UUID][]byte)}
}

// Put implements store.AvatarStore.
func (m *MemoryAvatarStore) Put(ctx context.Context, userID uuid.UUID, image []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.images[userID] = append([]byte(nil), image...)
	return nil
}

// Get implements store.AvatarStore.
func (m *MemoryAvatarStore) Get(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	img, ok := m.images[userID]
	if !ok {
		return nil, store.ErrAvatarNotFound
	}
	return img, nil
}

// Delete implements store.AvatarStore.
func (m *MemoryAvatarStore) Delete(ctx context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.images, userID)
	return nil
}

// TestifyMockAvatarStore is a mock of store.AvatarStore for use with testify/mock
type TestifyMockAvatarStore struct {
	mock.Mock
}

var _ store.AvatarStore = (*TestifyMockAvatarStore)(nil)

// Put is a mock implementation of store.AvatarStore.Put
func (m *TestifyMockAvatarStore) Put(ctx context.Context, userID uuid.UUID, image []byte) error {
	args := m.Called(ctx, userID, image)
	return args.Error(0)
}

// Get is a mock implementation of store.AvatarStore.Get
func (m *TestifyMockAvatarStore) Get(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	args := m.Called(ctx, userID)
	if img, ok := args.Get(0).([]byte); ok {
		return img, args.Error(1)
	}
	return nil, args.Error(1)
}

// Delete is a mock implementation of store.AvatarStore.Delete
func (m *TestifyMockAvatarStore) Delete(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
