package repository

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/enroll/enroll/internal/model"
)

// MemoryStore keeps users in process memory.
// The email map plays the role of the unique index.
type MemoryStore struct {
	mu      sync.RWMutex
	byEmail map[string]model.User
}

// NewMemory returns an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{byEmail: make(map[string]model.User)}
}

// Name returns the backend name.
func (s *MemoryStore) Name() string {
	return DriverMemory
}

// EnsureIndexes is a no-op.
func (s *MemoryStore) EnsureIndexes(context.Context) error {
	return nil
}

// Insert adds a user unless the email is present.
func (s *MemoryStore) Insert(_ context.Context, email, passwordHash string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[email]; exists {
		return nil, ErrDuplicateKey
	}

	user := model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    creationTime(),
	}
	s.byEmail[email] = user

	return &user, nil
}

// InsertIfAbsent inserts the user unless the email is present.
func (s *MemoryStore) InsertIfAbsent(ctx context.Context, email, passwordHash string) (bool, error) {
	if _, err := s.Insert(ctx, email, passwordHash); err != nil {
		if errors.Is(err, ErrDuplicateKey) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// FindByEmail returns a copy of the stored user.
func (s *MemoryStore) FindByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

// Len returns the number of stored users.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byEmail)
}

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close(context.Context) error {
	return nil
}
