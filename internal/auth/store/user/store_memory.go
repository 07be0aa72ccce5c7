package user

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"atelier/internal/auth/models"
	"atelier/internal/sentinel"
)

// MemoryStore keeps users in memory. Used in tests and when Postgres is not
// configured.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]*models.User)}
}

func (s *MemoryStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Username, user.Username) {
			return fmt.Errorf("username %q taken: %w", user.Username, sentinel.ErrConflict)
		}
	}

	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, userID string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if user, ok := s.users[userID]; ok {
		clone := *user
		return &clone, nil
	}
	return nil, fmt.Errorf("user %s: %w", userID, sentinel.ErrNotFound)
}

func (s *MemoryStore) FindByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if strings.EqualFold(user.Username, username) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", username, sentinel.ErrNotFound)
}

func (s *MemoryStore) Update(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return fmt.Errorf("user %s: %w", user.ID, sentinel.ErrNotFound)
	}
	for _, existing := range s.users {
		if existing.ID != user.ID && strings.EqualFold(existing.Username, user.Username) {
			return fmt.Errorf("username %q taken: %w", user.Username, sentinel.ErrConflict)
		}
	}

	clone := *user
	s.users[user.ID] = &clone
	return nil
}
