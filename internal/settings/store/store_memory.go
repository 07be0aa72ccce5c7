package store

import (
	"context"
	"fmt"
	"sync"

	"atelier/internal/sentinel"
	"atelier/internal/settings/models"
)

type MemoryStore struct {
	mu       sync.RWMutex
	settings *models.Settings
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Get(_ context.Context) (*models.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.settings == nil {
		return nil, fmt.Errorf("settings: %w", sentinel.ErrNotFound)
	}
	clone := *s.settings
	return &clone, nil
}

func (s *MemoryStore) Put(_ context.Context, settings *models.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *settings
	s.settings = &clone
	return nil
}
