package block

import (
	"context"
	"sync"
	"time"

	"atelier/internal/ratelimit/models"
)

// MemoryStore is the in-process fallback used when Redis is not configured.
type MemoryStore struct {
	mu     sync.RWMutex
	blocks map[string]*models.BlockRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		blocks: make(map[string]*models.BlockRecord),
	}
}

func (s *MemoryStore) Put(_ context.Context, rec *models.BlockRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *rec
	s.blocks[rec.IP] = &clone
	return nil
}

func (s *MemoryStore) Get(_ context.Context, ip string, now time.Time) (*models.BlockRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.blocks[ip]
	if !ok || rec.ExpiredAt(now) {
		return nil, nil
	}
	clone := *rec
	return &clone, nil
}

func (s *MemoryStore) Delete(_ context.Context, ip string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.blocks, ip)
	return nil
}

func (s *MemoryStore) List(_ context.Context, now time.Time) ([]*models.BlockRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]*models.BlockRecord, 0, len(s.blocks))
	for ip, rec := range s.blocks {
		if rec.ExpiredAt(now) {
			delete(s.blocks, ip)
			continue
		}
		clone := *rec
		records = append(records, &clone)
	}
	return records, nil
}
