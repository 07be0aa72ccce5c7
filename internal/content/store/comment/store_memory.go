package comment

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"atelier/internal/content/models"
	"atelier/internal/sentinel"
)

type MemoryStore struct {
	mu       sync.RWMutex
	comments map[string]*models.Comment
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{comments: make(map[string]*models.Comment)}
}

func (s *MemoryStore) Create(_ context.Context, c *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *c
	s.comments[c.ID] = &clone
	return nil
}

func (s *MemoryStore) Approve(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[id]
	if !ok {
		return fmt.Errorf("comment %s: %w", id, sentinel.ErrNotFound)
	}
	c.Approved = true
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.comments[id]; !ok {
		return fmt.Errorf("comment %s: %w", id, sentinel.ErrNotFound)
	}
	delete(s.comments, id)
	return nil
}

func (s *MemoryStore) ListByPost(_ context.Context, postID string, approvedOnly bool) ([]*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*models.Comment, 0)
	for _, c := range s.comments {
		if c.PostID != postID {
			continue
		}
		if approvedOnly && !c.Approved {
			continue
		}
		clone := *c
		matched = append(matched, &clone)
	}
	sortByCreation(matched)
	return matched, nil
}

func (s *MemoryStore) ListPending(_ context.Context) ([]*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*models.Comment, 0)
	for _, c := range s.comments {
		if c.Approved {
			continue
		}
		clone := *c
		matched = append(matched, &clone)
	}
	sortByCreation(matched)
	return matched, nil
}

func sortByCreation(comments []*models.Comment) {
	sort.Slice(comments, func(i, j int) bool {
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
}
