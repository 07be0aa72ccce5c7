package post

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"atelier/internal/content/models"
	"atelier/internal/sentinel"
)

type MemoryStore struct {
	mu    sync.RWMutex
	posts map[string]*models.Post
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{posts: make(map[string]*models.Post)}
}

func (s *MemoryStore) Create(_ context.Context, p *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.posts {
		if existing.Slug == p.Slug {
			return fmt.Errorf("slug %q taken: %w", p.Slug, sentinel.ErrConflict)
		}
	}
	clone := *p
	s.posts[p.ID] = &clone
	return nil
}

func (s *MemoryStore) Update(_ context.Context, p *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[p.ID]; !ok {
		return fmt.Errorf("post %s: %w", p.ID, sentinel.ErrNotFound)
	}
	for _, existing := range s.posts {
		if existing.ID != p.ID && existing.Slug == p.Slug {
			return fmt.Errorf("slug %q taken: %w", p.Slug, sentinel.ErrConflict)
		}
	}
	clone := *p
	s.posts[p.ID] = &clone
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return fmt.Errorf("post %s: %w", id, sentinel.ErrNotFound)
	}
	delete(s.posts, id)
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.posts[id]; ok {
		clone := *p
		return &clone, nil
	}
	return nil, fmt.Errorf("post %s: %w", id, sentinel.ErrNotFound)
}

func (s *MemoryStore) FindBySlug(_ context.Context, slug string) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.posts {
		if p.Slug == slug {
			clone := *p
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("post %s: %w", slug, sentinel.ErrNotFound)
}

func (s *MemoryStore) List(_ context.Context, publishedOnly bool, page models.Page) ([]*models.Post, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*models.Post, 0, len(s.posts))
	for _, p := range s.posts {
		if publishedOnly && !p.Published {
			continue
		}
		clone := *p
		matched = append(matched, &clone)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if page.Offset >= total {
		return []*models.Post{}, total, nil
	}
	end := min(page.Offset+page.Limit, total)
	return matched[page.Offset:end], total, nil
}
