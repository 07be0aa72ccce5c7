package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"atelier/internal/content/models"
	"atelier/internal/content/store/post"
	"atelier/internal/sentinel"
	dErrors "atelier/pkg/domain-errors"
	"atelier/pkg/platform/middleware/requesttime"
)

// PageConfig clamps list queries.
type PageConfig struct {
	DefaultSize int
	MaxSize     int
}

// Posts manages blog entries.
type Posts struct {
	store  post.Store
	pages  PageConfig
	logger *slog.Logger
}

func NewPosts(store post.Store, pages PageConfig, logger *slog.Logger) (*Posts, error) {
	if store == nil {
		return nil, fmt.Errorf("post store is required")
	}
	if pages.DefaultSize <= 0 || pages.MaxSize < pages.DefaultSize {
		return nil, fmt.Errorf("invalid page configuration")
	}
	return &Posts{store: store, pages: pages, logger: logger}, nil
}

// ClampPage normalizes caller-supplied pagination to the configured bounds.
func (s *Posts) ClampPage(limit, offset int) models.Page {
	if limit <= 0 {
		limit = s.pages.DefaultSize
	}
	if limit > s.pages.MaxSize {
		limit = s.pages.MaxSize
	}
	if offset < 0 {
		offset = 0
	}
	return models.Page{Limit: limit, Offset: offset}
}

func (s *Posts) Create(ctx context.Context, req models.CreatePostRequest) (*models.Post, error) {
	p, err := models.NewPost(req.Title, req.Body, req.Published, requesttime.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, p); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "a post with this title already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create post")
	}

	s.logger.InfoContext(ctx, "post created", "slug", p.Slug, "published", p.Published)
	return p, nil
}

func (s *Posts) Update(ctx context.Context, id string, req models.UpdatePostRequest) (*models.Post, error) {
	p, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	p.Title = req.Title
	p.Slug = models.Slugify(req.Title)
	p.Body = req.Body
	p.Published = req.Published
	p.UpdatedAt = requesttime.Now(ctx)

	if err := s.store.Update(ctx, p); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "a post with this title already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update post")
	}
	return p, nil
}

func (s *Posts) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "post not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete post")
	}
	return nil
}

// Get returns a post by id, regardless of publication state.
func (s *Posts) Get(ctx context.Context, id string) (*models.Post, error) {
	return s.get(ctx, id)
}

// GetPublishedBySlug is the public read: unpublished posts stay invisible.
func (s *Posts) GetPublishedBySlug(ctx context.Context, slug string) (*models.Post, error) {
	p, err := s.store.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "post not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load post")
	}
	if !p.Published {
		return nil, dErrors.New(dErrors.CodeNotFound, "post not found")
	}
	return p, nil
}

func (s *Posts) List(ctx context.Context, publishedOnly bool, limit, offset int) (*models.PostList, error) {
	posts, total, err := s.store.List(ctx, publishedOnly, s.ClampPage(limit, offset))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list posts")
	}
	return &models.PostList{Posts: posts, Total: total}, nil
}

func (s *Posts) get(ctx context.Context, id string) (*models.Post, error) {
	p, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "post not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load post")
	}
	return p, nil
}
