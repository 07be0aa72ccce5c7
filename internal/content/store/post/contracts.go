package post

import (
	"context"

	"atelier/internal/content/models"
)

// Store persists posts.
//
// Error contract: lookups return sentinel.ErrNotFound (wrapped) for missing
// posts; Create returns sentinel.ErrConflict when the slug is taken.
type Store interface {
	Create(ctx context.Context, p *models.Post) error
	Update(ctx context.Context, p *models.Post) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*models.Post, error)
	FindBySlug(ctx context.Context, slug string) (*models.Post, error)

	// List returns posts ordered newest first plus the total matching count.
	// publishedOnly filters to published posts.
	List(ctx context.Context, publishedOnly bool, page models.Page) ([]*models.Post, int, error)
}
