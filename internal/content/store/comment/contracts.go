package comment

import (
	"context"

	"atelier/internal/content/models"
)

// Store persists visitor comments.
//
// Error contract: Approve and Delete return sentinel.ErrNotFound (wrapped)
// for missing comments.
type Store interface {
	Create(ctx context.Context, c *models.Comment) error
	Approve(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error

	// ListByPost returns a post's comments oldest first. approvedOnly filters
	// to approved comments.
	ListByPost(ctx context.Context, postID string, approvedOnly bool) ([]*models.Comment, error)

	// ListPending returns all unapproved comments oldest first.
	ListPending(ctx context.Context) ([]*models.Comment, error)
}
