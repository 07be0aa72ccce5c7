package user

import (
	"context"

	"atelier/internal/auth/models"
)

// Store persists administrative accounts.
//
// Error contract: methods return sentinel.ErrNotFound (wrapped) when the user
// does not exist, sentinel.ErrConflict when a username is already taken, and
// wrapped infrastructure errors otherwise.
type Store interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, userID string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}
