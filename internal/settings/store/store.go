package store

import (
	"context"

	"atelier/internal/settings/models"
)

// Store persists the singleton settings row.
//
// Error contract: Get returns sentinel.ErrNotFound (wrapped) when no row has
// been saved yet; Put upserts.
type Store interface {
	Get(ctx context.Context) (*models.Settings, error)
	Put(ctx context.Context, settings *models.Settings) error
}
