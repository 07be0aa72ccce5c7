package block

import (
	"context"
	"time"

	"atelier/internal/ratelimit/models"
)

// Store persists IP block records. An IP has at most one active record; Put
// overwrites any existing one. Implementations maintain a secondary index of
// currently-blocked IPs, updated alongside every block and unblock write, so
// List can enumerate active blocks.
type Store interface {
	// Put stores the record, replacing any existing block for the same IP.
	Put(ctx context.Context, rec *models.BlockRecord) error

	// Get returns the active record for the IP as of now, or nil if the IP is
	// not blocked or its block has lapsed.
	Get(ctx context.Context, ip string, now time.Time) (*models.BlockRecord, error)

	// Delete removes the block for the IP. Removing an absent block is not an
	// error.
	Delete(ctx context.Context, ip string) error

	// List returns all records active as of now.
	List(ctx context.Context, now time.Time) ([]*models.BlockRecord, error)
}
