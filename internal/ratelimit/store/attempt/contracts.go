package attempt

import (
	"context"
	"time"
)

// Store persists per-key login attempt records for the sliding-window
// limiter. Entries older than the window are pruned lazily on every call, so
// counts always reflect the rolling window ending at now.
type Store interface {
	// Record appends a uniquely-identified attempt scored at now, refreshes
	// the key's expiry to the window length, and returns the in-window count
	// after the append.
	Record(ctx context.Context, key string, now time.Time, window time.Duration) (int, error)

	// Count prunes expired entries and returns the number of attempts within
	// the window ending at now.
	Count(ctx context.Context, key string, now time.Time, window time.Duration) (int, error)

	// Clear removes all attempts for the key.
	Clear(ctx context.Context, key string) error
}
