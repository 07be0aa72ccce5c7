package models

import (
	"fmt"
	"time"

	dErrors "atelier/pkg/domain-errors"
)

// Axis identifies which rolling-window counter an attempt is recorded against.
// The IP axis uses a short window with a high ceiling, the username axis a
// longer window with a low ceiling.
type Axis string

const (
	AxisIP   Axis = "ip"
	AxisUser Axis = "user"
)

const (
	attemptKeyPrefix = "login_attempts"
	blockKeyPrefix   = "blocked_ip"

	// BlockIndexKey is the set of currently-blocked IPs, maintained alongside
	// each block and unblock write so the block list can be enumerated.
	BlockIndexKey = "blocked_ips"
)

// AttemptKey builds the counter-store key for one axis of the limiter.
func AttemptKey(axis Axis, identifier string) string {
	return fmt.Sprintf("%s:%s:%s", attemptKeyPrefix, axis, identifier)
}

// BlockKey builds the counter-store key holding a block record for an IP.
func BlockKey(ip string) string {
	return fmt.Sprintf("%s:%s", blockKeyPrefix, ip)
}

// Decision is the transient outcome of a rate-limit check. It is recomputed
// per request and never persisted.
type Decision struct {
	Allowed   bool          `json:"allowed"`
	Remaining int           `json:"remaining"`
	ResetAt   time.Time     `json:"reset_at"`
	Lockout   time.Duration `json:"-"`
	Reason    string        `json:"reason,omitempty"`
	Blocked   bool          `json:"blocked"`
	Permanent bool          `json:"permanent"`
}

// BlockRecord is the stored decision that an IP may not attempt
// authentication. An IP has at most one active record; newer blocks overwrite
// older ones. A nil ExpiresAt means the block is permanent.
type BlockRecord struct {
	IP           string     `json:"ip"`
	Reason       string     `json:"reason"`
	BlockedAt    time.Time  `json:"blocked_at"`
	AttemptCount int        `json:"attempt_count"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

// NewBlockRecord creates a BlockRecord with domain invariant validation.
// A zero duration or permanent=true produces a record with no expiry.
func NewBlockRecord(ip, reason string, attemptCount int, blockedAt time.Time, duration time.Duration, permanent bool) (*BlockRecord, error) {
	if ip == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "ip cannot be empty")
	}
	if reason == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "reason cannot be empty")
	}
	if attemptCount < 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "attempt_count cannot be negative")
	}

	rec := &BlockRecord{
		IP:           ip,
		Reason:       reason,
		BlockedAt:    blockedAt,
		AttemptCount: attemptCount,
	}
	if !permanent && duration > 0 {
		expires := blockedAt.Add(duration)
		rec.ExpiresAt = &expires
	}
	return rec, nil
}

// Permanent reports whether the record never expires on its own.
func (r *BlockRecord) Permanent() bool {
	return r.ExpiresAt == nil
}

// ExpiredAt reports whether the record has lapsed as of the given instant.
// Permanent records never expire.
func (r *BlockRecord) ExpiredAt(now time.Time) bool {
	if r.ExpiresAt == nil {
		return false
	}
	return !now.Before(*r.ExpiresAt)
}
