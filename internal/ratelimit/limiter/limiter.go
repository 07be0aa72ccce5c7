package limiter

import (
	"context"
	"fmt"
	"log/slog"

	"atelier/internal/platform/config"
	"atelier/internal/platform/privacy"
	"atelier/internal/ratelimit/metrics"
	"atelier/internal/ratelimit/models"
	"atelier/internal/ratelimit/store/attempt"
	"atelier/internal/ratelimit/store/block"
	dErrors "atelier/pkg/domain-errors"
	"atelier/pkg/platform/middleware/requesttime"
)

const blockedReason = "IP address is blocked due to suspicious activity"

// Service is the sliding-window login limiter. It keeps two independent
// rolling counters per attempt, one keyed by source IP and one by username,
// and consults the block store before either counter.
//
// Counter-store outages fail open: a login must not be impossible just
// because Redis is down, so check errors degrade to "allowed" with a warning
// rather than propagating.
type Service struct {
	attempts attempt.Store
	blocks   block.Store
	cfg      config.LimitConfig
	logger   *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(attempts attempt.Store, blocks block.Store, cfg config.LimitConfig, opts ...Option) (*Service, error) {
	if attempts == nil {
		return nil, fmt.Errorf("attempt store is required")
	}
	if blocks == nil {
		return nil, fmt.Errorf("block store is required")
	}

	svc := &Service{
		attempts: attempts,
		blocks:   blocks,
		cfg:      cfg,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Check decides whether an authentication attempt from ip (and, when known,
// username) is permitted. A block on the IP short-circuits before any counter
// is touched. An empty username skips the user axis.
func (s *Service) Check(ctx context.Context, ip, username string) *models.Decision {
	now := requesttime.Now(ctx)

	rec, err := s.blocks.Get(ctx, ip, now)
	if err != nil {
		return s.failOpen(ctx, "block lookup failed", ip, err)
	}
	if rec != nil {
		metrics.RecordBlockedHit()
		d := &models.Decision{
			Allowed:   false,
			Reason:    blockedReason,
			Blocked:   true,
			Permanent: rec.Permanent(),
		}
		if rec.ExpiresAt != nil {
			d.ResetAt = *rec.ExpiresAt
		}
		return d
	}

	ipCount, err := s.attempts.Count(ctx, models.AttemptKey(models.AxisIP, ip), now, s.cfg.IPWindow)
	if err != nil {
		return s.failOpen(ctx, "ip counter read failed", ip, err)
	}

	userCount := 0
	if username != "" {
		userCount, err = s.attempts.Count(ctx, models.AttemptKey(models.AxisUser, username), now, s.cfg.UserWindow)
		if err != nil {
			return s.failOpen(ctx, "user counter read failed", ip, err)
		}
	}

	ipExceeded := ipCount >= s.cfg.IPLimit
	userExceeded := username != "" && userCount >= s.cfg.UserLimit

	if ipExceeded || userExceeded {
		d := &models.Decision{Allowed: false}
		switch {
		case ipExceeded && userExceeded:
			d.Reason = fmt.Sprintf("Too many login attempts from this IP (%d/%d) and for this user (%d/%d)",
				ipCount, s.cfg.IPLimit, userCount, s.cfg.UserLimit)
			d.Lockout = max(s.cfg.IPWindow, s.cfg.UserWindow)
			metrics.RecordRateLimited(string(models.AxisIP))
			metrics.RecordRateLimited(string(models.AxisUser))
		case ipExceeded:
			d.Reason = fmt.Sprintf("Too many login attempts from this IP (%d/%d)", ipCount, s.cfg.IPLimit)
			d.Lockout = s.cfg.IPWindow
			metrics.RecordRateLimited(string(models.AxisIP))
		default:
			d.Reason = fmt.Sprintf("Too many login attempts for this user (%d/%d)", userCount, s.cfg.UserLimit)
			d.Lockout = s.cfg.UserWindow
			metrics.RecordRateLimited(string(models.AxisUser))
		}
		d.ResetAt = now.Add(d.Lockout)

		s.logger.WarnContext(ctx, "login rate limit exceeded",
			"ip", privacy.AnonymizeIP(ip),
			"username", username,
			"ip_count", ipCount,
			"user_count", userCount,
			"reason", d.Reason,
		)
		return d
	}

	ipRemaining := s.cfg.IPLimit - ipCount
	remaining := ipRemaining
	resetAt := now.Add(s.cfg.IPWindow)
	if username != "" {
		if userRemaining := s.cfg.UserLimit - userCount; userRemaining < remaining {
			remaining = userRemaining
			resetAt = now.Add(s.cfg.UserWindow)
		}
	}

	return &models.Decision{
		Allowed:   true,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
}

// RecordFailure appends a now-scored entry to both axes and then applies the
// auto-block policy against the fresh IP-axis count. Store errors here are
// logged and swallowed so a flaky counter store cannot turn a login failure
// into a server error.
func (s *Service) RecordFailure(ctx context.Context, ip, username string) {
	now := requesttime.Now(ctx)

	ipCount, err := s.attempts.Record(ctx, models.AttemptKey(models.AxisIP, ip), now, s.cfg.IPWindow)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to record ip attempt",
			"ip", privacy.AnonymizeIP(ip), "error", err)
		return
	}

	if username != "" {
		if _, err := s.attempts.Record(ctx, models.AttemptKey(models.AxisUser, username), now, s.cfg.UserWindow); err != nil {
			s.logger.ErrorContext(ctx, "failed to record user attempt",
				"username", username, "error", err)
		}
	}

	if s.cfg.BlockThreshold > 0 && ipCount >= s.cfg.BlockThreshold {
		reason := fmt.Sprintf("auto-blocked after %d failed login attempts", ipCount)
		if _, err := s.block(ctx, ip, reason, ipCount, false, "auto"); err != nil {
			s.logger.ErrorContext(ctx, "failed to auto-block ip",
				"ip", privacy.AnonymizeIP(ip), "error", err)
		}
	}
}

// Clear drops both axes' counters after a successful login.
func (s *Service) Clear(ctx context.Context, ip, username string) {
	if err := s.attempts.Clear(ctx, models.AttemptKey(models.AxisIP, ip)); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear ip attempts",
			"ip", privacy.AnonymizeIP(ip), "error", err)
	}
	if username == "" {
		return
	}
	if err := s.attempts.Clear(ctx, models.AttemptKey(models.AxisUser, username)); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear user attempts",
			"username", username, "error", err)
	}
}

// Block creates a manual block record for the IP, replacing any existing one.
// The attempt-count snapshot is best effort; a counter read failure records
// zero rather than failing the block.
func (s *Service) Block(ctx context.Context, ip, reason string, permanent bool) (*models.BlockRecord, error) {
	now := requesttime.Now(ctx)

	count, err := s.attempts.Count(ctx, models.AttemptKey(models.AxisIP, ip), now, s.cfg.IPWindow)
	if err != nil {
		count = 0
	}
	return s.block(ctx, ip, reason, count, permanent, "manual")
}

func (s *Service) block(ctx context.Context, ip, reason string, count int, permanent bool, origin string) (*models.BlockRecord, error) {
	now := requesttime.Now(ctx)

	rec, err := models.NewBlockRecord(ip, reason, count, now, s.cfg.BlockDuration, permanent)
	if err != nil {
		return nil, err
	}
	if err := s.blocks.Put(ctx, rec); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store block record")
	}

	metrics.RecordBlockCreated(origin)
	s.logger.InfoContext(ctx, "ip blocked",
		"ip", privacy.AnonymizeIP(ip),
		"reason", reason,
		"origin", origin,
		"permanent", rec.Permanent(),
		"attempt_count", count,
	)
	return rec, nil
}

// Unblock removes any block for the IP. Unblocking an unblocked IP is a no-op.
func (s *Service) Unblock(ctx context.Context, ip string) error {
	if err := s.blocks.Delete(ctx, ip); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete block record")
	}
	s.logger.InfoContext(ctx, "ip unblocked", "ip", privacy.AnonymizeIP(ip))
	return nil
}

// ListBlocked returns all currently-active block records.
func (s *Service) ListBlocked(ctx context.Context) ([]*models.BlockRecord, error) {
	records, err := s.blocks.List(ctx, requesttime.Now(ctx))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list block records")
	}
	return records, nil
}

func (s *Service) failOpen(ctx context.Context, msg, ip string, err error) *models.Decision {
	metrics.RecordFailOpen()
	s.logger.WarnContext(ctx, "rate limiter failing open: "+msg,
		"ip", privacy.AnonymizeIP(ip), "error", err)
	return &models.Decision{
		Allowed:   true,
		Remaining: s.cfg.IPLimit,
		ResetAt:   requesttime.Now(ctx).Add(s.cfg.IPWindow),
	}
}
