package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"atelier/internal/sentinel"
	"atelier/internal/settings/models"
	"atelier/internal/settings/store"
	dErrors "atelier/pkg/domain-errors"
	"atelier/pkg/platform/middleware/requesttime"
)

// Service reads and updates the site settings. Reads degrade to defaults when
// the store is unreachable so a settings outage never takes down consumers
// that only need a toggle.
type Service struct {
	store  store.Store
	logger *slog.Logger
}

func New(st store.Store, logger *slog.Logger) (*Service, error) {
	if st == nil {
		return nil, fmt.Errorf("settings store is required")
	}
	return &Service{store: st, logger: logger}, nil
}

func (s *Service) Get(ctx context.Context) (*models.Settings, error) {
	current, err := s.store.Get(ctx)
	if errors.Is(err, sentinel.ErrNotFound) {
		defaults := models.Defaults()
		return &defaults, nil
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load settings")
	}
	return current, nil
}

func (s *Service) Update(ctx context.Context, req models.UpdateRequest) (*models.Settings, error) {
	next := models.Settings{
		SiteTitle:               req.SiteTitle,
		CommentsEnabled:         req.CommentsEnabled,
		CommentsRequireApproval: req.CommentsRequireApproval,
		CommentRateLimitEnabled: req.CommentRateLimitEnabled,
		UpdatedAt:               requesttime.Now(ctx),
	}
	if err := s.store.Put(ctx, &next); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save settings")
	}
	return &next, nil
}

// capability reads one toggle, falling back to the protective default when
// the store cannot be reached.
func (s *Service) capability(ctx context.Context, name string, pick func(models.Settings) bool) bool {
	current, err := s.store.Get(ctx)
	if errors.Is(err, sentinel.ErrNotFound) {
		return pick(models.Defaults())
	}
	if err != nil {
		s.logger.WarnContext(ctx, "settings unavailable, using default",
			"capability", name, "error", err)
		return pick(models.Defaults())
	}
	return pick(*current)
}

func (s *Service) CommentsEnabled(ctx context.Context) bool {
	return s.capability(ctx, "comments_enabled", func(st models.Settings) bool { return st.CommentsEnabled })
}

func (s *Service) CommentsRequireApproval(ctx context.Context) bool {
	return s.capability(ctx, "comments_require_approval", func(st models.Settings) bool { return st.CommentsRequireApproval })
}

func (s *Service) CommentRateLimitEnabled(ctx context.Context) bool {
	return s.capability(ctx, "comment_rate_limit_enabled", func(st models.Settings) bool { return st.CommentRateLimitEnabled })
}
