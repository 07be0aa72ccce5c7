package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"atelier/internal/sentinel"
	"atelier/internal/settings/models"
)

// PostgresStore keeps the settings in a single-row table keyed by a constant
// id so the upsert stays a plain ON CONFLICT.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context) (*models.Settings, error) {
	var out models.Settings
	err := s.db.QueryRowContext(ctx, `
		SELECT site_title, comments_enabled, comments_require_approval, comment_rate_limit_enabled, updated_at
		FROM site_settings WHERE id = 1`).
		Scan(&out.SiteTitle, &out.CommentsEnabled, &out.CommentsRequireApproval, &out.CommentRateLimitEnabled, &out.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("settings: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return &out, nil
}

func (s *PostgresStore) Put(ctx context.Context, settings *models.Settings) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO site_settings (id, site_title, comments_enabled, comments_require_approval, comment_rate_limit_enabled, updated_at)
		VALUES (1, $1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			site_title = EXCLUDED.site_title,
			comments_enabled = EXCLUDED.comments_enabled,
			comments_require_approval = EXCLUDED.comments_require_approval,
			comment_rate_limit_enabled = EXCLUDED.comment_rate_limit_enabled,
			updated_at = EXCLUDED.updated_at`,
		settings.SiteTitle, settings.CommentsEnabled, settings.CommentsRequireApproval, settings.CommentRateLimitEnabled, settings.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("put settings: %w", err)
	}
	return nil
}
