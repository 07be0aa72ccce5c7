package models

import "time"

// Settings is the singleton site configuration row. Toggles here are read at
// decision time by other services, not cached at construction.
type Settings struct {
	SiteTitle               string    `json:"site_title"`
	CommentsEnabled         bool      `json:"comments_enabled"`
	CommentsRequireApproval bool      `json:"comments_require_approval"`
	CommentRateLimitEnabled bool      `json:"comment_rate_limit_enabled"`
	UpdatedAt               time.Time `json:"updated_at"`
}

// Defaults returns the settings used before an admin has saved any, and the
// fallback when the store is unreachable. Protective toggles default on.
func Defaults() Settings {
	return Settings{
		SiteTitle:               "atelier",
		CommentsEnabled:         true,
		CommentsRequireApproval: true,
		CommentRateLimitEnabled: true,
	}
}

type UpdateRequest struct {
	SiteTitle               string `json:"site_title" validate:"required,max=200"`
	CommentsEnabled         bool   `json:"comments_enabled"`
	CommentsRequireApproval bool   `json:"comments_require_approval"`
	CommentRateLimitEnabled bool   `json:"comment_rate_limit_enabled"`
}
