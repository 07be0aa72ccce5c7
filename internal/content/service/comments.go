package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"atelier/internal/content/models"
	"atelier/internal/content/store/comment"
	"atelier/internal/platform/config"
	"atelier/internal/ratelimit/store/attempt"
	"atelier/internal/platform/privacy"
	"atelier/internal/sentinel"
	dErrors "atelier/pkg/domain-errors"
	"atelier/pkg/platform/middleware/requesttime"
)

// Capabilities exposes the site toggles the comment flow consults at decision
// time, so a settings change takes effect without a restart.
type Capabilities interface {
	CommentsEnabled(ctx context.Context) bool
	CommentsRequireApproval(ctx context.Context) bool
	CommentRateLimitEnabled(ctx context.Context) bool
}

// PostLookup is the slice of the posts service the comment flow needs.
type PostLookup interface {
	GetPublishedBySlug(ctx context.Context, slug string) (*models.Post, error)
	Get(ctx context.Context, id string) (*models.Post, error)
}

// SpamChecker flags a submission for moderation regardless of the approval
// setting. Implementations must not block.
type SpamChecker interface {
	IsSpam(author, body string) bool
}

// HeuristicSpamChecker flags comments that look like link drops.
type HeuristicSpamChecker struct {
	MaxLinks int
}

func (c HeuristicSpamChecker) IsSpam(author, body string) bool {
	limit := c.MaxLinks
	if limit <= 0 {
		limit = 2
	}
	links := strings.Count(body, "http://") + strings.Count(body, "https://")
	links += strings.Count(author, "http://") + strings.Count(author, "https://")
	return links > limit
}

// Comments manages visitor comments: public submission with an optional
// per-IP throttle, and admin moderation.
type Comments struct {
	store        comment.Store
	posts        PostLookup
	capabilities Capabilities
	attempts     attempt.Store
	spam         SpamChecker
	cfg          config.CommentLimitConfig
	logger       *slog.Logger
}

type CommentsOption func(*Comments)

func WithSpamChecker(sc SpamChecker) CommentsOption {
	return func(c *Comments) { c.spam = sc }
}

func WithCommentsLogger(logger *slog.Logger) CommentsOption {
	return func(c *Comments) { c.logger = logger }
}

func NewComments(
	store comment.Store,
	posts PostLookup,
	capabilities Capabilities,
	attempts attempt.Store,
	cfg config.CommentLimitConfig,
	opts ...CommentsOption,
) (*Comments, error) {
	if store == nil {
		return nil, fmt.Errorf("comment store is required")
	}
	if posts == nil {
		return nil, fmt.Errorf("post lookup is required")
	}
	if capabilities == nil {
		return nil, fmt.Errorf("capabilities are required")
	}
	if attempts == nil {
		return nil, fmt.Errorf("attempt store is required")
	}
	if cfg.Limit <= 0 || cfg.Window <= 0 {
		return nil, fmt.Errorf("invalid comment limit configuration")
	}

	c := &Comments{
		store:        store,
		posts:        posts,
		capabilities: capabilities,
		attempts:     attempts,
		spam:         HeuristicSpamChecker{},
		cfg:          cfg,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func commentAttemptKey(ip string) string {
	return "comment_attempts:ip:" + ip
}

// Submit accepts a public comment on a published post. The throttle is
// consulted only when the matching site setting is on, and degrades open when
// the counter store is unreachable.
func (c *Comments) Submit(ctx context.Context, slug, ip string, req models.SubmitCommentRequest) (*models.Comment, error) {
	if !c.capabilities.CommentsEnabled(ctx) {
		return nil, dErrors.New(dErrors.CodeForbidden, "comments are disabled")
	}

	p, err := c.posts.GetPublishedBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	now := requesttime.Now(ctx)
	if c.capabilities.CommentRateLimitEnabled(ctx) {
		count, err := c.attempts.Count(ctx, commentAttemptKey(ip), now, c.cfg.Window)
		if err != nil {
			c.logger.WarnContext(ctx, "comment throttle unavailable, allowing submission", "error", err)
		} else if count >= c.cfg.Limit {
			return nil, dErrors.NewRateLimited("Too many comments from this IP, please try again later", c.cfg.Window)
		}
	}

	approved := !c.capabilities.CommentsRequireApproval(ctx)
	if c.spam.IsSpam(req.Author, req.Body) {
		approved = false
	}

	cm, err := models.NewComment(p.ID, req.Author, req.Body, privacy.AnonymizeIP(ip), approved, now)
	if err != nil {
		return nil, err
	}
	if err := c.store.Create(ctx, cm); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save comment")
	}

	if _, err := c.attempts.Record(ctx, commentAttemptKey(ip), now, c.cfg.Window); err != nil {
		c.logger.WarnContext(ctx, "failed to record comment attempt", "error", err)
	}

	c.logger.InfoContext(ctx, "comment submitted",
		"post_id", p.ID, "approved", cm.Approved, "ip", privacy.AnonymizeIP(ip))
	return cm, nil
}

// ListApproved returns the approved comments on a published post, oldest
// first.
func (c *Comments) ListApproved(ctx context.Context, slug string) (*models.CommentList, error) {
	p, err := c.posts.GetPublishedBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	comments, err := c.store.ListByPost(ctx, p.ID, true)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list comments")
	}
	return &models.CommentList{Comments: comments, Total: len(comments)}, nil
}

// ListForPost is the admin view: every comment on the post, approved or not.
func (c *Comments) ListForPost(ctx context.Context, postID string) (*models.CommentList, error) {
	if _, err := c.posts.Get(ctx, postID); err != nil {
		return nil, err
	}
	comments, err := c.store.ListByPost(ctx, postID, false)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list comments")
	}
	return &models.CommentList{Comments: comments, Total: len(comments)}, nil
}

// ListPending returns the moderation queue.
func (c *Comments) ListPending(ctx context.Context) (*models.CommentList, error) {
	comments, err := c.store.ListPending(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list pending comments")
	}
	return &models.CommentList{Comments: comments, Total: len(comments)}, nil
}

func (c *Comments) Approve(ctx context.Context, id string) error {
	if err := c.store.Approve(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "comment not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to approve comment")
	}
	return nil
}

func (c *Comments) Delete(ctx context.Context, id string) error {
	if err := c.store.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "comment not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete comment")
	}
	return nil
}
