package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atelier/internal/settings/models"
	"atelier/internal/settings/store"
	"atelier/pkg/platform/middleware/requesttime"
)

func newService(t *testing.T) (*Service, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	svc, err := New(st, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	return svc, st
}

func TestGetReturnsDefaultsBeforeFirstSave(t *testing.T) {
	svc, _ := newService(t)

	current, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.Defaults(), *current)
}

func TestUpdateThenGet(t *testing.T) {
	svc, _ := newService(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := requesttime.WithTime(context.Background(), now)

	saved, err := svc.Update(ctx, models.UpdateRequest{
		SiteTitle:               "studio",
		CommentsEnabled:         true,
		CommentRateLimitEnabled: false,
	})
	require.NoError(t, err)
	assert.Equal(t, now, saved.UpdatedAt)

	current, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "studio", current.SiteTitle)
	assert.False(t, current.CommentRateLimitEnabled)
	assert.False(t, current.CommentsRequireApproval)
}

func TestCapabilitiesReadAtDecisionTime(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	assert.True(t, svc.CommentRateLimitEnabled(ctx), "protective default before first save")

	_, err := svc.Update(ctx, models.UpdateRequest{SiteTitle: "x", CommentsEnabled: true})
	require.NoError(t, err)
	assert.False(t, svc.CommentRateLimitEnabled(ctx))
	assert.True(t, svc.CommentsEnabled(ctx))
}

type downStore struct{}

func (downStore) Get(context.Context) (*models.Settings, error) {
	return nil, errors.New("connection refused")
}

func (downStore) Put(context.Context, *models.Settings) error {
	return errors.New("connection refused")
}

func TestCapabilitiesFallBackWhenStoreIsDown(t *testing.T) {
	svc, err := New(downStore{}, slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	assert.True(t, svc.CommentRateLimitEnabled(context.Background()))
	assert.True(t, svc.CommentsRequireApproval(context.Background()))

	_, err = svc.Get(context.Background())
	assert.Error(t, err, "explicit reads still surface the outage")
}
