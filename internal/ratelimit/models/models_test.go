package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttemptKey(t *testing.T) {
	assert.Equal(t, "login_attempts:ip:10.0.0.1", AttemptKey(AxisIP, "10.0.0.1"))
	assert.Equal(t, "login_attempts:user:alice", AttemptKey(AxisUser, "alice"))
}

func TestBlockKey(t *testing.T) {
	assert.Equal(t, "blocked_ip:10.0.0.1", BlockKey("10.0.0.1"))
}

func TestNewBlockRecordValidation(t *testing.T) {
	now := time.Now()

	_, err := NewBlockRecord("", "spam", 0, now, time.Hour, false)
	assert.Error(t, err)

	_, err = NewBlockRecord("10.0.0.1", "", 0, now, time.Hour, false)
	assert.Error(t, err)

	_, err = NewBlockRecord("10.0.0.1", "spam", -1, now, time.Hour, false)
	assert.Error(t, err)
}

func TestNewBlockRecordTemporary(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	rec, err := NewBlockRecord("10.0.0.1", "too many failures", 5, now, 24*time.Hour, false)
	require.NoError(t, err)

	require.NotNil(t, rec.ExpiresAt)
	assert.Equal(t, now.Add(24*time.Hour), *rec.ExpiresAt)
	assert.False(t, rec.Permanent())
	assert.False(t, rec.ExpiredAt(now.Add(23*time.Hour)))
	assert.True(t, rec.ExpiredAt(now.Add(24*time.Hour)))
}

func TestNewBlockRecordPermanent(t *testing.T) {
	now := time.Now()

	rec, err := NewBlockRecord("10.0.0.1", "manual", 0, now, 24*time.Hour, true)
	require.NoError(t, err)
	assert.Nil(t, rec.ExpiresAt)
	assert.True(t, rec.Permanent())
	assert.False(t, rec.ExpiredAt(now.Add(1000*time.Hour)))

	// Zero duration also means permanent.
	rec, err = NewBlockRecord("10.0.0.1", "manual", 0, now, 0, false)
	require.NoError(t, err)
	assert.True(t, rec.Permanent())
}
