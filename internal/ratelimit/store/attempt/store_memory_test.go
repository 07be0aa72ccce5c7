package attempt

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *MemoryStore
	ctx   context.Context
	base  time.Time
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewMemoryStore()
	s.ctx = context.Background()
	s.base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) TestRecordReturnsRunningCount() {
	window := 5 * time.Minute

	for i := 1; i <= 3; i++ {
		count, err := s.store.Record(s.ctx, "login_attempts:ip:10.0.0.1", s.base.Add(time.Duration(i)*time.Second), window)
		s.Require().NoError(err)
		s.Equal(i, count)
	}
}

func (s *MemoryStoreSuite) TestCountPrunesExpiredEntries() {
	window := 5 * time.Minute
	key := "login_attempts:ip:10.0.0.1"

	_, err := s.store.Record(s.ctx, key, s.base, window)
	s.Require().NoError(err)
	_, err = s.store.Record(s.ctx, key, s.base.Add(4*time.Minute), window)
	s.Require().NoError(err)

	s.Run("both inside window", func() {
		count, err := s.store.Count(s.ctx, key, s.base.Add(4*time.Minute), window)
		s.Require().NoError(err)
		s.Equal(2, count)
	})

	s.Run("first aged out", func() {
		count, err := s.store.Count(s.ctx, key, s.base.Add(6*time.Minute), window)
		s.Require().NoError(err)
		s.Equal(1, count)
	})

	s.Run("all aged out", func() {
		count, err := s.store.Count(s.ctx, key, s.base.Add(time.Hour), window)
		s.Require().NoError(err)
		s.Zero(count)
	})
}

func (s *MemoryStoreSuite) TestKeysAreIndependent() {
	window := 5 * time.Minute

	_, err := s.store.Record(s.ctx, "login_attempts:ip:10.0.0.1", s.base, window)
	s.Require().NoError(err)

	count, err := s.store.Count(s.ctx, "login_attempts:user:alice", s.base, window)
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *MemoryStoreSuite) TestClear() {
	window := 5 * time.Minute
	key := "login_attempts:user:alice"

	_, err := s.store.Record(s.ctx, key, s.base, window)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Clear(s.ctx, key))

	count, err := s.store.Count(s.ctx, key, s.base, window)
	s.Require().NoError(err)
	s.Zero(count)
}
