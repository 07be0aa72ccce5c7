package block

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"atelier/internal/ratelimit/models"
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

func (s *MemoryStoreSuite) record(ip string, duration time.Duration, permanent bool) *models.BlockRecord {
	rec, err := models.NewBlockRecord(ip, "suspicious activity", 5, s.base, duration, permanent)
	s.Require().NoError(err)
	return rec
}

func (s *MemoryStoreSuite) TestGetAbsent() {
	rec, err := s.store.Get(s.ctx, "10.0.0.1", s.base)
	s.Require().NoError(err)
	s.Nil(rec)
}

func (s *MemoryStoreSuite) TestPutThenGet() {
	s.Require().NoError(s.store.Put(s.ctx, s.record("10.0.0.1", 24*time.Hour, false)))

	rec, err := s.store.Get(s.ctx, "10.0.0.1", s.base.Add(time.Hour))
	s.Require().NoError(err)
	s.Require().NotNil(rec)
	s.Equal("10.0.0.1", rec.IP)
	s.Equal("suspicious activity", rec.Reason)
	s.Equal(5, rec.AttemptCount)
}

func (s *MemoryStoreSuite) TestTemporaryBlockLapses() {
	s.Require().NoError(s.store.Put(s.ctx, s.record("10.0.0.1", 24*time.Hour, false)))

	rec, err := s.store.Get(s.ctx, "10.0.0.1", s.base.Add(23*time.Hour))
	s.Require().NoError(err)
	s.NotNil(rec)

	rec, err = s.store.Get(s.ctx, "10.0.0.1", s.base.Add(25*time.Hour))
	s.Require().NoError(err)
	s.Nil(rec)
}

func (s *MemoryStoreSuite) TestPermanentBlockNeverLapses() {
	s.Require().NoError(s.store.Put(s.ctx, s.record("10.0.0.1", 0, true)))

	rec, err := s.store.Get(s.ctx, "10.0.0.1", s.base.AddDate(10, 0, 0))
	s.Require().NoError(err)
	s.Require().NotNil(rec)
	s.True(rec.Permanent())
}

func (s *MemoryStoreSuite) TestNewerBlockOverwrites() {
	s.Require().NoError(s.store.Put(s.ctx, s.record("10.0.0.1", 24*time.Hour, false)))

	manual, err := models.NewBlockRecord("10.0.0.1", "manual escalation", 0, s.base.Add(time.Hour), 0, true)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Put(s.ctx, manual))

	rec, err := s.store.Get(s.ctx, "10.0.0.1", s.base.Add(2*time.Hour))
	s.Require().NoError(err)
	s.Require().NotNil(rec)
	s.Equal("manual escalation", rec.Reason)
	s.True(rec.Permanent())
}

func (s *MemoryStoreSuite) TestDelete() {
	s.Require().NoError(s.store.Put(s.ctx, s.record("10.0.0.1", 0, true)))
	s.Require().NoError(s.store.Delete(s.ctx, "10.0.0.1"))
	s.Require().NoError(s.store.Delete(s.ctx, "10.0.0.1"))

	rec, err := s.store.Get(s.ctx, "10.0.0.1", s.base)
	s.Require().NoError(err)
	s.Nil(rec)
}

func (s *MemoryStoreSuite) TestListSkipsLapsed() {
	s.Require().NoError(s.store.Put(s.ctx, s.record("10.0.0.1", time.Hour, false)))
	s.Require().NoError(s.store.Put(s.ctx, s.record("10.0.0.2", 0, true)))

	records, err := s.store.List(s.ctx, s.base.Add(2*time.Hour))
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal("10.0.0.2", records[0].IP)
}
