package block

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"atelier/internal/ratelimit/models"
)

type RedisStoreSuite struct {
	suite.Suite
	mr    *miniredis.Miniredis
	store *RedisStore
	ctx   context.Context
	base  time.Time
}

func (s *RedisStoreSuite) SetupTest() {
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr
	s.store = NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	s.ctx = context.Background()
	s.base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func (s *RedisStoreSuite) TearDownTest() {
	s.mr.Close()
}

func TestRedisStoreSuite(t *testing.T) {
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) record(ip string, duration time.Duration, permanent bool) *models.BlockRecord {
	rec, err := models.NewBlockRecord(ip, "suspicious activity", 5, s.base, duration, permanent)
	s.Require().NoError(err)
	return rec
}

func (s *RedisStoreSuite) TestPutThenGet() {
	s.Require().NoError(s.store.Put(s.ctx, s.record("10.0.0.1", 24*time.Hour, false)))

	rec, err := s.store.Get(s.ctx, "10.0.0.1", s.base.Add(time.Hour))
	s.Require().NoError(err)
	s.Require().NotNil(rec)
	s.Equal("10.0.0.1", rec.IP)
	s.Equal(5, rec.AttemptCount)
	s.Require().NotNil(rec.ExpiresAt)
	s.Equal(s.base.Add(24*time.Hour), rec.ExpiresAt.UTC())
}

func (s *RedisStoreSuite) TestTemporaryBlockCarriesTTL() {
	s.Require().NoError(s.store.Put(s.ctx, s.record("10.0.0.1", 24*time.Hour, false)))
	s.Equal(24*time.Hour, s.mr.TTL(models.BlockKey("10.0.0.1")))

	s.mr.FastForward(25 * time.Hour)
	s.False(s.mr.Exists(models.BlockKey("10.0.0.1")))
}

func (s *RedisStoreSuite) TestPermanentBlockHasNoTTL() {
	s.Require().NoError(s.store.Put(s.ctx, s.record("10.0.0.1", 0, true)))

	s.mr.FastForward(1000 * time.Hour)
	rec, err := s.store.Get(s.ctx, "10.0.0.1", s.base.AddDate(1, 0, 0))
	s.Require().NoError(err)
	s.Require().NotNil(rec)
	s.True(rec.Permanent())
}

func (s *RedisStoreSuite) TestDeleteRemovesRecordAndIndexEntry() {
	s.Require().NoError(s.store.Put(s.ctx, s.record("10.0.0.1", 0, true)))
	s.Require().NoError(s.store.Delete(s.ctx, "10.0.0.1"))

	rec, err := s.store.Get(s.ctx, "10.0.0.1", s.base)
	s.Require().NoError(err)
	s.Nil(rec)

	records, err := s.store.List(s.ctx, s.base)
	s.Require().NoError(err)
	s.Empty(records)
}

func (s *RedisStoreSuite) TestListPrunesLapsedIndexEntries() {
	s.Require().NoError(s.store.Put(s.ctx, s.record("10.0.0.1", time.Hour, false)))
	s.Require().NoError(s.store.Put(s.ctx, s.record("10.0.0.2", 0, true)))

	s.mr.FastForward(2 * time.Hour)

	records, err := s.store.List(s.ctx, s.base.Add(2*time.Hour))
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal("10.0.0.2", records[0].IP)

	members, err := s.store.client.SMembers(s.ctx, models.BlockIndexKey).Result()
	s.Require().NoError(err)
	s.Equal([]string{"10.0.0.2"}, members)
}

func (s *RedisStoreSuite) TestStoreDownSurfacesError() {
	s.mr.Close()

	err := s.store.Put(s.ctx, s.record("10.0.0.1", 0, true))
	s.Error(err)

	_, err = s.store.Get(s.ctx, "10.0.0.1", s.base)
	s.Error(err)
}
