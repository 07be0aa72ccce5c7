package block

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"atelier/internal/ratelimit/models"
)

// RedisStore keeps one JSON-encoded block record per IP. Temporary blocks
// carry a TTL so they lapse on their own; the index set is written in the
// same transaction as the record so List stays consistent with Get.
type RedisStore struct {
	client redis.Cmdable
}

func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Put(ctx context.Context, rec *models.BlockRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal block record: %w", err)
	}

	var ttl time.Duration
	if rec.ExpiresAt != nil {
		ttl = rec.ExpiresAt.Sub(rec.BlockedAt)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, models.BlockKey(rec.IP), payload, ttl)
		pipe.SAdd(ctx, models.BlockIndexKey, rec.IP)
		return nil
	})
	if err != nil {
		return fmt.Errorf("store block record: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, ip string, now time.Time) (*models.BlockRecord, error) {
	payload, err := s.client.Get(ctx, models.BlockKey(ip)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get block record: %w", err)
	}

	var rec models.BlockRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, fmt.Errorf("decode block record: %w", err)
	}
	if rec.ExpiredAt(now) {
		return nil, nil
	}
	return &rec, nil
}

func (s *RedisStore) Delete(ctx context.Context, ip string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, models.BlockKey(ip))
		pipe.SRem(ctx, models.BlockIndexKey, ip)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete block record: %w", err)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context, now time.Time) ([]*models.BlockRecord, error) {
	ips, err := s.client.SMembers(ctx, models.BlockIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list blocked ips: %w", err)
	}

	records := make([]*models.BlockRecord, 0, len(ips))
	var stale []any
	for _, ip := range ips {
		rec, err := s.Get(ctx, ip, now)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			// The record lapsed via TTL; drop the dangling index entry.
			stale = append(stale, ip)
			continue
		}
		records = append(records, rec)
	}

	if len(stale) > 0 {
		if err := s.client.SRem(ctx, models.BlockIndexKey, stale...).Err(); err != nil {
			return nil, fmt.Errorf("prune block index: %w", err)
		}
	}
	return records, nil
}
