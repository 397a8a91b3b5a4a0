package logstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each record kind in a sorted set scored by creation time
// (UnixNano). A TxPipeline makes the per-observation write set atomic, and
// ZREMRANGEBYSCORE with an exclusive max bound gives the strictly-older-than
// deletion semantics.
type RedisStore struct {
	Client    *redis.Client
	KeyPrefix string
}

func NewRedisStore(opt *redis.Options) *RedisStore {
	return &RedisStore{Client: redis.NewClient(opt), KeyPrefix: "storepulse:logs"}
}

func (s *RedisStore) key(kind Kind) string {
	prefix := s.KeyPrefix
	if prefix == "" {
		prefix = "storepulse:logs"
	}
	return prefix + ":" + string(kind)
}

func (s *RedisStore) AppendObservationSet(ctx context.Context, set ObservationSet) error {
	if err := validateSet(set); err != nil {
		return err
	}

	type entry struct {
		kind Kind
		at   time.Time
		rec  any
	}
	entries := []entry{
		{KindAnomaly, set.Anomaly.CreatedAt, set.Anomaly},
		{KindCluster, set.Cluster.CreatedAt, set.Cluster},
		{KindRisk, set.Risk.CreatedAt, set.Risk},
	}
	if set.Alert != nil {
		entries = append(entries, entry{KindAlert, set.Alert.CreatedAt, *set.Alert})
	}

	pipe := s.Client.TxPipeline()
	for _, e := range entries {
		b, err := json.Marshal(e.rec)
		if err != nil {
			return fmt.Errorf("marshal %s record: %w", e.kind, err)
		}
		pipe.ZAdd(ctx, s.key(e.kind), redis.Z{
			Score:  float64(e.at.UnixNano()),
			Member: b,
		})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append observation set: %w", err)
	}
	return nil
}

func (s *RedisStore) DeleteOlderThan(ctx context.Context, kind Kind, cutoff time.Time) (int, error) {
	// "(" makes the max bound exclusive: only scores strictly below the
	// cutoff are removed.
	max := fmt.Sprintf("(%d", cutoff.UnixNano())
	n, err := s.Client.ZRemRangeByScore(ctx, s.key(kind), "-inf", max).Result()
	if err != nil {
		return 0, fmt.Errorf("delete %s older than %s: %w", kind, cutoff.Format(time.RFC3339), err)
	}
	return int(n), nil
}

func (s *RedisStore) Count(ctx context.Context, kind Kind) (int, error) {
	n, err := s.Client.ZCard(ctx, s.key(kind)).Result()
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", kind, err)
	}
	return int(n), nil
}
