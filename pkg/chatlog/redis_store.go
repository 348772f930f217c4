package chatlog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the list key used when none is configured.
const DefaultRedisKey = "tutorkit:chat_log"

// RedisLister is the subset of redis.Cmdable the store needs. *redis.Client,
// *redis.ClusterClient and redis.UniversalClient satisfy it.
type RedisLister interface {
	RPush(ctx context.Context, key string, values ...any) *redis.IntCmd
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
	LTrim(ctx context.Context, key string, start, stop int64) *redis.StatusCmd
}

// RedisStore keeps records as JSON strings in a single Redis list.
type RedisStore struct {
	client RedisLister
	key    string
}

// NewRedisStore returns a store appending to the list at key. A nil client,
// typed or not, returns ErrStoreNotSet.
func NewRedisStore(client RedisLister, key string) (*RedisStore, error) {
	if isNil(client) {
		return nil, ErrStoreNotSet
	}
	if key == "" {
		return nil, ErrEmptyRedisKey
	}
	return &RedisStore{client: client, key: key}, nil
}

func (s *RedisStore) Append(ctx context.Context, r Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if err := s.client.RPush(ctx, s.key, string(data)).Err(); err != nil {
		return fmt.Errorf("rpush %s: %w", s.key, err)
	}
	return nil
}

func (s *RedisStore) Records(ctx context.Context) ([]Record, error) {
	items, err := s.client.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange %s: %w", s.key, err)
	}

	records := make([]Record, 0, len(items))
	for i, item := range items {
		r, ok, err := decodeRecord([]byte(item))
		if err != nil {
			return nil, fmt.Errorf("%w: %s[%d]: %w", ErrMalformedRecord, s.key, i, err)
		}
		if ok {
			records = append(records, r)
		}
	}
	return records, nil
}

// Cleanup drops the leading list entries logged before cutoff. Entries are
// appended in time order, so the scan stops at the first newer record.
func (s *RedisStore) Cleanup(ctx context.Context, cutoff time.Time) (int, error) {
	items, err := s.client.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return 0, fmt.Errorf("lrange %s: %w", s.key, err)
	}

	limit := epochSeconds(cutoff)
	n := 0
	for _, item := range items {
		var ts struct {
			LoggedTimestamp float64 `json:"logged_timestamp"`
		}
		if err := json.Unmarshal([]byte(item), &ts); err != nil || ts.LoggedTimestamp >= limit {
			break
		}
		n++
	}
	if n == 0 {
		return 0, nil
	}

	if err := s.client.LTrim(ctx, s.key, int64(n), -1).Err(); err != nil {
		return 0, fmt.Errorf("ltrim %s: %w", s.key, err)
	}
	return n, nil
}
