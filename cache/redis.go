package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// keyPrefix namespaces snapshot keys in a Redis instance shared with other
// tools.
const keyPrefix = "homedash:"

// RedisStore is the production Store. Entries are written without a Redis
// expiry: staleness is decided by the freshness policies at read time, and
// the instance's own memory policy bounds growth.
type RedisStore struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewRedisStore connects to Redis and verifies the connection with a ping.
func NewRedisStore(ctx context.Context, addr, password string, db int, log zerolog.Logger) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{rdb: rdb, log: log}, nil
}

// Get returns the stored snapshot for key. A missing key, an unreachable
// store, and an undecodable entry all come back as absent; the latter two are
// logged.
func (s *RedisStore) Get(ctx context.Context, key string) (*Snapshot, bool) {
	b, err := s.rdb.Get(ctx, keyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("snapshot read failed")
		return nil, false
	}
	var snap Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("snapshot decode failed")
		return nil, false
	}
	return &snap, true
}

func (s *RedisStore) Put(ctx context.Context, key string, snap *Snapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.rdb.Set(ctx, keyPrefix+key, b, 0).Err(); err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}
	return nil
}

// Ping reports whether the store is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
