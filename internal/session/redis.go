package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/flight-search/live-search-gateway/internal/domain"
)

const keyPrefix = "flightsearch:session:"

// RedisConfig configures the Redis-backed store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisStore shares sessions between gateway replicas.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to Redis and verifies the connection with a PING.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return NewRedisStoreWithClient(client, cfg.TTL), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(searchID string) string {
	return keyPrefix + searchID
}

func (r *RedisStore) Save(ctx context.Context, s domain.SearchSession) error {
	if s.SearchID == "" {
		return fmt.Errorf("%w: empty search id", domain.ErrInvalidRequest)
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return r.client.Set(ctx, sessionKey(s.SearchID), data, r.ttl).Err()
}

func (r *RedisStore) Get(ctx context.Context, searchID string) (*domain.SearchSession, error) {
	data, err := r.client.Get(ctx, sessionKey(searchID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var s domain.SearchSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

// UpdateWatermark rewrites the session with a newer watermark and refreshes its TTL.
// Concurrent polls of the same search may race; the larger watermark wins on the next update.
func (r *RedisStore) UpdateWatermark(ctx context.Context, searchID string, ts int64) error {
	s, err := r.Get(ctx, searchID)
	if err != nil {
		return err
	}
	if ts > s.LastUpdateTimestamp {
		s.LastUpdateTimestamp = ts
	}
	return r.Save(ctx, *s)
}

func (r *RedisStore) Delete(ctx context.Context, searchID string) error {
	return r.client.Del(ctx, sessionKey(searchID)).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

var _ Store = (*RedisStore)(nil)
