package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisConfig configures a RedisStore.
type RedisConfig struct {
	Address     string
	Password    string
	Database    int
	DialTimeout time.Duration

	// Namespace prefixes the session hash key.
	Namespace string

	// SessionID identifies the session. A random UUID is used when empty.
	SessionID string

	// TTL expires the session hash after the last write. Zero keeps it
	// forever.
	TTL time.Duration
}

// RedisStore keeps one session in a Redis hash named
// "<namespace>:<session-id>". Values are JSON encoded, so numbers read back
// as float64.
//
// It works with any Redis-compatible server.
type RedisStore struct {
	client *redis.Client
	key    string
	id     string
	ttl    time.Duration
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        cfg.Address,
		Password:    cfg.Password,
		DB:          cfg.Database,
		DialTimeout: cfg.DialTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Address, err)
	}

	return NewRedisStoreFromClient(rdb, cfg.Namespace, cfg.SessionID, cfg.TTL), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client, namespace, sessionID string, ttl time.Duration) *RedisStore {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	if namespace == "" {
		namespace = "settingkit"
	}
	return &RedisStore{
		client: client,
		key:    namespace + ":" + sessionID,
		id:     sessionID,
		ttl:    ttl,
	}
}

// SessionID returns the session identifier.
func (r *RedisStore) SessionID() string {
	return r.id
}

// Key returns the Redis hash key holding the session.
func (r *RedisStore) Key() string {
	return r.key
}

// Get implements Store.
func (r *RedisStore) Get(ctx context.Context, key string) (any, bool, error) {
	raw, err := r.client.HGet(ctx, r.key, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get %s from session %s: %w", key, r.id, err)
	}

	// An undecodable field is treated as absent so that one bad entry does
	// not fail the whole read.
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, false, nil
	}
	return v, true, nil
}

// Set implements Store.
func (r *RedisStore) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, r.key, key, data)
	if r.ttl > 0 {
		pipe.Expire(ctx, r.key, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("set %s in session %s: %w", key, r.id, err)
	}
	return nil
}

// Delete implements Store.
func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.HDel(ctx, r.key, key).Err(); err != nil {
		return fmt.Errorf("delete %s from session %s: %w", key, r.id, err)
	}
	return nil
}

// Keys implements Store. Keys are returned sorted.
func (r *RedisStore) Keys(ctx context.Context) ([]string, error) {
	keys, err := r.client.HKeys(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("list session %s: %w", r.id, err)
	}
	slices.Sort(keys)
	return keys, nil
}

// Clear removes the whole session.
func (r *RedisStore) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("clear session %s: %w", r.id, err)
	}
	return nil
}

// Close closes the underlying client.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
