// Package redisstore implements store.Store on top of Redis, grounded on
// an AtomicStore driver built on github.com/redis/go-redis/v9:
// INCRBY for atomic counters, SET/GET for the target list and state
// blobs, and SET NX PX plus an owner-token compare-and-delete for the
// named lock (the standard single-instance Redis locking idiom).
package redisstore

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/relayhealth/relayhealth/internal/store"
)

// unlockScript deletes key only if it still holds the token this client
// set, so a lock that expired and was re-acquired by another worker is
// never released out from under its new owner.
const unlockScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
else
  return 0
end
`

// Store is a Redis-backed store.Store.
type Store struct {
	client    *redis.Client
	keyPrefix string
}

// Config configures a Store.
type Config struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// New connects to Redis and verifies the connection with a PING.
func New(ctx context.Context, cfg Config) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redisstore: connect: %w", err)
	}

	return &Store{client: client, keyPrefix: cfg.KeyPrefix}, nil
}

func (s *Store) fullKey(key string) string {
	if s.keyPrefix == "" {
		return key
	}
	return s.keyPrefix + ":" + key
}

// Close releases the underlying connection pool.
func (s *Store) Close() error { return s.client.Close() }

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := s.client.Get(ctx, s.fullKey(key)).Bytes()
	if err == redis.Nil {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redisstore: get %s: %w", key, err)
	}
	return v, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.fullKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redisstore: set %s: %w", key, err)
	}
	return nil
}

// Incr adds delta to the uint32 stored at key using INCRBY, which
// atomically creates the key at initial+delta on first use.
func (s *Store) Incr(ctx context.Context, key string, delta, initial uint32) (uint32, error) {
	full := s.fullKey(key)
	exists, err := s.client.Exists(ctx, full).Result()
	if err != nil {
		return 0, fmt.Errorf("redisstore: exists %s: %w", key, err)
	}
	if exists == 0 && initial != 0 {
		if err := s.client.SetNX(ctx, full, initial, 0).Err(); err != nil {
			return 0, fmt.Errorf("redisstore: seed %s: %w", key, err)
		}
	}
	v, err := s.client.IncrBy(ctx, full, int64(delta)).Result()
	if err != nil {
		return 0, fmt.Errorf("redisstore: incrby %s: %w", key, err)
	}
	return uint32(v), nil
}

// GetCounter reads back an INCRBY-managed counter, which Redis stores
// as ASCII digits rather than the 4 raw bytes memstore/etcdstore use.
func (s *Store) GetCounter(ctx context.Context, key string) (uint32, error) {
	v, err := s.client.Get(ctx, s.fullKey(key)).Uint64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redisstore: get counter %s: %w", key, err)
	}
	return uint32(v), nil
}

// SetCounter overwrites key with value in the same ASCII-digit form
// INCRBY expects, so a later Incr against key stays valid.
func (s *Store) SetCounter(ctx context.Context, key string, value uint32) error {
	if err := s.client.Set(ctx, s.fullKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redisstore: set counter %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.fullKey(key)).Err(); err != nil {
		return fmt.Errorf("redisstore: delete %s: %w", key, err)
	}
	return nil
}

// TryLock implements store.Locker with SET key token NX PX <exptime>,
// retried until timeout elapses.
func (s *Store) TryLock(ctx context.Context, key string, timeout, exptime time.Duration) (store.Lock, bool, error) {
	full := "lock:" + s.fullKey(key)
	token, err := randomToken()
	if err != nil {
		return nil, false, fmt.Errorf("redisstore: token: %w", err)
	}

	deadline := time.Now().Add(timeout)
	for {
		ok, err := s.client.SetNX(ctx, full, token, exptime).Result()
		if err != nil {
			return nil, false, fmt.Errorf("redisstore: lock %s: %w", key, err)
		}
		if ok {
			return &redisLock{client: s.client, key: full, token: token}, true, nil
		}
		if time.Now().After(deadline) {
			return nil, false, nil
		}
		select {
		case <-ctx.Done():
			return nil, false, ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func randomToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

type redisLock struct {
	client *redis.Client
	key    string
	token  string
}

func (l *redisLock) Unlock(ctx context.Context) error {
	if err := l.client.Eval(ctx, unlockScript, []string{l.key}, l.token).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("redisstore: unlock %s: %w", l.key, err)
	}
	return nil
}
