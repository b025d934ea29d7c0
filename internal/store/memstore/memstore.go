// Package memstore is an in-process store.Store, used by unit tests and
// the demo binary. It cannot coordinate across separate processes, but
// implements the same TTL-based expiry and lock semantics the redis and
// etcd drivers provide.
package memstore

import (
	"context"
	"encoding/binary"
	"sync"
	"time"

	"github.com/relayhealth/relayhealth/internal/store"
)

type entry struct {
	value     []byte
	expiresAt time.Time
	hasExpiry bool
}

func (e *entry) expired(now time.Time) bool {
	return e.hasExpiry && now.After(e.expiresAt)
}

// Store is an in-memory store.Store.
type Store struct {
	mu    sync.Mutex
	data  map[string]*entry
	locks map[string]*heldLock
}

type heldLock struct {
	expiresAt time.Time
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		data:  make(map[string]*entry),
		locks: make(map[string]*heldLock),
	}
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[key]
	if !ok || e.expired(time.Now()) {
		return nil, store.ErrNotFound
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := make([]byte, len(value))
	copy(cp, value)
	s.data[key] = &entry{value: cp}
	return nil
}

func (s *Store) Incr(_ context.Context, key string, delta, initial uint32) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[key]
	if !ok || e.expired(time.Now()) {
		v := initial + delta
		buf := make([]byte, 4)
		binary.BigEndian.PutUint32(buf, v)
		s.data[key] = &entry{value: buf}
		return v, nil
	}

	var current uint32
	if len(e.value) == 4 {
		current = binary.BigEndian.Uint32(e.value)
	}
	v := current + delta
	binary.BigEndian.PutUint32(e.value, v)
	return v, nil
}

func (s *Store) GetCounter(_ context.Context, key string) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[key]
	if !ok || e.expired(time.Now()) || len(e.value) != 4 {
		return 0, nil
	}
	return binary.BigEndian.Uint32(e.value), nil
}

func (s *Store) SetCounter(_ context.Context, key string, value uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, value)
	s.data[key] = &entry{value: buf}
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// TryLock implements store.Locker with a poll loop bounded by timeout,
// mirroring how the redis and etcd drivers race concurrent acquirers.
func (s *Store) TryLock(ctx context.Context, key string, timeout, exptime time.Duration) (store.Lock, bool, error) {
	deadline := time.Now().Add(timeout)
	for {
		if s.tryAcquire(key, exptime) {
			return &memLock{store: s, key: key}, true, nil
		}
		if time.Now().After(deadline) {
			return nil, false, nil
		}
		select {
		case <-ctx.Done():
			return nil, false, ctx.Err()
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func (s *Store) tryAcquire(key string, exptime time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if l, held := s.locks[key]; held && now.Before(l.expiresAt) {
		return false
	}
	s.locks[key] = &heldLock{expiresAt: now.Add(exptime)}
	return true
}

func (s *Store) release(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, key)
}

type memLock struct {
	store *Store
	key   string
}

func (l *memLock) Unlock(context.Context) error {
	l.store.release(l.key)
	return nil
}
