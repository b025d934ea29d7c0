package etcdstore

import (
	"context"
	"testing"
	"time"
)

// These tests exercise a real etcd instance and are skipped when one is
// not reachable, the same skip-on-unavailable style the redisstore tests use.

func dialTestStore(t *testing.T) *Store {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	s, err := New(ctx, Config{
		Endpoints:   []string{"localhost:2379"},
		DialTimeout: time.Second,
		KeyPrefix:   "relayhealth-test",
	})
	if err != nil {
		t.Skipf("etcd is not available: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestEtcdStoreGetSetDelete(t *testing.T) {
	s := dialTestStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "v" {
		t.Fatalf("Get = %q, want v", got)
	}
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}

func TestEtcdStoreIncrIsCAS(t *testing.T) {
	s := dialTestStore(t)
	ctx := context.Background()
	defer s.Delete(ctx, "ctr")

	for i := 0; i < 5; i++ {
		if _, err := s.Incr(ctx, "ctr", 1, 0); err != nil {
			t.Fatalf("Incr: %v", err)
		}
	}
	v, err := s.Incr(ctx, "ctr", 0, 0)
	if err != nil {
		t.Fatalf("Incr: %v", err)
	}
	if v != 5 {
		t.Fatalf("total = %d, want 5", v)
	}

	got, err := s.GetCounter(ctx, "ctr")
	if err != nil {
		t.Fatalf("GetCounter: %v", err)
	}
	if got != 5 {
		t.Fatalf("GetCounter = %d, want 5", got)
	}
}

func TestEtcdStoreLockMutualExclusion(t *testing.T) {
	s := dialTestStore(t)
	ctx := context.Background()

	lock, ok, err := s.TryLock(ctx, "lock-test", time.Second, 5*time.Second)
	if err != nil || !ok {
		t.Fatalf("TryLock: ok=%v err=%v", ok, err)
	}
	defer lock.Unlock(ctx)

	_, ok, err = s.TryLock(ctx, "lock-test", 50*time.Millisecond, 5*time.Second)
	if err != nil {
		t.Fatalf("second TryLock: %v", err)
	}
	if ok {
		t.Fatal("second TryLock succeeded while first held")
	}
}
