package memstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/relayhealth/relayhealth/internal/store"
)

func TestGetSetDelete(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.Get(ctx, "missing"); err != store.ErrNotFound {
		t.Fatalf("Get(missing) err = %v, want ErrNotFound", err)
	}

	if err := s.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "v" {
		t.Fatalf("Get = %q, want %q", got, "v")
	}

	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "k"); err != store.ErrNotFound {
		t.Fatalf("Get after delete err = %v, want ErrNotFound", err)
	}
}

func TestIncrCreatesAndAccumulates(t *testing.T) {
	s := New()
	ctx := context.Background()

	v, err := s.Incr(ctx, "ctr", 1, 0)
	if err != nil {
		t.Fatalf("Incr: %v", err)
	}
	if v != 1 {
		t.Fatalf("first Incr = %d, want 1", v)
	}

	v, err = s.Incr(ctx, "ctr", 5, 0)
	if err != nil {
		t.Fatalf("Incr: %v", err)
	}
	if v != 6 {
		t.Fatalf("second Incr = %d, want 6", v)
	}

	got, err := s.GetCounter(ctx, "ctr")
	if err != nil {
		t.Fatalf("GetCounter: %v", err)
	}
	if got != 6 {
		t.Fatalf("GetCounter = %d, want 6", got)
	}
}

func TestGetCounterOnAbsentKeyIsZero(t *testing.T) {
	s := New()
	got, err := s.GetCounter(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetCounter: %v", err)
	}
	if got != 0 {
		t.Fatalf("GetCounter(missing) = %d, want 0", got)
	}
}

func TestIncrConcurrentIsAtomic(t *testing.T) {
	s := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Incr(ctx, "hot", 1, 0); err != nil {
				t.Errorf("Incr: %v", err)
			}
		}()
	}
	wg.Wait()

	v, err := s.Incr(ctx, "hot", 0, 0)
	if err != nil {
		t.Fatalf("Incr final read: %v", err)
	}
	if v != 100 {
		t.Fatalf("total = %d, want 100", v)
	}
}

func TestTryLockMutualExclusion(t *testing.T) {
	s := New()
	ctx := context.Background()

	lock, ok, err := s.TryLock(ctx, "target-lock", time.Second, 10*time.Second)
	if err != nil || !ok {
		t.Fatalf("first TryLock: ok=%v err=%v", ok, err)
	}

	_, ok, err = s.TryLock(ctx, "target-lock", 50*time.Millisecond, 10*time.Second)
	if err != nil {
		t.Fatalf("second TryLock: %v", err)
	}
	if ok {
		t.Fatal("second TryLock succeeded while first still held, want contention")
	}

	if err := lock.Unlock(ctx); err != nil {
		t.Fatalf("Unlock: %v", err)
	}

	_, ok, err = s.TryLock(ctx, "target-lock", time.Second, 10*time.Second)
	if err != nil || !ok {
		t.Fatalf("TryLock after unlock: ok=%v err=%v", ok, err)
	}
}

func TestTryLockExpiresAfterExptime(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, ok, err := s.TryLock(ctx, "k", time.Second, 20*time.Millisecond)
	if err != nil || !ok {
		t.Fatalf("first TryLock: ok=%v err=%v", ok, err)
	}

	time.Sleep(40 * time.Millisecond)

	_, ok, err = s.TryLock(ctx, "k", time.Second, 20*time.Millisecond)
	if err != nil || !ok {
		t.Fatalf("TryLock after expiry: ok=%v err=%v, want the stale lock to have auto-released", ok, err)
	}
}
