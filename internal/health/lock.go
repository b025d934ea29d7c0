package health

import (
	"context"
	"time"

	"github.com/relayhealth/relayhealth/internal/store"
	pkglog "github.com/relayhealth/relayhealth/pkg/log"
)

// lockTimeout and lockExptime are the fixed values every named lock
// this package takes uses: the same acquire timeout and auto-release
// window.
const lockTimeout = 5 * time.Second
const lockExptime = 10 * time.Second

// lockManager wraps a store.Locker with the with_lock contract:
// attempt acquisition, run fn while held, release afterwards logging
// (not failing) on release error. Contention never drops the caller's
// mutation: withLock keeps retrying until it acquires the lock or ctx
// is done, so a caller that gets a nil error always ran fn.
type lockManager struct {
	locker store.Locker
	log    pkglog.Logger
}

func newLockManager(locker store.Locker, logger pkglog.Logger) *lockManager {
	return &lockManager{locker: locker, log: logger}
}

// withLock acquires key, runs fn while held, and releases it,
// retrying on contention until acquisition succeeds or ctx is done.
// Each retry attempt still waits up to lockTimeout, so a caller that
// wants a hard deadline should pass a context with one.
func (m *lockManager) withLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	for {
		ran, err := m.tryWithLock(ctx, key, fn)
		if err != nil {
			return err
		}
		if ran {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

// tryWithLock makes a single acquisition attempt, running fn and
// releasing the lock if it succeeds. ran is false on contention alone.
func (m *lockManager) tryWithLock(ctx context.Context, key string, fn func(ctx context.Context) error) (ran bool, err error) {
	lock, ok, err := m.locker.TryLock(ctx, key, lockTimeout, lockExptime)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	defer func() {
		if uerr := lock.Unlock(ctx); uerr != nil {
			m.log.Warn("health: lock release failed", pkglog.String("key", key), pkglog.Error(uerr))
		}
	}()

	return true, fn(ctx)
}

// tryOnce attempts key exactly once with no retry, releasing it after
// fn runs. It backs the scheduler's period lock, whose "only one
// worker per tick" semantics need a single non-blocking attempt rather
// than withLock's blocking-up-to-lockTimeout acquire.
func (m *lockManager) tryOnce(ctx context.Context, key string, exptime time.Duration, fn func(ctx context.Context)) error {
	lock, ok, err := m.locker.TryLock(ctx, key, 0, exptime)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	defer func() {
		if uerr := lock.Unlock(ctx); uerr != nil {
			m.log.Warn("health: lock release failed", pkglog.String("key", key), pkglog.Error(uerr))
		}
	}()
	fn(ctx)
	return nil
}
