// scheduler.go implements C7: the two independent periodic tickers
// that drive active probing, and the period lock that keeps active
// probes from running on more than one worker per tick. Grounded on
// ActiveHealthChecker's Start/Stop start/stop-refusal
// pattern, adapted from its per-upstream ticker goroutines to the
// fixed healthy/unhealthy tick pair.
package health

import (
	"context"
	"sync"
	"time"

	"github.com/relayhealth/relayhealth/internal/timer"
	pkglog "github.com/relayhealth/relayhealth/pkg/log"
)

// minTickGranularity bounds how coarse a real ticker's sub-interval
// can be: min(interval, 0.5s).
const minTickGranularity = 500 * time.Millisecond

// Start begins the healthy-tick and unhealthy-tick tickers. An
// interval of 0 for a tick disables it entirely. Start refuses if
// already running.
func (e *Engine) Start() error {
	e.startMu.Lock()
	defer e.startMu.Unlock()

	if e.started {
		return ErrEngineAlreadyStarted
	}

	active := e.cfg.Checks.Active
	e.healthyTicker = e.newPeriodTicker("healthy", active.Healthy.Interval, StateHealthy, StateMostlyHealthy)
	e.unhealthyTicker = e.newPeriodTicker("unhealthy", active.Unhealthy.Interval, StateUnhealthy, StateMostlyUnhealthy)

	if e.healthyTicker != nil {
		e.healthyTicker.Start()
	}
	if e.unhealthyTicker != nil {
		e.unhealthyTicker.Start()
	}

	e.started = true
	return nil
}

// Stop cancels both tickers and returns once their goroutines have
// exited; any probe already in flight runs to its own socket timeout
// rather than being interrupted. The bus subscription set up by New
// survives Stop, so a stopped-then-restarted engine keeps mirroring
// peer events into its index; Close tears the subscription down for
// good.
func (e *Engine) Stop() error {
	e.startMu.Lock()
	defer e.startMu.Unlock()

	if !e.started {
		return ErrEngineNotStarted
	}

	e.workerExiting.Store(true)
	if e.healthyTicker != nil {
		e.healthyTicker.Stop()
	}
	if e.unhealthyTicker != nil {
		e.unhealthyTicker.Stop()
	}
	e.workerExiting.Store(false)

	e.started = false
	return nil
}

// Close unregisters this worker's bus subscription. Call it once the
// engine is being discarded for good, after Stop if it was ever
// started; unlike Stop, Close is not meant to be followed by reuse.
func (e *Engine) Close() error {
	e.startMu.Lock()
	defer e.startMu.Unlock()

	if e.subscription != nil {
		e.subscription.Close()
	}
	return nil
}

// newPeriodTicker builds the Ticker for one tick name, or nil if its
// interval is 0 (disabled). Each firing takes the shared period lock
// before scanning the index for targets in either of the two matching
// states and running activeCheckTargets against them; a contended lock
// makes the tick a no-op, enforcing a cross-worker single-runner
// rule.
func (e *Engine) newPeriodTicker(tick string, intervalSeconds int, states ...State) timer.Ticker {
	if intervalSeconds <= 0 {
		return nil
	}

	interval := time.Duration(intervalSeconds) * time.Second
	if interval > minTickGranularity {
		interval = minTickGranularity
	}

	period := time.Duration(intervalSeconds) * time.Second
	var lastMu sync.Mutex
	var last time.Time

	fire := func() {
		now := time.Now()
		lastMu.Lock()
		due := now.Sub(last) >= period
		if due {
			last = now
		}
		lastMu.Unlock()
		if !due {
			return
		}
		e.runPeriodTick(context.Background(), tick, states)
	}

	return e.tickerFactory(interval, false, fire)
}

// runPeriodTick acquires the shared period lock and, on success, runs
// activeCheckTargets against every indexed target currently in one of
// states.
func (e *Engine) runPeriodTick(ctx context.Context, tick string, states []State) {
	targets := e.snapshotByState(states)
	if len(targets) == 0 {
		return
	}

	key := e.keys.periodLock(tick)
	err := e.locks.tryOnce(ctx, key, lockExptime, func(ctx context.Context) {
		e.activeCheckTargets(ctx, targets)
	})
	if err != nil {
		e.log.Warn("health: period tick failed", pkglog.String("tick", tick), pkglog.Error(err))
	}
}

// snapshotByState returns every indexed target whose current state is
// one of states, taken under a read lock.
func (e *Engine) snapshotByState(states []State) []Target {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var out []Target
	for _, entry := range e.snapshotLocked() {
		for _, s := range states {
			if entry.state == s {
				out = append(out, entry.target)
				break
			}
		}
	}
	return out
}
