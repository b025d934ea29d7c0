// statemachine.go implements C4: turning a stream of success/failure
// observations into the four-state verdict.
//
// The counter word saturates at 255 by construction rather than by an
// explicit clamp: once a category's byte reaches its configured
// threshold (always <255, enforced by config.Validate) the full-state
// transition fires and the fast-path guard in report blocks every further
// same-direction increment until an opposite observation arrives and
// the mask step zeroes the byte back to 0.
package health

import (
	"context"
	"errors"
	"fmt"

	"github.com/relayhealth/relayhealth/internal/store"
	pkglog "github.com/relayhealth/relayhealth/pkg/log"
)

// report is the shared C4 entry point every C5 passive method and the
// C6 active prober funnel through.
func (e *Engine) report(ctx context.Context, target Target, healthyReport bool, threshold int, sel CounterSelector) error {
	if threshold == 0 {
		return nil
	}

	e.mu.RLock()
	entry, known := e.lookupLocked(target)
	e.mu.RUnlock()
	if !known {
		e.log.Warn("health: report for unknown target, sync lag", pkglog.String("target", target.Key()))
		return nil
	}

	if fastPathSaturated(entry.state, healthyReport) {
		return nil
	}

	key := target.Key()
	return e.locks.withLock(ctx, e.keys.targetLock(key), func(ctx context.Context) error {
		return e.applyReport(ctx, target, healthyReport, threshold, sel)
	})
}

func fastPathSaturated(current State, healthyReport bool) bool {
	return (healthyReport && current == StateHealthy) || (!healthyReport && current == StateUnhealthy)
}

// applyReport runs the slow path under the per-target lock: bump the
// counter, mask the opposing bytes, and persist any resulting verdict
// transition.
func (e *Engine) applyReport(ctx context.Context, target Target, healthyReport bool, threshold int, sel CounterSelector) error {
	key := target.Key()

	current, err := e.codec.getState(ctx, key)
	if err == store.ErrNotFound {
		e.log.Warn("health: report for target missing shared state, sync lag", pkglog.String("target", key))
		return nil
	}
	if err != nil {
		return err
	}

	word, err := e.codec.incrCounter(ctx, key, sel)
	if err != nil {
		return err
	}
	ctr := word.Extract(sel)

	masked := maskAfterReport(word, sel)
	if masked != word {
		if err := e.codec.setCounterWord(ctx, key, masked); err != nil {
			return err
		}
	}

	newState := current
	switch {
	case int(ctr) >= threshold:
		newState = stateFromBool(healthyReport)
	case current == StateHealthy && masked&failureMask != 0:
		newState = StateMostlyHealthy
	case current == StateUnhealthy && masked.Extract(SelectorSuccess) != 0:
		newState = StateMostlyUnhealthy
	}

	if newState == current {
		return nil
	}
	if err := e.codec.setState(ctx, key, newState); err != nil {
		return err
	}
	return e.postVerdict(ctx, target, newState)
}

// SetTargetStatus forces a target's verdict, bypassing the state
// machine entirely: zero the counter word, write the new state, post
// the event.
func (e *Engine) SetTargetStatus(ctx context.Context, ip string, port int, hostname string, healthy bool) error {
	target := Target{IP: ip, Port: port, Hostname: hostname}
	key := target.Key()
	newState := stateFromBool(healthy)

	return e.locks.withLock(ctx, e.keys.targetLock(key), func(ctx context.Context) error {
		if err := e.codec.clearCounter(ctx, key); err != nil {
			return err
		}
		if err := e.codec.setState(ctx, key, newState); err != nil {
			return err
		}
		return e.postVerdict(ctx, target, newState)
	})
}

// SetAllTargetStatusesForHostname applies SetTargetStatus to every
// indexed target matching hostname and port, aggregating any errors
// into a single message rather than stopping at the first failure.
func (e *Engine) SetAllTargetStatusesForHostname(ctx context.Context, hostname string, port int, healthy bool) error {
	e.mu.RLock()
	var matches []Target
	for _, entry := range e.snapshotLocked() {
		if entry.target.EffectiveHostname() == hostname && entry.target.Port == port {
			matches = append(matches, entry.target)
		}
	}
	e.mu.RUnlock()

	var errs []error
	for _, t := range matches {
		if err := e.SetTargetStatus(ctx, t.IP, t.Port, t.Hostname, healthy); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("health: set_all_target_statuses_for_hostname: %d of %d failed: %w", len(errs), len(matches), errors.Join(errs...))
}
