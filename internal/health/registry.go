// registry.go implements C3, the target registry: add/remove/clear the
// authoritative shared list and this worker's local index, in the
// ordering that keeps a concurrently-initializing peer from ever
// observing a structurally inconsistent store.
package health

import (
	"context"
)

// AddTarget registers ip/port/hostname if not already present in the
// shared list. An already-present triple is a no-op that does not
// reset state or counters.
func (e *Engine) AddTarget(ctx context.Context, ip string, port int, hostname string, healthyInit bool, hostHeader string) error {
	target := Target{IP: ip, Port: port, Hostname: hostname, HostHeader: hostHeader}
	key := target.Key()

	err := e.locks.withLock(ctx, e.keys.targetListLock(), func(ctx context.Context) error {
		list, err := e.codec.getTargetList(ctx)
		if err != nil {
			return err
		}
		for _, existing := range list {
			if existing.Key() == key {
				return nil
			}
		}

		// State before list: a peer initializing concurrently must
		// never see this target in the list without a state key.
		initState := stateFromBool(healthyInit)
		if err := e.codec.setState(ctx, key, initState); err != nil {
			return err
		}
		if err := e.codec.clearCounter(ctx, key); err != nil {
			return err
		}

		list = append(list, target)
		if err := e.codec.putTargetList(ctx, list); err != nil {
			return err
		}

		return e.postVerdict(ctx, target, initState)
	})
	return err
}

// RemoveTarget deregisters a triple: mutate the list first, then
// delete its state/counter keys, then post remove, the reverse
// ordering from AddTarget.
func (e *Engine) RemoveTarget(ctx context.Context, ip string, port int, hostname string) error {
	target := Target{IP: ip, Port: port, Hostname: hostname}
	key := target.Key()

	return e.locks.withLock(ctx, e.keys.targetListLock(), func(ctx context.Context) error {
		list, err := e.codec.getTargetList(ctx)
		if err != nil {
			return err
		}

		next := list[:0:0]
		found := false
		for _, existing := range list {
			if existing.Key() == key {
				found = true
				continue
			}
			next = append(next, existing)
		}
		if !found {
			return nil
		}
		if err := e.codec.putTargetList(ctx, next); err != nil {
			return err
		}

		if err := e.codec.deleteState(ctx, key); err != nil {
			return err
		}
		if err := e.codec.deleteCounter(ctx, key); err != nil {
			return err
		}

		return e.bus.Post(ctx, e.cfg.Name, eventRemove, targetPayload{Target: target})
	})
}

// Clear empties the list and every target's state/counter, then posts
// clear. The local index is emptied synchronously, not via the event
// subscriber.
func (e *Engine) Clear(ctx context.Context) error {
	err := e.locks.withLock(ctx, e.keys.targetListLock(), func(ctx context.Context) error {
		list, err := e.codec.getTargetList(ctx)
		if err != nil {
			return err
		}
		if err := e.codec.putTargetList(ctx, TargetList{}); err != nil {
			return err
		}
		for _, t := range list {
			key := t.Key()
			if err := e.codec.deleteState(ctx, key); err != nil {
				return err
			}
			if err := e.codec.deleteCounter(ctx, key); err != nil {
				return err
			}
		}
		return e.bus.Post(ctx, e.cfg.Name, eventClear, nil)
	})
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.resetLocked()
	e.mu.Unlock()
	return nil
}

// GetTargetStatus reads the boolean verdict for a triple from this
// worker's local index.
func (e *Engine) GetTargetStatus(ip string, port int, hostname string) (bool, error) {
	target := Target{IP: ip, Port: port, Hostname: hostname}
	e.mu.RLock()
	defer e.mu.RUnlock()
	entry, ok := e.lookupLocked(target)
	if !ok {
		return false, ErrTargetNotFound
	}
	return entry.state.Bool(), nil
}
