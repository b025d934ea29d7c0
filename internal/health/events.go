// events.go implements C8, event fanout: posting verdict/lifecycle
// events to the bus, and the subscriber that mirrors peer updates
// (and this worker's own writes) into the local index.
package health

import (
	"context"
	"strconv"

	pkglog "github.com/relayhealth/relayhealth/pkg/log"
)

const (
	eventHealthy         = "healthy"
	eventUnhealthy       = "unhealthy"
	eventMostlyHealthy   = "mostly_healthy"
	eventMostlyUnhealthy = "mostly_unhealthy"
	eventRemove          = "remove"
	eventClear           = "clear"
)

// targetPayload is the payload carried by every event this package
// posts. State is meaningless for eventRemove/eventClear.
type targetPayload struct {
	Target Target
	State  State
}

func eventNameForState(s State) string {
	switch s {
	case StateHealthy:
		return eventHealthy
	case StateUnhealthy:
		return eventUnhealthy
	case StateMostlyHealthy:
		return eventMostlyHealthy
	case StateMostlyUnhealthy:
		return eventMostlyUnhealthy
	default:
		return eventUnhealthy
	}
}

func stateForEventName(name string) (State, bool) {
	switch name {
	case eventHealthy:
		return StateHealthy, true
	case eventUnhealthy:
		return StateUnhealthy, true
	case eventMostlyHealthy:
		return StateMostlyHealthy, true
	case eventMostlyUnhealthy:
		return StateMostlyUnhealthy, true
	default:
		return 0, false
	}
}

// postVerdict posts the event matching state, carrying target.
func (e *Engine) postVerdict(ctx context.Context, target Target, state State) error {
	return e.bus.Post(ctx, e.cfg.Name, eventNameForState(state), targetPayload{Target: target, State: state})
}

// subscribe registers this worker's index-mirroring handler against
// the bus, using a weak subscription so it does not keep the engine
// alive past Engine.Close; Stop leaves it in place.
func (e *Engine) subscribe() {
	e.subscription = e.bus.SubscribeWeak(e.cfg.Name, e.handleEvent)
}

// handleEvent is the C8 subscriber behavior.
func (e *Engine) handleEvent(event string, payload any) {
	p, ok := payload.(targetPayload)
	if !ok && event != eventClear {
		e.log.Warn("health: malformed event payload", pkglog.String("event", event))
		return
	}

	switch event {
	case eventClear:
		e.mu.Lock()
		e.resetLocked()
		count := len(e.byKey)
		e.mu.Unlock()
		if e.metrics != nil {
			e.metrics.SetTargetCount(count)
		}
		return

	case eventRemove:
		e.mu.Lock()
		removed := e.deleteLocked(p.Target)
		count := len(e.byKey)
		e.mu.Unlock()
		if !removed {
			e.log.Warn("health: remove event for unknown target", pkglog.String("target", p.Target.Key()))
		}
		if e.metrics != nil {
			e.metrics.SetTargetCount(count)
		}
		return
	}

	newState, ok := stateForEventName(event)
	if !ok {
		e.log.Warn("health: unrecognized event", pkglog.String("event", event))
		return
	}

	e.mu.Lock()
	entry, existed := e.lookupLocked(p.Target)
	// Unknown target: synthesize an index entry. This is how a remote
	// add propagates to workers that never called AddTarget directly.
	// Report and override events carry no HostHeader, so keep the one
	// already indexed.
	t := p.Target
	if existed && t.HostHeader == "" {
		t.HostHeader = entry.target.HostHeader
	}
	e.storeLocked(t, newState)
	count := len(e.byKey)

	var transitioned bool
	if existed {
		transitioned = entry.state != newState
		if entry.state.Bool() != newState.Bool() {
			e.statusVer++
		}
	}
	statusVer := e.statusVer
	e.mu.Unlock()

	if e.metrics == nil {
		return
	}
	e.metrics.SetTargetCount(count)
	if transitioned {
		e.metrics.RecordTransition(newState.String())
	}
	if existed && entry.state.Bool() != newState.Bool() {
		e.metrics.SetStatusVer(p.Target.IP, strconv.Itoa(p.Target.Port), p.Target.EffectiveHostname(), statusVer)
	}
}
