// observability.go implements the free-standing get_target_list
// operation: a read-only decoration of the persisted
// target list with each target's state and counter breakdown, usable
// by any process holding the shared store (not just a running Engine).
package health

import (
	"context"
	"fmt"

	"github.com/relayhealth/relayhealth/internal/store"
)

// CounterBreakdown is the per-lane view of a target's counter word.
type CounterBreakdown struct {
	Success      uint8 `json:"success"`
	HTTPFailure  uint8 `json:"http_failure"`
	TCPFailure   uint8 `json:"tcp_failure"`
	TimeoutError uint8 `json:"timeout_failure"`
}

// TargetStatus decorates a persisted Target with its shared-store
// state and counter breakdown.
type TargetStatus struct {
	Target   Target           `json:"target"`
	State    State            `json:"state"`
	Counters CounterBreakdown `json:"counters"`
}

// GetTargetList reads name's persisted target list and decorates each
// entry with its current state and counter breakdown, straight from
// the shared store rather than any single worker's local index; it
// is meant for a CLI or status page that has no engine of its own.
func GetTargetList(ctx context.Context, name string, s store.Store) ([]TargetStatus, error) {
	keys := newKeyBuilder(name)
	c := newCodec(s, keys)

	list, err := c.getTargetList(ctx)
	if err != nil {
		return nil, fmt.Errorf("health: get_target_list: %w", err)
	}

	out := make([]TargetStatus, 0, len(list))
	for _, target := range list {
		key := target.Key()

		state, err := c.getState(ctx, key)
		if err == store.ErrNotFound {
			state = StateHealthy
		} else if err != nil {
			return nil, fmt.Errorf("health: get_target_list: %w", err)
		}

		word, err := c.getCounterWord(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("health: get_target_list: %w", err)
		}

		out = append(out, TargetStatus{
			Target: target,
			State:  state,
			Counters: CounterBreakdown{
				Success:      word.Extract(SelectorSuccess),
				HTTPFailure:  word.Extract(SelectorHTTP),
				TCPFailure:   word.Extract(SelectorTCP),
				TimeoutError: word.Extract(SelectorTimeout),
			},
		})
	}
	return out, nil
}
