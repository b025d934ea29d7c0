// codec.go implements C1, the shared-store codec: translating target
// lists, state, and counter words to and from the raw KVStore. It is
// grounded on the AtomicStore/EtcdStore Get/Set/Incr trio,
// generalized to the four value shapes this package persists.
package health

import (
	"context"
	"fmt"

	"github.com/relayhealth/relayhealth/internal/store"
)

type codec struct {
	store store.Store
	keys  keyBuilder
}

func newCodec(s store.Store, keys keyBuilder) *codec {
	return &codec{store: s, keys: keys}
}

func (c *codec) putTargetList(ctx context.Context, list TargetList) error {
	data, err := EncodeTargetList(list)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, c.keys.targetList(), data)
}

// getTargetList returns the persisted list, or an empty list if the
// key has never been written.
func (c *codec) getTargetList(ctx context.Context) (TargetList, error) {
	data, err := c.store.Get(ctx, c.keys.targetList())
	if err == store.ErrNotFound {
		return TargetList{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("health: get target list: %w", err)
	}
	return DecodeTargetList(data)
}

func (c *codec) getState(ctx context.Context, targetKey string) (State, error) {
	data, err := c.store.Get(ctx, c.keys.state(targetKey))
	if err == store.ErrNotFound {
		return 0, store.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("health: get state: %w", err)
	}
	if len(data) != 1 {
		return 0, fmt.Errorf("health: get state: malformed value for %s", targetKey)
	}
	return State(data[0]), nil
}

func (c *codec) setState(ctx context.Context, targetKey string, state State) error {
	if err := c.store.Set(ctx, c.keys.state(targetKey), []byte{byte(state)}); err != nil {
		return fmt.Errorf("health: set state: %w", err)
	}
	return nil
}

func (c *codec) deleteState(ctx context.Context, targetKey string) error {
	if err := c.store.Delete(ctx, c.keys.state(targetKey)); err != nil {
		return fmt.Errorf("health: delete state: %w", err)
	}
	return nil
}

// incrCounter atomically bumps the byte named by sel and returns the
// full post-increment word.
func (c *codec) incrCounter(ctx context.Context, targetKey string, sel CounterSelector) (CounterWord, error) {
	delta := uint32(1) << sel
	word, err := c.store.Incr(ctx, c.keys.counter(targetKey), delta, 0)
	if err != nil {
		return 0, fmt.Errorf("health: incr counter: %w", err)
	}
	return CounterWord(word), nil
}

// getCounterWord reads back the counter word via the driver's native
// Incr-compatible representation, unlike a plain Get which is only
// portable for memstore/etcdstore, not redisstore.
func (c *codec) getCounterWord(ctx context.Context, targetKey string) (CounterWord, error) {
	v, err := c.store.GetCounter(ctx, c.keys.counter(targetKey))
	if err != nil {
		return 0, fmt.Errorf("health: get counter word: %w", err)
	}
	return CounterWord(v), nil
}

func (c *codec) setCounterWord(ctx context.Context, targetKey string, word CounterWord) error {
	if err := c.store.SetCounter(ctx, c.keys.counter(targetKey), uint32(word)); err != nil {
		return fmt.Errorf("health: set counter word: %w", err)
	}
	return nil
}

func (c *codec) clearCounter(ctx context.Context, targetKey string) error {
	return c.setCounterWord(ctx, targetKey, 0)
}

func (c *codec) deleteCounter(ctx context.Context, targetKey string) error {
	if err := c.store.Delete(ctx, c.keys.counter(targetKey)); err != nil {
		return fmt.Errorf("health: delete counter: %w", err)
	}
	return nil
}
