// Package local implements bus.EventBus for a single Go process,
// modeled on an in-memory discovery.Registry: a
// mutex-guarded map of source to subscriber list, with delivery run on
// the caller's goroutine but shielded per-handler so one bad
// subscriber cannot break Post for the others or for itself.
package local

import (
	"context"
	"sync"

	"github.com/relayhealth/relayhealth/internal/bus"
	intlog "github.com/relayhealth/relayhealth/internal/log"
	pkglog "github.com/relayhealth/relayhealth/pkg/log"
)

// Bus is an in-process bus.EventBus.
type Bus struct {
	mu   sync.RWMutex
	subs map[string]map[uint64]*subscriber
	next uint64
	log  pkglog.Logger
}

type subscriber struct {
	id      uint64
	source  string
	handler func(event string, payload any)
}

// New returns an empty Bus. A nil logger falls back to a no-op logger.
func New(logger pkglog.Logger) *Bus {
	if logger == nil {
		logger = intlog.NewNoop()
	}
	return &Bus{
		subs: make(map[string]map[uint64]*subscriber),
		log:  logger,
	}
}

// Post delivers event/payload to every subscriber currently registered
// against source. It never returns an error from a handler; handler
// panics are recovered and logged so one broken listener cannot take
// down the poster.
func (b *Bus) Post(ctx context.Context, source, event string, payload any) error {
	b.mu.RLock()
	subs := make([]*subscriber, 0, len(b.subs[source]))
	for _, s := range b.subs[source] {
		subs = append(subs, s)
	}
	b.mu.RUnlock()

	for _, s := range subs {
		b.deliver(s, event, payload)
	}
	return nil
}

func (b *Bus) deliver(s *subscriber, event string, payload any) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("bus: subscriber panicked",
				pkglog.String("source", s.source),
				pkglog.String("event", event),
				pkglog.Any("recover", r))
		}
	}()
	s.handler(event, payload)
}

// SubscribeWeak registers handler for source and returns a Subscription
// whose Close removes it.
func (b *Bus) SubscribeWeak(source string, handler func(event string, payload any)) bus.Subscription {
	b.mu.Lock()
	id := b.next
	b.next++
	if b.subs[source] == nil {
		b.subs[source] = make(map[uint64]*subscriber)
	}
	sub := &subscriber{id: id, source: source, handler: handler}
	b.subs[source][id] = sub
	b.mu.Unlock()

	return &subscription{bus: b, sub: sub}
}

type subscription struct {
	bus  *Bus
	sub  *subscriber
	once sync.Once
}

func (s *subscription) Close() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.subs[s.sub.source], s.sub.id)
		if len(s.bus.subs[s.sub.source]) == 0 {
			delete(s.bus.subs, s.sub.source)
		}
		s.bus.mu.Unlock()
	})
}
