// Package health implements the multi-worker health-checking core:
// the target registry, the counter-threshold state machine, active
// and passive observation entry points, the two-ticker scheduler, and
// the event-bus integration that keeps every worker's local index
// consistent with the shared store.
package health

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/relayhealth/relayhealth/internal/bus"
	"github.com/relayhealth/relayhealth/internal/config"
	intlog "github.com/relayhealth/relayhealth/internal/log"
	"github.com/relayhealth/relayhealth/internal/metrics"
	"github.com/relayhealth/relayhealth/internal/socket"
	"github.com/relayhealth/relayhealth/internal/store"
	"github.com/relayhealth/relayhealth/internal/timer"
	"github.com/relayhealth/relayhealth/internal/tracing"
	pkglog "github.com/relayhealth/relayhealth/pkg/log"
)

// TickerFactory builds a Ticker that calls fn every interval,
// optionally firing once immediately. Engine takes this as a
// dependency (rather than calling timer.New directly) so tests can
// substitute a synchronous fake.
type TickerFactory func(interval time.Duration, immediate bool, fn func()) timer.Ticker

// SocketFactory builds a fresh Socket for a single active probe.
type SocketFactory func() socket.Socket

// Engine is a single health-checking instance: one per (proxy)
// process, sharing its backing store and event bus with any peer
// engines that use the same config Name.
type Engine struct {
	cfg   *config.Config
	store store.Store
	bus   bus.EventBus

	tickerFactory TickerFactory
	socketFactory SocketFactory

	log     pkglog.Logger
	metrics *metrics.Recorder
	tracer  *tracing.Tracer

	keys  keyBuilder
	codec *codec
	locks *lockManager

	mu        sync.RWMutex
	index     map[string]map[int]map[string]*indexEntry
	byKey     map[string]*indexEntry
	order     []string // target keys, insertion order
	statusVer uint64

	workerExiting atomic.Bool

	startMu         sync.Mutex
	started         bool
	healthyTicker   timer.Ticker
	unhealthyTicker timer.Ticker
	subscription    bus.Subscription
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithLogger overrides the default no-op logger.
func WithLogger(logger pkglog.Logger) Option {
	return func(e *Engine) { e.log = logger }
}

// WithMetrics attaches a Prometheus recorder.
func WithMetrics(recorder *metrics.Recorder) Option {
	return func(e *Engine) { e.metrics = recorder }
}

// WithTracer attaches an OpenTelemetry tracer for active probes.
func WithTracer(tracer *tracing.Tracer) Option {
	return func(e *Engine) { e.tracer = tracer }
}

// WithTickerFactory overrides the default real-time ticker, mainly for
// tests that want deterministic, manually-fired ticks.
func WithTickerFactory(f TickerFactory) Option {
	return func(e *Engine) { e.tickerFactory = f }
}

// WithSocketFactory overrides the default TCP/TLS socket, mainly for
// tests that want to fake network I/O.
func WithSocketFactory(f SocketFactory) Option {
	return func(e *Engine) { e.socketFactory = f }
}

// New constructs an Engine. It validates cfg (a Config error aborts
// construction) and wires the codec/lock helpers to
// kvStore and locker, and event fanout to eventBus.
func New(cfg *config.Config, kvStore store.Store, eventBus bus.EventBus, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	keys := newKeyBuilder(cfg.Name)

	e := &Engine{
		cfg:   cfg,
		store: kvStore,
		bus:   eventBus,
		keys:  keys,
		index: make(map[string]map[int]map[string]*indexEntry),
		byKey: make(map[string]*indexEntry),
		log:   intlog.NewNoop(),
	}
	e.codec = newCodec(kvStore, keys)

	e.socketFactory = func() socket.Socket { return socket.NewTCP() }
	e.tickerFactory = func(interval time.Duration, immediate bool, fn func()) timer.Ticker {
		return timer.New(interval, immediate, fn)
	}

	for _, opt := range opts {
		opt(e)
	}

	e.locks = newLockManager(kvStore, e.log)
	e.subscribe()

	return e, nil
}
