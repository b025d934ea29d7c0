package health

import (
	"testing"

	"github.com/relayhealth/relayhealth/internal/bus/local"
	"github.com/relayhealth/relayhealth/internal/config"
	"github.com/relayhealth/relayhealth/internal/store"
	"github.com/relayhealth/relayhealth/internal/store/memstore"
)

// newTestEngine builds an Engine over a fresh memstore and local bus,
// with mutate applied to a default config before construction.
func newTestEngine(t *testing.T, mutate func(*config.Config), opts ...Option) (*Engine, store.Store) {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Name = "test"
	cfg.ShmName = "test-shm"
	if mutate != nil {
		mutate(cfg)
	}

	kv := memstore.New()
	bus := local.New(nil)

	e, err := New(cfg, kv, bus, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e, kv
}
