// Command relayhealth-demo wires the engine over an in-process
// memstore and local bus, registers a couple of sample targets, and
// prints the target list on a short interval so the state machine's
// transitions are visible without a real backing store.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/relayhealth/relayhealth/internal/bus/local"
	"github.com/relayhealth/relayhealth/internal/config"
	"github.com/relayhealth/relayhealth/internal/health"
	logdriver "github.com/relayhealth/relayhealth/internal/log/driver/stdout"
	"github.com/relayhealth/relayhealth/internal/metrics"
	"github.com/relayhealth/relayhealth/internal/store/memstore"
	"github.com/relayhealth/relayhealth/internal/tracing"
)

var (
	configFile = flag.String("config", "", "Configuration file path (optional; defaults are used if empty)")
	version    = flag.Bool("version", false, "Show version information")
)

const Version = "v0.1.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("relayhealth-demo %s\n", Version)
		os.Exit(0)
	}

	var cfg *config.Config
	var err error
	if *configFile != "" {
		cfg, err = config.Load(*configFile)
		if err != nil {
			log.Fatalf("failed to load configuration: %v", err)
		}
	} else {
		cfg = config.DefaultConfig()
		cfg.Name = "relayhealth-demo"
		cfg.ShmName = "relayhealth-demo-shm"
		cfg.Checks.Active.Type = "tcp"
		cfg.Checks.Active.Healthy.Interval = 3
		cfg.Checks.Active.Unhealthy.Interval = 3
		if err := cfg.Validate(); err != nil {
			log.Fatalf("invalid default configuration: %v", err)
		}
	}

	logger, err := logdriver.New(nil)
	if err != nil {
		log.Fatalf("failed to construct logger: %v", err)
	}

	kv := memstore.New()
	bus := local.New(nil)
	recorder := metrics.New(nil)

	tracingCtx, cancelTracing := context.WithTimeout(context.Background(), 5*time.Second)
	provider, err := tracing.NewProvider(tracingCtx, cfg.Name)
	cancelTracing()
	if err != nil {
		log.Fatalf("failed to construct tracer provider: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			log.Printf("tracer provider shutdown: %v", err)
		}
	}()
	tracer := tracing.New()

	engine, err := health.New(cfg, kv, bus,
		health.WithLogger(logger),
		health.WithMetrics(recorder),
		health.WithTracer(tracer),
	)
	if err != nil {
		log.Fatalf("failed to construct engine: %v", err)
	}

	ctx := context.Background()
	if err := engine.AddTarget(ctx, "127.0.0.1", 22, "ssh", true, ""); err != nil {
		log.Fatalf("failed to add target: %v", err)
	}
	if err := engine.AddTarget(ctx, "127.0.0.1", 1, "closed-port", true, ""); err != nil {
		log.Fatalf("failed to add target: %v", err)
	}

	if err := engine.Start(); err != nil {
		log.Fatalf("failed to start engine: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(3 * time.Second)
	defer ticker.Stop()

	log.Printf("relayhealth-demo running as %q, printing target status every 3s (ctrl-c to stop)", cfg.Name)

	for {
		select {
		case <-ticker.C:
			statuses, err := health.GetTargetList(ctx, cfg.Name, kv)
			if err != nil {
				log.Printf("get target list: %v", err)
				continue
			}
			for _, s := range statuses {
				log.Printf("target=%s:%d(%s) state=%s success=%d http_failure=%d tcp_failure=%d timeout=%d",
					s.Target.IP, s.Target.Port, s.Target.Hostname, s.State,
					s.Counters.Success, s.Counters.HTTPFailure, s.Counters.TCPFailure, s.Counters.TimeoutError)
			}
		case <-sigChan:
			log.Println("received interrupt signal, stopping engine")
			if err := engine.Stop(); err != nil {
				log.Printf("engine stop: %v", err)
			}
			if err := engine.Close(); err != nil {
				log.Printf("engine close: %v", err)
			}
			return
		}
	}
}
