// Package timer defines the Ticker collaborator used by C7, the
// scheduler: a periodic-callback abstraction grounded on a
// runHealthCheck goroutine, which pairs a time.Ticker with a stop
// channel selected in the same loop.
//
// The scheduler in internal/health needs two independent periods (the
// healthy-tick and the unhealthy-tick), so Ticker
// is a standalone collaborator rather than something baked directly
// into the engine, letting tests substitute a fast or manually
// triggered fake without a real time.Ticker in play.
package timer

// Ticker runs fn on a fixed interval until Stop is called. Start must
// not be called more than once per Ticker.
type Ticker interface {
	Start()
	Stop()
}
