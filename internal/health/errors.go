package health

import "errors"

// ErrTargetNotFound is returned by GetTargetStatus for a triple absent
// from the per-worker index.
var ErrTargetNotFound = errors.New("health: target not found")

// ErrEngineAlreadyStarted / ErrEngineNotStarted guard Start/Stop
// against the "start refuses if tickers already running" and
// symmetric stop rule.
var ErrEngineAlreadyStarted = errors.New("health: engine already started")
var ErrEngineNotStarted = errors.New("health: engine not started")
