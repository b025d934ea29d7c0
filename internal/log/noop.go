package log

import "github.com/relayhealth/relayhealth/pkg/log"

// noop discards every record. It is the engine's default logger so that
// embedding it never requires wiring a logging backend.
type noop struct{}

// NewNoop returns a Logger that discards everything it is given.
func NewNoop() log.Logger { return noop{} }

func (noop) Debug(string, ...log.Field)  {}
func (noop) Info(string, ...log.Field)   {}
func (noop) Warn(string, ...log.Field)   {}
func (noop) Error(string, ...log.Field)  {}
func (n noop) With(...log.Field) log.Logger { return n }
