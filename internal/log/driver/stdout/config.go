package stdout

import (
	"time"

	"github.com/relayhealth/relayhealth/pkg/log"
)

// Config configures a Logger.
type Config struct {
	Level            log.Level
	TimeFormat       string
	EnableCaller     bool
	EnableStacktrace bool
	Development      bool
	FieldNames       FieldNames
}

// FieldNames lets callers rename the standard JSON fields.
type FieldNames struct {
	Time    string
	Level   string
	Message string
	Caller  string
}

// DefaultConfig returns the configuration relayhealth uses by default.
func DefaultConfig() *Config {
	return &Config{
		Level:            log.InfoLevel,
		TimeFormat:       time.RFC3339,
		EnableCaller:     false,
		EnableStacktrace: true,
		Development:      false,
		FieldNames: FieldNames{
			Time:    "timestamp",
			Level:   "level",
			Message: "message",
			Caller:  "caller",
		},
	}
}
