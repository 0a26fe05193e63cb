package log

import (
	"sync"

	"github.com/styrcan/pulse/internal/version"
)

var (
	globalMu     sync.Mutex
	globalLogger *Logger
)

// SetDefaultLogger replaces the process-wide default logger. Command
// startup installs its flag-configured logger here; components that were
// constructed without an injected logger pick it up.
func SetDefaultLogger(logger *Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = logger
}

// DefaultLogger returns the process-wide default logger, lazily building
// one stamped with the running build's version when nothing has been
// installed yet.
func DefaultLogger() *Logger {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalLogger == nil {
		config := DefaultConfig()
		config.ServiceVersion = version.Version
		globalLogger = New(config)
	}
	return globalLogger
}
