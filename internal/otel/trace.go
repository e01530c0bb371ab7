package otel

import (
	"os"
	"sync/atomic"
)

// traceEnabled is set once at package init and overridden in tests.
var traceEnabled atomic.Bool

func init() {
	traceEnabled.Store(os.Getenv("PEOPLEDESK_TRACE") != "")
}

// TraceEnabled reports whether PEOPLEDESK_TRACE is set. When it is, every
// key press and refetch request is recorded, not just reads and mutations.
func TraceEnabled() bool {
	return traceEnabled.Load()
}

// setTraceEnabled overrides the traceEnabled flag for testing.
func setTraceEnabled(v bool) {
	traceEnabled.Store(v)
}
