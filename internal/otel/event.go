// Package otel records what the list screens do as structured events.
//
// Events are typed structs serialized as JSONL lines. The Logger writes
// events asynchronously via a buffered channel and background drain goroutine.
// An optional RingBuffer keeps the recent tail in memory for the debug overlay.
package otel

import (
	"encoding/json"
	"time"
)

// Level defines event severity for filtering.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// EventKind identifies the category of an observability event.
// Dot-delimited: "<subsystem>.<action>".
type EventKind string

const (
	// Listing reads
	KindListStart    EventKind = "list.start"
	KindListComplete EventKind = "list.complete"
	KindListError    EventKind = "list.error"

	// Search reads
	KindSearchCommit   EventKind = "search.commit"
	KindSearchStart    EventKind = "search.start"
	KindSearchComplete EventKind = "search.complete"
	KindSearchError    EventKind = "search.error"

	// A response that lost the epoch race and was thrown away
	KindStale EventKind = "read.stale"

	// Refetch signal channel
	KindRefetchRequest EventKind = "refetch.request"
	KindRefetchRun     EventKind = "refetch.run"

	// Row actions and forms
	KindMutationStart    EventKind = "mutation.start"
	KindMutationComplete EventKind = "mutation.complete"
	KindMutationError    EventKind = "mutation.error"
	KindValidation       EventKind = "form.invalid"

	// Navigation
	KindNavigate EventKind = "nav.push"
	KindBack     EventKind = "nav.back"

	// UI events
	KindKeyPress EventKind = "ui.key"

	// System events
	KindStartup  EventKind = "sys.startup"
	KindShutdown EventKind = "sys.shutdown"
	KindError    EventKind = "sys.error"
)

// Event is the universal observability record. Every field except Kind and
// Time is optional. Serialized as a single JSONL line.
type Event struct {
	Time      time.Time      `json:"t"`
	Level     Level          `json:"level,omitempty"`
	Kind      EventKind      `json:"kind"`
	Comp      string         `json:"comp,omitempty"`       // component: "ui", "api", "coord", "main"
	SessionID string         `json:"session_id,omitempty"` // random hex, same for entire app run
	View      string         `json:"view,omitempty"`       // list kind: "leave", "overtime", ...
	Epoch     uint64         `json:"epoch,omitempty"`      // read epoch within its branch
	Dur       time.Duration  `json:"-"`                    // not serialized directly
	DurMs     float64        `json:"dur_ms,omitempty"`     // computed from Dur at marshal time
	Count     int            `json:"count,omitempty"`
	Page      int            `json:"page,omitempty"`
	Query     string         `json:"query,omitempty"`
	Err       string         `json:"err,omitempty"`
	Msg       string         `json:"msg,omitempty"`   // free text
	Extra     map[string]any `json:"extra,omitempty"` // escape hatch for unusual fields
}

// MarshalJSON implements json.Marshaler, converting Dur to DurMs.
func (e Event) MarshalJSON() ([]byte, error) {
	type Alias Event
	a := struct {
		Alias
	}{Alias: Alias(e)}
	if e.Dur > 0 {
		a.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(a)
}
