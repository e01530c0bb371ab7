package main

import (
	"strings"
	"testing"
)

const sampleLog = `{"t":"2026-03-01T10:00:00Z","level":"info","kind":"list.start","comp":"ui","session_id":"abc123","view":"leave","epoch":1,"page":1}
{"t":"2026-03-01T10:00:00.2Z","level":"info","kind":"list.complete","comp":"ui","session_id":"abc123","view":"leave","epoch":1,"dur_ms":182.4,"count":5,"page":1}
not json
{"t":"2026-03-01T10:00:01Z","level":"info","kind":"search.start","comp":"ui","session_id":"abc123","view":"employees","epoch":2,"query":"ahmed"}

{"t":"2026-03-01T10:00:02Z","level":"error","kind":"search.error","comp":"ui","session_id":"abc123","view":"employees","epoch":2,"err":"timeout"}
{"t":"2026-03-01T10:00:03Z","level":"info","kind":"read.stale","comp":"ui","session_id":"def456","view":"leave","epoch":3}
`

func TestReadTailLinesKeepsLastN(t *testing.T) {
	lines := readTailLines(strings.NewReader(sampleLog), 2, eventFilter{}.match)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0].ev.Kind != "search.error" || lines[1].ev.Kind != "read.stale" {
		t.Errorf("kinds = %s, %s", lines[0].ev.Kind, lines[1].ev.Kind)
	}
	if !strings.Contains(string(lines[1].raw), `"def456"`) {
		t.Errorf("raw line not preserved: %s", lines[1].raw)
	}
}

func TestReadTailLinesZero(t *testing.T) {
	if got := readTailLines(strings.NewReader(sampleLog), 0, eventFilter{}.match); got != nil {
		t.Errorf("tail 0 should return nothing, got %d lines", len(got))
	}
}

func TestEventFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter eventFilter
		want   int
	}{
		{"all", eventFilter{}, 5},
		{"kind prefix", eventFilter{kind: "search"}, 2},
		{"level", eventFilter{level: "error"}, 1},
		{"view", eventFilter{view: "leave"}, 3},
		{"session prefix", eventFilter{session: "def"}, 1},
		{"comp", eventFilter{comp: "api"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := readTailLines(strings.NewReader(sampleLog), 100, tt.filter.match)
			if len(got) != tt.want {
				t.Errorf("got %d lines, want %d", len(got), tt.want)
			}
		})
	}
}

func TestFormatEvent(t *testing.T) {
	lines := readTailLines(strings.NewReader(sampleLog), 100, eventFilter{kind: "list.complete"}.match)
	if len(lines) != 1 {
		t.Fatalf("got %d lines", len(lines))
	}
	out := formatEvent(lines[0].ev)
	for _, want := range []string{"INFO", "list.complete", "leave#1", "(182ms)", "p=1", "n=5"} {
		if !strings.Contains(out, want) {
			t.Errorf("%q missing from %q", want, out)
		}
	}

	errLine := readTailLines(strings.NewReader(sampleLog), 1, eventFilter{level: "error"}.match)
	if out := formatEvent(errLine[0].ev); !strings.Contains(out, "err=timeout") {
		t.Errorf("error not shown: %q", out)
	}
}

func TestDurPrecision(t *testing.T) {
	if durPrecision(250) != 0 || durPrecision(12.5) != 1 || durPrecision(0.4) != 2 {
		t.Error("unexpected precision")
	}
}
