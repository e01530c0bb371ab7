package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// eventRecord mirrors otel.Event for JSON decoding. Decoding from JSONL
// keeps older logs readable after the event schema changes.
type eventRecord struct {
	Time      time.Time      `json:"t"`
	Level     string         `json:"level"`
	Kind      string         `json:"kind"`
	Comp      string         `json:"comp"`
	SessionID string         `json:"session_id"`
	View      string         `json:"view"`
	Epoch     uint64         `json:"epoch"`
	DurMs     float64        `json:"dur_ms"`
	Count     int            `json:"count"`
	Page      int            `json:"page"`
	Query     string         `json:"query"`
	Err       string         `json:"err"`
	Msg       string         `json:"msg"`
	Extra     map[string]any `json:"extra"`
}

// levelRank returns a numeric rank for filtering (higher = more severe).
func levelRank(level string) int {
	switch level {
	case "debug":
		return 0
	case "info":
		return 1
	case "warn":
		return 2
	case "error":
		return 3
	default:
		return 0
	}
}

// eventFilter selects log lines; zero fields match everything.
type eventFilter struct {
	kind    string // prefix
	level   string // minimum
	comp    string
	view    string
	session string
}

func (f eventFilter) match(ev eventRecord) bool {
	if f.kind != "" && !strings.HasPrefix(ev.Kind, f.kind) {
		return false
	}
	if f.level != "" && levelRank(ev.Level) < levelRank(f.level) {
		return false
	}
	if f.comp != "" && ev.Comp != f.comp {
		return false
	}
	if f.view != "" && ev.View != f.view {
		return false
	}
	if f.session != "" && !strings.HasPrefix(ev.SessionID, f.session) {
		return false
	}
	return true
}

func formatEvent(ev eventRecord) string {
	ts := ev.Time.Format("15:04:05.000")
	lvl := strings.ToUpper(ev.Level)
	if lvl == "" {
		lvl = "?"
	}

	parts := []string{fmt.Sprintf("%s %-5s [%-5s] %-18s", ts, lvl, ev.Comp, ev.Kind)}

	if ev.View != "" {
		v := ev.View
		if ev.Epoch > 0 {
			v += fmt.Sprintf("#%d", ev.Epoch)
		}
		parts = append(parts, v)
	}
	if ev.Msg != "" {
		parts = append(parts, "- "+ev.Msg)
	}
	if ev.DurMs > 0 {
		parts = append(parts, fmt.Sprintf("(%.*fms)", durPrecision(ev.DurMs), ev.DurMs))
	}
	if ev.Page > 0 {
		parts = append(parts, fmt.Sprintf("p=%d", ev.Page))
	}
	if ev.Count > 0 {
		parts = append(parts, fmt.Sprintf("n=%d", ev.Count))
	}
	if ev.Query != "" {
		parts = append(parts, fmt.Sprintf("q=%q", ev.Query))
	}
	if ev.Err != "" {
		parts = append(parts, "err="+ev.Err)
	}

	return strings.Join(parts, " ")
}

var (
	eventsTail   int
	eventsFollow bool
	eventsJSON   bool
	eventsFile   string
	eventsFilter eventFilter
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show the client's JSONL event log",
	Long: `Prints the last reads, searches, stale responses, refetches and
mutations recorded by the terminal client. Use -f to keep following.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := eventsFile
		if path == "" {
			path = eventLogPath()
		}
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("event log not found at %s (run peopledesk first): %w", path, err)
		}
		defer f.Close()

		out := cmd.OutOrStdout()
		show := func(l parsedLine) {
			if eventsJSON {
				fmt.Fprintln(out, string(l.raw))
				return
			}
			fmt.Fprintln(out, formatEvent(l.ev))
		}

		for _, l := range readTailLines(f, eventsTail, eventsFilter.match) {
			show(l)
		}
		if !eventsFollow {
			return nil
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()
		reader := bufio.NewReader(f)
		for {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			line, err := reader.ReadBytes('\n')
			if err != nil {
				if err == io.EOF {
					time.Sleep(100 * time.Millisecond)
					continue
				}
				return err
			}
			line = trimLine(line)
			if len(line) == 0 {
				continue
			}
			var ev eventRecord
			if json.Unmarshal(line, &ev) != nil {
				continue
			}
			if eventsFilter.match(ev) {
				show(parsedLine{ev: ev, raw: line})
			}
		}
	},
}

func init() {
	fl := eventsCmd.Flags()
	fl.IntVar(&eventsTail, "tail", 50, "Number of recent lines to show")
	fl.BoolVarP(&eventsFollow, "follow", "f", false, "Follow mode (like tail -f)")
	fl.BoolVar(&eventsJSON, "json", false, "Output raw JSON lines")
	fl.StringVar(&eventsFile, "file", "", "Event log path (default ~/.peopledesk/events.jsonl)")
	fl.StringVar(&eventsFilter.kind, "kind", "", "Filter by event kind prefix (e.g. 'search')")
	fl.StringVar(&eventsFilter.level, "level", "", "Minimum level: debug, info, warn, error")
	fl.StringVar(&eventsFilter.comp, "comp", "", "Filter by component name")
	fl.StringVar(&eventsFilter.view, "view", "", "Filter by list view (e.g. 'leave')")
	fl.StringVar(&eventsFilter.session, "session", "", "Filter by session id prefix")
}

type parsedLine struct {
	ev  eventRecord
	raw []byte
}

// readTailLines reads r and returns the last n lines matching the filter.
func readTailLines(r io.Reader, n int, match func(eventRecord) bool) []parsedLine {
	if n <= 0 {
		return nil
	}
	scanner := bufio.NewScanner(r)
	// Allow large lines (some events may have big Extra maps)
	scanner.Buffer(make([]byte, 0, 64*1024), 256*1024)

	ring := make([]parsedLine, 0, n)
	for scanner.Scan() {
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var ev eventRecord
		if json.Unmarshal(raw, &ev) != nil {
			continue
		}
		if !match(ev) {
			continue
		}
		// scanner reuses its buffer
		rawCopy := make([]byte, len(raw))
		copy(rawCopy, raw)

		if len(ring) < n {
			ring = append(ring, parsedLine{ev: ev, raw: rawCopy})
		} else {
			copy(ring, ring[1:])
			ring[n-1] = parsedLine{ev: ev, raw: rawCopy}
		}
	}
	return ring
}

func trimLine(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}

func durPrecision(ms float64) int {
	if ms >= 100 {
		return 0
	}
	if ms >= 1 {
		return 1
	}
	return 2
}
