package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/abelbrown/peopledesk/internal/otel"
)

// debugPanelChrome is the number of terminal lines consumed by DebugPanel's
// border (top + bottom = 2) and vertical padding (top + bottom = 2).
// Must be updated if DebugPanel style changes.
const debugPanelChrome = 4

// debugOverlay renders per-view read stats, recent errors and the event tail.
// Pure function with no side effects. Returns empty string if ring is nil.
func debugOverlay(ring *otel.RingBuffer, width, height int) string {
	if ring == nil {
		return ""
	}

	stats := ring.Stats()
	byView := ring.ReadStatsByView()

	var lines []string
	lines = append(lines, DebugHeaderStyle.Render("Reads"))
	views := make([]string, 0, len(byView))
	for v := range byView {
		views = append(views, v)
	}
	sort.Strings(views)
	for _, v := range views {
		st := byView[v]
		lines = append(lines, fmt.Sprintf("  %-14s %3d ok  %2d err  %2d stale  avg %s  max %s",
			v, st.Reads, st.Errors, st.Stale, formatAge(st.AvgDur), formatAge(st.MaxDur)))
	}
	if len(views) == 0 {
		lines = append(lines, "  no reads yet")
	}
	lines = append(lines, fmt.Sprintf("  Mutations:  %d complete, %d errors",
		stats[otel.KindMutationComplete], stats[otel.KindMutationError]))
	lines = append(lines, fmt.Sprintf("  Refetch:    %d requested, %d run",
		stats[otel.KindRefetchRequest], stats[otel.KindRefetchRun]))
	lines = append(lines, fmt.Sprintf("  Buffer:     %d / %d events", ring.Len(), ring.Cap()))
	lines = append(lines, "")

	if errs := ring.LastErrors(3); len(errs) > 0 {
		lines = append(lines, DebugHeaderStyle.Render("Errors"))
		for _, e := range errs {
			lines = append(lines, fmt.Sprintf("  %6s  %-10s %s", formatAge(time.Since(e.Time)), e.View, truncateRunes(e.Err, 50)))
		}
		lines = append(lines, "")
	}

	lines = append(lines, DebugHeaderStyle.Render("Recent Events"))
	for _, e := range ring.Last(20) {
		line := fmt.Sprintf("  %6s  %-18s", formatAge(time.Since(e.Time)), string(e.Kind))
		if e.View != "" {
			line += "  " + e.View
		}
		if e.Epoch > 0 {
			line += fmt.Sprintf(" #%d", e.Epoch)
		}
		if e.Msg != "" {
			line += "  " + truncateRunes(e.Msg, 40)
		}
		if e.Err != "" {
			line += "  ERR:" + truncateRunes(e.Err, 30)
		}
		lines = append(lines, line)
	}

	// Truncate to fit terminal height (subtract chrome added by DebugPanel border/padding)
	maxHeight := max(height-debugPanelChrome, 1)
	if len(lines) > maxHeight {
		lines = lines[:maxHeight]
	}

	panelWidth := max(min(86, width-4), 20)
	return DebugPanel.Width(panelWidth).Render(strings.Join(lines, "\n"))
}

// formatAge formats a duration as a compact human string.
// Handles negative durations from clock skew by clamping to "0ms".
func formatAge(d time.Duration) string {
	if d < 0 {
		return "0ms"
	}
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

// debugStatusBar renders the status bar for the debug overlay.
func debugStatusBar(width int) string {
	keys := StatusBarKey.Render("?") + StatusBarText.Render(":close")
	return StatusBar.Width(width).Render("  [DEBUG]  " + keys)
}
