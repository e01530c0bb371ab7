package ui

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/abelbrown/peopledesk/internal/hr"
)

// detailMarkdown renders a row as Markdown. Announcements are shown as
// their body; every other kind as a field table.
func detailMarkdown(title string, row any) (string, error) {
	if a, ok := row.(hr.Announcement); ok {
		var b strings.Builder
		fmt.Fprintf(&b, "# %s\n\n", a.Title)
		meta := a.CreatedAt.Format("2 Jan 2006")
		if a.Author != "" {
			meta = a.Author + " · " + meta
		}
		fmt.Fprintf(&b, "_%s · %s_\n\n", meta, a.Status)
		b.WriteString(a.Body)
		return b.String(), nil
	}

	data, err := json.Marshal(row)
	if err != nil {
		return "", err
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return "", err
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n| Field | Value |\n|---|---|\n", title)
	for _, k := range keys {
		v := fields[k]
		var s string
		switch v := v.(type) {
		case []any:
			parts := make([]string, len(v))
			for i, p := range v {
				parts[i] = fmt.Sprint(p)
			}
			s = strings.Join(parts, ", ")
		default:
			s = fmt.Sprint(v)
		}
		fmt.Fprintf(&b, "| %s | %s |\n", k, strings.ReplaceAll(s, "|", `\|`))
	}
	return b.String(), nil
}

// RenderDetail returns a command rendering row with glamour. style is a
// glamour standard style name ("dark", "light", "notty") or "auto".
func RenderDetail(kind hr.Kind, id, title string, row any, width int, style string) tea.Cmd {
	return func() tea.Msg {
		md, err := detailMarkdown(title, row)
		if err != nil {
			return DetailRendered{Kind: kind, ID: id, Title: title, Err: err}
		}
		opts := []glamour.TermRendererOption{glamour.WithWordWrap(max(width-4, 20))}
		if style == "" || style == "auto" {
			opts = append(opts, glamour.WithAutoStyle())
		} else {
			opts = append(opts, glamour.WithStandardStyle(style))
		}
		r, err := glamour.NewTermRenderer(opts...)
		if err != nil {
			return DetailRendered{Kind: kind, ID: id, Title: title, Err: err}
		}
		out, err := r.Render(md)
		return DetailRendered{Kind: kind, ID: id, Title: title, Rendered: out, Err: err}
	}
}
