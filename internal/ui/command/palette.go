// Package command provides the ":" palette: jump to a tab, open a location
// such as "/leave?filter=pending", or run an app command.
package command

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Command is one palette entry.
type Command struct {
	Name        string
	Aliases     []string
	Description string
	Key         string // shortcut key if any
}

// AppCommands are the entries every palette carries besides the tabs.
func AppCommands() []Command {
	return []Command{
		{Name: "new", Aliases: []string{"create", "add"}, Description: "Create a record in this tab", Key: "n"},
		{Name: "reload", Aliases: []string{"refresh"}, Description: "Reload this tab", Key: "ctrl+r"},
		{Name: "back", Description: "Previous location", Key: "ctrl+o"},
		{Name: "debug", Aliases: []string{"events"}, Description: "Show read stats and events", Key: "?"},
		{Name: "quit", Aliases: []string{"exit", "q"}, Description: "Exit", Key: "q"},
	}
}

// Palette is a command palette with substring matching. Input starting
// with "/" is taken as a location and returned as typed.
type Palette struct {
	input    textinput.Model
	commands []Command
	filtered []Command
	cursor   int
	width    int
	active   bool
}

var (
	accent  = lipgloss.Color("#58a6ff")
	text    = lipgloss.Color("#c9d1d9")
	muted   = lipgloss.Color("#8b949e")
	faint   = lipgloss.Color("#484f58")
	surface = lipgloss.Color("#21262d")
	border  = lipgloss.Color("#30363d")
)

// New creates a palette over cmds.
func New(cmds []Command) Palette {
	ti := textinput.New()
	ti.Placeholder = "tab, command or /location..."
	ti.Prompt = ": "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(accent).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(text)
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(accent)
	ti.CharLimit = 200

	return Palette{
		input:    ti,
		commands: cmds,
		filtered: cmds,
		width:    60,
	}
}

// Activate shows the palette
func (p *Palette) Activate() tea.Cmd {
	p.active = true
	p.input.SetValue("")
	p.input.Focus()
	p.filtered = p.commands
	p.cursor = 0
	return textinput.Blink
}

// Deactivate hides the palette
func (p *Palette) Deactivate() {
	p.active = false
	p.input.Blur()
}

// IsActive returns whether palette is showing
func (p Palette) IsActive() bool {
	return p.active
}

// SetWidth sets the palette width
func (p *Palette) SetWidth(w int) {
	p.width = w
	p.input.Width = max(w-10, 10)
}

// Selected returns what enter would pick: a "/location" as typed, or the
// name of the highlighted command.
func (p Palette) Selected() string {
	if v := strings.TrimSpace(p.input.Value()); strings.HasPrefix(v, "/") {
		return v
	}
	if p.cursor >= 0 && p.cursor < len(p.filtered) {
		return p.filtered[p.cursor].Name
	}
	return ""
}

// Update handles input. The returned string is the selection when enter
// was pressed, empty otherwise.
func (p Palette) Update(msg tea.Msg) (Palette, tea.Cmd, string) {
	if !p.active {
		return p, nil, ""
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			p.Deactivate()
			return p, nil, ""

		case "enter":
			sel := p.Selected()
			p.Deactivate()
			return p, nil, sel

		case "up", "ctrl+p":
			if p.cursor > 0 {
				p.cursor--
			}
			return p, nil, ""

		case "down", "ctrl+n":
			if p.cursor < len(p.filtered)-1 {
				p.cursor++
			}
			return p, nil, ""

		case "tab":
			if len(p.filtered) > 0 {
				p.input.SetValue(p.filtered[p.cursor].Name)
				p.input.CursorEnd()
			}
			return p, nil, ""
		}
	}

	oldValue := p.input.Value()

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)

	if p.input.Value() != oldValue {
		p.filter()
	}

	return p, cmd, ""
}

func (p *Palette) filter() {
	query := strings.ToLower(strings.TrimSpace(p.input.Value()))
	if query == "" || strings.HasPrefix(query, "/") {
		p.filtered = p.commands
		p.cursor = 0
		return
	}

	var matches []Command
	for _, c := range p.commands {
		if matchCommand(c, query) {
			matches = append(matches, c)
		}
	}

	p.filtered = matches
	if p.cursor >= len(p.filtered) {
		p.cursor = max(0, len(p.filtered)-1)
	}
}

func matchCommand(c Command, query string) bool {
	if strings.Contains(strings.ToLower(c.Name), query) {
		return true
	}
	for _, alias := range c.Aliases {
		if strings.Contains(strings.ToLower(alias), query) {
			return true
		}
	}
	return false
}

// View renders the palette
func (p Palette) View() string {
	if !p.active {
		return ""
	}

	containerStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(max(p.width-4, 20))
	itemStyle := lipgloss.NewStyle().Foreground(text).Padding(0, 1)
	selectedStyle := lipgloss.NewStyle().
		Foreground(accent).
		Background(surface).
		Bold(true).
		Padding(0, 1)
	descStyle := lipgloss.NewStyle().Foreground(muted)
	keyStyle := lipgloss.NewStyle().Foreground(faint).Background(surface).Padding(0, 1)

	var b strings.Builder
	b.WriteString(p.input.View())
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(border).Render(strings.Repeat("─", max(p.width-8, 0))))
	b.WriteString("\n")

	if v := strings.TrimSpace(p.input.Value()); strings.HasPrefix(v, "/") {
		b.WriteString(selectedStyle.Render("› open " + v))
		b.WriteString("\n")
	} else {
		// Commands (max 8 visible, scrolls with cursor)
		maxVisible := min(8, len(p.filtered))
		start := 0
		if p.cursor >= maxVisible {
			start = p.cursor - maxVisible + 1
		}
		end := min(start+maxVisible, len(p.filtered))

		for i := start; i < end; i++ {
			c := p.filtered[i]
			var line string
			if i == p.cursor {
				line = selectedStyle.Render("› "+c.Name) + descStyle.Render(" "+c.Description)
			} else {
				line = itemStyle.Render("  "+c.Name) + descStyle.Render(" "+c.Description)
			}
			if c.Key != "" {
				keyHint := keyStyle.Render(c.Key)
				if padding := p.width - 10 - lipgloss.Width(line) - lipgloss.Width(keyHint); padding > 0 {
					line += strings.Repeat(" ", padding) + keyHint
				}
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
		if end < len(p.filtered) {
			b.WriteString(descStyle.Render("  ↓ more below"))
			b.WriteString("\n")
		}
		if len(p.filtered) == 0 {
			b.WriteString(descStyle.Render("  No matching commands"))
			b.WriteString("\n")
		}
	}

	b.WriteString(lipgloss.NewStyle().Foreground(faint).Render("↑↓ navigate  enter select  tab complete  esc cancel"))
	return containerStyle.Render(b.String())
}
