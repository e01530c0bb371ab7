package ui

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/peopledesk/internal/api"
	"github.com/abelbrown/peopledesk/internal/collection"
	"github.com/abelbrown/peopledesk/internal/hr"
	"github.com/abelbrown/peopledesk/internal/logging"
	"github.com/abelbrown/peopledesk/internal/otel"
	"github.com/abelbrown/peopledesk/internal/ui/command"
)

// ObsConfig wires observability into the app.
type ObsConfig struct {
	Ring   *otel.RingBuffer
	Events *otel.Logger
}

// AppConfig holds the dependencies of the App. Everything that talks to the
// server is injected as a screen or command factory.
type AppConfig struct {
	Kinds     []hr.Kind
	NewScreen func(kind hr.Kind) (Screen, error)
	// Create submits a validated create form.
	Create func(kind hr.Kind, form any) tea.Cmd
	// Start is the first location shown. An empty or unknown kind opens the
	// first tab.
	Start collection.Location
	// Locations are remembered queries per kind, used the first time a tab
	// is opened.
	Locations map[string]string
	Registry  *collection.Registry
	ToastTTL  time.Duration
	Obs       ObsConfig
}

// App is the root Bubble Tea model.
// IMPORTANT: App does NOT hold the API client. Reads and writes reach it
// through the screens and the injected command factories.
type App struct {
	cfg     AppConfig
	kinds   []hr.Kind
	screens map[hr.Kind]Screen
	started map[hr.Kind]bool
	active  int

	history   *History
	toasts    *Toasts
	locations map[string]string

	form    *FormModel
	detail  *DetailRendered
	vp      viewport.Model
	palette command.Palette

	badges  map[hr.Kind]int
	offline bool

	debugVisible bool
	width        int
	height       int
	ready        bool
}

// badgeStatuses are the statuses counted in a tab's badge.
var badgeStatuses = []string{"pending", "open"}

// NewAppWithConfig creates the App. Screens that fail to build are left out.
func NewAppWithConfig(cfg AppConfig) App {
	a := App{
		cfg:       cfg,
		screens:   make(map[hr.Kind]Screen),
		started:   make(map[hr.Kind]bool),
		history:   &History{},
		toasts:    NewToasts(cfg.ToastTTL),
		locations: make(map[string]string),
		badges:    make(map[hr.Kind]int),
	}
	for k, v := range cfg.Locations {
		a.locations[k] = v
	}
	for _, k := range cfg.Kinds {
		if cfg.NewScreen == nil {
			break
		}
		s, err := cfg.NewScreen(k)
		if err != nil {
			logging.Error("screen unavailable", "kind", k, "err", err)
			continue
		}
		a.kinds = append(a.kinds, k)
		a.screens[k] = s
	}
	cmds := make([]command.Command, 0, len(a.kinds))
	for _, k := range a.kinds {
		title := string(k)
		if m, ok := hr.MetaFor(k); ok {
			title = m.Title
		}
		cmds = append(cmds, command.Command{Name: string(k), Description: "Go to " + title})
	}
	a.palette = command.New(append(cmds, command.AppCommands()...))
	if start := hr.Kind(cfg.Start.Kind()); start != "" {
		for i, k := range a.kinds {
			if k == start {
				a.active = i
				if len(cfg.Start.Query) > 0 {
					a.locations[string(k)] = cfg.Start.Query.Encode()
				}
			}
		}
	}
	return a
}

// Init opens the first tab.
func (a App) Init() tea.Cmd {
	if len(a.kinds) == 0 {
		return nil
	}
	return a.open(a.kinds[a.active])
}

// Locations returns the last query of every visited kind, for persisting.
func (a App) Locations() map[string]string {
	out := make(map[string]string, len(a.locations))
	for k, v := range a.locations {
		out[k] = v
	}
	return out
}

// Close releases every screen.
func (a App) Close() {
	for _, s := range a.screens {
		s.Close()
	}
}

func (a App) current() Screen {
	if len(a.kinds) == 0 {
		return nil
	}
	return a.screens[a.kinds[a.active]]
}

// open starts kind's screen on first use and records its location.
func (a App) open(kind hr.Kind) tea.Cmd {
	s := a.screens[kind]
	var cmd tea.Cmd
	if !a.started[kind] {
		a.started[kind] = true
		q, _ := url.ParseQuery(a.locations[string(kind)])
		cmd = s.Init(q)
		if a.ready {
			s.SetSize(a.width, a.screenHeight())
		}
	}
	a.record(s.Location())
	return cmd
}

func (a App) record(loc collection.Location) {
	a.history.Push(loc)
	a.locations[loc.Kind()] = loc.Query.Encode()
}

func (a App) emit(kind otel.EventKind, loc collection.Location) {
	a.cfg.Obs.Events.Emit(otel.Event{Level: otel.LevelInfo, Kind: kind, Comp: "ui", View: loc.Kind(), Query: loc.Query.Encode()})
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		for k, s := range a.screens {
			if a.started[k] {
				s.SetSize(a.width, a.screenHeight())
			}
		}
		a.vp.Width = a.width - 4
		a.palette.SetWidth(min(a.width, 80))
		a.vp.Height = max(a.screenHeight()-2, 3)
		return a, nil

	case collection.NavigateMsg:
		s, ok := a.screens[hr.Kind(msg.Kind)]
		if !ok {
			return a, nil
		}
		loc := collection.Location{Path: "/" + msg.Kind, Query: msg.Query}
		a.record(loc)
		a.emit(otel.KindNavigate, loc)
		return a, s.Sync(msg.Query)

	case ActionDone:
		if msg.Err != nil {
			return a, a.toasts.Push(LevelError, "Action failed", api.UserMessage(msg.Err, collection.FallbackMessage))
		}
		a.requestRefetch(msg.Kind)
		return a, a.toasts.Push(LevelSuccess, msg.Message, "")

	case Created:
		if msg.Err != nil {
			if a.form != nil {
				a.form.Failed()
			}
			return a, a.toasts.Push(LevelError, "Could not save", api.UserMessage(msg.Err, collection.FallbackMessage))
		}
		if a.form != nil && a.form.Kind() == msg.Kind {
			a.form = nil
		}
		a.requestRefetch(msg.Kind)
		return a, a.toasts.Push(LevelSuccess, msg.Message, "")

	case formInvalid:
		a.cfg.Obs.Events.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindValidation, Comp: "ui", View: string(msg.Kind), Count: len(msg.Issues)})
		cmds := make([]tea.Cmd, 0, len(msg.Issues))
		for _, is := range msg.Issues {
			cmds = append(cmds, a.toasts.Push(LevelError, is.Path, is.Message))
		}
		return a, tea.Batch(cmds...)

	case ReadFailed:
		title := string(msg.Kind)
		if m, ok := hr.MetaFor(msg.Kind); ok {
			title = m.Title
		}
		return a, a.toasts.Push(LevelError, title, msg.Message)

	case toastExpired:
		a.toasts.Expire(msg.ID)
		return a, nil

	case DetailRendered:
		if msg.Err != nil {
			return a, a.toasts.Push(LevelError, "Could not open "+msg.Title, msg.Err.Error())
		}
		d := msg
		a.detail = &d
		a.vp = viewport.New(max(a.width-4, 20), max(a.screenHeight()-2, 3))
		a.vp.SetContent(msg.Rendered)
		return a, nil

	case SummaryMsg:
		if msg.Err != nil {
			a.offline = true
			return a, nil
		}
		a.offline = false
		for k, st := range msg.Stats {
			n := 0
			for _, status := range badgeStatuses {
				n += st.ByStatus[status]
			}
			a.badges[k] = n
		}
		return a, nil
	}

	cmd := a.broadcast(msg)
	if a.palette.IsActive() {
		var pcmd tea.Cmd
		a.palette, pcmd, _ = a.palette.Update(msg)
		cmd = tea.Batch(cmd, pcmd)
	}
	return a, cmd
}

// broadcast hands msg to every started screen. Results carry their kind and
// epoch, so screens drop what is not theirs.
func (a App) broadcast(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	for _, k := range a.kinds {
		if !a.started[k] {
			continue
		}
		if cmd := a.screens[k].Update(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

func (a App) requestRefetch(kind hr.Kind) {
	if a.cfg.Registry != nil {
		a.cfg.Registry.Request(string(kind))
	}
}

// handleKeyMsg processes keyboard input.
func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if otel.TraceEnabled() {
		a.cfg.Obs.Events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindKeyPress, Comp: "ui", Msg: msg.String()})
	}
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	if a.form != nil {
		if msg.String() == "esc" {
			a.form = nil
			return a, nil
		}
		f, cmd := a.form.Update(msg)
		a.form = &f
		return a, cmd
	}

	if a.detail != nil {
		switch msg.String() {
		case "esc", "enter", "q":
			a.detail = nil
			return a, nil
		}
		var cmd tea.Cmd
		a.vp, cmd = a.vp.Update(msg)
		return a, cmd
	}

	if a.palette.IsActive() {
		p, cmd, sel := a.palette.Update(msg)
		a.palette = p
		if sel == "" {
			return a, cmd
		}
		return a.run(sel)
	}

	s := a.current()
	if s == nil {
		if msg.String() == "q" {
			return a, tea.Quit
		}
		return a, nil
	}
	if s.Searching() {
		return a, s.HandleKey(msg)
	}

	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "?":
		a.debugVisible = !a.debugVisible
		return a, nil
	case ":":
		return a, a.palette.Activate()
	case "tab":
		return a.switchTab(1)
	case "shift+tab":
		return a.switchTab(-1)
	case "ctrl+o", "backspace":
		return a.back()
	case "n":
		return a.openForm()
	}
	return a, s.HandleKey(msg)
}

// run executes a palette selection.
func (a App) run(sel string) (tea.Model, tea.Cmd) {
	if strings.HasPrefix(sel, "/") {
		loc, err := collection.ParseLocation(sel)
		if err != nil {
			return a, a.toasts.Push(LevelError, "Bad location", err.Error())
		}
		return a.goTo(loc)
	}
	for i, k := range a.kinds {
		if string(k) == sel {
			a.active = i
			return a, a.open(k)
		}
	}
	switch sel {
	case "new":
		return a.openForm()
	case "reload":
		if s := a.current(); s != nil {
			return a, s.Reload()
		}
	case "back":
		return a.back()
	case "debug":
		a.debugVisible = true
	case "quit":
		return a, tea.Quit
	}
	return a, nil
}

// goTo shows loc, switching tabs when needed.
func (a App) goTo(loc collection.Location) (tea.Model, tea.Cmd) {
	kind := hr.Kind(loc.Kind())
	s, ok := a.screens[kind]
	if !ok {
		return a, a.toasts.Push(LevelError, "Unknown location", loc.String())
	}
	for i, k := range a.kinds {
		if k == kind {
			a.active = i
		}
	}
	a.emit(otel.KindNavigate, loc)
	if !a.started[kind] {
		a.locations[string(kind)] = loc.Query.Encode()
		return a, a.open(kind)
	}
	cmd := s.Sync(loc.Query)
	a.record(s.Location())
	return a, cmd
}

func (a App) openForm() (tea.Model, tea.Cmd) {
	s := a.current()
	if s == nil {
		return a, nil
	}
	spec, ok := hr.FormFor(s.Kind())
	if !ok {
		return a, a.toasts.Push(LevelInfo, "Read only", "New records cannot be created here")
	}
	f := NewFormModel(spec, a.cfg.Create)
	a.form = &f
	return a, nil
}

func (a App) switchTab(delta int) (tea.Model, tea.Cmd) {
	if len(a.kinds) < 2 {
		return a, nil
	}
	a.active = (a.active + delta + len(a.kinds)) % len(a.kinds)
	return a, a.open(a.kinds[a.active])
}

// back returns to the previous location, switching tabs when it belongs to
// another screen.
func (a App) back() (tea.Model, tea.Cmd) {
	loc, ok := a.history.Back()
	if !ok {
		return a, nil
	}
	kind := hr.Kind(loc.Kind())
	s, ok := a.screens[kind]
	if !ok {
		return a, nil
	}
	for i, k := range a.kinds {
		if k == kind {
			a.active = i
		}
	}
	a.locations[string(kind)] = loc.Query.Encode()
	a.emit(otel.KindBack, loc)
	if !a.started[kind] {
		a.started[kind] = true
		if a.ready {
			s.SetSize(a.width, a.screenHeight())
		}
		return a, s.Init(loc.Query)
	}
	return a, s.Sync(loc.Query)
}

// appChrome is the tab bar plus the status bar.
const appChrome = 3

func (a App) screenHeight() int {
	return max(a.height-appChrome, 5)
}

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}
	if a.debugVisible {
		return debugOverlay(a.cfg.Obs.Ring, a.width, a.height-1) + "\n" + debugStatusBar(a.width)
	}

	var body string
	switch s := a.current(); {
	case s == nil:
		body = ErrorStyle.Render("No screens available")
	case a.palette.IsActive():
		body = a.palette.View()
	case a.form != nil:
		body = a.form.View()
	case a.detail != nil:
		body = DetailPanel.Width(max(a.width-2, 20)).Render(a.vp.View())
	default:
		body = s.View()
	}

	parts := []string{a.tabBar(), body}
	if t := a.toasts.View(a.width); t != "" {
		parts = append(parts, t)
	}
	parts = append(parts, a.statusBar())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (a App) tabBar() string {
	tabs := make([]string, 0, len(a.kinds))
	for i, k := range a.kinds {
		title := string(k)
		if m, ok := hr.MetaFor(k); ok {
			title = m.Title
		}
		if n := a.badges[k]; n > 0 {
			title += " " + TabBadge.Render(fmt.Sprint(n))
		}
		if i == a.active {
			tabs = append(tabs, TabActive.Render(title))
		} else {
			tabs = append(tabs, TabInactive.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

type keyHint struct{ key, desc string }

func (a App) hints() []keyHint {
	switch {
	case a.form != nil:
		return []keyHint{{"tab", "next"}, {"enter", "next/submit"}, {"ctrl+s", "submit"}, {"esc", "cancel"}}
	case a.detail != nil:
		return []keyHint{{"↑↓", "scroll"}, {"esc", "close"}}
	default:
		return []keyHint{{"tab", "switch"}, {":", "palette"}, {"n", "new"}, {"ctrl+o", "back"}, {"?", "debug"}, {"q", "quit"}}
	}
}

func (a App) statusBar() string {
	hints := a.hints()
	rendered := make([]string, len(hints))
	for i, h := range hints {
		rendered[i] = StatusBarKey.Render(h.key) + StatusBarText.Render(":"+h.desc)
	}
	line := " " + strings.Join(rendered, "  ")
	if a.offline {
		line = ErrorStyle.Render(" offline ") + line
	}
	if s := a.current(); s != nil {
		line += StatusBarText.Render("  " + s.Location().String())
	}
	return StatusBar.Width(a.width).Render(line)
}
