package ui

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/peopledesk/internal/api"
	"github.com/abelbrown/peopledesk/internal/collection"
	"github.com/abelbrown/peopledesk/internal/hr"
	"github.com/abelbrown/peopledesk/internal/otel"
)

// Screen is one tab of the app.
type Screen interface {
	Kind() hr.Kind
	Init(q url.Values) tea.Cmd
	Sync(q url.Values) tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	HandleKey(msg tea.KeyMsg) tea.Cmd
	Reload() tea.Cmd
	// Searching reports whether the search box has focus.
	Searching() bool
	SearchText() string
	Location() collection.Location
	SetSize(width, height int)
	View() string
	Close()
}

// ListDeps are the collaborators shared by every list screen.
type ListDeps struct {
	Registry *collection.Registry
	Events   *otel.Logger
	PageSize int
	Debounce time.Duration
	Timeout  time.Duration
	Scope    collection.Scope

	// Act runs a row action and reports ActionDone.
	Act func(kind hr.Kind, id string, a hr.Action) tea.Cmd
	// LoadStats reports StatsLoaded for the stat cards.
	LoadStats func(kind hr.Kind) tea.Cmd
	// Detail reports DetailRendered for the selected row.
	Detail func(kind hr.Kind, id, title string, row any, width int) tea.Cmd
}

type listKeys struct {
	Search       key.Binding
	ClearSearch  key.Binding
	NextPage     key.Binding
	PrevPage     key.Binding
	MoreRows     key.Binding
	FewerRows    key.Binding
	Reload       key.Binding
	Detail       key.Binding
	ClearFilters key.Binding
}

func defaultListKeys() listKeys {
	return listKeys{
		Search:       key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		ClearSearch:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")),
		NextPage:     key.NewBinding(key.WithKeys("right", "l", "pgdown"), key.WithHelp("→", "next")),
		PrevPage:     key.NewBinding(key.WithKeys("left", "h", "pgup"), key.WithHelp("←", "prev")),
		MoreRows:     key.NewBinding(key.WithKeys("+"), key.WithHelp("+", "rows")),
		FewerRows:    key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "rows")),
		Reload:       key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "reload")),
		Detail:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		ClearFilters: key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "all")),
	}
}

// tableKeys keeps the table to cursor movement; everything else is ours.
func tableKeys() table.KeyMap {
	return table.KeyMap{
		LineUp:     key.NewBinding(key.WithKeys("up", "k")),
		LineDown:   key.NewBinding(key.WithKeys("down", "j")),
		GotoTop:    key.NewBinding(key.WithKeys("home", "g")),
		GotoBottom: key.NewBinding(key.WithKeys("end", "G")),
	}
}

// limitStep is how much +/- change the page size.
const limitStep = 5

// ListView is a list screen over one remote collection.
type ListView[T any] struct {
	kind hr.Kind
	meta hr.Meta
	cols Columns[T]
	deps ListDeps
	ctrl *collection.Controller[T]

	search  textinput.Model
	table   table.Model
	spinner spinner.Model
	pager   paginator.Model
	keys    listKeys

	stats    *api.Stats
	statsErr error
	width    int
	height   int
}

// NewListView binds a controller for kind over src. It takes the observer
// role on the kind's refetch signal until Close.
func NewListView[T any](kind hr.Kind, src collection.Source[T], cols Columns[T], deps ListDeps) (*ListView[T], error) {
	meta, ok := hr.MetaFor(kind)
	if !ok {
		return nil, fmt.Errorf("unknown kind %q", kind)
	}
	var sig *collection.Signal
	if deps.Registry != nil {
		s, err := deps.Registry.Observe(string(kind))
		if err != nil {
			return nil, fmt.Errorf("%s screen: %w", kind, err)
		}
		sig = s
	}

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "Search " + strings.ToLower(meta.Title)
	search.CharLimit = 100

	pager := paginator.New()
	pager.Type = paginator.Dots
	pager.ActiveDot = StatusBarKey.Render("•")
	pager.InactiveDot = StatusBarText.Render("•")

	lv := &ListView[T]{
		kind:   kind,
		meta:   meta,
		cols:   cols,
		deps:   deps,
		search: search,
		table: table.New(
			table.WithColumns(cols.Cols),
			table.WithFocused(true),
			table.WithHeight(10),
			table.WithKeyMap(tableKeys()),
		),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		pager:   pager,
		keys:    defaultListKeys(),
	}
	lv.ctrl = collection.New(collection.Config[T]{
		Kind:             string(kind),
		Source:           src,
		Scope:            scopeFor(meta, deps.Scope),
		ScopeKeys:        meta.ScopeKeys(),
		PageSize:         deps.PageSize,
		Debounce:         deps.Debounce,
		Timeout:          deps.Timeout,
		FiltersViaSearch: meta.FiltersViaSearch,
		Signal:           sig,
		Secondary:        lv.loadStats,
		Events:           deps.Events,
	})
	return lv, nil
}

// scopeFor keeps the entries of s that kind's reads understand.
func scopeFor(meta hr.Meta, s collection.Scope) collection.Scope {
	var out collection.Scope
	for _, k := range meta.ScopeKeys() {
		if v, ok := s[k]; ok && v != "" {
			if out == nil {
				out = collection.Scope{}
			}
			out[k] = v
		}
	}
	return out
}

// Kind returns the screen's kind.
func (lv *ListView[T]) Kind() hr.Kind { return lv.kind }

// Controller exposes the underlying controller.
func (lv *ListView[T]) Controller() *collection.Controller[T] { return lv.ctrl }

// Init starts the screen at query q.
func (lv *ListView[T]) Init(q url.Values) tea.Cmd {
	cmd := lv.ctrl.Init(q)
	lv.search.SetValue(lv.ctrl.State().SearchRaw)
	lv.refresh()
	return tea.Batch(cmd, lv.loadStats(), lv.spinner.Tick)
}

// Sync moves the screen to query q.
func (lv *ListView[T]) Sync(q url.Values) tea.Cmd {
	cmd := lv.ctrl.Sync(q)
	if !lv.search.Focused() {
		lv.search.SetValue(lv.ctrl.State().SearchRaw)
	}
	lv.refresh()
	return cmd
}

// Update routes non-key messages to the controller and widgets.
func (lv *ListView[T]) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case StatsLoaded:
		if msg.Kind == lv.kind {
			if msg.Err == nil {
				s := msg.Stats
				lv.stats = &s
			}
			lv.statsErr = msg.Err
		}
		return nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		lv.spinner, cmd = lv.spinner.Update(msg)
		return cmd
	}

	prevErr := lv.ctrl.Err()
	cmd := lv.ctrl.Update(msg)
	lv.refresh()

	if err := lv.ctrl.Err(); err != nil && err != prevErr {
		failed := ReadFailed{Kind: lv.kind, Message: lv.ctrl.ErrorMessage()}
		return tea.Batch(cmd, func() tea.Msg { return failed })
	}
	return cmd
}

// HandleKey handles a key press while this screen is active.
func (lv *ListView[T]) HandleKey(msg tea.KeyMsg) tea.Cmd {
	if lv.search.Focused() {
		switch msg.String() {
		case "esc", "enter":
			lv.search.Blur()
			return nil
		}
		var cmd tea.Cmd
		lv.search, cmd = lv.search.Update(msg)
		return tea.Batch(cmd, lv.ctrl.SetSearchInput(lv.search.Value()))
	}

	switch {
	case key.Matches(msg, lv.keys.Search):
		return lv.search.Focus()
	case key.Matches(msg, lv.keys.ClearSearch):
		if lv.search.Value() == "" && lv.ctrl.State().SearchCommitted == "" {
			return nil
		}
		lv.search.SetValue("")
		return lv.ctrl.ClearSearch()
	case key.Matches(msg, lv.keys.NextPage):
		return lv.ctrl.NextPage()
	case key.Matches(msg, lv.keys.PrevPage):
		return lv.ctrl.PrevPage()
	case key.Matches(msg, lv.keys.MoreRows):
		return lv.ctrl.SetLimit(lv.ctrl.State().Limit + limitStep)
	case key.Matches(msg, lv.keys.FewerRows):
		return lv.ctrl.SetLimit(max(lv.ctrl.State().Limit-limitStep, limitStep))
	case key.Matches(msg, lv.keys.Reload):
		return lv.Reload()
	case key.Matches(msg, lv.keys.ClearFilters):
		return lv.ctrl.ClearFilters()
	case key.Matches(msg, lv.keys.Detail):
		return lv.openDetail()
	}

	if s := msg.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
		if i := int(s[0] - '1'); i < len(lv.meta.Statuses) {
			return lv.ctrl.ToggleFilter(lv.meta.Statuses[i])
		}
		return nil
	}

	for _, a := range lv.meta.Actions {
		if msg.String() == a.Key {
			return lv.runAction(a)
		}
	}

	var cmd tea.Cmd
	lv.table, cmd = lv.table.Update(msg)
	return cmd
}

// Reload refetches the active page and the stat cards.
func (lv *ListView[T]) Reload() tea.Cmd {
	return tea.Batch(lv.ctrl.Reload(), lv.loadStats())
}

// Selected returns the row under the cursor.
func (lv *ListView[T]) Selected() (T, bool) {
	rows := lv.ctrl.View().Rows
	i := lv.table.Cursor()
	if i < 0 || i >= len(rows) {
		var zero T
		return zero, false
	}
	return rows[i], true
}

func (lv *ListView[T]) runAction(a hr.Action) tea.Cmd {
	row, ok := lv.Selected()
	if !ok || lv.deps.Act == nil {
		return nil
	}
	return lv.deps.Act(lv.kind, recordIndex(row).ID, a)
}

func (lv *ListView[T]) openDetail() tea.Cmd {
	row, ok := lv.Selected()
	if !ok || lv.deps.Detail == nil {
		return nil
	}
	title := lv.cols.Row(row)[0]
	return lv.deps.Detail(lv.kind, recordIndex(row).ID, title, row, lv.width)
}

func (lv *ListView[T]) loadStats() tea.Cmd {
	if lv.deps.LoadStats == nil {
		return nil
	}
	return lv.deps.LoadStats(lv.kind)
}

// refresh copies the reconciled view into the table and paginator.
func (lv *ListView[T]) refresh() {
	view := lv.ctrl.View()
	rows := make([]table.Row, len(view.Rows))
	for i, r := range view.Rows {
		rows[i] = lv.cols.Row(r)
	}
	lv.table.SetRows(rows)
	// an empty table leaves the cursor at -1
	if c := lv.table.Cursor(); c < 0 || c >= len(rows) {
		lv.table.SetCursor(max(len(rows)-1, 0))
	}
	lv.pager.TotalPages = max(view.Pagination.TotalPages, 1)
	lv.pager.Page = min(max(lv.ctrl.State().Page-1, 0), lv.pager.TotalPages-1)
}

// Searching reports whether the search box has focus.
func (lv *ListView[T]) Searching() bool { return lv.search.Focused() }

// SearchText returns the raw search box text.
func (lv *ListView[T]) SearchText() string { return lv.search.Value() }

// Location returns the screen's current location.
func (lv *ListView[T]) Location() collection.Location {
	return collection.Location{Path: "/" + string(lv.kind), Query: lv.ctrl.Query()}
}

// listChrome is the number of lines around the table: stat cards (3),
// search bar (1), filters (1), footer (2).
const listChrome = 7

// SetSize sets the screen's area.
func (lv *ListView[T]) SetSize(width, height int) {
	lv.width, lv.height = width, height
	lv.table.SetWidth(width)
	lv.table.SetHeight(max(height-listChrome, 3))
	lv.search.Width = max(width-4, 10)
}

// Close stops the controller and gives up the refetch signal.
func (lv *ListView[T]) Close() {
	lv.ctrl.Close()
	if lv.deps.Registry != nil {
		lv.deps.Registry.Release(string(lv.kind))
	}
}

// View renders the screen.
func (lv *ListView[T]) View() string {
	parts := []string{lv.statCards(), SearchBar.Render(lv.search.View()), lv.filterChips()}

	switch {
	case lv.ctrl.Status() == collection.StatusError:
		parts = append(parts, ErrorStyle.Render(lv.ctrl.ErrorMessage()))
	case lv.ctrl.Skeleton():
		parts = append(parts, lv.skeleton())
	case len(lv.ctrl.View().Rows) == 0:
		parts = append(parts, HelpStyle.Render("No "+strings.ToLower(lv.meta.Title)+" found"))
	default:
		parts = append(parts, lv.table.View())
	}

	parts = append(parts, lv.footer())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (lv *ListView[T]) statCards() string {
	if lv.stats == nil {
		if lv.statsErr != nil {
			return StatusBarText.Render("stats unavailable")
		}
		return ""
	}
	cards := []string{StatCard.Render(StatCardValue.Render(fmt.Sprint(lv.stats.Total)) + " " + StatCardLabel.Render("total"))}
	for _, st := range lv.stats.Statuses() {
		cards = append(cards, StatCard.Render(StatCardValue.Render(fmt.Sprint(lv.stats.ByStatus[st]))+" "+StatCardLabel.Render(st)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func (lv *ListView[T]) filterChips() string {
	state := lv.ctrl.State()
	chips := make([]string, 0, len(lv.meta.Statuses))
	for i, st := range lv.meta.Statuses {
		label := fmt.Sprintf("%d %s", i+1, st)
		if state.HasFilter(st) {
			chips = append(chips, FilterChipOn.Render(label))
		} else {
			chips = append(chips, FilterChipOff.Render(label))
		}
	}
	scope := lv.ctrl.Scope()
	for _, k := range lv.meta.ScopeKeys() {
		if v := scope[k]; v != "" {
			chips = append(chips, FilterChipOn.Render(k+"="+v))
		}
	}
	return strings.Join(chips, " ")
}

func (lv *ListView[T]) skeleton() string {
	lines := []string{lv.spinner.View() + " Loading " + strings.ToLower(lv.meta.Title) + "..."}
	n := min(lv.ctrl.State().Limit, 10)
	for i := 0; i < n; i++ {
		lines = append(lines, SkeletonStyle.Render(strings.Repeat("░", max(min(lv.width, 60), 20))))
	}
	return strings.Join(lines, "\n")
}

func (lv *ListView[T]) footer() string {
	view := lv.ctrl.View()
	p := view.Pagination
	info := fmt.Sprintf(" page %d of %d · %d total · %d per page", max(p.Page, 1), max(p.TotalPages, 1), p.TotalCount, lv.ctrl.State().Limit)
	if view.Branch == collection.BranchSearch {
		info += " · search"
	}
	if lv.ctrl.Status() == collection.StatusLoading || lv.ctrl.Status() == collection.StatusDebouncing {
		info += " " + lv.spinner.View()
	}

	var hints []string
	for _, a := range lv.meta.Actions {
		hints = append(hints, StatusBarKey.Render(a.Key)+StatusBarText.Render(":"+strings.ToLower(a.Label)))
	}
	for _, b := range []key.Binding{lv.keys.Search, lv.keys.PrevPage, lv.keys.NextPage, lv.keys.Detail} {
		h := b.Help()
		hints = append(hints, StatusBarKey.Render(h.Key)+StatusBarText.Render(":"+h.Desc))
	}
	return lv.pager.View() + StatusBarText.Render(info) + "\n" + strings.Join(hints, "  ")
}
