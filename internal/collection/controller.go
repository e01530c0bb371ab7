// Package collection implements the remote collection view controller: a
// paginated listing read and a search read over the same remote collection,
// a debounced search box, page state kept in the screen location, and a
// refetch signal other components use to request a silent reload.
//
// The controller is driven by a Bubble Tea event loop. It never blocks:
// reads, timers and signal waits run as tea.Cmds and report back as messages.
package collection

import (
	"context"
	"errors"
	"maps"
	"net/url"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/peopledesk/internal/otel"
)

// DefaultTimeout bounds each read.
const DefaultTimeout = 10 * time.Second

// FallbackMessage is shown when a failed read carries no server message.
const FallbackMessage = "Something went wrong"

// Status is the view's position in the list state machine.
type Status int

const (
	StatusIdleListing Status = iota
	StatusDebouncing
	StatusIdleSearch
	StatusLoading
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdleListing:
		return "idle-listing"
	case StatusDebouncing:
		return "debouncing"
	case StatusIdleSearch:
		return "idle-search"
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// NavigateMsg asks the owner to move the view to a new query. The owner
// records it in its history and feeds it back through Controller.Sync.
type NavigateMsg struct {
	Kind  string
	Query url.Values
}

// Config wires a controller to its remote collection.
type Config[T any] struct {
	Kind   string
	Source Source[T]
	// Scope is the base scope of every read. Location keys named in
	// ScopeKeys override it, so "/attendance?employeeId=e-1" scopes the view.
	Scope     Scope
	ScopeKeys []string

	PageSize int           // default limit when the location carries none
	Debounce time.Duration // quiet period for the search box
	Timeout  time.Duration // per read

	// FiltersViaSearch routes filter-only queries through the search endpoint.
	FiltersViaSearch bool

	// Signal is the observed refetch signal for Kind, or nil.
	Signal *Signal
	// Secondary returns the extra reloads (stat cards) run alongside each
	// signalled refetch.
	Secondary func() tea.Cmd

	Events *otel.Logger
}

// Controller mediates between search/filter/page intent and the two reads.
type Controller[T any] struct {
	cfg      Config[T]
	state    ViewState
	base     url.Values
	scope    Scope
	results  [2]Result[T]
	epochs   [2]uint64
	inflight [2]bool
	debounce *Debouncer

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	closed bool
}

// New returns a controller. Call Init to start it.
func New[T any](cfg Config[T]) *Controller[T] {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultLimit
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller[T]{
		cfg:      cfg,
		state:    ViewState{Page: DefaultPage, Limit: cfg.PageSize},
		scope:    cfg.Scope.Clone(),
		debounce: NewDebouncer(cfg.Kind, cfg.Debounce),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Kind returns the list kind this controller serves.
func (c *Controller[T]) Kind() string { return c.cfg.Kind }

// Init adopts the state encoded in q, fires the active read and starts
// listening on the refetch signal.
func (c *Controller[T]) Init(q url.Values) tea.Cmd {
	if c.closed {
		return nil
	}
	c.state = ParseViewState(q, c.cfg.PageSize)
	c.base = cloneValues(q)
	c.scope = c.scopeFrom(q)
	return tea.Batch(c.fireActive(), c.listen())
}

// Sync adopts a location the owner navigated to. A change of page, limit,
// filters, scope or committed term re-fires the active read; clearing the
// term re-fires the listing.
func (c *Controller[T]) Sync(q url.Values) tea.Cmd {
	if c.closed {
		return nil
	}
	next := ParseViewState(q, c.cfg.PageSize)
	prev := c.state
	c.base = cloneValues(q)

	next.SearchRaw = prev.SearchRaw
	if next.SearchCommitted != prev.SearchCommitted && !c.debounce.Pending() {
		next.SearchRaw = next.SearchCommitted
	}
	c.state = next

	scope := c.scopeFrom(q)
	scopeChanged := !maps.Equal(scope, c.scope)
	c.scope = scope

	if next.sameQuery(prev) && !scopeChanged {
		return nil
	}
	return c.fireActive()
}

// Update handles the controller's own messages and ignores everything else.
func (c *Controller[T]) Update(msg tea.Msg) tea.Cmd {
	if c.closed {
		return nil
	}
	switch msg := msg.(type) {
	case DebounceMsg:
		if msg.Tag != c.cfg.Kind {
			return nil
		}
		term, ok := c.debounce.Accept(msg)
		if !ok {
			return nil
		}
		return c.commit(term)

	case LoadedMsg[T]:
		if msg.Kind != c.cfg.Kind {
			return nil
		}
		c.apply(msg)
		return nil

	case RefetchMsg:
		if msg.Kind != c.cfg.Kind || c.cfg.Signal == nil {
			return nil
		}
		var cmds []tea.Cmd
		if c.cfg.Signal.Take() {
			c.cfg.Events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindRefetchRun, Comp: "collection", View: c.cfg.Kind, Page: c.state.Page})
			cmds = append(cmds, c.fireActive())
			if c.cfg.Secondary != nil {
				cmds = append(cmds, c.cfg.Secondary())
			}
		}
		cmds = append(cmds, c.listen())
		return tea.Batch(cmds...)
	}
	return nil
}

// SetSearchInput records raw search box text and restarts the quiet period.
func (c *Controller[T]) SetSearchInput(raw string) tea.Cmd {
	if c.closed || raw == c.state.SearchRaw {
		return nil
	}
	c.state.SearchRaw = raw
	return c.debounce.Schedule(raw)
}

// ClearSearch empties the search box and commits immediately.
func (c *Controller[T]) ClearSearch() tea.Cmd {
	if c.closed {
		return nil
	}
	c.debounce.Cancel()
	c.state.SearchRaw = ""
	return c.commit("")
}

// NextPage navigates one page forward when the active result has one.
func (c *Controller[T]) NextPage() tea.Cmd {
	p := c.View().Pagination
	if !p.HasNext() {
		return nil
	}
	return c.GotoPage(c.state.Page + 1)
}

// PrevPage navigates one page back.
func (c *Controller[T]) PrevPage() tea.Cmd {
	if c.state.Page <= 1 {
		return nil
	}
	return c.GotoPage(c.state.Page - 1)
}

// GotoPage navigates to page n.
func (c *Controller[T]) GotoPage(n int) tea.Cmd {
	if n < 1 || n == c.state.Page {
		return nil
	}
	next := c.state
	next.Page = n
	return c.navigate(next)
}

// SetLimit navigates to the first page with a new page size.
func (c *Controller[T]) SetLimit(n int) tea.Cmd {
	if n <= 0 || n == c.state.Limit {
		return nil
	}
	next := c.state
	next.Limit = n
	next.Page = DefaultPage
	return c.navigate(next)
}

// ToggleFilter adds or removes a filter value and returns to page 1.
func (c *Controller[T]) ToggleFilter(v string) tea.Cmd {
	next := c.state.WithFilterToggled(v)
	next.Page = DefaultPage
	return c.navigate(next)
}

// ClearFilters removes every filter value and returns to page 1.
func (c *Controller[T]) ClearFilters() tea.Cmd {
	if !c.state.FilterActive() {
		return nil
	}
	next := c.state
	next.Filters = nil
	next.Page = DefaultPage
	return c.navigate(next)
}

// SetScope replaces the view scope and re-fires the active read.
func (c *Controller[T]) SetScope(s Scope) tea.Cmd {
	if c.closed {
		return nil
	}
	c.cfg.Scope = s.Clone()
	c.scope = c.scopeFrom(c.base)
	return c.fireActive()
}

// Scope returns the scope sent with reads.
func (c *Controller[T]) Scope() Scope { return c.scope.Clone() }

func (c *Controller[T]) scopeFrom(q url.Values) Scope {
	s := c.cfg.Scope.Clone()
	for _, k := range c.cfg.ScopeKeys {
		v := strings.TrimSpace(q.Get(k))
		if v == "" {
			continue
		}
		if s == nil {
			s = Scope{}
		}
		s[k] = v
	}
	return s
}

// Reload re-fires the active read without touching the location.
func (c *Controller[T]) Reload() tea.Cmd {
	if c.closed {
		return nil
	}
	return c.fireActive()
}

// State returns the current view state.
func (c *Controller[T]) State() ViewState { return c.state }

// Query returns the current location query, foreign keys included.
func (c *Controller[T]) Query() url.Values { return c.state.Encode(c.base) }

// View reconciles the two branches into what the table shows.
func (c *Controller[T]) View() View[T] {
	return Reconcile[T](c.selectActive())
}

// Status derives the state machine position.
func (c *Controller[T]) Status() Status {
	switch {
	case c.Err() != nil:
		return StatusError
	case c.inflight[c.activeBranch()]:
		return StatusLoading
	case c.debounce.Pending():
		return StatusDebouncing
	case c.activeBranch() == BranchSearch:
		return StatusIdleSearch
	}
	return StatusIdleListing
}

// Skeleton reports whether the table should render a placeholder: the
// active read is in flight and there is nothing to show yet. A reload with
// rows present stays silent.
func (c *Controller[T]) Skeleton() bool {
	return c.Status() == StatusLoading && len(c.View().Rows) == 0
}

// Err returns the active branch's last read error; cleared by that branch's
// next successful read. A failure of the inactive branch is not shown.
func (c *Controller[T]) Err() error { return c.results[c.activeBranch()].Err }

// ErrorMessage returns the text for the error state.
func (c *Controller[T]) ErrorMessage() string {
	err := c.Err()
	if err == nil {
		return ""
	}
	return ErrorMessage(err)
}

// Epoch returns the latest issued epoch of branch b.
func (c *Controller[T]) Epoch(b Branch) uint64 { return c.epochs[b] }

// Close stops the debouncer, aborts in-flight reads and stops listening.
// Responses that arrive afterwards are dropped. Idempotent.
func (c *Controller[T]) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.debounce.Close()
	c.cancel()
	close(c.done)
}

// Closed reports whether Close was called.
func (c *Controller[T]) Closed() bool { return c.closed }

func (c *Controller[T]) commit(term string) tea.Cmd {
	term = strings.TrimSpace(term)
	if term == c.state.SearchCommitted {
		return nil
	}
	c.cfg.Events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindSearchCommit, Comp: "collection", View: c.cfg.Kind, Query: term})
	next := c.state
	next.SearchCommitted = term
	next.Page = DefaultPage
	return c.navigate(next)
}

func (c *Controller[T]) navigate(next ViewState) tea.Cmd {
	if c.closed {
		return nil
	}
	msg := NavigateMsg{Kind: c.cfg.Kind, Query: next.Encode(c.base)}
	return func() tea.Msg { return msg }
}

func (c *Controller[T]) activeBranch() Branch {
	if c.state.SearchCommitted != "" || (c.cfg.FiltersViaSearch && c.state.FilterActive()) {
		return BranchSearch
	}
	return BranchListing
}

func (c *Controller[T]) selectActive() Active[T] {
	return Select(c.state.SearchCommitted, c.state.FilterActive(), c.cfg.FiltersViaSearch,
		c.results[BranchListing], c.results[BranchSearch])
}

func (c *Controller[T]) fireActive() tea.Cmd {
	if c.activeBranch() == BranchSearch {
		return c.fireSearch()
	}
	return c.fireListing()
}

func (c *Controller[T]) fireListing() tea.Cmd {
	c.epochs[BranchListing]++
	c.inflight[BranchListing] = true
	epoch := c.epochs[BranchListing]
	params := ListParams{
		Page:    c.state.Page,
		Limit:   c.state.Limit,
		Filters: append([]string(nil), c.state.Filters...),
		Scope:   c.scope.Clone(),
	}
	c.cfg.Events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindListStart, Comp: "collection", View: c.cfg.Kind, Epoch: epoch, Page: params.Page})

	src, kind, ctx, timeout := c.cfg.Source, c.cfg.Kind, c.ctx, c.cfg.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		start := time.Now()
		page, err := src.List(ctx, params)
		return LoadedMsg[T]{Kind: kind, Branch: BranchListing, Epoch: epoch, Page: page, Err: err, Dur: time.Since(start)}
	}
}

func (c *Controller[T]) fireSearch() tea.Cmd {
	c.epochs[BranchSearch]++
	c.inflight[BranchSearch] = true
	epoch := c.epochs[BranchSearch]
	params := SearchParams{
		Query:   c.state.SearchCommitted,
		Page:    c.state.Page,
		Limit:   c.state.Limit,
		Filters: append([]string(nil), c.state.Filters...),
		Scope:   c.scope.Clone(),
	}
	c.cfg.Events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindSearchStart, Comp: "collection", View: c.cfg.Kind, Epoch: epoch, Page: params.Page, Query: params.Query})

	src, kind, ctx, timeout := c.cfg.Source, c.cfg.Kind, c.ctx, c.cfg.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		start := time.Now()
		page, err := src.Search(ctx, params)
		return LoadedMsg[T]{Kind: kind, Branch: BranchSearch, Epoch: epoch, Page: page, Err: err, Dur: time.Since(start)}
	}
}

func (c *Controller[T]) apply(msg LoadedMsg[T]) {
	b := msg.Branch
	if b != BranchListing && b != BranchSearch {
		return
	}
	if msg.Epoch != c.epochs[b] {
		c.cfg.Events.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindStale, Comp: "collection", View: c.cfg.Kind, Epoch: msg.Epoch, Msg: b.String()})
		return
	}
	c.inflight[b] = false

	complete, failed := otel.KindListComplete, otel.KindListError
	if b == BranchSearch {
		complete, failed = otel.KindSearchComplete, otel.KindSearchError
	}
	if msg.Err != nil {
		c.results[b].Err = msg.Err
		c.cfg.Events.Read(failed, c.cfg.Kind, msg.Epoch, c.state.Page, 0, msg.Dur, msg.Err)
		return
	}
	c.results[b] = Result[T]{Page: msg.Page, Loaded: true}
	c.cfg.Events.Read(complete, c.cfg.Kind, msg.Epoch, msg.Page.Pagination.Page, len(msg.Page.Data), msg.Dur, nil)
}

func (c *Controller[T]) listen() tea.Cmd {
	if c.cfg.Signal == nil {
		return nil
	}
	return c.cfg.Signal.Listen(c.cfg.Kind, c.done)
}

// ErrorMessage returns the server-supplied message carried by err, or
// FallbackMessage when there is none.
func ErrorMessage(err error) string {
	var m interface{ RemoteMessage() string }
	if errors.As(err, &m) {
		if s := strings.TrimSpace(m.RemoteMessage()); s != "" {
			return s
		}
	}
	return FallbackMessage
}

func cloneValues(q url.Values) url.Values {
	out := make(url.Values, len(q))
	for k, v := range q {
		out[k] = append([]string(nil), v...)
	}
	return out
}
