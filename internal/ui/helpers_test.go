package ui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/peopledesk/internal/collection"
	"github.com/abelbrown/peopledesk/internal/hr"
)

type fakeSource[T any] struct {
	mu       sync.Mutex
	rows     []T
	status   func(T) string
	text     func(T) string
	err      error
	lists    int
	searches int
	scopes   []collection.Scope
}

func (f *fakeSource[T]) List(ctx context.Context, p collection.ListParams) (collection.Page[T], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	f.scopes = append(f.scopes, p.Scope)
	if f.err != nil {
		return collection.Page[T]{}, f.err
	}
	return f.page(f.match("", p.Filters), p.Page, p.Limit), nil
}

func (f *fakeSource[T]) Search(ctx context.Context, p collection.SearchParams) (collection.Page[T], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches++
	f.scopes = append(f.scopes, p.Scope)
	if f.err != nil {
		return collection.Page[T]{}, f.err
	}
	return f.page(f.match(p.Query, p.Filters), p.Page, p.Limit), nil
}

func (f *fakeSource[T]) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeSource[T]) counts() (lists, searches int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists, f.searches
}

func (f *fakeSource[T]) lastScope() collection.Scope {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.scopes) == 0 {
		return nil
	}
	return f.scopes[len(f.scopes)-1]
}

func (f *fakeSource[T]) match(query string, filters []string) []T {
	q := strings.ToLower(query)
	var out []T
	for _, r := range f.rows {
		if q != "" && !strings.Contains(strings.ToLower(f.text(r)), q) {
			continue
		}
		if len(filters) > 0 {
			ok := false
			for _, st := range filters {
				if f.status(r) == st {
					ok = true
				}
			}
			if !ok {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

func (f *fakeSource[T]) page(rows []T, page, limit int) collection.Page[T] {
	p := collection.NewPagination(page, limit, len(rows))
	start := min(p.Offset(), len(rows))
	end := min(start+p.Limit, len(rows))
	return collection.Page[T]{Data: append([]T{}, rows[start:end]...), Pagination: p}
}

func leaveSource() *fakeSource[hr.Leave] {
	names := []string{
		"Ahmed Ali", "Sara Noor", "Omar Haddad", "Ahmed Khan", "Lina Saleh", "Yusuf Amin",
		"Huda Karim", "Rami Aziz", "Dana Faris", "Ali Hasan", "Mona Zaki", "Tariq Nasser",
	}
	rows := make([]hr.Leave, len(names))
	for i, n := range names {
		st := "pending"
		if i%3 == 0 {
			st = "approved"
		}
		rows[i] = hr.Leave{ID: fmt.Sprintf("leave-%d", i+1), EmployeeName: n, Type: "annual", StartDate: "2026-03-01", EndDate: "2026-03-02", Status: st}
	}
	return &fakeSource[hr.Leave]{
		rows:   rows,
		status: func(l hr.Leave) string { return l.Status },
		text:   func(l hr.Leave) string { return l.EmployeeName },
	}
}

func planSource() *fakeSource[hr.Plan] {
	return &fakeSource[hr.Plan]{
		rows: []hr.Plan{
			{ID: "plan-1", Name: "Starter", PriceMonthly: 49, Seats: 10, Status: "available"},
			{ID: "plan-2", Name: "Team", PriceMonthly: 149, Seats: 50, Status: "selected"},
		},
		status: func(p hr.Plan) string { return p.Status },
		text:   func(p hr.Plan) string { return p.Name },
	}
}

type actCall struct {
	kind   hr.Kind
	id     string
	action string
}

type created struct {
	kind hr.Kind
	form any
}

// loop is a minimal event loop around App: commands run on goroutines and
// their messages are fed back through Update on the test goroutine.
type loop struct {
	t    *testing.T
	app  App
	msgs chan tea.Msg

	mu      sync.Mutex
	acts    []actCall
	creates []created
	actErr  error
	leave   *fakeSource[hr.Leave]
	plans   *fakeSource[hr.Plan]
	reg     *collection.Registry
}

func newLoop(t *testing.T, start string) *loop {
	t.Helper()
	l := &loop{
		t:     t,
		msgs:  make(chan tea.Msg, 1024),
		leave: leaveSource(),
		plans: planSource(),
		reg:   collection.NewRegistry(nil),
	}
	deps := ListDeps{
		Registry: l.reg,
		PageSize: 5,
		Debounce: 20 * time.Millisecond,
		Timeout:  time.Second,
		Act:      l.act,
	}
	loc, err := collection.ParseLocation(start)
	if err != nil {
		t.Fatalf("ParseLocation(%q): %v", start, err)
	}
	app := NewAppWithConfig(AppConfig{
		Kinds: []hr.Kind{hr.KindLeave, hr.KindPlans},
		NewScreen: func(kind hr.Kind) (Screen, error) {
			switch kind {
			case hr.KindLeave:
				return NewListView(kind, l.leave, LeaveColumns, deps)
			case hr.KindPlans:
				return NewListView(kind, l.plans, PlanColumns, deps)
			}
			return nil, fmt.Errorf("no screen for %s", kind)
		},
		Create:   l.create,
		Start:    loc,
		Registry: l.reg,
		ToastTTL: time.Minute,
	})
	t.Cleanup(app.Close)

	model, _ := app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	l.app = model.(App)
	l.run(l.app.Init())
	return l
}

func (l *loop) act(kind hr.Kind, id string, a hr.Action) tea.Cmd {
	l.mu.Lock()
	l.acts = append(l.acts, actCall{kind: kind, id: id, action: a.Name})
	err := l.actErr
	l.mu.Unlock()
	return func() tea.Msg {
		if err != nil {
			return ActionDone{Kind: kind, Action: a.Name, Err: err}
		}
		return ActionDone{Kind: kind, Action: a.Name, Message: a.Success}
	}
}

func (l *loop) create(kind hr.Kind, form any) tea.Cmd {
	l.mu.Lock()
	l.creates = append(l.creates, created{kind: kind, form: form})
	l.mu.Unlock()
	return func() tea.Msg { return Created{Kind: kind, Message: "Leave request submitted"} }
}

func (l *loop) run(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	go func() {
		if msg := cmd(); msg != nil {
			l.msgs <- msg
		}
	}()
}

func (l *loop) dispatch(msg tea.Msg) {
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, cmd := range batch {
			l.run(cmd)
		}
		return
	}
	model, cmd := l.app.Update(msg)
	l.app = model.(App)
	l.run(cmd)
}

func (l *loop) key(s string) {
	l.t.Helper()
	var msg tea.KeyMsg
	switch s {
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		msg = tea.KeyMsg{Type: tea.KeyLeft}
	case "backspace":
		msg = tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+o":
		msg = tea.KeyMsg{Type: tea.KeyCtrlO}
	case "ctrl+r":
		msg = tea.KeyMsg{Type: tea.KeyCtrlR}
	case "ctrl+s":
		msg = tea.KeyMsg{Type: tea.KeyCtrlS}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
	l.dispatch(msg)
}

func (l *loop) typeText(s string) {
	for _, r := range s {
		l.dispatch(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// until processes messages until cond holds or timeout passes.
func (l *loop) until(timeout time.Duration, cond func() bool) bool {
	deadline := time.After(timeout)
	for !cond() {
		select {
		case msg := <-l.msgs:
			l.dispatch(msg)
		case <-deadline:
			return false
		}
	}
	return true
}

func (l *loop) leaveView() *ListView[hr.Leave] {
	return l.app.screens[hr.KindLeave].(*ListView[hr.Leave])
}

func (l *loop) loaded() bool {
	return len(l.leaveView().Controller().View().Rows) > 0
}

func (l *loop) hasToast(sub string) bool {
	for _, t := range l.app.toasts.Items() {
		if strings.Contains(t.String(), sub) {
			return true
		}
	}
	return false
}

func (l *loop) actCalls() []actCall {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]actCall(nil), l.acts...)
}

func (l *loop) createCalls() []created {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]created(nil), l.creates...)
}
