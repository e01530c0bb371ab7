package collection

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type row struct {
	ID     int
	Name   string
	Status string
}

func sampleRows() []row {
	names := []string{
		"Ahmed Ali", "Sara Noor", "Omar Haddad", "Ahmed Khan", "Lina Saleh", "Yusuf Amin",
		"Huda Karim", "Rami Aziz", "Dana Faris", "Ali Hasan", "Mona Zaki", "Tariq Nasser",
	}
	rows := make([]row, len(names))
	for i, n := range names {
		st := "pending"
		if i%3 == 0 {
			st = "approved"
		}
		rows[i] = row{ID: i + 1, Name: n, Status: st}
	}
	return rows
}

type call struct {
	branch  Branch
	query   string
	page    int
	limit   int
	filters []string
	scope   Scope
	at      time.Time
}

type fakeSource struct {
	mu        sync.Mutex
	rows      []row
	calls     []call
	listErr   error
	searchErr error
}

func newFakeSource(rows []row) *fakeSource {
	return &fakeSource{rows: rows}
}

func (f *fakeSource) List(ctx context.Context, p ListParams) (Page[row], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{branch: BranchListing, page: p.Page, limit: p.Limit, filters: p.Filters, scope: p.Scope, at: time.Now()})
	if f.listErr != nil {
		return Page[row]{}, f.listErr
	}
	return paginate(filterRows(f.rows, "", p.Filters), p.Page, p.Limit), nil
}

func (f *fakeSource) Search(ctx context.Context, p SearchParams) (Page[row], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{branch: BranchSearch, query: p.Query, page: p.Page, limit: p.Limit, filters: p.Filters, scope: p.Scope, at: time.Now()})
	if f.searchErr != nil {
		return Page[row]{}, f.searchErr
	}
	return paginate(filterRows(f.rows, p.Query, p.Filters), p.Page, p.Limit), nil
}

func (f *fakeSource) setRows(rows []row) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = rows
}

func (f *fakeSource) setErrs(list, search error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listErr, f.searchErr = list, search
}

func (f *fakeSource) callsFor(b Branch) []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []call
	for _, c := range f.calls {
		if c.branch == b {
			out = append(out, c)
		}
	}
	return out
}

func filterRows(rows []row, query string, filters []string) []row {
	q := strings.ToLower(query)
	var out []row
	for _, r := range rows {
		if q != "" && !strings.Contains(strings.ToLower(r.Name), q) {
			continue
		}
		if len(filters) > 0 {
			ok := false
			for _, f := range filters {
				if r.Status == f {
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

func paginate(rows []row, page, limit int) Page[row] {
	p := NewPagination(page, limit, len(rows))
	start := p.Offset()
	if start > len(rows) {
		start = len(rows)
	}
	end := start + p.Limit
	if end > len(rows) {
		end = len(rows)
	}
	return Page[row]{Data: append([]row{}, rows[start:end]...), Pagination: p}
}

type remoteErr string

func (e remoteErr) Error() string         { return "remote: " + string(e) }
func (e remoteErr) RemoteMessage() string { return string(e) }

// harness is a minimal event loop: commands run on goroutines, their
// messages are fed back into the controller on the test goroutine, and
// NavigateMsg is applied through Sync the way the app applies it.
type harness struct {
	t    *testing.T
	c    *Controller[row]
	msgs chan tea.Msg
}

func newHarness(t *testing.T, cfg Config[row]) *harness {
	t.Helper()
	c := New(cfg)
	t.Cleanup(c.Close)
	return &harness{t: t, c: c, msgs: make(chan tea.Msg, 256)}
}

func (h *harness) run(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	go func() {
		if msg := cmd(); msg != nil {
			h.msgs <- msg
		}
	}()
}

func (h *harness) dispatch(msg tea.Msg) {
	switch m := msg.(type) {
	case tea.BatchMsg:
		for _, cmd := range m {
			h.run(cmd)
		}
	case NavigateMsg:
		h.run(h.c.Sync(m.Query))
	default:
		h.run(h.c.Update(msg))
	}
}

// settle processes messages until none arrive for quiet.
func (h *harness) settle(quiet time.Duration) {
	for {
		select {
		case msg := <-h.msgs:
			h.dispatch(msg)
		case <-time.After(quiet):
			return
		}
	}
}

// until processes messages until cond holds or timeout passes.
func (h *harness) until(timeout time.Duration, cond func() bool) bool {
	deadline := time.After(timeout)
	for !cond() {
		select {
		case msg := <-h.msgs:
			h.dispatch(msg)
		case <-deadline:
			return false
		}
	}
	return true
}

// runSync executes cmd on the calling goroutine and flattens batches. Only
// for commands that cannot block (no signal, no debounce).
func runSync(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runSync(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func names(rows []row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Name
	}
	return out
}
