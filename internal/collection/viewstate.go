package collection

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Query parameters owned by a collection view. Every other key in a location
// belongs to someone else and survives Encode untouched.
const (
	ParamPage   = "page"
	ParamLimit  = "limit"
	ParamSearch = "search"
	ParamFilter = "filter"
)

const (
	DefaultPage  = 1
	DefaultLimit = 5
)

// ViewState is the per-view intent reconstructed from a location on every
// navigation. SearchRaw is what the search box holds; SearchCommitted is the
// term the debouncer last let through.
type ViewState struct {
	Page            int
	Limit           int
	SearchRaw       string
	SearchCommitted string
	Filters         []string // sorted, no duplicates
}

// ParseViewState reads page, limit, search and filter from q. Missing or
// invalid page falls back to 1; missing or non-positive limit falls back to
// defaultLimit (DefaultLimit when defaultLimit <= 0).
func ParseViewState(q url.Values, defaultLimit int) ViewState {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	s := ViewState{Page: DefaultPage, Limit: defaultLimit}

	if n, err := strconv.Atoi(q.Get(ParamPage)); err == nil && n >= 1 {
		s.Page = n
	}
	if n, err := strconv.Atoi(q.Get(ParamLimit)); err == nil && n > 0 {
		s.Limit = n
	}

	term := strings.TrimSpace(q.Get(ParamSearch))
	s.SearchRaw = term
	s.SearchCommitted = term
	s.Filters = normalizeFilters(q[ParamFilter])
	return s
}

// Encode writes the state into a copy of base. Keys the view does not own
// are preserved.
func (s ViewState) Encode(base url.Values) url.Values {
	out := make(url.Values, len(base)+4)
	for k, v := range base {
		out[k] = append([]string(nil), v...)
	}

	page, limit := s.Page, s.Limit
	if page < 1 {
		page = DefaultPage
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	out.Set(ParamPage, strconv.Itoa(page))
	out.Set(ParamLimit, strconv.Itoa(limit))

	if s.SearchCommitted != "" {
		out.Set(ParamSearch, s.SearchCommitted)
	} else {
		out.Del(ParamSearch)
	}

	out.Del(ParamFilter)
	for _, f := range normalizeFilters(s.Filters) {
		out.Add(ParamFilter, f)
	}
	return out
}

// FilterActive reports whether any filter value is selected.
func (s ViewState) FilterActive() bool { return len(s.Filters) > 0 }

// HasFilter reports whether v is selected.
func (s ViewState) HasFilter(v string) bool {
	i := sort.SearchStrings(s.Filters, v)
	return i < len(s.Filters) && s.Filters[i] == v
}

// WithFilterToggled returns a copy with v added or removed.
func (s ViewState) WithFilterToggled(v string) ViewState {
	next := make([]string, 0, len(s.Filters)+1)
	found := false
	for _, f := range s.Filters {
		if f == v {
			found = true
			continue
		}
		next = append(next, f)
	}
	if !found {
		next = append(next, v)
	}
	s.Filters = normalizeFilters(next)
	return s
}

func (s ViewState) sameQuery(o ViewState) bool {
	if s.Page != o.Page || s.Limit != o.Limit || s.SearchCommitted != o.SearchCommitted {
		return false
	}
	if len(s.Filters) != len(o.Filters) {
		return false
	}
	for i := range s.Filters {
		if s.Filters[i] != o.Filters[i] {
			return false
		}
	}
	return true
}

func normalizeFilters(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, f := range in {
		f = strings.TrimSpace(f)
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Strings(out)
	return out
}

// Location is a screen path plus its query, e.g. "/leave?page=2&limit=5".
// The terminal client keeps these in its history the way a browser keeps URLs.
type Location struct {
	Path  string
	Query url.Values
}

// ParseLocation parses "/path?query". A bare kind ("leave") is accepted and
// becomes "/leave".
func ParseLocation(raw string) (Location, error) {
	raw = strings.TrimSpace(raw)
	if raw != "" && !strings.HasPrefix(raw, "/") {
		raw = "/" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, err
	}
	return Location{Path: u.Path, Query: u.Query()}, nil
}

// Kind returns the first path segment ("/leave" -> "leave").
func (l Location) Kind() string {
	p := strings.TrimPrefix(l.Path, "/")
	if i := strings.IndexByte(p, '/'); i >= 0 {
		p = p[:i]
	}
	return p
}

func (l Location) String() string {
	if len(l.Query) == 0 {
		return l.Path
	}
	return l.Path + "?" + l.Query.Encode()
}
