package collection

import (
	"context"
	"time"
)

// Pagination is the metadata every listing and search endpoint returns.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalCount int `json:"totalCount"`
	TotalPages int `json:"totalPages"`
}

// NewPagination computes TotalPages for a result of total rows.
func NewPagination(page, limit, total int) Pagination {
	if page < 1 {
		page = DefaultPage
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	pages := 0
	if total > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, TotalCount: total, TotalPages: pages}
}

// Offset returns the number of rows before the current page.
func (p Pagination) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// HasNext reports whether a page follows this one.
func (p Pagination) HasNext() bool { return p.Page < p.TotalPages }

// HasPrev reports whether a page precedes this one.
func (p Pagination) HasPrev() bool { return p.Page > 1 }

// Page is the wire shape {data, pagination} shared by listing and search.
type Page[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Scope carries view-specific scoping parameters (employee id, date range)
// that apply to both reads.
type Scope map[string]string

// Clone returns an independent copy.
func (s Scope) Clone() Scope {
	if s == nil {
		return nil
	}
	out := make(Scope, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// ListParams parameterize the listing read.
type ListParams struct {
	Page    int
	Limit   int
	Filters []string
	Scope   Scope
}

// SearchParams parameterize the search read.
type SearchParams struct {
	Query   string
	Page    int
	Limit   int
	Filters []string
	Scope   Scope
}

// Source is a remote collection with a listing endpoint and a search endpoint.
type Source[T any] interface {
	List(ctx context.Context, p ListParams) (Page[T], error)
	Search(ctx context.Context, p SearchParams) (Page[T], error)
}

// LoadedMsg carries the outcome of one read back into the event loop.
type LoadedMsg[T any] struct {
	Kind   string
	Branch Branch
	Epoch  uint64
	Page   Page[T]
	Err    error
	Dur    time.Duration
}
