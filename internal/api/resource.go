package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/abelbrown/peopledesk/internal/collection"
	"github.com/abelbrown/peopledesk/internal/hr"
)

// Resource is one kind's listing and search endpoints, decoded into T.
type Resource[T any] struct {
	c    *Client
	kind hr.Kind
}

// NewResource binds kind to c.
func NewResource[T any](c *Client, kind hr.Kind) *Resource[T] {
	return &Resource[T]{c: c, kind: kind}
}

// Kind returns the bound kind.
func (r *Resource[T]) Kind() hr.Kind { return r.kind }

// List calls GET /api/{kind}.
func (r *Resource[T]) List(ctx context.Context, p collection.ListParams) (collection.Page[T], error) {
	q := pageQuery(p.Page, p.Limit, p.Filters, p.Scope)
	var out collection.Page[T]
	err := r.c.do(ctx, http.MethodGet, "/api/"+string(r.kind), q, nil, &out)
	return out, err
}

// Search calls GET /api/{kind}/search.
func (r *Resource[T]) Search(ctx context.Context, p collection.SearchParams) (collection.Page[T], error) {
	q := pageQuery(p.Page, p.Limit, p.Filters, p.Scope)
	q.Set("query", p.Query)
	var out collection.Page[T]
	err := r.c.do(ctx, http.MethodGet, "/api/"+string(r.kind)+"/search", q, nil, &out)
	return out, err
}

// Get calls GET /api/{kind}/{id}.
func (r *Resource[T]) Get(ctx context.Context, id string) (T, error) {
	var out T
	err := r.c.do(ctx, http.MethodGet, "/api/"+string(r.kind)+"/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

func pageQuery(page, limit int, filters []string, scope collection.Scope) url.Values {
	q := url.Values{}
	for k, v := range scope {
		if v != "" {
			q.Set(k, v)
		}
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	for _, f := range filters {
		q.Add("filter", f)
	}
	return q
}

var _ collection.Source[hr.Leave] = (*Resource[hr.Leave])(nil)
