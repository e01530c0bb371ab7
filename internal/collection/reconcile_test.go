package collection

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestReconcile(t *testing.T) {
	listing := Result[row]{Loaded: true, Page: Page[row]{
		Data:       []row{{ID: 1, Name: "Sara Noor"}},
		Pagination: Pagination{Page: 1, Limit: 5, TotalCount: 1, TotalPages: 1},
	}}
	search := Result[row]{Loaded: true, Page: Page[row]{
		Data:       []row{{ID: 2, Name: "Ahmed Ali"}},
		Pagination: Pagination{Page: 1, Limit: 5, TotalCount: 1, TotalPages: 1},
	}}

	tests := []struct {
		name             string
		committed        string
		filterActive     bool
		filtersViaSearch bool
		listing, search  Result[row]
		want             View[row]
	}{
		{
			name: "no term renders listing", listing: listing, search: search,
			want: View[row]{Rows: listing.Page.Data, Pagination: listing.Page.Pagination, Branch: BranchListing},
		},
		{
			name: "term renders search", committed: "ahmed", listing: listing, search: search,
			want: View[row]{Rows: search.Page.Data, Pagination: search.Page.Pagination, Branch: BranchSearch},
		},
		{
			name: "search in flight renders empty", committed: "ahmed", listing: listing,
			want: View[row]{Branch: BranchSearch},
		},
		{
			name: "filters stay on listing by default", filterActive: true, listing: listing, search: search,
			want: View[row]{Rows: listing.Page.Data, Pagination: listing.Page.Pagination, Branch: BranchListing},
		},
		{
			name: "filters routed through search", filterActive: true, filtersViaSearch: true, listing: listing, search: search,
			want: View[row]{Rows: search.Page.Data, Pagination: search.Page.Pagination, Branch: BranchSearch},
		},
		{
			name: "listing not loaded", search: search,
			want: View[row]{Branch: BranchListing},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reconcile[row](Select(tt.committed, tt.filterActive, tt.filtersViaSearch, tt.listing, tt.search))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Reconcile mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReconcileNil(t *testing.T) {
	if diff := cmp.Diff(View[row]{}, Reconcile[row](nil)); diff != "" {
		t.Errorf("nil active (-want +got):\n%s", diff)
	}
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		page, limit, total int
		want               Pagination
	}{
		{1, 5, 0, Pagination{Page: 1, Limit: 5}},
		{1, 5, 12, Pagination{Page: 1, Limit: 5, TotalCount: 12, TotalPages: 3}},
		{0, 0, 5, Pagination{Page: 1, Limit: 5, TotalCount: 5, TotalPages: 1}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, NewPagination(tt.page, tt.limit, tt.total)); diff != "" {
			t.Errorf("NewPagination(%d,%d,%d) (-want +got):\n%s", tt.page, tt.limit, tt.total, diff)
		}
	}
	p := NewPagination(3, 5, 12)
	if p.Offset() != 10 || p.HasNext() || !p.HasPrev() {
		t.Errorf("page 3 of 3: offset=%d next=%v prev=%v", p.Offset(), p.HasNext(), p.HasPrev())
	}
}
