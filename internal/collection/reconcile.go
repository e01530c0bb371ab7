package collection

// Branch names one member of the query pair.
type Branch int

const (
	BranchListing Branch = iota
	BranchSearch
)

func (b Branch) String() string {
	switch b {
	case BranchListing:
		return "listing"
	case BranchSearch:
		return "search"
	}
	return "unknown"
}

// Result is the last applied response of one branch. Loaded is false until
// the branch has completed a read. Err is the branch's last read error,
// cleared by its next successful read; Page keeps the last good data.
type Result[T any] struct {
	Page   Page[T]
	Loaded bool
	Err    error
}

// Active is the branch chosen for rendering: ListingActive or SearchActive.
type Active[T any] interface {
	result() Result[T]
	branch() Branch
}

type ListingActive[T any] struct{ Listing Result[T] }

type SearchActive[T any] struct{ Search Result[T] }

func (a ListingActive[T]) result() Result[T] { return a.Listing }
func (ListingActive[T]) branch() Branch      { return BranchListing }
func (a SearchActive[T]) result() Result[T]  { return a.Search }
func (SearchActive[T]) branch() Branch       { return BranchSearch }

// Select picks the authoritative branch. A non-empty committed term selects
// search; so do active filters when the view routes filters through the
// search endpoint. Everything else renders the listing.
func Select[T any](committed string, filterActive, filtersViaSearch bool, listing, search Result[T]) Active[T] {
	if committed != "" || (filtersViaSearch && filterActive) {
		return SearchActive[T]{Search: search}
	}
	return ListingActive[T]{Listing: listing}
}

// View is what the table renders.
type View[T any] struct {
	Rows       []T
	Pagination Pagination
	Branch     Branch
}

// Reconcile extracts rows and pagination from the active branch. A branch
// that has not loaded yields no rows and zero pagination.
func Reconcile[T any](a Active[T]) View[T] {
	var v View[T]
	if a == nil {
		return v
	}
	r := a.result()
	v.Branch = a.branch()
	if !r.Loaded {
		return v
	}
	v.Rows = r.Page.Data
	v.Pagination = r.Page.Pagination
	return v
}
