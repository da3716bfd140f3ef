// Package query filters and paginates ordered record collections.
//
// An Engine owns its records, the active criteria and the current page. It is
// not safe for concurrent use; it is meant to be owned by a single UI loop.
package query

// PageSize is the number of records shown per page
const PageSize = 20

// Matcher reports whether record satisfies criteria
type Matcher[R any, C any] func(record R, criteria C) bool

// Option configures an Engine
type Option func(*options)

type options struct {
	pageSize int
	onPage   func(page int)
}

// WithPageSize overrides PageSize. Values below one are ignored.
func WithPageSize(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.pageSize = size
		}
	}
}

// WithPageHook registers fn to run after every successful page change, e.g. to scroll the view to the top
func WithPageHook(fn func(page int)) Option {
	return func(o *options) {
		o.onPage = fn
	}
}

// Engine filters records by criteria and slices the result into pages
type Engine[R any, C any] struct {
	match    Matcher[R, C]
	pageSize int
	onPage   func(page int)

	records  []R
	criteria C
	filtered []R
	page     int
}

// New creates an empty Engine using match to filter records
func New[R any, C any](match Matcher[R, C], opts ...Option) *Engine[R, C] {
	o := options{pageSize: PageSize}
	for _, opt := range opts {
		opt(&o)
	}
	return &Engine[R, C]{
		match:    match,
		pageSize: o.pageSize,
		onPage:   o.onPage,
		filtered: []R{},
		page:     1,
	}
}

// SetRecords replaces the collection. The criteria are kept and the current page
// is clamped into the new page range.
func (e *Engine[R, C]) SetRecords(records []R) {
	e.records = append([]R(nil), records...)
	e.refilter()
	e.clampPage()
}

// Records returns the whole collection in its original order
func (e *Engine[R, C]) Records() []R {
	return append([]R(nil), e.records...)
}

// RemoveFunc drops every record for which drop returns true and reports how many were removed
func (e *Engine[R, C]) RemoveFunc(drop func(R) bool) int {
	kept := e.records[:0:0]
	for _, r := range e.records {
		if !drop(r) {
			kept = append(kept, r)
		}
	}
	removed := len(e.records) - len(kept)
	if removed > 0 {
		e.records = kept
		e.refilter()
		e.clampPage()
	}
	return removed
}

// Criteria returns the active criteria
func (e *Engine[R, C]) Criteria() C {
	return e.criteria
}

// SetCriteria replaces the criteria and resets to the first page
func (e *Engine[R, C]) SetCriteria(criteria C) {
	e.criteria = criteria
	e.page = 1
	e.refilter()
}

// UpdateCriteria applies fn to a copy of the criteria, then behaves like SetCriteria
func (e *Engine[R, C]) UpdateCriteria(fn func(*C)) {
	next := e.criteria
	fn(&next)
	e.SetCriteria(next)
}

func (e *Engine[R, C]) refilter() {
	filtered := make([]R, 0, len(e.records))
	for _, r := range e.records {
		if e.match(r, e.criteria) {
			filtered = append(filtered, r)
		}
	}
	e.filtered = filtered
}

func (e *Engine[R, C]) clampPage() {
	if total := e.TotalPages(); e.page > total {
		e.page = total
	}
	if e.page < 1 {
		e.page = 1
	}
}

// Filtered returns every record matching the criteria
func (e *Engine[R, C]) Filtered() []R {
	return append([]R(nil), e.filtered...)
}

// Len returns the number of matching records
func (e *Engine[R, C]) Len() int {
	return len(e.filtered)
}

// TotalPages returns the number of pages, at least one
func (e *Engine[R, C]) TotalPages() int {
	if len(e.filtered) == 0 {
		return 1
	}
	return (len(e.filtered) + e.pageSize - 1) / e.pageSize
}

// CurrentPage returns the 1-based current page
func (e *Engine[R, C]) CurrentPage() int {
	return e.page
}

// PageSize returns the number of records per page
func (e *Engine[R, C]) PageSize() int {
	return e.pageSize
}

// Displayed returns the records on the current page
func (e *Engine[R, C]) Displayed() []R {
	start := (e.page - 1) * e.pageSize
	if start >= len(e.filtered) {
		return []R{}
	}
	end := start + e.pageSize
	if end > len(e.filtered) {
		end = len(e.filtered)
	}
	return append([]R(nil), e.filtered[start:end]...)
}

// ShowPagination reports whether page controls are needed
func (e *Engine[R, C]) ShowPagination() bool {
	return e.TotalPages() > 1
}

// GoTo moves to page p. Pages outside [1, TotalPages] are ignored and false is returned.
func (e *Engine[R, C]) GoTo(p int) bool {
	if p < 1 || p > e.TotalPages() {
		return false
	}
	e.page = p
	if e.onPage != nil {
		e.onPage(p)
	}
	return true
}

// Next moves one page forward if possible
func (e *Engine[R, C]) Next() bool {
	return e.GoTo(e.page + 1)
}

// Prev moves one page back if possible
func (e *Engine[R, C]) Prev() bool {
	return e.GoTo(e.page - 1)
}
