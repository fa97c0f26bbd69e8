package shared

// MaxPageSize bounds every list query
const MaxPageSize = 100

// Filter carries paging, ordering, free-text search and per-repository
// criteria (keys are defined next to each repository interface).
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Filters  map[string]interface{}
}

// DefaultFilter lists newest first, 20 per page
func DefaultFilter() Filter {
	return Filter{
		Page:     1,
		PageSize: 20,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Filters:  map[string]interface{}{},
	}
}

// Limit is the page size capped at MaxPageSize. Zero means unbounded.
func (f Filter) Limit() int {
	if f.PageSize > MaxPageSize {
		return MaxPageSize
	}
	return f.PageSize
}

// Offset returns the row offset of the current page
func (f Filter) Offset() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit()
}
