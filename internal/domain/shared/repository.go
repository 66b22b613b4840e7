package shared

import "strings"

// Filter carries the listing options every repository understands: pagination,
// ordering, a free-text search term and a bag of named equality filters whose
// keys each repository interprets against its own columns.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Filters  map[string]interface{}
}

// DefaultFilter returns a filter with default values
func DefaultFilter() Filter {
	return Filter{
		Page:     1,
		PageSize: 20,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Filters:  make(map[string]interface{}),
	}
}

// Offset returns the row offset of the current page
func (f Filter) Offset() int {
	if f.Page <= 0 || f.PageSize <= 0 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// SortClause renders the ORDER BY expression, falling back to the given
// default when the filter names no column. Direction is normalized to
// ASC/DESC so arbitrary input never reaches the SQL.
func (f Filter) SortClause(defaultOrder string) string {
	if f.OrderBy == "" {
		return defaultOrder
	}
	dir := "ASC"
	if strings.EqualFold(f.OrderDir, "desc") {
		dir = "DESC"
	}
	return f.OrderBy + " " + dir
}

// Paginated represents a paginated result
type Paginated[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginated creates a new paginated result
func NewPaginated[T any](items []T, total int64, page, pageSize int) Paginated[T] {
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return Paginated[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
