package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_Offset(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		pageSize int
		want     int
	}{
		{"first page", 1, 20, 0},
		{"third page", 3, 20, 40},
		{"zero page", 0, 20, 0},
		{"zero page size", 2, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Filter{Page: tt.page, PageSize: tt.pageSize}
			assert.Equal(t, tt.want, f.Offset())
		})
	}
}

func TestFilter_SortClause(t *testing.T) {
	tests := []struct {
		name     string
		orderBy  string
		orderDir string
		want     string
	}{
		{"default when unset", "", "desc", "created_at DESC"},
		{"ascending by default", "name", "", "name ASC"},
		{"descending", "name", "desc", "name DESC"},
		{"case insensitive direction", "name", "DESC", "name DESC"},
		{"unknown direction falls back to asc", "name", "sideways", "name ASC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Filter{OrderBy: tt.orderBy, OrderDir: tt.orderDir}
			assert.Equal(t, tt.want, f.SortClause("created_at DESC"))
		})
	}
}
