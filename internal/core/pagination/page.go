// Package pagination slices in-memory result sets into pages.
package pagination

import "math"

const (
	DefaultPageSize = 20
	MaxPageSize     = 20
)

// Page is one zero-based slice of a larger result. PageSize is the number of
// items actually returned, not the requested size.
type Page[T any] struct {
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	LastPage bool `json:"last_page"`
	Items    []T  `json:"items"`
}

// Paginate returns items[pageSize*page : pageSize*page+pageSize], clamped to
// the bounds of items. Callers validate page and pageSize. A page whose
// offset does not fit in an int is past the end.
func Paginate[T any](page, pageSize int, items []T) Page[T] {
	if pageSize > 0 && page > (math.MaxInt-pageSize)/pageSize {
		return Page[T]{Page: page, PageSize: 0, LastPage: true, Items: []T{}}
	}

	start := pageSize * page
	end := start + pageSize

	lo := min(max(start, 0), len(items))
	hi := min(max(end, lo), len(items))

	slice := make([]T, hi-lo)
	copy(slice, items[lo:hi])

	return Page[T]{
		Page:     page,
		PageSize: len(slice),
		LastPage: end >= len(items),
		Items:    slice,
	}
}
