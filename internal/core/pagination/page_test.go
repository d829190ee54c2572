package pagination

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	items := []string{"a", "b", "c"}

	tests := []struct {
		name     string
		page     int
		pageSize int
		items    []string
		want     Page[string]
	}{
		{
			name:     "first_page",
			page:     0,
			pageSize: 2,
			items:    items,
			want:     Page[string]{Page: 0, PageSize: 2, LastPage: false, Items: []string{"a", "b"}},
		},
		{
			name:     "partial_last_page",
			page:     1,
			pageSize: 2,
			items:    items,
			want:     Page[string]{Page: 1, PageSize: 1, LastPage: true, Items: []string{"c"}},
		},
		{
			name:     "exact_fit_is_last",
			page:     0,
			pageSize: 3,
			items:    items,
			want:     Page[string]{Page: 0, PageSize: 3, LastPage: true, Items: []string{"a", "b", "c"}},
		},
		{
			name:     "past_the_end",
			page:     5,
			pageSize: 2,
			items:    items,
			want:     Page[string]{Page: 5, PageSize: 0, LastPage: true, Items: []string{}},
		},
		{
			name:     "offset_overflows_int",
			page:     math.MaxInt / 20,
			pageSize: 20,
			items:    items,
			want:     Page[string]{Page: math.MaxInt / 20, PageSize: 0, LastPage: true, Items: []string{}},
		},
		{
			name:     "empty_input",
			page:     0,
			pageSize: 20,
			items:    nil,
			want:     Page[string]{Page: 0, PageSize: 0, LastPage: true, Items: []string{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Paginate(tt.page, tt.pageSize, tt.items))
		})
	}
}

func TestPaginate_DoesNotAliasInput(t *testing.T) {
	items := []int{1, 2, 3}
	p := Paginate(0, 2, items)
	p.Items[0] = 42
	assert.Equal(t, 1, items[0])
}

func TestPaginate_HugePageNeverWrapsAround(t *testing.T) {
	items := make([]int, 30)
	for i := range items {
		items[i] = i
	}

	p := Paginate(922337203685477581, 20, items)
	assert.True(t, p.LastPage)
	assert.Empty(t, p.Items)
}
