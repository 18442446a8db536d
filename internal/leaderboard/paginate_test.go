package leaderboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intRange(n int) []int {
	items := make([]int, n)
	for i := range items {
		items[i] = i
	}
	return items
}

func TestPaginate(t *testing.T) {
	items := intRange(23)

	page := Paginate(items, 1, 10)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.Limit)
	assert.Equal(t, 23, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Results, 10)
	assert.Equal(t, 0, page.Results[0])

	last := Paginate(items, 3, 10)
	require.Len(t, last.Results, 3)
	assert.Equal(t, 20, last.Results[0])
}

// Every element appears on exactly one page.
func TestPaginatePartitions(t *testing.T) {
	for _, tc := range []struct{ length, limit int }{
		{23, 10}, {10, 10}, {1, 10}, {100, 7}, {0, 10},
	} {
		items := intRange(tc.length)
		first := Paginate(items, 1, tc.limit)

		seen := 0
		for p := 1; p <= first.TotalPages; p++ {
			seen += len(Paginate(items, p, tc.limit).Results)
		}
		assert.Equal(t, tc.length, seen, "length %d limit %d", tc.length, tc.limit)
	}
}

func TestPaginatePastTheEnd(t *testing.T) {
	items := intRange(23)
	page := Paginate(items, 4, 10)

	assert.Empty(t, page.Results)
	assert.Equal(t, 23, page.Total)
	assert.Equal(t, 3, page.TotalPages)
}

func TestPaginateClampsInvalidInput(t *testing.T) {
	items := intRange(23)

	page := Paginate(items, 0, 10)
	assert.Equal(t, 1, page.Page)

	page = Paginate(items, -5, 0)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.Limit)
	assert.Len(t, page.Results, 10)
}
