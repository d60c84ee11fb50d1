/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package query

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		rawQuery string
		want     Pagination
	}{
		{"", Pagination{Page: 1, Limit: 50}},
		{"page=3&limit=20", Pagination{Page: 3, Limit: 20}},
		{"_page=2&_limit=5", Pagination{Page: 2, Limit: 5}},
		{"page=4&_page=2", Pagination{Page: 4, Limit: 50}},
		{"limit=200", Pagination{Page: 1, Limit: 100}},
		{"limit=100", Pagination{Page: 1, Limit: 100}},
		{"limit=0", Pagination{Page: 1, Limit: 50}},
		{"limit=-5", Pagination{Page: 1, Limit: 50}},
		{"page=0&limit=abc", Pagination{Page: 1, Limit: 50}},
		{"page=12abc&limit=2.9", Pagination{Page: 12, Limit: 2}},
		{"page=%20%207", Pagination{Page: 7, Limit: 50}},
		{"page=+2", Pagination{Page: 2, Limit: 50}},
		{"page=99999999999999999999999", Pagination{Page: int(^uint(0) >> 1), Limit: 50}},
	}
	for _, tt := range tests {
		t.Run(tt.rawQuery, func(t *testing.T) {
			require.Equal(t, tt.want, ParsePagination(ParseParams(tt.rawQuery)))
		})
	}
}

func TestParsePaginationWithCap(t *testing.T) {
	require.Equal(t, Pagination{Page: 1, Limit: 10}, ParsePaginationWithCap(ParseParams("limit=50"), 10))
	require.Equal(t, Pagination{Page: 1, Limit: 5}, ParsePaginationWithCap(ParseParams("limit=5"), 10))
	require.Equal(t, Pagination{Page: 1, Limit: 10}, ParsePaginationWithCap(ParseParams(""), 10))
	require.Equal(t, Pagination{Page: 1, Limit: 100}, ParsePaginationWithCap(ParseParams("limit=500"), 300))
}

func makeCollection(n int) Collection {
	c := make(Collection, 0, n)
	for i := 1; i <= n; i++ {
		c = append(c, Record{"id": i})
	}
	return c
}

func ids(c Collection) []int {
	res := make([]int, 0, len(c))
	for _, rec := range c {
		res = append(res, rec["id"].(int))
	}
	return res
}

func TestPaginate(t *testing.T) {
	data := makeCollection(20)

	require.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, ids(Paginate(data, 1, 10)))
	require.Equal(t, []int{13, 14, 15, 16, 17, 18, 19, 20}, ids(Paginate(data, 2, 12)))

	for _, tc := range []struct{ page, limit int }{{3, 10}, {100, 50}, {0, 10}, {1, 0}, {int(^uint(0) >> 1), 100}} {
		t.Run(fmt.Sprintf("out of range page=%d limit=%d", tc.page, tc.limit), func(t *testing.T) {
			items := Paginate(data, tc.page, tc.limit)
			require.NotNil(t, items)
			require.Empty(t, items)
		})
	}

	require.Empty(t, Paginate(nil, 1, 10))
}

func TestPaginateLengthInvariant(t *testing.T) {
	for total := 0; total <= 25; total++ {
		data := makeCollection(total)
		for limit := 1; limit <= 7; limit++ {
			for page := 1; page <= 8; page++ {
				want := total - (page-1)*limit
				if want < 0 {
					want = 0
				}
				if want > limit {
					want = limit
				}
				require.Len(t, Paginate(data, page, limit), want, "total=%d page=%d limit=%d", total, page, limit)
			}
		}
	}
}

func TestTotalPages(t *testing.T) {
	require.Equal(t, 0, TotalPages(0, 50))
	require.Equal(t, 3, TotalPages(101, 50))
	require.Equal(t, 2, TotalPages(100, 50))
	require.Equal(t, 1, TotalPages(1, 100))
}
