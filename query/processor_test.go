/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package query

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProcess(t *testing.T) {
	data := makeCollection(101)
	for i, rec := range data {
		if i%2 == 0 {
			rec["kind"] = "even"
		} else {
			rec["kind"] = "odd"
		}
	}

	tests := []struct {
		name           string
		rawQuery       string
		opts           Opts
		wantIDs        []int
		wantTotal      int
		wantPage       int
		wantLimit      int
		wantTotalPages int
		wantItemsCount int
	}{
		{
			name:           "defaults",
			wantTotal:      101,
			wantPage:       1,
			wantLimit:      50,
			wantTotalPages: 3,
			wantItemsCount: 50,
		},
		{
			name:           "last page",
			rawQuery:       "page=3",
			wantIDs:        []int{101},
			wantTotal:      101,
			wantPage:       3,
			wantLimit:      50,
			wantTotalPages: 3,
			wantItemsCount: 1,
		},
		{
			name:           "page beyond total",
			rawQuery:       "page=4",
			wantIDs:        []int{},
			wantTotal:      101,
			wantPage:       4,
			wantLimit:      50,
			wantTotalPages: 3,
		},
		{
			name:           "filter sort and paginate",
			rawQuery:       "kind=odd&sort=id&order=desc&limit=3&page=2",
			wantIDs:        []int{94, 92, 90},
			wantTotal:      50,
			wantPage:       2,
			wantLimit:      3,
			wantTotalPages: 17,
			wantItemsCount: 3,
		},
		{
			name:           "endpoint cap",
			rawQuery:       "limit=100",
			opts:           Opts{MaxLimit: 10},
			wantTotal:      101,
			wantPage:       1,
			wantLimit:      10,
			wantTotalPages: 11,
			wantItemsCount: 10,
		},
		{
			name:           "nothing matches",
			rawQuery:       "q=nothing",
			wantIDs:        []int{},
			wantPage:       1,
			wantLimit:      50,
			wantTotalPages: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Process(data, ParseParams(tt.rawQuery), tt.opts)
			if tt.wantIDs != nil {
				require.Equal(t, tt.wantIDs, ids(res.Items))
			} else {
				require.Len(t, res.Items, tt.wantItemsCount)
			}
			require.Equal(t, tt.wantTotal, res.Total)
			require.Equal(t, tt.wantPage, res.Page)
			require.Equal(t, tt.wantLimit, res.Limit)
			require.Equal(t, tt.wantTotalPages, res.TotalPages)
			require.LessOrEqual(t, len(res.Items), res.Limit)
		})
	}
}
