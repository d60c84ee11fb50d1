/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package query

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseParams(t *testing.T) {
	tests := []struct {
		name     string
		rawQuery string
		want     Params
	}{
		{name: "empty", rawQuery: "", want: nil},
		{
			name:     "order and duplicates are preserved",
			rawQuery: "name=al&age=30&name=ice",
			want:     Params{{"name", "al"}, {"age", "30"}, {"name", "ice"}},
		},
		{
			name:     "unescaping",
			rawQuery: "q=hello+world&city=S%C3%A3o%20Paulo",
			want:     Params{{"q", "hello world"}, {"city", "São Paulo"}},
		},
		{
			name:     "key without value and empty pairs",
			rawQuery: "&active&&limit=",
			want:     Params{{"active", ""}, {"limit", ""}},
		},
		{
			name:     "invalid escape is kept as is",
			rawQuery: "q=100%",
			want:     Params{{"q", "100%"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ParseParams(tt.rawQuery))
		})
	}
}

func TestParamsLookup(t *testing.T) {
	params := ParseParams("page=&_page=3&sort=name")
	require.Equal(t, "3", params.Lookup(ParamPage, ParamPageLegacy))
	require.Equal(t, "name", params.Lookup(ParamSort, ParamSortLegacy))
	require.Equal(t, "", params.Lookup(ParamOrder, ParamOrderLegacy))

	v, ok := params.Get("page")
	require.True(t, ok)
	require.Equal(t, "", v)
}

func TestParamsFilters(t *testing.T) {
	params := ParseParams("page=1&name=bob&_limit=5&q=x&age=3&_sort=id&order=desc&_order=asc&sort=y&limit=2&_page=1")
	require.Equal(t, Params{{"name", "bob"}, {"age", "3"}}, params.Filters())
}
