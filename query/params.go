/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package query

import (
	"net/url"
	"strings"
)

// Record is a single schema-less item of a collection.
type Record = map[string]interface{}

// Collection is an ordered, fully materialized sequence of records.
type Collection = []Record

// Reserved parameter names. They are never treated as field filters.
const (
	ParamPage        = "page"
	ParamPageLegacy  = "_page"
	ParamLimit       = "limit"
	ParamLimitLegacy = "_limit"
	ParamSort        = "sort"
	ParamSortLegacy  = "_sort"
	ParamOrder       = "order"
	ParamOrderLegacy = "_order"
	ParamSearch      = "q"
)

var reservedParams = map[string]struct{}{
	ParamPage: {}, ParamPageLegacy: {},
	ParamLimit: {}, ParamLimitLegacy: {},
	ParamSort: {}, ParamSortLegacy: {},
	ParamOrder: {}, ParamOrderLegacy: {},
	ParamSearch: {},
}

// IsReserved reports whether the parameter name controls pagination, sorting or search.
func IsReserved(key string) bool {
	_, ok := reservedParams[key]
	return ok
}

// Param is a single key/value pair of a query string.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered list of query-string parameters.
// Unlike url.Values it keeps the original order and all duplicates, because filters are applied in order.
type Params []Param

// ParseParams parses a raw (already split from the URL) query string.
// Pairs that cannot be unescaped are kept as is.
func ParseParams(rawQuery string) Params {
	var params Params
	for rawQuery != "" {
		var pair string
		pair, rawQuery, _ = strings.Cut(rawQuery, "&")
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		params = append(params, Param{Key: unescape(key), Value: unescape(value)})
	}
	return params
}

func unescape(s string) string {
	if unescaped, err := url.QueryUnescape(s); err == nil {
		return unescaped
	}
	return s
}

// Get returns the value of the first parameter with the given key.
func (p Params) Get(key string) (string, bool) {
	for _, param := range p {
		if param.Key == key {
			return param.Value, true
		}
	}
	return "", false
}

// Lookup returns the first non-empty value among the keys, trying them in the given order.
func (p Params) Lookup(keys ...string) string {
	for _, key := range keys {
		if v, ok := p.Get(key); ok && v != "" {
			return v
		}
	}
	return ""
}

// Filters returns the parameters that are not reserved, in their original order.
func (p Params) Filters() Params {
	var filters Params
	for _, param := range p {
		if !IsReserved(param.Key) {
			filters = append(filters, param)
		}
	}
	return filters
}
