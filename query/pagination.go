/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package query

import (
	"math"
	"strconv"
	"strings"
)

// Pagination defaults.
const (
	DefaultPage  = 1
	DefaultLimit = 50
	MaxLimit     = 100
)

// Pagination is a parsed page request.
type Pagination struct {
	Page  int
	Limit int
}

// Offset returns the index of the first item of the page, or -1 if it does not fit into int.
func (p Pagination) Offset() int {
	if p.Page-1 > math.MaxInt/p.Limit {
		return -1
	}
	return (p.Page - 1) * p.Limit
}

// ParsePagination reads page/_page and limit/_limit from the params.
// Values without a leading integer or less than 1 are replaced with defaults, limit is clamped to MaxLimit.
func ParsePagination(params Params) Pagination {
	return ParsePaginationWithCap(params, 0)
}

// ParsePaginationWithCap works like ParsePagination and additionally clamps limit to maxLimit when it is positive.
func ParsePaginationWithCap(params Params, maxLimit int) Pagination {
	page := parseLeadingInt(params.Lookup(ParamPage, ParamPageLegacy), DefaultPage)
	limit := parseLeadingInt(params.Lookup(ParamLimit, ParamLimitLegacy), DefaultLimit)
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	return Pagination{Page: page, Limit: limit}
}

// parseLeadingInt parses an optional sign followed by decimal digits at the beginning of s,
// ignoring leading whitespace and anything after the digits ("12abc" and "12.9" both give 12).
// Returns def when there are no digits or the result is less than 1. Overflow saturates.
func parseLeadingInt(s string, def int) int {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	negative := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		negative = s[0] == '-'
		s = s[1:]
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 || negative {
		return def
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		n = math.MaxInt
	}
	if n < 1 {
		return def
	}
	return n
}

// Paginate returns the items of the given page. Out-of-range pages give an empty slice.
// The returned slice shares the backing array with the collection.
func Paginate(collection Collection, page, limit int) Collection {
	p := Pagination{Page: page, Limit: limit}
	if p.Page < 1 || p.Limit < 1 {
		return Collection{}
	}
	start := p.Offset()
	if start < 0 || start >= len(collection) {
		return Collection{}
	}
	end := len(collection)
	if len(collection)-start > p.Limit {
		end = start + p.Limit
	}
	return collection[start:end:end]
}

// TotalPages returns ceil(total/limit).
func TotalPages(total, limit int) int {
	if limit < 1 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
