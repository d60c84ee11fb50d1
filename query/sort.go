/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package query

import (
	"sort"
	"strings"
)

// sortRecords stable-sorts records by the field. Pairs that cannot be compared
// (missing field on either side, different or structured types) keep their relative order.
func sortRecords(records Collection, field string, desc bool) {
	sort.SliceStable(records, func(i, j int) bool {
		c := compareField(records[i], records[j], field)
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func compareField(a, b Record, field string) int {
	av, ok := a[field]
	if !ok {
		return 0
	}
	bv, ok := b[field]
	if !ok {
		return 0
	}
	return compareValues(av, bv)
}

func compareValues(a, b interface{}) int {
	if an, ok := toNumber(a); ok {
		bn, ok := toNumber(b)
		if !ok {
			return 0
		}
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		}
		return 0
	}
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	case bool:
		if bv, ok := b.(bool); ok && av != bv {
			if bv {
				return -1
			}
			return 1
		}
	}
	return 0
}
