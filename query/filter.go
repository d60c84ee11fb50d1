/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package query

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// FilterAndSort applies global search (q), field filters and sorting (sort/order) to the collection.
// The result is a new slice; the input collection is never reordered.
func FilterAndSort(collection Collection, params Params) Collection {
	result := make(Collection, 0, len(collection))
	search := strings.ToLower(params.Lookup(ParamSearch))
	filters := params.Filters()
	for _, rec := range collection {
		if search != "" && !containsText(rec, search) {
			continue
		}
		if !matchFilters(rec, filters) {
			continue
		}
		result = append(result, rec)
	}

	if field := params.Lookup(ParamSort, ParamSortLegacy); field != "" {
		desc := strings.EqualFold(params.Lookup(ParamOrder, ParamOrderLegacy), "desc")
		sortRecords(result, field, desc)
	}
	return result
}

// containsText reports whether the lower-cased JSON form of the record contains the (already lower-cased) needle.
func containsText(rec Record, needle string) bool {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(rec); err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(strings.TrimSuffix(buf.String(), "\n")), needle)
}

func matchFilters(rec Record, filters Params) bool {
	for _, f := range filters {
		if !matchField(rec, f.Key, f.Value) {
			return false
		}
	}
	return true
}

// matchField applies a single field filter. A record without the field passes.
func matchField(rec Record, field, value string) bool {
	v, ok := rec[field]
	if !ok {
		return true
	}
	switch tv := v.(type) {
	case string:
		return strings.Contains(strings.ToLower(tv), strings.ToLower(value))
	case bool:
		return strconv.FormatBool(tv) == value
	}
	if n, isNum := toNumber(v); isNum {
		want, parsed := coerceNumber(value)
		return parsed && n == want
	}
	return false
}

// toNumber reports whether v is a JSON number (or a Go numeric type) and returns its value.
func toNumber(v interface{}) (float64, bool) {
	switch tv := v.(type) {
	case json.Number:
		f, err := tv.Float64()
		return f, err == nil
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		f, err := cast.ToFloat64E(tv)
		return f, err == nil
	}
	return 0, false
}

// coerceNumber converts a query value to a number. Blank strings are 0, unparsable strings give false.
// Unsigned 0x, 0o and 0b integer literals are accepted as well.
func coerceNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	if f, err := cast.ToFloat64E(s); err == nil {
		return f, !math.IsNaN(f)
	}
	if isRadixLiteral(s) {
		if n, err := strconv.ParseUint(s, 0, 64); err == nil {
			return float64(n), true
		}
	}
	return 0, false
}

func isRadixLiteral(s string) bool {
	if len(s) < 3 || s[0] != '0' || strings.ContainsRune(s, '_') {
		return false
	}
	switch s[1] {
	case 'x', 'X', 'o', 'O', 'b', 'B':
		return true
	}
	return false
}
