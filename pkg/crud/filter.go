package crud

import (
	"net/url"
	"sort"
	"strings"
)

// Filters holds the UI filter values keyed by UI name.
type Filters map[string]string

// BuildParams renames UI filters to backend query names and drops empty
// values. Keys without a mapping are not forwarded.
func BuildParams(f Filters, fieldMap map[string]string) url.Values {
	out := url.Values{}
	for k, v := range f {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if name, ok := fieldMap[k]; ok {
			out.Set(name, v)
		}
	}
	return out
}

// Active reports whether any filter carries a value.
func (f Filters) Active() bool {
	for _, v := range f {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}

// Distinct returns the sorted non-empty unique values, for dropdowns built
// from loaded rows.
func Distinct(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// MatchAny is the case-insensitive substring search of the list pages. An
// empty term matches everything.
func MatchAny(term string, fields ...string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// Filter keeps the items accepted by keep.
func Filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}
