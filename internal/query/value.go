// Package query implements C11 (spec.md 4.11): a small jq-like filter
// language evaluated directly over the decoded snapshot JSON. There is
// no third-party jq implementation anywhere in the retrieval corpus;
// this is the specification's own core component, not an ambient
// concern, so it is grounded on stdlib encoding/json plus the
// pipe-dispatch shape of the teacher's internal/search.Engine rather
// than an external library (see DESIGN.md).
package query

import (
	"fmt"
	"sort"
)

// getField reads a field from a map value, returning (nil, false) if absent
// or if v isn't a map.
func getField(v interface{}, name string) (interface{}, bool) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, false
	}
	r, ok := m[name]
	return r, ok
}

func asSlice(v interface{}) ([]interface{}, bool) {
	s, ok := v.([]interface{})
	return s, ok
}

func index(v interface{}, i int) (interface{}, bool) {
	s, ok := asSlice(v)
	if !ok {
		return nil, false
	}
	if i < 0 {
		i += len(s)
	}
	if i < 0 || i >= len(s) {
		return nil, false
	}
	return s[i], true
}

func slice(v interface{}, lo, hi int) (interface{}, bool) {
	s, ok := asSlice(v)
	if !ok {
		return nil, false
	}
	n := len(s)
	if lo < 0 {
		lo += n
	}
	if hi < 0 {
		hi += n
	}
	if lo < 0 {
		lo = 0
	}
	if hi > n {
		hi = n
	}
	if lo > hi {
		return []interface{}{}, true
	}
	return append([]interface{}{}, s[lo:hi]...), true
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func asString(v interface{}) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	default:
		return true
	}
}

func equalValues(a, b interface{}) bool {
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if aok && bok {
		return af == bf
	}
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

// sortByKeys sorts items (and their parallel keys slice) by the
// comparable key values, stable, ascending, in place.
func sortByKeys(items []interface{}, keys []interface{}) {
	type pair struct {
		item interface{}
		key  interface{}
	}
	pairs := make([]pair, len(items))
	for i := range items {
		pairs[i] = pair{items[i], keys[i]}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return lessValues(pairs[i].key, pairs[j].key)
	})
	for i := range pairs {
		items[i] = pairs[i].item
		keys[i] = pairs[i].key
	}
}

func lessValues(a, b interface{}) bool {
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if aok && bok {
		return af < bf
	}
	as, _ := asString(a)
	bs, _ := asString(b)
	return as < bs
}
