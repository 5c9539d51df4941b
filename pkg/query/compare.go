package query

import (
	"strings"

	"github.com/adfharrison1/hippodb/pkg/domain"
)

// Equal compares two values structurally. Numbers compare by value
// regardless of their Go numeric type; strings are case-sensitive.
func Equal(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if an, ok := ToFloat64(a); ok {
		bn, ok := ToFloat64(b)
		return ok && an == bn
	}

	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case []interface{}:
		bv, ok := b.([]interface{})
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]interface{}:
		return equalObjects(av, b)
	case domain.Document:
		return equalObjects(av, b)
	}
	return false
}

func equalObjects(a map[string]interface{}, b interface{}) bool {
	var bm map[string]interface{}
	switch bv := b.(type) {
	case map[string]interface{}:
		bm = bv
	case domain.Document:
		bm = bv
	default:
		return false
	}
	if len(a) != len(bm) {
		return false
	}
	for k, av := range a {
		bv, ok := bm[k]
		if !ok || !Equal(av, bv) {
			return false
		}
	}
	return true
}

// Compare orders two numbers or two strings. ok is false for any other
// pairing, including values of different kinds.
func Compare(a, b interface{}) (cmp int, ok bool) {
	if an, aok := ToFloat64(a); aok {
		bn, bok := ToFloat64(b)
		if !bok {
			return 0, false
		}
		switch {
		case an < bn:
			return -1, true
		case an > bn:
			return 1, true
		default:
			return 0, true
		}
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return strings.Compare(as, bs), true
	}
	return 0, false
}

// contains reports substring containment for strings and element
// membership for arrays.
func contains(container, value interface{}) bool {
	switch c := container.(type) {
	case string:
		s, ok := value.(string)
		return ok && strings.Contains(c, s)
	case []interface{}:
		for _, elem := range c {
			if Equal(elem, value) {
				return true
			}
		}
	}
	return false
}

// ToFloat64 converts various numeric types to float64 for comparison
func ToFloat64(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}
