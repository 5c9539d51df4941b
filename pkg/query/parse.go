package query

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/adfharrison1/hippodb/pkg/domain"
)

// Keys recognised in the JSON form of a filter.
const (
	keyAnd      = "and"
	keyOr       = "or"
	keyNot      = "not"
	keyPath     = "field_path"
	keyOperator = "operator"
	keyValue    = "value"
)

// ParseJSON decodes and parses a JSON filter expression.
func ParseJSON(data []byte) (Filter, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidFilter, err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("%w: unexpected data after filter", domain.ErrInvalidFilter)
	}
	return Parse(raw)
}

// Parse builds a filter tree from a decoded JSON value. Any structural
// problem is reported as domain.ErrInvalidFilter.
func Parse(raw interface{}) (Filter, error) {
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: filter must be an object, got %T", domain.ErrInvalidFilter, raw)
	}

	for _, key := range []string{keyAnd, keyOr, keyNot} {
		if _, present := obj[key]; !present {
			continue
		}
		if len(obj) != 1 {
			return nil, fmt.Errorf("%w: %q must be the only key of its object", domain.ErrInvalidFilter, key)
		}
		if key == keyNot {
			inner, err := Parse(obj[key])
			if err != nil {
				return nil, err
			}
			return Not{Filter: inner}, nil
		}
		children, err := parseList(key, obj[key])
		if err != nil {
			return nil, err
		}
		if key == keyAnd {
			return And(children), nil
		}
		return Or(children), nil
	}

	return parseComparison(obj)
}

func parseList(key string, raw interface{}) ([]Filter, error) {
	list, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: %q expects a list of filters", domain.ErrInvalidFilter, key)
	}
	children := make([]Filter, 0, len(list))
	for i, item := range list {
		child, err := Parse(item)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", key, i, err)
		}
		children = append(children, child)
	}
	return children, nil
}

func parseComparison(obj map[string]interface{}) (Filter, error) {
	for key := range obj {
		switch key {
		case keyPath, keyOperator, keyValue:
		default:
			return nil, fmt.Errorf("%w: unknown key %q", domain.ErrInvalidFilter, key)
		}
	}

	rawPath, ok := obj[keyPath].(string)
	if !ok {
		return nil, fmt.Errorf("%w: %q must be a string", domain.ErrInvalidFilter, keyPath)
	}
	path, err := ParsePath(rawPath)
	if err != nil {
		return nil, err
	}

	rawOp, ok := obj[keyOperator].(string)
	if !ok {
		return nil, fmt.Errorf("%w: %q must be a string", domain.ErrInvalidFilter, keyOperator)
	}
	op := Operator(rawOp)
	if !op.valid() {
		return nil, fmt.Errorf("%w: unknown operator %q", domain.ErrInvalidFilter, rawOp)
	}

	rawValue, hasValue := obj[keyValue]
	if op == OpExists {
		if !hasValue {
			return &Comparison{Path: path, Operator: op, Value: true}, nil
		}
		b, ok := rawValue.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: exists expects a boolean value", domain.ErrInvalidFilter)
		}
		return &Comparison{Path: path, Operator: op, Value: b}, nil
	}
	if !hasValue {
		return nil, fmt.Errorf("%w: operator %q requires a value", domain.ErrInvalidFilter, op)
	}

	value, err := domain.Normalize(rawValue)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidFilter, err)
	}
	return &Comparison{Path: path, Operator: op, Value: value}, nil
}

// Equality builds an And of eq comparisons, one per entry, in key order.
// It returns nil for an empty map so callers can pass the result straight
// to a scan.
func Equality(fields map[string]interface{}) (Filter, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	filters := make(And, 0, len(keys))
	for _, k := range keys {
		path, err := ParsePath(k)
		if err != nil {
			return nil, err
		}
		value, err := domain.Normalize(fields[k])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidFilter, err)
		}
		filters = append(filters, &Comparison{Path: path, Operator: OpEq, Value: value})
	}
	return filters, nil
}
