package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/adfharrison1/hippodb/pkg/domain"
)

// Path addresses a value inside a document. Segments select object keys;
// a segment made of decimal digits also selects an array element.
type Path []string

// ParsePath splits a dotted path such as "address.city" or "tags.0".
func ParsePath(s string) (Path, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty field path", domain.ErrInvalidFilter)
	}
	parts := strings.Split(s, ".")
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("%w: empty segment in field path %q", domain.ErrInvalidFilter, s)
		}
	}
	return Path(parts), nil
}

func (p Path) String() string {
	return strings.Join(p, ".")
}

// Lookup walks doc along the path and returns the value found there.
func (p Path) Lookup(doc domain.Document) (interface{}, bool) {
	if len(p) == 0 {
		return nil, false
	}
	var cur interface{} = map[string]interface{}(doc)
	for _, seg := range p {
		switch node := cur.(type) {
		case map[string]interface{}:
			v, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = v
		case domain.Document:
			v, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = v
		case []interface{}:
			idx, ok := arrayIndex(seg)
			if !ok || idx >= len(node) {
				return nil, false
			}
			cur = node[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}

func arrayIndex(seg string) (int, bool) {
	for i := 0; i < len(seg); i++ {
		if seg[i] < '0' || seg[i] > '9' {
			return 0, false
		}
	}
	idx, err := strconv.Atoi(seg)
	if err != nil {
		return 0, false
	}
	return idx, true
}
