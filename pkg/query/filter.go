// Package query evaluates filter expressions against documents.
//
// A filter is a tree of Comparison leaves combined with And, Or and Not.
// Filters are built with Parse (from decoded JSON) or directly with the
// constructors below. Evaluation is total: Match never fails, a comparison
// that cannot be made simply does not match.
package query

import (
	"fmt"
	"strings"

	"github.com/adfharrison1/hippodb/pkg/domain"
)

// Operator names a field comparison.
type Operator string

const (
	OpEq       Operator = "eq"
	OpNe       Operator = "ne"
	OpGt       Operator = "gt"
	OpGte      Operator = "gte"
	OpLt       Operator = "lt"
	OpLte      Operator = "lte"
	OpExists   Operator = "exists"
	OpContains Operator = "contains"
)

func (op Operator) valid() bool {
	switch op {
	case OpEq, OpNe, OpGt, OpGte, OpLt, OpLte, OpExists, OpContains:
		return true
	}
	return false
}

// Filter is a node of a filter expression tree.
type Filter interface {
	domain.Filter
	fmt.Stringer
}

// Comparison tests the value found at Path.
type Comparison struct {
	Path     Path
	Operator Operator
	Value    interface{}
}

// And matches when every child matches. An empty And matches everything.
type And []Filter

// Or matches when any child matches. An empty Or matches nothing.
type Or []Filter

// Not inverts its child.
type Not struct {
	Filter Filter
}

// Field builds a comparison on a dotted path. It panics on an empty path or
// unknown operator; use Parse for untrusted input.
func Field(path string, op Operator, value interface{}) *Comparison {
	p, err := ParsePath(path)
	if err != nil {
		panic(err)
	}
	if !op.valid() {
		panic(fmt.Sprintf("query: unknown operator %q", op))
	}
	if op == OpExists && value == nil {
		value = true
	}
	nv, err := domain.Normalize(value)
	if err != nil {
		panic(err)
	}
	return &Comparison{Path: p, Operator: op, Value: nv}
}

// Eq is shorthand for Field(path, OpEq, value).
func Eq(path string, value interface{}) *Comparison {
	return Field(path, OpEq, value)
}

// Match reports whether doc satisfies filter. A nil filter matches every
// document.
func Match(doc domain.Document, filter domain.Filter) bool {
	if filter == nil {
		return true
	}
	return filter.Match(doc)
}

func (c *Comparison) Match(doc domain.Document) bool {
	actual, found := c.Path.Lookup(doc)

	switch c.Operator {
	case OpExists:
		want, _ := c.Value.(bool)
		return found == want
	case OpEq:
		return found && Equal(actual, c.Value)
	case OpNe:
		return !found || !Equal(actual, c.Value)
	case OpContains:
		return found && contains(actual, c.Value)
	}

	if !found {
		return false
	}
	cmp, ok := Compare(actual, c.Value)
	if !ok {
		return false
	}
	switch c.Operator {
	case OpGt:
		return cmp > 0
	case OpGte:
		return cmp >= 0
	case OpLt:
		return cmp < 0
	case OpLte:
		return cmp <= 0
	}
	return false
}

func (c *Comparison) String() string {
	return fmt.Sprintf("%s %s %v", c.Path, c.Operator, c.Value)
}

func (a And) Match(doc domain.Document) bool {
	for _, f := range a {
		if !f.Match(doc) {
			return false
		}
	}
	return true
}

func (a And) String() string {
	return joinFilters("and", a)
}

func (o Or) Match(doc domain.Document) bool {
	for _, f := range o {
		if f.Match(doc) {
			return true
		}
	}
	return false
}

func (o Or) String() string {
	return joinFilters("or", o)
}

func (n Not) Match(doc domain.Document) bool {
	return !n.Filter.Match(doc)
}

func (n Not) String() string {
	return "not(" + n.Filter.String() + ")"
}

func joinFilters(name string, filters []Filter) string {
	parts := make([]string, len(filters))
	for i, f := range filters {
		parts[i] = f.String()
	}
	return name + "(" + strings.Join(parts, ", ") + ")"
}
