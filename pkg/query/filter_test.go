package query

import (
	"testing"

	"github.com/adfharrison1/hippodb/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDoc(t *testing.T) domain.Document {
	t.Helper()
	doc, err := domain.NormalizeDocument(map[string]interface{}{
		"_id":    "u1",
		"name":   "Ann",
		"age":    31,
		"active": true,
		"tags":   []interface{}{"admin", "ops", 7},
		"address": map[string]interface{}{
			"city": "Oslo",
			"geo":  map[string]interface{}{"lat": 59.9},
		},
		"nickname": nil,
	})
	require.NoError(t, err)
	return doc
}

func TestComparison_Match(t *testing.T) {
	doc := sampleDoc(t)

	tests := []struct {
		name     string
		filter   Filter
		expected bool
	}{
		{"eq string", Eq("name", "Ann"), true},
		{"eq is case sensitive", Eq("name", "ann"), false},
		{"eq number across int types", Eq("age", int64(31)), true},
		{"eq missing field", Eq("missing", "x"), false},
		{"eq null", Eq("nickname", nil), true},
		{"eq nested path", Eq("address.city", "Oslo"), true},
		{"eq deep nested path", Eq("address.geo.lat", 59.9), true},
		{"eq array index", Eq("tags.1", "ops"), true},
		{"eq array index out of range", Eq("tags.9", "ops"), false},
		{"eq whole array", Eq("tags", []interface{}{"admin", "ops", 7}), true},
		{"eq whole object", Eq("address.geo", map[string]interface{}{"lat": 59.9}), true},
		{"ne different", Field("name", OpNe, "Bo"), true},
		{"ne same", Field("name", OpNe, "Ann"), false},
		{"ne missing field", Field("missing", OpNe, "Ann"), true},
		{"gt number", Field("age", OpGt, 30), true},
		{"gt equal", Field("age", OpGt, 31), false},
		{"gte equal", Field("age", OpGte, 31), true},
		{"lt number", Field("age", OpLt, 40), true},
		{"lte smaller", Field("age", OpLte, 18), false},
		{"gt string", Field("name", OpGt, "Aaron"), true},
		{"lt string", Field("name", OpLt, "Aaron"), false},
		{"gt string against number is false", Field("name", OpGt, 5), false},
		{"lt number against string is false", Field("age", OpLt, "zzz"), false},
		{"gt bool is false", Field("active", OpGt, false), false},
		{"gt missing is false", Field("missing", OpGt, 1), false},
		{"exists present", Field("name", OpExists, true), true},
		{"exists present null", Field("nickname", OpExists, true), true},
		{"exists absent", Field("missing", OpExists, true), false},
		{"exists false on absent", Field("missing", OpExists, false), true},
		{"exists default true", Field("address.city", OpExists, nil), true},
		{"contains substring", Field("name", OpContains, "nn"), true},
		{"contains substring miss", Field("name", OpContains, "x"), false},
		{"contains array element", Field("tags", OpContains, "ops"), true},
		{"contains array number", Field("tags", OpContains, 7.0), true},
		{"contains array miss", Field("tags", OpContains, "dev"), false},
		{"contains on number is false", Field("age", OpContains, 3), false},
		{"path through scalar", Eq("name.first", "Ann"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Match(doc, tt.filter), tt.filter.String())
		})
	}
}

func TestLogical_Match(t *testing.T) {
	doc := sampleDoc(t)

	assert.True(t, Match(doc, And{}), "empty and is the identity")
	assert.False(t, Match(doc, Or{}), "empty or is the identity")
	assert.True(t, Match(doc, nil))

	assert.True(t, Match(doc, And{Eq("name", "Ann"), Field("age", OpGte, 30)}))
	assert.False(t, Match(doc, And{Eq("name", "Ann"), Field("age", OpLt, 30)}))
	assert.True(t, Match(doc, Or{Eq("name", "Bo"), Eq("address.city", "Oslo")}))
	assert.False(t, Match(doc, Or{Eq("name", "Bo"), Eq("address.city", "Rome")}))
	assert.True(t, Match(doc, Not{Filter: Eq("name", "Bo")}))
	assert.False(t, Match(doc, Not{Filter: And{}}))
	assert.True(t, Match(doc, Not{Filter: Or{}}))

	nested := Or{
		And{Eq("name", "Bo"), Eq("age", 31)},
		Not{Filter: Field("tags", OpContains, "dev")},
	}
	assert.True(t, Match(doc, nested))
}

func TestMatch_DoesNotMutateDocument(t *testing.T) {
	doc := sampleDoc(t)
	before := doc.Clone()

	Match(doc, Or{Eq("address.geo.lat", 1), Field("tags", OpContains, "x"), Field("missing", OpExists, false)})

	assert.Equal(t, before, doc)
}

func TestFilter_String(t *testing.T) {
	f := And{Eq("name", "Ann"), Not{Filter: Field("age", OpLt, 18)}}
	assert.Equal(t, "and(name eq Ann, not(age lt 18))", f.String())
}

func TestField_PanicsOnBadInput(t *testing.T) {
	assert.Panics(t, func() { Field("", OpEq, 1) })
	assert.Panics(t, func() { Field("a", Operator("like"), 1) })
}
