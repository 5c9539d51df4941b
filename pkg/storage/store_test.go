package storage

import (
	"math"
	"testing"

	"github.com/adfharrison1/hippodb/pkg/domain"
	"github.com/adfharrison1/hippodb/pkg/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentStore_Operations(t *testing.T) {
	store := NewDocumentStore(sequentialIDs())

	id, err := store.Insert(domain.Document{"name": "a"})
	require.NoError(t, err)
	assert.Equal(t, "id-1", id)

	_, err = store.Insert(domain.Document{"_id": "x", "name": "b"})
	require.NoError(t, err)
	_, err = store.Insert(domain.Document{"_id": "x"})
	assert.ErrorIs(t, err, domain.ErrDuplicateID)
	_, err = store.Insert(nil)
	assert.ErrorIs(t, err, domain.ErrInvalidDocument)

	require.NoError(t, store.Replace("id-1", domain.Document{"name": "c"}))
	doc, ok := store.Get("id-1")
	require.True(t, ok)
	assert.Equal(t, domain.Document{"_id": "id-1", "name": "c"}, doc)
	assert.Equal(t, []string{"id-1", "x"}, store.IDs())

	assert.ErrorIs(t, store.Replace("nope", domain.Document{}), domain.ErrNotFound)
	assert.ErrorIs(t, store.Delete("nope"), domain.ErrNotFound)

	require.NoError(t, store.Delete("id-1"))
	assert.Equal(t, 1, store.Len())
	assert.Equal(t, []string{"x"}, store.IDs())
}

func TestDocumentStore_CloneIsIndependent(t *testing.T) {
	store := NewDocumentStore(sequentialIDs())
	_, err := store.Insert(domain.Document{"_id": "a", "k": "v"})
	require.NoError(t, err)
	require.NoError(t, store.CreateIndex("k"))

	next := store.Clone()
	_, err = next.Insert(domain.Document{"_id": "b", "k": "v"})
	require.NoError(t, err)
	require.NoError(t, next.Delete("a"))
	require.NoError(t, next.DropIndex("k"))

	assert.Equal(t, []string{"a"}, store.IDs())
	assert.Equal(t, []string{"k"}, store.Indexes())
	assert.Equal(t, []string{"a"}, ids(store.Select(query.Eq("k", "v"))))

	assert.Equal(t, []string{"b"}, next.IDs())
	assert.Empty(t, next.Indexes())
}

func TestDocumentStore_RenumbersWhenSequenceRunsOut(t *testing.T) {
	store := NewDocumentStore(sequentialIDs())
	require.NoError(t, store.CreateIndex("k"))
	for _, id := range []string{"a", "b", "gone"} {
		_, err := store.Insert(domain.Document{"_id": id, "k": "v"})
		require.NoError(t, err)
	}
	require.NoError(t, store.Delete("gone"))

	store.nextSeq = math.MaxUint32 - 1
	_, err := store.Insert(domain.Document{"_id": "c", "k": "v"})
	require.NoError(t, err)
	before := store.Clone()

	_, err = store.Insert(domain.Document{"_id": "d", "k": "v"})
	require.NoError(t, err)

	assert.Equal(t, uint32(4), store.nextSeq)
	assert.Equal(t, []string{"a", "b", "c", "d"}, store.IDs())
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(store.Select(query.Eq("k", "v"))))
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(store.Documents()))

	// A clone taken before renumbering keeps its own numbering
	assert.Equal(t, uint32(math.MaxUint32), before.nextSeq)
	assert.Equal(t, []string{"a", "b", "c"}, ids(before.Select(query.Eq("k", "v"))))
}

func TestDocumentStore_IndexedSelectMatchesScan(t *testing.T) {
	plain := NewDocumentStore(sequentialIDs())
	indexed := NewDocumentStore(sequentialIDs())
	require.NoError(t, indexed.CreateIndex("role"))
	require.NoError(t, indexed.CreateIndex("profile.team"))

	docs := []domain.Document{
		{"role": "admin", "profile": map[string]interface{}{"team": "core"}, "age": 30.0},
		{"role": "user", "profile": map[string]interface{}{"team": "core"}, "age": 25.0},
		{"role": "user", "profile": map[string]interface{}{"team": "web"}, "age": 41.0},
		{"role": []interface{}{"user"}, "age": 19.0},
		{"age": 50.0},
	}
	for _, doc := range docs {
		_, err := plain.Insert(doc.Clone())
		require.NoError(t, err)
		_, err = indexed.Insert(doc.Clone())
		require.NoError(t, err)
	}
	require.NoError(t, plain.Delete("id-2"))
	require.NoError(t, indexed.Delete("id-2"))

	filters := []query.Filter{
		query.Eq("role", "user"),
		query.Eq("role", "nobody"),
		query.Eq("profile.team", "core"),
		query.And{query.Eq("role", "user"), query.Eq("profile.team", "web")},
		query.And{query.Eq("role", "user"), query.Field("age", query.OpGt, 40)},
		query.Or{query.Eq("role", "admin"), query.Field("age", query.OpGte, 50)},
		query.Not{Filter: query.Eq("role", "user")},
		query.Eq("role", []interface{}{"user"}),
	}
	for _, f := range filters {
		t.Run(f.String(), func(t *testing.T) {
			assert.Equal(t, ids(plain.Select(f)), ids(indexed.Select(f)))
		})
	}
}
