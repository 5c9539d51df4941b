// Package indexing maintains equality indexes for one collection.
//
// Documents are identified by their insertion sequence number inside the
// collection, so a posting list is a roaring bitmap and iterating it yields
// documents in insertion order.
package indexing

import (
	"fmt"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/adfharrison1/hippodb/pkg/domain"
	"github.com/adfharrison1/hippodb/pkg/query"
)

// IndexEngine holds the indexes of a single collection, keyed by field path.
type IndexEngine struct {
	indexes map[string]*Index
}

// NewIndexEngine creates a new index engine
func NewIndexEngine() *IndexEngine {
	return &IndexEngine{
		indexes: make(map[string]*Index),
	}
}

// Index stores a mapping from a field's value to document sequence numbers.
// Only scalar values (null, bool, number, string) are indexed.
type Index struct {
	Field    query.Path
	Inverted map[interface{}]*roaring.Bitmap
}

// NewIndex creates an index on a specific field path.
func NewIndex(path query.Path) *Index {
	return &Index{
		Field:    path,
		Inverted: make(map[interface{}]*roaring.Bitmap),
	}
}

func indexKey(v interface{}) (interface{}, bool) {
	switch domain.KindOf(v) {
	case domain.KindNull, domain.KindBool, domain.KindNumber, domain.KindString:
		return v, true
	default:
		return nil, false
	}
}

// Add records doc under seq.
func (idx *Index) Add(seq uint32, doc domain.Document) {
	v, ok := idx.Field.Lookup(doc)
	if !ok {
		return
	}
	key, ok := indexKey(v)
	if !ok {
		return
	}
	bm, exists := idx.Inverted[key]
	if !exists {
		bm = roaring.New()
		idx.Inverted[key] = bm
	}
	bm.Add(seq)
}

// Remove forgets doc under seq.
func (idx *Index) Remove(seq uint32, doc domain.Document) {
	v, ok := idx.Field.Lookup(doc)
	if !ok {
		return
	}
	key, ok := indexKey(v)
	if !ok {
		return
	}
	if bm, exists := idx.Inverted[key]; exists {
		bm.Remove(seq)
		if bm.IsEmpty() {
			delete(idx.Inverted, key)
		}
	}
}

// Query returns the sequence numbers whose indexed value equals value.
// ok is false when value is not indexable, in which case the index cannot
// answer the question.
func (idx *Index) Query(value interface{}) (*roaring.Bitmap, bool) {
	key, ok := indexKey(value)
	if !ok {
		return nil, false
	}
	if bm, exists := idx.Inverted[key]; exists {
		return bm, true
	}
	return roaring.New(), true
}

func (idx *Index) clone() *Index {
	out := NewIndex(idx.Field)
	for k, bm := range idx.Inverted {
		out.Inverted[k] = bm.Clone()
	}
	return out
}

// CreateIndex registers an empty index on fieldPath. Callers populate it
// with Add.
func (ie *IndexEngine) CreateIndex(fieldPath string) (*Index, error) {
	path, err := query.ParsePath(fieldPath)
	if err != nil {
		return nil, err
	}
	if fieldPath == domain.IDField {
		return nil, fmt.Errorf("%w: %s is always unique and cannot be indexed", domain.ErrAlreadyExists, domain.IDField)
	}
	if _, exists := ie.indexes[fieldPath]; exists {
		return nil, fmt.Errorf("%w: index on field %s", domain.ErrAlreadyExists, fieldPath)
	}
	index := NewIndex(path)
	ie.indexes[fieldPath] = index
	return index, nil
}

// DropIndex removes an index
func (ie *IndexEngine) DropIndex(fieldPath string) error {
	if _, exists := ie.indexes[fieldPath]; !exists {
		return fmt.Errorf("%w: index on field %s", domain.ErrNotFound, fieldPath)
	}
	delete(ie.indexes, fieldPath)
	return nil
}

// GetIndexes returns all indexed field paths, sorted.
func (ie *IndexEngine) GetIndexes() []string {
	names := make([]string, 0, len(ie.indexes))
	for fieldPath := range ie.indexes {
		names = append(names, fieldPath)
	}
	sort.Strings(names)
	return names
}

// GetIndex returns the index on fieldPath, if any.
func (ie *IndexEngine) GetIndex(fieldPath string) (*Index, bool) {
	index, exists := ie.indexes[fieldPath]
	return index, exists
}

// UpdateIndexForDocument updates every index when a document changes. oldDoc
// is nil for inserts and newDoc is nil for deletes.
func (ie *IndexEngine) UpdateIndexForDocument(seq uint32, oldDoc, newDoc domain.Document) {
	for _, index := range ie.indexes {
		if oldDoc != nil {
			index.Remove(seq, oldDoc)
		}
		if newDoc != nil {
			index.Add(seq, newDoc)
		}
	}
}

// Clone returns an independent copy of every index.
func (ie *IndexEngine) Clone() *IndexEngine {
	out := NewIndexEngine()
	for name, index := range ie.indexes {
		out.indexes[name] = index.clone()
	}
	return out
}

// Candidates narrows a filter to a set of sequence numbers using the
// available indexes. It only looks at eq comparisons, either at the top
// level or as direct children of an And, and intersects what it finds.
// ok is false when no index applies and a full scan is needed. The result
// is a superset of the matches; callers still evaluate the filter.
func (ie *IndexEngine) Candidates(filter domain.Filter) (*roaring.Bitmap, bool) {
	if len(ie.indexes) == 0 || filter == nil {
		return nil, false
	}

	var comparisons []*query.Comparison
	switch f := filter.(type) {
	case *query.Comparison:
		comparisons = append(comparisons, f)
	case query.And:
		for _, child := range f {
			if c, ok := child.(*query.Comparison); ok {
				comparisons = append(comparisons, c)
			}
		}
	default:
		return nil, false
	}

	var result *roaring.Bitmap
	for _, c := range comparisons {
		if c.Operator != query.OpEq {
			continue
		}
		index, exists := ie.indexes[c.Path.String()]
		if !exists {
			continue
		}
		ids, ok := index.Query(c.Value)
		if !ok {
			continue
		}
		if result == nil {
			result = ids.Clone()
		} else {
			result.And(ids)
		}
	}
	if result == nil {
		return nil, false
	}
	return result, true
}
