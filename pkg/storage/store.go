package storage

import (
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/adfharrison1/hippodb/pkg/domain"
	"github.com/adfharrison1/hippodb/pkg/indexing"
	"github.com/adfharrison1/hippodb/pkg/query"
)

// entry is a stored document together with its insertion sequence number.
// Stored documents are never modified; replacing a document swaps the entry.
type entry struct {
	seq uint32
	doc domain.Document
}

// DocumentStore is the in-memory state of one collection: documents keyed by
// identifier, their insertion order, and the collection's indexes.
//
// A DocumentStore is not safe for concurrent mutation. The engine mutates a
// Clone under the collection write lock and swaps it in once the change is
// durable, so readers holding the old store never observe partial writes.
type DocumentStore struct {
	byID    map[string]*entry
	bySeq   map[uint32]*entry
	live    *roaring.Bitmap
	nextSeq uint32
	indexes *indexing.IndexEngine
	newID   func() string
}

// NewDocumentStore creates an empty store. newID generates identifiers for
// documents inserted without one.
func NewDocumentStore(newID func() string) *DocumentStore {
	return &DocumentStore{
		byID:    make(map[string]*entry),
		bySeq:   make(map[uint32]*entry),
		live:    roaring.New(),
		indexes: indexing.NewIndexEngine(),
		newID:   newID,
	}
}

// Len returns the number of documents.
func (s *DocumentStore) Len() int {
	return len(s.byID)
}

// Insert adds a normalized document, assigning an identifier when it has
// none, and returns the identifier.
func (s *DocumentStore) Insert(doc domain.Document) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("%w: document must be a JSON object", domain.ErrInvalidDocument)
	}
	id, ok := doc.ID()
	if !ok {
		if _, present := doc[domain.IDField]; present {
			return "", fmt.Errorf("%w: %s must be a non-empty string", domain.ErrInvalidDocument, domain.IDField)
		}
		id = s.newID()
		doc[domain.IDField] = id
	}
	if _, exists := s.byID[id]; exists {
		return "", fmt.Errorf("%w: %s", domain.ErrDuplicateID, id)
	}

	if s.nextSeq == math.MaxUint32 {
		if err := s.renumber(); err != nil {
			return "", err
		}
	}

	e := &entry{seq: s.nextSeq, doc: doc}
	s.nextSeq++
	s.byID[id] = e
	s.bySeq[e.seq] = e
	s.live.Add(e.seq)
	s.indexes.UpdateIndexForDocument(e.seq, nil, doc)
	return id, nil
}

// renumber packs sequence numbers back to 0..n-1, keeping insertion order,
// and rebuilds the indexes on the new numbers. Entries may be shared with
// other stores, so they are copied rather than updated.
func (s *DocumentStore) renumber() error {
	if uint64(len(s.byID)) >= math.MaxUint32 {
		return fmt.Errorf("%w: collection holds too many documents", domain.ErrInvalidDocument)
	}
	byID := make(map[string]*entry, len(s.byID))
	bySeq := make(map[uint32]*entry, len(s.bySeq))
	live := roaring.New()
	var seq uint32
	it := s.live.Iterator()
	for it.HasNext() {
		old := s.bySeq[it.Next()]
		e := &entry{seq: seq, doc: old.doc}
		byID[old.doc[domain.IDField].(string)] = e
		bySeq[seq] = e
		live.Add(seq)
		seq++
	}

	indexes := indexing.NewIndexEngine()
	for _, fieldPath := range s.indexes.GetIndexes() {
		index, err := indexes.CreateIndex(fieldPath)
		if err != nil {
			return err
		}
		for _, e := range bySeq {
			index.Add(e.seq, e.doc)
		}
	}

	s.byID, s.bySeq, s.live, s.nextSeq, s.indexes = byID, bySeq, live, seq, indexes
	return nil
}

// Get returns the stored document. Callers must not modify it.
func (s *DocumentStore) Get(id string) (domain.Document, bool) {
	e, exists := s.byID[id]
	if !exists {
		return nil, false
	}
	return e.doc, true
}

// Replace swaps the document stored under id, keeping its position in
// insertion order. The replacement's identifier is forced to id.
func (s *DocumentStore) Replace(id string, doc domain.Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document must be a JSON object", domain.ErrInvalidDocument)
	}
	old, exists := s.byID[id]
	if !exists {
		return fmt.Errorf("%w: document %s", domain.ErrNotFound, id)
	}
	doc[domain.IDField] = id

	e := &entry{seq: old.seq, doc: doc}
	s.byID[id] = e
	s.bySeq[e.seq] = e
	s.indexes.UpdateIndexForDocument(e.seq, old.doc, doc)
	return nil
}

// Delete removes the document stored under id.
func (s *DocumentStore) Delete(id string) error {
	e, exists := s.byID[id]
	if !exists {
		return fmt.Errorf("%w: document %s", domain.ErrNotFound, id)
	}
	delete(s.byID, id)
	delete(s.bySeq, e.seq)
	s.live.Remove(e.seq)
	s.indexes.UpdateIndexForDocument(e.seq, e.doc, nil)
	return nil
}

// Documents returns every stored document in insertion order.
func (s *DocumentStore) Documents() []domain.Document {
	return s.collect(s.live)
}

// IDs returns every identifier in insertion order.
func (s *DocumentStore) IDs() []string {
	ids := make([]string, 0, s.live.GetCardinality())
	it := s.live.Iterator()
	for it.HasNext() {
		ids = append(ids, s.bySeq[it.Next()].doc[domain.IDField].(string))
	}
	return ids
}

// Candidates returns, in insertion order, the documents that may match
// filter. Indexes narrow the set when they can; otherwise every document is
// returned. The filter itself is not evaluated here.
func (s *DocumentStore) Candidates(filter domain.Filter) []domain.Document {
	if ids, ok := s.indexes.Candidates(filter); ok {
		ids.And(s.live)
		return s.collect(ids)
	}
	return s.collect(s.live)
}

// Select returns, in insertion order, the stored documents matching filter.
func (s *DocumentStore) Select(filter domain.Filter) []domain.Document {
	candidates := s.Candidates(filter)
	out := candidates[:0]
	for _, doc := range candidates {
		if query.Match(doc, filter) {
			out = append(out, doc)
		}
	}
	return out
}

func (s *DocumentStore) collect(ids *roaring.Bitmap) []domain.Document {
	docs := make([]domain.Document, 0, ids.GetCardinality())
	it := ids.Iterator()
	for it.HasNext() {
		if e, exists := s.bySeq[it.Next()]; exists {
			docs = append(docs, e.doc)
		}
	}
	return docs
}

// CreateIndex builds an index on fieldPath over the current documents.
func (s *DocumentStore) CreateIndex(fieldPath string) error {
	index, err := s.indexes.CreateIndex(fieldPath)
	if err != nil {
		return err
	}
	it := s.live.Iterator()
	for it.HasNext() {
		seq := it.Next()
		index.Add(seq, s.bySeq[seq].doc)
	}
	return nil
}

// DropIndex removes the index on fieldPath.
func (s *DocumentStore) DropIndex(fieldPath string) error {
	return s.indexes.DropIndex(fieldPath)
}

// Indexes returns the indexed field paths, sorted.
func (s *DocumentStore) Indexes() []string {
	return s.indexes.GetIndexes()
}

// Clone returns a store that can be mutated without affecting s. Documents
// are shared because stored documents are immutable.
func (s *DocumentStore) Clone() *DocumentStore {
	out := &DocumentStore{
		byID:    make(map[string]*entry, len(s.byID)),
		bySeq:   make(map[uint32]*entry, len(s.bySeq)),
		live:    s.live.Clone(),
		nextSeq: s.nextSeq,
		indexes: s.indexes.Clone(),
		newID:   s.newID,
	}
	for id, e := range s.byID {
		out.byID[id] = e
		out.bySeq[e.seq] = e
	}
	return out
}
