package storage

import (
	"fmt"
	"iter"
	"time"

	"github.com/adfharrison1/hippodb/pkg/domain"
	"github.com/adfharrison1/hippodb/pkg/query"
)

// Insert stores a copy of doc, creating the collection if it does not exist,
// and returns the stored document including its _id.
func (se *StorageEngine) Insert(collName string, doc domain.Document) (stored domain.Document, err error) {
	start := time.Now()
	defer func() { se.observe("insert", collName, start, err) }()

	normalized, err := domain.NormalizeDocument(doc)
	if err != nil {
		return nil, err
	}

	err = se.mutate(collName, true, func(store *DocumentStore) error {
		id, err := store.Insert(normalized)
		if err != nil {
			return err
		}
		d, _ := store.Get(id)
		stored = d.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// BatchInsert stores every document or none of them with a single flush.
func (se *StorageEngine) BatchInsert(collName string, docs []domain.Document) (stored []domain.Document, err error) {
	start := time.Now()
	defer func() { se.observe("batch_insert", collName, start, err) }()

	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: batch is empty", domain.ErrInvalidDocument)
	}

	normalized := make([]domain.Document, len(docs))
	for i, doc := range docs {
		n, err := domain.NormalizeDocument(doc)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		normalized[i] = n
	}

	err = se.mutate(collName, true, func(store *DocumentStore) error {
		stored = make([]domain.Document, 0, len(normalized))
		for i, doc := range normalized {
			id, err := store.Insert(doc)
			if err != nil {
				return fmt.Errorf("document %d: %w", i, err)
			}
			d, _ := store.Get(id)
			stored = append(stored, d.Clone())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// GetById retrieves a copy of a document by its ID
func (se *StorageEngine) GetById(collName, docId string) (doc domain.Document, err error) {
	start := time.Now()
	defer func() { se.observe("get", collName, start, err) }()

	err = se.read(collName, func(store *DocumentStore) error {
		d, exists := store.Get(docId)
		if !exists {
			return fmt.Errorf("%w: document %s", domain.ErrNotFound, docId)
		}
		doc = d.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Exists reports whether a document with the given ID is stored.
func (se *StorageEngine) Exists(collName, docId string) (found bool, err error) {
	start := time.Now()
	defer func() { se.observe("exists", collName, start, err) }()

	err = se.read(collName, func(store *DocumentStore) error {
		_, found = store.Get(docId)
		return nil
	})
	return found, err
}

// ReplaceById replaces the whole document stored under docId. An _id in doc
// is ignored; the stored document keeps docId.
func (se *StorageEngine) ReplaceById(collName, docId string, doc domain.Document) (stored domain.Document, err error) {
	start := time.Now()
	defer func() { se.observe("replace", collName, start, err) }()

	replacement, err := normalizeWithoutID(doc)
	if err != nil {
		return nil, err
	}

	err = se.mutate(collName, false, func(store *DocumentStore) error {
		if err := store.Replace(docId, replacement); err != nil {
			return err
		}
		stored = replacement.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// UpdateById merges the top-level fields of updates into the stored
// document. An _id in updates is ignored.
func (se *StorageEngine) UpdateById(collName, docId string, updates domain.Document) (stored domain.Document, err error) {
	start := time.Now()
	defer func() { se.observe("update", collName, start, err) }()

	changes, err := normalizeWithoutID(updates)
	if err != nil {
		return nil, err
	}

	err = se.mutate(collName, false, func(store *DocumentStore) error {
		current, exists := store.Get(docId)
		if !exists {
			return fmt.Errorf("%w: document %s", domain.ErrNotFound, docId)
		}
		merged := make(domain.Document, len(current)+len(changes))
		for k, v := range current {
			merged[k] = v
		}
		for k, v := range changes {
			merged[k] = v
		}
		if err := store.Replace(docId, merged); err != nil {
			return err
		}
		stored = merged.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// DeleteById removes a document by its ID and returns what was removed.
func (se *StorageEngine) DeleteById(collName, docId string) (removed domain.Document, err error) {
	start := time.Now()
	defer func() { se.observe("delete", collName, start, err) }()

	var doc domain.Document
	err = se.mutate(collName, false, func(store *DocumentStore) error {
		doc, _ = store.Get(docId)
		return store.Delete(docId)
	})
	if err != nil {
		return nil, err
	}
	return doc.Clone(), nil
}

// ListIDs returns the identifiers of every document in a collection, in
// insertion order.
func (se *StorageEngine) ListIDs(collName string) (docIds []string, err error) {
	start := time.Now()
	defer func() { se.observe("list_ids", collName, start, err) }()

	err = se.read(collName, func(store *DocumentStore) error {
		docIds = store.IDs()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docIds, nil
}

// Query returns copies of the documents matching filter, in insertion
// order. A nil filter matches every document.
func (se *StorageEngine) Query(collName string, filter domain.Filter) (docs []domain.Document, err error) {
	start := time.Now()
	defer func() { se.observe("query", collName, start, err) }()

	seq, err := se.Scan(collName, filter)
	if err != nil {
		return nil, err
	}
	docs = []domain.Document{}
	for doc := range seq {
		docs = append(docs, doc)
	}
	return docs, nil
}

// Scan returns a lazy, restartable sequence of copies of the documents
// matching filter. Each iteration works on the collection as it was when
// the iteration started; the filter is evaluated as documents are yielded.
// A missing collection is reported immediately; one dropped before an
// iteration starts yields nothing.
func (se *StorageEngine) Scan(collName string, filter domain.Filter) (iter.Seq[domain.Document], error) {
	coll, err := se.getCollection(collName)
	if err != nil {
		return nil, err
	}
	if err := withCollectionReadLock(coll, func() error { return nil }); err != nil {
		return nil, err
	}

	return func(yield func(domain.Document) bool) {
		var candidates []domain.Document
		coll.lock.RLock()
		if !coll.dropped {
			candidates = coll.store.Candidates(filter)
		}
		coll.lock.RUnlock()

		for _, doc := range candidates {
			if !query.Match(doc, filter) {
				continue
			}
			if !yield(doc.Clone()) {
				return
			}
		}
	}, nil
}

// FindAll returns one page of the documents matching filter, in insertion
// order.
func (se *StorageEngine) FindAll(collName string, filter domain.Filter, options *domain.PaginationOptions) (result *domain.PaginationResult, err error) {
	start := time.Now()
	defer func() { se.observe("find", collName, start, err) }()

	if options == nil {
		options = domain.DefaultPaginationOptions()
	}
	if err := options.Validate(); err != nil {
		return nil, err
	}

	var matches []domain.Document
	err = se.read(collName, func(store *DocumentStore) error {
		matches = store.Select(filter)
		return nil
	})
	if err != nil {
		return nil, err
	}

	result, err = applyPagination(matches, options)
	if err != nil {
		return nil, err
	}
	for i, doc := range result.Documents {
		result.Documents[i] = doc.Clone()
	}
	return result, nil
}

// normalizeWithoutID validates caller input for replace and update, where
// the identifier comes from the request path instead of the body.
func normalizeWithoutID(doc domain.Document) (domain.Document, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: document must be a JSON object", domain.ErrInvalidDocument)
	}
	body := make(map[string]interface{}, len(doc))
	for k, v := range doc {
		if k != domain.IDField {
			body[k] = v
		}
	}
	return domain.NormalizeDocument(body)
}

// applyPagination applies pagination to a slice of documents
func applyPagination(docs []domain.Document, options *domain.PaginationOptions) (*domain.PaginationResult, error) {
	// Handle cursor-based pagination
	if options.After != "" || options.Before != "" {
		return applyCursorPagination(docs, options)
	}

	// Handle offset-based pagination
	return applyOffsetPagination(docs, options), nil
}

func pageLimit(options *domain.PaginationOptions) int {
	limit := options.Limit
	if limit <= 0 {
		limit = domain.DefaultPaginationOptions().Limit
	}
	if options.MaxLimit > 0 && limit > options.MaxLimit {
		limit = options.MaxLimit
	}
	return limit
}

func cursorFor(doc domain.Document) string {
	id, _ := doc.ID()
	encoded, _ := domain.EncodeCursor(&domain.Cursor{ID: id})
	return encoded
}

// indexOfCursor returns the position of the cursor document, or -1.
func indexOfCursor(docs []domain.Document, encoded string) (int, error) {
	cursor, err := domain.DecodeCursor(encoded)
	if err != nil {
		return 0, err
	}
	for i, doc := range docs {
		if id, _ := doc.ID(); id == cursor.ID {
			return i, nil
		}
	}
	return -1, nil
}

// applyCursorPagination applies cursor-based pagination
func applyCursorPagination(docs []domain.Document, options *domain.PaginationOptions) (*domain.PaginationResult, error) {
	result := &domain.PaginationResult{
		Documents: []domain.Document{},
		Total:     int64(len(docs)),
	}

	startIndex := 0
	endIndex := len(docs)

	if options.After != "" {
		i, err := indexOfCursor(docs, options.After)
		if err != nil {
			return nil, fmt.Errorf("invalid after cursor: %w", err)
		}
		// A cursor whose document has since been deleted or stopped
		// matching yields an empty page.
		if i < 0 {
			return result, nil
		}
		startIndex = i + 1
	}

	if options.Before != "" {
		i, err := indexOfCursor(docs, options.Before)
		if err != nil {
			return nil, fmt.Errorf("invalid before cursor: %w", err)
		}
		if i < 0 {
			return result, nil
		}
		endIndex = i
	}

	if startIndex > endIndex {
		startIndex = endIndex
	}

	limit := pageLimit(options)
	if options.Before != "" && options.After == "" {
		// Paging backwards: take the page closest to the cursor.
		if endIndex-limit > startIndex {
			startIndex = endIndex - limit
		}
	} else if startIndex+limit < endIndex {
		endIndex = startIndex + limit
	}

	result.HasPrev = startIndex > 0
	result.HasNext = endIndex < len(docs)
	result.Documents = docs[startIndex:endIndex]

	if len(result.Documents) > 0 {
		if result.HasNext {
			result.NextCursor = cursorFor(result.Documents[len(result.Documents)-1])
		}
		if result.HasPrev {
			result.PrevCursor = cursorFor(result.Documents[0])
		}
	}

	return result, nil
}

// applyOffsetPagination applies offset-based pagination
func applyOffsetPagination(docs []domain.Document, options *domain.PaginationOptions) *domain.PaginationResult {
	result := &domain.PaginationResult{
		Documents: []domain.Document{},
		Total:     int64(len(docs)),
	}

	startIndex := options.Offset
	endIndex := startIndex + pageLimit(options)

	// Check bounds
	if startIndex >= len(docs) {
		result.HasPrev = startIndex > 0 && len(docs) > 0
		return result
	}

	if endIndex >= len(docs) {
		endIndex = len(docs)
	} else {
		result.HasNext = true
	}
	result.HasPrev = startIndex > 0

	result.Documents = docs[startIndex:endIndex]

	if result.HasNext {
		result.NextCursor = cursorFor(result.Documents[len(result.Documents)-1])
	}
	if result.HasPrev {
		result.PrevCursor = cursorFor(result.Documents[0])
	}

	return result
}
