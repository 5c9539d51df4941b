package storage

import (
	"log"
	"time"

	"github.com/adfharrison1/hippodb/pkg/domain"
	"github.com/adfharrison1/hippodb/pkg/query"
)

// CreateIndex creates an equality index on a field path of a collection and
// persists it with the collection.
func (se *StorageEngine) CreateIndex(collName, fieldPath string) (err error) {
	start := time.Now()
	defer func() { se.observe("create_index", collName, start, err) }()

	err = se.mutate(collName, false, func(store *DocumentStore) error {
		return store.CreateIndex(fieldPath)
	})
	if err == nil {
		log.Printf("INFO: created index on %s.%s", collName, fieldPath)
	}
	return err
}

// DropIndex removes an index from a collection
func (se *StorageEngine) DropIndex(collName, fieldPath string) (err error) {
	start := time.Now()
	defer func() { se.observe("drop_index", collName, start, err) }()

	err = se.mutate(collName, false, func(store *DocumentStore) error {
		return store.DropIndex(fieldPath)
	})
	if err == nil {
		log.Printf("INFO: dropped index on %s.%s", collName, fieldPath)
	}
	return err
}

// GetIndexes returns all indexed field paths of a collection
func (se *StorageEngine) GetIndexes(collName string) (indexes []string, err error) {
	err = se.read(collName, func(store *DocumentStore) error {
		indexes = store.Indexes()
		return nil
	})
	return indexes, err
}

// FindByIndex returns the documents whose indexed field equals value. It
// falls back to a scan when the field is not indexed.
func (se *StorageEngine) FindByIndex(collName, fieldPath string, value interface{}) ([]domain.Document, error) {
	path, err := query.ParsePath(fieldPath)
	if err != nil {
		return nil, err
	}
	normalized, err := domain.Normalize(value)
	if err != nil {
		return nil, err
	}
	return se.Query(collName, &query.Comparison{Path: path, Operator: query.OpEq, Value: normalized})
}
