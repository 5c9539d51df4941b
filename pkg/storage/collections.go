package storage

import (
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/adfharrison1/hippodb/pkg/domain"
)

func errCollectionNotFound(collName string) error {
	return fmt.Errorf("%w: collection %s", domain.ErrNotFound, collName)
}

// getCollection returns a registered collection. The caller still has to
// check dropped under the collection lock.
func (se *StorageEngine) getCollection(collName string) (*collection, error) {
	if err := ValidateCollectionName(collName); err != nil {
		return nil, err
	}
	se.mu.RLock()
	coll, exists := se.collections[collName]
	se.mu.RUnlock()
	if !exists {
		return nil, errCollectionNotFound(collName)
	}
	return coll, nil
}

// lockForWrite returns a collection with its write lock held. With create
// set, a missing collection is registered first; it stays locked until its
// first flush has either succeeded or been abandoned.
func (se *StorageEngine) lockForWrite(collName string, create bool) (*collection, error) {
	coll, err := se.getCollection(collName)
	if err == nil {
		coll.lock.Lock()
		return coll, nil
	}
	if !create || ValidateCollectionName(collName) != nil {
		return nil, err
	}

	se.mu.Lock()
	if existing, exists := se.collections[collName]; exists {
		se.mu.Unlock()
		existing.lock.Lock()
		return existing, nil
	}
	coll = newCollection(collName, NewDocumentStore(se.newID))
	coll.lock.Lock()
	se.collections[collName] = coll
	se.mu.Unlock()
	return coll, nil
}

// unregister removes coll from the registry if it is still the registered
// instance for its name.
func (se *StorageEngine) unregister(coll *collection) {
	se.mu.Lock()
	if se.collections[coll.name] == coll {
		delete(se.collections, coll.name)
	}
	n := len(se.collections)
	se.mu.Unlock()
	se.metrics.OnCollections(n)
}

// CreateCollection creates an empty collection and persists its artifact.
func (se *StorageEngine) CreateCollection(collName string) (err error) {
	start := time.Now()
	defer func() { se.observe("create_collection", collName, start, err) }()

	if err := ValidateCollectionName(collName); err != nil {
		return err
	}

	var coll *collection
	for coll == nil {
		se.mu.Lock()
		existing, exists := se.collections[collName]
		if !exists {
			coll = newCollection(collName, NewDocumentStore(se.newID))
			coll.lock.Lock()
			se.collections[collName] = coll
			se.mu.Unlock()
			break
		}
		se.mu.Unlock()

		// A registered collection may still be waiting on its first flush.
		// Wait for it; if that flush failed the name is free again.
		existing.lock.Lock()
		dropped := existing.dropped
		existing.lock.Unlock()
		if !dropped {
			return fmt.Errorf("%w: collection %s", domain.ErrAlreadyExists, collName)
		}
		se.unregister(existing)
	}

	err = se.flush(collName, coll.store)
	if err != nil {
		coll.dropped = true
	} else {
		coll.persisted.Store(true)
	}
	coll.lock.Unlock()
	if err != nil {
		se.unregister(coll)
		return err
	}

	se.metrics.OnCollections(len(se.ListCollections()))
	log.Printf("INFO: created collection %s", collName)
	return nil
}

// DropCollection removes a collection and its artifact. Operations already
// holding the collection lock finish first; later ones see ErrNotFound.
func (se *StorageEngine) DropCollection(collName string) (err error) {
	start := time.Now()
	defer func() { se.observe("drop_collection", collName, start, err) }()

	if err := ValidateCollectionName(collName); err != nil {
		return err
	}

	se.mu.Lock()
	defer se.mu.Unlock()
	coll, exists := se.collections[collName]
	if !exists {
		return errCollectionNotFound(collName)
	}

	coll.lock.Lock()
	defer coll.lock.Unlock()
	if coll.dropped {
		return errCollectionNotFound(collName)
	}
	if err := se.persistence.Remove(collName); err != nil {
		log.Printf("ERROR: failed to remove collection %s: %v", collName, err)
		return err
	}
	coll.dropped = true
	delete(se.collections, collName)

	se.metrics.OnCollections(len(se.collections))
	log.Printf("INFO: dropped collection %s", collName)
	return nil
}

// ListCollections returns the names of all collections, sorted.
func (se *StorageEngine) ListCollections() []string {
	se.mu.RLock()
	defer se.mu.RUnlock()

	names := make([]string, 0, len(se.collections))
	for name, coll := range se.collections {
		if coll.persisted.Load() {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// GetCollectionInfo describes one collection.
func (se *StorageEngine) GetCollectionInfo(collName string) (CollectionInfo, error) {
	coll, err := se.getCollection(collName)
	if err != nil {
		return CollectionInfo{}, err
	}
	return coll.info(), nil
}
