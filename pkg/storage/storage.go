package storage

import (
	"fmt"
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/adfharrison1/hippodb/pkg/domain"
)

// StorageEngine is an embedded document database: a set of named
// collections, each held in memory and persisted to its own artifact after
// every successful mutation.
type StorageEngine struct {
	mu          sync.RWMutex
	collections map[string]*collection

	persistence *Persistence
	metrics     MetricsObserver

	// Configuration
	dataDir         string
	codec           Codec
	verifyInterval  time.Duration
	recoveryWorkers int
	newID           func() string

	// Background workers
	backgroundWg sync.WaitGroup
	stopChan     chan struct{}
	closeOnce    sync.Once
}

var _ domain.DatabaseEngine = (*StorageEngine)(nil)

// unknownCollection is the metrics label for failed operations that did not
// name an existing collection.
const unknownCollection = "unknown"

// NewStorageEngine opens the data directory, removes leftovers of
// interrupted writes and loads every collection artifact. Any artifact that
// cannot be loaded fails the whole open.
func NewStorageEngine(options ...StorageOption) (*StorageEngine, error) {
	engine := &StorageEngine{
		collections:     make(map[string]*collection),
		metrics:         &NoopMetricsObserver{},
		dataDir:         ".",
		codec:           JSONCodec{},
		recoveryWorkers: runtime.GOMAXPROCS(0),
		newID:           uuid.NewString,
		stopChan:        make(chan struct{}),
	}

	// Apply options
	for _, option := range options {
		option(engine)
	}

	engine.persistence = NewPersistence(engine.dataDir, engine.codec)
	if err := engine.persistence.CheckWritable(); err != nil {
		return nil, fmt.Errorf("data directory %s is not usable: %w", engine.dataDir, err)
	}
	if err := engine.recover(); err != nil {
		return nil, err
	}

	engine.StartBackgroundWorkers()
	return engine, nil
}

// recover rebuilds the in-memory state from the data directory.
func (se *StorageEngine) recover() error {
	start := time.Now()

	removed, err := se.persistence.CleanupTempFiles()
	if err != nil {
		return err
	}
	for _, name := range removed {
		log.Printf("WARN: removed incomplete write %s", name)
	}

	names, err := se.persistence.ListCollections()
	if err != nil {
		return err
	}

	loaded := make([]*collection, len(names))
	var g errgroup.Group
	g.SetLimit(se.recoveryWorkers)
	for i, name := range names {
		g.Go(func() error {
			coll, err := se.loadCollection(name)
			if err != nil {
				return err
			}
			loaded[i] = coll
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("recovery failed: %w", err)
	}

	docs := 0
	for _, coll := range loaded {
		se.collections[coll.name] = coll
		docs += coll.store.Len()
	}
	se.metrics.OnCollections(len(se.collections))
	log.Printf("INFO: recovered %d collections (%d documents) from %s in %v",
		len(loaded), docs, se.dataDir, time.Since(start))
	return nil
}

// loadCollection reads one artifact and rebuilds its store and indexes.
func (se *StorageEngine) loadCollection(name string) (*collection, error) {
	art, err := se.persistence.Load(name)
	if err != nil {
		return nil, err
	}
	store, err := se.buildStore(art)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrCorrupt, name, err)
	}
	coll := newCollection(name, store)
	coll.persisted.Store(true)
	return coll, nil
}

func (se *StorageEngine) buildStore(art *Artifact) (*DocumentStore, error) {
	store := NewDocumentStore(se.newID)
	for i, raw := range art.Documents {
		doc, err := domain.NormalizeDocument(raw)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		if _, ok := doc.ID(); !ok {
			return nil, fmt.Errorf("document %d has no %s", i, domain.IDField)
		}
		if _, err := store.Insert(doc); err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
	}
	for _, field := range art.Indexes {
		if err := store.CreateIndex(field); err != nil {
			return nil, fmt.Errorf("index %s: %w", field, err)
		}
	}
	return store, nil
}

// artifact captures the state of a store for persistence.
func artifact(name string, store *DocumentStore) *Artifact {
	docs := store.Documents()
	art := &Artifact{
		Format:    ArtifactFormat,
		Name:      name,
		Indexes:   store.Indexes(),
		Documents: make([]map[string]interface{}, len(docs)),
	}
	for i, doc := range docs {
		art.Documents[i] = doc
	}
	return art
}

// flush persists the given state of a collection.
func (se *StorageEngine) flush(name string, store *DocumentStore) error {
	start := time.Now()
	n, err := se.persistence.Flush(name, artifact(name, store))
	se.metrics.OnFlush(name, time.Since(start), n, err)
	if err != nil {
		log.Printf("ERROR: failed to persist collection %s: %v", name, err)
	}
	return err
}

// mutate applies fn to a copy of the collection's store, persists the copy
// and only then makes it visible. If fn or the flush fails the collection is
// left exactly as it was. With create set, a missing collection is created
// as part of the same flush.
func (se *StorageEngine) mutate(collName string, create bool, fn func(store *DocumentStore) error) error {
	for {
		coll, err := se.lockForWrite(collName, create)
		if err != nil {
			return err
		}
		if coll.dropped {
			coll.lock.Unlock()
			if create {
				// Dropped between lookup and lock; register a fresh one.
				se.unregister(coll)
				continue
			}
			return errCollectionNotFound(collName)
		}

		created := !coll.persisted.Load()
		err = se.apply(coll, fn)
		abandoned := err != nil && created
		if abandoned {
			coll.dropped = true
		}
		coll.lock.Unlock()
		if abandoned {
			se.unregister(coll)
		} else if created && err == nil {
			se.metrics.OnCollections(len(se.ListCollections()))
			log.Printf("INFO: created collection %s", coll.name)
		}
		return err
	}
}

// apply runs with the collection write lock held.
func (se *StorageEngine) apply(coll *collection, fn func(store *DocumentStore) error) error {
	next := coll.store.Clone()
	if err := fn(next); err != nil {
		return err
	}
	if err := se.flush(coll.name, next); err != nil {
		return err
	}
	coll.store = next
	coll.persisted.Store(true)
	coll.touch()
	return nil
}

// read runs fn against the current store of an existing collection.
func (se *StorageEngine) read(collName string, fn func(store *DocumentStore) error) error {
	coll, err := se.getCollection(collName)
	if err != nil {
		return err
	}
	return withCollectionReadLock(coll, func() error {
		return fn(coll.store)
	})
}

// observe reports the outcome of a public operation.
// Failed operations on names that are not registered collections are
// reported under unknownCollection so callers cannot grow the label set.
func (se *StorageEngine) observe(op, collName string, start time.Time, err error) {
	if err != nil && !se.registered(collName) {
		collName = unknownCollection
	}
	se.metrics.OnOperation(op, collName, time.Since(start), err)
}

func (se *StorageEngine) registered(collName string) bool {
	se.mu.RLock()
	defer se.mu.RUnlock()
	_, exists := se.collections[collName]
	return exists
}

// Close stops background workers. Every acknowledged write is already on
// disk, so there is nothing to flush.
func (se *StorageEngine) Close() error {
	se.closeOnce.Do(func() {
		se.StopBackgroundWorkers()
		log.Printf("INFO: storage engine closed")
	})
	return nil
}

// DataDir returns the data directory.
func (se *StorageEngine) DataDir() string {
	return se.dataDir
}
