package storage

import (
	"errors"
	"fmt"
	"log"
	"runtime"
	"slices"
	"time"

	"github.com/adfharrison1/hippodb/pkg/domain"
)

// Stats returns engine and per-collection statistics
func (se *StorageEngine) Stats() map[string]interface{} {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	colls := se.snapshotCollections()
	infos := make(map[string]CollectionInfo, len(colls))
	var documents int64
	for _, coll := range colls {
		info := coll.info()
		infos[coll.name] = info
		documents += info.DocumentCount
	}

	return map[string]interface{}{
		"alloc_mb":          m.Alloc / 1024 / 1024,
		"total_alloc_mb":    m.TotalAlloc / 1024 / 1024,
		"sys_mb":            m.Sys / 1024 / 1024,
		"num_goroutines":    runtime.NumGoroutine(),
		"data_dir":          se.dataDir,
		"format":            se.codec.Name(),
		"collections":       len(colls),
		"documents":         documents,
		"collection_detail": infos,
	}
}

// snapshotCollections returns the persisted collections without holding
// the registry lock afterwards.
func (se *StorageEngine) snapshotCollections() []*collection {
	se.mu.RLock()
	defer se.mu.RUnlock()
	colls := make([]*collection, 0, len(se.collections))
	for _, coll := range se.collections {
		if coll.persisted.Load() {
			colls = append(colls, coll)
		}
	}
	return colls
}

// VerifyCollections reloads every artifact and checks that it holds the
// same documents, in the same order, as memory. Mismatches are logged and
// returned; they indicate the data directory was changed underneath the
// engine.
func (se *StorageEngine) VerifyCollections() error {
	var errs []error
	for _, coll := range se.snapshotCollections() {
		err := withCollectionReadLock(coll, func() error {
			return se.verifyCollection(coll)
		})
		if errors.Is(err, domain.ErrNotFound) {
			// Dropped since the snapshot.
			continue
		}
		se.metrics.OnVerify(coll.name, err)
		if err != nil {
			log.Printf("ERROR: verification of collection %s failed: %v", coll.name, err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// verifyCollection runs with the collection read lock held.
func (se *StorageEngine) verifyCollection(coll *collection) error {
	art, err := se.persistence.Load(coll.name)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%w: %s: artifact is missing", domain.ErrCorrupt, coll.name)
	}
	if err != nil {
		return err
	}
	onDisk, err := se.buildStore(art)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrCorrupt, coll.name, err)
	}
	if !slices.Equal(onDisk.IDs(), coll.store.IDs()) {
		return fmt.Errorf("%w: %s: documents on disk differ from memory", domain.ErrCorrupt, coll.name)
	}
	if !slices.Equal(onDisk.Indexes(), coll.store.Indexes()) {
		return fmt.Errorf("%w: %s: indexes on disk differ from memory", domain.ErrCorrupt, coll.name)
	}
	return nil
}

// StartBackgroundWorkers starts the periodic verification worker
func (se *StorageEngine) StartBackgroundWorkers() {
	if se.verifyInterval <= 0 {
		return
	}

	se.backgroundWg.Add(1)
	go func() {
		defer se.backgroundWg.Done()
		ticker := time.NewTicker(se.verifyInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				se.VerifyCollections()
			case <-se.stopChan:
				return
			}
		}
	}()
}

// StopBackgroundWorkers stops background workers
func (se *StorageEngine) StopBackgroundWorkers() {
	select {
	case <-se.stopChan:
		// Channel already closed, do nothing
	default:
		close(se.stopChan)
	}
	se.backgroundWg.Wait()
}
