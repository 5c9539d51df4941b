package storage

import (
	"sync/atomic"
	"time"
)

// CollectionInfo describes a collection for statistics.
type CollectionInfo struct {
	Name          string    `json:"name"`
	DocumentCount int64     `json:"document_count"`
	Indexes       []string  `json:"indexes"`
	LastModified  time.Time `json:"last_modified"`
	Lock          string    `json:"lock"`
}

// collection is a registered collection. store is replaced, never mutated,
// while lock is held for writing. A collection is persisted once its
// artifact exists; an unpersisted one is only visible to writers.
type collection struct {
	name         string
	lock         *CollectionLock
	store        *DocumentStore
	dropped      bool
	persisted    atomic.Bool
	lastModified time.Time
}

func newCollection(name string, store *DocumentStore) *collection {
	return &collection{
		name:         name,
		lock:         &CollectionLock{},
		store:        store,
		lastModified: time.Now(),
	}
}

// touch records a modification. Callers hold the write lock.
func (c *collection) touch() {
	c.lastModified = time.Now()
}

func (c *collection) info() CollectionInfo {
	state, _ := c.lock.State()
	c.lock.RLock()
	defer c.lock.RUnlock()
	return CollectionInfo{
		Name:          c.name,
		DocumentCount: int64(c.store.Len()),
		Indexes:       c.store.Indexes(),
		LastModified:  c.lastModified,
		Lock:          state.String(),
	}
}
