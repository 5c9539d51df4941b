package storage

import (
	"sync"
	"sync/atomic"
)

// LockState is the observable state of a CollectionLock.
type LockState int

const (
	LockIdle LockState = iota
	LockReading
	LockWriting
)

func (s LockState) String() string {
	switch s {
	case LockReading:
		return "reading"
	case LockWriting:
		return "writing"
	default:
		return "idle"
	}
}

// CollectionLock provides per-collection concurrency control: any number of
// readers or a single writer. Locks of different collections are independent.
type CollectionLock struct {
	mu      sync.RWMutex
	readers atomic.Int32
	writing atomic.Bool
}

// RLock blocks until no writer holds the lock.
func (l *CollectionLock) RLock() {
	l.mu.RLock()
	l.readers.Add(1)
}

// RUnlock releases a read hold.
func (l *CollectionLock) RUnlock() {
	l.readers.Add(-1)
	l.mu.RUnlock()
}

// Lock blocks until the lock is idle, then holds it exclusively.
func (l *CollectionLock) Lock() {
	l.mu.Lock()
	l.writing.Store(true)
}

// Unlock releases the exclusive hold.
func (l *CollectionLock) Unlock() {
	l.writing.Store(false)
	l.mu.Unlock()
}

// State reports the current state and, while reading, the number of readers.
// The answer is a snapshot and may be stale by the time it is used.
func (l *CollectionLock) State() (LockState, int) {
	if l.writing.Load() {
		return LockWriting, 0
	}
	if n := int(l.readers.Load()); n > 0 {
		return LockReading, n
	}
	return LockIdle, 0
}

// withCollectionReadLock executes a function with a read lock on the specified collection
func withCollectionReadLock(c *collection, fn func() error) error {
	c.lock.RLock()
	defer c.lock.RUnlock()
	if c.dropped {
		return errCollectionNotFound(c.name)
	}
	return fn()
}
