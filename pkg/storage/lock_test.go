package storage

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCollectionLock_States(t *testing.T) {
	var l CollectionLock

	state, n := l.State()
	assert.Equal(t, LockIdle, state)
	assert.Zero(t, n)

	l.RLock()
	l.RLock()
	state, n = l.State()
	assert.Equal(t, LockReading, state)
	assert.Equal(t, 2, n)
	assert.Equal(t, "reading", state.String())

	l.RUnlock()
	l.RUnlock()
	state, _ = l.State()
	assert.Equal(t, LockIdle, state)

	l.Lock()
	state, _ = l.State()
	assert.Equal(t, LockWriting, state)
	assert.Equal(t, "writing", state.String())
	l.Unlock()

	state, _ = l.State()
	assert.Equal(t, "idle", state.String())
}

func TestCollectionLock_WriterExcludesReaders(t *testing.T) {
	var l CollectionLock
	var inside atomic.Int32
	var violations atomic.Int32

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			l.Lock()
			if inside.Add(1) != 1 {
				violations.Add(1)
			}
			time.Sleep(time.Millisecond)
			inside.Add(-1)
			l.Unlock()
		}()
		go func() {
			defer wg.Done()
			l.RLock()
			if state, _ := l.State(); state == LockWriting {
				violations.Add(1)
			}
			l.RUnlock()
		}()
	}
	wg.Wait()

	assert.Zero(t, violations.Load())
}
