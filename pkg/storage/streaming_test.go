package storage

import (
	"context"
	"testing"
	"time"

	"github.com/adfharrison1/hippodb/pkg/domain"
	"github.com/adfharrison1/hippodb/pkg/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUsers(t *testing.T, engine *StorageEngine) {
	t.Helper()
	_, err := engine.BatchInsert("users", []domain.Document{
		{"_id": "u1", "name": "Alice", "age": 30, "city": "New York"},
		{"_id": "u2", "name": "Bob", "age": 25, "city": "San Francisco"},
		{"_id": "u3", "name": "Charlie", "age": 35, "city": "Chicago"},
	})
	require.NoError(t, err)
}

func TestStorageEngine_FindAllStream_Basic(t *testing.T) {
	engine, _ := newTestEngine(t)
	seedUsers(t, engine)

	docChan, err := engine.FindAllStream("users", nil)
	require.NoError(t, err)

	// Collect all documents from the stream
	receivedDocs := make([]domain.Document, 0)
	for doc := range docChan {
		receivedDocs = append(receivedDocs, doc)
	}
	assert.Equal(t, []string{"u1", "u2", "u3"}, ids(receivedDocs))

	docChan, err = engine.FindAllStream("users", query.Field("age", query.OpGte, 30))
	require.NoError(t, err)
	receivedDocs = receivedDocs[:0]
	for doc := range docChan {
		receivedDocs = append(receivedDocs, doc)
	}
	assert.Equal(t, []string{"u1", "u3"}, ids(receivedDocs))

	_, err = engine.FindAllStream("missing", nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStorageEngine_FindAllStream_Cancel(t *testing.T) {
	engine, _ := newTestEngine(t)
	docs := make([]domain.Document, 500)
	for i := range docs {
		docs[i] = domain.Document{"n": i}
	}
	_, err := engine.BatchInsert("bulk", docs)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	docChan, err := engine.FindAllStreamContext(ctx, "bulk", nil)
	require.NoError(t, err)

	<-docChan
	cancel()

	// The producer stops and closes the channel without the consumer
	// draining all 500 documents.
	done := make(chan struct{})
	go func() {
		for range docChan {
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("stream was not closed after cancellation")
	}
}

func TestStorageEngine_ScanIsLazyAndRestartable(t *testing.T) {
	engine, _ := newTestEngine(t)
	seedUsers(t, engine)

	seq, err := engine.Scan("users", query.Field("age", query.OpGt, 20))
	require.NoError(t, err)

	// Stopping early is fine
	var first []string
	for doc := range seq {
		id, _ := doc.ID()
		first = append(first, id)
		break
	}
	assert.Equal(t, []string{"u1"}, first)

	// Each iteration sees the collection as it is when it starts
	_, err = engine.Insert("users", domain.Document{"_id": "u4", "age": 40})
	require.NoError(t, err)

	var all []string
	for doc := range seq {
		id, _ := doc.ID()
		all = append(all, id)
		// Writes during iteration are not observed by this iteration
		_, err := engine.UpdateById("users", "u3", domain.Document{"age": 1})
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"u1", "u2", "u3", "u4"}, all)

	// Dropping the collection makes later iterations empty
	require.NoError(t, engine.DropCollection("users"))
	count := 0
	for range seq {
		count++
	}
	assert.Zero(t, count)
}
