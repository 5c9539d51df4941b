package storage

import (
	"context"

	"github.com/adfharrison1/hippodb/pkg/domain"
)

// FindAllStream streams documents in a collection that match the given filter criteria
// If filter is nil, streams all documents
func (se *StorageEngine) FindAllStream(collName string, filter domain.Filter) (<-chan domain.Document, error) {
	return se.FindAllStreamContext(context.Background(), collName, filter)
}

// FindAllStreamContext is FindAllStream with cancellation: the channel is
// closed once every match has been sent or ctx is done.
func (se *StorageEngine) FindAllStreamContext(ctx context.Context, collName string, filter domain.Filter) (<-chan domain.Document, error) {
	seq, err := se.Scan(collName, filter)
	if err != nil {
		return nil, err
	}

	out := make(chan domain.Document, 100)
	go func() {
		defer close(out)
		for doc := range seq {
			select {
			case out <- doc:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
