package api

import (
	"github.com/adfharrison1/hippodb/pkg/domain"
)

// DefaultMaxBatchSize caps the number of documents in one batch insert.
const DefaultMaxBatchSize = 1000

// Handler provides HTTP handlers for the database API
type Handler struct {
	storage  domain.StorageEngine
	indexer  domain.IndexEngine
	maxBatch int
}

type HandlerOption func(*Handler)

// WithBatchLimit overrides DefaultMaxBatchSize.
func WithBatchLimit(n int) HandlerOption {
	return func(h *Handler) {
		if n > 0 {
			h.maxBatch = n
		}
	}
}

// NewHandler creates a new API handler with dependency injection
func NewHandler(storage domain.StorageEngine, indexer domain.IndexEngine, options ...HandlerOption) *Handler {
	h := &Handler{
		storage:  storage,
		indexer:  indexer,
		maxBatch: DefaultMaxBatchSize,
	}
	for _, option := range options {
		option(h)
	}
	return h
}
