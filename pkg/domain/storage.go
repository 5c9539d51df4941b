package domain

import "iter"

// Filter is a predicate over a document. Implementations are pure: Match
// never fails and never mutates its argument.
type Filter interface {
	Match(doc Document) bool
}

// StorageEngine defines the interface for storage operations
// This is the core business interface that implementations must conform to
type StorageEngine interface {
	CreateCollection(collName string) error
	DropCollection(collName string) error
	ListCollections() []string

	Insert(collName string, doc Document) (Document, error)
	BatchInsert(collName string, docs []Document) ([]Document, error)
	GetById(collName, docId string) (Document, error)
	Exists(collName, docId string) (bool, error)
	ReplaceById(collName, docId string, doc Document) (Document, error)
	UpdateById(collName, docId string, updates Document) (Document, error)
	DeleteById(collName, docId string) (Document, error)
	ListIDs(collName string) ([]string, error)

	Query(collName string, filter Filter) ([]Document, error)
	Scan(collName string, filter Filter) (iter.Seq[Document], error)
	FindAll(collName string, filter Filter, options *PaginationOptions) (*PaginationResult, error)
	FindAllStream(collName string, filter Filter) (<-chan Document, error)

	Stats() map[string]interface{}
}

// DatabaseEngine combines StorageEngine and IndexEngine interfaces
type DatabaseEngine interface {
	StorageEngine
	IndexEngine
}
