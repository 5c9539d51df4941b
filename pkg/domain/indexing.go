package domain

// IndexEngine defines the interface for indexing operations
type IndexEngine interface {
	CreateIndex(collName, fieldPath string) error
	DropIndex(collName, fieldPath string) error
	GetIndexes(collName string) ([]string, error)
}
