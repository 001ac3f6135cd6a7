package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Knowledge() KnowledgeRepository

	// Close releases the underlying storage handle
	Close() error
}
