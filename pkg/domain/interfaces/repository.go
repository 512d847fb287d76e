package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Beer() BeerRepository

	// Close releases the underlying store connection
	Close() error
}
