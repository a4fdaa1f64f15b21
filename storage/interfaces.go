package storage

import (
	"context"

	"github.com/poiesic/wordhoard/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// FindSimilar finds entries in partition similar to the given vector.
	// Returns entries with cosine similarity >= minSimilarity, up to limit results.
	// Results are ordered by similarity score (highest first).
	FindSimilar(ctx context.Context, partition string, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error)

	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// EntryRepository provides operations for managing dictionary entries.
type EntryRepository interface {
	Repository

	// AddEntries stores one or more entries.
	// Entries with ID=0 get a content-based ID (see core.Entry.ContentKey).
	// Sets InsertedAt if not already set. Re-adding an existing entry replaces it.
	AddEntries(ctx context.Context, entries ...*core.Entry) ([]*core.Entry, error)

	// GetEntry retrieves a single entry by ID.
	// Returns ErrNotFound if the entry doesn't exist.
	GetEntry(ctx context.Context, id core.ID) (*core.Entry, error)

	// FindEntriesByForm returns every entry in partition whose Form matches exactly.
	FindEntriesByForm(ctx context.Context, partition, form string) ([]*core.Entry, error)

	// CountEntries returns the number of entries in partition.
	CountEntries(ctx context.Context, partition string) (int, error)
}
