package library

import "context"

// Store is the persistence contract the rest of the application depends
// on. Implementations must treat Create as atomic with respect to the
// ISBN uniqueness check: a second insert for the same ISBN returns
// ErrDuplicate even under concurrent scans.
type Store interface {
	// GetByID returns the book with the given id, or ErrNotFound.
	GetByID(ctx context.Context, id string) (*Book, error)

	// GetByISBN returns the book with the given ISBN, or ErrNotFound.
	GetByISBN(ctx context.Context, isbn string) (*Book, error)

	// Create inserts a new book, assigning its id and ScannedAt. When the
	// shell already carries a title, MetadataFetched is set immediately.
	// Returns ErrDuplicate if the ISBN is already cataloged.
	Create(ctx context.Context, shell Book) (*Book, error)

	// Patch applies all non-nil fields of p as one atomic update and
	// returns the updated book, or ErrNotFound. Patching a non-empty
	// title marks MetadataFetched; an empty patch never resets it.
	Patch(ctx context.Context, id string, p Patch) (*Book, error)

	// Delete removes the book with the given id, or returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// ListAll returns every book, most recently scanned first.
	ListAll(ctx context.Context) ([]Book, error)

	// ListByGenre returns books with the given genre, title ascending.
	ListByGenre(ctx context.Context, genre string) ([]Book, error)

	// Search matches a case-insensitive substring against title, author
	// and genre, and a raw substring against the ISBN.
	Search(ctx context.Context, query string) ([]Book, error)

	// Stats returns catalog summary counts.
	Stats(ctx context.Context) (Stats, error)

	// Close releases any resources held by the store.
	Close() error
}
