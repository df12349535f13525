// Package metadata resolves bibliographic metadata for an ISBN from
// external book-data providers, falling back through them in order.
package metadata

import (
	"context"
	"time"

	"github.com/lepinkainen/bookscan/internal/genre"
)

// providerTimeout bounds a single provider attempt so a slow upstream
// cannot stall the scan path indefinitely.
const providerTimeout = 10 * time.Second

// Metadata is the normalized record a provider produces for one ISBN.
// Every field is optional; absent values stay zero.
type Metadata struct {
	Title      string
	Author     string
	Publisher  string
	CoverURL   string
	Categories []string
	Genre      genre.Genre
}

// Provider fetches book metadata from one external source. Each
// implementation handles its own rate limiting and maps its response
// shape to Metadata.
type Provider interface {
	// Name returns the human-readable name of the source.
	Name() string

	// Lookup retrieves metadata for the given ISBN. Returns nil, nil when
	// the source has no record, so the next provider can try.
	Lookup(ctx context.Context, isbn string) (*Metadata, error)
}
