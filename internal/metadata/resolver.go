package metadata

import (
	"context"
	"log/slog"
)

// Resolver tries an ordered list of providers until one returns metadata.
// Provider failures are logged and swallowed; a fully failed resolution
// is nil, never an error.
type Resolver struct {
	providers []Provider
}

// NewResolver creates a resolver over the given providers, tried in
// order. With no arguments it uses the default chain: Google Books
// first, OpenLibrary as fallback.
func NewResolver(providers ...Provider) *Resolver {
	if len(providers) == 0 {
		providers = []Provider{
			NewGoogleBooksProvider(),
			NewOpenLibraryProvider(),
		}
	}
	return &Resolver{providers: providers}
}

// Resolve looks up metadata for a validated ISBN. Each provider gets one
// attempt per call; there is no retry and no caching across calls.
func (r *Resolver) Resolve(ctx context.Context, isbn string) *Metadata {
	for _, provider := range r.providers {
		meta, err := provider.Lookup(ctx, isbn)
		if err != nil {
			slog.Warn("Metadata lookup failed", "provider", provider.Name(), "isbn", isbn, "error", err)
			continue
		}
		if meta == nil {
			slog.Debug("No metadata found", "provider", provider.Name(), "isbn", isbn)
			continue
		}
		return meta
	}
	return nil
}
