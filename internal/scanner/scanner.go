// Package scanner ties ISBN validation, duplicate detection, record
// creation and metadata enrichment into the scan workflow.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lepinkainen/bookscan/internal/isbn"
	"github.com/lepinkainen/bookscan/internal/library"
	"github.com/lepinkainen/bookscan/internal/metadata"
)

// Scanner runs the scan workflow against an injected store and resolver.
type Scanner struct {
	store    library.Store
	resolver *metadata.Resolver
}

// New creates a scanner.
func New(store library.Store, resolver *metadata.Resolver) *Scanner {
	return &Scanner{store: store, resolver: resolver}
}

// Scan catalogs one scanned or typed ISBN. The record is created as an
// empty shell before any network call, so the scan survives enrichment
// failures; metadata is then resolved best-effort and applied as a
// single patch. Invalid input and duplicates return ErrInvalidISBN and
// ErrDuplicate before anything is written.
func (s *Scanner) Scan(ctx context.Context, raw string, manual bool) (*library.Book, error) {
	if !isbn.Validate(raw) {
		return nil, library.ErrInvalidISBN
	}
	normalized := isbn.Normalize(raw)

	if _, err := s.store.GetByISBN(ctx, normalized); err == nil {
		return nil, library.ErrDuplicate
	} else if !errors.Is(err, library.ErrNotFound) {
		return nil, fmt.Errorf("duplicate check: %w", err)
	}

	shell := library.Book{
		ISBN:          normalized,
		IsManualEntry: manual,
	}
	book, err := s.store.Create(ctx, shell)
	if err != nil {
		// A concurrent scan of the same ISBN can win the insert race;
		// the store's uniqueness guarantee turns that into ErrDuplicate.
		if errors.Is(err, library.ErrDuplicate) {
			return nil, err
		}
		return nil, fmt.Errorf("creating record: %w", err)
	}
	slog.Info("Book record created", "isbn", normalized, "id", book.ID)

	meta := s.resolver.Resolve(ctx, normalized)
	if meta == nil {
		slog.Info("No metadata found, keeping shell record", "isbn", normalized)
		return book, nil
	}

	enriched, err := s.store.Patch(ctx, book.ID, library.Patch{
		Title:      &meta.Title,
		Author:     &meta.Author,
		Publisher:  &meta.Publisher,
		CoverURL:   &meta.CoverURL,
		Genre:      genreString(meta),
		Categories: meta.Categories,
	})
	if err != nil {
		return nil, fmt.Errorf("applying metadata: %w", err)
	}
	slog.Info("Book enriched", "isbn", normalized, "title", enriched.Title, "genre", enriched.Genre)

	return enriched, nil
}

func genreString(meta *metadata.Metadata) *string {
	g := string(meta.Genre)
	return &g
}
