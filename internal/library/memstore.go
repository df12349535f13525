package library

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemStore is an in-memory Store backed by mutex-guarded maps. The ISBN
// index makes the duplicate check and insert a single critical section.
type MemStore struct {
	mu     sync.RWMutex
	books  map[string]Book
	byISBN map[string]string
}

var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		books:  make(map[string]Book),
		byISBN: make(map[string]string),
	}
}

func (s *MemStore) GetByID(_ context.Context, id string) (*Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	book, ok := s.books[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyBook(book), nil
}

func (s *MemStore) GetByISBN(_ context.Context, isbn string) (*Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byISBN[isbn]
	if !ok {
		return nil, ErrNotFound
	}
	book := s.books[id]
	return copyBook(book), nil
}

func (s *MemStore) Create(_ context.Context, shell Book) (*Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byISBN[shell.ISBN]; exists {
		return nil, ErrDuplicate
	}

	shell.ID = uuid.NewString()
	shell.ScannedAt = time.Now()
	shell.MetadataFetched = nil
	if shell.Title != "" {
		now := shell.ScannedAt
		shell.MetadataFetched = &now
	}

	s.books[shell.ID] = shell
	s.byISBN[shell.ISBN] = shell.ID

	return copyBook(shell), nil
}

func (s *MemStore) Patch(_ context.Context, id string, p Patch) (*Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.books[id]
	if !ok {
		return nil, ErrNotFound
	}

	applyPatch(&book, p)
	s.books[id] = book

	return copyBook(book), nil
}

func (s *MemStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.books[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.byISBN, book.ISBN)
	delete(s.books, id)
	return nil
}

func (s *MemStore) ListAll(_ context.Context) ([]Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	books := s.snapshot(func(Book) bool { return true })
	sort.Slice(books, func(i, j int) bool {
		return books[i].ScannedAt.After(books[j].ScannedAt)
	})
	return books, nil
}

func (s *MemStore) ListByGenre(_ context.Context, genre string) ([]Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	books := s.snapshot(func(b Book) bool { return b.Genre == genre })
	sort.Slice(books, func(i, j int) bool {
		return strings.ToLower(books[i].Title) < strings.ToLower(books[j].Title)
	})
	return books, nil
}

func (s *MemStore) Search(_ context.Context, query string) ([]Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lower := strings.ToLower(query)
	books := s.snapshot(func(b Book) bool {
		return strings.Contains(strings.ToLower(b.Title), lower) ||
			strings.Contains(strings.ToLower(b.Author), lower) ||
			strings.Contains(strings.ToLower(b.Genre), lower) ||
			strings.Contains(b.ISBN, query)
	})
	return books, nil
}

func (s *MemStore) Stats(_ context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{TotalBooks: len(s.books)}
	genres := make(map[string]struct{})
	for _, book := range s.books {
		if book.Genre != "" {
			genres[book.Genre] = struct{}{}
		}
		if book.MetadataFetched == nil {
			stats.Pending++
		}
	}
	stats.Genres = len(genres)
	return stats, nil
}

// Close is a no-op for the in-memory store.
func (s *MemStore) Close() error {
	return nil
}

// snapshot returns copies of every book matching the filter. Callers must
// hold at least a read lock.
func (s *MemStore) snapshot(match func(Book) bool) []Book {
	books := make([]Book, 0, len(s.books))
	for _, book := range s.books {
		if match(book) {
			books = append(books, *copyBook(book))
		}
	}
	return books
}

// applyPatch merges non-nil fields into book. Patching a non-empty title
// stamps MetadataFetched; everything else leaves it alone.
func applyPatch(book *Book, p Patch) {
	if p.Title != nil {
		book.Title = *p.Title
		if *p.Title != "" {
			now := time.Now()
			book.MetadataFetched = &now
		}
	}
	if p.Author != nil {
		book.Author = *p.Author
	}
	if p.Publisher != nil {
		book.Publisher = *p.Publisher
	}
	if p.CoverURL != nil {
		book.CoverURL = *p.CoverURL
	}
	if p.Genre != nil {
		book.Genre = *p.Genre
	}
	if p.Categories != nil {
		book.Categories = append([]string(nil), p.Categories...)
	}
}

// copyBook returns a deep copy so callers never alias stored state.
func copyBook(b Book) *Book {
	out := b
	if b.MetadataFetched != nil {
		t := *b.MetadataFetched
		out.MetadataFetched = &t
	}
	if b.Categories != nil {
		out.Categories = append([]string(nil), b.Categories...)
	}
	return &out
}
