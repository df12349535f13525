// Package library holds the persisted book catalog: the Book record, the
// Store contract and its in-memory and SQLite implementations.
package library

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no book matches the given id or ISBN.
	ErrNotFound = errors.New("book not found")

	// ErrDuplicate is returned when a book with the same ISBN already exists.
	ErrDuplicate = errors.New("book already exists")

	// ErrInvalidISBN is returned when the provided ISBN fails validation.
	ErrInvalidISBN = errors.New("invalid ISBN")
)

// Book is a persisted library record. A book is created as an empty shell
// the moment an ISBN is scanned (title empty, MetadataFetched nil) and
// patched later when metadata resolution completes.
type Book struct {
	ID              string     `json:"id"`
	ISBN            string     `json:"isbn"`
	Title           string     `json:"title"`
	Author          string     `json:"author,omitempty"`
	Publisher       string     `json:"publisher,omitempty"`
	CoverURL        string     `json:"coverURL,omitempty"`
	Genre           string     `json:"genre,omitempty"`
	Categories      []string   `json:"categories,omitempty"`
	ScannedAt       time.Time  `json:"scannedAt"`
	MetadataFetched *time.Time `json:"metadataFetched,omitempty"`
	IsManualEntry   bool       `json:"isManualEntry"`
}

// Patch is a partial update to a Book. Nil fields are left unchanged.
// A nil Categories slice leaves the stored list as-is.
type Patch struct {
	Title      *string
	Author     *string
	Publisher  *string
	CoverURL   *string
	Genre      *string
	Categories []string
}

// Stats summarizes the catalog: total records, distinct genres in use,
// and records still waiting for metadata.
type Stats struct {
	TotalBooks int `json:"totalBooks"`
	Genres     int `json:"genres"`
	Pending    int `json:"pending"`
}
