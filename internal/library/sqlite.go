package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const booksSchema = `CREATE TABLE IF NOT EXISTS books (
		id TEXT PRIMARY KEY,
		isbn TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL DEFAULT '',
		author TEXT NOT NULL DEFAULT '',
		publisher TEXT NOT NULL DEFAULT '',
		cover_url TEXT NOT NULL DEFAULT '',
		genre TEXT NOT NULL DEFAULT '',
		categories TEXT NOT NULL DEFAULT '[]',
		scanned_at TEXT NOT NULL,
		metadata_fetched TEXT,
		is_manual_entry INTEGER NOT NULL DEFAULT 0
	)`

// SQLiteStore is a durable Store backed by a local SQLite database.
// The UNIQUE constraint on isbn is what makes concurrent scans of the
// same new ISBN safe: the second insert fails with ErrDuplicate.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLiteStore opens (creating if needed) the library database at the
// given path.
func OpenSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open library database: %w", err)
	}

	if err := db.Ping(); err != nil {
		closeErr := db.Close()
		return nil, errors.Join(fmt.Errorf("failed to connect to library database: %w", err), closeErr)
	}

	if _, err := db.Exec(booksSchema); err != nil {
		closeErr := db.Close()
		return nil, errors.Join(fmt.Errorf("failed to create books table: %w", err), closeErr)
	}

	return &SQLiteStore{db: db}, nil
}

const bookColumns = "id, isbn, title, author, publisher, cover_url, genre, categories, scanned_at, metadata_fetched, is_manual_entry"

func (s *SQLiteStore) GetByID(ctx context.Context, id string) (*Book, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+bookColumns+" FROM books WHERE id = ?", id)
	return scanBook(row)
}

func (s *SQLiteStore) GetByISBN(ctx context.Context, isbn string) (*Book, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+bookColumns+" FROM books WHERE isbn = ?", isbn)
	return scanBook(row)
}

func (s *SQLiteStore) Create(ctx context.Context, shell Book) (*Book, error) {
	shell.ID = uuid.NewString()
	shell.ScannedAt = time.Now()
	shell.MetadataFetched = nil
	if shell.Title != "" {
		now := shell.ScannedAt
		shell.MetadataFetched = &now
	}

	categories, err := json.Marshal(categoriesOrEmpty(shell.Categories))
	if err != nil {
		return nil, fmt.Errorf("failed to encode categories: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO books ("+bookColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		shell.ID, shell.ISBN, shell.Title, shell.Author, shell.Publisher,
		shell.CoverURL, shell.Genre, string(categories),
		formatTime(shell.ScannedAt), formatTimePtr(shell.MetadataFetched),
		boolToInt(shell.IsManualEntry),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to insert book: %w", err)
	}

	return copyBook(shell), nil
}

func (s *SQLiteStore) Patch(ctx context.Context, id string, p Patch) (*Book, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, "SELECT "+bookColumns+" FROM books WHERE id = ?", id)
	book, err := scanBook(row)
	if err != nil {
		return nil, err
	}

	applyPatch(book, p)

	categories, err := json.Marshal(categoriesOrEmpty(book.Categories))
	if err != nil {
		return nil, fmt.Errorf("failed to encode categories: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE books SET title = ?, author = ?, publisher = ?, cover_url = ?,
			genre = ?, categories = ?, metadata_fetched = ? WHERE id = ?`,
		book.Title, book.Author, book.Publisher, book.CoverURL,
		book.Genre, string(categories), formatTimePtr(book.MetadataFetched), id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update book: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit update: %w", err)
	}
	return book, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM books WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) ListAll(ctx context.Context) ([]Book, error) {
	return s.queryBooks(ctx, "SELECT "+bookColumns+" FROM books ORDER BY scanned_at DESC")
}

func (s *SQLiteStore) ListByGenre(ctx context.Context, genre string) ([]Book, error) {
	return s.queryBooks(ctx,
		"SELECT "+bookColumns+" FROM books WHERE genre = ? ORDER BY title COLLATE NOCASE ASC", genre)
}

func (s *SQLiteStore) Search(ctx context.Context, query string) ([]Book, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	return s.queryBooks(ctx,
		`SELECT `+bookColumns+` FROM books
		WHERE lower(title) LIKE ? OR lower(author) LIKE ? OR lower(genre) LIKE ?
			OR instr(isbn, ?) > 0`,
		pattern, pattern, pattern, query)
}

func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
			COUNT(DISTINCT CASE WHEN genre <> '' THEN genre END),
			COALESCE(SUM(CASE WHEN metadata_fetched IS NULL THEN 1 ELSE 0 END), 0)
		FROM books`)
	if err := row.Scan(&stats.TotalBooks, &stats.Genres, &stats.Pending); err != nil {
		return Stats{}, fmt.Errorf("failed to read stats: %w", err)
	}
	return stats, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) queryBooks(ctx context.Context, query string, args ...any) ([]Book, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query books: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var books []Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, *book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate books: %w", err)
	}
	return books, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (*Book, error) {
	var (
		book            Book
		categories      string
		scannedAt       string
		metadataFetched sql.NullString
		manual          int
	)
	err := row.Scan(&book.ID, &book.ISBN, &book.Title, &book.Author,
		&book.Publisher, &book.CoverURL, &book.Genre, &categories,
		&scannedAt, &metadataFetched, &manual)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan book row: %w", err)
	}

	if err := json.Unmarshal([]byte(categories), &book.Categories); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}
	if len(book.Categories) == 0 {
		book.Categories = nil
	}

	book.ScannedAt, err = parseTime(scannedAt)
	if err != nil {
		return nil, err
	}
	if metadataFetched.Valid {
		t, err := parseTime(metadataFetched.String)
		if err != nil {
			return nil, err
		}
		book.MetadataFetched = &t
	}
	book.IsManualEntry = manual != 0

	return &book, nil
}

func categoriesOrEmpty(categories []string) []string {
	if categories == nil {
		return []string{}
	}
	return categories
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse stored timestamp: %w", err)
	}
	return t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
