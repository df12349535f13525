package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lepinkainen/bookscan/internal/export"
	"github.com/lepinkainen/bookscan/internal/library"
)

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	books, err := s.store.ListAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch books")
		return
	}
	writeJSON(w, http.StatusOK, booksOrEmpty(books))
}

func (s *Server) handleListByGenre(w http.ResponseWriter, r *http.Request) {
	books, err := s.store.ListByGenre(r.Context(), r.PathValue("genre"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch books by genre")
		return
	}
	writeJSON(w, http.StatusOK, booksOrEmpty(books))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "Search query is required")
		return
	}
	books, err := s.store.Search(r.Context(), query)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to search books")
		return
	}
	writeJSON(w, http.StatusOK, booksOrEmpty(books))
}

func (s *Server) handleGetByISBN(w http.ResponseWriter, r *http.Request) {
	book, err := s.store.GetByISBN(r.Context(), r.PathValue("isbn"))
	if errors.Is(err, library.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Book not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch book")
		return
	}
	writeJSON(w, http.StatusOK, book)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch book statistics")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	books, err := s.store.ListAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to export books")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="book-catalog.csv"`)
	fields := []string{"isbn", "title", "author", "genre", "publisher"}
	if err := export.Write(w, books, export.FormatCSV, fields); err != nil {
		// Headers are gone by now; nothing better to do than log upstream.
		return
	}
}

type scanRequest struct {
	ISBN   string `json:"isbn"`
	Manual bool   `json:"manual"`
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	book, err := s.scanner.Scan(r.Context(), req.ISBN, req.Manual)
	switch {
	case errors.Is(err, library.ErrInvalidISBN):
		writeError(w, http.StatusBadRequest, "Invalid ISBN format")
	case errors.Is(err, library.ErrDuplicate):
		writeError(w, http.StatusConflict, "Book with this ISBN already exists")
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Failed to scan book")
	default:
		writeJSON(w, http.StatusCreated, book)
	}
}

type createRequest struct {
	ISBN          string   `json:"isbn"`
	Title         string   `json:"title"`
	Author        string   `json:"author"`
	Publisher     string   `json:"publisher"`
	CoverURL      string   `json:"coverURL"`
	Genre         string   `json:"genre"`
	Categories    []string `json:"categories"`
	IsManualEntry bool     `json:"isManualEntry"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid book data")
		return
	}
	if req.ISBN == "" {
		writeError(w, http.StatusBadRequest, "ISBN is required")
		return
	}

	book, err := s.store.Create(r.Context(), library.Book{
		ISBN:          req.ISBN,
		Title:         req.Title,
		Author:        req.Author,
		Publisher:     req.Publisher,
		CoverURL:      req.CoverURL,
		Genre:         req.Genre,
		Categories:    req.Categories,
		IsManualEntry: req.IsManualEntry,
	})
	if errors.Is(err, library.ErrDuplicate) {
		writeError(w, http.StatusConflict, "Book with this ISBN already exists")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create book")
		return
	}
	writeJSON(w, http.StatusCreated, book)
}

type patchRequest struct {
	Title      *string  `json:"title"`
	Author     *string  `json:"author"`
	Publisher  *string  `json:"publisher"`
	CoverURL   *string  `json:"coverURL"`
	Genre      *string  `json:"genre"`
	Categories []string `json:"categories"`
}

func (s *Server) handlePatch(w http.ResponseWriter, r *http.Request) {
	var req patchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid update data")
		return
	}

	book, err := s.store.Patch(r.Context(), r.PathValue("id"), library.Patch{
		Title:      req.Title,
		Author:     req.Author,
		Publisher:  req.Publisher,
		CoverURL:   req.CoverURL,
		Genre:      req.Genre,
		Categories: req.Categories,
	})
	if errors.Is(err, library.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Book not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update book")
		return
	}
	writeJSON(w, http.StatusOK, book)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	err := s.store.Delete(r.Context(), r.PathValue("id"))
	if errors.Is(err, library.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Book not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete book")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func booksOrEmpty(books []library.Book) []library.Book {
	if books == nil {
		return []library.Book{}
	}
	return books
}
