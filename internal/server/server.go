// Package server exposes the book catalog over a small JSON REST API.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/lepinkainen/bookscan/internal/library"
	"github.com/lepinkainen/bookscan/internal/scanner"
)

// Server wires the store and scanner into HTTP handlers.
type Server struct {
	store   library.Store
	scanner *scanner.Scanner
}

// New creates a server over the given store and scanner.
func New(store library.Store, sc *scanner.Scanner) *Server {
	return &Server{store: store, scanner: sc}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("GET /api/books", s.handleList)
	mux.HandleFunc("GET /api/books/genre/{genre}", s.handleListByGenre)
	mux.HandleFunc("GET /api/books/search", s.handleSearch)
	mux.HandleFunc("GET /api/books/isbn/{isbn}", s.handleGetByISBN)
	mux.HandleFunc("GET /api/books/stats", s.handleStats)
	mux.HandleFunc("GET /api/books/export/csv", s.handleExportCSV)
	mux.HandleFunc("POST /api/books/scan", s.handleScan)
	mux.HandleFunc("POST /api/books", s.handleCreate)
	mux.HandleFunc("PATCH /api/books/{id}", s.handlePatch)
	mux.HandleFunc("DELETE /api/books/{id}", s.handleDelete)

	return accessLog(mux)
}

// ListenAndServe runs the API until the context is canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP API listening", "addr", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("Request handled", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
