package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/bookscan/internal/genre"
	"github.com/lepinkainen/bookscan/internal/library"
	"github.com/lepinkainen/bookscan/internal/metadata"
	"github.com/lepinkainen/bookscan/internal/scanner"
)

type stubProvider struct {
	meta *metadata.Metadata
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Lookup(_ context.Context, _ string) (*metadata.Metadata, error) {
	return p.meta, nil
}

func newTestServer(t *testing.T, provider metadata.Provider) (*httptest.Server, library.Store) {
	t.Helper()

	store := library.NewMemStore()
	sc := scanner.New(store, metadata.NewResolver(provider))
	server := httptest.NewServer(New(store, sc).Handler())
	t.Cleanup(server.Close)
	return server, store
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBook(t *testing.T, resp *http.Response) library.Book {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()

	var book library.Book
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&book))
	return book
}

func TestScanEndpoint(t *testing.T) {
	server, _ := newTestServer(t, &stubProvider{meta: &metadata.Metadata{
		Title:  "Numerical Recipes",
		Author: "William Press",
		Genre:  genre.Science,
	}})

	resp := doJSON(t, http.MethodPost, server.URL+"/api/books/scan", map[string]any{"isbn": "978-0-306-40615-7"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	book := decodeBook(t, resp)
	assert.Equal(t, "9780306406157", book.ISBN)
	assert.Equal(t, "Numerical Recipes", book.Title)
	assert.NotNil(t, book.MetadataFetched)

	// Scanning the same ISBN again conflicts.
	resp = doJSON(t, http.MethodPost, server.URL+"/api/books/scan", map[string]any{"isbn": "9780306406157"})
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestScanEndpointInvalidISBN(t *testing.T) {
	server, _ := newTestServer(t, &stubProvider{})

	resp := doJSON(t, http.MethodPost, server.URL+"/api/books/scan", map[string]any{"isbn": "garbage"})
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateEndpoint(t *testing.T) {
	server, _ := newTestServer(t, &stubProvider{})

	resp := doJSON(t, http.MethodPost, server.URL+"/api/books", map[string]any{
		"isbn": "0306406152", "title": "Typed In", "isManualEntry": true,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	book := decodeBook(t, resp)
	assert.Equal(t, "Typed In", book.Title)
	assert.True(t, book.IsManualEntry)
	// Manual entries with a title count as already enriched.
	assert.NotNil(t, book.MetadataFetched)

	resp = doJSON(t, http.MethodPost, server.URL+"/api/books", map[string]any{"isbn": "0306406152"})
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestCreateEndpointRequiresISBN(t *testing.T) {
	server, _ := newTestServer(t, &stubProvider{})

	resp := doJSON(t, http.MethodPost, server.URL+"/api/books", map[string]any{"title": "No ISBN"})
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetByISBNEndpoint(t *testing.T) {
	server, store := newTestServer(t, &stubProvider{})

	_, err := store.Create(context.Background(), library.Book{ISBN: "9780306406157"})
	require.NoError(t, err)

	resp, err := http.Get(server.URL + "/api/books/isbn/9780306406157")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err = http.Get(server.URL + "/api/books/isbn/0000000000")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestListAndGenreEndpoints(t *testing.T) {
	server, store := newTestServer(t, &stubProvider{})
	ctx := context.Background()

	_, err := store.Create(ctx, library.Book{ISBN: "1111111111116", Title: "One", Genre: "Fiction"})
	require.NoError(t, err)
	_, err = store.Create(ctx, library.Book{ISBN: "2222222222222", Title: "Two", Genre: "Science"})
	require.NoError(t, err)

	resp, err := http.Get(server.URL + "/api/books")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var books []library.Book
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&books))
	assert.Len(t, books, 2)

	resp, err = http.Get(server.URL + "/api/books/genre/Fiction")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var fiction []library.Book
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&fiction))
	require.Len(t, fiction, 1)
	assert.Equal(t, "One", fiction[0].Title)
}

func TestSearchEndpoint(t *testing.T) {
	server, store := newTestServer(t, &stubProvider{})

	_, err := store.Create(context.Background(), library.Book{ISBN: "9780306406157", Title: "Numerical Recipes"})
	require.NoError(t, err)

	resp, err := http.Get(server.URL + "/api/books/search?q=numerical")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var books []library.Book
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&books))
	assert.Len(t, books, 1)

	// Missing query is a client error.
	resp, err = http.Get(server.URL + "/api/books/search")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestStatsEndpoint(t *testing.T) {
	server, store := newTestServer(t, &stubProvider{})

	_, err := store.Create(context.Background(), library.Book{ISBN: "9780306406157"})
	require.NoError(t, err)

	resp, err := http.Get(server.URL + "/api/books/stats")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var stats library.Stats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, library.Stats{TotalBooks: 1, Genres: 0, Pending: 1}, stats)
}

func TestPatchEndpoint(t *testing.T) {
	server, store := newTestServer(t, &stubProvider{})

	book, err := store.Create(context.Background(), library.Book{ISBN: "9780306406157"})
	require.NoError(t, err)

	resp := doJSON(t, http.MethodPatch, fmt.Sprintf("%s/api/books/%s", server.URL, book.ID),
		map[string]any{"title": "Patched Title"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	patched := decodeBook(t, resp)
	assert.Equal(t, "Patched Title", patched.Title)
	assert.NotNil(t, patched.MetadataFetched)

	resp = doJSON(t, http.MethodPatch, server.URL+"/api/books/missing", map[string]any{"title": "x"})
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteEndpoint(t *testing.T) {
	server, store := newTestServer(t, &stubProvider{})

	book, err := store.Create(context.Background(), library.Book{ISBN: "9780306406157"})
	require.NoError(t, err)

	resp := doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/books/%s", server.URL, book.ID), nil)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/books/%s", server.URL, book.ID), nil)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestExportCSVEndpoint(t *testing.T) {
	server, store := newTestServer(t, &stubProvider{})

	_, err := store.Create(context.Background(), library.Book{ISBN: "9780306406157", Title: "Spreadsheet, The"})
	require.NoError(t, err)

	resp, err := http.Get(server.URL + "/api/books/export/csv")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "book-catalog.csv")

	var body bytes.Buffer
	_, err = body.ReadFrom(resp.Body)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "ISBN,Title,Author,Genre,Publisher", lines[0])
	assert.Contains(t, lines[1], `"Spreadsheet, The"`)
}

func TestHealthz(t *testing.T) {
	server, _ := newTestServer(t, &stubProvider{})

	resp, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
