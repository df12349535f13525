package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/lepinkainen/bookscan/internal/genre"
)

func newTestOpenLibrary(server *httptest.Server) *OpenLibraryProvider {
	return &OpenLibraryProvider{
		baseURL:   server.URL,
		coversURL: "https://covers.openlibrary.org",
		client:    server.Client(),
		limiter:   rate.NewLimiter(rate.Inf, 1),
	}
}

func TestOpenLibraryLookup(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/isbn/9780306406157.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"title": "Numerical Recipes",
			"authors": [{"name": "Jane Doe"}, {}],
			"publishers": ["Cambridge", "Other Press"],
			"covers": [240727],
			"subjects": ["edition subject"],
			"works": [{"key": "/works/OL123W"}]
		}`))
	})
	mux.HandleFunc("/works/OL123W.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"subjects": ["Science Fiction", "Space"]}`))
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	meta, err := newTestOpenLibrary(server).Lookup(context.Background(), "9780306406157")
	require.NoError(t, err)
	require.NotNil(t, meta)

	assert.Equal(t, "Numerical Recipes", meta.Title)
	// Authors without a name reduce to the "Unknown" placeholder.
	assert.Equal(t, "Jane Doe, Unknown", meta.Author)
	assert.Equal(t, "Cambridge", meta.Publisher)
	assert.Equal(t, "https://covers.openlibrary.org/b/id/240727-M.jpg", meta.CoverURL)
	// Work subjects replace the edition's own subject list.
	assert.Equal(t, []string{"Science Fiction", "Space"}, meta.Categories)
	assert.Equal(t, genre.Fiction, meta.Genre)
}

func TestOpenLibraryLookupWorkFetchFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/isbn/123.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"title": "Fallback Book",
			"subjects": ["World History"],
			"works": [{"key": "/works/OL404W"}]
		}`))
	})
	mux.HandleFunc("/works/OL404W.json", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusInternalServerError)
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	meta, err := newTestOpenLibrary(server).Lookup(context.Background(), "123")
	require.NoError(t, err)
	require.NotNil(t, meta)

	// The work failure is swallowed; edition subjects still classify.
	assert.Equal(t, []string{"World History"}, meta.Categories)
	assert.Equal(t, genre.History, meta.Genre)
}

func TestOpenLibraryLookupNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	meta, err := newTestOpenLibrary(server).Lookup(context.Background(), "000")
	require.NoError(t, err)
	assert.Nil(t, meta)
}

func TestOpenLibraryLookupServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	meta, err := newTestOpenLibrary(server).Lookup(context.Background(), "000")
	require.Error(t, err)
	assert.Nil(t, meta)
}
