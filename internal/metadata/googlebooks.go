package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/lepinkainen/bookscan/internal/config"
	"github.com/lepinkainen/bookscan/internal/genre"
)

const googleBooksBaseURL = "https://www.googleapis.com/books/v1"

// GoogleBooksProvider implements Provider for the Google Books API.
// An API key is optional; without one the public quota applies.
type GoogleBooksProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
}

var _ Provider = (*GoogleBooksProvider)(nil)

// NewGoogleBooksProvider creates a Google Books provider using the
// configured API key.
func NewGoogleBooksProvider() *GoogleBooksProvider {
	return &GoogleBooksProvider{
		baseURL: googleBooksBaseURL,
		apiKey:  config.GoogleBooksAPIKey,
		client:  &http.Client{Timeout: providerTimeout},
		limiter: rate.NewLimiter(1, 1),
	}
}

// Name returns the human-readable name of this provider.
func (p *GoogleBooksProvider) Name() string {
	return "Google Books"
}

// googleBooksResponse matches the volumes search response structure.
type googleBooksResponse struct {
	TotalItems int `json:"totalItems"`
	Items      []struct {
		VolumeInfo struct {
			Title      string   `json:"title"`
			Authors    []string `json:"authors"`
			Publisher  string   `json:"publisher"`
			Categories []string `json:"categories"`
			ImageLinks struct {
				Thumbnail string `json:"thumbnail"`
			} `json:"imageLinks"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

// Lookup searches the volumes endpoint by ISBN and maps the first result.
func (p *GoogleBooksProvider) Lookup(ctx context.Context, isbn string) (*Metadata, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	url := fmt.Sprintf("%s/volumes?q=isbn:%s", p.baseURL, isbn)
	if p.apiKey != "" {
		url = fmt.Sprintf("%s&key=%s", url, p.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var result googleBooksResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if result.TotalItems == 0 || len(result.Items) == 0 {
		return nil, nil
	}

	vol := result.Items[0].VolumeInfo

	meta := &Metadata{
		Title:      vol.Title,
		Author:     strings.Join(vol.Authors, ", "),
		Publisher:  vol.Publisher,
		Categories: vol.Categories,
		Genre:      genre.FromCategories(vol.Categories),
	}

	// Google serves plain-http thumbnail links; upgrade the scheme.
	if thumb := vol.ImageLinks.Thumbnail; thumb != "" {
		meta.CoverURL = strings.Replace(thumb, "http:", "https:", 1)
	}

	return meta, nil
}
