package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/lepinkainen/bookscan/internal/genre"
)

const (
	openLibraryBaseURL   = "https://openlibrary.org"
	openLibraryCoversURL = "https://covers.openlibrary.org"
)

// OpenLibraryProvider implements Provider for OpenLibrary. The edition
// endpoint carries the bibliographic fields; subject strings usually live
// on the linked work resource, which is fetched separately.
type OpenLibraryProvider struct {
	baseURL   string
	coversURL string
	client    *http.Client
	limiter   *rate.Limiter
}

var _ Provider = (*OpenLibraryProvider)(nil)

// NewOpenLibraryProvider creates an OpenLibrary provider. No API key is
// required.
func NewOpenLibraryProvider() *OpenLibraryProvider {
	return &OpenLibraryProvider{
		baseURL:   openLibraryBaseURL,
		coversURL: openLibraryCoversURL,
		client:    &http.Client{Timeout: providerTimeout},
		limiter:   rate.NewLimiter(1, 1),
	}
}

// Name returns the human-readable name of this provider.
func (p *OpenLibraryProvider) Name() string {
	return "OpenLibrary"
}

// openLibraryEdition matches the /isbn/{isbn}.json response structure.
type openLibraryEdition struct {
	Title   string `json:"title"`
	Authors []struct {
		Name string `json:"name"`
	} `json:"authors"`
	Publishers []string `json:"publishers"`
	Covers     []int    `json:"covers"`
	Subjects   []string `json:"subjects"`
	Works      []struct {
		Key string `json:"key"`
	} `json:"works"`
}

// openLibraryWork matches the work resource response structure.
type openLibraryWork struct {
	Subjects []string `json:"subjects"`
}

// Lookup fetches the edition record by ISBN and, when the edition points
// at a work, pulls subject strings from there too. A failed work fetch is
// not fatal: classification proceeds with the edition's own subjects.
func (p *OpenLibraryProvider) Lookup(ctx context.Context, isbn string) (*Metadata, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	url := fmt.Sprintf("%s/isbn/%s.json", p.baseURL, isbn)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var edition openLibraryEdition
	if err := json.NewDecoder(resp.Body).Decode(&edition); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	subjects := edition.Subjects
	if len(edition.Works) > 0 {
		if workSubjects, err := p.fetchWorkSubjects(ctx, edition.Works[0].Key); err != nil {
			slog.Debug("Failed to fetch work details", "work", edition.Works[0].Key, "error", err)
		} else if len(workSubjects) > 0 {
			subjects = workSubjects
		}
	}

	meta := &Metadata{
		Title:      edition.Title,
		Categories: subjects,
		Genre:      genre.FromSubjects(subjects),
	}

	if len(edition.Authors) > 0 {
		names := make([]string, 0, len(edition.Authors))
		for _, author := range edition.Authors {
			name := author.Name
			if name == "" {
				name = "Unknown"
			}
			names = append(names, name)
		}
		meta.Author = strings.Join(names, ", ")
	}

	if len(edition.Publishers) > 0 {
		meta.Publisher = edition.Publishers[0]
	}

	if len(edition.Covers) > 0 {
		meta.CoverURL = fmt.Sprintf("%s/b/id/%d-M.jpg", p.coversURL, edition.Covers[0])
	}

	return meta, nil
}

func (p *OpenLibraryProvider) fetchWorkSubjects(ctx context.Context, workKey string) ([]string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	url := fmt.Sprintf("%s%s.json", p.baseURL, workKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("work request returned status %d", resp.StatusCode)
	}

	var work openLibraryWork
	if err := json.NewDecoder(resp.Body).Decode(&work); err != nil {
		return nil, err
	}
	return work.Subjects, nil
}
