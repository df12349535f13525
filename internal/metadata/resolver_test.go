package metadata

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubProvider struct {
	name  string
	meta  *Metadata
	err   error
	calls int
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Lookup(_ context.Context, _ string) (*Metadata, error) {
	p.calls++
	return p.meta, p.err
}

func TestResolvePrimarySuccess(t *testing.T) {
	primary := &stubProvider{name: "primary", meta: &Metadata{Title: "First"}}
	secondary := &stubProvider{name: "secondary", meta: &Metadata{Title: "Second"}}

	meta := NewResolver(primary, secondary).Resolve(context.Background(), "9780306406157")

	assert.Equal(t, "First", meta.Title)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 0, secondary.calls)
}

func TestResolveFallsThroughOnError(t *testing.T) {
	primary := &stubProvider{name: "primary", err: errors.New("unreachable")}
	secondary := &stubProvider{name: "secondary", meta: &Metadata{Title: "Second"}}

	meta := NewResolver(primary, secondary).Resolve(context.Background(), "9780306406157")

	assert.Equal(t, "Second", meta.Title)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls)
}

func TestResolveFallsThroughOnNotFound(t *testing.T) {
	primary := &stubProvider{name: "primary"}
	secondary := &stubProvider{name: "secondary", meta: &Metadata{Title: "Second"}}

	meta := NewResolver(primary, secondary).Resolve(context.Background(), "9780306406157")

	assert.Equal(t, "Second", meta.Title)
}

func TestResolveAllProvidersFail(t *testing.T) {
	primary := &stubProvider{name: "primary", err: errors.New("down")}
	secondary := &stubProvider{name: "secondary", err: errors.New("also down")}

	meta := NewResolver(primary, secondary).Resolve(context.Background(), "9780306406157")

	assert.Nil(t, meta)
	// One attempt per provider, no retries.
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls)
}

func TestNewResolverDefaultChain(t *testing.T) {
	resolver := NewResolver()

	assert.Len(t, resolver.providers, 2)
	assert.Equal(t, "Google Books", resolver.providers[0].Name())
	assert.Equal(t, "OpenLibrary", resolver.providers[1].Name())
}
