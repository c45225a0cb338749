package ingest

import (
	"context"
	"fmt"

	"readnext/models"
)

// Fetcher produces raw items for one channel kind, most recent first. An
// empty result means there is nothing new; running out of pages is not an
// error. The stop title is the most recently ingested item title of the
// channel, so paginated sources can stop at already-seen content instead of
// crawling unbounded.
type Fetcher interface {
	Fetch(ctx context.Context, url string, stopTitle string) ([]models.RawItem, error)
}

// Registry maps each channel kind to its fetcher. The kind set is closed:
// scripted scrapers are registered explicitly by the embedding application,
// there is no dynamic lookup.
type Registry struct {
	fetchers map[models.ChannelKind]Fetcher
}

func NewRegistry() *Registry {
	return &Registry{fetchers: make(map[models.ChannelKind]Fetcher)}
}

func (r *Registry) Register(kind models.ChannelKind, fetcher Fetcher) {
	r.fetchers[kind] = fetcher
}

func (r *Registry) Lookup(kind models.ChannelKind) (Fetcher, error) {
	fetcher, ok := r.fetchers[kind]
	if !ok {
		return nil, fmt.Errorf("no fetcher registered for channel kind %q", kind)
	}
	return fetcher, nil
}

// DefaultRegistry returns a registry with the built-in feed fetcher. Script
// fetchers are external collaborators and must be registered by the caller.
func DefaultRegistry() *Registry {
	registry := NewRegistry()
	registry.Register(models.KindFeed, NewFeedFetcher())
	return registry
}
