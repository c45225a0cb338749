// Package ingest turns raw fetched records into stored news items.
package ingest

import (
	"strings"

	"readnext/db"
	"readnext/models"

	"github.com/samber/lo"
)

// defaultSummary stands in for sources that omit summaries entirely.
const defaultSummary = "No summary."

// Pipeline sanitizes fetched batches and merges them into the store. The
// store's URL uniqueness makes the merge idempotent.
type Pipeline struct {
	store *db.Store
}

func NewPipeline(store *db.Store) *Pipeline {
	return &Pipeline{store: store}
}

// Ingest writes one channel's batch. Items arrive most recent first and are
// reversed so the oldest new item gets the lowest id, preserving a stable
// re-read order. Returns the number of items actually inserted.
func (p *Pipeline) Ingest(channelTitle string, items []models.RawItem) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	sanitized := lo.Map(items, func(item models.RawItem, _ int) models.RawItem {
		return sanitize(item)
	})
	sanitized = lo.Reverse(sanitized)

	return p.store.InsertNewsBatch(channelTitle, sanitized)
}

func sanitize(item models.RawItem) models.RawItem {
	// Some feeds embed newlines in titles, which breaks single-line display.
	item.Title = strings.ReplaceAll(item.Title, "\n", " ")
	if strings.TrimSpace(item.Summary) == "" {
		item.Summary = defaultSummary
	}
	return item
}
