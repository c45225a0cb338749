// Package update fans fetches out across channels and funnels the results
// through a single ingestion consumer, so the store only ever sees one
// writer.
package update

import (
	"context"
	"sync"

	"readnext/db"
	"readnext/ingest"
	"readnext/models"
	"readnext/relevance"
	"readnext/tree"

	log "github.com/sirupsen/logrus"
)

// Coordinator runs update cycles: fetch every channel, ingest the batches,
// keep the counter cache current and rescore unread items.
type Coordinator struct {
	store    *db.Store
	pipeline *ingest.Pipeline
	registry *ingest.Registry
	engine   *relevance.Engine
	tree     *tree.Tree
	workers  int
}

func NewCoordinator(store *db.Store, registry *ingest.Registry, engine *relevance.Engine, counters *tree.Tree, workers int) *Coordinator {
	if workers < 1 {
		workers = 1
	}
	return &Coordinator{
		store:    store,
		pipeline: ingest.NewPipeline(store),
		registry: registry,
		engine:   engine,
		tree:     counters,
		workers:  workers,
	}
}

type fetchResult struct {
	channel models.Channel
	items   []models.RawItem
	err     error
}

// Run performs one full update cycle. Fetches run on a small worker pool;
// completed batches are handed to a single consumer that writes to the store.
// Progress events are sent to progress if non-nil and the channel is closed
// when the cycle ends. Pass a buffered channel so a slow consumer does not
// stall ingestion.
//
// Cancelling the context stops dispatch of not-yet-started fetches; fetches
// already in flight finish or abort on their own. A final quality recompute
// always runs before Run returns, so scores are never stale relative to what
// got ingested.
func (c *Coordinator) Run(ctx context.Context, progress chan<- models.ProgressEvent) error {
	defer func() {
		if _, err := c.engine.RecomputeAll(); err != nil {
			log.Errorf("Final quality recompute failed: %v", err)
		}
		updateCycles.Inc()
		if progress != nil {
			progress <- models.ProgressEvent{Done: true}
			close(progress)
		}
	}()

	channels, err := c.store.Channels()
	if err != nil {
		return err
	}
	total := len(channels)
	if total == 0 {
		return nil
	}

	jobs := make(chan models.Channel)
	results := make(chan fetchResult, c.workers)

	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for channel := range jobs {
				items, err := c.fetch(ctx, channel)
				results <- fetchResult{channel: channel, items: items, err: err}
			}
		}()
	}

	// Dispatch channels until done or cancelled. Cancellation only stops
	// channels that have not been handed to a worker yet.
	go func() {
		defer close(jobs)
		for _, channel := range channels {
			select {
			case jobs <- channel:
			case <-ctx.Done():
				log.Info("Update cancelled, skipping remaining channels")
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	// Single ingestion consumer: the only goroutine writing to the store
	// during the cycle.
	index := 0
	for result := range results {
		index++
		event := models.ProgressEvent{
			Channel: result.channel.Title,
			Index:   index,
			Total:   total,
		}

		if result.err != nil {
			// One broken channel must not abort the rest of the cycle.
			channelFetches.WithLabelValues("error").Inc()
			log.WithFields(log.Fields{
				"channel": result.channel.Title,
			}).Warnf("Fetch failed: %v", result.err)
			event.Err = result.err.Error()
		} else {
			channelFetches.WithLabelValues("ok").Inc()
			inserted, err := c.pipeline.Ingest(result.channel.Title, result.items)
			if err != nil {
				log.WithFields(log.Fields{
					"channel": result.channel.Title,
				}).Errorf("Ingest failed: %v", err)
				event.Err = err.Error()
			} else {
				itemsIngested.Add(float64(inserted))
				c.tree.OnIngest(result.channel.Title, inserted)
				event.Inserted = inserted

				if inserted > 0 {
					if _, err := c.engine.RecomputeAll(); err != nil {
						log.Errorf("Quality recompute failed: %v", err)
					}
				}
			}
		}

		if progress != nil {
			progress <- event
		}
	}

	return ctx.Err()
}

func (c *Coordinator) fetch(ctx context.Context, channel models.Channel) ([]models.RawItem, error) {
	fetcher, err := c.registry.Lookup(channel.Kind)
	if err != nil {
		return nil, err
	}

	stopTitle, err := c.store.LatestTitle(channel.Title)
	if err != nil {
		return nil, err
	}

	return fetcher.Fetch(ctx, channel.Url, stopTitle)
}
