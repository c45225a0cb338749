package ingest

import (
	"context"
	"net/http"
	"time"

	"readnext/models"

	"github.com/cenkalti/backoff/v4"
	"github.com/mmcdole/gofeed"
	log "github.com/sirupsen/logrus"
)

const userAgent = "readnext/1.0"

// FeedFetcher pulls RSS/Atom feeds over HTTP and parses them with gofeed.
type FeedFetcher struct {
	parser *gofeed.Parser
}

func NewFeedFetcher() *FeedFetcher {
	parser := gofeed.NewParser()
	parser.UserAgent = userAgent
	parser.Client = &http.Client{Timeout: 30 * time.Second}
	return &FeedFetcher{parser: parser}
}

// Fetch retrieves the feed with a short exponential backoff so one flaky
// response does not fail the whole channel. Feed items come back in the
// feed's native order, most recent first.
func (f *FeedFetcher) Fetch(ctx context.Context, url string, stopTitle string) ([]models.RawItem, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	policy.MaxInterval = 5 * time.Second
	policy.MaxElapsedTime = 30 * time.Second

	var feed *gofeed.Feed
	err := backoff.Retry(func() error {
		var parseErr error
		feed, parseErr = f.parser.ParseURLWithContext(url, ctx)
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		return parseErr
	}, backoff.WithContext(policy, ctx))
	if err != nil {
		return nil, err
	}

	items := make([]models.RawItem, 0, len(feed.Items))
	for _, item := range feed.Items {
		// Feeds are already bounded, but honor the stop title anyway so
		// re-adding a channel does not replay its whole history.
		if stopTitle != "" && item.Title == stopTitle {
			break
		}
		items = append(items, models.RawItem{
			Title:   item.Title,
			Link:    item.Link,
			Summary: item.Description,
		})
	}

	log.WithFields(log.Fields{
		"url":   url,
		"items": len(items),
	}).Debug("Fetched feed")

	return items, nil
}
