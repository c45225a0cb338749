package db

import (
	"database/sql"
	"fmt"

	"readnext/models"

	sqlbuilder "github.com/huandu/go-sqlbuilder"
	log "github.com/sirupsen/logrus"
)

// NextOptions controls how NextUnread picks an item.
type NextOptions struct {
	// Channel scopes the pick to a single channel title when non-empty.
	Channel string
	// Descending flips the quality ordering to "most weighted first".
	Descending bool
	// MaxQuality filters out items at or above the threshold when > 0.
	// Only applies to ascending order.
	MaxQuality float64
	// Random ignores quality and picks uniformly among eligible items.
	Random bool
}

// InsertNewsBatch inserts items for a channel, skipping URLs that are already
// present. Returns the number of rows actually inserted. Duplicate URLs are
// expected during every update cycle and are not an error.
func (s *Store) InsertNewsBatch(channelTitle string, items []models.RawItem) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	var channelID int64
	err := s.db.QueryRow("SELECT id FROM channel WHERE title = ?", channelTitle).Scan(&channelID)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("channel %q: %w", channelTitle, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("query error: %w", err)
	}

	ib := sqlbuilder.SQLite.NewInsertBuilder()
	ib.InsertIgnoreInto("news").Cols("channel_id", "title", "url", "summary")
	for _, item := range items {
		ib.Values(channelID, item.Title, item.Link, item.Summary)
	}
	query, args := ib.Build()

	res, err := s.db.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert error: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	log.WithFields(log.Fields{
		"channel":  channelTitle,
		"batch":    len(items),
		"inserted": inserted,
	}).Info("Inserted news batch")

	return int(inserted), nil
}

// MarkRead flips a single item to read. Marking an already-read item again is
// a no-op.
func (s *Store) MarkRead(newsID int64) error {
	res, err := s.db.Exec("UPDATE news SET is_read = 1 WHERE id = ?", newsID)
	if err != nil {
		return fmt.Errorf("update error: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("news %d: %w", newsID, ErrNotFound)
	}
	return nil
}

// MarkAllRead is the one bulk transition back to an empty inbox.
func (s *Store) MarkAllRead() error {
	_, err := s.db.Exec("UPDATE news SET is_read = 1 WHERE is_read = 0")
	if err != nil {
		return fmt.Errorf("update error: %w", err)
	}
	log.Info("Marked all news as read")
	return nil
}

// UnreadCountsByChannel maps channel title to its number of unread items.
// Channels without unread items are omitted.
func (s *Store) UnreadCountsByChannel() (map[string]int64, error) {
	rows, err := s.db.Query(`
		SELECT channel.title, COUNT(news.id)
		FROM news
		JOIN channel ON channel.id = news.channel_id
		WHERE news.is_read = 0
		GROUP BY channel.title`)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var title string
		var count int64
		if err := rows.Scan(&title, &count); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		counts[title] = count
	}

	return counts, rows.Err()
}

const newsColumns = "news.id, news.channel_id, channel.title, news.title, news.url, news.summary, news.is_read, news.quality"

func scanNewsItem(row *sql.Row) (*models.NewsItem, error) {
	var item models.NewsItem
	err := row.Scan(
		&item.Id, &item.ChannelId, &item.ChannelTitle,
		&item.Title, &item.Url, &item.Summary, &item.IsRead, &item.Quality,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan error: %w", err)
	}
	return &item, nil
}

// NextUnread returns the next unread item per the given options, or nil when
// no unread item matches. Equal-quality items tie-break on ascending id so the
// pick is deterministic within one snapshot, unless random mode is requested.
func (s *Store) NextUnread(opts NextOptions) (*models.NewsItem, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select(newsColumns).From("news")
	sb.Join("channel", "channel.id = news.channel_id")
	sb.Where(sb.Equal("news.is_read", 0))

	if opts.Channel != "" {
		sb.Where(sb.Equal("channel.title", opts.Channel))
	}

	switch {
	case opts.Random:
		sb.OrderBy("RANDOM()")
	case opts.Descending:
		sb.OrderBy("news.quality DESC", "news.id ASC")
	default:
		if opts.MaxQuality > 0 {
			sb.Where(sb.LessThan("news.quality", opts.MaxQuality))
		}
		sb.OrderBy("news.quality ASC", "news.id ASC")
	}

	sb.Limit(1)

	query, args := sb.Build()
	return scanNewsItem(s.db.QueryRow(query, args...))
}

// NewsByID fetches a single item with its channel title.
func (s *Store) NewsByID(newsID int64) (*models.NewsItem, error) {
	item, err := scanNewsItem(s.db.QueryRow(
		"SELECT "+newsColumns+" FROM news JOIN channel ON channel.id = news.channel_id WHERE news.id = ?",
		newsID,
	))
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("news %d: %w", newsID, ErrNotFound)
	}
	return item, nil
}

// LatestTitle returns the title of the most recently ingested item of a
// channel, used as the stop title for paginated fetchers. Empty string when
// the channel has no items yet.
func (s *Store) LatestTitle(channelTitle string) (string, error) {
	var title string
	err := s.db.QueryRow(`
		SELECT news.title FROM news
		WHERE channel_id = (SELECT id FROM channel WHERE title = ?)
		ORDER BY news.id DESC LIMIT 1`,
		channelTitle,
	).Scan(&title)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query error: %w", err)
	}
	return title, nil
}
