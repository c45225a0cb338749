// Package policy chooses the next unread item to present.
package policy

import (
	"readnext/db"
	"readnext/models"
)

// Order is the quality ordering direction.
type Order string

const (
	// Ascending surfaces the least weighted, most novel items first.
	// This is the default.
	Ascending Order = "asc"
	// Descending surfaces the most weighted items first, the historical
	// alternative behavior.
	Descending Order = "desc"
)

// Policy selects unread items from the store. It holds no state of its own.
type Policy struct {
	store *db.Store

	// Order direction applied to quality.
	Order Order
	// Threshold excludes items at or above this quality in ascending order.
	// Zero disables the cutoff.
	Threshold float64
}

func New(store *db.Store, order Order, threshold float64) *Policy {
	if order != Descending {
		order = Ascending
	}
	return &Policy{store: store, Order: order, Threshold: threshold}
}

// SelectNext returns the next unread item, or nil when no unread item is
// eligible. An empty channel scopes the pick store-wide.
func (p *Policy) SelectNext(channel string) (*models.NewsItem, error) {
	return p.store.NextUnread(db.NextOptions{
		Channel:    channel,
		Descending: p.Order == Descending,
		MaxQuality: p.Threshold,
	})
}

// SelectRandom returns a uniformly random unread item, used for "jump to any
// unread" navigation. Ordering and threshold do not apply.
func (p *Policy) SelectRandom(channel string) (*models.NewsItem, error) {
	return p.store.NextUnread(db.NextOptions{
		Channel: channel,
		Random:  true,
	})
}
