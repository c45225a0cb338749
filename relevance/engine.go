// Package relevance maintains the learned word-weight vocabulary and derives
// per-item quality scores from it.
//
// Scoring: an item's quality is the number of its words found in the enabled
// vocabulary divided by the sum of their weights. Heavily reinforced words
// therefore push quality down, so ascending order surfaces the most novel
// items first. Items without a single vocabulary match keep their previous
// quality.
package relevance

import (
	"fmt"

	"readnext/db"
	"readnext/models"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

type Engine struct {
	store *db.Store
}

func NewEngine(store *db.Store) *Engine {
	return &Engine{store: store}
}

// Like records positive feedback on an item: every word of its combined text
// gains one weight, then all unread items containing any of those words get
// their quality recomputed.
func (e *Engine) Like(item *models.NewsItem) error {
	words := Tokenize(item.Text())
	if len(words) == 0 {
		return nil
	}

	if err := e.store.BumpWords(words); err != nil {
		return fmt.Errorf("reinforce words: %w", err)
	}

	log.WithFields(log.Fields{
		"news":  item.Id,
		"words": len(words),
	}).Info("Recorded feedback")

	// Collect affected unread items across all reinforced words, deduplicated
	// so overlapping matches are scored once.
	var affected []db.ItemText
	for _, word := range words {
		items, err := e.store.UnreadTexts(word)
		if err != nil {
			return fmt.Errorf("find affected items: %w", err)
		}
		affected = append(affected, items...)
	}
	affected = lo.UniqBy(affected, func(item db.ItemText) int64 { return item.Id })

	_, err := e.recompute(affected)
	return err
}

// RecomputeAll rescores every unread item. Returns how many items actually
// received a new score.
func (e *Engine) RecomputeAll() (int, error) {
	items, err := e.store.UnreadTexts("")
	if err != nil {
		return 0, fmt.Errorf("load unread items: %w", err)
	}

	updated, err := e.recompute(items)
	if err != nil {
		return updated, err
	}

	log.WithFields(log.Fields{
		"items":   len(items),
		"updated": updated,
	}).Info("Recomputed quality scores")

	return updated, nil
}

func (e *Engine) recompute(items []db.ItemText) (int, error) {
	updated := 0
	for _, item := range items {
		quality, ok, err := e.score(item.Text)
		if err != nil {
			return updated, err
		}
		if !ok {
			continue
		}
		if err := e.store.SetQuality(item.Id, quality); err != nil {
			return updated, err
		}
		updated++
	}
	return updated, nil
}

// score computes the quality of a text. The second return value is false when
// no vocabulary word matches, in which case the caller must leave the previous
// quality in place.
func (e *Engine) score(text string) (float64, bool, error) {
	words := Tokenize(text)
	weights, err := e.store.Weights(words)
	if err != nil {
		return 0, false, fmt.Errorf("look up weights: %w", err)
	}
	if len(weights) == 0 {
		return 0, false, nil
	}

	sum := lo.Sum(lo.Values(weights))
	return float64(len(weights)) / sum, true, nil
}
