package db

import (
	"fmt"

	"readnext/models"

	sqlbuilder "github.com/huandu/go-sqlbuilder"
	log "github.com/sirupsen/logrus"
)

// ItemText is the scoring view of an unread item: its id plus the combined
// channel title, item title and summary text.
type ItemText struct {
	Id   int64
	Text string
}

const itemTextExpr = "channel.title || ' ' || news.title || ' ' || news.summary"

// BumpWords increments the weight of every given word by one, inserting new
// words at weight one. Weights never decrease.
func (s *Store) BumpWords(words []string) error {
	if len(words) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, word := range words {
		if _, err := tx.Exec(
			"INSERT INTO words(word, weight) VALUES(?, 1) ON CONFLICT(word) DO UPDATE SET weight = weight + 1",
			word,
		); err != nil {
			return fmt.Errorf("upsert error: %w", err)
		}
	}

	log.WithFields(log.Fields{
		"words": len(words),
	}).Info("Reinforced word weights")

	return tx.Commit()
}

// Weights returns the weight of each given word that exists in the vocabulary
// and is enabled. Unknown words are simply absent from the result.
func (s *Store) Weights(words []string) (map[string]float64, error) {
	if len(words) == 0 {
		return map[string]float64{}, nil
	}

	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("word", "weight").From("words")
	sb.Where(sb.Equal("enabled", 1))

	args := make([]interface{}, len(words))
	for i, word := range words {
		args[i] = word
	}
	sb.Where(sb.In("word", args...))

	query, queryArgs := sb.Build()
	rows, err := s.db.Query(query, queryArgs...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	weights := make(map[string]float64)
	for rows.Next() {
		var word string
		var weight float64
		if err := rows.Scan(&word, &weight); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		weights[word] = weight
	}

	return weights, rows.Err()
}

// Words lists the whole vocabulary, heaviest first.
func (s *Store) Words() ([]models.WordWeight, error) {
	rows, err := s.db.Query("SELECT word, weight, enabled FROM words ORDER BY weight DESC, word ASC")
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	var words []models.WordWeight
	for rows.Next() {
		var word models.WordWeight
		if err := rows.Scan(&word.Word, &word.Weight, &word.Enabled); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		words = append(words, word)
	}

	return words, rows.Err()
}

// SetWordEnabled toggles whether a word participates in quality scoring.
func (s *Store) SetWordEnabled(word string, enabled bool) error {
	res, err := s.db.Exec("UPDATE words SET enabled = ? WHERE word = ?", enabled, word)
	if err != nil {
		return fmt.Errorf("update error: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("word %q: %w", word, ErrNotFound)
	}
	return nil
}

// UnreadTexts returns the scoring text of every unread item. When containing
// is non-empty only items whose text contains that word are returned, which
// keeps the post-feedback recompute from touching unrelated items.
func (s *Store) UnreadTexts(containing string) ([]ItemText, error) {
	query := "SELECT news.id, " + itemTextExpr + " AS text FROM news JOIN channel ON channel.id = news.channel_id WHERE news.is_read = 0"
	var args []interface{}
	if containing != "" {
		query += " AND " + itemTextExpr + " LIKE ? COLLATE NOCASE"
		args = append(args, "%"+containing+"%")
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	var items []ItemText
	for rows.Next() {
		var item ItemText
		if err := rows.Scan(&item.Id, &item.Text); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// SetQuality writes a recomputed quality score for one item.
func (s *Store) SetQuality(newsID int64, quality float64) error {
	_, err := s.db.Exec("UPDATE news SET quality = ? WHERE id = ?", quality, newsID)
	if err != nil {
		return fmt.Errorf("update error: %w", err)
	}
	return nil
}
