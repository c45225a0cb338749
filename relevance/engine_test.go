package relevance_test

import (
	"path/filepath"
	"testing"

	"readnext/db"
	"readnext/models"
	"readnext/relevance"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *db.Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "news.db")
	require.NoError(t, db.Migrate(path))

	store, err := db.New(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func TestFeedbackScoring(t *testing.T) {
	store := testStore(t)
	engine := relevance.NewEngine(store)

	_, err := store.AddChannel("A", "https://a.example.com/feed", models.KindFeed, "")
	require.NoError(t, err)
	_, err = store.InsertNewsBatch("A", []models.RawItem{
		{Title: "alpha", Link: "https://a.example.com/1", Summary: "x"},
		{Title: "distinctive words here", Link: "https://a.example.com/2", Summary: "x"},
	})
	require.NoError(t, err)

	first, err := store.NextUnread(db.NextOptions{Descending: true})
	require.NoError(t, err)
	// Both at quality zero, tie-break picks the older item
	assert.Equal(t, "alpha", first.Title)

	items, err := store.UnreadTexts("distinctive")
	require.NoError(t, err)
	require.Len(t, items, 1)
	target, err := store.NewsByID(items[0].Id)
	require.NoError(t, err)

	require.NoError(t, engine.Like(target))

	// Every word of the liked item's text is now in the vocabulary at weight 1
	weights, err := store.Weights([]string{"distinctive", "words", "here"})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"distinctive": 1, "words": 1, "here": 1}, weights)

	// The liked item was rescored: 3 matched words / weight sum 3
	target, err = store.NewsByID(target.Id)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, target.Quality, 1e-9)

	// The unrelated item shares no vocabulary word and keeps its prior quality
	other, err := store.NextUnread(db.NextOptions{Channel: "A"})
	require.NoError(t, err)
	assert.Equal(t, "alpha", other.Title)
	assert.Zero(t, other.Quality)

	// Ascending selection now surfaces the novel item before the liked one
	next, err := store.NextUnread(db.NextOptions{})
	require.NoError(t, err)
	assert.Equal(t, "alpha", next.Title)
}

func TestFeedbackMonotonic(t *testing.T) {
	store := testStore(t)
	engine := relevance.NewEngine(store)

	_, err := store.AddChannel("A", "https://a.example.com/feed", models.KindFeed, "")
	require.NoError(t, err)
	_, err = store.InsertNewsBatch("A", []models.RawItem{
		{Title: "distinctive words here", Link: "https://a.example.com/1", Summary: "x"},
	})
	require.NoError(t, err)

	item, err := store.NextUnread(db.NextOptions{})
	require.NoError(t, err)

	require.NoError(t, engine.Like(item))
	before, err := store.Weights([]string{"distinctive", "words", "here"})
	require.NoError(t, err)

	require.NoError(t, engine.Like(item))
	after, err := store.Weights([]string{"distinctive", "words", "here"})
	require.NoError(t, err)

	for word, weight := range before {
		assert.GreaterOrEqual(t, after[word], weight, "weight of %q decreased", word)
	}

	// Repeated reinforcement halves the quality: 3 matched / weight sum 6
	item, err = store.NewsByID(item.Id)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, item.Quality, 1e-9)
}

func TestRecomputeAll(t *testing.T) {
	store := testStore(t)
	engine := relevance.NewEngine(store)

	_, err := store.AddChannel("A", "https://a.example.com/feed", models.KindFeed, "")
	require.NoError(t, err)
	_, err = store.InsertNewsBatch("A", []models.RawItem{
		{Title: "golang release notes", Link: "https://a.example.com/1", Summary: "x"},
		{Title: "alpha", Link: "https://a.example.com/2", Summary: "x"},
	})
	require.NoError(t, err)

	require.NoError(t, store.BumpWords([]string{"golang"}))

	updated, err := engine.RecomputeAll()
	require.NoError(t, err)
	// Only the item with a vocabulary match gets a new score
	assert.Equal(t, 1, updated)

	scored, err := store.NextUnread(db.NextOptions{Descending: true})
	require.NoError(t, err)
	assert.Equal(t, "golang release notes", scored.Title)
	assert.InDelta(t, 1.0, scored.Quality, 1e-9)

	// Read items are never rescored
	require.NoError(t, store.MarkAllRead())
	updated, err = engine.RecomputeAll()
	require.NoError(t, err)
	assert.Equal(t, 0, updated)
}
