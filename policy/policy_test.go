package policy_test

import (
	"path/filepath"
	"testing"

	"readnext/db"
	"readnext/models"
	"readnext/policy"

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

func seed(t *testing.T, store *db.Store) {
	t.Helper()

	_, err := store.AddChannel("A", "https://a.example.com/feed", models.KindFeed, "")
	require.NoError(t, err)
	_, err = store.InsertNewsBatch("A", []models.RawItem{
		{Title: "low", Link: "https://a.example.com/1", Summary: "s"},
		{Title: "high", Link: "https://a.example.com/2", Summary: "s"},
	})
	require.NoError(t, err)

	items, err := store.UnreadTexts("high")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NoError(t, store.SetQuality(items[0].Id, 5.0))
}

func TestSelectNextAscending(t *testing.T) {
	store := testStore(t)
	seed(t, store)

	p := policy.New(store, policy.Ascending, 0)

	item, err := p.SelectNext("")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "low", item.Title)
}

func TestSelectNextDescending(t *testing.T) {
	store := testStore(t)
	seed(t, store)

	p := policy.New(store, policy.Descending, 0)

	item, err := p.SelectNext("")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "high", item.Title)
}

func TestSelectNextThreshold(t *testing.T) {
	store := testStore(t)
	seed(t, store)

	p := policy.New(store, policy.Ascending, 5.0)

	item, err := p.SelectNext("")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "low", item.Title)

	require.NoError(t, store.MarkRead(item.Id))

	// The remaining item sits at the cutoff and is excluded
	item, err = p.SelectNext("")
	require.NoError(t, err)
	assert.Nil(t, item)
}

func TestSelectNextEmpty(t *testing.T) {
	store := testStore(t)

	p := policy.New(store, policy.Ascending, 0)

	item, err := p.SelectNext("")
	require.NoError(t, err)
	assert.Nil(t, item)
}

func TestUnknownOrderFallsBackToAscending(t *testing.T) {
	store := testStore(t)

	p := policy.New(store, policy.Order("sideways"), 0)
	assert.Equal(t, policy.Ascending, p.Order)
}

func TestSelectRandom(t *testing.T) {
	store := testStore(t)
	seed(t, store)

	// Threshold does not apply to random picks
	p := policy.New(store, policy.Ascending, 0.1)

	for i := 0; i < 10; i++ {
		item, err := p.SelectRandom("")
		require.NoError(t, err)
		require.NotNil(t, item)
		assert.Contains(t, []string{"low", "high"}, item.Title)
	}
}
