package tree_test

import (
	"path/filepath"
	"testing"

	"readnext/db"
	"readnext/models"
	"readnext/tree"

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

	_, err := store.AddFolder("Tech")
	require.NoError(t, err)
	_, err = store.AddChannel("Go Blog", "https://go.dev/blog/feed.atom", models.KindFeed, "Tech")
	require.NoError(t, err)
	_, err = store.AddChannel("Loose", "https://loose.example.com/feed", models.KindFeed, "")
	require.NoError(t, err)

	_, err = store.InsertNewsBatch("Go Blog", []models.RawItem{
		{Title: "a", Link: "https://example.com/a", Summary: "s"},
		{Title: "b", Link: "https://example.com/b", Summary: "s"},
	})
	require.NoError(t, err)
	_, err = store.InsertNewsBatch("Loose", []models.RawItem{
		{Title: "c", Link: "https://example.com/c", Summary: "s"},
	})
	require.NoError(t, err)
}

func TestRebuild(t *testing.T) {
	store := testStore(t)
	seed(t, store)

	counters := tree.New()
	require.NoError(t, counters.Rebuild(store))

	assert.Equal(t, int64(2), counters.ChannelCount("Go Blog"))
	assert.Equal(t, int64(1), counters.ChannelCount("Loose"))
	assert.Equal(t, int64(2), counters.FolderCount("Tech"))
}

func TestIncrementalUpdates(t *testing.T) {
	store := testStore(t)
	seed(t, store)

	counters := tree.New()
	require.NoError(t, counters.Rebuild(store))

	counters.OnIngest("Go Blog", 3)
	assert.Equal(t, int64(5), counters.ChannelCount("Go Blog"))
	assert.Equal(t, int64(5), counters.FolderCount("Tech"))

	// Zero and negative deltas are ignored
	counters.OnIngest("Go Blog", 0)
	assert.Equal(t, int64(5), counters.ChannelCount("Go Blog"))

	counters.OnRead("Go Blog")
	assert.Equal(t, int64(4), counters.ChannelCount("Go Blog"))
	assert.Equal(t, int64(4), counters.FolderCount("Tech"))

	// Unfiled channels touch no folder
	counters.OnRead("Loose")
	assert.Equal(t, int64(0), counters.ChannelCount("Loose"))
	assert.Equal(t, int64(4), counters.FolderCount("Tech"))

	// Counters never go below zero
	counters.OnRead("Loose")
	assert.Equal(t, int64(0), counters.ChannelCount("Loose"))

	counters.OnMarkAllRead()
	assert.Equal(t, int64(0), counters.ChannelCount("Go Blog"))
	assert.Equal(t, int64(0), counters.FolderCount("Tech"))
}

func TestOnMove(t *testing.T) {
	store := testStore(t)
	seed(t, store)

	counters := tree.New()
	require.NoError(t, counters.Rebuild(store))

	counters.OnMove("Loose", "Tech")
	assert.Equal(t, int64(3), counters.FolderCount("Tech"))

	counters.OnMove("Go Blog", "")
	assert.Equal(t, int64(1), counters.FolderCount("Tech"))
	assert.Equal(t, int64(2), counters.ChannelCount("Go Blog"))
}

func TestRebuildMatchesIncremental(t *testing.T) {
	store := testStore(t)
	seed(t, store)

	counters := tree.New()
	require.NoError(t, counters.Rebuild(store))

	item, err := store.NextUnread(db.NextOptions{Channel: "Go Blog"})
	require.NoError(t, err)
	require.NoError(t, store.MarkRead(item.Id))
	counters.OnRead("Go Blog")

	incChannels, incFolders := counters.Snapshot()

	rebuilt := tree.New()
	require.NoError(t, rebuilt.Rebuild(store))
	rebChannels, rebFolders := rebuilt.Snapshot()

	assert.Equal(t, rebChannels, incChannels)
	assert.Equal(t, rebFolders, incFolders)
}

func TestSnapshotIsACopy(t *testing.T) {
	counters := tree.New()
	counters.OnIngest("A", 1)

	channels, _ := counters.Snapshot()
	channels["A"] = 99

	assert.Equal(t, int64(1), counters.ChannelCount("A"))
}
