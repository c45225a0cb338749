package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"readnext/db"
	"readnext/ingest"
	"readnext/models"
	"readnext/policy"
	"readnext/relevance"
	"readnext/server"
	"readnext/tree"
	"readnext/update"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testApp(t *testing.T) (*fiber.App, *db.Store) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "news.db")
	require.NoError(t, db.Migrate(path))

	store, err := db.New(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	counters := tree.New()
	require.NoError(t, counters.Rebuild(store))
	engine := relevance.NewEngine(store)

	app := server.Server(&server.ServerConfig{
		Store:       store,
		Tree:        counters,
		Policy:      policy.New(store, policy.Ascending, 0),
		Engine:      engine,
		Coordinator: update.NewCoordinator(store, ingest.NewRegistry(), engine, counters, 1),
	})
	return app, store
}

func seed(t *testing.T, store *db.Store) {
	t.Helper()

	_, err := store.AddFolder("Tech")
	require.NoError(t, err)
	_, err = store.AddChannel("Go Blog", "https://go.dev/blog/feed.atom", models.KindFeed, "Tech")
	require.NoError(t, err)
	_, err = store.InsertNewsBatch("Go Blog", []models.RawItem{
		{Title: "generics design", Link: "https://example.com/1", Summary: "about generics"},
	})
	require.NoError(t, err)
}

func getJSON(t *testing.T, app *fiber.App, path string, out any) *http.Response {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
	require.NoError(t, err)
	if out != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestListEndpoints(t *testing.T) {
	app, store := testApp(t)
	seed(t, store)

	var folders []models.Folder
	resp := getJSON(t, app, "/folders", &folders)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, folders, 1)
	assert.Equal(t, "Tech", folders[0].Title)

	var channels []models.Channel
	resp = getJSON(t, app, "/channels", &channels)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, channels, 1)
	assert.Equal(t, "Go Blog", channels[0].Title)
	assert.Equal(t, int64(1), channels[0].Unread)
}

func TestListEndpointsEmpty(t *testing.T) {
	app, _ := testApp(t)

	// Empty lists serialize as [] rather than null
	for _, path := range []string{"/folders", "/channels", "/words"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var out []any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.NotNil(t, out)
		assert.Empty(t, out)
	}
}

func TestNextAndRead(t *testing.T) {
	app, store := testApp(t)
	seed(t, store)

	var item models.NewsItem
	resp := getJSON(t, app, "/news/next", &item)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "generics design", item.Title)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/news/"+itoa(item.Id)+"/read", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = getJSON(t, app, "/news/next", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	var counts struct {
		Channels map[string]int64 `json:"channels"`
		Folders  map[string]int64 `json:"folders"`
	}
	resp = getJSON(t, app, "/counts", &counts)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(0), counts.Channels["Go Blog"])
	assert.Equal(t, int64(0), counts.Folders["Tech"])
}

func TestReadUnknownItem(t *testing.T) {
	app, _ := testApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/news/999/read", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/news/abc/read", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLike(t *testing.T) {
	app, store := testApp(t)
	seed(t, store)

	var item models.NewsItem
	resp := getJSON(t, app, "/news/next", &item)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/news/"+itoa(item.Id)+"/like", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var liked models.NewsItem
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&liked))
	assert.Greater(t, liked.Quality, 0.0)

	var words []models.WordWeight
	resp = getJSON(t, app, "/words", &words)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, words)
}

func TestToggleWordAndFolder(t *testing.T) {
	app, store := testApp(t)
	seed(t, store)

	require.NoError(t, store.BumpWords([]string{"generics"}))

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/words/generics/enabled?value=false", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	var words []models.WordWeight
	resp = getJSON(t, app, "/words", &words)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, words, 1)
	assert.False(t, words[0].Enabled)

	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/words/unknown/enabled", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/folders/Tech/expanded?value=true", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	var folders []models.Folder
	resp = getJSON(t, app, "/folders", &folders)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, folders, 1)
	assert.True(t, folders[0].Expanded)
}

func TestReadAll(t *testing.T) {
	app, store := testApp(t)
	seed(t, store)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/news/read-all", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = getJSON(t, app, "/news/next", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
