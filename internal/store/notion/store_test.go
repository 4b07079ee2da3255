package notion

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openastro/papersync/internal/sync"
)

func newTestStore(t *testing.T, handler http.HandlerFunc) (*Store, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	store, err := New(Config{
		Token:      "secret-token",
		DatabaseID: "db-1",
		BaseURL:    srv.URL,
	}, zap.NewNop())
	require.NoError(t, err)
	return store, srv
}

func TestNewRequiresCredentials(t *testing.T) {
	t.Parallel()

	_, err := New(Config{DatabaseID: "db"}, zap.NewNop())
	require.Error(t, err)
	_, err = New(Config{Token: "tok"}, zap.NewNop())
	require.Error(t, err)
}

func TestListSendsSortAndCursor(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotBody map[string]any
	store, _ := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		require.Equal(t, apiVersion, r.Header.Get("Notion-Version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		fmt.Fprint(w, `{
			"results": [
				{"id": "page-1", "properties": {
					"Title": {"title": [{"plain_text": "First "}, {"plain_text": "half"}]},
					"Date": {"date": {"start": "2026-08-20T10:00:00Z"}}
				}},
				{"id": "page-2", "properties": {
					"Title": {"title": [{"plain_text": "Second"}]},
					"Date": {"date": {"start": "2026-08-21"}}
				}}
			],
			"has_more": true,
			"next_cursor": "cur-2"
		}`)
	})

	page, err := store.List(context.Background(), sync.ListQuery{
		SortAscending: true,
		Cursor:        "cur-1",
		PageSize:      100,
	})
	require.NoError(t, err)

	assert.Equal(t, "/v1/databases/db-1/query", gotPath)
	assert.Equal(t, "cur-1", gotBody["start_cursor"])
	assert.EqualValues(t, 100, gotBody["page_size"])
	sorts := gotBody["sorts"].([]any)
	require.Len(t, sorts, 1)
	assert.Equal(t, "ascending", sorts[0].(map[string]any)["direction"])
	assert.Equal(t, "Date", sorts[0].(map[string]any)["property"])

	require.Len(t, page.Records, 2)
	assert.Equal(t, "page-1", page.Records[0].ID)
	assert.Equal(t, "First half", page.Records[0].Title)
	assert.Equal(t, time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC), page.Records[0].PublishedAt)
	assert.Equal(t, time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC), page.Records[1].PublishedAt)
	assert.True(t, page.HasMore)
	assert.Equal(t, "cur-2", page.NextCursor)
}

func TestCreateBuildsProperties(t *testing.T) {
	t.Parallel()

	var gotBody map[string]any
	store, _ := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/pages", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		fmt.Fprint(w, `{"id": "page-new", "properties": {}}`)
	})

	item := sync.Item{
		Title:       "Binary black hole merger",
		SourceURL:   "https://arxiv.org/abs/2408.12345",
		PDFURL:      "https://arxiv.org/pdf/2408.12345",
		PublishedAt: time.Date(2026, 8, 28, 17, 0, 0, 0, time.UTC),
		Abstract:    "ringdown analysis",
		Authors:     "A, B, C et al.",
		Category:    "astro-ph.CO",
		Score:       5,
		Matched:     []string{"black hole"},
	}
	rec, err := store.Create(context.Background(), item, true)
	require.NoError(t, err)
	assert.Equal(t, "page-new", rec.ID)
	assert.Equal(t, item.Title, rec.Title)

	parent := gotBody["parent"].(map[string]any)
	assert.Equal(t, "db-1", parent["database_id"])

	props := gotBody["properties"].(map[string]any)
	title := props["Title"].(map[string]any)["title"].([]any)
	text := title[0].(map[string]any)["text"].(map[string]any)
	assert.Equal(t, "Binary black hole merger", text["content"])
	assert.Equal(t, "https://arxiv.org/pdf/2408.12345", props["PDF"].(map[string]any)["url"])
	assert.EqualValues(t, 5, props["Score"].(map[string]any)["number"])
	assert.Equal(t, true, props["Priority"].(map[string]any)["checkbox"])
	date := props["Date"].(map[string]any)["date"].(map[string]any)
	assert.Equal(t, "2026-08-28T17:00:00Z", date["start"])
	keywords := props["Keywords"].(map[string]any)["multi_select"].([]any)
	require.Len(t, keywords, 1)
	assert.Equal(t, "black hole", keywords[0].(map[string]any)["name"])
}

func TestArchivePatchesPage(t *testing.T) {
	t.Parallel()

	var gotMethod, gotPath string
	var gotBody map[string]any
	store, _ := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		fmt.Fprint(w, `{}`)
	})

	require.NoError(t, store.Archive(context.Background(), "page-9"))
	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "/v1/pages/page-9", gotPath)
	assert.Equal(t, true, gotBody["archived"])
}

func TestErrorStatusSurfacesBody(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"code": "validation_error"}`)
	})

	_, err := store.List(context.Background(), sync.ListQuery{PageSize: 10})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Contains(t, err.Error(), "validation_error")
}
