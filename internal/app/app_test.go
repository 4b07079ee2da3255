package app_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openastro/papersync/internal/app"
	"github.com/openastro/papersync/internal/config"
	syncengine "github.com/openastro/papersync/internal/sync"
)

func atomFeed(published time.Time) string {
	ts := published.UTC().Format(time.RFC3339)
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>ArXiv Query Results</title>
  <entry>
    <id>http://arxiv.org/abs/2408.01234v1</id>
    <title>Black hole ringdown spectroscopy</title>
    <link href="http://arxiv.org/abs/2408.01234v1" rel="alternate" type="text/html"/>
    <summary>We analyze gravitational wave signals from a black hole merger.</summary>
    <published>%s</published>
    <updated>%s</updated>
    <author><name>R. Alvarez</name></author>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2408.05678v1</id>
    <title>Galaxy rotation curves revisited</title>
    <link href="http://arxiv.org/abs/2408.05678v1" rel="alternate" type="text/html"/>
    <summary>A survey of rotation curves across nearby spirals.</summary>
    <published>%s</published>
    <updated>%s</updated>
    <author><name>T. Okafor</name></author>
  </entry>
</feed>`, ts, ts, ts, ts)
}

func memoryConfig(feedURL string) config.Config {
	return config.Config{
		Sync: config.SyncConfig{
			Categories:    []string{"astro-ph.CO"},
			LookbackDays:  7,
			MaxArticles:   20,
			MaxToAdd:      5,
			TopN:          3,
			PageSize:      100,
			FeedPageLimit: 50,
			MaxAuthors:    3,
		},
		Keywords: syncengine.KeywordTiers{
			High:   []string{"black hole"},
			Medium: []string{"cosmology"},
			Low:    []string{"galaxy"},
		},
		Feed:      config.FeedConfig{BaseURL: feedURL, TimeoutSeconds: 5},
		Store:     config.StoreConfig{Provider: "memory"},
		RunLog:    config.RunLogConfig{Provider: "noop"},
		Notifier:  config.NotifierConfig{Provider: "memory"},
		Snapshots: config.SnapshotConfig{Provider: "memory"},
	}
}

func TestApp_RunOnce_EndToEnd(t *testing.T) {
	t.Parallel()

	feed := atomFeed(time.Now().Add(-24 * time.Hour))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/query", r.URL.Path)
		w.Header().Set("Content-Type", "application/atom+xml")
		fmt.Fprint(w, feed)
	}))
	defer srv.Close()

	a, err := app.New(context.Background(), memoryConfig(srv.URL), zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	report, err := a.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, syncengine.StateDone, report.State)
	assert.Equal(t, 2, report.Fetched)
	assert.Equal(t, 2, report.Inserted)
	assert.Zero(t, report.Archived)

	latest, ok := a.LatestReport()
	require.True(t, ok)
	assert.Equal(t, report.RunID, latest.RunID)
}

func TestApp_RunOnce_SecondRunIsIdempotent(t *testing.T) {
	t.Parallel()

	feed := atomFeed(time.Now().Add(-24 * time.Hour))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, feed)
	}))
	defer srv.Close()

	a, err := app.New(context.Background(), memoryConfig(srv.URL), zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	first, err := a.RunOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, first.Inserted)

	second, err := a.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, second.Inserted)
	assert.Equal(t, 2, second.Existing)
}

func TestApp_LatestReport_EmptyBeforeFirstRun(t *testing.T) {
	t.Parallel()

	a, err := app.New(context.Background(), memoryConfig("http://127.0.0.1:0"), zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	_, ok := a.LatestReport()
	assert.False(t, ok)
}

func TestApp_New_UnknownProviders(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"store", func(c *config.Config) { c.Store.Provider = "dynamo" }},
		{"runlog", func(c *config.Config) { c.RunLog.Provider = "sqlite" }},
		{"notifier", func(c *config.Config) { c.Notifier.Provider = "kafka" }},
		{"snapshots", func(c *config.Config) { c.Snapshots.Provider = "s3" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := memoryConfig("http://127.0.0.1:0")
			tc.mutate(&cfg)
			_, err := app.New(context.Background(), cfg, zap.NewNop())
			require.Error(t, err)
			assert.Contains(t, err.Error(), "unknown")
		})
	}
}
