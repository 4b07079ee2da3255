// Package arxiv implements the feed source against the arXiv export API.
package arxiv

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/openastro/papersync/internal/sync"
)

const defaultBaseURL = "https://export.arxiv.org"

// maxFeedBytes bounds how much of an upstream response is read.
const maxFeedBytes = 8 << 20

// Config controls the arXiv source.
type Config struct {
	BaseURL        string
	TimeoutSeconds int
	UserAgent      string
}

// Source fetches category feeds from the arXiv Atom query endpoint. The
// endpoint returns entries ordered by submission date descending, bounded
// by max_results; pagination past the first page is deliberately not done
// here (the lookback cutoff is enforced per entry by the engine).
type Source struct {
	client    *http.Client
	parser    *gofeed.Parser
	baseURL   string
	userAgent string
	snapshots sync.SnapshotStore
	logger    *zap.Logger
}

// New constructs a Source. A nil snapshot store disables raw payload
// archival.
func New(cfg Config, snapshots sync.SnapshotStore, logger *zap.Logger) *Source {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 30
	}
	if snapshots == nil {
		snapshots = sync.NoopSnapshotStore{}
	}
	return &Source{
		client:    &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		parser:    gofeed.NewParser(),
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		snapshots: snapshots,
		logger:    logger,
	}
}

// FetchCategory requests the most recently submitted entries for one
// category and maps them onto engine entries. Entries gofeed cannot give a
// publication time for come back with a zero time; the engine drops them.
func (s *Source) FetchCategory(ctx context.Context, category string, limit int) ([]sync.Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	endpoint := s.queryURL(category, limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", category, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			s.logger.Warn("close feed body", zap.Error(cerr))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch feed %s: unexpected status %d", category, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("read feed body: %w", err)
	}

	s.snapshot(ctx, category, body)

	feed, err := s.parser.ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", category, err)
	}

	entries := make([]sync.Entry, 0, len(feed.Items))
	for _, item := range feed.Items {
		entries = append(entries, toEntry(item))
	}
	return entries, nil
}

func (s *Source) queryURL(category string, limit int) string {
	q := url.Values{}
	q.Set("search_query", "cat:"+category)
	q.Set("sortBy", "submittedDate")
	q.Set("sortOrder", "descending")
	q.Set("start", "0")
	q.Set("max_results", fmt.Sprintf("%d", limit))
	return s.baseURL + "/api/query?" + q.Encode()
}

// snapshot archives the raw payload; failures are logged, never fatal.
func (s *Source) snapshot(ctx context.Context, category string, body []byte) {
	key := fmt.Sprintf("feeds/%s/%s.xml", category, time.Now().UTC().Format("20060102T150405Z"))
	if _, err := s.snapshots.Save(ctx, key, body); err != nil {
		s.logger.Warn("feed snapshot failed",
			zap.String("category", category),
			zap.Error(err),
		)
	}
}

func toEntry(item *gofeed.Item) sync.Entry {
	var published time.Time
	switch {
	case item.PublishedParsed != nil:
		published = *item.PublishedParsed
	case item.UpdatedParsed != nil:
		published = *item.UpdatedParsed
	}

	authors := make([]string, 0, len(item.Authors))
	for _, a := range item.Authors {
		if a != nil && a.Name != "" {
			authors = append(authors, a.Name)
		}
	}

	abstract := item.Description
	if abstract == "" {
		abstract = item.Content
	}

	return sync.Entry{
		Title:       item.Title,
		Link:        item.Link,
		Abstract:    abstract,
		Authors:     authors,
		PublishedAt: published,
	}
}
