package sync

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/openastro/papersync/internal/metrics"
)

// FetcherConfig controls the candidate fetch step.
type FetcherConfig struct {
	Categories   []string
	LookbackDays int
	PageLimit    int
	MaxAuthors   int
}

// Fetcher pulls recent entries from the feed source, normalizes and scores
// them. Categories are fetched sequentially; the pacer enforces the
// mandatory delay between upstream requests.
type Fetcher struct {
	source FeedSource
	pacer  Pacer
	tiers  KeywordTiers
	clock  Clock
	policy *RetryPolicy
	cfg    FetcherConfig
	logger *zap.Logger
}

// NewFetcher constructs a Fetcher. A nil policy disables fetch retries.
func NewFetcher(
	source FeedSource,
	pacer Pacer,
	tiers KeywordTiers,
	clock Clock,
	policy *RetryPolicy,
	cfg FetcherConfig,
	logger *zap.Logger,
) *Fetcher {
	if cfg.PageLimit <= 0 {
		cfg.PageLimit = 50
	}
	if cfg.MaxAuthors <= 0 {
		cfg.MaxAuthors = MaxDisplayAuthors
	}
	return &Fetcher{
		source: source,
		pacer:  pacer,
		tiers:  tiers,
		clock:  clock,
		policy: policy,
		cfg:    cfg,
		logger: logger,
	}
}

// FetchRecent returns the union of scored candidates across all configured
// categories, ordered by (score desc, publishedAt desc). A category that
// fails to fetch contributes zero items and a warning; it never aborts the
// remaining categories.
func (f *Fetcher) FetchRecent(ctx context.Context) ([]Item, []string, error) {
	cutoff := f.clock.Now().AddDate(0, 0, -f.cfg.LookbackDays)
	var items []Item
	var warnings []string

	// The pacer starts with one free slot, so the first category is not
	// delayed and every later one waits out the configured gap.
	for _, category := range f.cfg.Categories {
		if f.pacer != nil {
			if err := f.pacer.Wait(ctx); err != nil {
				return items, warnings, fmt.Errorf("pacing wait: %w", err)
			}
		}
		var entries []Entry
		err := retry(ctx, f.policy, func() error {
			var ferr error
			entries, ferr = f.source.FetchCategory(ctx, category, f.cfg.PageLimit)
			return ferr
		})
		if err != nil {
			if ctx.Err() != nil {
				return items, warnings, fmt.Errorf("fetch category %s: %w", category, err)
			}
			f.logger.Warn("category fetch failed",
				zap.String("category", category),
				zap.Error(err),
			)
			metrics.ObserveFeedError(category)
			warnings = append(warnings, fmt.Sprintf("category %s: %v", category, err))
			continue
		}
		kept := 0
		for _, entry := range entries {
			item, ok := f.normalize(entry, category, cutoff)
			if !ok {
				continue
			}
			items = append(items, item)
			kept++
		}
		f.logger.Debug("category fetched",
			zap.String("category", category),
			zap.Int("entries", len(entries)),
			zap.Int("kept", kept),
		)
	}

	sortByRank(items)
	return items, warnings, nil
}

// normalize turns a raw entry into a scored Item. Entries missing any of
// title, link, publication date, or abstract are dropped, as are entries
// older than the lookback cutoff. The cutoff is applied per entry: the feed
// arrives newest-first, but a single page may straddle the cutoff, so no
// early exit on the first stale entry.
func (f *Fetcher) normalize(entry Entry, category string, cutoff time.Time) (Item, bool) {
	title := NormalizeTitle(entry.Title)
	if title == "" || entry.Link == "" || entry.PublishedAt.IsZero() || entry.Abstract == "" {
		return Item{}, false
	}
	if entry.PublishedAt.Before(cutoff) {
		return Item{}, false
	}

	abstract := TruncateAbstract(entry.Abstract)
	score, matched := Score(title, abstract, f.tiers)
	return Item{
		Title:       title,
		SourceURL:   entry.Link,
		PDFURL:      DerivePDFURL(entry.Link),
		PublishedAt: entry.PublishedAt,
		Abstract:    abstract,
		Authors:     SummarizeAuthors(entry.Authors, f.cfg.MaxAuthors),
		Category:    category,
		Score:       score,
		Matched:     matched,
	}, true
}

// sortByRank orders items by score descending, then publication time
// descending. The sort is stable so equal items keep feed order.
func sortByRank(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].PublishedAt.After(items[j].PublishedAt)
	})
}
