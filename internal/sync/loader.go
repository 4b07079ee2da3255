package sync

import (
	"context"
	"fmt"
)

// LoadExistingTitles materializes the set of titles already live in the
// destination store. The set is rebuilt fresh every run; the store is the
// single source of truth for "already synced". Any store error propagates:
// reconciling against an incomplete set would insert duplicates.
func LoadExistingTitles(ctx context.Context, store RecordStore, pageSize int) (map[string]struct{}, error) {
	records, err := collectAll(ctx, store, false, pageSize)
	if err != nil {
		return nil, fmt.Errorf("load existing titles: %w", err)
	}
	titles := make(map[string]struct{}, len(records))
	for _, r := range records {
		if t := NormalizeTitle(r.Title); t != "" {
			titles[t] = struct{}{}
		}
	}
	return titles, nil
}
