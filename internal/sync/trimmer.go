package sync

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Trimmer enforces the retention window on the destination store.
type Trimmer struct {
	store  RecordStore
	logger *zap.Logger
}

// NewTrimmer constructs a Trimmer.
func NewTrimmer(store RecordStore, logger *zap.Logger) *Trimmer {
	return &Trimmer{store: store, logger: logger}
}

// Trim archives the oldest live records until at most maxArticles remain.
// Records are read oldest-first through the shared pagination loop, so the
// count is exact even when the store pages. Per-record archive failures are
// logged and skipped; the failed record is simply retried by the next run's
// trim. The returned count is the number of records actually archived.
func (t *Trimmer) Trim(ctx context.Context, maxArticles int, pageSize int) (int, error) {
	records, err := collectAll(ctx, t.store, true, pageSize)
	if err != nil {
		return 0, fmt.Errorf("trim read: %w", err)
	}
	excess := len(records) - maxArticles
	if excess <= 0 {
		return 0, nil
	}

	archived := 0
	for _, rec := range records[:excess] {
		if err := t.store.Archive(ctx, rec.ID); err != nil {
			t.logger.Warn("archive failed",
				zap.String("record_id", rec.ID),
				zap.String("title", rec.Title),
				zap.Error(err),
			)
			continue
		}
		archived++
		t.logger.Info("archived record",
			zap.String("record_id", rec.ID),
			zap.String("title", rec.Title),
			zap.Time("published_at", rec.PublishedAt),
		)
	}
	return archived, nil
}
