package sync

import (
	"context"
	"time"
)

// Entry is one raw feed entry before normalization. Fields map one-to-one
// onto what the upstream syndication format exposes; the fetcher decides
// which entries survive.
type Entry struct {
	Title       string
	Link        string
	Abstract    string
	Authors     []string
	PublishedAt time.Time
}

// FeedSource retrieves the most recently submitted entries for one upstream
// category. Implementations own transport, parsing, and timeouts.
type FeedSource interface {
	FetchCategory(ctx context.Context, category string, limit int) ([]Entry, error)
}

// ListQuery selects a page of records from the store. The cursor is opaque
// to the engine; an empty cursor means the first page.
type ListQuery struct {
	SortAscending bool
	Cursor        string
	PageSize      int
}

// Page is one page of store records plus continuation state.
type Page struct {
	Records    []Record
	NextCursor string
	HasMore    bool
}

// RecordStore is the destination of synced papers. List must only return
// live (non-archived) records; Archive is a soft delete, after which the
// record never reappears in List results.
type RecordStore interface {
	List(ctx context.Context, q ListQuery) (Page, error)
	Create(ctx context.Context, item Item, priority bool) (Record, error)
	Archive(ctx context.Context, id string) error
}

// Notifier publishes the run report to interested downstream consumers.
type Notifier interface {
	NotifyRun(ctx context.Context, report Report) error
	Close() error
}

// RunStore persists run reports for auditing.
type RunStore interface {
	SaveRun(ctx context.Context, report Report) error
	Close()
}

// SnapshotStore archives raw feed payloads for later inspection.
type SnapshotStore interface {
	Save(ctx context.Context, key string, data []byte) (string, error)
}

// Clock abstracts time.Now for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator mints run identifiers.
type IDGenerator interface {
	NewID() string
}

// Pacer is the suspension point between category fetches. Wait blocks until
// the next fetch is allowed or the context finishes.
type Pacer interface {
	Wait(ctx context.Context) error
}

// NoopNotifier discards reports. Useful for tests and local runs.
type NoopNotifier struct{}

// NotifyRun does nothing and returns nil.
func (NoopNotifier) NotifyRun(_ context.Context, _ Report) error { return nil }

// Close does nothing and returns nil.
func (NoopNotifier) Close() error { return nil }

// NoopRunStore discards run reports.
type NoopRunStore struct{}

// SaveRun does nothing and returns nil.
func (NoopRunStore) SaveRun(_ context.Context, _ Report) error { return nil }

// Close does nothing.
func (NoopRunStore) Close() {}

// NoopSnapshotStore discards payloads.
type NoopSnapshotStore struct{}

// Save does nothing and returns an empty URI.
func (NoopSnapshotStore) Save(_ context.Context, _ string, _ []byte) (string, error) {
	return "", nil
}
