// Package memory provides an in-memory record store for development runs
// and tests. It honors the same cursor and soft-delete contract as the real
// binding.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	gosync "sync"

	"github.com/openastro/papersync/internal/sync"
)

// Store is an in-memory sync.RecordStore.
type Store struct {
	mu       gosync.Mutex
	records  []sync.Record
	archived map[string]struct{}
	nextID   int
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{archived: make(map[string]struct{})}
}

// List pages through live records. Cursors are stringified offsets, which
// is as opaque as the engine is allowed to assume.
func (s *Store) List(_ context.Context, q sync.ListQuery) (sync.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	live := s.liveLocked()
	if q.SortAscending {
		sort.SliceStable(live, func(i, j int) bool {
			return live[i].PublishedAt.Before(live[j].PublishedAt)
		})
	} else {
		sort.SliceStable(live, func(i, j int) bool {
			return live[i].PublishedAt.After(live[j].PublishedAt)
		})
	}

	start := 0
	if q.Cursor != "" {
		n, err := strconv.Atoi(q.Cursor)
		if err != nil {
			return sync.Page{}, fmt.Errorf("invalid cursor %q", q.Cursor)
		}
		start = n
	}
	size := q.PageSize
	if size <= 0 {
		size = len(live)
	}
	if start > len(live) {
		start = len(live)
	}
	end := start + size
	if end > len(live) {
		end = len(live)
	}

	page := sync.Page{Records: live[start:end]}
	if end < len(live) {
		page.HasMore = true
		page.NextCursor = strconv.Itoa(end)
	}
	return page, nil
}

// Create appends a live record.
func (s *Store) Create(_ context.Context, item sync.Item, _ bool) (sync.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	rec := sync.Record{
		ID:          "mem-" + strconv.Itoa(s.nextID),
		Title:       item.Title,
		PublishedAt: item.PublishedAt,
	}
	s.records = append(s.records, rec)
	return rec, nil
}

// Archive soft-deletes by id. Unknown ids are an error.
func (s *Store) Archive(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.ID == id {
			s.archived[id] = struct{}{}
			return nil
		}
	}
	return fmt.Errorf("record %s not found", id)
}

// LiveCount reports the number of live records.
func (s *Store) LiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.liveLocked())
}

func (s *Store) liveLocked() []sync.Record {
	live := make([]sync.Record, 0, len(s.records))
	for _, r := range s.records {
		if _, gone := s.archived[r.ID]; !gone {
			live = append(live, r)
		}
	}
	return live
}
