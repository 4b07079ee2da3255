package sync

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/openastro/papersync/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.Init()
	os.Exit(m.Run())
}

// fakeStore is an in-memory RecordStore with injectable failures and
// configurable page size behavior, mirroring the cursor contract of the
// real store bindings.
type fakeStore struct {
	mu         sync.Mutex
	records    []Record
	archivedID map[string]struct{}
	nextID     int

	listErr        error
	listErrOnPage  int  // fail only this page when listErr is set; -1 = every page
	listErrAscOnly bool // fail only ascending reads (the trim path)
	createErr      map[string]error
	archiveErr     map[string]error

	createCalls  []string
	archiveCalls []string
	priorities   map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		archivedID:    make(map[string]struct{}),
		createErr:     make(map[string]error),
		archiveErr:    make(map[string]error),
		priorities:    make(map[string]bool),
		listErrOnPage: -1,
	}
}

func (s *fakeStore) seed(title string, published time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.records = append(s.records, Record{
		ID:          "rec-" + strconv.Itoa(s.nextID),
		Title:       title,
		PublishedAt: published,
	})
}

func (s *fakeStore) live() []Record {
	var out []Record
	for _, r := range s.records {
		if _, gone := s.archivedID[r.ID]; !gone {
			out = append(out, r)
		}
	}
	return out
}

func (s *fakeStore) List(_ context.Context, q ListQuery) (Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := 0
	if q.Cursor != "" {
		n, err := strconv.Atoi(q.Cursor)
		if err != nil {
			return Page{}, fmt.Errorf("bad cursor %q", q.Cursor)
		}
		start = n
	}
	pageNum := 0
	if q.PageSize > 0 {
		pageNum = start / q.PageSize
	}
	if s.listErr != nil && (s.listErrOnPage < 0 || s.listErrOnPage == pageNum) {
		if !s.listErrAscOnly || q.SortAscending {
			return Page{}, s.listErr
		}
	}

	live := s.live()
	if q.SortAscending {
		sort.SliceStable(live, func(i, j int) bool {
			return live[i].PublishedAt.Before(live[j].PublishedAt)
		})
	}
	size := q.PageSize
	if size <= 0 {
		size = len(live)
	}
	end := start + size
	if end > len(live) {
		end = len(live)
	}
	if start > len(live) {
		start = len(live)
	}
	page := Page{Records: append([]Record(nil), live[start:end]...)}
	if end < len(live) {
		page.HasMore = true
		page.NextCursor = strconv.Itoa(end)
	}
	return page, nil
}

func (s *fakeStore) Create(_ context.Context, item Item, priority bool) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalls = append(s.createCalls, item.Title)
	if err, ok := s.createErr[item.Title]; ok {
		return Record{}, err
	}
	s.nextID++
	rec := Record{
		ID:          "rec-" + strconv.Itoa(s.nextID),
		Title:       item.Title,
		PublishedAt: item.PublishedAt,
	}
	s.records = append(s.records, rec)
	s.priorities[item.Title] = priority
	return rec, nil
}

func (s *fakeStore) Archive(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.archiveCalls = append(s.archiveCalls, id)
	if err, ok := s.archiveErr[id]; ok {
		return err
	}
	s.archivedID[id] = struct{}{}
	return nil
}

// fakeSource serves canned entries per category and can fail categories.
type fakeSource struct {
	entries map[string][]Entry
	errs    map[string]error
	calls   []string
}

func (f *fakeSource) FetchCategory(_ context.Context, category string, _ int) ([]Entry, error) {
	f.calls = append(f.calls, category)
	if err, ok := f.errs[category]; ok {
		return nil, err
	}
	return f.entries[category], nil
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

type fakeIDGen struct {
	id string
}

func (g *fakeIDGen) NewID() string { return g.id }

// instantPacer never blocks.
type instantPacer struct {
	waits int
}

func (p *instantPacer) Wait(ctx context.Context) error {
	p.waits++
	return ctx.Err()
}
