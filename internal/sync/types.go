// Package sync implements the fetch/reconcile/trim engine that keeps the
// destination record store in step with the upstream paper feed.
package sync

import (
	"strings"
	"time"
)

// MaxAbstractLen bounds the abstract text persisted with each record.
const MaxAbstractLen = 2000

// MaxDisplayAuthors is the number of authors kept before "et al." kicks in.
const MaxDisplayAuthors = 3

// Item is one candidate paper fetched from the upstream feed for a single
// run. Items are never mutated after scoring; they are either discarded as
// duplicates or handed to the record store.
type Item struct {
	Title       string    `json:"title"`
	SourceURL   string    `json:"source_url"`
	PDFURL      string    `json:"pdf_url"`
	PublishedAt time.Time `json:"published_at"`
	Abstract    string    `json:"abstract"`
	Authors     string    `json:"authors"`
	Category    string    `json:"category"`
	Score       int       `json:"score"`
	Matched     []string  `json:"matched_keywords,omitempty"`
}

// Record is a row already present in the destination store.
type Record struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	PublishedAt time.Time `json:"published_at"`
}

// KeywordTiers holds the three ordered keyword lists used by the scorer.
// High matches score 5, medium 3, low 2; anything else bottoms out at 1.
type KeywordTiers struct {
	High   []string `json:"high" mapstructure:"high"`
	Medium []string `json:"medium" mapstructure:"medium"`
	Low    []string `json:"low" mapstructure:"low"`
}

// Empty reports whether no tier carries any keyword.
func (k KeywordTiers) Empty() bool {
	return len(k.High) == 0 && len(k.Medium) == 0 && len(k.Low) == 0
}

// RunState is the lifecycle state of a sync run.
type RunState string

// Run states, in execution order. Aborted is terminal and reachable from
// Init (bad configuration) or LoadingExisting (store unreachable).
const (
	StateInit            RunState = "init"
	StateFetching        RunState = "fetching"
	StateLoadingExisting RunState = "loading_existing"
	StateReconciling     RunState = "reconciling"
	StateTrimming        RunState = "trimming"
	StateDone            RunState = "done"
	StateAborted         RunState = "aborted"
)

// Report summarizes one run. A run always produces a Report, even when it
// aborts partway; Warnings carries the non-fatal failures.
type Report struct {
	RunID      string    `json:"run_id"`
	State      RunState  `json:"state"`
	Started    time.Time `json:"started_at"`
	Finished   time.Time `json:"finished_at"`
	Fetched    int       `json:"candidates_fetched"`
	Existing   int       `json:"existing_records"`
	Inserted   int       `json:"records_inserted"`
	Archived   int       `json:"records_archived"`
	TopPicks   []Item    `json:"top_picks,omitempty"`
	Warnings   []string  `json:"warnings,omitempty"`
	AbortCause string    `json:"abort_cause,omitempty"`
}

// Succeeded reports whether the run reached the Done state.
func (r Report) Succeeded() bool {
	return r.State == StateDone
}

// SummarizeAuthors flattens an author list into a bounded display string,
// appending "et al." when the list is truncated.
func SummarizeAuthors(names []string, max int) string {
	if max <= 0 {
		max = MaxDisplayAuthors
	}
	cleaned := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n != "" {
			cleaned = append(cleaned, n)
		}
	}
	if len(cleaned) == 0 {
		return ""
	}
	if len(cleaned) <= max {
		return strings.Join(cleaned, ", ")
	}
	return strings.Join(cleaned[:max], ", ") + " et al."
}

// TruncateAbstract enforces the persisted abstract bound.
func TruncateAbstract(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= MaxAbstractLen {
		return s
	}
	return s[:MaxAbstractLen]
}

// NormalizeTitle collapses runs of whitespace so titles compare stably
// across the feed and the store.
func NormalizeTitle(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
