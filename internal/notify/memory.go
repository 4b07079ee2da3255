package notify

import (
	"context"
	gosync "sync"

	"github.com/openastro/papersync/internal/sync"
)

// MemoryNotifier records reports in-memory for tests and dev runs.
type MemoryNotifier struct {
	mu      gosync.Mutex
	reports []sync.Report
}

// NewMemoryNotifier creates an empty notifier.
func NewMemoryNotifier() *MemoryNotifier {
	return &MemoryNotifier{}
}

// NotifyRun appends the report.
func (n *MemoryNotifier) NotifyRun(_ context.Context, report sync.Report) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reports = append(n.reports, report)
	return nil
}

// Close does nothing.
func (n *MemoryNotifier) Close() error { return nil }

// Reports returns a copy of everything published so far.
func (n *MemoryNotifier) Reports() []sync.Report {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sync.Report(nil), n.reports...)
}
