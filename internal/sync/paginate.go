package sync

import (
	"context"
	"fmt"
)

// maxPages caps cursor loops so a store that keeps reporting HasMore with a
// repeating cursor cannot spin forever.
const maxPages = 1000

// collectAll drains every page the store reports for the given sort order
// and returns the concatenated records. Both the existing-set load and the
// retention trim go through this single loop so cursor handling cannot
// drift between them.
func collectAll(ctx context.Context, store RecordStore, ascending bool, pageSize int) ([]Record, error) {
	if pageSize <= 0 {
		pageSize = 100
	}
	var records []Record
	cursor := ""
	for page := 0; ; page++ {
		if page >= maxPages {
			return nil, fmt.Errorf("store pagination exceeded %d pages", maxPages)
		}
		p, err := store.List(ctx, ListQuery{
			SortAscending: ascending,
			Cursor:        cursor,
			PageSize:      pageSize,
		})
		if err != nil {
			return nil, fmt.Errorf("list page %d: %w", page, err)
		}
		records = append(records, p.Records...)
		if !p.HasMore {
			return records, nil
		}
		cursor = p.NextCursor
	}
}
