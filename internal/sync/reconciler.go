package sync

import (
	"context"

	"go.uber.org/zap"
)

// Reconciler diffs ranked candidates against the existing-set and inserts
// the ones the store has not seen.
type Reconciler struct {
	store  RecordStore
	logger *zap.Logger
}

// NewReconciler constructs a Reconciler.
func NewReconciler(store RecordStore, logger *zap.Logger) *Reconciler {
	return &Reconciler{store: store, logger: logger}
}

// ReconcileResult reports what one reconcile pass did.
type ReconcileResult struct {
	Considered int
	Inserted   int
	Failed     int
	TopPicks   []Item
}

// Reconcile walks candidates in rank order and inserts each title not in
// existing, stopping once maxToAdd candidates have been considered.
// Duplicates count against the considered budget: the contract is "process
// the top maxToAdd ranked candidates, insert whichever are new". The first
// topN considered candidates are marked priority. Insert failures are
// logged and counted but never stop the loop; the item simply stays a
// candidate for the next run. Inserted titles join the existing set so a
// second candidate with the same title inside one batch is a duplicate too.
func (r *Reconciler) Reconcile(
	ctx context.Context,
	candidates []Item,
	existing map[string]struct{},
	maxToAdd int,
	topN int,
) ReconcileResult {
	var res ReconcileResult
	for _, item := range candidates {
		if res.Considered >= maxToAdd {
			break
		}
		res.Considered++
		priority := res.Considered <= topN
		if priority {
			res.TopPicks = append(res.TopPicks, item)
		}
		if _, dup := existing[item.Title]; dup {
			r.logger.Debug("skipping duplicate", zap.String("title", item.Title))
			continue
		}
		if _, err := r.store.Create(ctx, item, priority); err != nil {
			res.Failed++
			r.logger.Warn("insert failed",
				zap.String("title", item.Title),
				zap.Error(err),
			)
			continue
		}
		existing[item.Title] = struct{}{}
		res.Inserted++
		r.logger.Info("inserted record",
			zap.String("title", item.Title),
			zap.Int("score", item.Score),
			zap.String("category", item.Category),
		)
	}
	return res
}
