package sync

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// EngineConfig holds the knobs for a full run.
type EngineConfig struct {
	MaxArticles int
	MaxToAdd    int
	TopN        int
	PageSize    int
}

// Engine sequences one run: fetch, load existing, reconcile, trim. It owns
// no network transport; everything external arrives through the FeedSource
// and RecordStore collaborators.
type Engine struct {
	fetcher    *Fetcher
	reconciler *Reconciler
	trimmer    *Trimmer
	store      RecordStore
	clock      Clock
	idGen      IDGenerator
	cfg        EngineConfig
	logger     *zap.Logger
}

// NewEngine constructs an Engine.
func NewEngine(
	fetcher *Fetcher,
	reconciler *Reconciler,
	trimmer *Trimmer,
	store RecordStore,
	clock Clock,
	idGen IDGenerator,
	cfg EngineConfig,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		fetcher:    fetcher,
		reconciler: reconciler,
		trimmer:    trimmer,
		store:      store,
		clock:      clock,
		idGen:      idGen,
		cfg:        cfg,
		logger:     logger,
	}
}

// Run executes the state machine Init -> Fetching -> LoadingExisting ->
// Reconciling -> Trimming -> Done. Cancellation takes effect only between
// steps, so no single insert or archive is interrupted midway. A Report is
// always returned, partial when the run aborts; the error is non-nil only
// for aborted runs.
func (e *Engine) Run(ctx context.Context) (Report, error) {
	report := Report{
		RunID:   e.idGen.NewID(),
		State:   StateInit,
		Started: e.clock.Now(),
	}
	log := e.logger.With(zap.String("run_id", report.RunID))
	log.Info("sync run starting")

	if err := e.validate(); err != nil {
		return e.abort(log, report, err)
	}
	if err := ctx.Err(); err != nil {
		return e.abort(log, report, err)
	}

	report.State = StateFetching
	candidates, warnings, err := e.fetcher.FetchRecent(ctx)
	if err != nil {
		// FetchRecent only errors when the run context is gone; per-category
		// failures arrive as warnings.
		report.Warnings = append(report.Warnings, warnings...)
		return e.abort(log, report, err)
	}
	report.Warnings = append(report.Warnings, warnings...)
	report.Fetched = len(candidates)
	log.Info("candidates fetched", zap.Int("count", report.Fetched))
	if err := ctx.Err(); err != nil {
		return e.abort(log, report, err)
	}

	report.State = StateLoadingExisting
	existing, err := LoadExistingTitles(ctx, e.store, e.cfg.PageSize)
	if err != nil {
		return e.abort(log, report, err)
	}
	report.Existing = len(existing)
	log.Info("existing records loaded", zap.Int("count", report.Existing))
	if err := ctx.Err(); err != nil {
		return e.abort(log, report, err)
	}

	report.State = StateReconciling
	res := e.reconciler.Reconcile(ctx, candidates, existing, e.cfg.MaxToAdd, e.cfg.TopN)
	report.Inserted = res.Inserted
	report.TopPicks = res.TopPicks
	if res.Failed > 0 {
		report.Warnings = append(report.Warnings, fmt.Sprintf("%d inserts failed", res.Failed))
	}
	log.Info("reconcile finished",
		zap.Int("considered", res.Considered),
		zap.Int("inserted", res.Inserted),
		zap.Int("failed", res.Failed),
	)
	if err := ctx.Err(); err != nil {
		return e.abort(log, report, err)
	}

	report.State = StateTrimming
	archived, err := e.trimmer.Trim(ctx, e.cfg.MaxArticles, e.cfg.PageSize)
	if err != nil {
		// The dedup work above already landed; a failed trim read only means
		// retention is enforced by the next run.
		report.Warnings = append(report.Warnings, fmt.Sprintf("trim: %v", err))
		log.Warn("trim failed", zap.Error(err))
	}
	report.Archived = archived

	report.State = StateDone
	report.Finished = e.clock.Now()
	log.Info("sync run finished",
		zap.Int("fetched", report.Fetched),
		zap.Int("existing", report.Existing),
		zap.Int("inserted", report.Inserted),
		zap.Int("archived", report.Archived),
		zap.Int("warnings", len(report.Warnings)),
	)
	return report, nil
}

func (e *Engine) validate() error {
	if e.cfg.MaxArticles <= 0 {
		return fmt.Errorf("max articles must be > 0")
	}
	if e.cfg.MaxToAdd <= 0 {
		return fmt.Errorf("max to add must be > 0")
	}
	return nil
}

func (e *Engine) abort(log *zap.Logger, report Report, cause error) (Report, error) {
	fromState := report.State
	report.State = StateAborted
	report.AbortCause = cause.Error()
	report.Finished = e.clock.Now()
	log.Error("sync run aborted",
		zap.String("from_state", string(fromState)),
		zap.Error(cause),
	)
	return report, fmt.Errorf("run aborted in %s: %w", fromState, cause)
}
