// Package runlog persists one audit row per sync run.
package runlog

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openastro/papersync/internal/sync"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Config controls the Postgres connection pool used for run rows.
type Config struct {
	DSN             string
	Table           string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type execCloser interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Close()
}

// Store writes run reports into Postgres.
type Store struct {
	pool  execCloser
	table string
}

// NewStore creates a Postgres-backed Store using the provided config.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("runlog.dsn is required")
	}
	table := cfg.Table
	if table == "" {
		table = "sync_runs"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Store{pool: pool, table: table}, nil
}

// NewStoreWithPool constructs a Store from an existing pool (primarily for
// testing).
func NewStoreWithPool(pool execCloser, table string) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "sync_runs"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &Store{pool: pool, table: table}, nil
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// SaveRun inserts one row per run report.
func (s *Store) SaveRun(ctx context.Context, report sync.Report) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("run store is not configured")
	}
	if report.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	warningsJSON, err := json.Marshal(warningsOrEmpty(report.Warnings))
	if err != nil {
		return fmt.Errorf("marshal warnings: %w", err)
	}
	query := fmt.Sprintf(`
INSERT INTO %s (
	run_id,
	state,
	started_at,
	finished_at,
	candidates_fetched,
	existing_records,
	records_inserted,
	records_archived,
	warnings,
	abort_cause
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10
)`, s.table)

	args := []any{
		report.RunID,
		string(report.State),
		report.Started,
		report.Finished,
		report.Fetched,
		report.Existing,
		report.Inserted,
		report.Archived,
		warningsJSON,
		report.AbortCause,
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func warningsOrEmpty(w []string) []string {
	if len(w) == 0 {
		return []string{}
	}
	return w
}
