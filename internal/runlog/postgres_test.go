package runlog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/openastro/papersync/internal/sync"
)

func sampleReport() sync.Report {
	started := time.Unix(1700000000, 0).UTC()
	return sync.Report{
		RunID:    "run-42",
		State:    sync.StateDone,
		Started:  started,
		Finished: started.Add(time.Minute),
		Fetched:  12,
		Existing: 20,
		Inserted: 3,
		Archived: 3,
		Warnings: []string{"category astro-ph.GA: upstream 503"},
	}
}

func TestSaveRunInsertsRow(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewStoreWithPool(mock, "sync_runs")
	require.NoError(t, err)

	report := sampleReport()
	mock.ExpectExec("INSERT INTO sync_runs").
		WithArgs(
			report.RunID,
			string(report.State),
			report.Started,
			report.Finished,
			report.Fetched,
			report.Existing,
			report.Inserted,
			report.Archived,
			[]byte(`["category astro-ph.GA: upstream 503"]`),
			report.AbortCause,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.SaveRun(context.Background(), report))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRunRequiresRunID(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewStoreWithPool(mock, "sync_runs")
	require.NoError(t, err)

	report := sampleReport()
	report.RunID = ""
	require.Error(t, store.SaveRun(context.Background(), report))
}

func TestSaveRunPropagatesExecError(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewStoreWithPool(mock, "sync_runs")
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO sync_runs").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("connection reset"))

	require.Error(t, store.SaveRun(context.Background(), sampleReport()))
}

func TestNewStoreWithPoolValidatesTable(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = NewStoreWithPool(mock, "bad;table")
	require.Error(t, err)

	_, err = NewStoreWithPool(nil, "sync_runs")
	require.Error(t, err)
}
