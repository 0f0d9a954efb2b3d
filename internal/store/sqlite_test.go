package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/payee-cli/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "jobs.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s
}

func testRecord(id string, status model.JobStatus) *model.BatchJobRecord {
	return &model.BatchJobRecord{
		Job: model.BatchJob{
			ID:     id,
			Status: status,
			RequestCounts: model.RequestCounts{
				Total: 3,
			},
		},
		PayeeNames: []string{"Acme Corporation LLC", "John Smith", "Jane Doe"},
		OriginalRowData: []map[string]string{
			{"payee": "Acme Corporation LLC", "amount": "100.00"},
			{"payee": "John Smith", "amount": "5.25"},
			{"payee": "Jane Doe", "amount": "7.75"},
		},
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func TestSQLiteSaveGetRoundTrip(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	record := testRecord("batch_001", model.JobStatusValidating)
	require.NoError(t, s.SaveJob(ctx, record))

	got, err := s.GetJob(ctx, "batch_001")
	require.NoError(t, err)
	assert.Equal(t, record.Job.ID, got.Job.ID)
	assert.Equal(t, model.JobStatusValidating, got.Job.Status)
	assert.Equal(t, record.PayeeNames, got.PayeeNames)
	assert.Equal(t, record.OriginalRowData, got.OriginalRowData)
}

func TestSQLiteSaveIsUpsert(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	record := testRecord("batch_002", model.JobStatusValidating)
	require.NoError(t, s.SaveJob(ctx, record))

	record.Job.Status = model.JobStatusInProgress
	record.Job.RequestCounts.Completed = 2
	require.NoError(t, s.SaveJob(ctx, record))

	got, err := s.GetJob(ctx, "batch_002")
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusInProgress, got.Job.Status)
	assert.Equal(t, 2, got.Job.RequestCounts.Completed)

	jobs, err := s.ListJobs(ctx, JobFilter{})
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
}

func TestSQLiteGetJobNotFound(t *testing.T) {
	s := newTestSQLite(t)

	_, err := s.GetJob(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestSQLiteListJobsFilterByStatus(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.SaveJob(ctx, testRecord("batch_a", model.JobStatusInProgress)))
	require.NoError(t, s.SaveJob(ctx, testRecord("batch_b", model.JobStatusCompleted)))
	require.NoError(t, s.SaveJob(ctx, testRecord("batch_c", model.JobStatusInProgress)))

	inProgress, err := s.ListJobs(ctx, JobFilter{Status: model.JobStatusInProgress})
	require.NoError(t, err)
	assert.Len(t, inProgress, 2)

	all, err := s.ListJobs(ctx, JobFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	limited, err := s.ListJobs(ctx, JobFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLiteDeleteJob(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.SaveJob(ctx, testRecord("batch_del", model.JobStatusCompleted)))
	require.NoError(t, s.DeleteJob(ctx, "batch_del"))

	_, err := s.GetJob(ctx, "batch_del")
	assert.True(t, IsNotFound(err))

	err = s.DeleteJob(ctx, "batch_del")
	assert.True(t, IsNotFound(err))
}

func TestSQLiteLastErrorPersists(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	record := testRecord("batch_err", model.JobStatusInProgress)
	record.LastError = "remote lookup failed: 503"
	require.NoError(t, s.SaveJob(ctx, record))

	got, err := s.GetJob(ctx, "batch_err")
	require.NoError(t, err)
	assert.Equal(t, "remote lookup failed: 503", got.LastError)
}
