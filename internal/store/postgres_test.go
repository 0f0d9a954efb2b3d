package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/payee-cli/internal/model"
)

func TestPostgresSaveJob(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	record := testRecord("batch_pg1", model.JobStatusValidating)
	mock.ExpectExec(`INSERT INTO batch_jobs`).
		WithArgs("batch_pg1", "validating", pgxmock.AnyArg(), "", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	s := NewPostgresWithPool(mock)
	require.NoError(t, s.SaveJob(context.Background(), record))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetJob(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	record := testRecord("batch_pg2", model.JobStatusCompleted)
	recordJSON, err := json.Marshal(record)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT record FROM batch_jobs WHERE id`).
		WithArgs("batch_pg2").
		WillReturnRows(pgxmock.NewRows([]string{"record"}).AddRow(recordJSON))

	s := NewPostgresWithPool(mock)
	got, err := s.GetJob(context.Background(), "batch_pg2")
	require.NoError(t, err)
	assert.Equal(t, "batch_pg2", got.Job.ID)
	assert.Equal(t, model.JobStatusCompleted, got.Job.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetJobNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT record FROM batch_jobs WHERE id`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	s := NewPostgresWithPool(mock)
	_, err = s.GetJob(context.Background(), "missing")
	assert.True(t, IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListJobs(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	a := testRecord("batch_a", model.JobStatusInProgress)
	b := testRecord("batch_b", model.JobStatusInProgress)
	aJSON, _ := json.Marshal(a)
	bJSON, _ := json.Marshal(b)

	mock.ExpectQuery(`SELECT record FROM batch_jobs`).
		WithArgs("in_progress", 100).
		WillReturnRows(pgxmock.NewRows([]string{"record"}).AddRow(aJSON).AddRow(bJSON))

	s := NewPostgresWithPool(mock)
	jobs, err := s.ListJobs(context.Background(), JobFilter{Status: model.JobStatusInProgress})
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "batch_a", jobs[0].Job.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDeleteJob(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`DELETE FROM batch_jobs`).
		WithArgs("batch_x").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM batch_jobs`).
		WithArgs("batch_x").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	s := NewPostgresWithPool(mock)
	require.NoError(t, s.DeleteJob(context.Background(), "batch_x"))
	assert.True(t, IsNotFound(s.DeleteJob(context.Background(), "batch_x")))
	assert.NoError(t, mock.ExpectationsWereMet())
}
