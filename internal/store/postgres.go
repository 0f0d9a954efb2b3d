package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/payee-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it in
// tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool, for shared multi-operator
// deployments where SQLite's single-writer model is too small.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool. Used by tests with pgxmock.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS batch_jobs (
	id          TEXT PRIMARY KEY,
	status      TEXT NOT NULL,
	record      JSONB NOT NULL,
	last_error  TEXT,
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_batch_jobs_status ON batch_jobs(status);
CREATE INDEX IF NOT EXISTS idx_batch_jobs_created_at ON batch_jobs(created_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveJob(ctx context.Context, record *model.BatchJobRecord) error {
	recordJSON, err := json.Marshal(record)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal job record")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO batch_jobs (id, status, record, last_error, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			record = EXCLUDED.record,
			last_error = EXCLUDED.last_error,
			updated_at = EXCLUDED.updated_at`,
		record.Job.ID, string(record.Job.Status), recordJSON,
		record.LastError, record.CreatedAt.UTC(), time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: save job %s", record.Job.ID)
}

func (s *PostgresStore) GetJob(ctx context.Context, jobID string) (*model.BatchJobRecord, error) {
	var recordJSON []byte
	err := s.pool.QueryRow(ctx,
		`SELECT record FROM batch_jobs WHERE id = $1`, jobID,
	).Scan(&recordJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &ErrJobNotFound{JobID: jobID}
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get job %s", jobID)
	}
	return unmarshalRecord(string(recordJSON))
}

func (s *PostgresStore) ListJobs(ctx context.Context, filter JobFilter) ([]model.BatchJobRecord, error) {
	query := `SELECT record FROM batch_jobs WHERE 1=1`
	var args []any
	arg := 1

	if filter.Status != "" {
		query += ` AND status = $1`
		args = append(args, string(filter.Status))
		arg++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT $` + strconv.Itoa(arg)
	args = append(args, limit)
	arg++

	if filter.Offset > 0 {
		query += ` OFFSET $` + strconv.Itoa(arg)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list jobs")
	}
	defer rows.Close()

	var records []model.BatchJobRecord
	for rows.Next() {
		var recordJSON []byte
		if err := rows.Scan(&recordJSON); err != nil {
			return nil, eris.Wrap(err, "postgres: scan job")
		}
		record, err := unmarshalRecord(string(recordJSON))
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, eris.Wrap(rows.Err(), "postgres: list jobs iterate")
}

func (s *PostgresStore) DeleteJob(ctx context.Context, jobID string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM batch_jobs WHERE id = $1`, jobID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete job %s", jobID)
	}
	if tag.RowsAffected() == 0 {
		return &ErrJobNotFound{JobID: jobID}
	}
	return nil
}
