package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/payee-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS batch_jobs (
	id          TEXT PRIMARY KEY,
	status      TEXT NOT NULL,
	record      TEXT NOT NULL,
	last_error  TEXT,
	created_at  DATETIME NOT NULL,
	updated_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_batch_jobs_status ON batch_jobs(status);
CREATE INDEX IF NOT EXISTS idx_batch_jobs_created_at ON batch_jobs(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveJob(ctx context.Context, record *model.BatchJobRecord) error {
	recordJSON, err := json.Marshal(record)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal job record")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO batch_jobs (id, status, record, last_error, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			record = excluded.record,
			last_error = excluded.last_error,
			updated_at = excluded.updated_at`,
		record.Job.ID, string(record.Job.Status), string(recordJSON),
		record.LastError, record.CreatedAt.UTC(), time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: save job %s", record.Job.ID)
}

func (s *SQLiteStore) GetJob(ctx context.Context, jobID string) (*model.BatchJobRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT record FROM batch_jobs WHERE id = ?`, jobID,
	)

	var recordJSON string
	err := row.Scan(&recordJSON)
	if err == sql.ErrNoRows {
		return nil, &ErrJobNotFound{JobID: jobID}
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get job %s", jobID)
	}
	return unmarshalRecord(recordJSON)
}

func (s *SQLiteStore) ListJobs(ctx context.Context, filter JobFilter) ([]model.BatchJobRecord, error) {
	query := `SELECT record FROM batch_jobs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list jobs")
	}
	defer rows.Close()

	var records []model.BatchJobRecord
	for rows.Next() {
		var recordJSON string
		if err := rows.Scan(&recordJSON); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan job")
		}
		record, err := unmarshalRecord(recordJSON)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: list jobs iterate")
}

func (s *SQLiteStore) DeleteJob(ctx context.Context, jobID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM batch_jobs WHERE id = ?`, jobID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete job %s", jobID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return &ErrJobNotFound{JobID: jobID}
	}
	return nil
}

func unmarshalRecord(recordJSON string) (*model.BatchJobRecord, error) {
	var record model.BatchJobRecord
	if err := json.Unmarshal([]byte(recordJSON), &record); err != nil {
		return nil, eris.Wrap(err, "unmarshal job record")
	}
	return &record, nil
}
