// Package store persists tracked batch jobs so a restart can resume polling
// without resubmission.
package store

import (
	"context"
	"errors"

	"github.com/sells-group/payee-cli/internal/model"
)

// JobFilter specifies criteria for listing tracked jobs.
type JobFilter struct {
	Status model.JobStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for batch job tracking. SaveJob is
// an upsert keyed by the job ID; repeated saves after each poll are expected.
type Store interface {
	SaveJob(ctx context.Context, record *model.BatchJobRecord) error
	GetJob(ctx context.Context, jobID string) (*model.BatchJobRecord, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]model.BatchJobRecord, error)
	DeleteJob(ctx context.Context, jobID string) error

	Migrate(ctx context.Context) error
	Close() error
}

// ErrJobNotFound distinguishes a missing record from a storage failure.
type ErrJobNotFound struct {
	JobID string
}

func (e *ErrJobNotFound) Error() string {
	return "job not found: " + e.JobID
}

// IsNotFound reports whether err indicates a missing job record.
func IsNotFound(err error) bool {
	var nf *ErrJobNotFound
	return errors.As(err, &nf)
}
