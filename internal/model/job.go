package model

import "time"

// JobStatus is the batch job state machine:
//
//	Validating → InProgress → Finalizing → {Completed | Failed | Expired}
//	Validating/InProgress/Finalizing → Cancelling → Cancelled
type JobStatus string

const (
	JobStatusValidating JobStatus = "validating"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusFinalizing JobStatus = "finalizing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusExpired    JobStatus = "expired"
	JobStatusCancelling JobStatus = "cancelling"
	JobStatusCancelled  JobStatus = "cancelled"
)

// Terminal reports whether the status admits no further transitions.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusFailed, JobStatusExpired, JobStatusCancelled:
		return true
	}
	return false
}

// Cancellable reports whether a cancel request is legal from this status.
func (s JobStatus) Cancellable() bool {
	switch s {
	case JobStatusValidating, JobStatusInProgress, JobStatusFinalizing:
		return true
	}
	return false
}

// RequestCounts tallies batch sub-requests by outcome.
type RequestCounts struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

// BatchJob is the local view of one asynchronous batch inference job.
// Mutated only by polling and cancel responses.
type BatchJob struct {
	ID              string                  `json:"id"`
	Status          JobStatus               `json:"status"`
	RequestCounts   RequestCounts           `json:"request_counts"`
	OutputReference string                  `json:"output_reference,omitempty"`
	Transitions     map[JobStatus]time.Time `json:"transitions,omitempty"`
}

// MarkStatus records a status change with its transition timestamp. Repeated
// polls reporting the same status leave the original timestamp in place.
func (j *BatchJob) MarkStatus(status JobStatus, at time.Time) {
	if j.Transitions == nil {
		j.Transitions = make(map[JobStatus]time.Time)
	}
	if _, seen := j.Transitions[status]; !seen {
		j.Transitions[status] = at.UTC()
	}
	j.Status = status
}

// BatchJobRecord is the durable form of a tracked job: enough to resume
// tracking and reconstruct per-row results after a restart, without
// resubmission.
type BatchJobRecord struct {
	Job             BatchJob            `json:"job"`
	PayeeNames      []string            `json:"payee_names"`
	OriginalRowData []map[string]string `json:"original_row_data,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`

	// LastError carries a remote-lookup failure surfaced on reload. The
	// record itself is always retained.
	LastError string `json:"last_error,omitempty"`
}

// RowStatus marks whether a batch row produced a usable classification.
type RowStatus string

const (
	RowStatusSuccess RowStatus = "success"
	RowStatusFailed  RowStatus = "failed"
)

// PerRowResult is the classification outcome for one input row of a batch
// job. RowIndex always equals the row's position in the submitted name list.
type PerRowResult struct {
	RowIndex       int       `json:"row_index"`
	Status         RowStatus `json:"status"`
	Classification Label     `json:"classification,omitempty"`
	Confidence     int       `json:"confidence,omitempty"`
	Reasoning      string    `json:"reasoning,omitempty"`
}

// ExportRow is a shallow merge of the original row fields with the fixed
// classification fields and an alignment-status marker.
type ExportRow map[string]string

// Fixed classification column names added to every exported row.
const (
	ExportColClassification = "classification"
	ExportColConfidence     = "confidence"
	ExportColReasoning      = "reasoning"
	ExportColStatus         = "classification_status"
)
