package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/payee-cli/internal/classify"
	"github.com/sells-group/payee-cli/internal/match"
	"github.com/sells-group/payee-cli/internal/model"
	"github.com/sells-group/payee-cli/internal/resilience"
	"github.com/sells-group/payee-cli/internal/store"
	"github.com/sells-group/payee-cli/pkg/anthropic"
)

// Orchestrator drives the batch job lifecycle. All remote calls retry per the
// configured policy; every mutation is persisted so a restart resumes
// tracking without resubmission.
type Orchestrator struct {
	client anthropic.Client
	store  store.Store
	dedupe *match.Deduplicator
	cfg    Config
}

// Config controls batch submission and polling.
type Config struct {
	// Model is the Anthropic model ID used for each batch request.
	Model string
	// MaxTokens bounds the response size per request.
	MaxTokens int64
	// DedupThreshold is the Jaro-Winkler similarity at which near-duplicate
	// names share one batch request. Zero selects the deduplicator's default.
	DedupThreshold float64
	// Retry governs backoff for transient submit/poll/retrieve failures.
	Retry resilience.RetryConfig
}

// DefaultConfig returns orchestrator defaults matching production usage.
func DefaultConfig() Config {
	return Config{
		Model:     "claude-haiku-4-5-20251001",
		MaxTokens: 256,
		Retry:     resilience.DefaultRetryConfig(),
	}
}

// NewOrchestrator builds an orchestrator. store may be nil to disable
// persistence (ad hoc one-shot runs).
func NewOrchestrator(client anthropic.Client, st store.Store, cfg Config) *Orchestrator {
	if cfg.Model == "" {
		cfg.Model = DefaultConfig().Model
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultConfig().MaxTokens
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = resilience.DefaultRetryConfig()
	}
	return &Orchestrator{
		client: client,
		store:  st,
		dedupe: match.NewDeduplicator(cfg.DedupThreshold),
		cfg:    cfg,
	}
}

// Submit deduplicates names, uploads one inference request per cluster as a
// single batch job, and returns a handle in state Validating. Each custom ID
// carries the cluster canonical's origin row; retrieval fans the result back
// out to the cluster's members. Row data is persisted alongside the job so
// results can be merged back after a restart.
func (o *Orchestrator) Submit(ctx context.Context, names []model.RawName, rowData []map[string]string) (*model.BatchJob, error) {
	if len(names) == 0 {
		return nil, eris.New("batch: no names to submit")
	}

	clusters := o.dedupe.Cluster(names)
	requests := make([]anthropic.BatchRequestItem, len(clusters))
	for i, cluster := range clusters {
		// Members[0] is the cluster's first-seen name, whose raw text is the
		// canonical.
		requests[i] = anthropic.BatchRequestItem{
			CustomID: FormatCustomID(cluster.Members[0].OriginRowIndex, i),
			Params:   classify.BuildAIRequest(o.cfg.Model, o.cfg.MaxTokens, cluster.CanonicalName),
		}
	}

	retryCfg := o.cfg.Retry
	retryCfg.OnRetry = resilience.RetryLogger("anthropic", "submit_batch")
	resp, err := resilience.DoVal(ctx, retryCfg, func(ctx context.Context) (*anthropic.BatchResponse, error) {
		return o.client.CreateBatch(ctx, anthropic.BatchRequest{Requests: requests})
	})
	if err != nil {
		return nil, eris.Wrap(err, "batch: submit")
	}

	job := &model.BatchJob{
		ID:            resp.ID,
		RequestCounts: model.RequestCounts{Total: len(requests)},
	}
	// Every job passes through Validating on submit, even when the remote
	// side already reports the next state.
	job.MarkStatus(model.JobStatusValidating, time.Now())
	if mapped := mapRemoteStatus(resp); mapped != model.JobStatusValidating {
		job.MarkStatus(mapped, time.Now())
	}

	zap.L().Info("batch: submitted job",
		zap.String("job_id", job.ID),
		zap.Int("names", len(names)),
		zap.Int("requests", len(requests)),
		zap.String("status", string(job.Status)))

	if o.store != nil {
		payees := make([]string, len(names))
		for i, n := range names {
			payees[i] = n.Text
		}
		record := &model.BatchJobRecord{
			Job:             *job,
			PayeeNames:      payees,
			OriginalRowData: rowData,
			CreatedAt:       time.Now().UTC(),
		}
		if err := o.store.SaveJob(ctx, record); err != nil {
			// The remote job exists; losing the local record is worse than a
			// degraded submit, so surface the failure.
			return nil, eris.Wrapf(err, "batch: persist job %s", job.ID)
		}
	}

	return job, nil
}

// Poll refreshes a job's status from the remote side. Idempotent: concurrent
// manual and background polls of the same job are safe, the last writer wins.
func (o *Orchestrator) Poll(ctx context.Context, jobID string) (*model.BatchJob, error) {
	record, err := o.loadRecord(ctx, jobID)
	if err != nil {
		return nil, err
	}

	retryCfg := o.cfg.Retry
	retryCfg.OnRetry = resilience.RetryLogger("anthropic", "poll_batch")
	resp, err := resilience.DoVal(ctx, retryCfg, func(ctx context.Context) (*anthropic.BatchResponse, error) {
		return o.client.GetBatch(ctx, jobID)
	})
	if err != nil {
		// Retain the record with the error surfaced rather than dropping it.
		if record != nil && o.store != nil {
			record.LastError = err.Error()
			if saveErr := o.store.SaveJob(ctx, record); saveErr != nil {
				zap.L().Error("batch: failed to persist poll error",
					zap.String("job_id", jobID), zap.Error(saveErr))
			}
		}
		return nil, eris.Wrapf(err, "batch: poll %s", jobID)
	}

	job := applyRemote(record, resp)
	if record != nil && o.store != nil {
		record.Job = *job
		record.LastError = ""
		if err := o.store.SaveJob(ctx, record); err != nil {
			return nil, eris.Wrapf(err, "batch: persist poll %s", jobID)
		}
	}
	return job, nil
}

// Wait blocks until the remote batch ends, then folds the final state into the
// tracked job. Cancel from another goroutine still works: once the remote side
// reports ended, the final poll records the cancelled outcome.
func (o *Orchestrator) Wait(ctx context.Context, jobID string, interval, maxInterval time.Duration) (*model.BatchJob, error) {
	if _, err := anthropic.PollBatch(ctx, o.client, jobID, interval, maxInterval); err != nil {
		return nil, eris.Wrapf(err, "batch: wait %s", jobID)
	}
	return o.Poll(ctx, jobID)
}

// RetrieveResults downloads a completed job's output and reconstructs per-row
// results in submission order, fanning each cluster's result out to all of the
// cluster's member rows. The returned slice always has exactly len(names)
// entries: rows with no usable output record carry a failed placeholder. A
// malformed output line drops that line only.
func (o *Orchestrator) RetrieveResults(ctx context.Context, jobID string, names []string) ([]model.PerRowResult, error) {
	retryCfg := o.cfg.Retry
	retryCfg.OnRetry = resilience.RetryLogger("anthropic", "retrieve_results")
	details, err := resilience.DoVal(ctx, retryCfg, func(ctx context.Context) (map[string]anthropic.BatchResultDetail, error) {
		return anthropic.CollectBatchResults(ctx, o.client, jobID)
	})
	if err != nil {
		return nil, eris.Wrapf(err, "batch: retrieve results %s", jobID)
	}

	// Rebuild the submit-time clusters. Clustering is deterministic for a
	// fixed input order, so each canonical's origin row matches the custom ID
	// generated at submission.
	raw := make([]model.RawName, len(names))
	for i, n := range names {
		raw[i] = model.RawName{Text: n, OriginRowIndex: i}
	}
	clusterByRow := make(map[int]model.NameCluster)
	for _, cluster := range o.dedupe.Cluster(raw) {
		clusterByRow[cluster.Members[0].OriginRowIndex] = cluster
	}

	results := make([]model.PerRowResult, len(names))
	for i := range results {
		results[i] = model.PerRowResult{
			RowIndex:  i,
			Status:    model.RowStatusFailed,
			Reasoning: "no output record for this row",
		}
	}

	matched := 0
	for customID, detail := range details {
		rowIndex, _, ok := ParseCustomID(customID)
		if !ok {
			zap.L().Warn("batch: dropping unparseable custom id",
				zap.String("job_id", jobID),
				zap.String("custom_id", customID))
			continue
		}
		if rowIndex < 0 || rowIndex >= len(names) {
			zap.L().Warn("batch: dropping out-of-range row index",
				zap.String("job_id", jobID),
				zap.String("custom_id", customID),
				zap.Int("row_index", rowIndex))
			continue
		}
		cluster, ok := clusterByRow[rowIndex]
		if !ok {
			zap.L().Warn("batch: dropping result for non-canonical row",
				zap.String("job_id", jobID),
				zap.String("custom_id", customID),
				zap.Int("row_index", rowIndex))
			continue
		}

		if !detail.Succeeded() {
			for _, member := range cluster.Members {
				results[member.OriginRowIndex] = model.PerRowResult{
					RowIndex:  member.OriginRowIndex,
					Status:    model.RowStatusFailed,
					Reasoning: fmt.Sprintf("batch request %s", detail.ErrType),
				}
			}
			continue
		}

		parsed, err := classify.ParseAIResponse(detail.Text)
		if err != nil {
			zap.L().Warn("batch: dropping malformed result line",
				zap.String("job_id", jobID),
				zap.String("custom_id", customID),
				zap.Error(err))
			continue
		}

		for _, member := range cluster.Members {
			reasoning := parsed.Reasoning
			if member.Text != cluster.CanonicalName {
				reasoning = fmt.Sprintf("%s (derived from cluster canonical %q)", parsed.Reasoning, cluster.CanonicalName)
			}
			results[member.OriginRowIndex] = model.PerRowResult{
				RowIndex:       member.OriginRowIndex,
				Status:         model.RowStatusSuccess,
				Classification: parsed.Classification,
				Confidence:     parsed.Confidence,
				Reasoning:      reasoning,
			}
			matched++
		}
	}

	zap.L().Info("batch: reconstructed results",
		zap.String("job_id", jobID),
		zap.Int("rows", len(names)),
		zap.Int("matched", matched),
		zap.Int("failed", len(names)-matched))

	return results, nil
}

// Cancel requests a one-way transition to Cancelled. Legal only while the job
// is in a cancellable state; polling continues until the remote side reflects
// the terminal state.
func (o *Orchestrator) Cancel(ctx context.Context, jobID string) (*model.BatchJob, error) {
	record, err := o.loadRecord(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if record != nil && !record.Job.Status.Cancellable() {
		return nil, eris.Errorf("batch: job %s is %s, not cancellable", jobID, record.Job.Status)
	}

	retryCfg := o.cfg.Retry
	retryCfg.OnRetry = resilience.RetryLogger("anthropic", "cancel_batch")
	resp, err := resilience.DoVal(ctx, retryCfg, func(ctx context.Context) (*anthropic.BatchResponse, error) {
		return o.client.CancelBatch(ctx, jobID)
	})
	if err != nil {
		return nil, eris.Wrapf(err, "batch: cancel %s", jobID)
	}

	job := applyRemote(record, resp)
	if record != nil && o.store != nil {
		record.Job = *job
		if err := o.store.SaveJob(ctx, record); err != nil {
			return nil, eris.Wrapf(err, "batch: persist cancel %s", jobID)
		}
	}

	zap.L().Info("batch: cancel requested",
		zap.String("job_id", jobID),
		zap.String("status", string(job.Status)))
	return job, nil
}

// Reload re-fetches remote status for every persisted job. Jobs whose remote
// lookup fails are retained with the error recorded, never dropped.
func (o *Orchestrator) Reload(ctx context.Context) ([]model.BatchJobRecord, error) {
	if o.store == nil {
		return nil, nil
	}
	records, err := o.store.ListJobs(ctx, store.JobFilter{})
	if err != nil {
		return nil, eris.Wrap(err, "batch: reload")
	}

	for i := range records {
		record := &records[i]
		if record.Job.Status.Terminal() {
			continue
		}
		if _, err := o.Poll(ctx, record.Job.ID); err != nil {
			zap.L().Warn("batch: reload poll failed, retaining job",
				zap.String("job_id", record.Job.ID),
				zap.Error(err))
			record.LastError = err.Error()
			continue
		}
		if refreshed, err := o.store.GetJob(ctx, record.Job.ID); err == nil {
			records[i] = *refreshed
		}
	}
	return records, nil
}

// loadRecord fetches the persisted record for a job, tolerating both a nil
// store and an untracked job.
func (o *Orchestrator) loadRecord(ctx context.Context, jobID string) (*model.BatchJobRecord, error) {
	if o.store == nil {
		return nil, nil
	}
	record, err := o.store.GetJob(ctx, jobID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "batch: load job %s", jobID)
	}
	return record, nil
}

// applyRemote folds a remote batch response into the local job view.
func applyRemote(record *model.BatchJobRecord, resp *anthropic.BatchResponse) *model.BatchJob {
	var job model.BatchJob
	if record != nil {
		job = record.Job
	}
	job.ID = resp.ID
	job.OutputReference = resp.ResultsURL
	job.RequestCounts = model.RequestCounts{
		Total:     int(resp.RequestCounts.Processing + resp.RequestCounts.Succeeded + resp.RequestCounts.Errored + resp.RequestCounts.Canceled + resp.RequestCounts.Expired),
		Completed: int(resp.RequestCounts.Succeeded),
		Failed:    int(resp.RequestCounts.Errored + resp.RequestCounts.Canceled + resp.RequestCounts.Expired),
	}
	job.MarkStatus(mapRemoteStatus(resp), time.Now())
	return &job
}

// mapRemoteStatus translates the API's processing status plus request counts
// into the local state machine.
func mapRemoteStatus(resp *anthropic.BatchResponse) model.JobStatus {
	switch resp.ProcessingStatus {
	case anthropic.BatchStatusCanceling:
		return model.JobStatusCancelling
	case anthropic.BatchStatusEnded:
		counts := resp.RequestCounts
		switch {
		case counts.Canceled > 0 && counts.Succeeded == 0:
			return model.JobStatusCancelled
		case counts.Expired > 0 && counts.Succeeded == 0:
			return model.JobStatusExpired
		case counts.Succeeded == 0 && counts.Errored > 0:
			return model.JobStatusFailed
		default:
			return model.JobStatusCompleted
		}
	case anthropic.BatchStatusInProgress:
		if resp.RequestCounts.Processing == 0 {
			return model.JobStatusFinalizing
		}
		return model.JobStatusInProgress
	default:
		return model.JobStatusValidating
	}
}
