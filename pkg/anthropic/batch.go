package anthropic

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Batch processing statuses reported by the API.
const (
	BatchStatusInProgress = "in_progress"
	BatchStatusCanceling  = "canceling"
	BatchStatusEnded      = "ended"
)

// DefaultPollTimeout bounds a PollBatch call when the caller's context has no
// deadline of its own.
const DefaultPollTimeout = 30 * time.Minute

// PollBatch polls a batch until it ends, ctx is cancelled, or the overall
// deadline expires. Poll interval grows from initialInterval up to maxInterval
// so long-running batches do not hammer the API.
func PollBatch(ctx context.Context, client Client, batchID string, initialInterval, maxInterval time.Duration) (*BatchResponse, error) {
	if initialInterval <= 0 {
		initialInterval = 5 * time.Second
	}
	if maxInterval < initialInterval {
		maxInterval = initialInterval
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultPollTimeout)
		defer cancel()
	}

	interval := initialInterval
	for {
		batch, err := client.GetBatch(ctx, batchID)
		if err != nil {
			return nil, eris.Wrap(err, "poll batch")
		}

		zap.L().Debug("batch poll",
			zap.String("batch_id", batchID),
			zap.String("status", batch.ProcessingStatus),
			zap.Int64("processing", batch.RequestCounts.Processing),
			zap.Int64("succeeded", batch.RequestCounts.Succeeded),
			zap.Int64("errored", batch.RequestCounts.Errored))

		if batch.ProcessingStatus == BatchStatusEnded {
			return batch, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}

		interval = interval * 2
		if interval > maxInterval {
			interval = maxInterval
		}
	}
}

// BatchResultDetail carries one drained batch result, keyed by its custom ID.
// Text is the first text block of the message for succeeded results; ErrType
// holds the result type otherwise.
type BatchResultDetail struct {
	CustomID string
	Text     string
	Usage    TokenUsage
	ErrType  string
}

// Succeeded reports whether the underlying request completed with a message.
func (d BatchResultDetail) Succeeded() bool {
	return d.ErrType == ""
}

// CollectBatchResults drains a batch's result stream into a map keyed by
// custom ID. Per-item failures (errored, canceled, expired) are recorded in
// the detail rather than aborting the drain; a stream-level error aborts.
func CollectBatchResults(ctx context.Context, client Client, batchID string) (map[string]BatchResultDetail, error) {
	iter, err := client.GetBatchResults(ctx, batchID)
	if err != nil {
		return nil, eris.Wrap(err, "collect batch results")
	}
	defer iter.Close()

	results := make(map[string]BatchResultDetail)
	for iter.Next() {
		item := iter.Item()
		detail := BatchResultDetail{CustomID: item.CustomID}
		if item.Type == "succeeded" && item.Message != nil {
			detail.Text = FirstText(item.Message)
			detail.Usage = item.Message.Usage
		} else {
			detail.ErrType = item.Type
		}
		results[item.CustomID] = detail
	}
	if err := iter.Err(); err != nil {
		return nil, eris.Wrap(err, "batch result stream")
	}
	return results, nil
}

// FirstText returns the first text content block of a response, or "".
func FirstText(msg *MessageResponse) string {
	for _, b := range msg.Content {
		if b.Type == "text" {
			return b.Text
		}
	}
	return ""
}
