package batch

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/payee-cli/internal/model"
)

// StatusFunc receives each refreshed job view from a background poll loop.
type StatusFunc func(job *model.BatchJob)

// Scheduler runs one independent poll loop per tracked job. Loops never
// interfere with each other or with manual polls; both hit the same
// idempotent Poll.
type Scheduler struct {
	orch     *Orchestrator
	interval time.Duration
	maxIntvl time.Duration

	mu    sync.Mutex
	stops map[string]context.CancelFunc
}

// NewScheduler builds a scheduler polling each job on an escalating interval
// between interval and maxInterval.
func NewScheduler(orch *Orchestrator, interval, maxInterval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if maxInterval < interval {
		maxInterval = interval
	}
	return &Scheduler{
		orch:     orch,
		interval: interval,
		maxIntvl: maxInterval,
		stops:    make(map[string]context.CancelFunc),
	}
}

// Track starts a poll loop for jobID. Tracking the same job twice is a no-op.
// The loop stops on its own once the job reaches a terminal state.
func (s *Scheduler) Track(ctx context.Context, jobID string, onStatus StatusFunc) {
	s.mu.Lock()
	if _, tracked := s.stops[jobID]; tracked {
		s.mu.Unlock()
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	s.stops[jobID] = cancel
	s.mu.Unlock()

	go s.loop(loopCtx, jobID, onStatus)
}

// Untrack stops the poll loop for jobID, if any. The remote job is untouched.
func (s *Scheduler) Untrack(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.stops[jobID]; ok {
		cancel()
		delete(s.stops, jobID)
	}
}

// StopAll cancels every poll loop.
func (s *Scheduler) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, cancel := range s.stops {
		cancel()
		delete(s.stops, id)
	}
}

// Tracked returns the IDs of jobs with an active poll loop.
func (s *Scheduler) Tracked() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.stops))
	for id := range s.stops {
		ids = append(ids, id)
	}
	return ids
}

func (s *Scheduler) loop(ctx context.Context, jobID string, onStatus StatusFunc) {
	defer s.Untrack(jobID)

	interval := s.interval
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}

		job, err := s.orch.Poll(ctx, jobID)
		if err != nil {
			zap.L().Warn("scheduler: poll failed",
				zap.String("job_id", jobID),
				zap.Error(err))
			// Transient poll failures keep the loop alive; the next tick
			// retries from scratch.
			continue
		}

		if onStatus != nil {
			onStatus(job)
		}

		if job.Status.Terminal() {
			zap.L().Info("scheduler: job reached terminal state",
				zap.String("job_id", jobID),
				zap.String("status", string(job.Status)))
			return
		}

		interval *= 2
		if interval > s.maxIntvl {
			interval = s.maxIntvl
		}
	}
}
