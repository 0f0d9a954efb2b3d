package classify

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/payee-cli/internal/match"
	"github.com/sells-group/payee-cli/internal/model"
)

// ProgressFunc is invoked as batch classification advances. Percentage is in
// [0,100]; phase names the current stage.
type ProgressFunc func(current, total int, percentage float64, phase string)

// Runner classifies batches of raw names in input order: deduplicate first,
// classify one representative per cluster concurrently, then fan each
// cluster's result out to its members.
type Runner struct {
	classifier *TieredClassifier
	dedupe     *match.Deduplicator
	cfg        Config
}

// NewRunner builds a batch runner around an existing classifier.
func NewRunner(classifier *TieredClassifier, cfg Config) *Runner {
	return &Runner{
		classifier: classifier,
		dedupe:     match.NewDeduplicator(cfg.DedupThreshold),
		cfg:        cfg,
	}
}

// Run classifies names and returns exactly len(names) results, where
// results[i] corresponds to names[i]. Per-name AI failures degrade to the
// fallback tier; only a fatal auth failure aborts the run.
func (r *Runner) Run(ctx context.Context, names []model.RawName, progress ProgressFunc) ([]model.ClassificationResult, error) {
	results := make([]model.ClassificationResult, len(names))
	if len(names) == 0 {
		return results, nil
	}
	if progress == nil {
		progress = func(int, int, float64, string) {}
	}

	// Position of each origin row in the input slice. Row indices are unique
	// per run; results are written back through this map.
	position := make(map[int]int, len(names))
	for i, n := range names {
		position[n.OriginRowIndex] = i
	}

	progress(0, len(names), 0, "deduplicating")
	clusters := r.dedupe.Cluster(names)

	concurrency := r.cfg.MaxConcurrency
	if concurrency <= 0 {
		concurrency = 12
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var mu sync.Mutex
	var done int

	for _, cluster := range clusters {
		g.Go(func() error {
			result, err := r.classifier.classify(gCtx, cluster.CanonicalName)
			if err != nil && isFatal(err) {
				return eris.Wrap(err, "batch classification aborted")
			}

			mu.Lock()
			for _, member := range cluster.Members {
				pos, ok := position[member.OriginRowIndex]
				if !ok {
					zap.L().Warn("classify: cluster member with unknown origin row",
						zap.Int("origin_row_index", member.OriginRowIndex),
						zap.String("name", member.Text))
					continue
				}
				if member.Text == cluster.CanonicalName {
					results[pos] = result
				} else {
					results[pos] = result.Derived(cluster.CanonicalName)
				}
			}
			done += cluster.Size()
			current, total := done, len(names)
			mu.Unlock()

			progress(current, total, float64(current)/float64(total)*100, "classifying")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	progress(len(names), len(names), 100, "done")
	return results, nil
}
