package classify

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/payee-cli/internal/model"
	"github.com/sells-group/payee-cli/pkg/anthropic"
)

// AllSamplesFailed is returned when every consensus run against the AI tier
// failed. The caller is expected to degrade to the fallback heuristic.
type AllSamplesFailed struct {
	Runs int
	Errs []error
}

func (e *AllSamplesFailed) Error() string {
	return fmt.Sprintf("all %d consensus samples failed (last: %v)", e.Runs, e.Errs[len(e.Errs)-1])
}

func (e *AllSamplesFailed) Unwrap() error {
	return e.Errs[len(e.Errs)-1]
}

// DefaultConsensusRuns is the number of independent AI samples per name.
const DefaultConsensusRuns = 2

// ConsensusVoter reconciles multiple independent AI classifications of the
// same name into one result by majority vote.
type ConsensusVoter struct {
	client  anthropic.Client
	cfg     Config
	runs    int
	limiter *rate.Limiter
}

// NewConsensusVoter builds a voter issuing runs samples per name. Values
// below 1 fall back to DefaultConsensusRuns. limiter may be nil; when set,
// each sample waits on it individually.
func NewConsensusVoter(client anthropic.Client, cfg Config, runs int, limiter *rate.Limiter) *ConsensusVoter {
	if runs < 1 {
		runs = DefaultConsensusRuns
	}
	return &ConsensusVoter{client: client, cfg: cfg, runs: runs, limiter: limiter}
}

// Classify issues the configured number of concurrent AI calls for name and
// aggregates them. Returns *AllSamplesFailed when no sample produced a usable
// result.
func (v *ConsensusVoter) Classify(ctx context.Context, name string) (model.ClassificationResult, error) {
	samples := make([]model.ClassificationResult, 0, v.runs)
	errs := make([]error, 0, v.runs)

	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < v.runs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := classifyOnce(ctx, v.client, v.cfg, v.limiter, name)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			samples = append(samples, result)
		}()
	}
	wg.Wait()

	if len(samples) == 0 {
		return model.ClassificationResult{}, &AllSamplesFailed{Runs: v.runs, Errs: errs}
	}
	if len(errs) > 0 {
		zap.L().Warn("consensus: partial sample failure",
			zap.String("name", name),
			zap.Int("failed", len(errs)),
			zap.Int("succeeded", len(samples)))
	}

	return aggregate(samples, v.runs), nil
}

// aggregate applies majority vote over samples. The business count must
// strictly exceed the individual count to win; ties resolve to Individual.
func aggregate(samples []model.ClassificationResult, runs int) model.ClassificationResult {
	var business, individual int
	for _, s := range samples {
		if s.Classification == model.LabelBusiness {
			business++
		} else {
			individual++
		}
	}

	winner := model.LabelIndividual
	majority := individual
	if business > individual {
		winner = model.LabelBusiness
		majority = business
	}

	// Median confidence among majority-agreeing votes, scaled by agreement.
	var agreeing []int
	ruleSet := make(map[string]struct{})
	var rules []string
	var reasoning string
	for _, s := range samples {
		if s.Classification == winner {
			agreeing = append(agreeing, s.Confidence)
			if reasoning == "" {
				reasoning = s.Reasoning
			}
		}
		for _, r := range s.MatchingRules {
			if _, seen := ruleSet[r]; !seen {
				ruleSet[r] = struct{}{}
				rules = append(rules, r)
			}
		}
	}

	agreement := float64(majority) / float64(runs)
	confidence := int(math.Round(median(agreeing) * agreement))
	reasoning = fmt.Sprintf("%s (%d%% agreement across %d samples)", reasoning, int(math.Round(agreement*100)), runs)

	return model.NewClassificationResult(winner, confidence, model.TierAIConsensus, reasoning, rules...)
}

func median(vals []int) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := make([]int, len(vals))
	copy(sorted, vals)
	sort.Ints(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return float64(sorted[mid-1]+sorted[mid]) / 2
	}
	return float64(sorted[mid])
}
