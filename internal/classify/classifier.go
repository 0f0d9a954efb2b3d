// Package classify implements the tiered payee-name classification engine:
// deterministic rules first, a structural name parser second, AI inference
// for whatever remains, and a conservative heuristic when the AI tier is
// unavailable.
package classify

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/payee-cli/internal/match"
	"github.com/sells-group/payee-cli/internal/model"
	"github.com/sells-group/payee-cli/internal/resilience"
	"github.com/sells-group/payee-cli/internal/rules"
	"github.com/sells-group/payee-cli/pkg/anthropic"
)

// Config controls classification behavior for one run.
type Config struct {
	// Model is the Anthropic model ID used for AI-tier calls.
	Model string
	// MaxTokens bounds the response size per AI call.
	MaxTokens int64
	// AIThreshold is the minimum structural-tier confidence accepted before
	// escalating to the AI tier.
	AIThreshold int
	// SkipRules bypasses the rule and structural tiers entirely.
	SkipRules bool
	// Offline disables the AI tier; ambiguous names get the offline
	// heuristic instead.
	Offline bool
	// ConsensusRuns is the number of AI samples per ambiguous name. Values
	// above 1 enable the consensus voter.
	ConsensusRuns int
	// MaxConcurrency bounds parallel AI calls during a batch run.
	MaxConcurrency int
	// RequestsPerSecond throttles AI calls across all workers. Zero means
	// unthrottled.
	RequestsPerSecond float64
	// DedupThreshold is the Jaro-Winkler similarity at which near-duplicate
	// names share one classification during a batch run. Zero selects the
	// deduplicator's default.
	DedupThreshold float64
	// Retry governs backoff for transient and rate-limited AI failures.
	Retry resilience.RetryConfig
}

// DefaultConfig returns run defaults matching production usage.
func DefaultConfig() Config {
	return Config{
		Model:             "claude-haiku-4-5-20251001",
		MaxTokens:         256,
		AIThreshold:       80,
		ConsensusRuns:     DefaultConsensusRuns,
		MaxConcurrency:    12,
		RequestsPerSecond: 8,
		Retry:             resilience.DefaultRetryConfig(),
	}
}

// TieredClassifier escalates names through progressively more expensive
// tiers until one produces a confident decision.
type TieredClassifier struct {
	client  anthropic.Client
	cfg     Config
	cache   *Cache
	voter   *ConsensusVoter
	limiter *rate.Limiter
}

// NewTieredClassifier builds a classifier. cache may be nil to disable
// caching; client may be nil only when cfg.Offline is set.
func NewTieredClassifier(client anthropic.Client, cfg Config, cache *Cache) *TieredClassifier {
	if cfg.AIThreshold <= 0 {
		cfg.AIThreshold = 80
	}
	tc := &TieredClassifier{client: client, cfg: cfg, cache: cache}
	if cfg.RequestsPerSecond > 0 {
		// One limiter per classifier, shared by every worker and every
		// consensus sample, so the configured rate holds regardless of
		// how many calls run in parallel.
		tc.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	if client != nil && cfg.ConsensusRuns > 1 {
		tc.voter = NewConsensusVoter(client, cfg, cfg.ConsensusRuns, tc.limiter)
	}
	return tc
}

// Classify assigns a label to name. It never fails: any input, including
// empty strings and non-ASCII text, yields a ClassificationResult.
func (tc *TieredClassifier) Classify(ctx context.Context, name string) model.ClassificationResult {
	result, _ := tc.classify(ctx, name)
	return result
}

// classify is the internal form that also reports the AI-tier error that
// forced a fallback, so batch callers can abort on fatal auth failures.
func (tc *TieredClassifier) classify(ctx context.Context, name string) (model.ClassificationResult, error) {
	if strings.TrimSpace(name) == "" {
		return model.NewClassificationResult(model.LabelIndividual, 0, model.TierRuleBased, "invalid input"), nil
	}

	if !tc.cfg.SkipRules {
		if result, ok := rules.Evaluate(name); ok {
			return result, nil
		}
		if result, ok := rules.ParseStructure(name); ok && result.Confidence >= tc.cfg.AIThreshold {
			return result, nil
		}
	}

	if tc.cfg.Offline || tc.client == nil {
		return rules.OfflineGuess(name), nil
	}

	cacheKey := match.Normalize(name)
	if tc.cache != nil {
		if cached, ok := tc.cache.Get(cacheKey); ok {
			return cached, nil
		}
	}

	result, err := tc.classifyAI(ctx, name)
	if err != nil {
		zap.L().Warn("classify: AI tier failed, using fallback",
			zap.String("name", name),
			zap.Error(err))
		return fallback(name, err), err
	}

	if tc.cache != nil {
		tc.cache.Put(cacheKey, result)
	}
	return result, nil
}

func (tc *TieredClassifier) classifyAI(ctx context.Context, name string) (model.ClassificationResult, error) {
	if tc.voter != nil {
		return tc.voter.Classify(ctx, name)
	}
	return classifyOnce(ctx, tc.client, tc.cfg, tc.limiter, name)
}

// classifyOnce issues a single AI classification call with retry. The limiter
// is awaited per request, including retries, so every outbound call counts
// against the configured rate.
func classifyOnce(ctx context.Context, client anthropic.Client, cfg Config, limiter *rate.Limiter, name string) (model.ClassificationResult, error) {
	retryCfg := cfg.Retry
	if retryCfg.MaxAttempts == 0 {
		retryCfg = resilience.DefaultRetryConfig()
	}
	retryCfg.OnRetry = resilience.RetryLogger("anthropic", "classify")

	return resilience.DoVal(ctx, retryCfg, func(ctx context.Context) (model.ClassificationResult, error) {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return model.ClassificationResult{}, err
			}
		}
		resp, err := client.CreateMessage(ctx, BuildAIRequest(cfg.Model, cfg.MaxTokens, name))
		if err != nil {
			return model.ClassificationResult{}, anthropic.ClassifyError(err)
		}
		return ParseAIResponse(anthropic.FirstText(resp))
	})
}

// isFatal reports whether an AI-tier error should abort a whole batch run
// instead of degrading one name. Auth failures qualify: subsequent calls
// would fail identically.
func isFatal(err error) bool {
	return resilience.IsAuthError(err)
}

// fallback applies the conservative word-count heuristic when the AI tier is
// unreachable. Short names look like people; longer ones like businesses.
func fallback(name string, cause error) model.ClassificationResult {
	label := model.LabelBusiness
	if len(strings.Fields(name)) <= 2 {
		label = model.LabelIndividual
	}
	reasoning := fmt.Sprintf("fallback heuristic (AI tier unavailable: %v)", cause)
	return model.NewClassificationResult(label, 51, model.TierFallback, reasoning)
}
