package match

import (
	"go.uber.org/zap"

	"github.com/sells-group/payee-cli/internal/model"
)

// DefaultSimilarityThreshold is the Jaro-Winkler score at or above which two
// normalized names merge into one cluster.
const DefaultSimilarityThreshold = 0.85

// Deduplicator clusters near-duplicate payee names so each distinct name is
// classified at most once per run.
//
// The strategy is greedy online clustering: exact normalized matches group
// first, then each remaining distinct string merges into the first
// already-established canonical whose similarity clears the threshold, or
// starts a new cluster. The result can depend on input order; that is an
// accepted tradeoff (speed over globally optimal clustering), not a bug.
type Deduplicator struct {
	threshold float64
}

// NewDeduplicator creates a Deduplicator. A non-positive threshold falls back
// to DefaultSimilarityThreshold.
func NewDeduplicator(threshold float64) *Deduplicator {
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	return &Deduplicator{threshold: threshold}
}

// Cluster groups names into clusters keyed by the canonical member's raw
// text. First-seen ordering wins as canonical. O(U²) over distinct
// normalized strings; dedup runs once per batch so this is acceptable.
func (d *Deduplicator) Cluster(names []model.RawName) []model.NameCluster {
	type bucket struct {
		canonicalRaw  string
		canonicalNorm string
		members       []model.RawName
	}

	var order []*bucket
	byNorm := make(map[string]*bucket)

	for _, name := range names {
		normalized := Normalize(name.Text)

		// Pass 1 behavior inline: exact normalized equality.
		if b, ok := byNorm[normalized]; ok {
			b.members = append(b.members, name)
			continue
		}

		// Pass 2: fuzzy match against established canonicals, first hit wins.
		var merged *bucket
		for _, b := range order {
			if JaroWinkler(normalized, b.canonicalNorm) >= d.threshold {
				merged = b
				break
			}
		}
		if merged != nil {
			merged.members = append(merged.members, name)
			byNorm[normalized] = merged
			continue
		}

		b := &bucket{
			canonicalRaw:  name.Text,
			canonicalNorm: normalized,
			members:       []model.RawName{name},
		}
		order = append(order, b)
		byNorm[normalized] = b
	}

	clusters := make([]model.NameCluster, 0, len(order))
	for _, b := range order {
		clusters = append(clusters, model.NameCluster{
			CanonicalName: b.canonicalRaw,
			Members:       b.members,
		})
	}

	if len(names) > len(clusters) {
		zap.L().Info("dedup: clustered near-duplicate names",
			zap.Int("names", len(names)),
			zap.Int("clusters", len(clusters)),
			zap.Float64("threshold", d.threshold),
		)
	}

	return clusters
}
