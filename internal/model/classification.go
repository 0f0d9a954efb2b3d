package model

import "fmt"

// Label is the business/individual decision for a payee name.
type Label string

const (
	LabelBusiness   Label = "Business"
	LabelIndividual Label = "Individual"
)

// Tier identifies the processing stage that produced a classification.
// Trust ordering is RuleBased > Structural > AIConsensus > Fallback,
// independent of the numeric confidence.
type Tier string

const (
	TierRuleBased   Tier = "rule_based"
	TierStructural  Tier = "structural"
	TierAIConsensus Tier = "ai_consensus"
	TierFallback    Tier = "fallback"
)

// trustRank orders tiers by how much we trust their decisions.
var trustRank = map[Tier]int{
	TierRuleBased:   4,
	TierStructural:  3,
	TierAIConsensus: 2,
	TierFallback:    1,
}

// TrustedOver reports whether t outranks other in the tier trust ordering.
func (t Tier) TrustedOver(other Tier) bool {
	return trustRank[t] > trustRank[other]
}

// ClassificationResult is the outcome of classifying one payee name.
type ClassificationResult struct {
	Classification Label    `json:"classification"`
	Confidence     int      `json:"confidence"` // 0-100
	Reasoning      string   `json:"reasoning"`
	Tier           Tier     `json:"tier"`
	MatchingRules  []string `json:"matching_rules,omitempty"`
}

// NewClassificationResult builds a result with the confidence clamped to
// [0,100].
func NewClassificationResult(label Label, confidence int, tier Tier, reasoning string, rules ...string) ClassificationResult {
	return ClassificationResult{
		Classification: label,
		Confidence:     ClampConfidence(confidence),
		Reasoning:      reasoning,
		Tier:           tier,
		MatchingRules:  rules,
	}
}

// ClampConfidence bounds a confidence value to [0,100].
func ClampConfidence(c int) int {
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}

// Derived returns a copy of the result annotated for a non-canonical cluster
// member that inherited the canonical name's classification.
func (r ClassificationResult) Derived(canonical string) ClassificationResult {
	out := r
	out.Reasoning = fmt.Sprintf("%s (derived from cluster canonical %q)", r.Reasoning, canonical)
	return out
}
