package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampConfidence(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{"negative", -10, 0},
		{"zero", 0, 0},
		{"mid", 51, 51},
		{"hundred", 100, 100},
		{"over", 140, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClampConfidence(tt.in))
		})
	}
}

func TestNewClassificationResult_Clamps(t *testing.T) {
	r := NewClassificationResult(LabelBusiness, 130, TierRuleBased, "suffix match", "legal_suffix")
	assert.Equal(t, 100, r.Confidence)
	assert.Equal(t, LabelBusiness, r.Classification)
	assert.Equal(t, []string{"legal_suffix"}, r.MatchingRules)
}

func TestTier_TrustedOver(t *testing.T) {
	assert.True(t, TierRuleBased.TrustedOver(TierStructural))
	assert.True(t, TierStructural.TrustedOver(TierAIConsensus))
	assert.True(t, TierAIConsensus.TrustedOver(TierFallback))
	assert.False(t, TierFallback.TrustedOver(TierRuleBased))
	assert.False(t, TierRuleBased.TrustedOver(TierRuleBased))
}

func TestDerived_AnnotatesReasoning(t *testing.T) {
	r := NewClassificationResult(LabelIndividual, 80, TierAIConsensus, "personal name pattern")
	d := r.Derived("JOHN SMITH")
	assert.Contains(t, d.Reasoning, "derived from cluster canonical")
	assert.Contains(t, d.Reasoning, "JOHN SMITH")
	assert.Equal(t, r.Confidence, d.Confidence)
	assert.Equal(t, r.Tier, d.Tier)
	// Original untouched.
	assert.NotContains(t, r.Reasoning, "derived")
}
