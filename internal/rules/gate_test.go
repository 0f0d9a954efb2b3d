package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/payee-cli/internal/model"
)

func TestEvaluate_BusinessSuffixes(t *testing.T) {
	tests := []struct {
		name string
	}{
		{"Acme Corporation LLC"},
		{"Northwind Traders Inc."},
		{"Baxter Holdings Ltd"},
		{"Müller Logistik GmbH"},
		{"Software Pioneers L.L.C."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, ok := Evaluate(tt.name)
			require.True(t, ok)
			assert.Equal(t, model.LabelBusiness, result.Classification)
			assert.Equal(t, model.TierRuleBased, result.Tier)
			assert.NotEmpty(t, result.MatchingRules)
		})
	}
}

func TestEvaluate_AcmeCorporationLLC_HighConfidence(t *testing.T) {
	result, ok := Evaluate("Acme Corporation LLC")
	require.True(t, ok)
	assert.Equal(t, model.LabelBusiness, result.Classification)
	assert.Equal(t, model.TierRuleBased, result.Tier)
	assert.GreaterOrEqual(t, result.Confidence, 90)
	assert.LessOrEqual(t, result.Confidence, 99)
}

func TestEvaluate_Individuals(t *testing.T) {
	tests := []struct {
		name string
	}{
		{"John Smith"},
		{"Smith, John"},
		{"Dr. Maria Garcia"},
		{"Robert Johnson Jr."},
		{"José García"},
		{"Nguyen, Wei"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, ok := Evaluate(tt.name)
			require.True(t, ok, "expected a decision for %q", tt.name)
			assert.Equal(t, model.LabelIndividual, result.Classification)
			assert.LessOrEqual(t, result.Confidence, 97)
		})
	}
}

func TestEvaluate_ConflictingSignalsEscalate(t *testing.T) {
	// A personal name with a legal suffix fires both sides; the gate must
	// decline rather than guess.
	_, ok := Evaluate("John Smith LLC")
	assert.False(t, ok)
}

func TestEvaluate_NoSignalsEscalate(t *testing.T) {
	for _, name := range []string{"", "   ", "Zyxwv Qrtfl", "Quarrow Bintal Sarv"} {
		_, ok := Evaluate(name)
		assert.False(t, ok, "expected no decision for %q", name)
	}
}

func TestEvaluate_Government(t *testing.T) {
	for _, name := range []string{"City of Springfield", "Department of Revenue", "Maricopa County Treasurer"} {
		result, ok := Evaluate(name)
		require.True(t, ok, "expected a decision for %q", name)
		assert.Equal(t, model.LabelBusiness, result.Classification)
		assert.GreaterOrEqual(t, result.Confidence, 85)
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	first, ok1 := Evaluate("Acme Corporation LLC")
	second, ok2 := Evaluate("Acme Corporation LLC")
	require.True(t, ok1)
	require.True(t, ok2)
	assert.Equal(t, first, second)
}

func TestRejoinInitialisms(t *testing.T) {
	tests := []struct {
		in   []string
		want []string
	}{
		{[]string{"ACME", "L", "L", "C"}, []string{"ACME", "LLC"}},
		{[]string{"J", "SMITH"}, []string{"J", "SMITH"}},
		{[]string{"A", "B", "PLUMBING"}, []string{"AB", "PLUMBING"}},
		{nil, []string{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, rejoinInitialisms(tt.in))
	}
}
