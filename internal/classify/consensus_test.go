package classify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/payee-cli/internal/model"
)

func sample(label model.Label, confidence int, rules ...string) model.ClassificationResult {
	return model.NewClassificationResult(label, confidence, model.TierAIConsensus, "sample", rules...)
}

func TestAggregateMajority(t *testing.T) {
	samples := []model.ClassificationResult{
		sample(model.LabelBusiness, 90),
		sample(model.LabelBusiness, 80),
		sample(model.LabelIndividual, 95),
	}

	result := aggregate(samples, 3)

	assert.Equal(t, model.LabelBusiness, result.Classification)
	// median(90,80)=85, agreement 2/3 → round(85*0.6667)=57
	assert.Equal(t, 57, result.Confidence)
	assert.Contains(t, result.Reasoning, "67% agreement across 3 samples")
}

func TestAggregateTieDefaultsToIndividual(t *testing.T) {
	samples := []model.ClassificationResult{
		sample(model.LabelBusiness, 99),
		sample(model.LabelIndividual, 60),
	}

	result := aggregate(samples, 2)

	assert.Equal(t, model.LabelIndividual, result.Classification)
	// median(60)=60, agreement 1/2 → 30
	assert.Equal(t, 30, result.Confidence)
}

func TestAggregateUnanimous(t *testing.T) {
	samples := []model.ClassificationResult{
		sample(model.LabelIndividual, 80, "a"),
		sample(model.LabelIndividual, 90, "a", "b"),
	}

	result := aggregate(samples, 2)

	assert.Equal(t, model.LabelIndividual, result.Classification)
	assert.Equal(t, 85, result.Confidence)
	assert.ElementsMatch(t, []string{"a", "b"}, result.MatchingRules)
}

func TestAggregatePartialFailureScalesByRuns(t *testing.T) {
	// One of two runs failed; the surviving vote still divides by total runs.
	samples := []model.ClassificationResult{
		sample(model.LabelBusiness, 90),
	}

	result := aggregate(samples, 2)

	assert.Equal(t, model.LabelBusiness, result.Classification)
	assert.Equal(t, 45, result.Confidence)
}

func TestConsensusVoterAllSamplesFailed(t *testing.T) {
	client := new(mockAI)
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Return(nil, errors.New("boom"))

	voter := NewConsensusVoter(client, testConfig(), 2, nil)
	_, err := voter.Classify(context.Background(), "Ambiguous Name Here")

	var asf *AllSamplesFailed
	require.ErrorAs(t, err, &asf)
	assert.Equal(t, 2, asf.Runs)
	assert.Len(t, asf.Errs, 2)
}

func TestConsensusVoterAggregates(t *testing.T) {
	client := new(mockAI)
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Return(aiTextResponse(`{"classification":"Business","confidence":90,"reasoning":"keyword"}`), nil)

	voter := NewConsensusVoter(client, testConfig(), 3, nil)
	result, err := voter.Classify(context.Background(), "Ambiguous Name Here")

	require.NoError(t, err)
	assert.Equal(t, model.LabelBusiness, result.Classification)
	assert.Equal(t, 90, result.Confidence)
	client.AssertNumberOfCalls(t, "CreateMessage", 3)
}

func TestConsensusSamplesShareRequestRate(t *testing.T) {
	client := new(mockAI)
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Return(aiTextResponse(`{"classification":"Business","confidence":90,"reasoning":"keyword"}`), nil)

	cfg := testConfig()
	cfg.ConsensusRuns = 3
	cfg.RequestsPerSecond = 50

	tc := NewTieredClassifier(client, cfg, nil)
	start := time.Now()
	result := tc.Classify(context.Background(), "Vbnrqx Zxqwfgh Plmtk")
	elapsed := time.Since(start)

	client.AssertNumberOfCalls(t, "CreateMessage", 3)
	assert.Equal(t, model.TierAIConsensus, result.Tier)
	// Burst 1 at 50 rps: the second and third samples wait for their own
	// tokens, so three calls take at least two 20ms intervals.
	assert.GreaterOrEqual(t, elapsed, 40*time.Millisecond)
}

func TestMedian(t *testing.T) {
	assert.Zero(t, median(nil))
	assert.Equal(t, 5.0, median([]int{5}))
	assert.Equal(t, 7.5, median([]int{5, 10}))
	assert.Equal(t, 10.0, median([]int{5, 10, 90}))
}
