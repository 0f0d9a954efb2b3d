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
	"github.com/sells-group/payee-cli/internal/resilience"
)

// testConfig disables retry sleeps and consensus so single-call expectations
// hold.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.ConsensusRuns = 1
	cfg.Retry = resilience.RetryConfig{MaxAttempts: 1, InitialBackoff: 1, MaxBackoff: 1}
	return cfg
}

func TestClassifyEmptyInput(t *testing.T) {
	tc := NewTieredClassifier(nil, Config{Offline: true}, nil)

	for _, name := range []string{"", "   ", "\t\n"} {
		result := tc.Classify(context.Background(), name)
		assert.Equal(t, model.LabelIndividual, result.Classification)
		assert.Zero(t, result.Confidence)
		assert.Equal(t, model.TierRuleBased, result.Tier)
		assert.Equal(t, "invalid input", result.Reasoning)
	}
}

func TestClassifyRuleGateShortCircuit(t *testing.T) {
	// No expectations set: any AI call would fail the test.
	client := new(mockAI)
	tc := NewTieredClassifier(client, testConfig(), nil)

	result := tc.Classify(context.Background(), "Acme Corporation LLC")

	assert.Equal(t, model.LabelBusiness, result.Classification)
	assert.Equal(t, model.TierRuleBased, result.Tier)
	assert.GreaterOrEqual(t, result.Confidence, 90)
	client.AssertExpectations(t)
}

func TestClassifyStructuralTier(t *testing.T) {
	client := new(mockAI)
	tc := NewTieredClassifier(client, testConfig(), nil)

	// Two plausible alphabetic tokens with no gazetteer hits: the gate stays
	// silent and the structural parser decides.
	result := tc.Classify(context.Background(), "Zxqw Vbnr")

	assert.Equal(t, model.LabelIndividual, result.Classification)
	assert.Equal(t, model.TierStructural, result.Tier)
	client.AssertExpectations(t)
}

func TestClassifyAITier(t *testing.T) {
	client := new(mockAI)
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Return(aiTextResponse(`{"classification":"Business","confidence":88,"reasoning":"trade name"}`), nil).Once()

	tc := NewTieredClassifier(client, testConfig(), nil)
	result := tc.Classify(context.Background(), "Vbnrqx Zxqwfgh Plmtk")

	assert.Equal(t, model.LabelBusiness, result.Classification)
	assert.Equal(t, 88, result.Confidence)
	assert.Equal(t, model.TierAIConsensus, result.Tier)
	client.AssertExpectations(t)
}

func TestClassifyFallbackOnAIFailure(t *testing.T) {
	client := new(mockAI)
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused"))

	tc := NewTieredClassifier(client, testConfig(), nil)

	short := tc.Classify(context.Background(), "Vbnrzx")
	assert.Equal(t, model.LabelIndividual, short.Classification)
	assert.Equal(t, 51, short.Confidence)
	assert.Equal(t, model.TierFallback, short.Tier)

	long := tc.Classify(context.Background(), "Vbnrqx Zxqwfgh Plmtk")
	assert.Equal(t, model.LabelBusiness, long.Classification)
	assert.Equal(t, model.TierFallback, long.Tier)
	assert.Contains(t, long.Reasoning, "fallback heuristic")
}

func TestClassifyCacheHit(t *testing.T) {
	client := new(mockAI)
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Return(aiTextResponse(`{"classification":"Individual","confidence":77,"reasoning":"looks personal"}`), nil).Once()

	cache := NewCache(0)
	tc := NewTieredClassifier(client, testConfig(), cache)

	first := tc.Classify(context.Background(), "Vbnrqx Zxqwfgh Plmtk")
	// Same name modulo case and punctuation: must hit the cache.
	second := tc.Classify(context.Background(), "VBNRQX ZXQWFGH PLMTK.")

	assert.Equal(t, first, second)
	client.AssertNumberOfCalls(t, "CreateMessage", 1)
}

func TestClassifyOffline(t *testing.T) {
	cfg := testConfig()
	cfg.Offline = true
	tc := NewTieredClassifier(nil, cfg, nil)

	result := tc.Classify(context.Background(), "Vbnrqx Zxqwfgh Plmtk")
	assert.Equal(t, model.TierStructural, result.Tier)
	assert.Equal(t, 65, result.Confidence)
}

func TestClassifyNeverPanicsOnWeirdInput(t *testing.T) {
	cfg := testConfig()
	cfg.Offline = true
	tc := NewTieredClassifier(nil, cfg, nil)

	inputs := []string{
		"",
		"日本商事株式会社",
		"Ñandú S.A. de C.V.",
		string(make([]byte, 10_000)),
		"a\x00b",
	}
	for _, in := range inputs {
		result := tc.Classify(context.Background(), in)
		assert.NotEmpty(t, result.Tier)
		assert.GreaterOrEqual(t, result.Confidence, 0)
		assert.LessOrEqual(t, result.Confidence, 100)
	}
}

func TestParseAIResponse(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    model.Label
		wantErr bool
	}{
		{"plain json", `{"classification":"Business","confidence":90,"reasoning":"llc"}`, model.LabelBusiness, false},
		{"fenced json", "```json\n{\"classification\":\"Individual\",\"confidence\":70,\"reasoning\":\"name\"}\n```", model.LabelIndividual, false},
		{"json in prose", `Here you go: {"classification":"Business","confidence":80,"reasoning":"x"} hope that helps`, model.LabelBusiness, false},
		{"lowercase label", `{"classification":"business","confidence":60,"reasoning":"y"}`, model.LabelBusiness, false},
		{"garbage", "not json at all", "", true},
		{"unknown label", `{"classification":"Partnership","confidence":50,"reasoning":"z"}`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseAIResponse(tt.text)
			if tt.wantErr {
				var perr *ParseError
				require.ErrorAs(t, err, &perr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Classification)
			assert.Equal(t, model.TierAIConsensus, result.Tier)
		})
	}
}

func TestCacheExpiry(t *testing.T) {
	cache := NewCache(DefaultCacheTTL)
	result := model.NewClassificationResult(model.LabelBusiness, 90, model.TierAIConsensus, "x")
	cache.Put("KEY", result)

	got, ok := cache.Get("KEY")
	require.True(t, ok)
	assert.Equal(t, result, got)

	// Push the clock past the TTL.
	cache.now = func() time.Time { return time.Now().Add(DefaultCacheTTL + time.Minute) }
	_, ok = cache.Get("KEY")
	assert.False(t, ok)
}
