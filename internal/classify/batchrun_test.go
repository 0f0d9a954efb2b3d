package classify

import (
	"context"
	"net/http"
	"sync"
	"testing"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/payee-cli/internal/model"
	"github.com/sells-group/payee-cli/internal/resilience"
)

// unauthorizedAPIError builds the error shape the SDK returns for a real
// HTTP 401, unwrapped by any local taxonomy.
func unauthorizedAPIError() *sdk.Error {
	req, _ := http.NewRequest(http.MethodPost, "https://api.anthropic.com/v1/messages", nil)
	return &sdk.Error{
		StatusCode: http.StatusUnauthorized,
		Request:    req,
		Response:   &http.Response{StatusCode: http.StatusUnauthorized, Status: "401 Unauthorized", Request: req},
	}
}

func rawNames(texts ...string) []model.RawName {
	names := make([]model.RawName, len(texts))
	for i, t := range texts {
		names[i] = model.RawName{Text: t, OriginRowIndex: i}
	}
	return names
}

func TestRunnerOneResultPerInput(t *testing.T) {
	cfg := testConfig()
	cfg.Offline = true
	runner := NewRunner(NewTieredClassifier(nil, cfg, nil), cfg)

	names := rawNames("Acme Corporation LLC", "John Smith", "JOHN SMITH", "Jane Doe", "")
	results, err := runner.Run(context.Background(), names, nil)

	require.NoError(t, err)
	require.Len(t, results, len(names))
	for i, r := range results {
		assert.NotEmpty(t, r.Tier, "row %d has no classification", i)
	}
	// Empty input keeps its row.
	assert.Equal(t, "invalid input", results[4].Reasoning)
}

func TestRunnerDuplicatesClassifiedOnce(t *testing.T) {
	client := new(mockAI)
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Return(aiTextResponse(`{"classification":"Business","confidence":85,"reasoning":"ai"}`), nil)

	cfg := testConfig()
	runner := NewRunner(NewTieredClassifier(client, cfg, NewCache(0)), cfg)

	// Three spellings of one ambiguous 3-token name cluster together; the AI
	// tier must be invoked for the canonical only.
	names := rawNames("Vbnrqx Zxqwfgh Plmtk", "VBNRQX ZXQWFGH PLMTK", "vbnrqx zxqwfgh plmtk.")
	results, err := runner.Run(context.Background(), names, nil)

	require.NoError(t, err)
	require.Len(t, results, 3)
	client.AssertNumberOfCalls(t, "CreateMessage", 1)

	assert.Equal(t, results[0].Classification, results[1].Classification)
	assert.Equal(t, results[0].Classification, results[2].Classification)
	assert.Contains(t, results[1].Reasoning, "derived from cluster canonical")
	assert.Contains(t, results[2].Reasoning, "derived from cluster canonical")
	assert.NotContains(t, results[0].Reasoning, "derived")
}

func TestRunnerPreservesInputOrder(t *testing.T) {
	cfg := testConfig()
	cfg.Offline = true
	cfg.MaxConcurrency = 4
	runner := NewRunner(NewTieredClassifier(nil, cfg, nil), cfg)

	names := rawNames("Acme Corporation LLC", "John Smith", "City of Springfield", "Jane Doe")
	results, err := runner.Run(context.Background(), names, nil)

	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.Equal(t, model.LabelBusiness, results[0].Classification)
	assert.Equal(t, model.LabelIndividual, results[1].Classification)
	assert.Equal(t, model.LabelBusiness, results[2].Classification)
	assert.Equal(t, model.LabelIndividual, results[3].Classification)
}

func TestRunnerAbortsOnAuthError(t *testing.T) {
	client := new(mockAI)
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Return(nil, resilience.NewAuthError(assert.AnError))

	cfg := testConfig()
	runner := NewRunner(NewTieredClassifier(client, cfg, nil), cfg)

	_, err := runner.Run(context.Background(), rawNames("Vbnrqx Zxqwfgh Plmtk"), nil)
	require.Error(t, err)
	assert.True(t, resilience.IsAuthError(err))
}

func TestRunnerAbortsOnUnauthorizedResponse(t *testing.T) {
	client := new(mockAI)
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Return(nil, unauthorizedAPIError())

	cfg := testConfig()
	runner := NewRunner(NewTieredClassifier(client, cfg, nil), cfg)

	_, err := runner.Run(context.Background(), rawNames("Vbnrqx Zxqwfgh Plmtk"), nil)
	require.Error(t, err)
	assert.True(t, resilience.IsAuthError(err), "a 401 from the API must abort the run, not degrade to fallback")
	client.AssertNumberOfCalls(t, "CreateMessage", 1)
}

func TestRunnerProgressCallback(t *testing.T) {
	cfg := testConfig()
	cfg.Offline = true
	runner := NewRunner(NewTieredClassifier(nil, cfg, nil), cfg)

	var mu sync.Mutex
	var phases []string
	var last float64
	progress := func(current, total int, pct float64, phase string) {
		mu.Lock()
		defer mu.Unlock()
		phases = append(phases, phase)
		last = pct
	}

	_, err := runner.Run(context.Background(), rawNames("John Smith", "Jane Doe"), progress)
	require.NoError(t, err)

	assert.Contains(t, phases, "deduplicating")
	assert.Contains(t, phases, "classifying")
	assert.Equal(t, "done", phases[len(phases)-1])
	assert.InDelta(t, 100, last, 0.01)
}

func TestRunnerEmptyInput(t *testing.T) {
	cfg := testConfig()
	cfg.Offline = true
	runner := NewRunner(NewTieredClassifier(nil, cfg, nil), cfg)

	results, err := runner.Run(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}
